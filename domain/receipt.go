package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ReceiptLine struct {
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Amount    decimal.Decimal `json:"amount"`
}

// Receipt is the printable record of a committed sale.
type Receipt struct {
	SaleID        string          `json:"sale_id"`
	DisplayID     string          `json:"display_id"`
	IssuedAt      time.Time       `json:"issued_at"`
	CustomerName  string          `json:"customer_name"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Lines         []ReceiptLine   `json:"lines"`
	SubTotal      decimal.Decimal `json:"sub_total"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	// Replayed is set when an idempotency key matched an earlier sale.
	Replayed bool `json:"replayed,omitempty"`
}

// BillTo is the customer line printed on the receipt.
func (r Receipt) BillTo() string {
	if r.CustomerName == "" {
		return "Walk-in Customer"
	}
	return r.CustomerName
}
