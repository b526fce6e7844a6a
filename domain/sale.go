package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "CASH"
	PaymentCard PaymentMethod = "CARD"
	PaymentUPI  PaymentMethod = "UPI"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentUPI:
		return true
	}
	return false
}

// Sale is a committed checkout. Rows are never edited after insert.
type Sale struct {
	ID             string          `db:"id" json:"id"`
	DisplayID      string          `db:"display_id" json:"display_id"`
	CustomerName   string          `db:"customer_name" json:"customer_name"`
	CustomerID     *string         `db:"customer_id" json:"customer_id,omitempty"`
	TotalAmount    decimal.Decimal `db:"total_amount" json:"total_amount"`
	DiscountAmount decimal.Decimal `db:"discount_amount" json:"discount_amount"`
	PaymentMethod  PaymentMethod   `db:"payment_method" json:"payment_method"`
	IdempotencyKey *string         `db:"idempotency_key" json:"-"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

// SaleItem is one line of a sale with its price frozen at sale time.
// ProductID is nil once the product has been deleted from the catalog.
type SaleItem struct {
	ID          string          `db:"id" json:"id"`
	SaleID      string          `db:"sale_id" json:"sale_id"`
	ProductID   *string         `db:"product_id" json:"product_id"`
	LineNo      int             `db:"line_no" json:"line_no"`
	Quantity    int64           `db:"quantity" json:"quantity"`
	PriceAtSale decimal.Decimal `db:"price_at_sale" json:"price_at_sale"`
}

func (i SaleItem) Amount() decimal.Decimal {
	return i.PriceAtSale.Mul(decimal.NewFromInt(i.Quantity))
}

// SaleItemDetail is a sale line joined with the product's display fields.
type SaleItemDetail struct {
	SaleItem
	ProductName *string `db:"product_name" json:"product_name"`
	ProductSKU  *string `db:"product_sku" json:"product_sku"`
}

// DisplayName falls back to "Unknown" for lines whose product is gone.
func (d SaleItemDetail) DisplayName() string {
	if d.ProductName == nil || *d.ProductName == "" {
		return "Unknown"
	}
	return *d.ProductName
}

type SaleWithItems struct {
	Sale
	Items []SaleItemDetail `json:"items"`
}

// CustomerLabel is the name shown on reports, "Walk-in" when none was given.
func (s Sale) CustomerLabel() string {
	if s.CustomerName == "" {
		return "Walk-in"
	}
	return s.CustomerName
}

// SaleItemCost pairs a sold line with the product's current cost price.
type SaleItemCost struct {
	Quantity    int64               `db:"quantity"`
	PriceAtSale decimal.Decimal     `db:"price_at_sale"`
	CostPrice   decimal.NullDecimal `db:"cost_price"`
}
