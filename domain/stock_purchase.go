package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockPurchase records a restock; recording one raises the product's stock
// and replaces its cost price with UnitCost.
type StockPurchase struct {
	ID        string          `db:"id" json:"id"`
	ProductID string          `db:"product_id" json:"product_id"`
	Quantity  int64           `db:"quantity" json:"quantity"`
	UnitCost  decimal.Decimal `db:"unit_cost" json:"unit_cost"`
	Supplier  *string         `db:"supplier" json:"supplier,omitempty"`
	Notes     *string         `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
