package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LowStockThreshold is the stock level below which a product is reported as low.
const LowStockThreshold = 5

// DefaultCategory is assigned to products created without a category label.
const DefaultCategory = "General"

// PricingMode selects which price field a cart uses for newly added lines.
type PricingMode string

const (
	PricingRetail    PricingMode = "retail"
	PricingWholesale PricingMode = "wholesale"
)

func (m PricingMode) Valid() bool {
	return m == PricingRetail || m == PricingWholesale
}

type Product struct {
	ID             string              `db:"id" json:"id"`
	Name           string              `db:"name" json:"name"`
	SKU            string              `db:"sku" json:"sku"`
	Category       string              `db:"category" json:"category"`
	Price          decimal.Decimal     `db:"price" json:"price"`
	WholesalePrice decimal.NullDecimal `db:"wholesale_price" json:"wholesale_price"`
	CostPrice      decimal.NullDecimal `db:"cost_price" json:"cost_price"`
	StockQuantity  int64               `db:"stock_quantity" json:"stock_quantity"`
	CreatedAt      time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time           `db:"updated_at" json:"updated_at"`
}

// PriceFor resolves the unit price under the given pricing mode. The wholesale
// price only applies when it is set and positive.
func (p Product) PriceFor(mode PricingMode) decimal.Decimal {
	if mode == PricingWholesale && p.WholesalePrice.Valid && p.WholesalePrice.Decimal.IsPositive() {
		return p.WholesalePrice.Decimal
	}
	return p.Price
}

func (p Product) IsLowStock() bool {
	return p.StockQuantity < LowStockThreshold
}

// ProductPatch is a partial update; nil fields are left untouched. An
// invalid NullDecimal clears the optional price.
type ProductPatch struct {
	Name           *string
	Category       *string
	Price          *decimal.Decimal
	WholesalePrice *decimal.NullDecimal
	CostPrice      *decimal.NullDecimal
	StockQuantity  *int64
}

func (p ProductPatch) Empty() bool {
	return p.Name == nil && p.Category == nil && p.Price == nil &&
		p.WholesalePrice == nil && p.CostPrice == nil && p.StockQuantity == nil
}
