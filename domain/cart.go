package domain

import "github.com/shopspring/decimal"

// CartLine is a product snapshot with a quantity and a unit price locked in
// when the line was first added.
type CartLine struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Category  string          `json:"category"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int64           `json:"quantity"`
}

func (l CartLine) Amount() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}

// Cart accumulates products for one terminal before checkout.
type Cart struct {
	Mode  PricingMode `json:"pricing_mode"`
	Lines []CartLine  `json:"lines"`
}

func NewCart() Cart {
	return Cart{Mode: PricingRetail, Lines: []CartLine{}}
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c *Cart) find(productID string) int {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Add puts one unit of p into the cart. Out-of-stock products are ignored and
// an existing line never grows past the product's stock. It reports whether
// the cart changed.
func (c *Cart) Add(p Product) bool {
	if p.StockQuantity <= 0 {
		return false
	}
	if i := c.find(p.ID); i >= 0 {
		if c.Lines[i].Quantity >= p.StockQuantity {
			return false
		}
		c.Lines[i].Quantity++
		return true
	}
	c.Lines = append(c.Lines, CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		SKU:       p.SKU,
		Category:  p.Category,
		UnitPrice: p.PriceFor(c.mode()),
		Quantity:  1,
	})
	return true
}

func (c *Cart) Remove(productID string) bool {
	i := c.find(productID)
	if i < 0 {
		return false
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	return true
}

// AdjustQuantity shifts a line's quantity by delta. The change is refused when
// the result would drop below 1 or exceed stock, the product's live quantity.
func (c *Cart) AdjustQuantity(productID string, delta, stock int64) bool {
	i := c.find(productID)
	if i < 0 {
		return false
	}
	next := c.Lines[i].Quantity + delta
	if next < 1 || next > stock {
		return false
	}
	c.Lines[i].Quantity = next
	return true
}

// SetPricingMode switches the mode and always empties the cart so retail and
// wholesale lines never mix.
func (c *Cart) SetPricingMode(mode PricingMode) {
	c.Mode = mode
	c.Clear()
}

func (c *Cart) Clear() {
	c.Lines = []CartLine{}
}

func (c *Cart) SubTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.Lines {
		sum = sum.Add(l.Amount())
	}
	return sum
}

// Total applies a discount and floors the result at zero. Negative discounts
// count as none.
func (c *Cart) Total(discount decimal.Decimal) decimal.Decimal {
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	total := c.SubTotal().Sub(discount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

func (c *Cart) mode() PricingMode {
	if c.Mode == "" {
		return PricingRetail
	}
	return c.Mode
}

// Clone returns a copy that shares no line storage with c.
func (c Cart) Clone() Cart {
	out := Cart{Mode: c.Mode, Lines: make([]CartLine, len(c.Lines))}
	copy(out.Lines, c.Lines)
	return out
}
