package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func product(id string, price int64, stock int64) Product {
	return Product{ID: id, Name: "Product " + id, SKU: "SKU-" + id, Category: "Sports", Price: decimal.NewFromInt(price), StockQuantity: stock}
}

func TestCartAddSkipsOutOfStock(t *testing.T) {
	c := NewCart()
	if c.Add(product("a", 100, 0)) {
		t.Fatalf("expected add of out-of-stock product to be refused")
	}
	if !c.IsEmpty() {
		t.Fatalf("expected empty cart, got %d lines", len(c.Lines))
	}
}

func TestCartAddClampsToStock(t *testing.T) {
	c := NewCart()
	p := product("a", 100, 2)
	c.Add(p)
	c.Add(p)
	if c.Add(p) {
		t.Fatalf("expected third add to be refused at stock 2")
	}
	if got := c.Lines[0].Quantity; got != 2 {
		t.Fatalf("expected quantity 2, got %d", got)
	}
}

func TestCartPricingModes(t *testing.T) {
	withWholesale := product("a", 100, 5)
	withWholesale.WholesalePrice = decimal.NewNullDecimal(decimal.NewFromInt(80))
	zeroWholesale := product("b", 50, 5)
	zeroWholesale.WholesalePrice = decimal.NewNullDecimal(decimal.Zero)
	plain := product("c", 30, 5)

	cases := []struct {
		name string
		mode PricingMode
		p    Product
		want int64
	}{
		{name: "retail ignores wholesale", mode: PricingRetail, p: withWholesale, want: 100},
		{name: "wholesale uses wholesale", mode: PricingWholesale, p: withWholesale, want: 80},
		{name: "zero wholesale falls back", mode: PricingWholesale, p: zeroWholesale, want: 50},
		{name: "unset wholesale falls back", mode: PricingWholesale, p: plain, want: 30},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewCart()
			c.SetPricingMode(tc.mode)
			c.Add(tc.p)
			if !c.Lines[0].UnitPrice.Equal(decimal.NewFromInt(tc.want)) {
				t.Fatalf("expected unit price %d, got %s", tc.want, c.Lines[0].UnitPrice)
			}
		})
	}
}

func TestCartLockedPriceSurvivesProductChange(t *testing.T) {
	c := NewCart()
	p := product("a", 100, 5)
	c.Add(p)
	p.Price = decimal.NewFromInt(500)
	c.Add(p)
	if !c.Lines[0].UnitPrice.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected locked price 100, got %s", c.Lines[0].UnitPrice)
	}
}

func TestCartAdjustQuantity(t *testing.T) {
	c := NewCart()
	p := product("a", 100, 3)
	c.Add(p)
	c.Add(p)
	c.Add(p)

	if c.AdjustQuantity("a", 1, p.StockQuantity) {
		t.Fatalf("expected +1 beyond stock to be refused")
	}
	if c.Lines[0].Quantity != 3 {
		t.Fatalf("expected quantity to stay 3, got %d", c.Lines[0].Quantity)
	}
	if !c.AdjustQuantity("a", -2, p.StockQuantity) {
		t.Fatalf("expected -2 to apply")
	}
	if c.AdjustQuantity("a", -1, p.StockQuantity) {
		t.Fatalf("expected drop below 1 to be refused")
	}
	if c.Lines[0].Quantity != 1 {
		t.Fatalf("expected quantity 1, got %d", c.Lines[0].Quantity)
	}
	if c.AdjustQuantity("missing", 1, 10) {
		t.Fatalf("expected adjust of absent line to be refused")
	}
}

func TestCartTotals(t *testing.T) {
	c := NewCart()
	a := product("a", 100, 10)
	c.Add(a)
	c.Add(a)
	c.Add(product("b", 50, 10))

	if !c.SubTotal().Equal(decimal.NewFromInt(250)) {
		t.Fatalf("expected subtotal 250, got %s", c.SubTotal())
	}
	if got := c.Total(decimal.NewFromInt(20)); !got.Equal(decimal.NewFromInt(230)) {
		t.Fatalf("expected total 230, got %s", got)
	}
	if got := c.Total(decimal.NewFromInt(1000)); !got.IsZero() {
		t.Fatalf("expected total floored at 0, got %s", got)
	}
	if got := c.Total(decimal.NewFromInt(-5)); !got.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("expected negative discount ignored, got %s", got)
	}
}

func TestCartSwitchingModeClears(t *testing.T) {
	for _, mode := range []PricingMode{PricingWholesale, PricingRetail, PricingRetail} {
		c := NewCart()
		c.Add(product("a", 100, 10))
		c.SetPricingMode(mode)
		if !c.IsEmpty() {
			t.Fatalf("expected empty cart after switching to %s", mode)
		}
		if c.Mode != mode {
			t.Fatalf("expected mode %s, got %s", mode, c.Mode)
		}
	}
}

func TestCartRemove(t *testing.T) {
	c := NewCart()
	c.Add(product("a", 100, 10))
	c.Add(product("b", 50, 10))
	c.Remove("a")
	if len(c.Lines) != 1 || c.Lines[0].ProductID != "b" {
		t.Fatalf("expected only b to remain, got %+v", c.Lines)
	}
}

func TestCartCloneIsIndependent(t *testing.T) {
	c := NewCart()
	c.Add(product("a", 100, 10))
	clone := c.Clone()
	clone.Lines[0].Quantity = 9
	if c.Lines[0].Quantity != 1 {
		t.Fatalf("expected original untouched, got %d", c.Lines[0].Quantity)
	}
}
