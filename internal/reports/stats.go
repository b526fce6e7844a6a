package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"counterpos/m/domain"
)

const (
	DefaultTrendDays = 7
	MaxTrendDays     = 90
)

var hundred = decimal.NewFromInt(100)

type Dashboard struct {
	TodayRevenue     decimal.Decimal  `json:"today_revenue"`
	TodaySalesCount  int              `json:"today_sales_count"`
	WeekRevenue      decimal.Decimal  `json:"week_revenue"`
	WeekSalesCount   int              `json:"week_sales_count"`
	MonthRevenue     decimal.Decimal  `json:"month_revenue"`
	MonthSalesCount  int              `json:"month_sales_count"`
	LowStockCount    int              `json:"low_stock_count"`
	LowStockProducts []domain.Product `json:"low_stock_products"`
	TotalProducts    int              `json:"total_products"`
}

// EmptyDashboard is served when the underlying reads fail.
func EmptyDashboard() Dashboard {
	return Dashboard{
		TodayRevenue:     decimal.Zero,
		WeekRevenue:      decimal.Zero,
		MonthRevenue:     decimal.Zero,
		LowStockProducts: []domain.Product{},
	}
}

// Trend is revenue per local calendar day, oldest first.
type Trend struct {
	Labels []string          `json:"labels"`
	Dates  []string          `json:"dates"`
	Data   []decimal.Decimal `json:"data"`
}

type CategoryStats struct {
	Labels []string          `json:"labels"`
	Counts []int             `json:"counts"`
	Values []decimal.Decimal `json:"values"`
}

type SalesSummary struct {
	TotalSales        int             `json:"total_sales"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalDiscount     decimal.Decimal `json:"total_discount"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
}

type ProductMargin struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	Margin        decimal.Decimal `json:"margin"`
	MarginPercent decimal.Decimal `json:"margin_percent"`
	StockQuantity int64           `json:"stock_quantity"`
}

type ProfitStats struct {
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	TotalCost      decimal.Decimal `json:"total_cost"`
	GrossProfit    decimal.Decimal `json:"gross_profit"`
	ProfitMargin   decimal.Decimal `json:"profit_margin"`
	ProductMargins []ProductMargin `json:"product_margins"`
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// BuildDashboard reduces the catalog and sales history. Today starts at local
// midnight, the week is the rolling seven days before now and the month
// starts on the local first.
func BuildDashboard(products []domain.Product, sales []domain.Sale, now time.Time) Dashboard {
	d := EmptyDashboard()
	today := startOfDay(now)
	weekAgo := now.Add(-7 * 24 * time.Hour)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	for _, s := range sales {
		at := s.CreatedAt
		if !at.Before(today) {
			d.TodayRevenue = d.TodayRevenue.Add(s.TotalAmount)
			d.TodaySalesCount++
		}
		if !at.Before(weekAgo) {
			d.WeekRevenue = d.WeekRevenue.Add(s.TotalAmount)
			d.WeekSalesCount++
		}
		if !at.Before(monthStart) {
			d.MonthRevenue = d.MonthRevenue.Add(s.TotalAmount)
			d.MonthSalesCount++
		}
	}

	for _, p := range products {
		if p.IsLowStock() {
			d.LowStockProducts = append(d.LowStockProducts, p)
		}
	}
	sort.SliceStable(d.LowStockProducts, func(i, j int) bool {
		return d.LowStockProducts[i].StockQuantity < d.LowStockProducts[j].StockQuantity
	})
	d.LowStockCount = len(d.LowStockProducts)
	d.TotalProducts = len(products)
	return d
}

// ClampTrendDays maps a requested window onto 1..MaxTrendDays, defaulting
// non-positive requests.
func ClampTrendDays(days int) int {
	if days <= 0 {
		return DefaultTrendDays
	}
	if days > MaxTrendDays {
		return MaxTrendDays
	}
	return days
}

// BuildTrend buckets sales by local calendar day over the last days days,
// today included. Days without sales are zero.
func BuildTrend(sales []domain.Sale, days int, now time.Time) Trend {
	days = ClampTrendDays(days)
	loc := now.Location()
	today := startOfDay(now)

	t := Trend{
		Labels: make([]string, 0, days),
		Dates:  make([]string, 0, days),
		Data:   make([]decimal.Decimal, days),
	}
	index := make(map[string]int, days)
	for i := days - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		key := day.Format("2006-01-02")
		index[key] = len(t.Dates)
		t.Dates = append(t.Dates, key)
		t.Labels = append(t.Labels, day.Format("Mon 2"))
	}
	for i := range t.Data {
		t.Data[i] = decimal.Zero
	}

	for _, s := range sales {
		key := s.CreatedAt.In(loc).Format("2006-01-02")
		if i, ok := index[key]; ok {
			t.Data[i] = t.Data[i].Add(s.TotalAmount)
		}
	}
	return t
}

// BuildCategories counts products and sums stock value (stock x price) per
// category, ordered by category name.
func BuildCategories(products []domain.Product) CategoryStats {
	type bucket struct {
		count int
		value decimal.Decimal
	}
	buckets := map[string]*bucket{}
	for _, p := range products {
		b, ok := buckets[p.Category]
		if !ok {
			b = &bucket{value: decimal.Zero}
			buckets[p.Category] = b
		}
		b.count++
		b.value = b.value.Add(p.Price.Mul(decimal.NewFromInt(p.StockQuantity)))
	}

	stats := CategoryStats{Labels: []string{}, Counts: []int{}, Values: []decimal.Decimal{}}
	for label := range buckets {
		stats.Labels = append(stats.Labels, label)
	}
	sort.Strings(stats.Labels)
	for _, label := range stats.Labels {
		stats.Counts = append(stats.Counts, buckets[label].count)
		stats.Values = append(stats.Values, buckets[label].value)
	}
	return stats
}

// BuildSummary totals sales created within [from, to]; nil bounds are open.
func BuildSummary(sales []domain.Sale, from, to *time.Time) SalesSummary {
	summary := SalesSummary{TotalRevenue: decimal.Zero, TotalDiscount: decimal.Zero, AverageOrderValue: decimal.Zero}
	for _, s := range sales {
		if from != nil && s.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && s.CreatedAt.After(*to) {
			continue
		}
		summary.TotalSales++
		summary.TotalRevenue = summary.TotalRevenue.Add(s.TotalAmount)
		summary.TotalDiscount = summary.TotalDiscount.Add(s.DiscountAmount)
	}
	if summary.TotalSales > 0 {
		summary.AverageOrderValue = summary.TotalRevenue.Div(decimal.NewFromInt(int64(summary.TotalSales))).Round(2)
	}
	return summary
}

// BuildProfit values every sold line at the product's current cost price.
// Lines without a known cost count as zero cost.
func BuildProfit(products []domain.Product, costs []domain.SaleItemCost) ProfitStats {
	stats := ProfitStats{TotalRevenue: decimal.Zero, TotalCost: decimal.Zero, ProfitMargin: decimal.Zero}
	for _, c := range costs {
		qty := decimal.NewFromInt(c.Quantity)
		stats.TotalRevenue = stats.TotalRevenue.Add(c.PriceAtSale.Mul(qty))
		if c.CostPrice.Valid {
			stats.TotalCost = stats.TotalCost.Add(c.CostPrice.Decimal.Mul(qty))
		}
	}
	stats.GrossProfit = stats.TotalRevenue.Sub(stats.TotalCost)
	if stats.TotalRevenue.IsPositive() {
		stats.ProfitMargin = stats.GrossProfit.Div(stats.TotalRevenue).Mul(hundred).Round(2)
	}

	stats.ProductMargins = make([]ProductMargin, 0, len(products))
	for _, p := range products {
		cost := decimal.Zero
		if p.CostPrice.Valid {
			cost = p.CostPrice.Decimal
		}
		m := ProductMargin{
			ID:            p.ID,
			Name:          p.Name,
			Price:         p.Price,
			CostPrice:     cost,
			Margin:        p.Price.Sub(cost),
			MarginPercent: decimal.Zero,
			StockQuantity: p.StockQuantity,
		}
		if !cost.IsZero() && p.Price.IsPositive() {
			m.MarginPercent = m.Margin.Div(p.Price).Mul(hundred).Round(2)
		}
		stats.ProductMargins = append(stats.ProductMargins, m)
	}
	return stats
}
