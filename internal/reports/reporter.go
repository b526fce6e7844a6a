package reports

import (
	"context"
	"time"

	"counterpos/m/domain"
	"counterpos/m/internal/store"
)

// Reporter answers the dashboard and sales-report queries.
type Reporter interface {
	Dashboard(ctx context.Context) (Dashboard, error)
	SalesTrend(ctx context.Context, days int) (Trend, error)
	Categories(ctx context.Context) (CategoryStats, error)
	SalesSummary(ctx context.Context, from, to *time.Time) (SalesSummary, error)
	Profit(ctx context.Context) (ProfitStats, error)
}

// Source is the row access a ScanReporter needs.
type Source interface {
	ListProducts(ctx context.Context, filter store.ProductFilter) ([]domain.Product, error)
	ListSales(ctx context.Context) ([]domain.Sale, error)
	SaleItemCosts(ctx context.Context) ([]domain.SaleItemCost, error)
}

// ScanReporter reads full tables and reduces them in memory. It suits a
// single store's volume; aggregate queries can replace it behind Reporter.
type ScanReporter struct {
	src Source
	loc *time.Location
	now func() time.Time
}

func NewScanReporter(src Source, loc *time.Location) *ScanReporter {
	if loc == nil {
		loc = time.UTC
	}
	return &ScanReporter{src: src, loc: loc, now: time.Now}
}

func (r *ScanReporter) localNow() time.Time {
	return r.now().In(r.loc)
}

func (r *ScanReporter) Dashboard(ctx context.Context) (Dashboard, error) {
	products, err := r.src.ListProducts(ctx, store.ProductFilter{})
	if err != nil {
		return EmptyDashboard(), err
	}
	sales, err := r.src.ListSales(ctx)
	if err != nil {
		return EmptyDashboard(), err
	}
	return BuildDashboard(products, sales, r.localNow()), nil
}

func (r *ScanReporter) SalesTrend(ctx context.Context, days int) (Trend, error) {
	sales, err := r.src.ListSales(ctx)
	if err != nil {
		return BuildTrend(nil, days, r.localNow()), err
	}
	return BuildTrend(sales, days, r.localNow()), nil
}

func (r *ScanReporter) Categories(ctx context.Context) (CategoryStats, error) {
	products, err := r.src.ListProducts(ctx, store.ProductFilter{})
	if err != nil {
		return BuildCategories(nil), err
	}
	return BuildCategories(products), nil
}

func (r *ScanReporter) SalesSummary(ctx context.Context, from, to *time.Time) (SalesSummary, error) {
	sales, err := r.src.ListSales(ctx)
	if err != nil {
		return BuildSummary(nil, nil, nil), err
	}
	return BuildSummary(sales, from, to), nil
}

func (r *ScanReporter) Profit(ctx context.Context) (ProfitStats, error) {
	products, err := r.src.ListProducts(ctx, store.ProductFilter{})
	if err != nil {
		return BuildProfit(nil, nil), err
	}
	costs, err := r.src.SaleItemCosts(ctx)
	if err != nil {
		return BuildProfit(nil, nil), err
	}
	return BuildProfit(products, costs), nil
}
