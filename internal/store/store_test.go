package store

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"counterpos/m/domain"
	"counterpos/m/internal/database"
	"counterpos/m/internal/migrations"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	db, err := database.Connect("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Run(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(db, opts...)
}

func mustProduct(t *testing.T, s *Store, name string, price string, stock int64) domain.Product {
	t.Helper()
	p, err := s.CreateProduct(context.Background(), domain.Product{
		Name:          name,
		Category:      "Sports",
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
	})
	if err != nil {
		t.Fatalf("create product %s: %v", name, err)
	}
	return p
}

func stockOf(t *testing.T, s *Store, id string) int64 {
	t.Helper()
	p, err := s.GetProduct(context.Background(), id)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	return p.StockQuantity
}

func line(productID string, qty int64, price string) domain.SaleItem {
	id := productID
	return domain.SaleItem{ProductID: &id, Quantity: qty, PriceAtSale: decimal.RequireFromString(price)}
}

func TestNewSKUFormat(t *testing.T) {
	at := time.UnixMilli(1700000000000)
	cases := []struct {
		category string
		prefix   string
	}{
		{"Sports", "SPO"},
		{"wooden", "WOO"},
		{"", "GEN"},
		{"  ", "GEN"},
		{"AB", "AB"},
	}
	for _, tc := range cases {
		sku := NewSKU(tc.category, at, func(int) int { return 10 })
		want := tc.prefix + "-LOYW3V28-AAA"
		if sku != want {
			t.Fatalf("NewSKU(%q) = %q, want %q", tc.category, sku, want)
		}
	}
}

func TestCreateProductRetriesSKUCollision(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	calls := 0
	// The first product consumes three draws of 0; the second sees 0,0,0 again
	// before moving on to 1,1,1.
	draws := []int{0, 0, 0, 0, 0, 0, 1, 1, 1}
	s := newTestStore(t,
		WithClock(func() time.Time { return fixed }),
		WithRandom(func(int) int { d := draws[calls]; calls++; return d }),
	)

	first := mustProduct(t, s, "Cup", "100", 5)
	second := mustProduct(t, s, "Plaque", "50", 5)
	if first.SKU == second.SKU {
		t.Fatalf("expected distinct SKUs, both %q", first.SKU)
	}
	if !regexp.MustCompile(`^SPO-[0-9A-Z]+-111$`).MatchString(second.SKU) {
		t.Fatalf("unexpected retried SKU %q", second.SKU)
	}
}

func TestCreateProductGivesUpAfterRepeatedCollisions(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := newTestStore(t,
		WithClock(func() time.Time { return fixed }),
		WithRandom(func(int) int { return 0 }),
	)
	mustProduct(t, s, "Cup", "100", 5)

	_, err := s.CreateProduct(context.Background(), domain.Product{Name: "Again", Category: "Sports", Price: decimal.NewFromInt(1)})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestCreateProductValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, err := s.CreateProduct(ctx, domain.Product{Name: "Medal", Price: decimal.NewFromInt(25)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Category != domain.DefaultCategory || p.SKU[:3] != "GEN" {
		t.Fatalf("expected default category and GEN prefix, got %q %q", p.Category, p.SKU)
	}

	bad := []domain.Product{
		{Name: "", Price: decimal.NewFromInt(1)},
		{Name: "x", Price: decimal.NewFromInt(-1)},
		{Name: "x", Price: decimal.NewFromInt(1), StockQuantity: -1},
	}
	for _, in := range bad {
		if _, err := s.CreateProduct(ctx, in); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %+v, got %v", in, err)
		}
	}
}

func TestListProductsFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustProduct(t, s, "Golden Cup", "100", 5)
	mustProduct(t, s, "Silver Cup", "80", 5)
	_, err := s.CreateProduct(ctx, domain.Product{Name: "Oak Plaque", Category: "Wooden", Price: decimal.NewFromInt(40), StockQuantity: 2})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	cases := []struct {
		filter ProductFilter
		want   int
	}{
		{ProductFilter{}, 3},
		{ProductFilter{Query: "cup"}, 2},
		{ProductFilter{Query: "GOLD"}, 1},
		{ProductFilter{Query: "spo-"}, 2},
		{ProductFilter{Category: "Wooden"}, 1},
		{ProductFilter{Query: "cup", Category: "Wooden"}, 0},
	}
	for _, tc := range cases {
		got, err := s.ListProducts(ctx, tc.filter)
		if err != nil {
			t.Fatalf("list %+v: %v", tc.filter, err)
		}
		if len(got) != tc.want {
			t.Fatalf("list %+v: expected %d, got %d", tc.filter, tc.want, len(got))
		}
	}

	categories, err := s.Categories(ctx)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(categories) != 2 || categories[0] != "Sports" || categories[1] != "Wooden" {
		t.Fatalf("unexpected categories %v", categories)
	}

	low, err := s.LowStock(ctx)
	if err != nil {
		t.Fatalf("low stock: %v", err)
	}
	if len(low) != 1 || low[0].Name != "Oak Plaque" {
		t.Fatalf("unexpected low stock %+v", low)
	}
}

func TestUpdateProduct(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := mustProduct(t, s, "Cup", "100", 5)

	price := decimal.NewFromInt(120)
	stock := int64(9)
	updated, err := s.UpdateProduct(ctx, p.ID, domain.ProductPatch{Price: &price, StockQuantity: &stock})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.Price.Equal(price) || updated.StockQuantity != 9 || updated.Name != "Cup" {
		t.Fatalf("unexpected product after update %+v", updated)
	}

	negative := int64(-1)
	if _, err := s.UpdateProduct(ctx, p.ID, domain.ProductPatch{StockQuantity: &negative}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := s.UpdateProduct(ctx, p.ID, domain.ProductPatch{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty patch, got %v", err)
	}
	if _, err := s.UpdateProduct(ctx, "missing", domain.ProductPatch{StockQuantity: &stock}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateProductClearsOptionalPrices(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p, err := s.CreateProduct(ctx, domain.Product{
		Name:           "Medal",
		Price:          decimal.NewFromInt(50),
		WholesalePrice: decimal.NewNullDecimal(decimal.NewFromInt(30)),
		CostPrice:      decimal.NewNullDecimal(decimal.NewFromInt(20)),
		StockQuantity:  4,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	cleared := decimal.NullDecimal{}
	updated, err := s.UpdateProduct(ctx, p.ID, domain.ProductPatch{WholesalePrice: &cleared})
	if err != nil {
		t.Fatalf("clear wholesale: %v", err)
	}
	if updated.WholesalePrice.Valid || !updated.CostPrice.Valid {
		t.Fatalf("expected only wholesale cleared, got %+v", updated)
	}

	cost := decimal.NewNullDecimal(decimal.RequireFromString("22.5"))
	updated, err = s.UpdateProduct(ctx, p.ID, domain.ProductPatch{CostPrice: &cost})
	if err != nil {
		t.Fatalf("set cost: %v", err)
	}
	if !updated.CostPrice.Decimal.Equal(cost.Decimal) {
		t.Fatalf("expected cost 22.5, got %s", updated.CostPrice.Decimal)
	}
	if _, err := s.UpdateProduct(ctx, p.ID, domain.ProductPatch{CostPrice: &cleared}); err != nil {
		t.Fatalf("clear cost: %v", err)
	}
	if got, _ := s.GetProduct(ctx, p.ID); got.CostPrice.Valid {
		t.Fatalf("expected cost price cleared, got %s", got.CostPrice.Decimal)
	}

	negative := decimal.NewNullDecimal(decimal.NewFromInt(-1))
	if _, err := s.UpdateProduct(ctx, p.ID, domain.ProductPatch{WholesalePrice: &negative}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCommitSaleDecrementsStock(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	cup := mustProduct(t, s, "Cup", "100", 5)
	medal := mustProduct(t, s, "Medal", "25", 10)

	sale, replayed, err := s.CommitSale(ctx, domain.Sale{
		DisplayID:      "BILL-01032026-1000-ABCD",
		TotalAmount:    decimal.NewFromInt(250),
		DiscountAmount: decimal.Zero,
		PaymentMethod:  domain.PaymentCash,
	}, []domain.SaleItem{line(cup.ID, 2, "100"), line(medal.ID, 2, "25")})
	if err != nil || replayed {
		t.Fatalf("commit: replayed=%v err=%v", replayed, err)
	}
	if stockOf(t, s, cup.ID) != 3 || stockOf(t, s, medal.ID) != 8 {
		t.Fatalf("stock not decremented")
	}

	lines, err := s.SaleLines(ctx, sale.ID)
	if err != nil {
		t.Fatalf("lines: %v", err)
	}
	if len(lines) != 2 || lines[0].DisplayName() != "Cup" || lines[1].DisplayName() != "Medal" {
		t.Fatalf("unexpected lines %+v", lines)
	}
	if !lines[0].PriceAtSale.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected price snapshot %s", lines[0].PriceAtSale)
	}
}

func TestCommitSaleInsufficientStockRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	cup := mustProduct(t, s, "Cup", "100", 5)
	medal := mustProduct(t, s, "Medal", "25", 1)

	_, _, err := s.CommitSale(ctx, domain.Sale{
		DisplayID:     "BILL-X",
		TotalAmount:   decimal.NewFromInt(150),
		PaymentMethod: domain.PaymentCard,
	}, []domain.SaleItem{line(cup.ID, 1, "100"), line(medal.ID, 2, "25")})
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if stockOf(t, s, cup.ID) != 5 || stockOf(t, s, medal.ID) != 1 {
		t.Fatalf("stock changed on a rejected sale")
	}
	sales, err := s.ListSales(ctx)
	if err != nil {
		t.Fatalf("list sales: %v", err)
	}
	if len(sales) != 0 {
		t.Fatalf("expected no sales, got %d", len(sales))
	}
}

func TestCommitSaleUnknownProduct(t *testing.T) {
	s := newTestStore(t)
	_, _, err := s.CommitSale(context.Background(), domain.Sale{DisplayID: "B", PaymentMethod: domain.PaymentCash},
		[]domain.SaleItem{line("missing", 1, "10")})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCommitSaleConcurrentLastUnit(t *testing.T) {
	s := newTestStore(t)
	cup := mustProduct(t, s, "Cup", "100", 1)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.CommitSale(context.Background(), domain.Sale{
				DisplayID:     "BILL",
				TotalAmount:   decimal.NewFromInt(100),
				PaymentMethod: domain.PaymentCash,
			}, []domain.SaleItem{line(cup.ID, 1, "100")})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, domain.ErrInsufficientStock):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	if succeeded != 1 || rejected != 1 {
		t.Fatalf("expected one sale and one rejection, got %d/%d", succeeded, rejected)
	}
	if stockOf(t, s, cup.ID) != 0 {
		t.Fatalf("expected stock 0")
	}
}

func TestCommitSaleIdempotencyKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	cup := mustProduct(t, s, "Cup", "100", 5)
	key := "terminal-1-attempt-1"

	first, replayed, err := s.CommitSale(ctx, domain.Sale{
		DisplayID: "BILL-1", TotalAmount: decimal.NewFromInt(100), PaymentMethod: domain.PaymentUPI, IdempotencyKey: &key,
	}, []domain.SaleItem{line(cup.ID, 1, "100")})
	if err != nil || replayed {
		t.Fatalf("first commit: replayed=%v err=%v", replayed, err)
	}
	second, replayed, err := s.CommitSale(ctx, domain.Sale{
		DisplayID: "BILL-2", TotalAmount: decimal.NewFromInt(100), PaymentMethod: domain.PaymentUPI, IdempotencyKey: &key,
	}, []domain.SaleItem{line(cup.ID, 1, "100")})
	if err != nil || !replayed {
		t.Fatalf("second commit: replayed=%v err=%v", replayed, err)
	}
	if second.ID != first.ID || second.DisplayID != "BILL-1" {
		t.Fatalf("expected replay of %s, got %+v", first.ID, second)
	}
	if stockOf(t, s, cup.ID) != 4 {
		t.Fatalf("replay must not decrement stock again")
	}
}

func TestCommitSaleUpdatesCustomerStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	cup := mustProduct(t, s, "Cup", "100", 5)
	customer, err := s.CreateCustomer(ctx, NewCustomer{Name: "Asha", Phone: "98450"})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}

	for i := 0; i < 2; i++ {
		_, _, err := s.CommitSale(ctx, domain.Sale{
			DisplayID: "B", CustomerName: "Asha", CustomerID: &customer.ID,
			TotalAmount: decimal.NewFromInt(90), DiscountAmount: decimal.NewFromInt(10), PaymentMethod: domain.PaymentCash,
		}, []domain.SaleItem{line(cup.ID, 1, "100")})
		if err != nil {
			t.Fatalf("commit %d: %v", i, err)
		}
	}

	got, err := s.GetCustomer(ctx, customer.ID)
	if err != nil {
		t.Fatalf("get customer: %v", err)
	}
	if got.VisitCount != 2 || !got.TotalPurchases.Equal(decimal.NewFromInt(180)) {
		t.Fatalf("unexpected stats visits=%d total=%s", got.VisitCount, got.TotalPurchases)
	}

	missing := "nope"
	_, _, err = s.CommitSale(ctx, domain.Sale{DisplayID: "B", CustomerID: &missing, PaymentMethod: domain.PaymentCash},
		[]domain.SaleItem{line(cup.ID, 1, "100")})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown customer, got %v", err)
	}
	if stockOf(t, s, cup.ID) != 3 {
		t.Fatalf("failed sale must not change stock")
	}
}

func TestCustomerTotalsStayExact(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ribbon := mustProduct(t, s, "Ribbon", "0.1", 10)
	pin := mustProduct(t, s, "Pin", "0.2", 10)
	customer, err := s.CreateCustomer(ctx, NewCustomer{Name: "Asha"})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}

	for _, tc := range []struct {
		productID string
		amount    string
	}{
		{ribbon.ID, "0.1"},
		{pin.ID, "0.2"},
	} {
		_, _, err := s.CommitSale(ctx, domain.Sale{
			DisplayID: "B", CustomerID: &customer.ID,
			TotalAmount: decimal.RequireFromString(tc.amount), PaymentMethod: domain.PaymentCash,
		}, []domain.SaleItem{line(tc.productID, 1, tc.amount)})
		if err != nil {
			t.Fatalf("commit %s: %v", tc.amount, err)
		}
	}

	got, err := s.GetCustomer(ctx, customer.ID)
	if err != nil {
		t.Fatalf("get customer: %v", err)
	}
	if got.TotalPurchases.String() != "0.3" || got.VisitCount != 2 {
		t.Fatalf("expected total 0.3 over 2 visits, got %s over %d", got.TotalPurchases, got.VisitCount)
	}
	if p, _ := s.GetProduct(ctx, ribbon.ID); p.Price.String() != "0.1" {
		t.Fatalf("expected price 0.1, got %s", p.Price)
	}

	var kind string
	if err := s.db.Get(&kind, `SELECT typeof(total_purchases) FROM customers WHERE id = ?`, customer.ID); err != nil {
		t.Fatalf("read column type: %v", err)
	}
	if kind != "text" {
		t.Fatalf("expected money stored as text, got %s", kind)
	}
}

func TestSaleByIdempotencyKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	cup := mustProduct(t, s, "Cup", "100", 5)

	if _, err := s.SaleByIdempotencyKey(ctx, "unused"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	key := "attempt-1"
	sale, _, err := s.CommitSale(ctx, domain.Sale{
		DisplayID: "BILL-1", TotalAmount: decimal.NewFromInt(100), PaymentMethod: domain.PaymentCash, IdempotencyKey: &key,
	}, []domain.SaleItem{line(cup.ID, 1, "100")})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	got, err := s.SaleByIdempotencyKey(ctx, key)
	if err != nil || got.ID != sale.ID {
		t.Fatalf("expected sale %s, got %+v err=%v", sale.ID, got, err)
	}
}

func TestDeletedProductKeepsSaleLines(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	cup := mustProduct(t, s, "Cup", "100", 5)
	sale, _, err := s.CommitSale(ctx, domain.Sale{DisplayID: "B", TotalAmount: decimal.NewFromInt(100), PaymentMethod: domain.PaymentCash},
		[]domain.SaleItem{line(cup.ID, 1, "100")})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	if err := s.DeleteProduct(ctx, cup.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteProduct(ctx, cup.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}

	lines, err := s.SaleLines(ctx, sale.ID)
	if err != nil {
		t.Fatalf("lines: %v", err)
	}
	if len(lines) != 1 || lines[0].ProductID != nil || lines[0].DisplayName() != "Unknown" {
		t.Fatalf("unexpected lines after delete %+v", lines)
	}
	if !lines[0].PriceAtSale.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("price snapshot lost")
	}

	withItems, err := s.ListSalesWithItems(ctx)
	if err != nil {
		t.Fatalf("sales with items: %v", err)
	}
	if len(withItems) != 1 || len(withItems[0].Items) != 1 {
		t.Fatalf("unexpected sales with items %+v", withItems)
	}
}

func TestReturnsLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	cup := mustProduct(t, s, "Cup", "100", 5)
	sale, _, err := s.CommitSale(ctx, domain.Sale{DisplayID: "B", CustomerName: "Ravi", TotalAmount: decimal.NewFromInt(100), PaymentMethod: domain.PaymentCash},
		[]domain.SaleItem{line(cup.ID, 1, "100")})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	if _, err := s.CreateReturn(ctx, sale.ID, "", decimal.Zero); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero refund, got %v", err)
	}
	if _, err := s.CreateReturn(ctx, sale.ID, "", decimal.NewFromInt(101)); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for refund above total, got %v", err)
	}
	if _, err := s.CreateReturn(ctx, "missing", "", decimal.NewFromInt(1)); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown sale, got %v", err)
	}

	ret, err := s.CreateReturn(ctx, sale.ID, "damaged", decimal.NewFromInt(40))
	if err != nil {
		t.Fatalf("create return: %v", err)
	}
	if ret.Status != domain.ReturnPending {
		t.Fatalf("expected PENDING, got %s", ret.Status)
	}

	approved, err := s.SetReturnStatus(ctx, ret.ID, domain.ReturnApproved)
	if err != nil || approved.Status != domain.ReturnApproved {
		t.Fatalf("approve: %+v %v", approved, err)
	}
	if _, err := s.SetReturnStatus(ctx, ret.ID, domain.ReturnApproved); err != nil {
		t.Fatalf("re-approve should be idempotent: %v", err)
	}
	if _, err := s.SetReturnStatus(ctx, ret.ID, domain.ReturnRejected); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if _, err := s.SetReturnStatus(ctx, "missing", domain.ReturnRejected); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	list, err := s.ListReturns(ctx)
	if err != nil {
		t.Fatalf("list returns: %v", err)
	}
	if len(list) != 1 || list[0].SaleCustomerName != "Ravi" || list[0].Status != domain.ReturnApproved {
		t.Fatalf("unexpected returns %+v", list)
	}
	stats := domain.SummarizeReturns(list)
	if stats.Approved != 1 || !stats.RefundApproved.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stockOf(t, s, cup.ID) != 4 {
		t.Fatalf("approving a return must not restock")
	}
}

func TestCustomers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, in := range []NewCustomer{{Name: "Zoya", Phone: "111"}, {Name: "Arjun", Phone: "98450 12345"}, {Name: "arjuna"}} {
		if _, err := s.CreateCustomer(ctx, in); err != nil {
			t.Fatalf("create %s: %v", in.Name, err)
		}
	}
	if _, err := s.CreateCustomer(ctx, NewCustomer{Name: " "}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	all, err := s.ListCustomers(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].Name != "Arjun" {
		t.Fatalf("unexpected customers %+v", all)
	}

	found, err := s.SearchCustomers(ctx, "ARJ")
	if err != nil || len(found) != 2 {
		t.Fatalf("search by name: %d %v", len(found), err)
	}
	found, err = s.SearchCustomers(ctx, "98450")
	if err != nil || len(found) != 1 || found[0].Name != "Arjun" {
		t.Fatalf("search by phone: %+v %v", found, err)
	}

	if err := s.DeleteCustomer(ctx, all[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteCustomer(ctx, all[0].ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordStockPurchase(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	cup := mustProduct(t, s, "Cup", "100", 2)
	supplier := "Trophy House"

	purchase, err := s.RecordStockPurchase(ctx, domain.StockPurchase{
		ProductID: cup.ID, Quantity: 10, UnitCost: decimal.NewFromInt(60), Supplier: &supplier,
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	p, err := s.GetProduct(ctx, cup.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.StockQuantity != 12 || !p.CostPrice.Valid || !p.CostPrice.Decimal.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("unexpected product after restock %+v", p)
	}

	if _, err := s.RecordStockPurchase(ctx, domain.StockPurchase{ProductID: cup.ID, Quantity: 0, UnitCost: decimal.NewFromInt(1)}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := s.RecordStockPurchase(ctx, domain.StockPurchase{ProductID: "missing", Quantity: 1, UnitCost: decimal.NewFromInt(1)}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	list, err := s.ListStockPurchases(ctx, cup.ID)
	if err != nil || len(list) != 1 || list[0].ID != purchase.ID {
		t.Fatalf("unexpected purchases %+v %v", list, err)
	}
	list, err = s.ListStockPurchases(ctx, "other")
	if err != nil || len(list) != 0 {
		t.Fatalf("expected no purchases for other product, got %d %v", len(list), err)
	}
}

func TestExportAll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	cup := mustProduct(t, s, "Cup", "100", 5)
	sale, _, err := s.CommitSale(ctx, domain.Sale{DisplayID: "B", TotalAmount: decimal.NewFromInt(100), PaymentMethod: domain.PaymentCash},
		[]domain.SaleItem{line(cup.ID, 1, "100")})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if _, err := s.CreateReturn(ctx, sale.ID, "", decimal.NewFromInt(10)); err != nil {
		t.Fatalf("return: %v", err)
	}

	backup, err := s.ExportAll(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	d := backup.Data
	if len(d.Products) != 1 || len(d.Sales) != 1 || len(d.SaleItems) != 1 || len(d.Returns) != 1 {
		t.Fatalf("unexpected backup sizes %+v", d)
	}
	if d.Customers == nil || d.StockPurchases == nil {
		t.Fatalf("empty tables should export as empty lists")
	}
}
