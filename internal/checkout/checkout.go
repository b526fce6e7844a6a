package checkout

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"counterpos/m/domain"
	"counterpos/m/internal/receipt"
)

// SaleStore persists sales atomically.
type SaleStore interface {
	CommitSale(ctx context.Context, sale domain.Sale, items []domain.SaleItem) (domain.Sale, bool, error)
	SaleByIdempotencyKey(ctx context.Context, key string) (domain.Sale, error)
	GetSale(ctx context.Context, id string) (domain.Sale, error)
	SaleLines(ctx context.Context, saleID string) ([]domain.SaleItemDetail, error)
}

// Request holds the per-sale fields entered at the counter.
type Request struct {
	CustomerName   string
	CustomerID     string
	Discount       decimal.Decimal
	PaymentMethod  domain.PaymentMethod
	IdempotencyKey string
}

type Service struct {
	sales SaleStore
	loc   *time.Location
	now   func() time.Time
	intn  func(n int) int
}

func NewService(sales SaleStore, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{sales: sales, loc: loc, now: time.Now, intn: rand.Intn}
}

// Checkout turns cart into a committed sale and returns its receipt. Stock
// for every line is taken in the same transaction as the sale rows; when any
// line is short the whole sale fails with ErrInsufficientStock. A request
// whose idempotency key was already used gets the recorded sale back, even
// once the cart has been cleared.
func (s *Service) Checkout(ctx context.Context, cart domain.Cart, req Request) (domain.Receipt, error) {
	if key := strings.TrimSpace(req.IdempotencyKey); key != "" {
		prior, err := s.sales.SaleByIdempotencyKey(ctx, key)
		if err == nil {
			return s.replay(ctx, prior.ID)
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return domain.Receipt{}, fmt.Errorf("checkout: %w", err)
		}
	}
	if cart.IsEmpty() {
		return domain.Receipt{}, domain.ErrEmptyCart
	}
	method := req.PaymentMethod
	if method == "" {
		method = domain.PaymentCash
	}
	if !method.Valid() {
		return domain.Receipt{}, fmt.Errorf("payment method %q: %w", method, domain.ErrInvalidInput)
	}

	subTotal := cart.SubTotal()
	total := cart.Total(req.Discount)
	// The recorded discount is what was actually taken off, so
	// subtotal - discount = total always holds on the receipt.
	discount := subTotal.Sub(total)

	now := s.now()
	sale := domain.Sale{
		DisplayID:      receipt.NewDisplayID(now.In(s.loc), s.intn),
		CustomerName:   strings.TrimSpace(req.CustomerName),
		CustomerID:     optional(req.CustomerID),
		TotalAmount:    total,
		DiscountAmount: discount,
		PaymentMethod:  method,
		IdempotencyKey: optional(req.IdempotencyKey),
		CreatedAt:      now.UTC(),
	}
	items := make([]domain.SaleItem, 0, len(cart.Lines))
	lines := make([]domain.ReceiptLine, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		productID := l.ProductID
		items = append(items, domain.SaleItem{ProductID: &productID, Quantity: l.Quantity, PriceAtSale: l.UnitPrice})
		lines = append(lines, domain.ReceiptLine{
			Name:      l.Name,
			SKU:       l.SKU,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Amount:    l.Amount(),
		})
	}

	committed, replayed, err := s.sales.CommitSale(ctx, sale, items)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("checkout: %w", err)
	}
	if replayed {
		return s.replay(ctx, committed.ID)
	}

	return domain.Receipt{
		SaleID:        committed.ID,
		DisplayID:     committed.DisplayID,
		IssuedAt:      committed.CreatedAt,
		CustomerName:  committed.CustomerName,
		PaymentMethod: committed.PaymentMethod,
		Lines:         lines,
		SubTotal:      subTotal,
		Discount:      discount,
		Total:         total,
	}, nil
}

func (s *Service) replay(ctx context.Context, saleID string) (domain.Receipt, error) {
	rec, err := s.ReceiptFor(ctx, saleID)
	if err != nil {
		return domain.Receipt{}, err
	}
	rec.Replayed = true
	return rec, nil
}

// ReceiptFor rebuilds the receipt of a recorded sale from its stored lines.
func (s *Service) ReceiptFor(ctx context.Context, saleID string) (domain.Receipt, error) {
	sale, err := s.sales.GetSale(ctx, saleID)
	if err != nil {
		return domain.Receipt{}, err
	}
	details, err := s.sales.SaleLines(ctx, saleID)
	if err != nil {
		return domain.Receipt{}, err
	}

	subTotal := decimal.Zero
	lines := make([]domain.ReceiptLine, 0, len(details))
	for _, d := range details {
		sku := ""
		if d.ProductSKU != nil {
			sku = *d.ProductSKU
		}
		amount := d.Amount()
		subTotal = subTotal.Add(amount)
		lines = append(lines, domain.ReceiptLine{
			Name:      d.DisplayName(),
			SKU:       sku,
			Quantity:  d.Quantity,
			UnitPrice: d.PriceAtSale,
			Amount:    amount,
		})
	}
	return domain.Receipt{
		SaleID:        sale.ID,
		DisplayID:     sale.DisplayID,
		IssuedAt:      sale.CreatedAt,
		CustomerName:  sale.CustomerName,
		PaymentMethod: sale.PaymentMethod,
		Lines:         lines,
		SubTotal:      subTotal,
		Discount:      sale.DiscountAmount,
		Total:         sale.TotalAmount,
	}, nil
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
