package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"counterpos/m/domain"
)

const saleColumns = `id, display_id, customer_name, customer_id, total_amount, discount_amount, payment_method, idempotency_key, created_at`

// CommitSale records sale and its items in one transaction. Each line's stock
// is decremented with a conditional update; if any line lacks stock nothing is
// written and ErrInsufficientStock is returned. When the sale carries an
// idempotency key that was already used, the earlier sale is returned with
// replayed set and nothing is written.
func (s *Store) CommitSale(ctx context.Context, sale domain.Sale, items []domain.SaleItem) (domain.Sale, bool, error) {
	if len(items) == 0 {
		return domain.Sale{}, false, domain.ErrEmptyCart
	}
	if sale.ID == "" {
		sale.ID = uuid.NewString()
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = s.timestamp()
	}
	sale.CreatedAt = sale.CreatedAt.UTC()

	var replayed *domain.Sale
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if sale.IdempotencyKey != nil {
			prior, err := saleByKey(ctx, tx, *sale.IdempotencyKey)
			if err == nil {
				replayed = &prior
				return nil
			}
			if !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("lookup idempotency key: %w", err)
			}
		}

		for _, item := range items {
			if item.ProductID == nil || item.Quantity <= 0 {
				return fmt.Errorf("sale line: %w", domain.ErrInvalidInput)
			}
			if err := decrementStock(ctx, tx, *item.ProductID, item.Quantity, sale.CreatedAt); err != nil {
				return err
			}
		}

		if sale.CustomerID != nil {
			if err := addCustomerPurchase(ctx, tx, *sale.CustomerID, sale.TotalAmount, sale.CreatedAt); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO sales (`+saleColumns+`)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			sale.ID, sale.DisplayID, sale.CustomerName, sale.CustomerID, sale.TotalAmount,
			sale.DiscountAmount, sale.PaymentMethod, sale.IdempotencyKey, sale.CreatedAt); err != nil {
			return fmt.Errorf("insert sale: %w", err)
		}

		stmt, err := tx.PreparexContext(ctx, tx.Rebind(`INSERT INTO sale_items
            (id, sale_id, product_id, line_no, quantity, price_at_sale) VALUES (?, ?, ?, ?, ?, ?)`))
		if err != nil {
			return fmt.Errorf("prepare sale item insert: %w", err)
		}
		defer stmt.Close()
		for i, item := range items {
			if _, err := stmt.ExecContext(ctx, uuid.NewString(), sale.ID, item.ProductID, i, item.Quantity, item.PriceAtSale); err != nil {
				return fmt.Errorf("insert sale item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		// A concurrent request with the same key won the insert.
		if sale.IdempotencyKey != nil && isUniqueViolation(err) {
			prior, lookupErr := saleByKey(ctx, s.db, *sale.IdempotencyKey)
			if lookupErr == nil {
				return prior, true, nil
			}
		}
		return domain.Sale{}, false, err
	}
	if replayed != nil {
		return *replayed, true, nil
	}
	return sale, false, nil
}

func decrementStock(ctx context.Context, tx *sqlx.Tx, productID string, qty int64, at time.Time) error {
	res, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE products
        SET stock_quantity = stock_quantity - ?, updated_at = ?
        WHERE id = ? AND stock_quantity >= ?`), qty, at, productID, qty)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	var exists int
	if err := tx.GetContext(ctx, &exists, tx.Rebind(`SELECT COUNT(*) FROM products WHERE id = ?`), productID); err != nil {
		return fmt.Errorf("check product: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("product %s: %w", productID, domain.ErrNotFound)
	}
	return fmt.Errorf("product %s: %w", productID, domain.ErrInsufficientStock)
}

// addCustomerPurchase adds amount to the customer's running total with
// decimal arithmetic. Adding in SQL would go through REAL on SQLite.
func addCustomerPurchase(ctx context.Context, tx *sqlx.Tx, customerID string, amount decimal.Decimal, at time.Time) error {
	var total decimal.Decimal
	err := tx.GetContext(ctx, &total, tx.Rebind(`SELECT total_purchases FROM customers WHERE id = ?`+forUpdate(tx)), customerID)
	if err != nil {
		return notFound(err, "customer "+customerID)
	}
	_, err = tx.ExecContext(ctx, tx.Rebind(`UPDATE customers
        SET total_purchases = ?, visit_count = visit_count + 1, updated_at = ?
        WHERE id = ?`), total.Add(amount), at, customerID)
	if err != nil {
		return fmt.Errorf("update customer stats: %w", err)
	}
	return nil
}

func saleByKey(ctx context.Context, q queryer, key string) (domain.Sale, error) {
	var sale domain.Sale
	err := sqlx.GetContext(ctx, q, &sale, q.Rebind(`SELECT `+saleColumns+` FROM sales WHERE idempotency_key = ?`), key)
	return sale, err
}

// SaleByIdempotencyKey returns the sale recorded under key.
func (s *Store) SaleByIdempotencyKey(ctx context.Context, key string) (domain.Sale, error) {
	sale, err := saleByKey(ctx, s.db, key)
	if err != nil {
		return domain.Sale{}, notFound(err, "sale for idempotency key")
	}
	return sale, nil
}

func (s *Store) GetSale(ctx context.Context, id string) (domain.Sale, error) {
	var sale domain.Sale
	err := s.db.GetContext(ctx, &sale, s.db.Rebind(`SELECT `+saleColumns+` FROM sales WHERE id = ?`), id)
	if err != nil {
		return domain.Sale{}, notFound(err, "sale "+id)
	}
	return sale, nil
}

const saleLineQuery = `SELECT si.id, si.sale_id, si.product_id, si.line_no, si.quantity, si.price_at_sale,
        p.name AS product_name, p.sku AS product_sku
    FROM sale_items si
    LEFT JOIN products p ON p.id = si.product_id`

// SaleLines returns the items of one sale in cart order with the product's
// current name and SKU (nil once the product is deleted).
func (s *Store) SaleLines(ctx context.Context, saleID string) ([]domain.SaleItemDetail, error) {
	lines := []domain.SaleItemDetail{}
	err := s.db.SelectContext(ctx, &lines, s.db.Rebind(saleLineQuery+` WHERE si.sale_id = ? ORDER BY si.line_no`), saleID)
	if err != nil {
		return nil, fmt.Errorf("list sale lines: %w", err)
	}
	return lines, nil
}

// ListSales returns every sale newest first.
func (s *Store) ListSales(ctx context.Context) ([]domain.Sale, error) {
	sales := []domain.Sale{}
	if err := s.db.SelectContext(ctx, &sales, `SELECT `+saleColumns+` FROM sales ORDER BY created_at DESC`); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return sales, nil
}

// ListSalesWithItems returns every sale newest first with its lines attached.
func (s *Store) ListSalesWithItems(ctx context.Context) ([]domain.SaleWithItems, error) {
	sales, err := s.ListSales(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]domain.SaleWithItems, 0, len(sales))
	if len(sales) == 0 {
		return result, nil
	}

	ids := make([]string, 0, len(sales))
	for _, sale := range sales {
		ids = append(ids, sale.ID)
	}
	query, args, err := sqlx.In(saleLineQuery+` WHERE si.sale_id IN (?) ORDER BY si.sale_id, si.line_no`, ids)
	if err != nil {
		return nil, fmt.Errorf("build sale lines query: %w", err)
	}
	var lines []domain.SaleItemDetail
	if err := s.db.SelectContext(ctx, &lines, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list sale lines: %w", err)
	}

	bySale := make(map[string][]domain.SaleItemDetail, len(sales))
	for _, line := range lines {
		bySale[line.SaleID] = append(bySale[line.SaleID], line)
	}
	for _, sale := range sales {
		items := bySale[sale.ID]
		if items == nil {
			items = []domain.SaleItemDetail{}
		}
		result = append(result, domain.SaleWithItems{Sale: sale, Items: items})
	}
	return result, nil
}

// SaleItemCosts returns every sold line with the product's current cost price.
func (s *Store) SaleItemCosts(ctx context.Context) ([]domain.SaleItemCost, error) {
	costs := []domain.SaleItemCost{}
	err := s.db.SelectContext(ctx, &costs, `SELECT si.quantity, si.price_at_sale, p.cost_price
        FROM sale_items si
        LEFT JOIN products p ON p.id = si.product_id`)
	if err != nil {
		return nil, fmt.Errorf("list sale item costs: %w", err)
	}
	return costs, nil
}
