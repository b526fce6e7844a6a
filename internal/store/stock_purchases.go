package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"counterpos/m/domain"
)

const stockPurchaseColumns = `id, product_id, quantity, unit_cost, supplier, notes, created_at`

// RecordStockPurchase stores a restock and, in the same transaction, raises
// the product's stock and sets its cost price to the purchase unit cost.
func (s *Store) RecordStockPurchase(ctx context.Context, p domain.StockPurchase) (domain.StockPurchase, error) {
	if p.Quantity <= 0 || p.UnitCost.IsNegative() || strings.TrimSpace(p.ProductID) == "" {
		return domain.StockPurchase{}, fmt.Errorf("stock purchase: %w", domain.ErrInvalidInput)
	}
	p.ID = uuid.NewString()
	p.CreatedAt = s.timestamp()

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE products
            SET stock_quantity = stock_quantity + ?, cost_price = ?, updated_at = ?
            WHERE id = ?`), p.Quantity, p.UnitCost, p.CreatedAt, p.ProductID)
		if err != nil {
			return fmt.Errorf("restock product: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("product %s: %w", p.ProductID, domain.ErrNotFound)
		}
		_, err = tx.ExecContext(ctx, tx.Rebind(`INSERT INTO stock_purchases (`+stockPurchaseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`),
			p.ID, p.ProductID, p.Quantity, p.UnitCost, p.Supplier, p.Notes, p.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert stock purchase: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.StockPurchase{}, err
	}
	return p, nil
}

// ListStockPurchases returns purchases newest first, limited to productID when set.
func (s *Store) ListStockPurchases(ctx context.Context, productID string) ([]domain.StockPurchase, error) {
	query := `SELECT ` + stockPurchaseColumns + ` FROM stock_purchases`
	var args []interface{}
	if productID != "" {
		query += ` WHERE product_id = ?`
		args = append(args, productID)
	}
	query += ` ORDER BY created_at DESC`

	purchases := []domain.StockPurchase{}
	if err := s.db.SelectContext(ctx, &purchases, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list stock purchases: %w", err)
	}
	return purchases, nil
}
