package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"counterpos/m/domain"
)

const returnColumns = `id, sale_id, reason, refund_amount, status, created_at, updated_at`

// CreateReturn opens a PENDING return against saleID. The refund must be
// positive and may not exceed the sale total.
func (s *Store) CreateReturn(ctx context.Context, saleID string, reason string, refund decimal.Decimal) (domain.Return, error) {
	if !refund.IsPositive() {
		return domain.Return{}, fmt.Errorf("refund amount must be positive: %w", domain.ErrInvalidInput)
	}
	now := s.timestamp()
	ret := domain.Return{
		ID:           uuid.NewString(),
		SaleID:       saleID,
		Reason:       nullIfEmpty(reason),
		RefundAmount: refund,
		Status:       domain.ReturnPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var total decimal.Decimal
		if err := tx.GetContext(ctx, &total, tx.Rebind(`SELECT total_amount FROM sales WHERE id = ?`), saleID); err != nil {
			return notFound(err, "sale "+saleID)
		}
		if refund.GreaterThan(total) {
			return fmt.Errorf("refund %s exceeds sale total %s: %w", refund.StringFixed(2), total.StringFixed(2), domain.ErrInvalidInput)
		}
		_, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO returns (`+returnColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`),
			ret.ID, ret.SaleID, ret.Reason, ret.RefundAmount, ret.Status, ret.CreatedAt, ret.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert return: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Return{}, err
	}
	return ret, nil
}

// SetReturnStatus moves a return to next. Re-applying the current terminal
// status succeeds without writing; any other change out of a terminal status
// fails with ErrInvalidTransition.
func (s *Store) SetReturnStatus(ctx context.Context, id string, next domain.ReturnStatus) (domain.Return, error) {
	var ret domain.Return
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &ret, tx.Rebind(`SELECT `+returnColumns+` FROM returns WHERE id = ?`), id); err != nil {
			return notFound(err, "return "+id)
		}
		if !ret.Status.CanTransitionTo(next) {
			return fmt.Errorf("return %s %s -> %s: %w", id, ret.Status, next, domain.ErrInvalidTransition)
		}
		if ret.Status == next {
			return nil
		}
		now := s.timestamp()
		res, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE returns SET status = ?, updated_at = ? WHERE id = ? AND status = ?`),
			next, now, id, domain.ReturnPending)
		if err != nil {
			return fmt.Errorf("update return status: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("return %s changed concurrently: %w", id, domain.ErrInvalidTransition)
		}
		ret.Status = next
		ret.UpdatedAt = now
		return nil
	})
	if err != nil {
		return domain.Return{}, err
	}
	return ret, nil
}

// ListReturns returns every return newest first with its sale's customer and total.
func (s *Store) ListReturns(ctx context.Context) ([]domain.ReturnWithSale, error) {
	returns := []domain.ReturnWithSale{}
	err := s.db.SelectContext(ctx, &returns, `SELECT r.id, r.sale_id, r.reason, r.refund_amount, r.status, r.created_at, r.updated_at,
            s.customer_name AS sale_customer_name, s.total_amount AS sale_total
        FROM returns r
        JOIN sales s ON s.id = r.sale_id
        ORDER BY r.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list returns: %w", err)
	}
	return returns, nil
}
