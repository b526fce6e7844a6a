package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ReturnStatus string

const (
	ReturnPending  ReturnStatus = "PENDING"
	ReturnApproved ReturnStatus = "APPROVED"
	ReturnRejected ReturnStatus = "REJECTED"
)

// CanTransitionTo reports whether a return in status s may move to next.
// PENDING moves to either terminal state; re-applying the current terminal
// state is allowed and changes nothing.
func (s ReturnStatus) CanTransitionTo(next ReturnStatus) bool {
	if next == ReturnPending {
		return false
	}
	if s == ReturnPending {
		return next == ReturnApproved || next == ReturnRejected
	}
	return s == next
}

// Return is a refund request against a prior sale. Approval does not restock
// inventory or touch any ledger.
type Return struct {
	ID           string          `db:"id" json:"id"`
	SaleID       string          `db:"sale_id" json:"sale_id"`
	Reason       *string         `db:"reason" json:"reason,omitempty"`
	RefundAmount decimal.Decimal `db:"refund_amount" json:"refund_amount"`
	Status       ReturnStatus    `db:"status" json:"status"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

type ReturnWithSale struct {
	Return
	SaleCustomerName string          `db:"sale_customer_name" json:"sale_customer_name"`
	SaleTotal        decimal.Decimal `db:"sale_total" json:"sale_total"`
}

type ReturnStats struct {
	Pending        int             `json:"pending"`
	Approved       int             `json:"approved"`
	Rejected       int             `json:"rejected"`
	RefundApproved decimal.Decimal `json:"refund_approved"`
}

func SummarizeReturns(returns []ReturnWithSale) ReturnStats {
	stats := ReturnStats{RefundApproved: decimal.Zero}
	for _, r := range returns {
		switch r.Status {
		case ReturnPending:
			stats.Pending++
		case ReturnApproved:
			stats.Approved++
			stats.RefundApproved = stats.RefundApproved.Add(r.RefundAmount)
		case ReturnRejected:
			stats.Rejected++
		}
	}
	return stats
}
