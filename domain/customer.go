package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Customer struct {
	ID             string          `db:"id" json:"id"`
	Name           string          `db:"name" json:"name"`
	Phone          *string         `db:"phone" json:"phone,omitempty"`
	Email          *string         `db:"email" json:"email,omitempty"`
	Address        *string         `db:"address" json:"address,omitempty"`
	TotalPurchases decimal.Decimal `db:"total_purchases" json:"total_purchases"`
	VisitCount     int64           `db:"visit_count" json:"visit_count"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}
