package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"counterpos/m/domain"
)

const customerColumns = `id, name, phone, email, address, total_purchases, visit_count, created_at, updated_at`

// customerSearchLimit caps the lookup list shown at the counter.
const customerSearchLimit = 10

func (s *Store) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	customers := []domain.Customer{}
	if err := s.db.SelectContext(ctx, &customers, `SELECT `+customerColumns+` FROM customers ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}

// SearchCustomers matches name or phone, case-insensitively.
func (s *Store) SearchCustomers(ctx context.Context, query string) ([]domain.Customer, error) {
	if strings.TrimSpace(query) == "" {
		return []domain.Customer{}, nil
	}
	customers := []domain.Customer{}
	err := s.db.SelectContext(ctx, &customers, s.db.Rebind(`SELECT `+customerColumns+` FROM customers
        WHERE LOWER(name) LIKE ? OR LOWER(phone) LIKE ?
        ORDER BY name
        LIMIT ?`), likePattern(query), likePattern(query), customerSearchLimit)
	if err != nil {
		return nil, fmt.Errorf("search customers: %w", err)
	}
	return customers, nil
}

type NewCustomer struct {
	Name    string
	Phone   string
	Email   string
	Address string
}

func (s *Store) CreateCustomer(ctx context.Context, in NewCustomer) (domain.Customer, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Customer{}, fmt.Errorf("customer name: %w", domain.ErrInvalidInput)
	}
	now := s.timestamp()
	c := domain.Customer{
		ID:             uuid.NewString(),
		Name:           name,
		Phone:          nullIfEmpty(in.Phone),
		Email:          nullIfEmpty(in.Email),
		Address:        nullIfEmpty(in.Address),
		TotalPurchases: decimal.Zero,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`INSERT INTO customers (`+customerColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		c.ID, c.Name, c.Phone, c.Email, c.Address, c.TotalPurchases, c.VisitCount, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("create customer: %w", err)
	}
	return c, nil
}

func (s *Store) GetCustomer(ctx context.Context, id string) (domain.Customer, error) {
	var c domain.Customer
	if err := s.db.GetContext(ctx, &c, s.db.Rebind(`SELECT `+customerColumns+` FROM customers WHERE id = ?`), id); err != nil {
		return domain.Customer{}, notFound(err, "customer "+id)
	}
	return c, nil
}

// DeleteCustomer removes the customer; their sales keep the typed name.
func (s *Store) DeleteCustomer(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM customers WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("customer %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
