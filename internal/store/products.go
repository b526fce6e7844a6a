package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"counterpos/m/domain"
)

// skuAttempts bounds SKU regeneration after a unique collision.
const skuAttempts = 5

const productColumns = `id, name, sku, category, price, wholesale_price, cost_price, stock_quantity, created_at, updated_at`

type ProductFilter struct {
	Query    string
	Category string
}

// ListProducts returns the catalog newest first, optionally narrowed by a
// case-insensitive name/SKU match and an exact category.
func (s *Store) ListProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if q := strings.TrimSpace(filter.Query); q != "" {
		conditions = append(conditions, `(LOWER(name) LIKE ? OR LOWER(sku) LIKE ?)`)
		args = append(args, likePattern(q), likePattern(q))
	}
	if c := strings.TrimSpace(filter.Category); c != "" {
		conditions = append(conditions, `category = ?`)
		args = append(args, c)
	}
	query := `SELECT ` + productColumns + ` FROM products`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at DESC, name ASC`

	products := []domain.Product{}
	if err := s.db.SelectContext(ctx, &products, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *Store) Categories(ctx context.Context) ([]string, error) {
	categories := []string{}
	if err := s.db.SelectContext(ctx, &categories, `SELECT DISTINCT category FROM products ORDER BY category`); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := s.db.GetContext(ctx, &p, s.db.Rebind(`SELECT `+productColumns+` FROM products WHERE id = ?`), id)
	if err != nil {
		return domain.Product{}, notFound(err, "product "+id)
	}
	return p, nil
}

// CreateProduct inserts p with a generated id and SKU. A SKU collision is
// retried with a fresh SKU a bounded number of times.
func (s *Store) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	if p.Category == "" {
		p.Category = domain.DefaultCategory
	}
	if p.Name == "" || p.Price.IsNegative() || p.StockQuantity < 0 {
		return domain.Product{}, fmt.Errorf("product: %w", domain.ErrInvalidInput)
	}

	p.ID = uuid.NewString()
	p.CreatedAt = s.timestamp()
	p.UpdatedAt = p.CreatedAt

	var err error
	for attempt := 0; attempt < skuAttempts; attempt++ {
		p.SKU = NewSKU(p.Category, s.now(), s.intn)
		_, err = s.db.ExecContext(ctx, s.db.Rebind(`INSERT INTO products (`+productColumns+`)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			p.ID, p.Name, p.SKU, p.Category, p.Price, p.WholesalePrice, p.CostPrice,
			p.StockQuantity, p.CreatedAt, p.UpdatedAt)
		if err == nil {
			return p, nil
		}
		if !isUniqueViolation(err) {
			return domain.Product{}, fmt.Errorf("create product: %w", err)
		}
	}
	return domain.Product{}, fmt.Errorf("create product: sku retries exhausted: %w", domain.ErrConflict)
}

// UpdateProduct applies the non-nil fields of patch.
func (s *Store) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, error) {
	if patch.Empty() {
		return domain.Product{}, fmt.Errorf("empty update: %w", domain.ErrInvalidInput)
	}

	var (
		sets []string
		args []interface{}
	)
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return domain.Product{}, fmt.Errorf("name: %w", domain.ErrInvalidInput)
		}
		sets = append(sets, "name = ?")
		args = append(args, name)
	}
	if patch.Category != nil {
		category := strings.TrimSpace(*patch.Category)
		if category == "" {
			category = domain.DefaultCategory
		}
		sets = append(sets, "category = ?")
		args = append(args, category)
	}
	if patch.Price != nil {
		if patch.Price.IsNegative() {
			return domain.Product{}, fmt.Errorf("price: %w", domain.ErrInvalidInput)
		}
		sets = append(sets, "price = ?")
		args = append(args, *patch.Price)
	}
	if patch.WholesalePrice != nil {
		if patch.WholesalePrice.Valid && patch.WholesalePrice.Decimal.IsNegative() {
			return domain.Product{}, fmt.Errorf("wholesale price: %w", domain.ErrInvalidInput)
		}
		sets = append(sets, "wholesale_price = ?")
		args = append(args, *patch.WholesalePrice)
	}
	if patch.CostPrice != nil {
		if patch.CostPrice.Valid && patch.CostPrice.Decimal.IsNegative() {
			return domain.Product{}, fmt.Errorf("cost price: %w", domain.ErrInvalidInput)
		}
		sets = append(sets, "cost_price = ?")
		args = append(args, *patch.CostPrice)
	}
	if patch.StockQuantity != nil {
		if *patch.StockQuantity < 0 {
			return domain.Product{}, fmt.Errorf("stock quantity: %w", domain.ErrInvalidInput)
		}
		sets = append(sets, "stock_quantity = ?")
		args = append(args, *patch.StockQuantity)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, s.timestamp(), id)

	query := `UPDATE products SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	res, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return domain.Product{}, fmt.Errorf("update product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Product{}, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	return s.GetProduct(ctx, id)
}

// DeleteProduct removes the product. Past sale lines keep their price and
// lose the product reference.
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM products WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) LowStock(ctx context.Context) ([]domain.Product, error) {
	products := []domain.Product{}
	err := s.db.SelectContext(ctx, &products,
		s.db.Rebind(`SELECT `+productColumns+` FROM products WHERE stock_quantity < ? ORDER BY stock_quantity ASC, name ASC`),
		domain.LowStockThreshold)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	return products, nil
}
