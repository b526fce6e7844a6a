package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"counterpos/m/domain"
)

// Backup is a full snapshot of every table.
type Backup struct {
	ExportDate time.Time  `json:"exportDate"`
	Data       BackupData `json:"data"`
}

type BackupData struct {
	Products       []domain.Product       `json:"products"`
	Sales          []domain.Sale          `json:"sales"`
	SaleItems      []domain.SaleItem      `json:"sale_items"`
	Customers      []domain.Customer      `json:"customers"`
	Returns        []domain.Return        `json:"returns"`
	StockPurchases []domain.StockPurchase `json:"stock_purchases"`
}

// ExportAll reads every table inside one transaction so the snapshot is consistent.
func (s *Store) ExportAll(ctx context.Context) (Backup, error) {
	backup := Backup{ExportDate: s.timestamp()}
	data := BackupData{
		Products:       []domain.Product{},
		Sales:          []domain.Sale{},
		SaleItems:      []domain.SaleItem{},
		Customers:      []domain.Customer{},
		Returns:        []domain.Return{},
		StockPurchases: []domain.StockPurchase{},
	}

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		queries := []struct {
			name  string
			dest  interface{}
			query string
		}{
			{"products", &data.Products, `SELECT ` + productColumns + ` FROM products ORDER BY created_at`},
			{"sales", &data.Sales, `SELECT ` + saleColumns + ` FROM sales ORDER BY created_at`},
			{"sale_items", &data.SaleItems, `SELECT id, sale_id, product_id, line_no, quantity, price_at_sale FROM sale_items ORDER BY sale_id, line_no`},
			{"customers", &data.Customers, `SELECT ` + customerColumns + ` FROM customers ORDER BY created_at`},
			{"returns", &data.Returns, `SELECT ` + returnColumns + ` FROM returns ORDER BY created_at`},
			{"stock_purchases", &data.StockPurchases, `SELECT ` + stockPurchaseColumns + ` FROM stock_purchases ORDER BY created_at`},
		}
		for _, q := range queries {
			if err := tx.SelectContext(ctx, q.dest, q.query); err != nil {
				return fmt.Errorf("export %s: %w", q.name, err)
			}
		}
		return nil
	})
	if err != nil {
		return Backup{}, err
	}
	backup.Data = data
	return backup, nil
}
