package seed

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"counterpos/m/domain"
)

// LoadProducts fills an empty products table from the catalog CSV at csvPath.
// A table that already holds products is left alone.
func LoadProducts(db *sqlx.DB, csvPath string, logger *logrus.Logger) (int, error) {
	var existing int
	if err := db.Get(&existing, `SELECT COUNT(*) FROM products`); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	if existing > 0 {
		return 0, nil
	}

	file, err := os.Open(csvPath)
	if err != nil {
		return 0, fmt.Errorf("open catalog %s: %w", csvPath, err)
	}
	defer file.Close()

	rows, err := readCatalog(file, logger)
	if err != nil {
		return 0, err
	}

	tx, err := db.Beginx()
	if err != nil {
		return 0, fmt.Errorf("begin seed: %w", err)
	}
	stmt, err := tx.Preparex(tx.Rebind(`INSERT INTO products
        (id, name, sku, category, price, wholesale_price, cost_price, stock_quantity, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("prepare product insert: %w", err)
	}
	defer stmt.Close()

	// Distinct timestamps keep newest-first listings stable.
	base := time.Now().UTC().Add(-time.Duration(len(rows)) * time.Second)
	for i, p := range rows {
		at := base.Add(time.Duration(i) * time.Second)
		if _, err := stmt.Exec(uuid.NewString(), p.Name, p.SKU, p.Category, p.Price,
			p.WholesalePrice, p.CostPrice, p.StockQuantity, at, at); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("insert product %s: %w", p.SKU, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed: %w", err)
	}
	logger.Infof("seeded product catalog with %d rows", len(rows))
	return len(rows), nil
}

func readCatalog(r io.Reader, logger *logrus.Logger) ([]domain.Product, error) {
	reader := csv.NewReader(r)
	// Skip header
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("read catalog header: %w", err)
	}

	var products []domain.Product
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warnf("unable to read catalog row: %v", err)
			continue
		}
		if len(record) < 7 {
			continue
		}
		p, err := parseRow(record)
		if err != nil {
			logger.Warnf("skipping catalog row %q: %v", record[0], err)
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

func parseRow(record []string) (domain.Product, error) {
	name := strings.TrimSpace(record[0])
	sku := strings.TrimSpace(record[1])
	if name == "" || sku == "" {
		return domain.Product{}, fmt.Errorf("name and sku are required")
	}
	category := strings.TrimSpace(record[2])
	if category == "" {
		category = domain.DefaultCategory
	}
	price, err := decimal.NewFromString(strings.TrimSpace(record[3]))
	if err != nil {
		return domain.Product{}, fmt.Errorf("price: %w", err)
	}
	wholesale, err := optionalDecimal(record[4])
	if err != nil {
		return domain.Product{}, fmt.Errorf("wholesale price: %w", err)
	}
	cost, err := optionalDecimal(record[5])
	if err != nil {
		return domain.Product{}, fmt.Errorf("cost price: %w", err)
	}
	stock, err := strconv.ParseInt(strings.TrimSpace(record[6]), 10, 64)
	if err != nil || stock < 0 {
		return domain.Product{}, fmt.Errorf("stock quantity %q", record[6])
	}
	return domain.Product{
		Name:           name,
		SKU:            sku,
		Category:       category,
		Price:          price,
		WholesalePrice: wholesale,
		CostPrice:      cost,
		StockQuantity:  stock,
	}, nil
}

func optionalDecimal(raw string) (decimal.NullDecimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}
