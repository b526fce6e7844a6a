package migrations

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Run creates the database schema for the driver behind db.
func Run(db *sqlx.DB) error {
	var schema []string
	switch db.DriverName() {
	case "sqlite":
		schema = sqliteSchema
	case "pgx":
		schema = postgresSchema
	case "mysql":
		schema = mysqlSchema
	default:
		return fmt.Errorf("migrations: unsupported driver %q", db.DriverName())
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Money columns hold decimal text on SQLite; NUMERIC affinity would turn
// them into REALs.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS products (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            sku TEXT NOT NULL UNIQUE,
            category TEXT NOT NULL DEFAULT 'General',
            price TEXT NOT NULL,
            wholesale_price TEXT,
            cost_price TEXT,
            stock_quantity INTEGER NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0),
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        );`,
	`CREATE TABLE IF NOT EXISTS customers (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            phone TEXT,
            email TEXT,
            address TEXT,
            total_purchases TEXT NOT NULL DEFAULT '0',
            visit_count INTEGER NOT NULL DEFAULT 0,
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        );`,
	`CREATE TABLE IF NOT EXISTS sales (
            id TEXT PRIMARY KEY,
            display_id TEXT NOT NULL,
            customer_name TEXT NOT NULL DEFAULT '',
            customer_id TEXT,
            total_amount TEXT NOT NULL,
            discount_amount TEXT NOT NULL DEFAULT '0',
            payment_method TEXT NOT NULL CHECK (payment_method IN ('CASH', 'CARD', 'UPI')),
            idempotency_key TEXT UNIQUE,
            created_at DATETIME NOT NULL,
            FOREIGN KEY(customer_id) REFERENCES customers(id) ON DELETE SET NULL
        );`,
	`CREATE TABLE IF NOT EXISTS sale_items (
            id TEXT PRIMARY KEY,
            sale_id TEXT NOT NULL,
            product_id TEXT,
            line_no INTEGER NOT NULL DEFAULT 0,
            quantity INTEGER NOT NULL CHECK (quantity > 0),
            price_at_sale TEXT NOT NULL,
            FOREIGN KEY(sale_id) REFERENCES sales(id) ON DELETE CASCADE,
            FOREIGN KEY(product_id) REFERENCES products(id) ON DELETE SET NULL
        );`,
	`CREATE INDEX IF NOT EXISTS idx_sale_items_sale ON sale_items(sale_id);`,
	`CREATE TABLE IF NOT EXISTS returns (
            id TEXT PRIMARY KEY,
            sale_id TEXT NOT NULL,
            reason TEXT,
            refund_amount TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'PENDING' CHECK (status IN ('PENDING', 'APPROVED', 'REJECTED')),
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL,
            FOREIGN KEY(sale_id) REFERENCES sales(id)
        );`,
	`CREATE TABLE IF NOT EXISTS stock_purchases (
            id TEXT PRIMARY KEY,
            product_id TEXT NOT NULL,
            quantity INTEGER NOT NULL CHECK (quantity > 0),
            unit_cost TEXT NOT NULL,
            supplier TEXT,
            notes TEXT,
            created_at DATETIME NOT NULL,
            FOREIGN KEY(product_id) REFERENCES products(id) ON DELETE CASCADE
        );`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS products (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            sku TEXT NOT NULL UNIQUE,
            category TEXT NOT NULL DEFAULT 'General',
            price NUMERIC(12,2) NOT NULL,
            wholesale_price NUMERIC(12,2),
            cost_price NUMERIC(12,2),
            stock_quantity INTEGER NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0),
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
	`CREATE TABLE IF NOT EXISTS customers (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            phone TEXT,
            email TEXT,
            address TEXT,
            total_purchases NUMERIC(12,2) NOT NULL DEFAULT 0,
            visit_count INTEGER NOT NULL DEFAULT 0,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
	`CREATE TABLE IF NOT EXISTS sales (
            id TEXT PRIMARY KEY,
            display_id TEXT NOT NULL,
            customer_name TEXT NOT NULL DEFAULT '',
            customer_id TEXT REFERENCES customers(id) ON DELETE SET NULL,
            total_amount NUMERIC(12,2) NOT NULL,
            discount_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
            payment_method TEXT NOT NULL CHECK (payment_method IN ('CASH', 'CARD', 'UPI')),
            idempotency_key TEXT UNIQUE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
	`CREATE TABLE IF NOT EXISTS sale_items (
            id TEXT PRIMARY KEY,
            sale_id TEXT NOT NULL REFERENCES sales(id) ON DELETE CASCADE,
            product_id TEXT REFERENCES products(id) ON DELETE SET NULL,
            line_no INTEGER NOT NULL DEFAULT 0,
            quantity INTEGER NOT NULL CHECK (quantity > 0),
            price_at_sale NUMERIC(12,2) NOT NULL
        );`,
	`CREATE INDEX IF NOT EXISTS idx_sale_items_sale ON sale_items(sale_id);`,
	`CREATE TABLE IF NOT EXISTS returns (
            id TEXT PRIMARY KEY,
            sale_id TEXT NOT NULL REFERENCES sales(id),
            reason TEXT,
            refund_amount NUMERIC(12,2) NOT NULL,
            status TEXT NOT NULL DEFAULT 'PENDING' CHECK (status IN ('PENDING', 'APPROVED', 'REJECTED')),
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
	`CREATE TABLE IF NOT EXISTS stock_purchases (
            id TEXT PRIMARY KEY,
            product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
            quantity INTEGER NOT NULL CHECK (quantity > 0),
            unit_cost NUMERIC(12,2) NOT NULL,
            supplier TEXT,
            notes TEXT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
}

// MySQL needs parseTime=true in the DSN for DATETIME columns to scan into time.Time.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS products (
            id VARCHAR(36) PRIMARY KEY,
            name VARCHAR(255) NOT NULL,
            sku VARCHAR(64) NOT NULL UNIQUE,
            category VARCHAR(100) NOT NULL DEFAULT 'General',
            price DECIMAL(12,2) NOT NULL,
            wholesale_price DECIMAL(12,2),
            cost_price DECIMAL(12,2),
            stock_quantity INT NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0),
            created_at DATETIME(6) NOT NULL,
            updated_at DATETIME(6) NOT NULL
        )`,
	`CREATE TABLE IF NOT EXISTS customers (
            id VARCHAR(36) PRIMARY KEY,
            name VARCHAR(255) NOT NULL,
            phone VARCHAR(32),
            email VARCHAR(255),
            address TEXT,
            total_purchases DECIMAL(12,2) NOT NULL DEFAULT 0,
            visit_count INT NOT NULL DEFAULT 0,
            created_at DATETIME(6) NOT NULL,
            updated_at DATETIME(6) NOT NULL
        )`,
	`CREATE TABLE IF NOT EXISTS sales (
            id VARCHAR(36) PRIMARY KEY,
            display_id VARCHAR(64) NOT NULL,
            customer_name VARCHAR(255) NOT NULL DEFAULT '',
            customer_id VARCHAR(36),
            total_amount DECIMAL(12,2) NOT NULL,
            discount_amount DECIMAL(12,2) NOT NULL DEFAULT 0,
            payment_method VARCHAR(8) NOT NULL CHECK (payment_method IN ('CASH', 'CARD', 'UPI')),
            idempotency_key VARCHAR(128) UNIQUE,
            created_at DATETIME(6) NOT NULL,
            FOREIGN KEY(customer_id) REFERENCES customers(id) ON DELETE SET NULL
        )`,
	`CREATE TABLE IF NOT EXISTS sale_items (
            id VARCHAR(36) PRIMARY KEY,
            sale_id VARCHAR(36) NOT NULL,
            product_id VARCHAR(36),
            line_no INT NOT NULL DEFAULT 0,
            quantity INT NOT NULL CHECK (quantity > 0),
            price_at_sale DECIMAL(12,2) NOT NULL,
            INDEX idx_sale_items_sale (sale_id),
            FOREIGN KEY(sale_id) REFERENCES sales(id) ON DELETE CASCADE,
            FOREIGN KEY(product_id) REFERENCES products(id) ON DELETE SET NULL
        )`,
	`CREATE TABLE IF NOT EXISTS returns (
            id VARCHAR(36) PRIMARY KEY,
            sale_id VARCHAR(36) NOT NULL,
            reason TEXT,
            refund_amount DECIMAL(12,2) NOT NULL,
            status VARCHAR(16) NOT NULL DEFAULT 'PENDING' CHECK (status IN ('PENDING', 'APPROVED', 'REJECTED')),
            created_at DATETIME(6) NOT NULL,
            updated_at DATETIME(6) NOT NULL,
            FOREIGN KEY(sale_id) REFERENCES sales(id)
        )`,
	`CREATE TABLE IF NOT EXISTS stock_purchases (
            id VARCHAR(36) PRIMARY KEY,
            product_id VARCHAR(36) NOT NULL,
            quantity INT NOT NULL CHECK (quantity > 0),
            unit_cost DECIMAL(12,2) NOT NULL,
            supplier VARCHAR(255),
            notes TEXT,
            created_at DATETIME(6) NOT NULL,
            FOREIGN KEY(product_id) REFERENCES products(id) ON DELETE CASCADE
        )`,
}
