package migrations

import (
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func TestRunIsIdempotent(t *testing.T) {
	db, err := sqlx.Connect("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	for i := 0; i < 2; i++ {
		if err := Run(db); err != nil {
			t.Fatalf("Run pass %d: %v", i+1, err)
		}
	}

	var tables []string
	if err := db.Select(&tables, `SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`); err != nil {
		t.Fatalf("list tables: %v", err)
	}
	want := []string{"customers", "products", "returns", "sale_items", "sales", "stock_purchases"}
	if len(tables) != len(want) {
		t.Fatalf("expected tables %v, got %v", want, tables)
	}
	for i := range want {
		if tables[i] != want[i] {
			t.Fatalf("expected tables %v, got %v", want, tables)
		}
	}
}

func TestStockCannotGoNegative(t *testing.T) {
	db, err := sqlx.Connect("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)
	if err := Run(db); err != nil {
		t.Fatalf("Run: %v", err)
	}

	_, err = db.Exec(`INSERT INTO products (id, name, sku, category, price, stock_quantity, created_at, updated_at)
        VALUES ('p1', 'Cup', 'SPO-1', 'Sports', 10, -1, '2026-01-01 00:00:00', '2026-01-01 00:00:00')`)
	if err == nil {
		t.Fatalf("expected check constraint to reject negative stock")
	}
}
