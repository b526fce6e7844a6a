package database

import (
	"strings"
	"testing"
)

func TestConnectSQLiteMemory(t *testing.T) {
	db, err := Connect("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer db.Close()

	var enabled int
	if err := db.Get(&enabled, `PRAGMA foreign_keys`); err != nil {
		t.Fatalf("read pragma: %v", err)
	}
	if enabled != 1 {
		t.Fatalf("expected foreign keys enabled, got %d", enabled)
	}
	if got := db.Stats().MaxOpenConnections; got != 1 {
		t.Fatalf("expected single connection, got %d", got)
	}
}

func TestConnectUnknownDriver(t *testing.T) {
	if _, err := Connect("nope", "x"); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestMySQLDSNForcesParseTime(t *testing.T) {
	got, err := mysqlDSN("pos:secret@tcp(localhost:3306)/pos")
	if err != nil {
		t.Fatalf("mysqlDSN: %v", err)
	}
	if !strings.Contains(got, "parseTime=true") {
		t.Fatalf("expected parseTime in %q", got)
	}
	if _, err := mysqlDSN("::not a dsn"); err == nil {
		t.Fatalf("expected parse error")
	}
}
