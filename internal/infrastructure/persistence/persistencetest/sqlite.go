// Package persistencetest opens throwaway SQLite databases carrying the
// procurement schema for repository tests.
package persistencetest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// schema mirrors the migrated schema in SQLite types. Decimals are TEXT so
// values round-trip without float conversion.
var schema = []string{
	`CREATE TABLE tax_codes (
		id TEXT PRIMARY KEY, tenant_id TEXT NOT NULL, code TEXT NOT NULL,
		description TEXT, rate_percent TEXT NOT NULL DEFAULT '0',
		active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL, updated_at DATETIME NOT NULL,
		UNIQUE (tenant_id, code))`,
	`CREATE TABLE products (
		id TEXT PRIMARY KEY, tenant_id TEXT NOT NULL, code TEXT NOT NULL,
		name TEXT NOT NULL, unit TEXT NOT NULL, standard_price TEXT NOT NULL DEFAULT '0',
		tax_code TEXT, status TEXT NOT NULL DEFAULT 'active',
		version INTEGER NOT NULL DEFAULT 1, created_by TEXT,
		created_at DATETIME NOT NULL, updated_at DATETIME NOT NULL,
		UNIQUE (tenant_id, code))`,
	`CREATE TABLE suppliers (
		id TEXT PRIMARY KEY, tenant_id TEXT NOT NULL, code TEXT NOT NULL,
		name TEXT NOT NULL, status TEXT NOT NULL DEFAULT 'active',
		currency TEXT, tax_code TEXT,
		version INTEGER NOT NULL DEFAULT 1, created_by TEXT,
		created_at DATETIME NOT NULL, updated_at DATETIME NOT NULL,
		UNIQUE (tenant_id, code))`,
	`CREATE TABLE product_suppliers (
		id TEXT PRIMARY KEY, tenant_id TEXT NOT NULL,
		product_id TEXT NOT NULL, supplier_id TEXT NOT NULL,
		created_at DATETIME NOT NULL, updated_at DATETIME NOT NULL,
		UNIQUE (tenant_id, product_id))`,
	`CREATE TABLE supplier_prices (
		id TEXT PRIMARY KEY, tenant_id TEXT NOT NULL,
		supplier_id TEXT NOT NULL, product_id TEXT NOT NULL,
		unit_price TEXT NOT NULL, valid_from DATETIME NOT NULL, valid_to DATETIME,
		created_at DATETIME NOT NULL, updated_at DATETIME NOT NULL)`,
	`CREATE TABLE purchase_orders (
		id TEXT PRIMARY KEY, tenant_id TEXT NOT NULL, order_number TEXT NOT NULL,
		supplier_id TEXT NOT NULL, supplier_name TEXT NOT NULL, currency TEXT NOT NULL,
		warehouse_id TEXT NOT NULL, status TEXT NOT NULL DEFAULT 'draft',
		net_total TEXT NOT NULL DEFAULT '0', vat_total TEXT NOT NULL DEFAULT '0',
		gross_total TEXT NOT NULL DEFAULT '0', receive_percent TEXT NOT NULL DEFAULT '0',
		submitted_at DATETIME, approved_by TEXT, approved_at DATETIME, approval_notes TEXT,
		rejected_by TEXT, rejected_at DATETIME, rejection_reason TEXT,
		confirmed_at DATETIME, closed_at DATETIME,
		cancelled_by TEXT, cancelled_at DATETIME, cancel_reason TEXT,
		version INTEGER NOT NULL DEFAULT 1, created_by TEXT,
		created_at DATETIME NOT NULL, updated_at DATETIME NOT NULL,
		UNIQUE (tenant_id, order_number))`,
	`CREATE TABLE purchase_order_lines (
		id TEXT PRIMARY KEY, order_id TEXT NOT NULL, line_no INTEGER NOT NULL,
		product_id TEXT NOT NULL, product_code TEXT NOT NULL, product_name TEXT NOT NULL,
		uom TEXT NOT NULL, quantity TEXT NOT NULL, unit_price TEXT NOT NULL,
		tax_rate_percent TEXT NOT NULL DEFAULT '0',
		line_net TEXT NOT NULL, line_tax TEXT NOT NULL, line_gross TEXT NOT NULL, notes TEXT,
		UNIQUE (order_id, line_no))`,
	`CREATE TABLE purchase_order_status_history (
		id TEXT PRIMARY KEY, tenant_id TEXT NOT NULL, order_id TEXT NOT NULL,
		action TEXT NOT NULL, from_status TEXT, to_status TEXT NOT NULL,
		actor_id TEXT NOT NULL, note TEXT, occurred_at DATETIME NOT NULL)`,
	`CREATE TABLE purchase_order_sequences (
		tenant_id TEXT NOT NULL, year INTEGER NOT NULL, last_value INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (tenant_id, year))`,
}

// NewSQLiteDB opens an in-memory database with the procurement schema. The
// pool is capped at one connection so every statement sees the same memory
// database.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range schema {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}
