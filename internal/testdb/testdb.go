// Package testdb opens throwaway in-memory databases for repository and
// service tests. The schema mirrors the goose migrations, translated to
// SQLite types.
package testdb

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var schema = []string{
	`CREATE TABLE users (
		id text PRIMARY KEY,
		username text NOT NULL,
		email text NOT NULL,
		name text NOT NULL,
		password_hash text NOT NULL,
		role text NOT NULL DEFAULT 'user',
		created_at datetime,
		updated_at datetime
	)`,
	`CREATE UNIQUE INDEX uq_users_username ON users (username)`,
	`CREATE UNIQUE INDEX uq_users_email ON users (email)`,
	`CREATE TABLE warehouses (
		id text PRIMARY KEY,
		name text NOT NULL,
		location text NOT NULL,
		is_active boolean NOT NULL DEFAULT true,
		created_at datetime,
		updated_at datetime
	)`,
	`CREATE UNIQUE INDEX uq_warehouses_name ON warehouses (name)`,
	`CREATE TABLE products (
		id text PRIMARY KEY,
		ml_item_id text NOT NULL,
		name text NOT NULL,
		sku text,
		total_stock integer NOT NULL DEFAULT 0,
		created_at datetime,
		updated_at datetime
	)`,
	`CREATE UNIQUE INDEX uq_products_ml_item_id ON products (ml_item_id)`,
	`CREATE TABLE inventory_lines (
		product_id text NOT NULL,
		warehouse_id text NOT NULL,
		quantity integer NOT NULL DEFAULT 0,
		position integer NOT NULL DEFAULT 0,
		updated_at datetime,
		PRIMARY KEY (product_id, warehouse_id)
	)`,
	`CREATE TABLE sales (
		id text PRIMARY KEY,
		product_id text NOT NULL,
		ml_order_id text NOT NULL,
		quantity integer NOT NULL,
		created_at datetime
	)`,
	`CREATE UNIQUE INDEX uq_sales_order_product ON sales (ml_order_id, product_id)`,
	`CREATE TABLE alerts (
		id text PRIMARY KEY,
		product_id text NOT NULL,
		message text NOT NULL,
		resolved boolean NOT NULL DEFAULT false,
		created_at datetime,
		updated_at datetime
	)`,
}

// Open returns a fresh in-memory database with the full schema applied.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	// A named shared-cache DSN keeps every pooled connection on the same
	// in-memory database for the lifetime of the test.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("failed to get sql db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("failed to apply test schema: %v", err)
		}
	}
	return conn
}
