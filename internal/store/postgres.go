package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// ConnectPostgres establishes a connection to PostgreSQL.
func ConnectPostgres(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

// InitSchema creates the tables on boot when they do not exist yet. Embedded
// sequences (line items, variants, addresses) live in JSONB columns and are
// rewritten with the row.
func InitSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			client_id TEXT NOT NULL DEFAULT '',
			security_key TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			seller_id TEXT NOT NULL,
			parent_title TEXT NOT NULL,
			brand TEXT NOT NULL,
			variants JSONB NOT NULL,
			commission_percentage DOUBLE PRECISION NOT NULL DEFAULT 0,
			payment_gateway_charge DOUBLE PRECISION NOT NULL DEFAULT 0,
			logistics_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
			additional_info TEXT NOT NULL DEFAULT '',
			created TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_products_seller ON products (seller_id)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			display_order_number TEXT NOT NULL,
			order_date TIMESTAMPTZ NOT NULL,
			order_status TEXT NOT NULL,
			sla TIMESTAMPTZ NOT NULL,
			priority INT NOT NULL DEFAULT 0,
			payment_type TEXT NOT NULL DEFAULT '',
			order_price JSONB,
			order_items JSONB NOT NULL,
			tax_exempted BOOLEAN NOT NULL DEFAULT FALSE,
			c_form_provided BOOLEAN NOT NULL DEFAULT FALSE,
			third_party_shipping BOOLEAN NOT NULL DEFAULT FALSE,
			shipping_address JSONB NOT NULL,
			billing_address JSONB NOT NULL,
			gstin TEXT NOT NULL DEFAULT '',
			additional_info TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_user ON orders (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_display_number ON orders (display_order_number)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}
