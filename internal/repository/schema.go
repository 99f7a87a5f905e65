package repository

import (
	"context"

	"entgo.io/ent/dialect"
)

const (
	tableRuns     = "extraction_runs"
	tableOrders   = "run_orders"
	tableProducts = "run_products"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS extraction_runs (
		id UUID PRIMARY KEY,
		source_path TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		format TEXT NOT NULL,
		profile TEXT NOT NULL,
		status TEXT NOT NULL,
		order_count INTEGER NOT NULL DEFAULT 0,
		product_count INTEGER NOT NULL DEFAULT 0,
		error_message TEXT,
		started_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS extraction_runs_hash_profile ON extraction_runs (content_hash, profile)`,
	`CREATE TABLE IF NOT EXISTS run_orders (
		run_id UUID NOT NULL REFERENCES extraction_runs(id) ON DELETE CASCADE,
		line_no INTEGER NOT NULL,
		order_number TEXT NOT NULL,
		supplier TEXT NOT NULL DEFAULT '',
		supplier_tax_id TEXT NOT NULL DEFAULT '',
		client TEXT NOT NULL DEFAULT '',
		client_tax_id TEXT NOT NULL DEFAULT '',
		delivery_address TEXT NOT NULL DEFAULT '',
		delivery_city TEXT NOT NULL DEFAULT '',
		delivery_deadline TEXT NOT NULL DEFAULT '',
		freight TEXT NOT NULL DEFAULT '',
		issue_date TEXT NOT NULL DEFAULT '',
		total_value TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (run_id, line_no)
	)`,
	`CREATE TABLE IF NOT EXISTS run_products (
		run_id UUID NOT NULL REFERENCES extraction_runs(id) ON DELETE CASCADE,
		line_no INTEGER NOT NULL,
		order_number TEXT NOT NULL DEFAULT '',
		supplier_code BIGINT NOT NULL DEFAULT 0,
		unit_price DOUBLE PRECISION NOT NULL DEFAULT 0,
		quantity DOUBLE PRECISION NOT NULL DEFAULT 0,
		unit TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		ean BIGINT NOT NULL DEFAULT 0,
		PRIMARY KEY (run_id, line_no)
	)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS extraction_runs (
		id TEXT PRIMARY KEY,
		source_path TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		format TEXT NOT NULL,
		profile TEXT NOT NULL,
		status TEXT NOT NULL,
		order_count INTEGER NOT NULL DEFAULT 0,
		product_count INTEGER NOT NULL DEFAULT 0,
		error_message TEXT,
		started_at DATETIME NOT NULL,
		finished_at DATETIME
	)`,
	`CREATE INDEX IF NOT EXISTS extraction_runs_hash_profile ON extraction_runs (content_hash, profile)`,
	`CREATE TABLE IF NOT EXISTS run_orders (
		run_id TEXT NOT NULL REFERENCES extraction_runs(id) ON DELETE CASCADE,
		line_no INTEGER NOT NULL,
		order_number TEXT NOT NULL,
		supplier TEXT NOT NULL DEFAULT '',
		supplier_tax_id TEXT NOT NULL DEFAULT '',
		client TEXT NOT NULL DEFAULT '',
		client_tax_id TEXT NOT NULL DEFAULT '',
		delivery_address TEXT NOT NULL DEFAULT '',
		delivery_city TEXT NOT NULL DEFAULT '',
		delivery_deadline TEXT NOT NULL DEFAULT '',
		freight TEXT NOT NULL DEFAULT '',
		issue_date TEXT NOT NULL DEFAULT '',
		total_value TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (run_id, line_no)
	)`,
	`CREATE TABLE IF NOT EXISTS run_products (
		run_id TEXT NOT NULL REFERENCES extraction_runs(id) ON DELETE CASCADE,
		line_no INTEGER NOT NULL,
		order_number TEXT NOT NULL DEFAULT '',
		supplier_code INTEGER NOT NULL DEFAULT 0,
		unit_price REAL NOT NULL DEFAULT 0,
		quantity REAL NOT NULL DEFAULT 0,
		unit TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		ean INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (run_id, line_no)
	)`,
}

// Migrate creates the tables when they do not exist yet.
func (d *DB) Migrate(ctx context.Context) error {
	stmts := postgresSchema
	if d.Dialect() == dialect.SQLite {
		stmts = sqliteSchema
	}
	for _, stmt := range stmts {
		if err := d.drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			return dbError("migrate", err)
		}
	}
	d.logger.Info("database schema ensured", "dialect", d.Dialect())
	return nil
}

// CheckSchema reports an error when one of the tables is missing.
func (d *DB) CheckSchema(ctx context.Context) error {
	for _, table := range []string{tableRuns, tableOrders, tableProducts} {
		b := builder(d.Dialect())
		q, args := b.Select().Count().From(b.Table(table)).Query()
		if _, err := count(ctx, d.drv, q, args); err != nil {
			return dbError("check table "+table, err)
		}
	}
	return nil
}
