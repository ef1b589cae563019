package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// schema is applied idempotently at startup and by the seed command.
// stock and min_stock are NUMERIC on purpose: several feeds carry
// fractional quantities.
const schema = `
CREATE TABLE IF NOT EXISTS medications (
	id               TEXT PRIMARY KEY,
	inventory_type   TEXT NOT NULL DEFAULT '772',
	siges_code       TEXT NOT NULL DEFAULT '',
	sicop_classifier TEXT NOT NULL DEFAULT '',
	sicop_identifier TEXT NOT NULL DEFAULT '',
	name             TEXT NOT NULL DEFAULT '',
	category         TEXT NOT NULL DEFAULT 'General',
	batch            TEXT NOT NULL DEFAULT 'S/N',
	expiry_date      TEXT NOT NULL DEFAULT '',
	stock            NUMERIC NOT NULL DEFAULT 0,
	min_stock        NUMERIC NOT NULL DEFAULT 0,
	unit             TEXT NOT NULL DEFAULT 'Unidad'
);

CREATE INDEX IF NOT EXISTS idx_medications_inventory_type ON medications (inventory_type);
CREATE INDEX IF NOT EXISTS idx_medications_siges_code ON medications (siges_code);

CREATE TABLE IF NOT EXISTS monthly_batches (
	id         TEXT PRIMARY KEY,
	label      TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_monthly_batches_label ON monthly_batches (label);

CREATE TABLE IF NOT EXISTS monthly_batch_items (
	id              TEXT PRIMARY KEY,
	batch_id        TEXT NOT NULL REFERENCES monthly_batches (id) ON DELETE CASCADE,
	siges_code      TEXT NOT NULL DEFAULT '',
	medication_name TEXT NOT NULL DEFAULT '',
	quantity        NUMERIC NOT NULL DEFAULT 0,
	cost            NUMERIC NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_monthly_batch_items_batch_id ON monthly_batch_items (batch_id);

CREATE TABLE IF NOT EXISTS app_settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS tertiary_packaging (
	id                TEXT PRIMARY KEY,
	siges_code        TEXT NOT NULL UNIQUE,
	medication_name   TEXT NOT NULL DEFAULT '',
	tertiary_quantity NUMERIC NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS medication_categories (
	id              TEXT PRIMARY KEY,
	siges_code      TEXT NOT NULL UNIQUE,
	medication_name TEXT NOT NULL DEFAULT '',
	category        TEXT NOT NULL DEFAULT ''
);
`

// Databases created by early deployments carry INTEGER stock columns;
// the widening is safe to re-run.
const alterNumericColumns = `
ALTER TABLE medications ALTER COLUMN stock TYPE NUMERIC;
ALTER TABLE medications ALTER COLUMN min_stock TYPE NUMERIC;
`

// EnsureSchema creates the tables when they do not exist yet.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("could not apply schema: %w", err)
	}
	return nil
}

// Migrate applies the schema over a plain database handle, then widens
// the legacy integer columns. Statements run one at a time: the pgx
// driver's extended protocol rejects multi-statement commands.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range strings.Split(schema+alterNumericColumns, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("could not apply schema statement: %w", err)
		}
	}
	return nil
}
