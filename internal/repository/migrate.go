package repository

import (
	"context"
	"fmt"
	"strings"
)

// schema is written with {{json}} and {{ts}} placeholders for the column types
// that differ between dialects.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS items (
		pk         TEXT NOT NULL,
		sk         TEXT NOT NULL,
		gsi1       TEXT,
		data       {{json}} NOT NULL,
		updated_at {{ts}} NOT NULL,
		PRIMARY KEY (pk, sk)
	)`,
	`CREATE INDEX IF NOT EXISTS items_gsi1_idx ON items (gsi1)`,
	`CREATE TABLE IF NOT EXISTS materials (
		id           TEXT PRIMARY KEY,
		name         TEXT NOT NULL,
		unit         TEXT NOT NULL DEFAULT '',
		current_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
		updated_at   {{ts}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS assemblies (
		code                  TEXT PRIMARY KEY,
		id                    TEXT NOT NULL,
		name                  TEXT NOT NULL,
		phase                 TEXT NOT NULL,
		labor_minutes         DOUBLE PRECISION NOT NULL DEFAULT 0,
		default_material_cost DOUBLE PRECISION,
		materials             {{json}} NOT NULL,
		updated_at            {{ts}} NOT NULL
	)`,
}

func (d *DB) ddl(stmt string) string {
	jsonType, tsType := "JSONB", "TIMESTAMPTZ"
	if d.Dialect == DialectSQLite {
		jsonType, tsType = "TEXT", "TIMESTAMP"
	}
	return strings.NewReplacer("{{json}}", jsonType, "{{ts}}", tsType).Replace(stmt)
}

// Migrate creates the tables if they do not exist.
func Migrate(ctx context.Context, d *DB) error {
	for i, stmt := range schema {
		if _, err := d.SQL.ExecContext(ctx, d.ddl(stmt)); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
