package sqlexec

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
)

// schemaDDL creates the users and orders tables.
//
//go:embed schema.sql
var schemaDDL string

// seedSQL inserts the fixed fixture rows.
//
//go:embed seed.sql
var seedSQL string

// Schema returns the fixture DDL.
func Schema() string {
	return schemaDDL
}

// loadFixture applies the schema and rows to a fresh database.
func loadFixture(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("sqlexec: db is nil")
	}
	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		return err
	}
	_, err := db.ExecContext(ctx, seedSQL)
	return err
}
