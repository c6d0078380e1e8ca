package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"log/slog"

	"github.com/KirkDiggler/rpg-advancement/internal/errors"
)

//go:embed schema.sql
var schema string

// Schema returns the DDL applied by Migrate
func Schema() string {
	return schema
}

// Migrate applies the schema. Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.InvalidArgument("db cannot be nil")
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to apply schema")
	}
	slog.InfoContext(ctx, "postgres schema applied")
	return nil
}
