// Package migrations applies schema DDL via goose and runs Peek's own
// ordered, idempotent data migrations (TinyBase legacy blob import, and any
// future one-off data fixups) through a small marker-table runner distinct
// from goose's own version tracking.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Run applies embedded schema DDL through goose, then runs the ordered data
// migrations registered in data.go. Schema migrations are structural
// (CREATE TABLE/INDEX) and goose-tracked; data migrations are idempotent
// functions tracked in the `migrations` marker table described in §4.2.
func Run(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if err := runSchema(ctx, db, logger); err != nil {
		return err
	}

	runData(ctx, db, logger)

	return nil
}

func runSchema(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	subFS, err := fs.Sub(schemaFS, "schema")
	if err != nil {
		return fmt.Errorf("migrations: creating schema sub-filesystem: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, subFS)
	if err != nil {
		return fmt.Errorf("migrations: creating schema provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("migrations: running schema migrations: %w", err)
	}

	for _, r := range results {
		logger.Info("applied schema migration",
			slog.String("source", r.Source.Path),
			slog.Int64("duration_ms", r.Duration.Milliseconds()),
		)
	}

	return nil
}
