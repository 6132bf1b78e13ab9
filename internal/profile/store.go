package profile

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/peek-app/peek-sync/internal/errs"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Store wraps profiles.db: the registry of every profile on this machine
// plus the active-profile singleton. One Store per process, opened once at
// startup per spec §4.4.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// openStore opens (creating if missing) profiles.db at path and applies
// schema migrations.
func openStore(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errs.Storage("profile.Open", err)
	}
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db, logger); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, logger: logger}, nil
}

func migrate(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	subFS, err := fs.Sub(schemaFS, "schema")
	if err != nil {
		return errs.Schema("profile.migrate", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, subFS)
	if err != nil {
		return errs.Schema("profile.migrate", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return errs.Schema("profile.migrate", err)
	}

	for _, r := range results {
		logger.Info("applied profiles.db migration", slog.String("source", r.Source.Path))
	}

	return nil
}

func (s *Store) Close() error { return s.db.Close() }
