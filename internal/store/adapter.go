package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure-Go SQLite driver, no CGO

	"github.com/peek-app/peek-sync/internal/errs"
	"github.com/peek-app/peek-sync/internal/store/migrations"
)

// Adapter is the sole writer to a profile's datastore.sqlite. It owns the
// single *sql.DB connection (SetMaxOpenConns(1)) and exposes items, tags,
// item-tags, settings and lookup operations used by the datastore service.
type Adapter struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if missing) the SQLite database at dbPath, enables
// WAL journaling and foreign keys, and runs schema + data migrations.
func Open(ctx context.Context, dbPath string, logger *slog.Logger) (*Adapter, error) {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)",
		dbPath,
	)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errs.Storage("store.Open", fmt.Errorf("opening database %s: %w", dbPath, err))
	}

	// Sole-writer pattern: one connection, serialized writes.
	db.SetMaxOpenConns(1)

	if err := migrations.Run(ctx, db, logger); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("datastore opened", slog.String("path", dbPath))

	return &Adapter{db: db, logger: logger}, nil
}

// OpenMemory opens a private in-memory database, primarily for tests. Each
// call gets its own isolated database: a shared cache name would otherwise
// let concurrent tests bleed state into each other.
func OpenMemory(ctx context.Context, logger *slog.Logger) (*Adapter, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(ON)", uuid.NewString())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errs.Storage("store.OpenMemory", err)
	}

	db.SetMaxOpenConns(1)

	if err := migrations.Run(ctx, db, logger); err != nil {
		db.Close()
		return nil, err
	}

	return &Adapter{db: db, logger: logger}, nil
}

// Close closes the underlying database connection.
func (a *Adapter) Close() error {
	return a.db.Close()
}

// DB returns the underlying connection, for components (server mirror,
// migrations tooling) that need to share it.
func (a *Adapter) DB() *sql.DB {
	return a.db
}

// classify maps a raw driver error to a *errs.Error, recognizing SQLite's
// unique-constraint error text as a Conflict.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	if isUniqueViolation(err) {
		return errs.Conflict(op, err)
	}

	return errs.Storage(op, err)
}
