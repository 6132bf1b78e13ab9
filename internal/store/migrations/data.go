package migrations

import (
	"context"
	"database/sql"
	"log/slog"
)

// dataMigration is a single ordered, idempotent data migration. Run must be
// safe to call again after a prior failure (it is never retried within the
// same process, but the next process start will retry it since no marker
// was recorded).
type dataMigration struct {
	name string
	run  func(ctx context.Context, db *sql.DB, logger *slog.Logger) error
}

// registeredMigrations lists data migrations in declaration order. New
// migrations are appended; existing ones are never reordered or removed.
var registeredMigrations = []dataMigration{
	{name: "tinybase_to_tables", run: migrateTinybase},
}

const (
	statusComplete = "complete"
)

// runData executes each registered migration in order, skipping ones
// already marked complete. A migration that fails is logged and skipped —
// it does not block later migrations, and no marker is recorded so it is
// retried on the next startup.
func runData(ctx context.Context, db *sql.DB, logger *slog.Logger) {
	for _, m := range registeredMigrations {
		done, err := isComplete(ctx, db, m.name)
		if err != nil {
			logger.Error("checking migration marker", "migration", m.name, "error", err)
			continue
		}

		if done {
			logger.Debug("migration already complete, skipping", "migration", m.name)
			continue
		}

		if err := m.run(ctx, db, logger); err != nil {
			logger.Error("data migration failed", "migration", m.name, "error", err)
			continue
		}

		if err := markComplete(ctx, db, m.name); err != nil {
			logger.Error("recording migration marker", "migration", m.name, "error", err)
		}
	}
}

func isComplete(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var status string
	err := db.QueryRowContext(ctx, `SELECT status FROM migrations WHERE id = ?`, name).Scan(&status)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return status == statusComplete, nil
}

func markComplete(ctx context.Context, db *sql.DB, name string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO migrations (id, status, completed_at) VALUES (?, ?, unixepoch('now') * 1000)
		ON CONFLICT(id) DO UPDATE SET status = excluded.status, completed_at = excluded.completed_at`,
		name, statusComplete)

	return err
}
