package migrations

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
)

// destinationTables lists the tables a legacy TinyBase blob may populate,
// in insert order (tags before item_tags/address_tags, items/addresses
// before anything referencing them).
var destinationTables = []string{
	"tags", "items", "item_tags", "addresses", "content", "address_tags",
	"blobs", "scripts_data", "feeds", "extensions", "extension_settings",
}

// migrateTinybase detects a legacy `tinybase` table holding a single-row
// JSON blob `[tables, values]` (TinyBase's own persistence format) and
// folds its rows into the direct table layout. If any destination table
// already has rows, the migration treats the data as already present and
// is a no-op (besides still dropping the legacy table, if found).
func migrateTinybase(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	exists, err := tableExists(ctx, db, "tinybase")
	if err != nil {
		return fmt.Errorf("migrations: checking for legacy tinybase table: %w", err)
	}
	if !exists {
		return nil
	}

	alreadyMigrated, err := anyDestinationHasRows(ctx, db)
	if err != nil {
		return fmt.Errorf("migrations: checking destination tables: %w", err)
	}

	if !alreadyMigrated {
		blob, err := readTinybaseBlob(ctx, db)
		if err != nil {
			return fmt.Errorf("migrations: reading tinybase blob: %w", err)
		}

		if blob != "" {
			if err := importTinybaseBlob(ctx, db, blob, logger); err != nil {
				return fmt.Errorf("migrations: importing tinybase blob: %w", err)
			}
		}
	} else {
		logger.Info("tinybase destination tables already populated, skipping import")
	}

	if _, err := db.ExecContext(ctx, `DROP TABLE tinybase`); err != nil {
		return fmt.Errorf("migrations: dropping legacy tinybase table: %w", err)
	}

	logger.Info("tinybase migration complete")

	return nil
}

func tableExists(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&n)
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

func anyDestinationHasRows(ctx context.Context, db *sql.DB) (bool, error) {
	for _, table := range destinationTables {
		exists, err := tableExists(ctx, db, table)
		if err != nil {
			return false, err
		}
		if !exists {
			continue
		}

		var n int
		if err := db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table)).Scan(&n); err != nil {
			return false, err
		}
		if n > 0 {
			return true, nil
		}
	}

	return false, nil
}

// readTinybaseBlob reads the JSON payload from the legacy table's single
// row. The column holding the payload is named "json"; older captures may
// instead store it under "data" — both are tried.
func readTinybaseBlob(ctx context.Context, db *sql.DB) (string, error) {
	for _, col := range []string{"json", "data"} {
		var blob string
		err := db.QueryRowContext(ctx, fmt.Sprintf(`SELECT %s FROM tinybase LIMIT 1`, col)).Scan(&blob)
		if err == nil {
			return blob, nil
		}
		if err != sql.ErrNoRows {
			continue
		}
	}

	return "", nil
}

// importTinybaseBlob parses the `[tables, values]` TinyBase payload and
// inserts every row of every known table via INSERT OR IGNORE, keyed by the
// row's TinyBase row id.
func importTinybaseBlob(ctx context.Context, db *sql.DB, blob string, logger *slog.Logger) error {
	var payload [2]json.RawMessage
	if err := json.Unmarshal([]byte(blob), &payload); err != nil {
		return fmt.Errorf("decoding tinybase payload: %w", err)
	}

	var tables map[string]map[string]map[string]any
	if err := json.Unmarshal(payload[0], &tables); err != nil {
		return fmt.Errorf("decoding tinybase tables: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning tinybase import transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range destinationTables {
		rows, ok := tables[table]
		if !ok {
			continue
		}

		if err := importRows(ctx, tx, table, rows); err != nil {
			return err
		}

		logger.Info("imported tinybase rows", slog.String("table", table), slog.Int("count", len(rows)))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing tinybase import: %w", err)
	}

	return nil
}

func importRows(ctx context.Context, tx *sql.Tx, table string, rows map[string]map[string]any) error {
	for rowID, fields := range rows {
		cols := make([]string, 0, len(fields)+1)
		vals := make([]any, 0, len(fields)+1)

		cols = append(cols, "id")
		vals = append(vals, rowID)

		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			cols = append(cols, k)
			vals = append(vals, fields[k])
		}

		placeholders := make([]string, len(cols))
		for i := range placeholders {
			placeholders[i] = "?"
		}

		query := fmt.Sprintf(`INSERT OR IGNORE INTO %s (%s) VALUES (%s)`,
			table, joinCols(cols), joinCols(placeholders))

		if _, err := tx.ExecContext(ctx, query, vals...); err != nil {
			return fmt.Errorf("inserting %s row %s: %w", table, rowID, err)
		}
	}

	return nil
}

func joinCols(cols []string) string {
	out := cols[0]
	for _, c := range cols[1:] {
		out += ", " + c
	}
	return out
}
