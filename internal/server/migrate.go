package server

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// migrateLegacyDB moves a legacy data/{userId}/peek.db file to its
// item-centric home at data/{userId}/profiles/default/datastore.sqlite
// (spec §4.6). Idempotent: if the destination already exists — whether
// from a prior migration or a fresh install — this is a no-op, mirroring
// internal/store/migrations' "skip if destination already has rows"
// check, just at the filesystem layer since there is no single database
// this step could record a marker row in ahead of the copy.
//
// Schema upgrade (the legacy addresses+items layout to the item-centric
// one) is not done here: once migrateLegacyDB completes, the profile pool
// opens the copied file via store.Open like any other profile, and that
// adapter's own migrations.Run carries it the rest of the way.
func migrateLegacyDB(dataDir, userID string, logger *slog.Logger) error {
	legacyPath := filepath.Join(dataDir, userID, "peek.db")
	if _, err := os.Stat(legacyPath); os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("server: checking legacy db %s: %w", legacyPath, err)
	}

	destDir := filepath.Join(dataDir, userID, "profiles", "default")
	destPath := filepath.Join(destDir, "datastore.sqlite")

	if _, err := os.Stat(destPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("server: checking migration destination %s: %w", destPath, err)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("server: creating default profile directory: %w", err)
	}

	if err := copyFile(legacyPath, destPath); err != nil {
		return fmt.Errorf("server: copying legacy db to %s: %w", destPath, err)
	}

	logger.Info("server: migrated legacy datastore", "user_id", userID, "from", legacyPath, "to", destPath)

	return nil
}

func copyFile(srcPath, dstPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dstPath)
		return err
	}

	return dst.Sync()
}

// migrateAllLegacyDBs scans dataDir for per-user directories containing a
// legacy peek.db and migrates each one. Run once at server startup, before
// any request is served.
func migrateAllLegacyDBs(dataDir string, logger *slog.Logger) error {
	entries, err := os.ReadDir(dataDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("server: scanning data directory %s: %w", dataDir, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := migrateLegacyDB(dataDir, entry.Name(), logger); err != nil {
			return err
		}
	}

	return nil
}
