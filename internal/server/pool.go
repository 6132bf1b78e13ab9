package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/peek-app/peek-sync/internal/datastore"
	"github.com/peek-app/peek-sync/internal/store"
)

// profilePool holds per-(userID,slug) datastore services, each backed by
// its own SQLite file and sole-writer adapter (spec §4.6: "Connection pool
// keyed by userId:slug"). Grounded on the pack's ProjectDBPool
// (per-project lazy-open SQLite connections, double-checked locking), with
// the store.Adapter + datastore.Service pair substituted for the bare
// *sql.DB the pool example manages directly.
type poolEntry struct {
	adapter *store.Adapter
	service *datastore.Service
}

type profilePool struct {
	mu      sync.RWMutex
	entries map[string]poolEntry
	dataDir string
	logger  *slog.Logger
}

func newProfilePool(dataDir string, logger *slog.Logger) *profilePool {
	return &profilePool{
		entries: make(map[string]poolEntry),
		dataDir: dataDir,
		logger:  logger,
	}
}

func poolKey(userID, slug string) string {
	return userID + ":" + slug
}

// get returns the datastore.Service for (userID,slug), opening its
// datastore.sqlite lazily (creating the profile directory if needed).
func (p *profilePool) get(ctx context.Context, userID, slug string) (*datastore.Service, error) {
	key := poolKey(userID, slug)

	p.mu.RLock()
	if entry, ok := p.entries[key]; ok {
		p.mu.RUnlock()
		return entry.service, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	if entry, ok := p.entries[key]; ok {
		return entry.service, nil
	}

	dir := filepath.Join(p.dataDir, userID, "profiles", slug)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("server: creating profile directory %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "datastore.sqlite")
	adapter, err := store.Open(ctx, dbPath, p.logger)
	if err != nil {
		return nil, err
	}

	svc := datastore.New(adapter, p.logger)
	p.entries[key] = poolEntry{adapter: adapter, service: svc}

	p.logger.Info("server: opened profile datastore", "user_id", userID, "slug", slug, "path", dbPath)

	return svc, nil
}

// closeAll closes every open adapter. Called during graceful shutdown.
func (p *profilePool) closeAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for key, entry := range p.entries {
		if err := entry.adapter.Close(); err != nil {
			p.logger.Warn("server: error closing profile datastore", "key", key, "error", err)
		}
		delete(p.entries, key)
	}
}
