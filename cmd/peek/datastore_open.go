package main

import (
	"context"
	"log/slog"

	"github.com/peek-app/peek-sync/internal/datastore"
	"github.com/peek-app/peek-sync/internal/profile"
	"github.com/peek-app/peek-sync/internal/store"
)

// openProfileDatastore resolves the profile a command should operate
// against (--profile flag, PEEK_PROFILE, or the manager's normal
// precedence chain), takes its single-instance lock, and opens its
// datastore.sqlite. The returned closer releases the lock and closes both
// the datastore adapter and profiles.db; callers must defer it.
func openProfileDatastore(ctx context.Context, logger *slog.Logger) (*datastore.Service, *profile.Profile, func(), error) {
	mgr, err := openManager(ctx, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	p, lock, err := resolveProfile(ctx, mgr)
	if err != nil {
		mgr.Close()
		return nil, nil, nil, err
	}

	ds, closeDS, err := openDatastoreForProfile(ctx, mgr, p, logger)
	if err != nil {
		lock.Release()
		mgr.Close()
		return nil, nil, nil, err
	}

	closer := func() {
		closeDS()
		lock.Release()
		mgr.Close()
	}

	return ds, p, closer, nil
}

// openDatastoreForProfile opens p's datastore.sqlite under an
// already-open Manager, for callers (like sync commands) that need the
// Manager kept open for other calls (GetSyncConfig, UpdateLastSyncAt)
// rather than opening a second one.
func openDatastoreForProfile(ctx context.Context, mgr *profile.Manager, p *profile.Profile, logger *slog.Logger) (*datastore.Service, func(), error) {
	adapter, err := store.Open(ctx, mgr.DatastorePath(p.Slug), logger)
	if err != nil {
		return nil, nil, err
	}

	return datastore.New(adapter, logger), func() { adapter.Close() }, nil
}
