package profile

import "context"

// EnableSync turns on sync for a profile with the given credentials
// (spec §4.4 "enableSync(profileId, apiKey, serverProfileSlug)") and
// refreshes the on-disk credential cache used by `peek sync status`.
func (m *Manager) EnableSync(ctx context.Context, profileID, apiKey, serverProfileSlug string) error {
	if err := m.store.EnableSync(ctx, profileID, apiKey, serverProfileSlug); err != nil {
		return err
	}

	p, err := m.store.Get(ctx, profileID)
	if err != nil {
		return err
	}

	return SaveCredentials(m.userDataRoot, p.Slug, &Credentials{
		APIKey:            apiKey,
		ServerProfileSlug: serverProfileSlug,
	})
}

// DisableSync turns off sync for a profile and clears its credential cache.
func (m *Manager) DisableSync(ctx context.Context, profileID string) error {
	p, err := m.store.Get(ctx, profileID)
	if err != nil {
		return err
	}

	if err := m.store.DisableSync(ctx, profileID); err != nil {
		return err
	}

	return RemoveCredentials(m.userDataRoot, p.Slug)
}

// GetSyncConfig returns a profile's sync-relevant fields.
func (m *Manager) GetSyncConfig(ctx context.Context, profileID string) (*SyncConfig, error) {
	return m.store.GetSyncConfig(ctx, profileID)
}

// UpdateLastSyncAt records the start time of the most recently completed sync.
func (m *Manager) UpdateLastSyncAt(ctx context.Context, profileID string, syncStartTime int64) error {
	return m.store.UpdateLastSyncAt(ctx, profileID, syncStartTime)
}

// DatastorePath returns the path to profileSlug's datastore.sqlite under
// this manager's user-data root.
func (m *Manager) DatastorePath(slug string) string {
	return DatastorePath(m.userDataRoot, slug)
}

// LockPath returns the path to profileSlug's single-instance lock file.
func (m *Manager) LockPath(slug string) string {
	return LockPath(m.userDataRoot, slug)
}
