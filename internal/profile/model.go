package profile

// Profile is a row in profiles.db: an isolated data workspace with its own
// datastore file, sync credentials, and session directory.
type Profile struct {
	ID                string
	Name              string
	Slug              string
	SyncEnabled       bool
	APIKey            string
	ServerProfileSlug string
	LastSyncAt        int64
	CreatedAt         int64
	LastUsedAt        int64
	IsDefault         bool
}

// SyncConfig is the subset of Profile the sync engine needs to reach the
// server for one profile.
type SyncConfig struct {
	ProfileID         string
	APIKey            string
	ServerProfileSlug string
	LastSyncAt        int64
	Enabled           bool
}
