package profile

import "path/filepath"

// ProfilesDBPath returns the path to profiles.db under a user-data root.
func ProfilesDBPath(userDataRoot string) string {
	return filepath.Join(userDataRoot, "profiles.db")
}

// DatastorePath returns the path to a profile's datastore.sqlite.
func DatastorePath(userDataRoot, slug string) string {
	return filepath.Join(userDataRoot, slug, "datastore.sqlite")
}

// ChromiumDir returns the path to a profile's opaque session directory.
func ChromiumDir(userDataRoot, slug string) string {
	return filepath.Join(userDataRoot, slug, "chromium")
}

// LockPath returns the path to a profile's single-instance lock file.
func LockPath(userDataRoot, slug string) string {
	return filepath.Join(userDataRoot, slug, "peek.lock")
}

// SocketPath returns the path to the Unix domain socket a locked profile's
// primary instance listens on for secondary-launch URL relay.
func SocketPath(userDataRoot, slug string) string {
	return filepath.Join(userDataRoot, slug, "peek.sock")
}
