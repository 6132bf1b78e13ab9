package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// CredCacheFilePerms restricts credential cache files to owner-only read/write.
const CredCacheFilePerms = 0o600

// CredCacheDirPerms is used when creating the credential cache's directory.
const CredCacheDirPerms = 0o700

// Credentials is the on-disk cache of a profile's resolved sync credentials
// (bearer token and server slug), written by EnableSync and removed by
// DisableSync. The CLI does not read it back: `peek sync status` and the
// other sync commands take credentials from profiles.db via GetSyncConfig.
type Credentials struct {
	APIKey            string `json:"apiKey"`
	ServerProfileSlug string `json:"serverProfileSlug"`
}

func credCachePath(userDataRoot, slug string) string {
	return filepath.Join(userDataRoot, slug, "credcache.json")
}

// LoadCredentials reads a profile's cached credentials. Returns (nil, nil)
// if the cache file does not exist.
func LoadCredentials(userDataRoot, slug string) (*Credentials, error) {
	path := credCachePath(userDataRoot, slug)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil //nolint:nilnil // sentinel for "not cached"
	}
	if err != nil {
		return nil, fmt.Errorf("profile: reading credential cache %s: %w", path, err)
	}

	var c Credentials
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("profile: decoding credential cache %s: %w", path, err)
	}

	return &c, nil
}

// SaveCredentials writes a profile's credentials to the cache atomically
// (write-to-temp + rename) with 0600 permissions. Never logs the API key.
func SaveCredentials(userDataRoot, slug string, c *Credentials) error {
	path := credCachePath(userDataRoot, slug)

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("profile: encoding credential cache: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, CredCacheDirPerms); err != nil {
		return fmt.Errorf("profile: creating credential cache directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".credcache-*.tmp")
	if err != nil {
		return fmt.Errorf("profile: creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := os.Chmod(tmpPath, CredCacheFilePerms); err != nil {
		tmp.Close()
		return fmt.Errorf("profile: setting permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("profile: writing: %w", err)
	}

	// Flush to stable storage before rename so a power loss between close
	// and rename cannot leave an empty or partial credential file behind.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("profile: syncing: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("profile: closing: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("profile: renaming: %w", err)
	}

	success = true

	return nil
}

// RemoveCredentials deletes a profile's cached credentials, if any.
func RemoveCredentials(userDataRoot, slug string) error {
	err := os.Remove(credCachePath(userDataRoot, slug))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
