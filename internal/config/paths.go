package config

import (
	"os"
	"path/filepath"
)

// configDirName is the directory created under the user's config home.
const configDirName = "peek"

// configFileName is the name of the ambient TOML config file within
// configDirName.
const configFileName = "peek.toml"

// DefaultConfigPath returns the platform-standard path to peek.toml,
// following os.UserConfigDir (XDG_CONFIG_HOME on Linux, ~/Library/Application
// Support on macOS, %AppData% on Windows). Falls back to "./peek.toml" if
// the platform config directory cannot be determined.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return configFileName
	}

	return filepath.Join(dir, configDirName, configFileName)
}

// DefaultDataDir returns the platform-standard directory holding
// profiles.db and per-profile datastore files, following os.UserHomeDir.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".peek"
	}

	return filepath.Join(home, ".peek")
}
