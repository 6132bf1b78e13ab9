// Package config implements TOML loading, validation, and environment
// resolution for Peek's small ambient configuration file. Per-profile data
// (name, slug, sync credentials, last-sync timestamps) lives in profiles.db
// and is owned by internal/profile — this package only resolves the global
// settings that apply across every profile: log level, network timeouts,
// and sync polling behavior.
package config

// Config is the top-level ambient configuration structure, decoded from
// peek.toml.
type Config struct {
	Sync    SyncConfig    `toml:"sync"`
	Logging LoggingConfig `toml:"logging"`
	Network NetworkConfig `toml:"network"`
	Server  ServerConfig  `toml:"server"`
}

// SyncConfig controls the sync engine's polling and wakeup behavior.
type SyncConfig struct {
	ServerURL       string `toml:"server_url"`
	PollInterval    string `toml:"poll_interval"`
	Websocket       bool   `toml:"websocket"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
}

// LoggingConfig controls log output behavior.
type LoggingConfig struct {
	LogLevel  string `toml:"log_level"`
	LogFile   string `toml:"log_file"`
	LogFormat string `toml:"log_format"`
}

// NetworkConfig controls the sync engine's HTTP client and wire protocol.
type NetworkConfig struct {
	ConnectTimeout   string `toml:"connect_timeout"`
	DataTimeout      string `toml:"data_timeout"`
	UserAgent        string `toml:"user_agent"`
	DatastoreVersion string `toml:"datastore_version"`
	ProtocolVersion  string `toml:"protocol_version"`
}

// ServerConfig controls `peek serve`, the server-side datastore mirror
// (spec §4.6). It is only read when serving, never when running as a
// desktop-profile client.
type ServerConfig struct {
	ListenAddr      string `toml:"listen_addr"`
	DataDir         string `toml:"data_dir"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
}
