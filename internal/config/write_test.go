package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDefaultConfig_CreatesFileWithTemplate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "peek.toml")

	require.NoError(t, CreateDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "# peek configuration")
	assert.Contains(t, content, "[sync]")
	assert.Contains(t, content, "[logging]")
	assert.Contains(t, content, "[network]")
}

func TestCreateDefaultConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "peek.toml")

	require.NoError(t, CreateDefaultConfig(path))

	cfg, err := Load(path, testLogger(t))
	require.NoError(t, err)
	assert.Equal(t, "5m", cfg.Sync.PollInterval)
}

func TestCreateDefaultConfig_CreatesParentDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "deep", "peek.toml")

	require.NoError(t, CreateDefaultConfig(path))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestCreateDefaultConfig_FilePermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "peek.toml")

	require.NoError(t, CreateDefaultConfig(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(configFilePermissions), info.Mode().Perm())
}

func TestSetKey_InsertNewValue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "peek.toml")

	require.NoError(t, CreateDefaultConfig(path))
	require.NoError(t, SetKey(path, "logging", "log_level", "debug"))

	cfg, err := Load(path, testLogger(t))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.LogLevel)
}

func TestSetKey_UpdateExistingValue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "peek.toml")

	require.NoError(t, CreateDefaultConfig(path))
	require.NoError(t, SetKey(path, "sync", "poll_interval", "10m"))
	require.NoError(t, SetKey(path, "sync", "poll_interval", "15m"))

	cfg, err := Load(path, testLogger(t))
	require.NoError(t, err)
	assert.Equal(t, "15m", cfg.Sync.PollInterval)
}

func TestSetKey_BooleanFormatting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "peek.toml")

	require.NoError(t, CreateDefaultConfig(path))
	require.NoError(t, SetKey(path, "sync", "websocket", "false"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "websocket = false")
	assert.NotContains(t, string(data), `websocket = "false"`)
}

func TestSetKey_SectionNotFound(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "peek.toml")

	require.NoError(t, CreateDefaultConfig(path))

	err := SetKey(path, "nonexistent", "key", "value")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSetKey_FileNotFound(t *testing.T) {
	err := SetKey("/nonexistent/peek.toml", "sync", "poll_interval", "10m")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestAtomicWriteFile_WritesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.txt")

	require.NoError(t, atomicWriteFile(path, []byte("hello")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestAtomicWriteFile_CreatesParentDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "dir", "test.txt")

	require.NoError(t, atomicWriteFile(path, []byte("hello")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestAtomicWriteFile_InvalidDirectory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("I'm a file"), configFilePermissions))

	path := filepath.Join(blocker, "sub", "test.txt")
	err := atomicWriteFile(path, []byte("hello"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating config directory")
}

func TestFormatTOMLValue_Boolean(t *testing.T) {
	assert.Equal(t, "true", formatTOMLValue("true"))
	assert.Equal(t, "false", formatTOMLValue("false"))
}

func TestFormatTOMLValue_String(t *testing.T) {
	assert.Equal(t, `"hello"`, formatTOMLValue("hello"))
}

func TestFindSectionHeader_Found(t *testing.T) {
	lines := []string{"# comment", "[sync]", `poll_interval = "5m"`}
	headerLine, sectionStart := findSectionHeader(lines, "sync")
	assert.Equal(t, 1, headerLine)
	assert.Equal(t, 2, sectionStart)
}

func TestFindSectionHeader_NotFound(t *testing.T) {
	lines := []string{"# comment", `log_level = "info"`}
	headerLine, sectionStart := findSectionHeader(lines, "sync")
	assert.Equal(t, -1, headerLine)
	assert.Equal(t, -1, sectionStart)
}
