package config

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEffective_Defaults(t *testing.T) {
	cfg := DefaultConfig()

	var buf bytes.Buffer
	require.NoError(t, RenderEffective(cfg, &buf))

	output := buf.String()
	assert.Contains(t, output, "[sync]")
	assert.Contains(t, output, "[logging]")
	assert.Contains(t, output, "[network]")
	assert.Contains(t, output, "poll_interval")
}

func TestRenderEffective_LogFileShown(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.LogFile = "/var/log/peek.log"

	var buf bytes.Buffer
	require.NoError(t, RenderEffective(cfg, &buf))
	assert.Contains(t, buf.String(), "log_file")
}

func TestRenderEffective_UserAgentShown(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Network.UserAgent = "peek/test"

	var buf bytes.Buffer
	require.NoError(t, RenderEffective(cfg, &buf))
	assert.Contains(t, buf.String(), "user_agent")
}

// failWriter is a writer that always fails, used to exercise error paths
// in the errWriter pattern.
type failWriter struct{}

var errWriteFailed = errors.New("write failed")

func (failWriter) Write([]byte) (int, error) {
	return 0, errWriteFailed
}

func TestRenderEffective_WriteError(t *testing.T) {
	cfg := DefaultConfig()
	err := RenderEffective(cfg, failWriter{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errWriteFailed)
}
