package profile

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()

	root := t.TempDir()
	m, err := Open(context.Background(), root, testLogger())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { m.Close() })

	return m, root
}

func TestOpen_CreatesDefaultProfile(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	profiles, err := m.Store().List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(profiles) != 1 || profiles[0].Slug != defaultSlug || !profiles[0].IsDefault {
		t.Fatalf("expected single default profile, got %+v", profiles)
	}

	activeSlug, err := m.Store().GetActiveSlug(ctx)
	if err != nil {
		t.Fatalf("GetActiveSlug: %v", err)
	}
	if activeSlug != defaultSlug {
		t.Errorf("active slug = %q, want %q", activeSlug, defaultSlug)
	}
}

func TestOpen_AdoptsOrphanedDirectory(t *testing.T) {
	root := t.TempDir()

	// Simulate a pre-existing profile directory from a previous version.
	orphanDir := filepath.Join(root, "work")
	if err := os.MkdirAll(orphanDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(orphanDir, "datastore.sqlite"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := Open(context.Background(), root, testLogger())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer m.Close()

	p, err := m.Store().GetBySlug(context.Background(), "work")
	if err != nil {
		t.Fatalf("expected adopted profile row for %q: %v", "work", err)
	}
	if p.Slug != "work" {
		t.Errorf("Slug = %q, want %q", p.Slug, "work")
	}
}

func TestResolve_EnvOverrideWins(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	if err := m.createProfile(ctx, "work", "Work", false); err != nil {
		t.Fatalf("createProfile: %v", err)
	}

	p, err := m.Resolve(ctx, "work", false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.Slug != "work" {
		t.Errorf("Slug = %q, want %q", p.Slug, "work")
	}
}

func TestResolve_DevBuildAlwaysUsesDev(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	p, err := m.Resolve(ctx, "", true)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.Slug != devSlug {
		t.Errorf("Slug = %q, want %q", p.Slug, devSlug)
	}
}

func TestResolve_FallsBackToDefault(t *testing.T) {
	m, _ := newTestManager(t)

	p, err := m.Resolve(context.Background(), "", false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.Slug != defaultSlug {
		t.Errorf("Slug = %q, want %q", p.Slug, defaultSlug)
	}
}

func TestDelete_ActiveProfileRefused(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	def, err := m.defaultProfile(ctx)
	if err != nil {
		t.Fatalf("defaultProfile: %v", err)
	}

	if err := m.Delete(ctx, def.ID); err == nil {
		t.Fatal("expected Delete of active profile to fail")
	}
}

func TestDelete_NonActivePreservesOnDiskData(t *testing.T) {
	m, root := newTestManager(t)
	ctx := context.Background()

	if err := m.createProfile(ctx, "work", "Work", false); err != nil {
		t.Fatalf("createProfile: %v", err)
	}
	p, err := m.Store().GetBySlug(ctx, "work")
	if err != nil {
		t.Fatal(err)
	}

	if err := m.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := m.Store().GetBySlug(ctx, "work"); err == nil {
		t.Fatal("expected row to be gone")
	}
	if _, err := os.Stat(filepath.Join(root, "work")); err != nil {
		t.Errorf("expected on-disk directory to survive row deletion: %v", err)
	}
}

func TestEnableSyncDisableSync_RoundTrip(t *testing.T) {
	m, root := newTestManager(t)
	ctx := context.Background()

	def, err := m.defaultProfile(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if err := m.EnableSync(ctx, def.ID, "secret-key", "server-slug"); err != nil {
		t.Fatalf("EnableSync: %v", err)
	}

	cfg, err := m.GetSyncConfig(ctx, def.ID)
	if err != nil {
		t.Fatalf("GetSyncConfig: %v", err)
	}
	if !cfg.Enabled || cfg.APIKey != "secret-key" {
		t.Errorf("unexpected sync config: %+v", cfg)
	}

	creds, err := LoadCredentials(root, def.Slug)
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	if creds == nil || creds.APIKey != "secret-key" {
		t.Fatalf("expected cached credentials, got %+v", creds)
	}

	if err := m.DisableSync(ctx, def.ID); err != nil {
		t.Fatalf("DisableSync: %v", err)
	}

	creds, err = LoadCredentials(root, def.Slug)
	if err != nil {
		t.Fatalf("LoadCredentials after disable: %v", err)
	}
	if creds != nil {
		t.Errorf("expected credential cache to be removed, got %+v", creds)
	}
}

func TestLockAcquireRelease(t *testing.T) {
	root := t.TempDir()

	l1, err := Acquire(root, "work")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	if _, err := Acquire(root, "work"); err == nil {
		t.Fatal("expected second Acquire to fail while first is held")
	}

	l1.Release()

	l2, err := Acquire(root, "work")
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	l2.Release()
}

func TestLockSkipsForDevProfile(t *testing.T) {
	root := t.TempDir()

	l1, err := Acquire(root, devSlug)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer l1.Release()

	l2, err := Acquire(root, devSlug)
	if err != nil {
		t.Fatalf("expected dev profile to skip locking, got: %v", err)
	}
	defer l2.Release()
}
