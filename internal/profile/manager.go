package profile

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// defaultSlug is the profile slug used when nothing else resolves.
const defaultSlug = "default"

// devSlug is the profile slug development builds always use.
const devSlug = "dev"

// Manager owns profiles.db and the filesystem layout beneath a user-data
// root: startup adoption of pre-existing directories, default/active
// bookkeeping, and active-profile precedence resolution (spec §4.4).
type Manager struct {
	store        *Store
	userDataRoot string
	logger       *slog.Logger
	nowFunc      func() time.Time
}

// Open opens profiles.db under userDataRoot, runs the adoption/default/
// active bootstrap sequence, and returns a ready Manager.
func Open(ctx context.Context, userDataRoot string, logger *slog.Logger) (*Manager, error) {
	if err := os.MkdirAll(userDataRoot, 0o755); err != nil {
		return nil, err
	}

	store, err := openStore(ctx, ProfilesDBPath(userDataRoot), logger)
	if err != nil {
		return nil, err
	}

	m := &Manager{store: store, userDataRoot: userDataRoot, logger: logger, nowFunc: time.Now}

	if err := m.bootstrap(ctx); err != nil {
		store.Close()
		return nil, err
	}

	return m, nil
}

func (m *Manager) now() int64 { return m.nowFunc().UnixMilli() }

func (m *Manager) Close() error { return m.store.Close() }

// Store exposes the underlying CRUD surface for callers (CLI, server
// migration) that need direct profile-row access.
func (m *Manager) Store() *Store { return m.store }

// bootstrap implements spec §4.4 steps 2-3: adopt orphaned on-disk
// directories, ensure exactly one default, ensure the active-profile
// singleton is set.
func (m *Manager) bootstrap(ctx context.Context) error {
	if err := m.adoptOrphanedDirectories(ctx); err != nil {
		return err
	}

	profiles, err := m.store.List(ctx)
	if err != nil {
		return err
	}

	if len(profiles) == 0 {
		if err := m.createProfile(ctx, defaultSlug, "Default", true); err != nil {
			return err
		}
		profiles, err = m.store.List(ctx)
		if err != nil {
			return err
		}
	}

	if err := m.ensureExactlyOneDefault(ctx, profiles); err != nil {
		return err
	}

	activeSlug, err := m.store.GetActiveSlug(ctx)
	if err != nil {
		return err
	}
	if activeSlug == "" {
		def, err := m.defaultProfile(ctx)
		if err != nil {
			return err
		}
		if err := m.store.SetActiveSlug(ctx, def.Slug); err != nil {
			return err
		}
	}

	return nil
}

// adoptOrphanedDirectories inserts a profile row for every subdirectory of
// userDataRoot that looks like a profile directory (contains
// datastore.sqlite) but has no matching row, preserving on-disk data across
// version upgrades (spec §4.4 step 2).
func (m *Manager) adoptOrphanedDirectories(ctx context.Context) error {
	entries, err := os.ReadDir(m.userDataRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		slug := e.Name()

		if _, err := os.Stat(DatastorePath(m.userDataRoot, slug)); err != nil {
			continue
		}

		if _, err := m.store.GetBySlug(ctx, slug); err == nil {
			continue
		} else if !errsIsNotFound(err) {
			return err
		}

		m.logger.Info("adopting orphaned profile directory", slog.String("slug", slug))
		if err := m.createProfile(ctx, slug, slug, false); err != nil {
			return err
		}
	}

	return nil
}

func (m *Manager) createProfile(ctx context.Context, slug, name string, isDefault bool) error {
	now := m.now()
	p := &Profile{
		ID:        uuid.NewString(),
		Name:      name,
		Slug:      slug,
		CreatedAt: now,
		IsDefault: isDefault,
	}

	if err := os.MkdirAll(filepath.Join(m.userDataRoot, slug), 0o755); err != nil {
		return err
	}

	return m.store.Insert(ctx, p)
}

func (m *Manager) ensureExactlyOneDefault(ctx context.Context, profiles []*Profile) error {
	var defaults []*Profile
	for _, p := range profiles {
		if p.IsDefault {
			defaults = append(defaults, p)
		}
	}

	if len(defaults) == 1 {
		return nil
	}
	if len(defaults) == 0 {
		return m.store.SetDefault(ctx, profiles[0].ID)
	}

	// More than one default (shouldn't happen via this manager, but data
	// may be hand-edited): keep the most recently used.
	winner := defaults[0]
	for _, p := range defaults[1:] {
		if p.LastUsedAt > winner.LastUsedAt {
			winner = p
		}
	}
	return m.store.SetDefault(ctx, winner.ID)
}

func (m *Manager) defaultProfile(ctx context.Context) (*Profile, error) {
	profiles, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		if p.IsDefault {
			return p, nil
		}
	}
	return profiles[0], nil
}
