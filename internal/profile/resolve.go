package profile

import "context"

// Resolve implements the profile-resolution precedence chain:
//
//  1. An explicit override (config.EnvProfile, read by the caller and
//     passed in as envOverride) always wins.
//  2. Development builds always use the "dev" profile, regardless of
//     profiles.db.
//  3. Production builds use the active-profile row.
//  4. If none of the above resolves to an existing profile, fall back to
//     the default profile.
func (m *Manager) Resolve(ctx context.Context, envOverride string, isDevBuild bool) (*Profile, error) {
	if envOverride != "" {
		if p, err := m.store.GetBySlug(ctx, envOverride); err == nil {
			return p, nil
		}
	}

	if isDevBuild {
		if p, err := m.store.GetBySlug(ctx, devSlug); err == nil {
			return p, nil
		}
		if err := m.createProfile(ctx, devSlug, "Development", false); err != nil {
			return nil, err
		}
		return m.store.GetBySlug(ctx, devSlug)
	}

	activeSlug, err := m.store.GetActiveSlug(ctx)
	if err != nil {
		return nil, err
	}
	if activeSlug != "" {
		if p, err := m.store.GetBySlug(ctx, activeSlug); err == nil {
			return p, nil
		}
	}

	return m.defaultProfile(ctx)
}

// Activate sets the active-profile singleton and touches lastUsedAt. Callers
// must restart the process for this to take effect (spec §5 "switching
// profiles requires process restart") — Activate only updates persisted
// state for the next launch.
func (m *Manager) Activate(ctx context.Context, id string) error {
	p, err := m.store.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := m.store.SetActiveSlug(ctx, p.Slug); err != nil {
		return err
	}

	return m.store.TouchLastUsed(ctx, id, m.now())
}

// Delete removes a profile's row (on-disk data is preserved). The active
// profile cannot be deleted (spec §4.4 "Deletions").
func (m *Manager) Delete(ctx context.Context, id string) error {
	p, err := m.store.Get(ctx, id)
	if err != nil {
		return err
	}

	activeSlug, err := m.store.GetActiveSlug(ctx)
	if err != nil {
		return err
	}
	if p.Slug == activeSlug {
		return errActiveProfileUndeletable(id)
	}

	return m.store.Delete(ctx, id)
}
