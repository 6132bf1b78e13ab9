package profile

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/peek-app/peek-sync/internal/errs"
)

const profileColumns = `id, name, slug, sync_enabled, api_key, server_profile_slug, last_sync_at, created_at, last_used_at, is_default`

func scanProfile(row interface{ Scan(...any) error }) (*Profile, error) {
	var p Profile
	var syncEnabled, isDefault int

	err := row.Scan(&p.ID, &p.Name, &p.Slug, &syncEnabled, &p.APIKey, &p.ServerProfileSlug,
		&p.LastSyncAt, &p.CreatedAt, &p.LastUsedAt, &isDefault)
	if err != nil {
		return nil, err
	}

	p.SyncEnabled = syncEnabled != 0
	p.IsDefault = isDefault != 0

	return &p, nil
}

// Get returns a profile by id.
func (s *Store) Get(ctx context.Context, id string) (*Profile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id)

	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("profile.Get", fmt.Errorf("profile %s not found", id))
	}
	if err != nil {
		return nil, errs.Storage("profile.Get", err)
	}

	return p, nil
}

// GetBySlug returns a profile by its filesystem-safe slug.
func (s *Store) GetBySlug(ctx context.Context, slug string) (*Profile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE slug = ?`, slug)

	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("profile.GetBySlug", fmt.Errorf("profile %q not found", slug))
	}
	if err != nil {
		return nil, errs.Storage("profile.GetBySlug", err)
	}

	return p, nil
}

// List returns every profile, ordered by lastUsedAt descending.
func (s *Store) List(ctx context.Context) ([]*Profile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY last_used_at DESC`)
	if err != nil {
		return nil, errs.Storage("profile.List", err)
	}
	defer rows.Close()

	var out []*Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, errs.Storage("profile.List", err)
		}
		out = append(out, p)
	}

	return out, rows.Err()
}

// Insert creates a new profile row.
func (s *Store) Insert(ctx context.Context, p *Profile) error {
	syncEnabled, isDefault := 0, 0
	if p.SyncEnabled {
		syncEnabled = 1
	}
	if p.IsDefault {
		isDefault = 1
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO profiles (`+profileColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Slug, syncEnabled, p.APIKey, p.ServerProfileSlug,
		p.LastSyncAt, p.CreatedAt, p.LastUsedAt, isDefault,
	)
	if err != nil {
		return errs.Storage("profile.Insert", err)
	}

	return nil
}

// Delete removes a profile's row only; on-disk data is left untouched.
// Callers must verify the target is not the active profile first.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return errs.Storage("profile.Delete", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return errs.Storage("profile.Delete", err)
	}
	if n == 0 {
		return errs.NotFound("profile.Delete", fmt.Errorf("profile %s not found", id))
	}

	return nil
}

// SetDefault clears isDefault on every row and sets it on id.
func (s *Store) SetDefault(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.Storage("profile.SetDefault", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE profiles SET is_default = 0`); err != nil {
		return errs.Storage("profile.SetDefault", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE profiles SET is_default = 1 WHERE id = ?`, id); err != nil {
		return errs.Storage("profile.SetDefault", err)
	}

	if err := tx.Commit(); err != nil {
		return errs.Storage("profile.SetDefault", err)
	}

	return nil
}

// TouchLastUsed records now as a profile's lastUsedAt.
func (s *Store) TouchLastUsed(ctx context.Context, id string, now int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE profiles SET last_used_at = ? WHERE id = ?`, now, id)
	if err != nil {
		return errs.Storage("profile.TouchLastUsed", err)
	}

	return nil
}

// EnableSync turns on sync for a profile with the given credentials.
func (s *Store) EnableSync(ctx context.Context, id, apiKey, serverProfileSlug string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE profiles SET sync_enabled = 1, api_key = ?, server_profile_slug = ? WHERE id = ?`,
		apiKey, serverProfileSlug, id)
	if err != nil {
		return errs.Storage("profile.EnableSync", err)
	}
	return checkAffected(res, "profile.EnableSync", id)
}

// DisableSync turns off sync for a profile, clearing its credentials.
func (s *Store) DisableSync(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE profiles SET sync_enabled = 0, api_key = '', server_profile_slug = '' WHERE id = ?`, id)
	if err != nil {
		return errs.Storage("profile.DisableSync", err)
	}
	return checkAffected(res, "profile.DisableSync", id)
}

// GetSyncConfig returns the sync-relevant subset of a profile's fields.
func (s *Store) GetSyncConfig(ctx context.Context, id string) (*SyncConfig, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return &SyncConfig{
		ProfileID:         p.ID,
		APIKey:            p.APIKey,
		ServerProfileSlug: p.ServerProfileSlug,
		LastSyncAt:        p.LastSyncAt,
		Enabled:           p.SyncEnabled,
	}, nil
}

// UpdateLastSyncAt records the start time of the most recently completed sync.
func (s *Store) UpdateLastSyncAt(ctx context.Context, id string, syncStartTime int64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE profiles SET last_sync_at = ? WHERE id = ?`, syncStartTime, id)
	if err != nil {
		return errs.Storage("profile.UpdateLastSyncAt", err)
	}
	return checkAffected(res, "profile.UpdateLastSyncAt", id)
}

func checkAffected(res sql.Result, op, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errs.Storage(op, err)
	}
	if n == 0 {
		return errs.NotFound(op, fmt.Errorf("profile %s not found", id))
	}
	return nil
}

// GetActiveSlug returns the active-profile singleton's slug, or "" if unset.
func (s *Store) GetActiveSlug(ctx context.Context) (string, error) {
	var slug string
	err := s.db.QueryRowContext(ctx, `SELECT profile_slug FROM active_profile WHERE id = 1`).Scan(&slug)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", errs.Storage("profile.GetActiveSlug", err)
	}

	return slug, nil
}

// SetActiveSlug upserts the active-profile singleton.
func (s *Store) SetActiveSlug(ctx context.Context, slug string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO active_profile (id, profile_slug) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET profile_slug = excluded.profile_slug`, slug)
	if err != nil {
		return errs.Storage("profile.SetActiveSlug", err)
	}

	return nil
}
