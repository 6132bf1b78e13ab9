package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/peek-app/peek-sync/internal/errs"
)

// GetSetting returns the value stored under (extensionID, key).
func (a *Adapter) GetSetting(ctx context.Context, extensionID, key string) (*Setting, error) {
	var s Setting
	s.ExtensionID = extensionID
	s.Key = key

	err := a.db.QueryRowContext(ctx,
		`SELECT value, updated_at FROM extension_settings WHERE extension_id = ? AND key = ?`,
		extensionID, key).Scan(&s.Value, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("store.GetSetting", fmt.Errorf("setting %s/%s not found", extensionID, key))
	}
	if err != nil {
		return nil, classify("store.GetSetting", err)
	}

	return &s, nil
}

// SetSetting upserts the value for (extensionID, key).
func (a *Adapter) SetSetting(ctx context.Context, s *Setting) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO extension_settings (extension_id, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(extension_id, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		s.ExtensionID, s.Key, s.Value, s.UpdatedAt)
	if err != nil {
		return classify("store.SetSetting", err)
	}

	return nil
}
