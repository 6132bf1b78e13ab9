package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/peek-app/peek-sync/internal/errs"
)

const tagColumns = `id, name, slug, color, parent_id, frequency, last_used_at, frecency_score, created_at, updated_at`

func scanTag(row interface{ Scan(...any) error }) (*Tag, error) {
	var t Tag
	var slug, color, parentID sql.NullString

	err := row.Scan(&t.ID, &t.Name, &slug, &color, &parentID,
		&t.Frequency, &t.LastUsedAt, &t.FrecencyScore, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}

	t.Slug = slug.String
	t.Color = color.String
	t.ParentID = parentID.String

	return &t, nil
}

// GetTag returns a tag by id.
func (a *Adapter) GetTag(ctx context.Context, id string) (*Tag, error) {
	row := a.db.QueryRowContext(ctx, `SELECT `+tagColumns+` FROM tags WHERE id = ?`, id)

	t, err := scanTag(row)
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("store.GetTag", fmt.Errorf("tag %s not found", id))
	}
	if err != nil {
		return nil, classify("store.GetTag", err)
	}

	return t, nil
}

// GetTagByName looks up a tag case-insensitively by name.
func (a *Adapter) GetTagByName(ctx context.Context, name string) (*Tag, error) {
	row := a.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE name = ? COLLATE NOCASE`, name)

	t, err := scanTag(row)
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("store.GetTagByName", fmt.Errorf("tag %q not found", name))
	}
	if err != nil {
		return nil, classify("store.GetTagByName", err)
	}

	return t, nil
}

// InsertTag inserts a new tag row.
func (a *Adapter) InsertTag(ctx context.Context, t *Tag) error {
	_, err := a.db.ExecContext(ctx, `INSERT INTO tags (`+tagColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, nullStr(t.Slug), nullStr(t.Color), nullStr(t.ParentID),
		t.Frequency, t.LastUsedAt, t.FrecencyScore, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return classify("store.InsertTag", err)
	}

	return nil
}

// UpdateTag overwrites mutable tag fields (frequency, lastUsedAt, frecencyScore).
func (a *Adapter) UpdateTag(ctx context.Context, t *Tag) error {
	_, err := a.db.ExecContext(ctx,
		`UPDATE tags SET name = ?, slug = ?, color = ?, parent_id = ?,
			frequency = ?, last_used_at = ?, frecency_score = ?, updated_at = ?
		 WHERE id = ?`,
		t.Name, nullStr(t.Slug), nullStr(t.Color), nullStr(t.ParentID),
		t.Frequency, t.LastUsedAt, t.FrecencyScore, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return classify("store.UpdateTag", err)
	}

	return nil
}

// ListAllTags returns every tag, ordered by frecencyScore descending with
// updatedAt as a tie-breaker.
func (a *Adapter) ListAllTags(ctx context.Context) ([]*Tag, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT `+tagColumns+` FROM tags ORDER BY frecency_score DESC, updated_at DESC`)
	if err != nil {
		return nil, classify("store.ListAllTags", err)
	}
	defer rows.Close()

	var tags []*Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, classify("store.ListAllTags", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("store.ListAllTags", err)
	}

	return tags, nil
}

// TagsetCandidate pairs a tagset item's id with its (unsorted) tag names,
// for callers that need to compare tag sets under their own collation rules
// (e.g. Unicode case folding) rather than SQLite's byte-order ASC.
type TagsetCandidate struct {
	ItemID   string
	TagNames []string
}

// ListTagsetCandidates returns every non-deleted tagset item with its tag
// names, for FindTagsetByTags-style matching performed by the caller.
func (a *Adapter) ListTagsetCandidates(ctx context.Context) ([]TagsetCandidate, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT items.id FROM items
		WHERE items.type = ? AND items.deleted_at = 0`, ItemTypeTagset)
	if err != nil {
		return nil, classify("store.ListTagsetCandidates", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, classify("store.ListTagsetCandidates", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("store.ListTagsetCandidates", err)
	}

	candidates := make([]TagsetCandidate, 0, len(ids))
	for _, id := range ids {
		names, err := a.tagNamesForItem(ctx, id)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, TagsetCandidate{ItemID: id, TagNames: names})
	}

	return candidates, nil
}

func (a *Adapter) tagNamesForItem(ctx context.Context, itemID string) ([]string, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT tags.name FROM tags
		JOIN item_tags ON item_tags.tag_id = tags.id
		WHERE item_tags.item_id = ?`, itemID)
	if err != nil {
		return nil, classify("store.tagNamesForItem", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, classify("store.tagNamesForItem", err)
		}
		names = append(names, name)
	}

	return names, rows.Err()
}
