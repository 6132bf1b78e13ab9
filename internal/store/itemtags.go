package store

import (
	"context"

	"github.com/peek-app/peek-sync/internal/errs"
)

// GetItemTags returns every tag linked to itemID.
func (a *Adapter) GetItemTags(ctx context.Context, itemID string) ([]*Tag, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT `+tagColumns+` FROM tags
		JOIN item_tags ON item_tags.tag_id = tags.id
		WHERE item_tags.item_id = ?
		ORDER BY tags.name ASC`, itemID)
	if err != nil {
		return nil, classify("store.GetItemTags", err)
	}
	defer rows.Close()

	var tags []*Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, classify("store.GetItemTags", err)
		}
		tags = append(tags, t)
	}

	return tags, rows.Err()
}

// GetItemsForTag returns every non-deleted item linked to tagID.
func (a *Adapter) GetItemsForTag(ctx context.Context, tagID string) ([]*Item, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT `+itemColumns+` FROM items
		JOIN item_tags ON item_tags.item_id = items.id
		WHERE item_tags.tag_id = ? AND items.deleted_at = 0
		ORDER BY items.created_at DESC`, tagID)
	if err != nil {
		return nil, classify("store.GetItemsForTag", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, classify("store.GetItemsForTag", err)
		}
		items = append(items, it)
	}

	return items, rows.Err()
}

// LinkItemTag creates the (itemID, tagID) join row. id is caller-supplied
// (the datastore service generates it) so InsertItem-style callers keep
// control of id generation.
func (a *Adapter) LinkItemTag(ctx context.Context, join *ItemTag) error {
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO item_tags (id, item_id, tag_id, created_at) VALUES (?, ?, ?, ?)`,
		join.ID, join.ItemID, join.TagID, join.CreatedAt)
	if err != nil {
		return classify("store.LinkItemTag", err)
	}

	return nil
}

// IsLinked reports whether itemID is already tagged with tagID.
func (a *Adapter) IsLinked(ctx context.Context, itemID, tagID string) (bool, error) {
	var n int
	err := a.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM item_tags WHERE item_id = ? AND tag_id = ?`, itemID, tagID).Scan(&n)
	if err != nil {
		return false, classify("store.IsLinked", err)
	}

	return n > 0, nil
}

// UnlinkItemTag removes the (itemID, tagID) join row.
func (a *Adapter) UnlinkItemTag(ctx context.Context, itemID, tagID string) error {
	res, err := a.db.ExecContext(ctx,
		`DELETE FROM item_tags WHERE item_id = ? AND tag_id = ?`, itemID, tagID)
	if err != nil {
		return classify("store.UnlinkItemTag", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return classify("store.UnlinkItemTag", err)
	}
	if n == 0 {
		return errs.NotFound("store.UnlinkItemTag", nil)
	}

	return nil
}

// ClearItemTags removes every join row for itemID, used when the sync
// engine reconciles a pulled item's tag set.
func (a *Adapter) ClearItemTags(ctx context.Context, itemID string) error {
	_, err := a.db.ExecContext(ctx, `DELETE FROM item_tags WHERE item_id = ?`, itemID)
	if err != nil {
		return classify("store.ClearItemTags", err)
	}

	return nil
}
