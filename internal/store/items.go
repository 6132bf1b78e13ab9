package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/peek-app/peek-sync/internal/errs"
)

const itemColumns = `id, type, content, content_hash, mime_type, metadata, sync_id, sync_source,
	synced_at, created_at, updated_at, deleted_at, starred, archived,
	visit_count, last_visit_at`

func scanItem(row interface{ Scan(...any) error }) (*Item, error) {
	var it Item
	var content, contentHash, mimeType, syncID, syncSource sql.NullString

	err := row.Scan(
		&it.ID, &it.Type, &content, &contentHash, &mimeType, &it.Metadata, &syncID, &syncSource,
		&it.SyncedAt, &it.CreatedAt, &it.UpdatedAt, &it.DeletedAt, &it.Starred, &it.Archived,
		&it.VisitCount, &it.LastVisitAt,
	)
	if err != nil {
		return nil, err
	}

	it.Content = content.String
	it.ContentHash = contentHash.String
	it.MimeType = mimeType.String
	it.SyncID = syncID.String
	it.SyncSource = syncSource.String

	return &it, nil
}

// GetItem returns a single item by id, or errs.NotFound if none exists.
func (a *Adapter) GetItem(ctx context.Context, id string) (*Item, error) {
	row := a.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)

	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("store.GetItem", fmt.Errorf("item %s not found", id))
	}
	if err != nil {
		return nil, classify("store.GetItem", err)
	}

	return it, nil
}

// ListItems returns items matching filter, newest-first unless SortBy says
// otherwise, excluding soft-deleted rows unless IncludeDeleted is set.
func (a *Adapter) ListItems(ctx context.Context, filter ItemFilter) ([]*Item, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT `)
	if filter.Tag != "" {
		sb.WriteString(`DISTINCT `)
	}
	sb.WriteString(itemColumns)
	sb.WriteString(` FROM items`)

	var args []any
	var where []string

	if filter.Tag != "" {
		sb.WriteString(` JOIN item_tags ON item_tags.item_id = items.id`)
		where = append(where, `item_tags.tag_id = ?`)
		args = append(args, filter.Tag)
	}

	if !filter.IncludeDeleted {
		where = append(where, `deleted_at = 0`)
	}

	if filter.Type != "" {
		where = append(where, `type = ?`)
		args = append(args, filter.Type)
	}

	if filter.Since > 0 {
		where = append(where, `updated_at > ?`)
		args = append(args, filter.Since)
	}

	if len(where) > 0 {
		sb.WriteString(` WHERE `)
		sb.WriteString(strings.Join(where, " AND "))
	}

	switch filter.SortBy {
	case SortByUpdated:
		sb.WriteString(` ORDER BY updated_at DESC`)
	default:
		sb.WriteString(` ORDER BY created_at DESC`)
	}

	if filter.Limit > 0 {
		sb.WriteString(fmt.Sprintf(` LIMIT %d`, filter.Limit))
	}

	rows, err := a.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, classify("store.ListItems", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, classify("store.ListItems", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("store.ListItems", err)
	}

	return items, nil
}

// InsertItem inserts a new item row. Every field must already be populated
// by the caller (the datastore service assigns id and timestamps).
func (a *Adapter) InsertItem(ctx context.Context, it *Item) error {
	_, err := a.db.ExecContext(ctx, `INSERT INTO items (`+itemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		it.ID, it.Type, nullStr(it.Content), nullStr(it.ContentHash), nullStr(it.MimeType), it.Metadata,
		nullStr(it.SyncID), nullStr(it.SyncSource), it.SyncedAt, it.CreatedAt, it.UpdatedAt,
		it.DeletedAt, it.Starred, it.Archived, it.VisitCount, it.LastVisitAt,
	)
	if err != nil {
		return classify("store.InsertItem", err)
	}

	return nil
}

// UpdateItem applies a partial update, skipping nil patch fields.
func (a *Adapter) UpdateItem(ctx context.Context, id string, patch ItemPatch) error {
	var sets []string
	var args []any

	add := func(col string, val any) {
		sets = append(sets, col+" = ?")
		args = append(args, val)
	}

	if patch.Content != nil {
		add("content", nullStr(*patch.Content))
	}
	if patch.ContentHash != nil {
		add("content_hash", nullStr(*patch.ContentHash))
	}
	if patch.MimeType != nil {
		add("mime_type", nullStr(*patch.MimeType))
	}
	if patch.Metadata != nil {
		add("metadata", *patch.Metadata)
	}
	if patch.SyncID != nil {
		add("sync_id", nullStr(*patch.SyncID))
	}
	if patch.SyncSource != nil {
		add("sync_source", nullStr(*patch.SyncSource))
	}
	if patch.SyncedAt != nil {
		add("synced_at", *patch.SyncedAt)
	}
	if patch.UpdatedAt != nil {
		add("updated_at", *patch.UpdatedAt)
	}
	if patch.DeletedAt != nil {
		add("deleted_at", *patch.DeletedAt)
	}
	if patch.Starred != nil {
		add("starred", *patch.Starred)
	}
	if patch.Archived != nil {
		add("archived", *patch.Archived)
	}
	if patch.VisitCount != nil {
		add("visit_count", *patch.VisitCount)
	}
	if patch.LastVisitAt != nil {
		add("last_visit_at", *patch.LastVisitAt)
	}
	if patch.CreatedAt != nil {
		add("created_at", *patch.CreatedAt)
	}

	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := `UPDATE items SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`

	res, err := a.db.ExecContext(ctx, query, args...)
	if err != nil {
		return classify("store.UpdateItem", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return classify("store.UpdateItem", err)
	}
	if n == 0 {
		return errs.NotFound("store.UpdateItem", fmt.Errorf("item %s not found", id))
	}

	return nil
}

// SoftDeleteItem sets deletedAt on an item, hiding it from default queries.
func (a *Adapter) SoftDeleteItem(ctx context.Context, id string, deletedAt int64) error {
	return a.UpdateItem(ctx, id, ItemPatch{DeletedAt: &deletedAt})
}

// HardDeleteItem removes an item row and its joins permanently.
func (a *Adapter) HardDeleteItem(ctx context.Context, id string) error {
	_, err := a.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return classify("store.HardDeleteItem", err)
	}

	return nil
}

// FindItemBySyncID returns the item whose id or sync_id equals x.
func (a *Adapter) FindItemBySyncID(ctx context.Context, x string) (*Item, error) {
	row := a.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ? OR sync_id = ? LIMIT 1`, x, x)

	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("store.FindItemBySyncID", fmt.Errorf("no item for sync id %s", x))
	}
	if err != nil {
		return nil, classify("store.FindItemBySyncID", err)
	}

	return it, nil
}

// FindItemByContent returns the first non-deleted item with the given type
// and content, used for dedup lookups.
func (a *Adapter) FindItemByContent(ctx context.Context, itemType, content string) (*Item, error) {
	row := a.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE type = ? AND content = ? AND deleted_at = 0 LIMIT 1`,
		itemType, content)

	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("store.FindItemByContent", fmt.Errorf("no item for content"))
	}
	if err != nil {
		return nil, classify("store.FindItemByContent", err)
	}

	return it, nil
}

// FindItemByContentHash returns the first non-deleted item with the given
// type and content_hash. Image content (arbitrary bytes, possibly large)
// isn't a useful equality key by itself, so image dedup matches on its
// content-addressing hash instead (see pkg/contenthash).
func (a *Adapter) FindItemByContentHash(ctx context.Context, itemType, contentHash string) (*Item, error) {
	row := a.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE type = ? AND content_hash = ? AND deleted_at = 0 LIMIT 1`,
		itemType, contentHash)

	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("store.FindItemByContentHash", fmt.Errorf("no item for content hash"))
	}
	if err != nil {
		return nil, classify("store.FindItemByContentHash", err)
	}

	return it, nil
}

// ListItemsPendingPush returns non-deleted items the sync engine should push
// (spec §4.5 "Push"): items never known to the server (syncSource=""), plus
// — once a prior sync has happened (lastSyncTime > 0) — items the server
// already knows about but that have been locally modified since their last
// sync (syncedAt > 0 AND updatedAt > syncedAt). Items with
// syncSource="server" AND updatedAt <= syncedAt are never returned; this is
// the predicate that prevents re-pushing what was just pulled.
func (a *Adapter) ListItemsPendingPush(ctx context.Context, lastSyncTime int64) ([]*Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE deleted_at = 0 AND (sync_source IS NULL OR sync_source = ''`
	if lastSyncTime > 0 {
		query += ` OR (synced_at > 0 AND updated_at > synced_at)`
	}
	query += `) ORDER BY created_at ASC`

	rows, err := a.db.QueryContext(ctx, query)
	if err != nil {
		return nil, classify("store.ListItemsPendingPush", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, classify("store.ListItemsPendingPush", err)
		}
		items = append(items, it)
	}

	return items, rows.Err()
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
