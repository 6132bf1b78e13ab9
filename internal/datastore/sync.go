package datastore

import (
	"context"

	"github.com/google/uuid"

	"github.com/peek-app/peek-sync/internal/store"
	"github.com/peek-app/peek-sync/pkg/contenthash"
)

// PulledItem is a server item translated to Unix-ms timestamps, ready to
// apply to the local store (spec §4.5 "Pull"). The sync engine is
// responsible for the ISO-8601-to-Unix-ms conversion before calling these
// methods; the datastore service never parses wire timestamps itself.
type PulledItem struct {
	SyncID    string
	Type      string
	Content   string
	Metadata  string
	CreatedAt int64
	UpdatedAt int64
	Tags      []string
}

// InsertPulledItem creates a new local item for a server item with no
// matching local row: sync fields populated and timestamps copied from the
// server, syncedAt=now. The caller (the sync engine's tag reconciler) is
// responsible for applying item.Tags via ReplaceItemTagSet afterward.
func (s *Service) InsertPulledItem(ctx context.Context, item PulledItem) Result[string] {
	now := s.now()

	var contentHash string
	if item.Type == store.ItemTypeImage && item.Content != "" {
		contentHash = contenthash.HashBytes([]byte(item.Content))
	}

	it := &store.Item{
		ID:          uuid.NewString(),
		Type:        item.Type,
		Content:     item.Content,
		ContentHash: contentHash,
		Metadata:    item.Metadata,
		SyncID:      item.SyncID,
		SyncSource:  "server",
		SyncedAt:    now,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}

	if err := s.adapter.InsertItem(ctx, it); err != nil {
		return Fail[string](err)
	}

	return Ok(it.ID)
}

// ApplyPulledUpdate overwrites a local item's content/metadata/updatedAt
// with the server's newer copy and sets syncedAt=now (spec §4.5 "Pull",
// serverUpdatedAt > localUpdatedAt row). The caller is responsible for
// reconciling the tag set via ReplaceItemTagSet afterward.
func (s *Service) ApplyPulledUpdate(ctx context.Context, itemID string, item PulledItem) Result[struct{}] {
	now := s.now()
	updatedAt := item.UpdatedAt
	source := "server"

	patch := store.ItemPatch{
		Content:    &item.Content,
		Metadata:   &item.Metadata,
		SyncID:     &item.SyncID,
		SyncSource: &source,
		SyncedAt:   &now,
		UpdatedAt:  &updatedAt,
	}
	if item.Type == store.ItemTypeImage {
		hash := contenthash.HashBytes([]byte(item.Content))
		patch.ContentHash = &hash
	}

	if err := s.adapter.UpdateItem(ctx, itemID, patch); err != nil {
		return Fail[struct{}](err)
	}

	return Ok(struct{}{})
}

// MarkPushed records that a local item was successfully pushed to the
// server (spec §4.5 "Push", "on success, set syncId = response.id,
// syncSource='server', syncedAt=now").
func (s *Service) MarkPushed(ctx context.Context, itemID, syncID string) Result[struct{}] {
	now := s.now()
	source := "server"

	if err := s.adapter.UpdateItem(ctx, itemID, store.ItemPatch{
		SyncID:     &syncID,
		SyncSource: &source,
		SyncedAt:   &now,
	}); err != nil {
		return Fail[struct{}](err)
	}

	return Ok(struct{}{})
}
