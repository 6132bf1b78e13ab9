package datastore

import (
	"context"
	"errors"

	"github.com/peek-app/peek-sync/internal/errs"
	"github.com/peek-app/peek-sync/internal/store"
	"github.com/peek-app/peek-sync/pkg/contenthash"
)

// UpsertResult is the outcome of UpsertByID: the row's id (always equal to
// the requested id) and whether it was newly created.
type UpsertResult struct {
	ID      string
	Created bool
}

// UpsertByID is the server-side half of spec §4.5 "Push" / §4.6 "POST
// /items": the pushing client proposes an id (its own local id on first
// push, or the previously-assigned server id thereafter), and the server's
// mirror datastore adopts that id as its own primary key rather than
// generating a new one. If no row with that id exists, one is created; if
// one does, its content/metadata/tags are replaced and updatedAt bumped.
func (s *Service) UpsertByID(ctx context.Context, id, itemType, content, metadata string, tagNames []string) Result[UpsertResult] {
	if metadata == "" {
		metadata = "{}"
	}

	now := s.now()

	var contentHash string
	if itemType == store.ItemTypeImage && content != "" {
		contentHash = contenthash.HashBytes([]byte(content))
	}

	_, err := s.adapter.GetItem(ctx, id)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		it := &store.Item{
			ID: id, Type: itemType, Content: content, ContentHash: contentHash, Metadata: metadata,
			CreatedAt: now, UpdatedAt: now,
		}
		if err := s.adapter.InsertItem(ctx, it); err != nil {
			return Fail[UpsertResult](err)
		}
		if tagResult := s.ReplaceItemTagSet(ctx, id, tagNames); !tagResult.Success {
			return Fail[UpsertResult](tagResult.Err)
		}
		return Ok(UpsertResult{ID: id, Created: true})

	case err != nil:
		return Fail[UpsertResult](err)
	}

	patch := store.ItemPatch{
		Content:   &content,
		Metadata:  &metadata,
		UpdatedAt: &now,
	}
	if itemType == store.ItemTypeImage {
		patch.ContentHash = &contentHash
	}
	if err := s.adapter.UpdateItem(ctx, id, patch); err != nil {
		return Fail[UpsertResult](err)
	}
	if tagResult := s.ReplaceItemTagSet(ctx, id, tagNames); !tagResult.Success {
		return Fail[UpsertResult](tagResult.Err)
	}

	return Ok(UpsertResult{ID: id, Created: false})
}
