package datastore

import (
	"context"

	"github.com/peek-app/peek-sync/internal/errs"
	"github.com/peek-app/peek-sync/internal/store"
	"github.com/peek-app/peek-sync/pkg/contenthash"
)

// FindItemBySyncID returns the item whose id or syncId equals x.
func (s *Service) FindItemBySyncID(ctx context.Context, x string) Result[*store.Item] {
	it, err := s.adapter.FindItemBySyncID(ctx, x)
	if err != nil {
		return Fail[*store.Item](err)
	}

	return Ok(it)
}

// FindItemByContent returns the first non-deleted item with the given type
// and (already-normalized, for url) content. Image content is matched by
// its content_hash instead of the raw column: two images with identical
// bytes should dedup even if they arrived through different upload paths
// (spec §4.3 "findItemByContent dedup").
func (s *Service) FindItemByContent(ctx context.Context, itemType, content string) Result[*store.Item] {
	if itemType == store.ItemTypeImage {
		it, err := s.adapter.FindItemByContentHash(ctx, itemType, contenthash.HashBytes([]byte(content)))
		if err != nil {
			return Fail[*store.Item](err)
		}
		return Ok(it)
	}

	if itemType == store.ItemTypeURL {
		content = NormalizeURL(content)
	}

	it, err := s.adapter.FindItemByContent(ctx, itemType, content)
	if err != nil {
		return Fail[*store.Item](err)
	}

	return Ok(it)
}

// ListPendingPush returns the items the sync engine should push for this
// cycle (spec §4.5 "Push" predicate), ordered oldest-created-first so push
// order matches natural iteration order.
func (s *Service) ListPendingPush(ctx context.Context, lastSyncTime int64) Result[[]*store.Item] {
	items, err := s.adapter.ListItemsPendingPush(ctx, lastSyncTime)
	if err != nil {
		return Fail[[]*store.Item](err)
	}

	return Ok(items)
}

// FindTagsetByTags returns the first non-deleted tagset item whose tag name
// set matches names exactly (case-insensitively, order-independent).
func (s *Service) FindTagsetByTags(ctx context.Context, names []string) Result[*store.Item] {
	key := normalizedTagKey(names)

	candidates, err := s.adapter.ListTagsetCandidates(ctx)
	if err != nil {
		return Fail[*store.Item](err)
	}

	for _, c := range candidates {
		if normalizedTagKey(c.TagNames) != key {
			continue
		}

		it, err := s.adapter.GetItem(ctx, c.ItemID)
		if err != nil {
			return Fail[*store.Item](err)
		}
		return Ok(it)
	}

	return Fail[*store.Item](errs.NotFound("datastore.FindTagsetByTags", nil))
}
