package datastore

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"github.com/peek-app/peek-sync/internal/errs"
	"github.com/peek-app/peek-sync/internal/store"
)

var foldCaser = cases.Fold()

// GetOrCreateTagResult is the payload of GetOrCreateTag.
type GetOrCreateTagResult struct {
	Tag     *store.Tag
	Created bool
}

// GetOrCreateTag performs a case-insensitive lookup, inserting a new tag
// row on miss. A unique-constraint race (two callers creating the same
// name concurrently) is recovered by re-reading and reporting Created=false,
// per the Conflict recovery contract.
func (s *Service) GetOrCreateTag(ctx context.Context, name string) Result[GetOrCreateTagResult] {
	if name == "" {
		return Fail[GetOrCreateTagResult](errs.Validation("datastore.GetOrCreateTag", nil))
	}

	existing, err := s.adapter.GetTagByName(ctx, name)
	if err == nil {
		return Ok(GetOrCreateTagResult{Tag: existing, Created: false})
	}
	if !errsIsNotFound(err) {
		return Fail[GetOrCreateTagResult](err)
	}

	now := s.now()
	tag := &store.Tag{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if insertErr := s.adapter.InsertTag(ctx, tag); insertErr != nil {
		if errsIsConflict(insertErr) {
			reRead, readErr := s.adapter.GetTagByName(ctx, name)
			if readErr != nil {
				return Fail[GetOrCreateTagResult](readErr)
			}
			return Ok(GetOrCreateTagResult{Tag: reRead, Created: false})
		}
		return Fail[GetOrCreateTagResult](insertErr)
	}

	return Ok(GetOrCreateTagResult{Tag: tag, Created: true})
}

// TagItemResult is the payload of TagItem.
type TagItemResult struct {
	AlreadyExists bool
}

// TagItem links itemID to tagID idempotently. On a new link it increments
// the tag's frequency, refreshes lastUsedAt, and recomputes frecencyScore.
func (s *Service) TagItem(ctx context.Context, itemID, tagID string) Result[TagItemResult] {
	linked, err := s.adapter.IsLinked(ctx, itemID, tagID)
	if err != nil {
		return Fail[TagItemResult](err)
	}
	if linked {
		return Ok(TagItemResult{AlreadyExists: true})
	}

	now := s.now()
	if err := s.adapter.LinkItemTag(ctx, &store.ItemTag{
		ID: uuid.NewString(), ItemID: itemID, TagID: tagID, CreatedAt: now,
	}); err != nil {
		return Fail[TagItemResult](err)
	}

	tag, err := s.adapter.GetTag(ctx, tagID)
	if err != nil {
		return Fail[TagItemResult](err)
	}

	tag.Frequency++
	tag.LastUsedAt = now
	tag.FrecencyScore = FrecencyScore(tag.Frequency, tag.LastUsedAt, now)
	tag.UpdatedAt = now

	if err := s.adapter.UpdateTag(ctx, tag); err != nil {
		return Fail[TagItemResult](err)
	}

	return Ok(TagItemResult{AlreadyExists: false})
}

// UntagItem removes the (itemID, tagID) link.
func (s *Service) UntagItem(ctx context.Context, itemID, tagID string) Result[struct{}] {
	if err := s.adapter.UnlinkItemTag(ctx, itemID, tagID); err != nil {
		return Fail[struct{}](err)
	}

	return Ok(struct{}{})
}

// GetItemTags returns every tag linked to itemID.
func (s *Service) GetItemTags(ctx context.Context, itemID string) Result[[]*store.Tag] {
	tags, err := s.adapter.GetItemTags(ctx, itemID)
	if err != nil {
		return Fail[[]*store.Tag](err)
	}

	return Ok(tags)
}

// GetItemsByTag returns every item linked to tagID.
func (s *Service) GetItemsByTag(ctx context.Context, tagID string) Result[[]*store.Item] {
	items, err := s.adapter.GetItemsForTag(ctx, tagID)
	if err != nil {
		return Fail[[]*store.Item](err)
	}

	return Ok(items)
}

// GetTagsByFrecency returns every tag ordered by frecencyScore descending,
// with updatedAt as a stable tie-breaker. Each tag's frecencyScore is
// recomputed against the current time before sorting, so recency is
// measured from now rather than from when the tag was last used.
func (s *Service) GetTagsByFrecency(ctx context.Context) Result[[]*store.Tag] {
	tags, err := s.adapter.ListAllTags(ctx)
	if err != nil {
		return Fail[[]*store.Tag](err)
	}

	now := s.now()
	for _, t := range tags {
		t.FrecencyScore = FrecencyScore(t.Frequency, t.LastUsedAt, now)
	}

	sort.SliceStable(tags, func(i, j int) bool {
		if tags[i].FrecencyScore != tags[j].FrecencyScore {
			return tags[i].FrecencyScore > tags[j].FrecencyScore
		}
		return tags[i].UpdatedAt > tags[j].UpdatedAt
	})

	return Ok(tags)
}

// ReplaceItemTagSet clears itemID's tag set and re-links it to exactly the
// given tag names, creating tags as needed. Used by the sync engine when
// applying a server item's tag set.
func (s *Service) ReplaceItemTagSet(ctx context.Context, itemID string, tagNames []string) Result[struct{}] {
	if err := s.adapter.ClearItemTags(ctx, itemID); err != nil {
		return Fail[struct{}](err)
	}

	for _, name := range tagNames {
		tagResult := s.GetOrCreateTag(ctx, name)
		if !tagResult.Success {
			return Fail[struct{}](tagResult.Err)
		}

		if tagResult.Data.Tag == nil {
			continue
		}

		linkResult := s.TagItem(ctx, itemID, tagResult.Data.Tag.ID)
		if !linkResult.Success {
			return Fail[struct{}](linkResult.Err)
		}
	}

	return Ok(struct{}{})
}

// normalizedTagKey folds tag names to their case-insensitive comparison
// form using Unicode case folding, for use as a findTagsetByTags key.
func normalizedTagKey(names []string) string {
	folded := make([]string, len(names))
	for i, n := range names {
		folded[i] = foldCaser.String(n)
	}
	sort.Strings(folded)

	out := ""
	for i, n := range folded {
		if i > 0 {
			out += "\t"
		}
		out += n
	}
	return out
}
