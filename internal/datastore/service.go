package datastore

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/peek-app/peek-sync/internal/errs"
	"github.com/peek-app/peek-sync/internal/store"
	"github.com/peek-app/peek-sync/pkg/contenthash"
)

// Service is the public CRUD/query surface used by the CLI, the sync
// engine, and the server mirror. It owns every row's lifecycle; the sync
// engine is only permitted to mutate sync fields and, when applying server
// changes, content/metadata/timestamps and tag sets — never the fields
// owned purely by local user action (starred, archived, visit tracking).
type Service struct {
	adapter *store.Adapter
	logger  *slog.Logger
	nowFunc func() time.Time
}

// New constructs a Service over an already-open storage adapter.
func New(adapter *store.Adapter, logger *slog.Logger) *Service {
	return &Service{adapter: adapter, logger: logger, nowFunc: time.Now}
}

func (s *Service) now() int64 {
	return s.nowFunc().UnixMilli()
}

// AddItemOpts carries the optional fields accepted by AddItem.
type AddItemOpts struct {
	Content  string
	MimeType string
	Metadata string
}

// AddItem creates a new item, normalizing URL content for type "url", and
// returns its generated id.
func (s *Service) AddItem(ctx context.Context, itemType string, opts AddItemOpts) Result[string] {
	if itemType != store.ItemTypeURL && itemType != store.ItemTypeText &&
		itemType != store.ItemTypeTagset && itemType != store.ItemTypeImage {
		return Fail[string](errs.Validation("datastore.AddItem", nil))
	}

	content := opts.Content
	if itemType == store.ItemTypeURL && content != "" {
		content = NormalizeURL(content)
	}

	metadata := opts.Metadata
	if metadata == "" {
		metadata = "{}"
	}

	var contentHash string
	if itemType == store.ItemTypeImage && content != "" {
		contentHash = contenthash.HashBytes([]byte(content))
	}

	now := s.now()
	it := &store.Item{
		ID:          uuid.NewString(),
		Type:        itemType,
		Content:     content,
		ContentHash: contentHash,
		MimeType:    opts.MimeType,
		Metadata:    metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.adapter.InsertItem(ctx, it); err != nil {
		return Fail[string](err)
	}

	return Ok(it.ID)
}

// UpdateItemFields is the partial-update payload for UpdateItem. Only
// content, mimeType, metadata, starred and archived may be touched by a
// direct caller — createdAt and syncId are immutable once set here.
type UpdateItemFields struct {
	Content  *string
	MimeType *string
	Metadata *string
	Starred  *bool
	Archived *bool
}

// UpdateItem applies a partial update and bumps updatedAt. A changed
// Content on an image item recomputes its content_hash dedup key to match.
func (s *Service) UpdateItem(ctx context.Context, id string, fields UpdateItemFields) Result[struct{}] {
	now := s.now()
	patch := store.ItemPatch{
		Content:   fields.Content,
		MimeType:  fields.MimeType,
		Metadata:  fields.Metadata,
		Starred:   fields.Starred,
		Archived:  fields.Archived,
		UpdatedAt: &now,
	}

	if fields.Content != nil {
		existing, err := s.adapter.GetItem(ctx, id)
		if err != nil {
			return Fail[struct{}](err)
		}
		if existing.Type == store.ItemTypeImage {
			hash := contenthash.HashBytes([]byte(*fields.Content))
			patch.ContentHash = &hash
		}
	}

	if err := s.adapter.UpdateItem(ctx, id, patch); err != nil {
		return Fail[struct{}](err)
	}

	return Ok(struct{}{})
}

// DeleteItem soft-deletes an item by setting deletedAt to now.
func (s *Service) DeleteItem(ctx context.Context, id string) Result[struct{}] {
	if err := s.adapter.SoftDeleteItem(ctx, id, s.now()); err != nil {
		return Fail[struct{}](err)
	}

	return Ok(struct{}{})
}

// GetItem returns an item by id.
func (s *Service) GetItem(ctx context.Context, id string) Result[*store.Item] {
	it, err := s.adapter.GetItem(ctx, id)
	if err != nil {
		return Fail[*store.Item](err)
	}

	return Ok(it)
}

// QueryItems returns items matching filter.
func (s *Service) QueryItems(ctx context.Context, filter store.ItemFilter) Result[[]*store.Item] {
	items, err := s.adapter.ListItems(ctx, filter)
	if err != nil {
		return Fail[[]*store.Item](err)
	}

	return Ok(items)
}

// GetStats returns row counts across the schema.
func (s *Service) GetStats(ctx context.Context) Result[*store.Stats] {
	stats, err := s.adapter.GetStats(ctx)
	if err != nil {
		return Fail[*store.Stats](err)
	}

	return Ok(stats)
}

// SetSetting upserts a namespaced setting value.
func (s *Service) SetSetting(ctx context.Context, namespace, key, jsonValue string) Result[struct{}] {
	err := s.adapter.SetSetting(ctx, &store.Setting{
		ExtensionID: namespace, Key: key, Value: jsonValue, UpdatedAt: s.now(),
	})
	if err != nil {
		return Fail[struct{}](err)
	}

	return Ok(struct{}{})
}

// GetSetting returns the value under (namespace, key).
func (s *Service) GetSetting(ctx context.Context, namespace, key string) Result[string] {
	setting, err := s.adapter.GetSetting(ctx, namespace, key)
	if err != nil {
		return Fail[string](err)
	}

	return Ok(setting.Value)
}

// AddVisitOpts carries the optional fields accepted by AddVisit.
type AddVisitOpts struct {
	VisitedAt int64 // 0 = now
}

// AddVisit records a visit row and bumps the item's visitCount/lastVisitAt.
func (s *Service) AddVisit(ctx context.Context, itemID string, opts AddVisitOpts) Result[struct{}] {
	visitedAt := opts.VisitedAt
	if visitedAt == 0 {
		visitedAt = s.now()
	}

	if err := s.adapter.InsertVisit(ctx, &store.Visit{ID: uuid.NewString(), ItemID: itemID, VisitedAt: visitedAt}); err != nil {
		return Fail[struct{}](err)
	}

	it, err := s.adapter.GetItem(ctx, itemID)
	if err != nil {
		return Fail[struct{}](err)
	}

	visitCount := it.VisitCount + 1
	if err := s.adapter.UpdateItem(ctx, itemID, store.ItemPatch{
		VisitCount:  &visitCount,
		LastVisitAt: &visitedAt,
	}); err != nil {
		return Fail[struct{}](err)
	}

	return Ok(struct{}{})
}
