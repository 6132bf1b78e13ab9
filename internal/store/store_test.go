package store

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openTestAdapter(t *testing.T) *Adapter {
	t.Helper()

	ctx := context.Background()
	a, err := OpenMemory(ctx, testLogger())
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { a.Close() })

	return a
}

func TestInsertAndGetItem(t *testing.T) {
	a := openTestAdapter(t)
	ctx := context.Background()

	it := &Item{
		ID: uuid.NewString(), Type: ItemTypeURL, Content: "https://example.com",
		Metadata: "{}", CreatedAt: 1000, UpdatedAt: 1000,
	}

	if err := a.InsertItem(ctx, it); err != nil {
		t.Fatalf("InsertItem: %v", err)
	}

	got, err := a.GetItem(ctx, it.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}

	if got.Content != it.Content {
		t.Errorf("Content = %q, want %q", got.Content, it.Content)
	}
}

func TestGetItem_NotFound(t *testing.T) {
	a := openTestAdapter(t)
	ctx := context.Background()

	_, err := a.GetItem(ctx, "missing")
	if err == nil {
		t.Fatal("expected error for missing item")
	}
}

func TestUpdateItem_PartialPatch(t *testing.T) {
	a := openTestAdapter(t)
	ctx := context.Background()

	it := &Item{ID: uuid.NewString(), Type: ItemTypeText, Content: "hello", Metadata: "{}", CreatedAt: 1, UpdatedAt: 1}
	if err := a.InsertItem(ctx, it); err != nil {
		t.Fatalf("InsertItem: %v", err)
	}

	newContent := "updated"
	newUpdatedAt := int64(2)
	if err := a.UpdateItem(ctx, it.ID, ItemPatch{Content: &newContent, UpdatedAt: &newUpdatedAt}); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}

	got, err := a.GetItem(ctx, it.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}

	if got.Content != newContent || got.UpdatedAt != newUpdatedAt || got.CreatedAt != 1 {
		t.Errorf("got %+v", got)
	}
}

func TestSoftDeleteItem_HidesFromList(t *testing.T) {
	a := openTestAdapter(t)
	ctx := context.Background()

	it := &Item{ID: uuid.NewString(), Type: ItemTypeText, Content: "x", Metadata: "{}", CreatedAt: 1, UpdatedAt: 1}
	if err := a.InsertItem(ctx, it); err != nil {
		t.Fatalf("InsertItem: %v", err)
	}

	if err := a.SoftDeleteItem(ctx, it.ID, 5); err != nil {
		t.Fatalf("SoftDeleteItem: %v", err)
	}

	items, err := a.ListItems(ctx, ItemFilter{})
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	for _, i := range items {
		if i.ID == it.ID {
			t.Error("expected soft-deleted item to be excluded from default list")
		}
	}

	items, err = a.ListItems(ctx, ItemFilter{IncludeDeleted: true})
	if err != nil {
		t.Fatalf("ListItems with IncludeDeleted: %v", err)
	}
	found := false
	for _, i := range items {
		if i.ID == it.ID {
			found = true
		}
	}
	if !found {
		t.Error("expected soft-deleted item to be included when IncludeDeleted is set")
	}
}

func TestFindItemBySyncID(t *testing.T) {
	a := openTestAdapter(t)
	ctx := context.Background()

	it := &Item{ID: uuid.NewString(), Type: ItemTypeURL, Content: "x", Metadata: "{}",
		SyncID: "srv-1", SyncSource: "server", CreatedAt: 1, UpdatedAt: 1}
	if err := a.InsertItem(ctx, it); err != nil {
		t.Fatalf("InsertItem: %v", err)
	}

	got, err := a.FindItemBySyncID(ctx, "srv-1")
	if err != nil {
		t.Fatalf("FindItemBySyncID: %v", err)
	}
	if got.ID != it.ID {
		t.Errorf("ID = %q, want %q", got.ID, it.ID)
	}

	got2, err := a.FindItemBySyncID(ctx, it.ID)
	if err != nil {
		t.Fatalf("FindItemBySyncID by local id: %v", err)
	}
	if got2.ID != it.ID {
		t.Errorf("ID = %q, want %q", got2.ID, it.ID)
	}
}

func TestTagByName_CaseInsensitive(t *testing.T) {
	a := openTestAdapter(t)
	ctx := context.Background()

	tag := &Tag{ID: uuid.NewString(), Name: "Work", CreatedAt: 1, UpdatedAt: 1}
	if err := a.InsertTag(ctx, tag); err != nil {
		t.Fatalf("InsertTag: %v", err)
	}

	got, err := a.GetTagByName(ctx, "work")
	if err != nil {
		t.Fatalf("GetTagByName: %v", err)
	}
	if got.ID != tag.ID {
		t.Errorf("ID = %q, want %q", got.ID, tag.ID)
	}
}

func TestInsertTag_DuplicateNameIsConflict(t *testing.T) {
	a := openTestAdapter(t)
	ctx := context.Background()

	if err := a.InsertTag(ctx, &Tag{ID: uuid.NewString(), Name: "dup", CreatedAt: 1, UpdatedAt: 1}); err != nil {
		t.Fatalf("first InsertTag: %v", err)
	}

	err := a.InsertTag(ctx, &Tag{ID: uuid.NewString(), Name: "DUP", CreatedAt: 1, UpdatedAt: 1})
	if err == nil {
		t.Fatal("expected conflict error for duplicate case-insensitive tag name")
	}
}

func TestLinkAndUnlinkItemTag(t *testing.T) {
	a := openTestAdapter(t)
	ctx := context.Background()

	it := &Item{ID: uuid.NewString(), Type: ItemTypeURL, Content: "x", Metadata: "{}", CreatedAt: 1, UpdatedAt: 1}
	tag := &Tag{ID: uuid.NewString(), Name: "t", CreatedAt: 1, UpdatedAt: 1}
	if err := a.InsertItem(ctx, it); err != nil {
		t.Fatalf("InsertItem: %v", err)
	}
	if err := a.InsertTag(ctx, tag); err != nil {
		t.Fatalf("InsertTag: %v", err)
	}

	join := &ItemTag{ID: uuid.NewString(), ItemID: it.ID, TagID: tag.ID, CreatedAt: 1}
	if err := a.LinkItemTag(ctx, join); err != nil {
		t.Fatalf("LinkItemTag: %v", err)
	}

	linked, err := a.IsLinked(ctx, it.ID, tag.ID)
	if err != nil || !linked {
		t.Fatalf("IsLinked = %v, %v, want true, nil", linked, err)
	}

	if err := a.UnlinkItemTag(ctx, it.ID, tag.ID); err != nil {
		t.Fatalf("UnlinkItemTag: %v", err)
	}

	linked, err = a.IsLinked(ctx, it.ID, tag.ID)
	if err != nil || linked {
		t.Fatalf("IsLinked after unlink = %v, %v, want false, nil", linked, err)
	}
}

func TestSettingRoundTrip(t *testing.T) {
	a := openTestAdapter(t)
	ctx := context.Background()

	if err := a.SetSetting(ctx, &Setting{ExtensionID: "core", Key: "theme", Value: `"dark"`, UpdatedAt: 1}); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}

	got, err := a.GetSetting(ctx, "core", "theme")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if got.Value != `"dark"` {
		t.Errorf("Value = %q, want %q", got.Value, `"dark"`)
	}
}

func TestGetStats(t *testing.T) {
	a := openTestAdapter(t)
	ctx := context.Background()

	if err := a.InsertItem(ctx, &Item{ID: uuid.NewString(), Type: ItemTypeText, Metadata: "{}", CreatedAt: 1, UpdatedAt: 1}); err != nil {
		t.Fatalf("InsertItem: %v", err)
	}

	stats, err := a.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.Items != 1 {
		t.Errorf("Items = %d, want 1", stats.Items)
	}
}
