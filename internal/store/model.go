// Package store implements the SQLite storage adapter: a thin, uniform
// interface over items, tags, item-tags, and settings, plus the lookups the
// datastore service and sync engine need (by sync id, by content, by tag
// set). It classifies every failure into errs.Kind and never retries —
// retries belong to the sync engine.
package store

// Item is the unified content entity: url, text, tagset, or image.
type Item struct {
	ID          string
	Type        string
	Content     string
	ContentHash string // content-addressing key for dedup; only set for type "image"
	MimeType    string
	Metadata    string // JSON, default "{}"
	SyncID      string
	SyncSource  string // "" = local-only, "server" = known to server
	SyncedAt    int64
	CreatedAt   int64
	UpdatedAt   int64
	DeletedAt   int64
	Starred     bool
	Archived    bool
	VisitCount  int64
	LastVisitAt int64
}

// Item type constants.
const (
	ItemTypeURL    = "url"
	ItemTypeText   = "text"
	ItemTypeTagset = "tagset"
	ItemTypeImage  = "image"
)

// ItemPatch describes a partial update to an item; nil fields are skipped.
type ItemPatch struct {
	Content     *string
	ContentHash *string
	MimeType    *string
	Metadata    *string
	SyncID      *string
	SyncSource  *string
	SyncedAt    *int64
	UpdatedAt   *int64
	DeletedAt   *int64
	Starred     *bool
	Archived    *bool
	VisitCount  *int64
	LastVisitAt *int64
	CreatedAt   *int64
}

// Tag is a normalized entry in the tag dictionary.
type Tag struct {
	ID            string
	Name          string
	Slug          string
	Color         string
	ParentID      string
	Frequency     int64
	LastUsedAt    int64
	FrecencyScore float64
	CreatedAt     int64
	UpdatedAt     int64
}

// ItemTag is the many-to-many join row between items and tags.
type ItemTag struct {
	ID        string
	ItemID    string
	TagID     string
	CreatedAt int64
}

// Visit records a single visit to an item.
type Visit struct {
	ID        string
	ItemID    string
	VisitedAt int64
}

// Setting is a namespaced key/value row.
type Setting struct {
	ExtensionID string
	Key         string
	Value       string
	UpdatedAt   int64
}

// ItemFilter narrows the result of ListItems.
type ItemFilter struct {
	Type            string // "" = any
	Since           int64  // 0 = no lower bound; returns updatedAt > Since
	Tag             string // tag id; "" = no filter
	Limit           int
	SortBy          SortField
	IncludeDeleted  bool
}

// SortField selects the ORDER BY column for item queries.
type SortField int

const (
	SortByCreated SortField = iota
	SortByUpdated
)

// Stats aggregates row counts across the schema, for getStats.
type Stats struct {
	Items    int64
	Tags     int64
	ItemTags int64
	Settings int64
}
