// Package itemref defines the small identity types shared between the
// datastore, sync engine and server mirror: a profile reference carried on
// every wire request, and a composite item key used for map lookups.
package itemref

import "fmt"

// ProfileRef identifies which profile a request concerns. The server accepts
// either component to resolve the profile, since a server migrating from
// slug-keyed to UUID-keyed storage may only have one of the two at first.
//
// The zero value represents an absent reference.
type ProfileRef struct {
	ID   string // profile UUID, stable across renames
	Slug string // filesystem-safe profile name
}

// NewProfileRef builds a ProfileRef from a profile UUID and slug. At least
// one of the two must be non-empty.
func NewProfileRef(id, slug string) (ProfileRef, error) {
	if id == "" && slug == "" {
		return ProfileRef{}, fmt.Errorf("itemref: profile ref requires id or slug")
	}
	return ProfileRef{ID: id, Slug: slug}, nil
}

// IsZero reports whether both components are empty.
func (r ProfileRef) IsZero() bool {
	return r.ID == "" && r.Slug == ""
}

// String returns "id:slug" for logging.
func (r ProfileRef) String() string {
	return r.ID + ":" + r.Slug
}

// ItemKey is a composite key used to look up an item by either its local id
// or its server-assigned sync id, without ad-hoc string concatenation at
// every call site.
type ItemKey struct {
	LocalID string
	SyncID  string
}

// NewItemKey builds an ItemKey from a local id and an optional sync id.
func NewItemKey(localID, syncID string) ItemKey {
	return ItemKey{LocalID: localID, SyncID: syncID}
}

// IsZero reports whether both components are empty.
func (k ItemKey) IsZero() bool {
	return k.LocalID == "" && k.SyncID == ""
}

// String returns "localID/syncID" for logging.
func (k ItemKey) String() string {
	return k.LocalID + "/" + k.SyncID
}
