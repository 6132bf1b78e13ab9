package server

import (
	"encoding/json"
	"net/http"

	"github.com/peek-app/peek-sync/internal/datastore"
	"github.com/peek-app/peek-sync/internal/store"
	"github.com/peek-app/peek-sync/internal/wireclient"
)

// wireItem is the JSON shape exchanged with the sync engine (spec §4.5:
// "id, type, content, metadata, tags[], created_at, updated_at", all
// timestamps ISO-8601).
type wireItem struct {
	ID        string   `json:"id"`
	Type      string   `json:"type"`
	Content   string   `json:"content"`
	Metadata  string   `json:"metadata,omitempty"`
	Tags      []string `json:"tags"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

type postItemBody struct {
	Type     string   `json:"type"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags"`
	Metadata string   `json:"metadata,omitempty"`
	SyncID   string   `json:"sync_id"`
}

type postItemResponse struct {
	ID      string `json:"id"`
	Created bool   `json:"created"`
}

// resolveProfileSlug reads the "slug" and "profile" query parameters (spec
// §4.5: "profile={profileUUID}&slug={slug} so that a server migrating from
// slug-keyed to UUID-keyed profile storage can resolve either"). This
// server keys its data directories by slug; profile is accepted so older
// or newer clients can always supply one, but is not itself resolved to a
// different slug since this implementation has no separate profile
// registry — a profile's slug IS its directory name.
func resolveProfileSlug(r *http.Request) string {
	if slug := r.URL.Query().Get("slug"); slug != "" {
		return slug
	}
	return "default"
}

func toWireItem(it *store.Item, tagNames []string) wireItem {
	return wireItem{
		ID: it.ID, Type: it.Type, Content: it.Content, Metadata: it.Metadata,
		Tags:      tagNames,
		CreatedAt: wireclient.FormatTime(it.CreatedAt),
		UpdatedAt: wireclient.FormatTime(it.UpdatedAt),
	}
}

func (s *Server) itemTags(r *http.Request, ds *datastore.Service, itemID string) []string {
	result := ds.GetItemTags(r.Context(), itemID)
	if !result.Success {
		return []string{}
	}
	names := make([]string, len(result.Data))
	for i, t := range result.Data {
		names[i] = t.Name
	}
	return names
}

// handleListItems serves GET /items?profile=&slug=.
func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	slug := resolveProfileSlug(r)

	ds, err := s.pool.get(r.Context(), userID, slug)
	if err != nil {
		writeServiceError(w, "server.handleListItems", err)
		return
	}

	result := ds.QueryItems(r.Context(), store.ItemFilter{SortBy: store.SortByCreated})
	if !result.Success {
		writeServiceError(w, "server.handleListItems", result.Err)
		return
	}

	s.writeItemList(w, r, ds, result.Data)
}

// handleListItemsSince serves GET /items/since/{iso}?profile=&slug=.
func (s *Server) handleListItemsSince(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	slug := resolveProfileSlug(r)

	since, err := wireclient.ParseTime(r.PathValue("iso"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid timestamp: "+err.Error())
		return
	}

	ds, err := s.pool.get(r.Context(), userID, slug)
	if err != nil {
		writeServiceError(w, "server.handleListItemsSince", err)
		return
	}

	result := ds.QueryItems(r.Context(), store.ItemFilter{Since: since, SortBy: store.SortByUpdated})
	if !result.Success {
		writeServiceError(w, "server.handleListItemsSince", result.Err)
		return
	}

	s.writeItemList(w, r, ds, result.Data)
}

func (s *Server) writeItemList(w http.ResponseWriter, r *http.Request, ds *datastore.Service, items []*store.Item) {
	out := make([]wireItem, len(items))
	for i, it := range items {
		out[i] = toWireItem(it, s.itemTags(r, ds, it.ID))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleGetItem serves GET /items/{id}.
func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	slug := resolveProfileSlug(r)
	id := r.PathValue("id")

	ds, err := s.pool.get(r.Context(), userID, slug)
	if err != nil {
		writeServiceError(w, "server.handleGetItem", err)
		return
	}

	result := ds.GetItem(r.Context(), id)
	if !result.Success {
		writeServiceError(w, "server.handleGetItem", result.Err)
		return
	}

	writeJSON(w, http.StatusOK, toWireItem(result.Data, s.itemTags(r, ds, id)))
}

// handlePostItem serves POST /items?profile=&slug= — upsert by sync_id
// (spec §4.5 "Push", §4.6 "Upsert by sync_id; echoes id, created").
func (s *Server) handlePostItem(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	slug := resolveProfileSlug(r)

	var body postItemBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body: "+err.Error())
		return
	}
	if body.SyncID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "sync_id is required")
		return
	}

	ds, err := s.pool.get(r.Context(), userID, slug)
	if err != nil {
		writeServiceError(w, "server.handlePostItem", err)
		return
	}

	result := ds.UpsertByID(r.Context(), body.SyncID, body.Type, body.Content, body.Metadata, body.Tags)
	if !result.Success {
		writeServiceError(w, "server.handlePostItem", result.Err)
		return
	}

	s.hub.broadcast(poolKey(userID, slug))

	status := http.StatusOK
	if result.Data.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, postItemResponse{ID: result.Data.ID, Created: result.Data.Created})
}

// handlePatchItemTags serves PATCH /items/{id}/tags — replace tag set.
func (s *Server) handlePatchItemTags(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	slug := resolveProfileSlug(r)
	id := r.PathValue("id")

	var body struct {
		Tags []string `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body: "+err.Error())
		return
	}

	ds, err := s.pool.get(r.Context(), userID, slug)
	if err != nil {
		writeServiceError(w, "server.handlePatchItemTags", err)
		return
	}

	result := ds.ReplaceItemTagSet(r.Context(), id, body.Tags)
	if !result.Success {
		writeServiceError(w, "server.handlePatchItemTags", result.Err)
		return
	}

	updated := ds.GetItem(r.Context(), id)
	if !updated.Success {
		writeServiceError(w, "server.handlePatchItemTags", updated.Err)
		return
	}

	s.hub.broadcast(poolKey(userID, slug))

	writeJSON(w, http.StatusOK, toWireItem(updated.Data, body.Tags))
}

// handleDeleteItem serves DELETE /items/{id} — soft delete.
func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	slug := resolveProfileSlug(r)
	id := r.PathValue("id")

	ds, err := s.pool.get(r.Context(), userID, slug)
	if err != nil {
		writeServiceError(w, "server.handleDeleteItem", err)
		return
	}

	result := ds.DeleteItem(r.Context(), id)
	if !result.Success {
		writeServiceError(w, "server.handleDeleteItem", result.Err)
		return
	}

	s.hub.broadcast(poolKey(userID, slug))

	w.WriteHeader(http.StatusNoContent)
}
