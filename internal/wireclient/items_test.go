package wireclient

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"
)

func TestListItems_SendsProfileQuery(t *testing.T) {
	var gotQuery string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]WireItem{{ID: "1", Type: "text", Content: "hi", Tags: []string{}}})
	})

	items, err := c.ListItems(context.Background(), "profile-uuid", "work")
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 1 || items[0].ID != "1" {
		t.Fatalf("items = %+v", items)
	}
	if gotQuery != "profile=profile-uuid&slug=work" {
		t.Errorf("query = %q", gotQuery)
	}
}

func TestListItemsSince_UsesISOTimestampPath(t *testing.T) {
	var gotPath string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode([]WireItem{})
	})

	since := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	if _, err := c.ListItemsSince(context.Background(), "p", "s", since); err != nil {
		t.Fatalf("ListItemsSince: %v", err)
	}

	want := "/items/since/2026-01-02T03:04:05Z"
	if gotPath != want {
		t.Errorf("path = %q, want %q", gotPath, want)
	}
}

func TestPostItem_RoundTrip(t *testing.T) {
	var gotBody PostItemBody

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(PostItemResponse{ID: "server-id", Created: true})
	})

	resp, err := c.PostItem(context.Background(), "p", "s", PostItemBody{
		Type: "url", Content: "https://example.com", Tags: []string{"news"}, SyncID: "local-1",
	})
	if err != nil {
		t.Fatalf("PostItem: %v", err)
	}
	if resp.ID != "server-id" || !resp.Created {
		t.Errorf("resp = %+v", resp)
	}
	if gotBody.SyncID != "local-1" || gotBody.Content != "https://example.com" {
		t.Errorf("gotBody = %+v", gotBody)
	}
}
