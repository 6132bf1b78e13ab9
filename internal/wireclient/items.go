package wireclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// WireItem is the server's item shape (spec §4.5 "id, type, content,
// metadata, tags[], created_at, updated_at").
type WireItem struct {
	ID        string   `json:"id"`
	Type      string   `json:"type"`
	Content   string   `json:"content"`
	Metadata  string   `json:"metadata,omitempty"`
	Tags      []string `json:"tags"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

// PostItemBody is the request body for POST /items (spec §4.5 "Push").
type PostItemBody struct {
	Type     string   `json:"type"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags"`
	Metadata string   `json:"metadata,omitempty"`
	SyncID   string   `json:"sync_id"`
}

// PostItemResponse is the server's response to a pushed item.
type PostItemResponse struct {
	ID      string `json:"id"`
	Created bool   `json:"created"`
}

// ListItems fetches every item for a profile (lastSyncTime == 0 path).
func (c *Client) ListItems(ctx context.Context, profileID, slug string) ([]WireItem, error) {
	path := "/items?" + profileQuery(profileID, slug)
	return c.getItems(ctx, path)
}

// ListItemsSince fetches items updated after since (spec §4.5 "Pull").
func (c *Client) ListItemsSince(ctx context.Context, profileID, slug string, since time.Time) ([]WireItem, error) {
	path := fmt.Sprintf("/items/since/%s?%s", since.UTC().Format(time.RFC3339), profileQuery(profileID, slug))
	return c.getItems(ctx, path)
}

func (c *Client) getItems(ctx context.Context, path string) ([]WireItem, error) {
	resp, err := c.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var items []WireItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("wireclient: decoding items response: %w", err)
	}

	return items, nil
}

// PostItem pushes one item (spec §4.5 "Push").
func (c *Client) PostItem(ctx context.Context, profileID, slug string, item PostItemBody) (*PostItemResponse, error) {
	payload, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("wireclient: encoding item: %w", err)
	}

	path := "/items?" + profileQuery(profileID, slug)
	resp, err := c.Do(ctx, http.MethodPost, path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out PostItemResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("wireclient: decoding post-item response: %w", err)
	}

	return &out, nil
}

func profileQuery(profileID, slug string) string {
	v := url.Values{}
	v.Set("profile", profileID)
	v.Set("slug", slug)
	return v.Encode()
}
