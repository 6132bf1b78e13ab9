package server

import (
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// changeEvent is pushed to subscribers of a (userID,slug) stream whenever
// that profile's datastore is mutated through the REST API, so a watching
// client can wake its sync loop instead of waiting out the poll ticker
// (spec §4.5: "an additional wakeup source alongside the poll ticker").
type changeEvent struct {
	Slug string `json:"slug"`
}

// notifyHub fans a (userID,slug) key's writes out to every client
// currently connected to GET /notify for that key. Grounded on the pack's
// poll-ticker/wake-channel pattern (syncengine.Orchestrator) rather than a
// general pub/sub library: the only thing a subscriber needs is "something
// changed," never the event itself, so a capacity-1 signal channel per
// subscriber is enough.
type notifyHub struct {
	mu   sync.Mutex
	subs map[string][]chan struct{}
}

func newNotifyHub() *notifyHub {
	return &notifyHub{subs: make(map[string][]chan struct{})}
}

func (h *notifyHub) subscribe(key string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	h.subs[key] = append(h.subs[key], ch)
	h.mu.Unlock()

	unsubscribe := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		subs := h.subs[key]
		for i, c := range subs {
			if c == ch {
				h.subs[key] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}

	return ch, unsubscribe
}

func (h *notifyHub) broadcast(key string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs[key] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// handleNotify serves GET /notify?profile=&slug=, upgrading to a websocket
// and pushing one changeEvent per mutation made to (userID,slug) through
// the REST API until the client disconnects.
func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	slug := resolveProfileSlug(r)
	key := poolKey(userID, slug)

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn("server: websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	changed, unsubscribe := s.hub.subscribe(key)
	defer unsubscribe()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-changed:
			if err := wsjson.Write(ctx, conn, changeEvent{Slug: slug}); err != nil {
				return
			}
		}
	}
}
