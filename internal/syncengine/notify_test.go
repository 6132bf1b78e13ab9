package syncengine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// fakeChangeFeedServer is a minimal stand-in for internal/server's
// GET /notify: it accepts one websocket connection, records the
// Authorization header it received, and writes whatever changeEvents are
// pushed to it via send.
func fakeChangeFeedServer(t *testing.T) (*httptest.Server, chan changeEvent, func() string) {
	t.Helper()

	send := make(chan changeEvent, 4)
	var mu sync.Mutex
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotAuth = r.Header.Get("Authorization")
		mu.Unlock()

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			t.Errorf("server accept: %v", err)
			return
		}
		defer conn.CloseNow()

		for evt := range send {
			if err := wsjson.Write(r.Context(), conn, evt); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	getAuth := func() string {
		mu.Lock()
		defer mu.Unlock()
		return gotAuth
	}

	return srv, send, getAuth
}

func wsURL(httpURL string) string {
	return "ws" + strings.TrimPrefix(httpURL, "http")
}

func TestNotifier_Listen_TriggersOnEvent(t *testing.T) {
	srv, send, _ := fakeChangeFeedServer(t)

	var mu sync.Mutex
	var triggered []string
	trigger := func(profileID string) {
		mu.Lock()
		defer mu.Unlock()
		triggered = append(triggered, profileID)
	}

	notifier := NewNotifier(wsURL(srv.URL), "test-key", "profile-1", trigger, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- notifier.Listen(ctx) }()

	send <- changeEvent{Slug: "work"}

	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		n := len(triggered)
		mu.Unlock()
		if n > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for trigger")
		case <-time.After(10 * time.Millisecond):
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(triggered) != 1 || triggered[0] != "profile-1" {
		t.Fatalf("triggered = %v, want [profile-1]", triggered)
	}

	close(send)
	cancel()
	<-done
}

func TestNotifier_Listen_SendsBearerAuth(t *testing.T) {
	srv, send, getAuth := fakeChangeFeedServer(t)
	defer close(send)

	notifier := NewNotifier(wsURL(srv.URL), "super-secret", "profile-1", func(string) {}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	go notifier.Listen(ctx)
	defer cancel()

	deadline := time.After(2 * time.Second)
	for getAuth() == "" {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for server to observe a connection")
		case <-time.After(10 * time.Millisecond):
		}
	}

	if got := getAuth(); got != "Bearer super-secret" {
		t.Fatalf("Authorization header = %q, want %q", got, "Bearer super-secret")
	}
}

func TestNotifier_Listen_ReturnsErrorOnBadDial(t *testing.T) {
	notifier := NewNotifier("ws://127.0.0.1:0/notify", "key", "profile-1", func(string) {}, testLogger())

	err := notifier.Listen(context.Background())
	if err == nil {
		t.Fatal("expected an error dialing an unreachable server")
	}
}
