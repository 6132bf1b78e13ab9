package wireclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New(srv.URL, "test-key", "1", "1", "peek-test/0.1", srv.Client())
	c.sleepFunc = func(ctx context.Context, d time.Duration) error { return nil }

	return c
}

func TestDo_SendsVersionHeadersAndAuth(t *testing.T) {
	var gotAuth, gotDatastore, gotProtocol, gotClient string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotDatastore = r.Header.Get(HeaderDatastoreVersion)
		gotProtocol = r.Header.Get(HeaderProtocolVersion)
		gotClient = r.Header.Get(HeaderClient)
		w.Header().Set(HeaderDatastoreVersion, "1")
		w.Header().Set(HeaderProtocolVersion, "1")
		w.WriteHeader(http.StatusOK)
	})

	resp, err := c.Do(context.Background(), http.MethodGet, "/items", nil)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	resp.Body.Close()

	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotDatastore != "1" || gotProtocol != "1" {
		t.Errorf("version headers = %q, %q", gotDatastore, gotProtocol)
	}
	if gotClient != "peek-test/0.1" {
		t.Errorf("client header = %q", gotClient)
	}
}

func TestDo_VersionMismatchFailsImmediately(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(HeaderDatastoreVersion, "2")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`[{"id":"should-not-be-read"}]`))
	})

	_, err := c.Do(context.Background(), http.MethodGet, "/items", nil)
	if !errors.Is(err, ErrVersion) {
		t.Fatalf("expected ErrVersion, got %v", err)
	}
}

func TestDo_LegacyServerWithNoVersionHeadersProceeds(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	resp, err := c.Do(context.Background(), http.MethodGet, "/items", nil)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	resp.Body.Close()
}

func TestDo_ClassifiesNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`not found`))
	})

	_, err := c.Do(context.Background(), http.MethodGet, "/items/x", nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDo_RetriesOnServerErrorThenSucceeds(t *testing.T) {
	attempts := 0

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	resp, err := c.Do(context.Background(), http.MethodGet, "/items", nil)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	resp.Body.Close()

	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestDo_RequestCanceledStopsRetrying(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Do(ctx, http.MethodGet, "/items", nil)
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
}
