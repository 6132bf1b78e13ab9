// Package server implements the server-side datastore mirror (spec §4.6):
// a small HTTP API, one SQLite datastore per (userID, profile slug), that
// the sync engine's wireclient talks to. It has no account/provisioning
// system — a Bearer apiKey IS the userID, scoping a tenant's data directory
// directly — and no notion of "the" profile beyond what a client names in
// its profile/slug query parameters.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/peek-app/peek-sync/internal/config"
)

// Config is everything Server needs that the sync engine's ServerConfig and
// NetworkConfig sections carry between them: listen address and data
// directory from config.ServerConfig, plus the wire-protocol versions this
// server announces on every response.
type Config struct {
	ListenAddr       string
	DataDir          string
	ShutdownTimeout  time.Duration
	DatastoreVersion string
	ProtocolVersion  string
}

// ConfigFromAppConfig builds a server Config from the ambient peek.toml
// sections relevant to serving.
func ConfigFromAppConfig(cfg *config.Config) (Config, error) {
	shutdownTimeout, err := time.ParseDuration(cfg.Server.ShutdownTimeout)
	if err != nil {
		return Config{}, fmt.Errorf("server: parsing server.shutdown_timeout: %w", err)
	}

	return Config{
		ListenAddr:       cfg.Server.ListenAddr,
		DataDir:          cfg.Server.DataDir,
		ShutdownTimeout:  shutdownTimeout,
		DatastoreVersion: cfg.Network.DatastoreVersion,
		ProtocolVersion:  cfg.Network.ProtocolVersion,
	}, nil
}

// Server is the server-side datastore mirror's HTTP API.
type Server struct {
	cfg    Config
	pool   *profilePool
	hub    *notifyHub
	logger *slog.Logger
	http   *http.Server
}

// NewServer constructs a Server. It does not start listening or touch the
// filesystem beyond what cfg.DataDir requires lazily, per request.
func NewServer(cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:    cfg,
		pool:   newProfilePool(cfg.DataDir, logger),
		hub:    newNotifyHub(),
		logger: logger,
	}

	s.http = &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: s.routes(),
	}

	return s
}

// Handler returns the server's routed http.Handler without binding a
// listener, for tests that want to drive it through httptest.Server.
func (s *Server) Handler() http.Handler {
	return s.routes()
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /items", requireAuth(s.handleListItems))
	mux.HandleFunc("GET /items/since/{iso}", requireAuth(s.handleListItemsSince))
	mux.HandleFunc("GET /items/{id}", requireAuth(s.handleGetItem))
	mux.HandleFunc("POST /items", requireAuth(s.handlePostItem))
	mux.HandleFunc("PATCH /items/{id}/tags", requireAuth(s.handlePatchItemTags))
	mux.HandleFunc("DELETE /items/{id}", requireAuth(s.handleDeleteItem))
	mux.HandleFunc("GET /tags", requireAuth(s.handleListTags))
	mux.HandleFunc("GET /notify", requireAuth(s.handleNotify))

	return chain(mux, s.versionHeaders, requestIDMiddleware, recoveryMiddleware(s.logger), loggingMiddleware(s.logger))
}

// Start runs the migration pass and then blocks serving HTTP until ctx is
// canceled, at which point it shuts down within cfg.ShutdownTimeout.
func (s *Server) Start(ctx context.Context) error {
	if err := migrateAllLegacyDBs(s.cfg.DataDir, s.logger); err != nil {
		return fmt.Errorf("server: legacy migration: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server: listening", "addr", s.cfg.ListenAddr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown()
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server and closes every pooled
// profile datastore.
func (s *Server) Shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	err := s.http.Shutdown(shutdownCtx)
	s.pool.closeAll()
	return err
}
