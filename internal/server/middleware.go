package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/peek-app/peek-sync/internal/wireclient"
)

type contextKey int

const (
	ctxKeyUserID contextKey = iota
	ctxKeyRequestID
)

func userIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyUserID).(string)
	return id
}

// versionHeaders sets this server's wire-protocol version headers on every
// response (spec §4.5 "every response does the same"). Mismatch detection
// is the client's responsibility (internal/wireclient already implements
// it); the server's only obligation is to announce its own versions.
func (s *Server) versionHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(wireclient.HeaderDatastoreVersion, s.cfg.DatastoreVersion)
		w.Header().Set(wireclient.HeaderProtocolVersion, s.cfg.ProtocolVersion)
		w.Header().Set(wireclient.HeaderClient, "peek-server")
		next.ServeHTTP(w, r)
	})
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), ctxKeyRequestID, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func recoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("server: panic recovered", "panic", rec, "path", r.URL.Path)
					writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

type statusCapture struct {
	http.ResponseWriter
	code int
}

func (sc *statusCapture) WriteHeader(code int) {
	sc.code = code
	sc.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sc := &statusCapture{ResponseWriter: w, code: http.StatusOK}
			next.ServeHTTP(sc, r)
			logger.Info("request",
				"method", r.Method, "path", r.URL.Path,
				"status", sc.code, "duration", time.Since(start).String())
		})
	}
}

// requireAuth extracts the Bearer apiKey and injects it into the request
// context as the resolved user id. Peek's server has no account/provisioning
// system (an explicit Non-goal): an apiKey IS a user id, scoping a tenant's
// data directory directly rather than resolving through a user table.
func requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing or malformed authorization header")
			return
		}

		apiKey := strings.TrimPrefix(header, "Bearer ")
		if apiKey == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized", "empty bearer token")
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyUserID, apiKey)
		next(w, r.WithContext(ctx))
	}
}

func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
