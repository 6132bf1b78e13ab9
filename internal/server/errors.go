package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/peek-app/peek-sync/internal/errs"
)

// apiError is a structured JSON error response body.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error apiError `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("server: write json response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(errorResponse{Error: apiError{Code: code, Message: message}}); err != nil {
		slog.Error("server: write error response", "error", err)
	}
}

// writeServiceError classifies err via the shared errs taxonomy and writes
// the matching HTTP status, rather than collapsing every failure to 500.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, errs.ErrValidation):
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, errs.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, errs.ErrAuth):
		writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	default:
		slog.Error("server: internal error", "op", op, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
