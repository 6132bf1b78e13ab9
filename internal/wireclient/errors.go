// Package wireclient is the HTTP boundary between the sync engine and a
// Peek server: request construction, version headers, retry with
// exponential backoff, and status-code classification.
package wireclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for classification. Use errors.Is(err, wireclient.ErrX).
var (
	ErrBadRequest   = errors.New("wireclient: bad request")
	ErrUnauthorized = errors.New("wireclient: unauthorized")
	ErrForbidden    = errors.New("wireclient: forbidden")
	ErrNotFound     = errors.New("wireclient: not found")
	ErrConflict     = errors.New("wireclient: conflict")
	ErrThrottled    = errors.New("wireclient: throttled")
	ErrServerError  = errors.New("wireclient: server error")
	ErrVersion      = errors.New("wireclient: datastore/protocol version mismatch")
)

// WireError wraps a sentinel error with the HTTP status code and response
// body for debugging.
type WireError struct {
	StatusCode int
	Message    string
	Err        error // sentinel, for errors.Is()
}

func (e *WireError) Error() string {
	return fmt.Sprintf("wireclient: HTTP %d: %s", e.StatusCode, e.Message)
}

func (e *WireError) Unwrap() error { return e.Err }

// classifyStatus maps an HTTP status code to a sentinel error. Returns nil
// for 2xx success codes.
func classifyStatus(code int) error {
	switch code {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusTooManyRequests:
		return ErrThrottled
	default:
		if code >= http.StatusInternalServerError {
			return ErrServerError
		}
		return nil
	}
}

// isRetryable reports whether the given HTTP status code should be retried.
func isRetryable(code int) bool {
	switch code {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
