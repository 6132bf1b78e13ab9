package wireclient

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"time"
)

// Header names for the wire protocol's version contract (spec §4.5).
const (
	HeaderDatastoreVersion = "X-Peek-Datastore-Version"
	HeaderProtocolVersion  = "X-Peek-Protocol-Version"
	HeaderClient           = "X-Peek-Client"
)

// Base 1s, factor 2x, max 60s, ±25% jitter, max 5 retries.
const (
	maxRetries     = 5
	baseBackoff    = 1 * time.Second
	maxBackoff     = 60 * time.Second
	backoffFactor  = 2.0
	jitterFraction = 0.25
)

// Client is an HTTP client for a Peek sync server: authenticated requests,
// version-header negotiation, and retry with exponential backoff.
type Client struct {
	baseURL          string
	httpClient       *http.Client
	apiKey           string
	datastoreVersion string
	protocolVersion  string
	clientName       string

	sleepFunc func(ctx context.Context, d time.Duration) error
}

// New constructs a Client. httpClient defaults to http.DefaultClient if nil.
func New(baseURL, apiKey, datastoreVersion, protocolVersion, clientName string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:          baseURL,
		httpClient:       httpClient,
		apiKey:           apiKey,
		datastoreVersion: datastoreVersion,
		protocolVersion:  protocolVersion,
		clientName:       clientName,
		sleepFunc:        timeSleep,
	}
}

// Do executes an authenticated request with retry on transient errors. The
// caller must close the response body on success. Version headers are
// checked before any further processing: a mismatch returns ErrVersion
// immediately, with the response body left unread.
func (c *Client) Do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	var attempt int

	for {
		resp, err := c.doOnce(ctx, method, path, body)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("wireclient: request canceled: %w", ctx.Err())
			}

			if attempt < maxRetries {
				if sleepErr := c.sleepFunc(ctx, c.calcBackoff(attempt)); sleepErr != nil {
					return nil, fmt.Errorf("wireclient: request canceled: %w", sleepErr)
				}
				attempt++
				continue
			}

			return nil, fmt.Errorf("wireclient: %s %s failed after %d retries: %w", method, path, maxRetries, err)
		}

		if err := checkVersionHeaders(resp, c.datastoreVersion, c.protocolVersion); err != nil {
			resp.Body.Close()
			return nil, err
		}

		if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
			return resp, nil
		}

		errBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			errBody = []byte("(failed to read response body)")
		}

		if isRetryable(resp.StatusCode) && attempt < maxRetries {
			if sleepErr := c.sleepFunc(ctx, c.retryBackoff(resp, attempt)); sleepErr != nil {
				return nil, fmt.Errorf("wireclient: request canceled: %w", sleepErr)
			}
			attempt++
			continue
		}

		return nil, &WireError{StatusCode: resp.StatusCode, Message: string(errBody), Err: classifyStatus(resp.StatusCode)}
	}
}

func (c *Client) doOnce(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("wireclient: creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set(HeaderDatastoreVersion, c.datastoreVersion)
	req.Header.Set(HeaderProtocolVersion, c.protocolVersion)
	req.Header.Set(HeaderClient, c.clientName)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

// checkVersionHeaders compares the server's version headers to ours. Per
// spec §4.5: if either header is present on the response and mismatched,
// fail immediately; absent headers mean a legacy server and are allowed
// through.
func checkVersionHeaders(resp *http.Response, datastoreVersion, protocolVersion string) error {
	serverDatastore := resp.Header.Get(HeaderDatastoreVersion)
	serverProtocol := resp.Header.Get(HeaderProtocolVersion)

	if serverDatastore != "" && serverDatastore != datastoreVersion {
		return &WireError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("server datastore version %q != client %q", serverDatastore, datastoreVersion),
			Err:        ErrVersion,
		}
	}
	if serverProtocol != "" && serverProtocol != protocolVersion {
		return &WireError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("server protocol version %q != client %q", serverProtocol, protocolVersion),
			Err:        ErrVersion,
		}
	}

	return nil
}

func (c *Client) retryBackoff(resp *http.Response, attempt int) time.Duration {
	if resp.StatusCode == http.StatusTooManyRequests {
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			var seconds int
			if _, err := fmt.Sscanf(ra, "%d", &seconds); err == nil && seconds > 0 {
				return time.Duration(seconds) * time.Second
			}
		}
	}

	return c.calcBackoff(attempt)
}

func (c *Client) calcBackoff(attempt int) time.Duration {
	backoff := float64(baseBackoff) * math.Pow(backoffFactor, float64(attempt))
	if backoff > float64(maxBackoff) {
		backoff = float64(maxBackoff)
	}

	jitter := backoff * jitterFraction * (rand.Float64()*2 - 1)
	backoff += jitter

	return time.Duration(backoff)
}

func timeSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
