package syncengine

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// changeEvent mirrors internal/server's wire shape for a single push
// notification: the server only ever tells a client which profile slug
// changed, never what changed — Orchestrator.Trigger treats every wakeup
// the same way a poll-ticker tick does.
type changeEvent struct {
	Slug string `json:"slug"`
}

// Notifier maintains a websocket connection to the server's change feed
// for one profile and calls trigger for each event received, giving
// Orchestrator an additional wakeup source alongside its poll ticker (spec
// §4.5). Listen carries no sync semantics of its own.
type Notifier struct {
	url       string
	apiKey    string
	profileID string
	trigger   func(profileID string)
	logger    *slog.Logger
}

// NewNotifier creates a Notifier that dials url and calls trigger for each
// change event received. url is the server's ws(s):// change-feed
// endpoint for this profile; apiKey authenticates the dial the same way it
// authenticates the REST client (spec §4.6: "a Bearer apiKey IS the
// userID"). profileID is passed to trigger verbatim on every event, since
// the feed is already scoped to a single profile by the dial URL and has
// nothing further to disambiguate.
func NewNotifier(url, apiKey, profileID string, trigger func(profileID string), logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}

	return &Notifier{url: url, apiKey: apiKey, profileID: profileID, trigger: trigger, logger: logger}
}

// Listen connects and processes change events until ctx is canceled or the
// connection drops. Callers are expected to reconnect (with backoff) on a
// non-nil, non-context error.
func (n *Notifier) Listen(ctx context.Context) error {
	opts := &websocket.DialOptions{
		HTTPHeader: http.Header{"Authorization": []string{"Bearer " + n.apiKey}},
	}

	conn, _, err := websocket.Dial(ctx, n.url, opts)
	if err != nil {
		return fmt.Errorf("syncengine: websocket dial: %w", err)
	}
	defer conn.CloseNow()

	for {
		var evt changeEvent
		if err := wsjson.Read(ctx, conn, &evt); err != nil {
			return fmt.Errorf("syncengine: websocket read: %w", err)
		}

		n.logger.Debug("received change notification", "slug", evt.Slug)
		n.trigger(n.profileID)
	}
}
