package syncengine

import (
	"log/slog"
	"sync"
	"time"
)

// Suppression constants, mirroring internal/sync/failure_tracker.go's watch
// mode backoff: a profile that fails repeatedly is no longer worth retrying
// on every ticker tick.
const (
	failureThreshold = 3                // skip after this many consecutive failures
	failureCooldown  = 30 * time.Minute // forget failures older than this
)

// failureRecord tracks consecutive failures for one profile.
type failureRecord struct {
	count  int
	lastAt time.Time
}

// FailureTracker suppresses profiles whose syncAll has failed repeatedly,
// so a background ticker doesn't hammer a server that is down or a profile
// whose credentials were revoked. Thread-safe; grounded directly on
// internal/sync/failure_tracker.go, keyed by profile ID instead of path.
type FailureTracker struct {
	mu      sync.Mutex
	records map[string]*failureRecord
	logger  *slog.Logger
	nowFunc func() time.Time
}

// NewFailureTracker creates a FailureTracker.
func NewFailureTracker(logger *slog.Logger) *FailureTracker {
	if logger == nil {
		logger = slog.Default()
	}

	return &FailureTracker{
		records: make(map[string]*failureRecord),
		logger:  logger,
		nowFunc: time.Now,
	}
}

// ShouldSkip reports whether profileID has failed enough times within the
// cooldown window that a ticker-triggered sync should be suppressed.
// Explicit user-requested syncs should bypass this check.
func (ft *FailureTracker) ShouldSkip(profileID string) bool {
	ft.mu.Lock()
	defer ft.mu.Unlock()

	rec, ok := ft.records[profileID]
	if !ok {
		return false
	}

	if ft.nowFunc().Sub(rec.lastAt) > failureCooldown {
		delete(ft.records, profileID)
		return false
	}

	return rec.count >= failureThreshold
}

// RecordFailure increments the failure counter for profileID.
func (ft *FailureTracker) RecordFailure(profileID string, cause error) {
	ft.mu.Lock()
	defer ft.mu.Unlock()

	rec, ok := ft.records[profileID]
	if !ok {
		rec = &failureRecord{}
		ft.records[profileID] = rec
	}

	if ft.nowFunc().Sub(rec.lastAt) > failureCooldown {
		rec.count = 0
	}

	rec.count++
	rec.lastAt = ft.nowFunc()

	if rec.count == failureThreshold {
		ft.logger.Warn("profile suppressed from background sync after repeated failures",
			"profile_id", profileID,
			"failures", rec.count,
			"error", cause,
			"cooldown", failureCooldown,
		)
	}
}

// RecordSuccess clears the failure record for profileID.
func (ft *FailureTracker) RecordSuccess(profileID string) {
	ft.mu.Lock()
	defer ft.mu.Unlock()

	delete(ft.records, profileID)
}
