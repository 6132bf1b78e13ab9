package syncengine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/peek-app/peek-sync/internal/profile"
)

// syncConfigStore is the subset of *profile.Manager the Orchestrator needs.
// Narrowed to an interface so tests can substitute a fake.
type syncConfigStore interface {
	GetSyncConfig(ctx context.Context, profileID string) (*profile.SyncConfig, error)
	UpdateLastSyncAt(ctx context.Context, profileID string, syncStartTime int64) error
}

// Orchestrator wraps an Engine with single-flight-per-profile serialization
// (spec §4.5 "syncAll ... single-flight per profile", §5 "a syncAll is
// serialized per profile"), lastSyncAt persistence, and failure suppression
// for background ticks. Grounded on internal/sync/orchestrator.go's
// per-key-cached-work shape, collapsed to golang.org/x/sync/singleflight
// since — unlike the teacher's multi-drive fan-out — only one sync can
// usefully run per profile at a time.
type Orchestrator struct {
	engine    *Engine
	profiles  syncConfigStore
	profileID string
	group     singleflight.Group
	failures  *FailureTracker
	logger    *slog.Logger
	wake      chan struct{}
}

// NewOrchestrator creates an Orchestrator for a single profile's Engine.
func NewOrchestrator(engine *Engine, profiles syncConfigStore, profileID string, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		engine:    engine,
		profiles:  profiles,
		profileID: profileID,
		failures:  NewFailureTracker(logger),
		logger:    logger,
		wake:      make(chan struct{}, 1),
	}
}

// WakeChan returns the channel a serve-mode loop should select on alongside
// its poll ticker. Trigger sends into it without blocking.
func (o *Orchestrator) WakeChan() <-chan struct{} {
	return o.wake
}

// Trigger requests an out-of-band sync for profileID. A no-op if profileID
// is not this Orchestrator's profile, or if a wakeup is already pending
// (spec §4.5 "just an additional wakeup source").
func (o *Orchestrator) Trigger(profileID string) {
	if profileID != o.profileID {
		return
	}

	select {
	case o.wake <- struct{}{}:
	default:
	}
}

// SyncAll runs one sync cycle for this Orchestrator's profile. Concurrent
// calls collapse into a single in-flight call via singleflight; every
// caller receives that call's result. explicit bypasses failure-suppression
// (a user-requested "sync now" always runs; a background ticker does not).
func (o *Orchestrator) SyncAll(ctx context.Context, explicit bool) (SyncReport, error) {
	if !explicit && o.failures.ShouldSkip(o.profileID) {
		return SyncReport{}, fmt.Errorf("syncengine: profile %s suppressed after repeated sync failures", o.profileID)
	}

	v, err, _ := o.group.Do(o.profileID, func() (any, error) {
		return o.runOnce(ctx)
	})
	if err != nil {
		return SyncReport{}, err
	}

	return v.(SyncReport), nil
}

func (o *Orchestrator) runOnce(ctx context.Context) (SyncReport, error) {
	cfg, err := o.profiles.GetSyncConfig(ctx, o.profileID)
	if err != nil {
		return SyncReport{}, err
	}
	if !cfg.Enabled {
		return SyncReport{}, fmt.Errorf("syncengine: sync not enabled for profile %s", o.profileID)
	}

	syncStartTime := time.Now().UnixMilli()

	report, err := o.engine.SyncAll(ctx, cfg.LastSyncAt)
	if err != nil {
		o.failures.RecordFailure(o.profileID, err)
		return report, err
	}

	if err := o.profiles.UpdateLastSyncAt(ctx, o.profileID, syncStartTime); err != nil {
		return report, err
	}

	o.failures.RecordSuccess(o.profileID)

	return report, nil
}

// Status reports this profile's sync configuration and pending-push count
// (spec §4.5 "Status").
func (o *Orchestrator) Status(ctx context.Context) (Status, error) {
	cfg, err := o.profiles.GetSyncConfig(ctx, o.profileID)
	if err != nil {
		return Status{}, err
	}
	if !cfg.Enabled {
		return Status{Configured: false}, nil
	}

	return o.engine.Status(ctx, cfg.LastSyncAt)
}
