package syncengine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/peek-app/peek-sync/internal/datastore"
	"github.com/peek-app/peek-sync/internal/errs"
	"github.com/peek-app/peek-sync/internal/store"
	"github.com/peek-app/peek-sync/internal/wireclient"
)

// EngineConfig holds the inputs for creating an Engine: a wire client
// already configured with this profile's server URL and API key, and the
// datastore service for the profile's own datastore.sqlite.
type EngineConfig struct {
	Client      *wireclient.Client
	Datastore   *datastore.Service
	ProfileID   string
	ProfileSlug string
	Logger      *slog.Logger
}

// Engine runs the pull/push loop for a single profile (spec §4.5). One
// Engine is scoped to one profile's datastore and wire client; the
// Orchestrator owns the mapping from profile to Engine.
type Engine struct {
	client      *wireclient.Client
	ds          *datastore.Service
	profileID   string
	profileSlug string
	logger      *slog.Logger

	classifier *ConflictClassifier
	tags       *TagReconciler
}

// NewEngine constructs an Engine from cfg.
func NewEngine(cfg EngineConfig) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		client:      cfg.Client,
		ds:          cfg.Datastore,
		profileID:   cfg.ProfileID,
		profileSlug: cfg.ProfileSlug,
		logger:      logger,
		classifier:  NewConflictClassifier(logger),
		tags:        NewTagReconciler(cfg.Datastore, logger),
	}
}

// Pull fetches server items changed since lastSyncTime (0 meaning "every
// item") and applies them locally per spec §4.5's three-way decision: new
// items are inserted, server-newer items overwrite local, local-newer items
// are classified as conflicts and left untouched for Push to re-send.
func (e *Engine) Pull(ctx context.Context, lastSyncTime int64) (SyncReport, error) {
	var (
		items []wireclient.WireItem
		err   error
	)

	if lastSyncTime == 0 {
		items, err = e.client.ListItems(ctx, e.profileID, e.profileSlug)
	} else {
		since := time.UnixMilli(lastSyncTime).UTC()
		items, err = e.client.ListItemsSince(ctx, e.profileID, e.profileSlug, since)
	}
	if err != nil {
		return SyncReport{}, err
	}

	var report SyncReport

	for _, wi := range items {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if applyErr := e.applyPulledItem(ctx, wi, &report); applyErr != nil {
			e.logger.Warn("pull: failed to apply server item",
				"sync_id", wi.ID, "error", applyErr)
			report.Failed++
		}
	}

	return report, nil
}

// applyPulledItem implements one row of spec §4.5's Pull decision table.
func (e *Engine) applyPulledItem(ctx context.Context, wi wireclient.WireItem, report *SyncReport) error {
	serverCreatedAt, err := wireclient.ParseTime(wi.CreatedAt)
	if err != nil {
		return err
	}
	serverUpdatedAt, err := wireclient.ParseTime(wi.UpdatedAt)
	if err != nil {
		return err
	}

	pulled := PulledItem{
		SyncID:    wi.ID,
		Type:      wi.Type,
		Content:   wi.Content,
		Metadata:  wi.Metadata,
		CreatedAt: serverCreatedAt,
		UpdatedAt: serverUpdatedAt,
	}

	found := e.ds.FindItemBySyncID(ctx, wi.ID)
	if !found.Success {
		if !errors.Is(found.Err, errs.ErrNotFound) {
			return found.Err
		}

		inserted := e.ds.InsertPulledItem(ctx, pulled)
		if !inserted.Success {
			return inserted.Err
		}
		if err := e.tags.Reconcile(ctx, inserted.Data, wi.Tags); err != nil {
			return err
		}

		report.Pulled++
		return nil
	}

	local := found.Data

	switch e.classifier.Classify(local.UpdatedAt, serverUpdatedAt) {
	case PullApplyServer:
		updated := e.ds.ApplyPulledUpdate(ctx, local.ID, pulled)
		if !updated.Success {
			return updated.Err
		}
		if err := e.tags.Reconcile(ctx, local.ID, wi.Tags); err != nil {
			return err
		}
		report.Pulled++

	case PullConflict:
		report.Conflicts++

	case PullSkip:
		// Both sides already agree; nothing to do.
	}

	return nil
}

// Push sends locally pending items to the server (spec §4.5 "Push").
// lastSyncTime selects the push predicate: on a profile's first sync
// (lastSyncTime == 0) only never-synced items are pushed; afterward, items
// locally modified since their last sync are pushed too.
func (e *Engine) Push(ctx context.Context, lastSyncTime int64) (SyncReport, error) {
	pending := e.ds.ListPendingPush(ctx, lastSyncTime)
	if !pending.Success {
		return SyncReport{}, pending.Err
	}

	var report SyncReport

	for _, it := range pending.Data {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if err := e.pushOne(ctx, it); err != nil {
			e.logger.Warn("push: failed to push item", "item_id", it.ID, "error", err)
			report.Failed++
			continue
		}

		report.Pushed++
	}

	return report, nil
}

func (e *Engine) pushOne(ctx context.Context, it *store.Item) error {
	tagsResult := e.ds.GetItemTags(ctx, it.ID)
	if !tagsResult.Success {
		return tagsResult.Err
	}

	names := make([]string, len(tagsResult.Data))
	for i, t := range tagsResult.Data {
		names[i] = t.Name
	}

	syncID := it.SyncID
	if syncID == "" {
		syncID = it.ID
	}

	resp, err := e.client.PostItem(ctx, e.profileID, e.profileSlug, wireclient.PostItemBody{
		Type:     it.Type,
		Content:  it.Content,
		Tags:     names,
		Metadata: it.Metadata,
		SyncID:   syncID,
	})
	if err != nil {
		return err
	}

	marked := e.ds.MarkPushed(ctx, it.ID, resp.ID)
	if !marked.Success {
		return marked.Err
	}

	return nil
}

// SyncAll runs Pull then Push and returns their combined counters. Callers
// that want single-flight-per-profile serialization and lastSyncAt
// persistence should go through Orchestrator.SyncAll rather than calling
// this directly.
func (e *Engine) SyncAll(ctx context.Context, lastSyncTime int64) (SyncReport, error) {
	var report SyncReport

	pullReport, err := e.Pull(ctx, lastSyncTime)
	report.add(pullReport)
	if err != nil {
		return report, err
	}

	pushReport, err := e.Push(ctx, lastSyncTime)
	report.add(pushReport)
	if err != nil {
		return report, err
	}

	return report, nil
}

// Status reports whether this profile is configured for sync and how many
// items are currently pending push, using the same predicate as Push
// (spec §4.5 "Status").
func (e *Engine) Status(ctx context.Context, lastSyncTime int64) (Status, error) {
	pending := e.ds.ListPendingPush(ctx, lastSyncTime)
	if !pending.Success {
		return Status{}, pending.Err
	}

	return Status{Configured: true, PendingCount: len(pending.Data)}, nil
}
