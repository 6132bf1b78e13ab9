package syncengine

import (
	"context"
	"log/slog"

	"github.com/peek-app/peek-sync/internal/datastore"
)

// TagReconciler applies a pulled item's tag set to the local store. Grounded
// on internal/sync/reconciler.go's clear-then-link shape: every call
// replaces the item's entire tag set rather than diffing it, relying on
// datastore.Service.GetOrCreateTag's own recovery from a unique-constraint
// race (spec §4.3 getOrCreateTag contract) to tolerate concurrent tag
// creation.
type TagReconciler struct {
	ds     *datastore.Service
	logger *slog.Logger
}

// NewTagReconciler creates a TagReconciler over ds.
func NewTagReconciler(ds *datastore.Service, logger *slog.Logger) *TagReconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TagReconciler{ds: ds, logger: logger}
}

// Reconcile clears itemID's tag set and re-links it to exactly tagNames.
func (r *TagReconciler) Reconcile(ctx context.Context, itemID string, tagNames []string) error {
	result := r.ds.ReplaceItemTagSet(ctx, itemID, tagNames)
	if !result.Success {
		r.logger.Warn("tag reconciliation failed", "item_id", itemID, "error", result.Err)
		return result.Err
	}

	return nil
}
