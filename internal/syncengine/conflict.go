package syncengine

import "log/slog"

// PullDecision is the outcome of comparing a pulled server item against the
// matching local row's updatedAt (spec §4.5 "Pull").
type PullDecision int

const (
	// PullApplyServer means the server's copy is newer; overwrite local
	// content/metadata/timestamps and reconcile the tag set.
	PullApplyServer PullDecision = iota
	// PullConflict means the local copy is newer; leave it untouched here —
	// it will be re-pushed by the push phase.
	PullConflict
	// PullSkip means both sides already agree; nothing to do.
	PullSkip
)

// ConflictClassifier applies last-write-wins-by-updatedAt to decide how a
// pulled server item interacts with the matching local row. Grounded on
// internal/sync/conflict.go's ConflictHandler shape, repurposed for
// timestamp comparison instead of keep-both file renames: there is no
// rename/download sub-action here, just a three-way verdict.
type ConflictClassifier struct {
	logger *slog.Logger
}

// NewConflictClassifier creates a ConflictClassifier that logs decisions at
// debug level.
func NewConflictClassifier(logger *slog.Logger) *ConflictClassifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConflictClassifier{logger: logger}
}

// Classify compares a local row's updatedAt against the server's updatedAt
// for the same synced item (spec §4.5 rows 2-4 of Pull).
func (c *ConflictClassifier) Classify(localUpdatedAt, serverUpdatedAt int64) PullDecision {
	switch {
	case serverUpdatedAt > localUpdatedAt:
		return PullApplyServer
	case localUpdatedAt > serverUpdatedAt:
		c.logger.Debug("pull conflict: local newer than server, leaving local untouched",
			"local_updated_at", localUpdatedAt, "server_updated_at", serverUpdatedAt)
		return PullConflict
	default:
		return PullSkip
	}
}
