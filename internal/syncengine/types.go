// Package syncengine implements the pull/push loop that reconciles a
// profile's local datastore against a Peek sync server: last-write-wins
// conflict resolution on updatedAt, never re-pushing what was just pulled,
// and single-flight serialization per profile.
package syncengine

// SyncReport accumulates the outcome of one SyncAll call.
type SyncReport struct {
	Pulled    int
	Pushed    int
	Conflicts int
	Failed    int
}

// add folds another report's counters into r, for merging Pull+Push results.
func (r *SyncReport) add(other SyncReport) {
	r.Pulled += other.Pulled
	r.Pushed += other.Pushed
	r.Conflicts += other.Conflicts
	r.Failed += other.Failed
}

// Status is the result of Engine.Status: whether sync is configured for
// this profile and how many local items are waiting to be pushed.
type Status struct {
	Configured   bool
	PendingCount int
}
