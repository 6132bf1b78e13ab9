package syncengine

import (
	"errors"
	"testing"
	"time"
)

func TestFailureTracker_SuppressesAfterThreshold(t *testing.T) {
	ft := NewFailureTracker(nil)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ft.nowFunc = func() time.Time { return now }

	cause := errors.New("boom")

	for i := 0; i < failureThreshold-1; i++ {
		ft.RecordFailure("p1", cause)
		if ft.ShouldSkip("p1") {
			t.Fatalf("should not skip before threshold, iteration %d", i)
		}
	}

	ft.RecordFailure("p1", cause)
	if !ft.ShouldSkip("p1") {
		t.Fatal("expected skip after threshold reached")
	}
}

func TestFailureTracker_SuccessClearsRecord(t *testing.T) {
	ft := NewFailureTracker(nil)
	cause := errors.New("boom")

	for i := 0; i < failureThreshold; i++ {
		ft.RecordFailure("p1", cause)
	}
	if !ft.ShouldSkip("p1") {
		t.Fatal("expected skip")
	}

	ft.RecordSuccess("p1")
	if ft.ShouldSkip("p1") {
		t.Fatal("expected no skip after success")
	}
}

func TestFailureTracker_CooldownForgetsOldFailures(t *testing.T) {
	ft := NewFailureTracker(nil)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ft.nowFunc = func() time.Time { return now }

	cause := errors.New("boom")
	for i := 0; i < failureThreshold; i++ {
		ft.RecordFailure("p1", cause)
	}
	if !ft.ShouldSkip("p1") {
		t.Fatal("expected skip")
	}

	now = now.Add(failureCooldown + time.Minute)
	if ft.ShouldSkip("p1") {
		t.Fatal("expected cooldown to have forgotten the failures")
	}
}
