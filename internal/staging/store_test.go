package staging

import (
	"testing"
	"time"

	"scripfolio/internal/testutil"
)

func TestStoreLifecycle(t *testing.T) {
	t.Run("add assigns id and previewed state", func(t *testing.T) {
		store := NewStore(time.Minute)
		b := store.Add(&Batch{TradebookFile: "tradebook.csv"})

		if b.ID == "" {
			t.Fatal("expected a staging id")
		}
		if b.State != StatePreviewed {
			t.Errorf("expected PREVIEWED, got %s", b.State)
		}
		if !b.ExpiresAt.After(b.CreatedAt) {
			t.Error("expiry must be after creation")
		}

		got, err := store.Get(b.ID)
		testutil.AssertNoError(t, err)
		if got.TradebookFile != "tradebook.csv" {
			t.Errorf("unexpected batch: %+v", got)
		}
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		store := NewStore(time.Minute)
		_, err := store.Get("nope")
		testutil.AssertAppError(t, err, "STAGING_NOT_FOUND")
	})

	t.Run("expired previewed batch is gone", func(t *testing.T) {
		store := NewStore(10 * time.Millisecond)
		b := store.Add(&Batch{})

		time.Sleep(30 * time.Millisecond)
		_, err := store.Get(b.ID)
		testutil.AssertAppError(t, err, "STAGING_EXPIRED")

		_, err = store.Transition(b.ID, StateCommitted)
		testutil.AssertAppError(t, err, "STAGING_EXPIRED")
	})

	t.Run("committed batch does not expire", func(t *testing.T) {
		store := NewStore(10 * time.Millisecond)
		b := store.Add(&Batch{})
		_, err := store.Transition(b.ID, StateCommitted)
		testutil.AssertNoError(t, err)

		time.Sleep(30 * time.Millisecond)
		got, err := store.Get(b.ID)
		testutil.AssertNoError(t, err)
		if got.State != StateCommitted {
			t.Errorf("expected COMMITTED, got %s", got.State)
		}
	})

	t.Run("double commit conflicts", func(t *testing.T) {
		store := NewStore(time.Minute)
		b := store.Add(&Batch{})

		_, err := store.Transition(b.ID, StateCommitted)
		testutil.AssertNoError(t, err)

		_, err = store.Transition(b.ID, StateCommitted)
		testutil.AssertAppError(t, err, "ALREADY_COMMITTED")
	})

	t.Run("commit after discard conflicts", func(t *testing.T) {
		store := NewStore(time.Minute)
		b := store.Add(&Batch{})

		_, err := store.Transition(b.ID, StateDiscarded)
		testutil.AssertNoError(t, err)

		_, err = store.Transition(b.ID, StateCommitted)
		testutil.AssertAppError(t, err, "BATCH_DISCARDED")
	})
}

func TestProgressTracker(t *testing.T) {
	t.Run("records and clamps updates", func(t *testing.T) {
		tracker := NewProgressTracker(time.Minute)
		tracker.Update("corr-1", StageParsing, 40)

		p, ok := tracker.Get("corr-1")
		if !ok || p.Stage != StageParsing || p.Percent != 40 {
			t.Errorf("unexpected progress: %+v ok=%v", p, ok)
		}

		tracker.Update("corr-1", StageDone, 250)
		p, _ = tracker.Get("corr-1")
		if p.Percent != 100 {
			t.Errorf("percent not clamped: %d", p.Percent)
		}
	})

	t.Run("empty correlation id is ignored", func(t *testing.T) {
		tracker := NewProgressTracker(time.Minute)
		tracker.Update("", StageParsing, 40)

		if _, ok := tracker.Get(""); ok {
			t.Error("empty correlation id must not be tracked")
		}
	})

	t.Run("records expire after the grace window", func(t *testing.T) {
		tracker := NewProgressTracker(10 * time.Millisecond)
		tracker.Update("corr-1", StageDone, 100)

		time.Sleep(30 * time.Millisecond)
		if _, ok := tracker.Get("corr-1"); ok {
			t.Error("expected record to expire")
		}
	})
}
