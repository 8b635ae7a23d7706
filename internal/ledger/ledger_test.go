package ledger

import (
	"context"
	"errors"
	"testing"
	"time"
)

var t0 = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func TestRecordIsIdempotentByKey(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	first := Outcome{Correct: true, Score: 2, SubmittedAt: t0}
	if err := s.Record(ctx, "p1", "30@0#100", first); err != nil {
		t.Fatalf("first record: %v", err)
	}

	// Second record for the same key is rejected and leaves the first intact.
	err := s.Record(ctx, "p1", "30@0#100", Outcome{Correct: false, Score: 0, SubmittedAt: t0.Add(time.Second)})
	if !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("second record: got %v, want ErrAlreadySubmitted", err)
	}
	a, err := s.Get(ctx, "p1", "30@0#100")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !a.Correct || a.Score != 2 {
		t.Fatalf("record was overwritten: %+v", a)
	}
}

func TestKeysAreScoped(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	_ = s.Record(ctx, "p1", "r1", Outcome{SubmittedAt: t0})

	if ok, _ := s.HasAttempted(ctx, "p2", "r1"); ok {
		t.Fatal("other player must not be marked attempted")
	}
	if ok, _ := s.HasAttempted(ctx, "p1", "r2"); ok {
		t.Fatal("other round must not be marked attempted")
	}
	if ok, _ := s.HasAttempted(ctx, "p1", "r1"); !ok {
		t.Fatal("recorded attempt missing")
	}
}

func TestGetMissing(t *testing.T) {
	s := NewMemory()
	if _, err := s.Get(context.Background(), "p1", "r1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestPruneBoundedRetention(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	_ = s.Record(ctx, "p1", "old", Outcome{SubmittedAt: t0.Add(-time.Hour)})
	_ = s.Record(ctx, "p1", "new", Outcome{SubmittedAt: t0})

	n, err := s.Prune(ctx, t0.Add(-30*time.Minute))
	if err != nil || n != 1 {
		t.Fatalf("prune removed %d (%v), want 1", n, err)
	}
	if ok, _ := s.HasAttempted(ctx, "p1", "old"); ok {
		t.Fatal("old attempt should be pruned")
	}
	if ok, _ := s.HasAttempted(ctx, "p1", "new"); !ok {
		t.Fatal("recent attempt must survive pruning")
	}

	// Pruned rounds may be re-attempted; the server remains the authority
	// for rounds outside the local retention horizon.
	if err := s.Record(ctx, "p1", "old", Outcome{SubmittedAt: t0}); err != nil {
		t.Fatalf("re-record after prune: %v", err)
	}
}
