package engine

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/avense/lexiround/internal/cadence"
	"github.com/avense/lexiround/internal/gameclock"
	"github.com/avense/lexiround/internal/ledger"
	"github.com/avense/lexiround/internal/remote"
)

var (
	t0         = time.Date(2026, 3, 14, 12, 0, 10, 0, time.UTC) // 10s into a 30m window
	recallDict = []string{"planet", "camera", "garden", "silver", "bridge", "candle", "forest", "window"}
	searchDict = []string{
		"ale", "ate", "eat", "tea", "ear", "are", "ant", "net", "ten", "set",
		"tale", "teal", "late", "rate", "tare", "tear", "earn", "near", "rent",
		"later", "alter", "alert", "stale", "steal", "learn", "antler", "rental",
		"staler", "salter", "rentals", "antlers",
	}
)

func testConfig() Config {
	return Config{
		Cadences:       []cadence.Cadence{{Period: 30 * time.Minute}},
		AnswerDuration: 90 * time.Second,
		TickInterval:   250 * time.Millisecond,
		Retention:      30 * time.Minute,
	}
}

func newTestEngine(t *testing.T, rounds remote.Rounds) (*Engine, *clockwork.FakeClock, ledger.Store) {
	t.Helper()
	fc := clockwork.NewFakeClockAt(t0)
	sync := gameclock.New(fc)
	store := ledger.NewMemory()
	e := New(testConfig(), fc, sync, store, rounds, nil, recallDict, searchDict)
	return e, fc, store
}

func TestCurrentDerivesLiveWindow(t *testing.T) {
	e, fc, _ := newTestEngine(t, nil)

	snap := e.Current()
	if !snap.Live {
		t.Fatal("expected live window 10s after cadence boundary")
	}
	if want := t0.Add(80 * time.Second); !snap.EndsAt.Equal(want) {
		t.Fatalf("EndsAt = %v, want %v", snap.EndsAt, want)
	}

	// Identity is re-derived, not mutated: same window, same key.
	fc.Advance(30 * time.Second)
	if again := e.Current(); again.RoundKey != snap.RoundKey {
		t.Fatalf("round key changed mid-window: %q -> %q", snap.RoundKey, again.RoundKey)
	}

	// Past the window end the round closes and the next start is reported.
	fc.Advance(time.Minute)
	closed := e.Current()
	if closed.Live {
		t.Fatal("window should be closed")
	}
	if want := t0.Add(-10 * time.Second).Add(30 * time.Minute); !closed.NextStartAt.Equal(want) {
		t.Fatalf("NextStartAt = %v, want %v", closed.NextStartAt, want)
	}
}

func TestSubmitRecordsOutcome(t *testing.T) {
	rounds := &remote.FakeRounds{SubmitResult: remote.SubmitResult{
		Correct: true, Points: 2, ServerNow: t0.Add(time.Second),
	}}
	e, _, store := newTestEngine(t, rounds)

	out, err := e.Submit(context.Background(), "p1", "planet")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !out.Correct || out.Score != 2 {
		t.Fatalf("outcome = %+v", out)
	}

	snap := e.Current()
	if ok, _ := store.HasAttempted(context.Background(), "p1", snap.RoundKey); !ok {
		t.Fatal("attempt not recorded")
	}
}

func TestDuplicateSubmitNeverReachesRemote(t *testing.T) {
	rounds := &remote.FakeRounds{SubmitResult: remote.SubmitResult{
		Correct: true, Points: 2, ServerNow: t0.Add(time.Second),
	}}
	e, _, _ := newTestEngine(t, rounds)

	if _, err := e.Submit(context.Background(), "p1", "planet"); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	_, err := e.Submit(context.Background(), "p1", "planet")
	if !errors.Is(err, ledger.ErrAlreadySubmitted) {
		t.Fatalf("second submit: got %v, want ErrAlreadySubmitted", err)
	}
	if rounds.Submits() != 1 {
		t.Fatalf("remote saw %d submits, want exactly 1", rounds.Submits())
	}
}

func TestStaleResultDiscarded(t *testing.T) {
	// The response's server timestamp lands after the window end: the
	// corrected clock jumps past the close, so the result is discarded.
	rounds := &remote.FakeRounds{SubmitResult: remote.SubmitResult{
		Correct: true, Points: 2, ServerNow: t0.Add(5 * time.Minute),
	}}
	e, _, store := newTestEngine(t, rounds)

	snap := e.Current()
	_, err := e.Submit(context.Background(), "p1", "planet")
	if !errors.Is(err, ErrWindowClosed) {
		t.Fatalf("got %v, want ErrWindowClosed", err)
	}
	if ok, _ := store.HasAttempted(context.Background(), "p1", snap.RoundKey); ok {
		t.Fatal("discarded result must not be recorded")
	}
}

func TestSubmitOutsideWindow(t *testing.T) {
	e, fc, _ := newTestEngine(t, &remote.FakeRounds{})
	fc.Advance(5 * time.Minute)
	if _, err := e.Submit(context.Background(), "p1", "planet"); !errors.Is(err, ErrNoActiveRound) {
		t.Fatalf("got %v, want ErrNoActiveRound", err)
	}
}

func TestRecallPuzzleDeterministicPerRound(t *testing.T) {
	e, fc, _ := newTestEngine(t, nil)

	p1, snap1, err := e.RecallPuzzle()
	if err != nil {
		t.Fatalf("recall: %v", err)
	}
	fc.Advance(20 * time.Second)
	p2, snap2, _ := e.RecallPuzzle()
	if snap1.RoundKey != snap2.RoundKey || p1 != p2 {
		t.Fatal("same round must yield the identical puzzle on every tick")
	}
}

func TestSearchPuzzleForActiveRound(t *testing.T) {
	e, _, _ := newTestEngine(t, nil)
	p, snap, err := e.SearchPuzzle()
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !snap.Live {
		t.Fatal("expected live snapshot")
	}
	if p.Tiles == "" {
		t.Fatal("empty tile set")
	}
	// The duel path with the same seed regenerates the same tiles.
	if dp := e.DuelPuzzle(snap.RoundKey); dp.Tiles != p.Tiles {
		t.Fatal("duel regeneration diverged from round generation")
	}
}

func TestRemoteWordSyncsClock(t *testing.T) {
	rounds := &remote.FakeRounds{WordResult: remote.WordRound{
		Word:       "planet",
		RoundStart: t0.Add(-10 * time.Second),
		ServerNow:  t0.Add(45 * time.Second),
	}}
	e, _, _ := newTestEngine(t, rounds)

	w, err := e.RemoteWord(context.Background(), cadence.Cadence{Period: 30 * time.Minute})
	if err != nil {
		t.Fatalf("remote word: %v", err)
	}
	if w.Word != "planet" {
		t.Fatalf("word = %q", w.Word)
	}
	if now := e.Current().Now; !now.Equal(t0.Add(45 * time.Second)) {
		t.Fatalf("clock not synced: now = %v", now)
	}
}

func TestRemoteWordFailureKeepsOffset(t *testing.T) {
	rounds := &remote.FakeRounds{WordErr: errors.New("boom")}
	e, _, _ := newTestEngine(t, rounds)

	before := e.Current().Now
	if _, err := e.RemoteWord(context.Background(), cadence.Cadence{Period: 30 * time.Minute}); err == nil {
		t.Fatal("expected error")
	}
	if after := e.Current().Now; !after.Equal(before) {
		t.Fatal("failed fetch must leave the previous offset in effect")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	e, _, _ := newTestEngine(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on context cancellation")
	}
}

func TestSnapshotJSONOmitsRawDuration(t *testing.T) {
	e, _, _ := newTestEngine(t, nil)
	b, err := json.Marshal(e.Current())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	// Remaining is a time.Duration; encoding it under a millisecond name
	// would be off by 10^6. Transports derive their own representation.
	if strings.Contains(string(b), "remaining") {
		t.Fatalf("snapshot JSON carries a raw duration: %s", b)
	}
}
