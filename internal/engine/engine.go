// internal/engine/engine.go
//
// The round engine proper. One injected clock drives a single recurring
// tick; the active round is a pure function of corrected time and the
// cadence set, re-derived on every evaluation rather than incrementally
// mutated, so no drift can accumulate across ticks or restarts.
//
// The engine owns the submission flow: the attempt ledger gates duplicates
// before any remote call, server timestamps from remote responses feed the
// clock synchronizer, and a submission whose round window has closed by the
// time the response arrives is discarded rather than applied.

package engine

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/avense/lexiround/internal/cadence"
	"github.com/avense/lexiround/internal/gameclock"
	"github.com/avense/lexiround/internal/ledger"
	"github.com/avense/lexiround/internal/puzzle"
	"github.com/avense/lexiround/internal/remote"
)

var (
	// ErrNoActiveRound is returned when no answer window is currently open.
	ErrNoActiveRound = errors.New("engine: no active round")

	// ErrWindowClosed marks a submission whose result arrived after its
	// window ended; the result is discarded, never recorded.
	ErrWindowClosed = errors.New("engine: round window closed")
)

// Config bounds the engine's schedule and housekeeping.
type Config struct {
	Cadences       []cadence.Cadence
	AnswerDuration time.Duration // fixed length of every answer window
	TickInterval   time.Duration // recurring re-evaluation period
	Retention      time.Duration // trailing horizon before attempts are pruned
}

// Engine evaluates rounds and mediates submissions.
type Engine struct {
	cfg    Config
	clock  clockwork.Clock
	sync   *gameclock.Synchronizer
	store  ledger.Store
	rounds remote.Rounds
	scores remote.Scores

	recallDict []string
	searchDict []string
	searchCfg  puzzle.SearchConfig
}

// New wires an Engine. rounds and scores may be nil when the deployment has
// no remote service; the corresponding flows then degrade locally.
func New(cfg Config, clock clockwork.Clock, sync *gameclock.Synchronizer, store ledger.Store,
	rounds remote.Rounds, scores remote.Scores, recallDict, searchDict []string) *Engine {
	return &Engine{
		cfg:        cfg,
		clock:      clock,
		sync:       sync,
		store:      store,
		rounds:     rounds,
		scores:     scores,
		recallDict: recallDict,
		searchDict: searchDict,
		searchCfg:  puzzle.DefaultSearchConfig(),
	}
}

// Snapshot is the per-tick view of the schedule.
type Snapshot struct {
	Now         time.Time             `json:"now"`
	Live        bool                  `json:"live"`
	Round       cadence.RoundIdentity `json:"-"`
	RoundKey    string                `json:"roundKey,omitempty"`
	EndsAt      time.Time             `json:"endsAt,omitempty"`
	Remaining   time.Duration         `json:"-"` // raw duration; transports encode their own unit
	NextStartAt time.Time             `json:"nextStartAt"`
}

// Current derives the schedule state at corrected-now. Pure evaluation: no
// state is read or written besides the clock offset.
func (e *Engine) Current() Snapshot {
	now := e.sync.Now()
	snap := Snapshot{Now: now}
	if w, ok := cadence.Active(now, e.cfg.Cadences, e.cfg.AnswerDuration); ok {
		snap.Live = true
		snap.Round = w.Round
		snap.RoundKey = w.Round.Key()
		snap.EndsAt = w.End
		snap.Remaining = w.End.Sub(now)
	}
	next, _ := cadence.NextStart(now, e.cfg.Cadences)
	snap.NextStartAt = next
	return snap
}

// RecallPuzzle generates the active round's scrambled-word puzzle. The
// previous window's word on the same cadence is avoided so back-to-back
// rounds never repeat.
func (e *Engine) RecallPuzzle() (puzzle.Recall, Snapshot, error) {
	snap := e.Current()
	if !snap.Live {
		return puzzle.Recall{}, snap, ErrNoActiveRound
	}
	// The previous word is reconstructed one level deep (the prior round
	// regenerated with no avoid of its own). If that round itself hit a
	// re-pick the reconstruction misses and a repeat can still surface;
	// chasing the exact chain has no base case, and the one-level rule is
	// identical on every client, which is what matters.
	avoid := ""
	prev := cadence.RoundIdentity{
		Cadence: snap.Round.Cadence,
		Start:   snap.Round.Start.Add(-snap.Round.Cadence.Period),
	}
	if p, err := puzzle.GenerateRecall(prev.Key(), e.recallDict, ""); err == nil {
		avoid = p.Word
	}
	p, err := puzzle.GenerateRecall(snap.RoundKey, e.recallDict, avoid)
	return p, snap, err
}

// SearchPuzzle generates the active round's letter-search puzzle. A
// degraded puzzle (fallback letter set) is returned as data, not an error;
// callers surface the flag.
func (e *Engine) SearchPuzzle() (puzzle.Search, Snapshot, error) {
	snap := e.Current()
	if !snap.Live {
		return puzzle.Search{}, snap, ErrNoActiveRound
	}
	p := puzzle.GenerateSearch(snap.RoundKey, e.searchDict, e.searchCfg)
	if p.Degraded {
		log.Warn().Str("round", snap.RoundKey).Msg("letter-search generation exhausted, serving fallback set")
	}
	return p, snap, nil
}

// DuelPuzzle regenerates duel content from a rendezvous seed. Both peers
// call this with the agreed seed and derive identical tiles.
func (e *Engine) DuelPuzzle(seed string) puzzle.Search {
	return puzzle.GenerateSearch(seed, e.searchDict, e.searchCfg)
}

// RemoteWord fetches the word-of-the-hour for a cadence and syncs the clock
// from the carried server timestamp.
func (e *Engine) RemoteWord(ctx context.Context, c cadence.Cadence) (remote.WordRound, error) {
	if e.rounds == nil {
		return remote.WordRound{}, errors.New("engine: no remote rounds service")
	}
	w, err := e.rounds.CurrentWord(ctx, int(c.Period.Minutes()))
	if err != nil {
		// Previous offset stays in effect; gameplay continues.
		return remote.WordRound{}, err
	}
	e.sync.Sync(w.ServerNow)
	return w, nil
}

// Submit grades one answer for the active round.
//
// Order of checks:
//  1. A round must be live.
//  2. The ledger rejects duplicates locally, before any remote call.
//  3. The remote grades the answer; its server timestamp resyncs the clock.
//  4. If the window has closed by the time the response arrives (by
//     corrected time), the result is discarded and nothing is recorded.
//  5. The outcome is recorded against the round key, immutable thereafter.
func (e *Engine) Submit(ctx context.Context, playerID, answer string) (ledger.Outcome, error) {
	snap := e.Current()
	if !snap.Live {
		return ledger.Outcome{}, ErrNoActiveRound
	}
	w := cadence.AnswerWindow{Round: snap.Round, End: snap.EndsAt}

	if has, err := e.store.HasAttempted(ctx, playerID, snap.RoundKey); err != nil {
		return ledger.Outcome{}, err
	} else if has {
		return ledger.Outcome{}, ledger.ErrAlreadySubmitted
	}

	if e.rounds == nil {
		return ledger.Outcome{}, errors.New("engine: no remote rounds service")
	}
	res, err := e.rounds.SubmitAnswer(ctx, playerID, int(snap.Round.Cadence.Period.Minutes()), answer)
	if err != nil {
		return ledger.Outcome{}, err
	}
	e.sync.Sync(res.ServerNow)

	if !w.Contains(e.sync.Now()) {
		log.Info().Str("round", snap.RoundKey).Str("player", playerID).Msg("discarding stale submission result")
		return ledger.Outcome{}, ErrWindowClosed
	}

	outcome := ledger.Outcome{
		Correct:        res.Correct,
		Score:          res.Points,
		RevealedAnswer: res.CorrectAnswer,
		SubmittedAt:    e.sync.Now(),
	}
	if err := e.store.Record(ctx, playerID, snap.RoundKey, outcome); err != nil {
		return ledger.Outcome{}, err
	}
	return outcome, nil
}

// Attempt returns the stored attempt for the active round, if any.
func (e *Engine) Attempt(ctx context.Context, playerID string) (*ledger.Attempt, error) {
	snap := e.Current()
	if !snap.Live {
		return nil, ErrNoActiveRound
	}
	return e.store.Get(ctx, playerID, snap.RoundKey)
}

// ReportScore persists a completed game's score. Fire-and-forget: errors
// are logged, never surfaced to gameplay.
func (e *Engine) ReportScore(r remote.ScoreReport) {
	if e.scores == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	go func() {
		defer cancel()
		if err := e.scores.RecordScore(ctx, r); err != nil {
			log.Warn().Err(err).Str("player", r.PlayerID).Msg("score persistence failed")
		}
	}()
}

// Run drives housekeeping until ctx is cancelled: a fast tick that logs
// window transitions and a slow ledger-retention sweep. Round evaluation
// itself needs no stored state, so restarts resume cleanly.
func (e *Engine) Run(ctx context.Context) {
	tick := e.clock.NewTicker(e.cfg.TickInterval)
	defer tick.Stop()
	sweep := e.clock.NewTicker(time.Minute)
	defer sweep.Stop()

	var lastKey string
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.Chan():
			snap := e.Current()
			key := snap.RoundKey
			if key != lastKey {
				if key != "" {
					log.Info().Str("round", key).Time("ends", snap.EndsAt).Msg("round live")
				} else {
					log.Info().Time("next", snap.NextStartAt).Msg("round closed")
				}
				lastKey = key
			}
		case <-sweep.Chan():
			cutoff := e.sync.Now().Add(-e.cfg.Retention)
			if n, err := e.store.Prune(ctx, cutoff); err != nil {
				log.Warn().Err(err).Msg("ledger prune failed")
			} else if n > 0 {
				log.Debug().Int64("removed", n).Msg("pruned old attempts")
			}
		}
	}
}
