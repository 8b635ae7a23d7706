// internal/ledger/ledger.go
//
// The attempt ledger: one graded attempt per (player, round). Records are
// created on first submission and immutable afterward; a second record call
// for the same key is an observable rejection, never an overwrite. Old
// rounds are pruned after a trailing retention horizon.
//
// The ledger is a UX-latency optimization in front of the remote service's
// own single-use enforcement: a duplicate is rejected locally before any
// network call is attempted.

package ledger

import (
	"context"
	"errors"
	"time"
)

// ErrAlreadySubmitted signals that an attempt for this (player, round) key
// already exists. Expected steady-state condition, not a fault.
var ErrAlreadySubmitted = errors.New("ledger: attempt already recorded")

// ErrNotFound is returned by Get when no attempt exists for the key.
var ErrNotFound = errors.New("ledger: no attempt recorded")

// Outcome is the graded result of a submission.
type Outcome struct {
	Correct        bool      `json:"correct"`
	Score          int       `json:"score"`
	RevealedAnswer string    `json:"revealedAnswer,omitempty"`
	SubmittedAt    time.Time `json:"submittedAt"`
}

// Attempt is a stored record keyed by (player, round).
type Attempt struct {
	PlayerID string `json:"playerId"`
	RoundKey string `json:"roundKey"`
	Outcome
}

// Store is the persistence interface for attempts. Implementations must be
// safe for concurrent readers; writes rely on idempotent-insert semantics
// only, since no two correct clients target the same key concurrently.
type Store interface {
	// HasAttempted reports whether the player already submitted for round.
	HasAttempted(ctx context.Context, playerID, roundKey string) (bool, error)

	// Record inserts the attempt exactly once. Returns ErrAlreadySubmitted
	// if a record for the key exists; the stored record is left untouched.
	Record(ctx context.Context, playerID, roundKey string, o Outcome) error

	// Get loads the stored attempt, or ErrNotFound.
	Get(ctx context.Context, playerID, roundKey string) (*Attempt, error)

	// Prune deletes attempts submitted before cutoff and reports how many
	// rows were removed.
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}
