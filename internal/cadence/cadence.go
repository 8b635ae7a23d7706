// internal/cadence/cadence.go
//
// Cadence scheduling for timed rounds.
// A cadence is a recurring period plus a phase offset; phase offsets keep
// independent cadences from opening a window at the same instant. The
// scheduler is stateless: which window is live is a pure function of
// corrected time and the enabled cadence set, re-derived on every tick, so
// it is trivially resumable after a restart and can never drift.

package cadence

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Cadence is one recurring round track.
type Cadence struct {
	Period time.Duration
	Phase  time.Duration
}

// Validate enforces the structural invariants: positive period, and a phase
// offset strictly smaller than the period.
func (c Cadence) Validate() error {
	if c.Period <= 0 {
		return errors.New("cadence: period must be positive")
	}
	if c.Phase < 0 || c.Phase >= c.Period {
		return errors.New("cadence: phase offset must be in [0, period)")
	}
	return nil
}

// String renders the cadence in the same minutes@minutes form Parse accepts.
func (c Cadence) String() string {
	return fmt.Sprintf("%d@%d", int(c.Period.Minutes()), int(c.Phase.Minutes()))
}

// Parse reads a comma-separated cadence list like "30@0,60@5"
// (period-minutes@phase-minutes). Used for the CADENCES env var.
func Parse(s string) ([]Cadence, error) {
	var out []Cadence
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		p, ph, ok := strings.Cut(part, "@")
		if !ok {
			return nil, fmt.Errorf("cadence: bad entry %q", part)
		}
		period, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("cadence: bad period in %q: %w", part, err)
		}
		phase, err := strconv.Atoi(strings.TrimSpace(ph))
		if err != nil {
			return nil, fmt.Errorf("cadence: bad phase in %q: %w", part, err)
		}
		c := Cadence{Period: time.Duration(period) * time.Minute, Phase: time.Duration(phase) * time.Minute}
		if err := c.Validate(); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil, errors.New("cadence: empty cadence list")
	}
	return out, nil
}

// RoundIdentity names one specific round instance: a cadence plus the
// instant its window opened. It is the canonical key for puzzle content,
// attempt records, and the PRNG seed. Two clients with the same corrected
// time and cadence set always derive the same RoundIdentity.
type RoundIdentity struct {
	Cadence Cadence
	Start   time.Time
}

// Key is the canonical string form of the identity, used as the attempt
// ledger key and as the puzzle seed.
func (r RoundIdentity) Key() string {
	return fmt.Sprintf("%s#%d", r.Cadence, r.Start.Unix())
}

// AnswerWindow is the half-open live interval [Start, End) of a round.
type AnswerWindow struct {
	Round RoundIdentity
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w AnswerWindow) Contains(t time.Time) bool {
	return !t.Before(w.Round.Start) && t.Before(w.End)
}

// windowStart floors now onto the cadence grid:
// floor((now - phase) / period) * period + phase, in epoch time.
func windowStart(now time.Time, c Cadence) time.Time {
	n := now.Add(-c.Phase).UnixNano()
	p := c.Period.Nanoseconds()
	rem := n % p
	if rem < 0 {
		rem += p
	}
	return time.Unix(0, n-rem).Add(c.Phase).UTC()
}

// Active returns the live window at now, if any. When several cadences are
// simultaneously live the soonest-ending window wins; remaining ties break
// on shorter period, then smaller phase, so the choice is always unique.
func Active(now time.Time, cadences []Cadence, answer time.Duration) (AnswerWindow, bool) {
	var best AnswerWindow
	found := false
	for _, c := range cadences {
		ws := windowStart(now, c)
		w := AnswerWindow{Round: RoundIdentity{Cadence: c, Start: ws}, End: ws.Add(answer)}
		if !w.Contains(now) {
			continue
		}
		if !found || earlier(w, best) {
			best = w
			found = true
		}
	}
	return best, found
}

// earlier is the total tie-break order between two live windows.
func earlier(a, b AnswerWindow) bool {
	if !a.End.Equal(b.End) {
		return a.End.Before(b.End)
	}
	if a.Round.Cadence.Period != b.Round.Cadence.Period {
		return a.Round.Cadence.Period < b.Round.Cadence.Period
	}
	return a.Round.Cadence.Phase < b.Round.Cadence.Phase
}

// NextStart returns the earliest upcoming window start at or after now,
// and the cadence that owns it.
func NextStart(now time.Time, cadences []Cadence) (time.Time, Cadence) {
	var bestAt time.Time
	var bestC Cadence
	for _, c := range cadences {
		next := windowStart(now, c).Add(c.Period)
		if bestAt.IsZero() || next.Before(bestAt) {
			bestAt, bestC = next, c
		}
	}
	return bestAt, bestC
}
