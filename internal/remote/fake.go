// internal/remote/fake.go
//
// Scriptable in-memory fakes for the remote ports. Call counters let tests
// assert that a path was (or was not) reached, e.g. that a duplicate
// submission never goes to the network.

package remote

import (
	"context"
	"sync"
)

// FakeRounds scripts CurrentWord/SubmitAnswer responses.
type FakeRounds struct {
	mu sync.Mutex

	WordResult   WordRound
	WordErr      error
	SubmitResult SubmitResult
	SubmitErr    error

	WordCalls   int
	SubmitCalls int
}

func (f *FakeRounds) CurrentWord(ctx context.Context, cadenceMinutes int) (WordRound, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.WordCalls++
	return f.WordResult, f.WordErr
}

func (f *FakeRounds) SubmitAnswer(ctx context.Context, playerID string, cadenceMinutes int, answer string) (SubmitResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SubmitCalls++
	return f.SubmitResult, f.SubmitErr
}

// Submits reports how many times SubmitAnswer ran.
func (f *FakeRounds) Submits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.SubmitCalls
}

// FakeDictionary serves fixed word lists per mode.
type FakeDictionary struct {
	Lists map[string][]string
	Err   error
}

func (f *FakeDictionary) ListWords(ctx context.Context, gameMode string) ([]string, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Lists[gameMode], nil
}

// FakeScores records reports and serves a fixed leaderboard.
type FakeScores struct {
	mu      sync.Mutex
	Reports []ScoreReport
	Rows    []LeaderboardRow
	Err     error
}

func (f *FakeScores) RecordScore(ctx context.Context, r ScoreReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Reports = append(f.Reports, r)
	return nil
}

func (f *FakeScores) Leaderboard(ctx context.Context, mode string, limit int) ([]LeaderboardRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	if limit > 0 && limit < len(f.Rows) {
		return f.Rows[:limit], nil
	}
	return f.Rows, nil
}

// Recorded returns a copy of the reports seen so far.
func (f *FakeScores) Recorded() []ScoreReport {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ScoreReport, len(f.Reports))
	copy(out, f.Reports)
	return out
}
