// internal/remote/remote.go
//
// Ports to the external account-and-data service. The engine consumes these
// interfaces; production wiring uses the HTTP client in client.go, tests use
// the fakes in fake.go. Every response that carries a server timestamp is
// fed to the clock synchronizer by the caller.

package remote

import (
	"context"
	"time"
)

// WordRound is the remote answer for the single-round word-of-the-hour mode.
type WordRound struct {
	Word       string    `json:"word"`
	RoundStart time.Time `json:"roundStart"`
	ServerNow  time.Time `json:"serverNow"`
}

// SubmitResult is the remote grading of an answer. Single-use per round per
// player, enforced server-side; the local ledger only short-circuits the
// obvious duplicates.
type SubmitResult struct {
	Correct       bool      `json:"correct"`
	Points        int       `json:"points"`
	ElapsedMs     int       `json:"elapsedMs"`
	RoundStart    time.Time `json:"roundStart"`
	ServerNow     time.Time `json:"serverNow"`
	CorrectAnswer string    `json:"correctAnswer"`
}

// Rounds is the round-content and submission boundary.
type Rounds interface {
	CurrentWord(ctx context.Context, cadenceMinutes int) (WordRound, error)
	SubmitAnswer(ctx context.Context, playerID string, cadenceMinutes int, answer string) (SubmitResult, error)
}

// Dictionary fetches word lists by game mode ("recall", "search"), each
// lowercase-normalized and static for the session.
type Dictionary interface {
	ListWords(ctx context.Context, gameMode string) ([]string, error)
}

// ScoreReport is a completed-game score persisted remotely.
type ScoreReport struct {
	PlayerID      string   `json:"playerId"`
	Mode          string   `json:"mode"`
	DurationSec   int      `json:"durationSec"`
	LettersOrSeed string   `json:"lettersOrSeed"`
	FoundWords    []string `json:"foundWords"`
	TotalScore    int      `json:"totalScore"`
}

// LeaderboardRow is one remote leaderboard entry.
type LeaderboardRow struct {
	PlayerID string `json:"playerId"`
	Score    int    `json:"score"`
	Rank     int    `json:"rank"`
}

// Scores is the score persistence and leaderboard boundary. RecordScore is
// fire-and-forget from the engine's perspective: persistence failure never
// blocks or replays gameplay.
type Scores interface {
	RecordScore(ctx context.Context, r ScoreReport) error
	Leaderboard(ctx context.Context, mode string, limit int) ([]LeaderboardRow, error)
}
