// internal/ledger/sqlite.go
//
// SQLite-backed ledger. Uniqueness of (player_id, round_key) is enforced by
// the schema; Record uses INSERT OR IGNORE and inspects the affected row
// count, so the duplicate path costs one statement and never overwrites.

package ledger

import (
	"context"
	"database/sql"
	"time"
)

type sqliteStore struct {
	db *sql.DB
}

// NewSQLite returns a Store backed by the given database handle. The
// attempts table is created by the migration files under sql/.
func NewSQLite(db *sql.DB) Store {
	return &sqliteStore{db: db}
}

func (s *sqliteStore) HasAttempted(ctx context.Context, playerID, roundKey string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM attempts WHERE player_id=? AND round_key=?`,
		playerID, roundKey,
	).Scan(&cnt)
	return cnt > 0, err
}

func (s *sqliteStore) Record(ctx context.Context, playerID, roundKey string, o Outcome) error {
	res, err := s.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO attempts
            (player_id, round_key, correct, score, revealed_answer, submitted_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		playerID, roundKey, o.Correct, o.Score, o.RevealedAnswer,
		o.SubmittedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlreadySubmitted
	}
	return nil
}

func (s *sqliteStore) Get(ctx context.Context, playerID, roundKey string) (*Attempt, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT correct, score, revealed_answer, submitted_at
        FROM attempts WHERE player_id=? AND round_key=?`,
		playerID, roundKey,
	)
	a := Attempt{PlayerID: playerID, RoundKey: roundKey}
	var submitted string
	if err := row.Scan(&a.Correct, &a.Score, &a.RevealedAnswer, &submitted); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	a.SubmittedAt, _ = time.Parse(time.RFC3339, submitted)
	return &a, nil
}

func (s *sqliteStore) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM attempts WHERE submitted_at < ?`,
		cutoff.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
