// internal/ledger/memory.go
//
// In-memory ledger used in tests and when no database is configured.
// Same semantics as the SQLite store: idempotent insert, immutable records.

package ledger

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	mu       sync.RWMutex
	attempts map[string]*Attempt // keyed by playerID + "|" + roundKey
}

// NewMemory constructs an in-memory Store.
func NewMemory() Store {
	return &memoryStore{attempts: make(map[string]*Attempt)}
}

func key(playerID, roundKey string) string { return playerID + "|" + roundKey }

func (m *memoryStore) HasAttempted(ctx context.Context, playerID, roundKey string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.attempts[key(playerID, roundKey)]
	return ok, nil
}

func (m *memoryStore) Record(ctx context.Context, playerID, roundKey string, o Outcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(playerID, roundKey)
	if _, ok := m.attempts[k]; ok {
		return ErrAlreadySubmitted
	}
	m.attempts[k] = &Attempt{PlayerID: playerID, RoundKey: roundKey, Outcome: o}
	return nil
}

func (m *memoryStore) Get(ctx context.Context, playerID, roundKey string) (*Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.attempts[key(playerID, roundKey)]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (m *memoryStore) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, a := range m.attempts {
		if a.SubmittedAt.Before(cutoff) {
			delete(m.attempts, k)
			n++
		}
	}
	return n, nil
}
