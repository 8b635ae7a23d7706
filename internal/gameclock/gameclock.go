// internal/gameclock/gameclock.go
//
// Clock synchronization against the remote data service.
// Every successful remote call that carries a server timestamp feeds Sync;
// Now then reports local time corrected by the last observed offset. All
// round-boundary math in the engine goes through Now so two devices with
// skewed clocks still agree on which window is open.
//
// The underlying clock is a clockwork.Clock so tests can drive time.

package gameclock

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Synchronizer holds the last known (server - local) offset.
type Synchronizer struct {
	clock  clockwork.Clock
	mu     sync.RWMutex
	offset time.Duration
	synced bool
}

// New returns a Synchronizer in degraded mode: until the first Sync, Now
// falls back to the raw local clock.
func New(clock clockwork.Clock) *Synchronizer {
	return &Synchronizer{clock: clock}
}

// Sync records the offset implied by a server timestamp observed now.
// Returns the new offset. A failed fetch simply never calls Sync, leaving
// the previous offset in effect.
func (s *Synchronizer) Sync(remote time.Time) time.Duration {
	off := remote.Sub(s.clock.Now())
	s.mu.Lock()
	s.offset = off
	s.synced = true
	s.mu.Unlock()
	log.Debug().Dur("offset", off).Msg("clock synced")
	return off
}

// Now returns local time plus the last known offset. Before the first Sync
// it returns raw local time; gameplay never blocks on synchronization.
func (s *Synchronizer) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clock.Now().Add(s.offset)
}

// Offset reports the stored offset and whether any server time has been
// observed yet.
func (s *Synchronizer) Offset() (time.Duration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.offset, s.synced
}
