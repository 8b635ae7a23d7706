// internal/notify/notify.go
//
// Room-state change notifications. The duel registry publishes a payload on
// every state transition; subscribers (the SSE handler, or another service
// instance) re-poll the room on receipt. Two implementations: an in-process
// bus for single-instance deployments and tests, and a NATS-backed bus for
// multi-instance deployments.

package notify

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Bus delivers per-room payloads to subscribers.
type Bus interface {
	// Publish fans payload out to every subscriber of room.
	Publish(room string, payload []byte) error

	// Subscribe registers fn for a room's events and returns an
	// unsubscribe function. fn may be invoked concurrently.
	Subscribe(room string, fn func(payload []byte)) (func(), error)
}

// memoryBus is the in-process Bus.
type memoryBus struct {
	mu   sync.RWMutex
	next int
	subs map[string]map[int]func([]byte)
}

// NewMemoryBus constructs an in-process Bus.
func NewMemoryBus() Bus {
	return &memoryBus{subs: make(map[string]map[int]func([]byte))}
}

func (b *memoryBus) Publish(room string, payload []byte) error {
	b.mu.RLock()
	fns := make([]func([]byte), 0, len(b.subs[room]))
	for _, fn := range b.subs[room] {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(payload)
	}
	return nil
}

func (b *memoryBus) Subscribe(room string, fn func([]byte)) (func(), error) {
	b.mu.Lock()
	id := b.next
	b.next++
	if b.subs[room] == nil {
		b.subs[room] = make(map[int]func([]byte))
	}
	b.subs[room][id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs[room], id)
		if len(b.subs[room]) == 0 {
			delete(b.subs, room)
		}
		b.mu.Unlock()
	}, nil
}

// LogPublishError is a helper for fire-and-forget publish sites.
func LogPublishError(err error, room string) {
	if err != nil {
		log.Warn().Err(err).Str("room", room).Msg("publish room event")
	}
}
