// internal/duel/duel.go
//
// Two-party duel rendezvous. Each peer independently toggles its own ready
// flag; the transition to a started match happens only inside TryStart,
// which reads both flags and decides under the room lock. The registry is
// the single serializing authority the two peers cannot be: whichever
// TryStart observes both flags first produces the one (seed, start, mode)
// tuple, stores it on the room, and every later TryStart or poll returns
// that identical tuple. Both peers then feed the seed into the puzzle
// generator and derive identical content with no further negotiation.

package duel

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/avense/lexiround/internal/notify"
)

var (
	// ErrNotBothReady is the soft rejection for a start attempt racing the
	// other peer's ready toggle. Expected condition; callers keep polling.
	ErrNotBothReady = errors.New("duel: not both peers ready")

	ErrRoomNotFound = errors.New("duel: room not found")
	ErrRoomFull     = errors.New("duel: room already has two peers")
	ErrNotInRoom    = errors.New("duel: peer not in room")
	ErrStarted      = errors.New("duel: match already started")
)

// Start is the agreed start payload, observed identically by both peers.
type Start struct {
	Seed    string    `json:"seed"`
	StartAt time.Time `json:"startAt"`
	Mode    string    `json:"mode"`
}

// State is a poll snapshot of a room. Closed is set only on the final
// notification published when the room is destroyed.
type State struct {
	RoomID  string          `json:"roomId"`
	Mode    string          `json:"mode"`
	Ready   map[string]bool `json:"ready"`
	Started bool            `json:"started"`
	Start   *Start          `json:"start,omitempty"`
	Closed  bool            `json:"closed,omitempty"`
}

type room struct {
	id      string
	mode    string
	ready   map[string]bool // peerID -> ready flag
	start   *Start
	touched time.Time // last transition; drives idle expiry
}

// Registry owns all open duel rooms.
type Registry struct {
	clock clockwork.Clock
	bus   notify.Bus
	lead  time.Duration // countdown between arbitration and start instant

	mu    sync.Mutex
	rooms map[string]*room
}

// NewRegistry constructs a Registry publishing state changes on bus.
// lead is how far in the future agreed matches start, so both peers see a
// countdown rather than an instant start.
func NewRegistry(clock clockwork.Clock, bus notify.Bus, lead time.Duration) *Registry {
	return &Registry{clock: clock, bus: bus, lead: lead, rooms: make(map[string]*room)}
}

// Open creates a room for the given mode and returns its ID.
func (g *Registry) Open(mode string) string {
	id := uuid.NewString()
	g.mu.Lock()
	g.rooms[id] = &room{id: id, mode: mode, ready: make(map[string]bool), touched: g.clock.Now()}
	g.mu.Unlock()
	log.Info().Str("room", id).Str("mode", mode).Msg("duel room opened")
	return id
}

// Join adds a peer to a room. Joining again is a no-op; a third peer is
// rejected.
func (g *Registry) Join(roomID, peerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	if _, in := r.ready[peerID]; in {
		return nil
	}
	if len(r.ready) >= 2 {
		return ErrRoomFull
	}
	r.ready[peerID] = false
	r.touched = g.clock.Now()
	g.publishLocked(r)
	return nil
}

// SetReady toggles the calling peer's own flag. Toggling back to not-ready
// before the match starts returns the pair to the unready state; after the
// start payload is agreed the room is immutable.
func (g *Registry) SetReady(roomID, peerID string, ready bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	if _, in := r.ready[peerID]; !in {
		return ErrNotInRoom
	}
	if r.start != nil {
		return ErrStarted
	}
	r.ready[peerID] = ready
	r.touched = g.clock.Now()
	g.publishLocked(r)
	return nil
}

// TryStart is the arbitrated read-then-decide step. Under the room lock it
// observes both ready flags; if both are true it mints the start payload
// exactly once and returns it, and any subsequent call returns the same
// payload. If not, the caller gets ErrNotBothReady and should wait for the
// other peer's ready signal before retrying.
func (g *Registry) TryStart(roomID, peerID string) (Start, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.rooms[roomID]
	if !ok {
		return Start{}, ErrRoomNotFound
	}
	if _, in := r.ready[peerID]; !in {
		return Start{}, ErrNotInRoom
	}
	if r.start != nil {
		return *r.start, nil
	}
	if len(r.ready) < 2 {
		return Start{}, ErrNotBothReady
	}
	for _, rdy := range r.ready {
		if !rdy {
			return Start{}, ErrNotBothReady
		}
	}

	st := &Start{
		Seed:    newSeed(),
		StartAt: g.clock.Now().Add(g.lead).UTC(),
		Mode:    r.mode,
	}
	r.start = st
	r.touched = g.clock.Now()
	g.publishLocked(r)
	log.Info().Str("room", r.id).Str("seed", st.Seed).Time("startAt", st.StartAt).Msg("duel started")
	return *st, nil
}

// Snapshot returns the room's current state for polling peers.
func (g *Registry) Snapshot(roomID string) (State, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.rooms[roomID]
	if !ok {
		return State{}, ErrRoomNotFound
	}
	return r.state(), nil
}

// Close destroys a room when a peer leaves or the match completes. Any
// member may close; subscribers receive one final notification with the
// Closed flag set, after which the room ID resolves to ErrRoomNotFound.
func (g *Registry) Close(roomID, peerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	if _, in := r.ready[peerID]; !in {
		return ErrNotInRoom
	}
	delete(g.rooms, roomID)

	st := r.state()
	st.Closed = true
	if payload, err := json.Marshal(st); err == nil {
		notify.LogPublishError(g.bus.Publish(roomID, payload), roomID)
	}
	log.Info().Str("room", roomID).Msg("duel room closed")
	return nil
}

// Sweep drops rooms idle longer than ttl and reports how many were removed.
// Abandoned lobbies and long-finished matches expire the same way, so the
// registry stays bounded on a long-lived process.
func (g *Registry) Sweep(ttl time.Duration) int {
	now := g.clock.Now()
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for id, r := range g.rooms {
		if now.Sub(r.touched) > ttl {
			delete(g.rooms, id)
			n++
		}
	}
	if n > 0 {
		log.Info().Int("rooms", n).Msg("expired idle duel rooms")
	}
	return n
}

// Run sweeps idle rooms on a fixed interval until ctx is cancelled.
func (g *Registry) Run(ctx context.Context, every, ttl time.Duration) {
	t := g.clock.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.Chan():
			g.Sweep(ttl)
		}
	}
}

func (r *room) state() State {
	ready := make(map[string]bool, len(r.ready))
	for p, v := range r.ready {
		ready[p] = v
	}
	return State{RoomID: r.id, Mode: r.mode, Ready: ready, Started: r.start != nil, Start: r.start}
}

// publishLocked pushes the room snapshot to the notify bus. Callers hold
// the registry lock.
func (g *Registry) publishLocked(r *room) {
	payload, err := json.Marshal(r.state())
	if err != nil {
		return
	}
	notify.LogPublishError(g.bus.Publish(r.id, payload), r.id)
}

// newSeed issues the server-side random puzzle seed for a duel.
func newSeed() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
