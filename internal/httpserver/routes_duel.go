// internal/httpserver/routes_duel.go
//
// HTTP routes for two-player duels, mounted under /duel:
//   - POST /duel/rooms              → open a room (creator auto-joins)
//   - POST /duel/rooms/{id}/join    → second peer joins
//   - POST /duel/rooms/{id}/ready   → toggle own ready flag
//   - POST /duel/rooms/{id}/start   → arbitrated start attempt
//   - GET  /duel/rooms/{id}         → poll room state
//   - GET  /duel/rooms/{id}/events  → SSE stream of room-state changes
//   - GET  /duel/puzzle?seed=S      → regenerate content from an agreed seed
//
// A start attempt before both peers are ready is a soft 409: the client
// keeps polling (or watches the event stream) and retries.

package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/avense/lexiround/internal/duel"
)

const sseHeartbeat = 30 * time.Second

func (s *Server) mountDuel(r chi.Router) {
	r.Route("/duel", func(r chi.Router) {
		r.Post("/rooms", s.handleOpenRoom)
		r.Post("/rooms/{id}/join", s.handleJoinRoom)
		r.Post("/rooms/{id}/ready", s.handleReady)
		r.Post("/rooms/{id}/start", s.handleTryStart)
		r.Post("/rooms/{id}/close", s.handleCloseRoom)
		r.Get("/rooms/{id}", s.handleRoomState)
		r.Get("/rooms/{id}/events", s.handleRoomEvents)
		r.Get("/puzzle", s.handleDuelPuzzle)
	})
}

type openRoomReq struct {
	Mode string `json:"mode"`
}

func (s *Server) handleOpenRoom(w http.ResponseWriter, r *http.Request) {
	var req openRoomReq
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Mode == "" {
		req.Mode = "fast_round"
	}
	id := s.rooms.Open(req.Mode)
	if err := s.rooms.Join(id, s.playerID(w, r)); err != nil {
		http.Error(w, `{"error":"join_failed"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"roomId": id})
}

func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	err := s.rooms.Join(chi.URLParam(r, "id"), s.playerID(w, r))
	if s.duelError(w, err) {
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]bool{"joined": true})
}

type readyReq struct {
	Ready bool `json:"ready"`
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	var req readyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	err := s.rooms.SetReady(chi.URLParam(r, "id"), s.playerID(w, r), req.Ready)
	if s.duelError(w, err) {
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]bool{"ready": req.Ready})
}

func (s *Server) handleTryStart(w http.ResponseWriter, r *http.Request) {
	st, err := s.rooms.TryStart(chi.URLParam(r, "id"), s.playerID(w, r))
	if errors.Is(err, duel.ErrNotBothReady) {
		// Expected race, not a fault: the peer hasn't readied yet.
		http.Error(w, `{"error":"not_both_ready"}`, http.StatusConflict)
		return
	}
	if s.duelError(w, err) {
		return
	}
	_ = json.NewEncoder(w).Encode(st)
}

// handleCloseRoom tears a room down when a peer leaves or the match is
// over. Idle rooms that nobody bothers to close expire via the registry
// sweep instead.
func (s *Server) handleCloseRoom(w http.ResponseWriter, r *http.Request) {
	err := s.rooms.Close(chi.URLParam(r, "id"), s.playerID(w, r))
	if s.duelError(w, err) {
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]bool{"closed": true})
}

func (s *Server) handleRoomState(w http.ResponseWriter, r *http.Request) {
	st, err := s.rooms.Snapshot(chi.URLParam(r, "id"))
	if s.duelError(w, err) {
		return
	}
	_ = json.NewEncoder(w).Encode(st)
}

// handleRoomEvents streams room-state changes over SSE. Each bus payload is
// already a JSON room snapshot; the stream opens with the current state so
// late subscribers don't wait for the next transition.
func (s *Server) handleRoomEvents(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	st, err := s.rooms.Snapshot(roomID)
	if s.duelError(w, err) {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, `{"error":"streaming_unsupported"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events := make(chan []byte, 16)
	unsubscribe, err := s.bus.Subscribe(roomID, func(p []byte) {
		select {
		case events <- p:
		default:
			// Channel full, skip slow client.
		}
	})
	if err != nil {
		log.Warn().Err(err).Str("room", roomID).Msg("sse subscribe")
		http.Error(w, `{"error":"subscribe_failed"}`, http.StatusInternalServerError)
		return
	}
	defer unsubscribe()

	if initial, err := json.Marshal(st); err == nil {
		fmt.Fprintf(w, "data: %s\n\n", initial)
		flusher.Flush()
	}

	ticker := time.NewTicker(sseHeartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case msg := <-events:
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}

// handleDuelPuzzle regenerates duel content from the agreed seed. Both
// peers call this independently and receive byte-identical tiles.
func (s *Server) handleDuelPuzzle(w http.ResponseWriter, r *http.Request) {
	seed := r.URL.Query().Get("seed")
	if seed == "" {
		http.Error(w, `{"error":"missing_seed"}`, http.StatusBadRequest)
		return
	}
	p := s.eng.DuelPuzzle(seed)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"tiles":    p.Tiles,
		"solvable": len(p.Solvable),
		"degraded": p.Degraded,
	})
}

// duelError maps registry errors to responses; returns true when handled.
func (s *Server) duelError(w http.ResponseWriter, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, duel.ErrRoomNotFound):
		http.Error(w, `{"error":"room_not_found"}`, http.StatusNotFound)
	case errors.Is(err, duel.ErrRoomFull):
		http.Error(w, `{"error":"room_full"}`, http.StatusConflict)
	case errors.Is(err, duel.ErrNotInRoom):
		http.Error(w, `{"error":"not_in_room"}`, http.StatusForbidden)
	case errors.Is(err, duel.ErrStarted):
		http.Error(w, `{"error":"already_started"}`, http.StatusConflict)
	default:
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
	}
	return true
}
