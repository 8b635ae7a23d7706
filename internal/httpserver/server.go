// internal/httpserver/server.go
//
// HTTP wiring for the round-engine service.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/debug/words".
//   - Round endpoints (optional auth): active window, puzzle payloads,
//     answer submission, word-of-the-hour passthrough, leaderboard.
//   - Duel endpoints mounted under /duel (see routes_duel.go).
//   - Score reporting (fire-and-forget persistence).
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Player identity comes from the external account service's JWT when
//     present; guests get a stable anonymous cookie identity.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/avense/lexiround/internal/cadence"
	"github.com/avense/lexiround/internal/duel"
	"github.com/avense/lexiround/internal/engine"
	"github.com/avense/lexiround/internal/ledger"
	"github.com/avense/lexiround/internal/notify"
	"github.com/avense/lexiround/internal/remote"
	"github.com/avense/lexiround/internal/words"
)

// Server bundles the router with the engine and its collaborators.
type Server struct {
	r      *chi.Mux
	eng    *engine.Engine
	rooms  *duel.Registry
	bus    notify.Bus
	scores remote.Scores
}

// New constructs a Server, installs middleware, and registers routes.
// scores may be nil when no remote service is configured; the leaderboard
// endpoint then reports unavailability.
func New(eng *engine.Engine, rooms *duel.Registry, bus notify.Bus, scores remote.Scores) *Server {
	s := &Server{r: chi.NewRouter(), eng: eng, rooms: rooms, bus: bus, scores: scores}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(jsonContentType)
	s.r.Use(corsFromEnv)

	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"lexiround","endpoints":["/health","/rounds/active","/rounds/puzzle","POST /rounds/submit","/duel/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
		recall, search := words.Stats()
		_ = json.NewEncoder(w).Encode(map[string]int{"recall": recall, "search": search})
	})

	s.r.Group(func(r chi.Router) {
		r.Use(s.withPlayer())
		r.Get("/rounds/active", s.handleActive)
		r.Get("/rounds/puzzle", s.handlePuzzle)
		r.Get("/rounds/word", s.handleRemoteWord)
		r.Get("/rounds/attempt", s.handleAttempt)
		r.Post("/rounds/submit", s.handleSubmit)
		r.Get("/rounds/leaderboard", s.handleLeaderboard)
		r.Post("/scores", s.handleReportScore)
		s.mountDuel(r)
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromEnv enables credentialed CORS for a single origin.
// Uses CLIENT_ORIGIN env var; defaults to http://localhost:5173.
func corsFromEnv(next http.Handler) http.Handler {
	origin := os.Getenv("CLIENT_ORIGIN")
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ rounds -------------------------------------

// handleActive reports the schedule snapshot: the live window or the next
// upcoming start, always derived fresh from corrected time.
func (s *Server) handleActive(w http.ResponseWriter, r *http.Request) {
	snap := s.eng.Current()
	_ = json.NewEncoder(w).Encode(activeRes{
		Live:        snap.Live,
		RoundKey:    snap.RoundKey,
		EndsAt:      snap.EndsAt,
		RemainingMs: int(snap.Remaining.Milliseconds()),
		NextStartAt: snap.NextStartAt,
		Now:         snap.Now,
	})
}

type activeRes struct {
	Live        bool      `json:"live"`
	RoundKey    string    `json:"roundKey,omitempty"`
	EndsAt      time.Time `json:"endsAt,omitempty"`
	RemainingMs int       `json:"remainingMs,omitempty"`
	NextStartAt time.Time `json:"nextStartAt"`
	Now         time.Time `json:"now"`
}

// handlePuzzle serves the active round's generated content. mode=recall
// returns the scrambled word (without the answer); mode=search returns the
// tile set, solvable-word count, and the degraded flag.
func (s *Server) handlePuzzle(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("mode") {
	case "recall":
		p, snap, err := s.eng.RecallPuzzle()
		if err != nil {
			s.roundError(w, err, snap.NextStartAt)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"roundKey":  snap.RoundKey,
			"scrambled": p.Scrambled,
			"endsAt":    snap.EndsAt,
		})
	case "search":
		p, snap, err := s.eng.SearchPuzzle()
		if err != nil {
			s.roundError(w, err, snap.NextStartAt)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"roundKey": snap.RoundKey,
			"tiles":    p.Tiles,
			"solvable": len(p.Solvable),
			"degraded": p.Degraded,
			"endsAt":   snap.EndsAt,
		})
	default:
		http.Error(w, `{"error":"unknown_mode"}`, http.StatusBadRequest)
	}
}

// handleRemoteWord proxies the word-of-the-hour fetch; the engine syncs its
// clock from the carried server timestamp as a side effect.
func (s *Server) handleRemoteWord(w http.ResponseWriter, r *http.Request) {
	mins, err := strconv.Atoi(r.URL.Query().Get("cadence"))
	if err != nil || mins <= 0 {
		http.Error(w, `{"error":"bad_cadence"}`, http.StatusBadRequest)
		return
	}
	wr, err := s.eng.RemoteWord(r.Context(), cadenceOfMinutes(mins))
	if err != nil {
		log.Warn().Err(err).Msg("remote word fetch")
		http.Error(w, `{"error":"remote_unavailable"}`, http.StatusBadGateway)
		return
	}
	_ = json.NewEncoder(w).Encode(wr)
}

// handleAttempt returns the player's stored attempt for the active round.
func (s *Server) handleAttempt(w http.ResponseWriter, r *http.Request) {
	player := s.playerID(w, r)
	a, err := s.eng.Attempt(r.Context(), player)
	switch {
	case errors.Is(err, engine.ErrNoActiveRound):
		http.Error(w, `{"error":"no_active_round"}`, http.StatusNotFound)
	case errors.Is(err, ledger.ErrNotFound):
		_ = json.NewEncoder(w).Encode(map[string]bool{"attempted": false})
	case err != nil:
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
	default:
		_ = json.NewEncoder(w).Encode(a)
	}
}

type submitReq struct {
	Answer string `json:"answer"`
}

// handleSubmit grades one answer for the active round. Duplicates are
// rejected locally (409) before the remote is contacted; a result that
// arrives after the window closed is discarded (410).
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Answer == "" {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	player := s.playerID(w, r)

	out, err := s.eng.Submit(r.Context(), player, req.Answer)
	switch {
	case errors.Is(err, engine.ErrNoActiveRound):
		http.Error(w, `{"error":"no_active_round"}`, http.StatusNotFound)
	case errors.Is(err, ledger.ErrAlreadySubmitted):
		http.Error(w, `{"error":"already_submitted"}`, http.StatusConflict)
	case errors.Is(err, engine.ErrWindowClosed):
		http.Error(w, `{"error":"window_closed"}`, http.StatusGone)
	case err != nil:
		log.Warn().Err(err).Str("player", player).Msg("submit failed")
		http.Error(w, `{"error":"submit_failed"}`, http.StatusBadGateway)
	default:
		_ = json.NewEncoder(w).Encode(out)
	}
}

// handleLeaderboard passes the remote leaderboard through for display.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.scores == nil {
		http.Error(w, `{"error":"leaderboard_unavailable"}`, http.StatusServiceUnavailable)
		return
	}
	mode := r.URL.Query().Get("mode")
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	rows, err := s.scores.Leaderboard(r.Context(), mode, limit)
	if err != nil {
		http.Error(w, `{"error":"remote_unavailable"}`, http.StatusBadGateway)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"mode": mode, "top": rows})
}

type scoreReq struct {
	Mode        string   `json:"mode"`
	DurationSec int      `json:"durationSec"`
	Letters     string   `json:"letters"`
	FoundWords  []string `json:"foundWords"`
	TotalScore  int      `json:"totalScore"`
}

// handleReportScore forwards a completed game's score. Accepted immediately;
// persistence is fire-and-forget and never blocks gameplay.
func (s *Server) handleReportScore(w http.ResponseWriter, r *http.Request) {
	var req scoreReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	s.eng.ReportScore(remote.ScoreReport{
		PlayerID:      s.playerID(w, r),
		Mode:          req.Mode,
		DurationSec:   req.DurationSec,
		LettersOrSeed: req.Letters,
		FoundWords:    validFoundWords(req.FoundWords),
		TotalScore:    req.TotalScore,
	})
	w.WriteHeader(http.StatusAccepted)
	_, _ = w.Write([]byte(`{"accepted":true}`))
}

func cadenceOfMinutes(mins int) cadence.Cadence {
	return cadence.Cadence{Period: time.Duration(mins) * time.Minute}
}

// validFoundWords drops reported words absent from the letter-search
// dictionary before the score leaves the process. With no dictionary
// loaded the list passes through untouched.
func validFoundWords(in []string) []string {
	if _, search := words.Stats(); search == 0 {
		return in
	}
	out := make([]string, 0, len(in))
	for _, w := range in {
		if words.Contains(w) {
			out = append(out, w)
		}
	}
	return out
}

// roundError maps engine round errors to responses carrying the next start.
func (s *Server) roundError(w http.ResponseWriter, err error, next time.Time) {
	if errors.Is(err, engine.ErrNoActiveRound) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "no_active_round", "nextStartAt": next})
		return
	}
	log.Error().Err(err).Msg("puzzle generation")
	http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
}
