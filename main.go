package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/avense/lexiround/internal/cadence"
	"github.com/avense/lexiround/internal/duel"
	"github.com/avense/lexiround/internal/engine"
	"github.com/avense/lexiround/internal/gameclock"
	"github.com/avense/lexiround/internal/httpserver"
	"github.com/avense/lexiround/internal/ledger"
	"github.com/avense/lexiround/internal/notify"
	"github.com/avense/lexiround/internal/remote"
	"github.com/avense/lexiround/internal/words"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := words.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to load word lists")
	}

	cadences, err := cadence.Parse(getEnv("CADENCES", "30@0,60@5"))
	if err != nil {
		log.Fatal().Err(err).Msg("bad CADENCES")
	}

	// Attempt ledger: SQLite when a path is configured, in-memory otherwise.
	store := ledger.NewMemory()
	if dsn := os.Getenv("SQLITE_DB"); dsn != "" {
		db, err := openDB(dsn)
		if err != nil {
			log.Fatal().Err(err).Str("dsn", dsn).Msg("open database")
		}
		if err := migrate(db); err != nil {
			log.Fatal().Err(err).Msg("migrate")
		}
		store = ledger.NewSQLite(db)
	} else {
		log.Warn().Msg("SQLITE_DB unset; attempts held in memory only")
	}

	// Remote round/score service is optional: without it the engine still
	// schedules windows and generates puzzles, but grading degrades locally.
	var rounds remote.Rounds
	var scores remote.Scores
	if base := os.Getenv("DATA_API_BASE"); base != "" {
		c := remote.NewClient(base)
		rounds, scores = c, c
	} else {
		log.Warn().Msg("DATA_API_BASE unset; remote grading and leaderboard disabled")
	}

	// Duel events fan out over NATS when available, in-process otherwise.
	bus := notify.NewMemoryBus()
	if url := os.Getenv("NATS_URL"); url != "" {
		nb, err := notify.NewNATSBus(url, "lexiround.duel")
		if err != nil {
			log.Fatal().Err(err).Str("url", url).Msg("connect NATS")
		}
		bus = nb
	}

	clock := clockwork.NewRealClock()
	sync := gameclock.New(clock)

	eng := engine.New(engine.Config{
		Cadences:       cadences,
		AnswerDuration: envDuration("ANSWER_WINDOW", 90*time.Second),
		TickInterval:   envDuration("TICK_INTERVAL", time.Second),
		Retention:      envDuration("ATTEMPT_RETENTION", 48*time.Hour),
	}, clock, sync, store, rounds, scores, words.Recall(), words.Search())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go eng.Run(ctx)

	rooms := duel.NewRegistry(clock, bus, envDuration("DUEL_LEAD", 5*time.Second))
	go rooms.Run(ctx, time.Minute, envDuration("DUEL_ROOM_TTL", 15*time.Minute))

	srv := httpserver.New(eng, rooms, bus, scores)
	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Int("cadences", len(cadences)).Msg("starting lexiround")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn().Str("key", k).Str("value", v).Msg("bad duration, using default")
		return def
	}
	return d
}
