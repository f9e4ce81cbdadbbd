package main

import (
	"context"
	"errors"
	"flag"
	"math/rand"
	"os"
	"time"

	"bookwidget/internal/book"
	"bookwidget/internal/catalog"
	"bookwidget/internal/platform/logging"
	"bookwidget/internal/readinglist"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// seed writes demo reading lists so a widget can be pointed at a session
// with history. Each list draws from the static catalog.
func main() {
	var (
		sessions = flag.Int("sessions", 1, "number of demo sessions to create")
		size     = flag.Int("books", 4, "books per reading list")
		seedVal  = flag.Int64("seed", time.Now().UnixNano(), "random seed")
	)
	flag.Parse()
	if err := validateFlags(*sessions, *size); err != nil {
		log.Fatal().Err(err).Msg("invalid flags")
	}

	_ = godotenv.Load(".env.local")
	logging.Init(logging.Config{Level: os.Getenv("LOG_LEVEL"), Format: "console"})

	ctx := context.Background()
	localDir := os.Getenv("LOCAL_CACHE_DIR")
	if localDir == "" {
		localDir = "data/localcache"
	}
	localDB, err := readinglist.OpenBadger(localDir)
	if err != nil {
		log.Fatal().Err(err).Msg("open local cache")
	}
	defer localDB.Close()

	var remote readinglist.Repository
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			log.Fatal().Err(err).Msg("connect to database")
		}
		defer pool.Close()
		remote = readinglist.NewPostgresRepo(pool, 5*time.Second)
	}
	repo := readinglist.NewFallbackRepository(remote, readinglist.NewBadgerRepo(localDB))

	rng := rand.New(rand.NewSource(*seedVal))
	for i := 0; i < *sessions; i++ {
		id := uuid.NewString()
		list := demoList(rng, *size, time.Now())
		if err := repo.Save(ctx, id, list); err != nil {
			log.Fatal().Err(err).Str("session_id", id).Msg("save demo reading list")
		}
		log.Info().Str("session_id", id).Int("books", len(list)).Msg("seeded session")
	}
}

func validateFlags(sessions, size int) error {
	var errs []error
	if sessions < 0 {
		errs = append(errs, errors.New("-sessions must not be negative"))
	}
	if size < 0 {
		errs = append(errs, errors.New("-books must not be negative"))
	}
	return errors.Join(errs...)
}

func demoList(rng *rand.Rand, size int, now time.Time) []book.UserBook {
	seed := catalog.Seed()
	rng.Shuffle(len(seed), func(i, j int) { seed[i], seed[j] = seed[j], seed[i] })
	size = min(max(size, 0), len(seed))

	var list []book.UserBook
	for _, b := range seed[:size] {
		rating := readinglist.MinRating + rng.Intn(readinglist.MaxRating)
		next, _, err := readinglist.Add(list, b, rating, now)
		if err != nil {
			continue
		}
		list = next
	}
	return list
}
