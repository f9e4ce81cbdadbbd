package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookwidget/internal/httpx"
	"bookwidget/internal/platform/logging"
	"bookwidget/internal/platform/openlibrary"
	"bookwidget/internal/readinglist"
	"bookwidget/internal/recommend"
	"bookwidget/internal/search"
	"bookwidget/internal/session"
	"bookwidget/internal/suggest"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

func main() {
	loadEnvFiles()

	cfg, err := loadConfig()
	if err != nil {
		logging.Init(logging.Config{Format: "console"})
		log.Fatal().Err(err).Msg("load config")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	localDB, err := readinglist.OpenBadger(cfg.LocalCacheDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.LocalCacheDir).Msg("open local cache")
	}
	defer localDB.Close()

	var (
		remote readinglist.Repository
		ready  Pinger
	)
	if cfg.DatabaseDSN != "" {
		pool, err := openDB(ctx, cfg.DatabaseDSN)
		if err != nil {
			log.Warn().Err(err).Str("dsn", redactDSN(cfg.DatabaseDSN)).Msg("remote store unavailable, using local cache only")
		} else {
			defer pool.Close()
			remote = readinglist.NewPostgresRepo(pool, 3*time.Second)
			ready = pool
		}
	}
	repo := readinglist.NewFallbackRepository(remote, readinglist.NewBadgerRepo(localDB))

	olClient := openlibrary.NewClient(cfg.OpenLibraryUserAgent, cfg.OpenLibraryRPS, cfg.OpenLibraryMaxRetries)
	searchService := search.NewService(olClient, search.Config{CacheTTL: cfg.SearchCacheTTL})

	manager := session.NewManager(
		repo,
		recommend.NewScorer(searchService),
		suggest.NewMatcher(searchService),
		searchService,
		session.Config{IdleTTL: cfg.SessionIdleTTL},
	)
	go manager.Run(ctx)

	router := newRouter(routerDeps{
		sessions:  session.NewHTTPHandler(manager, cfg.JWTSecret, cfg.SessionTTL),
		typeahead: session.NewTypeaheadHandler(manager, cfg.SearchDebounce, cfg.CORSAllowedOrigins),
		secret:    cfg.JWTSecret,
		ready:     ready,
	})
	rateLimiter := httpx.NewRateLimitMiddleware(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      withMiddleware(router, rateLimiter, cfg),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown")
		}
	}()

	log.Info().Str("addr", cfg.Addr).Bool("remote_store", remote != nil).Msg("starting server")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server error")
	}
	log.Info().Msg("server stopped")
}

func openDB(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	log.Info().Msg("database connection OK")
	return pool, nil
}
