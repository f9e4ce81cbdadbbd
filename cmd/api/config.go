package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type config struct {
	Addr          string
	DatabaseDSN   string
	LocalCacheDir string
	JWTSecret     string

	SessionTTL     time.Duration
	SessionIdleTTL time.Duration

	OpenLibraryUserAgent  string
	OpenLibraryRPS        int
	OpenLibraryMaxRetries int
	SearchCacheTTL        time.Duration
	SearchDebounce        time.Duration

	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
	EnableHSTS         bool

	LogLevel  string
	LogFormat string
}

func loadEnvFiles() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

// loadConfig reads the environment. JWT_SECRET is the only required value.
func loadConfig() (config, error) {
	var errs []string
	cfg := config{
		Addr:                 getEnv("APP_ADDR", ":8080"),
		DatabaseDSN:          os.Getenv("DB_DSN"),
		LocalCacheDir:        getEnv("LOCAL_CACHE_DIR", "data/localcache"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		OpenLibraryUserAgent: getEnv("OPENLIBRARY_USER_AGENT", "bookwidget/1.0 (+https://openlibrary.org/developers/api)"),
		CORSAllowedOrigins:   splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		EnableHSTS:           getEnv("ENABLE_HSTS", "false") == "true",
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "json"),
	}
	if cfg.JWTSecret == "" {
		errs = append(errs, "missing required environment variable: JWT_SECRET")
	}

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"SESSION_TTL", "720h", &cfg.SessionTTL},
		{"SESSION_IDLE_TTL", "2h", &cfg.SessionIdleTTL},
		{"SEARCH_CACHE_TTL", "10m", &cfg.SearchCacheTTL},
		{"SEARCH_DEBOUNCE", "300ms", &cfg.SearchDebounce},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getEnv(d.key, d.def))
		if err != nil || v <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be a positive duration", d.key))
			continue
		}
		*d.dst = v
	}

	ints := []struct {
		key string
		def string
		dst *int
	}{
		{"OPENLIBRARY_RPS", "5", &cfg.OpenLibraryRPS},
		{"OPENLIBRARY_MAX_RETRIES", "2", &cfg.OpenLibraryMaxRetries},
		{"RATE_LIMIT_BURST", "20", &cfg.RateLimitBurst},
	}
	for _, n := range ints {
		v, err := strconv.Atoi(getEnv(n.key, n.def))
		if err != nil || v < 0 {
			errs = append(errs, fmt.Sprintf("%s must be a non-negative integer", n.key))
			continue
		}
		*n.dst = v
	}

	rps, err := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "10"), 64)
	if err != nil || rps <= 0 {
		errs = append(errs, "RATE_LIMIT_RPS must be a positive number")
	}
	cfg.RateLimitRPS = rps

	if len(errs) > 0 {
		return config{}, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func redactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
