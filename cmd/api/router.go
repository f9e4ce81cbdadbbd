package main

import (
	"context"
	"net/http"
	"time"

	"bookwidget/internal/httpx"
	"bookwidget/internal/session"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type routerDeps struct {
	sessions  *session.HTTPHandler
	typeahead http.Handler
	secret    string
	ready     Pinger // nil when no remote store is configured
}

func newRouter(d routerDeps) *http.ServeMux {
	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
			defer cancel()
			if err := d.ready.Ping(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	router.Handle("GET /metrics", promhttp.Handler())

	router.HandleFunc("POST /v1/sessions", d.sessions.CreateSession)

	auth := httpx.SessionAuthMiddleware(d.secret)
	protected := func(h http.HandlerFunc) http.Handler { return auth(h) }

	router.Handle("GET /v1/me/books", protected(d.sessions.ListBooks))
	router.Handle("POST /v1/me/books", protected(d.sessions.AddBook))
	router.Handle("DELETE /v1/me/books/{id}", protected(d.sessions.RemoveBook))
	router.Handle("PUT /v1/me/feedback/{bookID}", protected(d.sessions.SetFeedback))
	router.Handle("GET /v1/me/recommendations", protected(d.sessions.Recommendations))
	router.Handle("GET /v1/me/suggestions", protected(d.sessions.Suggestions))
	router.Handle("GET /v1/me/catalog", protected(d.sessions.Catalog))
	if d.typeahead != nil {
		router.Handle("GET /v1/me/typeahead", auth(d.typeahead))
	}

	return router
}

// withMiddleware wraps the router outermost-first.
func withMiddleware(h http.Handler, rl *httpx.RateLimitMiddleware, cfg config) http.Handler {
	h = httpx.RequestSizeLimitMiddleware(1 << 20)(h)
	h = rl.Middleware(h)
	h = httpx.CORSMiddleware(cfg.CORSAllowedOrigins)(h)
	h = httpx.SecurityHeadersMiddleware(cfg.EnableHSTS)(h)
	h = httpx.RecoveryMiddleware(h)
	h = httpx.AccessLogMiddleware(h)
	h = httpx.RequestIDMiddleware(h)
	return h
}
