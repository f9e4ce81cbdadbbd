package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookwidget_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)

	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookwidget_search_requests_total",
			Help: "Total number of book searches by field and outcome",
		},
		[]string{"field", "outcome"}, // outcome: ok, error, cache_hit
	)

	RecommendationRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookwidget_recommendation_runs_total",
			Help: "Total number of recommendation computations",
		},
	)

	AugmentationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookwidget_augmentation_failures_total",
			Help: "Genre augmentation lookups that failed or returned nothing",
		},
	)

	PersistenceFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookwidget_persistence_fallbacks_total",
			Help: "Reading-list operations served by the local cache",
		},
		[]string{"operation"}, // load, save
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bookwidget_active_sessions",
			Help: "Sessions currently held in memory",
		},
	)
)

// RecordHTTPRequest observes one served request.
func RecordHTTPRequest(method string, status int, d time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, strconv.Itoa(status)).Observe(d.Seconds())
}
