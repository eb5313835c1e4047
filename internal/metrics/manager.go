// Package metrics exposes the Prometheus collectors of liftcoach.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/myrjola/liftcoach/internal/training"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager holds the collectors. It implements training.Metrics.
type Manager struct {
	// counters
	CounterRequests           *prometheus.CounterVec
	CounterHandleRequestPanic prometheus.Counter
	CounterRecommendations    *prometheus.CounterVec
	CounterPersonalRecords    prometheus.Counter
	CounterFetchTimeouts      prometheus.Counter
	CounterRateLimited        prometheus.Counter

	// gauges
	GaugeRequests prometheus.Gauge

	// histograms
	HistRequestDuration *prometheus.HistogramVec
	HistProgramMatches  *prometheus.HistogramVec
}

var _ training.Metrics = (*Manager)(nil)

func NewTestManager() *Manager {
	return NewManager("liftcoach", "test", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("liftcoach", "test", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "The total number of handled requests",
		}, []string{"method", "route", "status"}),
		CounterHandleRequestPanic: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "handle_request_panics_total",
			Help:      "The total number of recovered request panics",
		}),
		CounterRecommendations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "recommendations_total",
			Help:      "Progression recommendations computed by type",
		}, []string{"type"}),
		CounterPersonalRecords: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "personal_records_total",
			Help:      "Weight personal records detected",
		}),
		CounterFetchTimeouts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "history_fetch_timeouts_total",
			Help:      "Exercise history fetches that timed out and were skipped",
		}),
		CounterRateLimited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rate_limited_requests_total",
			Help:      "Requests rejected by the per-user rate limiter",
		}),
		GaugeRequests: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "current_requests",
			Help:      "Current number of requests served",
		}),
		HistRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "Duration of requests in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"route"}),
		HistProgramMatches: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "program_matches",
			Help:      "Number of programs returned per match request",
			Buckets:   prometheus.LinearBuckets(0, 1, 10), //nolint:mnd // one bucket per program count.
		}, []string{"tier"}),
	}
}

func (m *Manager) RecommendationComputed(recommendationType string) {
	m.CounterRecommendations.WithLabelValues(recommendationType).Inc()
}

func (m *Manager) PersonalRecordDetected() {
	m.CounterPersonalRecords.Inc()
}

func (m *Manager) ProgramsMatched(topPicks, otherOptions int) {
	m.HistProgramMatches.WithLabelValues("top_pick").Observe(float64(topPicks))
	m.HistProgramMatches.WithLabelValues("other_option").Observe(float64(otherOptions))
}

func (m *Manager) HistoryFetchTimedOut() {
	m.CounterFetchTimeouts.Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Middleware records the count and duration of requests. Requests are labelled by their mux pattern so that
// path values do not explode the label cardinality.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.GaugeRequests.Inc()
		defer m.GaugeRequests.Dec()

		rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		begin := time.Now()
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.HistRequestDuration.WithLabelValues(route).Observe(time.Since(begin).Seconds())
		m.CounterRequests.With(prometheus.Labels{
			"method": r.Method,
			"route":  route,
			"status": strconv.Itoa(rec.statusCode),
		}).Inc()
	})
}
