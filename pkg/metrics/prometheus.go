// Package metrics provides Prometheus metrics for the mahara client.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request outcome labels recorded per API call.
const (
	OutcomeOK         = "ok"
	OutcomeValidation = "validation"
	OutcomeServer     = "server"
	OutcomeNetwork    = "network"
	OutcomeDecode     = "decode"
)

// Manager manages all Prometheus metrics for the client.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// API gateway metrics
	apiRequests        *prometheus.CounterVec
	apiRequestDuration *prometheus.HistogramVec

	// Session lifecycle metrics
	sessionEvents *prometheus.CounterVec

	// Navigation metrics
	pageTransitions *prometheus.CounterVec

	// User-facing failure alerts
	alertsShown prometheus.Counter
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "mahara",
		subsystem:        "client",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.apiRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "api_requests_total",
		Help:      "API requests issued, by endpoint and outcome",
	}, []string{"endpoint", "outcome"})

	m.apiRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "api_request_duration_milliseconds",
		Help:      "API request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint"})

	m.sessionEvents = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "session_events_total",
		Help:      "Session lifecycle events (restore, login, logout)",
	}, []string{"event"})

	m.pageTransitions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "page_transitions_total",
		Help:      "Navigation transitions, by destination page",
	}, []string{"page"})

	m.alertsShown = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "alerts_shown_total",
		Help:      "Blocking failure alerts surfaced to the user",
	})
}

// RecordAPIRequest counts one API request with its outcome label.
func RecordAPIRequest(endpoint, outcome string) {
	globalManager.apiRequests.WithLabelValues(endpoint, outcome).Inc()
}

// RecordAPIRequestDuration records an API request duration in milliseconds.
func RecordAPIRequestDuration(endpoint string, durationMs float64) {
	globalManager.apiRequestDuration.WithLabelValues(endpoint).Observe(durationMs)
}

// RecordSessionEvent counts a session lifecycle event.
func RecordSessionEvent(event string) {
	globalManager.sessionEvents.WithLabelValues(event).Inc()
}

// RecordPageTransition counts a navigation transition.
func RecordPageTransition(page string) {
	globalManager.pageTransitions.WithLabelValues(page).Inc()
}

// RecordAlert counts a blocking failure alert.
func RecordAlert() {
	globalManager.alertsShown.Inc()
}

// GetRegistry returns the custom registry for scrape handlers.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
