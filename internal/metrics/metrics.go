// Package metrics exposes Prometheus metrics for the challenge server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the challenge server
type Metrics struct {
	registry *prometheus.Registry

	// HTTP request metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	RateLimitedTotal    prometheus.Counter

	// Session metrics
	SessionsActive           prometheus.Gauge
	TodosStored              prometheus.Gauge
	ChallengesCompletedTotal *prometheus.CounterVec

	// Auth metrics
	AuthTokensTotal *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	httpRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apichallenges_http_requests_total",
			Help: "Total number of HTTP requests processed by route and status",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "apichallenges_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	rateLimitedTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "apichallenges_rate_limited_total",
			Help: "Total number of requests rejected by the per-challenger rate limit",
		},
	)

	sessionsActive := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "apichallenges_sessions",
			Help: "Current number of challenger sessions",
		},
	)

	todosStored := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "apichallenges_todos",
			Help: "Current number of todos across all sessions",
		},
	)

	challengesCompletedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apichallenges_challenges_completed_total",
			Help: "Total number of challenges completed by challenge id",
		},
		[]string{"challenge"},
	)

	authTokensTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apichallenges_auth_token_requests_total",
			Help: "Total number of secret token requests by result",
		},
		[]string{"result"},
	)

	registry.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		rateLimitedTotal,
		sessionsActive,
		todosStored,
		challengesCompletedTotal,
		authTokensTotal,
	)

	return &Metrics{
		registry:                 registry,
		HTTPRequestsTotal:        httpRequestsTotal,
		HTTPRequestDuration:      httpRequestDuration,
		RateLimitedTotal:         rateLimitedTotal,
		SessionsActive:           sessionsActive,
		TodosStored:              todosStored,
		ChallengesCompletedTotal: challengesCompletedTotal,
		AuthTokensTotal:          authTokensTotal,
	}
}

// GetRegistry returns the Prometheus registry for this metrics instance
func (m *Metrics) GetRegistry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records a finished HTTP request.
func (m *Metrics) RecordHTTPRequest(method, route, status string, seconds float64) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(seconds)
}

// RecordRateLimited counts a rejected request.
func (m *Metrics) RecordRateLimited() {
	m.RateLimitedTotal.Inc()
}

// RecordChallenge counts a newly completed challenge.
func (m *Metrics) RecordChallenge(id string) {
	m.ChallengesCompletedTotal.WithLabelValues(id).Inc()
}

// RecordAuthToken records a secret token exchange ("issued" or "rejected").
func (m *Metrics) RecordAuthToken(result string) {
	m.AuthTokensTotal.WithLabelValues(result).Inc()
}

// SetRegistryStats updates the session and todo gauges.
func (m *Metrics) SetRegistryStats(sessions, todos int) {
	m.SessionsActive.Set(float64(sessions))
	m.TodosStored.Set(float64(todos))
}
