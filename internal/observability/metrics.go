package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks backend calls and session side effects.
type Metrics struct {
	registry       *prometheus.Registry
	requests       *prometheus.CounterVec
	latency        *prometheus.HistogramVec
	errors         *prometheus.CounterVec
	forcedLogouts  *prometheus.CounterVec
	rateLimited    prometheus.Counter
	streamConnects prometheus.Counter
}

// NewMetrics registers the client collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gxmovies_client",
			Name:      "backend_requests_total",
			Help:      "Backend calls by method, route and status.",
		}, []string{"method", "path", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gxmovies_client",
			Name:      "backend_request_duration_seconds",
			Help:      "Backend call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gxmovies_client",
			Name:      "errors_total",
			Help:      "Failed calls by route and error kind.",
		}, []string{"method", "path", "code"}),
		forcedLogouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gxmovies_client",
			Name:      "forced_logouts_total",
			Help:      "Sessions cleared without a user-initiated logout.",
		}, []string{"reason"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gxmovies_client",
			Name:      "rate_limited_total",
			Help:      "Responses rejected with 429.",
		}),
		streamConnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gxmovies_client",
			Name:      "notification_stream_connects_total",
			Help:      "Notification stream connection attempts.",
		}),
	}
	m.registry.MustRegister(m.requests, m.latency, m.errors, m.forcedLogouts, m.rateLimited, m.streamConnects)
	return m
}

// RecordRequest increments counters for completed backend calls.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(method, path, code).Inc()
}

// RecordForcedLogout counts a session cleared by the server or the watchdog.
func (m *Metrics) RecordForcedLogout(reason string) {
	if m == nil {
		return
	}
	m.forcedLogouts.WithLabelValues(reason).Inc()
}

// RecordRateLimited counts a 429 response.
func (m *Metrics) RecordRateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}

// RecordStreamConnect counts a notification stream dial.
func (m *Metrics) RecordStreamConnect() {
	if m == nil {
		return
	}
	m.streamConnects.Inc()
}

// Handler exposes the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
