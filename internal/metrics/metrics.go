package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ytsc"

// Metrics holds all application collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestErrors   *prometheus.CounterVec

	checksTotal      *prometheus.CounterVec
	checkDuration    *prometheus.HistogramVec
	checkFailures    *prometheus.CounterVec
	cacheLookups     *prometheus.CounterVec
	recordFailures   *prometheus.CounterVec
	inconsistent     *prometheus.CounterVec
	sessionOutcomes  *prometheus.CounterVec
	activeSessions   prometheus.Gauge
	activeWSConns    prometheus.Gauge
	rateLimitedTotal prometheus.Counter
}

// New creates a new Metrics instance with its own registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests.",
		}, []string{"endpoint", "method"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint", "method"}),
		requestErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "Total HTTP errors by status class.",
		}, []string{"endpoint", "method", "status_class"}),
		checksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_checks_total",
			Help:      "Completed content checks by source and verdict.",
		}, []string{"source", "verdict"}),
		checkDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "content_check_duration_seconds",
			Help:      "Content check latency by source.",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 2, 2.5, 5, 10, 30, 60},
		}, []string{"source"}),
		checkFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_check_failures_total",
			Help:      "Failed content checks by source and error code.",
		}, []string{"source", "code"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Result cache lookups by outcome.",
		}, []string{"result"}),
		recordFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "record_failures_total",
			Help:      "Failures writing check history or reports.",
		}, []string{"sink"}),
		inconsistent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inconsistent_results_total",
			Help:      "Unsafe verdicts returned without any category flag.",
		}, []string{"source"}),
		sessionOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_submissions_total",
			Help:      "Session submissions by outcome.",
		}, []string{"outcome"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Live view sessions.",
		}),
		activeWSConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_connections_active",
			Help:      "Active WebSocket connections.",
		}),
		rateLimitedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestCount,
		m.requestDuration,
		m.requestErrors,
		m.checksTotal,
		m.checkDuration,
		m.checkFailures,
		m.cacheLookups,
		m.recordFailures,
		m.inconsistent,
		m.sessionOutcomes,
		m.activeSessions,
		m.activeWSConns,
		m.rateLimitedTotal,
	)
	return m
}

var defaultMetrics = New()

// Default returns the default metrics instance
func Default() *Metrics {
	return defaultMetrics
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequest records a request
func (m *Metrics) RecordRequest(method, path string, statusCode int, duration time.Duration) {
	endpoint := normalizeEndpoint(path)
	m.requestCount.WithLabelValues(endpoint, method).Inc()
	m.requestDuration.WithLabelValues(endpoint, method).Observe(duration.Seconds())

	if statusCode >= 400 {
		class := strconv.Itoa(statusCode/100) + "xx"
		m.requestErrors.WithLabelValues(endpoint, method, class).Inc()
	}
}

// normalizeEndpoint replaces IDs in a path with placeholders
func normalizeEndpoint(path string) string {
	parts := strings.Split(path, "/")
	for i, part := range parts {
		if i > 0 {
			switch parts[i-1] {
			case "videos", "reports":
				if part != "" {
					parts[i] = "{video_id}"
				}
				continue
			}
		}
		if len(part) == 36 && strings.Count(part, "-") == 4 {
			parts[i] = "{id}"
		} else if len(part) > 0 && isNumeric(part) {
			parts[i] = "{id}"
		}
	}
	return strings.Join(parts, "/")
}

func isNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// RecordCheck records a completed content check.
func (m *Metrics) RecordCheck(source string, safe bool, duration time.Duration) {
	verdict := "unsafe"
	if safe {
		verdict = "safe"
	}
	m.checksTotal.WithLabelValues(source, verdict).Inc()
	m.checkDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordCheckFailure records a failed content check.
func (m *Metrics) RecordCheckFailure(source, code string, duration time.Duration) {
	m.checkFailures.WithLabelValues(source, code).Inc()
	m.checkDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// CacheHit and CacheMiss count result cache lookups.
func (m *Metrics) CacheHit()  { m.cacheLookups.WithLabelValues("hit").Inc() }
func (m *Metrics) CacheMiss() { m.cacheLookups.WithLabelValues("miss").Inc() }

// RecordFailure counts a failed write to a history or report sink.
func (m *Metrics) RecordFailure(sink string) {
	m.recordFailures.WithLabelValues(sink).Inc()
}

// InconsistentResult counts unsafe verdicts without any category flag.
func (m *Metrics) InconsistentResult(source string) {
	m.inconsistent.WithLabelValues(source).Inc()
}

// RecordSubmission counts a session submission outcome.
func (m *Metrics) RecordSubmission(outcome string) {
	m.sessionOutcomes.WithLabelValues(outcome).Inc()
}

// SetActiveSessions sets the live session count
func (m *Metrics) SetActiveSessions(n int) {
	m.activeSessions.Set(float64(n))
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.activeWSConns.Inc()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.activeWSConns.Dec()
}

// RateLimited counts a rejected request.
func (m *Metrics) RateLimited() {
	m.rateLimitedTotal.Inc()
}

// Handler returns an HTTP handler for the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// MetricsMiddleware creates middleware that records request metrics
func MetricsMiddleware(m *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			wrapped := &statusResponseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(wrapped, r)

			m.RecordRequest(r.Method, r.URL.Path, wrapped.statusCode, time.Since(start))
		})
	}
}

type statusResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack lets websocket upgrades pass through the wrapper.
func (w *statusResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return h.Hijack()
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *statusResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
