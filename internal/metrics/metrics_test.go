package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("metrics handler returned %d", w.Code)
	}
	return w.Body.String()
}

func TestMetrics_RecordRequest(t *testing.T) {
	m := New()

	m.RecordRequest("GET", "/health", 200, 100*time.Millisecond)
	m.RecordRequest("GET", "/health", 200, 150*time.Millisecond)
	m.RecordRequest("GET", "/health", 500, 50*time.Millisecond)

	if got := testutil.ToFloat64(m.requestCount.WithLabelValues("/health", "GET")); got != 3 {
		t.Errorf("expected 3 requests, got %v", got)
	}
	if got := testutil.ToFloat64(m.requestErrors.WithLabelValues("/health", "GET", "5xx")); got != 1 {
		t.Errorf("expected 1 5xx error, got %v", got)
	}

	body := scrape(t, m)
	if !strings.Contains(body, "ytsc_http_requests_total") {
		t.Error("expected ytsc_http_requests_total metric")
	}
	if !strings.Contains(body, "ytsc_http_request_duration_seconds") {
		t.Error("expected ytsc_http_request_duration_seconds metric")
	}
}

func TestMetrics_WSConnections(t *testing.T) {
	m := New()

	m.IncWSConnections()
	m.IncWSConnections()
	m.DecWSConnections()

	if got := testutil.ToFloat64(m.activeWSConns); got != 1 {
		t.Errorf("expected 1 active connection, got %v", got)
	}
}

func TestMetrics_EndpointNormalization(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/v1/sessions/123e4567-e89b-12d3-a456-426614174000", "/api/v1/sessions/{id}"},
		{"/api/v1/sessions/550e8400-e29b-41d4-a716-446655440000/submit", "/api/v1/sessions/{id}/submit"},
		{"/api/v1/videos/dQw4w9WgXcQ/preview", "/api/v1/videos/{video_id}/preview"},
		{"/api/v1/reports/J---aiyznGQ", "/api/v1/reports/{video_id}"},
		{"/api/v1/checks/history", "/api/v1/checks/history"},
	}

	for _, tt := range tests {
		if got := normalizeEndpoint(tt.path); got != tt.want {
			t.Errorf("normalizeEndpoint(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestMetricsMiddleware(t *testing.T) {
	m := New()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/test", nil)
	w := httptest.NewRecorder()
	MetricsMiddleware(m)(handler).ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
	if got := testutil.ToFloat64(m.requestErrors.WithLabelValues("/api/v1/test", "GET", "4xx")); got != 1 {
		t.Errorf("expected one 4xx, got %v", got)
	}
}

func TestMetrics_Checks(t *testing.T) {
	m := New()

	m.RecordCheck("mock", true, 2*time.Second)
	m.RecordCheck("mock", false, 2*time.Second)
	m.RecordCheck("mock", false, 2*time.Second)
	m.RecordCheckFailure("remote", "CHECK_FAILED", time.Second)
	m.CacheHit()
	m.CacheMiss()
	m.CacheMiss()
	m.InconsistentResult("llm")

	if got := testutil.ToFloat64(m.checksTotal.WithLabelValues("mock", "unsafe")); got != 2 {
		t.Errorf("expected 2 unsafe checks, got %v", got)
	}
	if got := testutil.ToFloat64(m.checkFailures.WithLabelValues("remote", "CHECK_FAILED")); got != 1 {
		t.Errorf("expected 1 failure, got %v", got)
	}
	if got := testutil.ToFloat64(m.cacheLookups.WithLabelValues("miss")); got != 2 {
		t.Errorf("expected 2 misses, got %v", got)
	}
	if got := testutil.ToFloat64(m.inconsistent.WithLabelValues("llm")); got != 1 {
		t.Errorf("expected 1 inconsistent result, got %v", got)
	}
}

func TestMetrics_SessionsAndRateLimit(t *testing.T) {
	m := New()

	m.SetActiveSessions(4)
	m.RecordSubmission("duplicate")
	m.RateLimited()

	if got := testutil.ToFloat64(m.activeSessions); got != 4 {
		t.Errorf("expected 4 sessions, got %v", got)
	}
	if got := testutil.ToFloat64(m.sessionOutcomes.WithLabelValues("duplicate")); got != 1 {
		t.Errorf("expected 1 duplicate, got %v", got)
	}
	if got := testutil.ToFloat64(m.rateLimitedTotal); got != 1 {
		t.Errorf("expected 1 rate limited request, got %v", got)
	}
}
