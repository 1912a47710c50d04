package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ytsafecheck/backend/internal/logger"
)

// DefaultSlowThreshold sits above the mock checker's simulated latency.
const DefaultSlowThreshold = 3 * time.Second

// Timing returns a middleware that logs slow requests and adds
// Server-Timing headers.
func Timing(log *logger.Logger, slow time.Duration) func(http.Handler) http.Handler {
	if slow <= 0 {
		slow = DefaultSlowThreshold
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			tw := &timingResponseWriter{
				responseWriter: responseWriter{ResponseWriter: w, statusCode: http.StatusOK},
				start:          start,
			}

			next.ServeHTTP(tw, r)

			duration := time.Since(start)
			if duration > slow {
				log.Warn(r.Context(), "slow request", map[string]any{
					"method":      r.Method,
					"path":        r.URL.Path,
					"status":      tw.statusCode,
					"duration_ms": duration.Milliseconds(),
				})
			}
		})
	}
}

// timingResponseWriter sets Server-Timing just before the header is sent
type timingResponseWriter struct {
	responseWriter
	start time.Time
}

func (w *timingResponseWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.Header().Set("Server-Timing", formatServerTiming(time.Since(w.start)))
	}
	w.responseWriter.WriteHeader(code)
}

func (w *timingResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.responseWriter.Write(b)
}

func formatServerTiming(d time.Duration) string {
	ms := float64(d.Nanoseconds()) / 1e6
	return "total;dur=" + strconv.FormatFloat(ms, 'f', 2, 64)
}
