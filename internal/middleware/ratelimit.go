package middleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	apperrors "github.com/ytsafecheck/backend/internal/errors"
)

const limiterIdleTimeout = 10 * time.Minute

// RateLimitMetrics counts rejected requests. *metrics.Metrics implements it.
type RateLimitMetrics interface {
	RateLimited()
}

// RateLimitConfig configures a per-client token bucket.
type RateLimitConfig struct {
	RPS     float64
	Burst   int
	KeyFn   func(r *http.Request) string
	Metrics RateLimitMetrics
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is an in-memory token-bucket rate limiter keyed by client.
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	config  RateLimitConfig
	now     func() time.Time
}

// NewRateLimiter creates a rate limiter with the given config.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.RPS <= 0 {
		cfg.RPS = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	if cfg.KeyFn == nil {
		cfg.KeyFn = KeyByIP
	}
	return &RateLimiter{
		entries: make(map[string]*limiterEntry),
		config:  cfg,
		now:     time.Now,
	}
}

// Handler returns a middleware that enforces the rate limit.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(rl.config.KeyFn(r)) {
			if rl.config.Metrics != nil {
				rl.config.Metrics.RateLimited()
			}
			retryAfter := max(int(math.Ceil(1/rl.config.RPS)), 1)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			apperrors.WriteError(w, apperrors.GetRequestID(r.Context()),
				apperrors.RateLimited().WithDetails(map[string]any{"retry_after": retryAfter}))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Allow reports whether a request with the given key may proceed.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	now := rl.now()
	e, ok := rl.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rate.Limit(rl.config.RPS), rl.config.Burst)}
		rl.entries[key] = e
	}
	e.lastSeen = now
	rl.mu.Unlock()

	return e.limiter.AllowN(now, 1)
}

// Run drops idle clients until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := rl.now().Add(-limiterIdleTimeout)
	for key, e := range rl.entries {
		if e.lastSeen.Before(cutoff) {
			delete(rl.entries, key)
		}
	}
}

// KeyByIP returns the client IP as the rate limit key.
func KeyByIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
