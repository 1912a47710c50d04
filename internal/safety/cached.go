package safety

import (
	"context"
	"time"

	"github.com/ytsafecheck/backend/internal/logger"
)

// DefaultCacheTTL is how long a verdict is reused.
const DefaultCacheTTL = time.Hour

// ResultCache stores JSON values with a TTL. *cache.Cache implements it.
type ResultCache interface {
	GetJSON(ctx context.Context, key string, dest any) bool
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
}

// CacheMetrics records cache lookups.
type CacheMetrics interface {
	CacheHit()
	CacheMiss()
}

// CachedChecker serves repeated checks of a video from the cache.
// Only successful verdicts are cached.
type CachedChecker struct {
	inner   Checker
	cache   ResultCache
	metrics CacheMetrics
	ttl     time.Duration
	log     *logger.Logger
}

// NewCachedChecker wraps inner with cache-aside lookups. metrics may be nil.
func NewCachedChecker(inner Checker, cache ResultCache, metrics CacheMetrics, ttl time.Duration) *CachedChecker {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedChecker{
		inner:   inner,
		cache:   cache,
		metrics: metrics,
		ttl:     ttl,
		log:     logger.Default().WithComponent("safety.cache"),
	}
}

// Source implements Named.
func (c *CachedChecker) Source() string { return SourceOf(c.inner) }

func (c *CachedChecker) key(videoID string) string {
	return "safety:result:" + c.Source() + ":" + videoID
}

func (c *CachedChecker) Check(ctx context.Context, videoID string) (*Result, error) {
	key := c.key(videoID)

	var cached Result
	if c.cache.GetJSON(ctx, key, &cached) {
		if c.metrics != nil {
			c.metrics.CacheHit()
		}
		return &cached, nil
	}
	if c.metrics != nil {
		c.metrics.CacheMiss()
	}

	result, err := c.inner.Check(ctx, videoID)
	if err != nil {
		return nil, err
	}

	if err := c.cache.SetJSON(ctx, key, result, c.ttl); err != nil {
		c.log.Warn(ctx, "failed to cache check result", map[string]any{
			"video_id": videoID,
			"error":    err.Error(),
		})
	}
	return result, nil
}
