package safety

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *memoryCache) GetJSON(ctx context.Context, key string, dest any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (c *memoryCache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	c.ttls[key] = ttl
	return nil
}

type countingMetrics struct {
	hits, misses int
}

func (m *countingMetrics) CacheHit()  { m.hits++ }
func (m *countingMetrics) CacheMiss() { m.misses++ }

type countingChecker struct {
	calls int
	err   error
}

func (c *countingChecker) Source() string { return "counting" }

func (c *countingChecker) Check(ctx context.Context, videoID string) (*Result, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &Result{IsSafe: true, VideoID: videoID, Transcript: "ok", Categories: NewCategories()}, nil
}

func TestCachedChecker_CallsInnerOnce(t *testing.T) {
	inner := &countingChecker{}
	store := newMemoryCache()
	m := &countingMetrics{}
	c := NewCachedChecker(inner, store, m, 10*time.Minute)

	for i := 0; i < 3; i++ {
		result, err := c.Check(context.Background(), "vid")
		require.NoError(t, err)
		assert.Equal(t, "vid", result.VideoID)
		assert.True(t, result.IsSafe)
	}

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 2, m.hits)
	assert.Equal(t, 1, m.misses)
	assert.Equal(t, 10*time.Minute, store.ttls["safety:result:counting:vid"])
	assert.Equal(t, "counting", c.Source())
}

func TestCachedChecker_DoesNotCacheFailures(t *testing.T) {
	inner := &countingChecker{err: errors.New("down")}
	store := newMemoryCache()
	c := NewCachedChecker(inner, store, nil, 0)

	for i := 0; i < 2; i++ {
		_, err := c.Check(context.Background(), "vid")
		assert.Error(t, err)
	}
	assert.Equal(t, 2, inner.calls)
	assert.Empty(t, store.data)
}

func TestCachedChecker_KeysPerVideo(t *testing.T) {
	inner := &countingChecker{}
	c := NewCachedChecker(inner, newMemoryCache(), nil, time.Minute)

	_, err := c.Check(context.Background(), "a")
	require.NoError(t, err)
	_, err = c.Check(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}
