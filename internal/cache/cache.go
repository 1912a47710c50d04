package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ytsafecheck/backend/internal/logger"
)

// Cache is a redis cache-aside layer. A Cache with no client is disabled and
// every operation is a no-op miss.
type Cache struct {
	client *redis.Client
	log    *logger.Logger
}

// New connects to redisURL (redis://host:port/db). An empty URL returns a
// disabled cache.
func New(ctx context.Context, redisURL string) (*Cache, error) {
	log := logger.Default().WithComponent("cache")
	if redisURL == "" {
		log.Info(ctx, "redis not configured, caching disabled")
		return &Cache{log: log}, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	log.Info(ctx, "connected to redis", map[string]any{"addr": opts.Addr})
	return &Cache{client: client, log: log}, nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client) *Cache {
	return &Cache{client: client, log: logger.Default().WithComponent("cache")}
}

// Enabled reports whether the cache has a backing client.
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// Client returns the underlying redis client. May be nil.
func (c *Cache) Client() *redis.Client {
	if c == nil {
		return nil
	}
	return c.client
}

func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// Ping checks the redis connection.
func (c *Cache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	if !c.Enabled() {
		return "", false
	}
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		c.log.Debug(ctx, "cache miss", map[string]any{"key": key})
		return "", false
	}
	if err != nil {
		c.log.Warn(ctx, "cache get failed", map[string]any{"key": key, "error": err.Error()})
		return "", false
	}
	c.log.Debug(ctx, "cache hit", map[string]any{"key": key})
	return val, true
}

func (c *Cache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if !c.Enabled() {
		return nil
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.log.Warn(ctx, "cache set failed", map[string]any{"key": key, "error": err.Error()})
		return err
	}
	c.log.Debug(ctx, "cache set", map[string]any{"key": key, "ttl": ttl.String()})
	return nil
}

// GetJSON decodes the cached value for key into dest. It reports false on a
// miss, a disabled cache, or a value that no longer decodes.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) bool {
	val, ok := c.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		c.log.Warn(ctx, "cache value undecodable", map[string]any{"key": key, "error": err.Error()})
		return false
	}
	return true
}

// SetJSON stores v encoded as JSON.
func (c *Cache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if !c.Enabled() {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, string(data), ttl)
}

// Delete removes key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Del(ctx, key).Err()
}
