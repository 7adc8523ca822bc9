package travel

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Cache defaults
const (
	DefaultCacheTTL    = 15 * time.Minute
	DefaultCacheBucket = 15 * time.Minute
	KeyTravelTime      = "autoschedule:travel:"
)

// CacheConfig configures the shared travel-time cache
type CacheConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	TTL    time.Duration
	Bucket time.Duration // anchor times are truncated to this before keying
}

// OpenRedis connects and pings; the caller owns the returned client
func OpenRedis(ctx context.Context, cfg CacheConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// RedisCache shares successful answers across requests. Any Redis error trips
// it into pass-through mode for the rest of the process lifetime.
type RedisCache struct {
	next   Oracle
	client *redis.Client
	ttl    time.Duration
	bucket time.Duration
	logger zerolog.Logger

	mu       sync.RWMutex
	disabled bool
}

// NewRedisCache wraps next. A nil client yields a pass-through cache.
func NewRedisCache(next Oracle, client *redis.Client, cfg CacheConfig, logger zerolog.Logger) *RedisCache {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultCacheTTL
	}
	if cfg.Bucket <= 0 {
		cfg.Bucket = DefaultCacheBucket
	}
	return &RedisCache{
		next:     next,
		client:   client,
		ttl:      cfg.TTL,
		bucket:   cfg.Bucket,
		logger:   logger.With().Str("component", "travel_cache").Logger(),
		disabled: client == nil,
	}
}

// IsAvailable returns true while Redis is in use
func (c *RedisCache) IsAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.disabled
}

func (c *RedisCache) handleError(err error, operation string) {
	if err == nil || errors.Is(err, redis.Nil) {
		return
	}
	// the caller gave up; Redis itself may be fine
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return
	}
	c.logger.Warn().Err(err).Str("operation", operation).Msg("disabling travel cache due to Redis error")
	c.mu.Lock()
	c.disabled = true
	c.mu.Unlock()
}

// TravelTime serves from Redis when possible and stores fresh answers
func (c *RedisCache) TravelTime(ctx context.Context, q Query) (int, error) {
	if err := q.Validate(); err != nil {
		return 0, err
	}
	if !c.IsAvailable() {
		return c.next.TravelTime(ctx, q)
	}

	key := KeyTravelTime + q.Key(c.bucket)
	val, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		if minutes, convErr := strconv.Atoi(val); convErr == nil {
			c.logger.Debug().Str("key", key).Msg("travel time cache hit")
			return minutes, nil
		}
	case errors.Is(err, redis.Nil):
	default:
		c.handleError(err, "get")
	}

	minutes, err := c.next.TravelTime(ctx, q)
	if err != nil {
		return 0, err
	}
	if c.IsAvailable() {
		if err := c.client.Set(ctx, key, strconv.Itoa(minutes), c.ttl).Err(); err != nil {
			c.handleError(err, "set")
		}
	}
	return minutes, nil
}

// Close releases the Redis client
func (c *RedisCache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
