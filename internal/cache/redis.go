package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oggyb/moviematch/internal/config"
)

// MatchCountTTL bounds how long a cached watch list count may live.
const MatchCountTTL = time.Hour

// ErrMiss is returned when a key is absent.
var ErrMiss = errors.New("cache miss")

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

// Get returns ErrMiss for absent keys.
func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	v, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return v, err
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

// --- sessions ---

// KeyForSession generates Redis key for a session token.
func (c *RedisCache) KeyForSession(token string) string {
	return fmt.Sprintf("session:%s", token)
}

// PutSession stores token → userID for ttl.
func (c *RedisCache) PutSession(ctx context.Context, token, userID string, ttl time.Duration) error {
	return c.Client.Set(ctx, c.KeyForSession(token), userID, ttl).Err()
}

// SessionUser resolves a token. Returns ErrMiss for unknown or expired tokens.
func (c *RedisCache) SessionUser(ctx context.Context, token string) (string, error) {
	return c.Get(ctx, c.KeyForSession(token))
}

func (c *RedisCache) DeleteSession(ctx context.Context, token string) error {
	return c.Del(ctx, c.KeyForSession(token))
}

// --- match counts ---

// KeyForMatchCount generates Redis key for a couple's unwatched match count.
func (c *RedisCache) KeyForMatchCount(coupleID string) string {
	return fmt.Sprintf("matches:unwatched:%s", coupleID)
}

// GetMatchCount returns the cached count and refreshes its TTL since the
// couple is active. Returns ErrMiss when not cached.
func (c *RedisCache) GetMatchCount(ctx context.Context, coupleID string) (int64, error) {
	key := c.KeyForMatchCount(coupleID)
	val, err := c.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, ErrMiss
	}
	_ = c.Client.Expire(ctx, key, MatchCountTTL).Err()
	return n, nil
}

func (c *RedisCache) SetMatchCount(ctx context.Context, coupleID string, count int64) error {
	return c.Client.Set(ctx, c.KeyForMatchCount(coupleID), strconv.FormatInt(count, 10), MatchCountTTL).Err()
}

// InvalidateMatchCount drops the cached count; the next read goes to the DB.
func (c *RedisCache) InvalidateMatchCount(ctx context.Context, coupleID string) error {
	return c.Del(ctx, c.KeyForMatchCount(coupleID))
}
