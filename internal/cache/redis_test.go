package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/moviematch/internal/cache"
	"github.com/oggyb/moviematch/internal/config"
)

func setupCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := &config.Config{}
	cfg.Redis.Addr = mr.Addr()
	c := cache.NewRedisCache(cfg)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)

	require.NoError(t, c.PutSession(ctx, "tok", "user-1", time.Minute))

	uid, err := c.SessionUser(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "user-1", uid)

	mr.FastForward(2 * time.Minute)
	_, err = c.SessionUser(ctx, "tok")
	assert.ErrorIs(t, err, cache.ErrMiss)

	require.NoError(t, c.PutSession(ctx, "tok2", "user-1", time.Minute))
	require.NoError(t, c.DeleteSession(ctx, "tok2"))
	_, err = c.SessionUser(ctx, "tok2")
	assert.ErrorIs(t, err, cache.ErrMiss)
}

func TestMatchCount(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)

	_, err := c.GetMatchCount(ctx, "couple-1")
	assert.ErrorIs(t, err, cache.ErrMiss)

	require.NoError(t, c.SetMatchCount(ctx, "couple-1", 3))
	n, err := c.GetMatchCount(ctx, "couple-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, cache.MatchCountTTL, mr.TTL(c.KeyForMatchCount("couple-1")))

	require.NoError(t, c.InvalidateMatchCount(ctx, "couple-1"))
	_, err = c.GetMatchCount(ctx, "couple-1")
	assert.ErrorIs(t, err, cache.ErrMiss)
}
