package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oggyb/moviematch/internal/auth"
)

func TestRateLimiter_PerKeyBuckets(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewRateLimiter(1, 2)
	l.now = func() time.Time { return clock }

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))

	// other callers have their own bucket
	assert.True(t, l.Allow("b"))

	clock = clock.Add(time.Second)
	assert.True(t, l.Allow("a"))
}

func TestRateLimiter_SweepsIdleClients(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewRateLimiter(1, 1)
	l.now = func() time.Time { return clock }

	l.Allow("a")
	clock = clock.Add(idleAfter + time.Second)
	l.Allow("b")

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.clients, "a")
	assert.Contains(t, l.clients, "b")
}

func TestCallerKey(t *testing.T) {
	assert.Equal(t, "user:u1", callerKey(auth.WithUser(context.Background(), "u1", "t")))
	assert.Equal(t, "anonymous", callerKey(context.Background()))
}

func TestRecoveryInterceptor(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	intercept := recoveryInterceptor(log)
	info := &grpc.UnaryServerInfo{FullMethod: "/svc/Boom"}

	_, err := intercept(context.Background(), nil, info, func(context.Context, any) (any, error) {
		panic("boom")
	})
	require.Error(t, err)
	assert.Equal(t, codes.Internal, status.Code(err))

	want := errors.New("plain")
	_, err = intercept(context.Background(), nil, info, func(context.Context, any) (any, error) {
		return nil, want
	})
	assert.Equal(t, want, err)
}
