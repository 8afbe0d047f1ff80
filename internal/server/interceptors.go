package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"path"
	"runtime/debug"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/oggyb/moviematch/internal/auth"
	"github.com/oggyb/moviematch/internal/metrics"
)

// recoveryInterceptor turns a handler panic into codes.Internal.
func recoveryInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic in handler", "method", info.FullMethod, "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
				err = status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}

// observeInterceptor logs every call and records its outcome.
func observeInterceptor(log *slog.Logger, m *metrics.Metrics) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		took := time.Since(start)

		method := path.Base(info.FullMethod)
		code := status.Code(err)
		m.ObserveRPC(method, code.String(), took)

		switch code {
		case codes.OK:
			log.Debug("rpc", "method", method, "took", took)
		case codes.Internal, codes.Unknown, codes.Unavailable:
			log.Error("rpc failed", "method", method, "code", code.String(), "took", took, "err", err)
		default:
			log.Info("rpc rejected", "method", method, "code", code.String(), "took", took)
		}
		return resp, err
	}
}

// RateLimiter hands out one token bucket per caller. Callers are keyed by
// user id when authenticated, by peer address otherwise.
type RateLimiter struct {
	rps   rate.Limit
	burst int

	mu      sync.Mutex
	clients map[string]*client
	now     func() time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// idleAfter is how long an unused bucket is kept.
const idleAfter = 3 * time.Minute

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		clients: make(map[string]*client),
		now:     time.Now,
	}
}

// Allow reports whether key may make another call now.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	c, found := l.clients[key]
	if !found {
		l.sweep(now)
		c = &client{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// sweep drops idle buckets. Called with mu held, only when a new key
// arrives, so the map cannot grow without bound.
func (l *RateLimiter) sweep(now time.Time) {
	for key, c := range l.clients {
		if now.Sub(c.lastSeen) > idleAfter {
			delete(l.clients, key)
		}
	}
}

// Unary rejects calls over the limit with codes.ResourceExhausted.
func (l *RateLimiter) Unary(m *metrics.Metrics) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if !l.Allow(callerKey(ctx)) {
			m.Limited(path.Base(info.FullMethod))
			return nil, status.Error(codes.ResourceExhausted, "rate limit exceeded")
		}
		return handler(ctx, req)
	}
}

func callerKey(ctx context.Context) string {
	if id, ok := auth.UserID(ctx); ok {
		return "user:" + id
	}
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		host, _, err := net.SplitHostPort(p.Addr.String())
		if err != nil {
			host = p.Addr.String()
		}
		return "peer:" + host
	}
	return "anonymous"
}
