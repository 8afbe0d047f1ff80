package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	svcErr "github.com/oggyb/moviematch/internal/errors"
)

// MetadataKey carries "Bearer <token>".
const MetadataKey = "authorization"

type ctxKey int

const (
	userKey ctxKey = iota
	tokenKey
)

// WithUser returns ctx carrying the authenticated user and token.
func WithUser(ctx context.Context, userID, token string) context.Context {
	ctx = context.WithValue(ctx, userKey, userID)
	return context.WithValue(ctx, tokenKey, token)
}

// UserID returns the authenticated user of the call.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userKey).(string)
	return id, ok && id != ""
}

// Token returns the bearer token the call was authenticated with.
func Token(ctx context.Context) string {
	t, _ := ctx.Value(tokenKey).(string)
	return t
}

// RequireUser fails fast with ErrAuthRequired when the call is anonymous.
func RequireUser(ctx context.Context) (string, error) {
	id, ok := UserID(ctx)
	if !ok {
		return "", svcErr.ErrAuthRequired
	}
	return id, nil
}

// Resolver maps a bearer token to a user id.
type Resolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// Guard authenticates unary calls. Resolved tokens are memoized in process
// for a short TTL so a swipe burst does not hit Redis for every call.
type Guard struct {
	resolver Resolver
	tokens   *gocache.Cache
	public   map[string]bool
}

// NewGuard builds a Guard. publicMethods are full method names that skip auth.
func NewGuard(r Resolver, cacheTTL time.Duration, publicMethods ...string) *Guard {
	public := make(map[string]bool, len(publicMethods))
	for _, m := range publicMethods {
		public[m] = true
	}
	return &Guard{
		resolver: r,
		tokens:   gocache.New(cacheTTL, 2*cacheTTL),
		public:   public,
	}
}

// Forget drops a memoized token, used on sign-out.
func (g *Guard) Forget(token string) {
	g.tokens.Delete(token)
}

// Unary is the grpc.UnaryServerInterceptor.
func (g *Guard) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		token := bearer(ctx)

		if token == "" {
			if g.public[info.FullMethod] {
				return handler(ctx, req)
			}
			return nil, status.Error(codes.Unauthenticated, "missing bearer token")
		}

		userID, err := g.resolve(ctx, token)
		if err != nil {
			if g.public[info.FullMethod] {
				return handler(ctx, req)
			}
			if errors.Is(err, svcErr.ErrAuthRequired) {
				return nil, status.Error(codes.Unauthenticated, "session expired or unknown")
			}
			return nil, status.Error(codes.Unavailable, "session store unavailable")
		}
		return handler(WithUser(ctx, userID, token), req)
	}
}

func (g *Guard) resolve(ctx context.Context, token string) (string, error) {
	if v, ok := g.tokens.Get(token); ok {
		return v.(string), nil
	}
	userID, err := g.resolver.Resolve(ctx, token)
	if err != nil {
		return "", err
	}
	g.tokens.SetDefault(token, userID)
	return userID, nil
}

func bearer(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	for _, v := range md.Get(MetadataKey) {
		if after, found := strings.CutPrefix(v, "Bearer "); found {
			return strings.TrimSpace(after)
		}
	}
	return ""
}

// Credentials attaches a bearer token to every outgoing call. Used by clients.
type Credentials struct {
	Token    func() string
	Insecure bool
}

func (c Credentials) GetRequestMetadata(ctx context.Context, uri ...string) (map[string]string, error) {
	t := c.Token()
	if t == "" {
		return nil, nil
	}
	return map[string]string{MetadataKey: "Bearer " + t}, nil
}

func (c Credentials) RequireTransportSecurity() bool { return !c.Insecure }
