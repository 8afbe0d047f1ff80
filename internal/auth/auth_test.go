package auth_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oggyb/moviematch/internal/auth"
	"github.com/oggyb/moviematch/internal/cache"
	"github.com/oggyb/moviematch/internal/config"
	"github.com/oggyb/moviematch/internal/db"
	svcErr "github.com/oggyb/moviematch/internal/errors"
	"github.com/oggyb/moviematch/internal/repository"
)

func setupSessions(t *testing.T) (*auth.Sessions, *miniredis.Miniredis) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.Migrate(gdb))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := &config.Config{}
	cfg.Redis.Addr = mr.Addr()

	return auth.NewSessions(repository.NewUserRepository(gdb), cache.NewRedisCache(cfg), time.Hour), mr
}

func TestSignUpSignInSignOut(t *testing.T) {
	ctx := context.Background()
	s, _ := setupSessions(t)

	token, u, err := s.SignUp(ctx, "alice@example.com", "correct horse", "Alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	uid, err := s.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, uid)

	_, _, err = s.SignIn(ctx, "alice@example.com", "wrong password")
	assert.ErrorIs(t, err, auth.ErrBadCredentials)
	assert.ErrorIs(t, err, svcErr.ErrAuthRequired)

	_, _, err = s.SignIn(ctx, "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, auth.ErrBadCredentials)

	token2, u2, err := s.SignIn(ctx, "ALICE@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID, u2.ID)
	assert.NotEqual(t, token, token2)

	require.NoError(t, s.SignOut(ctx, token))
	_, err = s.Resolve(ctx, token)
	assert.ErrorIs(t, err, svcErr.ErrAuthRequired)

	// the other session is untouched
	_, err = s.Resolve(ctx, token2)
	assert.NoError(t, err)
}

func TestSignUpValidation(t *testing.T) {
	ctx := context.Background()
	s, _ := setupSessions(t)

	_, _, err := s.SignUp(ctx, "not-an-email", "long enough", "")
	assert.ErrorIs(t, err, svcErr.ErrInvalidArgument)

	_, _, err = s.SignUp(ctx, "bob@example.com", "short", "")
	assert.ErrorIs(t, err, svcErr.ErrInvalidArgument)

	_, _, err = s.SignUp(ctx, "bob@example.com", "long enough", "")
	require.NoError(t, err)
	_, _, err = s.SignUp(ctx, "bob@example.com", "long enough", "")
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestSessionExpires(t *testing.T) {
	ctx := context.Background()
	s, mr := setupSessions(t)

	token, _, err := s.SignUp(ctx, "carol@example.com", "long enough", "")
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)
	_, err = s.Resolve(ctx, token)
	assert.ErrorIs(t, err, svcErr.ErrAuthRequired)
}

type fakeResolver struct {
	calls int
	users map[string]string
	err   error
}

func (f *fakeResolver) Resolve(_ context.Context, token string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if uid, ok := f.users[token]; ok {
		return uid, nil
	}
	return "", svcErr.ErrAuthRequired
}

func callGuard(g *auth.Guard, method, token string) (string, error) {
	ctx := context.Background()
	if token != "" {
		ctx = metadata.NewIncomingContext(ctx, metadata.Pairs(auth.MetadataKey, "Bearer "+token))
	}
	var seen string
	_, err := g.Unary()(ctx, nil, &grpc.UnaryServerInfo{FullMethod: method}, func(ctx context.Context, req any) (any, error) {
		seen, _ = auth.UserID(ctx)
		return nil, nil
	})
	return seen, err
}

func TestGuard(t *testing.T) {
	r := &fakeResolver{users: map[string]string{"good": "user-1"}}
	g := auth.NewGuard(r, time.Minute, "/svc/SignIn")

	uid, err := callGuard(g, "/svc/UpsertSwipe", "good")
	require.NoError(t, err)
	assert.Equal(t, "user-1", uid)

	// memoized
	_, err = callGuard(g, "/svc/UpsertSwipe", "good")
	require.NoError(t, err)
	assert.Equal(t, 1, r.calls)

	g.Forget("good")
	_, err = callGuard(g, "/svc/UpsertSwipe", "good")
	require.NoError(t, err)
	assert.Equal(t, 2, r.calls)

	_, err = callGuard(g, "/svc/UpsertSwipe", "")
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = callGuard(g, "/svc/UpsertSwipe", "bad")
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	uid, err = callGuard(g, "/svc/SignIn", "")
	require.NoError(t, err)
	assert.Empty(t, uid)

	r.err = errors.New("redis down")
	_, err = callGuard(g, "/svc/ListMovies", "other")
	assert.Equal(t, codes.Unavailable, status.Code(err))
}

func TestRequireUser(t *testing.T) {
	_, err := auth.RequireUser(context.Background())
	assert.ErrorIs(t, err, svcErr.ErrAuthRequired)

	uid, err := auth.RequireUser(auth.WithUser(context.Background(), "u", "t"))
	require.NoError(t, err)
	assert.Equal(t, "u", uid)
}
