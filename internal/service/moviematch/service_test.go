package moviematch_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oggyb/moviematch/internal/app"
	"github.com/oggyb/moviematch/internal/auth"
	"github.com/oggyb/moviematch/internal/cache"
	"github.com/oggyb/moviematch/internal/config"
	"github.com/oggyb/moviematch/internal/db"
	"github.com/oggyb/moviematch/internal/invite"
	"github.com/oggyb/moviematch/internal/logger"
	pb "github.com/oggyb/moviematch/internal/proto/moviematch"
	"github.com/oggyb/moviematch/internal/service/moviematch"
)

//
// Test helpers
//

// seedMinimalTestData inserts a deterministic dataset:
//   - Users: alice, bob, carol (no couples yet)
//   - Movies: ids 1..n, rating descending with id
func seedMinimalTestData(t *testing.T, gdb *gorm.DB, movies int) {
	t.Helper()

	users := []db.User{
		{ID: "alice", Email: "alice@test.com", PasswordHash: "x", DisplayName: "Alice"},
		{ID: "bob", Email: "bob@test.com", PasswordHash: "x", DisplayName: "Bob"},
		{ID: "carol", Email: "carol@test.com", PasswordHash: "x", DisplayName: "Carol"},
	}
	require.NoError(t, gdb.Create(&users).Error)

	for i := 1; i <= movies; i++ {
		m := db.Movie{
			ID:     int64(i),
			Title:  fmt.Sprintf("Movie %d", i),
			Year:   1990 + i,
			Rating: 9.9 - float64(i)/100,
		}
		require.NoError(t, gdb.Create(&m).Error)
	}
}

type fixture struct {
	svc    *moviematch.Service
	appCtx *app.AppContext
	mr     *miniredis.Miniredis
}

// setupService spins up an in-memory SQLite DB, applies migrations,
// seeds test data, starts a miniredis, and wires everything into a
// Service instance.
//
// Each test gets its own isolated DB + Redis.
func setupService(t *testing.T, movies int) *fixture {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbase, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := dbase.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(dbase))
	seedMinimalTestData(t, dbase, movies)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	appCtx := app.New(dbase, cache.NewRedisCache(cfg), logger.Discard(), cfg)
	return &fixture{svc: moviematch.NewMovieMatchService(appCtx), appCtx: appCtx, mr: mr}
}

// as returns a context authenticated as userID.
func as(userID string) context.Context {
	return auth.WithUser(context.Background(), userID, "token-"+userID)
}

// pairUp makes alice and bob a complete couple and returns it.
func (f *fixture) pairUp(t *testing.T) *pb.Couple {
	t.Helper()
	created, err := f.svc.CreateCouple(as("alice"), &pb.CreateCoupleRequest{UserId: "alice"})
	require.NoError(t, err)
	joined, err := f.svc.JoinCouple(as("bob"), &pb.JoinCoupleRequest{UserId: "bob", InviteCode: created.Couple.InviteCode})
	require.NoError(t, err)
	return joined.Couple
}

func (f *fixture) swipe(t *testing.T, userID string, movieID int64, kind string) {
	t.Helper()
	_, err := f.svc.UpsertSwipe(as(userID), &pb.UpsertSwipeRequest{UserId: userID, MovieId: movieID, Kind: kind})
	require.NoError(t, err)
}

//
// Tests
//

// TestUpsertSwipe_MutualYesCreatesMatch checks the match shows up for both
// partners and that the cached count is invalidated by the new match.
func TestUpsertSwipe_MutualYesCreatesMatch(t *testing.T) {
	f := setupService(t, 3)
	couple := f.pairUp(t)

	count, err := f.svc.CountMatches(as("alice"), &pb.Empty{})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count.Count)
	assert.True(t, f.mr.Exists("matches:unwatched:"+couple.Id))

	f.swipe(t, "alice", 1, "yes")

	resp, err := f.svc.FindLatestMatch(as("alice"), &pb.FindLatestMatchRequest{MovieId: 1})
	require.NoError(t, err)
	assert.Nil(t, resp.Match)

	f.swipe(t, "bob", 1, "seen_yes")

	for _, u := range []string{"alice", "bob"} {
		resp, err = f.svc.FindLatestMatch(as(u), &pb.FindLatestMatchRequest{MovieId: 1})
		require.NoError(t, err)
		require.NotNil(t, resp.Match, u)
		assert.Equal(t, couple.Id, resp.Match.CoupleId)
		require.NotNil(t, resp.Match.Movie)
		assert.Equal(t, "Movie 1", resp.Match.Movie.Title)
	}

	assert.False(t, f.mr.Exists("matches:unwatched:"+couple.Id))
	count, err = f.svc.CountMatches(as("bob"), &pb.Empty{})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count.Count)
}

// TestUpsertSwipe_NegativeNeverMatches covers yes vs no and seen_no.
func TestUpsertSwipe_NegativeNeverMatches(t *testing.T) {
	f := setupService(t, 3)
	f.pairUp(t)

	f.swipe(t, "alice", 1, "yes")
	f.swipe(t, "bob", 1, "no")
	f.swipe(t, "alice", 2, "seen_no")
	f.swipe(t, "bob", 2, "yes")

	for _, id := range []int64{1, 2} {
		resp, err := f.svc.FindLatestMatch(as("alice"), &pb.FindLatestMatchRequest{MovieId: id})
		require.NoError(t, err)
		assert.Nil(t, resp.Match)
	}
}

func TestUpsertSwipe_Validation(t *testing.T) {
	f := setupService(t, 1)

	cases := []struct {
		name string
		ctx  context.Context
		req  *pb.UpsertSwipeRequest
		want codes.Code
	}{
		{"anonymous", context.Background(), &pb.UpsertSwipeRequest{MovieId: 1, Kind: "yes"}, codes.Unauthenticated},
		{"someone else", as("alice"), &pb.UpsertSwipeRequest{UserId: "bob", MovieId: 1, Kind: "yes"}, codes.PermissionDenied},
		{"bad kind", as("alice"), &pb.UpsertSwipeRequest{UserId: "alice", MovieId: 1, Kind: "maybe"}, codes.InvalidArgument},
		{"bad movie id", as("alice"), &pb.UpsertSwipeRequest{UserId: "alice", MovieId: 0, Kind: "yes"}, codes.InvalidArgument},
		{"unknown movie", as("alice"), &pb.UpsertSwipeRequest{UserId: "alice", MovieId: 999, Kind: "yes"}, codes.NotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.UpsertSwipe(tc.ctx, tc.req)
			assert.Equal(t, tc.want, status.Code(err))
		})
	}
}

// TestSwipeOverwriteAndDelete checks that a repeat swipe overwrites the kind
// and that delete removes the row.
func TestSwipeOverwriteAndDelete(t *testing.T) {
	f := setupService(t, 2)

	f.swipe(t, "alice", 1, "no")
	f.swipe(t, "alice", 1, "seen_yes")
	f.swipe(t, "alice", 2, "yes")

	list, err := f.svc.ListSwipes(as("alice"), &pb.ListSwipesRequest{UserId: "alice"})
	require.NoError(t, err)
	require.Len(t, list.Swipes, 2)
	assert.Equal(t, "seen_yes", list.Swipes[0].Kind)

	_, err = f.svc.DeleteSwipe(as("alice"), &pb.DeleteSwipeRequest{UserId: "alice", MovieId: 1})
	require.NoError(t, err)

	list, err = f.svc.ListSwipes(as("alice"), &pb.ListSwipesRequest{})
	require.NoError(t, err)
	require.Len(t, list.Swipes, 1)
	assert.Equal(t, int64(2), list.Swipes[0].MovieId)
}

func TestListMovies_LimitAndExclusion(t *testing.T) {
	f := setupService(t, 60)

	resp, err := f.svc.ListMovies(as("alice"), &pb.ListMoviesRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Movies, moviematch.DefaultMovieLimit)
	assert.Equal(t, int64(1), resp.Movies[0].Id)

	resp, err = f.svc.ListMovies(as("alice"), &pb.ListMoviesRequest{ExcludeIds: []int64{1, 2}, Limit: 5})
	require.NoError(t, err)
	require.Len(t, resp.Movies, 5)
	assert.Equal(t, int64(3), resp.Movies[0].Id)
	for i := 1; i < len(resp.Movies); i++ {
		assert.GreaterOrEqual(t, resp.Movies[i-1].Rating, resp.Movies[i].Rating)
	}
}

func TestCreateCouple(t *testing.T) {
	f := setupService(t, 1)

	resp, err := f.svc.CreateCouple(as("alice"), &pb.CreateCoupleRequest{UserId: "alice"})
	require.NoError(t, err)
	assert.True(t, invite.Valid(resp.Couple.InviteCode))
	assert.Equal(t, "alice", resp.Couple.User1Id)
	assert.Nil(t, resp.Couple.User2Id)

	_, err = f.svc.CreateCouple(as("alice"), &pb.CreateCoupleRequest{UserId: "alice"})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	// taken code
	_, err = f.svc.CreateCouple(as("bob"), &pb.CreateCoupleRequest{UserId: "bob", InviteCode: resp.Couple.InviteCode})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	_, err = f.svc.CreateCouple(as("bob"), &pb.CreateCoupleRequest{UserId: "bob", InviteCode: "SHORT"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	resp, err = f.svc.CreateCouple(as("bob"), &pb.CreateCoupleRequest{UserId: "bob", InviteCode: " abcdefgh "})
	require.NoError(t, err)
	assert.Equal(t, "ABCDEFGH", resp.Couple.InviteCode)

	got, err := f.svc.GetCouple(as("bob"), &pb.GetCoupleRequest{UserId: "bob"})
	require.NoError(t, err)
	require.NotNil(t, got.Couple)
	assert.Equal(t, resp.Couple.Id, got.Couple.Id)

	none, err := f.svc.GetCouple(as("carol"), &pb.GetCoupleRequest{})
	require.NoError(t, err)
	assert.Nil(t, none.Couple)
}

func TestJoinCouple_Rules(t *testing.T) {
	f := setupService(t, 1)

	created, err := f.svc.CreateCouple(as("alice"), &pb.CreateCoupleRequest{InviteCode: "ABCDEFGH"})
	require.NoError(t, err)

	cases := []struct {
		name string
		user string
		code string
	}{
		{"unknown code", "bob", "ZZZZZZZZ"},
		{"malformed code", "bob", "abc"},
		{"own code", "alice", "ABCDEFGH"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.JoinCouple(as(tc.user), &pb.JoinCoupleRequest{InviteCode: tc.code})
			assert.Equal(t, codes.FailedPrecondition, status.Code(err))
		})
	}

	joined, err := f.svc.JoinCouple(as("bob"), &pb.JoinCoupleRequest{InviteCode: "abcdefgh"})
	require.NoError(t, err)
	require.NotNil(t, joined.Couple.User2Id)
	assert.Equal(t, "bob", *joined.Couple.User2Id)
	assert.Equal(t, created.Couple.Id, joined.Couple.Id)

	_, err = f.svc.JoinCouple(as("carol"), &pb.JoinCoupleRequest{InviteCode: "ABCDEFGH"})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

// TestJoinCouple_BackfillsSoloLikes: likes made before the couple was complete
// become matches when the partner joins.
func TestJoinCouple_BackfillsSoloLikes(t *testing.T) {
	f := setupService(t, 3)

	created, err := f.svc.CreateCouple(as("alice"), &pb.CreateCoupleRequest{})
	require.NoError(t, err)

	f.swipe(t, "alice", 2, "yes")
	f.swipe(t, "bob", 2, "yes")
	f.swipe(t, "bob", 3, "yes")

	_, err = f.svc.JoinCouple(as("bob"), &pb.JoinCoupleRequest{InviteCode: created.Couple.InviteCode})
	require.NoError(t, err)

	resp, err := f.svc.FindLatestMatch(as("alice"), &pb.FindLatestMatchRequest{MovieId: 2})
	require.NoError(t, err)
	assert.NotNil(t, resp.Match)

	resp, err = f.svc.FindLatestMatch(as("alice"), &pb.FindLatestMatchRequest{MovieId: 3})
	require.NoError(t, err)
	assert.Nil(t, resp.Match)
}

func TestMarkWatchedAndLists(t *testing.T) {
	f := setupService(t, 3)
	f.pairUp(t)

	for _, id := range []int64{1, 2} {
		f.swipe(t, "alice", id, "yes")
		f.swipe(t, "bob", id, "yes")
	}

	unwatched, err := f.svc.ListMatches(as("alice"), &pb.ListMatchesRequest{Watched: false})
	require.NoError(t, err)
	require.Len(t, unwatched.Matches, 2)
	for _, m := range unwatched.Matches {
		assert.NotNil(t, m.Movie)
		assert.False(t, m.Watched)
	}

	target := unwatched.Matches[0].Id
	marked, err := f.svc.MarkWatched(as("bob"), &pb.MarkWatchedRequest{MatchId: target})
	require.NoError(t, err)
	assert.True(t, marked.Match.Watched)
	require.NotNil(t, marked.Match.WatchedAt)

	watched, err := f.svc.ListMatches(as("alice"), &pb.ListMatchesRequest{Watched: true})
	require.NoError(t, err)
	require.Len(t, watched.Matches, 1)
	assert.Equal(t, target, watched.Matches[0].Id)

	count, err := f.svc.CountMatches(as("alice"), &pb.Empty{})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count.Count)

	// carol is not in the couple
	_, err = f.svc.MarkWatched(as("carol"), &pb.MarkWatchedRequest{MatchId: target})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = f.svc.MarkWatched(as("alice"), &pb.MarkWatchedRequest{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestListMatches_Pagination(t *testing.T) {
	f := setupService(t, 5)
	f.pairUp(t)

	for id := int64(1); id <= 5; id++ {
		f.swipe(t, "alice", id, "yes")
		f.swipe(t, "bob", id, "yes")
	}

	seen := map[string]bool{}
	req := &pb.ListMatchesRequest{Limit: 2}
	for page := 0; page < 5; page++ {
		resp, err := f.svc.ListMatches(as("bob"), req)
		require.NoError(t, err)
		for _, m := range resp.Matches {
			assert.False(t, seen[m.Id], "duplicate %s", m.Id)
			seen[m.Id] = true
		}
		if resp.NextPaginationToken == nil {
			break
		}
		req.PaginationToken = resp.NextPaginationToken
	}
	assert.Len(t, seen, 5)
}

// TestListMatches_BackfillPagesCompletely: a join backfills many matches in one
// transaction, so their created_at values are microseconds apart. Paging the
// watch list must still return each of them exactly once.
func TestListMatches_BackfillPagesCompletely(t *testing.T) {
	f := setupService(t, 12)

	created, err := f.svc.CreateCouple(as("alice"), &pb.CreateCoupleRequest{})
	require.NoError(t, err)
	for id := int64(1); id <= 12; id++ {
		f.swipe(t, "alice", id, "yes")
		f.swipe(t, "bob", id, "seen_yes")
	}
	_, err = f.svc.JoinCouple(as("bob"), &pb.JoinCoupleRequest{InviteCode: created.Couple.InviteCode})
	require.NoError(t, err)

	seen := map[int64]bool{}
	req := &pb.ListMatchesRequest{Limit: 5}
	for page := 0; page < 10; page++ {
		resp, err := f.svc.ListMatches(as("alice"), req)
		require.NoError(t, err)
		for _, m := range resp.Matches {
			assert.False(t, seen[m.MovieId], "duplicate movie %d", m.MovieId)
			seen[m.MovieId] = true
		}
		if resp.NextPaginationToken == nil {
			break
		}
		req.PaginationToken = resp.NextPaginationToken
	}
	assert.Len(t, seen, 12)
}

func TestAuthRPCs(t *testing.T) {
	f := setupService(t, 1)
	ctx := context.Background()

	up, err := f.svc.SignUp(ctx, &pb.SignUpRequest{Email: "dave@test.com", Password: "long enough", DisplayName: "Dave"})
	require.NoError(t, err)
	require.NotEmpty(t, up.Token)
	assert.Equal(t, "dave@test.com", up.User.Email)

	_, err = f.svc.SignUp(ctx, &pb.SignUpRequest{Email: "dave@test.com", Password: "long enough"})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	_, err = f.svc.SignIn(ctx, &pb.SignInRequest{Email: "dave@test.com", Password: "nope nope"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	in, err := f.svc.SignIn(ctx, &pb.SignInRequest{Email: "dave@test.com", Password: "long enough"})
	require.NoError(t, err)

	authed := auth.WithUser(ctx, in.User.Id, in.Token)
	me, err := f.svc.Me(authed, &pb.Empty{})
	require.NoError(t, err)
	assert.Equal(t, "Dave", me.User.DisplayName)

	_, err = f.svc.SignOut(authed, &pb.Empty{})
	require.NoError(t, err)
	_, err = f.appCtx.Sessions.Resolve(ctx, in.Token)
	assert.Error(t, err)

	_, err = f.svc.SignOut(ctx, &pb.Empty{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}
