package watchlist_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	svcErr "github.com/oggyb/moviematch/internal/errors"
	"github.com/oggyb/moviematch/internal/gateway/gatewaytest"
	"github.com/oggyb/moviematch/internal/logger"
	"github.com/oggyb/moviematch/internal/model"
	"github.com/oggyb/moviematch/internal/watchlist"
)

func setup(t *testing.T) (*gatewaytest.Fake, *watchlist.Service, model.User, model.User) {
	t.Helper()
	fake := gatewaytest.New(gatewaytest.Movies(40, 5)...)
	clock := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	fake.Now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	alice := fake.AddUser("alice@test.com", "secret123", "")
	bob := fake.AddUser("bob@test.com", "secret123", "")
	fake.Pair(alice.ID, bob.ID)
	fake.ActAs(alice.ID)
	return fake, watchlist.New(fake, logger.Discard()), alice, bob
}

func TestWatchlist_MarkWatchedMovesMatch(t *testing.T) {
	fake, svc, alice, bob := setup(t)
	ctx := context.Background()
	fake.SeedSwipe(bob.ID, 42, model.KindSeenYes)
	fake.SeedSwipe(alice.ID, 42, model.KindYes)
	fake.SeedSwipe(bob.ID, 43, model.KindYes)
	fake.SeedSwipe(alice.ID, 43, model.KindYes)

	list, err := svc.Unwatched(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(43), list[0].MovieID, "newest first")
	require.NotNil(t, list[0].Movie)
	assert.Equal(t, "Movie 43", list[0].Movie.Title)

	var target model.Match
	for _, m := range list {
		if m.MovieID == 42 {
			target = m
		}
	}
	require.False(t, target.Watched)

	m, rest, err := svc.MarkWatched(ctx, target.ID)
	require.NoError(t, err)
	assert.True(t, m.Watched)
	require.NotNil(t, m.WatchedAt)
	require.Len(t, rest, 1)
	assert.Equal(t, int64(43), rest[0].MovieID)

	watched, err := svc.Watched(ctx)
	require.NoError(t, err)
	require.Len(t, watched, 1)
	assert.Equal(t, target.ID, watched[0].ID)

	// marking again keeps the first timestamp
	again, _, err := svc.MarkWatched(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, *m.WatchedAt, *again.WatchedAt)
}

func TestWatchlist_Errors(t *testing.T) {
	fake, svc, _, _ := setup(t)
	ctx := context.Background()

	_, _, err := svc.MarkWatched(ctx, "")
	assert.ErrorIs(t, err, svcErr.ErrInvalidArgument)

	_, _, err = svc.MarkWatched(ctx, "missing")
	assert.ErrorIs(t, err, svcErr.ErrNotFound)

	fake.Fail(gatewaytest.OpListMatches, svcErr.ErrRemoteUnavailable)
	_, err = svc.Unwatched(ctx)
	assert.ErrorIs(t, err, svcErr.ErrRemoteUnavailable)
}

func TestWatchlist_OtherCoupleIsHidden(t *testing.T) {
	fake, svc, alice, bob := setup(t)
	ctx := context.Background()
	fake.SeedSwipe(alice.ID, 40, model.KindYes)
	fake.SeedSwipe(bob.ID, 40, model.KindYes)
	matches := fake.Matches()
	require.Len(t, matches, 1)

	carol := fake.AddUser("carol@test.com", "secret123", "")
	fake.ActAs(carol.ID)

	list, err := svc.Unwatched(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, _, err = svc.MarkWatched(ctx, matches[0].ID)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
}
