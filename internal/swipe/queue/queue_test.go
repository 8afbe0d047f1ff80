package queue_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	svcErr "github.com/oggyb/moviematch/internal/errors"
	"github.com/oggyb/moviematch/internal/gateway/gatewaytest"
	"github.com/oggyb/moviematch/internal/model"
	"github.com/oggyb/moviematch/internal/swipe/queue"
)

func setup(t *testing.T, movies int) (*gatewaytest.Fake, string) {
	t.Helper()
	fake := gatewaytest.New(gatewaytest.Movies(1, movies)...)
	u := fake.AddUser("alice@test.com", "secret123", "")
	fake.ActAs(u.ID)
	return fake, u.ID
}

// decideAll records a decision on every card and advances, returning how many
// cards were seen.
func decideAll(t *testing.T, fake *gatewaytest.Fake, q *queue.Manager, userID string) int {
	t.Helper()
	ctx := context.Background()
	seen := 0
	for {
		m, ok := q.Current()
		if !ok {
			return seen
		}
		seen++
		fake.SeedSwipe(userID, m.ID, model.KindNo)
		require.NoError(t, q.Advance(ctx))
	}
}

func TestLoad_OrdersByRatingAndExcludesDecided(t *testing.T) {
	fake, user := setup(t, 10)
	fake.SeedSwipe(user, 1, model.KindYes)
	fake.SeedSwipe(user, 4, model.KindSeenNo)

	q := queue.New(fake)
	require.NoError(t, q.Load(context.Background(), user))

	assert.Equal(t, 8, q.Len())
	var ids []int64
	for {
		m, ok := q.Current()
		if !ok {
			break
		}
		ids = append(ids, m.ID)
		require.NoError(t, q.Advance(context.Background()))
	}
	assert.Equal(t, []int64{2, 3, 5, 6, 7, 8, 9, 10}, ids)
}

func TestLoad_QueueNeverContainsDecidedMovies(t *testing.T) {
	fake, user := setup(t, 120)
	for id := int64(1); id <= 120; id += 3 {
		fake.SeedSwipe(user, id, model.KindYes)
	}

	q := queue.New(fake)
	require.NoError(t, q.Load(context.Background(), user))

	decided := map[int64]bool{}
	for _, s := range fake.Swipes(user) {
		decided[s.MovieID] = true
	}
	require.Equal(t, queue.PageSize, q.Len())
	for i := 0; i < q.Len(); i++ {
		m, ok := q.Current()
		require.True(t, ok)
		assert.False(t, decided[m.ID], "movie %d already decided", m.ID)
		if i < q.Len()-1 {
			require.NoError(t, q.Advance(context.Background()))
		}
	}
	assert.Equal(t, 1, fake.Calls(gatewaytest.OpListMovies))
}

func TestExhaustion_FullPageReloads(t *testing.T) {
	fake, user := setup(t, queue.PageSize)
	q := queue.New(fake)
	ctx := context.Background()
	require.NoError(t, q.Load(ctx, user))
	require.Equal(t, queue.PageSize, q.Len())

	for i := 0; i < queue.PageSize-1; i++ {
		m, ok := q.Current()
		require.True(t, ok)
		fake.SeedSwipe(user, m.ID, model.KindNo)
		require.NoError(t, q.Advance(ctx))
	}

	// at the 50th card
	_, ok := q.Current()
	require.True(t, ok)
	assert.True(t, q.HasMore())

	m, _ := q.Current()
	fake.SeedSwipe(user, m.ID, model.KindNo)
	require.NoError(t, q.Advance(ctx))

	assert.Equal(t, 2, fake.Calls(gatewaytest.OpListMovies), "end of a full page triggers a reload")
	_, ok = q.Current()
	assert.False(t, ok)
	assert.False(t, q.HasMore())
}

func TestExhaustion_ShortPageIsTerminal(t *testing.T) {
	fake, user := setup(t, queue.PageSize-1)
	q := queue.New(fake)
	ctx := context.Background()
	require.NoError(t, q.Load(ctx, user))
	require.Equal(t, queue.PageSize-1, q.Len())

	assert.Equal(t, queue.PageSize-1, decideAll(t, fake, q, user))
	assert.False(t, q.HasMore())
	assert.Equal(t, 1, fake.Calls(gatewaytest.OpListMovies), "no reload after a short page")

	// further advances stay put without calls
	require.NoError(t, q.Advance(ctx))
	assert.Equal(t, 1, fake.Calls(gatewaytest.OpListMovies))
}

func TestAdvance_WalksAcrossPages(t *testing.T) {
	fake, user := setup(t, 120)
	q := queue.New(fake)
	require.NoError(t, q.Load(context.Background(), user))

	assert.Equal(t, 120, decideAll(t, fake, q, user))
	// 50 + 50 + 20
	assert.Equal(t, 3, fake.Calls(gatewaytest.OpListMovies))
}

func TestLoad_UserSwitchClearsQueue(t *testing.T) {
	fake, alice := setup(t, 5)
	q := queue.New(fake)
	ctx := context.Background()
	require.NoError(t, q.Load(ctx, alice))
	require.Equal(t, 5, q.Len())

	bob := fake.AddUser("bob@test.com", "secret123", "")
	fake.ActAs(bob.ID)
	fake.Fail(gatewaytest.OpListDecisions, svcErr.ErrRemoteUnavailable)

	err := q.Load(ctx, bob.ID)
	assert.ErrorIs(t, err, svcErr.ErrRemoteUnavailable)
	assert.Equal(t, bob.ID, q.UserID())
	assert.Equal(t, 0, q.Len(), "alice's candidates must not survive a switch")
	_, ok := q.Current()
	assert.False(t, ok)
}

func TestLoad_FailureKeepsSameUserPage(t *testing.T) {
	fake, user := setup(t, 5)
	q := queue.New(fake)
	ctx := context.Background()
	require.NoError(t, q.Load(ctx, user))

	fake.Fail(gatewaytest.OpListMovies, svcErr.ErrRemoteUnavailable)
	assert.ErrorIs(t, q.Load(ctx, user), svcErr.ErrRemoteUnavailable)
	m, ok := q.Current()
	require.True(t, ok)
	assert.Equal(t, int64(1), m.ID)
}
