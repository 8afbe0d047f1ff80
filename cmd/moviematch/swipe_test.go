package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/moviematch/internal/gateway/gatewaytest"
	"github.com/oggyb/moviematch/internal/identity"
	"github.com/oggyb/moviematch/internal/logger"
	"github.com/oggyb/moviematch/internal/model"
	"github.com/oggyb/moviematch/internal/swipe/session"
)

func TestInteractive(t *testing.T) {
	ctx := context.Background()
	fake := gatewaytest.New(gatewaytest.Movies(40, 3)...)
	alice := fake.AddUser("alice@test.com", "secret123", "Alice")
	bob := fake.AddUser("bob@test.com", "secret123", "Bob")
	fake.Pair(alice.ID, bob.ID)
	fake.SeedSwipe(bob.ID, 41, model.KindYes)

	ident := identity.New(fake, logger.Discard())
	_, err := ident.SignIn(ctx, "alice@test.com", "secret123")
	require.NoError(t, err)
	ctrl := session.New(fake, ident, logger.Discard())
	defer ctrl.Close()
	require.NoError(t, ctrl.Reload(ctx))

	var out bytes.Buffer
	in := strings.NewReader("l\nr\nz\nz\nbogus\nq\nr\n")
	require.NoError(t, interactive(ctx, ctrl, in, &out))

	text := out.String()
	assert.Contains(t, text, "Movie 40 (2000)")
	assert.Contains(t, text, "It's a match! Movie 41")
	assert.Contains(t, text, "nothing to undo")
	assert.Contains(t, text, swipeHelp)

	// the input after q is never read
	swipes := fake.Swipes(alice.ID)
	require.Len(t, swipes, 1)
	assert.Equal(t, int64(40), swipes[0].MovieID)
	assert.Equal(t, model.KindNo, swipes[0].Kind)
	// undo removed the decision, not the match
	assert.Len(t, fake.Matches(), 1)
}

func TestPrintMatches(t *testing.T) {
	var out bytes.Buffer
	printMatches(&out, nil, false)
	assert.Contains(t, out.String(), "watch list is empty")

	out.Reset()
	printMatches(&out, []model.Match{
		{ID: "m1", MovieID: 7, Movie: &model.Movie{Title: "Heat", Year: 1995}},
		{ID: "m2", MovieID: 8},
	}, false)
	assert.Contains(t, out.String(), "Heat (1995)")
	assert.Contains(t, out.String(), "movie 8")
}
