// Package queue produces the ordered list of movies a user has not decided on
// yet and keeps a cursor into it.
package queue

import (
	"context"
	"fmt"

	"github.com/oggyb/moviematch/internal/model"
)

// PageSize caps every fetch. A page of exactly PageSize movies means more may
// exist remotely.
const PageSize = 50

// Source is the part of the gateway the queue reads from.
type Source interface {
	ListDecisions(ctx context.Context, userID string) ([]model.Swipe, error)
	ListMovies(ctx context.Context, excludeIDs []int64, limit int) ([]model.Movie, error)
}

// Manager is not safe for concurrent use; the session controller serializes
// access to it.
type Manager struct {
	src    Source
	userID string
	page   []model.Movie
	cursor int
}

func New(src Source) *Manager {
	return &Manager{src: src}
}

// Load fetches userID's decisions and the first page of undecided movies by
// rating. Switching user clears the old page before any call is made, so a
// failed load never leaves another user's candidates behind.
func (m *Manager) Load(ctx context.Context, userID string) error {
	if userID != m.userID {
		m.Reset()
		m.userID = userID
	}

	decided, err := m.src.ListDecisions(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list decisions: %w", err)
	}
	exclude := make([]int64, 0, len(decided))
	for _, d := range decided {
		exclude = append(exclude, d.MovieID)
	}

	movies, err := m.src.ListMovies(ctx, exclude, PageSize)
	if err != nil {
		return fmt.Errorf("failed to list movies: %w", err)
	}
	m.page, m.cursor = movies, 0
	return nil
}

// Current returns the movie under the cursor, false when the page is used up.
func (m *Manager) Current() (model.Movie, bool) {
	if m.cursor >= len(m.page) {
		return model.Movie{}, false
	}
	return m.page[m.cursor], true
}

// HasMore is true while the cursor is inside the page, and also at its end
// when the page was full.
func (m *Manager) HasMore() bool {
	return m.cursor < len(m.page) || len(m.page) == PageSize
}

// Advance moves past the current movie. Stepping off the end of a full page
// loads the next one; stepping off a short page makes the queue empty without
// a call.
func (m *Manager) Advance(ctx context.Context) error {
	if m.cursor < len(m.page) {
		m.cursor++
	}
	if m.cursor < len(m.page) || len(m.page) < PageSize {
		return nil
	}
	return m.Load(ctx, m.userID)
}

// Reset drops the page, cursor and user.
func (m *Manager) Reset() {
	m.userID, m.page, m.cursor = "", nil, 0
}

func (m *Manager) UserID() string { return m.userID }

// Len reports how many movies the loaded page holds.
func (m *Manager) Len() int { return len(m.page) }
