// Package watchlist serves the couple's matches: the watch list of movies
// still to see and the watched list.
package watchlist

import (
	"context"
	"fmt"
	"log/slog"

	svcErr "github.com/oggyb/moviematch/internal/errors"
	"github.com/oggyb/moviematch/internal/model"
)

// Source is the part of the gateway the lists read from.
type Source interface {
	ListMatches(ctx context.Context, watched bool) ([]model.Match, error)
	MarkWatched(ctx context.Context, matchID string) (model.Match, error)
}

type Service struct {
	src Source
	log *slog.Logger
}

func New(src Source, log *slog.Logger) *Service {
	return &Service{src: src, log: log}
}

// Unwatched returns matches not yet watched, newest first.
func (s *Service) Unwatched(ctx context.Context) ([]model.Match, error) {
	return s.list(ctx, false)
}

// Watched returns matches already watched, newest first.
func (s *Service) Watched(ctx context.Context) ([]model.Match, error) {
	return s.list(ctx, true)
}

// MarkWatched flags the match watched and returns the refreshed watch list.
// There is no way back to unwatched.
func (s *Service) MarkWatched(ctx context.Context, matchID string) (model.Match, []model.Match, error) {
	if matchID == "" {
		return model.Match{}, nil, fmt.Errorf("%w: match id is required", svcErr.ErrInvalidArgument)
	}
	m, err := s.src.MarkWatched(ctx, matchID)
	if err != nil {
		return model.Match{}, nil, fmt.Errorf("failed to mark match watched: %w", err)
	}
	s.log.Debug("match marked watched", "match", matchID, "movie", m.MovieID)

	rest, err := s.list(ctx, false)
	if err != nil {
		return m, nil, err
	}
	return m, rest, nil
}

func (s *Service) list(ctx context.Context, watched bool) ([]model.Match, error) {
	matches, err := s.src.ListMatches(ctx, watched)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return matches, nil
}
