package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/moviematch/internal/db"
	svcErr "github.com/oggyb/moviematch/internal/errors"
	"github.com/oggyb/moviematch/internal/utils/pagination"
)

// MatchRepository reads and updates a couple's matches.
// Every query is scoped by couple id; callers resolve the couple first.
type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// FindLatest returns the most recently created match of the couple on movie,
// with the movie preloaded, or nil when there is none.
func (r *MatchRepository) FindLatest(ctx context.Context, coupleID string, movieID int64) (*db.Match, error) {
	var m db.Match
	err := r.db.WithContext(ctx).
		Preload("Movie").
		Where("couple_id = ? AND movie_id = ?", coupleID, movieID).
		Order("created_at DESC").
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns the couple's matches with movies preloaded.
//
// Behavior:
//   - watched=false → watch list, ordered by created_at DESC, id DESC.
//   - watched=true  → watched list, ordered by watched_at DESC, id DESC.
//   - Supports cursor-based pagination via paginationToken.
//
// Example:
//
//	repo.List(ctx, coupleID, false, nil, 20) // first 20 unwatched matches
func (r *MatchRepository) List(
	ctx context.Context,
	coupleID string,
	watched bool,
	paginationToken *string,
	limit int,
) ([]db.Match, *string, error) {
	var matches []db.Match

	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, fmt.Errorf("%v: %w", err, svcErr.ErrInvalidArgument)
	}

	orderCol := "created_at"
	if watched {
		orderCol = "watched_at"
	}

	query := r.db.WithContext(ctx).
		Preload("Movie").
		Where("couple_id = ? AND watched = ?", coupleID, watched).
		Order(orderCol + " DESC, id DESC").
		Limit(limit + 1)

	// apply cursor
	if !cursor.IsZero() {
		ts := cursor.Time()
		query = query.Where(
			"("+orderCol+" < ? OR ("+orderCol+" = ? AND id < ?))",
			ts, ts, cursor.ID,
		)
	}

	if err := query.Find(&matches).Error; err != nil {
		return nil, nil, err
	}

	// pagination: build next cursor if needed
	var nextToken *string
	if len(matches) > limit {
		last := matches[limit-1]
		ts := last.CreatedAt
		if watched && last.WatchedAt != nil {
			ts = *last.WatchedAt
		}
		token, _ := pagination.Encode(pagination.After(last.ID, ts))
		nextToken = &token
		matches = matches[:limit]
	}

	return matches, nextToken, nil
}

// MarkWatched flags the match as watched at now. Marking an already watched
// match keeps its original watched_at. Returns gorm.ErrRecordNotFound when the
// match is not the couple's.
func (r *MatchRepository) MarkWatched(ctx context.Context, coupleID, matchID string, now time.Time) (*db.Match, error) {
	var m db.Match
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND couple_id = ?", matchID, coupleID).First(&m).Error; err != nil {
			return err
		}
		if m.Watched {
			return nil
		}
		if err := tx.Model(&m).Updates(map[string]any{
			"watched":    true,
			"watched_at": now,
		}).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Preload("Movie").First(&m, "id = ?", matchID).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// CountUnwatched returns how many matches of the couple are still on the watch list.
func (r *MatchRepository) CountUnwatched(ctx context.Context, coupleID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("couple_id = ? AND watched = ?", coupleID, false).
		Count(&count).Error
	return count, err
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
