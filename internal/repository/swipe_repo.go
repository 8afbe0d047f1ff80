package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/moviematch/internal/db"
	"github.com/oggyb/moviematch/internal/model"
)

// positiveKinds are the swipe kinds that count towards a match.
var positiveKinds = []string{string(model.KindYes), string(model.KindSeenYes)}

// SwipeRepository provides data access methods for the Swipe model.
// It also materializes matches, which in this schema are derived rows.
type SwipeRepository struct {
	db *gorm.DB
}

// NewSwipeRepository creates a new repository bound to the given DB connection.
func NewSwipeRepository(database *gorm.DB) *SwipeRepository {
	return &SwipeRepository{db: database}
}

// Upsert inserts or updates the swipe of user on movie and, when the swipe
// is positive and the user's partner already swiped positively on the same
// movie, creates the couple's Match.
//
// Behavior:
//   - (user_id, movie_id) is the conflict key → a repeat swipe overwrites kind.
//   - The couple row is locked first, so two partners swiping the same movie at
//     the same time are serialized and exactly one of them creates the match.
//   - Match creation ignores an existing (couple_id, movie_id) row.
//
// Returns the stored swipe and the match created by this call (nil if none).
func (r *SwipeRepository) Upsert(
	ctx context.Context,
	userID string,
	movieID int64,
	kind model.Kind,
) (*db.Swipe, *db.Match, error) {
	var (
		stored  db.Swipe
		created *db.Match
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		couple, err := lockCoupleOf(tx, userID)
		if err != nil {
			return err
		}

		swipe := db.Swipe{
			ID:      uuid.NewString(),
			UserID:  userID,
			MovieID: movieID,
			Kind:    string(kind),
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "movie_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"kind", "updated_at"}),
		}).Create(&swipe).Error; err != nil {
			return fmt.Errorf("failed to upsert swipe: %w", err)
		}

		// re-read: on conflict the original id and created_at are kept
		if err := tx.Where("user_id = ? AND movie_id = ?", userID, movieID).
			First(&stored).Error; err != nil {
			return err
		}

		if !kind.Positive() || couple == nil || couple.User2ID == nil {
			return nil
		}

		partner := couple.User1ID
		if partner == userID {
			partner = *couple.User2ID
		}
		liked, err := hasPositive(tx, partner, movieID)
		if err != nil || !liked {
			return err
		}

		created, err = insertMatch(tx, couple.ID, movieID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return &stored, created, nil
}

// Delete removes the swipe of user on movie. Deleting a missing row is not an error.
func (r *SwipeRepository) Delete(ctx context.Context, userID string, movieID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Delete(&db.Swipe{}).Error
}

// ListByUser returns every swipe of a user, oldest first.
func (r *SwipeRepository) ListByUser(ctx context.Context, userID string) ([]db.Swipe, error) {
	var swipes []db.Swipe
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, movie_id ASC").
		Find(&swipes).Error
	return swipes, err
}

// HasPositive checks whether user swiped yes or seen_yes on movie.
func (r *SwipeRepository) HasPositive(ctx context.Context, userID string, movieID int64) (bool, error) {
	return hasPositive(r.db.WithContext(ctx), userID, movieID)
}

func hasPositive(tx *gorm.DB, userID string, movieID int64) (bool, error) {
	var count int64
	err := tx.Model(&db.Swipe{}).
		Where("user_id = ? AND movie_id = ? AND kind IN ?", userID, movieID, positiveKinds).
		Count(&count).Error
	return count > 0, err
}

// lockCoupleOf loads the couple the user belongs to with a row lock.
// Returns nil when the user has no couple.
func lockCoupleOf(tx *gorm.DB, userID string) (*db.Couple, error) {
	var c db.Couple
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("created_at ASC").
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// insertMatch creates the (couple, movie) match unless it already exists.
func insertMatch(tx *gorm.DB, coupleID string, movieID int64) (*db.Match, error) {
	m := db.Match{ID: uuid.NewString(), CoupleID: coupleID, MovieID: movieID}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&m)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to create match: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &m, nil
}
