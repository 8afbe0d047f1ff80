package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/moviematch/internal/db"
	svcErr "github.com/oggyb/moviematch/internal/errors"
)

// CoupleRepository manages couples and the invite code handshake.
type CoupleRepository struct {
	db *gorm.DB
}

func NewCoupleRepository(database *gorm.DB) *CoupleRepository {
	return &CoupleRepository{db: database}
}

// GetByUser returns the couple where user fills either slot, or
// gorm.ErrRecordNotFound.
func (r *CoupleRepository) GetByUser(ctx context.Context, userID string) (*db.Couple, error) {
	var c db.Couple
	err := r.db.WithContext(ctx).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("created_at ASC").
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create opens a solo couple for user with the given invite code.
//
// Behavior:
//   - Fails with ErrAlreadyExists if the user is already in a couple.
//   - A taken invite code surfaces as gorm.ErrDuplicatedKey; the caller picks
//     a new code and retries.
func (r *CoupleRepository) Create(ctx context.Context, userID, inviteCode string) (*db.Couple, error) {
	var c db.Couple
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&db.Couple{}).
			Where("user1_id = ? OR user2_id = ?", userID, userID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("user already belongs to a couple: %w", svcErr.ErrAlreadyExists)
		}

		c = db.Couple{ID: uuid.NewString(), InviteCode: inviteCode, User1ID: userID}
		if err := tx.Create(&c).Error; err != nil {
			return fmt.Errorf("failed to create couple: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Join fills the second slot of the couple identified by inviteCode.
//
// Behavior:
//   - Unknown code, full couple, own code, or a caller who already belongs
//     to any couple (complete or solo) → ErrInvalidInvite with a user facing
//     reason. A user belongs to at most one couple and couples are never
//     deleted, so a solo creator cannot switch to someone else's code.
//   - Movies both members already liked (swipes made in solo mode) become
//     matches in the same transaction.
//
// Returns the updated couple and the number of back-filled matches.
func (r *CoupleRepository) Join(ctx context.Context, inviteCode, userID string) (*db.Couple, int, error) {
	var (
		c         db.Couple
		backfills int
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("invite_code = ?", inviteCode).
			First(&c).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return svcErr.InvalidInvite("invalid invite code")
		}
		if err != nil {
			return err
		}

		if c.User2ID != nil {
			return svcErr.InvalidInvite("this couple is already complete")
		}
		if c.User1ID == userID {
			return svcErr.InvalidInvite("you cannot join your own couple")
		}

		var own int64
		if err := tx.Model(&db.Couple{}).
			Where("user1_id = ? OR user2_id = ?", userID, userID).
			Count(&own).Error; err != nil {
			return err
		}
		if own > 0 {
			return svcErr.InvalidInvite("you already belong to a couple; share your own invite code with your partner instead")
		}

		res := tx.Model(&db.Couple{}).
			Where("id = ? AND user2_id IS NULL", c.ID).
			Update("user2_id", userID)
		if res.Error != nil {
			return fmt.Errorf("failed to join couple: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return svcErr.InvalidInvite("this couple is already complete")
		}
		c.User2ID = &userID

		backfills, err = backfillMatches(tx, c.ID, c.User1ID, userID)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return &c, backfills, nil
}

// backfillMatches creates matches for every movie both users already liked.
func backfillMatches(tx *gorm.DB, coupleID, userA, userB string) (int, error) {
	var movieIDs []int64
	err := tx.Table("swipes a").
		Select("a.movie_id").
		Joins("JOIN swipes b ON b.movie_id = a.movie_id").
		Where("a.user_id = ? AND b.user_id = ?", userA, userB).
		Where("a.kind IN ? AND b.kind IN ?", positiveKinds, positiveKinds).
		Order("a.movie_id").
		Pluck("a.movie_id", &movieIDs).Error
	if err != nil {
		return 0, fmt.Errorf("failed to find shared likes: %w", err)
	}

	created := 0
	for _, id := range movieIDs {
		m, err := insertMatch(tx, coupleID, id)
		if err != nil {
			return created, err
		}
		if m != nil {
			created++
		}
	}
	return created, nil
}
