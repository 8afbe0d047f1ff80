package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/oggyb/moviematch/internal/db"
)

// MovieRepository reads the catalog. The catalog is written only by the seeder.
type MovieRepository struct {
	db *gorm.DB
}

func NewMovieRepository(database *gorm.DB) *MovieRepository {
	return &MovieRepository{db: database}
}

// ListUnseen returns up to limit movies ordered by rating DESC (id ASC on ties),
// skipping every id in exclude.
//
// Example:
//
//	repo.ListUnseen(ctx, []int64{278, 238}, 50)
func (r *MovieRepository) ListUnseen(ctx context.Context, exclude []int64, limit int) ([]db.Movie, error) {
	var movies []db.Movie

	query := r.db.WithContext(ctx).
		Order("rating DESC, id ASC").
		Limit(limit)
	if len(exclude) > 0 {
		query = query.Where("id NOT IN ?", exclude)
	}

	if err := query.Find(&movies).Error; err != nil {
		return nil, err
	}
	return movies, nil
}

// Get returns one movie by id.
func (r *MovieRepository) Get(ctx context.Context, id int64) (*db.Movie, error) {
	var m db.Movie
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}
