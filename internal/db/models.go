package db

import (
	"time"

	"github.com/oggyb/moviematch/internal/model"
)

// User table. IDs are UUID strings.
type User struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Email        string    `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `gorm:"size:255;not null"`
	DisplayName  string    `gorm:"size:128"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

// Movie is a catalog row. IDs come from the metadata provider, never generated.
//
// Indexes:
//   - idx_movies_rating(rating DESC): queue ordering.
type Movie struct {
	ID         int64     `gorm:"primaryKey;autoIncrement:false"`
	Title      string    `gorm:"size:255;not null"`
	Year       int       `gorm:"not null"`
	Runtime    int       `gorm:"not null"`
	Director   string    `gorm:"size:255"`
	Cast       []string  `gorm:"serializer:json;type:text"`
	Synopsis   string    `gorm:"type:text"`
	PosterURL  string    `gorm:"size:512"`
	TrailerURL *string   `gorm:"size:512"`
	Genres     []string  `gorm:"serializer:json;type:text"`
	Rating     float64   `gorm:"not null;index:idx_movies_rating,sort:desc"`
	RTScore    *float64
	IMDbRating *float64
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

// Swipe represents a user's decision on a movie.
//
// Composite PK: (UserID, MovieID)
//   - Ensures a single row per pair (overwrite guarantee).
//
// Indexes:
//   - idx_swipes_movie_kind(movie_id, kind): partner lookup during match detection.
type Swipe struct {
	UserID    string    `gorm:"primaryKey;size:36"`
	MovieID   int64     `gorm:"primaryKey;autoIncrement:false;index:idx_swipes_movie_kind,priority:1"`
	ID        string    `gorm:"uniqueIndex;size:36;not null"`
	Kind      string    `gorm:"size:16;not null;index:idx_swipes_movie_kind,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Couple pairs two users. User2ID stays NULL while the couple is solo.
type Couple struct {
	ID         string    `gorm:"primaryKey;size:36"`
	InviteCode string    `gorm:"uniqueIndex;size:8;not null"`
	User1ID    string    `gorm:"index;size:36;not null"`
	User2ID    *string   `gorm:"index;size:36"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

// Match is derived when both members of a couple swiped positively on a movie.
//
// Indexes:
//   - idx_matches_couple_movie(couple_id, movie_id) UNIQUE: one match per pair.
type Match struct {
	ID        string    `gorm:"primaryKey;size:36"`
	CoupleID  string    `gorm:"size:36;not null;uniqueIndex:idx_matches_couple_movie,priority:1"`
	MovieID   int64     `gorm:"not null;uniqueIndex:idx_matches_couple_movie,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	Watched   bool      `gorm:"not null;default:false"`
	WatchedAt *time.Time
	Movie     *Movie `gorm:"foreignKey:MovieID"`
}

// ToModel converts the row into the domain type.
func (m *Movie) ToModel() model.Movie {
	return model.Movie{
		ID:         m.ID,
		Title:      m.Title,
		Year:       m.Year,
		Runtime:    m.Runtime,
		Director:   m.Director,
		Cast:       m.Cast,
		Synopsis:   m.Synopsis,
		PosterURL:  m.PosterURL,
		TrailerURL: m.TrailerURL,
		Genres:     m.Genres,
		Rating:     m.Rating,
		RTScore:    m.RTScore,
		IMDbRating: m.IMDbRating,
	}
}

// MovieFromModel is the inverse of Movie.ToModel.
func MovieFromModel(m model.Movie) Movie {
	return Movie{
		ID:         m.ID,
		Title:      m.Title,
		Year:       m.Year,
		Runtime:    m.Runtime,
		Director:   m.Director,
		Cast:       m.Cast,
		Synopsis:   m.Synopsis,
		PosterURL:  m.PosterURL,
		TrailerURL: m.TrailerURL,
		Genres:     m.Genres,
		Rating:     m.Rating,
		RTScore:    m.RTScore,
		IMDbRating: m.IMDbRating,
	}
}

func (s *Swipe) ToModel() model.Swipe {
	return model.Swipe{
		ID:        s.ID,
		UserID:    s.UserID,
		MovieID:   s.MovieID,
		Kind:      model.Kind(s.Kind),
		CreatedAt: s.CreatedAt,
	}
}

func (c *Couple) ToModel() model.Couple {
	return model.Couple{
		ID:         c.ID,
		InviteCode: c.InviteCode,
		User1ID:    c.User1ID,
		User2ID:    c.User2ID,
		CreatedAt:  c.CreatedAt,
	}
}

func (m *Match) ToModel() model.Match {
	out := model.Match{
		ID:        m.ID,
		CoupleID:  m.CoupleID,
		MovieID:   m.MovieID,
		CreatedAt: m.CreatedAt,
		Watched:   m.Watched,
		WatchedAt: m.WatchedAt,
	}
	if m.Movie != nil {
		mv := m.Movie.ToModel()
		out.Movie = &mv
	}
	return out
}

func (u *User) ToModel() model.User {
	return model.User{ID: u.ID, Email: u.Email, DisplayName: u.DisplayName}
}
