package db

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	svcErr "github.com/oggyb/moviematch/internal/errors"
	"github.com/oggyb/moviematch/internal/model"
)

const (
	// PlaceholderPoster is used when the catalog entry has no poster.
	PlaceholderPoster = "/placeholder-movie.png"
	maxCast           = 4
)

//go:embed catalog.json
var catalogJSON []byte

type catalogEntry struct {
	ID         int64    `json:"id"`
	Title      string   `json:"title"`
	Year       int      `json:"year"`
	Runtime    int      `json:"runtime"`
	Director   string   `json:"director"`
	Cast       []string `json:"cast"`
	Synopsis   string   `json:"synopsis"`
	PosterURL  string   `json:"poster_url"`
	TrailerURL *string  `json:"trailer_url"`
	Genres     []string `json:"genres"`
	Rating     float64  `json:"rating"`
	RTScore    *float64 `json:"rt_score"`
	IMDbRating *float64 `json:"imdb_rating"`
}

// Catalog returns the bundled movie catalog, normalized.
func Catalog() ([]model.Movie, error) {
	return ParseCatalog(catalogJSON)
}

// ParseCatalog decodes a JSON array of catalog entries and normalizes them:
// cast trimmed to billing top 4, missing posters replaced, genres title-cased.
func ParseCatalog(raw []byte) ([]model.Movie, error) {
	var entries []catalogEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	title := cases.Title(language.English)
	movies := make([]model.Movie, 0, len(entries))
	for _, e := range entries {
		if e.ID <= 0 || strings.TrimSpace(e.Title) == "" {
			return nil, fmt.Errorf("catalog entry %d: id and title are required", e.ID)
		}
		cast := e.Cast
		if len(cast) > maxCast {
			cast = cast[:maxCast]
		}
		poster := e.PosterURL
		if poster == "" {
			poster = PlaceholderPoster
		}
		genres := make([]string, 0, len(e.Genres))
		for _, g := range e.Genres {
			genres = append(genres, title.String(strings.TrimSpace(g)))
		}
		director := e.Director
		if director == "" {
			director = "Unknown"
		}
		movies = append(movies, model.Movie{
			ID:         e.ID,
			Title:      strings.TrimSpace(e.Title),
			Year:       e.Year,
			Runtime:    e.Runtime,
			Director:   director,
			Cast:       cast,
			Synopsis:   e.Synopsis,
			PosterURL:  poster,
			TrailerURL: e.TrailerURL,
			Genres:     genres,
			Rating:     e.Rating,
			RTScore:    e.RTScore,
			IMDbRating: e.IMDbRating,
		})
	}
	return movies, nil
}

// InsertMovie inserts one catalog row. An existing row with the same id is
// left alone and reported as ErrConflictIgnored.
func InsertMovie(ctx context.Context, db *gorm.DB, m model.Movie) error {
	row := MovieFromModel(m)
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row)
	if res.Error != nil {
		return fmt.Errorf("failed to insert movie %d: %w", m.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("movie %d: %w", m.ID, svcErr.ErrConflictIgnored)
	}
	return nil
}

// SeedCatalog inserts movies, skipping duplicates so re-runs are harmless.
// Returns how many rows were inserted and how many were already present.
func SeedCatalog(ctx context.Context, db *gorm.DB, movies []model.Movie, log *slog.Logger) (inserted, skipped int, err error) {
	for _, m := range movies {
		err := InsertMovie(ctx, db, m)
		switch {
		case err == nil:
			inserted++
		case errors.Is(err, svcErr.ErrConflictIgnored):
			skipped++
			log.Debug("movie already in catalog", "movie_id", m.ID, "title", m.Title)
		default:
			return inserted, skipped, err
		}
	}
	return inserted, skipped, nil
}

// SeedTestData resets users, swipes, couples and matches and creates a demo
// couple plus one solo user. The catalog is seeded first (idempotent).
//
// Accounts (password "password"):
//   - alice@example.com and bob@example.com, paired, with a few swipes each
//     and one pre-existing match.
//   - carol@example.com, solo, invite code left open.
func SeedTestData(ctx context.Context, db *gorm.DB, log *slog.Logger) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	movies, err := Catalog()
	if err != nil {
		return err
	}
	if _, _, err := SeedCatalog(ctx, db, movies, log); err != nil {
		return err
	}

	// --- Fresh start ---
	for _, table := range []string{"matches", "swipes", "couples", "users"} {
		if err := db.WithContext(ctx).Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	log.Info("cleared existing data")

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	users := []User{
		{ID: uuid.NewString(), Email: "alice@example.com", DisplayName: "Alice", PasswordHash: string(hash)},
		{ID: uuid.NewString(), Email: "bob@example.com", DisplayName: "Bob", PasswordHash: string(hash)},
		{ID: uuid.NewString(), Email: "carol@example.com", DisplayName: "Carol", PasswordHash: string(hash)},
	}
	if err := db.WithContext(ctx).Create(&users).Error; err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	alice, bob, carol := users[0], users[1], users[2]
	couples := []Couple{
		{ID: uuid.NewString(), InviteCode: "CQUPLE22", User1ID: alice.ID, User2ID: &bob.ID},
		{ID: uuid.NewString(), InviteCode: "CAR7SXLA", User1ID: carol.ID},
	}
	if err := db.WithContext(ctx).Create(&couples).Error; err != nil {
		return fmt.Errorf("failed to seed couples: %w", err)
	}

	// each partner decides on the three best rated movies; the first one is
	// always a mutual yes so the watch list is not empty
	kinds := []model.Kind{model.KindYes, model.KindNo, model.KindSeenYes, model.KindSeenNo}
	for i, m := range topRated(movies, 3) {
		for _, u := range []User{alice, bob} {
			kind := kinds[r.Intn(len(kinds))]
			if i == 0 {
				kind = model.KindYes
			}
			s := Swipe{ID: uuid.NewString(), UserID: u.ID, MovieID: m.ID, Kind: string(kind)}
			if err := db.WithContext(ctx).Create(&s).Error; err != nil {
				return fmt.Errorf("failed to seed swipe: %w", err)
			}
		}
		if i == 0 {
			match := Match{ID: uuid.NewString(), CoupleID: couples[0].ID, MovieID: m.ID}
			if err := db.WithContext(ctx).Create(&match).Error; err != nil {
				return fmt.Errorf("failed to seed match: %w", err)
			}
		}
	}

	log.Info("seeded demo data", "users", len(users), "couples", len(couples))
	return nil
}

func topRated(movies []model.Movie, n int) []model.Movie {
	sorted := make([]model.Movie, len(movies))
	copy(sorted, movies)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Rating > sorted[j].Rating })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
