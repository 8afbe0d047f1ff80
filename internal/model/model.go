// Package model holds the domain types shared by the server, the gateway and
// the swipe client. None of them carry storage or transport tags.
package model

import (
	"fmt"
	"time"
)

// Kind is a user's verdict on a movie. The string values are the wire literals.
type Kind string

const (
	KindYes     Kind = "yes"      // want to watch
	KindNo      Kind = "no"       // not interested
	KindSeenYes Kind = "seen_yes" // already seen, liked
	KindSeenNo  Kind = "seen_no"  // already seen, disliked
)

// ParseKind validates a wire literal.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindYes, KindNo, KindSeenYes, KindSeenNo:
		return k, nil
	}
	return "", fmt.Errorf("unknown swipe kind %q", s)
}

// Positive reports whether the kind counts towards a match.
func (k Kind) Positive() bool {
	return k == KindYes || k == KindSeenYes
}

// Direction is the gesture a swipe intent came from.
type Direction string

const (
	Left  Direction = "left"
	Right Direction = "right"
	Up    Direction = "up"
	Down  Direction = "down"
)

// KindFor maps a gesture direction to its decision kind.
func KindFor(d Direction) (Kind, error) {
	switch d {
	case Left:
		return KindNo, nil
	case Right:
		return KindYes, nil
	case Up:
		return KindSeenYes, nil
	case Down:
		return KindSeenNo, nil
	}
	return "", fmt.Errorf("unknown direction %q", d)
}

// Movie is a read-only catalog record.
type Movie struct {
	ID         int64
	Title      string
	Year       int
	Runtime    int
	Director   string
	Cast       []string
	Synopsis   string
	PosterURL  string
	TrailerURL *string
	Genres     []string
	Rating     float64
	RTScore    *float64
	IMDbRating *float64
}

// Swipe is one user's decision on one movie.
type Swipe struct {
	ID        string
	UserID    string
	MovieID   int64
	Kind      Kind
	CreatedAt time.Time
}

// Couple pairs two accounts. User2ID is nil while the couple is solo.
type Couple struct {
	ID         string
	InviteCode string
	User1ID    string
	User2ID    *string
	CreatedAt  time.Time
}

// Complete reports whether both member slots are filled.
func (c *Couple) Complete() bool {
	return c != nil && c.User2ID != nil && *c.User2ID != ""
}

// Partner returns the other member of the couple, or "" when solo.
func (c *Couple) Partner(userID string) string {
	if c == nil {
		return ""
	}
	switch {
	case c.User1ID == userID && c.User2ID != nil:
		return *c.User2ID
	case c.User2ID != nil && *c.User2ID == userID:
		return c.User1ID
	}
	return ""
}

// Match records that both members of a couple decided positively on a movie.
type Match struct {
	ID        string
	CoupleID  string
	MovieID   int64
	CreatedAt time.Time
	Watched   bool
	WatchedAt *time.Time
	Movie     *Movie
}

// User is an authenticated account.
type User struct {
	ID          string
	Email       string
	DisplayName string
}
