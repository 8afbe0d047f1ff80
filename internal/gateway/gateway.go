// Package gateway is the client side view of the remote data store. The swipe
// core, the identity store and the watch list only talk to a Gateway.
package gateway

import (
	"context"

	"github.com/oggyb/moviematch/internal/model"
)

// Session is an authenticated identity.
type Session struct {
	Token string
	User  model.User
}

// Gateway lists every remote operation the client uses. Implementations
// report failures with the sentinels of internal/errors: ErrRemoteUnavailable
// for transport or backend failures, ErrAuthRequired when the session is
// missing or expired, ErrInvalidInvite for rejected joins.
type Gateway interface {
	SignUp(ctx context.Context, email, password, displayName string) (Session, error)
	SignIn(ctx context.Context, email, password string) (Session, error)
	// Resume adopts a previously issued token and returns its identity.
	Resume(ctx context.Context, token string) (Session, error)
	SignOut(ctx context.Context) error

	ListDecisions(ctx context.Context, userID string) ([]model.Swipe, error)
	// ListMovies returns up to limit movies by rating descending, skipping excludeIDs.
	ListMovies(ctx context.Context, excludeIDs []int64, limit int) ([]model.Movie, error)
	// UpsertDecision writes the decision keyed by (userID, movieID).
	UpsertDecision(ctx context.Context, userID string, movieID int64, kind model.Kind) (model.Swipe, error)
	DeleteDecision(ctx context.Context, userID string, movieID int64) error

	// FindLatestMatch returns the caller's couple match on movieID, or nil.
	FindLatestMatch(ctx context.Context, movieID int64) (*model.Match, error)
	// MarkWatched sets watched and watched_at on a match of the caller's couple.
	MarkWatched(ctx context.Context, matchID string) (model.Match, error)
	// ListMatches returns the whole watch list (watched=false) or watched list.
	ListMatches(ctx context.Context, watched bool) ([]model.Match, error)

	// GetCouple returns the couple userID belongs to, or nil.
	GetCouple(ctx context.Context, userID string) (*model.Couple, error)
	CreateCouple(ctx context.Context, userID string) (model.Couple, error)
	JoinCouple(ctx context.Context, inviteCode, userID string) (model.Couple, error)
}
