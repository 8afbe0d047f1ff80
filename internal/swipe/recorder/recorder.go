// Package recorder persists decisions and reports matches they produce.
package recorder

import (
	"context"
	"fmt"
	"log/slog"

	svcErr "github.com/oggyb/moviematch/internal/errors"
	"github.com/oggyb/moviematch/internal/model"
)

// Store is the part of the gateway the recorder writes through.
type Store interface {
	UpsertDecision(ctx context.Context, userID string, movieID int64, kind model.Kind) (model.Swipe, error)
	DeleteDecision(ctx context.Context, userID string, movieID int64) error
	FindLatestMatch(ctx context.Context, movieID int64) (*model.Match, error)
}

// Result of a submit. Match is nil when the decision completed no match, or
// when the lookup failed.
type Result struct {
	Decision model.Swipe
	Match    *model.Match
}

type lastDecision struct {
	userID  string
	movieID int64
}

// Recorder keeps a single undo slot: the last decision submitted through it.
// It is not safe for concurrent use.
type Recorder struct {
	store Store
	log   *slog.Logger
	last  *lastDecision
}

func New(store Store, log *slog.Logger) *Recorder {
	return &Recorder{store: store, log: log}
}

// Submit upserts the decision keyed by (userID, movieID), then looks for a
// match on the movie. A failed lookup is logged and reported as no match; the
// match itself is stored server side and shows up in the watch list anyway.
func (r *Recorder) Submit(ctx context.Context, userID string, movieID int64, kind model.Kind) (Result, error) {
	if userID == "" {
		return Result{}, svcErr.ErrAuthRequired
	}
	if _, err := model.ParseKind(string(kind)); err != nil {
		return Result{}, fmt.Errorf("%w: %v", svcErr.ErrInvalidArgument, err)
	}

	decision, err := r.store.UpsertDecision(ctx, userID, movieID, kind)
	if err != nil {
		return Result{}, fmt.Errorf("failed to record decision: %w", err)
	}
	r.last = &lastDecision{userID: userID, movieID: movieID}

	res := Result{Decision: decision}
	match, err := r.store.FindLatestMatch(ctx, movieID)
	if err != nil {
		r.log.Warn("match lookup failed", "movie", movieID, "err", err)
		return res, nil
	}
	res.Match = match
	return res, nil
}

// Undo deletes the last submitted decision. It reports false without a call
// when there is nothing to undo. A failed delete keeps the slot so the user
// can try again.
func (r *Recorder) Undo(ctx context.Context) (bool, error) {
	if r.last == nil {
		return false, nil
	}
	if err := r.store.DeleteDecision(ctx, r.last.userID, r.last.movieID); err != nil {
		return false, fmt.Errorf("failed to undo decision: %w", err)
	}
	r.last = nil
	return true, nil
}

func (r *Recorder) CanUndo() bool { return r.last != nil }

// LastMovie returns the movie the undo slot points at.
func (r *Recorder) LastMovie() (int64, bool) {
	if r.last == nil {
		return 0, false
	}
	return r.last.movieID, true
}

// Reset empties the undo slot.
func (r *Recorder) Reset() { r.last = nil }
