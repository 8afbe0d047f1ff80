// Package identity holds the process-wide auth and couple state of the client
// as an observable value. Components read it through State and learn about
// changes through Subscribe.
package identity

import (
	"context"
	"log/slog"
	"sync"

	svcErr "github.com/oggyb/moviematch/internal/errors"
	"github.com/oggyb/moviematch/internal/gateway"
	"github.com/oggyb/moviematch/internal/model"
)

// State is an immutable snapshot. A nil User means signed out; a nil Couple
// means the user has not created or joined one yet.
type State struct {
	User   *model.User
	Couple *model.Couple
	Token  string
}

func (s State) SignedIn() bool { return s.User != nil }

// UserID returns the signed-in user's id, or "".
func (s State) UserID() string {
	if s.User == nil {
		return ""
	}
	return s.User.ID
}

// Store owns State and fans changes out to subscribers. Subscribers run on the
// goroutine that caused the change, outside the store's lock.
type Store struct {
	gw  gateway.Gateway
	log *slog.Logger

	mu    sync.Mutex
	state State
	subs  map[int]func(State)
	next  int
}

func New(gw gateway.Gateway, log *slog.Logger) *Store {
	return &Store{gw: gw, log: log, subs: make(map[int]func(State))}
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn for every later change. It is not called with the
// current state. The returned func removes the subscription.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) SignUp(ctx context.Context, email, password, displayName string) (State, error) {
	sess, err := s.gw.SignUp(ctx, email, password, displayName)
	if err != nil {
		return s.State(), err
	}
	return s.adopt(ctx, sess), nil
}

func (s *Store) SignIn(ctx context.Context, email, password string) (State, error) {
	sess, err := s.gw.SignIn(ctx, email, password)
	if err != nil {
		return s.State(), err
	}
	return s.adopt(ctx, sess), nil
}

// Resume restores a session from a stored token. A rejected token leaves the
// store signed out.
func (s *Store) Resume(ctx context.Context, token string) (State, error) {
	sess, err := s.gw.Resume(ctx, token)
	if err != nil {
		s.set(State{})
		return State{}, err
	}
	return s.adopt(ctx, sess), nil
}

// SignOut always clears the local state, even when the remote call fails.
func (s *Store) SignOut(ctx context.Context) error {
	err := s.gw.SignOut(ctx)
	if err != nil {
		s.log.Warn("remote sign-out failed", "err", err)
	}
	s.set(State{})
	return err
}

func (s *Store) CreateCouple(ctx context.Context) (State, error) {
	cur := s.State()
	if !cur.SignedIn() {
		return cur, svcErr.ErrAuthRequired
	}
	c, err := s.gw.CreateCouple(ctx, cur.User.ID)
	if err != nil {
		return cur, err
	}
	return s.setCouple(cur.User.ID, &c), nil
}

func (s *Store) JoinCouple(ctx context.Context, inviteCode string) (State, error) {
	cur := s.State()
	if !cur.SignedIn() {
		return cur, svcErr.ErrAuthRequired
	}
	c, err := s.gw.JoinCouple(ctx, inviteCode, cur.User.ID)
	if err != nil {
		return cur, err
	}
	return s.setCouple(cur.User.ID, &c), nil
}

// RefreshCouple refetches the couple, e.g. to notice a partner joining.
func (s *Store) RefreshCouple(ctx context.Context) (State, error) {
	cur := s.State()
	if !cur.SignedIn() {
		return cur, svcErr.ErrAuthRequired
	}
	c, err := s.gw.GetCouple(ctx, cur.User.ID)
	if err != nil {
		return cur, err
	}
	return s.setCouple(cur.User.ID, c), nil
}

// adopt installs a fresh session. The couple lookup is best effort; the user
// stays signed in without one.
func (s *Store) adopt(ctx context.Context, sess gateway.Session) State {
	u := sess.User
	next := State{User: &u, Token: sess.Token}
	c, err := s.gw.GetCouple(ctx, u.ID)
	if err != nil {
		s.log.Warn("couple lookup failed", "user", u.ID, "err", err)
	}
	next.Couple = c
	s.set(next)
	return next
}

// setCouple replaces the couple unless the user changed in the meantime.
func (s *Store) setCouple(userID string, c *model.Couple) State {
	s.mu.Lock()
	if s.state.UserID() != userID {
		st := s.state
		s.mu.Unlock()
		return st
	}
	s.state.Couple = c
	st := s.state
	subs := s.snapshotSubs()
	s.mu.Unlock()

	notify(subs, st)
	return st
}

func (s *Store) set(st State) {
	s.mu.Lock()
	s.state = st
	subs := s.snapshotSubs()
	s.mu.Unlock()

	notify(subs, st)
}

func (s *Store) snapshotSubs() []func(State) {
	out := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}

func notify(subs []func(State), st State) {
	for _, fn := range subs {
		fn(st)
	}
}
