// Package gatewaytest provides an in-memory gateway.Gateway for tests of the
// client core. It applies the same couple, match and access rules as the
// server, and lets tests inject failures and hold calls in flight.
package gatewaytest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	svcErr "github.com/oggyb/moviematch/internal/errors"
	"github.com/oggyb/moviematch/internal/gateway"
	"github.com/oggyb/moviematch/internal/invite"
	"github.com/oggyb/moviematch/internal/model"
)

// Operation names accepted by Fail, Hold and Calls.
const (
	OpSignUp          = "SignUp"
	OpSignIn          = "SignIn"
	OpResume          = "Resume"
	OpSignOut         = "SignOut"
	OpListDecisions   = "ListDecisions"
	OpListMovies      = "ListMovies"
	OpUpsertDecision  = "UpsertDecision"
	OpDeleteDecision  = "DeleteDecision"
	OpFindLatestMatch = "FindLatestMatch"
	OpMarkWatched     = "MarkWatched"
	OpListMatches     = "ListMatches"
	OpGetCouple       = "GetCouple"
	OpCreateCouple    = "CreateCouple"
	OpJoinCouple      = "JoinCouple"
)

type swipeKey struct {
	user  string
	movie int64
}

type account struct {
	user     model.User
	password string
}

// Fake is safe for concurrent use.
type Fake struct {
	mu sync.Mutex

	// Now stamps swipes and matches. Defaults to time.Now.
	Now func() time.Time

	current  string // acting user id, "" when signed out
	token    string
	accounts map[string]*account // by email
	tokens   map[string]string   // token -> user id
	movies   []model.Movie
	swipes   map[swipeKey]model.Swipe
	couples  []*model.Couple
	matches  []*model.Match

	failures map[string]error
	holds    map[string]chan struct{}
	calls    map[string]int
}

// New returns a Fake serving movies.
func New(movies ...model.Movie) *Fake {
	f := &Fake{
		Now:      time.Now,
		accounts: make(map[string]*account),
		tokens:   make(map[string]string),
		swipes:   make(map[swipeKey]model.Swipe),
		failures: make(map[string]error),
		holds:    make(map[string]chan struct{}),
		calls:    make(map[string]int),
	}
	f.AddMovies(movies...)
	return f
}

// Movies builds n movies with ids first..first+n-1, the lower id rated higher.
func Movies(first int64, n int) []model.Movie {
	out := make([]model.Movie, 0, n)
	for i := 0; i < n; i++ {
		id := first + int64(i)
		out = append(out, model.Movie{
			ID:     id,
			Title:  fmt.Sprintf("Movie %d", id),
			Year:   2000,
			Rating: 10 - float64(i)*0.01,
		})
	}
	return out
}

func (f *Fake) AddMovies(movies ...model.Movie) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.movies = append(f.movies, movies...)
	sort.SliceStable(f.movies, func(i, j int) bool { return f.movies[i].Rating > f.movies[j].Rating })
}

// AddUser registers an account without signing it in.
func (f *Fake) AddUser(email, password, displayName string) model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := model.User{ID: uuid.NewString(), Email: strings.ToLower(email), DisplayName: displayName}
	f.accounts[u.Email] = &account{user: u, password: password}
	return u
}

// ActAs makes userID the caller of later operations and returns its token.
func (f *Fake) ActAs(userID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signIn(userID)
}

// SeedSwipe records a decision for any user, creating matches like
// UpsertDecision does.
func (f *Fake) SeedSwipe(userID string, movieID int64, kind model.Kind) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upsert(userID, movieID, kind)
}

// Pair creates a complete couple for a and b directly.
func (f *Fake) Pair(a, b string) model.Couple {
	f.mu.Lock()
	defer f.mu.Unlock()
	code, _ := invite.Generate()
	c := &model.Couple{ID: uuid.NewString(), InviteCode: code, User1ID: a, User2ID: &b, CreatedAt: f.Now()}
	f.couples = append(f.couples, c)
	f.backfill(c)
	return *c
}

// Swipes returns userID's stored decisions.
func (f *Fake) Swipes(userID string) []model.Swipe {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.swipesOf(userID)
}

// Matches returns every stored match.
func (f *Fake) Matches() []model.Match {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Match, 0, len(f.matches))
	for _, m := range f.matches {
		out = append(out, *m)
	}
	return out
}

// Fail makes every later call to op return err. A nil err clears it.
func (f *Fake) Fail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failures, op)
		return
	}
	f.failures[op] = err
}

// Hold blocks later calls to op until the returned release func runs or the
// call's context ends.
func (f *Fake) Hold(op string) (release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.holds[op] = ch
	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			if f.holds[op] == ch {
				delete(f.holds, op)
			}
			f.mu.Unlock()
			close(ch)
		})
	}
}

// Calls reports how many times op was invoked.
func (f *Fake) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// enter counts the call, waits on a hold and returns the injected failure.
func (f *Fake) enter(ctx context.Context, op string) error {
	f.mu.Lock()
	f.calls[op]++
	hold := f.holds[op]
	f.mu.Unlock()

	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", svcErr.ErrRemoteUnavailable, ctx.Err())
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failures[op]
}

// --- gateway.Gateway ---

func (f *Fake) SignUp(ctx context.Context, email, password, displayName string) (gateway.Session, error) {
	if err := f.enter(ctx, OpSignUp); err != nil {
		return gateway.Session{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	if _, ok := f.accounts[email]; ok {
		return gateway.Session{}, svcErr.ErrAlreadyExists
	}
	u := model.User{ID: uuid.NewString(), Email: email, DisplayName: displayName}
	f.accounts[email] = &account{user: u, password: password}
	return gateway.Session{Token: f.signIn(u.ID), User: u}, nil
}

func (f *Fake) SignIn(ctx context.Context, email, password string) (gateway.Session, error) {
	if err := f.enter(ctx, OpSignIn); err != nil {
		return gateway.Session{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[strings.ToLower(strings.TrimSpace(email))]
	if !ok || a.password != password {
		return gateway.Session{}, svcErr.ErrAuthRequired
	}
	return gateway.Session{Token: f.signIn(a.user.ID), User: a.user}, nil
}

func (f *Fake) Resume(ctx context.Context, token string) (gateway.Session, error) {
	if err := f.enter(ctx, OpResume); err != nil {
		return gateway.Session{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.tokens[token]
	if !ok {
		f.current, f.token = "", ""
		return gateway.Session{}, svcErr.ErrAuthRequired
	}
	f.current, f.token = id, token
	return gateway.Session{Token: token, User: f.userByID(id)}, nil
}

func (f *Fake) SignOut(ctx context.Context) error {
	err := f.enter(ctx, OpSignOut)
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, f.token)
	f.current, f.token = "", ""
	return err
}

func (f *Fake) ListDecisions(ctx context.Context, userID string) ([]model.Swipe, error) {
	if err := f.enter(ctx, OpListDecisions); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authorize(userID); err != nil {
		return nil, err
	}
	return f.swipesOf(userID), nil
}

func (f *Fake) ListMovies(ctx context.Context, excludeIDs []int64, limit int) ([]model.Movie, error) {
	if err := f.enter(ctx, OpListMovies); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authorize(""); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	skip := make(map[int64]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		skip[id] = struct{}{}
	}
	out := make([]model.Movie, 0, limit)
	for _, m := range f.movies {
		if _, ok := skip[m.ID]; ok {
			continue
		}
		out = append(out, m)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *Fake) UpsertDecision(ctx context.Context, userID string, movieID int64, kind model.Kind) (model.Swipe, error) {
	if err := f.enter(ctx, OpUpsertDecision); err != nil {
		return model.Swipe{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authorize(userID); err != nil {
		return model.Swipe{}, err
	}
	if _, err := model.ParseKind(string(kind)); err != nil {
		return model.Swipe{}, fmt.Errorf("%w: %v", svcErr.ErrInvalidArgument, err)
	}
	return f.upsert(userID, movieID, kind), nil
}

func (f *Fake) DeleteDecision(ctx context.Context, userID string, movieID int64) error {
	if err := f.enter(ctx, OpDeleteDecision); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authorize(userID); err != nil {
		return err
	}
	delete(f.swipes, swipeKey{userID, movieID})
	return nil
}

func (f *Fake) FindLatestMatch(ctx context.Context, movieID int64) (*model.Match, error) {
	if err := f.enter(ctx, OpFindLatestMatch); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authorize(""); err != nil {
		return nil, err
	}
	c := f.coupleOf(f.current)
	if c == nil {
		return nil, nil
	}
	var latest *model.Match
	for _, m := range f.matches {
		if m.CoupleID == c.ID && m.MovieID == movieID && (latest == nil || !m.CreatedAt.Before(latest.CreatedAt)) {
			latest = m
		}
	}
	if latest == nil {
		return nil, nil
	}
	out := f.withMovie(*latest)
	return &out, nil
}

func (f *Fake) MarkWatched(ctx context.Context, matchID string) (model.Match, error) {
	if err := f.enter(ctx, OpMarkWatched); err != nil {
		return model.Match{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authorize(""); err != nil {
		return model.Match{}, err
	}
	c := f.coupleOf(f.current)
	for _, m := range f.matches {
		if m.ID != matchID {
			continue
		}
		if c == nil || m.CoupleID != c.ID {
			return model.Match{}, svcErr.ErrNotFound
		}
		if !m.Watched {
			now := f.Now()
			m.Watched, m.WatchedAt = true, &now
		}
		return f.withMovie(*m), nil
	}
	return model.Match{}, svcErr.ErrNotFound
}

func (f *Fake) ListMatches(ctx context.Context, watched bool) ([]model.Match, error) {
	if err := f.enter(ctx, OpListMatches); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authorize(""); err != nil {
		return nil, err
	}
	c := f.coupleOf(f.current)
	if c == nil {
		return nil, nil
	}
	var out []model.Match
	for _, m := range f.matches {
		if m.CoupleID == c.ID && m.Watched == watched {
			out = append(out, f.withMovie(*m))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *Fake) GetCouple(ctx context.Context, userID string) (*model.Couple, error) {
	if err := f.enter(ctx, OpGetCouple); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authorize(userID); err != nil {
		return nil, err
	}
	c := f.coupleOf(userID)
	if c == nil {
		return nil, nil
	}
	out := *c
	return &out, nil
}

func (f *Fake) CreateCouple(ctx context.Context, userID string) (model.Couple, error) {
	if err := f.enter(ctx, OpCreateCouple); err != nil {
		return model.Couple{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authorize(userID); err != nil {
		return model.Couple{}, err
	}
	if f.coupleOf(userID) != nil {
		return model.Couple{}, fmt.Errorf("user already belongs to a couple: %w", svcErr.ErrAlreadyExists)
	}
	for {
		code, err := invite.Generate()
		if err != nil {
			return model.Couple{}, err
		}
		if f.coupleByCode(code) != nil {
			continue
		}
		c := &model.Couple{ID: uuid.NewString(), InviteCode: code, User1ID: userID, CreatedAt: f.Now()}
		f.couples = append(f.couples, c)
		return *c, nil
	}
}

func (f *Fake) JoinCouple(ctx context.Context, inviteCode, userID string) (model.Couple, error) {
	if err := f.enter(ctx, OpJoinCouple); err != nil {
		return model.Couple{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authorize(userID); err != nil {
		return model.Couple{}, err
	}
	c := f.coupleByCode(invite.Normalize(inviteCode))
	switch {
	case c == nil:
		return model.Couple{}, svcErr.InvalidInvite("invalid invite code")
	case c.Complete():
		return model.Couple{}, svcErr.InvalidInvite("this couple is already complete")
	case c.User1ID == userID:
		return model.Couple{}, svcErr.InvalidInvite("you cannot join your own couple")
	case f.coupleOf(userID) != nil:
		return model.Couple{}, svcErr.InvalidInvite("you already belong to a couple; share your own invite code with your partner instead")
	}
	id := userID
	c.User2ID = &id
	f.backfill(c)
	return *c, nil
}

// --- internals, f.mu held ---

func (f *Fake) signIn(userID string) string {
	token := uuid.NewString()
	f.tokens[token] = userID
	f.current, f.token = userID, token
	return token
}

// authorize checks there is a caller and, when userID is set, that it is the caller.
func (f *Fake) authorize(userID string) error {
	if f.current == "" {
		return svcErr.ErrAuthRequired
	}
	if userID != "" && userID != f.current {
		return svcErr.ErrPermissionDenied
	}
	return nil
}

func (f *Fake) userByID(id string) model.User {
	for _, a := range f.accounts {
		if a.user.ID == id {
			return a.user
		}
	}
	return model.User{ID: id}
}

func (f *Fake) swipesOf(userID string) []model.Swipe {
	var out []model.Swipe
	for k, s := range f.swipes {
		if k.user == userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MovieID < out[j].MovieID })
	return out
}

func (f *Fake) coupleOf(userID string) *model.Couple {
	for _, c := range f.couples {
		if c.User1ID == userID || (c.User2ID != nil && *c.User2ID == userID) {
			return c
		}
	}
	return nil
}

func (f *Fake) coupleByCode(code string) *model.Couple {
	for _, c := range f.couples {
		if c.InviteCode == code {
			return c
		}
	}
	return nil
}

func (f *Fake) withMovie(m model.Match) model.Match {
	for i := range f.movies {
		if f.movies[i].ID == m.MovieID {
			mv := f.movies[i]
			m.Movie = &mv
			break
		}
	}
	return m
}

func (f *Fake) upsert(userID string, movieID int64, kind model.Kind) model.Swipe {
	k := swipeKey{userID, movieID}
	s, ok := f.swipes[k]
	if !ok {
		s = model.Swipe{ID: uuid.NewString(), UserID: userID, MovieID: movieID, CreatedAt: f.Now()}
	}
	s.Kind = kind
	f.swipes[k] = s

	if c := f.coupleOf(userID); kind.Positive() && c.Complete() {
		partner, ok := f.swipes[swipeKey{c.Partner(userID), movieID}]
		if ok && partner.Kind.Positive() {
			f.addMatch(c, movieID)
		}
	}
	return s
}

// backfill matches movies both members of c already liked.
func (f *Fake) backfill(c *model.Couple) {
	if !c.Complete() {
		return
	}
	for k, s := range f.swipes {
		if k.user != c.User1ID || !s.Kind.Positive() {
			continue
		}
		if p, ok := f.swipes[swipeKey{*c.User2ID, k.movie}]; ok && p.Kind.Positive() {
			f.addMatch(c, k.movie)
		}
	}
}

func (f *Fake) addMatch(c *model.Couple, movieID int64) {
	for _, m := range f.matches {
		if m.CoupleID == c.ID && m.MovieID == movieID {
			return
		}
	}
	f.matches = append(f.matches, &model.Match{
		ID:        uuid.NewString(),
		CoupleID:  c.ID,
		MovieID:   movieID,
		CreatedAt: f.Now(),
	})
}

var _ gateway.Gateway = (*Fake)(nil)
