// Package session drives one swipe session: it turns decision intents into
// recorder submits, moves the queue and publishes what the screen should show.
//
// State machine:
//
//	Idle ─(signed in)→ Loading → Ready ⇄ Deciding
//	                               │         └→ MatchShown ─(dismiss)→ Ready | Exhausted
//	                               └→ Exhausted
//	Loading ─(error)→ Failed ─(Reload)→ Loading
//
// Only one operation touches the queue and the recorder at a time.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	svcErr "github.com/oggyb/moviematch/internal/errors"
	"github.com/oggyb/moviematch/internal/identity"
	"github.com/oggyb/moviematch/internal/model"
	"github.com/oggyb/moviematch/internal/swipe/queue"
	"github.com/oggyb/moviematch/internal/swipe/recorder"
)

// DefaultCallTimeout bounds every gateway call the controller makes.
const DefaultCallTimeout = 15 * time.Second

var (
	// ErrDecisionPending is returned for an intent arriving while a submit is in flight.
	ErrDecisionPending = errors.New("a decision is already in flight")
	// ErrBusy is returned while the queue is loading.
	ErrBusy = errors.New("session is loading")
	// ErrNoCard is returned for an intent without a card on screen.
	ErrNoCard = errors.New("no movie to decide on")
)

type State int

const (
	Idle State = iota
	Loading
	Ready
	Deciding
	MatchShown
	Exhausted
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Deciding:
		return "deciding"
	case MatchShown:
		return "match"
	case Exhausted:
		return "exhausted"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Snapshot is what the presentation layer renders. Snapshots are values;
// Seq grows with every change so a late delivery can be told apart.
type Snapshot struct {
	Seq   uint64
	State State
	// Current is the card on screen. Under MatchShown it is already the next card.
	Current *model.Movie
	Matched *model.Match
	CanUndo bool
	// Err is the failure of the last operation, cleared by the next one.
	Err error

	UserID         string
	CoupleComplete bool
	InviteCode     string
}

// Gateway is what the controller needs from the remote side.
type Gateway interface {
	queue.Source
	recorder.Store
}

type Option func(*Controller)

// WithCallTimeout overrides DefaultCallTimeout. Zero disables the timeout.
func WithCallTimeout(d time.Duration) Option {
	return func(c *Controller) { c.timeout = d }
}

type Controller struct {
	queue   *queue.Manager
	rec     *recorder.Recorder
	ident   *identity.Store
	log     *slog.Logger
	timeout time.Duration

	// ops serializes queue and recorder access. Lock order: ops, then mu.
	ops sync.Mutex

	mu   sync.Mutex
	snap Snapshot
	// behind is the state under the match overlay.
	behind State
	gen    uint64
	subs   map[int]func(Snapshot)
	nextID int

	base      context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	unsubUser func()
}

// New builds a controller for the user in ident and follows its changes. The
// first load is left to the caller (Reload); later user switches reload on
// their own.
func New(gw Gateway, ident *identity.Store, log *slog.Logger, opts ...Option) *Controller {
	base, cancel := context.WithCancel(context.Background())
	c := &Controller{
		queue:   queue.New(gw),
		rec:     recorder.New(gw, log),
		ident:   ident,
		log:     log,
		timeout: DefaultCallTimeout,
		subs:    make(map[int]func(Snapshot)),
		base:    base,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(c)
	}

	st := ident.State()
	c.snap = Snapshot{UserID: st.UserID()}
	applyCouple(&c.snap, st.Couple)
	c.unsubUser = ident.Subscribe(c.onIdentity)
	return c
}

// Close stops following the identity store and waits for background reloads.
func (c *Controller) Close() {
	c.unsubUser()
	c.cancel()
	c.wg.Wait()
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Subscribe registers fn for every later snapshot. The returned func removes it.
func (c *Controller) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

// Reload fetches a fresh queue for the current user. It is the way out of
// Failed and Exhausted.
func (c *Controller) Reload(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.snap.UserID == "":
		c.mu.Unlock()
		return svcErr.ErrAuthRequired
	case c.snap.State == Deciding:
		c.mu.Unlock()
		return ErrDecisionPending
	case c.snap.State == Loading:
		c.mu.Unlock()
		return ErrBusy
	}
	gen, userID := c.gen, c.snap.UserID
	c.transition(func(s *Snapshot) {
		s.State, s.Err, s.Matched = Loading, nil, nil
	})

	c.ops.Lock()
	defer c.ops.Unlock()
	return c.load(ctx, gen, userID)
}

// Decide records kind for the card on screen. On success the queue moves on,
// to MatchShown when the decision completed a match. On failure the same card
// stays current with Err set, so the user can try again.
func (c *Controller) Decide(ctx context.Context, kind model.Kind) (recorder.Result, error) {
	c.mu.Lock()
	switch {
	case c.snap.UserID == "":
		c.mu.Unlock()
		return recorder.Result{}, svcErr.ErrAuthRequired
	case c.snap.State == Deciding:
		c.mu.Unlock()
		c.log.Debug("intent ignored, decision in flight")
		return recorder.Result{}, ErrDecisionPending
	case c.snap.State == Loading:
		c.mu.Unlock()
		return recorder.Result{}, ErrBusy
	case c.snap.State != Ready || c.snap.Current == nil:
		c.mu.Unlock()
		return recorder.Result{}, ErrNoCard
	}
	gen, userID, movie := c.gen, c.snap.UserID, *c.snap.Current
	c.transition(func(s *Snapshot) {
		s.State, s.Err, s.CanUndo = Deciding, nil, false
	})

	c.ops.Lock()
	defer c.ops.Unlock()

	callCtx, cancel := c.callCtx(ctx)
	defer cancel()

	res, err := c.rec.Submit(callCtx, userID, movie.ID, kind)
	if err != nil {
		c.log.Warn("decision failed", "movie", movie.ID, "kind", kind, "err", err)
		// The slot still holds the previous successful decision, so Undo
		// after a failed submit removes that one.
		c.update(gen, func(s *Snapshot) {
			s.State, s.Err, s.CanUndo = Ready, err, c.rec.CanUndo()
		})
		return res, err
	}

	advErr := c.queue.Advance(callCtx)
	if advErr != nil {
		c.log.Warn("queue reload failed", "user", userID, "err", advErr)
	}
	c.update(gen, func(s *Snapshot) {
		c.settle(s, advErr)
		s.CanUndo = c.rec.CanUndo()
		if res.Match != nil {
			c.behind = s.State
			s.State, s.Matched = MatchShown, res.Match
		}
	})
	return res, nil
}

// DecideDirection maps a gesture to its decision kind.
func (c *Controller) DecideDirection(ctx context.Context, d model.Direction) (recorder.Result, error) {
	kind, err := model.KindFor(d)
	if err != nil {
		return recorder.Result{}, err
	}
	return c.Decide(ctx, kind)
}

// DismissMatch closes the match overlay.
func (c *Controller) DismissMatch() {
	c.mu.Lock()
	if c.snap.State != MatchShown {
		c.mu.Unlock()
		return
	}
	c.transition(func(s *Snapshot) {
		s.State, s.Matched = c.behind, nil
	})
}

// Undo deletes the last decision and reloads the queue, which brings the
// undone movie back as a candidate. It reports false when there was nothing
// to undo. A failed delete keeps the current card and the undo slot.
func (c *Controller) Undo(ctx context.Context) (bool, error) {
	c.mu.Lock()
	switch {
	case c.snap.State == Deciding:
		c.mu.Unlock()
		return false, ErrDecisionPending
	case c.snap.State == Loading:
		c.mu.Unlock()
		return false, ErrBusy
	case !c.snap.CanUndo:
		c.mu.Unlock()
		return false, nil
	}
	gen, userID, prev := c.gen, c.snap.UserID, c.snap
	c.transition(func(s *Snapshot) {
		s.State, s.Err, s.Matched = Loading, nil, nil
	})

	c.ops.Lock()
	defer c.ops.Unlock()

	callCtx, cancel := c.callCtx(ctx)
	undone, err := c.rec.Undo(callCtx)
	cancel()
	if err != nil {
		c.log.Warn("undo failed", "user", userID, "err", err)
		c.update(gen, func(s *Snapshot) {
			seq := s.Seq
			*s = prev
			s.Seq, s.Err = seq, err
		})
		return false, err
	}
	return undone, c.load(ctx, gen, userID)
}

// onIdentity follows sign-in, sign-out and couple changes. A different user
// gets a clean queue and undo slot before anything is fetched for them.
func (c *Controller) onIdentity(st identity.State) {
	c.mu.Lock()
	if st.UserID() == c.snap.UserID {
		c.transition(func(s *Snapshot) { applyCouple(s, st.Couple) })
		return
	}

	c.gen++
	gen, userID := c.gen, st.UserID()
	c.transition(func(s *Snapshot) {
		*s = Snapshot{Seq: s.Seq, State: Idle, UserID: userID}
		applyCouple(s, st.Couple)
		if userID != "" {
			s.State = Loading
		}
	})

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.ops.Lock()
		defer c.ops.Unlock()

		c.queue.Reset()
		c.rec.Reset()
		if userID == "" || c.stale(gen) {
			return
		}
		_ = c.load(c.base, gen, userID)
	}()
}

// load runs a queue load and settles the snapshot. ops must be held.
func (c *Controller) load(ctx context.Context, gen uint64, userID string) error {
	callCtx, cancel := c.callCtx(ctx)
	defer cancel()

	err := c.queue.Load(callCtx, userID)
	if err != nil {
		c.log.Warn("queue load failed", "user", userID, "err", err)
	}
	c.update(gen, func(s *Snapshot) {
		c.settle(s, err)
		s.CanUndo = c.rec.CanUndo()
	})
	return err
}

// settle derives state and card from the queue. ops must be held.
func (c *Controller) settle(s *Snapshot, err error) {
	s.Err = err
	if m, ok := c.queue.Current(); ok {
		s.State, s.Current = Ready, &m
		return
	}
	s.Current = nil
	if err != nil {
		s.State = Failed
		return
	}
	s.State = Exhausted
}

func applyCouple(s *Snapshot, couple *model.Couple) {
	s.CoupleComplete = couple.Complete()
	s.InviteCode = ""
	if couple != nil {
		s.InviteCode = couple.InviteCode
	}
}

func (c *Controller) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Controller) stale(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen != c.gen
}

// update applies fn unless the user changed since gen was taken.
func (c *Controller) update(gen uint64, fn func(*Snapshot)) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.transition(fn)
}

// transition applies fn, then notifies subscribers. It must be called with mu
// held and returns with mu released.
func (c *Controller) transition(fn func(*Snapshot)) {
	fn(&c.snap)
	c.snap.Seq++
	snap := c.snap
	subs := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}
