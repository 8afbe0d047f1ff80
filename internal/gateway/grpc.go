package gateway

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/oggyb/moviematch/internal/auth"
	svcErr "github.com/oggyb/moviematch/internal/errors"
	"github.com/oggyb/moviematch/internal/invite"
	"github.com/oggyb/moviematch/internal/model"
	pb "github.com/oggyb/moviematch/internal/proto/moviematch"
)

// CreateCoupleAttempts bounds invite code collisions on CreateCouple.
const CreateCoupleAttempts = 3

// matchPage is the page size used to drain ListMatches.
const matchPage = 100

// GRPC is the Gateway backed by the MovieMatch gRPC service. The bearer token
// obtained at sign-in is attached to every call.
type GRPC struct {
	conn   *grpc.ClientConn
	client pb.MovieMatchServiceClient
	log    *slog.Logger

	mu    sync.RWMutex
	token string

	// newCode is invite.Generate, swapped in tests.
	newCode func() (string, error)
}

// Dial connects to target. Extra options (a context dialer in tests) are
// appended after the defaults.
func Dial(target string, log *slog.Logger, opts ...grpc.DialOption) (*GRPC, error) {
	g := &GRPC{log: log, newCode: invite.Generate}

	base := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithPerRPCCredentials(auth.Credentials{Token: g.Token, Insecure: true}),
	}
	conn, err := grpc.NewClient(target, append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	g.conn = conn
	g.client = pb.NewMovieMatchServiceClient(conn)
	return g, nil
}

func (g *GRPC) Close() error {
	return g.conn.Close()
}

// Token returns the current bearer token, "" when signed out.
func (g *GRPC) Token() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.token
}

func (g *GRPC) setToken(t string) {
	g.mu.Lock()
	g.token = t
	g.mu.Unlock()
}

func (g *GRPC) SignUp(ctx context.Context, email, password, displayName string) (Session, error) {
	resp, err := g.client.SignUp(ctx, &pb.SignUpRequest{Email: email, Password: password, DisplayName: displayName})
	if err != nil {
		return Session{}, svcErr.FromStatus(err)
	}
	g.setToken(resp.Token)
	return Session{Token: resp.Token, User: resp.User.ToModel()}, nil
}

func (g *GRPC) SignIn(ctx context.Context, email, password string) (Session, error) {
	resp, err := g.client.SignIn(ctx, &pb.SignInRequest{Email: email, Password: password})
	if err != nil {
		return Session{}, svcErr.FromStatus(err)
	}
	g.setToken(resp.Token)
	return Session{Token: resp.Token, User: resp.User.ToModel()}, nil
}

// Resume installs token and checks it with the server. A rejected token is
// dropped again.
func (g *GRPC) Resume(ctx context.Context, token string) (Session, error) {
	g.setToken(token)
	resp, err := g.client.Me(ctx, &pb.Empty{})
	if err != nil {
		err = svcErr.FromStatus(err)
		if errors.Is(err, svcErr.ErrAuthRequired) {
			g.setToken("")
		}
		return Session{}, err
	}
	return Session{Token: token, User: resp.User.ToModel()}, nil
}

// SignOut revokes the session. The local token is cleared even when the
// server cannot be reached.
func (g *GRPC) SignOut(ctx context.Context) error {
	if g.Token() == "" {
		return nil
	}
	_, err := g.client.SignOut(ctx, &pb.Empty{})
	g.setToken("")
	if err != nil && !errors.Is(svcErr.FromStatus(err), svcErr.ErrAuthRequired) {
		return svcErr.FromStatus(err)
	}
	return nil
}

func (g *GRPC) ListDecisions(ctx context.Context, userID string) ([]model.Swipe, error) {
	resp, err := g.client.ListSwipes(ctx, &pb.ListSwipesRequest{UserId: userID})
	if err != nil {
		return nil, svcErr.FromStatus(err)
	}
	out := make([]model.Swipe, 0, len(resp.Swipes))
	for _, s := range resp.Swipes {
		out = append(out, s.ToModel())
	}
	return out, nil
}

func (g *GRPC) ListMovies(ctx context.Context, excludeIDs []int64, limit int) ([]model.Movie, error) {
	resp, err := g.client.ListMovies(ctx, &pb.ListMoviesRequest{ExcludeIds: excludeIDs, Limit: int32(limit)})
	if err != nil {
		return nil, svcErr.FromStatus(err)
	}
	out := make([]model.Movie, 0, len(resp.Movies))
	for _, m := range resp.Movies {
		out = append(out, m.ToModel())
	}
	return out, nil
}

func (g *GRPC) UpsertDecision(ctx context.Context, userID string, movieID int64, kind model.Kind) (model.Swipe, error) {
	resp, err := g.client.UpsertSwipe(ctx, &pb.UpsertSwipeRequest{UserId: userID, MovieId: movieID, Kind: string(kind)})
	if err != nil {
		return model.Swipe{}, svcErr.FromStatus(err)
	}
	return resp.Swipe.ToModel(), nil
}

func (g *GRPC) DeleteDecision(ctx context.Context, userID string, movieID int64) error {
	_, err := g.client.DeleteSwipe(ctx, &pb.DeleteSwipeRequest{UserId: userID, MovieId: movieID})
	return svcErr.FromStatus(err)
}

func (g *GRPC) FindLatestMatch(ctx context.Context, movieID int64) (*model.Match, error) {
	resp, err := g.client.FindLatestMatch(ctx, &pb.FindLatestMatchRequest{MovieId: movieID})
	if err != nil {
		return nil, svcErr.FromStatus(err)
	}
	if resp.Match == nil {
		return nil, nil
	}
	m := resp.Match.ToModel()
	return &m, nil
}

func (g *GRPC) MarkWatched(ctx context.Context, matchID string) (model.Match, error) {
	resp, err := g.client.MarkWatched(ctx, &pb.MarkWatchedRequest{MatchId: matchID})
	if err != nil {
		return model.Match{}, svcErr.FromStatus(err)
	}
	return resp.Match.ToModel(), nil
}

// ListMatches follows pagination tokens until the list is drained.
func (g *GRPC) ListMatches(ctx context.Context, watched bool) ([]model.Match, error) {
	var (
		out   []model.Match
		token *string
	)
	for {
		resp, err := g.client.ListMatches(ctx, &pb.ListMatchesRequest{Watched: watched, PaginationToken: token, Limit: matchPage})
		if err != nil {
			return nil, svcErr.FromStatus(err)
		}
		for _, m := range resp.Matches {
			out = append(out, m.ToModel())
		}
		if resp.NextPaginationToken == nil {
			return out, nil
		}
		token = resp.NextPaginationToken
	}
}

func (g *GRPC) GetCouple(ctx context.Context, userID string) (*model.Couple, error) {
	resp, err := g.client.GetCouple(ctx, &pb.GetCoupleRequest{UserId: userID})
	if err != nil {
		return nil, svcErr.FromStatus(err)
	}
	if resp.Couple == nil {
		return nil, nil
	}
	c := resp.Couple.ToModel()
	return &c, nil
}

// CreateCouple generates the invite code here and lets the server's unique
// index reject collisions, retrying with a fresh code.
func (g *GRPC) CreateCouple(ctx context.Context, userID string) (model.Couple, error) {
	var lastErr error
	for attempt := 1; attempt <= CreateCoupleAttempts; attempt++ {
		code, err := g.newCode()
		if err != nil {
			return model.Couple{}, err
		}
		resp, err := g.client.CreateCouple(ctx, &pb.CreateCoupleRequest{UserId: userID, InviteCode: code})
		if err == nil {
			return resp.Couple.ToModel(), nil
		}
		lastErr = svcErr.FromStatus(err)
		if svcErr.Reason(lastErr) != svcErr.ReasonInviteCodeTaken {
			return model.Couple{}, lastErr
		}
		g.log.Debug("invite code taken, retrying", "attempt", attempt)
	}
	return model.Couple{}, lastErr
}

func (g *GRPC) JoinCouple(ctx context.Context, inviteCode, userID string) (model.Couple, error) {
	resp, err := g.client.JoinCouple(ctx, &pb.JoinCoupleRequest{InviteCode: invite.Normalize(inviteCode), UserId: userID})
	if err != nil {
		return model.Couple{}, svcErr.FromStatus(err)
	}
	return resp.Couple.ToModel(), nil
}

var _ Gateway = (*GRPC)(nil)
