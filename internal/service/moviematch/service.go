package moviematch

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/oggyb/moviematch/internal/app"
	"github.com/oggyb/moviematch/internal/auth"
	"github.com/oggyb/moviematch/internal/cache"
	"github.com/oggyb/moviematch/internal/db"
	svcErr "github.com/oggyb/moviematch/internal/errors"
	"github.com/oggyb/moviematch/internal/invite"
	"github.com/oggyb/moviematch/internal/model"
	pb "github.com/oggyb/moviematch/internal/proto/moviematch"
	"github.com/oggyb/moviematch/internal/repository"
)

const (
	// DefaultMovieLimit is one queue page.
	DefaultMovieLimit = 50
	MaxMovieLimit     = 200

	DefaultMatchLimit = 20
	MaxMatchLimit     = 100

	// inviteAttempts bounds server side code generation on collisions.
	inviteAttempts = 3
)

// Service implements the MovieMatch gRPC API.
// It contains the business logic on top of repository and cache layers.
// Each method corresponds to a gRPC endpoint of moviematch.v1.MovieMatchService.
type Service struct {
	appCtx     *app.AppContext
	swipeRepo  *repository.SwipeRepository
	movieRepo  *repository.MovieRepository
	coupleRepo *repository.CoupleRepository
	matchRepo  *repository.MatchRepository

	pb.UnimplementedMovieMatchServiceServer
}

// NewMovieMatchService creates the service with dependencies from AppContext.
// Dependencies include:
//   - DB connection (via the swipe, movie, couple and match repositories)
//   - RedisCache for the unwatched match count
//   - Sessions and Guard for the auth RPCs
func NewMovieMatchService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:     appCtx,
		swipeRepo:  repository.NewSwipeRepository(appCtx.DB),
		movieRepo:  repository.NewMovieRepository(appCtx.DB),
		coupleRepo: repository.NewCoupleRepository(appCtx.DB),
		matchRepo:  repository.NewMatchRepository(appCtx.DB),
	}
}

// --- auth ---

// SignUp creates an account and returns a session token for it.
func (s *Service) SignUp(ctx context.Context, req *pb.SignUpRequest) (*pb.AuthResponse, error) {
	s.appCtx.Logger.Debug("SignUp called", "email", req.Email)

	token, u, err := s.appCtx.Sessions.SignUp(ctx, req.Email, req.Password, req.DisplayName)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, svcErr.AlreadyExists("email is already registered", svcErr.ReasonEmailTaken)
	}
	if err != nil {
		s.appCtx.Logger.Error("SignUp failed", "email", req.Email, "err", err)
		return nil, svcErr.Map(err)
	}
	return &pb.AuthResponse{Token: token, User: pb.UserFromModel(u.ToModel())}, nil
}

// SignIn checks the credentials and returns a fresh session token.
func (s *Service) SignIn(ctx context.Context, req *pb.SignInRequest) (*pb.AuthResponse, error) {
	s.appCtx.Logger.Debug("SignIn called", "email", req.Email)

	token, u, err := s.appCtx.Sessions.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, auth.ErrBadCredentials) {
			s.appCtx.Logger.Error("SignIn failed", "email", req.Email, "err", err)
		}
		return nil, svcErr.Map(err)
	}
	return &pb.AuthResponse{Token: token, User: pb.UserFromModel(u.ToModel())}, nil
}

// SignOut revokes the token the call was made with.
func (s *Service) SignOut(ctx context.Context, _ *pb.Empty) (*pb.Empty, error) {
	token := auth.Token(ctx)
	if token == "" {
		return nil, svcErr.Map(svcErr.ErrAuthRequired)
	}
	if err := s.appCtx.Sessions.SignOut(ctx, token); err != nil {
		s.appCtx.Logger.Error("SignOut failed", "err", err)
		return nil, svcErr.Map(err)
	}
	s.appCtx.Guard.Forget(token)
	return &pb.Empty{}, nil
}

// Me returns the authenticated account.
func (s *Service) Me(ctx context.Context, _ *pb.Empty) (*pb.UserResponse, error) {
	userID, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	u, err := s.appCtx.Sessions.User(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.UserResponse{User: pb.UserFromModel(u.ToModel())}, nil
}

// --- swipes & movies ---

// ListSwipes returns every swipe of the caller, oldest first.
func (s *Service) ListSwipes(ctx context.Context, req *pb.ListSwipesRequest) (*pb.ListSwipesResponse, error) {
	s.appCtx.Logger.Debug("ListSwipes called", "user", req.GetUserId())

	userID, err := s.caller(ctx, req.GetUserId())
	if err != nil {
		return nil, err
	}

	swipes, err := s.swipeRepo.ListByUser(ctx, userID)
	if err != nil {
		s.appCtx.Logger.Error("ListByUser failed", "user", userID, "err", err)
		return nil, svcErr.Map(err)
	}

	resp := &pb.ListSwipesResponse{Swipes: make([]*pb.Swipe, 0, len(swipes))}
	for i := range swipes {
		resp.Swipes = append(resp.Swipes, pb.SwipeFromModel(swipes[i].ToModel()))
	}
	return resp, nil
}

// ListMovies returns the next page of the catalog by rating, skipping
// exclude_ids.
//
// Behavior:
//   - limit <= 0 → DefaultMovieLimit; capped at MaxMovieLimit.
//   - Ties on rating are broken by id so pages are stable.
func (s *Service) ListMovies(ctx context.Context, req *pb.ListMoviesRequest) (*pb.ListMoviesResponse, error) {
	s.appCtx.Logger.Debug("ListMovies called", "excluded", len(req.GetExcludeIds()), "limit", req.GetLimit())

	limit := clamp(int(req.GetLimit()), DefaultMovieLimit, MaxMovieLimit)
	movies, err := s.movieRepo.ListUnseen(ctx, req.GetExcludeIds(), limit)
	if err != nil {
		s.appCtx.Logger.Error("ListUnseen failed", "err", err)
		return nil, svcErr.Map(err)
	}

	resp := &pb.ListMoviesResponse{Movies: make([]*pb.Movie, 0, len(movies))}
	for i := range movies {
		resp.Movies = append(resp.Movies, pb.MovieFromModel(movies[i].ToModel()))
	}
	return resp, nil
}

// UpsertSwipe records the caller's decision on a movie. Repeating a swipe
// overwrites its kind. When the decision completes a match for the caller's
// couple the match is created in the same transaction.
//
// Example:
//
//	svc.UpsertSwipe(ctx, &pb.UpsertSwipeRequest{UserId: "u1", MovieId: 278, Kind: "yes"})
func (s *Service) UpsertSwipe(ctx context.Context, req *pb.UpsertSwipeRequest) (*pb.UpsertSwipeResponse, error) {
	s.appCtx.Logger.Debug(
		"UpsertSwipe called",
		"user", req.GetUserId(),
		"movie", req.GetMovieId(),
		"kind", req.GetKind(),
	)

	userID, err := s.caller(ctx, req.GetUserId())
	if err != nil {
		return nil, err
	}
	kind, err := model.ParseKind(req.GetKind())
	if err != nil {
		return nil, svcErr.InvalidArgument("swipe_type", "must be one of yes, no, seen_yes, seen_no")
	}
	if req.GetMovieId() <= 0 {
		return nil, svcErr.InvalidArgument("movie_id", "must be positive")
	}
	if _, err := s.movieRepo.Get(ctx, req.GetMovieId()); err != nil {
		return nil, svcErr.Map(err)
	}

	swipe, match, err := s.swipeRepo.Upsert(ctx, userID, req.GetMovieId(), kind)
	if err != nil {
		s.appCtx.Logger.Error("Upsert swipe failed", "user", userID, "movie", req.GetMovieId(), "err", err)
		return nil, svcErr.Map(err)
	}
	s.appCtx.Metrics.SwipeRecorded(string(kind))

	if match != nil {
		s.appCtx.Logger.Info("match created", "couple", match.CoupleID, "movie", match.MovieID)
		s.appCtx.Metrics.MatchesCreated(1)
		s.invalidateCount(ctx, match.CoupleID)
	}

	return &pb.UpsertSwipeResponse{Swipe: pb.SwipeFromModel(swipe.ToModel())}, nil
}

// DeleteSwipe removes the caller's swipe on a movie. Matches are kept.
func (s *Service) DeleteSwipe(ctx context.Context, req *pb.DeleteSwipeRequest) (*pb.Empty, error) {
	s.appCtx.Logger.Debug("DeleteSwipe called", "user", req.GetUserId(), "movie", req.GetMovieId())

	userID, err := s.caller(ctx, req.GetUserId())
	if err != nil {
		return nil, err
	}
	if err := s.swipeRepo.Delete(ctx, userID, req.GetMovieId()); err != nil {
		s.appCtx.Logger.Error("Delete swipe failed", "user", userID, "movie", req.GetMovieId(), "err", err)
		return nil, svcErr.Map(err)
	}
	return &pb.Empty{}, nil
}

// --- matches ---

// FindLatestMatch returns the caller's couple match on a movie, if any.
// A caller without a couple gets an empty response.
func (s *Service) FindLatestMatch(ctx context.Context, req *pb.FindLatestMatchRequest) (*pb.MatchResponse, error) {
	s.appCtx.Logger.Debug("FindLatestMatch called", "movie", req.GetMovieId())

	couple, err := s.callerCouple(ctx)
	if err != nil {
		return nil, err
	}
	if couple == nil {
		return &pb.MatchResponse{}, nil
	}

	m, err := s.matchRepo.FindLatest(ctx, couple.ID, req.GetMovieId())
	if err != nil {
		s.appCtx.Logger.Error("FindLatest failed", "couple", couple.ID, "err", err)
		return nil, svcErr.Map(err)
	}
	if m == nil {
		return &pb.MatchResponse{}, nil
	}
	return &pb.MatchResponse{Match: pb.MatchFromModel(m.ToModel())}, nil
}

// MarkWatched moves a match to the watched list. Irreversible; repeating it
// keeps the first watched_at.
func (s *Service) MarkWatched(ctx context.Context, req *pb.MarkWatchedRequest) (*pb.MatchResponse, error) {
	s.appCtx.Logger.Debug("MarkWatched called", "match", req.GetMatchId())

	if req.GetMatchId() == "" {
		return nil, svcErr.InvalidArgument("match_id", "is required")
	}
	couple, err := s.callerCouple(ctx)
	if err != nil {
		return nil, err
	}
	if couple == nil {
		return nil, svcErr.Map(svcErr.ErrNotFound)
	}

	m, err := s.matchRepo.MarkWatched(ctx, couple.ID, req.GetMatchId(), s.appCtx.Now())
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.appCtx.Logger.Error("MarkWatched failed", "match", req.GetMatchId(), "err", err)
		}
		return nil, svcErr.Map(err)
	}
	s.invalidateCount(ctx, couple.ID)

	return &pb.MatchResponse{Match: pb.MatchFromModel(m.ToModel())}, nil
}

// ListMatches returns the caller's watch list (watched=false) or watched list
// (watched=true), each match embedding its movie.
//
// Behavior:
//   - Supports cursor-based pagination with pagination_token.
//   - limit <= 0 → DefaultMatchLimit; capped at MaxMatchLimit.
func (s *Service) ListMatches(ctx context.Context, req *pb.ListMatchesRequest) (*pb.ListMatchesResponse, error) {
	s.appCtx.Logger.Debug("ListMatches called", "watched", req.GetWatched(), "token", req.PaginationToken)

	couple, err := s.callerCouple(ctx)
	if err != nil {
		return nil, err
	}
	resp := &pb.ListMatchesResponse{Matches: []*pb.Match{}}
	if couple == nil {
		return resp, nil
	}

	limit := clamp(int(req.GetLimit()), DefaultMatchLimit, MaxMatchLimit)
	matches, next, err := s.matchRepo.List(ctx, couple.ID, req.GetWatched(), req.PaginationToken, limit)
	if err != nil {
		s.appCtx.Logger.Error("List matches failed", "couple", couple.ID, "err", err)
		return nil, svcErr.Map(err)
	}

	for i := range matches {
		resp.Matches = append(resp.Matches, pb.MatchFromModel(matches[i].ToModel()))
	}
	resp.NextPaginationToken = next

	s.appCtx.Logger.Debug("ListMatches result", "count", len(resp.Matches), "next_token", resp.GetNextPaginationToken())
	return resp, nil
}

// CountMatches returns how many matches are on the caller's watch list.
// Cache-first strategy:
//  1. Attempts to read from Redis (matches:unwatched:coupleID).
//  2. On miss or cache error, falls back to the DB via CountUnwatched.
//  3. On DB fetch, updates Redis with a 1h TTL.
func (s *Service) CountMatches(ctx context.Context, _ *pb.Empty) (*pb.CountMatchesResponse, error) {
	couple, err := s.callerCouple(ctx)
	if err != nil {
		return nil, err
	}
	if couple == nil {
		return &pb.CountMatchesResponse{}, nil
	}
	s.appCtx.Logger.Debug("CountMatches called", "couple", couple.ID)

	// try cache first
	if n, err := s.appCtx.RedisCache.GetMatchCount(ctx, couple.ID); err == nil {
		s.appCtx.Metrics.CacheLookup(true)
		return &pb.CountMatchesResponse{Count: uint64(n)}, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		s.appCtx.Logger.Warn("match count cache read failed", "couple", couple.ID, "err", err)
	}
	s.appCtx.Metrics.CacheLookup(false)

	// fallback: DB
	count, err := s.matchRepo.CountUnwatched(ctx, couple.ID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	_ = s.appCtx.RedisCache.SetMatchCount(ctx, couple.ID, count)

	return &pb.CountMatchesResponse{Count: uint64(count)}, nil
}

// --- couples ---

// GetCouple returns the caller's couple, or an empty response when there is none.
func (s *Service) GetCouple(ctx context.Context, req *pb.GetCoupleRequest) (*pb.CoupleResponse, error) {
	s.appCtx.Logger.Debug("GetCouple called", "user", req.GetUserId())

	userID, err := s.caller(ctx, req.GetUserId())
	if err != nil {
		return nil, err
	}
	c, err := s.coupleRepo.GetByUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &pb.CoupleResponse{}, nil
	}
	if err != nil {
		s.appCtx.Logger.Error("GetCouple failed", "user", userID, "err", err)
		return nil, svcErr.Map(err)
	}
	return &pb.CoupleResponse{Couple: pb.CoupleFromModel(c.ToModel())}, nil
}

// CreateCouple opens a solo couple for the caller.
//
// Behavior:
//   - A supplied invite code is normalized and validated; a taken code fails
//     with AlreadyExists so the client can retry with a fresh one.
//   - An empty code is generated here, retrying on collisions.
//   - A caller who already has a couple gets AlreadyExists.
func (s *Service) CreateCouple(ctx context.Context, req *pb.CreateCoupleRequest) (*pb.CoupleResponse, error) {
	s.appCtx.Logger.Debug("CreateCouple called", "user", req.GetUserId(), "code", req.GetInviteCode())

	userID, err := s.caller(ctx, req.GetUserId())
	if err != nil {
		return nil, err
	}

	code := invite.Normalize(req.GetInviteCode())
	if code != "" && !invite.Valid(code) {
		return nil, svcErr.InvalidArgument("invite_code", "must be 8 characters from "+invite.Alphabet)
	}

	attempts := 1
	if code == "" {
		attempts = inviteAttempts
	}

	var c *db.Couple
	for i := 0; i < attempts; i++ {
		try := code
		if try == "" {
			if try, err = invite.Generate(); err != nil {
				return nil, svcErr.Map(err)
			}
		}
		c, err = s.coupleRepo.Create(ctx, userID, try)
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
		s.appCtx.Logger.Debug("invite code collision", "code", try)
	}
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return nil, svcErr.AlreadyExists("invite code is already taken", svcErr.ReasonInviteCodeTaken)
	case err != nil:
		if !errors.Is(err, svcErr.ErrAlreadyExists) {
			s.appCtx.Logger.Error("CreateCouple failed", "user", userID, "err", err)
		}
		return nil, svcErr.Map(err)
	}

	return &pb.CoupleResponse{Couple: pb.CoupleFromModel(c.ToModel())}, nil
}

// JoinCouple fills the second slot of the couple behind an invite code.
// Movies both members already liked become matches right away.
func (s *Service) JoinCouple(ctx context.Context, req *pb.JoinCoupleRequest) (*pb.CoupleResponse, error) {
	s.appCtx.Logger.Debug("JoinCouple called", "user", req.GetUserId(), "code", req.GetInviteCode())

	userID, err := s.caller(ctx, req.GetUserId())
	if err != nil {
		return nil, err
	}

	code := invite.Normalize(req.GetInviteCode())
	if !invite.Valid(code) {
		return nil, svcErr.Map(svcErr.InvalidInvite("invalid invite code"))
	}

	c, backfilled, err := s.coupleRepo.Join(ctx, code, userID)
	if err != nil {
		if !errors.Is(err, svcErr.ErrInvalidInvite) {
			s.appCtx.Logger.Error("JoinCouple failed", "user", userID, "err", err)
		}
		return nil, svcErr.Map(err)
	}

	if backfilled > 0 {
		s.appCtx.Logger.Info("matches back-filled on join", "couple", c.ID, "count", backfilled)
		s.appCtx.Metrics.MatchesCreated(backfilled)
		s.invalidateCount(ctx, c.ID)
	}
	return &pb.CoupleResponse{Couple: pb.CoupleFromModel(c.ToModel())}, nil
}

// --- helpers ---

// caller resolves the authenticated user and checks it against a user id
// named in the request. An empty requested id means the caller.
func (s *Service) caller(ctx context.Context, requested string) (string, error) {
	userID, err := auth.RequireUser(ctx)
	if err != nil {
		return "", svcErr.Map(err)
	}
	if requested != "" && requested != userID {
		s.appCtx.Logger.Warn("user id mismatch", "caller", userID, "requested", requested)
		return "", svcErr.Map(svcErr.ErrPermissionDenied)
	}
	return userID, nil
}

// callerCouple returns the caller's couple, or nil when the caller has none.
func (s *Service) callerCouple(ctx context.Context) (*db.Couple, error) {
	userID, err := s.caller(ctx, "")
	if err != nil {
		return nil, err
	}
	c, err := s.coupleRepo.GetByUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		s.appCtx.Logger.Error("couple lookup failed", "user", userID, "err", err)
		return nil, svcErr.Map(err)
	}
	return c, nil
}

func (s *Service) invalidateCount(ctx context.Context, coupleID string) {
	if err := s.appCtx.RedisCache.InvalidateMatchCount(ctx, coupleID); err != nil {
		s.appCtx.Logger.Warn("match count invalidation failed", "couple", coupleID, "err", err)
	}
}

func clamp(n, def, max int) int {
	if n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
