package moviematch

// Times on the wire are unix milliseconds.

type Movie struct {
	Id         int64    `json:"id"`
	Title      string   `json:"title"`
	Year       int32    `json:"year"`
	Runtime    int32    `json:"runtime"`
	Director   string   `json:"director"`
	Cast       []string `json:"movie_cast"`
	Synopsis   string   `json:"plot_synopsis"`
	PosterUrl  string   `json:"poster_url"`
	TrailerUrl *string  `json:"trailer_url"`
	Genres     []string `json:"genres"`
	Rating     float64  `json:"tmdb_rating"`
	RtScore    *float64 `json:"rt_score"`
	ImdbRating *float64 `json:"imdb_rating"`
}

type Swipe struct {
	Id        string `json:"id"`
	UserId    string `json:"user_id"`
	MovieId   int64  `json:"movie_id"`
	Kind      string `json:"swipe_type"`
	CreatedAt int64  `json:"created_at"`
}

type Couple struct {
	Id         string  `json:"id"`
	InviteCode string  `json:"invite_code"`
	User1Id    string  `json:"user1_id"`
	User2Id    *string `json:"user2_id"`
	CreatedAt  int64   `json:"created_at"`
}

type Match struct {
	Id        string `json:"id"`
	CoupleId  string `json:"couple_id"`
	MovieId   int64  `json:"movie_id"`
	CreatedAt int64  `json:"created_at"`
	Watched   bool   `json:"watched"`
	WatchedAt *int64 `json:"watched_at"`
	Movie     *Movie `json:"movie,omitempty"`
}

type User struct {
	Id          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

type Empty struct{}

// --- auth ---

type SignUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type UserResponse struct {
	User *User `json:"user"`
}

// --- swipes & movies ---

type ListSwipesRequest struct {
	UserId string `json:"user_id"`
}

func (r *ListSwipesRequest) GetUserId() string {
	if r == nil {
		return ""
	}
	return r.UserId
}

type ListSwipesResponse struct {
	Swipes []*Swipe `json:"swipes"`
}

type ListMoviesRequest struct {
	ExcludeIds []int64 `json:"exclude_ids"`
	Limit      int32   `json:"limit"`
}

func (r *ListMoviesRequest) GetExcludeIds() []int64 {
	if r == nil {
		return nil
	}
	return r.ExcludeIds
}

func (r *ListMoviesRequest) GetLimit() int32 {
	if r == nil {
		return 0
	}
	return r.Limit
}

type ListMoviesResponse struct {
	Movies []*Movie `json:"movies"`
}

type UpsertSwipeRequest struct {
	UserId  string `json:"user_id"`
	MovieId int64  `json:"movie_id"`
	Kind    string `json:"swipe_type"`
}

func (r *UpsertSwipeRequest) GetUserId() string {
	if r == nil {
		return ""
	}
	return r.UserId
}

func (r *UpsertSwipeRequest) GetMovieId() int64 {
	if r == nil {
		return 0
	}
	return r.MovieId
}

func (r *UpsertSwipeRequest) GetKind() string {
	if r == nil {
		return ""
	}
	return r.Kind
}

type UpsertSwipeResponse struct {
	Swipe *Swipe `json:"swipe"`
}

type DeleteSwipeRequest struct {
	UserId  string `json:"user_id"`
	MovieId int64  `json:"movie_id"`
}

func (r *DeleteSwipeRequest) GetUserId() string {
	if r == nil {
		return ""
	}
	return r.UserId
}

func (r *DeleteSwipeRequest) GetMovieId() int64 {
	if r == nil {
		return 0
	}
	return r.MovieId
}

// --- matches ---

type FindLatestMatchRequest struct {
	MovieId int64 `json:"movie_id"`
}

func (r *FindLatestMatchRequest) GetMovieId() int64 {
	if r == nil {
		return 0
	}
	return r.MovieId
}

// MatchResponse carries a nil Match when there is none.
type MatchResponse struct {
	Match *Match `json:"match"`
}

type MarkWatchedRequest struct {
	MatchId string `json:"match_id"`
}

func (r *MarkWatchedRequest) GetMatchId() string {
	if r == nil {
		return ""
	}
	return r.MatchId
}

type ListMatchesRequest struct {
	Watched         bool    `json:"watched"`
	PaginationToken *string `json:"pagination_token,omitempty"`
	Limit           int32   `json:"limit"`
}

func (r *ListMatchesRequest) GetWatched() bool {
	return r != nil && r.Watched
}

func (r *ListMatchesRequest) GetLimit() int32 {
	if r == nil {
		return 0
	}
	return r.Limit
}

type ListMatchesResponse struct {
	Matches             []*Match `json:"matches"`
	NextPaginationToken *string  `json:"next_pagination_token,omitempty"`
}

func (r *ListMatchesResponse) GetNextPaginationToken() string {
	if r == nil || r.NextPaginationToken == nil {
		return ""
	}
	return *r.NextPaginationToken
}

type CountMatchesResponse struct {
	Count uint64 `json:"count"`
}

// --- couples ---

type GetCoupleRequest struct {
	UserId string `json:"user_id"`
}

func (r *GetCoupleRequest) GetUserId() string {
	if r == nil {
		return ""
	}
	return r.UserId
}

// CoupleResponse carries a nil Couple when the user has none.
type CoupleResponse struct {
	Couple *Couple `json:"couple"`
}

type CreateCoupleRequest struct {
	UserId     string `json:"user_id"`
	InviteCode string `json:"invite_code"`
}

func (r *CreateCoupleRequest) GetUserId() string {
	if r == nil {
		return ""
	}
	return r.UserId
}

func (r *CreateCoupleRequest) GetInviteCode() string {
	if r == nil {
		return ""
	}
	return r.InviteCode
}

type JoinCoupleRequest struct {
	InviteCode string `json:"invite_code"`
	UserId     string `json:"user_id"`
}

func (r *JoinCoupleRequest) GetUserId() string {
	if r == nil {
		return ""
	}
	return r.UserId
}

func (r *JoinCoupleRequest) GetInviteCode() string {
	if r == nil {
		return ""
	}
	return r.InviteCode
}
