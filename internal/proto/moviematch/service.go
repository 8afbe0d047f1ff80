package moviematch

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "moviematch.v1.MovieMatchService"

// Method names, used by interceptors to classify calls.
const (
	MethodSignUp          = "SignUp"
	MethodSignIn          = "SignIn"
	MethodSignOut         = "SignOut"
	MethodMe              = "Me"
	MethodListSwipes      = "ListSwipes"
	MethodListMovies      = "ListMovies"
	MethodUpsertSwipe     = "UpsertSwipe"
	MethodDeleteSwipe     = "DeleteSwipe"
	MethodFindLatestMatch = "FindLatestMatch"
	MethodMarkWatched     = "MarkWatched"
	MethodListMatches     = "ListMatches"
	MethodCountMatches    = "CountMatches"
	MethodGetCouple       = "GetCouple"
	MethodCreateCouple    = "CreateCouple"
	MethodJoinCouple      = "JoinCouple"
)

// PublicMethods may be called without a bearer token.
var PublicMethods = []string{FullMethod(MethodSignUp), FullMethod(MethodSignIn)}

// FullMethod returns "/<service>/<method>".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// MovieMatchServiceServer is the server API for MovieMatchService.
type MovieMatchServiceServer interface {
	SignUp(context.Context, *SignUpRequest) (*AuthResponse, error)
	SignIn(context.Context, *SignInRequest) (*AuthResponse, error)
	SignOut(context.Context, *Empty) (*Empty, error)
	Me(context.Context, *Empty) (*UserResponse, error)
	ListSwipes(context.Context, *ListSwipesRequest) (*ListSwipesResponse, error)
	ListMovies(context.Context, *ListMoviesRequest) (*ListMoviesResponse, error)
	UpsertSwipe(context.Context, *UpsertSwipeRequest) (*UpsertSwipeResponse, error)
	DeleteSwipe(context.Context, *DeleteSwipeRequest) (*Empty, error)
	FindLatestMatch(context.Context, *FindLatestMatchRequest) (*MatchResponse, error)
	MarkWatched(context.Context, *MarkWatchedRequest) (*MatchResponse, error)
	ListMatches(context.Context, *ListMatchesRequest) (*ListMatchesResponse, error)
	CountMatches(context.Context, *Empty) (*CountMatchesResponse, error)
	GetCouple(context.Context, *GetCoupleRequest) (*CoupleResponse, error)
	CreateCouple(context.Context, *CreateCoupleRequest) (*CoupleResponse, error)
	JoinCouple(context.Context, *JoinCoupleRequest) (*CoupleResponse, error)
	mustEmbedUnimplementedMovieMatchServiceServer()
}

// UnimplementedMovieMatchServiceServer must be embedded to have forward compatible implementations.
type UnimplementedMovieMatchServiceServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedMovieMatchServiceServer) SignUp(context.Context, *SignUpRequest) (*AuthResponse, error) {
	return nil, unimplemented(MethodSignUp)
}
func (UnimplementedMovieMatchServiceServer) SignIn(context.Context, *SignInRequest) (*AuthResponse, error) {
	return nil, unimplemented(MethodSignIn)
}
func (UnimplementedMovieMatchServiceServer) SignOut(context.Context, *Empty) (*Empty, error) {
	return nil, unimplemented(MethodSignOut)
}
func (UnimplementedMovieMatchServiceServer) Me(context.Context, *Empty) (*UserResponse, error) {
	return nil, unimplemented(MethodMe)
}
func (UnimplementedMovieMatchServiceServer) ListSwipes(context.Context, *ListSwipesRequest) (*ListSwipesResponse, error) {
	return nil, unimplemented(MethodListSwipes)
}
func (UnimplementedMovieMatchServiceServer) ListMovies(context.Context, *ListMoviesRequest) (*ListMoviesResponse, error) {
	return nil, unimplemented(MethodListMovies)
}
func (UnimplementedMovieMatchServiceServer) UpsertSwipe(context.Context, *UpsertSwipeRequest) (*UpsertSwipeResponse, error) {
	return nil, unimplemented(MethodUpsertSwipe)
}
func (UnimplementedMovieMatchServiceServer) DeleteSwipe(context.Context, *DeleteSwipeRequest) (*Empty, error) {
	return nil, unimplemented(MethodDeleteSwipe)
}
func (UnimplementedMovieMatchServiceServer) FindLatestMatch(context.Context, *FindLatestMatchRequest) (*MatchResponse, error) {
	return nil, unimplemented(MethodFindLatestMatch)
}
func (UnimplementedMovieMatchServiceServer) MarkWatched(context.Context, *MarkWatchedRequest) (*MatchResponse, error) {
	return nil, unimplemented(MethodMarkWatched)
}
func (UnimplementedMovieMatchServiceServer) ListMatches(context.Context, *ListMatchesRequest) (*ListMatchesResponse, error) {
	return nil, unimplemented(MethodListMatches)
}
func (UnimplementedMovieMatchServiceServer) CountMatches(context.Context, *Empty) (*CountMatchesResponse, error) {
	return nil, unimplemented(MethodCountMatches)
}
func (UnimplementedMovieMatchServiceServer) GetCouple(context.Context, *GetCoupleRequest) (*CoupleResponse, error) {
	return nil, unimplemented(MethodGetCouple)
}
func (UnimplementedMovieMatchServiceServer) CreateCouple(context.Context, *CreateCoupleRequest) (*CoupleResponse, error) {
	return nil, unimplemented(MethodCreateCouple)
}
func (UnimplementedMovieMatchServiceServer) JoinCouple(context.Context, *JoinCoupleRequest) (*CoupleResponse, error) {
	return nil, unimplemented(MethodJoinCouple)
}
func (UnimplementedMovieMatchServiceServer) mustEmbedUnimplementedMovieMatchServiceServer() {}

// RegisterMovieMatchServiceServer attaches srv to s.
func RegisterMovieMatchServiceServer(s grpc.ServiceRegistrar, srv MovieMatchServiceServer) {
	s.RegisterService(&MovieMatchService_ServiceDesc, srv)
}

// unary builds the method descriptor for one unary RPC.
func unary[Req, Resp any](method string, call func(MovieMatchServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(MovieMatchServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(MovieMatchServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// MovieMatchService_ServiceDesc is the grpc.ServiceDesc for MovieMatchService.
var MovieMatchService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MovieMatchServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodSignUp, MovieMatchServiceServer.SignUp),
		unary(MethodSignIn, MovieMatchServiceServer.SignIn),
		unary(MethodSignOut, MovieMatchServiceServer.SignOut),
		unary(MethodMe, MovieMatchServiceServer.Me),
		unary(MethodListSwipes, MovieMatchServiceServer.ListSwipes),
		unary(MethodListMovies, MovieMatchServiceServer.ListMovies),
		unary(MethodUpsertSwipe, MovieMatchServiceServer.UpsertSwipe),
		unary(MethodDeleteSwipe, MovieMatchServiceServer.DeleteSwipe),
		unary(MethodFindLatestMatch, MovieMatchServiceServer.FindLatestMatch),
		unary(MethodMarkWatched, MovieMatchServiceServer.MarkWatched),
		unary(MethodListMatches, MovieMatchServiceServer.ListMatches),
		unary(MethodCountMatches, MovieMatchServiceServer.CountMatches),
		unary(MethodGetCouple, MovieMatchServiceServer.GetCouple),
		unary(MethodCreateCouple, MovieMatchServiceServer.CreateCouple),
		unary(MethodJoinCouple, MovieMatchServiceServer.JoinCouple),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "moviematch/v1/moviematch.proto",
}

// MovieMatchServiceClient is the client API for MovieMatchService.
type MovieMatchServiceClient interface {
	SignUp(ctx context.Context, in *SignUpRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	SignOut(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error)
	Me(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*UserResponse, error)
	ListSwipes(ctx context.Context, in *ListSwipesRequest, opts ...grpc.CallOption) (*ListSwipesResponse, error)
	ListMovies(ctx context.Context, in *ListMoviesRequest, opts ...grpc.CallOption) (*ListMoviesResponse, error)
	UpsertSwipe(ctx context.Context, in *UpsertSwipeRequest, opts ...grpc.CallOption) (*UpsertSwipeResponse, error)
	DeleteSwipe(ctx context.Context, in *DeleteSwipeRequest, opts ...grpc.CallOption) (*Empty, error)
	FindLatestMatch(ctx context.Context, in *FindLatestMatchRequest, opts ...grpc.CallOption) (*MatchResponse, error)
	MarkWatched(ctx context.Context, in *MarkWatchedRequest, opts ...grpc.CallOption) (*MatchResponse, error)
	ListMatches(ctx context.Context, in *ListMatchesRequest, opts ...grpc.CallOption) (*ListMatchesResponse, error)
	CountMatches(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*CountMatchesResponse, error)
	GetCouple(ctx context.Context, in *GetCoupleRequest, opts ...grpc.CallOption) (*CoupleResponse, error)
	CreateCouple(ctx context.Context, in *CreateCoupleRequest, opts ...grpc.CallOption) (*CoupleResponse, error)
	JoinCouple(ctx context.Context, in *JoinCoupleRequest, opts ...grpc.CallOption) (*CoupleResponse, error)
}

type movieMatchServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewMovieMatchServiceClient wraps cc. Every call is sent with the JSON
// content-subtype.
func NewMovieMatchServiceClient(cc grpc.ClientConnInterface) MovieMatchServiceClient {
	return &movieMatchServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *movieMatchServiceClient) SignUp(ctx context.Context, in *SignUpRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, MethodSignUp, in, opts)
}
func (c *movieMatchServiceClient) SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, MethodSignIn, in, opts)
}
func (c *movieMatchServiceClient) SignOut(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodSignOut, in, opts)
}
func (c *movieMatchServiceClient) Me(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c.cc, MethodMe, in, opts)
}
func (c *movieMatchServiceClient) ListSwipes(ctx context.Context, in *ListSwipesRequest, opts ...grpc.CallOption) (*ListSwipesResponse, error) {
	return invoke[ListSwipesResponse](ctx, c.cc, MethodListSwipes, in, opts)
}
func (c *movieMatchServiceClient) ListMovies(ctx context.Context, in *ListMoviesRequest, opts ...grpc.CallOption) (*ListMoviesResponse, error) {
	return invoke[ListMoviesResponse](ctx, c.cc, MethodListMovies, in, opts)
}
func (c *movieMatchServiceClient) UpsertSwipe(ctx context.Context, in *UpsertSwipeRequest, opts ...grpc.CallOption) (*UpsertSwipeResponse, error) {
	return invoke[UpsertSwipeResponse](ctx, c.cc, MethodUpsertSwipe, in, opts)
}
func (c *movieMatchServiceClient) DeleteSwipe(ctx context.Context, in *DeleteSwipeRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodDeleteSwipe, in, opts)
}
func (c *movieMatchServiceClient) FindLatestMatch(ctx context.Context, in *FindLatestMatchRequest, opts ...grpc.CallOption) (*MatchResponse, error) {
	return invoke[MatchResponse](ctx, c.cc, MethodFindLatestMatch, in, opts)
}
func (c *movieMatchServiceClient) MarkWatched(ctx context.Context, in *MarkWatchedRequest, opts ...grpc.CallOption) (*MatchResponse, error) {
	return invoke[MatchResponse](ctx, c.cc, MethodMarkWatched, in, opts)
}
func (c *movieMatchServiceClient) ListMatches(ctx context.Context, in *ListMatchesRequest, opts ...grpc.CallOption) (*ListMatchesResponse, error) {
	return invoke[ListMatchesResponse](ctx, c.cc, MethodListMatches, in, opts)
}
func (c *movieMatchServiceClient) CountMatches(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*CountMatchesResponse, error) {
	return invoke[CountMatchesResponse](ctx, c.cc, MethodCountMatches, in, opts)
}
func (c *movieMatchServiceClient) GetCouple(ctx context.Context, in *GetCoupleRequest, opts ...grpc.CallOption) (*CoupleResponse, error) {
	return invoke[CoupleResponse](ctx, c.cc, MethodGetCouple, in, opts)
}
func (c *movieMatchServiceClient) CreateCouple(ctx context.Context, in *CreateCoupleRequest, opts ...grpc.CallOption) (*CoupleResponse, error) {
	return invoke[CoupleResponse](ctx, c.cc, MethodCreateCouple, in, opts)
}
func (c *movieMatchServiceClient) JoinCouple(ctx context.Context, in *JoinCoupleRequest, opts ...grpc.CallOption) (*CoupleResponse, error) {
	return invoke[CoupleResponse](ctx, c.cc, MethodJoinCouple, in, opts)
}
