package moviematch

import (
	"google.golang.org/grpc"

	"github.com/oggyb/moviematch/internal/app"
	pb "github.com/oggyb/moviematch/internal/proto/moviematch"
)

// Registrar ties the MovieMatch service into the gRPC server
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the MovieMatch service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the MovieMatch service implementation to the gRPC server
func (r *Registrar) Register(s *grpc.Server) {
	pb.RegisterMovieMatchServiceServer(s, NewMovieMatchService(r.appCtx))
}
