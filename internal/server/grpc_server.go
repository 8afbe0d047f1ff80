package server

import (
	"context"
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/oggyb/moviematch/internal/app"
	"github.com/oggyb/moviematch/internal/config"
)

// NewGRPCServer builds a gRPC server with the interceptor chain and registers
// all provided services.
//
// Chain order: recovery → logging/metrics → auth → rate limit. The limiter
// runs after auth so it can key on the user.
func NewGRPCServer(appCtx *app.AppContext, registrars ...Registrar) *grpc.Server {
	chain := []grpc.UnaryServerInterceptor{
		recoveryInterceptor(appCtx.Logger),
		observeInterceptor(appCtx.Logger, appCtx.Metrics),
		appCtx.Guard.Unary(),
	}
	if cfg := appCtx.Config; cfg != nil && cfg.RateLimit.Enabled {
		limiter := NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		chain = append(chain, limiter.Unary(appCtx.Metrics))
	}

	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(chain...))

	// register all services
	for _, r := range registrars {
		r.Register(grpcServer)
	}

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	for name := range grpcServer.GetServiceInfo() {
		healthServer.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
	}

	// enable reflection for easier debugging with grpcurl
	reflection.Register(grpcServer)

	return grpcServer
}

// StartGRPCServer listens on the configured address and serves until ctx is
// done, then stops gracefully.
func StartGRPCServer(ctx context.Context, cfg *config.Config, grpcServer *grpc.Server) error {
	addr := fmt.Sprintf("%s:%s", cfg.GRPC.Host, cfg.GRPC.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	go func() {
		<-ctx.Done()
		grpcServer.GracefulStop()
	}()

	return grpcServer.Serve(lis)
}

// Registrar is a common interface for all gRPC service registrars
type Registrar interface {
	Register(s *grpc.Server)
}
