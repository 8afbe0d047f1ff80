package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"gorm.io/gorm"

	"github.com/oggyb/moviematch/internal/app"
	"github.com/oggyb/moviematch/internal/cache"
	"github.com/oggyb/moviematch/internal/config"
	"github.com/oggyb/moviematch/internal/db"
	"github.com/oggyb/moviematch/internal/logger"
	"github.com/oggyb/moviematch/internal/server"
	"github.com/oggyb/moviematch/internal/service/moviematch"
)

func main() {
	if err := run(); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init DB, waiting for it to come up
	var database *gorm.DB
	err := retry(ctx, log, "db", cfg.Startup.MaxWait, func() (err error) {
		database, err = db.NewDB(cfg)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to init db: %w", err)
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	defer redisCache.Close()
	if err := retry(ctx, log, "redis", cfg.Startup.MaxWait, func() error {
		return redisCache.Ping(ctx)
	}); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(ctx, database, log); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	appCtx := app.New(database, redisCache, log, cfg)

	if cfg.Metrics.Addr != "" {
		go func() {
			if err := appCtx.Metrics.Serve(ctx, cfg.Metrics.Addr); err != nil {
				log.Error("metrics listener stopped", "err", err)
			}
		}()
	}

	grpcServer := server.NewGRPCServer(appCtx, moviematch.NewRegistrar(appCtx))

	addr := cfg.GRPC.Host + ":" + cfg.GRPC.Port
	log.Info("starting gRPC server", "addr", addr, "metrics", cfg.Metrics.Addr)

	if err := server.StartGRPCServer(ctx, cfg, grpcServer); err != nil {
		return fmt.Errorf("failed to start gRPC server: %w", err)
	}
	log.Info("gRPC server stopped")
	return nil
}

// retry runs op with exponential backoff until it succeeds, maxWait passes or
// ctx ends.
func retry(ctx context.Context, log *slog.Logger, what string, maxWait time.Duration, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = maxWait

	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		err := op()
		if err != nil && errors.Is(err, context.Canceled) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(b, ctx), func(err error, next time.Duration) {
		log.Warn("dependency not ready", "dependency", what, "attempt", attempt, "retry_in", next, "err", err)
	})
}
