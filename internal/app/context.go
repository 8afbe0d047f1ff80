package app

import (
	"log/slog"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"gorm.io/gorm"

	"github.com/oggyb/moviematch/internal/auth"
	"github.com/oggyb/moviematch/internal/cache"
	"github.com/oggyb/moviematch/internal/config"
	"github.com/oggyb/moviematch/internal/metrics"
	pb "github.com/oggyb/moviematch/internal/proto/moviematch"
	"github.com/oggyb/moviematch/internal/repository"
)

// AppContext holds shared dependencies (DB, Redis, Logger, sessions)
type AppContext struct {
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
	Config     *config.Config
	Sessions   *auth.Sessions
	Guard      *auth.Guard
	Metrics    *metrics.Metrics

	// Now is the clock used for watched_at. Defaults to time.Now in UTC.
	Now func() time.Time
}

// New creates a new AppContext. Session TTLs come from cfg; a nil cfg uses
// the built-in defaults.
func New(db *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger, cfg *config.Config) *AppContext {
	sessionTTL, cacheTTL := 720*time.Hour, 30*time.Second
	if cfg != nil {
		if cfg.Auth.SessionTTL > 0 {
			sessionTTL = cfg.Auth.SessionTTL
		}
		if cfg.Auth.CacheTTL > 0 {
			cacheTTL = cfg.Auth.CacheTTL
		}
	}

	sessions := auth.NewSessions(repository.NewUserRepository(db), rdb, sessionTTL)
	return &AppContext{
		DB:         db,
		RedisCache: rdb,
		Logger:     logger,
		Config:     cfg,
		Sessions:   sessions,
		Guard:      auth.NewGuard(sessions, cacheTTL, append(pb.PublicMethods, healthpb.Health_Check_FullMethodName)...),
		Metrics:    metrics.New(),
		Now:        func() time.Time { return time.Now().UTC() },
	}
}
