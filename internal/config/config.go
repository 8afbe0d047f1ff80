package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		ENV string
	}

	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
		SQLLevel  string
	}

	DB struct {
		Driver   string
		DSN      string
		Host     string
		Port     string
		User     string
		Password string
		Name     string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	GRPC struct {
		Host string
		Port string
	}

	Metrics struct {
		Addr string
	}

	RateLimit struct {
		Enabled bool
		RPS     float64
		Burst   int
	}

	Auth struct {
		SessionTTL time.Duration
		CacheTTL   time.Duration
	}

	Startup struct {
		MaxWait time.Duration
	}

	// Client is read by cmd/moviematch only.
	Client struct {
		ServerAddr  string
		TokenFile   string
		CallTimeout time.Duration
	}
}

// New loads configuration from the environment and an optional .env file in
// the working directory. Environment variables win over the file.
func New() *Config {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	// a missing .env is the normal case
	_ = v.ReadInConfig()

	setDefaults(v)

	cfg := &Config{}
	cfg.App.ENV = v.GetString("APP_ENV")

	// Logger
	cfg.Log.Level = v.GetString("LOG_LEVEL")
	cfg.Log.Format = v.GetString("LOG_FORMAT")
	cfg.Log.Component = v.GetString("LOG_COMPONENT")
	cfg.Log.Source = isTruthy(v.GetString("LOG_SOURCE"))
	cfg.Log.SQLLevel = v.GetString("LOG_SQL_LEVEL")

	// Database
	cfg.DB.Driver = strings.ToLower(v.GetString("DB_DRIVER"))
	cfg.DB.DSN = v.GetString("DB_DSN")
	cfg.DB.Host = v.GetString("DB_HOST")
	cfg.DB.Port = v.GetString("DB_PORT")
	cfg.DB.User = v.GetString("DB_USER")
	cfg.DB.Password = v.GetString("DB_PASSWORD")
	cfg.DB.Name = v.GetString("DB_NAME")
	if cfg.DB.DSN == "" {
		cfg.DB.DSN = buildDSN(cfg)
	}

	// Redis
	cfg.Redis.Addr = v.GetString("REDIS_ADDR")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = v.GetInt("REDIS_DB")

	// gRPC
	cfg.GRPC.Host = v.GetString("GRPC_HOST")
	cfg.GRPC.Port = v.GetString("GRPC_PORT")

	cfg.Metrics.Addr = v.GetString("METRICS_ADDR")

	cfg.RateLimit.Enabled = isTruthy(v.GetString("RATE_LIMIT_ENABLED"))
	cfg.RateLimit.RPS = v.GetFloat64("RATE_LIMIT_RPS")
	cfg.RateLimit.Burst = v.GetInt("RATE_LIMIT_BURST")

	cfg.Auth.SessionTTL = v.GetDuration("AUTH_SESSION_TTL")
	cfg.Auth.CacheTTL = v.GetDuration("AUTH_CACHE_TTL")

	cfg.Startup.MaxWait = v.GetDuration("STARTUP_MAX_WAIT")

	cfg.Client.ServerAddr = v.GetString("MOVIEMATCH_SERVER")
	cfg.Client.TokenFile = v.GetString("MOVIEMATCH_TOKEN_FILE")
	cfg.Client.CallTimeout = v.GetDuration("SESSION_CALL_TIMEOUT")

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "production")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOG_COMPONENT", "grpc_server")
	v.SetDefault("LOG_SQL_LEVEL", "warn")

	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_USER", "root")
	v.SetDefault("DB_PASSWORD", "root")
	v.SetDefault("DB_NAME", "moviematch")

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("GRPC_HOST", "127.0.0.1")
	v.SetDefault("GRPC_PORT", "50051")

	v.SetDefault("METRICS_ADDR", ":9090")

	v.SetDefault("RATE_LIMIT_ENABLED", "true")
	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)

	v.SetDefault("AUTH_SESSION_TTL", "720h")
	v.SetDefault("AUTH_CACHE_TTL", "30s")

	v.SetDefault("STARTUP_MAX_WAIT", "30s")

	v.SetDefault("MOVIEMATCH_SERVER", "127.0.0.1:50051")
	v.SetDefault("MOVIEMATCH_TOKEN_FILE", "")
	v.SetDefault("SESSION_CALL_TIMEOUT", "15s")
}

// buildDSN assembles a driver specific DSN from the discrete DB_* settings.
func buildDSN(cfg *Config) string {
	switch cfg.DB.Driver {
	case "postgres":
		port := cfg.DB.Port
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			cfg.DB.Host, port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name,
		)
	case "sqlite":
		return cfg.DB.Name + ".db"
	default:
		port := cfg.DB.Port
		if port == "" {
			port = "3306"
		}
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			cfg.DB.User, cfg.DB.Password, cfg.DB.Host, port, cfg.DB.Name,
		)
	}
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
