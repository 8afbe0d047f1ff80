package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_DSN", "")

	cfg := New()

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.Contains(t, cfg.DB.DSN, "tcp(localhost:3306)/moviematch")
	assert.Equal(t, "50051", cfg.GRPC.Port)
	assert.Equal(t, 15*time.Second, cfg.Client.CallTimeout)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestNew_PostgresDSN(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_DSN", "")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_NAME", "cinema")

	cfg := New()

	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Contains(t, cfg.DB.DSN, "host=db.internal port=5432")
	assert.Contains(t, cfg.DB.DSN, "dbname=cinema")
}

func TestNew_ExplicitDSNWins(t *testing.T) {
	t.Setenv("DB_DSN", "file::memory:")
	t.Setenv("LOG_SOURCE", "on")
	t.Setenv("SESSION_CALL_TIMEOUT", "0s")

	cfg := New()

	assert.Equal(t, "file::memory:", cfg.DB.DSN)
	assert.True(t, cfg.Log.Source)
	assert.Zero(t, cfg.Client.CallTimeout)
}
