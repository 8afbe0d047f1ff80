package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	gormlogger "gorm.io/gorm/logger"

	"github.com/oggyb/moviematch/internal/config"
)

// capture points the global logger at a buffer for the duration of the test.
func capture(t *testing.T, c Config) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	c.Output = &buf
	Init(&c)
	t.Cleanup(func() { Init(&Config{Level: "info", Format: FormatText}) })
	return &buf
}

func TestLogger_TextFormat(t *testing.T) {
	out := capture(t, Config{Level: "debug", Format: FormatText, Component: "test"})

	Info("swipe recorded", "movie_id", 42)

	assert.Contains(t, out.String(), "swipe recorded")
	assert.Contains(t, out.String(), "component=test")
	assert.Contains(t, out.String(), "movie_id=42")
}

func TestLogger_JSONFormat(t *testing.T) {
	out := capture(t, Config{Level: "info", Format: FormatJSON, Component: "json_test"})

	Info("json log", "kind", "seen_yes")

	assert.Contains(t, out.String(), `"msg":"json log"`)
	assert.Contains(t, out.String(), `"component":"json_test"`)
	assert.Contains(t, out.String(), `"kind":"seen_yes"`)
}

func TestLogger_LevelFilter(t *testing.T) {
	out := capture(t, Config{Level: "error", Format: FormatText})

	Info("should not appear")
	Error("should appear")

	assert.NotContains(t, out.String(), "should not appear")
	assert.Contains(t, out.String(), "should appear")
}

func TestLogger_WithAddsFields(t *testing.T) {
	out := capture(t, Config{Level: "debug", Format: FormatText})

	With("user_id", "u-1").Info("processing request")

	assert.Contains(t, out.String(), "user_id=u-1")
}

func TestLogger_InitFromConfigNil(t *testing.T) {
	InitFromConfig(nil)
	assert.NotNil(t, L())

	cfg := &config.Config{}
	cfg.Log.Level = "warn"
	cfg.Log.Format = "json"
	InitFromConfig(cfg)
	assert.NotNil(t, L())
}

func TestParseGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, parseGormLevel("silent"))
	assert.Equal(t, gormlogger.Info, parseGormLevel("debug"))
	assert.Equal(t, gormlogger.Warn, parseGormLevel(""))
}
