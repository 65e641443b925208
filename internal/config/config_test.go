package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"SERVER_PORT", "GIN_MODE", "LOG_LEVEL", "LOG_FORMAT", "ECHO_URL", "ECHO_TIMEOUT",
		"SUBMIT_RATE_LIMIT", "VIEW_IDLE_TTL", "VIEW_SWEEP_INTERVAL", "ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "debug", cfg.GinMode)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "pretty", cfg.LogFormat)
	assert.Equal(t, "https://httpbin.org/post", cfg.EchoURL)
	assert.Zero(t, cfg.EchoTimeout)
	assert.Equal(t, 30, cfg.SubmitRateLimit)
	assert.Equal(t, 30*time.Minute, cfg.ViewIdleTTL)
	assert.Equal(t, time.Minute, cfg.ViewSweepInterval)
	assert.Nil(t, cfg.AllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ECHO_URL", "http://localhost:1234/echo")
	t.Setenv("ECHO_TIMEOUT", "3s")
	t.Setenv("SUBMIT_RATE_LIMIT", "5")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, "http://localhost:1234/echo", cfg.EchoURL)
	assert.Equal(t, 3*time.Second, cfg.EchoTimeout)
	assert.Equal(t, 5, cfg.SubmitRateLimit)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("VIEW_IDLE_TTL", "soon")

	_, err := Load()
	assert.Error(t, err)
}
