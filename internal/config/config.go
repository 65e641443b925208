package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`
	GinMode    string `env:"GIN_MODE" envDefault:"debug"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat  string `env:"LOG_FORMAT" envDefault:"pretty"`

	// EchoURL is the endpoint every profile submission is posted to.
	EchoURL string `env:"ECHO_URL" envDefault:"https://httpbin.org/post"`
	// EchoTimeout bounds each submission. Zero keeps the transport defaults.
	EchoTimeout time.Duration `env:"ECHO_TIMEOUT" envDefault:"0s"`

	// SubmitRateLimit is the number of submissions allowed per client IP per minute.
	// Zero disables the limiter.
	SubmitRateLimit int `env:"SUBMIT_RATE_LIMIT" envDefault:"30"`

	// ViewIdleTTL is how long an unobserved view is kept after its last change.
	ViewIdleTTL       time.Duration `env:"VIEW_IDLE_TTL" envDefault:"30m"`
	ViewSweepInterval time.Duration `env:"VIEW_SWEEP_INTERVAL" envDefault:"1m"`

	// AllowedOrigins controls HTTP CORS and WebSocket origin validation.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env is optional

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.AllowedOrigins = normalizeOrigins(cfg.AllowedOrigins)
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.ServerPort
}

// normalizeOrigins trims entries and drops empty ones.
// Returns nil (allow-all) if nothing is left.
func normalizeOrigins(raw []string) []string {
	origins := make([]string, 0, len(raw))
	for _, p := range raw {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	if len(origins) == 0 {
		return nil
	}
	return origins
}
