package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting for the server.
type Config struct {
	DatabaseDSN string `env:"DATABASE_DSN,required"`
	RedisURL    string `env:"REDIS_URL" envDefault:"redis://localhost:6379"`

	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`

	JWTSecret string `env:"JWT_SECRET,required"`

	// Token lifetimes in seconds.
	AccessTokenMaxAge  int `env:"ACCESS_TOKEN_MAX_AGE" envDefault:"900"`
	RefreshTokenMaxAge int `env:"REFRESH_TOKEN_MAX_AGE" envDefault:"2592000"`

	// How often the cleanup worker sweeps expired refresh tokens, and how
	// long after expiry a token row is kept around.
	TokenCleanupInterval time.Duration `env:"TOKEN_CLEANUP_INTERVAL" envDefault:"1h"`
	TokenRetention       time.Duration `env:"TOKEN_RETENTION" envDefault:"720h"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from the environment. A .env file is honored in
// development when present.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
