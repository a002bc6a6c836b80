// Package config loads server settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

const minSecretLength = 32

// Config holds runtime settings for the server.
type Config struct {
	Port         string        `env:"PORT,default=5000"`
	DatabasePath string        `env:"DATABASE_PATH,default=taskflow.db"`
	JWTSecret    string        `env:"JWT_SECRET"`
	TokenTTL     time.Duration `env:"TOKEN_TTL,default=168h"`
	BcryptCost   int           `env:"BCRYPT_COST,default=12"`
	StoreTimeout time.Duration `env:"STORE_TIMEOUT,default=5s"`
	CORSOrigins  string        `env:"CORS_ORIGINS,default=*"`

	// Auth endpoints are limited per client IP.
	AuthRatePerSec float64 `env:"AUTH_RATE_PER_SEC,default=1"`
	AuthRateBurst  int     `env:"AUTH_RATE_BURST,default=10"`
}

// Load reads envFile into the process environment (existing variables win;
// a missing file is not an error), decodes the environment into a Config
// and validates it.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := &Config{}
	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be expressed as struct tags.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is required")
	}
	if len(c.JWTSecret) < minSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters for HMAC-SHA256 security", minSecretLength)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 14 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 14, got %d", c.BcryptCost)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive, got %s", c.StoreTimeout)
	}
	if c.AuthRateBurst < 1 {
		return fmt.Errorf("AUTH_RATE_BURST must be at least 1, got %d", c.AuthRateBurst)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// AllowedOrigins splits CORSOrigins on commas.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
