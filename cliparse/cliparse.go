// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port           int           `env:"PORT" envDefault:"3318"`
	DatabaseURL    string        `env:"DATABASE_URL"`
	DatabaseType   string        `env:"DATABASE_TYPE" envDefault:"sqlite"`
	SessionSecret  string        `env:"SESSION_SECRET"`
	ProviderSecret string        `env:"PROVIDER_SECRET"`
	ProviderIssuer string        `env:"PROVIDER_ISSUER"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"72h"`
	InitialPoints  int64         `env:"INITIAL_POINTS" envDefault:"1000"`
}

// ParseFlags reads .env, then the environment, then CLI flags. Flags win.
func ParseFlags(args []string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid environment: %w", err)
	}

	flags := flag.NewFlagSet("quickly-stake", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	flags.IntVar(&cfg.Port, "p", cfg.Port, "Server port")
	flags.StringVar(&cfg.DatabaseURL, "d", cfg.DatabaseURL, "Database URL")
	flags.StringVar(&cfg.DatabaseType, "t", cfg.DatabaseType, "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	flags.StringVar(&cfg.SessionSecret, "session-secret", cfg.SessionSecret, "Session token secret (prefer env)")
	flags.StringVar(&cfg.ProviderSecret, "provider-secret", cfg.ProviderSecret, "Identity provider assertion secret (prefer env)")
	flags.StringVar(&cfg.ProviderIssuer, "provider-issuer", cfg.ProviderIssuer, "Expected identity provider issuer")
	flags.DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "Session token lifetime")
	flags.Int64Var(&cfg.InitialPoints, "initial-points", cfg.InitialPoints, "Points granted on first login")

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("invalid database type %q (sqlite or postgres)", cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	if cfg.SessionSecret == "" {
		return Config{}, errors.New("SESSION_SECRET required")
	}
	if cfg.ProviderSecret == "" {
		return Config{}, errors.New("PROVIDER_SECRET required")
	}

	if cfg.SessionTTL <= 0 {
		return Config{}, errors.New("session TTL must be positive")
	}
	if cfg.InitialPoints < 0 {
		return Config{}, errors.New("initial points must not be negative")
	}

	return cfg, nil
}
