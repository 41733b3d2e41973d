// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to the backend client, the persisted store and the server via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/taibuivan/bookstore/pkg/query"
)

// Supported values for [Config.PrefsBackend].
const (
	PrefsBackendFile  = "file"
	PrefsBackendRedis = "redis"
)

// # Configuration Schema

// Config holds all runtime configuration for the storefront process.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Bookstore REST backend
	BackendURL string `env:"BACKEND_API_URL" envDefault:"http://localhost:8081/api"`

	// BackendTimeout bounds a single backend call. Zero keeps the transport default.
	BackendTimeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"0s"`

	// Outgoing token bucket shared by every visitor.
	BackendRateLimitRPS   float64 `env:"BACKEND_RATE_LIMIT_RPS"   envDefault:"20"`
	BackendRateLimitBurst int     `env:"BACKEND_RATE_LIMIT_BURST" envDefault:"40"`

	// Persisted store (session token + theme flag)
	PrefsBackend string        `env:"PREFS_BACKEND" envDefault:"file"`
	PrefsPath    string        `env:"PREFS_PATH"    envDefault:"./data/prefs.yaml"`
	PrefsTTL     time.Duration `env:"PREFS_TTL"     envDefault:"0s"`

	// Key-Value Cache (Redis), only needed for the redis prefs backend
	RedisURL string `env:"REDIS_URL"`

	// Visitor cookie signing
	SessionSecret   string `env:"SESSION_SECRET,required"`
	SessionBlockKey string `env:"SESSION_BLOCK_KEY"`

	// Catalog search debounce
	SearchDebounce time.Duration `env:"SEARCH_DEBOUNCE" envDefault:"500ms"`

	// WorkspaceIdleTTL is how long an untouched visitor workspace stays in memory.
	WorkspaceIdleTTL time.Duration `env:"WORKSPACE_IDLE_TTL" envDefault:"30m"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct and validates it.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate enforces the cross-field rules that struct tags cannot express.
func (c *Config) Validate() error {
	var problems []string

	switch c.PrefsBackend {
	case PrefsBackendFile:
		if strings.TrimSpace(c.PrefsPath) == "" {
			problems = append(problems, "PREFS_PATH is required for the file prefs backend")
		}
	case PrefsBackendRedis:
		if strings.TrimSpace(c.RedisURL) == "" {
			problems = append(problems, "REDIS_URL is required for the redis prefs backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("PREFS_BACKEND must be %q or %q", PrefsBackendFile, PrefsBackendRedis))
	}

	if len(c.SessionSecret) < 32 {
		problems = append(problems, "SESSION_SECRET must be at least 32 bytes")
	}

	if n := len(c.SessionBlockKey); n != 0 && n != 16 && n != 24 && n != 32 {
		problems = append(problems, "SESSION_BLOCK_KEY must be 16, 24 or 32 bytes")
	}

	if strings.TrimSpace(c.BackendURL) == "" {
		problems = append(problems, "BACKEND_API_URL must not be empty")
	}

	if c.BackendRateLimitRPS <= 0 || c.BackendRateLimitBurst <= 0 {
		problems = append(problems, "BACKEND_RATE_LIMIT_RPS and BACKEND_RATE_LIMIT_BURST must be positive")
	}

	if c.SearchDebounce < 0 || c.BackendTimeout < 0 || c.PrefsTTL < 0 {
		problems = append(problems, "durations must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("config: %w", errors.New(strings.Join(problems, "; ")))
	}
	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins returns the comma separated EXTRA_ORIGINS as a trimmed list.
func (c *Config) AllowedOrigins() []string {
	return query.StringSlice(c.ExtraOrigins)
}
