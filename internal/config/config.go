// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads clubportal settings from CLUB_* environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Document store backends.
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"CLUB_DB_PATH" envDefault:"./data/clubportal.db"`
	SessionSecret string `env:"CLUB_SESSION_SECRET,required"`
	ServerHost    string `env:"CLUB_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"CLUB_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"CLUB_ENV" envDefault:"development"`
	LogLevel      string `env:"CLUB_LOG_LEVEL" envDefault:"info"`
	LogFormat     string `env:"CLUB_LOG_FORMAT" envDefault:"text"`

	// Document store
	Store       string `env:"CLUB_STORE" envDefault:"sqlite"`
	RedisURL    string `env:"CLUB_REDIS_URL"`
	RedisPrefix string `env:"CLUB_REDIS_PREFIX" envDefault:"clubportal:"`

	// Content cache
	CacheUserTTL  time.Duration `env:"CLUB_CACHE_USER_TTL" envDefault:"5m"`
	CacheAdminTTL time.Duration `env:"CLUB_CACHE_ADMIN_TTL" envDefault:"2m"`

	// API rate limit per client IP, requests per minute (0 disables)
	APIRateLimit int `env:"CLUB_API_RATE_LIMIT" envDefault:"120"`

	SchedulerEnabled bool `env:"CLUB_SCHEDULER_ENABLED" envDefault:"true"`
	DoSeed           bool `env:"CLUB_SEED" envDefault:"false"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedis reports whether documents are stored in Redis.
func (c Config) UseRedis() bool {
	return c.Store == StoreRedis
}

// SlogLevel maps LogLevel to a slog level. Unknown values mean info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("CLUB_SESSION_SECRET has low character diversity; "+
			"consider generating a random secret with: openssl rand -base64 32",
			"category", "config")
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("CLUB_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(c.SessionSecret))
	}
	for _, weak := range knownWeakSecrets {
		if c.SessionSecret == weak {
			return fmt.Errorf("CLUB_SESSION_SECRET is a known default value and must not be used")
		}
	}

	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	switch c.Store {
	case StoreSQLite:
	case StoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("CLUB_REDIS_URL is required when CLUB_STORE=%s", StoreRedis)
		}
	default:
		return fmt.Errorf("CLUB_STORE must be %q or %q, got %q", StoreSQLite, StoreRedis, c.Store)
	}

	if c.CacheUserTTL <= 0 || c.CacheAdminTTL <= 0 {
		return fmt.Errorf("cache TTLs must be positive, got user=%s admin=%s", c.CacheUserTTL, c.CacheAdminTTL)
	}
	if c.APIRateLimit < 0 {
		return fmt.Errorf("CLUB_API_RATE_LIMIT must not be negative, got %d", c.APIRateLimit)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("CLUB_LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	classes := []string{
		"abcdefghijklmnopqrstuvwxyz",
		"ABCDEFGHIJKLMNOPQRSTUVWXYZ",
		"0123456789",
		"!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\",
	}
	n := 0
	for _, class := range classes {
		if strings.ContainsAny(s, class) {
			n++
		}
	}
	return n >= 3
}
