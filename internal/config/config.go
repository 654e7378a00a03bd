// Package config loads server configuration from an optional YAML file with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the server configuration.
type Config struct {
	Addr                   string        `yaml:"addr"`
	Environment            string        `yaml:"environment"`
	SentryDSN              string        `yaml:"sentry_dsn"`
	SessionTTL             time.Duration `yaml:"session_ttl"`
	SessionCleanupInterval time.Duration `yaml:"session_cleanup_interval"`
	ShutdownTimeout        time.Duration `yaml:"shutdown_timeout"`
}

// LoadConfig loads configuration from a YAML file and environment variables.
// Environment variables override YAML values.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		// Defaults
		Addr:                   ":8080",
		Environment:            "production",
		SessionTTL:             30 * time.Minute,
		SessionCleanupInterval: 5 * time.Minute,
		ShutdownTimeout:        15 * time.Second,
	}

	// Load from YAML file if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Override with environment variables
	if v := os.Getenv("LEARNCOACH_ADDR"); v != "" {
		cfg.Addr = v
	}
	if p := os.Getenv("PORT"); p != "" { // Heroku-style
		cfg.Addr = ":" + p
	}
	if v := os.Getenv("LEARNCOACH_ENVIRONMENT"); v != "" {
		cfg.Environment = v
	}
	if v := os.Getenv("SENTRY_DSN"); v != "" {
		cfg.SentryDSN = v
	}
	if v := os.Getenv("LEARNCOACH_SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.SessionTTL = d
		}
	}
	if v := os.Getenv("LEARNCOACH_SESSION_CLEANUP_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.SessionCleanupInterval = d
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that configuration fields are usable.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr is required (set LEARNCOACH_ADDR or yaml)")
	}
	if c.SessionTTL < 0 {
		return errors.New("session_ttl must not be negative")
	}
	if c.SessionCleanupInterval < 10*time.Second {
		return errors.New("session_cleanup_interval must be at least 10 seconds")
	}
	if c.ShutdownTimeout < time.Second {
		return errors.New("shutdown_timeout must be at least 1 second")
	}
	return nil
}
