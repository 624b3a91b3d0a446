// Package config loads filterview tool settings.
//
// Precedence, lowest first: defaults, filterview.yaml, FILTERVIEW_* env
// vars, command-line flags.
package config

import (
	"fmt"
	"log/slog"
	"strings"
)

// Config holds the settings shared by every filterview command.
type Config struct {
	// Format is the output format: text or json.
	Format string `yaml:"format" mapstructure:"format"`

	// Verbose forces debug logging regardless of LogLevel.
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`

	// Database is the SQLite run store path. Empty disables persistence.
	Database string `yaml:"database" mapstructure:"database"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Format:   "text",
		LogLevel: "warn",
	}
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid format %q: must be one of [text json]", c.Format)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Level returns the slog level to log at. Verbose means debug.
func (c *Config) Level() slog.Level {
	if c.Verbose {
		return slog.LevelDebug
	}
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelWarn
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log_level %q: must be one of [debug info warn error]", s)
	}
}
