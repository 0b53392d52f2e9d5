// Package config reads process configuration for the rally CLI from the
// environment and an optional .env file. Command-line flags override it.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/roach88/rally/internal/rules"
)

// Environment variables.
const (
	EnvRules    = "RALLY_RULES"     // path to a CUE rules file
	EnvFormat   = "RALLY_FORMAT"    // "text" or "json"
	EnvLogLevel = "RALLY_LOG_LEVEL" // debug, info, warn, error
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config stores the process configuration.
type Config struct {
	RulesPath string
	Format    string
	LogLevel  log.Level
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Format:   FormatText,
		LogLevel: log.WarnLevel,
	}
}

// Load reads the given .env files into the environment, then builds the
// configuration from it. Without files, ./.env is read if it exists.
// Variables already set in the environment win over file values.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		// For local use; a missing .env is normal.
		_ = godotenv.Load()
	} else if err := godotenv.Load(files...); err != nil {
		return Config{}, fmt.Errorf("load env files: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only.
func FromEnv() (Config, error) {
	cfg := Default()

	if v, ok := os.LookupEnv(EnvRules); ok {
		cfg.RulesPath = strings.TrimSpace(v)
	}

	if v, ok := os.LookupEnv(EnvFormat); ok && v != "" {
		f, err := ParseFormat(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvFormat, err)
		}
		cfg.Format = f
	}

	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(v)))
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
		cfg.LogLevel = lvl
	}

	return cfg, nil
}

// ParseFormat checks an output format name.
func ParseFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case FormatText, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (must be %q or %q)", s, FormatText, FormatJSON)
	}
}

// Rules loads the configured rules file, or the defaults when none is set.
func (c Config) Rules() (rules.Rules, error) {
	if c.RulesPath == "" {
		return rules.Default(), nil
	}
	return rules.LoadFile(c.RulesPath)
}
