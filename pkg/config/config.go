// Package config reads process-wide defaults from the environment and an
// optional .env file. Command line flags override these values.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/praetorian-inc/uaparser/pkg/prefilter"
)

// Config holds the UAPARSER_* settings.
type Config struct {
	// Regexes is a catalogue file replacing the built-in one.
	Regexes      string        `env:"UAPARSER_REGEXES"`
	Workers      int           `env:"UAPARSER_WORKERS" envDefault:"0"`
	MatchTimeout time.Duration `env:"UAPARSER_MATCH_TIMEOUT" envDefault:"5s"`
	Prefilter    string        `env:"UAPARSER_PREFILTER" envDefault:"trie"`
	// CacheSize is the number of classifications memoized. Zero disables
	// the cache.
	CacheSize int `env:"UAPARSER_CACHE_SIZE" envDefault:"0"`
	// Output is the result store path used by batch and report.
	Output    string `env:"UAPARSER_OUTPUT" envDefault:"uaparser.db"`
	LogLevel  string `env:"UAPARSER_LOG_LEVEL" envDefault:"warn"`
	LogFormat string `env:"UAPARSER_LOG_FORMAT" envDefault:"text"`
}

// Load reads .env files (missing files are ignored) and then the process
// environment. Variables already set in the environment win over .env.
func Load(dotenv ...string) (*Config, error) {
	if err := godotenv.Load(dotenv...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	return parse(env.Options{})
}

// LoadFrom reads the configuration from environ only.
func LoadFrom(environ map[string]string) (*Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (*Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values the environment parser cannot.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("UAPARSER_WORKERS must not be negative")
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("UAPARSER_CACHE_SIZE must not be negative")
	}
	if c.MatchTimeout < 0 {
		return fmt.Errorf("UAPARSER_MATCH_TIMEOUT must not be negative")
	}
	if _, err := prefilter.ParseStrategy(c.Prefilter); err != nil {
		return err
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (want text or json)", c.LogFormat)
	}
	return nil
}

// Strategy returns the configured prefilter strategy.
func (c *Config) Strategy() prefilter.Strategy {
	s, _ := prefilter.ParseStrategy(c.Prefilter)
	return s
}

// ParseLevel converts a level name such as "debug" or "WARN" to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

// NewLogger builds the logger described by c writing to w.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
