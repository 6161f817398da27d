package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/praetorian-inc/uaparser"
	"github.com/praetorian-inc/uaparser/pkg/config"
	"github.com/praetorian-inc/uaparser/pkg/rule"
)

var (
	verbose       bool
	quiet         bool
	regexesPath   string
	prefilterName string
	matchTimeout  time.Duration
	cacheSize     int
	rulesInclude  string
	rulesExclude  string

	settings *config.Config
	logger   *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "uaparser",
	Short: "uaparser - user agent classifier",
	Long: `uaparser classifies user agent strings into browser, operating system
and device identities using a uap-core style regex catalogue.

Defaults come from UAPARSER_* environment variables and an optional .env
file in the working directory. Flags override both.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (errors only)")
	rootCmd.PersistentFlags().StringVar(&regexesPath, "regexes", "", "Path to a uap-core regexes.yaml replacing the built-in catalogue")
	rootCmd.PersistentFlags().StringVar(&prefilterName, "prefilter", "trie", "Snippet prefilter: trie, ahocorasick, none")
	rootCmd.PersistentFlags().DurationVar(&matchTimeout, "match-timeout", 5*time.Second, "Maximum time a single regex evaluation may take")
	rootCmd.PersistentFlags().IntVar(&cacheSize, "cache-size", 0, "Memoize the classifications of this many recent user agents (0 disables)")
	rootCmd.PersistentFlags().StringVar(&rulesInclude, "rules-include", "", "Include rules whose id, family, brand or model matches regex pattern (comma-separated)")
	rootCmd.PersistentFlags().StringVar(&rulesExclude, "rules-exclude", "", "Exclude rules whose id, family, brand or model matches regex pattern (comma-separated)")

	// Add subcommands
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadSettings merges the environment with explicitly set flags and builds
// the process logger.
func loadSettings(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("regexes") {
		cfg.Regexes = regexesPath
	}
	if flags.Changed("prefilter") {
		cfg.Prefilter = prefilterName
	}
	if flags.Changed("match-timeout") {
		cfg.MatchTimeout = matchTimeout
	}
	if flags.Changed("cache-size") {
		cfg.CacheSize = cacheSize
	}
	switch {
	case quiet:
		cfg.LogLevel = "error"
	case verbose:
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	settings = cfg
	logger = cfg.NewLogger(cmd.ErrOrStderr())
	return nil
}

// currentSettings returns the loaded settings, falling back to defaults when
// a command runs without the root pre-run hook.
func currentSettings() *config.Config {
	if settings == nil {
		cfg, err := config.LoadFrom(map[string]string{})
		if err != nil {
			panic(err)
		}
		settings = cfg
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return settings
}

// newParser builds a parser from the current settings and rule filters.
func newParser() (*uaparser.Parser, error) {
	cfg := currentSettings()
	opts := []uaparser.Option{
		uaparser.WithLogger(logger),
		uaparser.WithMatchTimeout(cfg.MatchTimeout),
		uaparser.WithPrefilter(cfg.Strategy()),
		uaparser.WithCacheSize(cfg.CacheSize),
	}
	if cfg.Regexes != "" {
		opts = append(opts, uaparser.WithRegexesFile(cfg.Regexes))
	}
	if rulesInclude != "" || rulesExclude != "" {
		opts = append(opts, uaparser.WithRuleFilter(rule.FilterConfig{
			Include: rule.ParsePatterns(rulesInclude),
			Exclude: rule.ParsePatterns(rulesExclude),
		}))
	}

	p, err := uaparser.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating parser: %w", err)
	}
	return p, nil
}
