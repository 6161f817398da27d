// Package uaparser classifies user agent strings into browser, operating
// system and device identities using a uap-core style regex catalogue.
//
// # Basic Usage
//
// Create a parser with the built-in catalogue and classify a user agent:
//
//	parser, err := uaparser.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ua := parser.Parse("Mozilla/5.0 (iPhone; CPU iPhone OS 5_1_1 like Mac OS X) ...")
//	fmt.Println(ua.Browser.Family, ua.OS.String(), ua.Device.Model)
//
// # Custom Catalogues
//
// Load a full uap-core regexes.yaml instead of the built-in subset:
//
//	parser, err := uaparser.New(uaparser.WithRegexesFile("/path/to/regexes.yaml"))
//
// A Parser is immutable after construction and safe for concurrent use.
package uaparser

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/praetorian-inc/uaparser/pkg/cache"
	"github.com/praetorian-inc/uaparser/pkg/devicetype"
	"github.com/praetorian-inc/uaparser/pkg/engine"
	"github.com/praetorian-inc/uaparser/pkg/prefilter"
	"github.com/praetorian-inc/uaparser/pkg/rule"
	"github.com/praetorian-inc/uaparser/pkg/types"
)

// Re-export commonly used types for convenience.
// Users can import just "github.com/praetorian-inc/uaparser" without subpackages.
type (
	// UserAgent is the full classification of a user agent string.
	UserAgent = types.UserAgent

	// Agent is a browser or operating system identity.
	Agent = types.Agent

	// Device is a device identity.
	Device = types.Device

	// DeviceType is the coarse form factor of a device.
	DeviceType = types.DeviceType

	// Rule is one catalogue entry.
	Rule = types.Rule

	// Catalogue is the ordered rule list of every category.
	Catalogue = types.Catalogue
)

// Re-export device type constants.
const (
	DeviceUnknown = types.DeviceUnknown
	DeviceDesktop = types.DeviceDesktop
	DeviceMobile  = types.DeviceMobile
	DeviceTablet  = types.DeviceTablet
)

// Other is the family reported for a category no rule matched.
const Other = types.Other

// Parser classifies user agent strings.
type Parser struct {
	store *engine.Store
	cache *cache.Cache
}

// parserConfig holds parser configuration.
type parserConfig struct {
	catalogue    *types.Catalogue
	regexesFile  string
	filter       *rule.FilterConfig
	logger       *slog.Logger
	matchTimeout time.Duration
	strategy     prefilter.Strategy
	cacheSize    int
}

// Option configures a Parser.
type Option func(*parserConfig)

// WithCatalogue uses cat instead of the built-in catalogue.
func WithCatalogue(cat *Catalogue) Option {
	return func(c *parserConfig) {
		c.catalogue = cat
	}
}

// WithRegexesFile loads the catalogue from a uap-core style YAML file.
func WithRegexesFile(path string) Option {
	return func(c *parserConfig) {
		c.regexesFile = path
	}
}

// WithRuleFilter keeps only the rules whose ids pass cfg.
func WithRuleFilter(cfg rule.FilterConfig) Option {
	return func(c *parserConfig) {
		c.filter = &cfg
	}
}

// WithLogger sets the logger for build statistics and pattern engine
// warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *parserConfig) {
		c.logger = logger
	}
}

// WithMatchTimeout bounds a single pattern evaluation.
func WithMatchTimeout(d time.Duration) Option {
	return func(c *parserConfig) {
		c.matchTimeout = d
	}
}

// WithPrefilter selects the snippet lookup strategy: "trie" (default),
// "ahocorasick" or "none".
func WithPrefilter(s prefilter.Strategy) Option {
	return func(c *parserConfig) {
		c.strategy = s
	}
}

// WithCacheSize memoizes the classifications of the n most recently parsed
// user agents. Zero disables the cache.
func WithCacheSize(n int) Option {
	return func(c *parserConfig) {
		c.cacheSize = n
	}
}

// New creates a Parser. Without options it uses the built-in catalogue.
func New(opts ...Option) (*Parser, error) {
	cfg := &parserConfig{strategy: prefilter.StrategyTrie}
	for _, opt := range opts {
		opt(cfg)
	}

	cat := cfg.catalogue
	if cat == nil {
		var err error
		if cfg.regexesFile != "" {
			cat, err = LoadCatalogueFile(cfg.regexesFile)
		} else {
			cat, err = LoadBuiltinCatalogue()
		}
		if err != nil {
			return nil, fmt.Errorf("loading catalogue: %w", err)
		}
	}
	if cfg.filter != nil {
		var err error
		if cat, err = rule.FilterCatalogue(cat, *cfg.filter); err != nil {
			return nil, fmt.Errorf("filtering rules: %w", err)
		}
	}

	s, err := engine.Open(cat,
		engine.WithLogger(cfg.logger),
		engine.WithMatchTimeout(cfg.matchTimeout),
		engine.WithStrategy(cfg.strategy))
	if err != nil {
		return nil, err
	}
	p := &Parser{store: s}
	if cfg.cacheSize > 0 {
		if p.cache, err = cache.New(cfg.cacheSize); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Parse classifies ua in every category.
func (p *Parser) Parse(ua string) UserAgent {
	if p.cache != nil {
		return p.cache.GetOrParse(ua, p.store.Parse)
	}
	return p.store.Parse(ua)
}

// ParseBrowser classifies the browser of ua.
func (p *Parser) ParseBrowser(ua string) Agent {
	return p.store.ParseBrowser(ua)
}

// ParseOS classifies the operating system of ua.
func (p *Parser) ParseOS(ua string) Agent {
	return p.store.ParseOS(ua)
}

// ParseDevice classifies the device of ua.
func (p *Parser) ParseDevice(ua string) Device {
	return p.store.ParseDevice(ua)
}

// DeviceType reports the coarse form factor of ua. It uses fixed heuristics
// and does not consult the catalogue.
func (p *Parser) DeviceType(ua string) DeviceType {
	return devicetype.Classify(ua)
}

// RuleCount returns the number of rules loaded across categories.
func (p *Parser) RuleCount() int {
	return p.store.RuleCount()
}

// Explain classifies ua and lists, per category, the rules considered and
// the rule that matched.
func (p *Parser) Explain(ua string) engine.Explanation {
	return p.store.Explain(ua)
}

// CacheStats reports classification cache counters. ok is false when the
// parser was built without a cache.
func (p *Parser) CacheStats() (stats cache.Stats, ok bool) {
	if p.cache == nil {
		return cache.Stats{}, false
	}
	return p.cache.Stats(), true
}

// Engine exposes the underlying rule store for introspection.
func (p *Parser) Engine() *engine.Store {
	return p.store
}

// LoadCatalogueFile loads a catalogue from a uap-core style YAML file.
func LoadCatalogueFile(path string) (*Catalogue, error) {
	return rule.NewLoader().LoadCatalogueFile(path)
}

// LoadBuiltinCatalogue returns the built-in catalogue.
// This can be used to inspect available rules or create a subset.
func LoadBuiltinCatalogue() (*Catalogue, error) {
	return rule.NewLoader().LoadBuiltinCatalogue()
}
