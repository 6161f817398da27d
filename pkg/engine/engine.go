// Package engine classifies user agent strings against an ordered rule
// catalogue.
//
// Each category (browser, OS, device) is compiled into a Table whose
// prefilter narrows the catalogue to the few rules that could match an input
// before any pattern is evaluated. Results are identical to trying every rule
// in declaration order.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/praetorian-inc/uaparser/pkg/matcher"
	"github.com/praetorian-inc/uaparser/pkg/prefilter"
	"github.com/praetorian-inc/uaparser/pkg/types"
)

// Store holds the compiled tables of the three categories. It is built once
// by Open and is afterwards read-only and safe for concurrent use.
type Store struct {
	browser *Table
	os      *Table
	device  *Table
	logger  *slog.Logger
}

type config struct {
	logger       *slog.Logger
	matchTimeout time.Duration
	strategy     prefilter.Strategy
}

// Option configures Open.
type Option func(*config)

// WithLogger sets the logger used for build statistics and pattern engine
// warnings. By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMatchTimeout bounds a single pattern evaluation. A rule that times out
// is treated as not matching. Zero selects matcher.DefaultTimeout.
func WithMatchTimeout(d time.Duration) Option {
	return func(c *config) {
		c.matchTimeout = d
	}
}

// WithStrategy selects how snippets are located in inputs. StrategyNone
// disables the prefilter and evaluates every rule.
func WithStrategy(s prefilter.Strategy) Option {
	return func(c *config) {
		c.strategy = s
	}
}

// Open compiles and indexes every rule of cat. Any invalid rule fails the
// whole construction.
func Open(cat *types.Catalogue, opts ...Option) (*Store, error) {
	if cat == nil {
		return nil, errors.New("nil catalogue")
	}

	cfg := &config{
		logger:   slog.New(slog.DiscardHandler),
		strategy: prefilter.StrategyTrie,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if _, err := prefilter.ParseStrategy(string(cfg.strategy)); err != nil {
		return nil, err
	}

	s := &Store{logger: cfg.logger}
	for _, category := range types.Categories {
		t, err := newTable(category, cat.Rules(category), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s rules: %w", category, err)
		}
		stats := t.Stats()
		cfg.logger.Debug("built rule table",
			"category", category,
			"rules", stats.Rules,
			"variants", stats.Variants,
			"snippets", stats.Snippets,
			"unconstrained", stats.Unconstrained,
			"strategy", stats.Strategy,
			"duration", stats.BuildTime)

		switch category {
		case types.CategoryBrowser:
			s.browser = t
		case types.CategoryOS:
			s.os = t
		case types.CategoryDevice:
			s.device = t
		}
	}
	return s, nil
}

// Table returns the table of category c, or nil for an unknown category.
func (s *Store) Table(c types.Category) *Table {
	switch c {
	case types.CategoryBrowser:
		return s.browser
	case types.CategoryOS:
		return s.os
	case types.CategoryDevice:
		return s.device
	}
	return nil
}

// RuleCount returns the total number of rules across categories.
func (s *Store) RuleCount() int {
	return s.browser.Len() + s.os.Len() + s.device.Len()
}

// Parse classifies ua in every category.
func (s *Store) Parse(ua string) types.UserAgent {
	var m matcher.Match
	return types.UserAgent{
		Device:  s.parseDevice(ua, &m),
		OS:      s.parseOS(ua, &m),
		Browser: s.parseBrowser(ua, &m),
	}
}

// ParseBrowser classifies the browser of ua.
func (s *Store) ParseBrowser(ua string) types.Agent {
	var m matcher.Match
	return s.parseBrowser(ua, &m)
}

// ParseOS classifies the operating system of ua.
func (s *Store) ParseOS(ua string) types.Agent {
	var m matcher.Match
	return s.parseOS(ua, &m)
}

// ParseDevice classifies the device of ua.
func (s *Store) ParseDevice(ua string) types.Device {
	var m matcher.Match
	return s.parseDevice(ua, &m)
}

func (s *Store) parseBrowser(ua string, m *matcher.Match) types.Agent {
	if e := s.browser.lookup(ua, m); e != nil {
		return e.agent(m, false)
	}
	return types.UnknownAgent()
}

func (s *Store) parseOS(ua string, m *matcher.Match) types.Agent {
	if e := s.os.lookup(ua, m); e != nil {
		return e.agent(m, true)
	}
	return types.UnknownAgent()
}

func (s *Store) parseDevice(ua string, m *matcher.Match) types.Device {
	if e := s.device.lookup(ua, m); e != nil {
		return e.device(m)
	}
	return types.UnknownDevice()
}

// Verdict is how one category of an input was decided.
type Verdict struct {
	Category   types.Category `json:"category"`
	Candidates []string       `json:"candidates"`
	RuleID     string         `json:"rule_id,omitempty"`
	Pattern    string         `json:"pattern,omitempty"`
}

// Explanation lists, per category, the rules the prefilter kept and the rule
// that matched.
type Explanation struct {
	UserAgent types.UserAgent `json:"user_agent"`
	Verdicts  []Verdict       `json:"verdicts"`
}

// Explain classifies ua and reports which rules were considered.
func (s *Store) Explain(ua string) Explanation {
	out := Explanation{UserAgent: s.Parse(ua)}
	for _, c := range types.Categories {
		t := s.Table(c)
		v := Verdict{Category: c, Candidates: []string{}}
		for _, index := range t.Candidates(ua) {
			v.Candidates = append(v.Candidates, t.entries[index-1].rule.ID)
		}
		var m matcher.Match
		if r := t.Lookup(ua, &m); r != nil {
			v.RuleID = r.ID
			v.Pattern = r.Pattern
		}
		out.Verdicts = append(out.Verdicts, v)
	}
	return out
}

// Stats reports the size of every table.
func (s *Store) Stats() []TableStats {
	return []TableStats{s.browser.Stats(), s.os.Stats(), s.device.Stats()}
}
