package rule

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/praetorian-inc/uaparser/pkg/types"
)

// FilterConfig selects catalogue rules with regex patterns. A pattern selects
// a rule when it matches the rule id ("device.12") or one of the literal
// names the rule reports: its family, brand or model replacement
// ("Spider", "Mobile Safari", "Apple"). Include is applied first, then
// Exclude; an empty Include keeps every rule.
type FilterConfig struct {
	Include []string
	Exclude []string
}

// ParsePatterns splits a comma-separated flag value into trimmed patterns,
// dropping empty ones.
func ParsePatterns(patterns string) []string {
	out := []string{}
	for _, p := range strings.Split(patterns, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Filter returns the rules of one category selected by config, in their
// original order.
func Filter(rules []*types.Rule, config FilterConfig) ([]*types.Rule, error) {
	sel, err := newSelector(config)
	if err != nil {
		return nil, err
	}
	return sel.apply(rules), nil
}

// FilterCatalogue applies config to every category of cat. Relative rule
// order is preserved; the engine renumbers declaration indices.
func FilterCatalogue(cat *types.Catalogue, config FilterConfig) (*types.Catalogue, error) {
	sel, err := newSelector(config)
	if err != nil {
		return nil, err
	}
	return &types.Catalogue{
		Browser: sel.apply(cat.Browser),
		OS:      sel.apply(cat.OS),
		Device:  sel.apply(cat.Device),
	}, nil
}

// selector is a compiled FilterConfig.
type selector struct {
	include []*regexp.Regexp
	exclude []*regexp.Regexp
}

func newSelector(config FilterConfig) (*selector, error) {
	include, err := compilePatterns(config.Include)
	if err != nil {
		return nil, err
	}
	exclude, err := compilePatterns(config.Exclude)
	if err != nil {
		return nil, err
	}
	return &selector{include: include, exclude: exclude}, nil
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

func (s *selector) apply(rules []*types.Rule) []*types.Rule {
	if len(s.include) == 0 && len(s.exclude) == 0 {
		return rules
	}
	out := make([]*types.Rule, 0, len(rules))
	for _, r := range rules {
		if s.keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s *selector) keep(r *types.Rule) bool {
	if len(s.include) > 0 && !selects(s.include, r) {
		return false
	}
	return !selects(s.exclude, r)
}

// selects reports whether any pattern matches the id or a non-empty
// replacement of r.
func selects(patterns []*regexp.Regexp, r *types.Rule) bool {
	names := [...]string{r.ID, r.FamilyReplacement, r.BrandReplacement, r.ModelReplacement}
	for _, re := range patterns {
		for _, name := range names {
			if name != "" && re.MatchString(name) {
				return true
			}
		}
	}
	return false
}
