// Package matcher wraps the regular expression engine used to verify rule
// candidates and extract their capture groups.
package matcher

import (
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// DefaultTimeout bounds a single match attempt when no timeout is configured.
// It guards against catastrophic backtracking on hostile input.
const DefaultTimeout = 5 * time.Second

// Pattern is a compiled rule expression. It is safe for concurrent use.
type Pattern struct {
	re            *regexp2.Regexp
	source        string
	caseSensitive bool
	groups        int
}

// Compile compiles pattern. The RE2-compatible syntax is tried first and the
// full backtracking syntax (lookarounds, backreferences) is used when RE2
// rejects the pattern. A timeout of zero selects DefaultTimeout.
func Compile(pattern string, caseSensitive bool, timeout time.Duration) (*Pattern, error) {
	opts := regexp2.None
	if !caseSensitive {
		opts |= regexp2.IgnoreCase
	}

	re, err := regexp2.Compile(pattern, opts|regexp2.RE2)
	if err != nil {
		re, err = regexp2.Compile(pattern, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to compile pattern %q: %w", pattern, err)
		}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	re.MatchTimeout = timeout

	return &Pattern{
		re:            re,
		source:        pattern,
		caseSensitive: caseSensitive,
		groups:        len(re.GetGroupNumbers()) - 1,
	}, nil
}

// MustCompile is like Compile but panics on error. It is meant for fixed
// expressions known at build time.
func MustCompile(pattern string, caseSensitive bool) *Pattern {
	p, err := Compile(pattern, caseSensitive, 0)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the source expression.
func (p *Pattern) String() string {
	return p.source
}

// CaseSensitive reports whether the pattern distinguishes letter case.
func (p *Pattern) CaseSensitive() bool {
	return p.caseSensitive
}

// Groups returns the number of capture groups, not counting the whole match.
func (p *Pattern) Groups() int {
	return p.groups
}

// Match searches text for the first occurrence of the pattern, filling m with
// the whole match and up to nine groups. It returns false, and resets m, when
// there is no match or the engine gave up.
func (p *Pattern) Match(text string, m *Match) bool {
	ok, _ := p.MatchErr(text, m)
	return ok
}

// MatchErr is Match but also reports why the engine gave up, e.g. a timeout.
func (p *Pattern) MatchErr(text string, m *Match) (bool, error) {
	m.Reset()
	found, err := p.re.FindStringMatch(text)
	if err != nil {
		return false, err
	}
	if found == nil {
		return false, nil
	}

	groups := found.Groups()
	n := min(len(groups), MaxGroups)
	for i := 0; i < n; i++ {
		if len(groups[i].Captures) > 0 {
			m.groups[i] = groups[i].String()
		}
	}
	m.count = n
	return true, nil
}

// IsTimeout reports whether err is a match timeout from the pattern engine.
func IsTimeout(err error) bool {
	return err != nil && strings.Contains(err.Error(), "match timeout")
}
