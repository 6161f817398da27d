// Package prefilter narrows an ordered rule list down to the rules that could
// possibly match an input, before any regular expression is evaluated.
//
// Every rule pattern is expanded into alternation-free variants, the literal
// snippets each variant requires are indexed, and each variant's required set
// is mapped to the rule. At query time the snippets present in the input are
// found once and every rule whose requirements are met is returned.
package prefilter

import (
	"fmt"

	"github.com/praetorian-inc/uaparser/pkg/expander"
)

// Strategy selects how the snippets present in an input are found.
type Strategy string

const (
	// StrategyTrie walks the snippet trie from every input offset.
	StrategyTrie Strategy = "trie"
	// StrategyAhoCorasick scans the input once with an Aho-Corasick automaton
	// built from the registered snippets.
	StrategyAhoCorasick Strategy = "ahocorasick"
	// StrategyNone disables filtering: every rule is a candidate.
	StrategyNone Strategy = "none"
)

// ParseStrategy converts a configuration string to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyTrie, StrategyAhoCorasick, StrategyNone:
		return Strategy(s), nil
	case "":
		return StrategyTrie, nil
	}
	return "", fmt.Errorf("unknown prefilter strategy %q (want trie, ahocorasick or none)", s)
}

// Prefilter maps rule declaration indices (1-based) to their snippet
// requirements for one rule category.
type Prefilter struct {
	strategy Strategy
	index    *Index
	mapping  *Mapping[int]
	keywords *keywordMatcher
	rules    int
	variants int
	frozen   bool
}

// Stats describes the size of a prefilter.
type Stats struct {
	Rules         int `json:"rules"`
	Variants      int `json:"variants"`
	Snippets      int `json:"snippets"`
	Unconstrained int `json:"unconstrained"`
}

// New creates an empty prefilter using strategy.
func New(strategy Strategy) *Prefilter {
	if strategy == "" {
		strategy = StrategyTrie
	}
	return &Prefilter{
		strategy: strategy,
		index:    NewIndex(),
		mapping:  NewMapping[int](),
	}
}

// Strategy returns the snippet lookup strategy in use.
func (pf *Prefilter) Strategy() Strategy {
	return pf.strategy
}

// Add registers pattern as the rule with the given declaration index.
// Indices must be added in increasing order starting at 1. It returns the
// number of variants the pattern expanded to.
func (pf *Prefilter) Add(pattern string, index int) int {
	if pf.frozen {
		panic("prefilter: Add called after Freeze")
	}
	variants := expander.Expand(pattern)
	for _, v := range variants {
		pf.mapping.Add(pf.index.Register(v), index)
	}
	if index > pf.rules {
		pf.rules = index
	}
	pf.variants += len(variants)
	return len(variants)
}

// Freeze ends registration and builds any strategy-specific lookup
// structures. Filter may only be called after Freeze.
func (pf *Prefilter) Freeze() {
	if pf.frozen {
		return
	}
	if pf.strategy == StrategyAhoCorasick {
		pf.keywords = newKeywordMatcher(pf.index.Registered())
	}
	pf.frozen = true
}

// Present returns the ascending ids of the registered snippets found in text.
func (pf *Prefilter) Present(text string) []SnippetID {
	if pf.keywords != nil {
		return pf.keywords.snippetsIn(text)
	}
	return pf.index.SnippetsIn(text)
}

// Filter appends to dst, in ascending order and without duplicates, the
// declaration indices of every rule that could match text.
func (pf *Prefilter) Filter(text string, dst []int) []int {
	if pf.strategy == StrategyNone {
		for i := 1; i <= pf.rules; i++ {
			dst = append(dst, i)
		}
		return dst
	}

	seen := newBitset(pf.rules + 1)
	pf.mapping.Candidates(pf.Present(text), func(index int) {
		seen.set(index)
	})
	// bitset iteration yields declaration order
	seen.each(func(index int) {
		dst = append(dst, index)
	})
	return dst
}

// Snippets returns every indexed snippet keyed by id.
func (pf *Prefilter) Snippets() map[SnippetID]string {
	return pf.index.Registered()
}

// Stats reports the size of the prefilter.
func (pf *Prefilter) Stats() Stats {
	return Stats{
		Rules:         pf.rules,
		Variants:      pf.variants,
		Snippets:      pf.index.Len(),
		Unconstrained: len(pf.mapping.root.values),
	}
}
