// Package expander rewrites a regular expression into alternation-free
// variants so that the literal snippets each branch requires can be indexed.
//
// For example "(Something|Other)/\d+" expands to "(Something)/\d+" and
// "(Other)/\d+". Groups whose contents are never required (optional groups,
// negative lookarounds, comments) and constructs it does not know, such as
// conditionals, are kept verbatim. Positive lookarounds, named and
// non-capturing groups are expanded like any other group, keeping their
// opening syntax.
package expander

import (
	"strings"

	"github.com/praetorian-inc/uaparser/pkg/rescan"
	"github.com/praetorian-inc/uaparser/pkg/textrange"
)

// Expand returns every alternation-free variant of pattern. The result is
// never empty: a pattern with nothing to expand comes back unchanged.
func Expand(pattern string) []string {
	var out []string
	expand(textrange.New(pattern), "", nil, &out)
	if len(out) == 0 {
		out = append(out, pattern)
	}
	return out
}

// expand appends to out the variants of view, each prefixed with prefix and
// followed by the variants of the pending suffixes in next (innermost last).
func expand(view textrange.Range, prefix string, next []textrange.Range, out *[]string) {
	if left, right, ok := splitTopLevel(view); ok {
		expand(left, prefix, next, out)
		expand(right, prefix, next, out)
		return
	}

	s := view.Start()
	level := 0
	escaped := false
	for !view.IsEnd(s) {
		c := view.At(s)
		if !escaped {
			switch c {
			case '(':
				level++
				if level != 1 {
					break
				}
				g := rescan.OpenGroup(view.From(s + 1))
				if g.Kind == rescan.GroupComment || g.Kind == rescan.GroupFlags {
					level--
					s = g.Body + 1
					continue
				}
				closing, _, ok := rescan.ClosingDelimiter(view.From(s))
				if !ok {
					// unbalanced, leave the rest as is
					level--
					s++
					continue
				}
				if g.Kind != rescan.GroupMatching ||
					rescan.IsOptionalQuantifier(view.From(closing+1)) {
					s = closing
					continue
				}

				// the group opening syntax stays with the prefix
				inner := g.Body
				var b strings.Builder
				b.Grow(len(prefix) + inner - view.Start())
				b.WriteString(prefix)
				b.WriteString(view.Slice(view.Start(), inner))

				pending := append(next[:len(next):len(next)], view.From(closing))
				expand(view.From(inner).To(closing), b.String(), pending, out)
				return
			case ')':
				if level > 0 {
					level--
				}
			case '[', '{':
				if closing, _, ok := rescan.ClosingDelimiter(view.From(s)); ok {
					s = closing
					continue
				}
			}
		}
		escaped = c == '\\' && !escaped
		s++
	}

	// nothing left to expand in this view
	prefix += view.Slice(view.Start(), view.End())

	if len(next) == 0 {
		*out = append(*out, prefix)
		return
	}
	last := next[len(next)-1]
	expand(last, prefix, next[:len(next)-1], out)
}

// splitTopLevel splits view around its first '|' that is outside of every
// group, class, counted repetition and escape.
func splitTopLevel(view textrange.Range) (left, right textrange.Range, ok bool) {
	s := view.Start()
	level := 0
	escaped := false
	for !view.IsEnd(s) {
		c := view.At(s)
		if !escaped {
			switch c {
			case '(':
				level++
			case ')':
				if level > 0 {
					level--
				}
			case '[', '{':
				if closing, _, found := rescan.ClosingDelimiter(view.From(s)); found {
					s = closing
					continue
				}
			case '|':
				if level == 0 {
					return view.To(s), view.From(s + 1), true
				}
			}
		}
		escaped = c == '\\' && !escaped
		s++
	}
	return textrange.Range{}, textrange.Range{}, false
}
