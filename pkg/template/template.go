// Package template expands replacement strings such as "$1 Mobile" with the
// groups of a rule match.
package template

import (
	"strings"

	"github.com/praetorian-inc/uaparser/pkg/matcher"
)

// Template is a compiled replacement string. "$0" to "$9" refer to match
// groups; a '$' not followed by a digit is literal text. Templates are
// immutable and safe for concurrent use.
type Template struct {
	source string
	// parts alternates literal text and group references: literal, ref,
	// literal, ref, ..., literal. refs[i] sits between parts[i] and parts[i+1].
	parts []string
	refs  []int
}

// Compile parses s into a Template. Compile never fails.
func Compile(s string) *Template {
	t := &Template{source: s}

	start := 0
	for i := 0; i+1 < len(s); i++ {
		if s[i] != '$' || s[i+1] < '0' || s[i+1] > '9' {
			continue
		}
		t.parts = append(t.parts, s[start:i])
		t.refs = append(t.refs, int(s[i+1]-'0'))
		i++
		start = i + 1
	}
	t.parts = append(t.parts, s[start:])
	return t
}

// String returns the template source.
func (t *Template) String() string {
	return t.source
}

// IsEmpty reports whether the template source is empty. An empty template
// means no replacement was configured.
func (t *Template) IsEmpty() bool {
	return t == nil || t.source == ""
}

// Placeholders returns the number of group references in the template.
func (t *Template) Placeholders() int {
	return len(t.refs)
}

// Expand substitutes every placeholder with the matching group of m. Groups
// that do not exist or did not participate expand to "".
func (t *Template) Expand(m *matcher.Match) string {
	if len(t.refs) == 0 {
		return t.source
	}

	var b strings.Builder
	b.Grow(len(t.source) + 16)
	for i, ref := range t.refs {
		b.WriteString(t.parts[i])
		b.WriteString(m.Get(ref))
	}
	b.WriteString(t.parts[len(t.parts)-1])
	return b.String()
}
