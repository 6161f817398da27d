package rescan

import (
	"testing"

	"github.com/praetorian-inc/uaparser/pkg/textrange"
	"github.com/stretchr/testify/assert"
)

func TestClosingDelimiter(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantPos int
		wantAlt bool
		wantOK  bool
	}{
		{name: "simple group", input: "(abc)d", wantPos: 4, wantOK: true},
		{name: "nested group", input: "(a(b)c)d", wantPos: 6, wantOK: true},
		{name: "alternation at own level", input: "(a|b)", wantPos: 4, wantAlt: true, wantOK: true},
		{name: "alternation only in nested group", input: "(x(a|b))", wantPos: 7, wantOK: true},
		{name: "escaped paren", input: `(a\)b)`, wantPos: 5, wantOK: true},
		{name: "character class", input: "[abc]x", wantPos: 4, wantAlt: true, wantOK: true},
		{name: "leading bracket in class", input: "[]a]", wantPos: 3, wantAlt: true, wantOK: true},
		{name: "counted repetition", input: "{1,3}", wantPos: 4, wantOK: true},
		{name: "unbalanced", input: "(abc", wantPos: -1},
		{name: "not a block", input: "abc", wantPos: -1},
		{name: "empty", input: "", wantPos: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, alt, ok := ClosingDelimiter(textrange.New(tt.input))
			assert.Equal(t, tt.wantPos, pos)
			assert.Equal(t, tt.wantAlt, alt)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestClosingDelimiter_SubRange(t *testing.T) {
	r := textrange.New("ab(cd)ef")

	pos, _, ok := ClosingDelimiter(r.From(2))
	assert.True(t, ok)
	assert.Equal(t, 5, pos)

	// closing delimiter outside the bounded view is not found
	_, _, ok = ClosingDelimiter(r.From(2).To(4))
	assert.False(t, ok)
}

func TestIsOptionalQuantifier(t *testing.T) {
	tests := map[string]bool{
		"?":     true,
		"*":     true,
		"{0,2}": true,
		"{,2}":  true,
		"{1,2}": false,
		"{":     false,
		"+":     false,
		"a":     false,
		"":      false,
	}
	for input, want := range tests {
		assert.Equal(t, want, IsOptionalQuantifier(textrange.New(input)), "input %q", input)
	}
}

func TestOpenGroup(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		kind     GroupKind
		body     int
		extended bool
	}{
		{name: "capturing", input: "Mobile)", kind: GroupMatching, body: 0},
		{name: "non capturing", input: "?:Mobile)", kind: GroupMatching, body: 2},
		{name: "positive lookahead", input: "?=Safari)", kind: GroupMatching, body: 2},
		{name: "positive lookbehind", input: "?<=Version/)", kind: GroupMatching, body: 3},
		{name: "atomic", input: "?>abc)", kind: GroupMatching, body: 2},
		{name: "named", input: "?<major>\\d+)", kind: GroupMatching, body: 8},
		{name: "python named", input: "?P<major>\\d+)", kind: GroupMatching, body: 9},
		{name: "negative lookahead", input: "?!Edge)", kind: GroupNegative, body: 2},
		{name: "negative lookbehind", input: "?<!Mobile )", kind: GroupNegative, body: 3},
		{name: "comment", input: "?#a (note)abc", kind: GroupComment, body: 9},
		{name: "unterminated comment", input: "?#abc", kind: GroupUnknown, body: 0},
		{name: "inline flags", input: "?i)Kindle", kind: GroupFlags, body: 2},
		{name: "scoped flags", input: "?i:Kindle)", kind: GroupMatching, body: 3},
		{name: "extended flags", input: "?x) a b", kind: GroupFlags, body: 2, extended: true},
		{name: "extended scoped", input: "?ix:a b)", kind: GroupMatching, body: 4, extended: true},
		{name: "extended turned off", input: "?-x)ab", kind: GroupFlags, body: 3},
		{name: "conditional", input: "?(1)a|b)", kind: GroupUnknown, body: 0},
		{name: "balancing group", input: "?<-open>x)", kind: GroupMatching, body: 8},
		{name: "bare question mark", input: "?", kind: GroupUnknown, body: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := OpenGroup(textrange.New(tt.input))
			assert.Equal(t, tt.kind, g.Kind)
			assert.Equal(t, tt.body, g.Body)
			assert.Equal(t, tt.extended, g.Extended)
		})
	}
}

func TestEscape(t *testing.T) {
	tests := []struct {
		input   string
		last    int
		literal bool
	}{
		{input: `\.5`, last: 1, literal: true},
		{input: `\\5`, last: 1, literal: true},
		{input: `\/`, last: 1, literal: true},
		{input: `\d+`, last: 1},
		{input: `\x41ndroid`, last: 3},
		{input: `\x{41}ndroid`, last: 5},
		{input: `\u0041ndroid`, last: 5},
		{input: `\u41`, last: 3},
		{input: `\012abc`, last: 3},
		{input: `\1abc`, last: 1},
		{input: `\cMabc`, last: 2},
		{input: `\k<name>abc`, last: 7},
		{input: `\k'name'abc`, last: 7},
		{input: `\p{Lu}abc`, last: 5},
		{input: `\Pabc`, last: 1},
		{input: `\`, last: 0},
	}
	for _, tt := range tests {
		last, literal := Escape(textrange.New(tt.input))
		assert.Equal(t, tt.last, last, "input %q", tt.input)
		assert.Equal(t, tt.literal, literal, "input %q", tt.input)
	}
}

func TestHasTopLevelAlternation(t *testing.T) {
	tests := map[string]bool{
		"a|b":        true,
		"(a|b)":      false,
		"(a|b)|c":    true,
		`a\|b`:       false,
		"[a|b]":      false,
		"x[(|]y":     false,
		"abc":        false,
		"":           false,
		`\\|b`:       true,
		"(?:a|b)c|d": true,
	}
	for input, want := range tests {
		assert.Equal(t, want, HasTopLevelAlternation(textrange.New(input)), "input %q", input)
	}
}

func TestNamedGroupEnd(t *testing.T) {
	tests := []struct {
		input string
		pos   int
		ok    bool
	}{
		{input: "?P<major>\\d+)", pos: 8, ok: true},
		{input: "?<minor>\\d+)", pos: 7, ok: true},
		{input: "?'patch'\\d+)", pos: 7, ok: true},
		{input: "?<=Mobile)", pos: -1},
		{input: "?<!Mobile)", pos: -1},
		{input: "?:Mobile)", pos: -1},
		{input: "Mobile)", pos: -1},
		{input: "?<unterminated", pos: -1},
		{input: "", pos: -1},
	}
	for _, tt := range tests {
		pos, ok := NamedGroupEnd(textrange.New(tt.input))
		assert.Equal(t, tt.ok, ok, "input %q", tt.input)
		assert.Equal(t, tt.pos, pos, "input %q", tt.input)
	}
}
