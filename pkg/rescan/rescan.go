// Package rescan holds stateless helpers that understand just enough regular
// expression structure to find block boundaries, quantifiers and alternation
// without parsing the expression.
package rescan

import "github.com/praetorian-inc/uaparser/pkg/textrange"

// ClosingDelimiter finds the delimiter closing the block opened by the '(',
// '[' or '{' at r.Start().
//
// Escapes are honoured. Parentheses nest; brackets and braces do not. A ']'
// directly after '[' is part of the class. alternation is true when a '(' block
// holds a '|' at its own level, and always true for a '[' class.
// ok is false when r does not start with an opening delimiter or the block is
// never closed.
func ClosingDelimiter(r textrange.Range) (pos int, alternation bool, ok bool) {
	s := r.Start()
	if r.IsEnd(s) {
		return -1, false, false
	}

	open := r.At(s)
	var closing byte
	nested := false
	switch open {
	case '(':
		closing = ')'
		nested = true
	case '[':
		closing = ']'
	case '{':
		closing = '}'
	default:
		return -1, false, false
	}
	s++

	level := 0
	if nested {
		level++
	}

	for !r.IsEnd(s) {
		c := r.At(s)
		switch {
		case c == '\\':
			s++
		case c == closing:
			if nested {
				level--
			}
			if level == 0 && !(open == '[' && s-r.Start() == 1) {
				if open == '[' {
					alternation = true
				}
				return s, alternation, true
			}
		case c == open:
			if nested {
				level++
			}
		case open == '(' && c == '|' && level == 1:
			alternation = true
		}
		s++
	}
	return -1, false, false
}

// IsOptionalQuantifier reports whether r starts with a quantifier that allows
// zero repetitions: '?', '*', '{0,...}' or '{,...}'.
func IsOptionalQuantifier(r textrange.Range) bool {
	s := r.Start()
	if r.IsEnd(s) {
		return false
	}
	switch r.At(s) {
	case '?', '*':
		return true
	case '{':
		return !r.IsEnd(s+1) && (r.At(s+1) == '0' || r.At(s+1) == ',')
	}
	return false
}

// HasTopLevelAlternation reports whether r contains a '|' outside of any
// group, character class or escape.
func HasTopLevelAlternation(r textrange.Range) bool {
	s := r.Start()
	level := 0
	escaped := false
	for !r.IsEnd(s) {
		c := r.At(s)
		if !escaped {
			switch c {
			case '(':
				level++
			case ')':
				if level > 0 {
					level--
				}
			case '|':
				if level == 0 {
					return true
				}
			case '[':
				// [a(b|c] is a character class, not a group
				if pos, _, ok := ClosingDelimiter(r.From(s)); ok {
					s = pos
					c = r.At(s)
				}
			}
		}
		escaped = c == '\\' && !escaped
		s++
	}
	return false
}

// NamedGroupEnd reports whether r, starting right after a '(', opens a named
// group: "?P<name>", "?<name>" or "?'name'". pos is the position of the
// character closing the name.
func NamedGroupEnd(r textrange.Range) (pos int, ok bool) {
	s := r.Start()
	if r.IsEnd(s) || r.At(s) != '?' {
		return -1, false
	}
	s++
	if !r.IsEnd(s) && r.At(s) == 'P' {
		s++
	}
	if r.IsEnd(s) {
		return -1, false
	}
	var closing byte
	switch r.At(s) {
	case '<':
		closing = '>'
	case '\'':
		closing = '\''
	default:
		return -1, false
	}
	s++
	if r.IsEnd(s) || r.At(s) == '=' || r.At(s) == '!' {
		// lookbehind, not a name
		return -1, false
	}
	for ; !r.IsEnd(s); s++ {
		if r.At(s) == closing {
			return s, true
		}
	}
	return -1, false
}

// GroupKind classifies the construct opened by a '('.
type GroupKind int

const (
	// GroupMatching is a group whose body must match: (a), (?:a), (?i:a),
	// (?<name>a), (?=a), (?<=a) and (?>a).
	GroupMatching GroupKind = iota
	// GroupNegative is a negative lookaround: (?!a) or (?<!a).
	GroupNegative
	// GroupComment is an inline comment: (?#text).
	GroupComment
	// GroupFlags sets inline options without a body: (?i) or (?-s).
	GroupFlags
	// GroupUnknown is anything else, such as conditionals and balancing
	// groups.
	GroupUnknown
)

// Group describes the syntax opening a group.
type Group struct {
	Kind GroupKind
	// Body is the position of the first byte of the group body. For
	// GroupComment and GroupFlags it is the ')' ending the construct.
	Body int
	// Extended is set when inline options turn on the x flag.
	Extended bool
}

// OpenGroup inspects the syntax after a '('. r starts right after the '('.
func OpenGroup(r textrange.Range) Group {
	s := r.Start()
	if r.IsEnd(s) || r.At(s) != '?' {
		return Group{Kind: GroupMatching, Body: s}
	}
	if end, ok := NamedGroupEnd(r); ok {
		return Group{Kind: GroupMatching, Body: end + 1}
	}
	unknown := Group{Kind: GroupUnknown, Body: s}
	if r.IsEnd(s + 1) {
		return unknown
	}

	switch r.At(s + 1) {
	case ':', '=', '>':
		return Group{Kind: GroupMatching, Body: s + 2}
	case '!':
		return Group{Kind: GroupNegative, Body: s + 2}
	case '#':
		// comments end at the first ')', nothing nests in them
		for p := s + 2; !r.IsEnd(p); p++ {
			if r.At(p) == ')' {
				return Group{Kind: GroupComment, Body: p}
			}
		}
		return unknown
	case '<':
		if !r.IsEnd(s + 2) {
			switch r.At(s + 2) {
			case '=':
				return Group{Kind: GroupMatching, Body: s + 3}
			case '!':
				return Group{Kind: GroupNegative, Body: s + 3}
			}
		}
		return unknown
	}

	extended := false
	enable := true
	for p := s + 1; !r.IsEnd(p); p++ {
		switch r.At(p) {
		case '-':
			enable = false
		case 'i', 'm', 'n', 's':
		case 'x':
			extended = extended || enable
		case ')':
			return Group{Kind: GroupFlags, Body: p, Extended: extended}
		case ':':
			return Group{Kind: GroupMatching, Body: p + 1, Extended: extended}
		default:
			return unknown
		}
	}
	return unknown
}

// Escape inspects the escape sequence whose '\' is at r.Start(). last is the
// position of its final byte, operands included: \x41, \u0041, \012, \cM,
// \k<name> and \p{L} are consumed whole. literal is true when the sequence
// stands for its second byte, as \. and \\ do.
func Escape(r textrange.Range) (last int, literal bool) {
	s := r.Start()
	if r.IsEnd(s + 1) {
		return s, false
	}
	c := r.At(s + 1)
	switch {
	case c >= 0x80:
		return s + 1, false
	case '0' <= c && c <= '9':
		// octal codes and back references
		p := s + 2
		for !r.IsEnd(p) && '0' <= r.At(p) && r.At(p) <= '9' {
			p++
		}
		return p - 1, false
	}

	switch c {
	case 'x':
		if !r.IsEnd(s+2) && r.At(s+2) == '{' {
			return closingByte(r, s+3, '}'), false
		}
		return hexEnd(r, s+2, 2), false
	case 'u':
		return hexEnd(r, s+2, 4), false
	case 'c':
		if r.IsEnd(s + 2) {
			return s + 1, false
		}
		return s + 2, false
	case 'k':
		if !r.IsEnd(s + 2) {
			switch r.At(s + 2) {
			case '<':
				return closingByte(r, s+3, '>'), false
			case '\'':
				return closingByte(r, s+3, '\''), false
			}
		}
		return s + 1, false
	case 'p', 'P':
		if !r.IsEnd(s+2) && r.At(s+2) == '{' {
			return closingByte(r, s+3, '}'), false
		}
		return s + 1, false
	}
	if isAlnum(c) {
		return s + 1, false
	}
	return s + 1, true
}

// hexEnd returns the position of the last of at most n hex digits starting at
// p, or p-1 when there are none.
func hexEnd(r textrange.Range, p, n int) int {
	end := p
	for end < p+n && !r.IsEnd(end) && isHex(r.At(end)) {
		end++
	}
	return end - 1
}

// closingByte returns the position of the first c at or after p, or the last
// position of r when c never occurs.
func closingByte(r textrange.Range, p int, c byte) int {
	for ; !r.IsEnd(p); p++ {
		if r.At(p) == c {
			return p
		}
	}
	return r.End() - 1
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func isAlnum(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
