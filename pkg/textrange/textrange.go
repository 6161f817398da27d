// Package textrange provides a bounded, non-owning view over a string.
//
// Positions handed out by a Range are absolute offsets into the string the
// range was created from, so sub-ranges can be compared and sliced without
// translating offsets. Go strings are immutable, which means a Range can
// never observe its backing data change underneath it.
package textrange

// Range is an exclusive [start,end) view over s.
type Range struct {
	s     string
	start int
	end   int
}

// New returns a Range covering all of s.
func New(s string) Range {
	return Range{s: s, start: 0, end: len(s)}
}

// Start returns the absolute offset of the first byte in the range.
func (r Range) Start() int {
	return r.start
}

// End returns the absolute offset one past the last byte in the range.
func (r Range) End() int {
	return r.end
}

// Len returns the number of bytes in the range.
func (r Range) Len() int {
	return r.end - r.start
}

// IsEnd reports whether position i is at or past the end of the range.
func (r Range) IsEnd(i int) bool {
	return i >= r.end
}

// At returns the byte at absolute position i. The caller must check IsEnd first.
func (r Range) At(i int) byte {
	return r.s[i]
}

// From returns the sub-range starting at absolute position i.
func (r Range) From(i int) Range {
	if i > r.end {
		i = r.end
	}
	if i < r.start {
		i = r.start
	}
	return Range{s: r.s, start: i, end: r.end}
}

// To returns the sub-range ending (exclusively) at absolute position i.
func (r Range) To(i int) Range {
	if i > r.end {
		i = r.end
	}
	if i < r.start {
		i = r.start
	}
	return Range{s: r.s, start: r.start, end: i}
}

// Slice returns the text between absolute positions i and j.
func (r Range) Slice(i, j int) string {
	return r.s[i:j]
}

// String returns the text covered by the range.
func (r Range) String() string {
	return r.s[r.start:r.end]
}

// Trim returns the range without leading and trailing ASCII whitespace.
func (r Range) Trim() Range {
	start, end := r.start, r.end
	for start < end && isSpace(r.s[start]) {
		start++
	}
	for end > start && isSpace(r.s[end-1]) {
		end--
	}
	return Range{s: r.s, start: start, end: end}
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
