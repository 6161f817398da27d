package prefilter

import (
	"slices"
	"unicode/utf8"

	"github.com/praetorian-inc/uaparser/pkg/rescan"
	"github.com/praetorian-inc/uaparser/pkg/textrange"
)

// SnippetID identifies a literal snippet within one Index. Ids start at 1 and
// are only meaningful for the Index that assigned them.
type SnippetID uint32

// minSnippetLen is the shortest literal run that gets indexed.
const minSnippetLen = 3

// Index records the mandatory literal snippets of regular expressions and
// finds which of them occur in an input text.
//
// For example in "(a)?(bc)+.* /", both "bc" and " /" must be present in the
// input for the expression to match, while "a" is optional. Snippets live in a
// byte trie shared by every registered expression, so looking up all snippets
// of a text costs O(len(text) * longest snippet) regardless of how many
// expressions were registered.
//
// Register must not be called concurrently with anything else. Once
// registration is over, SnippetsIn is safe for concurrent use.
type Index struct {
	nodes []trieNode
	maxID SnippetID
}

// trieNode is one byte-keyed trie level. Children and parent are indices into
// Index.nodes; 0 means "none" for children since the root is never a child.
type trieNode struct {
	next   [256]int32
	parent int32
	id     SnippetID
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{nodes: make([]trieNode, 1, 64)}
}

// Len returns the number of distinct snippets registered so far.
func (x *Index) Len() int {
	return int(x.maxID)
}

// Register indexes the mandatory snippets of an alternation-free expression
// and returns their ids in ascending order. An empty result means no literal
// constraint could be derived and the expression is always a candidate: this
// is the case for extended mode (?x), conditionals and unbalanced groups.
func (x *Index) Register(expression string) []SnippetID {
	view := textrange.New(expression)
	if rescan.HasTopLevelAlternation(view) {
		// a|b requires neither a nor b
		return nil
	}

	var set idSet
	node := int32(-1)
	depth := 0
	extend := func(c byte) {
		if node < 0 {
			node = 0
			depth = 0
		}
		node = x.child(node, fold(c))
		depth++
	}
	endRun := func(s int) {
		if node < 0 {
			return
		}
		if rescan.IsOptionalQuantifier(view.From(s)) {
			// a? and a* do not require a
			depth--
			node = x.nodes[node].parent
		}
		x.registerSnippet(depth, node, &set)
		node = -1
	}

	for s := 0; !view.IsEnd(s); s++ {
		c := expression[s]
		switch {
		case c == '\\':
			last, literal := rescan.Escape(view.From(s))
			if literal {
				extend(expression[last])
			} else {
				// \d, \w, \x41 ... are not the letters they are spelled with
				endRun(s)
			}
			s = last
		case c == '(':
			endRun(s)
			next, ok := enterGroup(view, s)
			if !ok {
				return nil
			}
			s = next
		case c == '[' || c == '{':
			endRun(s)
			if closing, _, ok := rescan.ClosingDelimiter(view.From(s)); ok {
				s = closing
			}
		case isSnippetChar(c):
			extend(c)
		default:
			endRun(s)
		}
	}
	endRun(len(expression))

	return set.sorted()
}

// enterGroup handles the group opened by the '(' at s and returns where the
// scan goes on from: the ')' closing the group when nothing inside it is
// required, the byte before its body otherwise. ok is false when the group
// leaves the whole expression unconstrained.
//
// Nothing is required inside optional groups (a)? (b)* (a){0,}, groups with
// alternatives (ab|ba), negative lookarounds (?!a) (?<!a), comments and
// option settings.
func enterGroup(view textrange.Range, s int) (next int, ok bool) {
	g := rescan.OpenGroup(view.From(s + 1))
	switch {
	case g.Kind == rescan.GroupUnknown || g.Extended:
		return 0, false
	case g.Kind == rescan.GroupComment || g.Kind == rescan.GroupFlags:
		return g.Body, true
	}

	closing, alternation, found := rescan.ClosingDelimiter(view.From(s))
	if !found {
		return 0, false
	}
	if g.Kind == rescan.GroupNegative || alternation ||
		rescan.IsOptionalQuantifier(view.From(closing+1)) {
		return closing, true
	}
	return g.Body - 1, true
}

func (x *Index) child(node int32, b byte) int32 {
	next := x.nodes[node].next[b]
	if next == 0 {
		next = int32(len(x.nodes))
		x.nodes = append(x.nodes, trieNode{parent: node})
		x.nodes[node].next[b] = next
	}
	return next
}

func (x *Index) registerSnippet(depth int, node int32, set *idSet) {
	if node < 0 || depth < minSnippetLen {
		return
	}
	if x.nodes[node].id == 0 {
		x.maxID++
		x.nodes[node].id = x.maxID
	}
	set.add(x.nodes[node].id)
}

// SnippetsIn returns, in ascending order, the ids of every registered snippet
// occurring anywhere in text. Overlapping occurrences are all reported.
func (x *Index) SnippetsIn(text string) []SnippetID {
	folded := foldText(text)
	found := newBitset(int(x.maxID) + 1)
	for s := 0; s < len(folded); s++ {
		node := int32(0)
		for i := s; i < len(folded); i++ {
			node = x.nodes[node].next[folded[i]]
			if node == 0 {
				break
			}
			if id := x.nodes[node].id; id != 0 {
				found.set(int(id))
			}
		}
	}

	out := make([]SnippetID, 0, found.count())
	found.each(func(i int) {
		out = append(out, SnippetID(i))
	})
	return out
}

// Registered rebuilds the snippet text of every assigned id by walking the
// trie. Snippets are returned case-folded.
func (x *Index) Registered() map[SnippetID]string {
	out := make(map[SnippetID]string, x.maxID)
	var walk func(node int32, prefix []byte)
	walk = func(node int32, prefix []byte) {
		if id := x.nodes[node].id; id != 0 {
			out[id] = string(prefix)
		}
		for b, child := range x.nodes[node].next {
			if child != 0 {
				walk(child, append(prefix, byte(b)))
			}
		}
	}
	walk(0, make([]byte, 0, 32))
	return out
}

// isSnippetChar reports whether an unescaped c is part of a literal run.
func isSnippetChar(c byte) bool {
	if ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') {
		return true
	}
	switch c {
	case ' ', '_', '-', '/', ',', ';', '=', '%':
		return true
	}
	return false
}

// fold lower-cases ASCII letters. Case-sensitive expressions are folded too,
// which only makes the filter more permissive.
func fold(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c | 0x20
	}
	return c
}

// foldText folds text for snippet lookup. Besides ASCII letters it maps the
// two runes case-insensitive matching pairs with an ASCII letter: U+212A
// KELVIN SIGN to k and U+0130 to i.
func foldText(text string) []byte {
	out := make([]byte, 0, len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c < utf8.RuneSelf {
			out = append(out, fold(c))
			continue
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		switch r {
		case '\u212A':
			out = append(out, 'k')
		case '\u0130':
			out = append(out, 'i')
		default:
			out = append(out, text[i:i+size]...)
		}
		i += size - 1
	}
	return out
}

// idSet collects snippet ids while registering one expression. Expressions
// hold only a handful of snippets, so a slice beats a map here.
type idSet struct {
	ids []SnippetID
}

func (s *idSet) add(id SnippetID) {
	for _, existing := range s.ids {
		if existing == id {
			return
		}
	}
	s.ids = append(s.ids, id)
}

func (s *idSet) sorted() []SnippetID {
	slices.Sort(s.ids)
	return s.ids
}
