package prefilter

// Mapping maps sets of required snippets to the values (rules) needing them.
//
// Required sets are stored as paths in a trie keyed by ascending snippet ids.
// Given the ascending ids present in an input, a node is reachable exactly when
// its path is an ordered subsequence of the present ids, which for sorted
// unique sequences is the same as "required ⊆ present". Every value stored on
// a reachable node is a candidate; values are never missed, but candidates
// still have to be confirmed by evaluating the real expression.
//
// Because present ids are unique and ascending, each trie node is entered at
// most once per query, so a lookup costs at most one scan of the remaining
// present ids per visited node.
type Mapping[T comparable] struct {
	root mappingNode[T]
	size int
}

type mappingNode[T comparable] struct {
	next   map[SnippetID]*mappingNode[T]
	values []T
}

// NewMapping creates an empty mapping.
func NewMapping[T comparable]() *Mapping[T] {
	return &Mapping[T]{}
}

// Add maps the ascending required snippet ids to v. An empty required set
// makes v a candidate for every input. Adding the same (required, v) pair twice
// is a no-op.
func (m *Mapping[T]) Add(required []SnippetID, v T) {
	node := &m.root
	for _, id := range required {
		if node.next == nil {
			node.next = make(map[SnippetID]*mappingNode[T])
		}
		child, ok := node.next[id]
		if !ok {
			child = &mappingNode[T]{}
			node.next[id] = child
		}
		node = child
	}
	for _, existing := range node.values {
		if existing == v {
			return
		}
	}
	node.values = append(node.values, v)
	m.size++
}

// Len returns the number of (required set, value) pairs stored.
func (m *Mapping[T]) Len() int {
	return m.size
}

// Candidates calls emit for every value whose required snippets are all in
// present (ascending, unique). A value mapped under several required sets may
// be emitted more than once.
func (m *Mapping[T]) Candidates(present []SnippetID, emit func(T)) {
	m.root.walk(present, emit)
}

// CandidateSet returns the distinct candidates for present.
func (m *Mapping[T]) CandidateSet(present []SnippetID) map[T]struct{} {
	out := make(map[T]struct{})
	m.Candidates(present, func(v T) {
		out[v] = struct{}{}
	})
	return out
}

func (n *mappingNode[T]) walk(present []SnippetID, emit func(T)) {
	for _, v := range n.values {
		emit(v)
	}
	if len(n.next) == 0 {
		return
	}
	for i, id := range present {
		if child, ok := n.next[id]; ok {
			child.walk(present[i+1:], emit)
		}
	}
}
