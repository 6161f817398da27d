package prefilter

import (
	"slices"

	"github.com/cloudflare/ahocorasick"
)

// keywordMatcher finds registered snippets with a single Aho-Corasick pass over
// the case-folded input instead of walking the trie from every offset.
type keywordMatcher struct {
	matcher *ahocorasick.Matcher
	ids     []SnippetID // snippet id at each dictionary index
}

func newKeywordMatcher(snippets map[SnippetID]string) *keywordMatcher {
	km := &keywordMatcher{ids: make([]SnippetID, 0, len(snippets))}
	for id := range snippets {
		km.ids = append(km.ids, id)
	}
	slices.Sort(km.ids)

	keywords := make([]string, len(km.ids))
	for i, id := range km.ids {
		keywords[i] = snippets[id]
	}
	if len(keywords) > 0 {
		km.matcher = ahocorasick.NewStringMatcher(keywords)
	}
	return km
}

// snippetsIn returns the ascending ids of the snippets occurring in text.
func (km *keywordMatcher) snippetsIn(text string) []SnippetID {
	if km.matcher == nil {
		return nil
	}
	folded := foldText(text)

	// Match is not safe for concurrent use
	hits := km.matcher.MatchThreadSafe(folded)
	out := make([]SnippetID, 0, len(hits))
	for _, hit := range hits {
		out = append(out, km.ids[hit])
	}
	slices.Sort(out)
	return slices.Compact(out)
}
