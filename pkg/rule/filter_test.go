package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praetorian-inc/uaparser/pkg/types"
)

func TestParsePatterns(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty string returns empty slice", input: "", expected: []string{}},
		{name: "single pattern", input: "^os\\.", expected: []string{"^os\\."}},
		{name: "multiple patterns comma-separated", input: "os.1,os.2,device.*", expected: []string{"os.1", "os.2", "device.*"}},
		{name: "patterns with spaces are trimmed", input: " os.1 , , device.* ", expected: []string{"os.1", "device.*"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParsePatterns(tt.input))
		})
	}
}

func testRules() []*types.Rule {
	return []*types.Rule{
		{ID: "browser.1", Category: types.CategoryBrowser},
		{ID: "browser.2", Category: types.CategoryBrowser},
		{ID: "browser.12", Category: types.CategoryBrowser},
		{ID: "os.1", Category: types.CategoryOS},
	}
}

func ruleIDs(rules []*types.Rule) []string {
	ids := make([]string, 0, len(rules))
	for _, r := range rules {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name     string
		include  []string
		exclude  []string
		expected []string
	}{
		{
			name:     "no patterns keeps everything",
			expected: []string{"browser.1", "browser.2", "browser.12", "os.1"},
		},
		{
			name:     "include by category prefix",
			include:  []string{`^browser\.`},
			expected: []string{"browser.1", "browser.2", "browser.12"},
		},
		{
			name:     "include exact id",
			include:  []string{`^browser\.1$`},
			expected: []string{"browser.1"},
		},
		{
			name:     "unanchored include matches substrings",
			include:  []string{`browser\.1`},
			expected: []string{"browser.1", "browser.12"},
		},
		{
			name:     "exclude only",
			exclude:  []string{`^browser\.`},
			expected: []string{"os.1"},
		},
		{
			name:     "include then exclude",
			include:  []string{`^browser\.`},
			exclude:  []string{`\.12$`},
			expected: []string{"browser.1", "browser.2"},
		},
		{
			name:     "include matches none",
			include:  []string{`^device\.`},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filtered, err := Filter(testRules(), FilterConfig{Include: tt.include, Exclude: tt.exclude})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ruleIDs(filtered))
		})
	}
}

func TestFilter_InvalidRegex(t *testing.T) {
	for _, cfg := range []FilterConfig{
		{Include: []string{"[invalid"}},
		{Exclude: []string{"[invalid"}},
		{Include: []string{"^os", "[invalid"}},
	} {
		_, err := Filter(testRules(), cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid regex pattern")
	}
}

func TestFilter_NilRules(t *testing.T) {
	filtered, err := Filter(nil, FilterConfig{Include: []string{".*"}})
	require.NoError(t, err)
	assert.Empty(t, filtered)
}

func TestFilterCatalogue(t *testing.T) {
	cat := &types.Catalogue{
		Browser: testRules()[:3],
		OS:      []*types.Rule{{ID: "os.1"}, {ID: "os.2"}},
		Device:  []*types.Rule{{ID: "device.1"}},
	}

	out, err := FilterCatalogue(cat, FilterConfig{Exclude: []string{`\.1$`}})
	require.NoError(t, err)
	assert.Equal(t, []string{"browser.2", "browser.12"}, ruleIDs(out.Browser))
	assert.Equal(t, []string{"os.2"}, ruleIDs(out.OS))
	assert.Empty(t, out.Device)

	// the input catalogue is untouched
	assert.Len(t, cat.OS, 2)

	_, err = FilterCatalogue(cat, FilterConfig{Include: []string{"("}})
	assert.Error(t, err)
}

func TestFilter_MatchesReplacements(t *testing.T) {
	rules := []*types.Rule{
		{ID: "device.1", FamilyReplacement: "Spider", BrandReplacement: "Spider", ModelReplacement: "Desktop"},
		{ID: "device.2", FamilyReplacement: "$1", BrandReplacement: "Apple", ModelReplacement: "$1"},
		{ID: "device.3", BrandReplacement: "Generic_Android"},
		{ID: "device.4"},
	}

	tests := []struct {
		name     string
		include  []string
		exclude  []string
		expected []string
	}{
		{name: "exclude by family", exclude: []string{"^Spider$"}, expected: []string{"device.2", "device.3", "device.4"}},
		{name: "include by brand", include: []string{"Apple"}, expected: []string{"device.2"}},
		{name: "include by model", include: []string{"^Desktop$"}, expected: []string{"device.1"}},
		{name: "id and name mixed", include: []string{`\.4$`, "Android"}, expected: []string{"device.3", "device.4"}},
		{name: "empty replacements never match", include: []string{"^$"}, expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filtered, err := Filter(rules, FilterConfig{Include: tt.include, Exclude: tt.exclude})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ruleIDs(filtered))
		})
	}
}

func TestFilterCatalogue_ExcludeSpiders(t *testing.T) {
	cat, err := NewLoader().LoadBuiltinCatalogue()
	require.NoError(t, err)

	out, err := FilterCatalogue(cat, FilterConfig{Exclude: []string{"Spider"}})
	require.NoError(t, err)
	assert.Len(t, out.Device, len(cat.Device)-2)
	assert.Equal(t, "device.3", out.Device[0].ID)
	assert.Equal(t, len(cat.Browser), len(out.Browser))
	assert.Equal(t, len(cat.OS), len(out.OS))
}
