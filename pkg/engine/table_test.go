package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praetorian-inc/uaparser/pkg/matcher"
	"github.com/praetorian-inc/uaparser/pkg/types"
)

// matchBuf lets tests hold two independent matches side by side.
type matchBuf struct {
	m matcher.Match
}

func openRules(t *testing.T, cat *types.Catalogue) *Store {
	t.Helper()
	s, err := Open(cat)
	require.NoError(t, err)
	return s
}

func TestAgentAssembly(t *testing.T) {
	tests := []struct {
		name  string
		rule  *types.Rule
		input string
		want  types.Agent
	}{
		{
			name:  "groups fill family and versions",
			rule:  &types.Rule{Pattern: `(Lynx)/(\d+)\.(\d+)\.(\d+)`},
			input: "Lynx/2.8.9",
			want:  types.Agent{Family: "Lynx", Major: "2", Minor: "8", Patch: "9"},
		},
		{
			name:  "family falls back to the whole match without groups",
			rule:  &types.Rule{Pattern: `Lynx`},
			input: "text Lynx text",
			want:  types.Agent{Family: "Lynx"},
		},
		{
			name:  "templates override groups",
			rule:  &types.Rule{Pattern: `(Edge?)/(\d+)`, FamilyReplacement: "Edge", MajorReplacement: "v$2"},
			input: "Edg/120",
			want:  types.Agent{Family: "Edge", Major: "v120"},
		},
		{
			name:  "template references to missing groups are empty",
			rule:  &types.Rule{Pattern: `(Foo)`, FamilyReplacement: "$1 $3"},
			input: "Foo",
			want:  types.Agent{Family: "Foo"},
		},
		{
			name:  "values are trimmed",
			rule:  &types.Rule{Pattern: `( Foo )/( 1 )`},
			input: " Foo / 1 ",
			want:  types.Agent{Family: "Foo", Major: "1"},
		},
		{
			name:  "browser never fills patch minor",
			rule:  &types.Rule{Pattern: `(B)/(\d)\.(\d)\.(\d)\.(\d)`},
			input: "B/1.2.3.4",
			want:  types.Agent{Family: "B", Major: "1", Minor: "2", Patch: "3"},
		},
		{
			name:  "case insensitive rule",
			rule:  &types.Rule{Pattern: `(lynx)/(\d+)`, CaseInsensitive: true},
			input: "LYNX/3",
			want:  types.Agent{Family: "LYNX", Major: "3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := openRules(t, &types.Catalogue{Browser: []*types.Rule{tt.rule}})
			assert.Equal(t, tt.want, s.ParseBrowser(tt.input))
		})
	}
}

func TestOSAssembly_PatchMinor(t *testing.T) {
	s := openRules(t, &types.Catalogue{OS: []*types.Rule{
		{Pattern: `(BlackBerry)\w*/(\d+)\.(\d+)\.(\d+)(?:\.(\d+)|)`, FamilyReplacement: "BlackBerry OS"},
	}})

	assert.Equal(t,
		types.Agent{Family: "BlackBerry OS", Major: "5", Minor: "0", Patch: "0", PatchMinor: "351"},
		s.ParseOS("BlackBerry9700/5.0.0.351"))
	assert.Equal(t,
		types.Agent{Family: "BlackBerry OS", Major: "5", Minor: "0", Patch: "0"},
		s.ParseOS("BlackBerry9700/5.0.0"))
}

func TestDeviceAssembly(t *testing.T) {
	tests := []struct {
		name  string
		rule  *types.Rule
		input string
		want  types.Device
	}{
		{
			name:  "model falls back to group one",
			rule:  &types.Rule{Pattern: `; (Nexus \d+)`},
			input: "Android 4.1; Nexus 7 Build",
			want:  types.Device{Family: "Nexus 7", Model: "Nexus 7"},
		},
		{
			name:  "brand has no group fallback",
			rule:  &types.Rule{Pattern: `(Acme) (X1)`},
			input: "Acme X1",
			want:  types.Device{Family: "Acme", Model: "Acme"},
		},
		{
			name: "all templates",
			rule: &types.Rule{
				Pattern:           `(BlackBerry) ?(\d+)`,
				FamilyReplacement: "BlackBerry $2",
				BrandReplacement:  "BlackBerry",
				ModelReplacement:  "$2",
			},
			input: "BlackBerry9700/5.0",
			want:  types.Device{Family: "BlackBerry 9700", Brand: "BlackBerry", Model: "9700"},
		},
		{
			name:  "brand template is trimmed",
			rule:  &types.Rule{Pattern: `(Pixel)`, BrandReplacement: " Google "},
			input: "Pixel",
			want:  types.Device{Family: "Pixel", Brand: "Google", Model: "Pixel"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := openRules(t, &types.Catalogue{Device: []*types.Rule{tt.rule}})
			assert.Equal(t, tt.want, s.ParseDevice(tt.input))
		})
	}
}

func TestTable_FirstMatchWins(t *testing.T) {
	s := openRules(t, &types.Catalogue{Browser: []*types.Rule{
		{Pattern: `(Chrome)/(\d+)`, FamilyReplacement: "First"},
		{Pattern: `Mozilla.*(Chrome)/(\d+)`, FamilyReplacement: "Second"},
		{Pattern: `(Safari)`},
	}})

	assert.Equal(t, "First", s.ParseBrowser("Mozilla/5.0 Chrome/98 Safari/1").Family)
	assert.Equal(t, "Safari", s.ParseBrowser("Mozilla/5.0 Safari/1").Family)
}

func TestTable_CandidatesAreOrdered(t *testing.T) {
	s := openRules(t, &types.Catalogue{Browser: []*types.Rule{
		{Pattern: `(Firefox)/(\d+)`},
		{Pattern: `(Chrome)/(\d+)`},
		{Pattern: `(Safari)`},
		{Pattern: `(\w+)/(\d+)`},
	}})
	table := s.Table(types.CategoryBrowser)

	assert.Equal(t, []int{2, 3, 4}, table.Candidates("Chrome/1 Safari/2"))
	assert.Equal(t, []int{4}, table.Candidates("Lynx/2"))
	assert.Equal(t, types.CategoryBrowser, table.Category())
	assert.Equal(t, 4, table.Len())
}

func TestTable_LookupResetsOnMiss(t *testing.T) {
	s := openRules(t, &types.Catalogue{Browser: []*types.Rule{{Pattern: `(Lynx)/(\d+)`}}})
	table := s.Table(types.CategoryBrowser)

	var m matcher.Match
	require.NotNil(t, table.Lookup("Lynx/2", &m))
	assert.Equal(t, 3, m.Count())

	assert.Nil(t, table.Lookup("Firefox/2", &m))
	assert.Equal(t, 0, m.Count())
	assert.Nil(t, table.LookupLinear("Firefox/2", &m))
}
