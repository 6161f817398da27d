package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRule(t *testing.T) {
	rule := Rule{
		ID:                "browser.1",
		Category:          CategoryBrowser,
		Index:             1,
		Pattern:           `(iPod|iPhone|iPad).+Version/(\d+)\.(\d+)`,
		FamilyReplacement: "Mobile Safari",
	}

	assert.Equal(t, "browser.1", rule.ID)
	assert.Equal(t, CategoryBrowser, rule.Category)
	assert.Equal(t, "Mobile Safari", rule.FamilyReplacement)
	assert.False(t, rule.CaseInsensitive)

	// undeclared replacements stay empty
	assert.Empty(t, rule.MajorReplacement)
	assert.Empty(t, rule.BrandReplacement)
}

func TestRule_ComputeStructuralID(t *testing.T) {
	rule := Rule{ID: "device.1", Pattern: `(Kindle)`}

	structuralID := rule.ComputeStructuralID()

	// Should be SHA-1 hex (40 chars)
	assert.Len(t, structuralID, 40)

	// Same pattern should produce same ID
	rule2 := Rule{ID: "device.9", Pattern: `(Kindle)`}
	assert.Equal(t, structuralID, rule2.ComputeStructuralID())

	// Different pattern should produce different ID
	rule3 := Rule{ID: "device.1", Pattern: `(Kindle Fire)`}
	assert.NotEqual(t, structuralID, rule3.ComputeStructuralID())

	// The case flag changes what the pattern matches
	rule4 := Rule{ID: "device.1", Pattern: `(Kindle)`, CaseInsensitive: true}
	assert.NotEqual(t, structuralID, rule4.ComputeStructuralID())
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories {
		got, err := ParseCategory(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	_, err := ParseCategory("engine")
	assert.Error(t, err)
}

func TestCatalogue_Rules(t *testing.T) {
	cat := &Catalogue{
		Browser: []*Rule{{ID: "browser.1"}, {ID: "browser.2"}},
		OS:      []*Rule{{ID: "os.1"}},
	}

	assert.Len(t, cat.Rules(CategoryBrowser), 2)
	assert.Len(t, cat.Rules(CategoryOS), 1)
	assert.Empty(t, cat.Rules(CategoryDevice))
	assert.Nil(t, cat.Rules(Category("other")))
	assert.Equal(t, 3, cat.Len())
}
