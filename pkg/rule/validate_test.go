package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praetorian-inc/uaparser/pkg/types"
)

func newRule(id string, c types.Category, pattern string) *types.Rule {
	r := &types.Rule{ID: id, Category: c, Pattern: pattern}
	r.StructuralID = r.ComputeStructuralID()
	return r
}

func TestValidateRule(t *testing.T) {
	tests := []struct {
		name    string
		rule    *types.Rule
		wantMsg string
	}{
		{name: "valid", rule: newRule("browser.1", types.CategoryBrowser, `(Firefox)/(\d+)`)},
		{name: "lookbehind accepted", rule: newRule("os.1", types.CategoryOS, `(?<=; )(Linux)`)},
		{name: "nil", rule: nil, wantMsg: "rule is nil"},
		{name: "missing id", rule: &types.Rule{Category: types.CategoryOS, Pattern: "x"}, wantMsg: "rule ID is required"},
		{name: "missing pattern", rule: &types.Rule{ID: "os.1", Category: types.CategoryOS}, wantMsg: "regex is required"},
		{name: "bad category", rule: &types.Rule{ID: "x.1", Category: "robot", Pattern: "x"}, wantMsg: "rule x.1"},
		{name: "bad regex", rule: newRule("device.1", types.CategoryDevice, `(`), wantMsg: "invalid regex for rule device.1"},
		{
			name:    "stale structural id",
			rule:    &types.Rule{ID: "os.2", Category: types.CategoryOS, Pattern: "Linux", StructuralID: "deadbeef"},
			wantMsg: "inconsistent StructuralID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRule(tt.rule)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidateRule_CaseFlagChangesStructuralID(t *testing.T) {
	r := newRule("device.1", types.CategoryDevice, "playbook")
	r.CaseInsensitive = true
	err := ValidateRule(r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inconsistent StructuralID")
}

func TestValidateCatalogue(t *testing.T) {
	assert.Error(t, ValidateCatalogue(nil))

	cat := &types.Catalogue{
		Browser: []*types.Rule{
			newRule("browser.1", types.CategoryBrowser, `(Firefox)/(\d+)`),
			newRule("browser.2", types.CategoryBrowser, `(Firefox)/(\d+)`),
		},
		OS: []*types.Rule{
			newRule("os.1", types.CategoryOS, `(`),
		},
		Device: []*types.Rule{
			// same pattern in a different category is fine
			newRule("device.1", types.CategoryDevice, `(Firefox)/(\d+)`),
		},
	}

	err := ValidateCatalogue(cat)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rule browser.2 duplicates browser.1")
	assert.Contains(t, err.Error(), "invalid regex for rule os.1")
	assert.NotContains(t, err.Error(), "device.1")
}
