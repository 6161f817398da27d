package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRulesList(t *testing.T) {
	resetGlobals(t)
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	outputFormat = "table"
	rulesCategory = ""

	err := runRulesList(cmd, []string{})
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "ID")
	assert.Contains(t, output, "Regex")
	assert.Contains(t, output, "browser.1")
	assert.Contains(t, output, "device.7")
	assert.Contains(t, output, "(i)")
}

func TestRunRulesListJSON(t *testing.T) {
	resetGlobals(t)
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	outputFormat = "json"
	rulesCategory = "os"
	t.Cleanup(func() { rulesCategory = "" })

	err := runRulesList(cmd, []string{})
	require.NoError(t, err)

	var views []ruleView
	require.NoError(t, json.Unmarshal(buf.Bytes(), &views))
	require.Len(t, views, 19)
	assert.Equal(t, "os.1", views[0].ID)
	assert.Equal(t, "Windows", views[1].Family)
	assert.Equal(t, "10", views[1].Major)
}

func TestRunRulesList_Errors(t *testing.T) {
	resetGlobals(t)
	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})

	outputFormat = "yaml"
	assert.Error(t, runRulesList(cmd, nil))

	outputFormat = "table"
	rulesCategory = "robot"
	t.Cleanup(func() { rulesCategory = "" })
	assert.Error(t, runRulesList(cmd, nil))
}

func TestRunRulesList_Filtered(t *testing.T) {
	resetGlobals(t)
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	outputFormat = "json"
	rulesInclude = `^device\.`
	rulesExclude = `^device\.1$`

	require.NoError(t, runRulesList(cmd, nil))

	var views []ruleView
	require.NoError(t, json.Unmarshal(buf.Bytes(), &views))
	require.Len(t, views, 12)
	assert.Equal(t, "device.2", views[0].ID)
}

func TestRunRulesList_ExcludeByFamily(t *testing.T) {
	resetGlobals(t)
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	outputFormat = "json"
	rulesCategory = "device"
	t.Cleanup(func() { rulesCategory = "" })
	rulesExclude = "Spider"

	require.NoError(t, runRulesList(cmd, nil))

	var views []ruleView
	require.NoError(t, json.Unmarshal(buf.Bytes(), &views))
	require.Len(t, views, 11)
	assert.Equal(t, "device.3", views[0].ID)
}

func TestRunRulesStats(t *testing.T) {
	resetGlobals(t)
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	outputFormat = "table"
	require.NoError(t, runRulesStats(cmd, nil))

	output := buf.String()
	assert.Contains(t, output, "Snippets")
	assert.Contains(t, output, "browser")
	assert.Contains(t, output, "trie")
}

func TestRunRulesValidate(t *testing.T) {
	resetGlobals(t)
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	require.NoError(t, runRulesValidate(cmd, nil))
	assert.Equal(t, "66 rules OK\n", buf.String())
}

func TestRunRulesValidate_Duplicate(t *testing.T) {
	resetGlobals(t)
	path := filepath.Join(t.TempDir(), "regexes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`user_agent_parsers:
  - regex: '(Lynx)/(\d+)'
  - regex: '(Lynx)/(\d+)'
    family_replacement: 'Never'
`), 0o644))
	currentSettings().Regexes = path

	err := runRulesValidate(&cobra.Command{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "browser.2 duplicates browser.1")
}

func TestRunRulesTest(t *testing.T) {
	resetGlobals(t)
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	fixturesDir = ""
	require.NoError(t, runRulesTest(cmd, nil))
	assert.Contains(t, buf.String(), "0 failed")
	assert.NotContains(t, buf.String(), "FAIL")
}

func TestRunRulesTest_Failures(t *testing.T) {
	resetGlobals(t)
	dir := t.TempDir()
	for name, body := range map[string]string{
		"test_browser.yaml": "test_cases:\n  - user_agent_string: 'Lynx/2.8.9'\n    family: 'Links'\n    major: '2'\n    minor: '8'\n    patch: '9'\n",
		"test_os.yaml":      "test_cases: []\n",
		"test_device.yaml":  "test_cases: []\n",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	fixturesDir = dir
	t.Cleanup(func() { fixturesDir = "" })

	err := runRulesTest(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, buf.String(), `FAIL "Lynx/2.8.9"`)
	assert.Contains(t, buf.String(), `browser family: want "Links", got "Lynx"`)
	assert.Contains(t, buf.String(), "1 fixtures, 0 passed, 1 failed")
}
