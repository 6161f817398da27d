package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praetorian-inc/uaparser/pkg/batch"
	"github.com/praetorian-inc/uaparser/pkg/store"
	"github.com/praetorian-inc/uaparser/pkg/types"
)

func resetBatchFlags(t *testing.T) {
	t.Helper()
	reset := func() {
		batchOutputPath, batchWorkers = "", 0
		batchInputFormat, batchFormat = "lines", "human"
	}
	reset()
	t.Cleanup(reset)
}

func writeLines(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func TestRunBatch(t *testing.T) {
	resetGlobals(t)
	resetBatchFlags(t)
	dir := t.TempDir()
	src := writeLines(t, dir, "agents.txt", iPhoneUA, statusCakeUA, "", iPhoneUA)
	batchOutputPath = filepath.Join(dir, "out.db")
	batchWorkers = 2

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	require.NoError(t, runBatch(cmd, []string{src}))

	output := buf.String()
	assert.Contains(t, output, "Batch complete:")
	assert.Contains(t, output, "User agents read: 3")
	assert.Contains(t, output, "Distinct user agents: 2")
	assert.Contains(t, output, "Output: "+batchOutputPath)

	s, err := store.New(context.Background(), store.Config{Path: batchOutputPath})
	require.NoError(t, err)
	defer s.Close()

	results, err := s.All(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, iPhoneUA, results[0].UserAgent)
	assert.Equal(t, int64(2), results[0].Count)
	assert.Equal(t, "Mobile Safari", results[0].Parsed.Browser.Family)
	assert.Equal(t, types.DeviceMobile, results[0].DeviceType)
	assert.True(t, results[1].Parsed.IsSpider())
}

func TestRunBatch_CombinedStdinJSON(t *testing.T) {
	resetGlobals(t)
	resetBatchFlags(t)
	batchOutputPath = ":memory:"
	batchInputFormat = "combined"
	batchFormat = "json"

	logs := strings.Join([]string{
		`10.0.0.1 - - [17/Oct/2026:10:00:00 +0000] "GET / HTTP/1.1" 200 512 "-" "` + iPhoneUA + `"`,
		`10.0.0.2 - - [17/Oct/2026:10:00:01 +0000] "GET /health HTTP/1.1" 200 2 "-" "-"`,
	}, "\n")

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	cmd.SetIn(strings.NewReader(logs))
	require.NoError(t, runBatch(cmd, []string{"-"}))

	var stats batch.Stats
	require.NoError(t, json.Unmarshal(buf.Bytes(), &stats))
	assert.Equal(t, int64(1), stats.Lines)
	assert.Equal(t, 1, stats.Distinct)
	assert.Equal(t, 1, stats.Sources)
}

func TestRunBatch_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		setup   func()
		args    []string
		wantMsg string
	}{
		{
			name:    "missing source",
			setup:   func() { batchOutputPath = ":memory:" },
			args:    []string{filepath.Join(dir, "missing.txt")},
			wantMsg: "batch failed",
		},
		{
			name:    "unknown input format",
			setup:   func() { batchInputFormat = "csv" },
			args:    []string{"-"},
			wantMsg: "unknown input format",
		},
		{
			name:    "unknown summary format",
			setup:   func() { batchFormat = "xml" },
			args:    []string{"-"},
			wantMsg: "unknown output format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetGlobals(t)
			resetBatchFlags(t)
			tt.setup()

			cmd := &cobra.Command{}
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetIn(strings.NewReader(""))
			err := runBatch(cmd, tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestRunBatch_DefaultOutputFromSettings(t *testing.T) {
	resetGlobals(t)
	resetBatchFlags(t)
	dir := t.TempDir()
	src := writeLines(t, dir, "agents.txt", iPhoneUA)
	currentSettings().Output = filepath.Join(dir, "env.db")

	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})
	require.NoError(t, runBatch(cmd, []string{src}))

	_, err := os.Stat(filepath.Join(dir, "env.db"))
	assert.NoError(t, err)
}
