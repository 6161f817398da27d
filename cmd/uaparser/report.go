package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/praetorian-inc/uaparser/pkg/store"
	"github.com/praetorian-inc/uaparser/pkg/types"
)

var (
	reportDatastore string
	reportFormat    string
	reportColor     string
	reportTop       int
)

// styles holds color formatters for report output
type styles struct {
	heading *color.Color
	family  *color.Color
	count   *color.Color
	agent   *color.Color
	share   *color.Color
}

// newStyles creates color formatters for report output
// enabled=false respects --color=never and the NO_COLOR env var
func newStyles(enabled bool) *styles {
	s := &styles{
		heading: color.New(color.Bold, color.FgHiWhite),
		family:  color.New(color.Bold, color.FgHiBlue),
		count:   color.New(color.FgHiGreen),
		agent:   color.New(color.FgYellow),
		share:   color.New(color.FgHiBlack),
	}

	if !enabled {
		s.heading.DisableColor()
		s.family.DisableColor()
		s.count.DisableColor()
		s.agent.DisableColor()
		s.share.DisableColor()
	}

	return s
}

// tally is the number of sightings attributed to one name.
type tally struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// summary aggregates a result store.
type summary struct {
	Distinct    int     `json:"distinct"`
	Sightings   int64   `json:"sightings"`
	Spiders     int64   `json:"spiders"`
	Browsers    []tally `json:"browsers"`
	OS          []tally `json:"os"`
	Devices     []tally `json:"devices"`
	DeviceTypes []tally `json:"device_types"`
	Top         []tally `json:"top_user_agents"`
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a report from recorded user agents",
	Long:  "Read classified user agents from a result store and output a summary report",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportDatastore, "datastore", "", "Result store path or postgres URL (default $UAPARSER_OUTPUT or uaparser.db)")
	reportCmd.Flags().StringVar(&reportFormat, "format", "human", "Output format: human, json")
	reportCmd.Flags().StringVar(&reportColor, "color", "auto", "Color output: auto, always, never")
	reportCmd.Flags().IntVar(&reportTop, "top", 10, "Number of entries listed per section")
}

func runReport(cmd *cobra.Command, args []string) error {
	storePath := reportDatastore
	if storePath == "" {
		storePath = currentSettings().Output
	}

	// Check if it's :memory: (invalid for report)
	if storePath == ":memory:" {
		return fmt.Errorf("cannot report from in-memory store")
	}
	if !store.IsPostgresURL(storePath) {
		if _, err := os.Stat(storePath); err != nil {
			return fmt.Errorf("datastore not found: %s", storePath)
		}
	}
	if reportTop < 1 {
		return fmt.Errorf("--top must be positive")
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	s, err := store.New(ctx, store.Config{Path: storePath})
	if err != nil {
		return fmt.Errorf("opening datastore: %w", err)
	}
	defer s.Close()

	results, err := s.All(ctx)
	if err != nil {
		return fmt.Errorf("retrieving results: %w", err)
	}
	sum := summarize(results, reportTop)

	switch reportFormat {
	case "json":
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(sum)
	case "human":
		outputReportHuman(cmd.OutOrStdout(), sum, redactURL(storePath))
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", reportFormat)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// summarize counts sightings per family. results must be ordered most seen
// first, as Store.All returns them.
func summarize(results []*types.Result, top int) summary {
	browsers := make(map[string]int64)
	systems := make(map[string]int64)
	devices := make(map[string]int64)
	deviceTypes := make(map[string]int64)

	sum := summary{Distinct: len(results)}
	for _, r := range results {
		sum.Sightings += r.Count
		if r.Parsed.IsSpider() {
			sum.Spiders += r.Count
		}
		browsers[r.Parsed.Browser.Family] += r.Count
		systems[r.Parsed.OS.Family] += r.Count
		devices[r.Parsed.Device.Family] += r.Count
		deviceTypes[r.DeviceType.String()] += r.Count
		if len(sum.Top) < top {
			sum.Top = append(sum.Top, tally{Name: r.UserAgent, Count: r.Count})
		}
	}

	sum.Browsers = topTallies(browsers, top)
	sum.OS = topTallies(systems, top)
	sum.Devices = topTallies(devices, top)
	sum.DeviceTypes = topTallies(deviceTypes, top)
	return sum
}

// topTallies sorts counts descending, ties by name, and keeps the first n.
func topTallies(counts map[string]int64, n int) []tally {
	out := make([]tally, 0, len(counts))
	for name, c := range counts {
		out = append(out, tally{Name: name, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func outputReportHuman(out io.Writer, sum summary, storePath string) {
	// Determine if colors should be enabled based on --color flag
	switch reportColor {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	default: // "auto"
		if !term.IsTerminal(int(os.Stdout.Fd())) || os.Getenv("NO_COLOR") != "" {
			color.NoColor = true
		} else {
			color.NoColor = false
		}
	}
	s := newStyles(!color.NoColor)

	fmt.Fprintf(out, "%s\n", s.heading.Sprint("=== User Agent Report ==="))
	fmt.Fprintf(out, "Datastore: %s\n", storePath)
	fmt.Fprintf(out, "Distinct user agents: %s\n", s.count.Sprint(sum.Distinct))
	fmt.Fprintf(out, "Total sightings: %s\n", s.count.Sprint(sum.Sightings))
	fmt.Fprintf(out, "Spider sightings: %s\n", s.count.Sprint(sum.Spiders))

	sections := []struct {
		title   string
		tallies []tally
		style   *color.Color
	}{
		{"Browsers", sum.Browsers, s.family},
		{"Operating systems", sum.OS, s.family},
		{"Devices", sum.Devices, s.family},
		{"Device types", sum.DeviceTypes, s.family},
		{"Top user agents", sum.Top, s.agent},
	}
	for _, sec := range sections {
		fmt.Fprintf(out, "\n%s\n", s.heading.Sprint(sec.title))
		for _, t := range sec.tallies {
			fmt.Fprintf(out, "  %s %s %s\n",
				s.count.Sprintf("%8d", t.Count),
				s.share.Sprintf("%5.1f%%", percent(t.Count, sum.Sightings)),
				sec.style.Sprint(t.Name))
		}
	}
}

func percent(n, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) * 100 / float64(total)
}

// redactURL hides the password of a connection URL. Plain paths are
// returned unchanged.
func redactURL(path string) string {
	if !store.IsPostgresURL(path) {
		return path
	}
	u, err := url.Parse(path)
	if err != nil {
		return path
	}
	return u.Redacted()
}
