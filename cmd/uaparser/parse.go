package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/praetorian-inc/uaparser"
	"github.com/praetorian-inc/uaparser/pkg/engine"
	"github.com/praetorian-inc/uaparser/pkg/input"
	"github.com/praetorian-inc/uaparser/pkg/types"
)

var (
	parseFormat  string
	parseExplain bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [user-agent...]",
	Short: "Classify user agent strings",
	Long: `Classify the user agents given as arguments. Without arguments one user
agent is read per line from stdin.`,
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVar(&parseFormat, "format", "human", "Output format: human, json")
	parseCmd.Flags().BoolVar(&parseExplain, "explain", false, "Show the candidate and matching rules per category")
}

// parseOutput is the JSON form of one classification.
type parseOutput struct {
	UserAgent  string           `json:"user_agent"`
	Browser    types.Agent      `json:"browser"`
	OS         types.Agent      `json:"os"`
	Device     types.Device     `json:"device"`
	DeviceType types.DeviceType `json:"device_type"`
	Verdicts   []engine.Verdict `json:"verdicts,omitempty"`
}

func runParse(cmd *cobra.Command, args []string) error {
	switch parseFormat {
	case "human", "json":
	default:
		return fmt.Errorf("unknown output format: %s", parseFormat)
	}

	p, err := newParser()
	if err != nil {
		return err
	}

	agents := args
	if len(agents) == 0 {
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()
		if agents, err = readAgents(ctx, cmd.InOrStdin()); err != nil {
			return err
		}
	}

	var encoder *json.Encoder
	if parseFormat == "json" {
		encoder = json.NewEncoder(cmd.OutOrStdout())
	}
	for i, ua := range agents {
		out := classify(p, ua)
		if encoder != nil {
			if err := encoder.Encode(out); err != nil {
				return err
			}
			continue
		}
		if i > 0 {
			fmt.Fprintln(cmd.OutOrStdout())
		}
		if err := outputParseHuman(cmd.OutOrStdout(), out); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func readAgents(ctx context.Context, r io.Reader) ([]string, error) {
	var out []string
	err := input.Each(ctx, "-", input.Config{Format: input.FormatLines, Stdin: r}, func(l input.Line) error {
		out = append(out, l.Text)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	return out, nil
}

func classify(p *uaparser.Parser, ua string) parseOutput {
	out := parseOutput{UserAgent: ua, DeviceType: p.DeviceType(ua)}
	var parsed types.UserAgent
	if parseExplain {
		exp := p.Explain(ua)
		parsed = exp.UserAgent
		out.Verdicts = exp.Verdicts
	} else {
		parsed = p.Parse(ua)
	}
	out.Browser = parsed.Browser
	out.OS = parsed.OS
	out.Device = parsed.Device
	return out
}

func outputParseHuman(w io.Writer, out parseOutput) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "User agent:\t%s\n", out.UserAgent)
	fmt.Fprintf(tw, "Browser:\t%s\n", describeAgent(out.Browser))
	fmt.Fprintf(tw, "OS:\t%s\n", describeAgent(out.OS))
	fmt.Fprintf(tw, "Device:\t%s\n", describeDevice(out.Device))
	fmt.Fprintf(tw, "Type:\t%s\n", out.DeviceType)
	for _, v := range out.Verdicts {
		matched := "no match"
		if v.RuleID != "" {
			matched = v.RuleID
		}
		fmt.Fprintf(tw, "Rule (%s):\t%s (%d candidates)\n", v.Category, matched, len(v.Candidates))
	}
	return tw.Flush()
}

// describeAgent renders only the version components that are present.
func describeAgent(a types.Agent) string {
	parts := []string{a.Family}
	version := ""
	for i, c := range []string{a.Major, a.Minor, a.Patch, a.PatchMinor} {
		if c == "" {
			break
		}
		if i > 0 {
			version += "."
		}
		version += c
	}
	if version != "" {
		parts = append(parts, version)
	}
	return strings.Join(parts, " ")
}

func describeDevice(d types.Device) string {
	var extra []string
	if d.Brand != "" {
		extra = append(extra, "brand "+d.Brand)
	}
	if d.Model != "" {
		extra = append(extra, "model "+d.Model)
	}
	if len(extra) == 0 {
		return d.Family
	}
	return fmt.Sprintf("%s (%s)", d.Family, strings.Join(extra, ", "))
}
