package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/praetorian-inc/uaparser"
	"github.com/praetorian-inc/uaparser/pkg/rule"
	"github.com/praetorian-inc/uaparser/pkg/types"
)

var (
	outputFormat  string
	rulesCategory string
	fixturesDir   string
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect the rule catalogue",
	Long:  "Commands for listing, validating and testing catalogue rules",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalogue rules",
	Long:  "Display the catalogue rules in declaration order with their ids and patterns",
	RunE:  runRulesList,
}

var rulesStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show prefilter statistics",
	Long:  "Compile the catalogue and display per-category prefilter sizes and build times",
	RunE:  runRulesStats,
}

var rulesValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the catalogue",
	Long:  "Check every rule compiles and report rules that duplicate an earlier pattern",
	RunE:  runRulesValidate,
}

var rulesTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Run classification fixtures",
	Long: `Classify every fixture user agent and compare the result with the
expected fields. Fixtures are uap-core style test_browser.yaml, test_os.yaml
and test_device.yaml files; the built-in ones are used by default.`,
	RunE: runRulesTest,
}

func init() {
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesStatsCmd)
	rulesCmd.AddCommand(rulesValidateCmd)
	rulesCmd.AddCommand(rulesTestCmd)
	rulesListCmd.Flags().StringVar(&outputFormat, "format", "table", "Output format: table, json")
	rulesListCmd.Flags().StringVar(&rulesCategory, "category", "", "Only list rules of this category: browser, os, device")
	rulesStatsCmd.Flags().StringVar(&outputFormat, "format", "table", "Output format: table, json")
	rulesTestCmd.Flags().StringVar(&fixturesDir, "fixtures", "", "Directory holding test_<category>.yaml fixture files")
}

// ruleView is the listed form of a rule.
type ruleView struct {
	ID              string         `json:"id"`
	Category        types.Category `json:"category"`
	Pattern         string         `json:"regex"`
	CaseInsensitive bool           `json:"case_insensitive,omitempty"`
	Family          string         `json:"family_replacement,omitempty"`
	Major           string         `json:"v1_replacement,omitempty"`
	Minor           string         `json:"v2_replacement,omitempty"`
	Patch           string         `json:"v3_replacement,omitempty"`
	PatchMinor      string         `json:"v4_replacement,omitempty"`
	Brand           string         `json:"brand_replacement,omitempty"`
	Model           string         `json:"model_replacement,omitempty"`
}

func runRulesList(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalogue()
	if err != nil {
		return err
	}

	categories := types.Categories
	if rulesCategory != "" {
		c, err := types.ParseCategory(rulesCategory)
		if err != nil {
			return err
		}
		categories = []types.Category{c}
	}

	var views []ruleView
	for _, c := range categories {
		for _, r := range cat.Rules(c) {
			views = append(views, ruleView{
				ID:              r.ID,
				Category:        c,
				Pattern:         r.Pattern,
				CaseInsensitive: r.CaseInsensitive,
				Family:          r.FamilyReplacement,
				Major:           r.MajorReplacement,
				Minor:           r.MinorReplacement,
				Patch:           r.PatchReplacement,
				PatchMinor:      r.PatchMinorReplacement,
				Brand:           r.BrandReplacement,
				Model:           r.ModelReplacement,
			})
		}
	}

	// Output based on format
	switch outputFormat {
	case "json":
		return outputJSON(cmd, views)
	case "table":
		return outputRulesTable(cmd, views)
	default:
		return fmt.Errorf("unknown output format: %s", outputFormat)
	}
}

func runRulesStats(cmd *cobra.Command, args []string) error {
	p, err := newParser()
	if err != nil {
		return err
	}
	stats := p.Engine().Stats()

	switch outputFormat {
	case "json":
		return outputJSON(cmd, stats)
	case "table":
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		defer w.Flush()
		fmt.Fprintf(w, "Category\tRules\tVariants\tSnippets\tUnconstrained\tStrategy\tBuild\n")
		fmt.Fprintf(w, "--------\t-----\t--------\t--------\t-------------\t--------\t-----\n")
		for _, s := range stats {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%s\t%s\n",
				s.Category, s.Rules, s.Variants, s.Snippets, s.Unconstrained, s.Strategy, s.BuildTime)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", outputFormat)
	}
}

func runRulesValidate(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalogue()
	if err != nil {
		return err
	}
	if err := rule.ValidateCatalogue(cat); err != nil {
		return fmt.Errorf("catalogue is invalid:\n%w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d rules OK\n", cat.Len())
	return nil
}

func runRulesTest(cmd *cobra.Command, args []string) error {
	p, err := newParser()
	if err != nil {
		return err
	}

	loader := rule.NewLoader()
	out := cmd.OutOrStdout()
	total, failed := 0, 0
	for _, c := range types.Categories {
		var fixtures []rule.Fixture
		if fixturesDir != "" {
			fixtures, err = loader.LoadFixtureFile(filepath.Join(fixturesDir, "test_"+string(c)+".yaml"), c)
		} else {
			fixtures, err = loader.LoadBuiltinFixtures(c)
		}
		if err != nil {
			return fmt.Errorf("loading %s fixtures: %w", c, err)
		}

		for _, f := range fixtures {
			total++
			mismatches := f.Mismatches(p.Parse(f.UserAgent))
			if len(mismatches) == 0 {
				continue
			}
			failed++
			fmt.Fprintf(out, "FAIL %q\n", f.UserAgent)
			for _, m := range mismatches {
				fmt.Fprintf(out, "    %s\n", m)
			}
		}
	}

	fmt.Fprintf(out, "%d fixtures, %d passed, %d failed\n", total, total-failed, failed)
	if failed > 0 {
		return fmt.Errorf("%d fixtures failed", failed)
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// loadCatalogue loads the configured catalogue and applies the rule filters.
func loadCatalogue() (*types.Catalogue, error) {
	cfg := currentSettings()

	var cat *types.Catalogue
	var err error
	if cfg.Regexes != "" {
		cat, err = uaparser.LoadCatalogueFile(cfg.Regexes)
	} else {
		cat, err = uaparser.LoadBuiltinCatalogue()
	}
	if err != nil {
		return nil, fmt.Errorf("loading catalogue: %w", err)
	}

	if rulesInclude != "" || rulesExclude != "" {
		cat, err = rule.FilterCatalogue(cat, rule.FilterConfig{
			Include: rule.ParsePatterns(rulesInclude),
			Exclude: rule.ParsePatterns(rulesExclude),
		})
		if err != nil {
			return nil, fmt.Errorf("filtering rules: %w", err)
		}
	}
	return cat, nil
}

func outputJSON(cmd *cobra.Command, v any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func outputRulesTable(cmd *cobra.Command, views []ruleView) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "ID\tFamily\tRegex\n")
	fmt.Fprintf(w, "--\t------\t-----\n")

	for _, v := range views {
		family := v.Family
		if family == "" {
			family = "$1"
		}
		pattern := v.Pattern
		if v.CaseInsensitive {
			pattern += " (i)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", v.ID, family, pattern)
	}

	return nil
}
