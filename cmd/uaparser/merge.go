package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/praetorian-inc/uaparser/pkg/store"
)

var (
	mergeOutput string
)

var mergeCmd = &cobra.Command{
	Use:   "merge <source1.db> <source2.db> [source3.db...]",
	Short: "Merge multiple result stores",
	Long: `Merge multiple result stores into a single output store.

This is useful for combining results from batch runs over different log
sources or hosts.

Records of the same user agent are folded together: counts are summed and
the first and last sighting times widened.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "merged.db", "Output store path or postgres URL")
}

func runMerge(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	stats, err := store.Merge(ctx, store.MergeConfig{
		SourcePaths: args,
		DestPath:    mergeOutput,
	})
	if err != nil {
		return fmt.Errorf("merge failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Merge complete:\n")
	fmt.Fprintf(cmd.OutOrStdout(), "  Sources processed: %d\n", stats.SourcesProcessed)
	fmt.Fprintf(cmd.OutOrStdout(), "  User agents merged: %d\n", stats.ResultsMerged)
	fmt.Fprintf(cmd.OutOrStdout(), "  Sightings merged: %d\n", stats.SightingsMerged)
	fmt.Fprintf(cmd.OutOrStdout(), "Output: %s\n", redactURL(mergeOutput))

	return nil
}
