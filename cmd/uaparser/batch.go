package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/praetorian-inc/uaparser/pkg/batch"
	"github.com/praetorian-inc/uaparser/pkg/input"
	"github.com/praetorian-inc/uaparser/pkg/store"
)

var (
	batchOutputPath  string
	batchWorkers     int
	batchInputFormat string
	batchFormat      string
)

var batchCmd = &cobra.Command{
	Use:   "batch <file>...",
	Short: "Classify user agents from files and record them in a store",
	Long: `Classify every user agent read from the given sources and record the
results in a store. Sources may be plain files, .gz files, .zip or .7z
archives, or "-" for stdin. Repeated user agents are recorded once with the
number of times they were seen.

The store is a SQLite file, ":memory:", or a postgres:// connection URL.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchOutputPath, "output", "o", "", "Result store path or postgres URL (default $UAPARSER_OUTPUT or uaparser.db)")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "Number of parsing goroutines (0 = $UAPARSER_WORKERS or one per CPU)")
	batchCmd.Flags().StringVar(&batchInputFormat, "input-format", "lines", "Input format: lines, combined")
	batchCmd.Flags().StringVar(&batchFormat, "format", "human", "Summary format: human, json")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg := currentSettings()

	switch batchFormat {
	case "human", "json":
	default:
		return fmt.Errorf("unknown output format: %s", batchFormat)
	}
	format, err := input.ParseFormat(batchInputFormat)
	if err != nil {
		return err
	}
	outputPath := batchOutputPath
	if outputPath == "" {
		outputPath = cfg.Output
	}
	workers := batchWorkers
	if workers == 0 {
		workers = cfg.Workers
	}

	p, err := newParser()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	s, err := store.New(ctx, store.Config{Path: outputPath})
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}
	defer s.Close()

	stats, err := batch.Run(ctx, p, s, args, batch.Config{
		Workers: workers,
		Input:   input.Config{Format: format, Stdin: cmd.InOrStdin()},
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("batch failed: %w", err)
	}

	if batchFormat == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(stats)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Batch complete:\n")
	fmt.Fprintf(out, "  Sources processed: %d\n", stats.Sources)
	fmt.Fprintf(out, "  User agents read: %d\n", stats.Lines)
	fmt.Fprintf(out, "  Distinct user agents: %d\n", stats.Distinct)
	fmt.Fprintf(out, "  Elapsed: %s\n", stats.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(out, "Output: %s\n", redactURL(outputPath))
	return nil
}

// signalContext cancels on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
