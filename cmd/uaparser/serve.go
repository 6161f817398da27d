package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/praetorian-inc/uaparser/pkg/serve"
	"github.com/praetorian-inc/uaparser/pkg/store"
)

var serveRecordPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as a streaming classification server",
	Long: `Run uaparser as a long-lived streaming server that accepts requests
via stdin and writes responses to stdout using NDJSON format.

The process compiles the catalogue once at startup and processes requests
until stdin closes, a close request arrives, or SIGTERM is received.
With --record every classified user agent is also recorded in a store.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveRecordPath, "record", "", "Record classified user agents in this store path or postgres URL")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	currentSettings()

	p, err := newParser()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	opts := []serve.Option{serve.WithLogger(logger)}
	if serveRecordPath != "" {
		s, err := store.New(ctx, store.Config{Path: serveRecordPath})
		if err != nil {
			return fmt.Errorf("creating store: %w", err)
		}
		defer s.Close()
		opts = append(opts, serve.WithStore(s))
	}

	srv := serve.NewServer(p, cmd.InOrStdin(), cmd.OutOrStdout(), opts...)
	return srv.Run(ctx)
}
