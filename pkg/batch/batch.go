// Package batch classifies large user agent lists with a pool of workers and
// aggregates the results into a store.
package batch

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/praetorian-inc/uaparser/pkg/devicetype"
	"github.com/praetorian-inc/uaparser/pkg/input"
	"github.com/praetorian-inc/uaparser/pkg/store"
	"github.com/praetorian-inc/uaparser/pkg/types"
)

// Parser classifies a single user agent. *engine.Store satisfies it.
type Parser interface {
	Parse(ua string) types.UserAgent
}

// Config controls a batch run.
type Config struct {
	// Workers is the number of parsing goroutines. Zero means runtime.NumCPU.
	Workers int
	Input   input.Config
	Logger  *slog.Logger
	// Now stamps sightings. Defaults to time.Now.
	Now func() time.Time
}

// Stats summarizes a batch run.
type Stats struct {
	Lines    int64         `json:"lines"`
	Distinct int           `json:"distinct"`
	Sources  int           `json:"sources"`
	Elapsed  time.Duration `json:"elapsed"`
}

type job struct {
	line input.Line
}

// Run classifies every user agent of paths with p and records them in st.
// Repeated user agents are recorded once, with the number of lines they
// appeared on as their count.
func Run(ctx context.Context, p Parser, st store.Store, paths []string, cfg Config) (*Stats, error) {
	start := time.Now()
	workers := cfg.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	origCtx := ctx
	g, ctx := errgroup.WithContext(ctx)
	jobs := make(chan job, workers*64)
	results := make(chan *types.Result, workers*64)

	stats := &Stats{}

	// Feed lines to workers
	g.Go(func() error {
		defer close(jobs)
		for _, path := range paths {
			logger.Debug("reading user agents", "source", path)
			err := input.Each(ctx, path, cfg.Input, func(l input.Line) error {
				select {
				case jobs <- job{line: l}:
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			})
			if err != nil {
				return err
			}
			stats.Sources++
		}
		return nil
	})

	// Parallel parsers
	parsers, pctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		parsers.Go(func() error {
			for j := range jobs {
				ua := j.line.Text
				r := types.NewResult(ua, p.Parse(ua), devicetype.Classify(ua), now())
				select {
				case results <- r:
				case <-pctx.Done():
					return pctx.Err()
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		defer close(results)
		return parsers.Wait()
	})

	// Single aggregator; the store sees each distinct user agent once.
	aggregated := make(map[types.ID]*types.Result)
	g.Go(func() error {
		for r := range results {
			stats.Lines++
			if existing, ok := aggregated[r.ID]; ok {
				existing.Count++
				if r.LastSeen.After(existing.LastSeen) {
					existing.LastSeen = r.LastSeen
				}
				continue
			}
			aggregated[r.ID] = r
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// If the caller's context was cancelled but all goroutines finished
	// before noticing, propagate the cancellation.
	if err := origCtx.Err(); err != nil {
		return nil, err
	}

	for _, r := range aggregated {
		if err := st.Record(origCtx, r); err != nil {
			return nil, err
		}
	}
	stats.Distinct = len(aggregated)
	stats.Elapsed = time.Since(start)
	logger.Info("batch complete",
		"lines", stats.Lines,
		"distinct", stats.Distinct,
		"sources", stats.Sources,
		"workers", workers,
		"duration", stats.Elapsed)
	return stats, nil
}
