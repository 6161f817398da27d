package store

import (
	"context"
	"fmt"
)

// MergeConfig configures the merge operation.
type MergeConfig struct {
	// SourcePaths are the stores to merge from.
	SourcePaths []string
	// DestPath is the destination store.
	DestPath string
}

// MergeStats tracks merge operation statistics.
type MergeStats struct {
	ResultsMerged    int
	SightingsMerged  int64
	SourcesProcessed int
}

// Merge combines several result stores into one. Records of the same user
// agent are folded together, summing their counts.
func Merge(ctx context.Context, cfg MergeConfig) (*MergeStats, error) {
	if len(cfg.SourcePaths) == 0 {
		return nil, fmt.Errorf("no source databases specified")
	}
	if cfg.DestPath == "" {
		return nil, fmt.Errorf("destination path is required")
	}

	dest, err := New(ctx, Config{Path: cfg.DestPath})
	if err != nil {
		return nil, fmt.Errorf("opening destination database: %w", err)
	}
	defer dest.Close()

	stats := &MergeStats{}
	for _, sourcePath := range cfg.SourcePaths {
		if err := mergeFrom(ctx, dest, sourcePath, stats); err != nil {
			return stats, fmt.Errorf("merging from %s: %w", sourcePath, err)
		}
		stats.SourcesProcessed++
	}
	return stats, nil
}

// MergeInto copies every result of src into dest.
func MergeInto(ctx context.Context, dest, src Store) (*MergeStats, error) {
	stats := &MergeStats{}
	if err := copyResults(ctx, dest, src, stats); err != nil {
		return stats, err
	}
	stats.SourcesProcessed = 1
	return stats, nil
}

func mergeFrom(ctx context.Context, dest Store, sourcePath string, stats *MergeStats) error {
	if sourcePath == ":memory:" {
		return fmt.Errorf("cannot merge from an in-memory store")
	}
	src, err := New(ctx, Config{Path: sourcePath})
	if err != nil {
		return fmt.Errorf("opening source database: %w", err)
	}
	defer src.Close()
	return copyResults(ctx, dest, src, stats)
}

func copyResults(ctx context.Context, dest, src Store, stats *MergeStats) error {
	results, err := src.All(ctx)
	if err != nil {
		return err
	}
	for _, r := range results {
		if err := dest.Record(ctx, r); err != nil {
			return err
		}
		stats.ResultsMerged++
		stats.SightingsMerged += r.Count
	}
	return nil
}
