//go:build !wasm

package store

import (
	"context"
	"fmt"
)

// New creates the Store selected by cfg.Path.
func New(ctx context.Context, cfg Config) (Store, error) {
	switch {
	case cfg.Path == "":
		return nil, fmt.Errorf("path is required")
	case cfg.Path == ":memory:":
		return NewMemory(), nil
	case IsPostgresURL(cfg.Path):
		return NewPostgres(ctx, cfg.Path)
	}
	return NewSQLite(cfg.Path)
}
