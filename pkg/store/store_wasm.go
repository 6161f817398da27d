//go:build wasm

package store

import (
	"context"
	"fmt"
)

// New creates an in-memory store for WASM builds, which have neither a
// filesystem nor sockets. Only ":memory:" is accepted.
func New(_ context.Context, cfg Config) (Store, error) {
	if cfg.Path != ":memory:" {
		return nil, fmt.Errorf("store %q is not available in WASM builds, use :memory:", cfg.Path)
	}
	return NewMemory(), nil
}
