package store

import (
	"context"
	"errors"
	"strings"

	"github.com/praetorian-inc/uaparser/pkg/types"
)

// ErrNotFound is returned by Get when no result is stored for an id.
var ErrNotFound = errors.New("result not found")

// Store persists classified user agents, one record per distinct user agent
// string. Recording a user agent that is already stored adds to its count.
type Store interface {
	// Record stores r, or merges it into the existing record with the same
	// ID: counts are summed and the seen window is widened.
	Record(ctx context.Context, r *types.Result) error

	// Get retrieves the result for id, or ErrNotFound.
	Get(ctx context.Context, id types.ID) (*types.Result, error)

	// All retrieves every result, most frequently seen first and then by
	// user agent.
	All(ctx context.Context) ([]*types.Result, error)

	// Count returns the number of distinct user agents stored.
	Count(ctx context.Context) (int, error)

	// Close releases the backend.
	Close() error
}

// Config for store initialization.
type Config struct {
	// Path selects the backend: ":memory:" for the in-memory store, a
	// postgres:// or postgresql:// URL for PostgreSQL, anything else is a
	// SQLite database file.
	Path string
}

// IsPostgresURL reports whether path selects the PostgreSQL backend.
func IsPostgresURL(path string) bool {
	return strings.HasPrefix(path, "postgres://") || strings.HasPrefix(path, "postgresql://")
}

// merge folds src into dst the way every backend upserts.
func merge(dst, src *types.Result) {
	dst.Count += src.Count
	if src.FirstSeen.Before(dst.FirstSeen) {
		dst.FirstSeen = src.FirstSeen
	}
	if src.LastSeen.After(dst.LastSeen) {
		dst.LastSeen = src.LastSeen
		dst.Parsed = src.Parsed
		dst.DeviceType = src.DeviceType
	}
}
