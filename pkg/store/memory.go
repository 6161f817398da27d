package store

import (
	"context"
	"sort"
	"sync"

	"github.com/praetorian-inc/uaparser/pkg/types"
)

// MemoryStore implements Store using in-memory data structures.
type MemoryStore struct {
	mu      sync.RWMutex
	results map[types.ID]*types.Result
}

// NewMemory creates a new in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		results: make(map[types.ID]*types.Result),
	}
}

// Record stores r or merges it into the existing record.
func (m *MemoryStore) Record(_ context.Context, r *types.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.results[r.ID]; ok {
		merge(existing, r)
		return nil
	}
	stored := *r
	m.results[r.ID] = &stored
	return nil
}

// Get retrieves the result for id.
func (m *MemoryStore) Get(_ context.Context, id types.ID) (*types.Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.results[id]
	if !ok {
		return nil, ErrNotFound
	}
	// Return a copy to avoid external modifications
	out := *r
	return &out, nil
}

// All retrieves every result, most frequently seen first.
func (m *MemoryStore) All(_ context.Context) ([]*types.Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*types.Result, 0, len(m.results))
	for _, r := range m.results {
		c := *r
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].UserAgent < out[j].UserAgent
	})
	return out, nil
}

// Count returns the number of distinct user agents.
func (m *MemoryStore) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.results), nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}
