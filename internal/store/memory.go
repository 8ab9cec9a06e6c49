// internal/store/memory.go
//
// In-memory Store.
// Characteristics:
//   - Boards keyed by name in a map, records copied in and out.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/robalobadob/dorfhelper/internal/game"
)

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu     sync.RWMutex             // guards boards
	boards map[string][]game.Record // keyed by board name
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{boards: make(map[string][]game.Record)}
}

// Load looks up a board by name.
func (m *memory) Load(ctx context.Context, board string) ([]game.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if records, ok := m.boards[board]; ok {
		return cloneRecords(records), nil
	}
	return nil, errors.Wrapf(ErrNotFound, "board %q", board)
}

// Save adds or replaces the board in the map.
func (m *memory) Save(ctx context.Context, board string, records []game.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.boards[board] = cloneRecords(records)
	return nil
}

func (m *memory) Close() error { return nil }
