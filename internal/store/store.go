// internal/store/store.go
//
// Persistence for boards.
// A board is saved as its placed tiles, one game.Record per tile, in board
// order. Backends:
//   - memory://            process memory, lost on restart
//   - csv://path           one x;y;e0..e5 line per tile
//   - sample://            the embedded demo board, read-only
//   - sqlite://path        database/sql + go-sqlite3
//   - postgres://...       database/sql + lib/pq
//   - mongodb://...        one document per board
//   - firestore://project  one document per board
//   - badger://dir         embedded key/value store, in memory without dir
//
// Every backend keys boards by name except csv and sample, which hold a
// single board and ignore the name.

package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/dorfhelper/internal/game"
)

var (
	// ErrNotFound is returned by Load for a board that was never saved.
	ErrNotFound = errors.New("board not found")
	// ErrReadOnly is returned by Save on a backend that cannot be written.
	ErrReadOnly = errors.New("store is read-only")
)

// Store persists boards as ordered tile records.
type Store interface {
	// Load returns the records of the named board.
	// Returns an error wrapping ErrNotFound if it was never saved.
	Load(ctx context.Context, board string) ([]game.Record, error)

	// Save replaces the named board with records.
	Save(ctx context.Context, board string, records []game.Record) error

	// Close releases the backend.
	Close() error
}

// Config holds options shared by the backends.
type Config struct {
	// QueryTimeout bounds each database round trip.
	QueryTimeout time.Duration
}

// DefaultQueryTimeout is used when Config.QueryTimeout is zero.
const DefaultQueryTimeout = 10 * time.Second

func (c Config) timeout() time.Duration {
	if c.QueryTimeout <= 0 {
		return DefaultQueryTimeout
	}
	return c.QueryTimeout
}

// withTimeout runs f with a context bounded by the query timeout.
func (c Config) withTimeout(ctx context.Context, f func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()
	return f(ctx)
}

// LoadBoard reads the named board from s and rebuilds it. A board that was
// never saved loads as a fresh board.
func LoadBoard(ctx context.Context, s Store, board string, cfg game.Config) (*game.Board, error) {
	records, err := s.Load(ctx, board)
	switch {
	case errors.Is(err, ErrNotFound):
		log.Info().Str("board", board).Msg("no saved board, starting fresh")
		records = nil
	case err != nil:
		return nil, err
	}
	return game.Load(records, cfg)
}

// SaveBoard writes the placed tiles of b to s.
func SaveBoard(ctx context.Context, s Store, board string, b *game.Board) (int, error) {
	records := b.Records()
	if err := s.Save(ctx, board, records); err != nil {
		return 0, err
	}
	log.Info().Str("board", board).Int("tiles", len(records)).Msg("tiles saved")
	return len(records), nil
}

// cloneRecords copies records so callers cannot alias stored state.
func cloneRecords(records []game.Record) []game.Record {
	out := make([]game.Record, len(records))
	copy(out, records)
	return out
}
