package game

import (
	"github.com/pkg/errors"

	"github.com/robalobadob/dorfhelper/internal/tile"
)

// Load rebuilds a board from persisted records without raising diagnostics,
// then sets the centroid from the placed tiles.
//
// Records may come in any order: a record whose slot does not exist yet is
// retried once the others are placed. Records that can never be reached from
// the origin make Load fail with ErrUnknownSlot.
func Load(records []Record, cfg Config) (*Board, error) {
	b := New(cfg)
	pending := make([]tile.Tile, 0, len(records))
	for i, r := range records {
		t, err := r.Tile()
		if err != nil {
			return nil, errors.Wrapf(err, "record %d", i)
		}
		pending = append(pending, t)
	}
	for len(pending) > 0 {
		var deferred []tile.Tile
		for _, t := range pending {
			_, err := b.PlaceTile(t, false)
			switch {
			case errors.Is(err, ErrUnknownSlot):
				deferred = append(deferred, t)
			case err != nil:
				return nil, errors.Wrap(err, "loading board")
			}
		}
		if len(deferred) == len(pending) {
			return nil, errors.Wrapf(ErrUnknownSlot, "loading board: %d tiles not connected, first at %v", len(deferred), deferred[0].Pos)
		}
		pending = deferred
	}
	b.last = nil
	b.updateCentroid()
	b.log.Info().Int("tiles", b.full).Msg("board loaded")
	return b, nil
}

// Records returns the placed tiles in board order, ready to persist.
func (b *Board) Records() []Record {
	full := b.FullTiles()
	out := make([]Record, len(full))
	for i, t := range full {
		out[i] = RecordOf(t)
	}
	return out
}
