// internal/game/engine.go
//
// Board engine: the only code that mutates the slot graph.
// Responsibilities:
//   - Validate and commit tile placements, growing the frontier one ring
//     ahead of the placed tiles.
//   - Raise advisory diagnostics (edge mismatches, closed slots without a
//     known fitting tile) without refusing the move.
//   - Undo the single most recent placement.
//   - Track the centroid of placed tiles for the distance score.
//
// Notes:
//   - A failed precondition makes no change to the graph.
//   - The engine is synchronous and not safe for concurrent use; callers
//     serialize access.
package game

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/dorfhelper/internal/slots"
	"github.com/robalobadob/dorfhelper/internal/tile"
)

var (
	// ErrEmptyEdge is returned when a tile to place has an empty edge.
	ErrEmptyEdge = errors.New("edge given is empty")
	// ErrUnknownSlot is returned when placing outside the reserved slots.
	ErrUnknownSlot = errors.New("not a valid slot")
	// ErrSlotOccupied is returned when placing on a full slot.
	ErrSlotOccupied = errors.New("slot given not empty")
	// ErrNothingToUndo is returned by Undo when no placement is recorded.
	ErrNothingToUndo = errors.New("nothing to undo")
)

// Config holds engine options.
type Config struct {
	// Logger receives placement logs. Defaults to the global zerolog logger.
	Logger *zerolog.Logger
	// LiveCentroid recomputes the centroid after every placement and undo
	// instead of only when the board is loaded.
	LiveCentroid bool
}

// Board is a growing board of hexagonal tiles.
type Board struct {
	slots *slots.Graph
	log   zerolog.Logger
	live  bool

	last *tile.Coord // most recent placement, for Undo

	// centroid of full tiles; sums are kept current, the centroid itself
	// only moves on Load unless live is set
	mx, my     float64
	sumX, sumY int
	full       int
}

// New creates a board holding a single empty slot at the origin.
func New(cfg Config) *Board {
	l := log.Logger
	if cfg.Logger != nil {
		l = *cfg.Logger
	}
	return &Board{
		slots: slots.New(),
		log:   l,
		live:  cfg.LiveCentroid,
	}
}

// PlaceTile puts t on its slot and returns the stored tile.
//
// Preconditions (each a distinct error, no change on failure):
//   - No edge of t may be empty (ErrEmptyEdge).
//   - The slot must exist (ErrUnknownSlot).
//   - The slot must be empty (ErrSlotOccupied).
//
// Missing neighbor slots are created empty. With validate set, edges that do
// not match a full neighbor are reported as diagnostics, and empty neighbors
// that become closed are checked for a known fitting tile.
func (b *Board) PlaceTile(t tile.Tile, validate bool) (Placement, error) {
	pos := t.Pos
	if t.Edges.HasEmpty() {
		return Placement{}, errors.Wrapf(ErrEmptyEdge, "cannot add tile %v", pos)
	}
	slot, ok := b.slots.Get(pos)
	if !ok {
		return Placement{}, errors.Wrapf(ErrUnknownSlot, "cannot add tile %v", pos)
	}
	if slot.Full() {
		return Placement{}, errors.Wrapf(ErrSlotOccupied, "cannot add tile %v", pos)
	}

	p := Placement{Diagnostics: []Diagnostic{}, Closed: []ClosedSlot{}}
	for d := tile.Direction(0); d < tile.Sides; d++ {
		nc := pos.Neighbor(d)
		n, ok := b.slots.Get(nc)
		if !ok {
			if err := b.slots.AddSlot(nc); err != nil {
				return Placement{}, err
			}
			continue
		}
		if validate && n.Full() && !tile.Matches(t.Edge(d), n.Edge(d.Opposite())) {
			p.Diagnostics = append(p.Diagnostics, Diagnostic{
				Kind:      DiagnosticMismatch,
				Pos:       nc,
				Direction: d,
				Edge:      t.Edge(d),
				Facing:    n.Edge(d.Opposite()),
			})
			b.log.Warn().Int("edge", int(d)+1).Stringer("neighbor", nc).Msg("edge does not match")
		}
	}
	if err := b.slots.Fill(pos, t.Edges); err != nil {
		return Placement{}, err
	}
	b.last = &pos
	b.track(pos, +1)

	p.Tile, _ = b.slots.Get(pos)
	if validate {
		b.log.Info().Stringer("pos", pos).Msg("tile placed")
		b.checkClosed(pos, &p)
	}
	return p, nil
}

// checkClosed inspects the empty neighbors of pos that are now surrounded.
func (b *Board) checkClosed(pos tile.Coord, p *Placement) {
	for _, nc := range pos.Neighbors() {
		n, ok := b.slots.Get(nc)
		if !ok || n.Full() {
			continue
		}
		around := b.slots.Neighbors(nc)
		if !around.Full() {
			continue
		}
		ideal := around.Facing()
		candidates := b.FindCandidate(ideal)
		p.Closed = append(p.Closed, ClosedSlot{Pos: nc, Ideal: ideal, Candidates: candidates})
		if len(candidates) == 0 {
			p.Diagnostics = append(p.Diagnostics, Diagnostic{Kind: DiagnosticClosedSlot, Pos: nc})
			b.log.Warn().Stringer("slot", nc).Msg("slot closed but no candidate seen before")
			continue
		}
		b.log.Info().Stringer("slot", nc).Int("candidates", len(candidates)).Msg("slot closed")
	}
}

// Undo reverts the most recent placement to an empty slot. Only one level of
// undo exists: a second call returns ErrNothingToUndo and changes nothing.
func (b *Board) Undo() (tile.Coord, error) {
	if b.last == nil {
		b.log.Warn().Msg("no last placement")
		return tile.Coord{}, ErrNothingToUndo
	}
	pos := *b.last
	if err := b.slots.RemoveSlot(pos); err != nil {
		return tile.Coord{}, err
	}
	if err := b.slots.AddSlot(pos); err != nil {
		return tile.Coord{}, err
	}
	b.last = nil
	b.track(pos, -1)
	b.log.Info().Stringer("pos", pos).Msg("last tile removed")
	return pos, nil
}

// LastPlacement returns the coordinate Undo would revert.
func (b *Board) LastPlacement() (tile.Coord, bool) {
	if b.last == nil {
		return tile.Coord{}, false
	}
	return *b.last, true
}

// Slot returns the slot at c.
func (b *Board) Slot(c tile.Coord) (tile.Tile, bool) {
	return b.slots.Get(c)
}

// Tiles returns every slot, empty ones included, in creation order.
func (b *Board) Tiles() []tile.Tile {
	return b.slots.All()
}

// FullTiles returns the placed tiles in creation order.
func (b *Board) FullTiles() []tile.Tile {
	out := make([]tile.Tile, 0, b.full)
	b.slots.Each(func(t tile.Tile) bool {
		if t.Full() {
			out = append(out, t)
		}
		return true
	})
	return out
}

// Count returns the number of placed tiles.
func (b *Board) Count() int { return b.full }

// Centroid returns the reference point of the distance score.
func (b *Board) Centroid() (x, y float64) { return b.mx, b.my }

// track adds (sign=+1) or removes (sign=-1) a full tile from the centroid sums.
func (b *Board) track(pos tile.Coord, sign int) {
	b.sumX += sign * pos.X
	b.sumY += sign * pos.Y
	b.full += sign
	if b.live {
		b.updateCentroid()
	}
}

// updateCentroid sets the centroid to the mean position of the full tiles,
// or the origin on an empty board.
func (b *Board) updateCentroid() {
	if b.full == 0 {
		b.mx, b.my = 0, 0
		return
	}
	b.mx = float64(b.sumX) / float64(b.full)
	b.my = float64(b.sumY) / float64(b.full)
}
