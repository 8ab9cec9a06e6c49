package game

import (
	"github.com/robalobadob/dorfhelper/internal/tile"
)

// FindTile returns the placed tiles whose edges equal some rotation of ring.
// Each tile is reported at most once, in board order.
func (b *Board) FindTile(ring tile.Ring) []tile.Coord {
	return b.find(ring, func(placed, rotated tile.Ring) bool {
		return placed == rotated
	})
}

// FindCandidate is FindTile with edge compatibility instead of equality, so a
// pond or dome edge stands in for the terrains it blends with.
func (b *Board) FindCandidate(ring tile.Ring) []tile.Coord {
	return b.find(ring, func(placed, rotated tile.Ring) bool {
		return placed.Matches(rotated)
	})
}

// find scans the full tiles against the distinct rotations of ring.
func (b *Board) find(ring tile.Ring, same func(placed, rotated tile.Ring) bool) []tile.Coord {
	rotations := ring.Rotations()
	out := []tile.Coord{}
	b.slots.Each(func(t tile.Tile) bool {
		if !t.Full() {
			return true
		}
		for _, r := range rotations {
			if same(t.Edges, r) {
				out = append(out, t.Pos)
				break
			}
		}
		return true
	})
	return out
}
