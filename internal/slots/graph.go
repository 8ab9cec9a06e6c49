// internal/slots/graph.go
//
// The slot graph: every coordinate the board has reserved, empty or full.
// Responsibilities:
//   - Own every tile value in a single arena, indexed by coordinate.
//   - Keep insertion order, which callers use for deterministic scans.
//   - Resolve neighbors by coordinate arithmetic instead of stored links.
//
// The graph is seeded with an empty slot at the origin and is never empty.

// Package slots stores the hexagonal slots of a board.
package slots

import (
	"github.com/pkg/errors"

	"github.com/robalobadob/dorfhelper/internal/tile"
)

var (
	// ErrSlotExists is returned when adding a slot at a coordinate already taken.
	ErrSlotExists = errors.New("slot already created")
	// ErrSlotNotFound is returned when no slot exists at a coordinate.
	ErrSlotNotFound = errors.New("slot not found")
)

// Origin is the coordinate of the seed slot.
var Origin = tile.Coord{}

// Graph holds the slots of a board.
// It is not safe for concurrent mutation.
type Graph struct {
	index map[tile.Coord]int // position in slots
	slots []tile.Tile        // insertion order
}

// Neighborhood holds the neighbors of a slot by direction; nil where no slot
// has been created yet. The tiles are copies.
type Neighborhood [tile.Sides]*tile.Tile

// New creates a graph holding a single empty slot at the origin.
func New() *Graph {
	g := &Graph{index: make(map[tile.Coord]int)}
	g.slots = append(g.slots, tile.Slot(Origin))
	g.index[Origin] = 0
	return g
}

// AddSlot reserves an empty slot at c.
func (g *Graph) AddSlot(c tile.Coord) error {
	if _, ok := g.index[c]; ok {
		return errors.Wrapf(ErrSlotExists, "cannot add slot %v", c)
	}
	g.index[c] = len(g.slots)
	g.slots = append(g.slots, tile.Slot(c))
	return nil
}

// RemoveSlot deletes the slot at c. Later slots keep their relative order.
func (g *Graph) RemoveSlot(c tile.Coord) error {
	i, ok := g.index[c]
	if !ok {
		return errors.Wrapf(ErrSlotNotFound, "cannot remove slot %v", c)
	}
	delete(g.index, c)
	g.slots = append(g.slots[:i], g.slots[i+1:]...)
	for j := i; j < len(g.slots); j++ {
		g.index[g.slots[j].Pos] = j
	}
	return nil
}

// Fill marks the slot at c full with the given edges.
func (g *Graph) Fill(c tile.Coord, edges tile.Ring) error {
	i, ok := g.index[c]
	if !ok {
		return errors.Wrapf(ErrSlotNotFound, "cannot fill slot %v", c)
	}
	g.slots[i] = tile.New(c, edges)
	return nil
}

// Get returns a copy of the slot at c.
func (g *Graph) Get(c tile.Coord) (tile.Tile, bool) {
	i, ok := g.index[c]
	if !ok {
		return tile.Tile{}, false
	}
	return g.slots[i], true
}

// Has reports whether a slot exists at c.
func (g *Graph) Has(c tile.Coord) bool {
	_, ok := g.index[c]
	return ok
}

// Len returns the number of slots, empty ones included.
func (g *Graph) Len() int { return len(g.slots) }

// All returns copies of every slot in insertion order.
func (g *Graph) All() []tile.Tile {
	out := make([]tile.Tile, len(g.slots))
	copy(out, g.slots)
	return out
}

// Each calls f for every slot in insertion order until f returns false.
// f must not mutate the graph.
func (g *Graph) Each(f func(t tile.Tile) bool) {
	for _, t := range g.slots {
		if !f(t) {
			return
		}
	}
}

// Neighbors returns the six neighbors of the coordinate c.
func (g *Graph) Neighbors(c tile.Coord) Neighborhood {
	var n Neighborhood
	for d, nc := range c.Neighbors() {
		if i, ok := g.index[nc]; ok {
			t := g.slots[i]
			n[d] = &t
		}
	}
	return n
}

// FullNeighbors counts the neighbors of c that hold a tile.
func (g *Graph) FullNeighbors(c tile.Coord) int {
	count := 0
	for _, nc := range c.Neighbors() {
		if i, ok := g.index[nc]; ok && g.slots[i].Full() {
			count++
		}
	}
	return count
}

// Full reports whether every neighbor in the neighborhood holds a tile.
func (n Neighborhood) Full() bool {
	for _, t := range n {
		if t == nil || !t.Full() {
			return false
		}
	}
	return true
}

// Facing returns the ring of edges the neighbors turn towards the center:
// entry d is neighbor d's edge in the opposite direction. Missing or empty
// neighbors contribute tile.EdgeEmpty.
func (n Neighborhood) Facing() tile.Ring {
	var r tile.Ring
	for d, t := range n {
		if t != nil && t.Full() {
			r[d] = t.Edge(tile.Direction(d).Opposite())
		}
	}
	return r
}
