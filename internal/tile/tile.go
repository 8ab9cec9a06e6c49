// internal/tile/tile.go
//
// Hexagonal tiles and the coordinates they sit on.
// Defines:
//   - Coord: axial (x, y) position; Direction: one of the six sides.
//   - Ring: the six edges of a tile in direction order, with rotation helpers.
//   - Tile: a slot value (position, ring, state). Tiles never hold references
//     to their neighbors; neighbors are found by coordinate lookup.
//
// Direction i faces the neighbor at Deltas[i]; its opposite is (i+3) mod 6.

// Package tile contains the values placed on a hexagonal board.
package tile

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Sides is the number of sides of a hexagonal tile.
const Sides = 6

// Coord is an axial hex coordinate.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Direction indexes a side of a tile, 0..5.
type Direction int

// Deltas are the coordinate offsets of the six neighbors, by direction.
var Deltas = [Sides]Coord{
	{X: +1, Y: 0},
	{X: 0, Y: +1},
	{X: -1, Y: +1},
	{X: -1, Y: 0},
	{X: 0, Y: -1},
	{X: +1, Y: -1},
}

// Opposite returns the direction facing back from a neighbor.
func (d Direction) Opposite() Direction {
	return (d + 3) % Sides
}

// Neighbor returns the coordinate adjacent to c in direction d.
func (c Coord) Neighbor(d Direction) Coord {
	delta := Deltas[d]
	return Coord{X: c.X + delta.X, Y: c.Y + delta.Y}
}

// Neighbors returns the six adjacent coordinates in direction order.
func (c Coord) Neighbors() [Sides]Coord {
	var out [Sides]Coord
	for d := Direction(0); d < Sides; d++ {
		out[d] = c.Neighbor(d)
	}
	return out
}

// String formats the coordinate as "(x, y)".
func (c Coord) String() string {
	return "(" + strconv.Itoa(c.X) + ", " + strconv.Itoa(c.Y) + ")"
}

// Ring holds the six edges of a tile, indexed by Direction.
type Ring [Sides]Edge

// Rotate returns the ring turned by k directions: edge i of the result is
// edge (i+k) mod 6 of r. Negative k turns the other way.
func (r Ring) Rotate(k int) Ring {
	k = ((k % Sides) + Sides) % Sides
	var out Ring
	for i := 0; i < Sides; i++ {
		out[i] = r[(i+k)%Sides]
	}
	return out
}

// Period returns the smallest rotation (1, 2, 3 or 6) mapping the ring onto
// itself, which is also the number of distinct rotations of the ring.
func (r Ring) Period() int {
	for _, p := range [...]int{1, 2, 3} {
		if r.Rotate(p) == r {
			return p
		}
	}
	return Sides
}

// Rotations returns the distinct rotations of the ring, starting with r itself.
func (r Ring) Rotations() []Ring {
	n := r.Period()
	out := make([]Ring, n)
	for i := 0; i < n; i++ {
		out[i] = r.Rotate(i)
	}
	return out
}

// HasEmpty reports whether any edge is EdgeEmpty.
func (r Ring) HasEmpty() bool {
	for _, e := range r {
		if e == EdgeEmpty {
			return true
		}
	}
	return false
}

// Matches reports whether every edge of r is compatible with the edge of o
// at the same index.
func (r Ring) Matches(o Ring) bool {
	for i := range r {
		if !Matches(r[i], o[i]) {
			return false
		}
	}
	return true
}

// Ranks returns the persisted integer form of the ring.
func (r Ring) Ranks() [Sides]int {
	var out [Sides]int
	for i, e := range r {
		out[i] = e.Rank()
	}
	return out
}

// RingFromRanks converts persisted ranks into a ring.
func RingFromRanks(ranks [Sides]int) (Ring, error) {
	var r Ring
	for i, n := range ranks {
		e, err := EdgeFromRank(n)
		if err != nil {
			return Ring{}, err
		}
		r[i] = e
	}
	return r, nil
}

// ParseRing reads six edges, each a name or a rank.
func ParseRing(fields []string) (Ring, error) {
	var r Ring
	if len(fields) != Sides {
		return r, ErrBadRing
	}
	for i, f := range fields {
		e, err := ParseEdge(f)
		if err != nil {
			return Ring{}, err
		}
		r[i] = e
	}
	return r, nil
}

// String formats the ring as "[plain tree ...]".
func (r Ring) String() string {
	names := make([]string, Sides)
	for i, e := range r {
		names[i] = e.String()
	}
	return "[" + strings.Join(names, " ") + "]"
}

// State tells whether a slot holds a tile.
type State uint8

const (
	StateEmpty State = iota // slot reserved, no tile placed
	StateFull               // tile placed with six non-empty edges
)

// String returns "empty" or "full".
func (s State) String() string {
	if s == StateFull {
		return "full"
	}
	return "empty"
}

// MarshalText encodes the state as its name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes "empty" or "full".
func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "empty":
		*s = StateEmpty
	case "full":
		*s = StateFull
	default:
		return errors.Errorf("unknown tile state %q", b)
	}
	return nil
}

// Tile is a slot on the board: empty, or full with six edges.
type Tile struct {
	Pos   Coord `json:"pos"`
	Edges Ring  `json:"edges"`
	State State `json:"state"`
}

// Slot returns an empty tile at c.
func Slot(c Coord) Tile {
	return Tile{Pos: c}
}

// New returns a full tile at c with the given edges.
func New(c Coord, edges Ring) Tile {
	return Tile{Pos: c, Edges: edges, State: StateFull}
}

// Full reports whether a tile has been placed in the slot.
func (t Tile) Full() bool { return t.State == StateFull }

// Edge returns the edge facing direction d.
func (t Tile) Edge(d Direction) Edge { return t.Edges[d] }
