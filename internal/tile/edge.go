// internal/tile/edge.go
//
// Terrain kinds found on the six sides of a tile.
// Defines:
//   - Edge: ordered terrain enumeration (rank is significant for Matches).
//   - Matches: the symmetric compatibility rule between two touching edges.
//   - Weight: scarcity weight of a terrain used to score placements.

package tile

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Edge is the terrain on one side of a tile.
// The numeric rank is what gets persisted.
type Edge uint8

const (
	EdgeEmpty Edge = iota // no terrain: only legal on an unoccupied slot
	EdgePlain
	EdgeTree
	EdgeWeed
	EdgeHouse
	EdgeRiver
	EdgeRail
	EdgePond
	EdgeDome
)

// NumEdges is the number of distinct edge values, EdgeEmpty included.
const NumEdges = int(EdgeDome) + 1

var (
	// ErrBadEdge is returned when text or a rank does not name an edge.
	ErrBadEdge = errors.New("bad edge")
	// ErrBadRing is returned when a ring does not have exactly six edges.
	ErrBadRing = errors.New("a tile needs exactly 6 edges")
)

var edgeNames = [NumEdges]string{
	EdgeEmpty: "empty",
	EdgePlain: "plain",
	EdgeTree:  "tree",
	EdgeWeed:  "weed",
	EdgeHouse: "house",
	EdgeRiver: "river",
	EdgeRail:  "rail",
	EdgePond:  "pond",
	EdgeDome:  "dome",
}

// weights are lower for scarcer, more constrained terrains.
var weights = [NumEdges]int{
	EdgeEmpty: 0,
	EdgeDome:  0,
	EdgePond:  1,
	EdgePlain: 2,
	EdgeTree:  4,
	EdgeWeed:  4,
	EdgeHouse: 4,
	EdgeRiver: 6,
	EdgeRail:  8,
}

// EdgeFromRank converts a persisted rank into an Edge.
func EdgeFromRank(rank int) (Edge, error) {
	if rank < 0 || rank >= NumEdges {
		return EdgeEmpty, errors.Wrapf(ErrBadEdge, "rank %d out of range 0..%d", rank, NumEdges-1)
	}
	return Edge(rank), nil
}

// ParseEdge accepts either a rank ("5") or a case-insensitive name ("river").
func ParseEdge(s string) (Edge, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		return EdgeFromRank(n)
	}
	for i, name := range edgeNames {
		if name == s {
			return Edge(i), nil
		}
	}
	return EdgeEmpty, errors.Wrapf(ErrBadEdge, "%q", s)
}

// Rank returns the persisted integer form of the edge.
func (e Edge) Rank() int { return int(e) }

// Weight returns the scoring weight of the terrain.
func (e Edge) Weight() int {
	if int(e) >= NumEdges {
		return 0
	}
	return weights[e]
}

// String returns the lowercase terrain name.
func (e Edge) String() string {
	if int(e) >= NumEdges {
		return "edge(" + strconv.Itoa(int(e)) + ")"
	}
	return edgeNames[e]
}

// MarshalText encodes the edge as its name.
func (e Edge) MarshalText() ([]byte, error) {
	if int(e) >= NumEdges {
		return nil, errors.Wrapf(ErrBadEdge, "rank %d", int(e))
	}
	return []byte(edgeNames[e]), nil
}

// UnmarshalText decodes a name or a rank.
func (e *Edge) UnmarshalText(b []byte) error {
	v, err := ParseEdge(string(b))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// UnmarshalJSON accepts a JSON string (name or rank) or a JSON number (rank).
func (e *Edge) UnmarshalJSON(b []byte) error {
	s := string(b)
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	return e.UnmarshalText([]byte(s))
}

// Matches reports whether two touching edges are compatible.
// Equal terrains always match. Ponds also blend with plains and rivers;
// domes blend with plains, rivers, rails and ponds.
func Matches(a, b Edge) bool {
	if a == b {
		return true
	}
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	switch hi {
	case EdgePond:
		return lo == EdgePlain || lo == EdgeRiver
	case EdgeDome:
		return lo == EdgePlain || lo == EdgeRiver || lo == EdgeRail || lo == EdgePond
	}
	return false
}
