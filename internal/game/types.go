// internal/game/types.go
//
// Core type definitions for the board engine.
// Defines:
//   - Record: the flat persisted form of one placed tile.
//   - Placement: the result of placing a tile, with its diagnostics.
//   - Match / FiveOfSixMatch / Recommendation: the output of HelpMe.

package game

import (
	"github.com/robalobadob/dorfhelper/internal/tile"
)

// Record is one placed tile as persisted: axial coordinates and the six
// edge ranks in direction order.
type Record struct {
	X     int             `json:"x"`
	Y     int             `json:"y"`
	Edges [tile.Sides]int `json:"edges"`
}

// RecordOf flattens a tile into a Record.
func RecordOf(t tile.Tile) Record {
	return Record{X: t.Pos.X, Y: t.Pos.Y, Edges: t.Edges.Ranks()}
}

// Tile converts the record back into a full tile.
func (r Record) Tile() (tile.Tile, error) {
	ring, err := tile.RingFromRanks(r.Edges)
	if err != nil {
		return tile.Tile{}, err
	}
	return tile.New(tile.Coord{X: r.X, Y: r.Y}, ring), nil
}

// DiagnosticKind classifies a non-fatal finding raised during placement.
type DiagnosticKind string

const (
	// DiagnosticMismatch: an edge of the placed tile is not compatible with
	// the full neighbor it touches. The placement still happens.
	DiagnosticMismatch DiagnosticKind = "mismatch"
	// DiagnosticClosedSlot: an empty slot got surrounded by six tiles and no
	// tile seen so far would fit it.
	DiagnosticClosedSlot DiagnosticKind = "closed_slot"
)

// Diagnostic is an advisory finding. It is never an error.
type Diagnostic struct {
	Kind DiagnosticKind `json:"kind"`
	// Pos is the neighbor for a mismatch, or the closed slot.
	Pos tile.Coord `json:"pos"`
	// Direction, Edge and Facing describe a mismatch: the placed tile's Edge
	// in Direction touches the neighbor's Facing edge.
	Direction tile.Direction `json:"direction"`
	Edge      tile.Edge      `json:"edge,omitempty"`
	Facing    tile.Edge      `json:"facing,omitempty"`
}

// ClosedSlot is an empty slot whose six neighbors are all full.
type ClosedSlot struct {
	Pos tile.Coord `json:"pos"`
	// Ideal is the ring that would fit every neighbor.
	Ideal tile.Ring `json:"ideal"`
	// Candidates are the placed tiles compatible with Ideal.
	Candidates []tile.Coord `json:"candidates"`
}

// Placement is the outcome of a successful PlaceTile.
type Placement struct {
	Tile        tile.Tile    `json:"tile"`
	Diagnostics []Diagnostic `json:"diagnostics"`
	Closed      []ClosedSlot `json:"closed"`
}

// Match is a rotation of the tile in hand that fits an empty slot with no
// conflicting neighbor.
type Match struct {
	// Tile is the hypothetical placement: slot coordinate and rotated ring.
	Tile tile.Tile `json:"tile"`
	// Neighbors is how many of the six neighbors are full.
	Neighbors int `json:"neighbors"`
	// Value is the summed edge weights per neighbor, truncated to three
	// significant digits. Higher is better.
	Value float64 `json:"value"`
	// Distance from the board centroid in layout space, truncated to three
	// significant digits. Lower is better.
	Distance float64 `json:"distance"`
}

// FiveOfSixMatch is a rotation that fits a closed slot on five sides out of six.
type FiveOfSixMatch struct {
	Tile tile.Tile `json:"tile"`
	// IdealOccurrences counts placed tiles that would fit all six sides.
	IdealOccurrences int `json:"idealOccurrences"`
}

// Recommendation is the output of HelpMe. Matches are in board scan order;
// use Ranked, BestValue and BestMatch to order them.
type Recommendation struct {
	Matches   []Match          `json:"matches"`
	FiveOfSix []FiveOfSixMatch `json:"fiveOfSix"`
}

// Pick is a selected match. Confirmed is false when another match ties with
// it on the selection criterion.
type Pick struct {
	Match
	Confirmed bool `json:"confirmed"`
}

// Group lists matches sharing a neighbor count.
type Group struct {
	Neighbors int     `json:"neighbors"`
	Matches   []Match `json:"matches"`
	// Total is the group size before the limit was applied.
	Total int `json:"total"`
}
