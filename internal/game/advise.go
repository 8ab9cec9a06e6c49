// internal/game/advise.go
//
// Placement advice for the tile in hand.
//
// Scoring, per empty slot with at least two full neighbors and per distinct
// rotation of the tile:
//   - A full neighbor whose facing edge is compatible adds the weights of both
//     touching edges; the first incompatible one is a conflict. Scanning stops
//     once there is more than one conflict.
//   - A side facing no tile subtracts the weight of the tile's own edge.
//   - No conflict: a Match, valued per neighbor.
//   - Exactly one conflict on a closed slot: a FiveOfSixMatch.
//   - Anything else is dropped.

package game

import (
	"math"

	"github.com/pkg/errors"

	"github.com/robalobadob/dorfhelper/internal/slots"
	"github.com/robalobadob/dorfhelper/internal/tile"
)

const (
	// minNeighbors is the fewest full neighbors a slot needs to be scored.
	minNeighbors = 2
	// scoreDigits is the number of significant digits kept in scores.
	scoreDigits = 3
	// cos30 scales x in the skewed layout used to display the board.
	cos30 = 0.866
)

// HelpMe scores every viable empty slot for the tile in hand.
// An empty result is not an error; a ring with an empty edge is.
func (b *Board) HelpMe(ring tile.Ring) (Recommendation, error) {
	rec := Recommendation{Matches: []Match{}, FiveOfSix: []FiveOfSixMatch{}}
	if ring.HasEmpty() {
		return rec, errors.Wrapf(ErrEmptyEdge, "cannot advise on %v", ring)
	}
	rotations := ring.Rotations()

	var candidates []tile.Coord
	b.slots.Each(func(t tile.Tile) bool {
		if !t.Full() && b.slots.FullNeighbors(t.Pos) >= minNeighbors {
			candidates = append(candidates, t.Pos)
		}
		return true
	})

	for _, pos := range candidates {
		around := b.slots.Neighbors(pos)
		neighbors := b.slots.FullNeighbors(pos)
		for _, r := range rotations {
			candidate := tile.New(pos, r)
			value, conflicts := score(candidate, around)
			switch {
			case conflicts == 1 && neighbors == tile.Sides:
				ideal := around.Facing()
				rec.FiveOfSix = append(rec.FiveOfSix, FiveOfSixMatch{
					Tile:             candidate,
					IdealOccurrences: len(b.FindCandidate(ideal)),
				})
			case conflicts == 0:
				rec.Matches = append(rec.Matches, Match{
					Tile:      candidate,
					Neighbors: neighbors,
					Value:     truncate(float64(value)/float64(neighbors), scoreDigits),
					Distance:  truncate(b.distance(pos), scoreDigits),
				})
			}
		}
	}
	return rec, nil
}

// score sums the edge weights of candidate against its neighborhood and
// counts conflicting sides, stopping after the second conflict.
func score(candidate tile.Tile, around slots.Neighborhood) (value, conflicts int) {
	for d, n := range around {
		dir := tile.Direction(d)
		own := candidate.Edge(dir)
		if n == nil || !n.Full() {
			value -= own.Weight()
			continue
		}
		facing := n.Edge(dir.Opposite())
		if !tile.Matches(own, facing) {
			conflicts++
			if conflicts > 1 {
				break
			}
			continue
		}
		value += facing.Weight() + own.Weight()
	}
	return value, conflicts
}

// distance is the euclidean distance from the centroid to c in layout space.
func (b *Board) distance(c tile.Coord) float64 {
	x, y := skew(float64(c.X)-b.mx, float64(c.Y)-b.my)
	return math.Sqrt(x*x + y*y)
}

// skew maps axial coordinates to the sheared plane the board is drawn on.
func skew(x, y float64) (float64, float64) {
	return x * cos30, y + x*0.5
}

// truncate keeps the first digits significant digits of v, dropping the rest
// toward zero.
func truncate(v float64, digits int) float64 {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	magnitude := int(math.Floor(math.Log10(math.Abs(v)))) + 1
	scale := math.Pow(10, float64(digits-magnitude))
	scaled := v * scale
	// absorb representation error such as 2.3*100 = 229.99999999999997
	scaled = math.Trunc(scaled + math.Copysign(1e-9, scaled))
	return scaled / scale
}
