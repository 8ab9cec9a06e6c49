package game

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/robalobadob/dorfhelper/internal/tile"
)

var (
	allPlain = uniform(tile.EdgePlain)
	origin   = tile.Coord{}
)

func uniform(e tile.Edge) tile.Ring {
	return tile.Ring{e, e, e, e, e, e}
}

func quietBoard() *Board {
	l := zerolog.Nop()
	return New(Config{Logger: &l, LiveCentroid: true})
}

func mustPlace(t *testing.T, b *Board, c tile.Coord, r tile.Ring) Placement {
	t.Helper()
	p, err := b.PlaceTile(tile.New(c, r), true)
	if err != nil {
		t.Fatalf("placing %v at %v: unwanted error: %v", r, c, err)
	}
	return p
}

func slotMap(b *Board) map[tile.Coord]tile.Tile {
	m := make(map[tile.Coord]tile.Tile)
	for _, t := range b.Tiles() {
		m[t.Pos] = t
	}
	return m
}

// surround fills the six neighbors of (1, 0) with the given rings, leaving
// (1, 0) itself as a closed empty slot.
func surround(t *testing.T, b *Board, rings [tile.Sides]tile.Ring) []Placement {
	t.Helper()
	order := []tile.Coord{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: -1}, {X: 1, Y: 1}, {X: 2, Y: -1}, {X: 2, Y: 0}}
	out := make([]Placement, len(order))
	for i, c := range order {
		out[i] = mustPlace(t, b, c, rings[i])
	}
	return out
}

func TestNewBoard(t *testing.T) {
	b := quietBoard()
	tiles := b.Tiles()
	if len(tiles) != 1 {
		t.Fatalf("wanted exactly one slot, got %v", tiles)
	}
	if tiles[0].Pos != origin || tiles[0].Full() {
		t.Errorf("wanted an empty origin slot, got %v", tiles[0])
	}
	if _, ok := b.LastPlacement(); ok {
		t.Error("fresh board should have no last placement")
	}
}

func TestPlaceFirstTile(t *testing.T) {
	b := quietBoard()
	p := mustPlace(t, b, origin, allPlain)
	if !p.Tile.Full() || p.Tile.Edges != allPlain {
		t.Errorf("wanted full plain tile, got %v", p.Tile)
	}
	if len(p.Diagnostics) != 0 {
		t.Errorf("wanted no diagnostics, got %v", p.Diagnostics)
	}
	if got := len(b.Tiles()); got != 7 {
		t.Errorf("wanted 7 slots, got %v", got)
	}
	for d, delta := range tile.Deltas {
		n, ok := b.Slot(delta)
		switch {
		case !ok:
			t.Errorf("direction %v: no slot at %v", d, delta)
		case n.Full():
			t.Errorf("direction %v: slot %v should be empty", d, delta)
		}
	}
}

func TestPlaceTileInvariants(t *testing.T) {
	b := quietBoard()
	mustPlace(t, b, origin, allPlain)
	mustPlace(t, b, tile.Coord{X: 1, Y: 0}, uniform(tile.EdgeRiver))
	mustPlace(t, b, tile.Coord{X: 0, Y: -1}, uniform(tile.EdgeDome))
	for _, s := range b.Tiles() {
		switch {
		case s.Full():
			if s.Edges.HasEmpty() {
				t.Errorf("full tile %v has an empty edge", s)
			}
			for _, nc := range s.Pos.Neighbors() {
				if _, ok := b.Slot(nc); !ok {
					t.Errorf("full tile %v is missing neighbor slot %v", s.Pos, nc)
				}
			}
		case s.Edges != (tile.Ring{}):
			t.Errorf("empty slot %v has edges %v", s.Pos, s.Edges)
		}
	}
}

func TestPlaceTileMismatch(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)
	b := New(Config{Logger: &l})
	if _, err := b.PlaceTile(tile.New(origin, allPlain), true); err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	ring := allPlain
	ring[3] = tile.EdgeRail // faces the origin's plain edge 0
	east := tile.Coord{X: 1, Y: 0}
	p, err := b.PlaceTile(tile.New(east, ring), true)
	if err != nil {
		t.Fatalf("mismatch must not fail placement: %v", err)
	}
	if len(p.Diagnostics) != 1 {
		t.Fatalf("wanted 1 diagnostic, got %v", p.Diagnostics)
	}
	want := Diagnostic{Kind: DiagnosticMismatch, Pos: origin, Direction: 3, Edge: tile.EdgeRail, Facing: tile.EdgePlain}
	if got := p.Diagnostics[0]; got != want {
		t.Errorf("wanted %+v, got %+v", want, got)
	}
	if s, _ := b.Slot(east); !s.Full() {
		t.Error("tile should be placed despite the mismatch")
	}
	if !strings.Contains(buf.String(), "edge does not match") {
		t.Errorf("wanted a mismatch warning in the log, got %q", buf.String())
	}
}

func TestPlaceTileNoValidate(t *testing.T) {
	b := quietBoard()
	mustPlace(t, b, origin, allPlain)
	p, err := b.PlaceTile(tile.New(tile.Coord{X: 1, Y: 0}, uniform(tile.EdgeRail)), false)
	switch {
	case err != nil:
		t.Fatalf("unwanted error: %v", err)
	case len(p.Diagnostics) != 0:
		t.Errorf("wanted no diagnostics without validation, got %v", p.Diagnostics)
	}
}

func TestPlaceTilePreconditions(t *testing.T) {
	b := quietBoard()
	mustPlace(t, b, origin, allPlain)
	withEmpty := allPlain
	withEmpty[2] = tile.EdgeEmpty
	preconditionTests := []struct {
		tile tile.Tile
		want error
	}{
		{tile.New(tile.Coord{X: 1, Y: 0}, withEmpty), ErrEmptyEdge},
		{tile.Slot(tile.Coord{X: 1, Y: 0}), ErrEmptyEdge},
		{tile.New(tile.Coord{X: 5, Y: 5}, allPlain), ErrUnknownSlot},
		{tile.New(origin, allPlain), ErrSlotOccupied},
	}
	before := slotMap(b)
	for i, test := range preconditionTests {
		_, err := b.PlaceTile(test.tile, true)
		if !errors.Is(err, test.want) {
			t.Errorf("Test %v: wanted %v, got %v", i, test.want, err)
		}
	}
	after := slotMap(b)
	if len(before) != len(after) {
		t.Fatalf("failed placements changed the slot count: %v -> %v", len(before), len(after))
	}
	for c, s := range before {
		if after[c] != s {
			t.Errorf("slot %v changed from %v to %v", c, s, after[c])
		}
	}
}

func TestUndo(t *testing.T) {
	b := quietBoard()
	mustPlace(t, b, origin, allPlain)
	east := tile.Coord{X: 1, Y: 0}
	mustPlace(t, b, east, uniform(tile.EdgeTree))
	placed := slotMap(b)

	got, err := b.Undo()
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	if got != east {
		t.Errorf("wanted undo of %v, got %v", east, got)
	}
	s, ok := b.Slot(east)
	switch {
	case !ok:
		t.Fatal("undo must keep the slot")
	case s.Full(), s.Edges != (tile.Ring{}):
		t.Errorf("wanted an empty slot, got %v", s)
	}
	undone := slotMap(b)
	if len(undone) != len(placed) {
		t.Errorf("undo changed the slot count: %v -> %v", len(placed), len(undone))
	}
	for c, s := range placed {
		if c != east && undone[c] != s {
			t.Errorf("slot %v changed from %v to %v", c, s, undone[c])
		}
	}
	if b.Count() != 1 {
		t.Errorf("wanted 1 placed tile, got %v", b.Count())
	}

	if _, err := b.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("second undo: wanted ErrNothingToUndo, got %v", err)
	}
	if b.Count() != 1 {
		t.Errorf("second undo changed the board: %v tiles", b.Count())
	}
}

func TestUndoFreshBoard(t *testing.T) {
	b := quietBoard()
	if _, err := b.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("wanted ErrNothingToUndo, got %v", err)
	}
}

func TestClosedSlot(t *testing.T) {
	b := quietBoard()
	placements := surround(t, b, [tile.Sides]tile.Ring{allPlain, allPlain, allPlain, allPlain, allPlain, allPlain})
	last := placements[len(placements)-1]
	if len(last.Closed) != 1 {
		t.Fatalf("wanted one closed slot, got %v", last.Closed)
	}
	closed := last.Closed[0]
	if closed.Pos != (tile.Coord{X: 1, Y: 0}) {
		t.Errorf("wanted (1, 0) closed, got %v", closed.Pos)
	}
	if closed.Ideal != allPlain {
		t.Errorf("wanted plain ideal ring, got %v", closed.Ideal)
	}
	if len(closed.Candidates) != 6 {
		t.Errorf("wanted 6 candidates, got %v", closed.Candidates)
	}
	if len(last.Diagnostics) != 0 {
		t.Errorf("wanted no diagnostics, got %v", last.Diagnostics)
	}
}

func TestClosedSlotWithoutCandidate(t *testing.T) {
	b := quietBoard()
	placements := surround(t, b, [tile.Sides]tile.Ring{
		uniform(tile.EdgePlain),
		uniform(tile.EdgeTree),
		uniform(tile.EdgeWeed),
		uniform(tile.EdgeHouse),
		uniform(tile.EdgeRiver),
		uniform(tile.EdgeRail),
	})
	last := placements[len(placements)-1]
	var found bool
	for _, d := range last.Diagnostics {
		if d.Kind == DiagnosticClosedSlot {
			found = true
			if d.Pos != (tile.Coord{X: 1, Y: 0}) {
				t.Errorf("wanted closed slot (1, 0), got %v", d.Pos)
			}
		}
	}
	if !found {
		t.Errorf("wanted a closed slot diagnostic, got %v", last.Diagnostics)
	}
}

func TestCentroid(t *testing.T) {
	l := zerolog.Nop()
	fixed := New(Config{Logger: &l})
	live := New(Config{Logger: &l, LiveCentroid: true})
	for _, b := range []*Board{fixed, live} {
		mustPlace(t, b, origin, allPlain)
		mustPlace(t, b, tile.Coord{X: 1, Y: 0}, allPlain)
	}
	if x, y := fixed.Centroid(); x != 0 || y != 0 {
		t.Errorf("fixed centroid should stay at the origin until loaded, got (%v, %v)", x, y)
	}
	if x, y := live.Centroid(); x != 0.5 || y != 0 {
		t.Errorf("wanted live centroid (0.5, 0), got (%v, %v)", x, y)
	}
	if _, err := live.Undo(); err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	if x, y := live.Centroid(); x != 0 || y != 0 {
		t.Errorf("wanted live centroid back at the origin, got (%v, %v)", x, y)
	}
}
