package slots

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/robalobadob/dorfhelper/internal/tile"
)

func TestNewGraph(t *testing.T) {
	g := New()
	if g.Len() != 1 {
		t.Fatalf("wanted 1 slot, got %v", g.Len())
	}
	origin, ok := g.Get(Origin)
	switch {
	case !ok:
		t.Fatal("origin slot missing")
	case origin.Full():
		t.Error("origin slot should be empty")
	case origin.Edges != (tile.Ring{}):
		t.Errorf("origin edges should be empty, got %v", origin.Edges)
	}
}

func TestAddSlot(t *testing.T) {
	g := New()
	c := tile.Coord{X: 1, Y: 0}
	if err := g.AddSlot(c); err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	if err := g.AddSlot(c); !errors.Is(err, ErrSlotExists) {
		t.Errorf("wanted ErrSlotExists, got %v", err)
	}
	if err := g.AddSlot(Origin); !errors.Is(err, ErrSlotExists) {
		t.Errorf("wanted ErrSlotExists for origin, got %v", err)
	}
	if g.Len() != 2 {
		t.Errorf("wanted 2 slots, got %v", g.Len())
	}
}

func TestRemoveSlot(t *testing.T) {
	g := New()
	a, b := tile.Coord{X: 1, Y: 0}, tile.Coord{X: 0, Y: 1}
	for _, c := range []tile.Coord{a, b} {
		if err := g.AddSlot(c); err != nil {
			t.Fatalf("unwanted error: %v", err)
		}
	}
	if err := g.RemoveSlot(a); err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	if g.Has(a) {
		t.Error("removed slot still present")
	}
	if err := g.RemoveSlot(a); !errors.Is(err, ErrSlotNotFound) {
		t.Errorf("wanted ErrSlotNotFound, got %v", err)
	}
	all := g.All()
	if len(all) != 2 || all[0].Pos != Origin || all[1].Pos != b {
		t.Errorf("unexpected order after removal: %v", all)
	}
	if got, ok := g.Get(b); !ok || got.Pos != b {
		t.Errorf("index not rebuilt after removal: %v %v", got, ok)
	}
}

func TestNeighbors(t *testing.T) {
	g := New()
	ring := tile.Ring{tile.EdgePlain, tile.EdgeTree, tile.EdgeWeed, tile.EdgeHouse, tile.EdgeRiver, tile.EdgeRail}
	east := tile.Coord{X: 1, Y: 0}
	if err := g.AddSlot(east); err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	if err := g.Fill(east, ring); err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	n := g.Neighbors(Origin)
	for d, nt := range n {
		switch {
		case d == 0:
			if nt == nil || nt.Pos != east {
				t.Errorf("direction 0: wanted %v, got %v", east, nt)
			}
		case nt != nil:
			t.Errorf("direction %v: wanted no neighbor, got %v", d, nt)
		}
	}
	if n.Full() {
		t.Error("neighborhood should not be full")
	}
	if got := g.FullNeighbors(Origin); got != 1 {
		t.Errorf("wanted 1 full neighbor, got %v", got)
	}
	facing := n.Facing()
	if facing[0] != tile.EdgeHouse {
		t.Errorf("wanted east neighbor to face the origin with its edge 3, got %v", facing[0])
	}
	back := g.Neighbors(east)
	if back[3] == nil || back[3].Pos != Origin {
		t.Errorf("wanted origin as the west neighbor of %v, got %v", east, back[3])
	}
}

func TestFillMissing(t *testing.T) {
	g := New()
	if err := g.Fill(tile.Coord{X: 5, Y: 5}, tile.Ring{}); !errors.Is(err, ErrSlotNotFound) {
		t.Errorf("wanted ErrSlotNotFound, got %v", err)
	}
}
