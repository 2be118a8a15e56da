package world

import (
	"testing"

	"github.com/Metta-AI/mettagrid/internal/types"
)

func newTestObject(id int, loc types.GridLocation) *GridObject {
	return &GridObject{
		ID:       id,
		Location: loc,
		TagOnAdd: make(map[int][]LifecycleHandler),
	}
}

func TestTagIndexInvariant(t *testing.T) {
	idx := NewTagIndex()
	obj := newTestObject(1, types.GridLocation{})
	ctx := &Context{}

	if !obj.AddTag(3, idx, ctx) {
		t.Fatalf("expected first add to report newly added")
	}
	if idx.CountObjectsWithTag(3) != 1 {
		t.Fatalf("expected count 1, got %d", idx.CountObjectsWithTag(3))
	}
	if obj.AddTag(3, idx, ctx) {
		t.Fatalf("second add must be a no-op")
	}

	objs := idx.GetObjectsWithTag(3)
	if len(objs) != 1 || objs[0].ID != obj.ID {
		t.Fatalf("unexpected tag membership: %+v", objs)
	}

	if !obj.RemoveTag(3, idx, ctx) {
		t.Fatalf("expected remove to report it was set")
	}
	if idx.CountObjectsWithTag(3) != 0 {
		t.Fatalf("expected count 0 after removal, got %d", idx.CountObjectsWithTag(3))
	}
	if obj.HasTag(3) {
		t.Fatalf("tag should be cleared on the object")
	}
}

func TestTagIndexCountPointerStability(t *testing.T) {
	idx := NewTagIndex()
	ptr := idx.GetCountPtr(7)
	obj := newTestObject(2, types.GridLocation{})
	ctx := &Context{}

	obj.AddTag(7, idx, ctx)
	if *ptr != 1 {
		t.Fatalf("expected pointer to observe count 1, got %v", *ptr)
	}
	obj.RemoveTag(7, idx, ctx)
	if *ptr != 0 {
		t.Fatalf("expected pointer to observe count 0, got %v", *ptr)
	}
}

func TestGridSingleOccupancy(t *testing.T) {
	g := NewGrid(3, 3)
	a := newTestObject(1, types.GridLocation{R: 1, C: 1})
	b := newTestObject(2, types.GridLocation{R: 1, C: 1})

	if err := g.AddObject(a); err != nil {
		t.Fatalf("unexpected error adding a: %v", err)
	}
	if err := g.AddObject(b); err == nil {
		t.Fatalf("expected error placing b on an occupied cell")
	}

	if err := g.MoveObject(a.ID, types.GridLocation{R: 2, C: 2}); err != nil {
		t.Fatalf("unexpected error moving a: %v", err)
	}
	if got, ok := g.ObjectAt(types.GridLocation{R: 2, C: 2}); !ok || got.ID != a.ID {
		t.Fatalf("expected a at (2,2), got %+v ok=%v", got, ok)
	}
	if _, ok := g.ObjectAt(types.GridLocation{R: 1, C: 1}); ok {
		t.Fatalf("expected (1,1) to be empty after move")
	}
	if a.Location != (types.GridLocation{R: 2, C: 2}) {
		t.Fatalf("object's own location must match its grid slot, got %+v", a.Location)
	}
}

func TestGridNeighborsWithinRadius(t *testing.T) {
	g := NewGrid(5, 5)
	center := newTestObject(1, types.GridLocation{R: 2, C: 2})
	near := newTestObject(2, types.GridLocation{R: 2, C: 3})
	far := newTestObject(3, types.GridLocation{R: 0, C: 0})
	for _, o := range []*GridObject{center, near, far} {
		if err := g.AddObject(o); err != nil {
			t.Fatalf("setup error: %v", err)
		}
	}

	neighbors := g.NeighborsWithinRadius(center.Location, 1)
	if len(neighbors) != 1 || neighbors[0].ID != near.ID {
		t.Fatalf("expected only `near` within radius 1, got %+v", neighbors)
	}
}

func TestCollectiveIDsStableSortedOrder(t *testing.T) {
	collectives := AssignCollectiveIDs([]string{"zeta", "alpha", "mid"}, nil)
	if collectives["alpha"].ID != 0 || collectives["mid"].ID != 1 || collectives["zeta"].ID != 2 {
		t.Fatalf("expected sorted-name id assignment, got alpha=%d mid=%d zeta=%d",
			collectives["alpha"].ID, collectives["mid"].ID, collectives["zeta"].ID)
	}
}
