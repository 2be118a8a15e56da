package query

import (
	"testing"

	"github.com/Metta-AI/mettagrid/internal/config"
	"github.com/Metta-AI/mettagrid/internal/types"
	"github.com/Metta-AI/mettagrid/internal/world"
)

func newTestObj(id, tag int, loc types.GridLocation) *world.GridObject {
	obj := &world.GridObject{ID: id, Location: loc, Inventory: types.NewInventory(nil)}
	if tag >= 0 {
		obj.Tags.Add(tag)
	}
	return obj
}

func buildGrid(t *testing.T, objs ...*world.GridObject) (*world.Grid, *world.TagIndex) {
	t.Helper()
	grid := world.NewGrid(8, 8)
	idx := world.NewTagIndex()
	for _, o := range objs {
		if err := grid.AddObject(o); err != nil {
			t.Fatalf("AddObject: %v", err)
		}
	}
	// newTestObj sets tag bits directly; register those bits with the
	// index via AddTag, which is idempotent on an already-set bit.
	for _, o := range objs {
		for tag := 0; tag < types.MaxTags; tag++ {
			if o.Tags.Has(tag) {
				o.Tags.Remove(tag)
				o.AddTag(tag, idx, nil)
			}
		}
	}
	return grid, idx
}

func TestTagQueryReturnsTaggedObjects(t *testing.T) {
	a := newTestObj(1, 5, types.GridLocation{R: 0, C: 0})
	b := newTestObj(2, 5, types.GridLocation{R: 0, C: 1})
	c := newTestObj(3, -1, types.GridLocation{R: 0, C: 2})
	grid, idx := buildGrid(t, a, b, c)

	q, err := New(config.QueryConfig{Kind: config.QueryTag, TagID: 5}, Deps{TagIndex: idx})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := &world.Context{Grid: grid, TagIndex: idx}
	got := q.Evaluate(ctx)
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].ID != 1 || got[1].ID != 2 {
		t.Fatalf("expected deterministic id order, got %+v", got)
	}
}

func TestTagQueryMaxItemsTruncates(t *testing.T) {
	a := newTestObj(1, 5, types.GridLocation{R: 0, C: 0})
	b := newTestObj(2, 5, types.GridLocation{R: 0, C: 1})
	grid, idx := buildGrid(t, a, b)

	q, err := New(config.QueryConfig{Kind: config.QueryTag, TagID: 5, MaxItems: 1}, Deps{TagIndex: idx})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := q.Evaluate(&world.Context{Grid: grid, TagIndex: idx})
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("expected truncation to first result, got %+v", got)
	}
}

func TestClosureQueryEmptyEdgeFiltersReturnsSeedsOnly(t *testing.T) {
	seed := newTestObj(1, 5, types.GridLocation{R: 1, C: 1})
	neighbor := newTestObj(2, -1, types.GridLocation{R: 1, C: 2})
	grid, idx := buildGrid(t, seed, neighbor)

	cfg := config.QueryConfig{
		Kind: config.QueryClosure,
		Seed: &config.QueryConfig{Kind: config.QueryTag, TagID: 5},
	}
	q, err := New(cfg, Deps{TagIndex: idx})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := q.Evaluate(&world.Context{Grid: grid, TagIndex: idx})
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("expected no expansion with empty edge_filters, got %+v", got)
	}
}

func TestClosureQueryExpandsThroughEdgeFilter(t *testing.T) {
	seed := newTestObj(1, 5, types.GridLocation{R: 1, C: 1})
	step1 := newTestObj(2, 7, types.GridLocation{R: 1, C: 2})
	step2 := newTestObj(3, 7, types.GridLocation{R: 1, C: 3})
	unreachable := newTestObj(4, -1, types.GridLocation{R: 5, C: 5})
	grid, idx := buildGrid(t, seed, step1, step2, unreachable)

	cfg := config.QueryConfig{
		Kind:        config.QueryClosure,
		Seed:        &config.QueryConfig{Kind: config.QueryTag, TagID: 5},
		EdgeFilters: []config.FilterConfig{{Kind: config.FilterTag, TagID: 7}},
	}
	q, err := New(cfg, Deps{TagIndex: idx})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := q.Evaluate(&world.Context{Grid: grid, TagIndex: idx})
	if len(got) != 3 {
		t.Fatalf("expected seed plus both reachable tag-7 neighbors, got %+v", got)
	}
}

func TestClosureQueryRadiusBound(t *testing.T) {
	seed := newTestObj(1, 5, types.GridLocation{R: 1, C: 1})
	step1 := newTestObj(2, 7, types.GridLocation{R: 1, C: 2})
	step2 := newTestObj(3, 7, types.GridLocation{R: 1, C: 3})
	grid, idx := buildGrid(t, seed, step1, step2)

	cfg := config.QueryConfig{
		Kind:          config.QueryClosure,
		Seed:          &config.QueryConfig{Kind: config.QueryTag, TagID: 5},
		EdgeFilters:   []config.FilterConfig{{Kind: config.FilterTag, TagID: 7}},
		ClosureRadius: 1,
	}
	q, err := New(cfg, Deps{TagIndex: idx})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := q.Evaluate(&world.Context{Grid: grid, TagIndex: idx})
	if len(got) != 2 {
		t.Fatalf("expected closure to stop after one hop, got %+v", got)
	}
}

func TestFilteredQueryNarrowsInner(t *testing.T) {
	a := newTestObj(1, 5, types.GridLocation{R: 0, C: 0})
	b := newTestObj(2, 5, types.GridLocation{R: 0, C: 1})
	b.Inventory.Add(types.ResourceID(9), 3)
	grid, idx := buildGrid(t, a, b)

	cfg := config.QueryConfig{
		Kind:    config.QueryFiltered,
		Inner:   &config.QueryConfig{Kind: config.QueryTag, TagID: 5},
		Filters: []config.FilterConfig{{Kind: config.FilterResource, ResourceID: 9, MinAmount: 1}},
	}
	q, err := New(cfg, Deps{TagIndex: idx})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := q.Evaluate(&world.Context{Grid: grid, TagIndex: idx})
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("expected only the resourced object, got %+v", got)
	}
}

func TestSystemRecomputeFiresAddAndRemoveOnce(t *testing.T) {
	a := newTestObj(1, 5, types.GridLocation{R: 0, C: 0})
	b := newTestObj(2, -1, types.GridLocation{R: 0, C: 1})
	grid, idx := buildGrid(t, a, b)

	addCount, removeCount := 0, 0
	a.TagOnRemove = map[int][]world.LifecycleHandler{99: {handlerFunc(func(*world.Context) bool { removeCount++; return true })}}
	b.TagOnAdd = map[int][]world.LifecycleHandler{99: {handlerFunc(func(*world.Context) bool { addCount++; return true })}}

	ctxFactory := func() *world.Context { return &world.Context{Grid: grid, TagIndex: idx} }
	sys := NewSystem(ctxFactory, idx)
	// materialized tag 99 == "tagged 5" (a starts in, b starts out)
	if err := sys.Register(config.QueryTagConfig{TagID: 99, Query: config.QueryConfig{Kind: config.QueryTag, TagID: 5}}, Deps{TagIndex: idx}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	a.AddTag(99, idx, nil)
	sys.ComputeAll()
	if !a.HasTag(99) {
		t.Fatalf("expected a to hold materialized tag")
	}

	// flip membership: a loses tag 5, b gains it.
	a.RemoveTag(5, idx, nil)
	b.AddTag(5, idx, nil)

	sys.Recompute(99)
	if a.HasTag(99) {
		t.Fatalf("expected a to lose materialized tag")
	}
	if !b.HasTag(99) {
		t.Fatalf("expected b to gain materialized tag")
	}
	if removeCount != 1 {
		t.Fatalf("expected on_remove to fire exactly once, fired %d", removeCount)
	}
	if addCount != 1 {
		t.Fatalf("expected on_add to fire exactly once, fired %d", addCount)
	}

	// idempotent: recomputing again with no membership change fires nothing more.
	sys.Recompute(99)
	if removeCount != 1 || addCount != 1 {
		t.Fatalf("expected recompute with no delta to be a no-op, got remove=%d add=%d", removeCount, addCount)
	}
}

type handlerFunc func(*world.Context) bool

func (f handlerFunc) TryApply(ctx *world.Context) bool { return f(ctx) }
