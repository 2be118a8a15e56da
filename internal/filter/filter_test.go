package filter

import (
	"testing"

	"github.com/Metta-AI/mettagrid/internal/config"
	"github.com/Metta-AI/mettagrid/internal/types"
	"github.com/Metta-AI/mettagrid/internal/world"
)

func newObj(id int, loc types.GridLocation) *world.GridObject {
	return &world.GridObject{ID: id, Location: loc, Inventory: types.NewInventory(nil)}
}

// stubQuery returns a fixed result set regardless of ctx, standing in for
// internal/query in these tests so internal/filter's test suite stays free
// of that package.
type stubQuery struct{ results []*world.GridObject }

func (q stubQuery) Evaluate(ctx *world.Context) []*world.GridObject { return q.results }

func builderReturning(results []*world.GridObject) QueryBuilder {
	return func(config.QueryConfig) (world.Query, error) {
		return stubQuery{results: results}, nil
	}
}

func TestVibeFilter(t *testing.T) {
	f, err := New(config.FilterConfig{Kind: config.FilterVibe, VibeID: 3}, Deps{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	target := newObj(1, types.GridLocation{})
	target.Vibe = 3
	if !f.Pass(&world.Context{Target: target}) {
		t.Fatalf("expected vibe match to pass")
	}
	target.Vibe = 4
	if f.Pass(&world.Context{Target: target}) {
		t.Fatalf("expected vibe mismatch to fail")
	}
}

func TestResourceFilter(t *testing.T) {
	f, err := New(config.FilterConfig{Kind: config.FilterResource, ResourceID: 5, MinAmount: 2}, Deps{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	target := newObj(1, types.GridLocation{})
	target.Inventory.Add(types.ResourceID(5), 1)
	if f.Pass(&world.Context{Target: target}) {
		t.Fatalf("expected below-minimum to fail")
	}
	target.Inventory.Add(types.ResourceID(5), 1)
	if !f.Pass(&world.Context{Target: target}) {
		t.Fatalf("expected at-minimum to pass")
	}
}

func TestTagFilter(t *testing.T) {
	f, err := New(config.FilterConfig{Kind: config.FilterTag, TagID: 7}, Deps{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	target := newObj(1, types.GridLocation{})
	if f.Pass(&world.Context{Target: target}) {
		t.Fatalf("expected untagged target to fail")
	}
	target.Tags.Add(7)
	if !f.Pass(&world.Context{Target: target}) {
		t.Fatalf("expected tagged target to pass")
	}
}

func TestAlignmentFilterAligned(t *testing.T) {
	f, err := New(config.FilterConfig{Kind: config.FilterAlignment, Alignment: config.AlignAligned}, Deps{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	collective := &world.Collective{ID: 1, Name: "red"}
	actor := newObj(1, types.GridLocation{})
	actor.Collective = collective
	target := newObj(2, types.GridLocation{})
	target.Collective = collective
	if !f.Pass(&world.Context{Actor: actor, Target: target}) {
		t.Fatalf("expected shared collective to pass aligned")
	}
	target.Collective = &world.Collective{ID: 2, Name: "blue"}
	if f.Pass(&world.Context{Actor: actor, Target: target}) {
		t.Fatalf("expected differing collective to fail aligned")
	}
}

func TestAlignmentFilterUnknownModeErrors(t *testing.T) {
	if _, err := New(config.FilterConfig{Kind: config.FilterAlignment, Alignment: "bogus"}, Deps{}); err == nil {
		t.Fatalf("expected an error for an unsupported alignment mode")
	}
}

// TestMaxDistanceRadiusZeroIsExistence exercises spec.md §8's boundary case:
// radius 0 in the unary form means "the source query returns any result",
// not "distance zero".
func TestMaxDistanceRadiusZeroIsExistence(t *testing.T) {
	target := newObj(1, types.GridLocation{R: 10, C: 10})

	emptyBuilder := builderReturning(nil)
	f, err := New(config.FilterConfig{Kind: config.FilterMaxDistance, Radius: 0, Source: &config.QueryConfig{}}, Deps{QueryBuilder: emptyBuilder})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if f.Pass(&world.Context{Target: target}) {
		t.Fatalf("expected empty source query to fail radius-0 max_distance")
	}

	far := newObj(2, types.GridLocation{R: 0, C: 0})
	nonEmptyBuilder := builderReturning([]*world.GridObject{far})
	f2, err := New(config.FilterConfig{Kind: config.FilterMaxDistance, Radius: 0, Source: &config.QueryConfig{}}, Deps{QueryBuilder: nonEmptyBuilder})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !f2.Pass(&world.Context{Target: target}) {
		t.Fatalf("expected any source result, regardless of distance, to pass radius-0 max_distance")
	}
}

func TestMaxDistanceUnaryRespectsRadius(t *testing.T) {
	target := newObj(1, types.GridLocation{R: 5, C: 5})
	near := newObj(2, types.GridLocation{R: 6, C: 5})
	builder := builderReturning([]*world.GridObject{near})

	f, err := New(config.FilterConfig{Kind: config.FilterMaxDistance, Radius: 1, Source: &config.QueryConfig{}}, Deps{QueryBuilder: builder})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !f.Pass(&world.Context{Target: target}) {
		t.Fatalf("expected Euclidean distance 1 to pass radius 1")
	}

	f2, err := New(config.FilterConfig{Kind: config.FilterMaxDistance, Radius: 0, Source: &config.QueryConfig{}}, Deps{QueryBuilder: builder})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !f2.Pass(&world.Context{Target: target}) {
		t.Fatalf("radius 0 means existence, so this must still pass")
	}
}

func TestMaxDistanceBinaryForm(t *testing.T) {
	f, err := New(config.FilterConfig{Kind: config.FilterMaxDistance, Radius: 2, Binary: true}, Deps{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	actor := newObj(1, types.GridLocation{R: 0, C: 0})
	target := newObj(2, types.GridLocation{R: 0, C: 2})
	if !f.Pass(&world.Context{Actor: actor, Target: target}) {
		t.Fatalf("expected Euclidean distance 2 to pass radius 2")
	}
	// A diagonal cell at Chebyshev distance 2 has Euclidean distance
	// sqrt(8) > 2, so it must fail where a Chebyshev check would have passed.
	target.Location = types.GridLocation{R: 2, C: 2}
	if f.Pass(&world.Context{Actor: actor, Target: target}) {
		t.Fatalf("expected diagonal Euclidean distance sqrt(8) to fail radius 2")
	}
}

func TestMaxDistanceBinaryRadiusZeroIsUnconditional(t *testing.T) {
	f, err := New(config.FilterConfig{Kind: config.FilterMaxDistance, Radius: 0, Binary: true}, Deps{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	actor := newObj(1, types.GridLocation{R: 0, C: 0})
	target := newObj(2, types.GridLocation{R: 50, C: 50})
	if !f.Pass(&world.Context{Actor: actor, Target: target}) {
		t.Fatalf("expected radius-0 binary form to pass regardless of distance")
	}
}

func TestQueryResourceFilter(t *testing.T) {
	a := newObj(1, types.GridLocation{})
	a.Inventory.Add(types.ResourceID(1), 3)
	b := newObj(2, types.GridLocation{})
	b.Inventory.Add(types.ResourceID(1), 1)
	builder := builderReturning([]*world.GridObject{a, b})

	f, err := New(config.FilterConfig{
		Kind:           config.FilterQueryResource,
		Source:         &config.QueryConfig{},
		ResourceMinima: map[int]int{1: 4},
	}, Deps{QueryBuilder: builder})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !f.Pass(&world.Context{}) {
		t.Fatalf("expected summed inventory 4 to meet minimum 4")
	}

	f2, err := New(config.FilterConfig{
		Kind:           config.FilterQueryResource,
		Source:         &config.QueryConfig{},
		ResourceMinima: map[int]int{1: 5},
	}, Deps{QueryBuilder: builder})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if f2.Pass(&world.Context{}) {
		t.Fatalf("expected summed inventory 4 to fail minimum 5")
	}
}

func TestNearFilter(t *testing.T) {
	idx := world.NewTagIndex()
	beacon := newObj(1, types.GridLocation{R: 0, C: 0})
	beacon.AddTag(9, idx, nil)

	target := newObj(2, types.GridLocation{R: 1, C: 1})

	f, err := New(config.FilterConfig{Kind: config.FilterNear, NearTagID: 9, NearRadius: 2}, Deps{TagIndex: idx})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !f.Pass(&world.Context{Target: target}) {
		t.Fatalf("expected target within radius of tagged beacon to pass")
	}

	target.Location = types.GridLocation{R: 10, C: 10}
	if f.Pass(&world.Context{Target: target}) {
		t.Fatalf("expected out-of-radius target to fail")
	}
}

func TestNegFilter(t *testing.T) {
	f, err := New(config.FilterConfig{
		Kind:     config.FilterNeg,
		Children: []config.FilterConfig{{Kind: config.FilterTag, TagID: 1}},
	}, Deps{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	target := newObj(1, types.GridLocation{})
	if !f.Pass(&world.Context{Target: target}) {
		t.Fatalf("expected neg(untagged) to pass")
	}
	target.Tags.Add(1)
	if f.Pass(&world.Context{Target: target}) {
		t.Fatalf("expected neg(tagged) to fail")
	}
}

func TestOrFilterShortCircuits(t *testing.T) {
	f, err := New(config.FilterConfig{
		Kind: config.FilterOr,
		Children: []config.FilterConfig{
			{Kind: config.FilterTag, TagID: 1},
			{Kind: config.FilterTag, TagID: 2},
		},
	}, Deps{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	target := newObj(1, types.GridLocation{})
	if f.Pass(&world.Context{Target: target}) {
		t.Fatalf("expected neither tag present to fail")
	}
	target.Tags.Add(2)
	if !f.Pass(&world.Context{Target: target}) {
		t.Fatalf("expected second tag present to pass")
	}
}

func TestPassAllEmptyChainPasses(t *testing.T) {
	if !PassAll(nil, &world.Context{}) {
		t.Fatalf("expected an empty filter chain to pass")
	}
}
