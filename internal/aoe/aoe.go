// Package aoe implements the AOETracker of spec.md §4.6: registration of
// static (precomputed cell coverage) and mobile (re-evaluated per tick)
// passive area-of-effect sources, presence-delta entry/exit tracking, and
// per-cell territory arbitration for the observation encoder.
package aoe

import (
	"fmt"

	"github.com/Metta-AI/mettagrid/internal/config"
	"github.com/Metta-AI/mettagrid/internal/filter"
	"github.com/Metta-AI/mettagrid/internal/mutation"
	"github.com/Metta-AI/mettagrid/internal/types"
	"github.com/Metta-AI/mettagrid/internal/world"
)

// Deps bundles what registering an AOE source needs: the same filter and
// mutation dependency seams the handler layer uses.
type Deps struct {
	FilterDeps   filter.Deps
	MutationDeps mutation.Deps
}

type aoeSource struct {
	owner       *world.GridObject
	radius      int
	isStatic    bool
	effectSelf  bool
	isTerritory bool
	filters     []filter.Filter
	mutations   []mutation.Mutation
	enterDeltas map[types.ResourceID]int
	exitDeltas  map[types.ResourceID]int
	cells       []types.GridLocation // static only
}

// Tracker is the AOETracker: owns static cell coverage, the mobile source
// list, and the presence ("inside") set per source.
type Tracker struct {
	grid           *world.Grid
	cellSources    [][][]*aoeSource
	mobile         []*aoeSource
	sourcesByOwner map[int][]*aoeSource
	inside         map[*aoeSource]map[int]bool
}

// NewTracker constructs an empty tracker over grid.
func NewTracker(grid *world.Grid) *Tracker {
	cells := make([][][]*aoeSource, grid.Height())
	for r := range cells {
		cells[r] = make([][]*aoeSource, grid.Width())
	}
	return &Tracker{
		grid:           grid,
		cellSources:    cells,
		sourcesByOwner: make(map[int][]*aoeSource),
		inside:         make(map[*aoeSource]map[int]bool),
	}
}

// Register attaches every AOE source config on obj to the tracker
// (spec.md §4.6 "Registration"). Call once per object add.
func (t *Tracker) Register(obj *world.GridObject, cfgs []config.AOESourceConfig, deps Deps) error {
	for _, cfg := range cfgs {
		filters, err := filter.NewChain(cfg.Filters, deps.FilterDeps)
		if err != nil {
			return fmt.Errorf("aoe: object %d filters: %w", obj.ID, err)
		}
		mutations, err := mutation.NewChain(cfg.Mutations, deps.MutationDeps)
		if err != nil {
			return fmt.Errorf("aoe: object %d mutations: %w", obj.ID, err)
		}
		src := &aoeSource{
			owner:       obj,
			radius:      cfg.Radius,
			isStatic:    cfg.IsStatic,
			effectSelf:  cfg.EffectSelf,
			isTerritory: cfg.IsTerritory(),
			filters:     filters,
			mutations:   mutations,
			enterDeltas: convertDeltas(cfg.EnterDeltas),
			exitDeltas:  convertDeltas(cfg.ExitDeltas),
		}
		if src.isStatic {
			src.cells = discCells(obj.Location, src.radius, src.isTerritory, t.grid)
			for _, cell := range src.cells {
				t.cellSources[cell.R][cell.C] = append(t.cellSources[cell.R][cell.C], src)
			}
		} else {
			t.mobile = append(t.mobile, src)
		}
		t.sourcesByOwner[obj.ID] = append(t.sourcesByOwner[obj.ID], src)
	}
	return nil
}

// Unregister inverts registration for obj (spec.md §4.6: "on object
// removal the registration is inverted, and any targets currently
// 'inside' that source receive exit presence deltas").
func (t *Tracker) Unregister(obj *world.GridObject) {
	for _, src := range t.sourcesByOwner[obj.ID] {
		if src.isStatic {
			for _, cell := range src.cells {
				t.cellSources[cell.R][cell.C] = removeSource(t.cellSources[cell.R][cell.C], src)
			}
		} else {
			t.mobile = removeSource(t.mobile, src)
		}
		for targetID, present := range t.inside[src] {
			if !present {
				continue
			}
			if target, ok := t.grid.Object(targetID); ok {
				applyDeltas(target, src.exitDeltas)
			}
		}
		delete(t.inside, src)
	}
	delete(t.sourcesByOwner, obj.ID)
}

func removeSource(list []*aoeSource, target *aoeSource) []*aoeSource {
	out := make([]*aoeSource, 0, len(list))
	for _, s := range list {
		if s != target {
			out = append(out, s)
		}
	}
	return out
}

func convertDeltas(m map[int]int) map[types.ResourceID]int {
	if len(m) == 0 {
		return nil
	}
	out := make(map[types.ResourceID]int, len(m))
	for r, d := range m {
		out[types.ResourceID(r)] = d
	}
	return out
}

func applyDeltas(obj *world.GridObject, deltas map[types.ResourceID]int) {
	for r, d := range deltas {
		obj.Inventory.Add(r, d)
	}
}

// discCells computes the set of grid cells within Euclidean radius of
// center (inclusive, sum-of-squares, no sqrt — spec.md §4.6, matching the
// original's register_fixed). When trim is set (territory AOEs with
// radius >= 2) the four cardinal boundary cells at exactly radius are
// excluded to round the disc for Mettascope overlays; radii 0 and 1 keep
// full coverage, where trimming would collapse the territory footprint.
func discCells(center types.GridLocation, radius int, trim bool, grid *world.Grid) []types.GridLocation {
	minR, maxR := clampRange(int(center.R)-radius, int(center.R)+radius, grid.Height())
	minC, maxC := clampRange(int(center.C)-radius, int(center.C)+radius, grid.Width())
	radiusSq := int64(radius) * int64(radius)
	var out []types.GridLocation
	for r := minR; r <= maxR; r++ {
		for c := minC; c <= maxC; c++ {
			loc := types.GridLocation{R: types.GridCoord(r), C: types.GridCoord(c)}
			distSq := types.SquaredDistance(center, loc)
			if distSq > radiusSq {
				continue
			}
			if trim && radius >= 2 && distSq == radiusSq {
				dr, dc := r-int(center.R), c-int(center.C)
				if dr == 0 || dc == 0 {
					continue
				}
			}
			out = append(out, loc)
		}
	}
	return out
}

func clampRange(lo, hi, size int) (int, int) {
	if lo < 0 {
		lo = 0
	}
	if hi > size-1 {
		hi = size - 1
	}
	return lo, hi
}
