package filter

import (
	"fmt"

	"github.com/Metta-AI/mettagrid/internal/config"
	"github.com/Metta-AI/mettagrid/internal/gamevalue"
	"github.com/Metta-AI/mettagrid/internal/types"
	"github.com/Metta-AI/mettagrid/internal/world"
)

type vibeFilter struct{ vibeID int }

func (f vibeFilter) Pass(ctx *world.Context) bool {
	return ctx != nil && ctx.Target != nil && ctx.Target.Vibe == f.vibeID
}

type resourceFilter struct {
	resourceID types.ResourceID
	min        int
}

func (f resourceFilter) Pass(ctx *world.Context) bool {
	if ctx == nil || ctx.Target == nil || ctx.Target.Inventory == nil {
		return false
	}
	return ctx.Target.Inventory.Amount(f.resourceID) >= f.min
}

type tagFilter struct{ tagID int }

func (f tagFilter) Pass(ctx *world.Context) bool {
	return ctx != nil && ctx.Target != nil && ctx.Target.HasTag(f.tagID)
}

type sharedTagPrefixFilter struct{ mask types.TagSet }

func (f sharedTagPrefixFilter) Pass(ctx *world.Context) bool {
	if ctx == nil || ctx.Actor == nil || ctx.Target == nil {
		return false
	}
	var common types.TagSet
	for i := 0; i < types.TagWords; i++ {
		common[i] = ctx.Actor.Tags[i] & ctx.Target.Tags[i] & f.mask[i]
	}
	return common.Intersects(f.mask)
}

type tagPrefixFilter struct{ mask types.TagSet }

func (f tagPrefixFilter) Pass(ctx *world.Context) bool {
	if ctx == nil || ctx.Target == nil {
		return false
	}
	return ctx.Target.Tags.Intersects(f.mask)
}

// --- Alignment ---

type alignmentFilter struct {
	mode config.AlignmentMode
	name string
}

func newAlignmentFilter(cfg config.FilterConfig) (Filter, error) {
	switch cfg.Alignment {
	case config.AlignAligned, config.AlignUnaligned, config.AlignActorShares, config.AlignActorDiffers, config.AlignSpecific:
		return alignmentFilter{mode: cfg.Alignment, name: cfg.CollectiveName}, nil
	default:
		return nil, fmt.Errorf("filter: unsupported alignment mode %q", cfg.Alignment)
	}
}

func (f alignmentFilter) Pass(ctx *world.Context) bool {
	if ctx == nil || ctx.Target == nil {
		return false
	}
	switch f.mode {
	case config.AlignAligned:
		return world.SameCollective(ctx.Actor, ctx.Target)
	case config.AlignUnaligned:
		return ctx.Actor != nil && ctx.Target.Collective != nil && !world.SameCollective(ctx.Actor, ctx.Target)
	case config.AlignActorShares:
		return world.SameCollective(ctx.Actor, ctx.Target)
	case config.AlignActorDiffers:
		if ctx.Actor == nil || ctx.Actor.Collective == nil {
			return ctx.Target.Collective != nil
		}
		return !world.SameCollective(ctx.Actor, ctx.Target)
	case config.AlignSpecific:
		return ctx.Target.Collective != nil && ctx.Target.Collective.Name == f.name
	default:
		return false
	}
}

// --- GameValue ---

// ctxCell holds whatever context the enclosing filter was most recently
// evaluated against, so the gamevalue.ResolvedGameValue it feeds (via the
// subjectStats callback) reads live data without gamevalue importing
// anything filter- or world.Context-specific.
type ctxCell struct {
	current *world.Context
}

func (c *ctxCell) get() *world.Context { return c.current }

type gameValueFilter struct {
	cell      *ctxCell
	value     gamevalue.ResolvedGameValue
	threshold float64
}

func newGameValueFilter(cfg config.FilterConfig, deps Deps) (Filter, error) {
	cell := &ctxCell{}
	resolved, err := gamevalue.Resolve(cfg.GameValue, cell.get, deps.TagIndex, gamevalue.Deps{QueryBuilder: gamevalue.QueryBuilder(deps.QueryBuilder)})
	if err != nil {
		return nil, err
	}
	return &gameValueFilter{cell: cell, value: resolved, threshold: cfg.Threshold}, nil
}

func (f *gameValueFilter) Pass(ctx *world.Context) bool {
	if f.value == nil {
		return false
	}
	f.cell.current = ctx
	return f.value.Read() >= f.threshold
}

// --- MaxDistance ---

// maxDistanceFilter passes when the target is within radius (Euclidean,
// sum-of-squares with no sqrt — spec.md §4.6) of either a source query's
// results (unary form) or the actor (binary form, used inside closure-query
// edges). Radius 0 means unconditional pass in binary form, and "the source
// query returns any result at all" in unary form (spec.md §8 boundary
// case) — neither checks distance.
type maxDistanceFilter struct {
	radius int
	binary bool
	source world.Query
}

func newMaxDistanceFilter(cfg config.FilterConfig, deps Deps) (Filter, error) {
	f := &maxDistanceFilter{radius: cfg.Radius, binary: cfg.Binary}
	if cfg.Binary {
		return f, nil
	}
	if cfg.Source == nil {
		return nil, fmt.Errorf("filter: max_distance requires a source query in unary form")
	}
	if deps.QueryBuilder == nil {
		return nil, fmt.Errorf("filter: max_distance requires a QueryBuilder")
	}
	q, err := deps.QueryBuilder(*cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("filter: building max_distance source query: %w", err)
	}
	f.source = q
	return f, nil
}

func (f *maxDistanceFilter) Pass(ctx *world.Context) bool {
	if ctx == nil || ctx.Target == nil {
		return false
	}
	if f.binary {
		if ctx.Actor == nil {
			return false
		}
		if f.radius == 0 {
			return true
		}
		return withinRadius(ctx.Actor.Location, ctx.Target.Location, f.radius)
	}
	if f.source == nil {
		return false
	}
	results := f.source.Evaluate(ctx)
	if f.radius == 0 {
		return len(results) > 0
	}
	for _, obj := range results {
		if obj == nil {
			continue
		}
		if withinRadius(obj.Location, ctx.Target.Location, f.radius) {
			return true
		}
	}
	return false
}

func withinRadius(a, b types.GridLocation, radius int) bool {
	return types.SquaredDistance(a, b) <= int64(radius)*int64(radius)
}

// --- QueryResource ---

// queryResourceFilter passes when the summed inventory of a query's
// results meets every per-resource minimum in ResourceMinima.
type queryResourceFilter struct {
	query   world.Query
	minima  map[int]int
}

func newQueryResourceFilter(cfg config.FilterConfig, deps Deps) (Filter, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("filter: query_resource requires a source query")
	}
	if deps.QueryBuilder == nil {
		return nil, fmt.Errorf("filter: query_resource requires a QueryBuilder")
	}
	q, err := deps.QueryBuilder(*cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("filter: building query_resource source query: %w", err)
	}
	return queryResourceFilter{query: q, minima: cfg.ResourceMinima}, nil
}

func (f queryResourceFilter) Pass(ctx *world.Context) bool {
	if ctx == nil {
		return false
	}
	sums := map[types.ResourceID]int{}
	for _, obj := range f.query.Evaluate(ctx) {
		if obj == nil || obj.Inventory == nil {
			continue
		}
		for id := range f.minima {
			rid := types.ResourceID(id)
			sums[rid] += obj.Inventory.Amount(rid)
		}
	}
	for id, min := range f.minima {
		if sums[types.ResourceID(id)] < min {
			return false
		}
	}
	return true
}

// --- Near ---

// nearFilter passes when some object tagged NearTagID within NearRadius
// of the target also passes every inner filter.
type nearFilter struct {
	tagID  int
	radius int
	index  *world.TagIndex
	inner  []Filter
}

func newNearFilter(cfg config.FilterConfig, deps Deps) (Filter, error) {
	inner, err := NewChain(cfg.InnerFilters, deps)
	if err != nil {
		return nil, fmt.Errorf("filter: near inner chain: %w", err)
	}
	return &nearFilter{tagID: cfg.NearTagID, radius: cfg.NearRadius, index: deps.TagIndex, inner: inner}, nil
}

func (f *nearFilter) Pass(ctx *world.Context) bool {
	if ctx == nil || ctx.Target == nil || f.index == nil {
		return false
	}
	for _, candidate := range f.index.GetObjectsWithTag(f.tagID) {
		if candidate == nil {
			continue
		}
		if !withinRadius(candidate.Location, ctx.Target.Location, f.radius) {
			continue
		}
		innerCtx := ctx.WithTarget(candidate)
		if PassAll(f.inner, innerCtx) {
			return true
		}
	}
	return false
}

// --- Neg / Or ---

type negFilter struct{ children []Filter }

func newNegFilter(cfg config.FilterConfig, deps Deps) (Filter, error) {
	children, err := NewChain(cfg.Children, deps)
	if err != nil {
		return nil, fmt.Errorf("filter: neg children: %w", err)
	}
	return negFilter{children: children}, nil
}

func (f negFilter) Pass(ctx *world.Context) bool {
	return !PassAll(f.children, ctx)
}

type orFilter struct{ children []Filter }

func newOrFilter(cfg config.FilterConfig, deps Deps) (Filter, error) {
	children, err := NewChain(cfg.Children, deps)
	if err != nil {
		return nil, fmt.Errorf("filter: or children: %w", err)
	}
	return orFilter{children: children}, nil
}

func (f orFilter) Pass(ctx *world.Context) bool {
	for _, c := range f.children {
		if c != nil && c.Pass(ctx) {
			return true
		}
	}
	return false
}
