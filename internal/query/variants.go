package query

import (
	"fmt"

	"github.com/Metta-AI/mettagrid/internal/config"
	"github.com/Metta-AI/mettagrid/internal/filter"
	"github.com/Metta-AI/mettagrid/internal/world"
)

// tagQuery returns every object holding tagID, optionally narrowed by a
// filter chain evaluated with Target bound to each candidate.
type tagQuery struct {
	tagID    int
	filters  []filter.Filter
	index    *world.TagIndex
	orderBy  config.OrderBy
	maxItems int
}

func (q *tagQuery) Evaluate(ctx *world.Context) []*world.GridObject {
	candidates := sortByID(q.index.GetObjectsWithTag(q.tagID))
	results := make([]*world.GridObject, 0, len(candidates))
	for _, obj := range candidates {
		if filter.PassAll(q.filters, ctx.WithTarget(obj)) {
			results = append(results, obj)
		}
	}
	return postProcess(results, q.orderBy, q.maxItems, ctx)
}

// closureQuery computes a BFS-reachable set over the grid's 8-connected
// neighborhood starting from seed's results (spec.md §4.5, DESIGN.md Open
// Question 2: Chebyshev radius 1 per step is the grid's adjacency). An
// empty edge_filter means seeds only — the closure never expands, matching
// spec.md's explicit boundary case rather than expanding unconditionally.
type closureQuery struct {
	seed          world.Query
	edgeFilters   []filter.Filter
	resultFilters []filter.Filter
	radius        int // 0 = unlimited
	orderBy       config.OrderBy
	maxItems      int
}

func newClosureQuery(cfg config.QueryConfig, deps Deps) (world.Query, error) {
	if cfg.Seed == nil {
		return nil, fmt.Errorf("query: closure requires a seed query")
	}
	seed, err := New(*cfg.Seed, deps)
	if err != nil {
		return nil, fmt.Errorf("query: closure seed: %w", err)
	}
	edgeFilters, err := filter.NewChain(cfg.EdgeFilters, filterDeps(deps))
	if err != nil {
		return nil, fmt.Errorf("query: closure edge_filters: %w", err)
	}
	resultFilters, err := filter.NewChain(cfg.ResultFilters, filterDeps(deps))
	if err != nil {
		return nil, fmt.Errorf("query: closure result_filters: %w", err)
	}
	return &closureQuery{
		seed:          seed,
		edgeFilters:   edgeFilters,
		resultFilters: resultFilters,
		radius:        cfg.ClosureRadius,
		orderBy:       cfg.OrderBy,
		maxItems:      cfg.MaxItems,
	}, nil
}

func (q *closureQuery) Evaluate(ctx *world.Context) []*world.GridObject {
	seedResults := sortByID(q.seed.Evaluate(ctx))
	visited := make(map[int]*world.GridObject, len(seedResults))
	for _, obj := range seedResults {
		visited[obj.ID] = obj
	}
	if len(q.edgeFilters) > 0 {
		frontier := seedResults
		for depth := 0; q.radius == 0 || depth < q.radius; depth++ {
			if len(frontier) == 0 {
				break
			}
			var next []*world.GridObject
			for _, member := range frontier {
				neighbors := sortByID(ctx.Grid.NeighborsWithinRadius(member.Location, 1))
				for _, cand := range neighbors {
					if _, seen := visited[cand.ID]; seen {
						continue
					}
					if filter.PassAll(q.edgeFilters, ctx.WithActorTarget(member, cand)) {
						visited[cand.ID] = cand
						next = append(next, cand)
					}
				}
			}
			if len(next) == 0 {
				break
			}
			frontier = next
		}
	}
	members := make([]*world.GridObject, 0, len(visited))
	for _, obj := range visited {
		members = append(members, obj)
	}
	members = sortByID(members)
	results := make([]*world.GridObject, 0, len(members))
	for _, obj := range members {
		if filter.PassAll(q.resultFilters, ctx.WithTarget(obj)) {
			results = append(results, obj)
		}
	}
	return postProcess(results, q.orderBy, q.maxItems, ctx)
}

// filteredQuery evaluates inner, then narrows the result with its own
// filter chain (spec.md §4.5: "apply filters and limits on top of another
// query's results").
type filteredQuery struct {
	inner    world.Query
	filters  []filter.Filter
	orderBy  config.OrderBy
	maxItems int
}

func newFilteredQuery(cfg config.QueryConfig, deps Deps) (world.Query, error) {
	if cfg.Inner == nil {
		return nil, fmt.Errorf("query: filtered requires an inner query")
	}
	inner, err := New(*cfg.Inner, deps)
	if err != nil {
		return nil, fmt.Errorf("query: filtered inner: %w", err)
	}
	filters, err := filter.NewChain(cfg.Filters, filterDeps(deps))
	if err != nil {
		return nil, fmt.Errorf("query: filtered filters: %w", err)
	}
	return &filteredQuery{inner: inner, filters: filters, orderBy: cfg.OrderBy, maxItems: cfg.MaxItems}, nil
}

func (q *filteredQuery) Evaluate(ctx *world.Context) []*world.GridObject {
	candidates := sortByID(q.inner.Evaluate(ctx))
	results := make([]*world.GridObject, 0, len(candidates))
	for _, obj := range candidates {
		if filter.PassAll(q.filters, ctx.WithTarget(obj)) {
			results = append(results, obj)
		}
	}
	return postProcess(results, q.orderBy, q.maxItems, ctx)
}

var (
	_ world.Query = (*tagQuery)(nil)
	_ world.Query = (*closureQuery)(nil)
	_ world.Query = (*filteredQuery)(nil)
)
