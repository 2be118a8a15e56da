// Package query builds the tagged-union query algebra of spec.md §4.5
// (Tag/Closure/Filtered) and the QuerySystem that maintains materialized
// query tags. It implements world.Query and world.Recomputer so
// GridObject, Context, and the filter/mutation packages can reference a
// query's results without importing this package.
package query

import (
	"fmt"
	"sort"

	"github.com/Metta-AI/mettagrid/internal/config"
	"github.com/Metta-AI/mettagrid/internal/filter"
	"github.com/Metta-AI/mettagrid/internal/world"
)

// Deps bundles what query construction needs: a tag index for Tag
// queries and for routing into filter construction.
type Deps struct {
	TagIndex *world.TagIndex
}

// New builds the Query described by cfg.
func New(cfg config.QueryConfig, deps Deps) (world.Query, error) {
	fdeps := filterDeps(deps)
	switch cfg.Kind {
	case config.QueryTag:
		filters, err := filter.NewChain(cfg.Filters, fdeps)
		if err != nil {
			return nil, fmt.Errorf("query: tag filters: %w", err)
		}
		return &tagQuery{tagID: cfg.TagID, filters: filters, index: deps.TagIndex, orderBy: cfg.OrderBy, maxItems: cfg.MaxItems}, nil
	case config.QueryClosure:
		return newClosureQuery(cfg, deps)
	case config.QueryFiltered:
		return newFilteredQuery(cfg, deps)
	default:
		return nil, fmt.Errorf("query: unknown kind %q", cfg.Kind)
	}
}

// filterDeps builds the filter.Deps used for every filter chain embedded
// in a query config, wiring filter.Deps.QueryBuilder back to New itself
// so a filter's "source query" (MaxDistance, QueryResource) can be built
// without this package needing any external wiring layer.
func filterDeps(deps Deps) filter.Deps {
	return filter.Deps{
		TagIndex: deps.TagIndex,
		QueryBuilder: func(cfg config.QueryConfig) (world.Query, error) {
			return New(cfg, deps)
		},
	}
}

// sortByID returns objs sorted by ascending GridObject.ID, the
// deterministic order every query result is normalized to before
// order_by/max_items post-processing (map iteration in TagIndex and
// Grid.Objects is otherwise unspecified).
func sortByID(objs []*world.GridObject) []*world.GridObject {
	out := append([]*world.GridObject(nil), objs...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// postProcess applies the shared order_by/max_items steps common to
// every query variant (spec.md §4.5).
func postProcess(results []*world.GridObject, orderBy config.OrderBy, maxItems int, ctx *world.Context) []*world.GridObject {
	if orderBy == config.OrderRandom && ctx != nil && ctx.Rand != nil {
		shuffled := append([]*world.GridObject(nil), results...)
		ctx.Rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		results = shuffled
	}
	if maxItems > 0 && len(results) > maxItems {
		results = results[:maxItems]
	}
	return results
}
