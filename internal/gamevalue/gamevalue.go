// Package gamevalue resolves config.GameValueConfig references (spec.md
// §4.7) to live readable values. Resolution happens once at setup; the
// resulting ResolvedGameValue is read every tick without ever touching a
// string again (DESIGN NOTES §9: "never resolve strings in the per-tick
// path").
package gamevalue

import (
	"fmt"

	"github.com/Metta-AI/mettagrid/internal/config"
	"github.com/Metta-AI/mettagrid/internal/world"
)

// ResolvedGameValue exposes a single Read() -> float64 regardless of
// whether it is backed by a pointer (fast) or a compute callback (slow).
type ResolvedGameValue interface {
	Read() float64
}

// QueryBuilder builds a world.Query from a query config, injected by the
// wiring layer (internal/objectcatalog) so this package never imports
// internal/query directly (see DESIGN.md's dependency-injection note).
type QueryBuilder func(config.QueryConfig) (world.Query, error)

// Deps bundles the dependencies Resolve needs beyond the config itself.
type Deps struct {
	QueryBuilder QueryBuilder
}

type pointerValue struct{ ptr *float64 }

func (v pointerValue) Read() float64 { return *v.ptr }

type callbackValue struct{ fn func() float64 }

func (v callbackValue) Read() float64 { return v.fn() }

// Resolve builds a ResolvedGameValue for cfg against the given subject
// object (the agent or collective the value is scoped to for Inventory/
// Stat/TagCount variants).
func Resolve(cfg config.GameValueConfig, subjectStats func() *world.Context, tagIndex *world.TagIndex, deps Deps) (ResolvedGameValue, error) {
	switch cfg.Kind {
	case config.GameValueInventory:
		return resolveInventory(cfg, subjectStats, deps)
	case config.GameValueStat:
		return resolveStat(cfg, subjectStats, deps)
	case config.GameValueTagCount:
		if tagIndex == nil {
			return nil, fmt.Errorf("gamevalue: tag_count requires a tag index")
		}
		return pointerValue{ptr: tagIndex.GetCountPtr(cfg.TagID)}, nil
	case config.GameValueConst:
		v := cfg.Const
		return callbackValue{fn: func() float64 { return v }}, nil
	case config.GameValueQueryInventory:
		return resolveQueryInventory(cfg, subjectStats, deps)
	default:
		return nil, fmt.Errorf("gamevalue: unknown kind %q", cfg.Kind)
	}
}

func resolveInventory(cfg config.GameValueConfig, subjectStats func() *world.Context, deps Deps) (ResolvedGameValue, error) {
	return callbackValue{fn: func() float64 {
		ctx := subjectStats()
		if ctx == nil || ctx.Target == nil {
			return 0
		}
		switch cfg.Scope {
		case config.ScopeCollective:
			if ctx.Target.Collective == nil {
				return 0
			}
			return float64(ctx.Target.Collective.Inventory.Amount(intResource(cfg.ResourceID)))
		default:
			if ctx.Target.Inventory == nil {
				return 0
			}
			return float64(ctx.Target.Inventory.Amount(intResource(cfg.ResourceID)))
		}
	}}, nil
}

func resolveStat(cfg config.GameValueConfig, subjectStats func() *world.Context, deps Deps) (ResolvedGameValue, error) {
	var prev float64
	return callbackValue{fn: func() float64 {
		ctx := subjectStats()
		if ctx == nil {
			return 0
		}
		var tracker = statsTrackerFor(ctx, cfg.Scope)
		if tracker == nil {
			return 0
		}
		current := tracker.Get(cfg.StatName)
		if !cfg.Delta {
			return current
		}
		delta := current - prev
		prev = current
		return delta
	}}, nil
}

func resolveQueryInventory(cfg config.GameValueConfig, subjectStats func() *world.Context, deps Deps) (ResolvedGameValue, error) {
	if deps.QueryBuilder == nil {
		return nil, fmt.Errorf("gamevalue: query_inventory requires a QueryBuilder")
	}
	q, err := deps.QueryBuilder(cfg.Query)
	if err != nil {
		return nil, fmt.Errorf("gamevalue: building query_inventory query: %w", err)
	}
	return callbackValue{fn: func() float64 {
		ctx := subjectStats()
		if ctx == nil {
			return 0
		}
		results := q.Evaluate(ctx)
		sum := 0
		for _, obj := range results {
			if obj == nil || obj.Inventory == nil {
				continue
			}
			sum += obj.Inventory.Amount(intResource(cfg.QueryResourceID))
		}
		return float64(sum)
	}}, nil
}
