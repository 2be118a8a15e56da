// Package filter builds and evaluates the predicate algebra of spec.md
// §4.3. Filter configs are data (internal/config); Filter values are the
// runtime evaluators a factory produces from them.
package filter

import (
	"fmt"

	"github.com/Metta-AI/mettagrid/internal/config"
	"github.com/Metta-AI/mettagrid/internal/types"
	"github.com/Metta-AI/mettagrid/internal/world"
)

// Filter is a predicate over a (actor, target) context.
type Filter interface {
	Pass(ctx *world.Context) bool
}

// QueryBuilder builds a world.Query from a query config, injected so this
// package never imports internal/query (DESIGN.md dependency-injection
// note, same seam as gamevalue.QueryBuilder).
type QueryBuilder func(config.QueryConfig) (world.Query, error)

// Deps bundles the dependencies the factory needs beyond the config tree.
type Deps struct {
	QueryBuilder QueryBuilder
	TagIndex     *world.TagIndex
}

// New builds the Filter described by cfg.
func New(cfg config.FilterConfig, deps Deps) (Filter, error) {
	switch cfg.Kind {
	case config.FilterVibe:
		return vibeFilter{vibeID: cfg.VibeID}, nil
	case config.FilterResource:
		return resourceFilter{resourceID: types.ResourceID(cfg.ResourceID), min: cfg.MinAmount}, nil
	case config.FilterAlignment:
		return newAlignmentFilter(cfg)
	case config.FilterTag:
		return tagFilter{tagID: cfg.TagID}, nil
	case config.FilterSharedTagPrefix:
		return sharedTagPrefixFilter{mask: types.NewMask(cfg.PrefixMask...)}, nil
	case config.FilterTagPrefix:
		return tagPrefixFilter{mask: types.NewMask(cfg.PrefixMask...)}, nil
	case config.FilterGameValue:
		return newGameValueFilter(cfg, deps)
	case config.FilterMaxDistance:
		return newMaxDistanceFilter(cfg, deps)
	case config.FilterQueryResource:
		return newQueryResourceFilter(cfg, deps)
	case config.FilterNear:
		return newNearFilter(cfg, deps)
	case config.FilterNeg:
		return newNegFilter(cfg, deps)
	case config.FilterOr:
		return newOrFilter(cfg, deps)
	default:
		return nil, fmt.Errorf("filter: unknown kind %q", cfg.Kind)
	}
}

// NewChain builds an ordered list of filters, all of which must pass for a
// handler's filter chain to pass.
func NewChain(cfgs []config.FilterConfig, deps Deps) ([]Filter, error) {
	out := make([]Filter, 0, len(cfgs))
	for _, c := range cfgs {
		f, err := New(c, deps)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// PassAll reports whether every filter in chain passes for ctx.
func PassAll(chain []Filter, ctx *world.Context) bool {
	for _, f := range chain {
		if f == nil || !f.Pass(ctx) {
			return false
		}
	}
	return true
}

