// Package mutation builds and applies the mutation algebra of spec.md
// §4.3. Mutations never fail outright; an inapplicable mutation is a
// no-op, matching the Handler contract ("mutations do not fail; they may
// be no-ops", spec.md §4.4).
package mutation

import (
	"fmt"

	"github.com/Metta-AI/mettagrid/internal/config"
	"github.com/Metta-AI/mettagrid/internal/world"
)

// Mutation applies one effect against a (actor, target) context.
type Mutation interface {
	Apply(ctx *world.Context)
}

// QueryBuilder builds a world.Query from a query config, injected so this
// package never imports internal/query directly (same seam as
// gamevalue.QueryBuilder and filter.QueryBuilder).
type QueryBuilder func(config.QueryConfig) (world.Query, error)

// Deps bundles the dependencies the factory needs beyond the config tree.
type Deps struct {
	QueryBuilder QueryBuilder
	TagIndex     *world.TagIndex
	Recomputer   world.Recomputer
}

// New builds the Mutation described by cfg.
func New(cfg config.MutationConfig, deps Deps) (Mutation, error) {
	switch cfg.Kind {
	case config.MutationResourceDelta:
		return resourceDeltaMutation{resourceID: intResource(cfg.ResourceID), delta: cfg.Delta}, nil
	case config.MutationResourceTransfer:
		return resourceTransferMutation{resourceID: intResource(cfg.ResourceID), amount: cfg.Amount, strict: cfg.Strict, removeIfEmpty: cfg.RemoveIfEmpty}, nil
	case config.MutationAlignment:
		return newAlignmentMutation(cfg)
	case config.MutationFreeze:
		return freezeMutation{ticks: cfg.FreezeTicks}, nil
	case config.MutationClearInventory:
		return newClearInventoryMutation(cfg), nil
	case config.MutationAttack:
		return newAttackMutation(cfg), nil
	case config.MutationStats:
		return statsMutation{scope: cfg.StatsScope, name: cfg.StatName, delta: cfg.StatDelta}, nil
	case config.MutationAddTag:
		return addTagMutation{tagID: cfg.TagID, index: deps.TagIndex}, nil
	case config.MutationRemoveTag:
		return removeTagMutation{tagID: cfg.TagID, index: deps.TagIndex}, nil
	case config.MutationRemoveTagsPrefix:
		return newRemoveTagsWithPrefixMutation(cfg, deps), nil
	case config.MutationGameValue:
		return newGameValueMutation(cfg, deps)
	case config.MutationRecomputeQuery:
		return recomputeQueryMutation{tagID: cfg.QueryTagID, recomputer: deps.Recomputer}, nil
	case config.MutationQueryInventory:
		return newQueryInventoryMutation(cfg, deps)
	default:
		return nil, fmt.Errorf("mutation: unknown kind %q", cfg.Kind)
	}
}

// NewChain builds an ordered list of mutations, each applied in order.
func NewChain(cfgs []config.MutationConfig, deps Deps) ([]Mutation, error) {
	out := make([]Mutation, 0, len(cfgs))
	for _, c := range cfgs {
		m, err := New(c, deps)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// ApplyAll runs every mutation in chain against ctx, in order.
func ApplyAll(chain []Mutation, ctx *world.Context) {
	for _, m := range chain {
		if m != nil {
			m.Apply(ctx)
		}
	}
}
