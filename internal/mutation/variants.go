package mutation

import (
	"fmt"

	"github.com/Metta-AI/mettagrid/internal/config"
	"github.com/Metta-AI/mettagrid/internal/gamevalue"
	"github.com/Metta-AI/mettagrid/internal/types"
	"github.com/Metta-AI/mettagrid/internal/world"
)

func intResource(id int) types.ResourceID { return types.ResourceID(id) }

// --- ResourceDelta ---

// resourceDeltaMutation adds delta to the target's inventory, routing
// through the context's deferred accumulator when one is installed and
// the resource is non-modifier (spec.md §4.6 step 5).
type resourceDeltaMutation struct {
	resourceID types.ResourceID
	delta      int
}

func (m resourceDeltaMutation) Apply(ctx *world.Context) {
	if ctx == nil || ctx.Target == nil || ctx.Target.Inventory == nil {
		return
	}
	if ctx.Deferred != nil && !ctx.Target.Inventory.IsModifier(m.resourceID) {
		ctx.Deferred.Add(ctx.Target.ID, int(m.resourceID), m.delta)
		return
	}
	ctx.Target.Inventory.Add(m.resourceID, m.delta)
}

// --- ResourceTransfer ---

type resourceTransferMutation struct {
	resourceID    types.ResourceID
	amount        int
	strict        bool
	removeIfEmpty bool
}

func (m resourceTransferMutation) Apply(ctx *world.Context) {
	if ctx == nil || ctx.Actor == nil || ctx.Target == nil {
		return
	}
	if ctx.Actor.Inventory == nil || ctx.Target.Inventory == nil {
		return
	}
	types.TransferResources(ctx.Actor.Inventory, ctx.Target.Inventory, m.resourceID, m.amount, m.strict)
	if m.removeIfEmpty && ctx.Actor.Inventory.IsEmpty() && ctx.Grid != nil {
		ctx.Grid.RemoveFromGrid(ctx.Actor.ID)
		if ctx.TagIndex != nil {
			for t := 0; t < types.MaxTags; t++ {
				ctx.Actor.RemoveTag(t, ctx.TagIndex, ctx)
			}
		}
	}
}

// --- Alignment ---

type alignmentMutation struct {
	mode config.AlignmentMode
	name string
}

func newAlignmentMutation(cfg config.MutationConfig) (Mutation, error) {
	return alignmentMutation{mode: cfg.Alignment, name: cfg.CollectiveName}, nil
}

func (m alignmentMutation) Apply(ctx *world.Context) {
	if ctx == nil || ctx.Target == nil {
		return
	}
	switch m.mode {
	case config.AlignClear:
		ctx.Target.Collective = nil
	case config.AlignSpecific:
		if ctx.Collectives != nil {
			if id, ok := ctx.CollectiveIDs[m.name]; ok {
				ctx.Target.Collective = ctx.Collectives[id]
			}
		}
	default:
		if ctx.Actor != nil {
			ctx.Target.Collective = ctx.Actor.Collective
		}
	}
}

// --- Freeze ---

type freezeMutation struct{ ticks int }

func (m freezeMutation) Apply(ctx *world.Context) {
	if ctx == nil || ctx.Target == nil || ctx.Target.Agent == nil {
		return
	}
	ctx.Target.Agent.Frozen = m.ticks
}

// --- ClearInventory ---

type clearInventoryMutation struct{ resourceIDs []types.ResourceID }

func newClearInventoryMutation(cfg config.MutationConfig) Mutation {
	ids := make([]types.ResourceID, len(cfg.ResourceIDs))
	for i, id := range cfg.ResourceIDs {
		ids[i] = types.ResourceID(id)
	}
	return clearInventoryMutation{resourceIDs: ids}
}

func (m clearInventoryMutation) Apply(ctx *world.Context) {
	if ctx == nil || ctx.Target == nil || ctx.Target.Inventory == nil {
		return
	}
	ctx.Target.Inventory.Clear(m.resourceIDs...)
}

// --- Attack ---

// attackMutation consumes the actor's weapon resource, lets the target's
// armor absorb as much of the weapon amount as it has available, and
// applies the remainder as health damage scaled by DamagePercent.
type attackMutation struct {
	weaponResourceID types.ResourceID
	weaponAmount     int
	armorResourceID  types.ResourceID
	healthResourceID types.ResourceID
	damagePercent    int
}

func newAttackMutation(cfg config.MutationConfig) Mutation {
	return attackMutation{
		weaponResourceID: types.ResourceID(cfg.WeaponResourceID),
		weaponAmount:     cfg.WeaponAmount,
		armorResourceID:  types.ResourceID(cfg.ArmorResourceID),
		healthResourceID: types.ResourceID(cfg.HealthResourceID),
		damagePercent:    cfg.DamagePercent,
	}
}

func (m attackMutation) Apply(ctx *world.Context) {
	if ctx == nil || ctx.Actor == nil || ctx.Target == nil {
		return
	}
	if ctx.Actor.Inventory == nil || ctx.Target.Inventory == nil {
		return
	}
	if ctx.Actor.Inventory.Amount(m.weaponResourceID) < m.weaponAmount {
		return
	}
	ctx.Actor.Inventory.Add(m.weaponResourceID, -m.weaponAmount)

	raw := m.weaponAmount
	available := ctx.Target.Inventory.Amount(m.armorResourceID)
	absorbed := available
	if absorbed > raw {
		absorbed = raw
	}
	if absorbed > 0 {
		ctx.Target.Inventory.Add(m.armorResourceID, -absorbed)
	}
	remaining := raw - absorbed
	damage := remaining * m.damagePercent / 100
	if damage > 0 {
		delta := -damage
		if ctx.Deferred != nil && !ctx.Target.Inventory.IsModifier(m.healthResourceID) {
			ctx.Deferred.Add(ctx.Target.ID, int(m.healthResourceID), delta)
		} else {
			ctx.Target.Inventory.Add(m.healthResourceID, delta)
		}
	}
}

// --- Stats ---

type statsMutation struct {
	scope config.StatsScope
	name  string
	delta float64
}

func (m statsMutation) Apply(ctx *world.Context) {
	tracker := statsTrackerFor(ctx, m.scope)
	if tracker == nil {
		return
	}
	tracker.Add(m.name, m.delta)
}

func statsTrackerFor(ctx *world.Context, scope config.StatsScope) *types.StatsTracker {
	if ctx == nil {
		return nil
	}
	switch scope {
	case config.ScopeGame:
		return ctx.Stats
	case config.ScopeCollective:
		if ctx.Target == nil || ctx.Target.Collective == nil {
			return nil
		}
		return ctx.Target.Collective.Stats
	case config.ScopeAgent:
		if ctx.Target == nil || ctx.Target.Agent == nil {
			return nil
		}
		return ctx.Target.Agent.Stats
	default:
		return nil
	}
}

// --- AddTag / RemoveTag / RemoveTagsWithPrefix ---

type addTagMutation struct {
	tagID int
	index *world.TagIndex
}

func (m addTagMutation) Apply(ctx *world.Context) {
	if ctx == nil || ctx.Target == nil {
		return
	}
	ctx.Target.AddTag(m.tagID, m.index, ctx)
}

type removeTagMutation struct {
	tagID int
	index *world.TagIndex
}

func (m removeTagMutation) Apply(ctx *world.Context) {
	if ctx == nil || ctx.Target == nil {
		return
	}
	ctx.Target.RemoveTag(m.tagID, m.index, ctx)
}

type removeTagsWithPrefixMutation struct {
	mask  types.TagSet
	index *world.TagIndex
}

func newRemoveTagsWithPrefixMutation(cfg config.MutationConfig, deps Deps) Mutation {
	return removeTagsWithPrefixMutation{mask: types.NewMask(cfg.PrefixMask...), index: deps.TagIndex}
}

func (m removeTagsWithPrefixMutation) Apply(ctx *world.Context) {
	if ctx == nil || ctx.Target == nil {
		return
	}
	ctx.Target.RemoveTagsWithPrefix(m.mask, m.index, ctx)
}

// --- GameValue mutation ---

// gameValueMutation reads a resolved source game value and writes its
// value (as a delta) into a resolved target game value. Only Inventory
// and mutable-Stat targets can be written; other target kinds are a
// construction error (spec.md §4.3: "read-only game values fail").
type gameValueMutation struct {
	sourceCell *ctxCell
	source     gamevalue.ResolvedGameValue
	targetKind config.GameValueKind
	write      func(ctx *world.Context, delta float64)
}

type ctxCell struct{ current *world.Context }

func (c *ctxCell) get() *world.Context { return c.current }

func newGameValueMutation(cfg config.MutationConfig, deps Deps) (Mutation, error) {
	if cfg.Target.Kind != config.GameValueInventory && cfg.Target.Kind != config.GameValueStat {
		return nil, fmt.Errorf("mutation: game_value target kind %q is read-only", cfg.Target.Kind)
	}
	srcCell := &ctxCell{}
	source, err := gamevalue.Resolve(cfg.Source, srcCell.get, deps.TagIndex, gamevalue.Deps{QueryBuilder: gamevalue.QueryBuilder(deps.QueryBuilder)})
	if err != nil {
		return nil, err
	}
	m := &gameValueMutation{sourceCell: srcCell, source: source, targetKind: cfg.Target.Kind}
	target := cfg.Target
	switch cfg.Target.Kind {
	case config.GameValueInventory:
		rid := types.ResourceID(target.ResourceID)
		m.write = func(ctx *world.Context, delta float64) {
			tgt := ctx.Target
			if target.Scope == config.ScopeCollective {
				if tgt.Collective == nil {
					return
				}
				tgt.Collective.Inventory.Add(rid, int(delta))
				return
			}
			if tgt == nil || tgt.Inventory == nil {
				return
			}
			tgt.Inventory.Add(rid, int(delta))
		}
	case config.GameValueStat:
		name := target.StatName
		m.write = func(ctx *world.Context, delta float64) {
			tracker := statsTrackerFor(ctx, target.Scope)
			if tracker == nil {
				return
			}
			tracker.Add(name, delta)
		}
	}
	return m, nil
}

func (m *gameValueMutation) Apply(ctx *world.Context) {
	if m.source == nil || m.write == nil {
		return
	}
	m.sourceCell.current = ctx
	m.write(ctx, m.source.Read())
}

// --- RecomputeMaterializedQuery ---

type recomputeQueryMutation struct {
	tagID      int
	recomputer world.Recomputer
}

func (m recomputeQueryMutation) Apply(ctx *world.Context) {
	if m.recomputer == nil {
		return
	}
	m.recomputer.Recompute(m.tagID)
}

// --- QueryInventory ---

type queryInventoryMutation struct {
	query          world.Query
	fixedDeltas    map[types.ResourceID]int
	transferFrom   bool
	transferAmount int
}

func newQueryInventoryMutation(cfg config.MutationConfig, deps Deps) (Mutation, error) {
	if deps.QueryBuilder == nil {
		return nil, fmt.Errorf("mutation: query_inventory requires a QueryBuilder")
	}
	q, err := deps.QueryBuilder(cfg.Query)
	if err != nil {
		return nil, fmt.Errorf("mutation: building query_inventory query: %w", err)
	}
	deltas := make(map[types.ResourceID]int, len(cfg.FixedDeltas))
	for id, d := range cfg.FixedDeltas {
		deltas[types.ResourceID(id)] = d
	}
	return queryInventoryMutation{query: q, fixedDeltas: deltas, transferFrom: cfg.TransferFrom, transferAmount: cfg.TransferAmount}, nil
}

func (m queryInventoryMutation) Apply(ctx *world.Context) {
	if ctx == nil {
		return
	}
	results := m.query.Evaluate(ctx)
	for _, obj := range results {
		if obj == nil || obj.Inventory == nil {
			continue
		}
		if m.transferFrom {
			if ctx.Actor == nil || ctx.Actor.Inventory == nil {
				continue
			}
			for rid := range m.fixedDeltas {
				types.TransferResources(ctx.Actor.Inventory, obj.Inventory, rid, m.transferAmount, false)
			}
			continue
		}
		for rid, delta := range m.fixedDeltas {
			obj.Inventory.Add(rid, delta)
		}
	}
}
