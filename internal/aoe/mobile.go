package aoe

import (
	"github.com/Metta-AI/mettagrid/internal/filter"
	"github.com/Metta-AI/mettagrid/internal/mutation"
	"github.com/Metta-AI/mettagrid/internal/types"
	"github.com/Metta-AI/mettagrid/internal/world"
)

// ApplyMobile runs the per-tick mobile AOE pass of spec.md §4.6: for each
// mobile source and each agent, test range, apply presence deltas on
// enter/exit, and run the mutation chain when the filters pass. Unlike
// fixed application, mobile resource deltas apply immediately — no
// deferred accumulator is installed.
func (t *Tracker) ApplyMobile(ctx *world.Context, agents []*world.GridObject) {
	sorted := sortAgents(agents)
	for _, src := range t.mobile {
		radiusSq := int64(src.radius) * int64(src.radius)
		for _, agent := range sorted {
			inRange := types.SquaredDistance(src.owner.Location, agent.Location) <= radiusSq
			applicable := inRange && !(src.owner == agent && !src.effectSelf)
			passCtx := ctx.WithActorTarget(src.owner, agent)
			passes := applicable && filter.PassAll(src.filters, passCtx)
			wasInside := t.isInside(src, agent.ID)
			switch {
			case passes && !wasInside:
				applyDeltas(agent, src.enterDeltas)
				t.markInside(src, agent.ID, true)
			case !passes && wasInside:
				applyDeltas(agent, src.exitDeltas)
				t.markInside(src, agent.ID, false)
			}
			if passes {
				mutation.ApplyAll(src.mutations, passCtx)
			}
		}
	}
}

// Side identifies which collective controls a cell for a given observer,
// per FixedObservabilityAt.
type Side int

const (
	SideNone Side = iota
	SideEnemy
	SideFriendly
)

// territoryInfluenceScale is the fixed-point scale applied to distances
// before the integer square root, matching the original's kInfluenceScale.
const territoryInfluenceScale = 1024

// territoryInfluenceScore returns one territory source's contribution to
// cell control: it decays linearly from radius*scale at distSq==0 to 0 at
// distSq==radius*radius, clamped at zero beyond that (score can't go
// negative from an integer sqrt rounding error).
func territoryInfluenceScore(radius int, distSq int64) int64 {
	if radius <= 0 {
		return 0
	}
	scaledDistSq := distSq * territoryInfluenceScale * territoryInfluenceScale
	scaledDistance := floorSqrt(scaledDistSq)
	score := int64(radius)*territoryInfluenceScale - scaledDistance
	if score < 0 {
		return 0
	}
	return score
}

// floorSqrt computes floor(sqrt(value)) for a non-negative int64 using
// integer-only arithmetic (the binary digit-by-digit method), so territory
// scoring never depends on floating point.
func floorSqrt(value int64) int64 {
	if value <= 0 {
		return 0
	}
	var root int64
	bit := int64(1) << 62
	for bit > value {
		bit >>= 2
	}
	for bit != 0 {
		if value >= root+bit {
			value -= root + bit
			root = (root >> 1) + bit
		} else {
			root >>= 1
		}
		bit >>= 2
	}
	return root
}

// FixedObservabilityAt implements the observability hook of spec.md §4.6:
// it reports which side (if any) controls cell for observer. Every
// territory AOE covering the cell contributes a distance-decayed
// influence score to its owner's side (friendly or enemy, relative to
// observer's collective); the sides' summed scores are compared,
// matching the original's fixed_observability_at/territory_influence_score
// rather than picking a single nearest source. Only territory sources
// participate — by definition (AOESourceConfig.IsTerritory) they carry no
// mutations, so "controls" here means observation-only influence, not a
// mutation gate.
func (t *Tracker) FixedObservabilityAt(cell types.GridLocation, observer *world.GridObject) Side {
	if observer == nil || observer.Collective == nil {
		return SideNone
	}
	var friendlyScore, enemyScore int64
	for _, src := range t.cellSources[cell.R][cell.C] {
		if !src.isTerritory || src.owner == nil || src.owner.Collective == nil {
			continue
		}
		score := territoryInfluenceScore(src.radius, types.SquaredDistance(src.owner.Location, cell))
		if src.owner.Collective.ID == observer.Collective.ID {
			friendlyScore += score
		} else {
			enemyScore += score
		}
	}
	switch {
	case friendlyScore > enemyScore:
		return SideFriendly
	case enemyScore > friendlyScore:
		return SideEnemy
	default:
		return SideNone
	}
}
