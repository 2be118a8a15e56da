package aoe

import (
	"sort"

	"github.com/Metta-AI/mettagrid/internal/filter"
	"github.com/Metta-AI/mettagrid/internal/mutation"
	"github.com/Metta-AI/mettagrid/internal/types"
	"github.com/Metta-AI/mettagrid/internal/world"
)

// side identifies a source's relationship to the agent it is affecting.
type side int

const (
	sideOther side = iota
	sideEnemy
	sideFriendly
)

func partitionSide(owner, agent *world.GridObject) side {
	if owner == nil || owner.Collective == nil || agent == nil || agent.Collective == nil {
		return sideOther
	}
	if owner.Collective.ID == agent.Collective.ID {
		return sideFriendly
	}
	return sideEnemy
}

// ApplyFixed runs the per-tick fixed AOE pass of spec.md §4.6 for every
// agent, in ascending id order for determinism.
func (t *Tracker) ApplyFixed(ctx *world.Context, agents []*world.GridObject) {
	sorted := sortAgents(agents)
	for _, agent := range sorted {
		t.applyFixedOne(ctx, agent)
	}
}

func (t *Tracker) applyFixedOne(ctx *world.Context, agent *world.GridObject) {
	loc := agent.Location
	current := t.cellSources[loc.R][loc.C]
	currentSet := make(map[*aoeSource]bool, len(current))
	for _, s := range current {
		currentSet[s] = true
	}

	// Step 3: sources the agent left since last tick — previously inside,
	// no longer present in the current cell's static coverage list.
	for src, members := range t.inside {
		if !src.isStatic || !members[agent.ID] || currentSet[src] {
			continue
		}
		applyDeltas(agent, src.exitDeltas)
		delete(members, agent.ID)
	}

	var enemy, other, friendly []*aoeSource
	for _, src := range current {
		switch partitionSide(src.owner, agent) {
		case sideEnemy:
			enemy = append(enemy, src)
		case sideFriendly:
			friendly = append(friendly, src)
		default:
			other = append(other, src)
		}
	}
	ordered := make([]*aoeSource, 0, len(current))
	ordered = append(ordered, enemy...)
	ordered = append(ordered, other...)
	ordered = append(ordered, friendly...)

	deferred := world.NewDeferredAccumulator()
	base := *ctx
	base.Deferred = deferred

	for _, src := range ordered {
		if src.owner == agent && !src.effectSelf {
			continue
		}
		passCtx := base.WithActorTarget(src.owner, agent)
		passes := filter.PassAll(src.filters, passCtx)
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

	for _, d := range deferred.Drain() {
		applyDeferredDelta(t.grid, d)
	}
}

func applyDeferredDelta(grid *world.Grid, d world.DeferredDelta) {
	obj, ok := grid.Object(d.Key.TargetID)
	if !ok {
		return
	}
	rid := types.ResourceID(d.Key.ResourceID)
	if d.Gain != 0 {
		obj.Inventory.Add(rid, d.Gain)
	}
	if d.Loss != 0 {
		obj.Inventory.Add(rid, d.Loss)
	}
}

func (t *Tracker) isInside(src *aoeSource, id int) bool {
	m, ok := t.inside[src]
	if !ok {
		return false
	}
	return m[id]
}

func (t *Tracker) markInside(src *aoeSource, id int, in bool) {
	m, ok := t.inside[src]
	if !ok {
		m = make(map[int]bool)
		t.inside[src] = m
	}
	if in {
		m[id] = true
	} else {
		delete(m, id)
	}
}

func sortAgents(agents []*world.GridObject) []*world.GridObject {
	out := append([]*world.GridObject(nil), agents...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
