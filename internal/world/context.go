// Package world owns the mutable per-episode domain state: the grid, the
// tag index, grid objects, agents, and collectives. It defines the small
// interfaces (LifecycleHandler, Query, Recomputer) that higher-level
// packages (filter, mutation, query, handler, aoe) implement, so that this
// package never needs to import any of them — arena-owned state at the
// bottom of the dependency graph, per DESIGN.md's cyclic-reference note.
package world

import (
	"math/rand"

	"github.com/Metta-AI/mettagrid/internal/types"
)

// LifecycleHandler is satisfied by handler.Handler and handler.MultiHandler.
// GridObject.OnUse and the tag add/remove lifecycle maps hold values of this
// interface type rather than a concrete handler type, which is what lets
// GridObject live below the filter/mutation/handler packages instead of
// forcing an import cycle.
type LifecycleHandler interface {
	TryApply(ctx *Context) bool
}

// Query is satisfied by query.Query. Filters that reference "a source
// query" (MaxDistance, QueryResource) and mutations that reference one
// (QueryInventory) hold a Query value rather than importing the query
// package.
type Query interface {
	Evaluate(ctx *Context) []*GridObject
}

// Recomputer is satisfied by query.System. The RecomputeMaterializedQuery
// mutation holds a Recomputer rather than importing the query package.
type Recomputer interface {
	Recompute(tag int)
}

// DeferredKey identifies one (target, resource) pair inside a
// DeferredAccumulator.
type DeferredKey struct {
	TargetID   int
	ResourceID int
}

// DeferredAccumulator accumulates ResourceDelta mutations targeting
// non-modifier resources during fixed AOE application (spec.md §4.6 step
// 5), keyed by (target, resource) and split into a gain sum and a loss
// sum. The split matters: spec.md §8 scenario 3 (+5 heal, -3 damage, cap
// 10, starting at 9) resolves to min(9+5,10)-3=7, not (9+5-3) clamped
// once to 10 — gains are clamped against the cap before losses are
// subtracted, so a heal that would have overflowed the cap doesn't
// "absorb" a same-tick hit. Entries are replayed in first-seen order.
type DeferredAccumulator struct {
	order  []DeferredKey
	gains  map[DeferredKey]int
	losses map[DeferredKey]int
}

// NewDeferredAccumulator constructs an empty accumulator.
func NewDeferredAccumulator() *DeferredAccumulator {
	return &DeferredAccumulator{gains: make(map[DeferredKey]int), losses: make(map[DeferredKey]int)}
}

// Add accumulates delta for the given (target, resource) pair, folding it
// into the gain sum or the loss sum by sign.
func (a *DeferredAccumulator) Add(targetID, resourceID int, delta int) {
	if a == nil || delta == 0 {
		return
	}
	key := DeferredKey{TargetID: targetID, ResourceID: resourceID}
	if _, gok := a.gains[key]; !gok {
		if _, lok := a.losses[key]; !lok {
			a.order = append(a.order, key)
		}
	}
	if delta > 0 {
		a.gains[key] += delta
	} else {
		a.losses[key] += delta
	}
}

// DeferredDelta is one drained (target, resource) entry: Gain (>= 0) is
// applied and clamped against the inventory's upper limit first, then
// Loss (<= 0) is applied and clamped against the floor.
type DeferredDelta struct {
	Key  DeferredKey
	Gain int
	Loss int
}

// Drain returns the accumulated entries in first-seen order and resets
// the accumulator.
func (a *DeferredAccumulator) Drain() []DeferredDelta {
	if a == nil {
		return nil
	}
	out := make([]DeferredDelta, 0, len(a.order))
	for _, k := range a.order {
		out = append(out, DeferredDelta{Key: k, Gain: a.gains[k], Loss: a.losses[k]})
	}
	a.order = nil
	a.gains = make(map[DeferredKey]int)
	a.losses = make(map[DeferredKey]int)
	return out
}

// Context is the (actor, target) evaluation context threaded through every
// filter, mutation, and query evaluation for one operation.
type Context struct {
	Actor  *GridObject
	Target *GridObject

	Grid       *Grid
	TagIndex   *TagIndex
	Recomputer Recomputer

	Collectives   map[int]*Collective
	CollectiveIDs map[string]int

	Stats *types.StatsTracker

	Rand *rand.Rand

	// Deferred, when non-nil, is the deferred resource-delta accumulator
	// installed by the AOE tracker during fixed AOE application.
	Deferred *DeferredAccumulator

	// SkipTrigger suppresses tag add/remove lifecycle handlers, set while
	// QuerySystem.compute_all/recompute is rewriting a materialized tag's
	// membership (spec.md §4.5).
	SkipTrigger bool

	Tick int
}

// WithTarget returns a shallow copy of ctx with Target replaced, used when a
// handler chain or query needs to re-evaluate against a different candidate
// while keeping the rest of the context (deferred accumulator, RNG, tick).
func (ctx *Context) WithTarget(target *GridObject) *Context {
	if ctx == nil {
		return &Context{Target: target}
	}
	clone := *ctx
	clone.Target = target
	return &clone
}

// WithActorTarget returns a shallow copy with both actor and target replaced.
func (ctx *Context) WithActorTarget(actor, target *GridObject) *Context {
	if ctx == nil {
		return &Context{Actor: actor, Target: target}
	}
	clone := *ctx
	clone.Actor = actor
	clone.Target = target
	return &clone
}
