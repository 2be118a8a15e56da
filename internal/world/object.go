package world

import "github.com/Metta-AI/mettagrid/internal/types"

// GridObject is the single concrete entity type for everything placed on
// the grid: converters, resource nodes, walls, and agents alike. Per
// DESIGN NOTES §9, capability differences (usable, AOE source, agent) are
// modeled as optional fields and a boolean/dense id rather than a deep
// mixin hierarchy or vtable dispatch.
type GridObject struct {
	ID       int
	TypeID   int
	TypeName string
	Name     string

	Location types.GridLocation
	Vibe     int
	Tags     types.TagSet

	Collective *Collective
	Inventory  *types.Inventory

	// OnUse is the handler invoked when another object targets this one
	// with a "use"-style action (spec.md §4.2 GridObject fields).
	OnUse LifecycleHandler

	// TagOnAdd/TagOnRemove fire exactly once per net membership change,
	// keyed by tag id, in registration order.
	TagOnAdd    map[int][]LifecycleHandler
	TagOnRemove map[int][]LifecycleHandler

	// Agent is non-nil iff this object is agent-controlled.
	Agent *Agent
}

// IsAgent reports whether this object is agent-controlled.
func (o *GridObject) IsAgent() bool {
	return o != nil && o.Agent != nil
}

// HasTag reports whether the object currently carries tag t.
func (o *GridObject) HasTag(t int) bool {
	return o != nil && o.Tags.Has(t)
}

// AddTag adds tag t, updates the tag index, and — unless ctx.SkipTrigger is
// set — fires the object's on-add handlers exactly once if the tag was
// newly added. Repeated calls after the first are no-ops (spec.md §8).
func (o *GridObject) AddTag(t int, idx *TagIndex, ctx *Context) bool {
	if o == nil {
		return false
	}
	if !o.Tags.Add(t) {
		return false
	}
	if idx != nil {
		idx.onTagAdded(o, t)
	}
	if ctx != nil && !ctx.SkipTrigger {
		fireLifecycle(o.TagOnAdd[t], ctx.WithTarget(o))
	}
	return true
}

// RemoveTag removes tag t, updates the tag index, and — unless
// ctx.SkipTrigger is set — fires the object's on-remove handlers exactly
// once if the tag had been set.
func (o *GridObject) RemoveTag(t int, idx *TagIndex, ctx *Context) bool {
	if o == nil {
		return false
	}
	if !o.Tags.Remove(t) {
		return false
	}
	if idx != nil {
		idx.onTagRemoved(o, t)
	}
	if ctx != nil && !ctx.SkipTrigger {
		fireLifecycle(o.TagOnRemove[t], ctx.WithTarget(o))
	}
	return true
}

// RemoveTagsWithPrefix removes every tag in mask currently set on o.
func (o *GridObject) RemoveTagsWithPrefix(mask types.TagSet, idx *TagIndex, ctx *Context) {
	if o == nil {
		return
	}
	for t := 0; t < types.MaxTags; t++ {
		if mask.Has(t) && o.Tags.Has(t) {
			o.RemoveTag(t, idx, ctx)
		}
	}
}

func fireLifecycle(handlers []LifecycleHandler, ctx *Context) {
	for _, h := range handlers {
		if h == nil {
			continue
		}
		h.TryApply(ctx)
	}
}
