package world

import "github.com/Metta-AI/mettagrid/internal/types"

// TagIndex mirrors every GridObject's tag bitset: tag_id -> set<GridObject>
// plus a tag_id -> count stored as float64 so reward references can read it
// through a stable pointer (spec.md §3, §4.2). Counts live in a
// fixed-size array sized to the tag bitset width, so GetCountPtr's pointer
// is valid for the lifetime of the index — no slice growth ever relocates
// it, unlike StatsTracker's open-ended name table.
type TagIndex struct {
	members [types.MaxTags]map[int]*GridObject
	counts  [types.MaxTags]float64
}

// NewTagIndex constructs an empty tag index.
func NewTagIndex() *TagIndex {
	idx := &TagIndex{}
	for t := 0; t < types.MaxTags; t++ {
		idx.members[t] = make(map[int]*GridObject)
	}
	return idx
}

// onTagAdded registers obj under tag t. No-op for a nil object.
func (idx *TagIndex) onTagAdded(obj *GridObject, t int) {
	if idx == nil || obj == nil || t < 0 || t >= types.MaxTags {
		return
	}
	if _, exists := idx.members[t][obj.ID]; exists {
		return
	}
	idx.members[t][obj.ID] = obj
	idx.counts[t] = float64(len(idx.members[t]))
}

// onTagRemoved unregisters obj from tag t. No-op for a nil object.
func (idx *TagIndex) onTagRemoved(obj *GridObject, t int) {
	if idx == nil || obj == nil || t < 0 || t >= types.MaxTags {
		return
	}
	if _, exists := idx.members[t][obj.ID]; !exists {
		return
	}
	delete(idx.members[t], obj.ID)
	idx.counts[t] = float64(len(idx.members[t]))
}

// GetObjectsWithTag returns every object currently tagged t. Order is
// unspecified; callers that need a stable order must sort explicitly.
func (idx *TagIndex) GetObjectsWithTag(t int) []*GridObject {
	if idx == nil || t < 0 || t >= types.MaxTags {
		return nil
	}
	out := make([]*GridObject, 0, len(idx.members[t]))
	for _, obj := range idx.members[t] {
		out = append(out, obj)
	}
	return out
}

// CountObjectsWithTag returns the number of objects currently tagged t.
func (idx *TagIndex) CountObjectsWithTag(t int) int {
	if idx == nil || t < 0 || t >= types.MaxTags {
		return 0
	}
	return len(idx.members[t])
}

// GetCountPtr returns a stable *float64 tracking the live count of objects
// tagged t, usable by reward references for the lifetime of the index.
func (idx *TagIndex) GetCountPtr(t int) *float64 {
	if idx == nil || t < 0 || t >= types.MaxTags {
		zero := 0.0
		return &zero
	}
	return &idx.counts[t]
}
