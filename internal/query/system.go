package query

import (
	"fmt"
	"sort"

	"github.com/Metta-AI/mettagrid/internal/config"
	"github.com/Metta-AI/mettagrid/internal/world"
)

// System maintains one or more materialized query tags (spec.md §4.5):
// each registered tag id is backed by a Query whose results define exactly
// which objects currently hold that tag. Recompute re-evaluates one tag's
// query, updates tag membership with on-add/on-remove lifecycle handlers
// suppressed (ctx.SkipTrigger) while the set is in flux, then fires each
// changed object's handlers exactly once. It implements world.Recomputer.
type System struct {
	tagIndex   *world.TagIndex
	ctxFactory func() *world.Context
	queries    map[int]world.Query
	order      []int
}

// NewSystem constructs an empty materialized-query system. ctxFactory must
// return a fresh base Context (Grid, TagIndex, Collectives, Rand, Stats
// wired in, Actor/Target unset) each time it is called.
func NewSystem(ctxFactory func() *world.Context, tagIndex *world.TagIndex) *System {
	return &System{tagIndex: tagIndex, ctxFactory: ctxFactory, queries: make(map[int]world.Query)}
}

// Register builds and stores the query backing one materialized tag.
func (s *System) Register(cfg config.QueryTagConfig, deps Deps) error {
	q, err := New(cfg.Query, deps)
	if err != nil {
		return fmt.Errorf("query system: tag %d (%s): %w", cfg.TagID, cfg.Name, err)
	}
	if _, exists := s.queries[cfg.TagID]; !exists {
		s.order = append(s.order, cfg.TagID)
	}
	s.queries[cfg.TagID] = q
	return nil
}

// ComputeAll recomputes every registered tag, in ascending tag-id order for
// determinism.
func (s *System) ComputeAll() {
	tags := append([]int(nil), s.order...)
	sort.Ints(tags)
	for _, t := range tags {
		s.Recompute(t)
	}
}

// Recompute implements world.Recomputer: it re-evaluates tag's query and
// reconciles tag membership with the result set.
func (s *System) Recompute(tag int) {
	q, ok := s.queries[tag]
	if !ok {
		return
	}
	ctx := s.ctxFactory()
	evalCtx := *ctx
	evalCtx.SkipTrigger = true
	results := q.Evaluate(&evalCtx)

	wantByID := make(map[int]*world.GridObject, len(results))
	for _, obj := range results {
		wantByID[obj.ID] = obj
	}
	haveByID := make(map[int]*world.GridObject)
	for _, obj := range s.tagIndex.GetObjectsWithTag(tag) {
		haveByID[obj.ID] = obj
	}

	var added, removed []*world.GridObject
	for id, obj := range wantByID {
		if _, ok := haveByID[id]; !ok {
			added = append(added, obj)
		}
	}
	for id, obj := range haveByID {
		if _, ok := wantByID[id]; !ok {
			removed = append(removed, obj)
		}
	}
	added = sortByID(added)
	removed = sortByID(removed)

	skipCtx := &world.Context{SkipTrigger: true}
	for _, obj := range added {
		obj.AddTag(tag, s.tagIndex, skipCtx)
	}
	for _, obj := range removed {
		obj.RemoveTag(tag, s.tagIndex, skipCtx)
	}

	fireCtx := s.ctxFactory()
	for _, obj := range removed {
		for _, h := range obj.TagOnRemove[tag] {
			if h != nil {
				h.TryApply(fireCtx.WithTarget(obj))
			}
		}
	}
	for _, obj := range added {
		for _, h := range obj.TagOnAdd[tag] {
			if h != nil {
				h.TryApply(fireCtx.WithTarget(obj))
			}
		}
	}
}

var _ world.Recomputer = (*System)(nil)
