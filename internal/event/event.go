// Package event builds the timestep-triggered scheduler of spec.md §4.1:
// a list of EventConfigs grouped by timestep, each selecting its targets
// from a query and applying a MultiHandler to every surviving candidate,
// with an optional fallback chain when no candidate passes.
package event

import (
	"fmt"

	"github.com/Metta-AI/mettagrid/internal/config"
	"github.com/Metta-AI/mettagrid/internal/handler"
	"github.com/Metta-AI/mettagrid/internal/query"
	"github.com/Metta-AI/mettagrid/internal/world"
)

// Deps bundles what building the event list needs: the query and handler
// dependency seams.
type Deps struct {
	QueryDeps   query.Deps
	HandlerDeps handler.Deps
}

type entry struct {
	cfg     config.EventConfig
	query   world.Query
	handler *handler.MultiHandler
}

// Scheduler dispatches every event registered for a given timestep, in
// the configured insertion order (spec.md §4.1: "event execution at a
// timestep follows the scheduler's insertion order").
type Scheduler struct {
	byTimestep map[int][]*entry
	byName     map[string]*entry
}

// New builds the scheduler from the game's event list.
func New(cfgs []config.EventConfig, deps Deps) (*Scheduler, error) {
	s := &Scheduler{byTimestep: make(map[int][]*entry), byName: make(map[string]*entry)}
	for _, cfg := range cfgs {
		q, err := query.New(cfg.Query, deps.QueryDeps)
		if err != nil {
			return nil, fmt.Errorf("event %q: query: %w", cfg.Name, err)
		}
		h, err := handler.NewMulti(cfg.Handler, deps.HandlerDeps)
		if err != nil {
			return nil, fmt.Errorf("event %q: handler: %w", cfg.Name, err)
		}
		e := &entry{cfg: cfg, query: q, handler: h}
		s.byTimestep[cfg.Timestep] = append(s.byTimestep[cfg.Timestep], e)
		if cfg.Name != "" {
			s.byName[cfg.Name] = e
		}
	}
	return s, nil
}

// Dispatch runs every event registered for tick.
func (s *Scheduler) Dispatch(tick int, ctx *world.Context) {
	for _, e := range s.byTimestep[tick] {
		s.run(e, ctx, make(map[string]bool))
	}
}

// run evaluates one event's candidate set, applies shuffle/max_targets,
// runs the handler on every surviving candidate, and falls back to
// another named event if nothing passed. visited guards against a
// fallback cycle in the config (a config bug, not a runtime condition
// the spec's error taxonomy accounts for; this stops silently rather
// than looping or panicking).
func (s *Scheduler) run(e *entry, ctx *world.Context, visited map[string]bool) {
	if e.cfg.Name != "" {
		if visited[e.cfg.Name] {
			return
		}
		visited[e.cfg.Name] = true
	}
	candidates := e.query.Evaluate(ctx)
	if e.cfg.Shuffle && ctx.Rand != nil {
		shuffled := append([]*world.GridObject(nil), candidates...)
		ctx.Rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		candidates = shuffled
	}
	if e.cfg.MaxTargets > 0 && len(candidates) > e.cfg.MaxTargets {
		candidates = candidates[:e.cfg.MaxTargets]
	}

	anyPassed := false
	for _, cand := range candidates {
		if e.handler.TryApply(ctx.WithTarget(cand)) {
			anyPassed = true
		}
	}

	if !anyPassed && e.cfg.FallbackID != "" {
		if fallback, ok := s.byName[e.cfg.FallbackID]; ok {
			s.run(fallback, ctx, visited)
		}
	}
}
