// Package handler builds the Handler/MultiHandler dispatch layer of
// spec.md §4.4 from config.HandlerConfig/MultiHandlerConfig, wiring
// filter and mutation chains together and implementing
// world.LifecycleHandler so GridObject.OnUse and the tag lifecycle maps
// can hold them without an import cycle.
package handler

import (
	"fmt"

	"github.com/Metta-AI/mettagrid/internal/config"
	"github.com/Metta-AI/mettagrid/internal/enginelog"
	"github.com/Metta-AI/mettagrid/internal/filter"
	"github.com/Metta-AI/mettagrid/internal/mutation"
	"github.com/Metta-AI/mettagrid/internal/world"
)

// Deps bundles what the factory needs beyond the config tree: the
// filter/mutation dependency seams, plus an optional logger for
// DEBUG_HANDLERS-gated outcome lines.
type Deps struct {
	FilterDeps   filter.Deps
	MutationDeps mutation.Deps
	Logger       *enginelog.Router
}

// Handler is (name, filters, mutations): TryApply returns true iff every
// filter passes, in which case every mutation runs (spec.md §4.4).
// Mutations never fail; TryApply's bool return reflects only whether the
// filter chain passed.
type Handler struct {
	name      string
	filters   []filter.Filter
	mutations []mutation.Mutation
	logger    *enginelog.Router
}

// New builds a Handler from its config.
func New(cfg config.HandlerConfig, deps Deps) (*Handler, error) {
	filters, err := filter.NewChain(cfg.Filters, deps.FilterDeps)
	if err != nil {
		return nil, fmt.Errorf("handler %q: building filters: %w", cfg.Name, err)
	}
	mutations, err := mutation.NewChain(cfg.Mutations, deps.MutationDeps)
	if err != nil {
		return nil, fmt.Errorf("handler %q: building mutations: %w", cfg.Name, err)
	}
	return &Handler{name: cfg.Name, filters: filters, mutations: mutations, logger: deps.Logger}, nil
}

// TryApply implements world.LifecycleHandler.
func (h *Handler) TryApply(ctx *world.Context) bool {
	if h == nil {
		return false
	}
	passed := filter.PassAll(h.filters, ctx)
	if passed {
		mutation.ApplyAll(h.mutations, ctx)
	}
	h.logOutcome(ctx, passed)
	return passed
}

func (h *Handler) logOutcome(ctx *world.Context, passed bool) {
	if h.logger == nil || !h.logger.MinimumSeverityEnabled(enginelog.SeverityDebug) {
		return
	}
	event := enginelog.Event{
		Category: enginelog.CategoryHandler,
		Severity: enginelog.SeverityDebug,
		Message:  fmt.Sprintf("handler %q passed=%t", h.name, passed),
	}
	if ctx != nil {
		event.Tick = ctx.Tick
		if ctx.Actor != nil {
			event.ActorID = ctx.Actor.ID
		}
		if ctx.Target != nil {
			event.TargetID = ctx.Target.ID
		}
	}
	h.logger.Publish(event)
}
