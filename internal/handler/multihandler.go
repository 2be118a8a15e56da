package handler

import (
	"fmt"

	"github.com/Metta-AI/mettagrid/internal/config"
	"github.com/Metta-AI/mettagrid/internal/world"
)

// MultiHandler wraps an ordered list of handlers with a dispatch mode
// (spec.md §4.4): FirstMatch stops at the first handler whose filters
// passed (action on_use dispatch); All runs every handler whose filters
// passed (AOE-derived effect bundles).
type MultiHandler struct {
	name     string
	mode     config.MultiHandlerMode
	handlers []*Handler
}

// NewMulti builds a MultiHandler from its config.
func NewMulti(cfg config.MultiHandlerConfig, deps Deps) (*MultiHandler, error) {
	handlers := make([]*Handler, 0, len(cfg.Handlers))
	for _, hc := range cfg.Handlers {
		h, err := New(hc, deps)
		if err != nil {
			return nil, fmt.Errorf("multihandler %q: %w", cfg.Name, err)
		}
		handlers = append(handlers, h)
	}
	return &MultiHandler{name: cfg.Name, mode: cfg.Mode, handlers: handlers}, nil
}

// TryApply implements world.LifecycleHandler.
func (m *MultiHandler) TryApply(ctx *world.Context) bool {
	if m == nil {
		return false
	}
	matched := false
	for _, h := range m.handlers {
		passed := h.TryApply(ctx)
		if passed {
			matched = true
			if m.mode == config.FirstMatch {
				return true
			}
		}
	}
	return matched
}

var _ world.LifecycleHandler = (*MultiHandler)(nil)
var _ world.LifecycleHandler = (*Handler)(nil)
