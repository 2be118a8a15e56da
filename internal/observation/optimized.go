package observation

import (
	"github.com/Metta-AI/mettagrid/internal/config"
	"github.com/Metta-AI/mettagrid/internal/world"
)

// OptimizedEncoder caches the spatial traversal order once at
// construction instead of recomputing it on every Encode call, since it
// depends only on the window's fixed dimensions. Its output must match
// ReferenceEncoder exactly; ShadowEncoder verifies that at runtime.
type OptimizedEncoder struct {
	core   *core
	tokens int
	offs   []offset
}

// NewOptimizedEncoder builds an OptimizedEncoder from cfg.
func NewOptimizedEncoder(cfg config.GameConfig, deps Deps) (*OptimizedEncoder, error) {
	c, err := newCore(cfg, deps)
	if err != nil {
		return nil, err
	}
	return &OptimizedEncoder{
		core:   c,
		tokens: cfg.NumObservationTokens,
		offs:   computeOffsets(cfg.ObsWidth, cfg.ObsHeight),
	}, nil
}

// Encode writes agent's observation into a freshly allocated buffer.
func (e *OptimizedEncoder) Encode(ctx *world.Context, agent *world.GridObject) ([]Token, Stats) {
	buf := make([]Token, e.tokens)
	stats := e.core.encode(ctx, agent, buf, e.offs)
	return buf, stats
}
