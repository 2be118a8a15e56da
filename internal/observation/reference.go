package observation

import (
	"github.com/Metta-AI/mettagrid/internal/config"
	"github.com/Metta-AI/mettagrid/internal/world"
)

// ReferenceEncoder recomputes the spatial traversal order on every call.
// It exists as the straightforward, obviously-correct implementation
// OptimizedEncoder is checked against (spec.md §4.9: "two implementations
// ... must be byte-identical").
type ReferenceEncoder struct {
	core  *core
	width, height, tokens int
}

// NewReferenceEncoder builds a ReferenceEncoder from cfg.
func NewReferenceEncoder(cfg config.GameConfig, deps Deps) (*ReferenceEncoder, error) {
	c, err := newCore(cfg, deps)
	if err != nil {
		return nil, err
	}
	return &ReferenceEncoder{core: c, width: cfg.ObsWidth, height: cfg.ObsHeight, tokens: cfg.NumObservationTokens}, nil
}

// Encode writes agent's observation into a freshly allocated buffer.
func (e *ReferenceEncoder) Encode(ctx *world.Context, agent *world.GridObject) ([]Token, Stats) {
	buf := make([]Token, e.tokens)
	offs := computeOffsets(e.width, e.height)
	stats := e.core.encode(ctx, agent, buf, offs)
	return buf, stats
}
