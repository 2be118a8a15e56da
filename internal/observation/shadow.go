package observation

import (
	"bytes"

	"github.com/Metta-AI/mettagrid/internal/config"
	"github.com/Metta-AI/mettagrid/internal/enginelog"
	"github.com/Metta-AI/mettagrid/internal/world"
)

// ShadowEncoder runs both encoders every call and logs a mismatch rather
// than trusting the optimized path blindly (METTAGRID_OBS_VALIDATION,
// spec.md §4.9). The engine only constructs one of these when that flag
// is set; otherwise it talks to OptimizedEncoder or ReferenceEncoder
// directly.
type ShadowEncoder struct {
	reference *ReferenceEncoder
	optimized *OptimizedEncoder
	router    *enginelog.Router
	// primaryOptimized selects which buffer is returned to the caller;
	// set false by METTAGRID_OBS_USE_OPTIMIZED=0.
	primaryOptimized bool
}

// NewShadowEncoder builds both underlying encoders from the same config.
func NewShadowEncoder(cfg config.GameConfig, deps Deps, router *enginelog.Router, primaryOptimized bool) (*ShadowEncoder, error) {
	ref, err := NewReferenceEncoder(cfg, deps)
	if err != nil {
		return nil, err
	}
	opt, err := NewOptimizedEncoder(cfg, deps)
	if err != nil {
		return nil, err
	}
	return &ShadowEncoder{reference: ref, optimized: opt, router: router, primaryOptimized: primaryOptimized}, nil
}

// Encode runs both encoders, logs a CategoryObservation error event on
// any byte-level mismatch, and returns the configured primary's buffer.
func (e *ShadowEncoder) Encode(ctx *world.Context, agent *world.GridObject) ([]Token, Stats) {
	refBuf, refStats := e.reference.Encode(ctx, agent)
	optBuf, optStats := e.optimized.Encode(ctx, agent)

	if !tokensEqual(refBuf, optBuf) || refStats != optStats {
		if e.router != nil {
			e.router.Publish(enginelog.Event{
				Tick:     ctx.Tick,
				Severity: enginelog.SeverityError,
				Category: enginelog.CategoryObservation,
				Message:  "reference/optimized observation encoders disagree",
				TargetID: agent.ID,
			})
		}
	}

	if e.primaryOptimized {
		return optBuf, optStats
	}
	return refBuf, refStats
}

func tokensEqual(a, b []Token) bool {
	if len(a) != len(b) {
		return false
	}
	ab := make([]byte, 0, len(a)*3)
	bb := make([]byte, 0, len(b)*3)
	for i := range a {
		ab = append(ab, byte(a[i].Loc), a[i].FeatureID, a[i].Value)
		bb = append(bb, byte(b[i].Loc), b[i].FeatureID, b[i].Value)
	}
	return bytes.Equal(ab, bb)
}
