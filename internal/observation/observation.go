// Package observation implements the per-agent token encoder of
// spec.md §4.9: a dedicated global-location marker, a run of per-agent
// global_obs.obs entries, then spatial tokens visiting the observation
// window in ascending Manhattan distance. Two encoders share the same
// token-emission logic (observation.go, global.go, spatial.go) but differ in
// how they compute the spatial traversal order: Reference recomputes it
// every call, Optimized caches it per window size. Shadow validates the
// two against each other.
package observation

import (
	"fmt"

	"github.com/Metta-AI/mettagrid/internal/aoe"
	"github.com/Metta-AI/mettagrid/internal/config"
	"github.com/Metta-AI/mettagrid/internal/gamevalue"
	"github.com/Metta-AI/mettagrid/internal/reward"
	"github.com/Metta-AI/mettagrid/internal/types"
	"github.com/Metta-AI/mettagrid/internal/world"
)

// Token is a single emitted observation entry: a packed cell location (or
// types.GlobalToken for agent-scope data), a feature id, and a value
// byte.
type Token struct {
	Loc       types.PackedCoord
	FeatureID byte
	Value     byte
}

const emptySlot = types.EmptySlot
const globalLoc = types.GlobalToken

// Deps bundles what building an encoder needs beyond the game config.
type Deps struct {
	Grid     *world.Grid
	AOE      *aoe.Tracker
	TagIndex *world.TagIndex
	GameValueDeps gamevalue.Deps

	// RewardHelper, if set, supplies per-entry readings for goal tokens
	// (GlobalObsConfig.EmitGoalTokens). Optional.
	RewardHelper *reward.Helper
}

// ctxCell lets a resolved global_obs.obs value's Read() closure see the
// agent currently being encoded, the same seam internal/reward uses.
type ctxCell struct {
	current *world.Context
}

func (c *ctxCell) get() *world.Context { return c.current }

type obsValueEntry struct {
	featureID byte
	tokenBase int
	value     gamevalue.ResolvedGameValue
}

// core holds the state both encoders share: the resolved global_obs.obs
// entries and the config fields neither traversal strategy needs to
// duplicate.
type core struct {
	cfg  config.GameConfig
	deps Deps
	cell *ctxCell

	globalValues []obsValueEntry
}

// validateWindow enforces spec.md §7 error taxonomy item 1: obs_width and
// obs_height must both fit PackedCoord's 4-bit nibble range.
func validateWindow(width, height int) error {
	if width < 1 || width > types.MaxPackedDimension || height < 1 || height > types.MaxPackedDimension {
		return fmt.Errorf("observation: obs dimensions %dx%d outside [1,%d]", width, height, types.MaxPackedDimension)
	}
	return nil
}

func newCore(cfg config.GameConfig, deps Deps) (*core, error) {
	if err := validateWindow(cfg.ObsWidth, cfg.ObsHeight); err != nil {
		return nil, err
	}
	if cfg.NumObservationTokens <= 0 {
		return nil, fmt.Errorf("observation: num_observation_tokens must be positive, got %d", cfg.NumObservationTokens)
	}
	cell := &ctxCell{}
	c := &core{cfg: cfg, deps: deps, cell: cell}
	for _, ov := range cfg.GlobalObs.Obs {
		rv, err := gamevalue.Resolve(ov.Value, cell.get, deps.TagIndex, deps.GameValueDeps)
		if err != nil {
			return nil, err
		}
		base := ov.TokenBase
		if base == 0 {
			base = cfg.TokenBase
		}
		if base == 0 {
			base = 256
		}
		c.globalValues = append(c.globalValues, obsValueEntry{featureID: byte(ov.FeatureID), tokenBase: base, value: rv})
	}
	return c, nil
}

func (c *core) tokenBase() int {
	if c.cfg.TokenBase > 0 {
		return c.cfg.TokenBase
	}
	return 256
}

// encode runs the full token-emission pipeline for one agent into buf
// (pre-sized to cfg.NumObservationTokens), using offs as the spatial
// traversal order. Shared by both the reference and optimized encoders,
// which differ only in how offs is produced.
func (c *core) encode(ctx *world.Context, agent *world.GridObject, buf []Token, offs []offset) Stats {
	w := newWriter(buf)
	var goalValues []float64
	if c.deps.RewardHelper != nil {
		goalValues = c.deps.RewardHelper.LastValues()
	}
	c.emitGlobal(w, ctx, agent, goalValues)
	c.emitSpatial(w, agent, offs)
	return w.stats()
}
