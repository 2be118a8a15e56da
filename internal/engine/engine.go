// Package engine ties every other internal package together into the
// tick pipeline of spec.md §4.10: one Engine owns the grid, the compiled
// wiring, and the per-agent output buffers (observations, rewards,
// episode_rewards, action_success) that a caller reads after each Step.
package engine

import (
	"fmt"
	"math/rand"

	"github.com/Metta-AI/mettagrid/internal/config"
	"github.com/Metta-AI/mettagrid/internal/enginelog"
	"github.com/Metta-AI/mettagrid/internal/objectcatalog"
	"github.com/Metta-AI/mettagrid/internal/observation"
	"github.com/Metta-AI/mettagrid/internal/world"
)

// Encoder is the subset of observation.ReferenceEncoder/OptimizedEncoder/
// ShadowEncoder the engine drives; it holds one through this interface so
// the choice of which concrete encoder to build lives entirely in
// buildEncoder.
type Encoder interface {
	Encode(ctx *world.Context, agent *world.GridObject) ([]observation.Token, observation.Stats)
}

// Engine runs the tick pipeline against an already-built grid (objects and
// agents placed, wiring compiled) and owns the buffers exposed to a
// caller: Observations, Rewards, EpisodeRewards, ActionSuccess.
type Engine struct {
	cfg    config.GameConfig
	grid   *world.Grid
	wiring *objectcatalog.Wiring
	agents []*world.GridObject
	rng    *rand.Rand
	logger *enginelog.Router
	opts   EngineOptions
	enc    Encoder

	tick       int
	truncated  bool
	terminated bool

	rewards        []float64
	episodeRewards []float64
	observations   [][]observation.Token
	obsStats       []observation.Stats
	actionSuccess  []bool

	// actionIndexByID maps an action catalog id to its index in
	// wiring.Actions, resolved once at construction (spec.md §4.1's
	// dense-id pattern) rather than rebuilt every Step.
	actionIndexByID map[int]int
}

// New compiles cfg against grid and returns an Engine with its wiring
// built but no agents registered yet. Object/map construction stays the
// external collaborator's job (spec.md §1): the caller uses Wiring() to
// instantiate and place every object (agents included) with
// Wiring.NewObject/Wiring.Place, then calls RegisterAgents once
// before the first Step. cfg is checked with GameConfig.Validate first.
func New(cfg config.GameConfig, grid *world.Grid, router *enginelog.Router, opts EngineOptions) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	e := &Engine{
		cfg:    cfg,
		grid:   grid,
		logger: router,
		opts:   opts,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
	}

	wiring, err := objectcatalog.NewWiring(cfg, grid, e.buildContext, router)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	e.wiring = wiring
	e.actionIndexByID = make(map[int]int, len(wiring.Actions))
	for i, a := range wiring.Actions {
		e.actionIndexByID[a.ID] = i
	}

	enc, err := e.buildEncoder()
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	e.enc = enc

	return e, nil
}

// Wiring exposes the compiled object/handler/query catalog so a caller
// can instantiate and place objects (including agents) before the
// episode starts.
func (e *Engine) Wiring() *objectcatalog.Wiring { return e.wiring }

// RegisterAgents finalizes the engine's per-agent output buffers against
// agents, the stable order Step's actions slice is indexed by. Every
// entry must already be placed on the grid with a non-nil Agent. Must be
// called exactly once, after every agent has been placed and before the
// first Step.
func (e *Engine) RegisterAgents(agents []*world.GridObject) error {
	if len(agents) == 0 {
		return fmt.Errorf("engine: at least one agent is required")
	}
	rewards := make([]float64, len(agents))
	episodeRewards := make([]float64, len(agents))
	for i, a := range agents {
		if a.Agent == nil {
			return fmt.Errorf("engine: agent slot %d has no Agent state", i)
		}
		a.Agent.AgentID = i
		a.Agent.RewardSlot = &rewards[i]
		a.Agent.EpisodeRewardSlot = &episodeRewards[i]
	}
	e.agents = agents
	e.rewards = rewards
	e.episodeRewards = episodeRewards
	e.observations = make([][]observation.Token, len(agents))
	e.obsStats = make([]observation.Stats, len(agents))
	e.actionSuccess = make([]bool, len(agents))
	return nil
}

func (e *Engine) buildEncoder() (Encoder, error) {
	deps := e.wiring.ObservationDeps()
	if e.opts.ObsValidation {
		return observation.NewShadowEncoder(e.cfg, deps, e.logger, e.opts.ObsUseOptimized)
	}
	if e.opts.ObsUseOptimized {
		return observation.NewOptimizedEncoder(e.cfg, deps)
	}
	return observation.NewReferenceEncoder(e.cfg, deps)
}

// buildContext returns the *world.Context describing the engine's current
// mutable state, with Actor/Target left unset. Passed to
// objectcatalog.NewWiring as the query system's recompute-time context
// factory, and reused as the base for every per-tick dispatch.
func (e *Engine) buildContext() *world.Context {
	return &world.Context{
		Grid:          e.grid,
		TagIndex:      e.wiring.TagIndex,
		Recomputer:    e.wiring.QuerySystem,
		Collectives:   e.wiring.Collectives,
		CollectiveIDs: e.wiring.CollectiveIDs,
		Rand:          e.rng,
		Tick:          e.tick,
	}
}

// Tick returns the current step counter (0 before the first Step call).
func (e *Engine) Tick() int { return e.tick }

// Truncated reports whether the episode has hit its step limit.
func (e *Engine) Truncated() bool { return e.truncated }

// Terminated reports whether the episode ended for a reason other than
// truncation. No termination condition is wired in this engine: episodes
// only end by truncation against MaxSteps.
func (e *Engine) Terminated() bool { return e.terminated }

// Observations returns the most recently encoded token buffer for every
// agent, indexed the same way as the agents slice passed to RegisterAgents.
func (e *Engine) Observations() [][]observation.Token { return e.observations }

// ObservationStats returns the most recent encoder Stats per agent, for
// callers that want to surface tokens_written/tokens_dropped/
// tokens_free_space (spec.md §8 invariant 4).
func (e *Engine) ObservationStats() []observation.Stats { return e.obsStats }

// Rewards returns this tick's per-agent reward.
func (e *Engine) Rewards() []float64 { return e.rewards }

// EpisodeRewards returns the running per-agent episode total.
func (e *Engine) EpisodeRewards() []float64 { return e.episodeRewards }

// ActionSuccess returns whether each agent's chosen action applied
// successfully this tick.
func (e *Engine) ActionSuccess() []bool { return e.actionSuccess }
