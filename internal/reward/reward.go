// Package reward implements the per-agent RewardHelper of spec.md §4.8:
// a list of (numerator, denominators, weight, max_value?, accumulate)
// entries resolved once at setup against internal/gamevalue, then
// evaluated every tick to produce one scalar contribution per agent.
package reward

import (
	"fmt"

	"github.com/Metta-AI/mettagrid/internal/config"
	"github.com/Metta-AI/mettagrid/internal/gamevalue"
	"github.com/Metta-AI/mettagrid/internal/world"
)

// ctxCell holds the context a ResolvedGameValue's read callback closes
// over; Apply points it at the agent currently being evaluated before
// calling Read, the same seam internal/filter and internal/mutation use
// for GameValue resolution.
type ctxCell struct {
	current *world.Context
}

func (c *ctxCell) get() *world.Context { return c.current }

type resolvedEntry struct {
	numerator    gamevalue.ResolvedGameValue
	denominators []gamevalue.ResolvedGameValue
	weight       float64
	maxValue     *float64
	accumulate   bool
	prevValue    map[int]float64 // keyed by agent GridObject.ID
	lastValue    float64
}

// Helper resolves a reward entry list once and evaluates it per tick.
type Helper struct {
	cell    *ctxCell
	entries []resolvedEntry
}

// NewHelper resolves every entry's numerator and denominators against
// tagIndex/deps.
func NewHelper(cfgs []config.RewardEntryConfig, tagIndex *world.TagIndex, deps gamevalue.Deps) (*Helper, error) {
	cell := &ctxCell{}
	entries := make([]resolvedEntry, 0, len(cfgs))
	for i, cfg := range cfgs {
		num, err := gamevalue.Resolve(cfg.Numerator, cell.get, tagIndex, deps)
		if err != nil {
			return nil, fmt.Errorf("reward: entry %d numerator: %w", i, err)
		}
		denoms := make([]gamevalue.ResolvedGameValue, len(cfg.Denominators))
		for j, d := range cfg.Denominators {
			rv, err := gamevalue.Resolve(d, cell.get, tagIndex, deps)
			if err != nil {
				return nil, fmt.Errorf("reward: entry %d denominator %d: %w", i, j, err)
			}
			denoms[j] = rv
		}
		entries = append(entries, resolvedEntry{
			numerator:    num,
			denominators: denoms,
			weight:       cfg.Weight,
			maxValue:     cfg.MaxValue,
			accumulate:   cfg.Accumulate,
		})
	}
	return &Helper{cell: cell, entries: entries}, nil
}

// Apply evaluates every entry for agent (spec.md §4.8 steps 1-5),
// crediting the result to the agent's reward slot and episode-rewards
// slot, and returns the total contribution.
func (h *Helper) Apply(ctx *world.Context, agent *world.GridObject) float64 {
	h.cell.current = ctx.WithTarget(agent)
	var total float64
	for i := range h.entries {
		e := &h.entries[i]
		value := e.numerator.Read() * e.weight
		for _, d := range e.denominators {
			if dv := d.Read(); dv > 0 {
				value /= dv
			}
		}
		if e.maxValue != nil && value > *e.maxValue {
			value = *e.maxValue
		}
		var contribution float64
		if e.accumulate {
			contribution = value
		} else {
			contribution = value - e.prevValue[agent.ID]
		}
		if e.prevValue == nil {
			e.prevValue = make(map[int]float64)
		}
		e.prevValue[agent.ID] = value
		e.lastValue = value
		total += contribution
	}
	if agent.Agent != nil {
		if agent.Agent.RewardSlot != nil {
			*agent.Agent.RewardSlot += total
		}
		if agent.Agent.EpisodeRewardSlot != nil {
			*agent.Agent.EpisodeRewardSlot += total
		}
	}
	return total
}

// LastValues returns the most recently resolved per-entry value (the
// clamped numerator/denominator ratio, before the accumulate/delta
// split) in entry order, for consumers that need a per-goal reading
// rather than the summed contribution — the observation encoder's goal
// tokens (spec.md §4.9).
func (h *Helper) LastValues() []float64 {
	out := make([]float64, len(h.entries))
	for i := range h.entries {
		out[i] = h.entries[i].lastValue
	}
	return out
}
