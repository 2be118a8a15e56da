package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/Metta-AI/mettagrid/internal/enginelog"
	"github.com/Metta-AI/mettagrid/internal/world"
)

// Step runs one full tick of spec.md §4.10 against actions, indexed the
// same way as the agents slice passed to RegisterAgents. It returns an error only
// for a caller mistake (wrong actions length); every other failure mode
// (an unknown action id, which also adds 1 to the agent's
// "agent.invalid_action" stat, or a blocked move) degrades to action_success=false
// for that agent rather than aborting the tick.
func (e *Engine) Step(actions []int) error {
	if len(actions) != len(e.agents) {
		return fmt.Errorf("engine: expected %d actions, got %d", len(e.agents), len(actions))
	}

	e.phase("save_prev_location", func() {
		for _, a := range e.agents {
			a.Agent.PrevLocation = a.Location
		}
	})

	e.phase("reset_buffers", func() {
		for i := range e.rewards {
			e.rewards[i] = 0
			e.actionSuccess[i] = false
		}
	})

	ctx := e.buildContext()

	e.tick++
	ctx.Tick = e.tick
	e.phase("event_scheduler", func() {
		e.wiring.Events.Dispatch(e.tick, ctx)
	})

	e.phase("action_dispatch", func() {
		e.dispatchActions(ctx, actions)
	})

	e.phase("on_tick_hooks", func() {
		for _, a := range e.agents {
			for _, h := range a.Agent.OnTick {
				h.TryApply(ctx.WithActorTarget(a, a))
			}
		}
	})

	e.phase("aoe_fixed", func() {
		e.wiring.AOE.ApplyFixed(ctx, e.agents)
	})
	e.phase("aoe_mobile", func() {
		e.wiring.AOE.ApplyMobile(ctx, e.agents)
	})

	e.phase("collective_housekeeping", func() {
		e.wiring.QuerySystem.ComputeAll()
	})

	e.phase("observation_encoding", func() {
		for i, a := range e.agents {
			buf, stats := e.enc.Encode(ctx, a)
			e.observations[i] = buf
			e.obsStats[i] = stats
		}
	})

	e.phase("reward_evaluation", func() {
		// RewardHelper.Apply writes directly into the agent's RewardSlot
		// and EpisodeRewardSlot, which RegisterAgents aliased to e.rewards[i] and
		// e.episodeRewards[i] — no separate accumulation needed here.
		for i, a := range e.agents {
			e.wiring.RewardHelper.Apply(ctx, a)
			a.Agent.LastRewardPct = int(e.rewards[i] * 100)
		}
	})

	e.phase("truncation_check", func() {
		if e.cfg.EpisodeTruncates && e.cfg.MaxSteps > 0 && e.tick >= e.cfg.MaxSteps {
			e.truncated = true
		}
	})

	return nil
}

// dispatchActions runs every agent's chosen action in ascending priority
// order, shuffling within a priority tier so simultaneous same-tier
// actions (e.g. two agents both moving into the same cell) don't always
// resolve in agent-id order (spec.md §8 scenario 6: deterministic given a
// seed, not favoring low ids).
func (e *Engine) dispatchActions(ctx *world.Context, actions []int) {
	tiers := make(map[int][]int) // priority -> agent indices
	for i, actionID := range actions {
		idx, ok := e.actionIndexByID[actionID]
		if !ok {
			if st := e.agents[i].Agent.Stats; st != nil {
				st.Add("agent.invalid_action", 1)
			}
			continue
		}
		tiers[e.wiring.Actions[idx].Priority] = append(tiers[e.wiring.Actions[idx].Priority], i)
	}
	priorities := make([]int, 0, len(tiers))
	for p := range tiers {
		priorities = append(priorities, p)
	}
	sort.Ints(priorities)

	for _, p := range priorities {
		group := tiers[p]
		e.rng.Shuffle(len(group), func(i, j int) { group[i], group[j] = group[j], group[i] })
		for _, agentIdx := range group {
			e.dispatchOne(ctx, agentIdx, actions[agentIdx])
		}
	}
}

func (e *Engine) dispatchOne(ctx *world.Context, agentIdx, actionID int) {
	agent := e.agents[agentIdx]
	idx := e.actionIndexByID[actionID]
	action := e.wiring.Actions[idx]

	moved := e.tryMove(agent, action.Name)
	applyCtx := ctx.WithActorTarget(agent, agent)
	handled := action.Handler.TryApply(applyCtx)

	agent.Agent.LastAction = actionID
	agent.Agent.LastActionMoved = moved
	agent.Agent.ActionSuccess = moved || handled
	e.actionSuccess[agentIdx] = agent.Agent.ActionSuccess
}

func (e *Engine) phase(name string, fn func()) {
	if !e.opts.Profiling || e.logger == nil {
		fn()
		return
	}
	start := time.Now()
	fn()
	e.logger.Publish(enginelog.Event{
		Tick:     e.tick,
		Time:     start,
		Severity: enginelog.SeverityDebug,
		Category: enginelog.CategoryProfiling,
		Message:  name,
		Fields:   map[string]any{"duration_ns": time.Since(start).Nanoseconds()},
	})
}
