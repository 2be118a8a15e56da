package world

import "github.com/Metta-AI/mettagrid/internal/types"

// Agent holds the fields specific to agent-controlled GridObjects: dense
// index, group, freeze counter, reward plumbing, per-agent stats, and the
// bookkeeping the observation encoder needs (previous location, last
// action outcome).
type Agent struct {
	AgentID       int
	Group         int
	Frozen        int
	SpawnLocation types.GridLocation

	// RewardSlot points into the engine's per-tick rewards output buffer.
	RewardSlot *float64
	// EpisodeRewardSlot points into the engine's episode_rewards buffer.
	EpisodeRewardSlot *float64

	OnTick []LifecycleHandler
	Stats  *types.StatsTracker

	// RoleID is the hard role assignment; RoleWeights are soft per-role
	// weights, both referenceable from reward configuration (spec.md §3).
	RoleID      int
	RoleWeights []float64

	PrevLocation    types.GridLocation
	LastAction      int
	LastActionMoved bool
	ActionSuccess   bool
	LastRewardPct   int
}

// IsFrozen reports whether the agent's freeze counter is still active.
func (a *Agent) IsFrozen() bool {
	return a != nil && a.Frozen > 0
}
