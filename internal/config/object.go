package config

import "github.com/Metta-AI/mettagrid/internal/types"

// ObjectConfig describes one object type in the catalog: its default
// on_use handler, its AOE sources, and its tag lifecycle handlers
// (spec.md §4.2). A concrete GridObject is instantiated from this template
// by the object factory (internal/objectcatalog), one per map cell.
type ObjectConfig struct {
	TypeID       int
	TypeName     string
	InitialTags  []int
	InventoryCfg types.InventoryConfig

	OnUse *MultiHandlerConfig
	AOEs  []AOESourceConfig

	TagOnAdd    map[int][]HandlerConfig
	TagOnRemove map[int][]HandlerConfig

	// IsAgent marks this catalog entry as producing an Agent-bearing
	// GridObject rather than a passive object.
	IsAgent bool
	Group   int
}

// ActionConfig describes one entry in the action catalog: its dispatch
// priority and the handler that runs when an agent selects it.
type ActionConfig struct {
	ID       int
	Name     string
	Priority int
	Handler  MultiHandlerConfig
}

// CollectiveConfig names a collective and its inventory limits.
type CollectiveConfig struct {
	Name         string
	InventoryCfg types.InventoryConfig
}

// RewardEntryConfig is one (numerator, denominators, weight, ...) reward
// term (spec.md §4.8).
type RewardEntryConfig struct {
	Numerator    GameValueConfig
	Denominators []GameValueConfig
	Weight       float64
	MaxValue     *float64
	Accumulate   bool
}

// GlobalObsValueConfig is one entry in global_obs.obs: a GameValueConfig
// encoded as one or more multi-token-base tokens (spec.md §4.9).
type GlobalObsValueConfig struct {
	FeatureID int
	Value     GameValueConfig
	// TokenBase is the base used to split Value's resolved reading into
	// one or more bytes; 0 defaults to the config's TokenBase.
	TokenBase int
}

// GlobalObsConfig configures the dedicated global-location token and the
// per-agent obs-value tokens that follow it (spec.md §4.9).
type GlobalObsConfig struct {
	Obs                []GlobalObsValueConfig
	EmitLocalPosition  bool
	EmitGoalTokens     bool
	EpisodeCompletionFeatureID int
	LastActionFeatureID        int
	LastActionMovedFeatureID   int
	LastRewardFeatureID        int
	PositionDeltaFeatureIDs    [4]int // east, west, north, south
}
