package config

// MutationKind identifies which MutationConfig variant is populated.
type MutationKind string

const (
	MutationResourceDelta     MutationKind = "resource_delta"
	MutationResourceTransfer  MutationKind = "resource_transfer"
	MutationAlignment         MutationKind = "alignment"
	MutationFreeze            MutationKind = "freeze"
	MutationClearInventory    MutationKind = "clear_inventory"
	MutationAttack            MutationKind = "attack"
	MutationStats             MutationKind = "stats"
	MutationAddTag            MutationKind = "add_tag"
	MutationRemoveTag         MutationKind = "remove_tag"
	MutationRemoveTagsPrefix  MutationKind = "remove_tags_with_prefix"
	MutationGameValue         MutationKind = "game_value"
	MutationRecomputeQuery    MutationKind = "recompute_materialized_query"
	MutationQueryInventory    MutationKind = "query_inventory"
)

// StatsScope identifies which stats tracker a Stats mutation/game value
// targets.
type StatsScope string

const (
	ScopeGame       StatsScope = "game"
	ScopeAgent      StatsScope = "agent"
	ScopeCollective StatsScope = "collective"
)

// MutationConfig is a tagged union over every mutation variant in
// spec.md §4.3.
type MutationConfig struct {
	Kind MutationKind

	// ResourceDelta
	ResourceID int
	Delta      int

	// ResourceTransfer
	Amount           int
	RemoveIfEmpty    bool
	Strict           bool

	// Alignment
	Alignment      AlignmentMode
	CollectiveName string

	// Freeze
	FreezeTicks int

	// ClearInventory
	ResourceIDs []int // empty means "all"

	// Attack
	WeaponResourceID int
	WeaponAmount     int
	ArmorResourceID  int
	HealthResourceID int
	DamagePercent    int

	// Stats
	StatsScope StatsScope
	StatName   string
	StatDelta  float64

	// AddTag / RemoveTag
	TagID int

	// RemoveTagsWithPrefix
	PrefixMask []int

	// GameValue mutation: read Source, write the delta into Target.
	Source GameValueConfig
	Target GameValueConfig

	// RecomputeMaterializedQuery
	QueryTagID int

	// QueryInventory
	Query          QueryConfig
	FixedDeltas    map[int]int // resource id -> delta, added to each result
	TransferFrom   bool        // if true, transfer from a single source entity to each result instead
	TransferAmount int
}
