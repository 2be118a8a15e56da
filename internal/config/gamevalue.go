package config

// GameValueKind identifies which GameValueConfig variant is populated.
type GameValueKind string

const (
	GameValueInventory     GameValueKind = "inventory"
	GameValueStat          GameValueKind = "stat"
	GameValueTagCount      GameValueKind = "tag_count"
	GameValueConst         GameValueKind = "const"
	GameValueQueryInventory GameValueKind = "query_inventory"
)

// GameValueConfig is a tagged union over spec.md §4.7's typed value
// references.
type GameValueConfig struct {
	Kind GameValueKind

	// Inventory
	Scope      StatsScope // AGENT or COLLECTIVE
	ResourceID int

	// Stat
	StatName string
	Delta    bool

	// TagCount
	TagID int

	// Const
	Const float64

	// QueryInventory
	Query          QueryConfig
	QueryResourceID int
}
