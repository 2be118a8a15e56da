package world

import (
	"sort"

	"github.com/Metta-AI/mettagrid/internal/types"
)

// Collective is a named group of GridObjects sharing stats and inventory,
// used by Alignment filters/mutations for team tests (spec.md §3).
type Collective struct {
	ID        int
	Name      string
	Stats     *types.StatsTracker
	Inventory *types.Inventory
}

// AssignCollectiveIDs assigns ids to collectives in sorted order of their
// configured names so ids stay stable across runs given the same
// configuration (spec.md §3).
func AssignCollectiveIDs(names []string, invCfg *types.InventoryConfig) map[string]*Collective {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	out := make(map[string]*Collective, len(sorted))
	for i, name := range sorted {
		out[name] = &Collective{
			ID:        i,
			Name:      name,
			Stats:     types.NewStatsTracker(),
			Inventory: types.NewInventory(invCfg),
		}
	}
	return out
}

// SameCollective reports whether both objects have a non-nil collective and
// it is the same one.
func SameCollective(a, b *GridObject) bool {
	if a == nil || b == nil || a.Collective == nil || b.Collective == nil {
		return false
	}
	return a.Collective.ID == b.Collective.ID
}
