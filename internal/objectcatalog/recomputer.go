package objectcatalog

import "github.com/Metta-AI/mettagrid/internal/world"

// recomputerCell breaks the construction-order cycle between
// mutation.Deps (which needs a world.Recomputer) and query.System
// (which needs a fully-built mutation.Deps to register its own
// QueryTagConfigs): every mutation built during wiring holds this cell
// rather than the System directly, and Wiring.set fills in the real
// System once it exists.
type recomputerCell struct {
	target world.Recomputer
}

func (c *recomputerCell) Recompute(tag int) {
	if c == nil || c.target == nil {
		return
	}
	c.target.Recompute(tag)
}

var _ world.Recomputer = (*recomputerCell)(nil)
