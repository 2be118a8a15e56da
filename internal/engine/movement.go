package engine

import (
	"github.com/Metta-AI/mettagrid/internal/types"
	"github.com/Metta-AI/mettagrid/internal/world"
)

// moveDeltas maps an action's catalog name to the single-cell
// displacement it applies directly against the grid. The mutation
// algebra (internal/mutation) has no "relocate" kind — resource/stat/tag
// mutations never need a grid-position argument — so movement is
// special-cased here rather than forced into that algebra; an action's
// handler (filters + any non-movement mutations) still runs afterward
// for actions that also carry one (e.g. a "step on resource" pickup).
var moveDeltas = map[string]types.GridLocation{
	"move_north": {R: ^types.GridCoord(0), C: 0},
	"move_south": {R: 1, C: 0},
	"move_east":  {R: 0, C: 1},
	"move_west":  {R: 0, C: ^types.GridCoord(0)},
}

// tryMove applies obj's movement delta for actionName, if any, and
// reports whether the object actually relocated (false for an
// out-of-bounds or occupied destination, or an action with no movement
// component).
func (e *Engine) tryMove(obj *world.GridObject, actionName string) bool {
	delta, ok := moveDeltas[actionName]
	if !ok {
		return false
	}
	dest := types.GridLocation{R: obj.Location.R + delta.R, C: obj.Location.C + delta.C}
	if !e.grid.InBounds(dest) {
		return false
	}
	if err := e.grid.MoveObject(obj.ID, dest); err != nil {
		return false
	}
	return true
}
