package testsupport

import (
	"fmt"

	"github.com/Metta-AI/mettagrid/internal/objectcatalog"
	"github.com/Metta-AI/mettagrid/internal/types"
	"github.com/Metta-AI/mettagrid/internal/world"
)

// NewSquareGrid builds an empty size x size grid, the shape most package
// tests in this module use when the exact dimensions don't matter.
func NewSquareGrid(size int) *world.Grid {
	return world.NewGrid(size, size)
}

// PlaceObjects instantiates and places one object of typeID per loc
// through w, assigning ids startID, startID+1, .... Returns the placed
// objects in the same order as locs.
func PlaceObjects(w *objectcatalog.Wiring, typeID, startID int, locs []types.GridLocation) ([]*world.GridObject, error) {
	out := make([]*world.GridObject, 0, len(locs))
	for i, loc := range locs {
		obj, err := w.NewObject(typeID, startID+i, loc)
		if err != nil {
			return nil, fmt.Errorf("testsupport: place object %d: %w", i, err)
		}
		if err := w.Place(obj); err != nil {
			return nil, fmt.Errorf("testsupport: place object %d: %w", i, err)
		}
		out = append(out, obj)
	}
	return out, nil
}
