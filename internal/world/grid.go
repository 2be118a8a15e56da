package world

import (
	"fmt"

	"github.com/Metta-AI/mettagrid/internal/types"
)

// Grid is a dense height x width array of at most one GridObject per cell,
// backed by an id -> pointer table (spec.md §3). Grid never panics on
// caller-supplied out-of-range coordinates; placing an object onto an
// occupied cell is refused with an error returned to the caller.
type Grid struct {
	width, height int
	cells         [][]int // -1 = empty, else object id
	objects       map[int]*GridObject
}

// NewGrid constructs an empty grid of the given dimensions.
func NewGrid(width, height int) *Grid {
	cells := make([][]int, height)
	for r := range cells {
		row := make([]int, width)
		for c := range row {
			row[c] = -1
		}
		cells[r] = row
	}
	return &Grid{width: width, height: height, cells: cells, objects: make(map[int]*GridObject)}
}

// Width returns the grid width.
func (g *Grid) Width() int { return g.width }

// Height returns the grid height.
func (g *Grid) Height() int { return g.height }

// InBounds reports whether loc addresses a real cell.
func (g *Grid) InBounds(loc types.GridLocation) bool {
	return g != nil && int(loc.R) < g.height && int(loc.C) < g.width
}

// AddObject places obj at its Location. Returns an error if the cell is
// already occupied (spec.md §4.2: "attempting to place on an occupied cell
// is an error, signalled to the caller, never silently overwritten").
func (g *Grid) AddObject(obj *GridObject) error {
	if g == nil || obj == nil {
		return fmt.Errorf("grid: cannot add nil object")
	}
	if !g.InBounds(obj.Location) {
		return fmt.Errorf("grid: location %+v out of bounds", obj.Location)
	}
	if g.cells[obj.Location.R][obj.Location.C] != -1 {
		return fmt.Errorf("grid: cell %+v already occupied", obj.Location)
	}
	g.cells[obj.Location.R][obj.Location.C] = obj.ID
	g.objects[obj.ID] = obj
	return nil
}

// MoveObject relocates the object identified by id to newLoc.
func (g *Grid) MoveObject(id int, newLoc types.GridLocation) error {
	if g == nil {
		return fmt.Errorf("grid: nil grid")
	}
	obj, ok := g.objects[id]
	if !ok {
		return fmt.Errorf("grid: unknown object id %d", id)
	}
	if !g.InBounds(newLoc) {
		return fmt.Errorf("grid: location %+v out of bounds", newLoc)
	}
	if g.cells[newLoc.R][newLoc.C] != -1 {
		return fmt.Errorf("grid: cell %+v already occupied", newLoc)
	}
	g.cells[obj.Location.R][obj.Location.C] = -1
	obj.Location = newLoc
	g.cells[newLoc.R][newLoc.C] = id
	return nil
}

// RemoveFromGrid removes the object identified by id from its cell and the
// object table.
func (g *Grid) RemoveFromGrid(id int) {
	if g == nil {
		return
	}
	obj, ok := g.objects[id]
	if !ok {
		return
	}
	if g.InBounds(obj.Location) && g.cells[obj.Location.R][obj.Location.C] == id {
		g.cells[obj.Location.R][obj.Location.C] = -1
	}
	delete(g.objects, id)
}

// ObjectAt returns the object occupying loc, if any.
func (g *Grid) ObjectAt(loc types.GridLocation) (*GridObject, bool) {
	if g == nil || !g.InBounds(loc) {
		return nil, false
	}
	id := g.cells[loc.R][loc.C]
	if id == -1 {
		return nil, false
	}
	obj, ok := g.objects[id]
	return obj, ok
}

// Object returns the object with the given id, if any.
func (g *Grid) Object(id int) (*GridObject, bool) {
	if g == nil {
		return nil, false
	}
	obj, ok := g.objects[id]
	return obj, ok
}

// Objects returns every object currently on the grid. Order is unspecified.
func (g *Grid) Objects() []*GridObject {
	out := make([]*GridObject, 0, len(g.objects))
	for _, obj := range g.objects {
		out = append(out, obj)
	}
	return out
}

// NeighborsWithinRadius returns every occupied cell within Chebyshev radius
// of loc (inclusive), excluding loc itself, in row-major order for
// deterministic iteration by closure queries.
func (g *Grid) NeighborsWithinRadius(loc types.GridLocation, radius int) []*GridObject {
	if g == nil {
		return nil
	}
	var out []*GridObject
	minR, maxR := clampRange(int(loc.R)-radius, int(loc.R)+radius, g.height)
	minC, maxC := clampRange(int(loc.C)-radius, int(loc.C)+radius, g.width)
	for r := minR; r <= maxR; r++ {
		for c := minC; c <= maxC; c++ {
			if r == int(loc.R) && c == int(loc.C) {
				continue
			}
			id := g.cells[r][c]
			if id == -1 {
				continue
			}
			if obj, ok := g.objects[id]; ok {
				out = append(out, obj)
			}
		}
	}
	return out
}

func clampRange(lo, hi, size int) (int, int) {
	if lo < 0 {
		lo = 0
	}
	if hi > size-1 {
		hi = size - 1
	}
	return lo, hi
}
