package observation

import (
	"fmt"
	"sort"

	"github.com/Metta-AI/mettagrid/internal/aoe"
	"github.com/Metta-AI/mettagrid/internal/types"
	"github.com/Metta-AI/mettagrid/internal/world"
)

// offset is one cell of the observation window, precomputed once per
// window size: WR/WC are the window-relative (packed) coordinates, DR/DC
// the signed displacement from the window's center cell, and Dist their
// Manhattan distance.
type offset struct {
	WR, WC int
	DR, DC int
	Dist   int
}

// computeOffsets lists every cell of a width x height window in
// ascending Manhattan distance from its center (ties broken row-major),
// the traversal order spec.md §4.9 requires for spatial tokens.
func computeOffsets(width, height int) []offset {
	centerR, centerC := height/2, width/2
	center := types.GridLocation{R: types.GridCoord(centerR), C: types.GridCoord(centerC)}
	out := make([]offset, 0, width*height)
	for wr := 0; wr < height; wr++ {
		for wc := 0; wc < width; wc++ {
			cell := types.GridLocation{R: types.GridCoord(wr), C: types.GridCoord(wc)}
			out = append(out, offset{
				WR: wr, WC: wc,
				DR: wr - centerR, DC: wc - centerC,
				Dist: types.ManhattanDistance(center, cell),
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Dist != out[j].Dist {
			return out[i].Dist < out[j].Dist
		}
		if out[i].WR != out[j].WR {
			return out[i].WR < out[j].WR
		}
		return out[i].WC < out[j].WC
	})
	return out
}

// emitSpatial walks offs around agent, emitting an AoeMask/Territory
// token (when an AOE tracker is wired and a territory source covers the
// cell) and then the occupying object's feature tokens, skipping cells
// that fall outside the map.
func (c *core) emitSpatial(w *writer, agent *world.GridObject, offs []offset) {
	grid := c.deps.Grid
	centerR, centerC := int(agent.Location.R), int(agent.Location.C)
	for _, off := range offs {
		r, cc := centerR+off.DR, centerC+off.DC
		if r < 0 || cc < 0 || r >= grid.Height() || cc >= grid.Width() {
			continue
		}
		loc := types.GridLocation{R: types.GridCoord(r), C: types.GridCoord(cc)}
		packed := types.PackCoord(off.WR, off.WC)

		if c.deps.AOE != nil {
			if side := c.deps.AOE.FixedObservabilityAt(loc, agent); side != aoe.SideNone {
				if id := c.cfg.FeatureID("territory"); id >= 0 {
					w.emit(Token{Loc: packed, FeatureID: byte(id), Value: byte(side)})
				}
			}
		}

		obj, ok := grid.ObjectAt(loc)
		if !ok {
			continue
		}
		c.emitObject(w, packed, obj)
	}
}

// emitObject writes one occupying object's feature tokens: collective
// id, its set tags, vibe, multi-token inventory, and (if agent-
// controlled) its group/frozen state.
func (c *core) emitObject(w *writer, loc types.PackedCoord, obj *world.GridObject) {
	if obj.Collective != nil {
		if id := c.cfg.FeatureID("collective"); id >= 0 {
			w.emit(Token{Loc: loc, FeatureID: byte(id), Value: clampByte(obj.Collective.ID)})
		}
	}
	for t := 0; t < types.MaxTags; t++ {
		if !obj.Tags.Has(t) {
			continue
		}
		id := c.cfg.FeatureID(fmt.Sprintf("tag.%d", t))
		if id < 0 {
			continue
		}
		w.emit(Token{Loc: loc, FeatureID: byte(id), Value: 1})
	}
	if id := c.cfg.FeatureID("vibe"); id >= 0 {
		w.emit(Token{Loc: loc, FeatureID: byte(id), Value: clampByte(obj.Vibe)})
	}

	snap := obj.Inventory.Snapshot()
	resources := make([]int, 0, len(snap))
	for r := range snap {
		resources = append(resources, int(r))
	}
	sort.Ints(resources)
	for _, r := range resources {
		name := c.resourceName(r)
		id := c.cfg.FeatureID("inventory." + name)
		if id < 0 {
			continue
		}
		for i, digit := range splitMultiToken(snap[types.ResourceID(r)], c.tokenBase()) {
			w.emit(Token{Loc: loc, FeatureID: byte(id) + byte(i), Value: digit})
		}
	}

	if obj.Agent != nil {
		if id := c.cfg.FeatureID("agent.group"); id >= 0 {
			w.emit(Token{Loc: loc, FeatureID: byte(id), Value: clampByte(obj.Agent.Group)})
		}
		if id := c.cfg.FeatureID("agent.frozen"); id >= 0 {
			w.emit(Token{Loc: loc, FeatureID: byte(id), Value: clampByte(obj.Agent.Frozen)})
		}
	}
}

func (c *core) resourceName(r int) string {
	if r >= 0 && r < len(c.cfg.ResourceNames) {
		return c.cfg.ResourceNames[r]
	}
	return ""
}
