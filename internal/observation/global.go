package observation

import (
	"fmt"
	"math"

	"github.com/Metta-AI/mettagrid/internal/world"
)

// emitGlobal writes the dedicated global-location marker tokens
// (episode-completion percent, last action, last-action-moved flag,
// last reward, optional goal tokens and position deltas) followed by
// every configured global_obs.obs entry, all at types.GlobalToken
// (spec.md §4.9). A GlobalObsConfig feature id of -1 (config.FeatureID's
// "unassigned" sentinel) disables that token entirely.
func (c *core) emitGlobal(w *writer, ctx *world.Context, agent *world.GridObject, goalValues []float64) {
	g := c.cfg.GlobalObs

	if id := g.EpisodeCompletionFeatureID; id >= 0 && c.cfg.MaxSteps > 0 {
		frac := float64(ctx.Tick) / float64(c.cfg.MaxSteps)
		w.emit(Token{Loc: globalLoc, FeatureID: byte(id), Value: scaleUnitToByte(frac)})
	}

	if a := agent.Agent; a != nil {
		if id := g.LastActionFeatureID; id >= 0 {
			w.emit(Token{Loc: globalLoc, FeatureID: byte(id), Value: clampByte(a.LastAction)})
		}
		if id := g.LastActionMovedFeatureID; id >= 0 {
			var v byte
			if a.LastActionMoved {
				v = 1
			}
			w.emit(Token{Loc: globalLoc, FeatureID: byte(id), Value: v})
		}
		if id := g.LastRewardFeatureID; id >= 0 {
			w.emit(Token{Loc: globalLoc, FeatureID: byte(id), Value: clampByte(a.LastRewardPct)})
		}
		if g.EmitLocalPosition {
			c.emitPositionDeltas(w, agent)
		}
	}

	if g.EmitGoalTokens {
		for i, v := range goalValues {
			id := c.cfg.FeatureID(fmt.Sprintf("goal.%d", i))
			if id < 0 {
				continue
			}
			w.emit(Token{Loc: globalLoc, FeatureID: byte(id), Value: scaleUnitToByte(clip01(v))})
		}
	}

	c.cell.current = ctx.WithTarget(agent)
	for _, ov := range c.globalValues {
		for i, digit := range splitMultiToken(int(ov.value.Read()), ov.tokenBase) {
			w.emit(Token{Loc: globalLoc, FeatureID: ov.featureID + byte(i), Value: digit})
		}
	}
}

// emitPositionDeltas writes the four east/west/north/south magnitudes of
// the agent's displacement from its spawn location, each clamped to a
// byte and independently gated by its own feature id.
func (c *core) emitPositionDeltas(w *writer, agent *world.GridObject) {
	a := agent.Agent
	dr := int(agent.Location.R) - int(a.SpawnLocation.R)
	dc := int(agent.Location.C) - int(a.SpawnLocation.C)
	ids := c.cfg.GlobalObs.PositionDeltaFeatureIDs
	deltas := [4]int{dc, -dc, -dr, dr} // east, west, north, south
	for i, d := range deltas {
		if ids[i] < 0 {
			continue
		}
		w.emit(Token{Loc: globalLoc, FeatureID: byte(ids[i]), Value: clampByte(d)})
	}
}

func clampByte(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func scaleUnitToByte(frac float64) byte {
	frac = clip01(frac)
	return clampByte(int(math.Round(frac * 255)))
}
