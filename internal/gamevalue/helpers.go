package gamevalue

import (
	"github.com/Metta-AI/mettagrid/internal/config"
	"github.com/Metta-AI/mettagrid/internal/types"
	"github.com/Metta-AI/mettagrid/internal/world"
)

func intResource(id int) types.ResourceID {
	return types.ResourceID(id)
}

func statsTrackerFor(ctx *world.Context, scope config.StatsScope) *types.StatsTracker {
	switch scope {
	case config.ScopeGame:
		return ctx.Stats
	case config.ScopeCollective:
		if ctx.Target == nil || ctx.Target.Collective == nil {
			return nil
		}
		return ctx.Target.Collective.Stats
	case config.ScopeAgent:
		if ctx.Target == nil || ctx.Target.Agent == nil {
			return nil
		}
		return ctx.Target.Agent.Stats
	default:
		return nil
	}
}
