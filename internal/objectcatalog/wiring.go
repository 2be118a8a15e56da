// Package objectcatalog is the wiring layer of SPEC_FULL.md: it builds
// every runtime evaluator (filters, mutations, queries, handlers,
// game values, AOE sources, the materialized-query system, reward
// entries, the event scheduler) from one config.GameConfig, resolving
// the dependency-injection seams (QueryBuilder, Recomputer) those
// packages declare but cannot satisfy themselves without an import
// cycle. It then exposes a per-type ObjectTemplate factory the engine
// uses to instantiate GridObjects onto the grid.
package objectcatalog

import (
	"fmt"
	"sort"

	"github.com/Metta-AI/mettagrid/internal/aoe"
	"github.com/Metta-AI/mettagrid/internal/config"
	"github.com/Metta-AI/mettagrid/internal/enginelog"
	"github.com/Metta-AI/mettagrid/internal/event"
	"github.com/Metta-AI/mettagrid/internal/filter"
	"github.com/Metta-AI/mettagrid/internal/gamevalue"
	"github.com/Metta-AI/mettagrid/internal/handler"
	"github.com/Metta-AI/mettagrid/internal/mutation"
	"github.com/Metta-AI/mettagrid/internal/observation"
	"github.com/Metta-AI/mettagrid/internal/query"
	"github.com/Metta-AI/mettagrid/internal/reward"
	"github.com/Metta-AI/mettagrid/internal/types"
	"github.com/Metta-AI/mettagrid/internal/world"
)

// ActionRuntime is one compiled action-catalog entry, sorted into
// dispatch-priority order by NewWiring.
type ActionRuntime struct {
	ID       int
	Name     string
	Priority int
	Handler  *handler.MultiHandler
}

// Wiring holds every runtime object built from a GameConfig plus the
// structural state (tag index, collectives) they're wired against.
type Wiring struct {
	Grid        *world.Grid
	TagIndex    *world.TagIndex
	Collectives map[int]*world.Collective
	CollectiveIDs map[string]int

	QuerySystem  *query.System
	RewardHelper *reward.Helper
	Events       *event.Scheduler
	AOE          *aoe.Tracker
	Actions      []ActionRuntime

	GameValueDeps gamevalue.Deps
	FilterDeps    filter.Deps
	MutationDeps  mutation.Deps

	templates map[int]*ObjectTemplate
}

// NewWiring builds every runtime evaluator described by cfg against
// grid. ctxFactory must return a *world.Context describing the engine's
// current mutable state (tick, rand, actor/target left unset); it is
// called only when query.System recomputes a materialized tag's
// membership, never on the per-handler hot path.
func NewWiring(cfg config.GameConfig, grid *world.Grid, ctxFactory func() *world.Context, router *enginelog.Router) (*Wiring, error) {
	w := &Wiring{
		Grid:      grid,
		TagIndex:  world.NewTagIndex(),
		templates: make(map[int]*ObjectTemplate),
	}
	w.buildCollectives(cfg.Collectives)

	recomputer := &recomputerCell{}
	qb := func(qc config.QueryConfig) (world.Query, error) {
		return query.New(qc, query.Deps{TagIndex: w.TagIndex})
	}
	filterDeps := filter.Deps{QueryBuilder: filter.QueryBuilder(qb), TagIndex: w.TagIndex}
	mutationDeps := mutation.Deps{QueryBuilder: mutation.QueryBuilder(qb), TagIndex: w.TagIndex, Recomputer: recomputer}
	handlerDeps := handler.Deps{FilterDeps: filterDeps, MutationDeps: mutationDeps, Logger: router}
	w.FilterDeps = filterDeps
	w.MutationDeps = mutationDeps
	w.GameValueDeps = gamevalue.Deps{QueryBuilder: gamevalue.QueryBuilder(qb)}

	system := query.NewSystem(ctxFactory, w.TagIndex)
	for _, qt := range cfg.QueryTags {
		if err := system.Register(qt, query.Deps{TagIndex: w.TagIndex}); err != nil {
			return nil, fmt.Errorf("objectcatalog: query tag %d: %w", qt.TagID, err)
		}
	}
	recomputer.target = system
	w.QuerySystem = system

	rewardHelper, err := reward.NewHelper(cfg.RewardEntries, w.TagIndex, w.GameValueDeps)
	if err != nil {
		return nil, fmt.Errorf("objectcatalog: reward entries: %w", err)
	}
	w.RewardHelper = rewardHelper

	sched, err := event.New(cfg.Events, event.Deps{QueryDeps: query.Deps{TagIndex: w.TagIndex}, HandlerDeps: handlerDeps})
	if err != nil {
		return nil, fmt.Errorf("objectcatalog: events: %w", err)
	}
	w.Events = sched

	w.AOE = aoe.NewTracker(grid)

	if err := w.buildActions(cfg.Actions, handlerDeps); err != nil {
		return nil, err
	}
	if err := w.buildTemplates(cfg.Objects, handlerDeps); err != nil {
		return nil, err
	}

	return w, nil
}

func (w *Wiring) buildCollectives(cfgs []config.CollectiveConfig) {
	names := make([]string, len(cfgs))
	for i, c := range cfgs {
		names[i] = c.Name
	}
	byName := world.AssignCollectiveIDs(names, nil)
	for _, c := range cfgs {
		inv := c.InventoryCfg
		byName[c.Name].Inventory = types.NewInventory(&inv)
	}
	w.Collectives = make(map[int]*world.Collective, len(byName))
	w.CollectiveIDs = make(map[string]int, len(byName))
	for name, c := range byName {
		w.Collectives[c.ID] = c
		w.CollectiveIDs[name] = c.ID
	}
}

func (w *Wiring) buildActions(cfgs []config.ActionConfig, deps handler.Deps) error {
	out := make([]ActionRuntime, 0, len(cfgs))
	for _, ac := range cfgs {
		h, err := handler.NewMulti(ac.Handler, deps)
		if err != nil {
			return fmt.Errorf("objectcatalog: action %q: %w", ac.Name, err)
		}
		out = append(out, ActionRuntime{ID: ac.ID, Name: ac.Name, Priority: ac.Priority, Handler: h})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	w.Actions = out
	return nil
}

func (w *Wiring) aoeDeps() aoe.Deps {
	return aoe.Deps{FilterDeps: w.FilterDeps, MutationDeps: w.MutationDeps}
}

// ObservationDeps builds the Deps observation.NewReferenceEncoder/
// NewOptimizedEncoder/NewShadowEncoder need, pulled together from
// whatever this wiring already built.
func (w *Wiring) ObservationDeps() observation.Deps {
	return observation.Deps{
		Grid:          w.Grid,
		AOE:           w.AOE,
		TagIndex:      w.TagIndex,
		GameValueDeps: w.GameValueDeps,
		RewardHelper:  w.RewardHelper,
	}
}
