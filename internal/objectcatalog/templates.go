package objectcatalog

import (
	"fmt"
	"sort"

	"github.com/Metta-AI/mettagrid/internal/config"
	"github.com/Metta-AI/mettagrid/internal/handler"
	"github.com/Metta-AI/mettagrid/internal/types"
	"github.com/Metta-AI/mettagrid/internal/world"
)

// ObjectTemplate is one compiled ObjectConfig: every HandlerConfig has
// already been built into a runtime handler.Handler, ready to
// instantiate any number of GridObjects of this type.
type ObjectTemplate struct {
	cfg       config.ObjectConfig
	onUse     *handler.MultiHandler
	tagOnAdd  map[int][]world.LifecycleHandler
	tagOnRemove map[int][]world.LifecycleHandler
}

func (w *Wiring) buildTemplates(cfgs []config.ObjectConfig, deps handler.Deps) error {
	for _, oc := range cfgs {
		t := &ObjectTemplate{cfg: oc}
		if oc.OnUse != nil {
			h, err := handler.NewMulti(*oc.OnUse, deps)
			if err != nil {
				return fmt.Errorf("objectcatalog: object %q on_use: %w", oc.TypeName, err)
			}
			t.onUse = h
		}
		var err error
		if t.tagOnAdd, err = buildLifecycleMap(oc.TagOnAdd, deps); err != nil {
			return fmt.Errorf("objectcatalog: object %q tag_on_add: %w", oc.TypeName, err)
		}
		if t.tagOnRemove, err = buildLifecycleMap(oc.TagOnRemove, deps); err != nil {
			return fmt.Errorf("objectcatalog: object %q tag_on_remove: %w", oc.TypeName, err)
		}
		w.templates[oc.TypeID] = t
	}
	return nil
}

func buildLifecycleMap(cfgs map[int][]config.HandlerConfig, deps handler.Deps) (map[int][]world.LifecycleHandler, error) {
	if len(cfgs) == 0 {
		return nil, nil
	}
	out := make(map[int][]world.LifecycleHandler, len(cfgs))
	for tag, hcs := range cfgs {
		handlers := make([]world.LifecycleHandler, 0, len(hcs))
		for _, hc := range hcs {
			h, err := handler.New(hc, deps)
			if err != nil {
				return nil, fmt.Errorf("tag %d: %w", tag, err)
			}
			handlers = append(handlers, h)
		}
		out[tag] = handlers
	}
	return out, nil
}

// Template returns the compiled template for typeID, if any.
func (w *Wiring) Template(typeID int) (*ObjectTemplate, bool) {
	t, ok := w.templates[typeID]
	return t, ok
}

// NewObject instantiates a GridObject of typeID at loc, wiring its
// compiled on_use/tag lifecycle handlers and inventory, but does not
// place it on the grid or register its AOE sources — callers do that
// via Wiring.Place once the object's id is assigned.
func (w *Wiring) NewObject(typeID, id int, loc types.GridLocation) (*world.GridObject, error) {
	t, ok := w.templates[typeID]
	if !ok {
		return nil, fmt.Errorf("objectcatalog: unknown type id %d", typeID)
	}
	invCfg := t.cfg.InventoryCfg
	obj := &world.GridObject{
		ID:          id,
		TypeID:      typeID,
		TypeName:    t.cfg.TypeName,
		Location:    loc,
		Inventory:   types.NewInventory(&invCfg),
		OnUse:       wrapHandler(t.onUse),
		TagOnAdd:    t.tagOnAdd,
		TagOnRemove: t.tagOnRemove,
	}
	if t.cfg.IsAgent {
		var rewardSlot, episodeSlot float64
		obj.Agent = &world.Agent{
			Group:         t.cfg.Group,
			SpawnLocation: loc,
			RewardSlot:    &rewardSlot,
			EpisodeRewardSlot: &episodeSlot,
			Stats:         types.NewStatsTracker(),
		}
	}
	for _, tag := range sortedTags(t.cfg.InitialTags) {
		obj.AddTag(tag, w.TagIndex, &world.Context{SkipTrigger: true})
	}
	return obj, nil
}

// Place adds obj to the grid and registers its type's AOE sources.
func (w *Wiring) Place(obj *world.GridObject) error {
	t, ok := w.templates[obj.TypeID]
	if !ok {
		return fmt.Errorf("objectcatalog: unknown type id %d", obj.TypeID)
	}
	if err := w.Grid.AddObject(obj); err != nil {
		return err
	}
	if len(t.cfg.AOEs) > 0 {
		if err := w.AOE.Register(obj, t.cfg.AOEs, w.aoeDeps()); err != nil {
			return fmt.Errorf("objectcatalog: object %d aoe: %w", obj.ID, err)
		}
	}
	return nil
}

func sortedTags(tags []int) []int {
	out := append([]int(nil), tags...)
	sort.Ints(out)
	return out
}

// wrapHandler lets a nil *handler.MultiHandler assign cleanly to an
// interface-typed field: an untyped nil *MultiHandler stored directly
// into GridObject.OnUse would compare non-nil through the interface.
func wrapHandler(h *handler.MultiHandler) world.LifecycleHandler {
	if h == nil {
		return nil
	}
	return h
}
