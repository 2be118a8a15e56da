package objectcatalog

import (
	"testing"

	"github.com/Metta-AI/mettagrid/internal/config"
	"github.com/Metta-AI/mettagrid/internal/types"
	"github.com/Metta-AI/mettagrid/internal/world"
)

func testConfig() config.GameConfig {
	return config.GameConfig{
		ResourceNames: []string{"ore"},
		Objects: []config.ObjectConfig{
			{
				TypeID:   0,
				TypeName: "node",
				InitialTags: []int{5},
				OnUse: &config.MultiHandlerConfig{
					Mode: config.AllMatch,
					Handlers: []config.HandlerConfig{{
						Mutations: []config.MutationConfig{{Kind: config.MutationResourceDelta, ResourceID: 0, Delta: 3}},
					}},
				},
			},
			{
				TypeID:  1,
				TypeName: "agent",
				IsAgent: true,
			},
		},
		QueryTags: []config.QueryTagConfig{
			{TagID: 20, Name: "has_ore_tag", Query: config.QueryConfig{Kind: config.QueryTag, TagID: 5}},
		},
		RewardEntries: []config.RewardEntryConfig{{
			Numerator: config.GameValueConfig{Kind: config.GameValueInventory, Scope: config.ScopeAgent, ResourceID: 0},
			Weight:    1,
		}},
	}
}

func TestNewWiringBuildsAndInstantiates(t *testing.T) {
	grid := world.NewGrid(4, 4)
	ctxFactory := func() *world.Context { return &world.Context{Grid: grid} }
	w, err := NewWiring(testConfig(), grid, ctxFactory, nil)
	if err != nil {
		t.Fatalf("NewWiring: %v", err)
	}

	node, err := w.NewObject(0, 1, types.GridLocation{R: 0, C: 0})
	if err != nil {
		t.Fatalf("NewObject(node): %v", err)
	}
	if !node.HasTag(5) {
		t.Fatalf("expected node to carry its configured initial tag")
	}
	if err := w.Place(node); err != nil {
		t.Fatalf("Place(node): %v", err)
	}

	agent, err := w.NewObject(1, 2, types.GridLocation{R: 1, C: 1})
	if err != nil {
		t.Fatalf("NewObject(agent): %v", err)
	}
	if agent.Agent == nil {
		t.Fatalf("expected an agent-bearing GridObject")
	}
	if err := w.Place(agent); err != nil {
		t.Fatalf("Place(agent): %v", err)
	}

	if node.OnUse == nil {
		t.Fatalf("expected node's on_use handler to be wired")
	}
	ctx := &world.Context{Grid: grid, TagIndex: w.TagIndex, Actor: agent, Target: node}
	if !node.OnUse.TryApply(ctx) {
		t.Fatalf("expected node's on_use handler to pass (no filters configured)")
	}
	if got := node.Inventory.Amount(types.ResourceID(0)); got != 3 {
		t.Fatalf("expected on_use to deposit 3 ore, got %d", got)
	}

	w.QuerySystem.ComputeAll()
	members := w.TagIndex.GetObjectsWithTag(20)
	if len(members) != 1 || members[0].ID != node.ID {
		t.Fatalf("expected the materialized query tag to contain exactly the tagged node, got %v", members)
	}

	agent.Inventory.Add(types.ResourceID(0), 5)
	got := w.RewardHelper.Apply(&world.Context{}, agent)
	if got != 5 {
		t.Fatalf("expected reward helper to credit the agent's ore inventory, got %v", got)
	}
}
