package reward

import (
	"testing"

	"github.com/Metta-AI/mettagrid/internal/config"
	"github.com/Metta-AI/mettagrid/internal/gamevalue"
	"github.com/Metta-AI/mettagrid/internal/types"
	"github.com/Metta-AI/mettagrid/internal/world"
)

func newAgentObj(id int) *world.GridObject {
	var slot, episode float64
	return &world.GridObject{
		ID:        id,
		Inventory: types.NewInventory(nil),
		Agent:     &world.Agent{RewardSlot: &slot, EpisodeRewardSlot: &episode},
	}
}

func TestHelperAccumulateFalseContributesDelta(t *testing.T) {
	agent := newAgentObj(1)
	cfg := []config.RewardEntryConfig{{
		Numerator: config.GameValueConfig{Kind: config.GameValueInventory, Scope: config.ScopeAgent, ResourceID: 1},
		Weight:    1,
	}}
	h, err := NewHelper(cfg, nil, gamevalue.Deps{})
	if err != nil {
		t.Fatalf("NewHelper: %v", err)
	}
	ctx := &world.Context{}

	agent.Inventory.Add(types.ResourceID(1), 5)
	got := h.Apply(ctx, agent)
	if got != 5 {
		t.Fatalf("expected first tick's delta to equal the full value (prev=0), got %v", got)
	}

	agent.Inventory.Add(types.ResourceID(1), 2)
	got = h.Apply(ctx, agent)
	if got != 2 {
		t.Fatalf("expected second tick to contribute only the delta, got %v", got)
	}
	if *agent.Agent.RewardSlot != 7 {
		t.Fatalf("expected reward slot to accumulate both ticks, got %v", *agent.Agent.RewardSlot)
	}
}

func TestHelperAccumulateTrueContributesFullValue(t *testing.T) {
	agent := newAgentObj(1)
	agent.Inventory.Add(types.ResourceID(1), 4)
	cfg := []config.RewardEntryConfig{{
		Numerator:  config.GameValueConfig{Kind: config.GameValueInventory, Scope: config.ScopeAgent, ResourceID: 1},
		Weight:     1,
		Accumulate: true,
	}}
	h, err := NewHelper(cfg, nil, gamevalue.Deps{})
	if err != nil {
		t.Fatalf("NewHelper: %v", err)
	}
	ctx := &world.Context{}
	got := h.Apply(ctx, agent)
	if got != 4 {
		t.Fatalf("expected accumulate=true to contribute the full value every tick, got %v", got)
	}
	got = h.Apply(ctx, agent)
	if got != 4 {
		t.Fatalf("expected repeated ticks to each contribute the full value again, got %v", got)
	}
}

func TestHelperDenominatorDivision(t *testing.T) {
	agent := newAgentObj(1)
	agent.Inventory.Add(types.ResourceID(1), 10)
	agent.Inventory.Add(types.ResourceID(2), 5)
	cfg := []config.RewardEntryConfig{{
		Numerator:    config.GameValueConfig{Kind: config.GameValueInventory, Scope: config.ScopeAgent, ResourceID: 1},
		Denominators: []config.GameValueConfig{{Kind: config.GameValueInventory, Scope: config.ScopeAgent, ResourceID: 2}},
		Weight:       1,
		Accumulate:   true,
	}}
	h, err := NewHelper(cfg, nil, gamevalue.Deps{})
	if err != nil {
		t.Fatalf("NewHelper: %v", err)
	}
	got := h.Apply(&world.Context{}, agent)
	if got != 2 {
		t.Fatalf("expected 10/5=2, got %v", got)
	}
}

func TestHelperMaxValueClamps(t *testing.T) {
	agent := newAgentObj(1)
	agent.Inventory.Add(types.ResourceID(1), 100)
	max := 3.0
	cfg := []config.RewardEntryConfig{{
		Numerator:  config.GameValueConfig{Kind: config.GameValueInventory, Scope: config.ScopeAgent, ResourceID: 1},
		Weight:     1,
		MaxValue:   &max,
		Accumulate: true,
	}}
	h, err := NewHelper(cfg, nil, gamevalue.Deps{})
	if err != nil {
		t.Fatalf("NewHelper: %v", err)
	}
	got := h.Apply(&world.Context{}, agent)
	if got != 3 {
		t.Fatalf("expected clamp to max_value=3, got %v", got)
	}
}

func TestHelperZeroDenominatorSkipsDivision(t *testing.T) {
	agent := newAgentObj(1)
	agent.Inventory.Add(types.ResourceID(1), 10)
	cfg := []config.RewardEntryConfig{{
		Numerator:    config.GameValueConfig{Kind: config.GameValueInventory, Scope: config.ScopeAgent, ResourceID: 1},
		Denominators: []config.GameValueConfig{{Kind: config.GameValueInventory, Scope: config.ScopeAgent, ResourceID: 2}}, // amount 0
		Weight:       1,
		Accumulate:   true,
	}}
	h, err := NewHelper(cfg, nil, gamevalue.Deps{})
	if err != nil {
		t.Fatalf("NewHelper: %v", err)
	}
	got := h.Apply(&world.Context{}, agent)
	if got != 10 {
		t.Fatalf("expected a zero denominator to leave the value undivided, got %v", got)
	}
}
