package observation

import (
	"testing"

	"github.com/Metta-AI/mettagrid/internal/config"
	"github.com/Metta-AI/mettagrid/internal/types"
	"github.com/Metta-AI/mettagrid/internal/world"
)

func baseConfig() config.GameConfig {
	return config.GameConfig{
		ObsWidth:             3,
		ObsHeight:            3,
		NumObservationTokens: 64,
		TokenBase:            256,
		ResourceNames:        []string{"ore", "heart"},
		GlobalObs: config.GlobalObsConfig{
			EpisodeCompletionFeatureID: 1,
			LastActionFeatureID:        2,
			LastActionMovedFeatureID:   3,
			LastRewardFeatureID:        4,
			PositionDeltaFeatureIDs:    [4]int{-1, -1, -1, -1},
		},
		MaxSteps: 10,
		FeatureIDs: map[string]int{
			"tag.5":           10,
			"vibe":            11,
			"collective":      12,
			"inventory.ore":   13,
			"inventory.heart": 14,
			"agent.group":     15,
			"agent.frozen":    16,
			"territory":       17,
		},
	}
}

func newGridWithAgent(loc types.GridLocation) (*world.Grid, *world.GridObject) {
	grid := world.NewGrid(5, 5)
	var slot, episode float64
	agent := &world.GridObject{
		ID:        1,
		Location:  loc,
		Inventory: types.NewInventory(nil),
		Agent:     &world.Agent{RewardSlot: &slot, EpisodeRewardSlot: &episode, SpawnLocation: loc},
	}
	_ = grid.AddObject(agent)
	return grid, agent
}

func TestReferenceAndOptimizedAgree(t *testing.T) {
	cfg := baseConfig()
	grid, agent := newGridWithAgent(types.GridLocation{R: 2, C: 2})
	agent.Inventory.Add(types.ResourceID(0), 9)
	agent.AddTag(5, nil, nil)
	agent.Agent.LastAction = 3
	agent.Agent.LastActionMoved = true

	neighbor := &world.GridObject{ID: 2, Location: types.GridLocation{R: 2, C: 3}, Inventory: types.NewInventory(nil), Vibe: 7}
	if err := grid.AddObject(neighbor); err != nil {
		t.Fatalf("AddObject: %v", err)
	}

	deps := Deps{Grid: grid}
	ref, err := NewReferenceEncoder(cfg, deps)
	if err != nil {
		t.Fatalf("NewReferenceEncoder: %v", err)
	}
	opt, err := NewOptimizedEncoder(cfg, deps)
	if err != nil {
		t.Fatalf("NewOptimizedEncoder: %v", err)
	}

	ctx := &world.Context{Tick: 5}
	refBuf, refStats := ref.Encode(ctx, agent)
	optBuf, optStats := opt.Encode(ctx, agent)

	if refStats != optStats {
		t.Fatalf("stats disagree: ref=%+v opt=%+v", refStats, optStats)
	}
	if len(refBuf) != len(optBuf) {
		t.Fatalf("buffer length mismatch: %d vs %d", len(refBuf), len(optBuf))
	}
	for i := range refBuf {
		if refBuf[i] != optBuf[i] {
			t.Fatalf("token %d differs: ref=%+v opt=%+v", i, refBuf[i], optBuf[i])
		}
	}
	if refStats.Written == 0 {
		t.Fatalf("expected at least one token written")
	}
}

func TestGlobalMarkerFields(t *testing.T) {
	cfg := baseConfig()
	grid, agent := newGridWithAgent(types.GridLocation{R: 2, C: 2})
	agent.Agent.LastAction = 3
	agent.Agent.LastActionMoved = true
	agent.Agent.LastRewardPct = 42

	enc, err := NewReferenceEncoder(cfg, Deps{Grid: grid})
	if err != nil {
		t.Fatalf("NewReferenceEncoder: %v", err)
	}
	buf, _ := enc.Encode(&world.Context{Tick: 5}, agent)

	want := map[byte]byte{
		1: scaleUnitToByte(0.5), // episode completion at tick 5 of 10
		2: 3,                    // last action
		3: 1,                    // last action moved
		4: 42,                   // last reward pct
	}
	found := map[byte]byte{}
	for _, tok := range buf {
		if tok.Loc != types.GlobalToken {
			continue
		}
		if _, ok := want[tok.FeatureID]; ok {
			found[tok.FeatureID] = tok.Value
		}
	}
	for id, v := range want {
		if found[id] != v {
			t.Fatalf("feature %d: want %d, got %d (present=%v)", id, v, found[id], found)
		}
	}
}

func TestBufferOverflowTracksDroppedTokens(t *testing.T) {
	cfg := baseConfig()
	cfg.NumObservationTokens = 2
	grid, agent := newGridWithAgent(types.GridLocation{R: 2, C: 2})
	agent.Inventory.Add(types.ResourceID(0), 5)
	agent.AddTag(5, nil, nil)

	enc, err := NewReferenceEncoder(cfg, Deps{Grid: grid})
	if err != nil {
		t.Fatalf("NewReferenceEncoder: %v", err)
	}
	buf, stats := enc.Encode(&world.Context{Tick: 1}, agent)

	if stats.Written != len(buf) {
		t.Fatalf("expected the buffer to be filled to capacity, got written=%d len=%d", stats.Written, len(buf))
	}
	if stats.Dropped == 0 {
		t.Fatalf("expected some tokens to be dropped once the buffer overflowed")
	}
	if stats.FreeSpace != 0 {
		t.Fatalf("expected zero free space on a full buffer, got %d", stats.FreeSpace)
	}
}

func TestTrailingSlotsFilledWithEmptySlot(t *testing.T) {
	cfg := baseConfig()
	cfg.NumObservationTokens = 32
	grid, agent := newGridWithAgent(types.GridLocation{R: 2, C: 2})

	enc, err := NewReferenceEncoder(cfg, Deps{Grid: grid})
	if err != nil {
		t.Fatalf("NewReferenceEncoder: %v", err)
	}
	buf, stats := enc.Encode(&world.Context{Tick: 1}, agent)

	if stats.FreeSpace == 0 {
		t.Fatalf("expected unused trailing slots in a mostly-empty scene")
	}
	for i := stats.Written; i < len(buf); i++ {
		if buf[i].Loc != types.EmptySlot {
			t.Fatalf("slot %d: expected empty-slot sentinel, got %+v", i, buf[i])
		}
	}
}

func TestSplitMultiTokenRoundTrips(t *testing.T) {
	digits := splitMultiToken(260, 16)
	if len(digits) < 2 {
		t.Fatalf("expected a value exceeding the base to split into multiple digits, got %v", digits)
	}
	total, mult := 0, 1
	for _, d := range digits {
		total += int(d) * mult
		mult *= 16
	}
	if total != 260 {
		t.Fatalf("expected digits to reconstruct 260, got %d", total)
	}
}

func TestComputeOffsetsAscendingManhattanOrder(t *testing.T) {
	offs := computeOffsets(3, 3)
	if offs[0].Dist != 0 {
		t.Fatalf("expected the center cell first, got dist=%d", offs[0].Dist)
	}
	for i := 1; i < len(offs); i++ {
		if offs[i].Dist < offs[i-1].Dist {
			t.Fatalf("offsets not sorted ascending at index %d: %+v then %+v", i, offs[i-1], offs[i])
		}
	}
}

func TestRejectsOversizedWindow(t *testing.T) {
	cfg := baseConfig()
	cfg.ObsWidth = 16
	if _, err := NewReferenceEncoder(cfg, Deps{Grid: world.NewGrid(5, 5)}); err == nil {
		t.Fatalf("expected an error for an obs_width beyond PackedCoord's range")
	}
}
