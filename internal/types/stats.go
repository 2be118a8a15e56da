package types

// StatID is a dense integer handle for a stat name, resolved once and
// reused on every hot-path write thereafter (spec.md §4.1).
type StatID int

// StatsTracker is a string-named registry backed by a dense float64
// vector. Cold paths look stats up by name; hot paths hold a StatID
// resolved at setup and never touch the name table again. Ids are
// assigned in first-use order and are never recycled within an episode,
// mirroring the teacher's stats.Component registry-by-archetype pattern
// (server/stats/registry.go) generalized to open-ended names instead of
// a fixed archetype table.
type StatsTracker struct {
	ids    map[string]StatID
	names  []string
	values []*float64
}

// NewStatsTracker constructs an empty tracker.
func NewStatsTracker() *StatsTracker {
	return &StatsTracker{ids: make(map[string]StatID)}
}

// ID resolves name to a StatID, assigning a new one on first use.
func (t *StatsTracker) ID(name string) StatID {
	if id, ok := t.ids[name]; ok {
		return id
	}
	id := StatID(len(t.names))
	t.ids[name] = id
	t.names = append(t.names, name)
	t.values = append(t.values, new(float64))
	return id
}

// Add adds delta to the stat named name (cold path).
func (t *StatsTracker) Add(name string, delta float64) {
	t.AddID(t.ID(name), delta)
}

// AddID adds delta to the stat identified by id (hot path).
func (t *StatsTracker) AddID(id StatID, delta float64) {
	if int(id) < 0 || int(id) >= len(t.values) {
		return
	}
	*t.values[id] += delta
}

// Get returns the current value of the stat named name (cold path).
func (t *StatsTracker) Get(name string) float64 {
	id, ok := t.ids[name]
	if !ok {
		return 0
	}
	return t.GetID(id)
}

// GetID returns the current value of the stat identified by id (hot path).
func (t *StatsTracker) GetID(id StatID) float64 {
	if int(id) < 0 || int(id) >= len(t.values) {
		return 0
	}
	return *t.values[id]
}

// Pointer returns a *float64 that stays valid for the lifetime of the
// tracker regardless of how many further stats are registered afterward:
// each slot is its own heap allocation, so growing the names/values
// slices never moves an already-issued pointer. GameValue resolution
// (internal/reward) and TagIndex-style reward references rely on this.
func (t *StatsTracker) Pointer(name string) *float64 {
	id := t.ID(name)
	return t.values[id]
}

// Names returns the registered stat names in id order.
func (t *StatsTracker) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Snapshot returns a name->value map of every registered stat.
func (t *StatsTracker) Snapshot() map[string]float64 {
	out := make(map[string]float64, len(t.names))
	for i, name := range t.names {
		out[name] = *t.values[i]
	}
	return out
}
