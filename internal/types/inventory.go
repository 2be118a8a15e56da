package types

// ResourceID indexes into the resource name table carried by GameConfig.
type ResourceID int

// InventoryConfig describes per-resource capacity and whether a resource is
// a "modifier" (adjusts other resources' effective limits rather than being
// a stockpiled quantity itself, spec.md §3).
type InventoryConfig struct {
	Limits   map[ResourceID]int
	Modifier map[ResourceID]bool
}

// IsModifier reports whether resource r is a modifier resource.
func (c InventoryConfig) IsModifier(r ResourceID) bool {
	return c.Modifier != nil && c.Modifier[r]
}

// Limit returns the configured capacity for resource r, or -1 (unbounded)
// if none is configured.
func (c InventoryConfig) Limit(r ResourceID) int {
	if c.Limits == nil {
		return -1
	}
	if v, ok := c.Limits[r]; ok {
		return v
	}
	return -1
}

// Inventory is a resource_id -> quantity map with quantities clamped to
// [0, limit] by every mutator.
type Inventory struct {
	cfg     *InventoryConfig
	amounts map[ResourceID]int
}

// NewInventory constructs an empty inventory bound to cfg. cfg may be nil,
// in which case no resource has a configured limit.
func NewInventory(cfg *InventoryConfig) *Inventory {
	return &Inventory{cfg: cfg, amounts: make(map[ResourceID]int)}
}

func (inv *Inventory) config() InventoryConfig {
	if inv.cfg == nil {
		return InventoryConfig{}
	}
	return *inv.cfg
}

// Amount returns the current quantity of resource r (0 if unset).
func (inv *Inventory) Amount(r ResourceID) int {
	if inv == nil {
		return 0
	}
	return inv.amounts[r]
}

// IsModifier reports whether resource r is a modifier resource under this
// inventory's configuration (spec.md §3: modifier resources adjust other
// resources' effective limits and must never be folded into a deferred
// net-delta accumulator).
func (inv *Inventory) IsModifier(r ResourceID) bool {
	if inv == nil {
		return false
	}
	return inv.config().IsModifier(r)
}

// EffectiveLimit resolves the capacity for resource r, or a very large
// bound when unconfigured. Modifier resources adjusting other resources'
// effective limits is a concern of the mutation layer, not the inventory
// itself; Inventory only enforces its own configured cap.
func (inv *Inventory) EffectiveLimit(r ResourceID) int {
	limit := inv.config().Limit(r)
	if limit < 0 {
		return 1 << 30
	}
	return limit
}

// Add adds delta (positive or negative) to resource r, clamped to
// [0, EffectiveLimit(r)], and returns the actual applied delta.
func (inv *Inventory) Add(r ResourceID, delta int) int {
	if inv == nil {
		return 0
	}
	before := inv.amounts[r]
	after := before + delta
	limit := inv.EffectiveLimit(r)
	if after < 0 {
		after = 0
	}
	if after > limit {
		after = limit
	}
	if after == 0 {
		delete(inv.amounts, r)
	} else {
		inv.amounts[r] = after
	}
	return after - before
}

// Set forces resource r to amount, clamped to its effective limit.
func (inv *Inventory) Set(r ResourceID, amount int) {
	if inv == nil {
		return
	}
	if amount < 0 {
		amount = 0
	}
	if limit := inv.EffectiveLimit(r); amount > limit {
		amount = limit
	}
	if amount == 0 {
		delete(inv.amounts, r)
		return
	}
	inv.amounts[r] = amount
}

// Clear removes the listed resource ids, or every resource if ids is empty.
func (inv *Inventory) Clear(ids ...ResourceID) {
	if inv == nil {
		return
	}
	if len(ids) == 0 {
		inv.amounts = make(map[ResourceID]int)
		return
	}
	for _, id := range ids {
		delete(inv.amounts, id)
	}
}

// IsEmpty reports whether every resource quantity is zero.
func (inv *Inventory) IsEmpty() bool {
	return inv == nil || len(inv.amounts) == 0
}

// Snapshot returns a copy of the non-zero resource quantities.
func (inv *Inventory) Snapshot() map[ResourceID]int {
	out := make(map[ResourceID]int, len(inv.amounts))
	for k, v := range inv.amounts {
		out[k] = v
	}
	return out
}

// TransferResources moves min(amount, src available, dst capacity) units of
// resource r from src to dst and returns the transferred amount. amount < 0
// means "transfer all available". strict requires the full requested amount
// to be transferable or nothing is moved.
func TransferResources(src, dst *Inventory, r ResourceID, amount int, strict bool) int {
	if src == nil || dst == nil {
		return 0
	}
	available := src.Amount(r)
	want := amount
	if want < 0 {
		want = available
	}
	if want > available {
		want = available
	}
	room := dst.EffectiveLimit(r) - dst.Amount(r)
	if room < 0 {
		room = 0
	}
	if want > room {
		want = room
	}
	if want <= 0 {
		return 0
	}
	if strict && amount >= 0 && want < amount {
		return 0
	}
	src.Add(r, -want)
	dst.Add(r, want)
	return want
}
