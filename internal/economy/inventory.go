// Package economy provides the inventory collaborator and crafting recipes.
// The needs engine consumes from inventories during emergencies; evaluators
// only read them.
package economy

import (
	"sort"

	"github.com/talgya/needsim/internal/agents"
	"github.com/talgya/needsim/internal/world"
)

// DefaultCapacity is the number of units an agent can carry.
const DefaultCapacity = 20

// Inventory maps resource to carried units.
type Inventory map[world.Resource]int

// Total returns the number of units carried.
func (inv Inventory) Total() int {
	n := 0
	for _, qty := range inv {
		n += qty
	}
	return n
}

// Has reports whether at least qty units of res are carried.
func (inv Inventory) Has(res world.Resource, qty int) bool {
	return inv[res] >= qty
}

// Largest returns the most plentiful resource and its count.
func (inv Inventory) Largest() (world.Resource, int) {
	keys := make([]string, 0, len(inv))
	for r := range inv {
		keys = append(keys, string(r))
	}
	sort.Strings(keys)
	var best world.Resource
	bestQty := 0
	for _, k := range keys {
		if q := inv[world.Resource(k)]; q > bestQty {
			best, bestQty = world.Resource(k), q
		}
	}
	return best, bestQty
}

// Store holds every agent's inventory.
type Store struct {
	items    map[agents.AgentID]Inventory
	capacity int
}

// NewStore creates an inventory store with the given per-agent capacity.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		items:    make(map[agents.AgentID]Inventory),
		capacity: capacity,
	}
}

// Get returns a copy of id's inventory (empty when unknown).
func (s *Store) Get(id agents.AgentID) Inventory {
	out := make(Inventory)
	for r, q := range s.items[id] {
		out[r] = q
	}
	return out
}

// Add stores up to qty units, bounded by capacity, and returns how many fit.
func (s *Store) Add(id agents.AgentID, res world.Resource, qty int) int {
	if qty <= 0 {
		return 0
	}
	inv, ok := s.items[id]
	if !ok {
		inv = make(Inventory)
		s.items[id] = inv
	}
	free := s.capacity - inv.Total()
	if free <= 0 {
		return 0
	}
	if qty > free {
		qty = free
	}
	inv[res] += qty
	return qty
}

// Consume removes up to qty units of res and returns how many were taken.
func (s *Store) Consume(id agents.AgentID, res world.Resource, qty int) int {
	inv, ok := s.items[id]
	if !ok || qty <= 0 {
		return 0
	}
	have := inv[res]
	if qty > have {
		qty = have
	}
	inv[res] = have - qty
	if inv[res] == 0 {
		delete(inv, res)
	}
	return qty
}

// FillRatio returns carried units over capacity.
func (s *Store) FillRatio(id agents.AgentID) float64 {
	return float64(s.items[id].Total()) / float64(s.capacity)
}

// Capacity returns the per-agent capacity.
func (s *Store) Capacity() int {
	return s.capacity
}

// Clear empties id's inventory (death without respawn).
func (s *Store) Clear(id agents.AgentID) {
	delete(s.items, id)
}
