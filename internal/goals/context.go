package goals

import (
	"time"

	"github.com/talgya/needsim/internal/agents"
	"github.com/talgya/needsim/internal/economy"
	"github.com/talgya/needsim/internal/entropy"
	"github.com/talgya/needsim/internal/needs"
	"github.com/talgya/needsim/internal/world"
)

// NeedsReader exposes current need values. *needs.Engine satisfies it.
type NeedsReader interface {
	Get(id agents.AgentID) (needs.EntityNeeds, bool)
}

// WorldReader is the spatial query surface. *world.World satisfies it.
type WorldReader interface {
	Position(id agents.AgentID) (world.Vec2, bool)
	Role(id agents.AgentID) (agents.Role, error)
	Zones() []world.Zone
	ZonesOfType(types ...world.ZoneType) []world.Zone
	NearbyAgents(pos world.Vec2, radius float64, exclude agents.AgentID) []world.AgentRecord
	NearestResource(pos world.Vec2, res world.Resource, maxDist float64) (world.ResourceNode, bool)
	CommunityTotals() (world.Community, error)
}

// InventoryReader is the read side of the inventory collaborator.
// *economy.Store satisfies it.
type InventoryReader interface {
	Get(id agents.AgentID) economy.Inventory
	FillRatio(id agents.AgentID) float64
}

// CombatReader exposes hostility, predators and combat stats.
// *world.World satisfies it.
type CombatReader interface {
	Agent(id agents.AgentID) (world.AgentRecord, bool)
	Stats(id agents.AgentID) (world.CombatStats, bool)
	Enemies(id agents.AgentID, threshold float64) []agents.AgentID
	Animals(pos world.Vec2, radius float64, kind world.AnimalKind) []world.Animal
}

// BuildReader lists open construction jobs.
type BuildReader interface {
	OpenBuildTasks() []world.BuildTask
}

// CraftingReader answers what an agent can craft. *economy.Crafting
// satisfies it.
type CraftingReader interface {
	CraftableRecipes(id agents.AgentID) []economy.Recipe
}

// QuestReader lists errands.
type QuestReader interface {
	ActiveQuests(id agents.AgentID) []world.Quest
	AvailableQuests() []world.Quest
}

// Context is the read-only bundle handed to every evaluator. Optional
// collaborators may be nil; evaluators that need them report not Ready.
type Context struct {
	Now       time.Time
	TimeOfDay float64 // hours, [0,24)

	Needs     NeedsReader
	World     WorldReader
	Inventory InventoryReader
	Combat    CombatReader
	Builds    BuildReader
	Crafting  CraftingReader
	Quests    QuestReader

	Rand entropy.Source
}

// IsNight reports whether TimeOfDay falls in the night window.
func (c *Context) IsNight() bool {
	return c.TimeOfDay >= 21 || c.TimeOfDay < 5
}

// self gathers the evaluating agent's position and needs.
func (c *Context) self(id agents.AgentID) (world.Vec2, needs.EntityNeeds, bool) {
	pos, ok := c.World.Position(id)
	if !ok {
		return world.Vec2{}, needs.EntityNeeds{}, false
	}
	n, ok := c.Needs.Get(id)
	if !ok {
		return world.Vec2{}, needs.EntityNeeds{}, false
	}
	return pos, n, true
}

func (c *Context) inventoryOf(id agents.AgentID) economy.Inventory {
	if c.Inventory == nil {
		return nil
	}
	return c.Inventory.Get(id)
}
