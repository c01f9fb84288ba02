package economy

import (
	"sort"

	"github.com/talgya/needsim/internal/agents"
	"github.com/talgya/needsim/internal/world"
)

// Recipe converts carried inputs into one unit of Output.
type Recipe struct {
	ID     string                 `json:"id"`
	Output world.Resource         `json:"output"`
	Inputs map[world.Resource]int `json:"inputs"`
	Value  float64                `json:"value"` // 0.0–1.0, community usefulness
}

// DefaultRecipes is the starting recipe book.
func DefaultRecipes() []Recipe {
	return []Recipe{
		{ID: "tools", Output: world.ResourceTools, Inputs: map[world.Resource]int{world.ResourceWood: 2, world.ResourceStone: 1}, Value: 0.8},
		{ID: "ration", Output: world.ResourceFood, Inputs: map[world.Resource]int{world.ResourceFood: 1, world.ResourceHerbs: 1}, Value: 0.5},
		{ID: "poultice", Output: world.ResourceHerbs, Inputs: map[world.Resource]int{world.ResourceHerbs: 2, world.ResourceWater: 1}, Value: 0.6},
	}
}

// Crafting answers which recipes an agent can craft from its inventory.
type Crafting struct {
	inventories *Store
	recipes     []Recipe
}

// NewCrafting creates a crafting collaborator over inventories.
func NewCrafting(inventories *Store, recipes []Recipe) *Crafting {
	return &Crafting{inventories: inventories, recipes: recipes}
}

// CraftableRecipes returns recipes id can craft now, most valuable first.
func (c *Crafting) CraftableRecipes(id agents.AgentID) []Recipe {
	inv := c.inventories.Get(id)
	var out []Recipe
	for _, r := range c.recipes {
		if canCraft(inv, r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out
}

// Craft consumes the inputs of recipeID and adds its output.
// Returns false when the recipe is unknown or inputs are missing.
func (c *Crafting) Craft(id agents.AgentID, recipeID string) bool {
	for _, r := range c.recipes {
		if r.ID != recipeID {
			continue
		}
		if !canCraft(c.inventories.Get(id), r) {
			return false
		}
		for res, qty := range r.Inputs {
			c.inventories.Consume(id, res, qty)
		}
		c.inventories.Add(id, r.Output, 1)
		return true
	}
	return false
}

func canCraft(inv Inventory, r Recipe) bool {
	for res, qty := range r.Inputs {
		if !inv.Has(res, qty) {
			return false
		}
	}
	return true
}
