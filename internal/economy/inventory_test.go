package economy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/needsim/internal/world"
)

func TestAddRespectsCapacity(t *testing.T) {
	s := NewStore(5)
	assert.Equal(t, 3, s.Add(1, world.ResourceFood, 3))
	assert.Equal(t, 2, s.Add(1, world.ResourceWater, 4))
	assert.Equal(t, 0, s.Add(1, world.ResourceWood, 1))
	assert.Equal(t, 1.0, s.FillRatio(1))
}

func TestConsumeNeverGoesNegative(t *testing.T) {
	s := NewStore(10)
	s.Add(1, world.ResourceFood, 2)
	assert.Equal(t, 2, s.Consume(1, world.ResourceFood, 5))
	assert.Equal(t, 0, s.Consume(1, world.ResourceFood, 1))
	assert.Equal(t, 0, s.Consume(2, world.ResourceFood, 1))
	assert.Empty(t, s.Get(1))
}

func TestGetReturnsCopy(t *testing.T) {
	s := NewStore(10)
	s.Add(1, world.ResourceStone, 2)
	inv := s.Get(1)
	inv[world.ResourceStone] = 99
	assert.Equal(t, 2, s.Get(1)[world.ResourceStone])
}

func TestLargestIsDeterministic(t *testing.T) {
	inv := Inventory{world.ResourceWood: 3, world.ResourceFood: 3, world.ResourceStone: 1}
	res, qty := inv.Largest()
	assert.Equal(t, world.ResourceFood, res)
	assert.Equal(t, 3, qty)
}

func TestCrafting(t *testing.T) {
	s := NewStore(20)
	c := NewCrafting(s, DefaultRecipes())
	assert.Empty(t, c.CraftableRecipes(1))

	s.Add(1, world.ResourceWood, 2)
	s.Add(1, world.ResourceStone, 1)
	got := c.CraftableRecipes(1)
	require.Len(t, got, 1)
	assert.Equal(t, "tools", got[0].ID)

	assert.True(t, c.Craft(1, "tools"))
	assert.Equal(t, 1, s.Get(1)[world.ResourceTools])
	assert.False(t, c.Craft(1, "tools"))
	assert.False(t, c.Craft(1, "nope"))
}
