package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/needsim/internal/agents"
)

func TestRectContainsEdges(t *testing.T) {
	r := Rect{X: 10, Y: 10, W: 5, H: 5}
	assert.True(t, r.Contains(Vec2{X: 10, Y: 10}))
	assert.True(t, r.Contains(Vec2{X: 15, Y: 15}))
	assert.False(t, r.Contains(Vec2{X: 15.01, Y: 12}))
	assert.Equal(t, Vec2{X: 12.5, Y: 12.5}, r.Center())
}

func TestZonesAtOverlap(t *testing.T) {
	w := New(100, 100)
	w.AddZone(Zone{ID: "a", Type: ZoneFood, Bounds: Rect{X: 0, Y: 0, W: 10, H: 10}})
	w.AddZone(Zone{ID: "b", Type: ZoneKitchen, Bounds: Rect{X: 5, Y: 5, W: 10, H: 10}})
	w.AddZone(Zone{ID: "c", Type: ZoneWell, Bounds: Rect{X: 50, Y: 50, W: 10, H: 10}})

	assert.Len(t, w.ZonesAt(Vec2{X: 7, Y: 7}), 2)
	assert.Len(t, w.ZonesOfType(ZoneFood, ZoneWell), 2)

	w.AddAgent(AgentRecord{ID: 1, Position: Vec2{X: 55, Y: 55}, Active: true})
	assert.True(t, w.InZone(1, "c"))
	assert.False(t, w.InZone(1, "a"))
}

func TestNearbyAgentsSortedAndFiltered(t *testing.T) {
	w := New(100, 100)
	w.AddAgent(AgentRecord{ID: 1, Position: Vec2{}, Active: true})
	w.AddAgent(AgentRecord{ID: 2, Position: Vec2{X: 8}, Active: true})
	w.AddAgent(AgentRecord{ID: 3, Position: Vec2{X: 3}, Active: true})
	w.AddAgent(AgentRecord{ID: 4, Position: Vec2{X: 1}, Active: false})
	w.AddAgent(AgentRecord{ID: 5, Position: Vec2{X: 50}, Active: true})

	got := w.NearbyAgents(Vec2{}, 10, 1)
	require.Len(t, got, 2)
	assert.Equal(t, agents.AgentID(3), got[0].ID)
	assert.Equal(t, agents.AgentID(2), got[1].ID)
}

func TestMoveTowardArrives(t *testing.T) {
	w := New(100, 100)
	w.AddAgent(AgentRecord{ID: 1, Active: true})
	target := Vec2{X: 6, Y: 8}
	assert.False(t, w.MoveToward(1, target, 5))
	p, _ := w.Position(1)
	assert.InDelta(t, 3, p.X, 1e-9)
	assert.InDelta(t, 4, p.Y, 1e-9)
	assert.True(t, w.MoveToward(1, target, 5))
	p, _ = w.Position(1)
	assert.Equal(t, target, p)
}

func TestHarvestExhaustsNode(t *testing.T) {
	w := New(100, 100)
	w.AddResourceNode(ResourceNode{ID: "f1", Resource: ResourceFood, Position: Vec2{X: 3}, Amount: 5})
	n, ok := w.NearestResource(Vec2{}, ResourceFood, 10)
	require.True(t, ok)
	assert.Equal(t, "f1", n.ID)

	assert.Equal(t, 5.0, w.Harvest("f1", 8))
	_, ok = w.NearestResource(Vec2{}, ResourceFood, 10)
	assert.False(t, ok)
}

func TestBuildTaskTogglesConstruction(t *testing.T) {
	w := New(100, 100)
	w.AddZone(Zone{ID: "s", Type: ZoneShelter, Bounds: Rect{W: 10, H: 10}})
	w.AddBuildTask(BuildTask{ID: "b", ZoneID: "s"})
	z, _ := w.Zone("s")
	assert.True(t, z.UnderConstruction)

	w.ContributeBuild("b", 0.6)
	w.ContributeBuild("b", 0.6)
	z, _ = w.Zone("s")
	assert.False(t, z.UnderConstruction)
	assert.Empty(t, w.OpenBuildTasks())
}

func TestQuestLifecycle(t *testing.T) {
	w := New(100, 100)
	w.AddQuest(Quest{ID: "q"})
	assert.Len(t, w.AvailableQuests(), 1)
	assert.True(t, w.AcceptQuest("q", 7))
	assert.False(t, w.AcceptQuest("q", 8))
	assert.Len(t, w.ActiveQuests(7), 1)
	w.CompleteQuest("q")
	assert.Empty(t, w.ActiveQuests(7))
}

func TestRoleUnknownAgent(t *testing.T) {
	w := New(10, 10)
	_, err := w.Role(99)
	assert.ErrorIs(t, err, ErrUnknownAgent)
}

func TestEnemiesThreshold(t *testing.T) {
	w := New(10, 10)
	w.AddHostility(1, 2, 0.4)
	w.AddHostility(1, 3, 0.9)
	assert.Equal(t, []agents.AgentID{3}, w.Enemies(1, 0.5))
}

func TestCommunityRatios(t *testing.T) {
	c := Community{Food: 50, Water: 20, Wood: 10, Stone: 20, Population: 10, StockpileCapacity: 200}
	assert.Equal(t, 5.0, c.FoodPerCapita())
	assert.Equal(t, 2.0, c.WaterPerCapita())
	assert.Equal(t, 0.5, c.StockpileFill())
	assert.Equal(t, 0.0, Community{}.StockpileFill())
}

func TestGenerateIsDeterministic(t *testing.T) {
	a := Generate(SmallTestConfig())
	b := Generate(SmallTestConfig())
	require.NotEmpty(t, a.Zones())
	assert.Equal(t, a.Zones(), b.Zones())
	assert.Equal(t, len(AllZoneTypes), len(ZoneTypeCounts(a)))
	for _, z := range a.Zones() {
		assert.GreaterOrEqual(t, z.Attractiveness, 0.0)
		assert.LessOrEqual(t, z.Attractiveness, 1.0)
	}
}
