package world

import (
	"errors"
	"fmt"
	"sort"

	"github.com/talgya/needsim/internal/agents"
)

// Resource enumerates the raw resources tracked by the world and inventories.
type Resource string

const (
	ResourceFood  Resource = "food"
	ResourceWater Resource = "water"
	ResourceWood  Resource = "wood"
	ResourceStone Resource = "stone"
	ResourceHerbs Resource = "herbs"
	ResourceTools Resource = "tools"
)

// ErrUnknownAgent is returned by queries about agents the world does not track.
var ErrUnknownAgent = errors.New("unknown agent")

// CombatStats are the social/combat collaborator's per-agent figures.
type CombatStats struct {
	Morale  float64 `json:"morale"`  // 0–100
	Wounds  float64 `json:"wounds"`  // 0–100, severity
	Stamina float64 `json:"stamina"` // 0–100
	Power   float64 `json:"power"`   // raw fighting strength
}

// AgentRecord is the world's view of an agent.
type AgentRecord struct {
	ID       agents.AgentID   `json:"id"`
	Position Vec2             `json:"position"`
	Stage    agents.LifeStage `json:"stage"`
	Role     agents.Role      `json:"role"`
	Stats    CombatStats      `json:"stats"`
	Active   bool             `json:"active"`
}

// AnimalKind distinguishes huntable prey from predators.
type AnimalKind uint8

const (
	AnimalPrey AnimalKind = iota
	AnimalPredator
)

// Animal is a non-agent creature.
type Animal struct {
	ID       string     `json:"id"`
	Kind     AnimalKind `json:"kind"`
	Position Vec2       `json:"position"`
	Power    float64    `json:"power"`
}

// ResourceNode is a harvestable world resource.
type ResourceNode struct {
	ID       string   `json:"id"`
	Resource Resource `json:"resource"`
	Position Vec2     `json:"position"`
	Amount   float64  `json:"amount"`
}

// BuildTask is an open construction job.
type BuildTask struct {
	ID       string  `json:"id"`
	ZoneID   string  `json:"zone_id"`
	Position Vec2    `json:"position"`
	Progress float64 `json:"progress"` // 0.0–1.0
}

// Quest is an errand posted to the community board.
type Quest struct {
	ID         string         `json:"id"`
	ZoneID     string         `json:"zone_id"`
	Position   Vec2           `json:"position"`
	Reward     float64        `json:"reward"`
	Difficulty float64        `json:"difficulty"` // 0.0–1.0
	Owner      agents.AgentID `json:"owner,omitempty"`
	Done       bool           `json:"done,omitempty"`
}

// Community is the aggregate resource state of the whole population.
type Community struct {
	Wood              float64 `json:"wood"`
	Stone             float64 `json:"stone"`
	Food              float64 `json:"food"`
	Water             float64 `json:"water"`
	Population        int     `json:"population"`
	StockpileCapacity float64 `json:"stockpile_capacity"`
}

// FoodPerCapita returns food units per living agent.
func (c Community) FoodPerCapita() float64 {
	if c.Population <= 0 {
		return c.Food
	}
	return c.Food / float64(c.Population)
}

// WaterPerCapita returns water units per living agent.
func (c Community) WaterPerCapita() float64 {
	if c.Population <= 0 {
		return c.Water
	}
	return c.Water / float64(c.Population)
}

// StockpileFill returns total stock over capacity, in [0,1].
func (c Community) StockpileFill() float64 {
	if c.StockpileCapacity <= 0 {
		return 0
	}
	f := (c.Wood + c.Stone + c.Food + c.Water) / c.StockpileCapacity
	if f > 1 {
		return 1
	}
	return f
}

// World holds the spatial state shared by the simulation.
type World struct {
	Width, Height float64

	agents    map[agents.AgentID]*AgentRecord
	zones     []Zone
	zoneIndex map[string]int
	nodes     map[string]*ResourceNode
	animals   map[string]*Animal
	builds    map[string]*BuildTask
	quests    map[string]*Quest
	hostility map[agents.AgentID]map[agents.AgentID]float64
	community Community
}

// New creates an empty world of the given size.
func New(width, height float64) *World {
	return &World{
		Width:     width,
		Height:    height,
		agents:    make(map[agents.AgentID]*AgentRecord),
		zoneIndex: make(map[string]int),
		nodes:     make(map[string]*ResourceNode),
		animals:   make(map[string]*Animal),
		builds:    make(map[string]*BuildTask),
		quests:    make(map[string]*Quest),
		hostility: make(map[agents.AgentID]map[agents.AgentID]float64),
	}
}

// Bounds returns the playable area.
func (w *World) Bounds() Rect {
	return Rect{W: w.Width, H: w.Height}
}

// ── Mutation (owned by the simulation and its executor) ──────────────

// AddAgent registers or replaces an agent record.
func (w *World) AddAgent(rec AgentRecord) {
	r := rec
	w.agents[rec.ID] = &r
}

// SetActive toggles whether the agent takes part in the simulation.
func (w *World) SetActive(id agents.AgentID, active bool) {
	if a, ok := w.agents[id]; ok {
		a.Active = active
	}
}

// SetPosition teleports an agent.
func (w *World) SetPosition(id agents.AgentID, p Vec2) {
	if a, ok := w.agents[id]; ok {
		a.Position = w.Bounds().Clamp(p)
	}
}

// MoveToward steps an agent at most step units toward target and reports
// whether it arrived.
func (w *World) MoveToward(id agents.AgentID, target Vec2, step float64) bool {
	a, ok := w.agents[id]
	if !ok {
		return false
	}
	delta := target.Sub(a.Position)
	if delta.Len() <= step {
		a.Position = w.Bounds().Clamp(target)
		return true
	}
	a.Position = w.Bounds().Clamp(a.Position.Add(delta.Normalized().Scale(step)))
	return false
}

// UpdateStats replaces an agent's combat stats.
func (w *World) UpdateStats(id agents.AgentID, fn func(*CombatStats)) {
	if a, ok := w.agents[id]; ok {
		fn(&a.Stats)
	}
}

// AddZone registers a zone. Duplicate ids replace the earlier zone.
func (w *World) AddZone(z Zone) {
	if i, ok := w.zoneIndex[z.ID]; ok {
		w.zones[i] = z
		return
	}
	w.zoneIndex[z.ID] = len(w.zones)
	w.zones = append(w.zones, z)
}

// AddResourceNode registers a harvestable node.
func (w *World) AddResourceNode(n ResourceNode) {
	node := n
	w.nodes[n.ID] = &node
}

// Harvest removes up to amount from a node and returns what was taken.
// Exhausted nodes disappear.
func (w *World) Harvest(nodeID string, amount float64) float64 {
	n, ok := w.nodes[nodeID]
	if !ok || amount <= 0 {
		return 0
	}
	taken := amount
	if taken > n.Amount {
		taken = n.Amount
	}
	n.Amount -= taken
	if n.Amount <= 0 {
		delete(w.nodes, nodeID)
	}
	return taken
}

// AddAnimal registers an animal.
func (w *World) AddAnimal(a Animal) {
	an := a
	w.animals[a.ID] = &an
}

// RemoveAnimal deletes an animal (hunted or despawned).
func (w *World) RemoveAnimal(id string) {
	delete(w.animals, id)
}

// AddBuildTask opens a construction job and marks its zone under construction.
func (w *World) AddBuildTask(t BuildTask) {
	task := t
	w.builds[t.ID] = &task
	if i, ok := w.zoneIndex[t.ZoneID]; ok {
		w.zones[i].UnderConstruction = true
	}
}

// ContributeBuild advances a task; finished tasks close and free their zone.
func (w *World) ContributeBuild(taskID string, amount float64) bool {
	t, ok := w.builds[taskID]
	if !ok {
		return false
	}
	t.Progress += amount
	if t.Progress >= 1 {
		delete(w.builds, taskID)
		if i, ok := w.zoneIndex[t.ZoneID]; ok {
			w.zones[i].UnderConstruction = false
		}
	}
	return true
}

// AddQuest posts a quest.
func (w *World) AddQuest(q Quest) {
	quest := q
	w.quests[q.ID] = &quest
}

// AcceptQuest assigns an unowned quest to id.
func (w *World) AcceptQuest(questID string, id agents.AgentID) bool {
	q, ok := w.quests[questID]
	if !ok || q.Done || (q.Owner != 0 && q.Owner != id) {
		return false
	}
	q.Owner = id
	return true
}

// CompleteQuest closes a quest.
func (w *World) CompleteQuest(questID string) {
	if q, ok := w.quests[questID]; ok {
		q.Done = true
	}
}

// AddHostility raises a's hostility toward b.
func (w *World) AddHostility(a, b agents.AgentID, amount float64) {
	m, ok := w.hostility[a]
	if !ok {
		m = make(map[agents.AgentID]float64)
		w.hostility[a] = m
	}
	m[b] += amount
}

// SetCommunity replaces the aggregate resource state.
func (w *World) SetCommunity(c Community) {
	w.community = c
}

// ── Queries ──────────────────────────────────────────────────────────

// Agent returns the record for id.
func (w *World) Agent(id agents.AgentID) (AgentRecord, bool) {
	a, ok := w.agents[id]
	if !ok {
		return AgentRecord{}, false
	}
	return *a, true
}

// Position returns the agent's location.
func (w *World) Position(id agents.AgentID) (Vec2, bool) {
	a, ok := w.agents[id]
	if !ok {
		return Vec2{}, false
	}
	return a.Position, true
}

// LifeStage returns the agent's life stage.
func (w *World) LifeStage(id agents.AgentID) (agents.LifeStage, bool) {
	a, ok := w.agents[id]
	if !ok {
		return agents.StageAdult, false
	}
	return a.Stage, true
}

// Role returns the agent's role.
func (w *World) Role(id agents.AgentID) (agents.Role, error) {
	a, ok := w.agents[id]
	if !ok {
		return agents.RoleGatherer, fmt.Errorf("role of %d: %w", id, ErrUnknownAgent)
	}
	return a.Role, nil
}

// Stats returns the agent's combat stats.
func (w *World) Stats(id agents.AgentID) (CombatStats, bool) {
	a, ok := w.agents[id]
	if !ok {
		return CombatStats{}, false
	}
	return a.Stats, true
}

// ActiveAgents returns active agent ids in ascending order.
func (w *World) ActiveAgents() []agents.AgentID {
	ids := make([]agents.AgentID, 0, len(w.agents))
	for id, a := range w.agents {
		if a.Active {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// NearbyAgents returns active agents within radius of pos, nearest first,
// excluding exclude.
func (w *World) NearbyAgents(pos Vec2, radius float64, exclude agents.AgentID) []AgentRecord {
	var out []AgentRecord
	for id, a := range w.agents {
		if id == exclude || !a.Active {
			continue
		}
		if Distance(pos, a.Position) <= radius {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := Distance(pos, out[i].Position), Distance(pos, out[j].Position)
		if di != dj {
			return di < dj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Zones returns all zones in registration order.
func (w *World) Zones() []Zone {
	out := make([]Zone, len(w.zones))
	copy(out, w.zones)
	return out
}

// Zone returns the zone with id.
func (w *World) Zone(id string) (Zone, bool) {
	i, ok := w.zoneIndex[id]
	if !ok {
		return Zone{}, false
	}
	return w.zones[i], true
}

// ZonesAt returns every zone containing p.
func (w *World) ZonesAt(p Vec2) []Zone {
	var out []Zone
	for _, z := range w.zones {
		if z.Contains(p) {
			out = append(out, z)
		}
	}
	return out
}

// ZonesOfType returns zones whose type is any of types.
func (w *World) ZonesOfType(types ...ZoneType) []Zone {
	var out []Zone
	for _, z := range w.zones {
		if z.IsOneOf(types...) {
			out = append(out, z)
		}
	}
	return out
}

// InZone reports whether the agent is inside zoneID.
func (w *World) InZone(id agents.AgentID, zoneID string) bool {
	a, ok := w.agents[id]
	if !ok {
		return false
	}
	z, ok := w.Zone(zoneID)
	return ok && z.Contains(a.Position)
}

// NearestResource returns the closest node holding res.
func (w *World) NearestResource(pos Vec2, res Resource, maxDist float64) (ResourceNode, bool) {
	var best *ResourceNode
	bestDist := maxDist
	for _, n := range w.nodes {
		if n.Resource != res || n.Amount <= 0 {
			continue
		}
		d := Distance(pos, n.Position)
		if d < bestDist || (d == bestDist && best != nil && n.ID < best.ID) {
			best, bestDist = n, d
		}
	}
	if best == nil {
		return ResourceNode{}, false
	}
	return *best, true
}

// ResourceNode returns the node with id.
func (w *World) ResourceNode(id string) (ResourceNode, bool) {
	n, ok := w.nodes[id]
	if !ok {
		return ResourceNode{}, false
	}
	return *n, true
}

// Animals returns animals of kind within radius of pos, nearest first.
func (w *World) Animals(pos Vec2, radius float64, kind AnimalKind) []Animal {
	var out []Animal
	for _, a := range w.animals {
		if a.Kind == kind && Distance(pos, a.Position) <= radius {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := Distance(pos, out[i].Position), Distance(pos, out[j].Position)
		if di != dj {
			return di < dj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Enemies returns agents toward whom id's hostility is at least threshold.
func (w *World) Enemies(id agents.AgentID, threshold float64) []agents.AgentID {
	var out []agents.AgentID
	for other, h := range w.hostility[id] {
		if h >= threshold {
			out = append(out, other)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// OpenBuildTasks returns unfinished construction jobs ordered by id.
func (w *World) OpenBuildTasks() []BuildTask {
	out := make([]BuildTask, 0, len(w.builds))
	for _, t := range w.builds {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ActiveQuests returns unfinished quests owned by id.
func (w *World) ActiveQuests(id agents.AgentID) []Quest {
	var out []Quest
	for _, q := range w.quests {
		if !q.Done && q.Owner == id {
			out = append(out, *q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AvailableQuests returns unowned, unfinished quests.
func (w *World) AvailableQuests() []Quest {
	var out []Quest
	for _, q := range w.quests {
		if !q.Done && q.Owner == 0 {
			out = append(out, *q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Community returns the aggregate resource state.
func (w *World) Community() Community {
	return w.community
}

// CommunityTotals returns the aggregate state for the priority manager.
// The error return lets adapters over remote stores report read failures.
func (w *World) CommunityTotals() (Community, error) {
	return w.community, nil
}
