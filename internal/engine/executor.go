package engine

import (
	"log/slog"
	"strings"

	"github.com/talgya/needsim/internal/agents"
	"github.com/talgya/needsim/internal/goals"
	"github.com/talgya/needsim/internal/needs"
	"github.com/talgya/needsim/internal/world"
)

// Executor tuning, per tick.
const (
	walkSpeed     = 4.0
	fleeSpeed     = 6.0
	reach         = 1.5 // arrival distance for moving targets
	harvestUnits  = 4
	eatGain       = 25.0
	restGain      = 3.0
	socialGain    = 10.0
	assistGain    = 15.0
	buildProgress = 0.02
	huntFood      = 3
	woundOnLoss   = 20.0
)

// execute applies one tick of g for id: move toward the target, then act on
// arrival. It reports whether the goal's action completed this tick.
func (s *Simulation) execute(id agents.AgentID, g goals.AIGoal) bool {
	if g.Type == goals.TypeQuest && !s.World.AcceptQuest(g.TargetRef, id) {
		return false
	}
	arrived := s.move(id, g)
	s.noteZones(id)
	if !arrived {
		return false
	}

	ok := s.act(id, g)
	if g.TargetZone != "" && s.World.InZone(id, g.TargetZone) {
		s.Agents.RecordOutcome(id, g.TargetZone, ok && !s.zoneBusy(g.TargetZone))
	}
	return ok
}

// move steps toward the goal's target and reports arrival. Goals with no
// target act in place.
func (s *Simulation) move(id agents.AgentID, g goals.AIGoal) bool {
	speed := walkSpeed
	if g.Type == goals.TypeFlee {
		speed = fleeSpeed
	}
	speed /= s.mods.TravelPenalty
	switch {
	case g.TargetAgent != 0 && g.Type != goals.TypeFlee:
		target, ok := s.World.Position(g.TargetAgent)
		if !ok {
			return false
		}
		self, _ := s.World.Position(id)
		if world.Distance(self, target) <= reach {
			return true
		}
		s.World.MoveToward(id, target, speed)
		self, _ = s.World.Position(id)
		return world.Distance(self, target) <= reach
	case g.TargetPos != nil:
		return s.World.MoveToward(id, *g.TargetPos, speed)
	}
	return true
}

// noteZones marks every zone the agent stands in as visited.
func (s *Simulation) noteZones(id agents.AgentID) {
	pos, ok := s.World.Position(id)
	if !ok {
		return
	}
	for _, z := range s.World.ZonesAt(pos) {
		s.Agents.RecordVisit(id, z.ID)
	}
}

func (s *Simulation) zoneBusy(zoneID string) bool {
	z, ok := s.World.Zone(zoneID)
	return ok && z.UnderConstruction
}

// act performs the goal's action at its target.
func (s *Simulation) act(id agents.AgentID, g goals.AIGoal) bool {
	switch g.Type {
	case goals.TypeSatisfyNeed, goals.TypeSocialize:
		// Zone bonuses do the work while the agent stays inside.
		if g.TargetAgent != 0 {
			s.Needs.Satisfy(id, needs.Social, socialGain)
			s.Needs.Satisfy(g.TargetAgent, needs.Social, socialGain)
		}
		return true
	case goals.TypeGather:
		return s.gather(id, g)
	case goals.TypeHunt:
		return s.hunt(id, g)
	case goals.TypeTrade:
		return s.trade(id, g)
	case goals.TypeRest:
		if g.TargetZone == "" {
			s.Needs.Satisfy(id, needs.Energy, restGain)
		}
		return true
	case goals.TypeFlee:
		return true
	case goals.TypeAttack:
		return s.attack(id, g)
	case goals.TypeAssist:
		return s.assist(id, g)
	case goals.TypeWork:
		return s.work(id, g)
	case goals.TypeQuest:
		return s.quest(id, g)
	case goals.TypeExplore, goals.TypeInspect, goals.TypeIdle:
		return true
	}
	slog.Debug("unhandled goal type", "agent", id, "type", g.Type)
	return false
}

// consume eats or drinks one carried unit for need.
func (s *Simulation) consume(id agents.AgentID, need needs.NeedType, res world.Resource) {
	if need != needs.Hunger && need != needs.Thirst {
		return
	}
	if s.Inventory.Consume(id, res, 1) == 1 {
		s.Needs.Satisfy(id, need, eatGain)
	}
}

func (s *Simulation) gather(id agents.AgentID, g goals.AIGoal) bool {
	node, ok := s.World.ResourceNode(g.TargetRef)
	if !ok {
		return false
	}
	taken := int(s.World.Harvest(node.ID, harvestUnits))
	if taken == 0 {
		return false
	}
	s.Inventory.Add(id, node.Resource, taken)
	s.consume(id, g.Data.Need, node.Resource)
	return true
}

func (s *Simulation) hunt(id agents.AgentID, g goals.AIGoal) bool {
	pos, _ := s.World.Position(id)
	for _, a := range s.World.Animals(pos, reach, world.AnimalPrey) {
		if a.ID != g.TargetRef {
			continue
		}
		s.World.RemoveAnimal(a.ID)
		s.Inventory.Add(id, world.ResourceFood, huntFood)
		s.consume(id, needs.Hunger, world.ResourceFood)
		return true
	}
	return false
}

func (s *Simulation) trade(id agents.AgentID, g goals.AIGoal) bool {
	res := g.Data.Resource
	switch g.Data.Action {
	case goals.ActionBarter:
		if s.Inventory.Consume(g.TargetAgent, res, 1) == 0 {
			return false
		}
		s.Inventory.Add(id, res, 1)
		s.consume(id, g.Data.Need, res)
		return true
	case goals.ActionOffer:
		if s.Inventory.Consume(id, res, 1) == 0 {
			return false
		}
		s.Inventory.Add(g.TargetAgent, res, 1)
		return true
	}
	return false
}

func (s *Simulation) attack(id agents.AgentID, g goals.AIGoal) bool {
	me, ok := s.World.Stats(id)
	if !ok {
		return false
	}
	if g.TargetRef != "" {
		pos, _ := s.World.Position(id)
		for _, a := range s.World.Animals(pos, reach*2, world.AnimalPredator) {
			if a.ID != g.TargetRef {
				continue
			}
			if me.Power >= a.Power {
				s.World.RemoveAnimal(a.ID)
				s.Inventory.Add(id, world.ResourceFood, huntFood)
				return true
			}
			s.World.UpdateStats(id, func(cs *world.CombatStats) {
				cs.Wounds = min(cs.Wounds+woundOnLoss, 100)
				cs.Morale = max(cs.Morale-10, 0)
			})
			return false
		}
		return false
	}
	s.World.UpdateStats(g.TargetAgent, func(cs *world.CombatStats) {
		cs.Wounds = min(cs.Wounds+me.Power/5, 100)
		cs.Morale = max(cs.Morale-5, 0)
	})
	s.World.AddHostility(g.TargetAgent, id, 0.2)
	return true
}

func (s *Simulation) assist(id agents.AgentID, g goals.AIGoal) bool {
	if g.TargetAgent == 0 {
		return false
	}
	if strings.HasSuffix(g.Data.Action, string(goals.AilmentMedical)) {
		s.World.UpdateStats(g.TargetAgent, func(cs *world.CombatStats) {
			cs.Wounds = max(cs.Wounds-assistGain, 0)
		})
	}
	ok := s.Needs.Satisfy(g.TargetAgent, g.Data.Need, assistGain)
	if ok {
		s.Needs.Satisfy(id, needs.MentalHealth, socialGain/2)
	}
	return ok
}

func (s *Simulation) work(id agents.AgentID, g goals.AIGoal) bool {
	switch {
	case strings.HasPrefix(g.ID, goals.PrefixDeposit):
		return s.deposit(id)
	case strings.HasPrefix(g.ID, goals.PrefixCraft):
		return s.Crafting.Craft(id, g.Data.Detail)
	case strings.HasPrefix(g.ID, goals.PrefixConstruct):
		s.Inventory.Consume(id, world.ResourceWood, 1)
		return s.World.ContributeBuild(g.TargetRef, buildProgress)
	}
	return false
}

// deposit moves everything carried into the community stockpile.
func (s *Simulation) deposit(id agents.AgentID) bool {
	inv := s.Inventory.Get(id)
	if inv.Total() == 0 {
		return false
	}
	c := s.World.Community()
	for res, q := range inv {
		switch res {
		case world.ResourceFood:
			c.Food += float64(q)
		case world.ResourceWater:
			c.Water += float64(q)
		case world.ResourceWood:
			c.Wood += float64(q)
		case world.ResourceStone:
			c.Stone += float64(q)
		default:
			continue
		}
		s.Inventory.Consume(id, res, q)
	}
	s.World.SetCommunity(c)
	return true
}

func (s *Simulation) quest(id agents.AgentID, g goals.AIGoal) bool {
	s.World.CompleteQuest(g.TargetRef)
	s.Needs.Satisfy(id, needs.Fun, socialGain)
	return true
}
