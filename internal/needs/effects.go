// Per-tick need arithmetic. The per-agent path and the batch path both call
// these helpers so the two stay numerically identical.
package needs

import (
	"github.com/talgya/needsim/internal/agents"
	"github.com/talgya/needsim/internal/world"
)

// ageMultipliers scale decay by life stage.
var ageMultipliers = map[agents.LifeStage]float64{
	agents.StageChild: 0.7,
	agents.StageAdult: 1.0,
	agents.StageElder: 1.4,
}

// AgeMultiplier returns the decay factor for a life stage.
func AgeMultiplier(stage agents.LifeStage) float64 {
	if m, ok := ageMultipliers[stage]; ok {
		return m
	}
	return 1.0
}

// MaxBuffModifier caps the external favor/buff decay multiplier.
const MaxBuffModifier = 1.3

// zoneBonuses is the base recovery per second granted inside a zone type.
var zoneBonuses = map[world.ZoneType]map[NeedType]float64{
	world.ZoneFood:          {Hunger: 2.0},
	world.ZoneKitchen:       {Hunger: 1.5},
	world.ZoneWater:         {Thirst: 3.0},
	world.ZoneWell:          {Thirst: 2.5},
	world.ZoneRest:          {Energy: 1.5},
	world.ZoneShelter:       {Energy: 1.0},
	world.ZoneHygiene:       {Hygiene: 2.0},
	world.ZoneBath:          {Hygiene: 2.5},
	world.ZoneSocial:        {Social: 1.0, Fun: 0.5},
	world.ZoneMarket:        {Social: 0.6, Fun: 0.4},
	world.ZoneEntertainment: {Fun: 1.2, MentalHealth: 0.5},
	world.ZoneTemple:        {MentalHealth: 1.0, Social: 0.4},
	world.ZoneSanctuary:     {MentalHealth: 1.2, Social: 0.3},
}

// ZoneBonus returns the base per-second bonus a zone type grants to need.
func ZoneBonus(t world.ZoneType, need NeedType) float64 {
	return zoneBonuses[t][need]
}

// zoneBonusVector sums the bonuses of every zone, in column order.
func zoneBonusVector(zones []world.Zone) [NumNeeds]float64 {
	var v [NumNeeds]float64
	for _, z := range zones {
		for need, b := range zoneBonuses[z.Type] {
			v[need.Index()] += b
		}
	}
	return v
}

// decayed applies one decay step to a single value, floored at 0.
func decayed(v, rate, mult, dt float64) float64 {
	v -= rate * mult * dt
	if v < MinValue {
		return MinValue
	}
	return v
}

// boosted applies one zone bonus step, capped at 100.
func boosted(v, bonus, zoneMult, dt float64) float64 {
	if bonus == 0 {
		return v
	}
	v += bonus * zoneMult * dt
	if v > MaxValue {
		return MaxValue
	}
	return v
}

// Cross-effect tuning: penalty per point of deficit per second.
const (
	crossRate         = 0.01
	lowEnergyLine     = 30.0
	lowHungerLine     = 40.0
	lowThirstLine     = 30.0
	thirstEnergyScale = 2.0
)

// crossEffects applies inter-need feedback to one row (column order).
// Deficits are read before any penalty is applied.
func crossEffects(row []float64, dt float64) {
	energy := row[2]
	hunger := row[0]
	thirst := row[1]

	var penalty [NumNeeds]float64
	if energy < lowEnergyLine {
		d := (lowEnergyLine - energy) * crossRate * dt
		penalty[4] += d // social
		penalty[5] += d // fun
		penalty[6] += d // mentalHealth
	}
	if hunger < lowHungerLine {
		d := (lowHungerLine - hunger) * crossRate * dt
		penalty[2] += d
		penalty[6] += d
	}
	if thirst < lowThirstLine {
		d := (lowThirstLine - thirst) * crossRate * dt
		penalty[2] += d * thirstEnergyScale
		penalty[6] += d
	}
	for i, p := range penalty {
		if p == 0 {
			continue
		}
		row[i] -= p
		if row[i] < MinValue {
			row[i] = MinValue
		}
	}
}
