package goals

import (
	"math"
	"sort"

	"github.com/talgya/needsim/internal/agents"
	"github.com/talgya/needsim/internal/world"
)

// Zone selection weights.
const (
	successWeight      = 0.1
	failureWeight      = 0.15
	unexploredWeight   = 0.5
	unexploredRange    = 100.0
	visitedDistPenalty = 0.005
	constructionBonus  = 0.2
	herdingChance      = 0.15
	herdingPool        = 3
)

type scoredZone struct {
	zone  world.Zone
	score float64
}

// ZoneScore rates z as a destination for st starting at origin.
func ZoneScore(st *agents.AIState, origin world.Vec2, z world.Zone) float64 {
	d := world.Distance(origin, z.Center())
	s := z.Attractiveness
	out := st.Memory.Outcome(z.ID)
	s += successWeight*float64(out.Successes) - failureWeight*float64(out.Failures)
	if st.Memory.HasVisited(z.ID) {
		s -= visitedDistPenalty * d
	} else {
		s += st.Personality.Openness * unexploredWeight * math.Min(d/unexploredRange, 1)
	}
	if z.UnderConstruction {
		s += constructionBonus
	}
	return s
}

// SelectZone picks a destination among zones. Usually the best scored zone
// wins; with probability 0.15·openness·(1−neuroticism) one of the top three
// is drawn uniformly instead.
func SelectZone(c *Context, st *agents.AIState, origin world.Vec2, zones []world.Zone) (world.Zone, bool) {
	if len(zones) == 0 {
		return world.Zone{}, false
	}
	scored := make([]scoredZone, len(zones))
	for i, z := range zones {
		scored[i] = scoredZone{zone: z, score: ZoneScore(st, origin, z)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].zone.ID < scored[j].zone.ID
	})

	p := herdingChance * st.Personality.Openness * (1 - st.Personality.Neuroticism)
	if c.Rand != nil && len(scored) > 1 && c.Rand.Float64() < p {
		k := min(herdingPool, len(scored))
		return scored[c.Rand.Intn(k)].zone, true
	}
	return scored[0].zone, true
}

// nearestZone returns the zone whose center is closest to p within maxDist.
func nearestZone(p world.Vec2, zones []world.Zone, maxDist float64) (world.Zone, float64, bool) {
	var best world.Zone
	bestDist := math.Inf(1)
	for _, z := range zones {
		d := world.Distance(p, z.Center())
		if z.Contains(p) {
			d = 0
		}
		if d > maxDist {
			continue
		}
		if d < bestDist || (d == bestDist && z.ID < best.ID) {
			best, bestDist = z, d
		}
	}
	return best, bestDist, !math.IsInf(bestDist, 1)
}
