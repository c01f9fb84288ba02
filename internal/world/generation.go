// World generation using layered simplex noise.
// Fertility, elevation and moisture fields decide where zones, resource nodes
// and animals go, and how attractive each zone is.
package world

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds world generation parameters.
type GenConfig struct {
	Width         float64 // World extent on X
	Height        float64 // World extent on Y
	Seed          int64   // Random seed (0 = random)
	ZoneSize      float64 // Side length of generated zones
	ZonesPerType  int     // Zones placed per zone type
	ResourceNodes int     // Nodes per resource kind
	Prey          int
	Predators     int
	BuildTasks    int
	Quests        int
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Width:         400,
		Height:        400,
		ZoneSize:      24,
		ZonesPerType:  2,
		ResourceNodes: 12,
		Prey:          20,
		Predators:     4,
		BuildTasks:    3,
		Quests:        4,
	}
}

// SmallTestConfig returns a tiny world for rapid iteration.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Width:         160,
		Height:        160,
		Seed:          42,
		ZoneSize:      12,
		ZonesPerType:  1,
		ResourceNodes: 3,
		Prey:          3,
		Predators:     1,
		BuildTasks:    1,
		Quests:        1,
	}
}

// field samples the three noise layers at a point.
type field struct {
	elev, moist, fert opensimplex.Noise
}

func (f field) at(p Vec2) (elev, moist, fert float64) {
	elev = octaveNoise(f.elev, p.X, p.Y, 4, 0.01, 0.5)
	moist = octaveNoise(f.moist, p.X, p.Y, 3, 0.012, 0.5)
	fert = octaveNoise(f.fert, p.X, p.Y, 3, 0.015, 0.5)
	return elev, moist, fert
}

// Generate creates a populated world with zones, resources and animals.
func Generate(cfg GenConfig) *World {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	rng := rand.New(rand.NewSource(seed + 200))

	f := field{
		elev:  opensimplex.NewNormalized(seed),
		moist: opensimplex.NewNormalized(seed + 1),
		fert:  opensimplex.NewNormalized(seed + 2),
	}

	w := New(cfg.Width, cfg.Height)
	placeZones(w, f, cfg, rng)
	placeResources(w, f, cfg, rng)
	placeAnimals(w, cfg, rng)
	placeErrands(w, cfg, rng)

	w.SetCommunity(Community{
		Wood:              60,
		Stone:             40,
		Food:              120,
		Water:             120,
		StockpileCapacity: 800,
	})
	return w
}

// placeZones scores a grid of candidate sites and fills the best ones,
// enforcing a minimum spacing, cycling through zone types so every type exists.
func placeZones(w *World, f field, cfg GenConfig, rng *rand.Rand) {
	type scored struct {
		pos   Vec2
		score float64
	}
	var candidates []scored
	step := cfg.ZoneSize
	for x := step; x < cfg.Width-step; x += step {
		for y := step; y < cfg.Height-step; y += step {
			p := Vec2{X: x, Y: y}
			elev, moist, fert := f.at(p)
			// Habitable: not too high, not waterlogged.
			s := fert*0.5 + (1-math.Abs(elev-0.45))*0.3 + (1-math.Abs(moist-0.5))*0.2
			candidates = append(candidates, scored{pos: p, score: s})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		if candidates[i].pos.X != candidates[j].pos.X {
			return candidates[i].pos.X < candidates[j].pos.X
		}
		return candidates[i].pos.Y < candidates[j].pos.Y
	})

	want := len(AllZoneTypes) * cfg.ZonesPerType
	var placed []Vec2
	minDist := cfg.ZoneSize * 1.05
	for _, c := range candidates {
		if len(placed) >= want {
			break
		}
		if tooClose(c.pos, placed, minDist) {
			continue
		}
		placed = append(placed, c.pos)
	}

	// Shuffle so the best sites are not always the same zone type.
	rng.Shuffle(len(placed), func(i, j int) { placed[i], placed[j] = placed[j], placed[i] })

	for i, p := range placed {
		zt := AllZoneTypes[i%len(AllZoneTypes)]
		_, _, fert := f.at(p)
		half := cfg.ZoneSize / 2
		w.AddZone(Zone{
			ID:             fmt.Sprintf("%s-%d", zt, i/len(AllZoneTypes)+1),
			Type:           zt,
			Bounds:         Rect{X: p.X - half, Y: p.Y - half, W: cfg.ZoneSize, H: cfg.ZoneSize},
			Attractiveness: clamp01(fert),
		})
	}
}

// placeResources scatters nodes where the noise fields favor each resource.
func placeResources(w *World, f field, cfg GenConfig, rng *rand.Rand) {
	type rule struct {
		res    Resource
		score  func(elev, moist, fert float64) float64
		amount float64
	}
	rules := []rule{
		{ResourceFood, func(_, _, fert float64) float64 { return fert }, 40},
		{ResourceWater, func(elev, moist, _ float64) float64 { return moist*0.7 + (1-elev)*0.3 }, 60},
		{ResourceWood, func(elev, moist, _ float64) float64 { return moist*0.5 + elev*0.5 }, 50},
		{ResourceStone, func(elev, _, _ float64) float64 { return elev }, 50},
		{ResourceHerbs, func(_, moist, fert float64) float64 { return moist*0.6 + fert*0.4 }, 15},
	}

	for _, r := range rules {
		placedCount := 0
		for attempt := 0; placedCount < cfg.ResourceNodes && attempt < cfg.ResourceNodes*20; attempt++ {
			p := Vec2{X: rng.Float64() * cfg.Width, Y: rng.Float64() * cfg.Height}
			elev, moist, fert := f.at(p)
			if rng.Float64() > r.score(elev, moist, fert) {
				continue
			}
			placedCount++
			w.AddResourceNode(ResourceNode{
				ID:       fmt.Sprintf("%s-node-%d", r.res, placedCount),
				Resource: r.res,
				Position: p,
				Amount:   r.amount,
			})
		}
	}
}

func placeAnimals(w *World, cfg GenConfig, rng *rand.Rand) {
	for i := 0; i < cfg.Prey; i++ {
		w.AddAnimal(Animal{
			ID:       fmt.Sprintf("prey-%d", i+1),
			Kind:     AnimalPrey,
			Position: Vec2{X: rng.Float64() * cfg.Width, Y: rng.Float64() * cfg.Height},
			Power:    2 + rng.Float64()*3,
		})
	}
	for i := 0; i < cfg.Predators; i++ {
		w.AddAnimal(Animal{
			ID:       fmt.Sprintf("predator-%d", i+1),
			Kind:     AnimalPredator,
			Position: Vec2{X: rng.Float64() * cfg.Width, Y: rng.Float64() * cfg.Height},
			Power:    15 + rng.Float64()*15,
		})
	}
}

// placeErrands opens build tasks on random zones and posts quests.
func placeErrands(w *World, cfg GenConfig, rng *rand.Rand) {
	zones := w.Zones()
	if len(zones) == 0 {
		return
	}
	for i := 0; i < cfg.BuildTasks; i++ {
		z := zones[rng.Intn(len(zones))]
		w.AddBuildTask(BuildTask{
			ID:       fmt.Sprintf("build-%d", i+1),
			ZoneID:   z.ID,
			Position: z.Center(),
		})
	}
	for i := 0; i < cfg.Quests; i++ {
		z := zones[rng.Intn(len(zones))]
		w.AddQuest(Quest{
			ID:         fmt.Sprintf("quest-%d", i+1),
			ZoneID:     z.ID,
			Position:   z.Center(),
			Reward:     10 + rng.Float64()*40,
			Difficulty: rng.Float64(),
		})
	}
}

func tooClose(p Vec2, placed []Vec2, minDist float64) bool {
	for _, q := range placed {
		if Distance(p, q) < minDist {
			return true
		}
	}
	return false
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ZoneTypeCounts returns a summary of zone type distribution.
func ZoneTypeCounts(w *World) map[ZoneType]int {
	counts := make(map[ZoneType]int)
	for _, z := range w.Zones() {
		counts[z.Type]++
	}
	return counts
}
