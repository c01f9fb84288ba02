// Zone memory: which zones an agent has visited and how its errands there
// went. Read by zone selection as a learned preference signal.
package agents

import "sort"

// ZoneOutcome counts how errands in one zone ended.
type ZoneOutcome struct {
	Successes int `json:"successes"`
	Failures  int `json:"failures"`
}

// Memory is the per-agent learned zone preference.
type Memory struct {
	Visited  map[string]bool         `json:"visited"`
	Outcomes map[string]*ZoneOutcome `json:"outcomes"`
}

// NewMemory returns an empty memory.
func NewMemory() Memory {
	return Memory{
		Visited:  make(map[string]bool),
		Outcomes: make(map[string]*ZoneOutcome),
	}
}

// HasVisited reports whether zoneID was ever visited.
func (m *Memory) HasVisited(zoneID string) bool {
	return m.Visited[zoneID]
}

// Outcome returns the counters for zoneID (zero when unknown).
func (m *Memory) Outcome(zoneID string) ZoneOutcome {
	if o, ok := m.Outcomes[zoneID]; ok {
		return *o
	}
	return ZoneOutcome{}
}

func (m *Memory) visit(zoneID string) {
	if m.Visited == nil {
		m.Visited = make(map[string]bool)
	}
	m.Visited[zoneID] = true
}

func (m *Memory) record(zoneID string, success bool) {
	if m.Outcomes == nil {
		m.Outcomes = make(map[string]*ZoneOutcome)
	}
	o, ok := m.Outcomes[zoneID]
	if !ok {
		o = &ZoneOutcome{}
		m.Outcomes[zoneID] = o
	}
	if success {
		o.Successes++
	} else {
		o.Failures++
	}
}

// VisitedZones returns visited zone ids in sorted order.
func (m *Memory) VisitedZones() []string {
	out := make([]string, 0, len(m.Visited))
	for id := range m.Visited {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// FavoriteZones returns up to count zones ordered by net successes, best first.
func (m *Memory) FavoriteZones(count int) []string {
	type scored struct {
		id  string
		net int
	}
	var all []scored
	for id, o := range m.Outcomes {
		all = append(all, scored{id: id, net: o.Successes - o.Failures})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].net != all[j].net {
			return all[i].net > all[j].net
		}
		return all[i].id < all[j].id
	})
	if count > len(all) {
		count = len(all)
	}
	out := make([]string, count)
	for i := range out {
		out[i] = all[i].id
	}
	return out
}
