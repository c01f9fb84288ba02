package engine

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/dustin/go-humanize"

	"github.com/talgya/needsim/internal/agents"
	"github.com/talgya/needsim/internal/needs"
)

// Averages holds mean need values across a needs snapshot.
type Averages map[needs.NeedType]float64

// AverageNeeds averages every need over snap. An empty snapshot yields an
// empty map.
func AverageNeeds(snap map[agents.AgentID]needs.EntityNeeds) Averages {
	out := make(Averages, needs.NumNeeds)
	if len(snap) == 0 {
		return out
	}
	for _, n := range snap {
		for _, need := range needs.All {
			v, _ := n.Get(need)
			out[need] += v
		}
	}
	for k := range out {
		out[k] /= float64(len(snap))
	}
	return out
}

// Report logs the daily summary and returns the averages it logged.
func (s *Simulation) Report(tick uint64) Averages {
	avg := AverageNeeds(s.Needs.Snapshot())

	slog.Info("daily report",
		"tick", humanize.Comma(int64(tick)),
		"time", SimTime(s.Clock.Start(), s.Clock.Now()),
		"alive", s.Stats.Population,
		"deaths", s.Stats.Deaths,
		"respawns", s.Stats.Respawns,
		"removed", s.Stats.Removed,
		"critical", s.Stats.Critical,
		"decisions", humanize.Comma(int64(s.Stats.Decisions)),
		"avg_hunger", fmt.Sprintf("%.1f", avg[needs.Hunger]),
		"avg_thirst", fmt.Sprintf("%.1f", avg[needs.Thirst]),
		"avg_energy", fmt.Sprintf("%.1f", avg[needs.Energy]),
		"avg_mental", fmt.Sprintf("%.1f", avg[needs.MentalHealth]),
	)

	for _, t := range slices.Sorted(maps.Keys(s.Stats.GoalTypes)) {
		slog.Info("goal mix", "type", t, "count", humanize.Comma(int64(s.Stats.GoalTypes[t])))
	}
	for _, c := range slices.Sorted(maps.Keys(s.Stats.Causes)) {
		slog.Info("deaths by cause", "cause", c, "count", s.Stats.Causes[c])
	}
	return avg
}
