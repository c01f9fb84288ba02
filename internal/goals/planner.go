package goals

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/talgya/needsim/internal/agents"
)

// Evaluator proposes goals for one behavioral domain.
type Evaluator interface {
	Name() string
	// Ready reports whether the collaborators the evaluator reads are wired.
	Ready(c *Context) bool
	Evaluate(c *Context, st *agents.AIState) ([]AIGoal, error)
}

// Planner runs evaluators with fault isolation.
type Planner struct {
	evaluators []Evaluator
	failures   map[string]int
}

// NewPlanner creates a planner over evs, run in order.
func NewPlanner(evs ...Evaluator) *Planner {
	return &Planner{
		evaluators: evs,
		failures:   make(map[string]int),
	}
}

// DefaultEvaluators returns every built-in evaluator.
func DefaultEvaluators() []Evaluator {
	return []Evaluator{
		NeedsEvaluator{},
		CombatEvaluator{},
		AssistEvaluator{},
		SocialEvaluator{},
		ConstructionEvaluator{},
		DepositEvaluator{},
		CraftingEvaluator{},
		QuestEvaluator{},
		TradeEvaluator{},
		AttentionEvaluator{},
	}
}

// Evaluators returns the names of the registered evaluators.
func (p *Planner) Evaluators() []string {
	out := make([]string, len(p.evaluators))
	for i, ev := range p.evaluators {
		out[i] = ev.Name()
	}
	return out
}

// Collect runs every ready evaluator for st and returns the union of their
// goals. A failing or panicking evaluator is logged and contributes nothing.
func (p *Planner) Collect(c *Context, st *agents.AIState) []AIGoal {
	var out []AIGoal
	for _, ev := range p.evaluators {
		if !ev.Ready(c) {
			continue
		}
		gs, err := evaluate(ev, c, st)
		if err != nil {
			p.failures[ev.Name()]++
			slog.Warn("evaluator failed", "agent", st.ID, "evaluator", ev.Name(), "error", err)
			continue
		}
		out = append(out, gs...)
	}
	return out
}

// Failures returns the per-evaluator failure counts since creation.
func (p *Planner) Failures() map[string]int {
	out := make(map[string]int, len(p.failures))
	for k, v := range p.failures {
		out[k] = v
	}
	return out
}

func evaluate(ev Evaluator, c *Context, st *agents.AIState) (gs []AIGoal, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("evaluator panic", "evaluator", ev.Name(), "stack", string(debug.Stack()))
			gs, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	return ev.Evaluate(c, st)
}
