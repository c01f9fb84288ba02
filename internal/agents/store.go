package agents

import (
	"sort"
	"time"
)

// Store owns every AIState. Only the planning subsystem mutates it, and only
// through the explicit memory-update calls below.
type Store struct {
	states map[AgentID]*AIState
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{states: make(map[AgentID]*AIState)}
}

// Add registers st, replacing any previous state for the same id.
func (s *Store) Add(st *AIState) {
	s.states[st.ID] = st
}

// Get returns the state for id.
func (s *Store) Get(id AgentID) (*AIState, bool) {
	st, ok := s.states[id]
	return st, ok
}

// Remove forgets id.
func (s *Store) Remove(id AgentID) {
	delete(s.states, id)
}

// Len returns the number of tracked agents.
func (s *Store) Len() int {
	return len(s.states)
}

// IDs returns all agent ids in ascending order.
func (s *Store) IDs() []AgentID {
	ids := make([]AgentID, 0, len(s.states))
	for id := range s.states {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// RecordVisit marks zoneID as visited by id. Returns false for unknown agents.
func (s *Store) RecordVisit(id AgentID, zoneID string) bool {
	st, ok := s.states[id]
	if !ok {
		return false
	}
	st.Memory.visit(zoneID)
	return true
}

// RecordOutcome counts a success or failure in zoneID for id.
func (s *Store) RecordOutcome(id AgentID, zoneID string, success bool) bool {
	st, ok := s.states[id]
	if !ok {
		return false
	}
	st.Memory.record(zoneID, success)
	return true
}

// Commit replaces the agent's committed goal. An agent holds at most one.
func (s *Store) Commit(id AgentID, goalID, goalType string, expiresAt time.Time) bool {
	st, ok := s.states[id]
	if !ok {
		return false
	}
	st.Current = &Commitment{GoalID: goalID, GoalType: goalType, ExpiresAt: expiresAt}
	return true
}

// Release clears the committed goal.
func (s *Store) Release(id AgentID) {
	if st, ok := s.states[id]; ok {
		st.Current = nil
	}
}
