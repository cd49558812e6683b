package agent

import "github.com/jllopis/topomind/pkg/core"

// defaultMaxRecent bounds the short-term result history.
const defaultMaxRecent = 5

// State is the mutable runtime state of one agent session. It tracks
// short-term execution context only; long-term knowledge belongs to the
// memory graph.
type State struct {
	turnCount     int
	lastInput     string
	lastPlan      core.Plan
	hasPlan       bool
	lastCall      core.ToolCall
	lastResult    core.ToolResult
	hasResult     bool
	recentResults []core.ToolResult
	maxRecent     int
}

// NewState creates session state with the default history bound.
func NewState() *State {
	return &State{maxRecent: defaultMaxRecent}
}

// NewTurn advances the session turn and stores the latest user input.
func (s *State) NewTurn(input string) {
	s.turnCount++
	s.lastInput = input
}

// RecordPlan stores the last generated plan.
func (s *State) RecordPlan(plan core.Plan) {
	s.lastPlan = plan
	s.hasPlan = true
}

// RecordExecution stores execution details and maintains bounded history.
// The history is rebuilt rather than shifted in place so previously returned
// slices stay valid.
func (s *State) RecordExecution(call core.ToolCall, result core.ToolResult) {
	s.lastCall = call
	s.lastResult = result
	s.hasResult = true

	history := append(append([]core.ToolResult(nil), s.recentResults...), result)
	if len(history) > s.maxRecent {
		history = history[len(history)-s.maxRecent:]
	}
	s.recentResults = history
}

// TurnCount returns the number of turns processed in this session.
func (s *State) TurnCount() int { return s.turnCount }

// LastInput returns the most recent user input.
func (s *State) LastInput() string { return s.lastInput }

// LastPlan returns the last generated plan; ok is false before any turn
// reached planning.
func (s *State) LastPlan() (core.Plan, bool) { return s.lastPlan, s.hasPlan }

// LastResult returns the last tool execution result; ok is false before any
// tool ran.
func (s *State) LastResult() (core.ToolResult, bool) { return s.lastResult, s.hasResult }

// LastCall returns the last tool call issued.
func (s *State) LastCall() core.ToolCall { return s.lastCall }

// RecentResults returns a copy of the bounded result history, oldest first.
func (s *State) RecentResults() []core.ToolResult {
	return append([]core.ToolResult(nil), s.recentResults...)
}
