package harness

import (
	"fmt"

	"github.com/roach88/cubefour/internal/game"
)

// Run replays s on a fresh game and evaluates its assertions.
//
// The returned error is reserved for scenarios that cannot be executed at
// all; failed expectations are reported in Result.Errors.
func Run(s *Scenario) (*Result, error) {
	if s == nil {
		return nil, fmt.Errorf("nil scenario")
	}
	if err := validateScenario(s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	result := NewResult()
	g := game.New()

	for i, mv := range s.Moves {
		mover := g.CurrentPlayer()
		out := g.Apply(mv.X, mv.Y)
		result.Trace.Events = append(result.Trace.Events, TraceEvent{
			Seq:    i + 1,
			Player: mover,
			X:      mv.X,
			Y:      mv.Y,
			Status: out.Status,
		})
		if mv.Expect != "" && string(out.Status) != mv.Expect {
			result.AddError(fmt.Sprintf("moves[%d] (%d,%d): expected status %q, got %q",
				i, mv.X, mv.Y, mv.Expect, out.Status))
		}
	}

	result.Trace.Final = g.Snapshot()
	result.Board = g.Board()

	for i, a := range s.Assertions {
		for _, msg := range checkAssertion(a, result) {
			result.AddError(fmt.Sprintf("assertions[%d] %s: %s", i, a.Type, msg))
		}
	}
	return result, nil
}
