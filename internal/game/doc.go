// Package game holds the state machine for a single match.
//
// A Game starts InProgress with PlayerA to move and ends in Won or Draw.
// Terminal states have no transitions out: Apply on a finished game is a
// no-op reporting StatusFinished. Rule violations are reported as statuses,
// never as errors, so callers always branch on Outcome.Status.
//
// A Game is not safe for concurrent use. Callers serialise access to a given
// game (see internal/registry).
package game
