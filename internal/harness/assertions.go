package harness

import (
	"fmt"

	"github.com/roach88/cubefour/internal/rules"
)

// checkAssertion returns one message per mismatch.
func checkAssertion(a Assertion, r *Result) []string {
	switch a.Type {
	case AssertFinalState:
		return checkFinalState(a, r)
	case AssertWinningLine:
		return checkWinningLine(a, r)
	case AssertStatusCount:
		return checkStatusCount(a, r)
	case AssertCell:
		return checkCell(a, r)
	default:
		return []string{fmt.Sprintf("unknown assertion type %q", a.Type)}
	}
}

func checkFinalState(a Assertion, r *Result) []string {
	var msgs []string
	f := r.Trace.Final
	if a.State != "" && string(f.State) != a.State {
		msgs = append(msgs, fmt.Sprintf("state: expected %s, got %s", a.State, f.State))
	}
	if a.Winner != "" && f.Winner.String() != a.Winner {
		msgs = append(msgs, fmt.Sprintf("winner: expected %s, got %s", a.Winner, f.Winner))
	}
	if a.MoveCount != nil && f.MoveCount != *a.MoveCount {
		msgs = append(msgs, fmt.Sprintf("move_count: expected %d, got %d", *a.MoveCount, f.MoveCount))
	}
	if a.CurrentPlayer != "" && f.CurrentPlayer.String() != a.CurrentPlayer {
		msgs = append(msgs, fmt.Sprintf("current_player: expected %s, got %s", a.CurrentPlayer, f.CurrentPlayer))
	}
	return msgs
}

func checkWinningLine(a Assertion, r *Result) []string {
	got := r.Trace.Final.WinningLine
	if len(got) == 0 {
		return []string{"no winning line recorded"}
	}
	if len(got) != len(a.Line) {
		return []string{fmt.Sprintf("expected %d cells, got %d", len(a.Line), len(got))}
	}
	for i, c := range a.Line {
		want := rules.Position{X: c[0], Y: c[1], Z: c[2]}
		if got[i] != want {
			return []string{fmt.Sprintf("cell %d: expected %s, got %s", i, want, got[i])}
		}
	}
	return nil
}

func checkStatusCount(a Assertion, r *Result) []string {
	n := 0
	for _, e := range r.Trace.Events {
		if string(e.Status) == a.Status {
			n++
		}
	}
	if n != a.Count {
		return []string{fmt.Sprintf("status %s: expected %d, got %d", a.Status, a.Count, n)}
	}
	return nil
}

func checkCell(a Assertion, r *Result) []string {
	pos := rules.Position{X: a.At[0], Y: a.At[1], Z: a.At[2]}
	if !pos.InBounds() {
		return []string{fmt.Sprintf("cell %s is outside the board", pos)}
	}
	if got := r.Board.At(pos).String(); got != a.Player {
		return []string{fmt.Sprintf("cell %s: expected %s, got %s", pos, a.Player, got)}
	}
	return nil
}
