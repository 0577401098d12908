package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/cubefour/internal/game"
	"github.com/roach88/cubefour/internal/rules"
)

// TraceEvent is one applied move.
type TraceEvent struct {
	Seq    int          `json:"seq"`
	Player rules.Player `json:"player"`
	X      int          `json:"x"`
	Y      int          `json:"y"`
	Status game.Status  `json:"status"`
}

// Trace is the ordered record of a replay plus its end position.
type Trace struct {
	Events []TraceEvent  `json:"events"`
	Final  game.Snapshot `json:"final"`
}

// Text renders the trace deterministically: one line per move, then a
// summary line.
//
//	01 A (1,1) ok
//	...
//	final state=won winner=A moves=7 current=A line=(1,1,0)(1,1,1)(1,1,2)(1,1,3)
func (t Trace) Text() string {
	var sb strings.Builder
	for _, e := range t.Events {
		fmt.Fprintf(&sb, "%02d %s (%d,%d) %s\n", e.Seq, e.Player, e.X, e.Y, e.Status)
	}
	f := t.Final
	fmt.Fprintf(&sb, "final state=%s winner=%s moves=%d current=%s",
		f.State, f.Winner, f.MoveCount, f.CurrentPlayer)
	if len(f.WinningLine) > 0 {
		sb.WriteString(" line=")
		for _, p := range f.WinningLine {
			sb.WriteString(p.String())
		}
	}
	sb.WriteByte('\n')
	return sb.String()
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every move expectation and assertion held.
	Pass bool `json:"pass"`

	Trace Trace `json:"trace"`

	// Errors contains validation error messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Board is the end position, for cell assertions.
	Board rules.Board `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
