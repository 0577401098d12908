package game

import (
	"github.com/roach88/cubefour/internal/rules"
)

// State is the lifecycle state of a match.
type State string

const (
	StateInProgress State = "in_progress"
	StateWon        State = "won"
	StateDraw       State = "draw"
)

// Terminal reports whether no further move can change the game.
func (s State) Terminal() bool {
	return s == StateWon || s == StateDraw
}

// Game is one match.
type Game struct {
	board     rules.Board
	current   rules.Player
	moveCount int
	state     State
	winner    rules.Player
	line      *rules.Line
}

// New returns a fresh match with PlayerA to move.
func New() *Game {
	return &Game{
		board:   rules.NewBoard(),
		current: rules.PlayerA,
		state:   StateInProgress,
	}
}

// Board returns a snapshot of the board.
func (g *Game) Board() rules.Board { return g.board }

// CurrentPlayer returns the player to move, or the winner once the game is won.
func (g *Game) CurrentPlayer() rules.Player { return g.current }

// MoveCount returns the number of disks placed.
func (g *Game) MoveCount() int { return g.moveCount }

// State returns the lifecycle state.
func (g *Game) State() State { return g.state }

// Winner returns the winning player, or rules.Empty.
func (g *Game) Winner() rules.Player { return g.winner }

// WinningLine returns the recorded winning line, if any.
func (g *Game) WinningLine() (rules.Line, bool) {
	if g.line == nil {
		return rules.Line{}, false
	}
	return *g.line, true
}

// Apply drops a disk for the current player into column (x, y).
//
// Order of checks:
//  1. terminal game: no mutation, StatusFinished
//  2. column full or out of range: no mutation, StatusInvalid
//  3. winning line for the mover, re-validated against the current board: StatusWin
//  4. board full: StatusDraw
//  5. otherwise the turn passes: StatusOK
func (g *Game) Apply(x, y int) Outcome {
	if g.state.Terminal() {
		return g.outcome(StatusFinished, x, y)
	}

	mover := g.current
	if _, ok := g.board.Drop(x, y, mover); !ok {
		return g.outcome(StatusInvalid, x, y)
	}
	g.moveCount++

	if line, ok := rules.CheckWin(g.board, mover); ok && g.confirmLine(mover, line) {
		g.state = StateWon
		g.winner = mover
		g.line = &line
		return g.outcome(StatusWin, x, y)
	}

	if g.board.IsFull() {
		g.state = StateDraw
		return g.outcome(StatusDraw, x, y)
	}

	g.current = mover.Other()
	return g.outcome(StatusOK, x, y)
}

// confirmLine re-reads every coordinate of line from the board. A win is only
// recorded when all four are in bounds and hold p.
func (g *Game) confirmLine(p rules.Player, line rules.Line) bool {
	for _, pos := range line {
		if pos.X < 0 || pos.X >= rules.Size || pos.Y < 0 || pos.Y >= rules.Size || pos.Z < 0 || pos.Z >= rules.Size {
			return false
		}
		if g.board.At(pos) != p {
			return false
		}
	}
	return true
}

// ForceDraw ends an in-progress game as a draw without placing a disk. It is
// the resolution for a move request on a board with no open column; (x, y) is
// only reported back, nothing is written there. A terminal game is left
// untouched and reported as finished.
func (g *Game) ForceDraw(x, y int) Outcome {
	if g.state.Terminal() {
		return g.outcome(StatusFinished, x, y)
	}
	g.state = StateDraw
	return g.outcome(StatusDraw, x, y)
}

// Finished is the outcome reported to a move request that arrives after the
// game ended. It carries no last move.
func (g *Game) Finished() Outcome {
	out := g.outcome(StatusFinished, 0, 0)
	out.LastMove = nil
	return out
}

func (g *Game) outcome(status Status, x, y int) Outcome {
	out := Outcome{
		Status:        status,
		Board:         g.board.Grid(),
		CurrentPlayer: g.current,
		MoveCount:     g.moveCount,
		GameOver:      g.state.Terminal(),
		LastMove:      &Move{X: x, Y: y},
	}
	if g.state == StateWon {
		out.Winner = g.winner
		out.WinningLine = lineSlice(g.line)
	}
	return out
}

// Snapshot returns the externally visible state.
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		Board:         g.board.Grid(),
		CurrentPlayer: g.current,
		MoveCount:     g.moveCount,
		State:         g.state,
		GameOver:      g.state.Terminal(),
	}
	if g.state == StateWon {
		s.Winner = g.winner
		s.WinningLine = lineSlice(g.line)
	}
	return s
}

func lineSlice(l *rules.Line) []rules.Position {
	if l == nil {
		return nil
	}
	out := make([]rules.Position, len(l))
	copy(out, l[:])
	return out
}
