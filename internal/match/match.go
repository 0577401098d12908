// Package match drives participant-versus-participant play one placement
// at a time.
package match

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/roach88/cubefour/internal/arbiter"
	"github.com/roach88/cubefour/internal/game"
	"github.com/roach88/cubefour/internal/rules"
)

// MaxSteps bounds Run: one step per cell plus the step that observes the end.
const MaxSteps = rules.Size*rules.Size*rules.Size + 1

// Players holds the module locators for PlayerA and PlayerB, in that order.
type Players [2]string

// For returns the locator of p.
func (ps Players) For(p rules.Player) string {
	switch p {
	case rules.PlayerA:
		return ps[0]
	case rules.PlayerB:
		return ps[1]
	default:
		return ""
	}
}

// Stepper advances a game by one placement per call. Failures never stop
// the game: the stepper resolves them with a forced placement.
type Stepper struct {
	Arbiter *arbiter.Arbiter
	Timeout time.Duration
	Logger  *slog.Logger
}

// Step plays one placement for the current player of g.
//
// The current player's module is asked for a move. A typed failure (or an
// empty locator, treated as AbnormalExit) becomes a forced placement with
// the matching reason. Only caller cancellation and infrastructure errors
// are returned.
func (s *Stepper) Step(ctx context.Context, g *game.Game, players Players) (arbiter.Result, error) {
	if g.State().Terminal() {
		return arbiter.Result{Outcome: g.Finished()}, nil
	}

	mover := g.CurrentPlayer()
	module := players.For(mover)
	if strings.TrimSpace(module) == "" {
		s.logger().Info("no module for player", "player", mover)
		return arbiter.Resolve(g, arbiter.AbnormalExit), nil
	}

	res, err := s.Arbiter.Submit(ctx, g, module, s.Timeout)
	if err == nil {
		return res, nil
	}
	kind, ok := arbiter.KindOf(err)
	if !ok {
		return arbiter.Result{}, err
	}
	s.logger().Info("forcing placement", "player", mover, "module", module, "kind", kind)
	return arbiter.Resolve(g, kind), nil
}

// Ply is one recorded step of a match.
type Ply struct {
	Number   int           `json:"ply"`
	Player   rules.Player  `json:"player"`
	Module   string        `json:"module"`
	X        int           `json:"x"`
	Y        int           `json:"y"`
	Status   game.Status   `json:"status"`
	Fallback *arbiter.Kind `json:"fallback,omitempty"`
	Reason   string        `json:"reason,omitempty"`
}

// Summary is the result of a completed match.
type Summary struct {
	State     game.State       `json:"state"`
	Winner    rules.Player     `json:"winner,omitempty"`
	MoveCount int              `json:"move_count"`
	Line      []rules.Position `json:"winning_line,omitempty"`
	Plies     []Ply            `json:"plies"`
	Fallbacks int              `json:"fallbacks"`
}

// Run steps g until it is terminal.
func (s *Stepper) Run(ctx context.Context, g *game.Game, players Players) (Summary, error) {
	var sum Summary
	for i := 0; i < MaxSteps && !g.State().Terminal(); i++ {
		mover := g.CurrentPlayer()
		res, err := s.Step(ctx, g, players)
		if err != nil {
			return sum, fmt.Errorf("ply %d: %w", i+1, err)
		}

		ply := Ply{
			Number:   i + 1,
			Player:   mover,
			Module:   players.For(mover),
			Status:   res.Status,
			Fallback: res.Fallback,
			Reason:   res.Reason,
		}
		if res.LastMove != nil {
			ply.X, ply.Y = res.LastMove.X, res.LastMove.Y
		}
		if res.Fallback != nil {
			sum.Fallbacks++
		}
		sum.Plies = append(sum.Plies, ply)

		s.logger().Debug("ply",
			"n", ply.Number,
			"player", ply.Player,
			"x", ply.X,
			"y", ply.Y,
			"status", ply.Status,
			"reason", ply.Reason,
		)
	}

	if !g.State().Terminal() {
		return sum, fmt.Errorf("match did not finish within %d steps", MaxSteps)
	}

	snap := g.Snapshot()
	sum.State = snap.State
	sum.Winner = snap.Winner
	sum.MoveCount = snap.MoveCount
	sum.Line = snap.WinningLine
	s.logger().Info("match finished",
		"state", sum.State,
		"winner", sum.Winner,
		"moves", sum.MoveCount,
		"fallbacks", sum.Fallbacks,
	)
	return sum, nil
}

func (s *Stepper) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
