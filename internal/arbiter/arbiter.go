package arbiter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/roach88/cubefour/internal/game"
	"github.com/roach88/cubefour/internal/rules"
)

// DefaultTimeout is the wall-clock budget of one move request.
const DefaultTimeout = 30 * time.Second

// Mode selects how Submit treats a failed move request.
type Mode string

const (
	// ModePermissive absorbs failures with a fallback placement.
	ModePermissive Mode = "permissive"

	// ModeStrict surfaces failures to the caller as *FailureError.
	ModeStrict Mode = "strict"
)

// ParseMode accepts "permissive" or "strict", case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModePermissive:
		return ModePermissive, nil
	case ModeStrict:
		return ModeStrict, nil
	default:
		return "", fmt.Errorf("unknown arbiter mode %q (want permissive or strict)", s)
	}
}

// Result is the outcome of Submit. Fallback and Reason are set only when the
// placement was forced.
type Result struct {
	game.Outcome
	Fallback *Kind  `json:"fallback,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Arbiter runs participant modules through a Runner and applies their moves.
//
// An Arbiter holds no game state; callers serialise access to each game.
type Arbiter struct {
	runner *Runner
	mode   Mode
	logger *slog.Logger
}

// Option configures an Arbiter.
type Option func(*Arbiter)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(a *Arbiter) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithMode sets the failure mode. Default: ModePermissive.
func WithMode(m Mode) Option {
	return func(a *Arbiter) {
		a.mode = m
	}
}

// New returns an Arbiter that launches modules with runner.
func New(runner *Runner, opts ...Option) *Arbiter {
	a := &Arbiter{
		runner: runner,
		mode:   ModePermissive,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.runner.Logger == nil {
		a.runner.Logger = a.logger
	}
	return a
}

// Mode returns the configured failure mode.
func (a *Arbiter) Mode() Mode { return a.mode }

// Request runs module once against board and returns its move.
//
// The move is range-checked but not checked against column capacity. A
// failure is returned as *FailureError. If ctx ends before the module
// answers, ctx.Err() is returned instead. A non-positive timeout means
// DefaultTimeout.
func (a *Arbiter) Request(ctx context.Context, module string, board rules.Board, timeout time.Duration) (game.Move, error) {
	if err := ctx.Err(); err != nil {
		return game.Move{}, err
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if strings.TrimSpace(module) == "" {
		return game.Move{}, &FailureError{Kind: AbnormalExit, Module: module}
	}

	input, err := json.Marshal(board.Grid())
	if err != nil {
		return game.Move{}, fmt.Errorf("encode board: %w", err)
	}

	ex := a.runner.Run(ctx, module, input, timeout)
	if ex.Canceled {
		return game.Move{}, ctx.Err()
	}

	v := classify(ex, a.runner.Limits.CPUSeconds)
	if v.failed {
		a.logger.Info("move request failed",
			"module", module,
			"kind", v.kind,
			"detail", v.detail,
		)
		return game.Move{}, &FailureError{Kind: v.kind, Module: module, X: v.x, Y: v.y}
	}
	return v.move, nil
}

// Submit asks module for the current player's move and applies it to g.
//
// A terminal game is reported as finished without running the module. In
// permissive mode every failure ends in a legal placement (see Resolve). In
// strict mode failures, including a move into a full column, are returned as
// *FailureError and g is left untouched. Caller cancellation returns
// ctx.Err() and leaves g untouched in both modes.
func (a *Arbiter) Submit(ctx context.Context, g *game.Game, module string, timeout time.Duration) (Result, error) {
	if g.State().Terminal() {
		return Result{Outcome: g.Finished()}, nil
	}

	mv, err := a.Request(ctx, module, g.Board(), timeout)
	if err != nil {
		kind, ok := KindOf(err)
		if !ok || a.mode == ModeStrict {
			return Result{}, err
		}
		return Resolve(g, kind), nil
	}

	if !g.Board().ColumnOpen(mv.X, mv.Y) {
		a.logger.Info("move into full column", "module", module, "x", mv.X, "y", mv.Y)
		if a.mode == ModeStrict {
			return Result{}, &FailureError{Kind: InvalidMove, Module: module, X: mv.X, Y: mv.Y}
		}
		return Resolve(g, InvalidMove), nil
	}

	return Result{Outcome: g.Apply(mv.X, mv.Y)}, nil
}

// Resolve forces a legal placement for the current player after a failure
// of the given kind. The first open column in Fallback order is played; a
// board with no open column ends the game as a draw reported at (0, 0).
func Resolve(g *game.Game, kind Kind) Result {
	if g.State().Terminal() {
		return Result{Outcome: g.Finished()}
	}
	k := kind
	x, y, ok := Fallback(g.Board())
	if !ok {
		return Result{Outcome: g.ForceDraw(0, 0), Fallback: &k, Reason: Reason(k, 0, 0)}
	}
	return Result{Outcome: g.Apply(x, y), Fallback: &k, Reason: Reason(k, x, y)}
}
