package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/cubefour/internal/arbiter"
	"github.com/roach88/cubefour/internal/game"
	"github.com/roach88/cubefour/internal/match"
	"github.com/roach88/cubefour/internal/roster"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	Timeout  float64 // seconds per move; 0 uses the config
	Database string  // roster used to resolve participant names
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play <player-a> <player-b>",
		Short: "Play a full match between two modules",
		Long: `Play a complete match. Player A moves first. A module that times out,
crashes or returns an unplayable move forfeits that placement: the first open
column in row-major order is played for it instead.

Players are module locators, or participant ids or names when a roster
database is configured.

Examples:
  cubefour play ./bots/greedy.go ./bots/random.go
  cubefour play greedy random --db roster.db --timeout 5
  cubefour play ./a.go ./b.go --format json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(opts, cmd, match.Players{args[0], args[1]})
		},
	}

	cmd.Flags().Float64Var(&opts.Timeout, "timeout", 0, "seconds allowed per move (default from config)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "participant roster database")

	return cmd
}

func runPlay(opts *PlayOptions, cmd *cobra.Command, players match.Players) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	logger := opts.logger(cmd.ErrOrStderr())
	f := opts.formatter(cmd)

	timeout := cfg.Timeout
	if opts.Timeout < 0 {
		return NewExitError(ExitCommandError, "--timeout must not be negative")
	}
	if opts.Timeout > 0 {
		timeout = time.Duration(opts.Timeout * float64(time.Second))
	}

	dbPath := opts.Database
	if dbPath == "" {
		dbPath = cfg.RosterDB
	}
	if dbPath != "" {
		ros, err := roster.Open(dbPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open roster", err)
		}
		defer ros.Close()
		for i, ref := range players {
			if p, err := ros.Resolve(cmd.Context(), ref); err == nil {
				f.VerboseLog("player %s: %s -> %s", playerLabel(i), ref, p.Path)
				players[i] = p.Path
			}
		}
	}

	runner, err := newRunner(cfg, logger)
	if err != nil {
		return err
	}
	stepper := &match.Stepper{
		Arbiter: arbiter.New(runner, arbiter.WithMode(arbiter.ModeStrict), arbiter.WithLogger(logger)),
		Timeout: timeout,
		Logger:  logger,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sum, err := stepper.Run(ctx, game.New(), players)
	if err != nil {
		return WrapExitError(ExitFailure, "match aborted", err)
	}

	if f.JSON() {
		return f.Success(sum)
	}
	writeSummaryText(f, sum)
	return nil
}

func playerLabel(i int) string {
	if i == 0 {
		return "A"
	}
	return "B"
}

func writeSummaryText(f *OutputFormatter, sum match.Summary) {
	w := f.Writer
	for _, p := range sum.Plies {
		fmt.Fprintf(w, "%02d %s (%d,%d) %s", p.Number, p.Player, p.X, p.Y, p.Status)
		if p.Fallback != nil {
			fmt.Fprintf(w, "  [%s] %s", *p.Fallback, p.Reason)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)
	switch sum.State {
	case game.StateWon:
		fmt.Fprintf(w, "Result: %s wins in %d moves", sum.Winner, sum.MoveCount)
		if len(sum.Line) > 0 {
			fmt.Fprint(w, ", line ")
			for _, pos := range sum.Line {
				fmt.Fprint(w, pos)
			}
		}
		fmt.Fprintln(w)
	case game.StateDraw:
		fmt.Fprintf(w, "Result: draw after %d moves\n", sum.MoveCount)
	default:
		fmt.Fprintf(w, "Result: unfinished after %d moves\n", sum.MoveCount)
	}
	if sum.Fallbacks > 0 {
		fmt.Fprintf(w, "Forced placements: %d\n", sum.Fallbacks)
	}
}
