package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/cubefour/internal/arbiter"
	"github.com/roach88/cubefour/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // optional CUE config file
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the cubefour CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "cubefour",
		Short: "cubefour - 4x4x4 four-in-a-row arbiter",
		Long: `Referee 4x4x4 gravity four-in-a-row games between untrusted Go modules.

Participant modules expose GetMove(board [][][]int) (x, y int), either as a
function or as a method on MyAI. Each move runs in a fresh, resource-limited
worker process.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "path to a CUE config file")

	cmd.AddCommand(NewWorkerCommand(&WorkerOptions{RootOptions: opts}))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewPlayCommand(opts))
	cmd.AddCommand(NewParticipantCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// formatter returns an OutputFormatter bound to cmd's writers.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// logger returns a text logger on w at Info, or Debug with --verbose.
func (o *RootOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads --config, or the defaults when it is unset.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	return cfg, nil
}

// newRunner builds the worker runner from cfg. Without a configured worker
// command this executable is re-run as "cubefour worker".
func newRunner(cfg *config.Config, logger *slog.Logger) (*arbiter.Runner, error) {
	command := cfg.WorkerCommand
	if len(command) == 0 {
		exe, err := os.Executable()
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "cannot locate cubefour executable", err)
		}
		command = []string{exe, "worker"}
	}
	logger.Debug("worker command", "command", strings.Join(command, " "))
	return &arbiter.Runner{
		Command: command,
		Env:     cfg.WorkerEnv,
		Limits:  cfg.Limits,
		Logger:  logger,
	}, nil
}
