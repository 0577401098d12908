package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/cubefour/internal/sandbox"
)

// WorkerOptions holds the process hooks of the worker command. Nil hooks
// fall back to the command's own writers and no CPU watch, which is what
// in-process tests want.
type WorkerOptions struct {
	*RootOptions

	// Isolate detaches the process stdout and returns the result channel.
	Isolate func() (*os.File, error)
	// WatchCPU installs the SIGXCPU handler.
	WatchCPU func(stderr io.Writer, exit func(int)) (stop func())
	// NewWorker builds the worker from limits read from the environment.
	NewWorker func(sandbox.Limits) *sandbox.Worker
}

// NewWorkerCommand creates the hidden worker command. It is the child
// process the arbiter starts for every move.
func NewWorkerCommand(opts *WorkerOptions) *cobra.Command {
	if opts.NewWorker == nil {
		opts.Isolate = sandbox.IsolateStdout
		opts.WatchCPU = sandbox.WatchCPULimit
		opts.NewWorker = sandbox.NewWorker
	}

	cmd := &cobra.Command{
		Use:    "worker <module>",
		Short:  "Run one module for one move (internal)",
		Hidden: true,
		Long: `Read a board as JSON from stdin, run the module's GetMove and write
{"x":X,"y":Y} to stdout.

Exit codes:
  0 - move written
  1 - fault (bad input, load failure, panic)
  2 - usage
  3 - module rejected by the static gate
  4 - no usable GetMove entry point
  5 - CPU time limit reached`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				return NewExitError(sandbox.ExitUsage, "worker takes a single module locator")
			}
			locator := ""
			if len(args) == 1 {
				locator = args[0]
			}
			return runWorker(opts, cmd, locator)
		},
	}
	return cmd
}

func runWorker(opts *WorkerOptions, cmd *cobra.Command, locator string) error {
	stderr := cmd.ErrOrStderr()
	stdout := cmd.OutOrStdout()

	if opts.WatchCPU != nil {
		stop := opts.WatchCPU(stderr, os.Exit)
		defer stop()
	}
	if opts.Isolate != nil {
		result, err := opts.Isolate()
		if err != nil {
			fmt.Fprintf(stderr, "worker: %v\n", err)
		} else {
			defer result.Close()
			stdout = result
		}
	}

	w := opts.NewWorker(sandbox.LimitsFromEnv(os.Getenv))
	code := w.Run(cmd.Context(), locator, cmd.InOrStdin(), stdout, stderr)
	if code != sandbox.ExitOK {
		return &ExitError{Code: code, Message: fmt.Sprintf("worker exited with code %d", code), Silent: true}
	}
	return nil
}
