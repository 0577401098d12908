package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/cubefour/internal/sandbox"
)

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <module>",
		Short: "Statically check a participant module",
		Long: `Parse a participant module, run the import and call gate, and look for
a GetMove entry point. Nothing in the module is executed.

Exit codes:
  0 - module would be accepted
  1 - gate violations or no entry point
  2 - module not found

Examples:
  cubefour check ./bots/greedy.go
  cubefour check ./bots/minimax --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, cmd, args[0])
		},
	}
	return cmd
}

func runCheck(opts *RootOptions, cmd *cobra.Command, locator string) error {
	f := opts.formatter(cmd)

	report, err := sandbox.Check(locator, nil)
	if errors.Is(err, sandbox.ErrModuleNotFound) {
		return WrapExitError(ExitCommandError, "module not found", err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "check failed", err)
	}

	if report.OK() {
		if f.JSON() {
			return f.Success(report)
		}
		return f.Success(fmt.Sprintf("✓ %s (package %s, entry %s)", report.Module, report.Package, report.Entry))
	}

	msg := fmt.Sprintf("%d problem(s) in %s", len(report.Problems), report.Module)
	if f.JSON() {
		if err := f.Failure(CodeCheckFailed, msg, report); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(f.Writer, "✗ %s\n", report.Module)
		for _, p := range report.Problems {
			fmt.Fprintf(f.Writer, "  %s\n", p)
		}
	}
	return &ExitError{Code: ExitFailure, Message: msg, Silent: true}
}
