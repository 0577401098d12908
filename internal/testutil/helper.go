package testutil

import (
	"io"
	"log/slog"
	"os"
)

// HelperEnvVar marks a test binary re-executed as a worker stand-in.
const HelperEnvVar = "GO_WANT_HELPER_PROCESS"

// HelperCommand re-runs the current test binary limited to the package's
// TestHelperProcess. The module locator is appended after "--".
func HelperCommand() []string {
	return []string{os.Args[0], "-test.run=^TestHelperProcess$", "--"}
}

// HelperEnv is the environment that switches TestHelperProcess on.
func HelperEnv() []string {
	return []string{HelperEnvVar + "=1"}
}

// IsHelperProcess reports whether this process was started by
// HelperCommand.
func IsHelperProcess() bool {
	return os.Getenv(HelperEnvVar) == "1"
}

// HelperArgs returns the arguments after "--", or nil.
func HelperArgs() []string {
	for i, a := range os.Args {
		if a == "--" {
			return os.Args[i+1:]
		}
	}
	return nil
}

// QuietLogger discards everything.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
