//go:build !linux

package sandbox

import (
	"io"
	"os"
)

// ApplyLimits is unsupported off Linux; the wall-clock timeout in the
// arbiter remains the only ceiling.
func ApplyLimits(Limits) error {
	return ErrLimitsUnsupported
}

// WatchCPULimit is a no-op off Linux.
func WatchCPULimit(io.Writer, func(int)) (stop func()) {
	return func() {}
}

// IsolateStdout returns the process stdout unchanged off Linux.
func IsolateStdout() (*os.File, error) {
	return os.Stdout, nil
}
