//go:build linux

package sandbox

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

// maxOpenFiles leaves room for the Go runtime's own descriptors.
const maxOpenFiles = 32

const rlimInfinity = ^uint64(0)

// ApplyLimits installs the ceilings on the current process. Every ceiling is
// attempted; failures are joined so the caller can log them and carry on.
func ApplyLimits(l Limits) error {
	var errs []error
	if l.MemoryMB > 0 {
		bytes := uint64(l.MemoryMB) * 1024 * 1024
		if err := setrlimit(unix.RLIMIT_AS, bytes, bytes); err != nil {
			errs = append(errs, fmt.Errorf("address space: %w", err))
		}
	}
	if l.CPUSeconds > 0 {
		soft := uint64(l.CPUSeconds)
		// The hard ceiling sits one second above the soft one so SIGXCPU
		// arrives before the kernel's SIGKILL.
		if err := setrlimit(unix.RLIMIT_CPU, soft, soft+1); err != nil {
			errs = append(errs, fmt.Errorf("cpu: %w", err))
		}
	}
	if err := setrlimit(unix.RLIMIT_FSIZE, 0, 0); err != nil {
		errs = append(errs, fmt.Errorf("file size: %w", err))
	}
	if err := setrlimit(unix.RLIMIT_NOFILE, maxOpenFiles, maxOpenFiles); err != nil {
		errs = append(errs, fmt.Errorf("open files: %w", err))
	}
	return errors.Join(errs...)
}

func setrlimit(resource int, soft, hard uint64) error {
	var cur unix.Rlimit
	if err := unix.Getrlimit(resource, &cur); err == nil && cur.Max != rlimInfinity && hard > cur.Max {
		hard = cur.Max
		if soft > hard {
			soft = hard
		}
	}
	return unix.Setrlimit(resource, &unix.Rlimit{Cur: soft, Max: hard})
}

// WatchCPULimit turns SIGXCPU into a clean exit with ExitCPULimit. The Go
// runtime ignores SIGXCPU unless it is explicitly requested. The returned
// function stops the watch.
func WatchCPULimit(stderr io.Writer, exit func(int)) (stop func()) {
	ch := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(ch, unix.SIGXCPU)
	go func() {
		select {
		case <-ch:
			fmt.Fprintln(stderr, "worker: cpu time limit reached")
			exit(ExitCPULimit)
		case <-done:
		}
	}()
	return func() {
		signal.Stop(ch)
		close(done)
	}
}

// IsolateStdout points file descriptor 1 at stderr and returns a private
// handle on the original stdout. Anything the module or interpreter prints
// through the process-level stdout lands on the side channel.
func IsolateStdout() (*os.File, error) {
	stdout := int(os.Stdout.Fd())
	saved, err := unix.FcntlInt(uintptr(stdout), unix.F_DUPFD_CLOEXEC, 3)
	if err != nil {
		return nil, fmt.Errorf("dup stdout: %w", err)
	}
	if err := unix.Dup3(int(os.Stderr.Fd()), stdout, 0); err != nil {
		_ = unix.Close(saved)
		return nil, fmt.Errorf("redirect stdout: %w", err)
	}
	return os.NewFile(uintptr(saved), "result"), nil
}
