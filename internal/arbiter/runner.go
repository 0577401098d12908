package arbiter

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"time"

	"github.com/roach88/cubefour/internal/sandbox"
)

const (
	// DefaultMaxOutput bounds each captured stream of the child.
	DefaultMaxOutput = 64 << 10

	// DefaultWaitDelay bounds how long Wait blocks on the child's pipes
	// after the process is gone or killed.
	DefaultWaitDelay = 2 * time.Second
)

// Runner launches one worker process per move request.
//
// The child runs Command with the module locator appended, in its own process
// group, with an environment made only of Env and the limit variables.
type Runner struct {
	// Command is the worker executable and its leading arguments.
	Command []string

	// Env is passed to the child verbatim. The parent environment is not
	// inherited.
	Env []string

	// Limits are forwarded to the worker through its environment and used
	// to recognise CPU-limit kills.
	Limits sandbox.Limits

	// MaxOutput bounds stdout and stderr capture. Zero means DefaultMaxOutput.
	MaxOutput int

	// WaitDelay overrides DefaultWaitDelay when positive.
	WaitDelay time.Duration

	Logger *slog.Logger
}

// Execution is everything observed about one child run.
type Execution struct {
	Stdout []byte
	Stderr []byte

	// Truncated is set when stdout overflowed MaxOutput. Stderr overflow
	// is only logged.
	Truncated bool

	// StartErr is set when the process could not be launched.
	StartErr error

	ExitCode int
	Signal   int
	CPUTime  time.Duration
	Elapsed  time.Duration

	// DeadlineExceeded is set when the run hit its own timeout.
	DeadlineExceeded bool

	// Canceled is set when the caller's context ended first.
	Canceled bool
}

// Run executes the worker for module with input on stdin and waits for it,
// killing the whole process group when timeout elapses or ctx ends.
func (r *Runner) Run(ctx context.Context, module string, input []byte, timeout time.Duration) Execution {
	var ex Execution
	if len(r.Command) == 0 {
		ex.StartErr = errors.New("no worker command configured")
		return ex
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	limit := r.MaxOutput
	if limit <= 0 {
		limit = DefaultMaxOutput
	}
	stdout := &cappedBuffer{limit: limit}
	stderr := &cappedBuffer{limit: limit}

	args := append(append([]string(nil), r.Command[1:]...), module)
	cmd := exec.CommandContext(runCtx, r.Command[0], args...)
	cmd.Env = append(append([]string{}, r.Env...), r.Limits.Env()...)
	cmd.Stdin = bytes.NewReader(input)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = DefaultWaitDelay
	if r.WaitDelay > 0 {
		cmd.WaitDelay = r.WaitDelay
	}
	isolate(cmd)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		ex.StartErr = err
		return ex
	}
	waitErr := cmd.Wait()
	ex.Elapsed = time.Since(start)

	// Reap stragglers left in the group by a child that exited on its own.
	_ = killGroup(cmd.Process)

	if state := cmd.ProcessState; state != nil {
		ex.ExitCode = state.ExitCode()
		ex.Signal = exitSignal(state)
		ex.CPUTime = state.UserTime() + state.SystemTime()
	} else if waitErr != nil {
		ex.ExitCode = -1
	}

	ex.Stdout = stdout.Bytes()
	ex.Stderr = stderr.Bytes()
	ex.Truncated = stdout.truncated

	switch {
	case ctx.Err() != nil:
		ex.Canceled = true
	case waitErr != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded):
		ex.DeadlineExceeded = true
	}

	r.logger().Debug("worker finished",
		"module", module,
		"exit_code", ex.ExitCode,
		"signal", ex.Signal,
		"cpu", ex.CPUTime,
		"elapsed", ex.Elapsed,
		"deadline_exceeded", ex.DeadlineExceeded,
		"stderr", string(ex.Stderr),
		"stderr_truncated", stderr.truncated,
	)
	return ex
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// cappedBuffer keeps the first limit bytes and silently drops the rest so a
// chatty child never blocks on a full pipe.
type cappedBuffer struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (c *cappedBuffer) Write(p []byte) (int, error) {
	room := c.limit - c.buf.Len()
	if room <= 0 {
		c.truncated = c.truncated || len(p) > 0
		return len(p), nil
	}
	if len(p) > room {
		c.buf.Write(p[:room])
		c.truncated = true
		return len(p), nil
	}
	c.buf.Write(p)
	return len(p), nil
}

func (c *cappedBuffer) Bytes() []byte {
	return c.buf.Bytes()
}
