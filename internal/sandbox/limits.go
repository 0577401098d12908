package sandbox

import (
	"errors"
	"strconv"
	"strings"
)

// Environment variables carrying the resource ceilings into the worker.
const (
	EnvMemoryMB   = "CUBEFOUR_WORKER_MAX_MEM_MB"
	EnvCPUSeconds = "CUBEFOUR_WORKER_CPU_SECONDS"
)

// Default ceilings applied when the environment does not override them.
const (
	DefaultMemoryMB   = 4096
	DefaultCPUSeconds = 3
)

// MinMemoryMB is the smallest address-space ceiling the worker's Go runtime
// starts under. Lower ceilings fail every move with an out-of-memory fault.
const MinMemoryMB = 2048

// ErrLimitsUnsupported is returned by ApplyLimits on platforms without
// per-process resource ceilings. Callers log it and continue.
var ErrLimitsUnsupported = errors.New("resource limits not supported on this platform")

// Limits are the per-invocation resource ceilings. A zero field disables
// that ceiling.
type Limits struct {
	MemoryMB   int
	CPUSeconds int
}

// DefaultLimits returns the documented default ceilings.
func DefaultLimits() Limits {
	return Limits{MemoryMB: DefaultMemoryMB, CPUSeconds: DefaultCPUSeconds}
}

// Env renders the limits as KEY=VALUE pairs for a child environment.
func (l Limits) Env() []string {
	return []string{
		EnvMemoryMB + "=" + strconv.Itoa(l.MemoryMB),
		EnvCPUSeconds + "=" + strconv.Itoa(l.CPUSeconds),
	}
}

// LimitsFromEnv reads ceilings through getenv, falling back to the defaults
// for unset or malformed values. Negative values are clamped to zero and a
// non-zero memory ceiling is raised to MinMemoryMB.
func LimitsFromEnv(getenv func(string) string) Limits {
	l := DefaultLimits()
	if v, ok := envInt(getenv, EnvMemoryMB); ok {
		if v > 0 && v < MinMemoryMB {
			v = MinMemoryMB
		}
		l.MemoryMB = v
	}
	if v, ok := envInt(getenv, EnvCPUSeconds); ok {
		l.CPUSeconds = v
	}
	return l
}

func envInt(getenv func(string) string, key string) (int, bool) {
	raw := strings.TrimSpace(getenv(key))
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	if n < 0 {
		n = 0
	}
	return n, true
}
