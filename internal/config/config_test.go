package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cubefour/internal/arbiter"
	"github.com/roach88/cubefour/internal/sandbox"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, arbiter.ModePermissive, cfg.Mode)
	assert.Equal(t, sandbox.Limits{MemoryMB: 4096, CPUSeconds: 3}, cfg.Limits)
	assert.Nil(t, cfg.WorkerCommand)
	assert.Nil(t, cfg.WorkerEnv)
	assert.Empty(t, cfg.RosterDB)
	assert.Equal(t, ":8000", cfg.ServeAddr)
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverridesAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cubefour.cue")
	src := `
timeout_seconds: 5
mode: "strict"
limits: cpu_seconds: 1
worker: {
	command: ["/usr/local/bin/cubefour", "worker"]
	env: ["LANG=C"]
}
roster: db: "/var/lib/cubefour/roster.db"
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, arbiter.ModeStrict, cfg.Mode)
	assert.Equal(t, sandbox.Limits{MemoryMB: 4096, CPUSeconds: 1}, cfg.Limits)
	assert.Equal(t, []string{"/usr/local/bin/cubefour", "worker"}, cfg.WorkerCommand)
	assert.Equal(t, []string{"LANG=C"}, cfg.WorkerEnv)
	assert.Equal(t, "/var/lib/cubefour/roster.db", cfg.RosterDB)
	assert.Equal(t, ":8000", cfg.ServeAddr)
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.cue"))
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeNotFound, le.Code)
}

func TestLoadBytes_Rejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code string
	}{
		{"syntax error", "timeout_seconds: ", ErrCodeLoadFailed},
		{"unknown field", "verbose: true", ErrCodeBuildFailed},
		{"bad mode", `mode: "lenient"`, ErrCodeBuildFailed},
		{"zero timeout", "timeout_seconds: 0", ErrCodeBuildFailed},
		{"huge timeout", "timeout_seconds: 601", ErrCodeBuildFailed},
		{"negative memory", "limits: memory_mb: -1", ErrCodeBuildFailed},
		{"memory below runtime floor", "limits: memory_mb: 1024", ErrCodeBuildFailed},
		{"malformed env", `worker: env: ["no-equals-sign"]`, ErrCodeBuildFailed},
		{"empty addr", `serve: addr: ""`, ErrCodeBuildFailed},
		{"wrong type", `timeout_seconds: "30"`, ErrCodeBuildFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadBytes("test.cue", []byte(tt.src))
			var le *LoadError
			require.ErrorAs(t, err, &le)
			assert.Equal(t, tt.code, le.Code, "message: %s", le.Message)
		})
	}
}

// TestLoadBytes_MemoryFloor tests that the schema's memory floor matches the
// worker's and that 0 still disables the ceiling.
func TestLoadBytes_MemoryFloor(t *testing.T) {
	for _, mb := range []int{0, sandbox.MinMemoryMB, 8192} {
		cfg, err := LoadBytes("test.cue", []byte(fmt.Sprintf("limits: memory_mb: %d", mb)))
		require.NoError(t, err, "memory_mb %d", mb)
		assert.Equal(t, mb, cfg.Limits.MemoryMB)
	}

	_, err := LoadBytes("test.cue", []byte(fmt.Sprintf("limits: memory_mb: %d", sandbox.MinMemoryMB-1)))
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeBuildFailed, le.Code)
	assert.Contains(t, le.Message, "memory_mb")
}

func TestLoadError_Format(t *testing.T) {
	err := &LoadError{Code: ErrCodeGeneric, Message: "boom"}
	assert.Equal(t, "E001: boom", err.Error())

	_, loadErr := LoadBytes("broken.cue", []byte("timeout_seconds: }"))
	require.Error(t, loadErr)
	assert.Contains(t, loadErr.Error(), "broken.cue")
}
