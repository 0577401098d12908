//go:build linux

package cli

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cubefour/internal/arbiter"
	"github.com/roach88/cubefour/internal/rules"
	"github.com/roach88/cubefour/internal/sandbox"
	"github.com/roach88/cubefour/internal/testutil"
)

// realWorkerRunner launches this test binary as the real worker command, so
// rlimits, the SIGXCPU watch and stdout isolation all run as in production.
func realWorkerRunner(limits sandbox.Limits) *arbiter.Runner {
	return &arbiter.Runner{
		Command:   append(testutil.HelperCommand(), "worker"),
		Env:       testutil.HelperEnv(),
		Limits:    limits,
		WaitDelay: time.Second,
		Logger:    testutil.QuietLogger(),
	}
}

func boardInput(t *testing.T) []byte {
	t.Helper()
	data, err := json.Marshal(rules.NewBoard().Grid())
	require.NoError(t, err)
	return data
}

// TestRealWorker_Move tests a well-behaved module under the default
// ceilings.
func TestRealWorker_Move(t *testing.T) {
	module := writeFile(t, t.TempDir(), "bot.go", `package main

func GetMove(board [][][]int) (int, int) {
	return 1, 2
}
`)
	runner := realWorkerRunner(sandbox.DefaultLimits())
	a := arbiter.New(runner, arbiter.WithMode(arbiter.ModeStrict), arbiter.WithLogger(testutil.QuietLogger()))

	mv, err := a.Request(context.Background(), module, rules.NewBoard(), 20*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, mv.X)
	assert.Equal(t, 2, mv.Y)
}

// TestRealWorker_MemoryFloor tests that the smallest accepted memory
// ceiling still leaves room for the worker runtime.
func TestRealWorker_MemoryFloor(t *testing.T) {
	module := writeFile(t, t.TempDir(), "bot.go", `package main

func GetMove(board [][][]int) (int, int) {
	return 3, 3
}
`)
	runner := realWorkerRunner(sandbox.Limits{MemoryMB: sandbox.MinMemoryMB, CPUSeconds: 5})
	ex := runner.Run(context.Background(), module, boardInput(t), 20*time.Second)
	require.Equal(t, sandbox.ExitOK, ex.ExitCode, "stderr: %s", ex.Stderr)
	assert.JSONEq(t, `{"x":3,"y":3}`, string(ex.Stdout))
}

// TestRealWorker_CPULimit tests that a module spinning past its CPU ceiling
// is classified as a timeout well before the wall-clock budget runs out.
func TestRealWorker_CPULimit(t *testing.T) {
	module := writeFile(t, t.TempDir(), "spin.go", `package main

func GetMove(board [][][]int) (int, int) {
	n := 0
	for n >= 0 {
		n = (n + 1) % 1000
	}
	return n, 0
}
`)
	runner := realWorkerRunner(sandbox.Limits{MemoryMB: sandbox.DefaultMemoryMB, CPUSeconds: 1})
	a := arbiter.New(runner, arbiter.WithMode(arbiter.ModeStrict), arbiter.WithLogger(testutil.QuietLogger()))

	const budget = 30 * time.Second
	start := time.Now()
	_, err := a.Request(context.Background(), module, rules.NewBoard(), budget)
	require.Error(t, err)
	assert.True(t, arbiter.IsTimeout(err), "got %v", err)
	assert.Less(t, time.Since(start), budget/2)
}

// TestRealWorker_PrintingModule tests that module output reaches stderr and
// stdout carries only the result.
func TestRealWorker_PrintingModule(t *testing.T) {
	module := writeFile(t, t.TempDir(), "chatty.go", `package main

import "fmt"

func GetMove(board [][][]int) (int, int) {
	fmt.Println("thinking about (0,0)")
	fmt.Printf("{\"x\":0,\"y\":0}\n")
	return 2, 1
}
`)
	runner := realWorkerRunner(sandbox.DefaultLimits())
	ex := runner.Run(context.Background(), module, boardInput(t), 20*time.Second)
	require.Equal(t, sandbox.ExitOK, ex.ExitCode, "stderr: %s", ex.Stderr)
	assert.JSONEq(t, `{"x":2,"y":1}`, string(ex.Stdout))
	assert.Contains(t, string(ex.Stderr), "thinking about (0,0)")
}
