package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cubefour/internal/arbiter"
	"github.com/roach88/cubefour/internal/game"
	"github.com/roach88/cubefour/internal/match"
	"github.com/roach88/cubefour/internal/rules"
	"github.com/roach88/cubefour/internal/sandbox"
)

// decodeResponse parses one indented CLIResponse and returns its data as a
// generic map for field checks.
func decodeResponse(t *testing.T, buf *bytes.Buffer) (CLIResponse, map[string]any) {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	data, _ := resp.Data.(map[string]any)
	return resp, data
}

// TestOutputFormatter_CheckReport tests both results of a check report in
// each format.
func TestOutputFormatter_CheckReport(t *testing.T) {
	accepted := &sandbox.Report{Module: "bots/greedy.go", Package: "main", Entry: "GetMove"}
	rejected := &sandbox.Report{
		Module:   "bots/net.go",
		Package:  "main",
		Problems: []string{"bots/net.go:3:8: banned import: net", "no GetMove entry point"},
	}

	t.Run("json accepted", func(t *testing.T) {
		buf := &bytes.Buffer{}
		f := &OutputFormatter{Format: "json", Writer: buf}
		require.NoError(t, f.Success(accepted))

		resp, data := decodeResponse(t, buf)
		assert.Equal(t, "ok", resp.Status)
		assert.Nil(t, resp.Error)
		assert.Equal(t, "bots/greedy.go", data["module"])
		assert.Equal(t, "GetMove", data["entry"])
		assert.NotContains(t, data, "problems")
		assert.Contains(t, buf.String(), "\n  \"status\"", "output is indented")
	})

	t.Run("json rejected", func(t *testing.T) {
		buf := &bytes.Buffer{}
		f := &OutputFormatter{Format: "json", Writer: buf}
		require.NoError(t, f.Failure(CodeCheckFailed, "2 problem(s) in bots/net.go", rejected))

		resp, data := decodeResponse(t, buf)
		assert.Equal(t, "error", resp.Status)
		require.NotNil(t, resp.Error)
		assert.Equal(t, CodeCheckFailed, resp.Error.Code)
		assert.Equal(t, "2 problem(s) in bots/net.go", resp.Error.Message)
		assert.Len(t, data["problems"], 2)
		assert.NotContains(t, data, "entry")
	})

	t.Run("text rejected", func(t *testing.T) {
		buf := &bytes.Buffer{}
		f := &OutputFormatter{Format: "text", Writer: buf}
		require.NoError(t, f.Failure(CodeCheckFailed, "2 problem(s) in bots/net.go", rejected))
		assert.Equal(t, "Error [E_CHECK_FAILED]: 2 problem(s) in bots/net.go\n", buf.String())
	})
}

// TestOutputFormatter_MatchSummary tests the JSON shape of a finished match
// as printed by play.
func TestOutputFormatter_MatchSummary(t *testing.T) {
	crash := arbiter.AbnormalExit
	sum := match.Summary{
		State:     game.StateWon,
		Winner:    rules.PlayerA,
		MoveCount: 7,
		Line: []rules.Position{
			{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 2, Y: 0, Z: 0}, {X: 3, Y: 0, Z: 0},
		},
		Plies: []match.Ply{
			{Number: 1, Player: rules.PlayerA, Module: "bots/a.go", X: 0, Y: 0, Status: game.StatusOK},
			{Number: 2, Player: rules.PlayerB, Module: "bots/crash.go", X: 0, Y: 1, Status: game.StatusOK,
				Fallback: &crash, Reason: arbiter.Reason(crash, 0, 1)},
		},
		Fallbacks: 1,
	}

	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}
	require.NoError(t, f.Success(sum))

	resp, data := decodeResponse(t, buf)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "won", data["state"])
	assert.EqualValues(t, 1, data["winner"])
	assert.EqualValues(t, 7, data["move_count"])
	assert.EqualValues(t, 1, data["fallbacks"])
	assert.Len(t, data["winning_line"], 4)

	plies, ok := data["plies"].([]any)
	require.True(t, ok)
	require.Len(t, plies, 2)
	first := plies[0].(map[string]any)
	assert.NotContains(t, first, "fallback")
	second := plies[1].(map[string]any)
	assert.Equal(t, "abnormal_exit", second["fallback"])
	assert.Equal(t, "terminated abnormally, forced placement at (0, 1)", second["reason"])
}

// TestOutputFormatter_TextLines tests that text output is the line handed
// in, verbatim.
func TestOutputFormatter_TextLines(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"check accepted", "✓ bots/greedy.go (package main, entry MyAI.GetMove)"},
		{"participant", "Registered usr_0001: greedy -> bots/greedy.go"},
		{"empty roster", "No participants registered."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			f := &OutputFormatter{Format: "text", Writer: buf}
			require.NoError(t, f.Success(tt.line))
			assert.Equal(t, tt.line+"\n", buf.String())
		})
	}
}

// TestOutputFormatter_ErrorDetails tests that details are printed in text
// only when verbose, and always carried in JSON.
func TestOutputFormatter_ErrorDetails(t *testing.T) {
	details := map[string]string{"config": "cubefour.cue", "field": "limits.memory_mb"}

	tests := []struct {
		name    string
		format  string
		verbose bool
		want    []string
		absent  []string
	}{
		{"text quiet", "text", false, []string{"Error [E006]: config invalid"}, []string{"Details:"}},
		{"text verbose", "text", true, []string{"Error [E006]: config invalid", "Details: map[config:cubefour.cue field:limits.memory_mb]"}, nil},
		{"json", "json", false, []string{`"code": "E006"`, `"field": "limits.memory_mb"`}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			f := &OutputFormatter{Format: tt.format, Writer: buf, Verbose: tt.verbose}
			require.NoError(t, f.Error("E006", "config invalid", details))
			for _, s := range tt.want {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}

// TestOutputFormatter_VerboseLog tests that diagnostics never mix into the
// result stream when a separate writer is set.
func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name     string
		verbose  bool
		errWrite bool
		wantOut  string
		wantDiag string
	}{
		{"quiet", false, true, "", ""},
		{"verbose split", true, true, "", "ply 3: B forced at (1, 0)\n"},
		{"verbose shared", true, false, "ply 3: B forced at (1, 0)\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, diag := &bytes.Buffer{}, &bytes.Buffer{}
			f := &OutputFormatter{Format: "json", Writer: out, Verbose: tt.verbose}
			if tt.errWrite {
				f.ErrWriter = diag
			}
			f.VerboseLog("ply %d: %s forced at (%d, %d)", 3, rules.PlayerB, 1, 0)
			assert.Equal(t, tt.wantOut, out.String())
			assert.Equal(t, tt.wantDiag, diag.String())
		})
	}
}

// TestExitError tests exit code extraction through wrapping and the silent
// flag used for worker and check failures.
func TestExitError(t *testing.T) {
	base := errors.New("disk full")
	err := WrapExitError(ExitCommandError, "failed to open roster", base)
	assert.Equal(t, "failed to open roster: disk full", err.Error())
	assert.ErrorIs(t, err, base)
	assert.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("wrapped: %w", err)))
	assert.Equal(t, ExitFailure, GetExitCode(base))
	assert.False(t, IsSilent(err))

	gate := &ExitError{Code: sandbox.ExitGateRejected, Message: "worker exited with code 3", Silent: true}
	assert.True(t, IsSilent(gate))
	assert.Equal(t, sandbox.ExitGateRejected, GetExitCode(gate))
	assert.Equal(t, "worker exited with code 3", gate.Error())
}
