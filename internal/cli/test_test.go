package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const winScenario = `name: quick_win
description: "A stacks column (1,1)"
moves:
  - {x: 1, y: 1}
  - {x: 0, y: 0}
  - {x: 1, y: 1}
  - {x: 0, y: 0}
  - {x: 1, y: 1}
  - {x: 0, y: 0}
  - {x: 1, y: 1, expect: win}
assertions:
  - type: final_state
    state: won
    winner: A
`

func TestTestCommand_HarnessScenarios(t *testing.T) {
	dir := filepath.Join("..", "harness", "testdata", "scenarios")
	stdout, _, err := execute(t, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ vertical_win")
	assert.Contains(t, stdout, "✓ full_board_draw")
	assert.Contains(t, stdout, "Test Summary: 4 passed, 0 failed, 4 total")
}

func TestTestCommand_FilterJSON(t *testing.T) {
	dir := filepath.Join("..", "harness", "testdata", "scenarios")
	stdout, _, err := execute(t, "test", dir, "--filter", "*_win", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, resp.Data.Total)
	assert.Equal(t, 2, resp.Data.Passed)
}

func TestTestCommand_UpdateAndCompare(t *testing.T) {
	root := t.TempDir()
	scenarios := filepath.Join(root, "scenarios")
	writeFile(t, scenarios, "quick_win.yaml", winScenario)

	stdout, _, err := execute(t, "test", scenarios, "--update")
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ quick_win (golden updated)")

	golden := filepath.Join(root, "golden", "quick_win.golden")
	data, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Contains(t, string(data), "07 A (1,1) win\n")

	_, _, err = execute(t, "test", scenarios)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(golden, []byte("stale\n"), 0o644))
	stdout, _, err = execute(t, "test", scenarios)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "trace does not match golden file")
}

func TestTestCommand_Failures(t *testing.T) {
	scenarios := t.TempDir()
	writeFile(t, scenarios, "wrong.yaml", `name: wrong
description: "expects the wrong winner"
moves:
  - {x: 0, y: 0}
assertions:
  - type: final_state
    winner: B
`)
	writeFile(t, scenarios, "broken.yml", "name: [\n")

	stdout, _, err := execute(t, "test", scenarios, "--golden", filepath.Join(scenarios, "none"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "✗ broken.yml")
	assert.Contains(t, stdout, "✗ wrong")
	assert.Contains(t, stdout, "winner: expected B, got .")
	assert.Contains(t, stdout, "Test Summary: 0 passed, 2 failed, 2 total")
}

func TestTestCommand_Paths(t *testing.T) {
	_, _, err := execute(t, "test", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	stdout, _, err := execute(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, stdout, "No scenarios found.")
}

func TestFindScenarioFilesWithFilter(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "row_win.yaml", "")
	writeFile(t, tmpDir, "col_win.yml", "")
	writeFile(t, tmpDir, "draw.yaml", "")
	writeFile(t, tmpDir, "sub/diag_win.yaml", "")
	writeFile(t, tmpDir, "notes.txt", "")

	files, err := findScenarioFiles(tmpDir, "")
	require.NoError(t, err)
	assert.Len(t, files, 4)

	files, err = findScenarioFiles(tmpDir, "*_win")
	require.NoError(t, err)
	assert.Len(t, files, 3)

	_, err = findScenarioFiles(tmpDir, "[")
	assert.Error(t, err)
}
