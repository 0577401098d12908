package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/cubefour/internal/game"
)

// Scenario is one scripted game.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Moves are applied in order to a fresh game.
	Moves []MoveStep `yaml:"moves"`

	// Assertions validate the final position.
	Assertions []Assertion `yaml:"assertions"`
}

// MoveStep is one column choice.
type MoveStep struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`

	// Expect is the status Apply must report. Empty skips the check.
	Expect string `yaml:"expect,omitempty"`
}

// Assertion validates the final position.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// final_state fields. Empty (or nil) fields are not checked.
	State         string `yaml:"state,omitempty"`
	Winner        string `yaml:"winner,omitempty"`
	MoveCount     *int   `yaml:"move_count,omitempty"`
	CurrentPlayer string `yaml:"current_player,omitempty"`

	// Line is the expected winning line as [x, y, z] triples (winning_line).
	Line [][]int `yaml:"line,omitempty"`

	// Status and Count are used by status_count.
	Status string `yaml:"status,omitempty"`
	Count  int    `yaml:"count,omitempty"`

	// At ([x, y, z]) and Player ("A", "B" or ".") are used by cell.
	At     []int  `yaml:"at,omitempty"`
	Player string `yaml:"player,omitempty"`
}

// Assertion type constants.
const (
	AssertFinalState  = "final_state"
	AssertWinningLine = "winning_line"
	AssertStatusCount = "status_count"
	AssertCell        = "cell"
)

var knownStatuses = map[string]bool{
	string(game.StatusOK):       true,
	string(game.StatusInvalid):  true,
	string(game.StatusWin):      true,
	string(game.StatusDraw):     true,
	string(game.StatusFinished): true,
}

var knownStates = map[string]bool{
	string(game.StateInProgress): true,
	string(game.StateWon):        true,
	string(game.StateDraw):       true,
}

var knownPlayers = map[string]bool{"A": true, "B": true, ".": true}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field checking.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadDir loads every *.yaml and *.yml file in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", dir, err)
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenario files found in %s", dir)
	}

	out := make([]*Scenario, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		if prev, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("%s: duplicate scenario name %q (also in %s)", filepath.Base(p), s.Name, prev)
		}
		seen[s.Name] = filepath.Base(p)
		out = append(out, s)
	}
	return out, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Moves) == 0 {
		return fmt.Errorf("moves list is required and must be non-empty")
	}
	for i, m := range s.Moves {
		if m.Expect != "" && !knownStatuses[m.Expect] {
			return fmt.Errorf("moves[%d]: unknown expect status %q", i, m.Expect)
		}
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertFinalState:
		if a.State == "" && a.Winner == "" && a.MoveCount == nil && a.CurrentPlayer == "" {
			return fmt.Errorf("assertions[%d]: final_state needs at least one field", index)
		}
		if a.State != "" && !knownStates[a.State] {
			return fmt.Errorf("assertions[%d]: unknown state %q", index, a.State)
		}
		for _, p := range []string{a.Winner, a.CurrentPlayer} {
			if p != "" && !knownPlayers[p] {
				return fmt.Errorf("assertions[%d]: unknown player %q", index, p)
			}
		}
	case AssertWinningLine:
		if len(a.Line) != 4 {
			return fmt.Errorf("assertions[%d]: winning_line needs 4 cells", index)
		}
		for j, c := range a.Line {
			if len(c) != 3 {
				return fmt.Errorf("assertions[%d]: line[%d] must be [x, y, z]", index, j)
			}
		}
	case AssertStatusCount:
		if !knownStatuses[a.Status] {
			return fmt.Errorf("assertions[%d]: unknown status %q", index, a.Status)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertCell:
		if len(a.At) != 3 {
			return fmt.Errorf("assertions[%d]: cell needs at: [x, y, z]", index)
		}
		if !knownPlayers[a.Player] {
			return fmt.Errorf("assertions[%d]: unknown player %q", index, a.Player)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
