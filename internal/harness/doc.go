// Package harness replays scripted games and checks their outcome.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: vertical_win
//	description: "PlayerA stacks four disks in one column"
//	moves:
//	  - {x: 1, y: 1}
//	  - {x: 0, y: 0, expect: ok}
//	  - {x: 1, y: 1}
//	assertions:
//	  - type: final_state
//	    state: won
//	    winner: A
//	    move_count: 7
//	  - type: winning_line
//	    line: [[1, 1, 0], [1, 1, 1], [1, 1, 2], [1, 1, 3]]
//
// Each move is applied to a fresh game with game.Game.Apply. A move's
// optional expect is the status that Apply must report.
//
// # Assertion Types
//
//   - final_state: state, winner, move_count and current_player of the end position
//   - winning_line: the recorded winning line, in order
//   - status_count: how many moves reported a given status
//   - cell: the owner of one cell, "." for empty
//
// # Golden Traces
//
// Trace.Text renders one line per move plus a final summary line. It is
// compared with testdata/golden/<name>.golden using goldie; regenerate with
//
//	go test ./internal/harness -update
package harness
