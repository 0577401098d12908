package game

import "github.com/roach88/cubefour/internal/rules"

// Status is the result of one Apply call.
type Status string

const (
	StatusOK       Status = "ok"
	StatusInvalid  Status = "invalid"
	StatusWin      Status = "win"
	StatusDraw     Status = "draw"
	StatusFinished Status = "finished"
)

// Move is a column choice.
type Move struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Outcome is returned by every Apply, win or lose, with the full board.
type Outcome struct {
	Status        Status           `json:"status"`
	Board         [][][]int        `json:"board"`
	CurrentPlayer rules.Player     `json:"current_player"`
	MoveCount     int              `json:"move_count"`
	GameOver      bool             `json:"game_over"`
	LastMove      *Move            `json:"last_move,omitempty"`
	Winner        rules.Player     `json:"winner,omitempty"`
	WinningLine   []rules.Position `json:"winning_line,omitempty"`
}

// Snapshot is the state of a game between moves.
type Snapshot struct {
	Board         [][][]int        `json:"board"`
	CurrentPlayer rules.Player     `json:"current_player"`
	MoveCount     int              `json:"move_count"`
	State         State            `json:"state"`
	GameOver      bool             `json:"game_over"`
	Winner        rules.Player     `json:"winner,omitempty"`
	WinningLine   []rules.Position `json:"winning_line,omitempty"`
}
