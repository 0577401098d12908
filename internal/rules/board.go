package rules

import (
	"fmt"
	"strings"
)

// Size is the edge length of the cube.
const Size = 4

// Player identifies the owner of a cell. The zero value is an empty cell.
type Player uint8

const (
	Empty   Player = 0
	PlayerA Player = 1
	PlayerB Player = 2
)

// Other returns the opponent. Empty has no opponent and is returned unchanged.
func (p Player) Other() Player {
	switch p {
	case PlayerA:
		return PlayerB
	case PlayerB:
		return PlayerA
	default:
		return Empty
	}
}

// Valid reports whether p is one of the two players.
func (p Player) Valid() bool {
	return p == PlayerA || p == PlayerB
}

func (p Player) String() string {
	switch p {
	case PlayerA:
		return "A"
	case PlayerB:
		return "B"
	default:
		return "."
	}
}

// Position is a cell coordinate.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// InBounds reports whether every component lies in [0, Size).
func (p Position) InBounds() bool {
	return inRange(p.X) && inRange(p.Y) && inRange(p.Z)
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p.X, p.Y, p.Z)
}

func inRange(v int) bool {
	return v >= 0 && v < Size
}

// Board is the full cube. It is a value type: assignment copies it, which is
// how callers take snapshots.
type Board struct {
	cells [Size][Size][Size]Player // [z][y][x]
}

// NewBoard returns an empty board.
func NewBoard() Board {
	return Board{}
}

// At returns the owner of the cell at p, or Empty when p is out of bounds.
func (b Board) At(p Position) Player {
	if !p.InBounds() {
		return Empty
	}
	return b.cells[p.Z][p.Y][p.X]
}

// Height returns the number of disks in column (x, y).
// Out-of-range columns report Size so they are never treated as open.
func (b Board) Height(x, y int) int {
	if !inRange(x) || !inRange(y) {
		return Size
	}
	for z := 0; z < Size; z++ {
		if b.cells[z][y][x] == Empty {
			return z
		}
	}
	return Size
}

// ColumnOpen reports whether column (x, y) exists and has room for a disk.
func (b Board) ColumnOpen(x, y int) bool {
	return b.Height(x, y) < Size
}

// Drop places a disk for p at the lowest empty z of column (x, y).
// It returns the z the disk settled at. When the column is out of range or
// full, or p is not a player, ok is false and the board is unchanged.
func (b *Board) Drop(x, y int, p Player) (z int, ok bool) {
	if !p.Valid() {
		return 0, false
	}
	z = b.Height(x, y)
	if z >= Size {
		return 0, false
	}
	b.cells[z][y][x] = p
	return z, true
}

// IsFull reports whether no empty cell remains.
func (b Board) IsFull() bool {
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			if b.cells[Size-1][y][x] == Empty {
				return false
			}
		}
	}
	return true
}

// Count returns the number of disks on the board.
func (b Board) Count() int {
	n := 0
	for z := 0; z < Size; z++ {
		for y := 0; y < Size; y++ {
			for x := 0; x < Size; x++ {
				if b.cells[z][y][x] != Empty {
					n++
				}
			}
		}
	}
	return n
}

// Grid returns the board as nested integers indexed [z][y][x]:
// 0 for empty, 1 and 2 for the players. This is the wire shape handed to
// participant modules.
func (b Board) Grid() [][][]int {
	grid := make([][][]int, Size)
	for z := 0; z < Size; z++ {
		grid[z] = make([][]int, Size)
		for y := 0; y < Size; y++ {
			grid[z][y] = make([]int, Size)
			for x := 0; x < Size; x++ {
				grid[z][y][x] = int(b.cells[z][y][x])
			}
		}
	}
	return grid
}

// BoardFromGrid parses the [z][y][x] wire shape.
// The grid must be 4×4×4, hold only 0, 1 or 2, and respect gravity
// (no disk above an empty cell).
func BoardFromGrid(grid [][][]int) (Board, error) {
	var b Board
	if len(grid) != Size {
		return b, fmt.Errorf("grid has %d layers, want %d", len(grid), Size)
	}
	for z := range grid {
		if len(grid[z]) != Size {
			return b, fmt.Errorf("layer %d has %d rows, want %d", z, len(grid[z]), Size)
		}
		for y := range grid[z] {
			if len(grid[z][y]) != Size {
				return b, fmt.Errorf("row (y=%d, z=%d) has %d cells, want %d", y, z, len(grid[z][y]), Size)
			}
			for x, v := range grid[z][y] {
				p := Player(v)
				if v < 0 || (p != Empty && !p.Valid()) {
					return b, fmt.Errorf("cell (%d,%d,%d) has value %d", x, y, z, v)
				}
				if p != Empty && z > 0 && b.cells[z-1][y][x] == Empty {
					return b, fmt.Errorf("cell (%d,%d,%d) floats above an empty cell", x, y, z)
				}
				b.cells[z][y][x] = p
			}
		}
	}
	return b, nil
}

// String renders the board one layer per block, bottom layer first.
func (b Board) String() string {
	var sb strings.Builder
	for z := 0; z < Size; z++ {
		fmt.Fprintf(&sb, "z=%d\n", z)
		for y := 0; y < Size; y++ {
			for x := 0; x < Size; x++ {
				if x > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(b.cells[z][y][x].String())
			}
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
