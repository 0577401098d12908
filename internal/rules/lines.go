package rules

import (
	"strings"
	"sync"
)

// Line is a straight run of four cells that wins when one player owns all of them.
type Line [4]Position

func (l Line) String() string {
	var sb strings.Builder
	for _, p := range l {
		sb.WriteString(p.String())
	}
	return sb.String()
}

// directions holds one vector per line orientation; antiparallel duplicates
// are excluded so every line is produced exactly once.
var directions = [13]Position{
	{1, 0, 0},
	{0, 1, 0},
	{0, 0, 1},
	{1, 1, 0},
	{1, -1, 0},
	{1, 0, 1},
	{1, 0, -1},
	{0, 1, 1},
	{0, 1, -1},
	{1, 1, 1},
	{1, 1, -1},
	{1, -1, 1},
	{-1, 1, 1},
}

var (
	linesOnce sync.Once
	lines     []Line
)

// sharedLines returns the process-wide line table. Never mutate the result.
func sharedLines() []Line {
	linesOnce.Do(func() {
		lines = generateLines()
	})
	return lines
}

func generateLines() []Line {
	out := make([]Line, 0, 76)
	for x := 0; x < Size; x++ {
		for y := 0; y < Size; y++ {
			for z := 0; z < Size; z++ {
				for _, d := range directions {
					var l Line
					ok := true
					for i := 0; i < Size; i++ {
						p := Position{X: x + d.X*i, Y: y + d.Y*i, Z: z + d.Z*i}
						if !p.InBounds() {
							ok = false
							break
						}
						l[i] = p
					}
					if ok {
						out = append(out, l)
					}
				}
			}
		}
	}
	return out
}

// Lines returns a copy of the winning-line table in enumeration order
// (start x, then y, then z, then direction).
func Lines() []Line {
	shared := sharedLines()
	out := make([]Line, len(shared))
	copy(out, shared)
	return out
}

// CheckWin returns the first line, in enumeration order, whose four cells are
// all owned by p.
func CheckWin(b Board, p Player) (Line, bool) {
	if !p.Valid() {
		return Line{}, false
	}
	for _, l := range sharedLines() {
		if Owns(b, p, l) {
			return l, true
		}
	}
	return Line{}, false
}

// Owns reports whether every position of l is in bounds and owned by p on b.
func Owns(b Board, p Player, l Line) bool {
	for _, pos := range l {
		if !pos.InBounds() || b.cells[pos.Z][pos.Y][pos.X] != p {
			return false
		}
	}
	return true
}
