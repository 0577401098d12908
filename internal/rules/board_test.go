package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBoard_Empty(t *testing.T) {
	b := NewBoard()
	assert.Equal(t, 0, b.Count())
	assert.False(t, b.IsFull())
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			assert.True(t, b.ColumnOpen(x, y))
		}
	}
}

func TestDrop_FillsLowestEmpty(t *testing.T) {
	b := NewBoard()
	players := []Player{PlayerA, PlayerB, PlayerB, PlayerA}

	for want, p := range players {
		z, ok := b.Drop(2, 1, p)
		require.True(t, ok)
		assert.Equal(t, want, z)
		assert.Equal(t, p, b.At(Position{X: 2, Y: 1, Z: z}))
	}
	assert.Equal(t, Size, b.Height(2, 1))
	assert.False(t, b.ColumnOpen(2, 1))
}

func TestDrop_FullColumnLeavesBoardUnchanged(t *testing.T) {
	b := NewBoard()
	for i := 0; i < Size; i++ {
		_, ok := b.Drop(0, 0, PlayerA)
		require.True(t, ok)
	}
	before := b

	z, ok := b.Drop(0, 0, PlayerB)
	assert.False(t, ok)
	assert.Equal(t, 0, z)
	assert.Equal(t, before, b)
}

func TestDrop_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		x, y int
		p    Player
	}{
		{"negative x", -1, 0, PlayerA},
		{"x too large", 4, 0, PlayerA},
		{"y too large", 0, 4, PlayerB},
		{"empty player", 1, 1, Empty},
		{"unknown player", 1, 1, Player(3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBoard()
			_, ok := b.Drop(tt.x, tt.y, tt.p)
			assert.False(t, ok)
			assert.Equal(t, NewBoard(), b)
		})
	}
}

func TestIsFull(t *testing.T) {
	b := NewBoard()
	p := PlayerA
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			for z := 0; z < Size; z++ {
				assert.False(t, b.IsFull())
				_, ok := b.Drop(x, y, p)
				require.True(t, ok)
				p = p.Other()
			}
		}
	}
	assert.True(t, b.IsFull())
	assert.Equal(t, Size*Size*Size, b.Count())
}

func TestGrid_RoundTrip(t *testing.T) {
	b := NewBoard()
	b.Drop(0, 0, PlayerA)
	b.Drop(0, 0, PlayerB)
	b.Drop(3, 2, PlayerA)

	grid := b.Grid()
	assert.Equal(t, 1, grid[0][0][0])
	assert.Equal(t, 2, grid[1][0][0])
	assert.Equal(t, 1, grid[0][2][3], "grid is indexed [z][y][x]")

	parsed, err := BoardFromGrid(grid)
	require.NoError(t, err)
	assert.Equal(t, b, parsed)
}

func TestBoardFromGrid_Rejects(t *testing.T) {
	floating := NewBoard().Grid()
	floating[1][0][0] = 1

	badValue := NewBoard().Grid()
	badValue[0][0][0] = 7

	shortRow := NewBoard().Grid()
	shortRow[2][3] = []int{0, 0}

	tests := map[string][][][]int{
		"too few layers": NewBoard().Grid()[:3],
		"floating disk":  floating,
		"bad value":      badValue,
		"short row":      shortRow,
	}
	for name, grid := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := BoardFromGrid(grid)
			assert.Error(t, err)
		})
	}
}

func TestPlayer(t *testing.T) {
	assert.Equal(t, PlayerB, PlayerA.Other())
	assert.Equal(t, PlayerA, PlayerB.Other())
	assert.Equal(t, Empty, Empty.Other())
	assert.Equal(t, "A", PlayerA.String())
	assert.Equal(t, "B", PlayerB.String())
	assert.Equal(t, ".", Empty.String())
}

func TestBoard_String(t *testing.T) {
	b := NewBoard()
	b.Drop(1, 0, PlayerA)
	out := b.String()
	assert.Contains(t, out, "z=0\n. A . .\n")
	assert.Contains(t, out, "z=3\n")
}
