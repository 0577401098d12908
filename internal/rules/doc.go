// Package rules implements the 4×4×4 four-in-a-row geometry.
//
// The package is pure: no I/O, no hidden state beyond the winning-line table,
// which is generated once on first use and shared read-only for the lifetime
// of the process.
//
// # Coordinates
//
// Cells are addressed by (x, y, z). z is the gravity axis: a disk dropped into
// column (x, y) settles at the lowest empty z. Boards cross the process
// boundary as nested integer arrays indexed [z][y][x] (see Board.Grid).
//
// # Lines
//
// A line is four distinct in-bounds positions along one of 13 canonical
// directions. A 4×4×4 board has exactly 76 of them:
//   - 48 axis-aligned (16 per axis)
//   - 24 face diagonals (8 per plane orientation)
//   - 4 space diagonals
package rules
