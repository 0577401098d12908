package arbiter

import (
	"fmt"

	"github.com/roach88/cubefour/internal/rules"
)

// Reason is the human-readable explanation attached to a fallback placement.
func Reason(kind Kind, x, y int) string {
	switch kind {
	case Timeout:
		return fmt.Sprintf("did not respond in time, forced placement at (%d, %d)", x, y)
	case InvalidMove:
		return fmt.Sprintf("returned an invalid coordinate, forced placement at (%d, %d)", x, y)
	default:
		return fmt.Sprintf("terminated abnormally, forced placement at (%d, %d)", x, y)
	}
}

// Fallback returns the first open column scanning y ascending, then x
// ascending. ok is false when every column is full.
func Fallback(b rules.Board) (x, y int, ok bool) {
	for y = 0; y < rules.Size; y++ {
		for x = 0; x < rules.Size; x++ {
			if b.ColumnOpen(x, y) {
				return x, y, true
			}
		}
	}
	return 0, 0, false
}
