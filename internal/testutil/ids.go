package testutil

import (
	"fmt"
	"sync"
)

// SeqIDs returns an id function yielding fmt.Sprintf(format, n) for
// n = 1, 2, 3, ... It is safe for concurrent use.
//
//	ids := SeqIDs("usr_%04d")
//	ids() // "usr_0001"
func SeqIDs(format string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf(format, n)
	}
}

// SeqList returns the first count ids of SeqIDs(format).
func SeqList(format string, count int) []string {
	next := SeqIDs(format)
	out := make([]string, count)
	for i := range out {
		out[i] = next()
	}
	return out
}
