package arbiter

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/roach88/cubefour/internal/game"
	"github.com/roach88/cubefour/internal/rules"
	"github.com/roach88/cubefour/internal/sandbox"
)

// verdict is the classification of one Execution.
type verdict struct {
	move   game.Move
	kind   Kind
	failed bool
	// x and y are set for InvalidMove when both coordinates were integers.
	x, y int
	// detail is for logs only.
	detail string
}

func fail(kind Kind, detail string) verdict {
	return verdict{kind: kind, failed: true, detail: detail}
}

// classify maps an Execution onto a move or a failure kind. Order matters:
// time-related terminations win over generic abnormal exits.
func classify(ex Execution, cpuSeconds int) verdict {
	switch {
	case ex.DeadlineExceeded:
		return fail(Timeout, "wall-clock deadline exceeded")
	case ex.ExitCode == sandbox.ExitCPULimit:
		return fail(Timeout, "cpu limit reported by worker")
	case ex.Signal != 0 && ex.Signal == sigCPU:
		return fail(Timeout, "killed by SIGXCPU")
	case ex.Signal != 0 && ex.Signal == sigKill && cpuSeconds > 0 &&
		ex.CPUTime >= time.Duration(cpuSeconds)*time.Second:
		return fail(Timeout, "killed after exhausting cpu limit")
	case ex.StartErr != nil:
		return fail(AbnormalExit, "start: "+ex.StartErr.Error())
	case ex.Signal != 0:
		return fail(AbnormalExit, "killed by signal")
	case ex.ExitCode != 0:
		return fail(AbnormalExit, "non-zero exit")
	case ex.Truncated:
		return fail(AbnormalExit, "output exceeded capture limit")
	}
	return parsePayload(ex.Stdout)
}

// parsePayload accepts exactly one JSON object with integer x and y in
// [0, Size). Surrounding whitespace is allowed; anything else is not.
func parsePayload(data []byte) verdict {
	if len(bytes.TrimSpace(data)) == 0 {
		return fail(AbnormalExit, "empty payload")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return fail(AbnormalExit, "unparseable payload")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fail(AbnormalExit, "trailing data after payload")
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return fail(AbnormalExit, "payload is not an object")
	}
	rawX, okX := obj["x"]
	rawY, okY := obj["y"]
	if !okX || !okY {
		return fail(AbnormalExit, "payload missing x or y")
	}

	x, intX := integer(rawX)
	y, intY := integer(rawY)
	if !intX || !intY {
		return fail(InvalidMove, "non-integer coordinate")
	}
	if x < 0 || x >= rules.Size || y < 0 || y >= rules.Size {
		v := fail(InvalidMove, "coordinate out of range")
		v.x, v.y = x, y
		return v
	}
	return verdict{move: game.Move{X: x, Y: y}}
}

func integer(v any) (int, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	i, err := n.Int64()
	if err != nil {
		return 0, false
	}
	return int(i), true
}
