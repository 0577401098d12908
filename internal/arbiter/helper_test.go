package arbiter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/roach88/cubefour/internal/game"
	"github.com/roach88/cubefour/internal/sandbox"
	"github.com/roach88/cubefour/internal/testutil"
)

// helperRunner returns a Runner whose worker is this test binary running
// TestHelperProcess. The module locator selects the helper's behaviour.
func helperRunner(t *testing.T) *Runner {
	t.Helper()
	return &Runner{
		Command:   testutil.HelperCommand(),
		Env:       testutil.HelperEnv(),
		WaitDelay: 500 * time.Millisecond,
		Logger:    testutil.QuietLogger(),
	}
}

func newHelperArbiter(t *testing.T, mode Mode) *Arbiter {
	t.Helper()
	return New(helperRunner(t), WithMode(mode), WithLogger(testutil.QuietLogger()))
}

// fillColumns plays four disks into each listed column, alternating players.
func fillColumns(t *testing.T, g *game.Game, cols ...game.Move) {
	t.Helper()
	for _, c := range cols {
		for i := 0; i < 4; i++ {
			out := g.Apply(c.X, c.Y)
			if out.Status != game.StatusOK {
				t.Fatalf("fill (%d,%d): unexpected status %s", c.X, c.Y, out.Status)
			}
		}
	}
}

// TestHelperProcess is not a real test. It is the worker stand-in launched
// by helperRunner.
func TestHelperProcess(t *testing.T) {
	if !testutil.IsHelperProcess() {
		return
	}
	args := testutil.HelperArgs()
	if len(args) == 0 {
		os.Exit(sandbox.ExitUsage)
	}

	input, _ := io.ReadAll(os.Stdin)
	mode, arg, _ := strings.Cut(args[0], ":")

	switch mode {
	case "ok":
		fmt.Fprintf(os.Stdout, `{"x":%s,"y":%s}`+"\n", strings.Split(arg, ",")[0], strings.Split(arg, ",")[1])
	case "first-open":
		var grid [][][]int
		if err := json.Unmarshal(input, &grid); err != nil {
			os.Exit(sandbox.ExitFault)
		}
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				if grid[3][y][x] == 0 {
					fmt.Fprintf(os.Stdout, `{"x":%d,"y":%d}`, x, y)
					os.Exit(0)
				}
			}
		}
	case "sleep":
		time.Sleep(time.Minute)
	case "crash":
		fmt.Fprintln(os.Stderr, "panic: something broke")
		os.Exit(sandbox.ExitFault)
	case "rejected":
		fmt.Fprintln(os.Stdout, `{"error":"gate_rejected"}`)
		os.Exit(sandbox.ExitGateRejected)
	case "cpulimit":
		os.Exit(sandbox.ExitCPULimit)
	case "garbage":
		fmt.Fprintln(os.Stdout, "thinking... 2 3")
	case "empty":
	case "raw":
		fmt.Fprint(os.Stdout, arg)
	case "noisy":
		fmt.Fprint(os.Stderr, strings.Repeat("x", 1<<20))
		fmt.Fprintln(os.Stdout, `{"x":1,"y":1}`)
	default:
		os.Exit(sandbox.ExitUsage)
	}
	os.Exit(0)
}
