//go:build !unix

package arbiter

import (
	"os"
	"os/exec"
)

var (
	sigCPU  = -1
	sigKill = -1
)

func isolate(cmd *exec.Cmd) {}

func killGroup(p *os.Process) error {
	if p == nil {
		return nil
	}
	return p.Kill()
}

func exitSignal(*os.ProcessState) int { return 0 }
