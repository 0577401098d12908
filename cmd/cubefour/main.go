// Command cubefour referees 4x4x4 four-in-a-row games between Go modules.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/cubefour/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		if !cli.IsSilent(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
