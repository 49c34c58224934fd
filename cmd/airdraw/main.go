// Command airdraw simulates and inspects collaborative AR drawing sessions.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/airdraw/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	cmd.SilenceErrors = true
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
