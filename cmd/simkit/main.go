// Command simkit runs, records and replays tick-driven agent simulations.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/simkit/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
