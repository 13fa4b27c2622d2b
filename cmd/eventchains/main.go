// Command eventchains runs, benchmarks, and tests Dijkstra event chains.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/eventchains/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
