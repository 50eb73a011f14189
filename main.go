// Command supplysim runs a day-stepped supply chain simulation over a
// persistent SQLite store. All CLI handling lives in internal/cli.
package main

import (
	"fmt"
	"os"

	"github.com/mgarrido/supplysim/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
