// Command filterview runs filtered-view scenarios and inspects recorded
// runs.
package main

import (
	"fmt"
	"os"

	"github.com/erikrandall/csla/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
