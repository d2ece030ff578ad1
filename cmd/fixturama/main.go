// Command fixturama validates, inspects and exercises call-stubbing
// fixtures.
package main

import (
	"fmt"
	"os"

	"github.com/coderberry/fixturama/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
