// Command marktest runs the marked test units of a module.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/marktest/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "marktest: %v\n", err)
	}
	os.Exit(cli.GetExitCode(err))
}
