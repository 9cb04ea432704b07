// Command flipcalc computes flip viability locally or against a running server.
package main

import (
	"fmt"
	"os"

	"github.com/widia-io/widia-flip-sub001/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
