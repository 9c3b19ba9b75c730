// Command col merges timestamped data files into one synchronized stream.
package main

import (
	"os"

	"github.com/roach88/col/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
