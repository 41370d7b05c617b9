// Command cli is the entry point for the tablecheck CLI binary.
package main

import (
	"os"

	"tablecheck/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
