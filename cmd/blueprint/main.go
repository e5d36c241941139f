// Command blueprint edits and validates generator input documents.
package main

import (
	"os"

	"github.com/jarch-dev/blueprint/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
