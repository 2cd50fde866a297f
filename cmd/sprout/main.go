// Command sprout runs and inspects Sprout applications.
package main

import (
	"os"

	"github.com/go-drift/sprout/cmd/sprout/cmd"
)

func main() {
	if err := cmd.Execute(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
