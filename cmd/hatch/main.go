// Command hatch runs an HTTP server together with the services it depends on
// and tears them down on SIGINT or SIGTERM.
package main

import (
	"fmt"
	"os"

	"github.com/marmos91/hatch/cmd/hatch/commands"
)

// Set with -ldflags "-X main.version=... -X main.commit=... -X main.date=...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version, commands.Commit, commands.Date = version, commit, date

	// A startup failure surfaces here and exits 1.
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
