// Command curvefs-client runs the extent cache daemon that sits between a
// curvefs mount and its block-addressed backing volume.
package main

import (
	"fmt"
	"os"

	"github.com/curvefs/curvefs-client/cmd/curvefs-client/commands"
)

// Build-time version information, set via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version = version
	commands.Commit = commit
	commands.Date = date

	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
