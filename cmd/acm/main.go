// acm is a multi-keyword matcher built on an Aho-Corasick automaton.
// Search, first-match, and replace from the command line or through a
// long-lived daemon that hot-reloads its keyword list.
package main

import (
	"os"

	"github.com/corey/acmatch/cmd/acm/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(cmd.ExitCode(err))
	}
}
