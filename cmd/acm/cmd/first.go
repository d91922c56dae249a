package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/corey/acmatch/internal/adapters/socket"
)

var (
	firstStart int
	firstJSON  bool
)

var firstCmd = &cobra.Command{
	Use:   "first [TEXT]",
	Short: "Report the first keyword occurrence in TEXT",
	Long:  "Print the match that completes earliest in TEXT (or stdin). No match is not an error.",
	RunE:  runFirst,
}

func init() {
	f := firstCmd.Flags()
	f.IntVar(&firstStart, "start", 0, "Byte offset to start scanning at")
	f.BoolVar(&firstJSON, "json", false, "Output as JSON")
}

func runFirst(cmd *cobra.Command, args []string) error {
	text, _, err := readText(args)
	if err != nil {
		return err
	}

	r, err := resolveMatcher()
	if err != nil {
		return err
	}

	start := time.Now()
	m, err := r.matcher.SearchFirst(text, firstStart)
	if err != nil {
		return err
	}
	result := &socket.FirstResult{
		Match:   m,
		Found:   !m.IsEmpty(),
		Elapsed: time.Since(start).String(),
	}

	if firstJSON {
		return writeJSON(result)
	}
	fmt.Print(formatFirstResult(result, isStdoutTTY()))
	return nil
}
