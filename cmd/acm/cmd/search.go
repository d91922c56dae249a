package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/corey/acmatch/internal/adapters/socket"
	"github.com/corey/acmatch/internal/domain/automaton"
	"github.com/corey/acmatch/internal/ports"
)

var (
	searchStart int
	searchMax   int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [TEXT]",
	Short: "Report every keyword occurrence in TEXT",
	Long: `Scan TEXT (or stdin) and print every keyword occurrence, overlapping ones
included, as byte offset and keyword. Matches come out ordered by the
offset where they end.`,
	RunE: runSearch,
}

func init() {
	f := searchCmd.Flags()
	f.IntVar(&searchStart, "start", 0, "Byte offset to start scanning at")
	f.IntVar(&searchMax, "max", 0, "Stop after this many matches (0 = all)")
	f.BoolVar(&searchJSON, "json", false, "Output as JSON")
}

func runSearch(cmd *cobra.Command, args []string) error {
	text, _, err := readText(args)
	if err != nil {
		return err
	}
	if searchMax < 0 {
		return usageErrorf("--max must not be negative")
	}
	max := searchMax
	if max == 0 {
		max = automaton.Unbounded
	}

	r, err := resolveMatcher()
	if err != nil {
		return err
	}

	start := time.Now()
	matches, err := r.matcher.SearchAll(text, searchStart, max)
	if err != nil {
		return err
	}
	if matches == nil {
		matches = []ports.Match{}
	}
	result := &socket.SearchResult{
		Matches: matches,
		Count:   len(matches),
		Elapsed: time.Since(start).String(),
	}

	if searchJSON {
		return writeJSON(result)
	}
	fmt.Print(formatSearchResult(result, isStdoutTTY()))
	return nil
}

func writeJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
