package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	replaceWith string
	replaceJSON bool
)

var replaceCmd = &cobra.Command{
	Use:   "replace [TEXT]",
	Short: "Replace every keyword occurrence in TEXT",
	Long: `Write TEXT (or stdin) with each keyword occurrence replaced. Without --with
the configured or keyword-file replacement is used; an empty replacement
deletes the matches.`,
	RunE: runReplace,
}

func init() {
	f := replaceCmd.Flags()
	f.StringVar(&replaceWith, "with", "", "Replacement string")
	f.BoolVar(&replaceJSON, "json", false, "Output as JSON")
}

func runReplace(cmd *cobra.Command, args []string) error {
	text, fromStdin, err := readText(args)
	if err != nil {
		return err
	}

	r, err := resolveMatcher()
	if err != nil {
		return err
	}

	replacement := r.replacement
	if cmd.Flags().Changed("with") {
		replacement = replaceWith
	}

	out, err := r.matcher.Replace(text, replacement)
	if err != nil {
		return err
	}

	if replaceJSON {
		return writeJSON(map[string]string{"text": out})
	}
	// Stdin text carries its own trailing newline.
	if fromStdin {
		fmt.Print(out)
	} else {
		fmt.Println(out)
	}
	return nil
}
