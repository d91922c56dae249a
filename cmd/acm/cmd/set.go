package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/corey/acmatch/internal/adapters/kwfile"
	"github.com/corey/acmatch/internal/app"
	"github.com/corey/acmatch/internal/domain/automaton"
	"github.com/corey/acmatch/internal/ports"
)

var setJSON bool

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Manage stored keyword sets",
	Long:  "Named keyword sets live in .acm/acm.db and can be used with --set NAME.",
}

var setAddCmd = &cobra.Command{
	Use:   "add NAME [KEYWORD...]",
	Short: "Create or replace a keyword set",
	Long:  "Keywords come from the arguments, -k flags, and the -f file, in that order.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSetAdd,
}

var setListCmd = &cobra.Command{
	Use:   "list",
	Short: "List keyword sets",
	Args:  cobra.NoArgs,
	RunE:  runSetList,
}

var setShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Print the keywords of a set",
	Args:  cobra.ExactArgs(1),
	RunE:  runSetShow,
}

var setRmCmd = &cobra.Command{
	Use:   "rm NAME",
	Short: "Delete a keyword set",
	Args:  cobra.ExactArgs(1),
	RunE:  runSetRm,
}

func init() {
	setShowCmd.Flags().BoolVar(&setJSON, "json", false, "Output as JSON")
	setCmd.AddCommand(setAddCmd)
	setCmd.AddCommand(setListCmd)
	setCmd.AddCommand(setShowCmd)
	setCmd.AddCommand(setRmCmd)
}

// withStore opens the keyword-set database for the duration of fn.
func withStore(fn func(store ports.Storage) error) error {
	root := projectRoot()
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = app.NewPaths(root).DB
	}
	store, err := app.OpenStore(dbPath)
	if err != nil {
		return wrapDBError(root, err)
	}
	defer store.Close()
	return fn(store)
}

func runSetAdd(cmd *cobra.Command, args []string) error {
	name := args[0]
	keywords := append([]string{}, args[1:]...)
	keywords = append(keywords, keywordFlags...)
	source := "args"
	if fileFlag != "" {
		f, err := kwfile.Load(fileFlag)
		if err != nil {
			return err
		}
		keywords = append(keywords, f.Keywords...)
		source = "file:" + fileFlag
	}

	// Build once so a set that cannot compile is never stored.
	a, err := automaton.Build(keywords)
	if err != nil {
		return err
	}

	set := &ports.KeywordSet{
		Name:      name,
		Keywords:  a.Keywords(),
		Source:    source,
		UpdatedAt: time.Now().Unix(),
	}
	err = withStore(func(store ports.Storage) error {
		return store.SaveSet(set)
	})
	if err != nil {
		return err
	}
	fmt.Printf("⚡ saved set %s%s%s (%d keywords)\n", colorBold, name, colorReset, len(set.Keywords))
	return nil
}

func runSetList(cmd *cobra.Command, args []string) error {
	return withStore(func(store ports.Storage) error {
		names, err := store.ListSets()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("⚡ no keyword sets")
			return nil
		}
		for _, name := range names {
			set, err := store.LoadSet(name)
			if err != nil {
				return err
			}
			fmt.Print(formatSetLine(set, isStdoutTTY()))
		}
		return nil
	})
}

func runSetShow(cmd *cobra.Command, args []string) error {
	return withStore(func(store ports.Storage) error {
		set, err := store.LoadSet(args[0])
		if err != nil {
			return err
		}
		if set == nil {
			return usageErrorf("keyword set %q not found", args[0])
		}
		if setJSON {
			return writeJSON(set)
		}
		for _, kw := range set.Keywords {
			fmt.Println(kw)
		}
		return nil
	})
}

func runSetRm(cmd *cobra.Command, args []string) error {
	return withStore(func(store ports.Storage) error {
		if err := store.DeleteSet(args[0]); err != nil {
			return err
		}
		fmt.Printf("⚡ removed set %s\n", args[0])
		return nil
	})
}
