package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/corey/acmatch/internal/app"
)

// Persistent flags shared by every command.
var (
	keywordFlags []string
	fileFlag     string
	setFlag      string
	engineFlag   string
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:          "acm",
	Short:        "acm — multi-keyword matching with Aho-Corasick",
	Long:         "Find every occurrence of many keywords in one pass, replace them, or serve the matcher from a daemon.",
	SilenceUsage: true,
}

// projectRoot returns the project root (cwd by default).
func projectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	return dir
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringArrayVarP(&keywordFlags, "keyword", "k", nil, "Keyword to match (repeatable)")
	f.StringVarP(&fileFlag, "file", "f", "", "Keyword file (one per line, or .yaml)")
	f.StringVar(&setFlag, "set", "", "Stored keyword set name")
	f.StringVar(&engineFlag, "engine", "", "Matching engine: trie or dfa")
	f.StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err}
	})

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(firstCmd)
	rootCmd.AddCommand(replaceCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(configCmd)
}

// hasSourceFlag reports whether the command line names a keyword source.
func hasSourceFlag() bool {
	return len(keywordFlags) > 0 || fileFlag != "" || setFlag != ""
}

// loadConfig merges command-line flags over .acm/config.yaml.
func loadConfig(root string) (app.Config, error) {
	cfg := app.Config{
		ProjectRoot: root,
		Keywords:    keywordFlags,
		KeywordFile: fileFlag,
		SetName:     setFlag,
		Engine:      engineFlag,
		LogLevel:    logLevelFlag,
	}
	fc, err := app.LoadConfigFile(app.NewPaths(root).Config)
	if err != nil {
		return cfg, err
	}
	return cfg.Merge(fc), nil
}

// cliLogger is the logger for one-shot commands: quiet unless asked.
func cliLogger(cfg app.Config) *logrus.Logger {
	level := cfg.LogLevel
	if level == "" {
		level = "warn"
	}
	log, err := app.NewLogger(level, os.Stderr)
	if err != nil {
		log, _ = app.NewLogger("warn", os.Stderr)
	}
	return log
}
