package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corey/acmatch/internal/adapters/socket"
	"github.com/corey/acmatch/internal/app"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long:  "Shows project paths, daemon status, and the effective configuration after flags. No daemon required.",
	RunE:  runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	paths := app.NewPaths(root)
	sockPath := socket.SocketPath(root)

	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	client := socket.NewClient(sockPath)
	daemonRunning := client.Ping()
	daemonStatus := fmt.Sprintf("%s✗ not running%s", colorYellow, colorReset)
	if daemonRunning {
		daemonStatus = fmt.Sprintf("%s✓ running%s", colorGreen, colorReset)
	}

	fmt.Printf("%s⚡ acm config%s\n", colorBold, colorReset)
	fmt.Printf("  Root:       %s\n", root)
	fmt.Printf("  Config:     %s\n", paths.Config)
	fmt.Printf("  DB:         %s\n", paths.DB)
	fmt.Printf("  Socket:     %s\n", sockPath)
	fmt.Printf("  Daemon:     %s\n", daemonStatus)

	if daemonRunning {
		if portData, err := os.ReadFile(paths.PortFile); err == nil {
			fmt.Printf("  HTTP:       http://localhost:%s\n", strings.TrimSpace(string(portData)))
		}
	}

	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	fmt.Printf("\n%sEffective settings%s\n", colorBold, colorReset)
	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		fmt.Printf("  %s\n", line)
	}
	return nil
}
