package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/corey/acmatch/internal/adapters/socket"
	"github.com/corey/acmatch/internal/app"
)

var (
	daemonHTTP  bool
	daemonPort  int
	daemonWatch bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the acm daemon",
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the daemon",
	Long:  "Builds the matcher once and serves it over a Unix socket (and optionally HTTP) until stopped.",
	RunE:  runDaemonStart,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the daemon",
	RunE:  runDaemonStop,
}

var daemonReloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Rebuild the daemon's matcher from its keyword source",
	RunE:  runDaemonReload,
}

func init() {
	f := daemonStartCmd.Flags()
	f.BoolVar(&daemonHTTP, "http", false, "Serve the HTTP API and websocket on 127.0.0.1")
	f.IntVar(&daemonPort, "port", 0, "HTTP port (default: derived from project root)")
	f.BoolVar(&daemonWatch, "watch", false, "Reload when the keyword file changes")

	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	daemonCmd.AddCommand(daemonReloadCmd)
}

func runDaemonStart(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	sockPath := socket.SocketPath(root)

	// Check if already running
	client := socket.NewClient(sockPath)
	if client.Ping() {
		fmt.Println("⚡ daemon already running")
		return nil
	}

	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	cfg.HTTP = cfg.HTTP || daemonHTTP
	if daemonPort != 0 {
		cfg.HTTPPort = daemonPort
	}
	cfg.Watch = cfg.Watch || daemonWatch

	a, err := app.New(cfg)
	if err != nil {
		return errors.Wrap(wrapDBError(root, err), "init")
	}

	if err := a.Start(); err != nil {
		return err
	}
	os.WriteFile(a.Paths.PIDFile, []byte(strconv.Itoa(os.Getpid())), 0644)

	fmt.Printf("⚡ acm daemon started at %s\n", sockPath)

	// Wait for a signal or a remote shutdown request
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-a.Server.ShutdownCh():
	}

	fmt.Println("\n⚡ shutting down...")
	return a.Stop()
}

func runDaemonStop(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	sockPath := socket.SocketPath(root)
	client := socket.NewClient(sockPath)

	if !client.Ping() {
		fmt.Println("⚡ daemon is not running")
		return nil
	}

	if err := client.Shutdown(); err != nil {
		return err
	}

	fmt.Println("⚡ daemon stopped")
	return nil
}

func runDaemonReload(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	client := socket.NewClient(socket.SocketPath(root))

	if !client.Ping() {
		fmt.Println("⚡ daemon is not running")
		return nil
	}

	result, err := client.Reload()
	if err != nil {
		return err
	}
	fmt.Printf("⚡ reloaded %d keywords from %s │ %s\n", result.KeywordCount, result.Source, result.Elapsed)
	return nil
}
