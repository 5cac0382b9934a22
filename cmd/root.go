// Package cmd wires the cobra CLI surface onto the config resolver,
// log store, server state, and MCP dispatcher.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mark3labs/mcp-go/server"

	appconfig "github.com/nextlevelbuilder/cli-mcp-server/internal/config"
	"github.com/nextlevelbuilder/cli-mcp-server/internal/logstore"
	"github.com/nextlevelbuilder/cli-mcp-server/internal/mcpserver"
	"github.com/nextlevelbuilder/cli-mcp-server/internal/state"
)

// Version is set at build time via -ldflags "-X .../cmd.Version=v1.0.0".
var Version = "dev"

const serverName = "cli-mcp-server"

var flags appconfig.CLIFlags

var rootCmd = &cobra.Command{
	Use:   serverName,
	Short: "MCP server that brokers controlled shell command execution",
	Long:  "cli-mcp-server is a Model Context Protocol server that validates, executes, and logs shell commands on behalf of an AI agent host, over stdio JSON-RPC.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	rootCmd.Flags().StringVar(&flags.ConfigPath, "config", "", "config file path (default: $CLI_MCP_CONFIG or ./cli-mcp-config.json5 if present)")
	rootCmd.Flags().StringVar((*string)(&flags.ShellOnly), "shell", "", "enable exactly one shell (cmd, powershell, gitbash, bash, wsl)")
	rootCmd.Flags().BoolVar(&flags.DevMode, "dev", false, "enable powershell, bash, and wsl in addition to cmd")
	rootCmd.Flags().BoolVar(&flags.Yolo, "yolo", false, "clear deny-lists and injection protection (mutually exclusive with --unsafe)")
	rootCmd.Flags().BoolVar(&flags.Unsafe, "unsafe", false, "yolo plus drop working-directory restriction")
	rootCmd.Flags().BoolVar(&flags.AllowAllDirs, "allow-all-dirs", false, "drop directory restriction when no allowed paths or initial dir are configured")
	rootCmd.Flags().StringVar(&flags.InitialDir, "initial-dir", "", "starting current directory for every enabled shell")
	rootCmd.Flags().StringVar(&flags.LogDir, "log-dir", "", "enable a file-based mirror of stored log entries under this directory")
	rootCmd.Flags().BoolVar(&flags.WatchConfig, "watch-config", false, "hot-reload shell configs when the config file changes")
	rootCmd.Flags().StringArrayVar(&flags.DenyCommand, "deny-command", nil, "SHELL=CMD; repeatable; pass SHELL= to clear")
	rootCmd.Flags().StringArrayVar(&flags.DenyArg, "deny-arg", nil, "SHELL=ARG; repeatable; pass SHELL= to clear")
	rootCmd.Flags().StringArrayVar(&flags.DenyOperator, "deny-operator", nil, "SHELL=OP; repeatable; pass SHELL= to clear")
	rootCmd.Flags().StringArrayVar(&flags.AllowPath, "allow-path", nil, "SHELL=PATH; repeatable; pass SHELL= to clear")

	rootCmd.AddCommand(versionCmd())
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s %s\n", serverName, Version)
		},
	}
}

// resolveConfigPath implements the discovery order: --config flag, else
// $CLI_MCP_CONFIG, else ./cli-mcp-config.json5 if present, else no file
// (built-in defaults only).
func resolveConfigPath() string {
	if flags.ConfigPath != "" {
		return flags.ConfigPath
	}
	if v := os.Getenv("CLI_MCP_CONFIG"); v != "" {
		return v
	}
	if _, err := os.Stat("cli-mcp-config.json5"); err == nil {
		return "cli-mcp-config.json5"
	}
	return ""
}

func runServer() error {
	configPath := resolveConfigPath()

	cfg, err := buildConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logs := logstore.New(cfg.Logging, flags.LogDir)
	logs.StartSweep(cfg.Logging.CleanupIntervalMinutes)
	defer logs.StopSweep()

	st := state.New(cfg.Shells, logs, cfg.Logging)
	mcp := mcpserver.New(st, serverName, Version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("cmd.shutdown.signal")
		cancel()
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.ServeStdio(mcp)
	})
	if flags.WatchConfig && configPath != "" {
		g.Go(func() error {
			return watchConfig(gctx, configPath, st)
		})
	}

	if err := g.Wait(); err != nil && gctx.Err() == nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// buildConfig assembles the layered config: built-in defaults, the
// optional file overlay, and the CLI overlay, per the resolver's merge
// order.
func buildConfig(configPath string) (*appconfig.Config, error) {
	fileOverlay, err := appconfig.LoadFileOverlay(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	cliOverlay, err := appconfig.BuildCLIOverlay(flags)
	if err != nil {
		return nil, fmt.Errorf("parse CLI overrides: %w", err)
	}
	return appconfig.Resolve(appconfig.Default(), fileOverlay, cliOverlay, flags)
}

// watchConfig re-resolves and atomically swaps the shell config map
// whenever configPath changes on disk. In-flight commands keep using
// the snapshot they already captured.
func watchConfig(ctx context.Context, configPath string, st *state.ServerState) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start config watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(configPath); err != nil {
		return fmt.Errorf("watch config file: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := buildConfig(configPath)
			if err != nil {
				slog.Warn("config.reload.failed", "error", err)
				continue
			}
			st.ReplaceShells(cfg.Shells)
			slog.Info("config.reload.applied", "enabledShells", len(cfg.EnabledShells()))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("config.watch.error", "error", err)
		}
	}
}

// Execute runs the root cobra command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
