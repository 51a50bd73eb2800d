// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jeranaias/termdeck/internal/config"
	"github.com/jeranaias/termdeck/internal/ui/app"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "termdeck",
	Short: "Terminal launcher with a local model chat panel",
	Long: `termdeck is a two-tab terminal dashboard: a launcher of shell
shortcuts next to a themed terminal pane, and a chat panel backed by a
local Ollama server with optional voice input and spoken replies.

Run without arguments to open the dashboard.`,
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	RunE: runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default ~/.termdeck/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log diagnostics to stderr")
}

// Execute runs the command tree against os.Args.
func Execute() error {
	return rootCmd.Execute()
}

// =============================================================================
// SHARED SETUP
// =============================================================================

// loadConfig reads --config when given, else ~/.termdeck. A broken default
// file yields defaults plus the load error; a broken --config file is fatal.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		cfg, err := config.LoadFromPath(configPath)
		if err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return config.Load()
}

// newLogger returns a stderr logger with --verbose and a silent one otherwise.
func newLogger(stderr io.Writer) *log.Logger {
	if verbose {
		return log.New(stderr, "", log.LstdFlags)
	}
	return log.New(io.Discard, "", 0)
}

// =============================================================================
// TUI
// =============================================================================

func runTUI(cmd *cobra.Command, _ []string) error {
	if err := RequiresTTY("open the dashboard"); err != nil {
		return fmt.Errorf("%w (try 'termdeck chat')", err)
	}

	cfg, cfgErr := loadConfig()
	if cfg == nil {
		return cfgErr
	}

	// The standard logger goes to a file while the alt screen owns the terminal.
	logPath, err := config.LogPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	logFile, err := tea.LogToFile(logPath, "termdeck")
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	if cfgErr != nil {
		log.Printf("config: load failed, using defaults | error=%v", cfgErr)
	}

	svc := app.NewServices(cfg, log.Default())
	defer svc.Close()

	p := tea.NewProgram(app.New(svc),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}
