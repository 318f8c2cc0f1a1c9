// Keycalc is a keyboard-driven four-function calculator.
//
// It runs an interactive terminal calculator, evaluates key sequences from
// the command line, and can expose a calculator session to other machines
// over WebSocket (advertised via mDNS) or to MCP clients over stdio.
//
// Usage:
//
//	keycalc [command] [flags]
//
// Running without arguments launches the interactive calculator.
// See 'keycalc --help' for available commands.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/muurk/keycalc/internal/config"
	"github.com/muurk/keycalc/internal/logging"
	"github.com/muurk/keycalc/internal/tui"
	"github.com/muurk/keycalc/internal/urls"
	"github.com/muurk/keycalc/internal/version"
)

// exitError ends the process with code without printing anything more;
// the command has already reported the failure.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func main() {
	err := rootCmd.Execute()
	logging.Sync()
	if err == nil {
		return
	}

	var exit *exitError
	if errors.As(err, &exit) {
		os.Exit(exit.code)
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// Global flags
var (
	configPath string
	logLevel   string
)

// cfg is loaded before any command runs
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "keycalc",
	Short: "Keyboard-driven four-function calculator",
	Long: `A four-function calculator driven by single key presses.

Digits, '.', + - * /, '±' (or '~'), '←' (or '<' / backspace), 'C' and '='
feed a small state machine that owns the display.

If no command is specified, the interactive calculator will launch.

Key reference: ` + urls.KeyReference + `
Report issues: ` + urls.Issues,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if configPath != "" {
			cfg, err = config.LoadFrom(configPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
	RunE: runCalculator,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default is the user config directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides config and "+logging.LogLevelEnvVar)

	rootCmd.Flags().Bool("debug", false, "Show the register panel on startup (overrides config)")

	rootCmd.AddCommand(versionCmd)
}

// initLogging starts zap at the level from --log-level, then the config
// file, then the environment. The TUI owns the terminal, so it logs to a
// file instead of stderr.
func initLogging(toFile bool) error {
	level := logLevel
	if level == "" && cfg.Logging != nil {
		level = cfg.Logging.Level
	}

	if !toFile {
		return logging.Initialize(level)
	}

	path, err := cfg.LogFilePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return logging.Initialize(level, path)
}

func runCalculator(cmd *cobra.Command, args []string) error {
	if err := initLogging(true); err != nil {
		return err
	}

	opts := tui.Options{ShowDebug: cfg.Display.ShowDebug}
	if cmd.Flags().Changed("debug") {
		opts.ShowDebug, _ = cmd.Flags().GetBool("debug")
	}

	if err := tui.Run(opts); err != nil {
		logging.Error("Calculator exited with error", zap.Error(err))
		return fmt.Errorf("calculator error: %w", err)
	}
	return nil
}

var versionFormat string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Get()
		out := cmd.OutOrStdout()
		switch versionFormat {
		case "json":
			data, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
		case "yaml":
			data, err := yaml.Marshal(info)
			if err != nil {
				return fmt.Errorf("failed to marshal YAML: %w", err)
			}
			fmt.Fprint(out, string(data))
		case "text", "":
			fmt.Fprintf(out, "keycalc %s\n", info)
		default:
			return fmt.Errorf("unknown format %q (want text, json or yaml)", versionFormat)
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().StringVar(&versionFormat, "format", "text", "Output format (text, json, yaml)")
}
