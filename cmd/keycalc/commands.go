package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/keycalc/internal/config"
	"github.com/muurk/keycalc/internal/discovery"
	"github.com/muurk/keycalc/internal/logging"
	"github.com/muurk/keycalc/internal/mcp"
	"github.com/muurk/keycalc/internal/remote"
	"github.com/muurk/keycalc/internal/server"
	"github.com/muurk/keycalc/internal/ui"
	"github.com/muurk/keycalc/internal/urls"
	"github.com/muurk/keycalc/internal/version"
)

// Command flags
var (
	outputFormat string
	debugTrace   bool

	serveHost        string
	servePort        int
	serveAdvertise   bool
	serveInstance    string
	serveTranscripts string

	remoteAddr     string
	remoteInstance string
	remoteTimeout  int

	scanTimeout int

	forceInit bool
)

func init() {
	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(configCmd)
}

// evalCmd runs a key sequence through a fresh calculator
var evalCmd = &cobra.Command{
	Use:   "eval KEYS...",
	Short: "Evaluate a key sequence",
	Long: `Feed a key sequence to a fresh calculator and print the final display.

Arguments are joined and whitespace is ignored, so "12 + 3 =" and "12+3="
are the same sequence. Use '~' for ±, '<' for ← and 'C' for clear.

Without --format, output is detailed on a terminal and plain when piped.
The command exits with status 2 when the calculator ends in the error state.`,
	Example: `  # Simple calculation
  keycalc eval 12+3=

  # Print only the display, for scripts
  keycalc eval --format plain '7 / 2 ='

  # Show every transition and the final registers
  keycalc eval --debug 5~*3=

  # JSON including the key trace
  keycalc eval --format json --debug 1+2*3=`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEval,
}

func init() {
	evalCmd.Flags().StringVar(&outputFormat, "format", ui.FormatDetailed, "Output format (detailed, plain, json; plain when piped)")
	evalCmd.Flags().BoolVar(&debugTrace, "debug", false, "Include the key trace and register dump")
}

func runEval(cmd *cobra.Command, args []string) error {
	if err := initLogging(false); err != nil {
		return err
	}

	keys := strings.Join(args, "")
	report, err := ui.Evaluate(keys)
	if err != nil {
		return err
	}

	printer := ui.NewPrinter(cmd.OutOrStdout())
	if err := printer.PrintReport(report, reportFormat(cmd), debugTrace); err != nil {
		return err
	}

	if report.Failed() {
		return &exitError{code: 2}
	}
	return nil
}

// reportFormat is --format, or plain output when the flag is not given and
// stdout is not a terminal.
func reportFormat(cmd *cobra.Command) string {
	if !cmd.Flags().Changed("format") && !ui.IsTerminal(cmd.OutOrStdout()) {
		return ui.FormatPlain
	}
	return outputFormat
}

// serveCmd starts the remote keypad server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the remote keypad server",
	Long: `Start a WebSocket server where every connection gets its own calculator.

Clients send {"keys": "..."} or {"reset": true} and receive the resulting
state, display and registers. The server is advertised on the local network
as _keycalc._tcp unless --advertise=false is given.

To capture every message for later inspection, use --transcripts to name a
directory where one JSONL file per session will be written.

Protocol reference: ` + urls.RemoteProtocol,
	Example: `  # Start on the default port and advertise via mDNS
  keycalc serve

  # Custom port, no mDNS, debug logging
  keycalc serve --port 9000 --advertise=false --log-level debug

  # Record session transcripts
  keycalc serve --transcripts ./transcripts`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Listen host (empty = all interfaces; default from config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (default from config, "+strconv.Itoa(config.DefaultPort)+")")
	serveCmd.Flags().BoolVar(&serveAdvertise, "advertise", true, "Advertise the server via mDNS")
	serveCmd.Flags().StringVar(&serveInstance, "instance", "", "mDNS instance name (default from config)")
	serveCmd.Flags().StringVar(&serveTranscripts, "transcripts", "", "Directory for session transcripts (disabled if not specified)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := initLogging(false); err != nil {
		return err
	}

	// Flags override the config file only when given
	listen := *cfg.Server
	if cmd.Flags().Changed("host") {
		listen.Host = serveHost
	}
	if cmd.Flags().Changed("port") {
		listen.Port = servePort
	}
	if cmd.Flags().Changed("instance") {
		listen.Instance = serveInstance
	}
	if cmd.Flags().Changed("advertise") {
		listen.Advertise = serveAdvertise
	}

	var adv *discovery.Advertisement
	srvConfig := &server.Config{
		Addr:          listen.ListenAddr(),
		TranscriptDir: serveTranscripts,
		OnListen: func(addr net.Addr) {
			fmt.Fprintf(cmd.OutOrStdout(), "Remote keypad listening on ws://%s%s\n", addr, server.PathWebSocket)
			if !listen.Advertise {
				return
			}
			tcpAddr, ok := addr.(*net.TCPAddr)
			if !ok {
				return
			}
			var err error
			adv, err = discovery.Advertise(listen.Instance, tcpAddr.Port, map[string]string{
				discovery.TXTVersion: version.Version,
				discovery.TXTPath:    server.PathWebSocket,
			})
			if err != nil {
				// The server stays usable by address
				logging.Warn("mDNS advertisement failed", zap.Error(err))
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
			}
		},
	}

	srv, err := server.New(srvConfig)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	defer func() { adv.Shutdown() }()

	return srv.Start(cmd.Context())
}

// sendCmd presses keys on a remote calculator
var sendCmd = &cobra.Command{
	Use:   "send [KEYS...]",
	Short: "Press keys on a remote calculator",
	Long: `Connect to a keycalc server, press the given keys in a new session and
print the resulting display.

The server is given by --addr, or found on the local network by its mDNS
instance name with --instance. Without keys the initial state is printed.`,
	Example: `  # Press keys on a known server
  keycalc send --addr 192.168.1.20:7464 12*3=

  # Find the server by instance name
  keycalc send --instance kitchen 1/4=

  # Machine-readable output
  keycalc send --addr localhost:7464 --format json 2+2=`,
	RunE: runSend,
}

func init() {
	sendCmd.Flags().StringVar(&remoteAddr, "addr", "", "Server address host:port")
	sendCmd.Flags().StringVar(&remoteInstance, "instance", "", "Find the server via mDNS by instance name")
	sendCmd.Flags().IntVar(&remoteTimeout, "timeout", int(remote.DefaultTimeout/time.Second), "Timeout in seconds")
	sendCmd.Flags().StringVar(&outputFormat, "format", ui.FormatDetailed, "Output format (detailed, plain, json; plain when piped)")
}

func runSend(cmd *cobra.Command, args []string) error {
	if err := initLogging(false); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(remoteTimeout)*time.Second)
	defer cancel()

	addr, err := resolveRemote(ctx)
	if err != nil {
		return err
	}

	client, err := remote.Dial(ctx, addr)
	if err != nil {
		return err
	}
	defer client.Close()

	keys := strings.Join(args, "")
	resp, err := client.Send(ctx, keys)
	var reqErr *remote.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("server rejected keys: %s", reqErr.Message)
	}
	if err != nil {
		return err
	}

	report := &ui.Report{Keys: keys, Final: resp.Snapshot()}
	format := reportFormat(cmd)
	printer := ui.NewPrinter(cmd.OutOrStdout())
	if format == ui.FormatDetailed {
		printer.PrintHeader("Remote", "keycalc send",
			ui.Param{Key: "Server", Value: addr},
			ui.Param{Key: "Server version", Value: client.Greeting.Version},
		)
	}
	if err := printer.PrintReport(report, format, false); err != nil {
		return err
	}
	if report.Failed() {
		return &exitError{code: 2}
	}
	return nil
}

// resolveRemote returns --addr, or looks up --instance via mDNS.
func resolveRemote(ctx context.Context) (string, error) {
	if remoteAddr != "" {
		return remoteAddr, nil
	}
	if remoteInstance == "" {
		return "", errors.New("either --addr or --instance is required")
	}

	scanner := discovery.NewScanner()
	found, err := scanner.Find(ctx, remoteInstance)
	if err != nil {
		return "", err
	}
	return found.Addr(), nil
}

// scanCmd discovers calculators on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for keycalc servers on the network",
	Long: `Scan for keycalc servers using mDNS/DNS-SD discovery.

Lists every server advertising _keycalc._tcp with its address and version.`,
	Example: `  # Scan for 5 seconds (default)
  keycalc scan

  # Longer scan for busy networks
  keycalc scan --timeout 15`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", int(discovery.DefaultScanTimeout/time.Second), "Scan timeout in seconds")
}

func runScan(cmd *cobra.Command, args []string) error {
	if err := initLogging(false); err != nil {
		return err
	}

	printer := ui.NewPrinter(cmd.OutOrStdout())
	printer.PrintHeader("Scan", "keycalc scan",
		ui.Param{Key: "Service", Value: discovery.ServiceType},
		ui.Param{Key: "Timeout", Value: fmt.Sprintf("%ds", scanTimeout)},
	)

	scanner := &discovery.Scanner{Timeout: time.Duration(scanTimeout) * time.Second}
	calculators, err := scanner.Scan(cmd.Context())
	if err != nil {
		printer.PrintError("Scan failed", err)
		return &exitError{code: 1}
	}

	if len(calculators) == 0 {
		printer.PrintWarning("No calculators found",
			ui.Param{Key: "Hint", Value: "start one with 'keycalc serve' or try a longer --timeout"},
		)
		return nil
	}

	for _, c := range calculators {
		printer.PrintSuccess(c.Instance,
			ui.Param{Key: "Address", Value: c.Addr()},
			ui.Param{Key: "Host", Value: c.Hostname},
			ui.Param{Key: "Version", Value: c.Version()},
		)
	}
	printer.Println("Use 'keycalc send --instance <name> KEYS' to press keys on a calculator")
	return nil
}

// mcpCmd serves the calculator to MCP clients
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the calculator as MCP tools over stdio",
	Long: `Run a Model Context Protocol server on stdin/stdout.

Tools: press_keys, clear and evaluate. The session state is also available
as the calculator://state resource. Logs go to stderr.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initLogging(false); err != nil {
			return err
		}
		return mcp.Serve(mcp.NewSession())
	},
}

// configCmd groups config file commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

func init() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)

	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing file without asking")
}

// targetConfigPath is --config or the default location.
func targetConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.GetConfigPath()
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := targetConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := cfg.Marshal()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with default values",
	Example: `  # Create the default config file
  keycalc config init

  # Replace an existing file
  keycalc config init --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := targetConfigPath()
		if err != nil {
			return err
		}

		printer := ui.NewPrinter(cmd.OutOrStdout())
		if _, err := os.Stat(path); err == nil && !forceInit {
			ok := printer.Confirm(cmd.InOrStdin(), "Configuration file exists",
				[]string{path, "All settings will be reset to their defaults"}, "overwrite")
			if !ok {
				return nil
			}
		}

		if err := config.NewConfig().SaveTo(path); err != nil {
			printer.PrintError("Failed to write configuration", err)
			return &exitError{code: 1}
		}
		printer.PrintSuccess("Configuration written", ui.Param{Key: "Path", Value: path})
		return nil
	},
}
