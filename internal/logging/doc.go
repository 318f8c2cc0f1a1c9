// Package logging provides structured logging for keycalc.
//
// This package wraps a package-global zap logger with convenience functions
// for the logging patterns used across the calculator, its remote keypad
// server and the MCP tool server.
//
// # Log Levels
//
//   - Debug: State transitions, evaluations, websocket payloads
//   - Info: Sessions opening and closing, failed evaluations
//   - Warn: Non-fatal issues (bad remote messages, advertise failures)
//   - Error: Startup failures, listener errors
//
// Logging is silent unless a level is given explicitly or through the
// KEYCALC_LOG_LEVEL environment variable.
//
// # Debug Builds
//
// At debug level the logger is built in development mode, so DPanic panics.
// The engine reports registers that are not numerals through DPanic: a crash
// while debugging, a logged error and a ShowError display otherwise.
//
// # Configuration
//
//	if err := logging.Initialize("debug", "/tmp/keycalc.log"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// The interactive calculator draws on the terminal, so it always passes a
// file path; the server and CLI commands log to stderr.
package logging
