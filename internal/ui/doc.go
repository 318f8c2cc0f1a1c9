// Package ui renders the run-once output of keycalc commands.
//
// Commands that print a result and exit (eval, scan, send, config) build
// their output from a few components:
//
//   - Header: command banner with the parameters it was called with
//   - Result: bordered success, error or warning box
//   - Trace: per-key table of state and display after each key
//
// A Printer ties these to an io.Writer and the current terminal width:
//
//	p := ui.NewPrinter(os.Stdout)
//	report, err := ui.Evaluate("12+30=")
//	if err != nil {
//	    return err
//	}
//	return p.PrintReport(report, ui.FormatDetailed, false)
//
// # Logging Integration
//
// Logging is controlled by KEYCALC_LOG_LEVEL. When unset, zap is silent so
// the styled output is not interleaved with log lines.
package ui
