// Package config manages the keycalc user configuration file.
//
// The file lives in the OS configuration directory:
//
//   - Linux: $XDG_CONFIG_HOME/keycalc/config.yaml or ~/.config/keycalc/config.yaml
//   - macOS: ~/.config/keycalc/config.yaml
//   - Windows: %LOCALAPPDATA%\keycalc\config.yaml
//
// Example:
//
//	version: 1
//	display:
//	  show_debug: true
//	logging:
//	  level: info
//	server:
//	  host: ""
//	  port: 7464
//	  advertise: true
//	  instance: kitchen
//
// A missing file yields defaults; missing sections are filled in on load.
// Saves are atomic (temp file then rename) and the file is created 0600.
//
// Load caches a process-wide instance; LoadFrom and SaveTo take an explicit
// path and are used by tests and the --config flag.
package config
