// Package urls keeps every project URL in one place so help text, the TUI
// footer and error hints can be updated together before a release.
//
// Usage:
//
//	import "github.com/muurk/keycalc/internal/urls"
//
//	fmt.Printf("Key reference: %s\n", urls.KeyReference)
package urls
