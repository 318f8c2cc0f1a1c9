// Package mcp exposes the calculator as Model Context Protocol tools.
//
// One session engine is shared by all tool calls on a connection:
//
//	press_keys{keys}   feed key glyphs, returns the snapshot as JSON
//	clear              reset the session to 0
//	evaluate{a,op,b}   evaluate one operation without touching the session
//
// The current snapshot is also readable as the calculator://state resource.
package mcp
