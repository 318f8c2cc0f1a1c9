package server

import (
	"github.com/muurk/keycalc/internal/calc"
)

// Request is a client message. Keys are parsed with the keypad package;
// Reset clears the session before any keys are applied. An empty request
// returns the current snapshot.
type Request struct {
	Keys  string `json:"keys,omitempty"`
	Reset bool   `json:"reset,omitempty"`
}

// Response is sent once on connect and once per request.
type Response struct {
	State     calc.State     `json:"state"`
	Display   string         `json:"display"`
	Registers calc.Registers `json:"registers"`
	// Error is set when the request itself was rejected; the engine is then unchanged.
	Error string `json:"error,omitempty"`
	// Version is only set on the greeting sent right after the upgrade.
	Version string `json:"version,omitempty"`
}

// NewResponse converts an engine snapshot into a response.
func NewResponse(snap calc.Snapshot) Response {
	return Response{
		State:     snap.State,
		Display:   snap.Display,
		Registers: snap.Registers,
	}
}

// Snapshot converts the response back into an engine snapshot.
func (r Response) Snapshot() calc.Snapshot {
	return calc.Snapshot{
		State:     r.State,
		Display:   r.Display,
		Registers: r.Registers,
	}
}
