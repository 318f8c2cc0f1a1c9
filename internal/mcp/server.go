package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	mcpsdk "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/muurk/keycalc/internal/calc"
	"github.com/muurk/keycalc/internal/keypad"
	"github.com/muurk/keycalc/internal/logging"
	"github.com/muurk/keycalc/internal/version"
)

const (
	// ServerName is reported to MCP clients during initialization.
	ServerName = "keycalc"

	// StateURI is the resource holding the current session snapshot.
	StateURI = "calculator://state"
)

// Session holds the calculator engine shared by every tool call.
// Tool calls may arrive concurrently, so all engine access goes through mu.
type Session struct {
	mu     sync.Mutex
	engine *calc.Engine
}

// NewSession creates a session with a fresh engine.
func NewSession() *Session {
	return &Session{engine: calc.NewEngine()}
}

// NewServer builds the MCP server and registers the calculator tools and
// the state resource against session.
func NewServer(session *Session) *server.MCPServer {
	s := server.NewMCPServer(
		ServerName,
		version.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, true),
		server.WithLogging(),
		server.WithRecovery(),
	)

	pressTool := mcpsdk.NewTool("press_keys",
		mcpsdk.WithDescription("Press calculator keys in order and return the resulting display and registers. "+
			"Keys: digits, '.', + - * /, '~' or '±' to toggle sign, '<' or '←' for backspace, 'C' to clear, '=' to evaluate."),
		mcpsdk.WithString("keys",
			mcpsdk.Required(),
			mcpsdk.Description("Key glyphs to press, e.g. \"12+3=\". Whitespace is ignored."),
		),
	)
	s.AddTool(pressTool, session.handlePressKeys)

	clearTool := mcpsdk.NewTool("clear",
		mcpsdk.WithDescription("Press the clear key, resetting the calculator to 0."),
	)
	s.AddTool(clearTool, session.handleClear)

	evalTool := mcpsdk.NewTool("evaluate",
		mcpsdk.WithDescription("Evaluate a single binary operation without touching the session calculator."),
		mcpsdk.WithString("a", mcpsdk.Required(), mcpsdk.Description("First operand, e.g. \"-12.5\"")),
		mcpsdk.WithString("op", mcpsdk.Required(), mcpsdk.Description("Operator: one of + - * /")),
		mcpsdk.WithString("b", mcpsdk.Required(), mcpsdk.Description("Second operand")),
	)
	s.AddTool(evalTool, handleEvaluate)

	stateResource := mcpsdk.NewResource(
		StateURI,
		"Calculator state",
		mcpsdk.WithResourceDescription("Current state, display and registers of the session calculator"),
		mcpsdk.WithMIMEType("application/json"),
	)
	s.AddResource(stateResource, session.handleState)

	return s
}

// Serve runs the MCP server over stdin/stdout until the client disconnects.
func Serve(session *Session) error {
	logging.Info("Starting MCP server", zap.String("transport", "stdio"))
	if err := server.ServeStdio(NewServer(session)); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

// Press feeds events into the session engine and returns the final snapshot.
func (s *Session) Press(events ...calc.Event) calc.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Feed(events...)
}

// Snapshot returns the current session snapshot.
func (s *Session) Snapshot() calc.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Snapshot()
}

func (s *Session) handlePressKeys(ctx context.Context, request mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	args := request.GetArguments()
	keys, ok := args["keys"].(string)
	if !ok {
		return mcpsdk.NewToolResultError("keys must be a string"), nil
	}

	events, err := keypad.ParseKeys(keys)
	if err != nil {
		return mcpsdk.NewToolResultError(err.Error()), nil
	}

	logging.Debug("MCP press_keys", zap.String("keys", keys), zap.Int("events", len(events)))
	return snapshotResult(s.Press(events...))
}

func (s *Session) handleClear(ctx context.Context, request mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	return snapshotResult(s.Press(calc.Clear()))
}

func handleEvaluate(ctx context.Context, request mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	args := request.GetArguments()
	var operands [3]string
	for i, name := range []string{"a", "op", "b"} {
		v, ok := args[name].(string)
		if !ok {
			return mcpsdk.NewToolResultError(fmt.Sprintf("%s must be a string", name)), nil
		}
		operands[i] = v
	}

	result, err := calc.EvaluateString(operands[0], operands[1], operands[2])
	if err != nil {
		return mcpsdk.NewToolResultError(err.Error()), nil
	}
	return mcpsdk.NewToolResultText(result), nil
}

func (s *Session) handleState(ctx context.Context, request mcpsdk.ReadResourceRequest) ([]mcpsdk.ResourceContents, error) {
	data, err := json.MarshalIndent(s.Snapshot(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state: %w", err)
	}
	return []mcpsdk.ResourceContents{
		mcpsdk.TextResourceContents{
			URI:      StateURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func snapshotResult(snap calc.Snapshot) (*mcpsdk.CallToolResult, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return mcpsdk.NewToolResultError(fmt.Sprintf("failed to marshal snapshot: %v", err)), nil
	}
	return mcpsdk.NewToolResultText(string(data)), nil
}
