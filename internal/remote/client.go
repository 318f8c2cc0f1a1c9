package remote

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/keycalc/internal/logging"
	"github.com/muurk/keycalc/internal/server"
)

// DefaultTimeout bounds a single request when ctx has no deadline.
const DefaultTimeout = 10 * time.Second

// RequestError is a request the server rejected. The session is unchanged.
type RequestError struct {
	Message string
}

func (e *RequestError) Error() string {
	return "server rejected request: " + e.Message
}

// Client is one remote calculator session.
type Client struct {
	conn *websocket.Conn
	addr string
	// Greeting is the snapshot the server sent on connect
	Greeting server.Response
}

// Dial opens a session on the keypad server at addr (host:port).
func Dial(ctx context.Context, addr string) (*Client, error) {
	u := url.URL{Scheme: "ws", Host: addr, Path: server.PathWebSocket}

	dialer := *websocket.DefaultDialer
	if _, ok := ctx.Deadline(); !ok {
		dialer.HandshakeTimeout = DefaultTimeout
	}

	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	logging.LogConnection(addr, "client_connected")

	c := &Client{conn: conn, addr: addr}
	if err := c.read(ctx, &c.Greeting); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to read greeting: %w", err)
	}
	logging.Debug("Connected to keypad server",
		zap.String("addr", addr),
		zap.String("server_version", c.Greeting.Version),
	)
	return c, nil
}

// Send presses keys in the remote session and returns the resulting snapshot.
func (c *Client) Send(ctx context.Context, keys string) (server.Response, error) {
	return c.do(ctx, server.Request{Keys: keys})
}

// Reset clears the remote session.
func (c *Client) Reset(ctx context.Context) (server.Response, error) {
	return c.do(ctx, server.Request{Reset: true})
}

// State returns the current snapshot without pressing anything.
func (c *Client) State(ctx context.Context) (server.Response, error) {
	return c.do(ctx, server.Request{})
}

func (c *Client) do(ctx context.Context, req server.Request) (server.Response, error) {
	var resp server.Response

	if err := c.conn.SetWriteDeadline(deadline(ctx)); err != nil {
		return resp, err
	}
	if err := c.conn.WriteJSON(req); err != nil {
		return resp, fmt.Errorf("failed to send request: %w", err)
	}
	if err := c.read(ctx, &resp); err != nil {
		return resp, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.Error != "" {
		return resp, &RequestError{Message: resp.Error}
	}
	return resp, nil
}

func (c *Client) read(ctx context.Context, resp *server.Response) error {
	if err := c.conn.SetReadDeadline(deadline(ctx)); err != nil {
		return err
	}
	return c.conn.ReadJSON(resp)
}

// Close ends the session with a normal close frame.
func (c *Client) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	err := c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		logging.Debug("Failed to send close frame", zap.Error(err))
	}
	logging.LogConnection(c.addr, "client_closed")
	return c.conn.Close()
}

func deadline(ctx context.Context) time.Time {
	if d, ok := ctx.Deadline(); ok {
		return d
	}
	return time.Now().Add(DefaultTimeout)
}
