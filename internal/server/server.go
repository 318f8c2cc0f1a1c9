package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	appconfig "github.com/muurk/keycalc/internal/config"
	"github.com/muurk/keycalc/internal/logging"
)

// Endpoint paths
const (
	PathWebSocket = "/ws"
	PathHealth    = "/healthz"
)

// Config holds the server configuration
type Config struct {
	// Addr is the host:port to listen on. An empty host means all
	// interfaces; an empty Addr means config.DefaultPort on all interfaces.
	Addr string
	// TranscriptDir receives one JSONL file per session (empty = disabled)
	TranscriptDir string
	// OnListen is called with the bound address once the listener is up
	OnListen func(addr net.Addr)
}

// Server is the remote keypad server. Every websocket connection gets its
// own calculator session.
type Server struct {
	config   *Config
	upgrader websocket.Upgrader
	httpSrv  *http.Server
	listener net.Listener

	wg          sync.WaitGroup
	mu          sync.Mutex
	activeConns map[string]*websocket.Conn
	sessionSeq  int
	closing     bool
}

// New creates a new Server instance
func New(config *Config) (*Server, error) {
	if config == nil {
		return nil, errors.New("server config is required")
	}
	if config.Addr == "" {
		config.Addr = net.JoinHostPort("", strconv.Itoa(appconfig.DefaultPort))
	}
	_, portStr, err := net.SplitHostPort(config.Addr)
	if err != nil {
		return nil, fmt.Errorf("invalid listen address %q: %w", config.Addr, err)
	}
	if port, err := strconv.Atoi(portStr); err != nil || port < 0 || port > 65535 {
		return nil, fmt.Errorf("invalid port %q", portStr)
	}
	if config.TranscriptDir != "" {
		if err := os.MkdirAll(config.TranscriptDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create transcript directory: %w", err)
		}
	}

	s := &Server{
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Any origin; the keypad has no cookies or credentials to protect
			CheckOrigin: func(*http.Request) bool { return true },
		},
		activeConns: make(map[string]*websocket.Conn),
	}
	s.httpSrv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Handler returns the HTTP handler serving the websocket and health endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(PathWebSocket, s.handleWebSocket)
	mux.HandleFunc(PathHealth, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}

// Addr returns the listening address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Start starts the server and blocks until ctx is cancelled, a shutdown
// signal arrives, or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	addr := s.config.Addr

	logging.Info("Starting keycalc remote keypad server",
		zap.String("addr", addr),
		zap.String("transcripts", s.config.TranscriptDir),
	)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	logging.Info("Server listening for connections", zap.String("addr", listener.Addr().String()))
	if s.config.OnListen != nil {
		s.config.OnListen(listener.Addr())
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.httpSrv.Serve(listener)
	}()

	shutdown := func() error {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping server...")
		return shutdown()
	case <-ctx.Done():
		return shutdown()
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// trackConn registers a session and adds it to the wait group. It reports
// false once Shutdown has started; the caller must then close conn itself.
func (s *Server) trackConn(conn *websocket.Conn) (string, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return "", 0, false
	}
	s.wg.Add(1)
	s.sessionSeq++
	key := fmt.Sprintf("%s#%d", conn.RemoteAddr(), s.sessionSeq)
	s.activeConns[key] = conn
	return key, s.sessionSeq, true
}

func (s *Server) untrackConn(key string) {
	s.mu.Lock()
	delete(s.activeConns, key)
	s.mu.Unlock()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	// Stops the listener; hijacked websocket connections are not affected
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		logging.Error("Error shutting down HTTP server", zap.Error(err))
	}

	s.mu.Lock()
	s.closing = true
	deadline := time.Now().Add(writeWait)
	for key, conn := range s.activeConns {
		logging.Info("Closing active session", zap.String("session", key))
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
		_ = conn.WriteControl(websocket.CloseMessage, msg, deadline)
		_ = conn.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("All sessions closed gracefully")
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, forcing close")
	}

	logging.Sync()
	return nil
}

// GetActiveConnections returns the number of open sessions
func (s *Server) GetActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.activeConns)
}
