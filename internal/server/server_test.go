package server

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/muurk/keycalc/internal/calc"
)

func newTestServer(t *testing.T, cfg *Config) (*Server, *httptest.Server) {
	t.Helper()
	if cfg == nil {
		cfg = &Config{}
	}
	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + PathWebSocket
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readResponse(t *testing.T, conn *websocket.Conn) Response {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var resp Response
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return resp
}

func roundTrip(t *testing.T, conn *websocket.Conn, req Request) Response {
	t.Helper()
	if err := conn.WriteJSON(req); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	return readResponse(t, conn)
}

func TestHealthz(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + PathHealth)
	if err != nil {
		t.Fatalf("GET /healthz error = %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(string(body)) != "ok" {
		t.Errorf("GET /healthz = %d %q", resp.StatusCode, body)
	}
}

func TestSession_Greeting(t *testing.T) {
	_, ts := newTestServer(t, nil)
	conn := dial(t, ts)

	hello := readResponse(t, conn)
	if hello.State != calc.StartFirstOperand || hello.Display != "0" {
		t.Errorf("greeting = %v %q, want StartFirstOperand \"0\"", hello.State, hello.Display)
	}
	if hello.Version == "" {
		t.Error("greeting should carry the server version")
	}
}

func TestSession_KeysAndReset(t *testing.T) {
	_, ts := newTestServer(t, nil)
	conn := dial(t, ts)
	readResponse(t, conn)

	resp := roundTrip(t, conn, Request{Keys: "12+3"})
	if resp.State != calc.EnterSecondOperand || resp.Display != "12 + 3" {
		t.Errorf("after 12+3: %v %q", resp.State, resp.Display)
	}

	// State persists across messages within a session
	resp = roundTrip(t, conn, Request{Keys: "="})
	if resp.State != calc.ShowResult || resp.Display != "15" {
		t.Errorf("after =: %v %q", resp.State, resp.Display)
	}

	resp = roundTrip(t, conn, Request{Reset: true, Keys: "7"})
	if resp.Display != "7" || resp.Registers.FirstOperand != "7" {
		t.Errorf("after reset+7: %q %+v", resp.Display, resp.Registers)
	}

	resp = roundTrip(t, conn, Request{})
	if resp.Display != "7" || resp.Error != "" {
		t.Errorf("empty request should echo state, got %q %q", resp.Display, resp.Error)
	}
}

func TestSession_BadKeysLeaveEngineUntouched(t *testing.T) {
	_, ts := newTestServer(t, nil)
	conn := dial(t, ts)
	readResponse(t, conn)

	roundTrip(t, conn, Request{Keys: "42"})

	resp := roundTrip(t, conn, Request{Keys: "1+q"})
	if resp.Error == "" {
		t.Fatal("Expected error for unknown key")
	}
	if resp.Display != "42" {
		t.Errorf("display = %q, want unchanged 42", resp.Display)
	}

	// Reset is not applied when the keys are bad
	resp = roundTrip(t, conn, Request{Reset: true, Keys: "?"})
	if resp.Error == "" || resp.Display != "42" {
		t.Errorf("reset with bad keys: %q %q", resp.Error, resp.Display)
	}
}

func TestSession_InvalidMessages(t *testing.T) {
	_, ts := newTestServer(t, nil)
	conn := dial(t, ts)
	readResponse(t, conn)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatal(err)
	}
	if resp := readResponse(t, conn); !strings.HasPrefix(resp.Error, "invalid request") {
		t.Errorf("error = %q, want invalid request", resp.Error)
	}

	if err := conn.WriteMessage(websocket.BinaryMessage, []byte{0x01}); err != nil {
		t.Fatal(err)
	}
	if resp := readResponse(t, conn); resp.Error == "" {
		t.Error("Expected error for binary message")
	}
}

func TestSession_Independent(t *testing.T) {
	_, ts := newTestServer(t, nil)
	a := dial(t, ts)
	b := dial(t, ts)
	readResponse(t, a)
	readResponse(t, b)

	roundTrip(t, a, Request{Keys: "5/0="})
	resp := roundTrip(t, b, Request{Keys: "2*4="})

	if resp.Display != "8" {
		t.Errorf("session b display = %q, want 8", resp.Display)
	}
	if resp := roundTrip(t, a, Request{}); resp.State != calc.ShowError {
		t.Errorf("session a state = %v, want ShowError", resp.State)
	}
}

func TestSession_Transcript(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "transcripts")
	srv, ts := newTestServer(t, &Config{TranscriptDir: dir})
	conn := dial(t, ts)
	readResponse(t, conn)
	roundTrip(t, conn, Request{Keys: "1+1="})

	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	waitFor(t, func() bool { return srv.GetActiveConnections() == 0 })

	files, _ := filepath.Glob(filepath.Join(dir, "session-*.jsonl"))
	if len(files) != 1 {
		t.Fatalf("found %d transcript files, want 1", len(files))
	}

	f, err := os.Open(files[0])
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var entries []TranscriptEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e TranscriptEntry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("bad transcript line %q: %v", scanner.Text(), err)
		}
		entries = append(entries, e)
	}

	// greeting, request, reply
	if len(entries) != 3 {
		t.Fatalf("transcript has %d entries, want 3", len(entries))
	}
	if entries[1].Direction != "client->server" || entries[2].Direction != "server->client" {
		t.Errorf("unexpected directions: %q %q", entries[1].Direction, entries[2].Direction)
	}
}

func TestShutdown_ClosesSessions(t *testing.T) {
	srv, ts := newTestServer(t, nil)
	conn := dial(t, ts)
	readResponse(t, conn)

	waitFor(t, func() bool { return srv.GetActiveConnections() == 1 })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Errorf("ReadMessage() error = %v, want going away close", err)
	}
	if n := srv.GetActiveConnections(); n != 0 {
		t.Errorf("active connections after shutdown = %d", n)
	}
}

func TestShutdown_RefusesNewSessions(t *testing.T) {
	srv, ts := newTestServer(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	// The test listener is still up, so the upgrade succeeds and the
	// session is closed before any greeting.
	conn := dial(t, ts)
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Errorf("ReadMessage() error = %v, want going away close", err)
	}
	if n := srv.GetActiveConnections(); n != 0 {
		t.Errorf("active connections after shutdown = %d", n)
	}
}

func TestStart_StopsOnContextCancel(t *testing.T) {
	addrCh := make(chan net.Addr, 1)
	srv, err := New(&Config{Addr: "127.0.0.1:0", OnListen: func(a net.Addr) { addrCh <- a }})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	var addr net.Addr
	select {
	case addr = <-addrCh:
	case err := <-done:
		t.Fatalf("Start() returned early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start listening")
	}

	resp, err := http.Get("http://" + addr.String() + PathHealth)
	if err != nil {
		t.Fatalf("GET /healthz error = %v", err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() error = %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("Start() did not return after cancel")
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("New(nil) expected error")
	}
	for _, addr := range []string{":70000", "localhost", ":http"} {
		if _, err := New(&Config{Addr: addr}); err == nil {
			t.Errorf("New() with addr %q expected error", addr)
		}
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met within 5s")
}
