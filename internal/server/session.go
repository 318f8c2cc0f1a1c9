package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/keycalc/internal/calc"
	"github.com/muurk/keycalc/internal/keypad"
	"github.com/muurk/keycalc/internal/logging"
	"github.com/muurk/keycalc/internal/version"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	// Reply error for binary frames
	msgExpectedText = "expected a JSON text message"
)

// session is one websocket connection and the engine it drives.
type session struct {
	key        string
	remoteAddr string
	conn       *websocket.Conn
	engine     *calc.Engine
	transcript *transcript
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error
		logging.Warn("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	key, seq, ok := s.trackConn(conn)
	if !ok {
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}
	defer s.wg.Done()

	sess := &session{
		key:        key,
		remoteAddr: r.RemoteAddr,
		conn:       conn,
		engine:     calc.NewEngine(),
		transcript: openTranscript(s.config.TranscriptDir, seq, r.RemoteAddr),
	}

	defer func() {
		_ = conn.Close()
		sess.transcript.Close()
		s.untrackConn(key)
		logging.LogConnection(sess.remoteAddr, "session_closed")
	}()

	logging.LogConnection(sess.remoteAddr, "session_opened")

	if err := sess.run(); err != nil {
		logging.Info("Session ended with error",
			zap.String("session", key),
			zap.Error(err),
		)
	}
}

// run sends the greeting, then answers requests until the peer goes away.
func (sess *session) run() error {
	conn := sess.conn
	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return err
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	stopPing := make(chan struct{})
	defer close(stopPing)
	go sess.pingLoop(stopPing)

	hello := NewResponse(sess.engine.Snapshot())
	hello.Version = version.Version
	if err := sess.write(hello); err != nil {
		return err
	}

	for {
		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}

		logging.LogRemoteMessage(sess.remoteAddr, "received", payload)
		if msgType != websocket.TextMessage {
			sess.transcript.RecordBinary(DirectionInbound, payload)
			if err := sess.reject(msgExpectedText); err != nil {
				return err
			}
			continue
		}
		sess.transcript.Record(DirectionInbound, payload)

		if err := sess.write(sess.handle(payload)); err != nil {
			return err
		}
	}
}

// handle applies one request. Invalid requests leave the engine untouched.
func (sess *session) handle(payload []byte) Response {
	return applyRequest(sess.engine, payload)
}

// applyRequest decodes payload and feeds it to engine. Keys are parsed
// before the engine is touched, so a bad request changes nothing.
func applyRequest(engine *calc.Engine, payload []byte) Response {
	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		resp := NewResponse(engine.Snapshot())
		resp.Error = "invalid request: " + err.Error()
		return resp
	}

	events, err := keypad.ParseKeys(req.Keys)
	if err != nil {
		resp := NewResponse(engine.Snapshot())
		resp.Error = err.Error()
		return resp
	}

	if req.Reset {
		engine.Update(calc.Clear())
	}
	return NewResponse(engine.Feed(events...))
}

func (sess *session) reject(msg string) error {
	resp := NewResponse(sess.engine.Snapshot())
	resp.Error = msg
	return sess.write(resp)
}

func (sess *session) write(resp Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	if err := sess.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	if err := sess.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return err
	}
	logging.LogRemoteMessage(sess.remoteAddr, "sent", data)
	sess.transcript.Record(DirectionOutbound, data)
	return nil
}

// pingLoop keeps idle sessions alive. WriteControl may run concurrently
// with the reply writer.
func (sess *session) pingLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			err := sess.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			if err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					logging.Debug("Ping failed", zap.String("session", sess.key), zap.Error(err))
				}
				return
			}
		}
	}
}
