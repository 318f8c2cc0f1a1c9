package server

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/keycalc/internal/logging"
)

// Transcript directions
const (
	DirectionInbound  = "client->server"
	DirectionOutbound = "server->client"
)

// TranscriptEntry is one line of a session transcript file.
type TranscriptEntry struct {
	Timestamp  time.Time       `json:"timestamp"`
	MessageNum int             `json:"message_num"`
	RemoteAddr string          `json:"remote_addr"`
	Direction  string          `json:"direction"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	// Raw holds text payloads that are not valid JSON, or hex for binary messages
	Raw    string `json:"raw,omitempty"`
	Binary bool   `json:"binary,omitempty"`
}

// transcript appends every message of a session to a JSONL file.
// A nil transcript records nothing.
type transcript struct {
	mu         sync.Mutex
	file       *os.File
	remoteAddr string
	count      int
}

func openTranscript(dir string, seq int, remoteAddr string) *transcript {
	if dir == "" {
		return nil
	}

	filename := filepath.Join(dir, fmt.Sprintf("session-%s-%03d.jsonl",
		time.Now().Format("20060102-150405"), seq))

	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		logging.Error("Failed to open transcript file",
			zap.String("filename", filename),
			zap.Error(err),
		)
		return nil
	}

	logging.Debug("Recording session transcript", zap.String("filename", filename))
	return &transcript{file: f, remoteAddr: remoteAddr}
}

// Record appends one text message
func (t *transcript) Record(direction string, payload []byte) {
	t.record(direction, false, payload)
}

// RecordBinary appends one binary message, hex encoded
func (t *transcript) RecordBinary(direction string, payload []byte) {
	t.record(direction, true, payload)
}

func (t *transcript) record(direction string, binary bool, payload []byte) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.count++
	entry := TranscriptEntry{
		Timestamp:  time.Now(),
		MessageNum: t.count,
		RemoteAddr: t.remoteAddr,
		Direction:  direction,
		Binary:     binary,
	}
	switch {
	case binary:
		entry.Raw = hex.EncodeToString(payload)
	case json.Valid(payload):
		entry.Payload = json.RawMessage(payload)
	default:
		entry.Raw = string(payload)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		logging.Error("Failed to marshal transcript entry", zap.Error(err))
		return
	}
	if _, err := t.file.Write(append(data, '\n')); err != nil {
		logging.Error("Failed to write transcript entry",
			zap.String("filename", t.file.Name()),
			zap.Error(err),
		)
	}
}

// Close closes the transcript file
func (t *transcript) Close() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	_ = t.file.Close()
}
