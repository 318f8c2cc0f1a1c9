package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/muurk/keycalc/internal/calc"
)

// ReplayMismatch is a recorded reply that a fresh session answers
// differently. Want is the recorded reply, Got the replayed one.
type ReplayMismatch struct {
	Line       int
	MessageNum int
	Want       Response
	Got        Response
}

func (m ReplayMismatch) String() string {
	return fmt.Sprintf("line %d (msg #%d): recorded %s %q error=%q, replayed %s %q error=%q",
		m.Line, m.MessageNum,
		m.Want.State, m.Want.Display, m.Want.Error,
		m.Got.State, m.Got.Display, m.Got.Error)
}

// ReplayResult summarizes one replayed transcript.
type ReplayResult struct {
	Requests   int
	Replies    int
	Mismatches []ReplayMismatch
}

// OK reports whether every recorded reply was reproduced.
func (r *ReplayResult) OK() bool {
	return len(r.Mismatches) == 0
}

// Replay feeds the inbound messages of a session transcript to a fresh
// engine and compares each reply with the recorded one. The greeting is
// checked against the initial state; its version field is ignored.
func Replay(r io.Reader) (*ReplayResult, error) {
	result := &ReplayResult{}
	engine := calc.NewEngine()

	// Replies owed to the client, in order. The greeting comes first.
	pending := []Response{NewResponse(engine.Snapshot())}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*maxMessageSize)

	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}

		var entry TranscriptEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			return result, fmt.Errorf("line %d: invalid transcript entry: %w", line, err)
		}

		switch entry.Direction {
		case DirectionInbound:
			result.Requests++
			if entry.Binary {
				resp := NewResponse(engine.Snapshot())
				resp.Error = msgExpectedText
				pending = append(pending, resp)
				continue
			}
			payload := []byte(entry.Payload)
			if entry.Payload == nil {
				payload = []byte(entry.Raw)
			}
			pending = append(pending, applyRequest(engine, payload))

		case DirectionOutbound:
			result.Replies++
			if len(pending) == 0 {
				return result, fmt.Errorf("line %d: reply without a request", line)
			}
			replayed := pending[0]
			pending = pending[1:]

			var recorded Response
			if err := json.Unmarshal(entry.Payload, &recorded); err != nil {
				return result, fmt.Errorf("line %d: invalid reply payload: %w", line, err)
			}
			recorded.Version = ""
			if recorded != replayed {
				result.Mismatches = append(result.Mismatches, ReplayMismatch{
					Line:       line,
					MessageNum: entry.MessageNum,
					Want:       recorded,
					Got:        replayed,
				})
			}

		default:
			return result, fmt.Errorf("line %d: unknown direction %q", line, entry.Direction)
		}
	}
	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("failed to read transcript: %w", err)
	}
	return result, nil
}
