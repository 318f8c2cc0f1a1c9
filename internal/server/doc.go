// Package server implements the keycalc remote keypad server.
//
// Clients connect over a websocket at /ws and drive a calculator session
// with small JSON messages. Each connection owns an independent engine, so
// two clients never see each other's registers.
//
// # Protocol
//
// Right after the upgrade the server sends the initial snapshot:
//
//	{"state":"StartFirstOperand","display":"0","registers":{...},"version":"v0.3.0"}
//
// Every client message gets exactly one reply:
//
//	-> {"keys":"12+3="}
//	<- {"state":"ShowResult","display":"15","registers":{...}}
//
//	-> {"reset":true}
//	<- {"state":"StartFirstOperand","display":"0","registers":{...}}
//
// Keys use the keypad glyphs and aliases. A request with an unknown key is
// answered with "error" set and does not change the session.
//
// # Usage Example
//
//	srv, err := server.New(&server.Config{Addr: ":7464"})
//	if err != nil {
//	    return err
//	}
//	// Start blocks until ctx is cancelled or SIGINT/SIGTERM
//	return srv.Start(ctx)
//
// # Keepalive
//
// The server pings idle sessions and drops those that miss a pong for 60s.
// GET /healthz answers "ok" for load balancers and scripts.
//
// # Transcripts
//
// With Config.TranscriptDir set, every message of a session is appended to
// session-<time>-<n>.jsonl in that directory. Replay feeds a transcript's
// requests to a fresh engine and reports replies it does not reproduce.
package server
