package ws

import "encoding/json"

// Inbound and outbound message types, discriminated by "type".
const (
	TypeConnection     = "connection"
	TypePing           = "ping"
	TypePong           = "pong"
	TypeAnalyze        = "analyze"
	TypeAnalysisQueued = "analysis_queued"
	TypeAnalysisResult = "analysis_result"
)

// inboundMessage is the envelope of a client control message. Timestamp is
// kept raw and echoed back verbatim in pongs.
type inboundMessage struct {
	Type       string          `json:"type"`
	Timestamp  json.RawMessage `json:"timestamp,omitempty"`
	AnalysisID string          `json:"analysis_id,omitempty"`
}

// ConnectionMessage is the welcome acknowledgment sent on connect.
type ConnectionMessage struct {
	Type     string `json:"type"`
	Status   string `json:"status"`
	ClientID string `json:"client_id"`
	Message  string `json:"message"`
}

// PongMessage answers a ping, echoing the client timestamp.
type PongMessage struct {
	Type      string          `json:"type"`
	Timestamp json.RawMessage `json:"timestamp,omitempty"`
}

// QueuedMessage acknowledges an analyze control message immediately; the
// matching AnalysisResultMessage follows once a worker finishes.
type QueuedMessage struct {
	Type       string `json:"type"`
	AnalysisID string `json:"analysis_id"`
	Status     string `json:"status"`
}
