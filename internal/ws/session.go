package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"
)

// session wraps a websocket connection with a write lock. Pongs from the
// read loop and broadcasts from worker goroutines may race; gorilla permits
// only one concurrent writer per connection.
type session struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *session) WriteJSON(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(v)
}

func (s *session) Close() error {
	return s.conn.Close()
}

// Handler upgrades /ws/{client_id} requests, registers the session with the
// hub and runs the control-message loop until disconnect.
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   hclog.Logger
}

// NewHandler creates a websocket handler bound to the hub.
func NewHandler(hub *Hub, logger hclog.Logger) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	clientID := r.PathValue("client_id")
	if clientID == "" {
		http.Error(w, "missing client id", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "client_id", clientID, "error", err)
		return
	}

	sess := &session{conn: conn}
	h.hub.Register(clientID, sess)
	defer func() {
		h.hub.Unregister(clientID, sess)
		_ = sess.Close()
	}()

	if err := h.hub.SendToOne(sess, ConnectionMessage{
		Type:     TypeConnection,
		Status:   "connected",
		ClientID: clientID,
		Message:  "Connected to SecureCode",
	}); err != nil {
		h.logger.Warn("welcome message failed", "client_id", clientID, "error", err)
		return
	}

	h.readLoop(clientID, sess)
}

func (h *Handler) readLoop(clientID string, sess *session) {
	for {
		_, data, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read failed", "client_id", clientID, "error", err)
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.logger.Debug("ignoring malformed message", "client_id", clientID, "error", err)
			continue
		}

		switch msg.Type {
		case TypePing:
			h.send(clientID, sess, PongMessage{Type: TypePong, Timestamp: msg.Timestamp})
		case TypeAnalyze:
			// Immediate acknowledgment; the analysis_result push follows
			// from the worker once the entry is processed.
			h.send(clientID, sess, QueuedMessage{
				Type:       TypeAnalysisQueued,
				AnalysisID: msg.AnalysisID,
				Status:     "processing",
			})
		default:
			h.logger.Debug("ignoring unknown message type", "client_id", clientID, "type", msg.Type)
		}
	}
}

func (h *Handler) send(clientID string, sess *session, message interface{}) {
	if err := h.hub.SendToOne(sess, message); err != nil {
		h.logger.Warn("send failed", "client_id", clientID, "error", err)
	}
}
