package capture

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	capturesvc "github.com/viblyapp/vibly/backend/internal/service/capture"
	"github.com/viblyapp/vibly/backend/internal/service/session"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 30 * time.Second
	writeTimeout = 10 * time.Second
)

// Handler is the platform adapter between a browser microphone and the
// session's capture controller: the client streams recorded chunks and
// interim transcription over one WebSocket, and session events (messages,
// playback transitions, synthesized audio) flow back over the same socket.
type Handler struct {
	sessions *session.Manager
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// New creates the capture WebSocket handler.
func New(sessions *session.Manager, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		sessions: sessions,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(*http.Request) bool { return true },
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		log: log,
	}
}

// RegisterRoutes mounts the capture WebSocket route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/session/{sessionID}/capture", h.handleCapture)
}

type inboundMessage struct {
	Type string          `json:"type"` // start, chunk, interim, stop, device-error
	Data json.RawMessage `json:"data,omitempty"`
}

type chunkPayload struct {
	Audio  []byte `json:"audio"`
	Format string `json:"format,omitempty"`
}

type interimPayload struct {
	Text string `json:"text"`
}

type startPayload struct {
	Format string `json:"format,omitempty"`
}

type outboundMessage struct {
	Type      string        `json:"type"`
	SessionID string        `json:"sessionId,omitempty"`
	Event     *session.Event `json:"event,omitempty"`
	Error     string        `json:"error,omitempty"`
	Timestamp int64         `json:"timestamp"`
}

func (h *Handler) handleCapture(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "sessionID is required", http.StatusBadRequest)
		return
	}

	sess, err := h.sessions.Get(sessionID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	h.log.Info("capture socket connected", zap.String("sessionId", sessionID))

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// One writer guards the socket: the event pump, the ping loop and error
	// replies all funnel through it.
	var writeMu sync.Mutex
	send := func(msg outboundMessage) {
		msg.SessionID = sessionID
		msg.Timestamp = time.Now().UnixMilli()
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(msg); err != nil {
			h.log.Debug("websocket write failed", zap.Error(err))
		}
	}

	events, unsubscribe := sess.Subscribe()
	defer unsubscribe()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, open := <-events:
				if !open {
					return
				}
				send(outboundMessage{Type: "event", Event: &ev})
			}
		}
	}()

	go h.pingLoop(ctx, conn, &writeMu)

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Debug("websocket read error", zap.Error(err))
			}
			// Treat a dropped socket like a released stop button.
			sess.Capture.Stop()
			return
		}

		conn.SetReadDeadline(time.Now().Add(readTimeout))
		h.handleMessage(sess, send, &msg)
	}
}

func (h *Handler) handleMessage(sess *session.Session, send func(outboundMessage), msg *inboundMessage) {
	switch msg.Type {
	case "start":
		var payload startPayload
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &payload); err != nil {
				send(outboundMessage{Type: "error", Error: "invalid start payload"})
				return
			}
		}
		if err := sess.Capture.Start(payload.Format); err != nil {
			if errors.Is(err, capturesvc.ErrCaptureActive) {
				send(outboundMessage{Type: "error", Error: "recording already in progress"})
				return
			}
			send(outboundMessage{Type: "error", Error: err.Error()})
			return
		}
		send(outboundMessage{Type: "capture-started"})

	case "chunk":
		var payload chunkPayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			send(outboundMessage{Type: "error", Error: "invalid chunk payload"})
			return
		}
		sess.Capture.OnChunk(payload.Audio)

	case "interim":
		var payload interimPayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			return
		}
		sess.SetInterim(payload.Text)

	case "stop":
		sess.Capture.Stop()
		send(outboundMessage{Type: "capture-stopped"})

	case "device-error":
		// Microphone acquisition failed on the client; no turn is created.
		h.log.Warn("client reported device error", zap.String("sessionId", sess.ID))
		send(outboundMessage{Type: "error", Error: capturesvc.ErrDeviceUnavailable.Error()})

	default:
		send(outboundMessage{Type: "error", Error: "unknown message type"})
	}
}

func (h *Handler) pingLoop(ctx context.Context, conn *websocket.Conn, writeMu *sync.Mutex) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			writeMu.Lock()
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
