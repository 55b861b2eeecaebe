package ws

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/datasprayio/dataspray/internal/infrastructure/logging"
	"github.com/datasprayio/dataspray/internal/providers/terminal"
	"github.com/datasprayio/dataspray/internal/shared/id"
)

const maxMessageSize = 1 << 20

// Message is a frame exchanged with the client.
type Message struct {
	Type      string `json:"type"`
	Cmd       string `json:"cmd,omitempty"`
	Data      string `json:"data,omitempty"`
	Message   string `json:"message,omitempty"`
	ConnID    string `json:"connId,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// Recorder receives connection and message counts.
type Recorder interface {
	IncWSConnections()
	DecWSConnections()
	RecordWSMessage(direction, msgType string)
}

// Handler streams command executions over WebSocket connections
type Handler struct {
	executor *terminal.Executor
	recorder Recorder
	logger   *logging.Logger
	origins  []string
	upgrader websocket.Upgrader
}

// Option configures a Handler.
type Option func(*Handler)

// WithAllowedOrigins limits which browser origins may open a connection.
// "*" accepts any origin. Without this option every origin is accepted.
func WithAllowedOrigins(origins []string) Option {
	return func(h *Handler) {
		h.origins = origins
	}
}

// NewHandler creates a new WebSocket handler. recorder may be nil.
func NewHandler(executor *terminal.Executor, recorder Recorder, logger *logging.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	h := &Handler{
		executor: executor,
		recorder: recorder,
		logger:   logger.Named("ws"),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: h.checkOrigin}
	return h
}

// checkOrigin accepts requests without an Origin header. Only browsers
// send one.
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.origins) == 0 {
		return true
	}
	for _, allowed := range h.origins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// HandleConnection upgrades the request and serves messages until the client
// goes away. Executions run one at a time per connection.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed",
			zap.String("origin", c.GetHeader("Origin")),
			zap.Error(err),
		)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	connID := id.NewConnID()
	logger := h.logger.With(zap.String("conn_id", string(connID)))
	if h.recorder != nil {
		h.recorder.IncWSConnections()
		defer h.recorder.DecWSConnections()
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	logger.Debug("WebSocket connected")
	h.send(conn, Message{Type: "system", Message: "connected", ConnID: string(connID)})

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("WebSocket read error", zap.Error(err))
			}
			break
		}
		h.record("in", msg.Type)

		switch msg.Type {
		case "execute":
			if err := h.handleExecute(ctx, conn, msg.Cmd); err != nil {
				logger.Info("WebSocket write failed", zap.Error(err))
				return
			}
		case "ping":
			h.send(conn, Message{Type: "pong"})
		default:
			h.sendError(conn, "unknown message type")
		}
	}
}

// handleExecute forwards output chunks as they arrive. The trailing status
// line is sent as its own frame. A non-nil error means the connection is
// unusable.
func (h *Handler) handleExecute(ctx context.Context, conn *websocket.Conn, cmd string) error {
	s, err := h.executor.Stream(ctx, cmd)
	if err != nil {
		return h.sendError(conn, err.Error())
	}
	defer s.Close()

	var held []byte
	for chunk := range s.Chunks() {
		if held != nil {
			if err := h.send(conn, Message{Type: "output", Data: string(held)}); err != nil {
				return err
			}
		}
		held = chunk
	}

	if err := s.Err(); err != nil {
		if held != nil {
			if err := h.send(conn, Message{Type: "output", Data: string(held)}); err != nil {
				return err
			}
		}
		return h.sendError(conn, err.Error())
	}
	return h.send(conn, Message{
		Type:      "status",
		Data:      strings.TrimLeft(string(held), "\n"),
		Timestamp: time.Now().Unix(),
	})
}

func (h *Handler) send(conn *websocket.Conn, msg Message) error {
	h.record("out", msg.Type)
	return conn.WriteJSON(msg)
}

func (h *Handler) sendError(conn *websocket.Conn, msg string) error {
	return h.send(conn, Message{
		Type:      "error",
		Message:   msg,
		Timestamp: time.Now().Unix(),
	})
}

func (h *Handler) record(direction, msgType string) {
	if h.recorder != nil {
		h.recorder.RecordWSMessage(direction, msgType)
	}
}
