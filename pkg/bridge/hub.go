// Package bridge runs foot IK for remote animation hosts. Each websocket
// connection gets its own solver; the host streams animated frames and gets
// solved foot goals back.
package bridge

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/teslashibe/go-footik/internal/log"
	"github.com/teslashibe/go-footik/pkg/footik"
	"github.com/teslashibe/go-footik/pkg/protocol"
)

// Hub manages websocket sessions from animation hosts
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	logger   *slog.Logger

	// Callbacks
	onPose func(sessionID string, snap footik.Snapshot)

	// Stats
	messagesReceived atomic.Uint64
	messagesSent     atomic.Uint64
	framesSolved     atomic.Uint64
	errors           atomic.Uint64
}

// NewHub creates a new session hub
func NewHub() *Hub {
	return &Hub{
		sessions: make(map[string]*Session),
		logger:   log.Component("bridge"),
	}
}

// OnPose sets the callback run after every solved frame
func (h *Hub) OnPose(callback func(sessionID string, snap footik.Snapshot)) {
	h.mu.Lock()
	h.onPose = callback
	h.mu.Unlock()
}

// RegisterRoutes registers websocket routes on a Fiber app
func (h *Hub) RegisterRoutes(app *fiber.App) {
	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// Host connection endpoints, with or without a caller-chosen id
	app.Get("/ws/rig", websocket.New(h.handleRig))
	app.Get("/ws/rig/:id", websocket.New(h.handleRig))
}

// handleRig serves one host connection
func (h *Hub) handleRig(c *websocket.Conn) {
	// Get session ID from path or generate one
	id := c.Params("id")
	if id == "" {
		id = uuid.NewString()
	}
	logger := h.logger.With("session", id)

	// Register session
	session := newSession(id, c)

	h.mu.Lock()
	if old, ok := h.sessions[id]; ok {
		// A reconnect under the same id takes over
		old.Conn.Close()
	}
	h.sessions[id] = session
	count := len(h.sessions)
	h.mu.Unlock()

	logger.Info("host connected", "sessions", count)

	defer func() {
		h.mu.Lock()
		if h.sessions[id] == session {
			delete(h.sessions, id)
		}
		count := len(h.sessions)
		h.mu.Unlock()

		logger.Info("host disconnected", "sessions", count)
	}()

	// Read loop
	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			logger.Debug("read ended", "error", err)
			return
		}

		session.touch()
		h.messagesReceived.Add(1)
		h.handleMessage(session, logger, data)
	}
}

// handleMessage processes one message from a host
func (h *Hub) handleMessage(s *Session, logger *slog.Logger, data []byte) {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		h.sendError(s, protocol.CodeBadMessage, err)
		return
	}

	switch msg.Type {
	case protocol.TypeHello:
		// (Re)configure the session; a failed hello leaves it as it was
		hello, err := msg.GetHelloData()
		if err != nil {
			h.sendError(s, protocol.CodeBadMessage, err)
			return
		}
		cfg, planes, err := s.configure(hello, logger)
		if err != nil {
			h.sendError(s, protocol.CodeBadConfig, err)
			return
		}
		logger.Info("session configured", "planes", planes, "smooth_time", cfg.SmoothTime)
		if welcome, err := protocol.NewWelcomeMessage(s.ID, cfg, planes); err == nil {
			h.send(s, welcome)
		}

	case protocol.TypeFrame:
		// OnPose runs before the pose reply goes out
		frame, err := msg.GetFrameData()
		if err != nil {
			h.sendError(s, protocol.CodeBadMessage, err)
			return
		}
		pose, snap, err := s.solve(frame)
		if err != nil {
			h.sendError(s, protocol.CodeNoSession, err)
			return
		}
		h.framesSolved.Add(1)

		h.mu.RLock()
		cb := h.onPose
		h.mu.RUnlock()
		if cb != nil {
			cb(s.ID, snap)
		}

		if reply, err := protocol.NewPoseMessage(pose); err == nil {
			h.send(s, reply)
		}

	case protocol.TypePing:
		// Respond with pong
		ping, _ := msg.GetPingData()
		id := ""
		if ping != nil {
			id = ping.ID
		}
		if pong, err := protocol.NewPongMessage(id, msg.Timestamp, time.Now().UnixMilli()); err == nil {
			h.send(s, pong)
		}

	case protocol.TypePong:
		// Keepalive reply

	default:
		h.sendError(s, protocol.CodeBadMessage, fmt.Errorf("unknown message type %q", msg.Type))
	}
}

// send writes to one host and counts it. Failures are logged; the read loop
// notices the broken connection.
func (h *Hub) send(s *Session, msg *protocol.Message) {
	if err := s.Send(msg); err != nil {
		h.logger.Warn("send failed", "session", s.ID, "type", msg.Type, "error", err)
		return
	}
	h.messagesSent.Add(1)
}

// sendError rejects a message with an error reply.
func (h *Hub) sendError(s *Session, code string, err error) {
	h.errors.Add(1)
	h.logger.Warn("rejected message", "session", s.ID, "code", code, "error", err)
	if msg, merr := protocol.NewErrorMessage(code, err); merr == nil {
		h.send(s, msg)
	}
}

// GetSession returns a session by ID
func (h *Hub) GetSession(id string) *Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sessions[id]
}

// SessionCount returns the number of connected hosts
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Stats contains hub statistics
type Stats struct {
	SessionCount     int    `json:"session_count"`
	MessagesReceived uint64 `json:"messages_received"`
	MessagesSent     uint64 `json:"messages_sent"`
	FramesSolved     uint64 `json:"frames_solved"`
	Errors           uint64 `json:"errors"`
}

// GetStats returns hub statistics
func (h *Hub) GetStats() Stats {
	return Stats{
		SessionCount:     h.SessionCount(),
		MessagesReceived: h.messagesReceived.Load(),
		MessagesSent:     h.messagesSent.Load(),
		FramesSolved:     h.framesSolved.Load(),
		Errors:           h.errors.Load(),
	}
}

// GetSessionInfos returns info about all connected hosts
func (h *Hub) GetSessionInfos() []SessionInfo {
	h.mu.RLock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	infos := make([]SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		infos = append(infos, s.Info())
	}
	return infos
}

// RegisterAPIRoutes registers API routes for session inspection
func (h *Hub) RegisterAPIRoutes(api fiber.Router) {
	rigs := api.Group("/rigs")

	// List connected hosts
	rigs.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"rigs":  h.GetSessionInfos(),
			"count": h.SessionCount(),
		})
	})

	// Get hub stats
	rigs.Get("/stats", func(c *fiber.Ctx) error {
		return c.JSON(h.GetStats())
	})

	// Latest solver snapshot for one host
	rigs.Get("/:id", func(c *fiber.Ctx) error {
		s := h.GetSession(c.Params("id"))
		if s == nil {
			return c.Status(404).JSON(fiber.Map{"error": "rig not connected"})
		}
		snap, ok := s.Snapshot()
		if !ok {
			return c.Status(409).JSON(fiber.Map{"error": "rig has not sent hello"})
		}
		return c.JSON(snap)
	})

	// Disconnect a host
	rigs.Delete("/:id", func(c *fiber.Ctx) error {
		s := h.GetSession(c.Params("id"))
		if s == nil {
			return c.Status(404).JSON(fiber.Map{"error": "rig not connected"})
		}
		s.Conn.Close()
		return c.JSON(fiber.Map{"status": "closed"})
	})
}
