// Package web serves a live dashboard for a running foot solver: REST
// endpoints for the latest frame and run statistics, plus websocket feeds of
// frames and landing events.
package web

import (
	"log/slog"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-footik/internal/log"
	"github.com/teslashibe/go-footik/pkg/footik"
	"github.com/teslashibe/go-footik/pkg/hub"
	"github.com/teslashibe/go-footik/pkg/landing"
	"github.com/teslashibe/go-footik/pkg/telemetry"
)

const (
	topicFrame   = "frame"
	topicLanding = "landing"

	maxEvents = 100
)

// Server is the dashboard server.
type Server struct {
	app    *fiber.App
	port   string
	logger *slog.Logger

	solver   ConfigSource
	recorder *telemetry.Recorder

	events   []landing.Event
	eventsMu sync.RWMutex

	frameHub *hub.Hub
	eventHub *hub.Hub
}

var _ landing.Observer = (*Server)(nil)

// ConfigSource reports the configuration a solver is currently running with.
// *footik.Solver implements it.
type ConfigSource interface {
	Config() footik.Config
}

// NewServer creates a dashboard for solver. Frames are kept in a recorder
// holding the last historyFrames snapshots.
func NewServer(port string, solver ConfigSource, historyFrames int) *Server {
	s := &Server{
		port:     port,
		logger:   log.Component("web"),
		solver:   solver,
		recorder: telemetry.NewRecorder(historyFrames),
		events:   make([]landing.Event, 0, maxEvents),
		frameHub: hub.New("frames"),
		eventHub: hub.New("events"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Foot IK Dashboard",
		DisableStartupMessage: true,
	})

	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/config", s.handleConfig)
	api.Get("/summary", s.handleSummary)
	api.Get("/frames", s.handleFrames)
	api.Get("/events", s.handleEvents)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/frames", websocket.New(s.handleFramesWS))
	app.Get("/ws/events", websocket.New(s.handleEventsWS))

	s.app = app
	return s
}

// App exposes the fiber app, mainly for handler tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Recorder returns the frame history backing /api/summary.
func (s *Server) Recorder() *telemetry.Recorder {
	return s.recorder
}

// Start runs the hubs and blocks serving HTTP.
func (s *Server) Start() error {
	s.logger.Info("dashboard listening", "url", "http://localhost:"+s.port)

	go s.frameHub.Run()
	go s.eventHub.Run()

	return s.app.Listen(":" + s.port)
}

// StartAsync starts the server in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			s.logger.Error("dashboard stopped", "error", err)
		}
	}()
}

// PublishFrame records a solver snapshot and pushes it to frame subscribers.
func (s *Server) PublishFrame(snap footik.Snapshot) {
	s.recorder.Record(snap)
	if err := s.frameHub.Publish(topicFrame, snap); err != nil {
		s.logger.Warn("frame encode failed", "frame", snap.Frame, "error", err)
	}
}

// OnLanding implements landing.Observer.
func (s *Server) OnLanding(e landing.Event) {
	s.eventsMu.Lock()
	s.events = append(s.events, e)
	if len(s.events) > maxEvents {
		s.events = s.events[1:]
	}
	s.eventsMu.Unlock()

	if err := s.eventHub.Publish(topicLanding, e); err != nil {
		s.logger.Warn("event encode failed", "kind", e.Kind, "error", err)
	}
}

// Clients returns the number of connected frame and event subscribers.
func (s *Server) Clients() (frames, events int) {
	return s.frameHub.ClientCount(), s.eventHub.ClientCount()
}

// Shutdown stops the hubs and the HTTP server.
func (s *Server) Shutdown() error {
	s.frameHub.Stop()
	s.eventHub.Stop()
	return s.app.Shutdown()
}
