package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-footik/pkg/hub"
	"github.com/teslashibe/go-footik/pkg/landing"
)

// handleStatus returns the latest solver snapshot
func (s *Server) handleStatus(c *fiber.Ctx) error {
	snap, ok := s.recorder.Latest()
	if !ok {
		return c.Status(fiber.StatusNoContent).Send(nil)
	}
	return c.JSON(snap)
}

// handleConfig returns the live solver config; the global weight changes
// while landing clips play
func (s *Server) handleConfig(c *fiber.Ctx) error {
	return c.JSON(s.solver.Config())
}

// handleSummary returns grounding statistics over the recorded frames
func (s *Server) handleSummary(c *fiber.Ctx) error {
	return c.JSON(s.recorder.Summary())
}

// handleFrames returns the recorded frames, oldest first. ?last=N trims the
// result to the newest N.
func (s *Server) handleFrames(c *fiber.Ctx) error {
	frames := s.recorder.Frames()
	if n := c.QueryInt("last", 0); n > 0 && n < len(frames) {
		frames = frames[len(frames)-n:]
	}
	return c.JSON(frames)
}

func (s *Server) handleEvents(c *fiber.Ctx) error {
	return c.JSON(s.recentEvents())
}

func (s *Server) recentEvents() []landing.Event {
	s.eventsMu.RLock()
	defer s.eventsMu.RUnlock()
	out := make([]landing.Event, len(s.events))
	copy(out, s.events)
	return out
}

// handleFramesWS sends the latest frame, then streams new ones
func (s *Server) handleFramesWS(c *websocket.Conn) {
	client := hub.NewClient(s.frameHub, c)
	if snap, ok := s.recorder.Latest(); ok {
		if msg, err := hub.Encode(topicFrame, snap); err == nil {
			client.SendNow(msg)
		}
	}
	client.Serve()
}

// handleEventsWS replays recent landing events, then streams new ones
func (s *Server) handleEventsWS(c *websocket.Conn) {
	client := hub.NewClient(s.eventHub, c)
	for _, e := range s.recentEvents() {
		msg, err := hub.Encode(topicLanding, e)
		if err != nil {
			continue
		}
		if err := client.SendNow(msg); err != nil {
			break
		}
	}
	client.Serve()
}
