package bridge

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"

	"github.com/teslashibe/go-footik/pkg/footik"
	"github.com/teslashibe/go-footik/pkg/protocol"
	"github.com/teslashibe/go-footik/pkg/rig"
	"github.com/teslashibe/go-footik/pkg/terrain"
)

// ErrNoSession is returned for frames that arrive before a hello.
var ErrNoSession = errors.New("bridge: frame before hello")

// Session is one connected animation host and the solver driving its feet.
type Session struct {
	ID        string
	Conn      *websocket.Conn
	Connected time.Time
	LastSeen  time.Time

	host   *rig.SimHost
	clock  *rig.ManualClock
	scene  *terrain.Scene
	solver *footik.Solver
	frames uint64

	// Set when the hello had no bind pose; the first frame's feet bind
	bindPending bool

	mu     sync.Mutex
	sendMu sync.Mutex
}

func newSession(id string, conn *websocket.Conn) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		Conn:      conn,
		Connected: now,
		LastSeen:  now,
	}
}

// Send sends a message to the host
func (s *Session) Send(msg *protocol.Message) error {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	data, err := msg.Bytes()
	if err != nil {
		return err
	}

	return s.Conn.WriteMessage(websocket.TextMessage, data)
}

// defaultScene is used when a hello carries no ground.
func defaultScene() *terrain.Scene {
	return terrain.NewScene("flat", terrain.Flat("ground", 0))
}

// configure builds a fresh solver from a hello. A second hello replaces the
// previous solver and resets its buffers.
func (s *Session) configure(hello *protocol.HelloData, logger *slog.Logger) (footik.Config, int, error) {
	cfg, err := hello.ResolveConfig()
	if err != nil {
		return footik.Config{}, 0, err
	}

	scene := hello.Scene
	if scene == nil || len(scene.Planes) == 0 {
		scene = defaultScene()
	}

	// The orientation references bind in footik.New, so the feet must hold
	// their bind pose before it runs
	host := rig.NewSimHost(hello.Root.ToRig())
	if hello.BindPose != nil {
		for _, side := range rig.Sides {
			host.SetBone(side.Bone(), hello.BindPose[side].ToRig())
		}
	}
	clock := &rig.ManualClock{}
	solver, err := footik.New(cfg, host, scene, clock, footik.WithLogger(logger))
	if err != nil {
		return footik.Config{}, 0, err
	}

	s.mu.Lock()
	s.host, s.clock, s.scene, s.solver = host, clock, scene, solver
	s.frames = 0
	s.bindPending = hello.BindPose == nil
	s.mu.Unlock()

	return solver.Config(), len(scene.Planes), nil
}

// solve runs both solver phases on one animated frame and returns the goals
// the host should apply.
func (s *Session) solve(f *protocol.FrameData) (protocol.PoseData, footik.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.solver == nil {
		return protocol.PoseData{}, footik.Snapshot{}, ErrNoSession
	}

	s.clock.Set(f.DeltaTime)
	s.host.SetRoot(f.Root.ToRig())
	s.host.SetAnimatedBody(f.Body.ToVec3())
	for _, side := range rig.Sides {
		s.host.SetBone(side.Bone(), f.Feet[side].ToRig())
		s.host.SetAnimatedGoal(side.Goal(), f.Goals[side].ToRig())
	}

	if s.bindPending {
		s.solver.Rebind()
		s.bindPending = false
	}

	s.host.BeginFrame()
	s.solver.Update()
	s.solver.ResolvePose()
	s.frames++

	snap := s.solver.Snapshot()
	pose := protocol.PoseData{
		Frame:      f.Frame,
		Body:       protocol.FromVec3(s.host.BodyPosition()),
		BodyOffset: snap.BodyOffset,
	}
	for _, side := range rig.Sides {
		g := side.Goal()
		pw, rw := s.host.Weights(g)
		pose.Goals[side] = protocol.GoalPose{
			Side: side.String(),
			Transform: protocol.Transform{
				Position: protocol.FromVec3(s.host.IKPosition(g)),
				Rotation: protocol.FromQuat(s.host.IKRotation(g)),
			},
			PositionWeight: pw,
			RotationWeight: rw,
			Grounded:       snap.Feet[side].Grounded,
			Mode:           snap.Feet[side].Mode,
		}
	}
	return pose, snap, nil
}

// Snapshot returns the latest solver snapshot, or false before a hello.
func (s *Session) Snapshot() (footik.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.solver == nil {
		return footik.Snapshot{}, false
	}
	return s.solver.Snapshot(), true
}

func (s *Session) touch() {
	s.mu.Lock()
	s.LastSeen = time.Now()
	s.mu.Unlock()
}

// Info returns a summary of the session.
func (s *Session) Info() SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	info := SessionInfo{
		ID:         s.ID,
		Connected:  s.Connected,
		LastSeen:   s.LastSeen,
		Frames:     s.frames,
		Configured: s.solver != nil,
	}
	if s.scene != nil {
		info.Scene = s.scene.Name
	}
	return info
}

// SessionInfo contains info about a connected host
type SessionInfo struct {
	ID         string    `json:"id"`
	Connected  time.Time `json:"connected"`
	LastSeen   time.Time `json:"last_seen"`
	Frames     uint64    `json:"frames"`
	Configured bool      `json:"configured"`
	Scene      string    `json:"scene,omitempty"`
}
