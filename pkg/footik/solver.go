// Package footik places a humanoid character's feet on uneven ground.
//
// Each frame runs in two phases that must not be reordered:
//
//  1. Update, during the general update tick: track foot orientation, probe
//     the ground and compose per-foot height and rotation targets.
//  2. ResolvePose, inside the host's IK callback after the base pose is
//     evaluated: smooth the buffers toward the targets and write the IK goals
//     and the body height.
//
// Only the vertical foot position and a rotation delta are overridden; the
// rest of the animated pose passes through.
package footik

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/teslashibe/go-footik/internal/log"
	"github.com/teslashibe/go-footik/pkg/geom"
	"github.com/teslashibe/go-footik/pkg/rig"
)

// ErrNilDependency is returned by New when a collaborator is missing.
var ErrNilDependency = errors.New("footik: nil dependency")

// Option configures a Solver.
type Option func(*Solver)

// WithLogger sets the logger used for state transitions.
func WithLogger(l *slog.Logger) Option {
	return func(s *Solver) {
		if l != nil {
			s.logger = l
		}
	}
}

// Solver is the per-character foot placement pipeline.
//
// It is driven from a single goroutine. Snapshot and Config may be called
// from others.
type Solver struct {
	cfg    Config
	host   rig.PoseHost
	clock  rig.Clock
	probe  GroundProbe
	orient *OrientationTracker
	logger *slog.Logger

	feet       [2]FootState
	bodyOffset float64
	frame      uint64
	updated    bool

	mu   sync.RWMutex
	snap Snapshot
}

// New validates cfg and binds a solver to the character's current pose.
func New(cfg Config, host rig.PoseHost, ground rig.GroundQuery, clock rig.Clock, opts ...Option) (*Solver, error) {
	if host == nil || ground == nil || clock == nil {
		return nil, fmt.Errorf("%w: host, ground and clock are required", ErrNilDependency)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Solver{
		host:   host,
		clock:  clock,
		logger: log.Component("footik"),
	}
	for _, opt := range opts {
		opt(s)
	}

	if cfg.GroundLayers == 0 {
		s.logger.Info("ground layers empty, using default layer")
		cfg.GroundLayers = rig.DefaultLayerMask
	}
	s.cfg = cfg
	s.probe = NewGroundProbe(ground, cfg)

	s.orient = NewOrientationTracker(host, host.RootForward())
	s.orient.Bind()

	rootY := host.RootPosition().Y()
	for _, side := range rig.Sides {
		s.feet[side] = newFootState(side, rootY, cfg.AnkleHeight())
	}

	s.logger.Debug("solver bound",
		"ankle_height", cfg.AnkleHeight(),
		"smooth_time", cfg.SmoothTime,
		"layers", uint32(cfg.GroundLayers),
	)
	return s, nil
}

// Config returns the configuration the solver runs with, including any
// weight change made by SetGlobalWeight.
func (s *Solver) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// SetGlobalWeight changes the overall IK weight between frames, for example
// to fade foot placement out while a landing clip plays. w is clamped to [0, 1].
func (s *Solver) SetGlobalWeight(w float64) {
	s.mu.Lock()
	s.cfg.GlobalWeight = geom.Clamp(w, 0, 1)
	s.mu.Unlock()
}

// Rebind recreates the orientation references from the current pose, for
// example after the skeleton was swapped. Buffers are kept so the feet do not
// snap.
func (s *Solver) Rebind() {
	s.orient.Bind()
	s.logger.Info("orientation references rebound")
}

// Foot returns a copy of one foot's working state.
func (s *Solver) Foot(side rig.Side) FootState {
	return s.feet[side]
}

// Update runs the kinematic phase: orientation, ground probe, slope
// correction and targets for both feet.
func (s *Solver) Update() {
	root := s.host.RootPosition()

	for _, side := range rig.Sides {
		f := &s.feet[side]

		f.Forward = s.orient.Forward(side)
		f.PenetrationAngle = PenetrationAngle(f.Forward)

		hit := s.probe.Cast(s.host.BonePosition(side.Bone()), s.cfg.ProbeStartHeight(side), root)
		if s.updated && hit.OK != f.Hit.OK {
			s.logger.Debug("foot grounding changed", "side", side.String(), "grounded", hit.OK)
		}
		f.Hit = hit

		if hit.OK {
			f.SurfaceAngle = SurfaceAngle(f.Forward, hit.Normal)
		} else {
			f.SurfaceAngle = 0
		}

		f.EffectiveAngle = f.PenetrationAngle - f.SurfaceAngle
		f.HeightOffset = HeightOffset(f.EffectiveAngle, s.cfg.HeelToToeLength, s.cfg.AnkleHeight())
		f.TargetY = TargetHeight(hit.Point.Y(), f.HeightOffset, s.cfg.WorldOffset())
		f.TargetUp = TargetUp(hit, s.cfg.MaxRotationAngle)
	}
	s.updated = true
}

// ResolvePose runs the pose phase: damped blending, goal writes and the body
// adjustment. Call it from the host's IK callback, after Update.
func (s *Solver) ResolvePose() {
	dt := s.clock.DeltaTime()

	for _, side := range rig.Sides {
		f := &s.feet[side]
		hostPos := s.host.IKPosition(side.Goal())

		mode := blendHeight(f, s.cfg, hostPos.Y(), dt)
		if mode != f.Mode {
			s.logger.Debug("foot mode changed", "side", side.String(), "from", f.Mode.String(), "to", mode.String())
			f.Mode = mode
		}
		blendRotation(f, s.cfg, dt)

		s.applyFoot(f, hostPos)
	}

	s.bodyOffset = s.applyBody()
	s.frame++
	s.publish(dt)
}
