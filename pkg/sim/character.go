// Package sim walks a simulated character across a terrain scene so the foot
// solver can be watched and measured without a game engine.
package sim

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/teslashibe/go-footik/internal/log"
	"github.com/teslashibe/go-footik/pkg/footik"
	"github.com/teslashibe/go-footik/pkg/geom"
	"github.com/teslashibe/go-footik/pkg/landing"
	"github.com/teslashibe/go-footik/pkg/rig"
	"github.com/teslashibe/go-footik/pkg/schedule"
	"github.com/teslashibe/go-footik/pkg/terrain"
)

// facing turns the rig's +Z forward onto the walking direction, +X.
var facing = mgl64.QuatRotate(math.Pi/2, geom.Up)

// Character is a walker: a flat-ground gait animation, a root that follows
// the terrain under it and falls off ledges, a foot solver correcting the
// gait to the real ground, and a landing detector.
//
// Step is not safe for concurrent use; the observers it notifies may be.
type Character struct {
	cfg    Config
	ik     footik.Config
	scene  *terrain.Scene
	logger *slog.Logger

	host     *rig.SimHost
	solver   *footik.Solver
	tasks    *schedule.Queue
	playback *landing.ClipPlayback
	detector *landing.Detector

	x, y     float64 // Root position along the walk and its height
	vy       float64 // Vertical speed while airborne
	grounded bool
	phase    float64 // Gait cycle position in [0, 1)
	frames   uint64
}

// New places a character at the origin of scene, standing on whatever ground
// is there.
func New(cfg Config, ik footik.Config, land landing.Config, scene *terrain.Scene) (*Character, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if scene == nil || len(scene.Planes) == 0 {
		return nil, terrain.ErrEmptyScene
	}

	c := &Character{
		cfg:      cfg,
		ik:       ik,
		scene:    scene,
		logger:   log.Component("sim"),
		tasks:    schedule.New(),
		playback: landing.NewClipPlayback(cfg.ClipDurations, 0.4),
		grounded: true,
	}
	if h, ok := scene.HeightBelow(0, 0, cfg.MaxClimb); ok {
		c.y = h
	}

	c.host = rig.NewSimHost(c.root())
	c.animate()

	solver, err := footik.New(ik, c.host, scene, rig.FixedClock(cfg.DeltaTime()))
	if err != nil {
		return nil, err
	}
	c.solver = solver

	detector, err := landing.NewDetector(land, c.tasks, c.playback)
	if err != nil {
		return nil, err
	}
	c.detector = detector

	c.logger.Info("character ready", "scene", scene.Name, "ground", c.y, "speed", cfg.Speed)
	return c, nil
}

// Solver returns the character's foot solver.
func (c *Character) Solver() *footik.Solver { return c.solver }

// Host returns the simulated pose host.
func (c *Character) Host() *rig.SimHost { return c.host }

// Tasks returns the character's task queue.
func (c *Character) Tasks() *schedule.Queue { return c.tasks }

// Subscribe registers a landing observer.
func (c *Character) Subscribe(o landing.Observer) {
	c.detector.Subscribe(o)
}

// Landing reports whether a landing clip is playing.
func (c *Character) Landing() bool {
	return c.detector.Landing()
}

// Position returns the root position.
func (c *Character) Position() mgl64.Vec3 {
	return mgl64.Vec3{c.x, c.y, 0}
}

// Grounded reports whether the root stands on the ground.
func (c *Character) Grounded() bool {
	return c.grounded
}

// Frames returns the number of frames stepped.
func (c *Character) Frames() uint64 {
	return c.frames
}

// Step advances the simulation by one tick and returns the solver snapshot.
func (c *Character) Step() footik.Snapshot {
	dt := c.cfg.DeltaTime()
	prevY := c.y

	c.move(dt)
	c.phase = math.Mod(c.phase+dt*c.cfg.Speed/(2*c.cfg.StepLength), 1)
	c.animate()

	// Tasks first: work scheduled by the detector this frame is polled from
	// the next one
	c.tasks.Tick(dt)
	c.playback.Tick(dt)
	c.detector.Update(landing.Motion{
		Height:        c.y,
		VerticalSpeed: (c.y - prevY) / dt,
		Grounded:      c.grounded,
		Running:       c.cfg.Running,
	})

	if c.detector.Landing() {
		c.solver.SetGlobalWeight(c.cfg.LandingWeight)
	} else {
		c.solver.SetGlobalWeight(c.ik.GlobalWeight)
	}

	c.host.BeginFrame()
	c.solver.Update()
	c.solver.ResolvePose()
	c.frames++

	return c.solver.Snapshot()
}

// Run steps the character at the configured tick rate until ctx is done.
// onFrame, when set, receives every snapshot.
func (c *Character) Run(ctx context.Context, onFrame func(footik.Snapshot)) {
	ticker := time.NewTicker(c.cfg.TickRate)
	defer ticker.Stop()

	c.logger.Info("walking", "hz", math.Round(1/c.cfg.DeltaTime()))

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("stopped", "frames", c.frames, "x", c.x)
			return
		case <-ticker.C:
			snap := c.Step()
			if onFrame != nil {
				onFrame(snap)
			}
		}
	}
}

// move advances the root along +X and keeps it on the ground, falling when
// the ground drops away by more than the snap distance.
func (c *Character) move(dt float64) {
	c.x += c.cfg.Speed * dt

	ground, ok := c.scene.HeightBelow(c.x, 0, c.y+c.cfg.MaxClimb)
	if !ok {
		ground = math.Inf(-1)
	}

	if c.grounded && c.y-ground <= c.cfg.SnapDistance {
		c.y = ground
		c.vy = 0
		return
	}

	if c.grounded {
		c.logger.Debug("left the ground", "x", c.x, "drop", c.y-ground)
	}
	c.grounded = false
	c.vy -= c.cfg.Gravity * dt
	c.y += c.vy * dt

	if c.y <= ground {
		c.y = ground
		c.vy = 0
		c.grounded = true
		c.logger.Debug("touched down", "x", c.x)
	}
}

func (c *Character) root() rig.Transform {
	return rig.Transform{Position: c.Position(), Rotation: facing}
}

// animate writes the flat-ground gait: each foot spends half the cycle
// planted, sliding back under the moving root, and half swinging forward.
func (c *Character) animate() {
	root := c.root()
	c.host.SetRoot(root)
	c.host.SetAnimatedBody(mgl64.Vec3{c.x, c.y + c.cfg.HipHeight, 0})

	for _, side := range rig.Sides {
		p := c.phase
		z := c.cfg.StanceWidth
		if side == rig.Right {
			p = math.Mod(p+0.5, 1)
			z = -z
		}

		var dx, lift float64
		if p < 0.5 {
			dx = c.cfg.StepLength * (0.5 - 2*p)
		} else {
			s := (p - 0.5) * 2
			dx = c.cfg.StepLength * (s - 0.5)
			lift = c.cfg.StepHeight * math.Sin(math.Pi*s)
		}

		foot := rig.Transform{
			Position: mgl64.Vec3{c.x + dx, c.y + c.ik.AnkleHeight() + lift, z},
			Rotation: facing,
		}
		c.host.SetBone(side.Bone(), foot)
		c.host.SetAnimatedGoal(side.Goal(), foot)
	}
}
