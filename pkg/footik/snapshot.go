package footik

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/teslashibe/go-footik/pkg/rig"
)

// FootSnapshot is the published view of one foot after a frame.
type FootSnapshot struct {
	Side             string     `json:"side"`
	Grounded         bool       `json:"grounded"`
	HitPoint         mgl64.Vec3 `json:"hit_point"`
	HitNormal        mgl64.Vec3 `json:"hit_normal"`
	PenetrationAngle float64    `json:"penetration_angle"`
	SurfaceAngle     float64    `json:"surface_angle"`
	HeightOffset     float64    `json:"height_offset"`
	TargetY          float64    `json:"target_y"`
	BufferY          float64    `json:"buffer_y"`
	IKY              float64    `json:"ik_y"`
	TargetUp         mgl64.Vec3 `json:"target_up"`
	BufferUp         mgl64.Vec3 `json:"buffer_up"`
	Mode             string     `json:"mode"`
	Weight           float64    `json:"weight"`
}

// Snapshot is the published view of a solver after ResolvePose.
type Snapshot struct {
	Frame      uint64          `json:"frame"`
	DeltaTime  float64         `json:"dt"`
	Root       mgl64.Vec3      `json:"root"`
	Body       mgl64.Vec3      `json:"body"`
	BodyOffset float64         `json:"body_offset"`
	Feet       [2]FootSnapshot `json:"feet"`
}

// Holding reports whether the foot was holding its lifted height.
func (f FootSnapshot) Holding() bool {
	return f.Mode == Holding.String()
}

// GroundingError is the distance between the written IK height and the target.
func (f FootSnapshot) GroundingError() float64 {
	d := f.IKY - f.TargetY
	if d < 0 {
		return -d
	}
	return d
}

func (s *Solver) publish(dt float64) {
	snap := Snapshot{
		Frame:      s.frame,
		DeltaTime:  dt,
		Root:       s.host.RootPosition(),
		Body:       s.host.BodyPosition(),
		BodyOffset: s.bodyOffset,
	}
	for _, side := range rig.Sides {
		f := s.feet[side]
		snap.Feet[side] = FootSnapshot{
			Side:             side.String(),
			Grounded:         f.Hit.OK,
			HitPoint:         f.Hit.Point,
			HitNormal:        f.Hit.Normal,
			PenetrationAngle: f.PenetrationAngle,
			SurfaceAngle:     f.SurfaceAngle,
			HeightOffset:     f.HeightOffset,
			TargetY:          f.TargetY,
			BufferY:          f.BufferY,
			IKY:              s.host.IKPosition(side.Goal()).Y(),
			TargetUp:         f.TargetUp,
			BufferUp:         f.BufferUp,
			Mode:             f.Mode.String(),
			Weight:           s.cfg.FootWeight(side),
		}
	}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

// Snapshot returns the state published by the last ResolvePose.
func (s *Solver) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}
