package footik

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/teslashibe/go-footik/pkg/geom"
	"github.com/teslashibe/go-footik/pkg/rig"
)

// BodyOffset relaxes the lowest-foot-to-root delta d by the tolerated ranges.
// Feet further below the root than stretch pull the body down by the excess;
// feet further above it than crouch push the body up by the excess; anything
// in between leaves the body alone.
func BodyOffset(d, crouch, stretch float64) float64 {
	switch {
	case d < -stretch:
		return d + stretch
	case d > crouch:
		return d - crouch
	default:
		return 0
	}
}

// FootRotation composes the smoothed ground correction onto the rotation the
// animation already gives the foot.
func FootRotation(bufferUp mgl64.Vec3, hostRotation mgl64.Quat) mgl64.Quat {
	return geom.FromToRotation(geom.Up, bufferUp).Mul(hostRotation)
}

// applyFoot writes one foot's goal. Only the height is overridden; X and Z come
// from the animated pose.
func (s *Solver) applyFoot(f *FootState, hostPos mgl64.Vec3) {
	g := f.Side.Goal()
	w := s.cfg.FootWeight(f.Side)

	s.host.SetIKPositionWeight(g, w)
	s.host.SetIKRotationWeight(g, w)

	if s.cfg.EnablePositioning {
		s.host.SetIKPosition(g, mgl64.Vec3{hostPos.X(), f.BufferY, hostPos.Z()})
	}
	if s.cfg.EnableRotating {
		s.host.SetIKRotation(g, FootRotation(f.BufferUp, s.host.IKRotation(g)))
	}
}

// applyBody moves the body vertically so the lower foot can reach its goal.
// It returns the offset applied.
func (s *Solver) applyBody() float64 {
	if !s.cfg.EnableBodyPositioning {
		return 0
	}

	// Read back after the foot writes
	minY := math.Min(
		s.host.IKPosition(rig.GoalLeftFoot).Y(),
		s.host.IKPosition(rig.GoalRightFoot).Y(),
	)
	delta := BodyOffset(minY-s.host.RootPosition().Y(), s.cfg.CrouchRange, s.cfg.StretchRange)

	body := s.host.BodyPosition()
	s.host.SetBodyPosition(mgl64.Vec3{body.X(), body.Y() + delta, body.Z()})
	return delta
}
