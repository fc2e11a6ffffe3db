package footik

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/teslashibe/go-footik/pkg/geom"
	"github.com/teslashibe/go-footik/pkg/rig"
)

// Mode is the blending state of one foot.
type Mode int

const (
	// Tracking smooths the foot toward the ground target.
	Tracking Mode = iota
	// Holding follows the host's own IK height while the clip lifts the foot.
	Holding
)

func (m Mode) String() string {
	if m == Holding {
		return "holding"
	}
	return "tracking"
}

// FootState is the per-foot working state carried across frames.
type FootState struct {
	Side rig.Side

	// Kinematic phase
	Hit              rig.Hit
	Forward          mgl64.Vec3 // Foot forward relative to its bind pose
	PenetrationAngle float64    // Degrees; positive when the toes point into the ground
	SurfaceAngle     float64    // Degrees; ground tilt along the foot's pitch plane
	EffectiveAngle   float64
	HeightOffset     float64
	TargetY          float64
	TargetUp         mgl64.Vec3

	// Pose phase
	Mode           Mode
	BufferY        float64
	HeightVelocity float64
	BufferUp       mgl64.Vec3
	UpVelocity     mgl64.Vec3
}

// newFootState seeds the buffers so the first frames ease in from the root.
func newFootState(side rig.Side, rootY, ankleHeight float64) FootState {
	return FootState{
		Side:     side,
		Forward:  geom.Forward,
		BufferY:  rootY + ankleHeight,
		TargetY:  rootY + ankleHeight,
		BufferUp: geom.Up,
		TargetUp: geom.Up,
	}
}
