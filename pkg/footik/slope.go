package footik

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/teslashibe/go-footik/pkg/geom"
)

// pitchAxis is the axis the foot pitches around: perpendicular to both its
// forward direction and that direction flattened onto the ground plane.
func pitchAxis(forward mgl64.Vec3) (flattened, axis mgl64.Vec3) {
	flattened = geom.ProjectOnPlane(forward, geom.Up)
	return flattened, forward.Cross(flattened)
}

// PenetrationAngle returns, in degrees, how far the foot's forward direction
// is pitched out of the horizontal plane. It is positive when the toes point
// down into the ground.
func PenetrationAngle(forward mgl64.Vec3) float64 {
	flattened, axis := pitchAxis(forward)
	// The cross product flips with the pitch direction; the sign of y undoes it
	return geom.SignedAngle(flattened, forward, axis.Mul(geom.Sign(forward.Y())))
}

// SurfaceAngle returns, in degrees, the ground's tilt from world up measured
// in the foot's pitch plane only, so sideways slope does not count.
func SurfaceAngle(forward, normal mgl64.Vec3) float64 {
	_, axis := pitchAxis(forward)
	return geom.Angle(geom.ProjectOnPlane(normal, axis), geom.Up)
}

// HeightOffset returns how far above the ground contact the ankle goal sits.
//
// effective is the penetration angle minus the surface angle in degrees. When
// the foot digs in, the heel-to-toe lever lifts it; otherwise the ankle rests
// at ankleHeight. The cosine term keeps its sign so a negative ankle offset
// can lower the foot further.
func HeightOffset(effective, heelToToe, ankleHeight float64) float64 {
	if effective > 0 {
		r := geom.Radians(effective)
		return math.Abs(math.Sin(r)*heelToToe) + math.Cos(r)*ankleHeight
	}
	return ankleHeight
}
