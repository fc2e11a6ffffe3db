package footik

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/teslashibe/go-footik/pkg/geom"
	"github.com/teslashibe/go-footik/pkg/rig"
)

// RotationBlendFactor returns how far to turn the foot's up vector from world
// up toward a ground normal that is angle degrees away.
//
// The result is min(angle, maxAngle) / (angle + 1): it is 0 at angle 0, stays
// below 1, and shrinks again past maxAngle, so the resulting tilt
// (angle * factor) never reaches maxAngle. The +1 also guards angle == 0.
func RotationBlendFactor(angle, maxAngle float64) float64 {
	return geom.Clamp(angle, 0, maxAngle) / (angle + 1)
}

// TargetUp returns the up vector the foot should rotate toward.
// Airborne feet keep world up.
func TargetUp(hit rig.Hit, maxAngle float64) mgl64.Vec3 {
	if !hit.OK {
		return geom.Up
	}
	angle := geom.Angle(geom.Up, hit.Normal)
	return geom.SlerpDirection(geom.Up, hit.Normal, RotationBlendFactor(angle, maxAngle))
}

// TargetHeight returns the world height the ankle goal should reach.
func TargetHeight(groundY, offset, worldOffset float64) float64 {
	return groundY + offset + worldOffset
}
