// Package geom provides the vector helpers the foot solver needs on top of mathgl.
//
// Angles returned by this package are in degrees, matching how rig parameters
// (max rotation angle, slope angles) are authored.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// epsilon guards projections against degenerate plane normals.
	epsilon = 1e-5
	// epsilonNormalSqrt guards angle measurement against zero-length vectors.
	epsilonNormalSqrt = 1e-15
)

// World axes. The solver treats +Y as up regardless of the character's own tilt.
var (
	Up      = mgl64.Vec3{0, 1, 0}
	Down    = mgl64.Vec3{0, -1, 0}
	Forward = mgl64.Vec3{0, 0, 1}
	Right   = mgl64.Vec3{1, 0, 0}
)

// Degrees converts radians to degrees.
func Degrees(radians float64) float64 {
	return radians * 180.0 / math.Pi
}

// Radians converts degrees to radians.
func Radians(degrees float64) float64 {
	return degrees * math.Pi / 180.0
}

// Sign returns 1 for v >= 0 and -1 otherwise. Zero counts as positive.
func Sign(v float64) float64 {
	if v >= 0 {
		return 1
	}
	return -1
}

// Clamp restricts v to the range [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp interpolates between a and b, t clamped to [0, 1].
func Lerp(a, b, t float64) float64 {
	t = Clamp(t, 0, 1)
	return a + (b-a)*t
}

// ProjectOnPlane removes the component of v along normal.
// A degenerate normal leaves v untouched.
func ProjectOnPlane(v, normal mgl64.Vec3) mgl64.Vec3 {
	sqr := normal.Dot(normal)
	if sqr < epsilon {
		return v
	}
	return v.Sub(normal.Mul(v.Dot(normal) / sqr))
}

// Angle returns the unsigned angle between two vectors in degrees, in [0, 180].
// Zero-length input yields 0.
func Angle(from, to mgl64.Vec3) float64 {
	denom := math.Sqrt(from.Dot(from) * to.Dot(to))
	if denom < epsilonNormalSqrt {
		return 0
	}
	cos := Clamp(from.Dot(to)/denom, -1, 1)
	return Degrees(math.Acos(cos))
}

// SignedAngle returns the angle from -> to in degrees, signed by which side of
// axis the rotation falls on.
func SignedAngle(from, to, axis mgl64.Vec3) float64 {
	return Angle(from, to) * Sign(axis.Dot(from.Cross(to)))
}

// FromToRotation returns the shortest rotation taking from onto to.
// Degenerate input returns identity.
func FromToRotation(from, to mgl64.Vec3) mgl64.Quat {
	if from.Dot(from) < epsilonNormalSqrt || to.Dot(to) < epsilonNormalSqrt {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatBetweenVectors(from, to)
}

// SlerpDirection spherically interpolates between two vectors: the direction
// rotates by t of the angle between them and the length is interpolated linearly.
// t is clamped to [0, 1].
func SlerpDirection(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	t = Clamp(t, 0, 1)

	lenA, lenB := a.Len(), b.Len()
	if lenA < epsilon || lenB < epsilon {
		return a.Add(b.Sub(a).Mul(t))
	}

	na, nb := a.Mul(1/lenA), b.Mul(1/lenB)
	length := lenA + (lenB-lenA)*t

	dot := Clamp(na.Dot(nb), -1, 1)
	if dot > 1-epsilon {
		// Nearly parallel: a linear blend is indistinguishable.
		return na.Add(nb.Sub(na).Mul(t)).Normalize().Mul(length)
	}

	theta := math.Acos(dot) * t

	var ortho mgl64.Vec3
	if dot < -1+epsilon {
		ortho = Perpendicular(na)
	} else {
		ortho = nb.Sub(na.Mul(dot)).Normalize()
	}

	dir := na.Mul(math.Cos(theta)).Add(ortho.Mul(math.Sin(theta)))
	return dir.Mul(length)
}

// Perpendicular returns some unit vector orthogonal to v.
func Perpendicular(v mgl64.Vec3) mgl64.Vec3 {
	axis := Right
	if math.Abs(v.X()) > 0.9 {
		axis = Up
	}
	p := v.Cross(axis)
	if p.Len() < epsilon {
		return Forward
	}
	return p.Normalize()
}

// ApproxEqual reports whether two vectors agree within tol on every axis.
func ApproxEqual(a, b mgl64.Vec3, tol float64) bool {
	return math.Abs(a[0]-b[0]) <= tol &&
		math.Abs(a[1]-b[1]) <= tol &&
		math.Abs(a[2]-b[2]) <= tol
}
