// Package terrain provides a small collision scene that answers the solver's
// ground queries. Colliders are planes, optionally bounded to a rectangle on
// the ground (XZ) plane, which is enough for floors, ramps and step tops.
package terrain

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/teslashibe/go-footik/pkg/rig"
)

const epsilon = 1e-9

// Rect bounds a collider on the XZ plane. Limits are inclusive.
type Rect struct {
	MinX float64 `yaml:"min_x" json:"min_x"`
	MinZ float64 `yaml:"min_z" json:"min_z"`
	MaxX float64 `yaml:"max_x" json:"max_x"`
	MaxZ float64 `yaml:"max_z" json:"max_z"`
}

// Contains reports whether (x, z) lies within the rectangle.
func (r Rect) Contains(x, z float64) bool {
	return x >= r.MinX && x <= r.MaxX && z >= r.MinZ && z <= r.MaxZ
}

// Plane is a one-sided collider: surfaces face along Normal.
type Plane struct {
	Name    string     `yaml:"name" json:"name"`
	Point   mgl64.Vec3 `yaml:"point" json:"point"`
	Normal  mgl64.Vec3 `yaml:"normal" json:"normal"`
	Bounds  *Rect      `yaml:"bounds,omitempty" json:"bounds,omitempty"`
	Layer   int        `yaml:"layer" json:"layer"`
	Trigger bool       `yaml:"trigger" json:"trigger"`
}

// unitNormal returns the normalized normal, or up for a degenerate one.
func (p Plane) unitNormal() mgl64.Vec3 {
	if p.Normal.Len() < epsilon {
		return mgl64.Vec3{0, 1, 0}
	}
	return p.Normal.Normalize()
}

// contains reports whether a surface point falls inside the plane's bounds.
func (p Plane) contains(point mgl64.Vec3) bool {
	if p.Bounds == nil {
		return true
	}
	return p.Bounds.Contains(point.X(), point.Z())
}

// SphereCast sweeps a sphere against the plane.
//
// direction must be unit length. A sphere that already touches or straddles
// the plane at origin is not reported, and neither is motion parallel to or
// away from the surface.
func (p Plane) SphereCast(origin mgl64.Vec3, radius float64, direction mgl64.Vec3, maxDistance float64) (rig.Hit, bool) {
	n := p.unitNormal()

	approach := n.Dot(direction)
	if approach > -epsilon {
		return rig.Hit{}, false
	}

	clearance := n.Dot(origin.Sub(p.Point))
	if clearance < radius {
		return rig.Hit{}, false
	}

	// clearance + t*approach == radius
	t := (radius - clearance) / approach
	if t < 0 || t > maxDistance {
		return rig.Hit{}, false
	}

	center := origin.Add(direction.Mul(t))
	point := center.Sub(n.Mul(radius))
	if !p.contains(point) {
		return rig.Hit{}, false
	}

	return rig.Hit{OK: true, Point: point, Normal: n, Distance: t}, true
}

// HeightAt returns the plane's height at (x, z), if the plane is walkable there.
func (p Plane) HeightAt(x, z float64) (float64, bool) {
	n := p.unitNormal()
	if n.Y() < epsilon {
		return 0, false
	}
	y := p.Point.Y() - (n.X()*(x-p.Point.X())+n.Z()*(z-p.Point.Z()))/n.Y()
	if !p.contains(mgl64.Vec3{x, y, z}) {
		return 0, false
	}
	return y, true
}

// Flat returns an unbounded floor at height y on layer 0.
func Flat(name string, y float64) Plane {
	return Plane{
		Name:   name,
		Point:  mgl64.Vec3{0, y, 0},
		Normal: mgl64.Vec3{0, 1, 0},
	}
}

// FlatRegion returns a floor at height y bounded to b.
func FlatRegion(name string, y float64, b Rect) Plane {
	p := Flat(name, y)
	p.Bounds = &b
	return p
}

// Ramp returns a slope rising along +X from (fromX, baseY) at the given angle
// in degrees, bounded to [fromX, toX] x [minZ, maxZ].
func Ramp(name string, fromX, toX, baseY, degrees, minZ, maxZ float64) Plane {
	rad := degrees * math.Pi / 180
	return Plane{
		Name:   name,
		Point:  mgl64.Vec3{fromX, baseY, 0},
		Normal: mgl64.Vec3{-math.Sin(rad), math.Cos(rad), 0},
		Bounds: &Rect{MinX: fromX, MinZ: minZ, MaxX: toX, MaxZ: maxZ},
	}
}

// RampTop returns the height a ramp from Ramp reaches at toX.
func RampTop(fromX, toX, baseY, degrees float64) float64 {
	return baseY + (toX-fromX)*math.Tan(degrees*math.Pi/180)
}
