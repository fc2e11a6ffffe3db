package footik

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/teslashibe/go-footik/pkg/geom"
	"github.com/teslashibe/go-footik/pkg/rig"
)

// GroundProbe sweeps a sphere straight down from above a foot.
type GroundProbe struct {
	ground   rig.GroundQuery
	radius   float64
	distance float64
	mask     rig.LayerMask
	triggers rig.TriggerInteraction
}

// NewGroundProbe creates a probe from the rig configuration.
func NewGroundProbe(ground rig.GroundQuery, cfg Config) GroundProbe {
	return GroundProbe{
		ground:   ground,
		radius:   cfg.ProbeRadius,
		distance: cfg.ProbeRange,
		mask:     cfg.Layers(),
		triggers: cfg.Triggers(),
	}
}

// Cast probes below footPos, starting startHeight above it. World down is used
// regardless of the character's tilt so normals stay in world orientation.
//
// A miss is the airborne case: the returned hit has OK=false, the root
// position as its point and world up as its normal.
func (p GroundProbe) Cast(footPos mgl64.Vec3, startHeight float64, root mgl64.Vec3) rig.Hit {
	origin := footPos.Add(mgl64.Vec3{0, startHeight, 0})

	hit := p.ground.SphereCast(origin, p.radius, geom.Down, p.distance, p.mask, p.triggers)
	if !hit.OK {
		return rig.Hit{Point: root, Normal: geom.Up}
	}
	return hit
}
