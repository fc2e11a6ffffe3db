package rig

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// Side selects a leg. It doubles as an index into per-foot arrays.
type Side int

const (
	Left Side = iota
	Right
)

// Sides lists both legs in index order.
var Sides = [2]Side{Left, Right}

func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

// Bone returns the foot bone for this side.
func (s Side) Bone() Bone {
	if s == Right {
		return BoneRightFoot
	}
	return BoneLeftFoot
}

// Goal returns the foot IK goal for this side.
func (s Side) Goal() Goal {
	if s == Right {
		return GoalRightFoot
	}
	return GoalLeftFoot
}

// Bone names a skeleton bone the solver reads.
type Bone string

const (
	BoneLeftFoot  Bone = "LeftFoot"
	BoneRightFoot Bone = "RightFoot"
)

// Goal names an IK goal.
type Goal int

const (
	GoalLeftFoot Goal = iota
	GoalRightFoot
)

func (g Goal) String() string {
	if g == GoalRightFoot {
		return "RightFoot"
	}
	return "LeftFoot"
}

// LayerMask is a bit set of collision layers.
type LayerMask uint32

const (
	// DefaultLayerMask selects layer 0, where untagged geometry lives.
	DefaultLayerMask LayerMask = 1 << 0
	// AllLayers selects every layer.
	AllLayers LayerMask = ^LayerMask(0)
)

// Contains reports whether layer is selected by the mask.
func (m LayerMask) Contains(layer int) bool {
	if layer < 0 || layer > 31 {
		return false
	}
	return m&(1<<uint(layer)) != 0
}

// LayerMaskOf builds a mask from layer indices.
func LayerMaskOf(layers ...int) LayerMask {
	var m LayerMask
	for _, l := range layers {
		if l >= 0 && l <= 31 {
			m |= 1 << uint(l)
		}
	}
	return m
}

// TriggerInteraction controls whether trigger volumes are reported by queries.
type TriggerInteraction int

const (
	TriggersIgnore TriggerInteraction = iota
	TriggersCollide
)

// Hit is the result of a ground query.
// OK=false is the airborne case; Point and Normal then carry fallback values.
type Hit struct {
	OK       bool
	Point    mgl64.Vec3
	Normal   mgl64.Vec3
	Distance float64
}

// Transform is a world-space position and rotation.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// Identity returns a transform at the origin with no rotation.
func Identity() Transform {
	return Transform{Rotation: mgl64.QuatIdent()}
}

// FixedClock reports a constant frame delta.
type FixedClock float64

// DeltaTime returns the fixed delta.
func (c FixedClock) DeltaTime() float64 {
	return float64(c)
}

// ManualClock reports whatever delta was last set.
// It is used by drivers that receive frame timing from elsewhere.
type ManualClock struct {
	mu sync.Mutex
	dt float64
}

// Set stores the delta for the next frame.
func (c *ManualClock) Set(dt float64) {
	c.mu.Lock()
	c.dt = dt
	c.mu.Unlock()
}

// DeltaTime returns the last stored delta.
func (c *ManualClock) DeltaTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dt
}
