package terrain

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/teslashibe/go-footik/pkg/rig"
)

// ErrEmptyScene is returned when a scene file declares no colliders.
var ErrEmptyScene = errors.New("terrain: scene has no planes")

// Scene is a set of colliders answering ground queries.
// It is read-only after construction and safe for concurrent queries.
type Scene struct {
	Name   string  `yaml:"name" json:"name"`
	Planes []Plane `yaml:"planes" json:"planes"`
}

// NewScene creates a scene from the given planes.
func NewScene(name string, planes ...Plane) *Scene {
	return &Scene{Name: name, Planes: planes}
}

// SphereCast implements rig.GroundQuery. The nearest qualifying surface wins.
func (s *Scene) SphereCast(origin mgl64.Vec3, radius float64, direction mgl64.Vec3, maxDistance float64, mask rig.LayerMask, triggers rig.TriggerInteraction) rig.Hit {
	if direction.Len() < epsilon {
		return rig.Hit{}
	}
	dir := direction.Normalize()

	best := rig.Hit{Distance: math.Inf(1)}
	for _, p := range s.Planes {
		if !mask.Contains(p.Layer) {
			continue
		}
		if p.Trigger && triggers == rig.TriggersIgnore {
			continue
		}
		hit, ok := p.SphereCast(origin, radius, dir, maxDistance)
		if ok && hit.Distance < best.Distance {
			best = hit
		}
	}

	if !best.OK {
		return rig.Hit{}
	}
	return best
}

// HeightAt returns the highest walkable solid surface at (x, z).
// Trigger volumes are ignored.
func (s *Scene) HeightAt(x, z float64) (float64, bool) {
	found := false
	height := math.Inf(-1)
	for _, p := range s.Planes {
		if p.Trigger {
			continue
		}
		if y, ok := p.HeightAt(x, z); ok && y > height {
			height = y
			found = true
		}
	}
	return height, found
}

// HeightBelow returns the highest solid surface at (x, z) that is not above
// maxY. Characters use it so ledges above their head do not count as floor.
func (s *Scene) HeightBelow(x, z, maxY float64) (float64, bool) {
	found := false
	height := math.Inf(-1)
	for _, p := range s.Planes {
		if p.Trigger {
			continue
		}
		if y, ok := p.HeightAt(x, z); ok && y <= maxY && y > height {
			height = y
			found = true
		}
	}
	return height, found
}

// ParseScene decodes a YAML scene.
func ParseScene(data []byte) (*Scene, error) {
	var s Scene
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse scene: %w", err)
	}
	if len(s.Planes) == 0 {
		return nil, ErrEmptyScene
	}
	return &s, nil
}

// LoadScene reads a YAML scene from disk.
func LoadScene(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene %s: %w", path, err)
	}
	return ParseScene(data)
}

// Walkway builds the default demo course along +X: flat ground, a ramp up,
// a plateau, then a drop back to the ground level.
func Walkway(rampDegrees float64) *Scene {
	const (
		rampStart  = 2.0
		rampEnd    = 5.0
		plateauEnd = 8.0
		halfWidth  = 2.0
	)
	top := RampTop(rampStart, rampEnd, 0, rampDegrees)

	return NewScene("walkway",
		Flat("ground", 0),
		Ramp("ramp", rampStart, rampEnd, 0, rampDegrees, -halfWidth, halfWidth),
		FlatRegion("plateau", top, Rect{MinX: rampEnd, MinZ: -halfWidth, MaxX: plateauEnd, MaxZ: halfWidth}),
	)
}
