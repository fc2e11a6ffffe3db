package footik

import (
	"errors"
	"fmt"

	"github.com/teslashibe/go-footik/pkg/rig"
)

// ErrInvalidConfig is wrapped by every configuration validation failure.
var ErrInvalidConfig = errors.New("footik: invalid config")

// Config holds the rig parameters for foot placement.
// It is fixed once a Solver is built; lengths are in world units, angles in
// degrees, times in seconds.
type Config struct {
	// Foot
	HeelToToeLength   float64 `yaml:"heel_to_toe_length" json:"heel_to_toe_length"`     // Lift applied when the toes dig in
	MaxRotationAngle  float64 `yaml:"max_rotation_angle" json:"max_rotation_angle"`     // Max tilt toward the ground normal
	AnkleHeightOffset float64 `yaml:"ankle_height_offset" json:"ankle_height_offset"` // Added to the probe radius; may be negative

	// IK
	EnablePositioning bool    `yaml:"enable_positioning" json:"enable_positioning"`
	EnableRotating    bool    `yaml:"enable_rotating" json:"enable_rotating"`
	GlobalWeight      float64 `yaml:"global_weight" json:"global_weight"`
	LeftFootWeight    float64 `yaml:"left_foot_weight" json:"left_foot_weight"`
	RightFootWeight   float64 `yaml:"right_foot_weight" json:"right_foot_weight"`
	SmoothTime        float64 `yaml:"smooth_time" json:"smooth_time"` // Damping time constant

	// Probe
	ProbeRadius           float64       `yaml:"probe_radius" json:"probe_radius"`
	ProbeRange            float64       `yaml:"probe_range" json:"probe_range"`
	GroundLayers          rig.LayerMask `yaml:"ground_layers" json:"ground_layers"` // 0 means the default layer
	IgnoreTriggers        bool          `yaml:"ignore_triggers" json:"ignore_triggers"`
	LeftProbeStartHeight  float64       `yaml:"left_probe_start_height" json:"left_probe_start_height"`
	RightProbeStartHeight float64       `yaml:"right_probe_start_height" json:"right_probe_start_height"`

	// Foot lifting: hold the foot while the clip raises it above the target
	EnableFootLifting bool    `yaml:"enable_foot_lifting" json:"enable_foot_lifting"`
	FloorRange        float64 `yaml:"floor_range" json:"floor_range"`

	// Body positioning
	EnableBodyPositioning bool    `yaml:"enable_body_positioning" json:"enable_body_positioning"`
	CrouchRange           float64 `yaml:"crouch_range" json:"crouch_range"`
	StretchRange          float64 `yaml:"stretch_range" json:"stretch_range"`

	// World height offset
	EnableWorldHeightOffset bool    `yaml:"enable_world_height_offset" json:"enable_world_height_offset"`
	WorldHeightOffset       float64 `yaml:"world_height_offset" json:"world_height_offset"`
}

// DefaultConfig returns the recommended configuration for a human-sized rig.
func DefaultConfig() Config {
	return Config{
		HeelToToeLength:   0.1,
		MaxRotationAngle:  45,
		AnkleHeightOffset: 0,

		EnablePositioning: true,
		EnableRotating:    true,
		GlobalWeight:      1,
		LeftFootWeight:    1,
		RightFootWeight:   1,
		SmoothTime:        0.075,

		ProbeRadius:           0.05,
		ProbeRange:            2,
		GroundLayers:          rig.DefaultLayerMask,
		IgnoreTriggers:        true,
		LeftProbeStartHeight:  0.5,
		RightProbeStartHeight: 0.5,

		EnableFootLifting: true,
		FloorRange:        0,

		EnableBodyPositioning: true,
		CrouchRange:           0.25,
		StretchRange:          0,
	}
}

// ResponsiveConfig returns a configuration that settles faster, for quick
// locomotion where lag reads as foot sliding.
func ResponsiveConfig() Config {
	cfg := DefaultConfig()
	cfg.SmoothTime = 0.04
	cfg.MaxRotationAngle = 35
	return cfg
}

// SmoothConfig returns a configuration for slow, heavy characters.
func SmoothConfig() Config {
	cfg := DefaultConfig()
	cfg.SmoothTime = 0.12
	cfg.CrouchRange = 0.35
	cfg.StretchRange = 0.05
	return cfg
}

// Validate checks every field and reports all problems at once.
// Each reported error wraps ErrInvalidConfig.
func (c Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.SmoothTime <= 0 {
		fail("smooth_time must be > 0, got %v", c.SmoothTime)
	}
	if c.ProbeRadius <= 0 {
		fail("probe_radius must be > 0, got %v", c.ProbeRadius)
	}
	if c.ProbeRange <= 0 {
		fail("probe_range must be > 0, got %v", c.ProbeRange)
	}
	if c.HeelToToeLength < 0 {
		fail("heel_to_toe_length must be >= 0, got %v", c.HeelToToeLength)
	}
	if c.MaxRotationAngle < 0 || c.MaxRotationAngle > 180 {
		fail("max_rotation_angle must be in [0, 180], got %v", c.MaxRotationAngle)
	}

	weights := []struct {
		name string
		v    float64
	}{
		{"global_weight", c.GlobalWeight},
		{"left_foot_weight", c.LeftFootWeight},
		{"right_foot_weight", c.RightFootWeight},
	}
	for _, w := range weights {
		if w.v < 0 || w.v > 1 {
			fail("%s must be in [0, 1], got %v", w.name, w.v)
		}
	}

	ranges := []struct {
		name string
		v    float64
	}{
		{"left_probe_start_height", c.LeftProbeStartHeight},
		{"right_probe_start_height", c.RightProbeStartHeight},
		{"floor_range", c.FloorRange},
		{"crouch_range", c.CrouchRange},
		{"stretch_range", c.StretchRange},
	}
	for _, r := range ranges {
		if r.v < 0 {
			fail("%s must be >= 0, got %v", r.name, r.v)
		}
	}

	return errors.Join(errs...)
}

// AnkleHeight is the resting height of the ankle above the ground contact:
// the probe sphere radius plus the manual offset.
func (c Config) AnkleHeight() float64 {
	return c.ProbeRadius + c.AnkleHeightOffset
}

// WorldOffset returns the world height offset, or 0 when disabled.
func (c Config) WorldOffset() float64 {
	if c.EnableWorldHeightOffset {
		return c.WorldHeightOffset
	}
	return 0
}

// FootWeight returns the combined IK weight for one foot.
func (c Config) FootWeight(side rig.Side) float64 {
	if side == rig.Right {
		return c.GlobalWeight * c.RightFootWeight
	}
	return c.GlobalWeight * c.LeftFootWeight
}

// ProbeStartHeight returns how far above the foot bone the probe starts.
func (c Config) ProbeStartHeight(side rig.Side) float64 {
	if side == rig.Right {
		return c.RightProbeStartHeight
	}
	return c.LeftProbeStartHeight
}

// Triggers maps IgnoreTriggers to the query flag.
func (c Config) Triggers() rig.TriggerInteraction {
	if c.IgnoreTriggers {
		return rig.TriggersIgnore
	}
	return rig.TriggersCollide
}

// Layers returns the ground layer mask, substituting the default layer for an
// empty mask.
func (c Config) Layers() rig.LayerMask {
	if c.GroundLayers == 0 {
		return rig.DefaultLayerMask
	}
	return c.GroundLayers
}
