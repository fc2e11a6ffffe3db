package sim

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is returned for walk settings that cannot produce a gait.
var ErrInvalidConfig = errors.New("sim: invalid config")

// Config describes the simulated character and its walk.
type Config struct {
	Speed       float64 `yaml:"speed" json:"speed"`               // Walking speed along +X, m/s
	StepLength  float64 `yaml:"step_length" json:"step_length"`   // Distance a foot travels per stance
	StepHeight  float64 `yaml:"step_height" json:"step_height"`   // Peak swing lift
	StanceWidth float64 `yaml:"stance_width" json:"stance_width"` // Lateral foot offset from the root
	HipHeight   float64 `yaml:"hip_height" json:"hip_height"`     // Animated body height above the root
	Running     bool    `yaml:"running" json:"running"`           // Selects the running landing clip

	Gravity       float64 `yaml:"gravity" json:"gravity"`
	MaxClimb      float64 `yaml:"max_climb" json:"max_climb"`           // Ground this far above the root still counts as floor
	SnapDistance  float64 `yaml:"snap_distance" json:"snap_distance"`   // Drops up to this much are walked down, larger ones fallen
	LandingWeight float64 `yaml:"landing_weight" json:"landing_weight"` // Foot IK weight while a landing clip plays

	ClipDurations map[string]float64 `yaml:"clip_durations" json:"clip_durations"`

	TickRate time.Duration `yaml:"tick_rate" json:"tick_rate"`
}

// DefaultConfig returns a walking adult at 60Hz.
func DefaultConfig() Config {
	return Config{
		Speed:       1.2,
		StepLength:  0.6,
		StepHeight:  0.12,
		StanceWidth: 0.1,
		HipHeight:   1.0,

		Gravity:       9.81,
		MaxClimb:      0.3,
		SnapDistance:  0.1,
		LandingWeight: 0.3,

		ClipDurations: map[string]float64{
			"Landing":      0.6,
			"LandingSmall": 0.35,
		},

		TickRate: time.Second / 60,
	}
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.Speed < 0 {
		fail("speed must be >= 0, got %v", c.Speed)
	}
	if c.StepLength <= 0 {
		fail("step_length must be > 0, got %v", c.StepLength)
	}
	if c.Gravity <= 0 {
		fail("gravity must be > 0, got %v", c.Gravity)
	}
	if c.LandingWeight < 0 || c.LandingWeight > 1 {
		fail("landing_weight must be in [0, 1], got %v", c.LandingWeight)
	}
	if c.TickRate <= 0 {
		fail("tick_rate must be > 0, got %v", c.TickRate)
	}
	return errors.Join(errs...)
}

// DeltaTime is the tick rate in seconds.
func (c Config) DeltaTime() float64 {
	return c.TickRate.Seconds()
}
