package landing

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/teslashibe/go-footik/internal/log"
	"github.com/teslashibe/go-footik/pkg/schedule"
)

// ErrNoScheduler is returned when a detector is built without a task queue.
var ErrNoScheduler = errors.New("landing: task queue is required")

// Config tunes fall detection.
type Config struct {
	Enabled       bool    `yaml:"enabled" json:"enabled"`
	MinFallSpeed  float64 `yaml:"min_fall_speed" json:"min_fall_speed"`   // Downward speed that starts a fall
	MinFallHeight float64 `yaml:"min_fall_height" json:"min_fall_height"` // Drop that warrants a landing clip
	RunningClip   string  `yaml:"running_clip" json:"running_clip"`
	WalkingClip   string  `yaml:"walking_clip" json:"walking_clip"`
}

// DefaultConfig returns detection settings for a human-sized character.
func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		MinFallSpeed:  3,
		MinFallHeight: 0.6,
		RunningClip:   "Landing",
		WalkingClip:   "LandingSmall",
	}
}

// Playback is the animation side of a landing: it starts a clip and reports
// while one is still playing.
type Playback interface {
	Trigger(clip string)
	IsLanding() bool
}

// Motion is the character state the detector samples every frame.
type Motion struct {
	Height        float64 // Root height
	VerticalSpeed float64
	Grounded      bool
	Running       bool
}

// Detector turns vertical motion into fall and landing events.
// Update is called once per frame from the character's update loop.
type Detector struct {
	cfg      Config
	tasks    *schedule.Queue
	playback Playback
	logger   *slog.Logger

	mu        sync.Mutex
	observers []Observer
	falling   bool
	fallStart float64
	landings  int
}

// NewDetector creates a detector. Landing completion is polled through tasks.
func NewDetector(cfg Config, tasks *schedule.Queue, playback Playback) (*Detector, error) {
	if tasks == nil {
		return nil, ErrNoScheduler
	}
	return &Detector{
		cfg:      cfg,
		tasks:    tasks,
		playback: playback,
		logger:   log.Component("landing"),
	}, nil
}

// Subscribe registers an observer.
func (d *Detector) Subscribe(o Observer) {
	d.mu.Lock()
	d.observers = append(d.observers, o)
	d.mu.Unlock()
}

// Falling reports whether a fall is in progress.
func (d *Detector) Falling() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.falling
}

// Landing reports whether a landing clip is still playing.
func (d *Detector) Landing() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.landings > 0
}

// Update samples one frame of motion.
func (d *Detector) Update(m Motion) {
	if !d.cfg.Enabled {
		return
	}

	d.mu.Lock()
	var pending []Event

	if !d.falling && !m.Grounded && m.VerticalSpeed < -d.cfg.MinFallSpeed {
		d.falling = true
		d.fallStart = m.Height
		pending = append(pending, Event{Kind: FallStarted, Running: m.Running, Timestamp: now()})
	}

	landed := false
	var height float64
	if d.falling && m.Grounded {
		d.falling = false
		height = d.fallStart - m.Height
		pending = append(pending, Event{Kind: FallEnded, Height: height, Running: m.Running, Timestamp: now()})
		landed = height >= d.cfg.MinFallHeight
	}
	d.mu.Unlock()

	d.emit(pending...)
	if landed {
		d.startLanding(height, m.Running)
	}
}

// startLanding triggers the clip, then waits at least a frame for it to begin
// before polling for its end.
func (d *Detector) startLanding(height float64, running bool) {
	clip := d.cfg.WalkingClip
	if running {
		clip = d.cfg.RunningClip
	}

	d.mu.Lock()
	d.landings++
	d.mu.Unlock()

	d.logger.Debug("landing", "height", height, "clip", clip)
	d.emit(Event{Kind: LandingStarted, Height: height, Clip: clip, Running: running, Timestamp: now()})
	if d.playback != nil {
		d.playback.Trigger(clip)
	}

	d.tasks.Schedule(schedule.Task{
		Name: "landing:" + clip,
		Until: func() bool {
			return d.playback == nil || !d.playback.IsLanding()
		},
		Run: func() {
			d.mu.Lock()
			d.landings--
			d.mu.Unlock()
			d.emit(Event{Kind: LandingEnded, Height: height, Clip: clip, Running: running, Timestamp: now()})
		},
	})
}

func (d *Detector) emit(events ...Event) {
	if len(events) == 0 {
		return
	}
	d.mu.Lock()
	observers := make([]Observer, len(d.observers))
	copy(observers, d.observers)
	d.mu.Unlock()

	for _, e := range events {
		for _, o := range observers {
			o.OnLanding(e)
		}
	}
}
