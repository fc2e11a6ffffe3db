// Package telemetry keeps a rolling window of solver snapshots and
// summarizes how well the feet stayed on their targets.
package telemetry

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/teslashibe/go-footik/pkg/footik"
	"github.com/teslashibe/go-footik/pkg/rig"
)

// DefaultCapacity is ten seconds of frames at 60Hz.
const DefaultCapacity = 600

// FootSummary describes one foot over the recorded window.
type FootSummary struct {
	Side          string  `json:"side"`
	MeanError     float64 `json:"mean_error"`   // Mean |IK height - target|
	StdDevError   float64 `json:"stddev_error"` // Sample standard deviation of the error
	MaxError      float64 `json:"max_error"`
	HoldingRatio  float64 `json:"holding_ratio"`  // Fraction of frames in holding mode
	GroundedRatio float64 `json:"grounded_ratio"` // Fraction of frames with a ground hit
}

// Summary describes the recorded window.
type Summary struct {
	Frames         int            `json:"frames"`
	Duration       float64        `json:"duration"` // Seconds covered
	MeanBodyOffset float64        `json:"mean_body_offset"`
	Feet           [2]FootSummary `json:"feet"`
}

// Recorder is a bounded ring of snapshots. It is safe for concurrent use.
type Recorder struct {
	mu       sync.RWMutex
	frames   []footik.Snapshot
	next     int
	full     bool
	capacity int
	total    uint64
}

// NewRecorder creates a recorder holding up to capacity frames.
func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Recorder{
		frames:   make([]footik.Snapshot, capacity),
		capacity: capacity,
	}
}

// Record stores a snapshot, evicting the oldest when full.
func (r *Recorder) Record(s footik.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.frames[r.next] = s
	r.next = (r.next + 1) % r.capacity
	if r.next == 0 {
		r.full = true
	}
	r.total++
}

// Len returns the number of stored frames.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.len()
}

func (r *Recorder) len() int {
	if r.full {
		return r.capacity
	}
	return r.next
}

// Total returns how many frames were ever recorded.
func (r *Recorder) Total() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.total
}

// Frames returns the stored frames, oldest first.
func (r *Recorder) Frames() []footik.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ordered()
}

func (r *Recorder) ordered() []footik.Snapshot {
	n := r.len()
	out := make([]footik.Snapshot, 0, n)
	if r.full {
		out = append(out, r.frames[r.next:]...)
	}
	return append(out, r.frames[:r.next]...)
}

// Latest returns the newest frame.
func (r *Recorder) Latest() (footik.Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.len() == 0 {
		return footik.Snapshot{}, false
	}
	i := (r.next - 1 + r.capacity) % r.capacity
	return r.frames[i], true
}

// Reset discards all frames.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.frames = make([]footik.Snapshot, r.capacity)
	r.next = 0
	r.full = false
	r.total = 0
}

// Summary computes statistics over the stored frames.
func (r *Recorder) Summary() Summary {
	frames := r.Frames()

	s := Summary{Frames: len(frames)}
	for _, side := range rig.Sides {
		s.Feet[side].Side = side.String()
	}
	if len(frames) == 0 {
		return s
	}

	body := make([]float64, len(frames))
	for i, f := range frames {
		s.Duration += f.DeltaTime
		body[i] = f.BodyOffset
	}
	s.MeanBodyOffset = stat.Mean(body, nil)

	for _, side := range rig.Sides {
		errs := make([]float64, len(frames))
		var holding, grounded int
		for i, f := range frames {
			foot := f.Feet[side]
			errs[i] = foot.GroundingError()
			if foot.Holding() {
				holding++
			}
			if foot.Grounded {
				grounded++
			}
		}

		fs := &s.Feet[side]
		fs.MeanError, fs.StdDevError = stat.MeanStdDev(errs, nil)
		if len(errs) < 2 || math.IsNaN(fs.StdDevError) {
			fs.StdDevError = 0
		}
		fs.MaxError = maxOf(errs)
		fs.HoldingRatio = float64(holding) / float64(len(frames))
		fs.GroundedRatio = float64(grounded) / float64(len(frames))
	}
	return s
}

func maxOf(xs []float64) float64 {
	m := 0.0
	for _, x := range xs {
		if x > m {
			m = x
		}
	}
	return m
}
