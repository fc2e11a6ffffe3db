package landing

import "sync"

// ClipPlayback is a timer-based Playback for simulated characters: a
// triggered clip counts as playing for its configured duration.
type ClipPlayback struct {
	mu        sync.Mutex
	durations map[string]float64
	fallback  float64
	clip      string
	remaining float64
}

// NewClipPlayback creates a playback with per-clip durations in seconds.
// Clips without a duration play for fallback seconds.
func NewClipPlayback(durations map[string]float64, fallback float64) *ClipPlayback {
	d := make(map[string]float64, len(durations))
	for k, v := range durations {
		d[k] = v
	}
	return &ClipPlayback{durations: d, fallback: fallback}
}

// Trigger implements Playback. A new clip replaces the current one.
func (p *ClipPlayback) Trigger(clip string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	dur, ok := p.durations[clip]
	if !ok {
		dur = p.fallback
	}
	p.clip = clip
	p.remaining = dur
}

// Tick advances the clip by dt seconds.
func (p *ClipPlayback) Tick(dt float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.remaining <= 0 {
		return
	}
	p.remaining -= dt
	if p.remaining <= 0 {
		p.remaining = 0
		p.clip = ""
	}
}

// IsLanding implements Playback.
func (p *ClipPlayback) IsLanding() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.remaining > 0
}

// Clip returns the clip playing, or "" when idle.
func (p *ClipPlayback) Clip() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clip
}
