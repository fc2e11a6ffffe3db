// Package landing detects falls and landings from a character's vertical
// motion and notifies whoever subscribed. The foot solver never depends on it;
// hosts wire the two together (for example, by lowering foot weights while a
// landing clip plays).
package landing

import (
	"fmt"
	"sync"
	"time"
)

// Kind is the type of a landing event.
type Kind int

const (
	// FallStarted fires when the character leaves the ground fast enough.
	FallStarted Kind = iota
	// FallEnded fires when the character is grounded again after a fall.
	FallEnded
	// LandingStarted fires when the fall was high enough to play a landing clip.
	LandingStarted
	// LandingEnded fires once the landing clip has finished.
	LandingEnded
)

func (k Kind) String() string {
	switch k {
	case FallStarted:
		return "fall_started"
	case FallEnded:
		return "fall_ended"
	case LandingStarted:
		return "landing_started"
	case LandingEnded:
		return "landing_ended"
	default:
		return "unknown"
	}
}

// MarshalText lets events serialize kinds by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	for _, c := range []Kind{FallStarted, FallEnded, LandingStarted, LandingEnded} {
		if c.String() == string(text) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("landing: unknown event kind %q", text)
}

// Event is one fall or landing notification.
type Event struct {
	Kind      Kind    `json:"kind"`
	Height    float64 `json:"height,omitempty"` // Fall height, on FallEnded and landing events
	Clip      string  `json:"clip,omitempty"`   // Landing clip, on landing events
	Running   bool    `json:"running"`
	Timestamp int64   `json:"timestamp"` // Unix milliseconds
}

// Observer receives landing events.
type Observer interface {
	OnLanding(e Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(e Event)

// OnLanding implements Observer.
func (f ObserverFunc) OnLanding(e Event) {
	f(e)
}

// Queue is an Observer that buffers events for hosts that poll instead of
// subscribing. When full, the oldest event is dropped.
type Queue struct {
	mu       sync.Mutex
	events   []Event
	capacity int
	dropped  int
}

// NewQueue creates a queue holding up to capacity events.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 64
	}
	return &Queue{capacity: capacity}
}

// OnLanding implements Observer.
func (q *Queue) OnLanding(e Event) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == q.capacity {
		q.events = q.events[1:]
		q.dropped++
	}
	q.events = append(q.events, e)
}

// Poll drains and returns the buffered events in arrival order.
func (q *Queue) Poll() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.events
	q.events = nil
	return out
}

// Len returns the number of buffered events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Dropped returns how many events were discarded because the queue was full.
func (q *Queue) Dropped() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

func now() int64 {
	return time.Now().UnixMilli()
}
