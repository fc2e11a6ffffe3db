// Package schedule runs deferred work on a character's frame tick.
//
// A Queue is owned by whoever drives the frame loop. Tasks run from Tick, on
// the caller's goroutine, in the order they were scheduled. A task scheduled
// while Tick is running is first considered on the following Tick, so "wait a
// frame, then poll a condition" needs no extra bookkeeping.
package schedule

import (
	"sync"

	"github.com/google/uuid"
)

// ID identifies a scheduled task.
type ID string

// Task is a unit of deferred work.
type Task struct {
	// Name shows up in Pending for debugging
	Name string
	// Delay is how many seconds of ticks must pass before the task may run
	Delay float64
	// Until, when set, is polled every tick once Delay has passed; the task
	// runs on the first tick it returns true
	Until func() bool
	// Run is the work itself
	Run func()
}

type entry struct {
	id        ID
	task      Task
	due       float64
	cancelled bool
}

// Queue is a frame-driven task queue. It is safe for concurrent use, though
// tasks always run on the goroutine calling Tick.
type Queue struct {
	mu      sync.Mutex
	now     float64
	entries []*entry
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{}
}

// Schedule adds a task and returns its id.
func (q *Queue) Schedule(t Task) ID {
	q.mu.Lock()
	defer q.mu.Unlock()

	if t.Delay < 0 {
		t.Delay = 0
	}
	e := &entry{
		id:   ID(uuid.NewString()),
		task: t,
		due:  q.now + t.Delay,
	}
	q.entries = append(q.entries, e)
	return e.id
}

// After runs fn once delay seconds of ticks have passed.
// A zero delay runs on the next Tick.
func (q *Queue) After(delay float64, fn func()) ID {
	return q.Schedule(Task{Delay: delay, Run: fn})
}

// Until runs fn on the first Tick where pred returns true, starting with the
// next Tick.
func (q *Queue) Until(pred func() bool, fn func()) ID {
	return q.Schedule(Task{Until: pred, Run: fn})
}

// Cancel removes a pending task. It reports whether the task was still pending.
func (q *Queue) Cancel(id ID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, e := range q.entries {
		if e.id == id {
			e.cancelled = true
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Tick advances the queue clock by dt seconds and runs every task that is due.
// It returns how many tasks ran.
func (q *Queue) Tick(dt float64) int {
	q.mu.Lock()
	if dt > 0 {
		q.now += dt
	}
	now := q.now
	pending := make([]*entry, len(q.entries))
	copy(pending, q.entries)
	q.mu.Unlock()

	// Tasks run without the lock so they can schedule and cancel
	ran := make(map[*entry]bool)
	for _, e := range pending {
		if q.isCancelled(e) || e.due > now {
			continue
		}
		if e.task.Until != nil && !e.task.Until() {
			continue
		}
		if q.isCancelled(e) {
			continue
		}
		ran[e] = true
		if e.task.Run != nil {
			e.task.Run()
		}
	}

	if len(ran) == 0 {
		return 0
	}

	q.mu.Lock()
	kept := q.entries[:0]
	for _, e := range q.entries {
		if !ran[e] {
			kept = append(kept, e)
		}
	}
	q.entries = kept
	q.mu.Unlock()

	return len(ran)
}

func (q *Queue) isCancelled(e *entry) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return e.cancelled
}

// Len returns the number of pending tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Pending returns the names of pending tasks in schedule order.
func (q *Queue) Pending() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	names := make([]string, len(q.entries))
	for i, e := range q.entries {
		names[i] = e.task.Name
	}
	return names
}

// Clear cancels every pending task.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, e := range q.entries {
		e.cancelled = true
	}
	q.entries = nil
}

// Now returns the queue clock in seconds.
func (q *Queue) Now() float64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.now
}
