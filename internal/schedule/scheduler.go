// Package schedule provides the repeating and one-shot task registration used by
// every periodic behaviour of the dashboard. All tasks registered on one
// Scheduler run on a single execution context, one at a time.
package schedule

import (
	"sync"
	"time"
)

// Task is a unit of scheduled work. now is the scheduler time of the firing.
type Task func(now time.Time)

// Handle cancels a registered task. Cancel is idempotent and safe to call from
// inside the task itself.
type Handle interface {
	Cancel()
}

// Scheduler registers tasks against a clock.
type Scheduler interface {
	// Now returns the scheduler's current time.
	Now() time.Time
	// Every runs task each interval until cancelled. The first firing happens
	// one interval after registration.
	Every(interval time.Duration, task Task) Handle
	// After runs task once after delay. A zero delay posts the task to the
	// execution context.
	After(delay time.Duration, task Task) Handle
}

// Group collects handles so a component can cancel all of its tasks at once.
// One-shots registered through Group.After leave the group when they fire.
type Group struct {
	mu      sync.Mutex
	handles map[Handle]struct{}
}

// Add records h and returns it.
func (g *Group) Add(h Handle) Handle {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.handles == nil {
		g.handles = make(map[Handle]struct{})
	}
	g.handles[h] = struct{}{}
	return h
}

// Remove forgets h without cancelling it.
func (g *Group) Remove(h Handle) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.handles, h)
}

// After registers a one-shot on s that is recorded in the group until it
// fires or is cancelled.
func (g *Group) After(s Scheduler, delay time.Duration, task Task) Handle {
	t := &groupTask{group: g}
	g.Add(t)
	h := s.After(delay, func(now time.Time) {
		g.Remove(t)
		task(now)
	})

	t.mu.Lock()
	t.handle = h
	cancelled := t.cancelled
	t.mu.Unlock()
	if cancelled {
		h.Cancel()
	}
	return t
}

// Cancel cancels every recorded handle and forgets them.
func (g *Group) Cancel() {
	g.mu.Lock()
	handles := g.handles
	g.handles = nil
	g.mu.Unlock()
	for h := range handles {
		h.Cancel()
	}
}

// Len reports how many handles are recorded.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.handles)
}

type groupTask struct {
	group *Group

	mu        sync.Mutex
	handle    Handle
	cancelled bool
}

func (t *groupTask) Cancel() {
	t.mu.Lock()
	t.cancelled = true
	h := t.handle
	t.mu.Unlock()
	t.group.Remove(t)
	if h != nil {
		h.Cancel()
	}
}
