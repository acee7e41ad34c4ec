package schedule

import (
	"sync"
	"sync/atomic"
	"time"
)

// Virtual is a manually advanced Scheduler. Tasks only run inside Advance, on
// the caller's goroutine, in due-time order (ties in registration order).
type Virtual struct {
	mu    sync.Mutex
	now   time.Time
	seq   uint64
	tasks []*virtualTask
}

type virtualTask struct {
	due       time.Time
	interval  time.Duration
	seq       uint64
	task      Task
	cancelled atomic.Bool
}

func (t *virtualTask) Cancel() {
	t.cancelled.Store(true)
}

// NewVirtual returns a virtual scheduler whose clock starts at start.
func NewVirtual(start time.Time) *Virtual {
	return &Virtual{now: start}
}

func (v *Virtual) Now() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

func (v *Virtual) Every(interval time.Duration, task Task) Handle {
	if interval <= 0 {
		panic("schedule: non-positive interval")
	}
	return v.add(interval, interval, task)
}

func (v *Virtual) After(delay time.Duration, task Task) Handle {
	if delay < 0 {
		delay = 0
	}
	return v.add(delay, 0, task)
}

func (v *Virtual) add(delay, interval time.Duration, task Task) *virtualTask {
	v.mu.Lock()
	defer v.mu.Unlock()
	t := &virtualTask{
		due:      v.now.Add(delay),
		interval: interval,
		seq:      v.seq,
		task:     task,
	}
	v.seq++
	v.tasks = append(v.tasks, t)
	return t
}

// Advance moves the clock forward by d, running every task that falls due on
// the way. Tasks registered while advancing run too if they fall inside the
// window. Advance(0) runs tasks that are already due.
func (v *Virtual) Advance(d time.Duration) {
	target := v.Now().Add(d)
	for {
		next := v.popDue(target)
		if next == nil {
			break
		}

		v.mu.Lock()
		v.now = next.due
		v.mu.Unlock()

		next.task(next.due)

		if next.interval > 0 && !next.cancelled.Load() {
			v.mu.Lock()
			next.due = next.due.Add(next.interval)
			next.seq = v.seq
			v.seq++
			v.tasks = append(v.tasks, next)
			v.mu.Unlock()
		}
	}

	v.mu.Lock()
	v.now = target
	v.mu.Unlock()
}

// Pending reports the number of live registered tasks.
func (v *Virtual) Pending() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	n := 0
	for _, t := range v.tasks {
		if !t.cancelled.Load() {
			n++
		}
	}
	return n
}

func (v *Virtual) popDue(target time.Time) *virtualTask {
	v.mu.Lock()
	defer v.mu.Unlock()

	best := -1
	live := v.tasks[:0]
	for _, t := range v.tasks {
		if t.cancelled.Load() {
			continue
		}
		live = append(live, t)
	}
	v.tasks = live

	for i, t := range v.tasks {
		if t.due.After(target) {
			continue
		}
		if best < 0 || t.due.Before(v.tasks[best].due) ||
			(t.due.Equal(v.tasks[best].due) && t.seq < v.tasks[best].seq) {
			best = i
		}
	}
	if best < 0 {
		return nil
	}

	t := v.tasks[best]
	v.tasks = append(v.tasks[:best], v.tasks[best+1:]...)
	return t
}
