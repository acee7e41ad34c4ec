package schedule

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"pulse.transitlab.org/internal/logging"
)

// Loop is the wall-clock Scheduler. Timers run on their own goroutines but every
// task is funnelled into one event-loop goroutine, so tasks never overlap.
type Loop struct {
	logger       *slog.Logger
	jobs         chan func()
	shutdownChan chan struct{}
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

// NewLoop starts the event-loop goroutine. Call Shutdown to stop it.
func NewLoop(logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loop{
		logger:       logger.With(slog.String("component", "scheduler")),
		jobs:         make(chan func(), 64),
		shutdownChan: make(chan struct{}),
	}
	l.wg.Add(1)
	go l.run()
	return l
}

func (l *Loop) Now() time.Time {
	return time.Now()
}

func (l *Loop) Every(interval time.Duration, task Task) Handle {
	if interval <= 0 {
		panic("schedule: non-positive interval")
	}
	h := newLoopHandle()
	ticker := time.NewTicker(interval)

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				l.dispatch(h, task, now)
			case <-h.done:
				return
			case <-l.shutdownChan:
				return
			}
		}
	}()
	return h
}

func (l *Loop) After(delay time.Duration, task Task) Handle {
	h := newLoopHandle()
	timer := time.NewTimer(max(delay, 0))

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer timer.Stop()
		select {
		case now := <-timer.C:
			l.dispatch(h, task, now)
		case <-h.done:
		case <-l.shutdownChan:
		}
	}()
	return h
}

// Shutdown stops every timer and the event loop and waits for them to exit.
// Tasks queued but not yet started are dropped.
func (l *Loop) Shutdown() {
	l.shutdownOnce.Do(func() {
		close(l.shutdownChan)
		l.wg.Wait()
		logging.LogOperation(l.logger, "scheduler_stopped")
	})
}

func (l *Loop) dispatch(h *loopHandle, task Task, now time.Time) {
	job := func() {
		if h.cancelled() {
			return
		}
		task(now)
	}
	select {
	case l.jobs <- job:
	case <-h.done:
	case <-l.shutdownChan:
	}
}

func (l *Loop) run() {
	defer l.wg.Done()
	for {
		select {
		case job := <-l.jobs:
			l.execute(job)
		case <-l.shutdownChan:
			return
		}
	}
}

func (l *Loop) execute(job func()) {
	defer func() {
		if r := recover(); r != nil {
			logging.LogError(l.logger, "scheduled task panicked", fmt.Errorf("%v", r))
		}
	}()
	job()
}

type loopHandle struct {
	done chan struct{}
	once sync.Once
}

func newLoopHandle() *loopHandle {
	return &loopHandle{done: make(chan struct{})}
}

func (h *loopHandle) Cancel() {
	h.once.Do(func() { close(h.done) })
}

func (h *loopHandle) cancelled() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}
