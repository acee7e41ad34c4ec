package dashboard

import (
	"fmt"
	"log/slog"
	"time"

	"pulse.transitlab.org/internal/logging"
)

// step is one stage of a timed sequence. It runs delay after the previous
// stage finished.
type step struct {
	name  string
	delay time.Duration
	run   func() error
}

// runSequence schedules steps back to back. The first failing step stops the
// sequence and is handed to onError; onDone runs after the last step.
func (d *Dashboard) runSequence(name string, steps []step, onError func(stage string, err error), onDone func()) {
	var next func(i int)
	next = func(i int) {
		if i == len(steps) {
			d.endSequence(name)
			if onDone != nil {
				onDone()
			}
			return
		}
		s := steps[i]
		d.tasks.After(d.sched, s.delay, func(time.Time) {
			if err := safeRun(s.run); err != nil {
				logging.LogError(d.logger, "sequence step failed", err,
					slog.String("sequence", name),
					slog.String("stage", s.name))
				d.endSequence(name)
				if onError != nil {
					onError(s.name, err)
				}
				return
			}
			logging.LogOperation(d.logger, "sequence_step_completed",
				slog.String("sequence", name),
				slog.String("stage", s.name))
			next(i + 1)
		})
	}
	next(0)
}

// beginSequence marks name as running, failing if it already is.
func (d *Dashboard) beginSequence(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sequences[name] {
		return fmt.Errorf("%s: %w", name, ErrSequenceRunning)
	}
	d.sequences[name] = true
	return nil
}

func (d *Dashboard) endSequence(name string) {
	d.mu.Lock()
	delete(d.sequences, name)
	d.mu.Unlock()
}

func safeRun(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

func (d *Dashboard) showLoading(message string) {
	d.sink.SetText(LoadingStatus, message)
	d.sink.SetText(LoadingOverlay, overlayVisible)
}

func (d *Dashboard) updateLoading(message string) {
	d.sink.SetText(LoadingStatus, message)
}

func (d *Dashboard) hideLoading() {
	d.sink.SetText(LoadingOverlay, overlayHidden)
}
