// Package animate interpolates numeric display values over time with an
// ease-out cubic curve, sampling on a fixed poll interval of a Scheduler.
package animate

import (
	"errors"
	"math"
	"strconv"
	"sync"
	"time"

	"pulse.transitlab.org/internal/render"
	"pulse.transitlab.org/internal/schedule"
)

// DefaultPoll is the sampling interval of an animation.
const DefaultPoll = 50 * time.Millisecond

// ErrInvalidDuration is returned for non-positive animation durations.
var ErrInvalidDuration = errors.New("animation duration must be positive")

// Ease maps linear progress p in [0,1] onto the ease-out cubic curve.
func Ease(p float64) float64 {
	p = math.Max(0, math.Min(p, 1))
	return 1 - math.Pow(1-p, 3)
}

// Target binds an animation to a display element and an optional raw slot.
type Target struct {
	// ElementID receives Format(value) through the render sink. Empty skips
	// the display write.
	ElementID string
	// Format renders the value. Defaults to the shortest decimal form.
	Format func(float64) string
	// Slot, when set, receives the raw value of every sample.
	Slot func(float64)
}

func (t Target) format(v float64) string {
	if t.Format != nil {
		return t.Format(v)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Animator drives animations on a scheduler. Every write happens on the
// scheduler's execution context.
type Animator struct {
	sched schedule.Scheduler
	sink  render.Sink
	poll  time.Duration
}

// NewAnimator creates an Animator writing to sink. A non-positive poll uses
// DefaultPoll.
func NewAnimator(sched schedule.Scheduler, sink render.Sink, poll time.Duration) *Animator {
	if poll <= 0 {
		poll = DefaultPoll
	}
	return &Animator{sched: sched, sink: sink, poll: poll}
}

// Animation is one running interpolation.
type Animation struct {
	target   Target
	start    float64
	end      float64
	duration time.Duration
	begun    time.Time

	mu       sync.Mutex
	value    float64
	finished bool
	handle   schedule.Handle
	done     chan struct{}
	onFinish []func()
}

// Animate writes start immediately, then eased intermediate values every poll
// until duration has elapsed, when it writes exactly end and completes.
func (a *Animator) Animate(target Target, start, end float64, duration time.Duration) (*Animation, error) {
	if duration <= 0 {
		return nil, ErrInvalidDuration
	}
	anim := &Animation{
		target:   target,
		start:    start,
		end:      end,
		duration: duration,
		begun:    a.sched.Now(),
		done:     make(chan struct{}),
	}
	a.write(anim, start)

	anim.mu.Lock()
	anim.handle = a.sched.Every(a.poll, func(now time.Time) { a.step(anim, now) })
	anim.mu.Unlock()
	return anim, nil
}

func (a *Animator) step(anim *Animation, now time.Time) {
	anim.mu.Lock()
	if anim.finished {
		anim.mu.Unlock()
		return
	}
	anim.mu.Unlock()

	p := float64(now.Sub(anim.begun)) / float64(anim.duration)
	if p >= 1 {
		a.write(anim, anim.end)
		anim.complete()
		return
	}
	a.write(anim, anim.start+(anim.end-anim.start)*Ease(p))
}

func (a *Animator) write(anim *Animation, v float64) {
	anim.mu.Lock()
	anim.value = v
	anim.mu.Unlock()

	if anim.target.Slot != nil {
		anim.target.Slot(v)
	}
	if anim.target.ElementID != "" && a.sink != nil {
		a.sink.SetText(anim.target.ElementID, anim.target.format(v))
	}
}

func (anim *Animation) complete() {
	anim.mu.Lock()
	if anim.finished {
		anim.mu.Unlock()
		return
	}
	anim.finished = true
	h := anim.handle
	callbacks := anim.onFinish
	anim.onFinish = nil
	close(anim.done)
	anim.mu.Unlock()

	if h != nil {
		h.Cancel()
	}
	for _, fn := range callbacks {
		fn()
	}
}

// OnFinish registers fn to run on completion. It runs immediately if the
// animation has already completed, and never if it is cancelled first.
func (anim *Animation) OnFinish(fn func()) {
	anim.mu.Lock()
	if anim.finished {
		anim.mu.Unlock()
		fn()
		return
	}
	anim.onFinish = append(anim.onFinish, fn)
	anim.mu.Unlock()
}

// Done is closed when the animation completes. A cancelled animation never
// completes.
func (anim *Animation) Done() <-chan struct{} {
	return anim.done
}

// Value returns the last written value.
func (anim *Animation) Value() float64 {
	anim.mu.Lock()
	defer anim.mu.Unlock()
	return anim.value
}

// Finished reports whether the final value has been written.
func (anim *Animation) Finished() bool {
	anim.mu.Lock()
	defer anim.mu.Unlock()
	return anim.finished
}

// Cancel stops sampling and leaves the last written value in place.
func (anim *Animation) Cancel() {
	anim.mu.Lock()
	h := anim.handle
	anim.onFinish = nil
	anim.mu.Unlock()
	if h != nil {
		h.Cancel()
	}
}

// Spec describes one member of an AnimateAll batch.
type Spec struct {
	Target Target
	Start  float64
	End    float64
}

// AnimateAll starts every spec with the same duration and calls onComplete
// once, after the last of them has written its end value.
func (a *Animator) AnimateAll(specs []Spec, duration time.Duration, onComplete func()) ([]*Animation, error) {
	if duration <= 0 {
		return nil, ErrInvalidDuration
	}
	if len(specs) == 0 {
		if onComplete != nil {
			onComplete()
		}
		return nil, nil
	}

	remaining := len(specs)
	anims := make([]*Animation, 0, len(specs))
	for _, s := range specs {
		anim, err := a.Animate(s.Target, s.Start, s.End, duration)
		if err != nil {
			for _, started := range anims {
				started.Cancel()
			}
			return nil, err
		}
		anims = append(anims, anim)
	}
	for _, anim := range anims {
		anim.OnFinish(func() {
			remaining--
			if remaining == 0 && onComplete != nil {
				onComplete()
			}
		})
	}
	return anims, nil
}
