package metrics

import (
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"pulse.transitlab.org/internal/animate"
	"pulse.transitlab.org/internal/logging"
	"pulse.transitlab.org/internal/render"
	"pulse.transitlab.org/internal/schedule"
)

// MutatorConfig sets the cadence of the drift loops.
type MutatorConfig struct {
	ActiveInterval time.Duration
	IdleInterval   time.Duration
	// Transition is the duration of the idle loop's re-animation.
	Transition time.Duration
}

// DefaultMutatorConfig returns 5s active ticks, 10s idle ticks and 2s
// transitions.
func DefaultMutatorConfig() MutatorConfig {
	return MutatorConfig{
		ActiveInterval: 5 * time.Second,
		IdleInterval:   10 * time.Second,
		Transition:     2 * time.Second,
	}
}

// Mutator runs the two drift loops over a Store. The active loop writes the
// new display value directly; the idle loop animates from the previous value.
// All methods must be called on the scheduler's execution context.
type Mutator struct {
	store    *Store
	sched    schedule.Scheduler
	animator *animate.Animator
	sink     render.Sink
	rng      *rand.Rand
	logger   *slog.Logger
	cfg      MutatorConfig

	mu          sync.Mutex
	active      schedule.Handle
	idle        schedule.Handle
	transitions map[Name]*transition
}

// transition is the animation currently owning a metric's display. settle,
// when set, runs once the animation finishes or a drift tick supersedes it.
type transition struct {
	anim   *animate.Animation
	settle func()
}

// NewMutator wires a Mutator. Zero intervals in cfg take their defaults.
func NewMutator(store *Store, sched schedule.Scheduler, animator *animate.Animator, sink render.Sink, rng *rand.Rand, logger *slog.Logger, cfg MutatorConfig) *Mutator {
	def := DefaultMutatorConfig()
	if cfg.ActiveInterval <= 0 {
		cfg.ActiveInterval = def.ActiveInterval
	}
	if cfg.IdleInterval <= 0 {
		cfg.IdleInterval = def.IdleInterval
	}
	if cfg.Transition <= 0 {
		cfg.Transition = def.Transition
	}
	return &Mutator{
		store:       store,
		sched:       sched,
		animator:    animator,
		sink:        sink,
		rng:         rng,
		logger:      logging.ForComponent(logger, "metrics"),
		cfg:         cfg,
		transitions: make(map[Name]*transition),
	}
}

// StartActive begins the active loop. It is a no-op when already running.
func (m *Mutator) StartActive() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active != nil {
		return
	}
	m.active = m.sched.Every(m.cfg.ActiveInterval, func(time.Time) { m.TickActive() })
	logging.LogOperation(m.logger, "metric_loop_started", slog.String("loop", "active"),
		slog.Duration("interval", m.cfg.ActiveInterval))
}

// StartIdle begins the idle loop. It is a no-op when already running.
func (m *Mutator) StartIdle() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.idle != nil {
		return
	}
	m.idle = m.sched.Every(m.cfg.IdleInterval, func(time.Time) { m.TickIdle() })
	logging.LogOperation(m.logger, "metric_loop_started", slog.String("loop", "idle"),
		slog.Duration("interval", m.cfg.IdleInterval))
}

// ActiveRunning reports whether the active loop is registered.
func (m *Mutator) ActiveRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active != nil
}

// Stop cancels both loops and any running transitions.
func (m *Mutator) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active != nil {
		m.active.Cancel()
		m.active = nil
	}
	if m.idle != nil {
		m.idle.Cancel()
		m.idle = nil
	}
	for name, tr := range m.transitions {
		tr.anim.Cancel()
		delete(m.transitions, name)
	}
}

// TickActive performs one active drift step.
func (m *Mutator) TickActive() []Change {
	changes := Drift(m.store, ActiveDrift, m.rng)
	for _, c := range changes {
		m.supersede(c.Name)
		def, _ := Lookup(c.Name)
		m.sink.SetText(string(c.Name), def.Format.Apply(c.To))
	}
	logging.LogTick(m.logger, "metrics_active", slog.Int("changes", len(changes)))
	return changes
}

// TickIdle performs one idle drift step, animating each display from its
// previous value.
func (m *Mutator) TickIdle() []Change {
	changes := Drift(m.store, IdleDrift, m.rng)
	for _, c := range changes {
		m.supersede(c.Name)
		def, _ := Lookup(c.Name)
		anim, err := m.animator.Animate(animate.Target{
			ElementID: string(c.Name),
			Format:    def.Format.Apply,
		}, c.From, c.To, m.cfg.Transition)
		if logging.LogIfError(m.logger, "failed to animate metric", err, slog.String("metric", string(c.Name))) {
			continue
		}
		m.mu.Lock()
		m.transitions[c.Name] = &transition{anim: anim}
		m.mu.Unlock()
	}
	logging.LogTick(m.logger, "metrics_idle", slog.Int("changes", len(changes)))
	return changes
}

// Reveal animates every metric display from zero up to its stored value and
// calls onComplete once each of those animations has either finished or been
// superseded by a drift tick. A drift tick always wins the display.
func (m *Mutator) Reveal(duration time.Duration, onComplete func()) error {
	if duration <= 0 {
		return animate.ErrInvalidDuration
	}
	values := m.store.Snapshot()
	remaining := len(values)
	if remaining == 0 {
		if onComplete != nil {
			onComplete()
		}
		return nil
	}

	for _, v := range values {
		m.drop(v.Name)
		def, _ := Lookup(v.Name)
		settled := false
		settle := func() {
			if settled {
				return
			}
			settled = true
			remaining--
			if remaining == 0 && onComplete != nil {
				onComplete()
			}
		}
		anim, err := m.animator.Animate(animate.Target{
			ElementID: string(v.Name),
			Format:    def.Format.Apply,
		}, 0, v.Value, duration)
		if err != nil {
			return err
		}
		m.mu.Lock()
		m.transitions[v.Name] = &transition{anim: anim, settle: settle}
		m.mu.Unlock()
		anim.OnFinish(settle)
	}
	return nil
}

// Transitioning reports whether an animation currently owns name's display.
func (m *Mutator) Transitioning(name Name) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	tr, ok := m.transitions[name]
	return ok && !tr.anim.Finished()
}

// supersede hands name's display to a drift tick, settling any reveal that
// was still running on it.
func (m *Mutator) supersede(name Name) {
	if tr := m.drop(name); tr != nil && tr.settle != nil {
		tr.settle()
	}
}

func (m *Mutator) drop(name Name) *transition {
	m.mu.Lock()
	defer m.mu.Unlock()
	tr, ok := m.transitions[name]
	if !ok {
		return nil
	}
	tr.anim.Cancel()
	delete(m.transitions, name)
	return tr
}
