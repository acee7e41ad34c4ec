// Package dashboard orchestrates the simulation: page-load start-up, the
// staged system initialization, feature activation, the demo sequence and
// report generation. Every method that touches simulation state must run on
// the scheduler's execution context; use Do from other goroutines.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"pulse.transitlab.org/internal/animate"
	"pulse.transitlab.org/internal/charts"
	"pulse.transitlab.org/internal/events"
	"pulse.transitlab.org/internal/logging"
	"pulse.transitlab.org/internal/metrics"
	"pulse.transitlab.org/internal/network"
	"pulse.transitlab.org/internal/render"
	"pulse.transitlab.org/internal/report"
	"pulse.transitlab.org/internal/schedule"
)

// Display targets outside the metric ids.
const (
	LoadingStatus  = "loadingStatus"
	LoadingOverlay = "loadingOverlay"

	overlayVisible = "visible"
	overlayHidden  = "hidden"
)

var (
	ErrAlreadyInitializing = errors.New("system initialization already in progress")
	ErrUnknownFeature      = errors.New("unknown feature")
	ErrSequenceRunning     = errors.New("sequence already running")
	ErrNotStarted          = errors.New("dashboard has not been started")
)

// State is the system lifecycle state.
type State int

const (
	StateIdle State = iota
	StateInitializing
	StateActive
	StateLimited
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitializing:
		return "initializing"
	case StateActive:
		return "active"
	case StateLimited:
		return "limited"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Config holds the simulation parameters.
type Config struct {
	Center   network.Coordinate
	Stops    int
	Routes   int
	Vehicles int

	AnimationPoll     time.Duration
	InitialAnimation  time.Duration
	MotionInterval    time.Duration
	Metrics           metrics.MutatorConfig
	RollingInterval   time.Duration
	BackgroundEvery   time.Duration
	BackgroundChance  float64
	AnnouncementEvery time.Duration
	AnnouncementOdds  float64
}

// DefaultConfig returns the stock simulation parameters.
func DefaultConfig() Config {
	return Config{
		Center:            network.Center,
		Stops:             network.DefaultStopCount,
		Routes:            network.DefaultRouteCount,
		Vehicles:          network.DefaultVehicleCount,
		AnimationPoll:     animate.DefaultPoll,
		InitialAnimation:  2 * time.Second,
		MotionInterval:    network.DefaultMotionInterval,
		Metrics:           metrics.DefaultMutatorConfig(),
		RollingInterval:   30 * time.Second,
		BackgroundEvery:   events.Background(nil).Interval,
		BackgroundChance:  events.Background(nil).Probability,
		AnnouncementEvery: events.Announcement().Interval,
		AnnouncementOdds:  events.Announcement().Probability,
	}
}

// Options wires a Dashboard to its collaborators.
type Options struct {
	Scheduler schedule.Scheduler
	Sink      render.Sink
	// Charts is optional. Without it chart containers get placeholder text.
	Charts   render.ChartSink
	Notifier render.Notifier
	Exporter report.Exporter
	// Store defaults to a store seeded with the metric defaults.
	Store  *metrics.Store
	Rand   *rand.Rand
	Logger *slog.Logger
	Config Config
}

// Dashboard is the simulation orchestrator.
type Dashboard struct {
	sched    schedule.Scheduler
	sink     render.Sink
	charts   render.ChartSink
	notifier render.Notifier
	exporter report.Exporter
	store    *metrics.Store
	rng      *rand.Rand
	logger   *slog.Logger
	// baseLogger is the untagged logger handed to sub-components.
	baseLogger *slog.Logger
	cfg        Config

	animator *animate.Animator
	mutator  *metrics.Mutator
	events   *events.Notifier
	chartGen *charts.Generator

	// tasks holds every scheduled one-shot and loop owned by the dashboard.
	tasks schedule.Group

	mu            sync.RWMutex
	started       bool
	state         State
	network       *network.Network
	simulator     *network.Simulator
	features      map[string]bool
	mapFeatures   map[string]bool
	sequences     map[string]bool
	rolling       schedule.Handle
	initializedAt time.Time
	lastError     string
}

// New validates opts and builds a Dashboard. Nothing is scheduled until Start.
func New(opts Options) (*Dashboard, error) {
	if opts.Scheduler == nil {
		return nil, errors.New("dashboard: scheduler is required")
	}
	if opts.Sink == nil {
		return nil, errors.New("dashboard: render sink is required")
	}
	if opts.Notifier == nil {
		return nil, errors.New("dashboard: notifier is required")
	}
	if opts.Rand == nil {
		return nil, errors.New("dashboard: random source is required")
	}
	if opts.Store == nil {
		store, err := metrics.NewStore(nil)
		if err != nil {
			return nil, err
		}
		opts.Store = store
	}
	if opts.Config == (Config{}) {
		opts.Config = DefaultConfig()
	}
	logger := logging.ForComponent(opts.Logger, "dashboard")

	d := &Dashboard{
		sched:       opts.Scheduler,
		sink:        opts.Sink,
		charts:      opts.Charts,
		notifier:    opts.Notifier,
		exporter:    opts.Exporter,
		store:       opts.Store,
		rng:         opts.Rand,
		logger:      logger,
		baseLogger:  opts.Logger,
		cfg:         opts.Config,
		chartGen:    charts.NewGenerator(opts.Rand),
		features:    make(map[string]bool),
		mapFeatures: make(map[string]bool),
		sequences:   make(map[string]bool),
	}
	d.animator = animate.NewAnimator(d.sched, d.sink, d.cfg.AnimationPoll)
	d.mutator = metrics.NewMutator(d.store, d.sched, d.animator, d.sink, d.rng, opts.Logger, d.cfg.Metrics)
	d.events = events.NewNotifier(d.sched, d.notifier, d.rng, opts.Logger)
	return d, nil
}

// Do runs fn on the scheduler's execution context and waits for its result.
func (d *Dashboard) Do(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	h := d.sched.After(0, func(time.Time) { result <- fn() })
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		h.Cancel()
		return ctx.Err()
	}
}

// Start runs the page-load sequence: publish the metric text, build and draw
// the network, render the rolling charts and start the always-on loops.
// Calling Start again is a no-op.
func (d *Dashboard) Start() error {
	d.mu.Lock()
	if d.started {
		d.mu.Unlock()
		return nil
	}
	d.started = true
	d.mu.Unlock()

	d.publishMetrics()

	net := d.buildNetwork()
	sim := network.NewSimulator(net, d.sched, d.sink, d.rng, d.baseLogger, d.cfg.MotionInterval)
	d.mu.Lock()
	d.network = net
	d.simulator = sim
	d.mu.Unlock()
	net.Publish(d.sink)

	if d.charts != nil {
		now := d.sched.Now()
		d.charts.RenderChart(charts.AnalyticsChart, d.chartGen.RollingPassengerFlow(now))
		d.charts.RenderChart(charts.PassengerChart, d.chartGen.PassengerHeatmap())
		rolling := d.tasks.Add(d.sched.Every(d.cfg.RollingInterval, func(now time.Time) {
			label, value := d.chartGen.RollingPoint(now)
			d.charts.AppendChartPoint(charts.AnalyticsChart, label, value)
		}))
		d.mu.Lock()
		d.rolling = rolling
		d.mu.Unlock()
	} else {
		d.renderPlaceholders()
	}

	sim.Start()
	d.mutator.StartIdle()
	d.events.Start(d.backgroundLoop())
	d.events.Start(d.announcementLoop())

	logging.LogOperation(d.logger, "dashboard_started",
		slog.Int("stops", len(net.Stops())),
		slog.Int("routes", len(net.Routes())),
		slog.Int("vehicles", len(net.Vehicles())),
		slog.Bool("charts", d.charts != nil))
	return nil
}

func (d *Dashboard) backgroundLoop() events.Loop {
	loop := events.Background(func() bool { return d.State() == StateActive })
	loop.Interval = d.cfg.BackgroundEvery
	loop.Probability = d.cfg.BackgroundChance
	return loop
}

func (d *Dashboard) announcementLoop() events.Loop {
	loop := events.Announcement()
	loop.Interval = d.cfg.AnnouncementEvery
	loop.Probability = d.cfg.AnnouncementOdds
	return loop
}

func (d *Dashboard) publishMetrics() {
	d.store.ForEach(func(def metrics.Definition, v float64) {
		d.sink.SetText(string(def.Name), def.Format.Apply(v))
	})
}

func (d *Dashboard) buildNetwork() *network.Network {
	gen := network.NewGenerator(d.rng, d.cfg.Center)
	stops := gen.GenerateStops(d.cfg.Stops)
	routes := gen.GenerateRoutes(stops, d.cfg.Routes)
	vehicles := gen.GenerateVehicles(routes, d.cfg.Vehicles, d.sched.Now())
	return network.NewNetwork(stops, routes, vehicles)
}

func (d *Dashboard) renderPlaceholders() {
	for _, id := range charts.Containers {
		d.sink.SetText(id, charts.Placeholders[id].String())
	}
}

// stopRolling ends the rolling passenger chart appends. The analytics
// container is handed over to the hourly activity chart at initialization.
func (d *Dashboard) stopRolling() {
	d.mu.Lock()
	h := d.rolling
	d.rolling = nil
	d.mu.Unlock()
	if h != nil {
		h.Cancel()
		d.tasks.Remove(h)
	}
}

// Stop cancels every loop and pending step.
func (d *Dashboard) Stop() {
	d.tasks.Cancel()
	d.mutator.Stop()
	d.events.Stop()

	d.mu.Lock()
	sim := d.simulator
	d.sequences = make(map[string]bool)
	d.mu.Unlock()
	if sim != nil {
		sim.Stop()
	}
	logging.LogOperation(d.logger, "dashboard_stopped")
}

// State returns the lifecycle state.
func (d *Dashboard) State() State {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

func (d *Dashboard) setState(s State) {
	d.mu.Lock()
	prev := d.state
	d.state = s
	if s == StateActive {
		d.initializedAt = d.sched.Now()
	}
	d.mu.Unlock()
	if prev != s {
		logging.LogOperation(d.logger, "state_changed",
			slog.String("from", prev.String()),
			slog.String("to", s.String()))
	}
}

// Store returns the metric store.
func (d *Dashboard) Store() *metrics.Store {
	return d.store
}

// Network returns the entity set, or nil before Start.
func (d *Dashboard) Network() *network.Network {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.network
}

// Status summarises the dashboard for the API.
type Status struct {
	State         State     `json:"state"`
	Started       bool      `json:"started"`
	Features      []string  `json:"features"`
	MapFeatures   []string  `json:"mapFeatures"`
	Sequences     []string  `json:"sequences"`
	ActiveLoop    bool      `json:"activeLoop"`
	Charts        bool      `json:"charts"`
	InitializedAt time.Time `json:"initializedAt,omitzero"`
	LastError     string    `json:"lastError,omitempty"`
}

// Status returns a snapshot of the dashboard state.
func (d *Dashboard) Status() Status {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return Status{
		State:         d.state,
		Started:       d.started,
		Features:      enabled(d.features),
		MapFeatures:   enabled(d.mapFeatures),
		Sequences:     enabled(d.sequences),
		ActiveLoop:    d.mutator.ActiveRunning(),
		Charts:        d.charts != nil,
		InitializedAt: d.initializedAt,
		LastError:     d.lastError,
	}
}

func enabled(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k, on := range m {
		if on {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Realtime is the snapshot served to polling clients.
type Realtime struct {
	Timestamp time.Time             `json:"timestamp"`
	State     State                 `json:"state"`
	Metrics   []metrics.Value       `json:"metrics"`
	Fleet     network.FleetAverages `json:"fleet"`
}

// Realtime returns the current metric values and fleet averages.
func (d *Dashboard) Realtime() Realtime {
	r := Realtime{
		Timestamp: d.sched.Now(),
		State:     d.State(),
		Metrics:   d.store.Snapshot(),
	}
	if net := d.Network(); net != nil {
		r.Fleet = net.Averages()
	}
	return r
}
