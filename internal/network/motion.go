package network

import (
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"pulse.transitlab.org/internal/logging"
	"pulse.transitlab.org/internal/render"
	"pulse.transitlab.org/internal/schedule"
	"pulse.transitlab.org/internal/utils"
)

const (
	// DefaultMotionInterval is the cadence of vehicle updates.
	DefaultMotionInterval = 3 * time.Second

	motionJitter = 0.0005
	maxStep      = 3
	minSpeed     = 15
	maxSpeed     = 50
)

// Simulator moves every vehicle of a Network on a fixed cadence and
// republishes their markers.
type Simulator struct {
	network  *Network
	sched    schedule.Scheduler
	sink     render.Sink
	rng      *rand.Rand
	logger   *slog.Logger
	interval time.Duration

	mu     sync.Mutex
	handle schedule.Handle
}

// NewSimulator wires a Simulator. A non-positive interval uses
// DefaultMotionInterval.
func NewSimulator(network *Network, sched schedule.Scheduler, sink render.Sink, rng *rand.Rand, logger *slog.Logger, interval time.Duration) *Simulator {
	if interval <= 0 {
		interval = DefaultMotionInterval
	}
	return &Simulator{
		network:  network,
		sched:    sched,
		sink:     sink,
		rng:      rng,
		logger:   logging.ForComponent(logger, "motion"),
		interval: interval,
	}
}

// Start registers the motion loop. It is a no-op when already running.
func (s *Simulator) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle != nil {
		return
	}
	s.handle = s.sched.Every(s.interval, s.Tick)
	logging.LogOperation(s.logger, "vehicle_simulation_started",
		slog.Int("vehicles", len(s.network.vehicles)),
		slog.Duration("interval", s.interval))
}

// Stop cancels the motion loop.
func (s *Simulator) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle != nil {
		s.handle.Cancel()
		s.handle = nil
	}
}

// Running reports whether the loop is registered.
func (s *Simulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle != nil
}

// Tick advances every vehicle once, then republishes the whole fleet. No
// marker is written until every vehicle has moved.
func (s *Simulator) Tick(now time.Time) {
	s.network.mu.Lock()
	states := make([]VehicleState, 0, len(s.network.vehicles))
	for _, v := range s.network.vehicles {
		s.step(v, now)
		states = append(states, v.state())
	}
	s.network.mu.Unlock()

	for _, st := range states {
		PublishVehicle(s.sink, st)
	}
	logging.LogTick(s.logger, "vehicles", slog.Int("vehicles", len(states)))
}

func (s *Simulator) step(v *Vehicle, now time.Time) {
	from := v.Position
	v.Position.Lat += (s.rng.Float64() - 0.5) * 2 * motionJitter
	v.Position.Lng += (s.rng.Float64() - 0.5) * 2 * motionJitter
	if heading, ok := utils.Heading(from.Lat, from.Lng, v.Position.Lat, v.Position.Lng); ok {
		v.Heading = heading
		v.Direction = utils.BearingToCompass(heading)
	}

	v.Passengers = max(0, v.Passengers+s.walk())
	v.Speed = min(maxSpeed, max(minSpeed, v.Speed+s.walk()))
	v.LastUpdated = now
}

// walk draws an integer step in [-3, +3].
func (s *Simulator) walk() int {
	return s.rng.IntN(2*maxStep+1) - maxStep
}
