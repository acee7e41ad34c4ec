package metrics

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulse.transitlab.org/internal/animate"
	"pulse.transitlab.org/internal/render"
	"pulse.transitlab.org/internal/schedule"
)

func newRNG() *rand.Rand {
	return rand.New(rand.NewPCG(7, 7))
}

func TestFormatApply(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		value  float64
		want   string
	}{
		{name: "daily passengers in thousands", format: FormatThousands, value: 12847, want: "12.8K"},
		{name: "thousands at the threshold", format: FormatThousands, value: 1000, want: "1000"},
		{name: "thousands below threshold floors", format: FormatThousands, value: 999.9, want: "999"},
		{name: "average delay", format: FormatOneDecimal, value: 3.2, want: "3.2"},
		{name: "one decimal rounds", format: FormatOneDecimal, value: 3.26, want: "3.3"},
		{name: "active vehicles", format: FormatInteger, value: 156, want: "156"},
		{name: "integer floors", format: FormatInteger, value: 156.9, want: "156"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.format.Apply(tt.value))
		})
	}
}

func TestNewStoreDefaults(t *testing.T) {
	s, err := NewStore(nil)
	require.NoError(t, err)

	want := map[Name]string{
		ActiveVehicles:  "156",
		BusStops:        "342",
		DailyPassengers: "12.8K",
		CarbonSaved:     "2341",
		AvgDelay:        "3.2",
		UserPoints:      "8765",
	}
	for name, display := range want {
		got, ok := s.Display(name)
		require.True(t, ok, name)
		assert.Equal(t, display, got, name)
	}

	var order []Name
	s.ForEach(func(d Definition, _ float64) { order = append(order, d.Name) })
	assert.Equal(t, []Name{ActiveVehicles, BusStops, DailyPassengers, CarbonSaved, AvgDelay, UserPoints}, order)
}

func TestNewStoreOverrides(t *testing.T) {
	s, err := NewStore(map[Name]float64{ActiveVehicles: 500})
	require.NoError(t, err)
	v, _ := s.Get(ActiveVehicles)
	assert.Equal(t, 200.0, v)

	_, err = NewStore(map[Name]float64{"ghosts": 1})
	assert.ErrorIs(t, err, ErrUnknownMetric)
}

func TestStoreSetClamps(t *testing.T) {
	s, err := NewStore(nil)
	require.NoError(t, err)

	tests := []struct {
		name  Name
		value float64
		want  float64
	}{
		{name: ActiveVehicles, value: 10, want: 120},
		{name: ActiveVehicles, value: 250, want: 200},
		{name: AvgDelay, value: 0.2, want: 1.0},
		{name: AvgDelay, value: 9, want: 8.0},
		{name: DailyPassengers, value: 5, want: 10000},
		{name: CarbonSaved, value: -3, want: 0},
		{name: UserPoints, value: 1e9, want: 1e9},
	}
	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			got, err := s.Set(tt.name, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			stored, _ := s.Get(tt.name)
			assert.Equal(t, tt.want, stored)
		})
	}

	_, err = s.Set("nope", 1)
	assert.ErrorIs(t, err, ErrUnknownMetric)
}

func TestSnapshot(t *testing.T) {
	s, err := NewStore(nil)
	require.NoError(t, err)

	snap := s.Snapshot()
	require.Len(t, snap, len(Definitions))
	assert.Equal(t, DailyPassengers, snap[2].Name)
	assert.Equal(t, "12.8K", snap[2].Display)
	assert.Equal(t, "thousands", snap[2].Format)
	assert.Equal(t, 10000.0, snap[2].Min)
	assert.Zero(t, snap[2].Max)
	assert.Equal(t, 200.0, snap[0].Max)
}

func TestDeltaDrawBounds(t *testing.T) {
	rng := newRNG()
	seen := map[float64]bool{}
	d := Delta{Min: -5, Max: 5, Integer: true}
	for i := 0; i < 2000; i++ {
		v := d.Draw(rng)
		assert.Equal(t, math.Trunc(v), v)
		assert.GreaterOrEqual(t, v, -5.0)
		assert.LessOrEqual(t, v, 5.0)
		seen[v] = true
	}
	assert.Len(t, seen, 11, "both bounds are reachable")

	f := Delta{Min: -0.25, Max: 0.25}
	for i := 0; i < 2000; i++ {
		v := f.Draw(rng)
		assert.GreaterOrEqual(t, v, -0.25)
		assert.Less(t, v, 0.25)
	}
}

func TestDriftStaysInRange(t *testing.T) {
	for _, table := range []DriftTable{ActiveDrift, IdleDrift} {
		s, err := NewStore(map[Name]float64{ActiveVehicles: 121, AvgDelay: 1.1})
		require.NoError(t, err)
		rng := newRNG()

		for i := 0; i < 5000; i++ {
			changes := Drift(s, table, rng)
			assert.Len(t, changes, 4)
			s.ForEach(func(d Definition, v float64) {
				require.True(t, d.Range.Contains(v), "%s=%v outside range", d.Name, v)
			})
		}

		busStops, _ := s.Get(BusStops)
		assert.Equal(t, 342.0, busStops, "non-drifting metrics are untouched")
	}
}

func TestDriftIsMonotonicForCounters(t *testing.T) {
	s, err := NewStore(nil)
	require.NoError(t, err)
	rng := newRNG()
	for i := 0; i < 100; i++ {
		for _, c := range Drift(s, IdleDrift, rng) {
			if c.Name == DailyPassengers || c.Name == CarbonSaved {
				assert.GreaterOrEqual(t, c.To, c.From)
			}
		}
	}
}

func newTestMutator(t *testing.T) (*Mutator, *schedule.Virtual, *render.Board, *Store) {
	t.Helper()
	v := schedule.NewVirtual(time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC))
	board := render.NewBoard(render.BoardConfig{})
	store, err := NewStore(nil)
	require.NoError(t, err)
	m := NewMutator(store, v, animate.NewAnimator(v, board, 0), board, newRNG(), nil, MutatorConfig{})
	return m, v, board, store
}

func TestMutatorActiveLoop(t *testing.T) {
	m, v, board, store := newTestMutator(t)
	m.StartActive()
	m.StartActive()
	assert.True(t, m.ActiveRunning())

	v.Advance(4999 * time.Millisecond)
	_, written := board.Text(string(ActiveVehicles))
	assert.False(t, written)

	v.Advance(time.Millisecond)
	for _, name := range []Name{ActiveVehicles, DailyPassengers, CarbonSaved, AvgDelay} {
		got, ok := board.Text(string(name))
		require.True(t, ok, name)
		want, _ := store.Display(name)
		assert.Equal(t, want, got, name)
	}
	_, written = board.Text(string(BusStops))
	assert.False(t, written)

	m.Stop()
	assert.False(t, m.ActiveRunning())
	assert.Equal(t, 0, v.Pending())
}

func TestMutatorIdleLoopAnimates(t *testing.T) {
	m, v, board, store := newTestMutator(t)
	m.StartIdle()

	v.Advance(10 * time.Second)
	changes := m.TickIdle()
	require.Len(t, changes, 4)

	v.Advance(2 * time.Second)
	for _, name := range []Name{ActiveVehicles, DailyPassengers, CarbonSaved, AvgDelay} {
		got, ok := board.Text(string(name))
		require.True(t, ok, name)
		want, _ := store.Display(name)
		assert.Equal(t, want, got, "after the transition the display shows the stored value")
	}
}

func assertDisplayMatchesStore(t *testing.T, board *render.Board, store *Store) {
	t.Helper()
	for _, def := range Definitions {
		got, ok := board.Text(string(def.Name))
		require.True(t, ok, def.Name)
		want, _ := store.Display(def.Name)
		assert.Equal(t, want, got, def.Name)
	}
}

func TestMutatorReveal(t *testing.T) {
	m, v, board, store := newTestMutator(t)
	completed := 0
	require.NoError(t, m.Reveal(2*time.Second, func() { completed++ }))

	got, _ := board.Text(string(ActiveVehicles))
	assert.Equal(t, "0", got)
	assert.True(t, m.Transitioning(ActiveVehicles))

	v.Advance(2 * time.Second)
	assert.Equal(t, 1, completed)
	assert.False(t, m.Transitioning(ActiveVehicles))
	assertDisplayMatchesStore(t, board, store)

	assert.ErrorIs(t, m.Reveal(0, nil), animate.ErrInvalidDuration)
}

func TestMutatorTickSupersedesReveal(t *testing.T) {
	m, v, board, store := newTestMutator(t)
	completed := 0
	require.NoError(t, m.Reveal(2*time.Second, func() { completed++ }))

	v.Advance(time.Second)
	m.TickActive()
	assert.False(t, m.Transitioning(ActiveVehicles))
	assert.True(t, m.Transitioning(BusStops))
	assert.Equal(t, 0, completed)

	v.Advance(time.Second)
	assert.Equal(t, 1, completed)
	assertDisplayMatchesStore(t, board, store)

	v.Advance(time.Second)
	assert.Equal(t, 1, completed)
	m.Stop()
	assert.Equal(t, 0, v.Pending())
}
