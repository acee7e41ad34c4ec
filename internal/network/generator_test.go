package network

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

func newTestGenerator(seed uint64) *Generator {
	return NewGenerator(rand.New(rand.NewPCG(seed, seed)), Center)
}

func TestGenerateStops(t *testing.T) {
	g := newTestGenerator(1)
	stops := g.GenerateStops(DefaultStopCount)
	require.Len(t, stops, 15)

	for i, s := range stops {
		assert.Equal(t, i+1, s.ID)
		assert.Equal(t, StopNames[i], s.Name)
		assert.LessOrEqual(t, math.Abs(s.Position.Lat-Center.Lat), 0.05)
		assert.LessOrEqual(t, math.Abs(s.Position.Lng-Center.Lng), 0.05)
		assert.GreaterOrEqual(t, s.Waiting, 5)
		assert.Less(t, s.Waiting, 55)
	}
	assert.Equal(t, "Circle Station", stops[0].Name)
	assert.Equal(t, "West Hills Mall", stops[14].Name)
}

func TestGenerateStopsFallbackNames(t *testing.T) {
	stops := newTestGenerator(2).GenerateStops(17)
	require.Len(t, stops, 17)
	assert.Equal(t, "Bus Stop 16", stops[15].Name)
	assert.Equal(t, "Bus Stop 17", stops[16].Name)

	assert.Empty(t, newTestGenerator(2).GenerateStops(0))
}

func TestGenerateRoutes(t *testing.T) {
	tests := []struct {
		name      string
		stops     int
		routes    int
		wantIDs   []int
		wantSizes []int
	}{
		{name: "default network", stops: 15, routes: 5, wantIDs: []int{1, 2, 3, 4, 5}, wantSizes: []int{6, 6, 6, 6, 3}},
		{name: "short tail is dropped", stops: 13, routes: 5, wantIDs: []int{1, 2, 3, 4}, wantSizes: []int{6, 6, 6, 4}},
		{name: "more routes than windows", stops: 7, routes: 5, wantIDs: []int{1, 2}, wantSizes: []int{6, 4}},
		{name: "no stops", stops: 0, routes: 5},
		{name: "single stop", stops: 1, routes: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGenerator(3)
			stops := g.GenerateStops(tt.stops)
			routes := g.GenerateRoutes(stops, tt.routes)

			require.Len(t, routes, len(tt.wantIDs))
			assert.LessOrEqual(t, len(routes), tt.routes)
			for i, r := range routes {
				assert.Equal(t, tt.wantIDs[i], r.ID)
				assert.Len(t, r.Stops, tt.wantSizes[i])
				assert.GreaterOrEqual(t, len(r.Stops), 2)
				assert.Equal(t, RouteColors[(r.ID-1)%len(RouteColors)], r.Color)
				assert.Same(t, stops[(r.ID-1)*3], r.Stops[0], "routes share stop pointers")
			}
		})
	}
}

func TestGenerateVehicles(t *testing.T) {
	g := newTestGenerator(4)
	stops := g.GenerateStops(15)
	routes := g.GenerateRoutes(stops, 5)
	vehicles := g.GenerateVehicles(routes, DefaultVehicleCount, epoch)
	require.Len(t, vehicles, 8)

	for i, v := range vehicles {
		assert.Equal(t, i+1, v.ID)
		assert.Same(t, routes[i%len(routes)], v.Route)
		assert.GreaterOrEqual(t, v.Passengers, 5)
		assert.Less(t, v.Passengers, 45)
		assert.GreaterOrEqual(t, v.Speed, 25)
		assert.Less(t, v.Speed, 45)
		assert.Equal(t, epoch, v.LastUpdated)

		near := false
		for _, s := range v.Route.Stops {
			if math.Abs(v.Position.Lat-s.Position.Lat) <= 0.0025 && math.Abs(v.Position.Lng-s.Position.Lng) <= 0.0025 {
				near = true
			}
		}
		assert.True(t, near, "vehicle %d is anchored at a stop of its route", v.ID)
	}
}

func TestGenerateVehiclesWithoutRoutes(t *testing.T) {
	g := newTestGenerator(5)
	assert.Nil(t, g.GenerateVehicles(nil, 8, epoch))

	routes := []*Route{
		{ID: 1, Name: "Route 1", Stops: []*Stop{{ID: 1}}},
		{ID: 2, Name: "Route 2"},
	}
	vehicles := g.GenerateVehicles(routes, 4, epoch)
	require.Len(t, vehicles, 2)
	assert.Equal(t, 1, vehicles[0].ID)
	assert.Equal(t, 3, vehicles[1].ID, "skipped vehicles leave id gaps")
}

func TestGeneratorIsDeterministic(t *testing.T) {
	a := newTestGenerator(42).GenerateStops(15)
	b := newTestGenerator(42).GenerateStops(15)
	for i := range a {
		assert.Equal(t, *a[i], *b[i])
	}
}
