// Package network generates the synthetic stops, routes and vehicles shown on
// the map and simulates vehicle motion.
package network

import (
	"time"

	"pulse.transitlab.org/internal/render"
)

// Coordinate is a WGS84 position in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (c Coordinate) point() render.Point {
	return render.Point{Lat: c.Lat, Lng: c.Lng}
}

// Stop is a bus stop. Stops are immutable after generation.
type Stop struct {
	ID       int        `json:"id"`
	Name     string     `json:"name"`
	Position Coordinate `json:"position"`
	Waiting  int        `json:"waitingPassengers"`
}

// Route is an ordered list of shared stops. Routes are immutable after
// generation.
type Route struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Color string  `json:"color"`
	Stops []*Stop `json:"-"`
}

// Path returns the route's stop coordinates in order.
func (r *Route) Path() []Coordinate {
	out := make([]Coordinate, len(r.Stops))
	for i, s := range r.Stops {
		out[i] = s.Position
	}
	return out
}

// StopIDs returns the ids of the route's stops in order.
func (r *Route) StopIDs() []int {
	out := make([]int, len(r.Stops))
	for i, s := range r.Stops {
		out[i] = s.ID
	}
	return out
}

// Vehicle is a simulated bus. Its route never changes.
type Vehicle struct {
	ID          int
	Position    Coordinate
	Route       *Route
	Passengers  int
	Speed       int
	Heading     float64
	Direction   string
	LastUpdated time.Time
}

// VehicleState is an immutable copy of a vehicle for readers outside the
// simulation.
type VehicleState struct {
	ID          int        `json:"id"`
	Position    Coordinate `json:"position"`
	RouteID     int        `json:"routeId"`
	RouteName   string     `json:"routeName"`
	Passengers  int        `json:"passengers"`
	Capacity    int        `json:"capacity"`
	Speed       int        `json:"speed"`
	Heading     float64    `json:"heading"`
	Direction   string     `json:"direction"`
	LastUpdated time.Time  `json:"lastUpdated"`
}

func (v *Vehicle) state() VehicleState {
	return VehicleState{
		ID:          v.ID,
		Position:    v.Position,
		RouteID:     v.Route.ID,
		RouteName:   v.Route.Name,
		Passengers:  v.Passengers,
		Capacity:    VehicleCapacity,
		Speed:       v.Speed,
		Heading:     v.Heading,
		Direction:   v.Direction,
		LastUpdated: v.LastUpdated,
	}
}

// MarkerID is the render id of the vehicle's map marker.
func (v *Vehicle) MarkerID() string {
	return VehicleMarkerID(v.ID)
}
