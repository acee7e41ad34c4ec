package network

import (
	"fmt"
	"html"
	"sort"
	"sync"

	"pulse.transitlab.org/internal/render"
)

// VehicleMarkerID is the render id of a vehicle marker.
func VehicleMarkerID(id int) string { return fmt.Sprintf("vehicle-%d", id) }

// StopMarkerID is the render id of a stop marker.
func StopMarkerID(id int) string { return fmt.Sprintf("stop-%d", id) }

// RoutePathID is the render id of a route line.
func RoutePathID(id int) string { return fmt.Sprintf("route-%d", id) }

// RouteView is a route with its stop ids and path resolved.
type RouteView struct {
	ID      int          `json:"id"`
	Name    string       `json:"name"`
	Color   string       `json:"color"`
	StopIDs []int        `json:"stopIds"`
	Path    []Coordinate `json:"path"`
}

// Network owns the generated entity set. Vehicles are mutated by the motion
// simulator; readers get copies.
type Network struct {
	mu       sync.RWMutex
	stops    []*Stop
	routes   []*Route
	vehicles []*Vehicle
	byID     map[int]*Vehicle
}

// NewNetwork wraps a generated entity set.
func NewNetwork(stops []*Stop, routes []*Route, vehicles []*Vehicle) *Network {
	byID := make(map[int]*Vehicle, len(vehicles))
	for _, v := range vehicles {
		byID[v.ID] = v
	}
	return &Network{stops: stops, routes: routes, vehicles: vehicles, byID: byID}
}

// Stops returns copies of every stop.
func (n *Network) Stops() []Stop {
	out := make([]Stop, len(n.stops))
	for i, s := range n.stops {
		out[i] = *s
	}
	return out
}

// Routes returns every route with its path resolved.
func (n *Network) Routes() []RouteView {
	out := make([]RouteView, len(n.routes))
	for i, r := range n.routes {
		out[i] = RouteView{
			ID:      r.ID,
			Name:    r.Name,
			Color:   r.Color,
			StopIDs: r.StopIDs(),
			Path:    r.Path(),
		}
	}
	return out
}

// Vehicles returns the current state of every vehicle ordered by id.
func (n *Network) Vehicles() []VehicleState {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]VehicleState, len(n.vehicles))
	for i, v := range n.vehicles {
		out[i] = v.state()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Vehicle returns the current state of one vehicle.
func (n *Network) Vehicle(id int) (VehicleState, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	v, ok := n.byID[id]
	if !ok {
		return VehicleState{}, false
	}
	return v.state(), true
}

// FleetAverages summarises the fleet.
type FleetAverages struct {
	Vehicles      int     `json:"vehicles"`
	AvgPassengers float64 `json:"avgPassengers"`
	AvgSpeed      float64 `json:"avgSpeed"`
	Occupancy     float64 `json:"occupancy"`
}

// Averages computes fleet-wide passenger and speed means.
func (n *Network) Averages() FleetAverages {
	n.mu.RLock()
	defer n.mu.RUnlock()
	a := FleetAverages{Vehicles: len(n.vehicles)}
	if a.Vehicles == 0 {
		return a
	}
	var passengers, speed int
	for _, v := range n.vehicles {
		passengers += v.Passengers
		speed += v.Speed
	}
	a.AvgPassengers = float64(passengers) / float64(a.Vehicles)
	a.AvgSpeed = float64(speed) / float64(a.Vehicles)
	a.Occupancy = a.AvgPassengers / VehicleCapacity
	return a
}

// Publish draws every route line, stop marker and vehicle marker.
func (n *Network) Publish(sink render.Sink) {
	for _, r := range n.routes {
		path := make([]render.Point, len(r.Stops))
		for i, s := range r.Stops {
			path[i] = s.Position.point()
		}
		sink.SetRoutePath(RoutePathID(r.ID), r.Color, path)
	}
	for _, s := range n.stops {
		id := StopMarkerID(s.ID)
		sink.SetMarkerPosition(id, s.Position.Lat, s.Position.Lng)
		sink.SetMarkerDetail(id, StopDetail(*s))
	}
	for _, st := range n.Vehicles() {
		PublishVehicle(sink, st)
	}
}

// PublishVehicle writes one vehicle's marker position and detail.
func PublishVehicle(sink render.Sink, st VehicleState) {
	id := VehicleMarkerID(st.ID)
	sink.SetMarkerPosition(id, st.Position.Lat, st.Position.Lng)
	sink.SetMarkerDetail(id, VehicleDetail(st))
}

// StopDetail renders the popup of a stop marker.
func StopDetail(s Stop) string {
	return fmt.Sprintf(`<div class="stop-popup"><strong>🚏 %s</strong><br>Waiting passengers: %d</div>`,
		html.EscapeString(s.Name), s.Waiting)
}

// VehicleDetail renders the popup of a vehicle marker.
func VehicleDetail(st VehicleState) string {
	return fmt.Sprintf(`<div class="vehicle-popup"><strong>🚌 Vehicle %d</strong><br>`+
		`Route: %s<br>Passengers: %d/%d<br>Speed: %d km/h<br>Heading: %s<br>Last updated: %s</div>`,
		st.ID, html.EscapeString(st.RouteName), st.Passengers, st.Capacity, st.Speed,
		st.Direction, st.LastUpdated.Format("15:04:05"))
}
