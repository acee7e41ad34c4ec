package network

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// StopNames are assigned to generated stops in order.
var StopNames = []string{
	"Circle Station", "Tema Station", "Kaneshie Market", "Madina Station",
	"Adabraka", "Osu Castle", "Airport Terminal", "University of Ghana",
	"Achimota Mall", "East Legon", "Dansoman", "Lapaz Station",
	"37 Military Hospital", "Accra Mall", "West Hills Mall",
}

// RouteColors is cycled over generated routes.
var RouteColors = []string{"#ff6b6b", "#4ecdc4", "#45b7d1", "#96ceb4", "#feca57"}

// Center is the default map center (Accra).
var Center = Coordinate{Lat: 5.6037, Lng: -0.1870}

const (
	DefaultStopCount    = 15
	DefaultRouteCount   = 5
	DefaultVehicleCount = 8

	// VehicleCapacity is the seated capacity shown in vehicle details.
	VehicleCapacity = 45

	stopSpread    = 0.05
	vehicleSpread = 0.0025
	routeStride   = 3
	routeLength   = 6
)

// Generator builds the entity set from an injected random source.
type Generator struct {
	rng    *rand.Rand
	center Coordinate
}

// NewGenerator returns a Generator scattering stops around center.
func NewGenerator(rng *rand.Rand, center Coordinate) *Generator {
	return &Generator{rng: rng, center: center}
}

// offset returns a uniform value in [-spread, +spread).
func (g *Generator) offset(spread float64) float64 {
	return (g.rng.Float64() - 0.5) * 2 * spread
}

// GenerateStops creates n stops with ids 1..n around the center.
func (g *Generator) GenerateStops(n int) []*Stop {
	stops := make([]*Stop, 0, max(n, 0))
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("Bus Stop %d", i+1)
		if i < len(StopNames) {
			name = StopNames[i]
		}
		stops = append(stops, &Stop{
			ID:   i + 1,
			Name: name,
			Position: Coordinate{
				Lat: g.center.Lat + g.offset(stopSpread),
				Lng: g.center.Lng + g.offset(stopSpread),
			},
			Waiting: 5 + g.rng.IntN(50),
		})
	}
	return stops
}

// GenerateRoutes creates up to n routes over overlapping windows of stops.
// Route i covers stops[i*3 : min(i*3+6, len)]; windows shorter than two stops
// are dropped, so ids can have gaps.
func (g *Generator) GenerateRoutes(stops []*Stop, n int) []*Route {
	routes := make([]*Route, 0, max(n, 0))
	for i := 0; i < n; i++ {
		lo := i * routeStride
		if lo >= len(stops) {
			continue
		}
		hi := min(lo+routeLength, len(stops))
		if hi-lo < 2 {
			continue
		}
		routes = append(routes, &Route{
			ID:    i + 1,
			Name:  fmt.Sprintf("Route %d", i+1),
			Color: RouteColors[i%len(RouteColors)],
			Stops: append([]*Stop(nil), stops[lo:hi]...),
		})
	}
	return routes
}

// GenerateVehicles places n vehicles round-robin over routes, each near a
// random stop of its route. Vehicles whose route has no stops are skipped,
// leaving a gap in the ids.
func (g *Generator) GenerateVehicles(routes []*Route, n int, now time.Time) []*Vehicle {
	if len(routes) == 0 {
		return nil
	}
	vehicles := make([]*Vehicle, 0, max(n, 0))
	for i := 0; i < n; i++ {
		route := routes[i%len(routes)]
		if len(route.Stops) == 0 {
			continue
		}
		anchor := route.Stops[g.rng.IntN(len(route.Stops))]
		vehicles = append(vehicles, &Vehicle{
			ID: i + 1,
			Position: Coordinate{
				Lat: anchor.Position.Lat + g.offset(vehicleSpread),
				Lng: anchor.Position.Lng + g.offset(vehicleSpread),
			},
			Route:       route,
			Passengers:  5 + g.rng.IntN(40),
			Speed:       25 + g.rng.IntN(20),
			Direction:   "N",
			LastUpdated: now,
		})
	}
	return vehicles
}
