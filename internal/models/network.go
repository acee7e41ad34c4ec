package models

import (
	"github.com/twpayne/go-polyline"

	"pulse.transitlab.org/internal/network"
)

// RouteModel is a route with its path as an encoded polyline.
type RouteModel struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Color   string `json:"color"`
	StopIDs []int  `json:"stopIds"`
	Points  string `json:"points"`
	Length  int    `json:"length"`
}

// NetworkModel is the full map payload.
type NetworkModel struct {
	Stops    []network.Stop        `json:"stops"`
	Routes   []RouteModel          `json:"routes"`
	Vehicles []VehicleModel        `json:"vehicles"`
	Fleet    network.FleetAverages `json:"fleet"`
}

// EncodePath encodes coordinates with the polyline algorithm.
func EncodePath(path []network.Coordinate) string {
	coords := make([][]float64, len(path))
	for i, c := range path {
		coords[i] = []float64{c.Lat, c.Lng}
	}
	return string(polyline.EncodeCoords(coords))
}

// DecodePath reverses EncodePath.
func DecodePath(points string) ([]network.Coordinate, error) {
	coords, _, err := polyline.DecodeCoords([]byte(points))
	if err != nil {
		return nil, err
	}
	out := make([]network.Coordinate, len(coords))
	for i, c := range coords {
		out[i] = network.Coordinate{Lat: c[0], Lng: c[1]}
	}
	return out, nil
}

// NewRouteModel converts a resolved route.
func NewRouteModel(r network.RouteView) RouteModel {
	points := EncodePath(r.Path)
	return RouteModel{
		ID:      r.ID,
		Name:    r.Name,
		Color:   r.Color,
		StopIDs: r.StopIDs,
		Points:  points,
		Length:  len(points),
	}
}

// NewNetworkModel snapshots the network.
func NewNetworkModel(net *network.Network) NetworkModel {
	m := NetworkModel{
		Stops:    net.Stops(),
		Routes:   []RouteModel{},
		Vehicles: []VehicleModel{},
		Fleet:    net.Averages(),
	}
	for _, r := range net.Routes() {
		m.Routes = append(m.Routes, NewRouteModel(r))
	}
	for _, v := range net.Vehicles() {
		m.Vehicles = append(m.Vehicles, NewVehicleModel(v))
	}
	return m
}
