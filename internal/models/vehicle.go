package models

import "pulse.transitlab.org/internal/network"

// VehicleModel is a vehicle as served by the API.
type VehicleModel struct {
	network.VehicleState
	Occupancy float64 `json:"occupancy"`
	Detail    string  `json:"detail"`
}

func NewVehicleModel(st network.VehicleState) VehicleModel {
	m := VehicleModel{
		VehicleState: st,
		Detail:       network.VehicleDetail(st),
	}
	if st.Capacity > 0 {
		m.Occupancy = float64(st.Passengers) / float64(st.Capacity)
	}
	return m
}
