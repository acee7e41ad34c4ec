package utils

import (
	"math"
)

const earthRadiusMeters = 6371000.0

// BearingBetweenPoints returns the initial bearing in degrees [0, 360) from
// (lat1, lon1) to (lat2, lon2).
func BearingBetweenPoints(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	y := math.Sin(deltaLon) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(deltaLon)

	return math.Mod(math.Atan2(y, x)*180/math.Pi+360, 360)
}

var compassPoints = [...]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// BearingToCompass maps a bearing onto an 8-point compass label.
func BearingToCompass(bearing float64) string {
	bearing = math.Mod(bearing, 360)
	if bearing < 0 {
		bearing += 360
	}
	return compassPoints[int((bearing+22.5)/45.0)%len(compassPoints)]
}

// DistanceMeters is the haversine great-circle distance between two points.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * earthRadiusMeters * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Heading returns the bearing of a move and whether the move was long enough
// to define one. Moves shorter than a centimetre keep no heading.
func Heading(lat1, lon1, lat2, lon2 float64) (float64, bool) {
	if DistanceMeters(lat1, lon1, lat2, lon2) < 0.01 {
		return 0, false
	}
	return BearingBetweenPoints(lat1, lon1, lat2, lon2), true
}
