// Package charts produces the synthetic datasets behind the dashboard charts.
package charts

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"pulse.transitlab.org/internal/render"
)

// Chart container ids.
const (
	AnalyticsChart = "analyticsChart"
	RouteChart     = "routeChart"
	PassengerChart = "passengerChart"
)

// Containers lists every chart container in page order.
var Containers = []string{AnalyticsChart, RouteChart, PassengerChart}

// RollingWindow is the number of points the rolling passenger chart keeps.
const RollingWindow = 24

// Placeholders are shown in place of charts when no chart capability exists.
var Placeholders = map[string]render.Placeholder{
	AnalyticsChart: {Icon: "fa-chart-line", Title: "Real-time Analytics", Description: "Live vehicle and passenger data"},
	RouteChart:     {Icon: "fa-route", Title: "Route Optimization", Description: "AI-powered route improvements"},
	PassengerChart: {Icon: "fa-users", Title: "Passenger Flow", Description: "Station-by-station analysis"},
}

var (
	optimisedRoutes    = []string{"Route A", "Route B", "Route C", "Route D", "Route E"}
	beforeOptimisation = []float64{45, 38, 52, 41, 47}
	afterOptimisation  = []float64{32, 28, 35, 29, 33}

	flowStations = []string{"Accra Mall", "University", "Hospital", "Airport", "Downtown"}
	inbound      = []float64{1200, 800, 600, 400, 1500}
	outbound     = []float64{800, 1100, 500, 350, 1200}

	heatmapSlots  = []string{"06:00", "08:00", "10:00", "12:00", "14:00", "16:00", "18:00", "20:00"}
	heatmapRoutes = []string{"Route 1", "Route 2", "Route 3", "Route 4", "Route 5"}
)

// Generator draws chart data from an injected random source.
type Generator struct {
	rng *rand.Rand
}

func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// BasePassengers is the passenger flow baseline for an hour of the day.
func BasePassengers(hour int) float64 {
	switch {
	case hour >= 22 || hour <= 5:
		return 20
	case hour >= 7 && hour <= 9:
		return 150
	case hour >= 17 && hour <= 19:
		return 140
	default:
		return 50
	}
}

func isRushHour(hour int) bool {
	return (hour >= 7 && hour <= 9) || (hour >= 17 && hour <= 19)
}

// PassengerFlow draws a passenger flow value for the hour: base + [0, 30).
func (g *Generator) PassengerFlow(hour int) float64 {
	return BasePassengers(hour) + g.rng.Float64()*30
}

// RollingPoint returns the next rolling chart point, labelled HH:MM.
func (g *Generator) RollingPoint(now time.Time) (string, float64) {
	return now.Format("15:04"), g.PassengerFlow(now.Hour())
}

// RollingPassengerFlow covers the 24 hours ending at now's hour.
func (g *Generator) RollingPassengerFlow(now time.Time) render.Chart {
	labels := make([]string, RollingWindow)
	values := make([]float64, RollingWindow)
	for i := 0; i < RollingWindow; i++ {
		hour := ((now.Hour()-(RollingWindow-1)+i)%24 + 24) % 24
		labels[i] = fmt.Sprintf("%02d:00", hour)
		values[i] = g.PassengerFlow(hour)
	}
	return render.Chart{
		Title:  "Passenger Flow",
		XAxis:  "Time",
		YAxis:  "Passengers",
		Series: []render.Series{{Name: "Passenger Flow", Type: "line", Color: "#4facfe", Labels: labels, Values: values}},
	}
}

// HourlyVehicleActivity is 24 hourly points of 80 + 40 at rush hour + [0, 20),
// floored.
func (g *Generator) HourlyVehicleActivity() render.Chart {
	labels := make([]string, 24)
	values := make([]float64, 24)
	for h := 0; h < 24; h++ {
		labels[h] = fmt.Sprintf("%02d:00", h)
		v := 80 + g.rng.Float64()*20
		if isRushHour(h) {
			v += 40
		}
		values[h] = math.Floor(v)
	}
	return render.Chart{
		Title:  "Real-time Vehicle Activity",
		XAxis:  "Time of Day",
		YAxis:  "Active Vehicles",
		Series: []render.Series{{Name: "Active Vehicles", Type: "line", Color: "#4facfe", Labels: labels, Values: values}},
	}
}

// Improvement returns the rounded percentage reduction from before to after.
func Improvement(before, after []float64) []float64 {
	out := make([]float64, min(len(before), len(after)))
	for i := range out {
		if before[i] == 0 {
			continue
		}
		out[i] = math.Round((before[i] - after[i]) / before[i] * 100)
	}
	return out
}

// RouteOptimisation compares travel times before and after optimisation.
func RouteOptimisation() render.Chart {
	improvement := Improvement(beforeOptimisation, afterOptimisation)
	beforeText := make([]string, len(beforeOptimisation))
	afterText := make([]string, len(afterOptimisation))
	for i := range beforeOptimisation {
		beforeText[i] = fmt.Sprintf("%g min", beforeOptimisation[i])
		afterText[i] = fmt.Sprintf("%g min (-%g%%)", afterOptimisation[i], improvement[i])
	}
	return render.Chart{
		Title:   "Route Optimization Results",
		XAxis:   "Routes",
		YAxis:   "Travel Time (minutes)",
		BarMode: "group",
		Series: []render.Series{
			{Name: "Before Optimization", Type: "bar", Color: "#ff6b6b", Labels: clone(optimisedRoutes), Values: clone(beforeOptimisation), Text: beforeText},
			{Name: "After Optimization", Type: "bar", Color: "#4ecdc4", Labels: clone(optimisedRoutes), Values: clone(afterOptimisation), Text: afterText},
		},
	}
}

// StationFlow shows inbound and outbound passengers per station.
func StationFlow() render.Chart {
	text := func(vs []float64) []string {
		out := make([]string, len(vs))
		for i, v := range vs {
			out[i] = fmt.Sprintf("%g", v)
		}
		return out
	}
	return render.Chart{
		Title:   "Passenger Flow by Station",
		XAxis:   "Stations",
		YAxis:   "Number of Passengers",
		BarMode: "group",
		Series: []render.Series{
			{Name: "Inbound Passengers", Type: "bar", Color: "#667eea", Labels: clone(flowStations), Values: clone(inbound), Text: text(inbound)},
			{Name: "Outbound Passengers", Type: "bar", Color: "#764ba2", Labels: clone(flowStations), Values: clone(outbound), Text: text(outbound)},
		},
	}
}

// HeatmapBase is the heatmap baseline for a time slot index.
func HeatmapBase(slot int) float64 {
	switch slot {
	case 1, 6:
		return 1200
	case 3:
		return 800
	default:
		return 400
	}
}

// PassengerHeatmap is a bubble grid of routes by time slot, sized by
// sqrt(passengers)/10.
func (g *Generator) PassengerHeatmap() render.Chart {
	points := make([]render.BubblePoint, 0, len(heatmapSlots)*len(heatmapRoutes))
	for slot, label := range heatmapSlots {
		for route, name := range heatmapRoutes {
			v := HeatmapBase(slot) + g.rng.Float64()*300
			points = append(points, render.BubblePoint{
				X:     float64(route),
				Y:     float64(slot),
				R:     math.Sqrt(v) / 10,
				Value: v,
				Label: fmt.Sprintf("%s at %s: %d passengers", name, label, int(math.Round(v))),
			})
		}
	}
	return render.Chart{
		Title:  "Passenger Density",
		XAxis:  "Route",
		YAxis:  "Time Slot",
		Series: []render.Series{{Name: "Passenger Flow", Type: "bubble", Color: "#4facfe", Points: points}},
	}
}

func clone[T any](s []T) []T {
	return append([]T(nil), s...)
}
