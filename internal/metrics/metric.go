// Package metrics holds the dashboard's headline metrics, their display rules
// and valid ranges, and the periodic drift that keeps them moving.
package metrics

import (
	"fmt"
	"math"
)

// Name identifies a metric. It doubles as the display element id.
type Name string

const (
	ActiveVehicles  Name = "activeVehicles"
	BusStops        Name = "busStops"
	DailyPassengers Name = "dailyPassengers"
	CarbonSaved     Name = "carbonSaved"
	AvgDelay        Name = "avgDelay"
	UserPoints      Name = "userPoints"
)

// Format is a display rule.
type Format int

const (
	FormatInteger Format = iota
	FormatOneDecimal
	FormatThousands
)

func (f Format) String() string {
	switch f {
	case FormatInteger:
		return "integer"
	case FormatOneDecimal:
		return "one-decimal"
	case FormatThousands:
		return "thousands"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Apply renders v under the rule.
func (f Format) Apply(v float64) string {
	switch f {
	case FormatOneDecimal:
		return fmt.Sprintf("%.1f", v)
	case FormatThousands:
		if v > 1000 {
			return fmt.Sprintf("%.1fK", v/1000)
		}
		return floorString(v)
	default:
		return floorString(v)
	}
}

func floorString(v float64) string {
	return fmt.Sprintf("%d", int64(math.Floor(v)))
}

// Range is a closed interval. Max may be +Inf.
type Range struct {
	Min float64
	Max float64
}

// Clamp forces v into the range.
func (r Range) Clamp(v float64) float64 {
	return math.Max(r.Min, math.Min(v, r.Max))
}

// Contains reports whether v lies inside the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Definition describes one metric.
type Definition struct {
	Name    Name
	Label   string
	Default float64
	Format  Format
	Range   Range
}

var unbounded = Range{Min: 0, Max: math.Inf(1)}

// Definitions lists every metric in display order.
var Definitions = []Definition{
	{Name: ActiveVehicles, Label: "Active Vehicles", Default: 156, Format: FormatInteger, Range: Range{Min: 120, Max: 200}},
	{Name: BusStops, Label: "Bus Stops", Default: 342, Format: FormatInteger, Range: unbounded},
	{Name: DailyPassengers, Label: "Daily Passengers", Default: 12847, Format: FormatThousands, Range: Range{Min: 10000, Max: math.Inf(1)}},
	{Name: CarbonSaved, Label: "Carbon Saved (kg)", Default: 2341, Format: FormatInteger, Range: unbounded},
	{Name: AvgDelay, Label: "Avg Delay (min)", Default: 3.2, Format: FormatOneDecimal, Range: Range{Min: 1.0, Max: 8.0}},
	{Name: UserPoints, Label: "User Points", Default: 8765, Format: FormatInteger, Range: unbounded},
}

// Lookup returns the definition of name.
func Lookup(name Name) (Definition, bool) {
	for _, d := range Definitions {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}
