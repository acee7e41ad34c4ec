package metrics

import (
	"math"
	"math/rand/v2"
)

// Delta is a bounded random step.
type Delta struct {
	Min     float64
	Max     float64
	Integer bool
}

// Draw samples the delta. Integer deltas are uniform over [Min, Max]
// inclusive, float deltas uniform over [Min, Max).
func (d Delta) Draw(rng *rand.Rand) float64 {
	if d.Integer {
		lo, hi := int(d.Min), int(d.Max)
		return float64(lo + rng.IntN(hi-lo+1))
	}
	return d.Min + rng.Float64()*(d.Max-d.Min)
}

// DriftTable maps drifting metrics to their per-tick delta.
type DriftTable map[Name]Delta

// ActiveDrift applies while the system is fully initialised.
var ActiveDrift = DriftTable{
	ActiveVehicles:  {Min: -5, Max: 5, Integer: true},
	DailyPassengers: {Min: 0, Max: 200, Integer: true},
	CarbonSaved:     {Min: 0, Max: 5, Integer: true},
	AvgDelay:        {Min: -0.25, Max: 0.25},
}

// IdleDrift applies from page load onwards.
var IdleDrift = DriftTable{
	ActiveVehicles:  {Min: -3, Max: 3, Integer: true},
	DailyPassengers: {Min: 0, Max: 200, Integer: true},
	CarbonSaved:     {Min: 0, Max: 5, Integer: true},
	AvgDelay:        {Min: -0.25, Max: 0.25},
}

// Change records one drift step.
type Change struct {
	Name Name
	From float64
	To   float64
}

// Drift draws a delta for every metric in table, adds and clamps it, and
// returns the changes in display order.
func Drift(store *Store, table DriftTable, rng *rand.Rand) []Change {
	changes := make([]Change, 0, len(table))
	for _, def := range Definitions {
		delta, ok := table[def.Name]
		if !ok {
			continue
		}
		step := delta.Draw(rng)
		from, to, err := store.Update(def.Name, func(old float64) float64 { return old + step })
		if err != nil {
			continue
		}
		changes = append(changes, Change{Name: def.Name, From: from, To: to})
	}
	return changes
}

func isInf(v float64) bool {
	return math.IsInf(v, 1)
}
