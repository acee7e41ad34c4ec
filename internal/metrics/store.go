package metrics

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownMetric is returned for names outside Definitions.
var ErrUnknownMetric = errors.New("unknown metric")

// Value is a point-in-time reading of one metric.
type Value struct {
	Name    Name    `json:"name"`
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Display string  `json:"display"`
	Format  string  `json:"format"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max,omitempty"`
}

// Store is the current value of every metric. Values are clamped into their
// valid range on every write.
type Store struct {
	mu     sync.RWMutex
	values map[Name]float64
}

// NewStore seeds a store with the defaults, overridden by initial.
func NewStore(initial map[Name]float64) (*Store, error) {
	s := &Store{values: make(map[Name]float64, len(Definitions))}
	for _, d := range Definitions {
		s.values[d.Name] = d.Default
	}
	for name, v := range initial {
		if _, err := s.Set(name, v); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Get returns the current value of name.
func (s *Store) Get(name Name) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[name]
	return v, ok
}

// Set clamps v into the metric's range, stores it and returns the stored value.
func (s *Store) Set(name Name, v float64) (float64, error) {
	def, ok := Lookup(name)
	if !ok {
		return 0, fmt.Errorf("set %q: %w", name, ErrUnknownMetric)
	}
	v = def.Range.Clamp(v)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = v
	return v, nil
}

// Update applies fn to the current value under the write lock and stores the
// clamped result.
func (s *Store) Update(name Name, fn func(old float64) float64) (old, updated float64, err error) {
	def, ok := Lookup(name)
	if !ok {
		return 0, 0, fmt.Errorf("update %q: %w", name, ErrUnknownMetric)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	old = s.values[name]
	updated = def.Range.Clamp(fn(old))
	s.values[name] = updated
	return old, updated, nil
}

// Display returns the formatted current value of name.
func (s *Store) Display(name Name) (string, bool) {
	def, ok := Lookup(name)
	if !ok {
		return "", false
	}
	v, _ := s.Get(name)
	return def.Format.Apply(v), true
}

// ForEach visits every metric in display order.
func (s *Store) ForEach(fn func(def Definition, value float64)) {
	s.mu.RLock()
	values := make([]float64, len(Definitions))
	for i, d := range Definitions {
		values[i] = s.values[d.Name]
	}
	s.mu.RUnlock()

	for i, d := range Definitions {
		fn(d, values[i])
	}
}

// Snapshot returns every metric in display order.
func (s *Store) Snapshot() []Value {
	out := make([]Value, 0, len(Definitions))
	s.ForEach(func(d Definition, v float64) {
		val := Value{
			Name:    d.Name,
			Label:   d.Label,
			Value:   v,
			Display: d.Format.Apply(v),
			Format:  d.Format.String(),
			Min:     d.Range.Min,
		}
		if !isInf(d.Range.Max) {
			val.Max = d.Range.Max
		}
		out = append(out, val)
	})
	return out
}
