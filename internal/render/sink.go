// Package render defines the write-only boundaries the simulation engine
// publishes to, plus the implementations the service ships: an in-memory Board,
// a websocket Hub and a Fanout combining them.
package render

import "fmt"

// Severity tags a notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// ParseSeverity validates a severity name.
func ParseSeverity(s string) (Severity, error) {
	switch sev := Severity(s); sev {
	case SeverityInfo, SeveritySuccess, SeverityWarning, SeverityError:
		return sev, nil
	default:
		return "", fmt.Errorf("unknown severity %q", s)
	}
}

// Point is a map coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Sink receives text, marker and route writes. Writes to unknown targets are
// silently ignored by implementations.
type Sink interface {
	SetText(elementID, text string)
	SetMarkerPosition(markerID string, lat, lng float64)
	SetMarkerDetail(markerID, html string)
	SetRoutePath(routeID, color string, path []Point)
}

// ChartSink is the optional charting capability.
type ChartSink interface {
	RenderChart(containerID string, chart Chart)
	AppendChartPoint(containerID, label string, value float64)
}

// Notifier surfaces a toast. The implementation owns dismissal.
type Notifier interface {
	Notify(message string, severity Severity)
}

// Chart is a dataset plus layout handed to a chart widget.
type Chart struct {
	Title   string   `json:"title"`
	XAxis   string   `json:"xAxis,omitempty"`
	YAxis   string   `json:"yAxis,omitempty"`
	BarMode string   `json:"barMode,omitempty"`
	Series  []Series `json:"series"`
}

// Series is one dataset of a chart. Categorical series use Labels/Values,
// bubble series use Points.
type Series struct {
	Name   string        `json:"name"`
	Type   string        `json:"type"`
	Color  string        `json:"color,omitempty"`
	Labels []string      `json:"labels,omitempty"`
	Values []float64     `json:"values,omitempty"`
	Text   []string      `json:"text,omitempty"`
	Points []BubblePoint `json:"points,omitempty"`
}

// BubblePoint is a sized scatter point.
type BubblePoint struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	R     float64 `json:"r"`
	Value float64 `json:"value"`
	Label string  `json:"label,omitempty"`
}

// Clone returns a deep copy so sinks can keep charts without aliasing.
func (c Chart) Clone() Chart {
	out := c
	out.Series = make([]Series, len(c.Series))
	for i, s := range c.Series {
		s.Labels = append([]string(nil), s.Labels...)
		s.Values = append([]float64(nil), s.Values...)
		s.Text = append([]string(nil), s.Text...)
		s.Points = append([]BubblePoint(nil), s.Points...)
		out.Series[i] = s
	}
	return out
}

// Placeholder is the static card shown when charting is unavailable.
type Placeholder struct {
	Icon        string
	Title       string
	Description string
}

func (p Placeholder) String() string {
	return p.Title + " - " + p.Description
}
