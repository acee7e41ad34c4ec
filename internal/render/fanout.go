package render

// Fanout forwards every write to each target that supports it. Targets may
// implement any combination of Sink, ChartSink and Notifier.
type Fanout struct {
	sinks     []Sink
	charts    []ChartSink
	notifiers []Notifier
}

// NewFanout sorts targets by capability. Targets implementing none of the
// boundaries are ignored.
func NewFanout(targets ...any) *Fanout {
	f := &Fanout{}
	for _, t := range targets {
		if s, ok := t.(Sink); ok {
			f.sinks = append(f.sinks, s)
		}
		if c, ok := t.(ChartSink); ok {
			f.charts = append(f.charts, c)
		}
		if n, ok := t.(Notifier); ok {
			f.notifiers = append(f.notifiers, n)
		}
	}
	return f
}

// HasCharts reports whether at least one target can render charts.
func (f *Fanout) HasCharts() bool {
	return len(f.charts) > 0
}

func (f *Fanout) SetText(elementID, text string) {
	for _, s := range f.sinks {
		s.SetText(elementID, text)
	}
}

func (f *Fanout) SetMarkerPosition(markerID string, lat, lng float64) {
	for _, s := range f.sinks {
		s.SetMarkerPosition(markerID, lat, lng)
	}
}

func (f *Fanout) SetMarkerDetail(markerID, html string) {
	for _, s := range f.sinks {
		s.SetMarkerDetail(markerID, html)
	}
}

func (f *Fanout) SetRoutePath(routeID, color string, path []Point) {
	for _, s := range f.sinks {
		s.SetRoutePath(routeID, color, path)
	}
}

func (f *Fanout) RenderChart(containerID string, chart Chart) {
	for _, c := range f.charts {
		c.RenderChart(containerID, chart)
	}
}

func (f *Fanout) AppendChartPoint(containerID, label string, value float64) {
	for _, c := range f.charts {
		c.AppendChartPoint(containerID, label, value)
	}
}

func (f *Fanout) Notify(message string, severity Severity) {
	for _, n := range f.notifiers {
		n.Notify(message, severity)
	}
}
