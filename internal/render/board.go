package render

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	defaultMaxNotifications = 50
	defaultChartWindow      = 24
)

// BoardConfig configures a Board.
type BoardConfig struct {
	// Targets restricts text and chart writes to these element ids. Empty
	// accepts every id.
	Targets []string
	// MaxNotifications bounds the retained notification history (default 50).
	MaxNotifications int
	// ChartWindow bounds the number of points a rolling chart keeps (default 24).
	ChartWindow int
	// Now stamps markers and notifications. Defaults to time.Now.
	Now func() time.Time
}

// Marker is the materialised state of a map marker.
type Marker struct {
	ID        string    `json:"id"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Detail    string    `json:"detail"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RoutePath is a drawn route line.
type RoutePath struct {
	ID    string  `json:"id"`
	Color string  `json:"color"`
	Path  []Point `json:"path"`
}

// Notification is a surfaced toast.
type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	CreatedAt time.Time `json:"createdAt"`
}

// Board is an in-memory materialised view of everything written to the render
// and notification boundaries. It backs the HTTP API and doubles as the
// headless sink in tests.
type Board struct {
	mu               sync.RWMutex
	targets          map[string]bool
	maxNotifications int
	chartWindow      int
	now              func() time.Time

	texts         map[string]string
	markers       map[string]*Marker
	routes        map[string]RoutePath
	charts        map[string]Chart
	notifications []Notification
}

// NewBoard creates an empty Board.
func NewBoard(cfg BoardConfig) *Board {
	b := &Board{
		maxNotifications: cfg.MaxNotifications,
		chartWindow:      cfg.ChartWindow,
		now:              cfg.Now,
		texts:            make(map[string]string),
		markers:          make(map[string]*Marker),
		routes:           make(map[string]RoutePath),
		charts:           make(map[string]Chart),
	}
	if b.maxNotifications <= 0 {
		b.maxNotifications = defaultMaxNotifications
	}
	if b.chartWindow <= 0 {
		b.chartWindow = defaultChartWindow
	}
	if b.now == nil {
		b.now = time.Now
	}
	if len(cfg.Targets) > 0 {
		b.targets = make(map[string]bool, len(cfg.Targets))
		for _, id := range cfg.Targets {
			b.targets[id] = true
		}
	}
	return b
}

func (b *Board) hasTarget(id string) bool {
	return b.targets == nil || b.targets[id]
}

func (b *Board) SetText(elementID, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.hasTarget(elementID) {
		return
	}
	b.texts[elementID] = text
}

func (b *Board) SetMarkerPosition(markerID string, lat, lng float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m := b.marker(markerID)
	m.Lat, m.Lng = lat, lng
	m.UpdatedAt = b.now()
}

func (b *Board) SetMarkerDetail(markerID, html string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m := b.marker(markerID)
	m.Detail = html
	m.UpdatedAt = b.now()
}

func (b *Board) marker(id string) *Marker {
	m, ok := b.markers[id]
	if !ok {
		m = &Marker{ID: id}
		b.markers[id] = m
	}
	return m
}

func (b *Board) SetRoutePath(routeID, color string, path []Point) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[routeID] = RoutePath{
		ID:    routeID,
		Color: color,
		Path:  append([]Point(nil), path...),
	}
}

func (b *Board) RenderChart(containerID string, chart Chart) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.hasTarget(containerID) {
		return
	}
	b.charts[containerID] = chart.Clone()
	delete(b.texts, containerID)
}

// AppendChartPoint adds a point to the first series of a rendered chart,
// dropping the oldest once the window is full. Appends to a chart that was
// never rendered are ignored.
func (b *Board) AppendChartPoint(containerID, label string, value float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	chart, ok := b.charts[containerID]
	if !ok || len(chart.Series) == 0 {
		return
	}
	s := &chart.Series[0]
	s.Labels = append(s.Labels, label)
	s.Values = append(s.Values, value)
	if over := len(s.Labels) - b.chartWindow; over > 0 {
		s.Labels = s.Labels[over:]
	}
	if over := len(s.Values) - b.chartWindow; over > 0 {
		s.Values = s.Values[over:]
	}
	b.charts[containerID] = chart
}

func (b *Board) Notify(message string, severity Severity) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notifications = append(b.notifications, Notification{
		ID:        uuid.NewString(),
		Message:   message,
		Severity:  severity,
		CreatedAt: b.now(),
	})
	if over := len(b.notifications) - b.maxNotifications; over > 0 {
		b.notifications = append([]Notification(nil), b.notifications[over:]...)
	}
}

// Text returns the last text written to elementID.
func (b *Board) Text(elementID string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	t, ok := b.texts[elementID]
	return t, ok
}

// Texts returns a copy of every text target.
func (b *Board) Texts() map[string]string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]string, len(b.texts))
	for k, v := range b.texts {
		out[k] = v
	}
	return out
}

// Marker returns a copy of the marker with the given id.
func (b *Board) Marker(markerID string) (Marker, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	m, ok := b.markers[markerID]
	if !ok {
		return Marker{}, false
	}
	return *m, true
}

// Markers returns all markers sorted by id.
func (b *Board) Markers() []Marker {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Marker, 0, len(b.markers))
	for _, m := range b.markers {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Routes returns all drawn route paths sorted by id.
func (b *Board) Routes() []RoutePath {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]RoutePath, 0, len(b.routes))
	for _, r := range b.routes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Chart returns a copy of the chart rendered into containerID.
func (b *Board) Chart(containerID string) (Chart, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	c, ok := b.charts[containerID]
	if !ok {
		return Chart{}, false
	}
	return c.Clone(), true
}

// Charts returns copies of every rendered chart keyed by container id.
func (b *Board) Charts() map[string]Chart {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]Chart, len(b.charts))
	for k, c := range b.charts {
		out[k] = c.Clone()
	}
	return out
}

// Notifications returns the retained notifications, oldest first.
func (b *Board) Notifications() []Notification {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Notification(nil), b.notifications...)
}

// CountNotifications counts retained notifications with the given severity.
func (b *Board) CountNotifications(severity Severity) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, note := range b.notifications {
		if note.Severity == severity {
			n++
		}
	}
	return n
}

// Replay returns the current state as a sequence of operations, used to bring
// a freshly connected stream client up to date.
func (b *Board) Replay() []Op {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ops := make([]Op, 0, len(b.texts)+2*len(b.markers)+len(b.routes)+len(b.charts))

	textIDs := make([]string, 0, len(b.texts))
	for id := range b.texts {
		textIDs = append(textIDs, id)
	}
	sort.Strings(textIDs)
	for _, id := range textIDs {
		ops = append(ops, textOp(id, b.texts[id]))
	}

	routeIDs := make([]string, 0, len(b.routes))
	for id := range b.routes {
		routeIDs = append(routeIDs, id)
	}
	sort.Strings(routeIDs)
	for _, id := range routeIDs {
		r := b.routes[id]
		ops = append(ops, routePathOp(r.ID, r.Color, r.Path))
	}

	markerIDs := make([]string, 0, len(b.markers))
	for id := range b.markers {
		markerIDs = append(markerIDs, id)
	}
	sort.Strings(markerIDs)
	for _, id := range markerIDs {
		m := b.markers[id]
		ops = append(ops, markerPositionOp(m.ID, m.Lat, m.Lng), markerDetailOp(m.ID, m.Detail))
	}

	chartIDs := make([]string, 0, len(b.charts))
	for id := range b.charts {
		chartIDs = append(chartIDs, id)
	}
	sort.Strings(chartIDs)
	for _, id := range chartIDs {
		ops = append(ops, chartOp(id, b.charts[id].Clone()))
	}
	return ops
}
