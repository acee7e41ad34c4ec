package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"text/template"

	"pulse.transitlab.org/internal/logging"
	"pulse.transitlab.org/internal/metrics"
)

// ErrNoReport is returned when no report has been exported yet.
var ErrNoReport = errors.New("no report has been generated")

var textTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"inc":    func(i int) int { return i + 1 },
	"metric": metricDisplay,
}).Parse(`# Advanced Transport AI - Analytics Report
Generated: {{.GeneratedAt.Format "2006-01-02 15:04:05 MST"}}

## System Status: {{.SystemStatus}}

## Key Metrics
- Active Vehicles: {{metric .Metrics "activeVehicles"}}
- Bus Stops: {{metric .Metrics "busStops"}}
- Daily Passengers: {{metric .Metrics "dailyPassengers"}}
- CO₂ Saved: {{metric .Metrics "carbonSaved"}} kg
- Average Delay: {{metric .Metrics "avgDelay"}} minutes
- User Points: {{metric .Metrics "userPoints"}}

## Performance Indicators
- Route Efficiency: {{.Performance.RouteEfficiency}}
- Predictive Accuracy: {{.Performance.PredictiveAccuracy}}
- Customer Satisfaction: {{.Performance.CustomerSatisfaction}}
- System Uptime: {{.Performance.SystemUptime}}

## Recommendations
{{range $i, $r := .Recommendations}}{{inc $i}}. {{$r}}
{{end}}
## Key Achievements
{{range $i, $a := .Achievements}}{{inc $i}}. {{$a}}
{{end}}
---
Report generated by Advanced Transport AI System
`))

func metricDisplay(values []metrics.Value, name string) string {
	for _, v := range values {
		if string(v.Name) == name {
			return v.Display
		}
	}
	return "n/a"
}

// WriteText renders r as plain text.
func WriteText(w io.Writer, r Report) error {
	if err := textTemplate.Execute(w, r); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// TextExporter keeps the most recent report rendered as plain text, ready to
// be served as a download.
type TextExporter struct {
	logger *slog.Logger

	mu     sync.RWMutex
	name   string
	body   []byte
	report Report
	count  int
}

func NewTextExporter(logger *slog.Logger) *TextExporter {
	return &TextExporter{logger: logging.ForComponent(logger, "report")}
}

func (e *TextExporter) ExportReport(r Report) error {
	var buf bytes.Buffer
	if err := WriteText(&buf, r); err != nil {
		return err
	}

	e.mu.Lock()
	e.name = FileName(r.GeneratedAt)
	e.body = buf.Bytes()
	e.report = r
	e.count++
	e.mu.Unlock()

	logging.LogOperation(e.logger, "report_exported",
		slog.String("file", FileName(r.GeneratedAt)),
		slog.Int("bytes", buf.Len()))
	return nil
}

// Latest returns the file name and body of the last exported report.
func (e *TextExporter) Latest() (string, []byte, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.count == 0 {
		return "", nil, ErrNoReport
	}
	return e.name, append([]byte(nil), e.body...), nil
}

// LatestReport returns the structured form of the last exported report.
func (e *TextExporter) LatestReport() (Report, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.report, e.count > 0
}

// Count reports how many reports have been exported.
func (e *TextExporter) Count() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.count
}
