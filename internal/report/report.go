// Package report assembles the analytics report and renders it as plain text.
package report

import (
	"time"

	"pulse.transitlab.org/internal/metrics"
)

// StatusFullyOperational is the status recorded in generated reports.
const StatusFullyOperational = "Fully Operational"

// Performance holds the headline performance indicators.
type Performance struct {
	RouteEfficiency      string `json:"routeEfficiency"`
	PredictiveAccuracy   string `json:"predictiveAccuracy"`
	CustomerSatisfaction string `json:"customerSatisfaction"`
	SystemUptime         string `json:"systemUptime"`
}

// Report is the structured analytics report.
type Report struct {
	GeneratedAt     time.Time       `json:"timestamp"`
	SystemStatus    string          `json:"systemStatus"`
	Metrics         []metrics.Value `json:"metrics"`
	Performance     Performance     `json:"performance"`
	Recommendations []string        `json:"recommendations"`
	Achievements    []string        `json:"achievements"`
}

// Exporter delivers a finished report.
type Exporter interface {
	ExportReport(r Report) error
}

var defaultPerformance = Performance{
	RouteEfficiency:      "94.2%",
	PredictiveAccuracy:   "91.7%",
	CustomerSatisfaction: "88.5%",
	SystemUptime:         "99.8%",
}

var recommendations = []string{
	"Deploy 3 additional vehicles during peak hours (7-9 AM, 5-7 PM)",
	"Implement dynamic pricing to reduce congestion by 15%",
	"Add 2 new charging stations for electric fleet expansion",
	"Integrate weather data for improved arrival predictions",
	"Launch mobile app for enhanced passenger experience",
}

var achievements = []string{
	"23% reduction in average travel time",
	"2,341 kg CO2 emissions saved this month",
	"94% on-time performance improvement",
	"12,847 passengers served daily",
	"8,765 reward points distributed to users",
}

// Build assembles a report from a metric snapshot.
func Build(now time.Time, snapshot []metrics.Value) Report {
	return Report{
		GeneratedAt:     now.UTC(),
		SystemStatus:    StatusFullyOperational,
		Metrics:         append([]metrics.Value(nil), snapshot...),
		Performance:     defaultPerformance,
		Recommendations: append([]string(nil), recommendations...),
		Achievements:    append([]string(nil), achievements...),
	}
}

// FileName is the download name of the report generated at t.
func FileName(t time.Time) string {
	return "transport-analytics-report-" + t.UTC().Format("2006-01-02") + ".txt"
}
