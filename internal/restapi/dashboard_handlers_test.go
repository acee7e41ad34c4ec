package restapi

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulse.transitlab.org/internal/charts"
	"pulse.transitlab.org/internal/render"
	"pulse.transitlab.org/internal/report"
)

func TestCurrentTimeHandler(t *testing.T) {
	_, resp, model := serveAndRetrieveEndpoint(t, "/api/where/current-time.json?key=TEST")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", model.Text)
	assert.Equal(t, 2, model.Version)
	entry := entryOf(t, model)
	assert.InDelta(t, float64(time.Now().UnixMilli()), entry["time"], 5000)
}

func TestEndpointsRequireValidApiKey(t *testing.T) {
	api := createTestApi(t)
	server := serveApi(t, api)

	endpoints := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/where/current-time.json"},
		{http.MethodGet, "/api/dashboard/status.json"},
		{http.MethodGet, "/api/dashboard/metrics.json"},
		{http.MethodGet, "/api/dashboard/network.json"},
		{http.MethodGet, "/api/dashboard/vehicles/1"},
		{http.MethodGet, "/api/dashboard/charts.json"},
		{http.MethodGet, "/api/dashboard/notifications.json"},
		{http.MethodGet, "/api/dashboard/realtime.json"},
		{http.MethodGet, "/api/dashboard/report.txt"},
		{http.MethodGet, "/api/dashboard/stream"},
		{http.MethodPost, "/api/dashboard/initialize"},
		{http.MethodPost, "/api/dashboard/demo"},
		{http.MethodPost, "/api/dashboard/report"},
		{http.MethodPost, "/api/dashboard/features/voice"},
		{http.MethodPost, "/api/dashboard/map-features/heatmap"},
	}
	for _, e := range endpoints {
		t.Run(e.method+" "+e.path, func(t *testing.T) {
			resp, model := doRequest(t, server, e.method, e.path+"?key=INVALID")
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, "permission denied", model.Text)
			assert.Equal(t, 1, model.Version)
		})
	}
	assert.Equal(t, "idle", api.Dashboard.State().String(), "rejected actions never reach the dashboard")
}

func TestUnknownRoute(t *testing.T) {
	_, resp, model := serveAndRetrieveEndpoint(t, "/api/dashboard/nothing.json?key=TEST")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "resource not found", model.Text)
}

func TestStatusHandler(t *testing.T) {
	_, resp, model := serveAndRetrieveEndpoint(t, "/api/dashboard/status.json?key=TEST")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	entry := entryOf(t, model)
	assert.Equal(t, "idle", entry["state"])
	assert.Equal(t, true, entry["started"])
	assert.Equal(t, true, entry["charts"])
	assert.NotContains(t, entry, "initializedAt")
}

func TestMetricsHandler(t *testing.T) {
	_, resp, model := serveAndRetrieveEndpoint(t, "/api/dashboard/metrics.json?key=TEST")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := listOf(t, model)
	require.Len(t, list, 6)
	first := list[0].(map[string]interface{})
	assert.Equal(t, "activeVehicles", first["name"])
	assert.Equal(t, "156", first["display"])
}

func TestRealtimeHandler(t *testing.T) {
	_, resp, model := serveAndRetrieveEndpoint(t, "/api/dashboard/realtime.json?key=TEST")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	entry := entryOf(t, model)
	fleet := entry["fleet"].(map[string]interface{})
	assert.Equal(t, 8.0, fleet["vehicles"])
	assert.Len(t, entry["metrics"], 6)
}

func TestChartsHandler(t *testing.T) {
	_, resp, model := serveAndRetrieveEndpoint(t, "/api/dashboard/charts.json?key=TEST")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	entry := entryOf(t, model)
	rendered := entry["charts"].(map[string]interface{})
	assert.Contains(t, rendered, charts.AnalyticsChart)
	assert.Contains(t, rendered, charts.PassengerChart)
	assert.Empty(t, entry["placeholders"])
}

func TestNotificationsHandler(t *testing.T) {
	api := createTestApi(t)
	server := serveApi(t, api)
	api.Board.Notify("first", render.SeverityInfo)
	api.Board.Notify("second", render.SeverityWarning)

	resp, model := doRequest(t, server, http.MethodGet, "/api/dashboard/notifications.json?key=TEST")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, listOf(t, model), 2)

	resp, model = doRequest(t, server, http.MethodGet, "/api/dashboard/notifications.json?key=TEST&severity=warning")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := listOf(t, model)
	require.Len(t, list, 1)
	assert.Equal(t, "second", list[0].(map[string]interface{})["message"])

	resp, _ = doRequest(t, server, http.MethodGet, "/api/dashboard/notifications.json?key=TEST&severity=loud")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReportDownloadHandler(t *testing.T) {
	api := createTestApi(t)
	server := serveApi(t, api)

	resp, _ := doRequest(t, server, http.MethodGet, "/api/dashboard/report.txt?key=TEST")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	at := time.Date(2024, 6, 9, 10, 0, 0, 0, time.UTC)
	require.NoError(t, api.Reports.ExportReport(report.Build(at, api.Dashboard.Store().Snapshot())))

	resp, _ = doRequest(t, server, http.MethodGet, "/api/dashboard/report.txt?key=TEST")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="transport-analytics-report-2024-06-09.txt"`,
		resp.Header.Get("Content-Disposition"))
}
