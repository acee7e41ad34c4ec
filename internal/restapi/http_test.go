package restapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pulse.transitlab.org/internal/app"
	"pulse.transitlab.org/internal/appconf"
	"pulse.transitlab.org/internal/dashboard"
	"pulse.transitlab.org/internal/logging"
	"pulse.transitlab.org/internal/models"
	"pulse.transitlab.org/internal/render"
	"pulse.transitlab.org/internal/report"
	"pulse.transitlab.org/internal/schedule"
)

type testOption func(*appconf.Config)

func withRateLimit(n int) testOption {
	return func(c *appconf.Config) { c.RateLimit = n }
}

// createTestApi builds a RestAPI over a started dashboard running on a real
// event loop.
func createTestApi(t *testing.T, opts ...testOption) *RestAPI {
	t.Helper()

	cfg := appconf.Config{
		Env:       appconf.EnvFlagToEnvironment("test"),
		ApiKeys:   []string{"TEST"},
		RateLimit: 100,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	loop := schedule.NewLoop(nil)
	t.Cleanup(loop.Shutdown)

	board := render.NewBoard(render.BoardConfig{})
	hub := render.NewHub(nil, board.Replay)
	t.Cleanup(hub.Close)
	out := render.NewFanout(board, hub)
	reports := report.NewTextExporter(nil)

	d, err := dashboard.New(dashboard.Options{
		Scheduler: loop,
		Sink:      out,
		Charts:    out,
		Notifier:  out,
		Exporter:  reports,
		Rand:      rand.New(rand.NewPCG(7, 7)),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Do(ctx, d.Start))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = d.Do(ctx, func() error { d.Stop(); return nil })
	})

	api := NewRestAPI(&app.Application{
		Config:    cfg,
		Dashboard: d,
		Board:     board,
		Hub:       hub,
		Reports:   reports,
	})
	t.Cleanup(api.Close)
	return api
}

func serveApi(t *testing.T, api *RestAPI) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(api.Handler())
	t.Cleanup(server.Close)
	return server
}

func doRequest(t *testing.T, server *httptest.Server, method, endpoint string) (*http.Response, models.ResponseModel) {
	t.Helper()
	req, err := http.NewRequest(method, server.URL+endpoint, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer logging.SafeCloseWithLogging(resp.Body,
		slog.Default().With(slog.String("component", "test")),
		"http_response_body")

	var model models.ResponseModel
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&model))
	}
	return resp, model
}

// serveAndRetrieveEndpoint issues a GET against a fresh API.
func serveAndRetrieveEndpoint(t *testing.T, endpoint string) (*RestAPI, *http.Response, models.ResponseModel) {
	api := createTestApi(t)
	resp, model := doRequest(t, serveApi(t, api), http.MethodGet, endpoint)
	return api, resp, model
}

func entryOf(t *testing.T, model models.ResponseModel) map[string]interface{} {
	t.Helper()
	data, ok := model.Data.(map[string]interface{})
	require.True(t, ok, "data should be an object")
	entry, ok := data["entry"].(map[string]interface{})
	require.True(t, ok, "entry should be an object")
	return entry
}

func listOf(t *testing.T, model models.ResponseModel) []interface{} {
	t.Helper()
	data, ok := model.Data.(map[string]interface{})
	require.True(t, ok, "data should be an object")
	list, ok := data["list"].([]interface{})
	require.True(t, ok, "list should be an array")
	return list
}
