package app

import (
	"log/slog"

	"pulse.transitlab.org/internal/appconf"
	"pulse.transitlab.org/internal/dashboard"
	"pulse.transitlab.org/internal/render"
	"pulse.transitlab.org/internal/report"
)

// Application holds the dependencies shared by the HTTP handlers, helpers and
// middleware.
type Application struct {
	Config    appconf.Config
	Logger    *slog.Logger
	Dashboard *dashboard.Dashboard
	// Board is the materialised view of every render and notification write.
	Board *render.Board
	// Hub streams the same writes to websocket clients. Optional.
	Hub     *render.Hub
	Reports *report.TextExporter
}
