package webui

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/davecgh/go-spew/spew"

	"pulse.transitlab.org/internal/app"
)

//go:embed debug_index.html
var templateFS embed.FS

var debugTemplate = template.Must(template.ParseFS(templateFS, "debug_index.html"))

// DataTypes are the sections the debug page can dump.
var DataTypes = []string{"status", "metrics", "realtime", "stops", "routes", "vehicles", "texts", "markers", "charts", "notifications", "report"}

// WebUI serves the debug pages.
type WebUI struct {
	*app.Application
}

type debugData struct {
	Title string
	Pre   string
	Types []string
}

func writeDebugData(w http.ResponseWriter, title string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := debugTemplate.Execute(w, debugData{
		Title: title,
		Pre:   spew.Sdump(data),
		Types: DataTypes,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (webUI *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	var data interface{}
	var title string

	net := webUI.Dashboard.Network()

	switch r.URL.Query().Get("dataType") {
	case "status":
		data, title = webUI.Dashboard.Status(), "Dashboard - Status"
	case "metrics":
		data, title = webUI.Dashboard.Store().Snapshot(), "Dashboard - Metrics"
	case "realtime":
		data, title = webUI.Dashboard.Realtime(), "Dashboard - Realtime"
	case "stops":
		title = "Network - Stops"
		if net != nil {
			data = net.Stops()
		}
	case "routes":
		title = "Network - Routes"
		if net != nil {
			data = net.Routes()
		}
	case "vehicles":
		title = "Network - Vehicles"
		if net != nil {
			data = net.Vehicles()
		}
	case "texts":
		data, title = webUI.Board.Texts(), "Board - Texts"
	case "markers":
		data, title = webUI.Board.Markers(), "Board - Markers"
	case "charts":
		data, title = webUI.Board.Charts(), "Board - Charts"
	case "notifications":
		data, title = webUI.Board.Notifications(), "Board - Notifications"
	case "report":
		title = "Reports - Latest"
		if webUI.Reports != nil {
			data, _ = webUI.Reports.LatestReport()
		}
	default:
		data = map[string][]string{"Please use one of the following": DataTypes}
		title = "Choose a data type"
	}

	writeDebugData(w, title, data)
}
