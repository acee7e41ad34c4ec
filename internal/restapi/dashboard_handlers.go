package restapi

import (
	"net/http"

	"pulse.transitlab.org/internal/charts"
	"pulse.transitlab.org/internal/models"
	"pulse.transitlab.org/internal/render"
)

func (api *RestAPI) statusHandler(w http.ResponseWriter, r *http.Request) {
	api.sendResponse(w, r, models.NewEntryResponse(api.Dashboard.Status()))
}

func (api *RestAPI) metricsHandler(w http.ResponseWriter, r *http.Request) {
	api.sendResponse(w, r, models.NewListResponse(api.Dashboard.Store().Snapshot()))
}

func (api *RestAPI) realtimeHandler(w http.ResponseWriter, r *http.Request) {
	api.sendResponse(w, r, models.NewEntryResponse(api.Dashboard.Realtime()))
}

type chartsEntry struct {
	Charts       map[string]render.Chart `json:"charts"`
	Placeholders map[string]string       `json:"placeholders"`
}

// chartsHandler returns every rendered chart, and the placeholder text of any
// container that has none.
func (api *RestAPI) chartsHandler(w http.ResponseWriter, r *http.Request) {
	entry := chartsEntry{
		Charts:       api.Board.Charts(),
		Placeholders: map[string]string{},
	}
	for _, id := range charts.Containers {
		if _, ok := entry.Charts[id]; ok {
			continue
		}
		if text, ok := api.Board.Text(id); ok {
			entry.Placeholders[id] = text
		}
	}
	api.sendResponse(w, r, models.NewEntryResponse(entry))
}

func (api *RestAPI) notificationsHandler(w http.ResponseWriter, r *http.Request) {
	notifications := api.Board.Notifications()

	if raw := r.URL.Query().Get("severity"); raw != "" {
		severity, err := render.ParseSeverity(raw)
		if err != nil {
			api.validationErrorResponse(w, r, map[string][]string{"severity": {err.Error()}})
			return
		}
		filtered := notifications[:0]
		for _, n := range notifications {
			if n.Severity == severity {
				filtered = append(filtered, n)
			}
		}
		notifications = filtered
	}

	api.sendResponse(w, r, models.NewListResponse(notifications))
}
