package restapi

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"pulse.transitlab.org/internal/logging"
	"pulse.transitlab.org/internal/report"
)

// reportDownloadHandler serves the most recent report as a text attachment.
func (api *RestAPI) reportDownloadHandler(w http.ResponseWriter, r *http.Request) {
	if api.Reports == nil {
		api.sendNotFound(w, r)
		return
	}
	name, body, err := api.Reports.Latest()
	if errors.Is(err, report.ErrNoReport) {
		api.sendNotFound(w, r)
		return
	}
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if _, err := w.Write(body); err != nil {
		logging.LogError(logging.FromContext(r.Context()), "failed to write report", err,
			slog.String("file", name))
	}
}
