package restapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"pulse.transitlab.org/internal/dashboard"
	"pulse.transitlab.org/internal/models"
	"pulse.transitlab.org/internal/utils"
)

// actionTimeout bounds how long a request waits for the simulation loop.
const actionTimeout = 5 * time.Second

type actionEntry struct {
	Action  string           `json:"action"`
	Target  string           `json:"target,omitempty"`
	Enabled *bool            `json:"enabled,omitempty"`
	Status  dashboard.Status `json:"status"`
}

// runAction posts fn onto the simulation loop and waits for its result.
func (api *RestAPI) runAction(r *http.Request, fn func() error) error {
	ctx, cancel := context.WithTimeout(r.Context(), actionTimeout)
	defer cancel()
	return api.Dashboard.Do(ctx, fn)
}

func (api *RestAPI) actionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, dashboard.ErrUnknownFeature):
		api.sendNotFound(w, r)
	case errors.Is(err, dashboard.ErrAlreadyInitializing), errors.Is(err, dashboard.ErrSequenceRunning):
		api.conflictResponse(w, r, err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		api.unavailableResponse(w, r, err)
	default:
		api.serverErrorResponse(w, r, err)
	}
}

func (api *RestAPI) sendAction(w http.ResponseWriter, r *http.Request, entry actionEntry) {
	entry.Status = api.Dashboard.Status()
	response := models.NewEntryResponse(entry)
	response.Code = http.StatusAccepted
	response.Text = "Accepted"
	api.sendResponse(w, r, response)
}

func (api *RestAPI) initializeHandler(w http.ResponseWriter, r *http.Request) {
	if err := api.runAction(r, api.Dashboard.InitializeSystem); err != nil {
		api.actionError(w, r, err)
		return
	}
	api.sendAction(w, r, actionEntry{Action: "initialize"})
}

func (api *RestAPI) demoHandler(w http.ResponseWriter, r *http.Request) {
	if err := api.runAction(r, api.Dashboard.StartDemo); err != nil {
		api.actionError(w, r, err)
		return
	}
	api.sendAction(w, r, actionEntry{Action: "demo"})
}

func (api *RestAPI) generateReportHandler(w http.ResponseWriter, r *http.Request) {
	err := api.runAction(r, func() error {
		return api.Dashboard.GenerateReport(nil)
	})
	if err != nil {
		api.actionError(w, r, err)
		return
	}
	api.sendAction(w, r, actionEntry{Action: "report"})
}

func (api *RestAPI) featureHandler(w http.ResponseWriter, r *http.Request) {
	name := utils.ExtractIDFromParams(r, "name")
	if err := utils.ValidateID(name); err != nil {
		api.validationErrorResponse(w, r, map[string][]string{"name": {err.Error()}})
		return
	}
	err := api.runAction(r, func() error {
		return api.Dashboard.ActivateFeature(name)
	})
	if err != nil {
		api.actionError(w, r, err)
		return
	}
	api.sendAction(w, r, actionEntry{Action: "feature", Target: name})
}

func (api *RestAPI) mapFeatureHandler(w http.ResponseWriter, r *http.Request) {
	name := utils.ExtractIDFromParams(r, "name")
	if err := utils.ValidateID(name); err != nil {
		api.validationErrorResponse(w, r, map[string][]string{"name": {err.Error()}})
		return
	}
	var enabled bool
	err := api.runAction(r, func() error {
		var err error
		enabled, err = api.Dashboard.ToggleMapFeature(name)
		return err
	})
	if err != nil {
		api.actionError(w, r, err)
		return
	}
	api.sendAction(w, r, actionEntry{Action: "map-feature", Target: name, Enabled: &enabled})
}
