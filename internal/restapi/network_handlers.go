package restapi

import (
	"net/http"

	"pulse.transitlab.org/internal/models"
	"pulse.transitlab.org/internal/utils"
)

func (api *RestAPI) networkHandler(w http.ResponseWriter, r *http.Request) {
	net := api.Dashboard.Network()
	if net == nil {
		api.sendNotFound(w, r)
		return
	}
	api.sendResponse(w, r, models.NewEntryResponse(models.NewNetworkModel(net)))
}

func (api *RestAPI) vehicleHandler(w http.ResponseWriter, r *http.Request) {
	raw := utils.ExtractIDFromParams(r, "id")
	id, err := utils.ParsePositiveID(raw)
	if err == nil {
		err = utils.ValidateID(raw)
	}
	if err != nil {
		api.validationErrorResponse(w, r, map[string][]string{"id": {err.Error()}})
		return
	}

	net := api.Dashboard.Network()
	if net == nil {
		api.sendNotFound(w, r)
		return
	}
	st, ok := net.Vehicle(id)
	if !ok {
		api.sendNotFound(w, r)
		return
	}
	api.sendResponse(w, r, models.NewEntryResponse(models.NewVehicleModel(st)))
}
