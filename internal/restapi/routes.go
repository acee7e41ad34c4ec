package restapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

type handlerFunc func(w http.ResponseWriter, r *http.Request)

func validateAPIKey(api *RestAPI, finalHandler handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.RequestHasInvalidAPIKey(r) {
			api.invalidAPIKeyResponse(w, r)
			return
		}
		finalHandler(w, r)
	})
}

func (api *RestAPI) SetRoutes(router *httprouter.Router) {
	router.Handler(http.MethodGet, "/api/where/current-time.json", validateAPIKey(api, api.currentTimeHandler))

	router.Handler(http.MethodGet, "/api/dashboard/status.json", validateAPIKey(api, api.statusHandler))
	router.Handler(http.MethodGet, "/api/dashboard/metrics.json", validateAPIKey(api, api.metricsHandler))
	router.Handler(http.MethodGet, "/api/dashboard/realtime.json", validateAPIKey(api, api.realtimeHandler))
	router.Handler(http.MethodGet, "/api/dashboard/network.json", validateAPIKey(api, api.networkHandler))
	router.Handler(http.MethodGet, "/api/dashboard/vehicles/:id", validateAPIKey(api, api.vehicleHandler))
	router.Handler(http.MethodGet, "/api/dashboard/charts.json", validateAPIKey(api, api.chartsHandler))
	router.Handler(http.MethodGet, "/api/dashboard/notifications.json", validateAPIKey(api, api.notificationsHandler))
	router.Handler(http.MethodGet, "/api/dashboard/report.txt", validateAPIKey(api, api.reportDownloadHandler))
	router.Handler(http.MethodGet, "/api/dashboard/stream", validateAPIKey(api, api.streamHandler))

	router.Handler(http.MethodPost, "/api/dashboard/initialize", validateAPIKey(api, api.initializeHandler))
	router.Handler(http.MethodPost, "/api/dashboard/demo", validateAPIKey(api, api.demoHandler))
	router.Handler(http.MethodPost, "/api/dashboard/report", validateAPIKey(api, api.generateReportHandler))
	router.Handler(http.MethodPost, "/api/dashboard/features/:name", validateAPIKey(api, api.featureHandler))
	router.Handler(http.MethodPost, "/api/dashboard/map-features/:name", validateAPIKey(api, api.mapFeatureHandler))

	router.NotFound = http.HandlerFunc(api.sendNotFound)
}
