// Package restapi serves the dashboard over HTTP: JSON snapshots of the
// materialised view, actions posted onto the simulation loop, the report
// download and the live websocket stream.
package restapi

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"pulse.transitlab.org/internal/app"
	"pulse.transitlab.org/internal/logging"
)

type RestAPI struct {
	*app.Application
	rateLimiter *RateLimitMiddleware
}

// NewRestAPI creates a new RestAPI instance with initialized rate limiter
func NewRestAPI(app *app.Application) *RestAPI {
	return &RestAPI{
		Application: app,
		rateLimiter: NewRateLimitMiddleware(app.Config.RateLimit, time.Second),
	}
}

// Handler returns the router wrapped in the middleware chain.
func (api *RestAPI) Handler(extra ...func(*httprouter.Router)) http.Handler {
	router := httprouter.New()
	api.SetRoutes(router)
	for _, register := range extra {
		register(router)
	}

	var handler http.Handler = router
	handler = CompressionMiddleware(handler)
	if api.rateLimiter != nil {
		handler = api.rateLimiter.Handler(handler)
	}
	handler = api.WithSecurityHeaders(handler)
	return NewRequestLoggingMiddleware(logging.ForComponent(api.Logger, "http_server"))(handler)
}

// Close releases the rate limiter.
func (api *RestAPI) Close() {
	if api.rateLimiter != nil {
		api.rateLimiter.Stop()
	}
}
