package restapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulse.transitlab.org/internal/models"
)

func TestNetworkHandler(t *testing.T) {
	_, resp, model := serveAndRetrieveEndpoint(t, "/api/dashboard/network.json?key=TEST")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	entry := entryOf(t, model)
	assert.Len(t, entry["stops"], 15)
	assert.Len(t, entry["vehicles"], 8)

	routes := entry["routes"].([]interface{})
	require.Len(t, routes, 5)
	route := routes[0].(map[string]interface{})
	points := route["points"].(string)
	assert.NotEmpty(t, points)
	assert.Equal(t, float64(len(points)), route["length"])

	path, err := models.DecodePath(points)
	require.NoError(t, err)
	assert.Len(t, path, len(route["stopIds"].([]interface{})))
}

func TestVehicleHandler(t *testing.T) {
	api := createTestApi(t)
	server := serveApi(t, api)

	tests := []struct {
		name   string
		id     string
		status int
	}{
		{name: "existing", id: "1", status: http.StatusOK},
		{name: "json suffix", id: "8.json", status: http.StatusOK},
		{name: "missing", id: "99", status: http.StatusNotFound},
		{name: "zero", id: "0", status: http.StatusBadRequest},
		{name: "not a number", id: "abc", status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, model := doRequest(t, server, http.MethodGet, "/api/dashboard/vehicles/"+tt.id+"?key=TEST")
			require.Equal(t, tt.status, resp.StatusCode)
			if tt.status == http.StatusOK {
				entry := entryOf(t, model)
				assert.Equal(t, 45.0, entry["capacity"])
				assert.Contains(t, entry["detail"], "Passengers:")
			}
		})
	}
}
