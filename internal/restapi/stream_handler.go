package restapi

import "net/http"

func (api *RestAPI) streamHandler(w http.ResponseWriter, r *http.Request) {
	if api.Hub == nil {
		api.sendNotFound(w, r)
		return
	}
	api.Hub.ServeHTTP(w, r)
}
