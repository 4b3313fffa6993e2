package web

import "net/http"

type statusResponse struct {
	Status   string `json:"status"`
	Host     string `json:"host,omitempty"`
	Protocol string `json:"protocol,omitempty"`
}

// handleStatus reports that the server is up and how it was reached.
func handleStatus(w http.ResponseWriter, r *http.Request) {
	protocol := "http"
	if r.TLS != nil {
		protocol = "https"
	}
	writeJSON(w, r, http.StatusOK, statusResponse{
		Status:   "server is running",
		Host:     r.Host,
		Protocol: protocol,
	})
}

func handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, statusResponse{Status: "pong"})
}
