package server

import (
	"net/http"
	"time"
)

// healthResponse is the /health payload.
type healthResponse struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	Upstream  string `json:"upstream"`
	History   string `json:"history"`
	TunnelURL string `json:"tunnel_url,omitempty"`
}

// handleHealthCheck reports process liveness and the state of the optional
// subsystems. It never calls the upstream API.
func (bs *BridgeServer) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	if !bs.requireMethod(w, r, http.MethodGet) {
		return
	}

	resp := healthResponse{
		Status:   "ok",
		Uptime:   time.Since(bs.startedAt).Round(time.Second).String(),
		Upstream: bs.client.BaseURL(),
		History:  "disabled",
	}

	if bs.store != nil {
		if err := bs.store.Ping(); err != nil {
			resp.History = "unavailable"
		} else {
			resp.History = "ok"
		}
	}

	if bs.tunnelSvc != nil {
		resp.TunnelURL = bs.tunnelSvc.PublicURL()
	}

	w.Header().Set("Content-Type", "application/json")
	bs.respondJSON(w, resp)
}
