package handlers

import (
	"net/http"
	"time"

	"footage-archive/internal/startup"
)

const statusHealthy = "healthy"

// HealthResponse contains the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}

// HealthCheck reports that the server is up.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	writeJSON(w, HealthResponse{
		Status:  statusHealthy,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
		Version: startup.Version,
	})
}
