package handlers

import (
	"net/http"

	"footage-archive/internal/startup"
)

// GetVersion returns build information
func (h *Handlers) GetVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSONStatus(w, http.StatusOK, startup.GetBuildInfo(h.releaseName))
}
