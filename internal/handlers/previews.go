package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"footage-archive/internal/logging"
)

// GetPreview serves the JPEG preview strip for a content hash.
func (h *Handlers) GetPreview(w http.ResponseWriter, r *http.Request) {
	hash := mux.Vars(r)["hash"]

	p, err := h.catalog.GetClipPreview(r.Context(), hash)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(p.Data)))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(p.Data); err != nil {
		logging.Debug("preview write for %s interrupted: %v", hash, err)
	}
}
