package handlers

import (
	"net/http"

	"footage-archive/internal/tasks"
)

// MissingPreviewEntry is a cataloged file without a preview.
type MissingPreviewEntry struct {
	ContentHash string `json:"content_hash"`
	FilePath    string `json:"file_path"`
}

// ListMissingPreviews lists files that have a scan record but no preview.
func (h *Handlers) ListMissingPreviews(w http.ResponseWriter, r *http.Request) {
	missing, err := h.catalog.ListFilesWithoutClipPreview(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]MissingPreviewEntry, 0, len(missing))
	for _, m := range missing {
		out = append(out, MissingPreviewEntry{ContentHash: m.ContentHash, FilePath: m.FilePath()})
	}
	writeJSONStatus(w, http.StatusOK, out)
}

// FixMissingPreviews queues a repair of every missing preview.
func (h *Handlers) FixMissingPreviews(w http.ResponseWriter, _ *http.Request) {
	h.submit(w, tasks.PreviewRepairJob{})
}
