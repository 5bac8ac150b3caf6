package handlers

import (
	"net/http"

	"footage-archive/internal/pipeline"
	"footage-archive/internal/tasks"
)

// SubmitResponse is returned for every accepted job.
type SubmitResponse struct {
	TaskID string `json:"task_id"`
}

// ScanDirectory queues a scan of a directory tree.
func (h *Handlers) ScanDirectory(w http.ResponseWriter, r *http.Request) {
	req, err := decodePathRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	root, err := pipeline.ValidateScanRoot(req.Path)
	if err != nil {
		writeError(w, err)
		return
	}
	h.submit(w, tasks.ScanJob{Root: root, GeneratePreviews: req.GeneratePreviews})
}

// ImportMetadata queues an import of a metadata CSV export.
func (h *Handlers) ImportMetadata(w http.ResponseWriter, r *http.Request) {
	req, err := decodePathRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	path, err := pipeline.ValidateMetadataFile(req.Path)
	if err != nil {
		writeError(w, err)
		return
	}
	h.submit(w, tasks.ImportJob{MetadataPath: path})
}

func (h *Handlers) submit(w http.ResponseWriter, job tasks.Job) {
	t, err := h.tasks.Submit(job)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusAccepted, SubmitResponse{TaskID: t.ID})
}
