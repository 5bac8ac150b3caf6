package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"footage-archive/internal/mediatypes"
	"footage-archive/internal/tasks"
)

// Catalog is the read side of the store used by the API.
type Catalog interface {
	ListFilesWithoutClipPreview(ctx context.Context) ([]mediatypes.MissingPreview, error)
	GetClipPreview(ctx context.Context, hash string) (mediatypes.ClipPreview, error)
}

// TaskQueue accepts jobs and reports on them.
type TaskQueue interface {
	Submit(job tasks.Job) (tasks.Task, error)
	Get(id string) (tasks.Task, bool)
	List() []tasks.Task
	ClearCompleted() []tasks.Task
}

// Hasher computes content hashes.
type Hasher interface {
	HashFile(path string) (string, error)
}

type Handlers struct {
	catalog     Catalog
	tasks       TaskQueue
	hasher      Hasher
	releaseName string
	started     time.Time
}

func New(catalog Catalog, queue TaskQueue, hasher Hasher, releaseName string) *Handlers {
	return &Handlers{
		catalog:     catalog,
		tasks:       queue,
		hasher:      hasher,
		releaseName: releaseName,
		started:     time.Now(),
	}
}

// Register adds every API route to r.
func (h *Handlers) Register(r *mux.Router) {
	r.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet, http.MethodHead)

	r.HandleFunc("/files/directory", h.ListDirectory).Methods(http.MethodPost)
	r.HandleFunc("/files/checksum", h.Checksum).Methods(http.MethodPost)

	r.HandleFunc("/scanning/directory", h.ScanDirectory).Methods(http.MethodPost)
	r.HandleFunc("/scanning/metadata", h.ImportMetadata).Methods(http.MethodPost)

	r.HandleFunc("/tasks", h.ListTasks).Methods(http.MethodGet)
	r.HandleFunc("/tasks/completed", h.ClearCompletedTasks).Methods(http.MethodDelete)
	r.HandleFunc("/tasks/{id}", h.GetTask).Methods(http.MethodGet)

	r.HandleFunc("/trouble-shooting/missing-preview", h.ListMissingPreviews).Methods(http.MethodGet)
	r.HandleFunc("/trouble-shooting/missing-preview/fix", h.FixMissingPreviews).Methods(http.MethodPost)

	r.HandleFunc("/previews/{hash}", h.GetPreview).Methods(http.MethodGet)
}
