package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"footage-archive/internal/tasks"
)

// ListTasks returns every task in submission order.
func (h *Handlers) ListTasks(w http.ResponseWriter, _ *http.Request) {
	list := h.tasks.List()
	if list == nil {
		list = []tasks.Task{}
	}
	writeJSONStatus(w, http.StatusOK, list)
}

// GetTask returns one task by ID.
func (h *Handlers) GetTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	t, ok := h.tasks.Get(id)
	if !ok {
		writeJSONError(w, "task not found: "+id, http.StatusNotFound)
		return
	}
	writeJSONStatus(w, http.StatusOK, t)
}

// ClearCompletedTasks drops finished tasks and returns them.
func (h *Handlers) ClearCompletedTasks(w http.ResponseWriter, _ *http.Request) {
	cleared := h.tasks.ClearCompleted()
	if cleared == nil {
		cleared = []tasks.Task{}
	}
	writeJSONStatus(w, http.StatusOK, cleared)
}
