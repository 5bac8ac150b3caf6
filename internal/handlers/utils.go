package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"footage-archive/internal/logging"
	"footage-archive/internal/mediatypes"
	"footage-archive/internal/tasks"
)

// maxRequestBody bounds JSON request bodies; every request is a single path.
const maxRequestBody = 64 << 10

// pathRequest is the body shared by the file and scanning endpoints.
type pathRequest struct {
	Path             string `json:"path"`
	GeneratePreviews bool   `json:"generate_previews"`
}

// writeJSON encodes v as JSON and writes it to the response writer.
// Encoding errors are only logged; the status line is already gone.
func writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONStatus writes v as JSON with the given status code.
func writeJSONStatus(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, v)
}

// writeJSONError writes an error response as JSON with the given status code.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	writeJSONStatus(w, statusCode, map[string]string{"error": message})
}

// writeError maps err to a status code by its kind.
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logging.Error("request failed: %v", err)
	}
	writeJSONError(w, err.Error(), status)
}

func statusFor(err error) int {
	if errors.Is(err, tasks.ErrRunnerStopped) {
		return http.StatusServiceUnavailable
	}
	switch mediatypes.KindOf(err) {
	case mediatypes.KindNotFound:
		return http.StatusNotFound
	case mediatypes.KindInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodePathRequest reads a pathRequest body. A missing path is invalid.
func decodePathRequest(r *http.Request) (pathRequest, error) {
	var req pathRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("%w: malformed request body: %v", mediatypes.ErrInvalidInput, err)
	}
	if req.Path == "" {
		return req, fmt.Errorf("%w: path is required", mediatypes.ErrInvalidInput)
	}
	return req, nil
}
