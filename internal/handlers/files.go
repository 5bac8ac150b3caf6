package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"footage-archive/internal/mediatypes"
)

const (
	entryFile      = "file"
	entryDirectory = "directory"
)

// FileEntry describes one filesystem entry.
type FileEntry struct {
	Name          string `json:"name"`
	Path          string `json:"path"`
	Type          string `json:"type"`
	FileExtension string `json:"file_extension"`
}

// ChecksumResponse is a FileEntry with its MD5.
type ChecksumResponse struct {
	FileEntry
	MD5 string `json:"md5"`
}

// ListDirectory lists the children of a directory, directories first.
func (h *Handlers) ListDirectory(w http.ResponseWriter, r *http.Request) {
	req, err := decodePathRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	dir := mediatypes.NormalizePath(req.Path)

	info, err := statPath(dir)
	if err != nil {
		writeError(w, err)
		return
	}
	if !info.IsDir() {
		writeError(w, fmt.Errorf("%w: %s is not a directory", mediatypes.ErrInvalidInput, dir))
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		writeError(w, fmt.Errorf("%w: read %s: %v", mediatypes.ErrIO, dir, err))
		return
	}

	out := make([]FileEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, newFileEntry(filepath.Join(dir, e.Name()), e.IsDir()))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type == entryDirectory
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})

	writeJSONStatus(w, http.StatusOK, out)
}

// Checksum returns the MD5 of a single file.
func (h *Handlers) Checksum(w http.ResponseWriter, r *http.Request) {
	req, err := decodePathRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	path := mediatypes.NormalizePath(req.Path)

	info, err := statPath(path)
	if err != nil {
		writeError(w, err)
		return
	}
	if info.IsDir() {
		writeError(w, fmt.Errorf("%w: %s is a directory", mediatypes.ErrInvalidInput, path))
		return
	}

	sum, err := h.hasher.HashFile(path)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSONStatus(w, http.StatusOK, ChecksumResponse{
		FileEntry: newFileEntry(path, false),
		MD5:       sum,
	})
}

func newFileEntry(path string, isDir bool) FileEntry {
	e := FileEntry{
		Name: filepath.Base(path),
		Path: path,
		Type: entryFile,
	}
	if isDir {
		e.Type = entryDirectory
	} else {
		e.FileExtension = filepath.Ext(path)
	}
	return e
}

func statPath(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", mediatypes.ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %v", mediatypes.ErrIO, path, err)
	}
	return info, nil
}
