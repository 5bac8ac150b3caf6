package mediatypes

import (
	"path/filepath"
	"sort"
	"strings"
)

// ExtensionSet is a case-insensitive allow-list of file extensions. Entries are
// stored lowercased with a leading dot.
type ExtensionSet map[string]struct{}

// ParseExtensions builds an ExtensionSet from a comma-separated list such as
// ".mov,.MP4, mxf". Blank entries are ignored.
func ParseExtensions(list string) ExtensionSet {
	return NewExtensionSet(strings.Split(list, ","))
}

// NewExtensionSet normalizes the given extensions into a set.
func NewExtensionSet(exts []string) ExtensionSet {
	set := make(ExtensionSet, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" || ext == "." {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = struct{}{}
	}
	return set
}

// Contains reports whether the extension of path is in the set.
func (s ExtensionSet) Contains(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	_, ok := s[ext]
	return ok
}

// List returns the extensions in sorted order.
func (s ExtensionSet) List() []string {
	out := make([]string, 0, len(s))
	for ext := range s {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
