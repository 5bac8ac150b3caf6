package mediatypes

import (
	"context"
	"errors"
)

var (
	// ErrNotFound reports a missing path, task or row.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput reports a path of the wrong kind (file vs directory) or a
	// malformed request.
	ErrInvalidInput = errors.New("invalid input")
	// ErrIO reports an unreadable file. Fatal to the enclosing scan.
	ErrIO = errors.New("i/o failure")
	// ErrParse reports a malformed metadata field or timecode.
	ErrParse = errors.New("parse failure")
	// ErrExternalTool reports a failed or unparsable ffmpeg/ffprobe invocation.
	ErrExternalTool = errors.New("external tool failure")
)

// Error kinds reported on failed tasks and in API responses.
const (
	KindNotFound     = "not_found"
	KindInvalidInput = "invalid_input"
	KindIO           = "io"
	KindParse        = "parse"
	KindExternalTool = "external_tool"
	KindCanceled     = "canceled"
	KindInternal     = "internal"
)

// KindOf classifies err against the sentinel errors. Unclassified errors are
// reported as internal; nil yields an empty string.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrIO):
		return KindIO
	case errors.Is(err, ErrParse):
		return KindParse
	case errors.Is(err, ErrExternalTool):
		return KindExternalTool
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindInternal
	}
}
