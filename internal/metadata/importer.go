package metadata

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"footage-archive/internal/logging"
	"footage-archive/internal/mediatypes"
	"footage-archive/internal/metrics"
)

// ParsePolicy decides what happens to a row whose derived fields cannot be
// parsed.
type ParsePolicy string

const (
	// SkipInvalidRows drops the row, records a RowError and keeps going.
	SkipInvalidRows ParsePolicy = "skip"
	// AbortOnInvalidRow fails the whole import on the first bad row.
	AbortOnInvalidRow ParsePolicy = "abort"
)

// ParsePolicyFromString parses "skip" or "abort".
func ParsePolicyFromString(s string) (ParsePolicy, error) {
	switch ParsePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case SkipInvalidRows, "":
		return SkipInvalidRows, nil
	case AbortOnInvalidRow:
		return AbortOnInvalidRow, nil
	default:
		return "", fmt.Errorf("unknown metadata parse policy %q: %w", s, mediatypes.ErrInvalidInput)
	}
}

var frameRatePattern = regexp.MustCompile(`^\s*([0-9]+(?:\.[0-9]*)?)`)

// RowError describes a row that could not be imported.
type RowError struct {
	Line     int
	FilePath string
	Err      error
}

func (e RowError) Error() string {
	if e.FilePath == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d (%s): %v", e.Line, e.FilePath, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

type row struct {
	line   int
	values map[string]string
}

func (r row) get(col string) string {
	return strings.TrimSpace(r.values[col])
}

// Importer holds a parsed metadata export.
type Importer struct {
	source string
	policy ParsePolicy
	header []string
	rows   []row
}

// Option configures an Importer.
type Option func(*Importer)

// WithPolicy sets the parse-failure policy. The default is SkipInvalidRows.
func WithPolicy(p ParsePolicy) Option {
	return func(im *Importer) {
		im.policy = p
	}
}

// Open reads and parses the export at path.
func Open(path string, opts ...Option) (*Importer, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("metadata export %s: %w", path, mediatypes.ErrNotFound)
		}
		return nil, fmt.Errorf("metadata export %s: %w: %w", path, mediatypes.ErrIO, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("metadata export %s is a directory: %w", path, mediatypes.ErrInvalidInput)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("metadata export %s: %w: %w", path, mediatypes.ErrIO, err)
	}
	defer f.Close()

	return Parse(f, path, opts...)
}

// Parse reads an export from r. source is used in log and error messages.
func Parse(r io.Reader, source string, opts ...Option) (*Importer, error) {
	im := &Importer{source: source, policy: SkipInvalidRows}
	for _, opt := range opts {
		opt(im)
	}

	// The editing suite writes UTF-16 with a BOM. Without a BOM the input is
	// treated as UTF-8.
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("metadata export %s is empty: %w", source, mediatypes.ErrParse)
		}
		return nil, fmt.Errorf("metadata export %s header: %w: %w", source, mediatypes.ErrParse, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\uFEFF"))
	}
	im.header = header

	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	var missing []string
	for _, col := range requiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("metadata export %s missing columns %s: %w",
			source, strings.Join(missing, ", "), mediatypes.ErrParse)
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("metadata export %s: %w: %w", source, mediatypes.ErrParse, err)
		}
		line, _ := reader.FieldPos(0)

		values := make(map[string]string, len(header))
		empty := true
		for i, h := range header {
			if i < len(record) {
				values[h] = record[i]
				if strings.TrimSpace(record[i]) != "" {
					empty = false
				}
			}
		}
		if empty {
			continue
		}
		im.rows = append(im.rows, row{line: line, values: values})
	}

	logging.Debug("Read %d rows from metadata export %s", len(im.rows), source)
	return im, nil
}

// Len returns the number of non-empty data rows.
func (im *Importer) Len() int {
	return len(im.rows)
}

// Policy returns the parse-failure policy in effect.
func (im *Importer) Policy() ParsePolicy {
	return im.policy
}

func (im *Importer) filePath(r row) (string, error) {
	name := r.get(ColFileName)
	dir := r.get(ColClipDirectory)
	if name == "" || dir == "" {
		return "", fmt.Errorf("missing %q or %q: %w", ColFileName, ColClipDirectory, mediatypes.ErrParse)
	}
	return mediatypes.NormalizePath(filepath.Join(dir, name)), nil
}

// Details derives one FileDetails per row. Rows that fail to parse are
// returned as RowErrors under SkipInvalidRows; under AbortOnInvalidRow the
// first one is returned as the error.
func (im *Importer) Details() ([]mediatypes.FileDetails, []RowError, error) {
	details := make([]mediatypes.FileDetails, 0, len(im.rows))
	var rowErrs []RowError

	for _, r := range im.rows {
		d, err := im.detail(r)
		if err != nil {
			rowErr := RowError{Line: r.line, FilePath: d.FilePath, Err: err}
			metrics.MetadataRowsTotal.WithLabelValues("invalid").Inc()
			if im.policy == AbortOnInvalidRow {
				return nil, nil, fmt.Errorf("metadata export %s: %w", im.source, rowErr)
			}
			logging.Warn("Skipping metadata row in %s: %v", im.source, rowErr)
			rowErrs = append(rowErrs, rowErr)
			continue
		}
		details = append(details, d)
	}

	return details, rowErrs, nil
}

func (im *Importer) detail(r row) (mediatypes.FileDetails, error) {
	var d mediatypes.FileDetails

	path, err := im.filePath(r)
	if err != nil {
		return d, err
	}
	d.FilePath = path

	for _, col := range detailColumns {
		col.set(&d, r.get(col.header))
	}

	d.Width, d.Height, err = ParseResolution(d.Resolution)
	if err != nil {
		return d, err
	}
	d.FrameRate, err = ParseFrameRate(d.FrameRateVerbose)
	if err != nil {
		return d, err
	}

	raw := make(map[string]string, len(r.values))
	for h, v := range r.values {
		if v = strings.TrimSpace(v); v != "" {
			raw[h] = v
		}
	}
	blob, err := json.Marshal(raw)
	if err != nil {
		return d, fmt.Errorf("encode row: %w", err)
	}
	d.RawJSON = string(blob)

	return d, nil
}

// Keywords explodes the Keywords column into one entry per keyword and file.
// Keywords are lowercased and trimmed; blanks and repeats are dropped. Rows
// that Details rejects contribute nothing.
func (im *Importer) Keywords() []mediatypes.Keyword {
	type key struct{ path, keyword string }
	seen := make(map[key]struct{})
	var out []mediatypes.Keyword

	for _, r := range im.rows {
		d, err := im.detail(r)
		if err != nil {
			continue
		}
		path := d.FilePath
		for _, kw := range SplitKeywords(r.values[ColKeywords]) {
			k := key{path, kw}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, mediatypes.Keyword{FilePath: path, Keyword: kw})
		}
	}

	return out
}

// SplitKeywords splits a comma-separated keyword field into normalized,
// unique, non-blank keywords in first-seen order.
func SplitKeywords(field string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(field, ",") {
		kw := strings.ToLower(strings.TrimSpace(part))
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}

// ParseResolution splits "1920x1080" into width and height.
func ParseResolution(s string) (width, height int, err error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("resolution %q: %w", s, mediatypes.ErrParse)
	}
	width, errW := strconv.Atoi(strings.TrimSpace(parts[0]))
	height, errH := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errW != nil || errH != nil || width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("resolution %q: %w", s, mediatypes.ErrParse)
	}
	return width, height, nil
}

// ParseFrameRate returns the leading decimal number of a frame rate string
// such as "23.976 fps" or "25".
func ParseFrameRate(s string) (float64, error) {
	m := frameRatePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("frame rate %q: %w", s, mediatypes.ErrParse)
	}
	rate, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("frame rate %q: %w", s, mediatypes.ErrParse)
	}
	return rate, nil
}
