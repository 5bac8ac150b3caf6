package pipeline

import (
	"context"
	"fmt"
	"time"

	"footage-archive/internal/logging"
	"footage-archive/internal/mediatypes"
	"footage-archive/internal/metadata"
	"footage-archive/internal/metrics"
)

// ScanReport summarizes IndexDirectory.
type ScanReport struct {
	Root     string         `json:"root"`
	Files    int            `json:"files"`
	Previews *PreviewReport `json:"previews,omitempty"`
	Duration time.Duration  `json:"duration"`
}

// IndexDirectory hashes every allowed file under root and records it. With
// generatePreviews set, scanned files that have no preview get one, using a
// probe for the duration.
func (p *Pipeline) IndexDirectory(ctx context.Context, root string, generatePreviews bool) (ScanReport, error) {
	start := time.Now()
	report := ScanReport{Root: root}

	records, err := p.scanner.ScanDirectory(ctx, root)
	if err != nil {
		return report, fmt.Errorf("scan %s: %w", root, err)
	}
	report.Files = len(records)

	if err := p.store.UpsertFiles(ctx, records); err != nil {
		return report, fmt.Errorf("record scan of %s: %w", root, err)
	}
	logging.Info("Indexed %d files under %s", len(records), root)

	if generatePreviews && len(records) > 0 {
		previews, err := p.previewsForScanned(ctx, records)
		report.Previews = &previews
		if err != nil {
			return report, err
		}
	}

	report.Duration = time.Since(start)
	return report, nil
}

func (p *Pipeline) previewsForScanned(ctx context.Context, records []mediatypes.ScanRecord) (PreviewReport, error) {
	var r PreviewReport

	scanned := make(map[string]struct{}, len(records))
	for _, rec := range records {
		scanned[rec.ContentHash] = struct{}{}
	}

	missing, err := p.store.ListFilesWithoutClipPreview(ctx)
	if err != nil {
		return r, fmt.Errorf("list files without preview: %w", err)
	}

	for _, m := range missing {
		if _, ok := scanned[m.ContentHash]; !ok {
			continue
		}
		if err := p.buildPreview(ctx, m.ContentHash, m.FilePath(), "", &r); err != nil {
			return r, err
		}
	}

	logging.Info("Previews after scan: %d generated, %d without duration, %d failed",
		r.Generated, r.NoDuration, r.Failed)
	return r, nil
}

// ImportReport summarizes ImportMetadata.
type ImportReport struct {
	Source      string              `json:"source"`
	Rows        int                 `json:"rows"`
	InvalidRows []metadata.RowError `json:"-"`
	Invalid     int                 `json:"invalid"`
	Matched     int                 `json:"matched"`
	Unmatched   int                 `json:"unmatched"`
	Keywords    int                 `json:"keywords"`
	Previews    PreviewReport       `json:"previews"`
	Duration    time.Duration       `json:"duration"`
}

// ImportMetadata reads a metadata export, scans the files it names and
// records details and keywords for every row that matched a scanned file.
// Previews are then built for the matched files.
func (p *Pipeline) ImportMetadata(ctx context.Context, path string) (ImportReport, error) {
	start := time.Now()
	report := ImportReport{Source: path}

	im, err := metadata.Open(path, metadata.WithPolicy(p.policy))
	if err != nil {
		return report, err
	}
	report.Rows = im.Len()

	details, rowErrs, err := im.Details()
	if err != nil {
		return report, err
	}
	report.InvalidRows = rowErrs
	report.Invalid = len(rowErrs)

	paths := make([]string, 0, len(details))
	seen := make(map[string]struct{}, len(details))
	for _, d := range details {
		if _, dup := seen[d.FilePath]; dup {
			continue
		}
		seen[d.FilePath] = struct{}{}
		paths = append(paths, d.FilePath)
	}

	records, err := p.scanner.ScanFiles(ctx, paths)
	if err != nil {
		return report, fmt.Errorf("scan files named in %s: %w", path, err)
	}

	matchedRows, unmatched := joinDetails(records, details)
	keywords := joinKeywords(records, matchedRows, im.Keywords())
	matched := uniqueByHash(matchedRows)
	report.Matched = len(matched)
	report.Unmatched = unmatched
	report.Keywords = len(keywords)

	metrics.MetadataRowsTotal.WithLabelValues("imported").Add(float64(len(matchedRows)))
	metrics.MetadataRowsTotal.WithLabelValues("unmatched").Add(float64(unmatched))

	if err := p.store.UpsertFiles(ctx, records); err != nil {
		return report, fmt.Errorf("record files from %s: %w", path, err)
	}
	if err := p.store.UpsertFileDetails(ctx, matched); err != nil {
		return report, fmt.Errorf("record details from %s: %w", path, err)
	}
	if err := p.store.UpsertKeywords(ctx, keywords); err != nil {
		return report, fmt.Errorf("record keywords from %s: %w", path, err)
	}

	logging.Info("Imported %s: %d rows, %d matched, %d unmatched, %d invalid, %d keywords",
		path, report.Rows, report.Matched, report.Unmatched, report.Invalid, report.Keywords)

	for _, d := range matched {
		if err := p.buildPreview(ctx, d.ContentHash, d.FilePath, d.DurationTC, &report.Previews); err != nil {
			return report, err
		}
	}

	report.Duration = time.Since(start)
	return report, nil
}

// joinDetails keeps the details whose path matches a scan record and fills
// in the content hash. Rows without a match are counted and dropped.
func joinDetails(records []mediatypes.ScanRecord, details []mediatypes.FileDetails) ([]mediatypes.FileDetails, int) {
	byPath := make(map[string]string, len(records))
	for _, r := range records {
		byPath[mediatypes.NormalizePath(r.FilePath())] = r.ContentHash
	}

	matched := make([]mediatypes.FileDetails, 0, len(details))
	unmatched := 0
	for _, d := range details {
		hash, ok := byPath[d.FilePath]
		if !ok {
			unmatched++
			logging.Debug("No scanned file for metadata row %s", d.FilePath)
			continue
		}
		d.ContentHash = hash
		matched = append(matched, d)
	}
	return matched, unmatched
}

// uniqueByHash collapses details sharing a content hash into one entry at the
// position of the first. The last row wins, as it would in the store.
func uniqueByHash(details []mediatypes.FileDetails) []mediatypes.FileDetails {
	index := make(map[string]int, len(details))
	out := make([]mediatypes.FileDetails, 0, len(details))
	for _, d := range details {
		if i, ok := index[d.ContentHash]; ok {
			out[i] = d
			continue
		}
		index[d.ContentHash] = len(out)
		out = append(out, d)
	}
	return out
}

// joinKeywords keeps keywords of matched detail rows and fills in the hash.
func joinKeywords(records []mediatypes.ScanRecord, matched []mediatypes.FileDetails, keywords []mediatypes.Keyword) []mediatypes.Keyword {
	byPath := make(map[string]string, len(records))
	for _, r := range records {
		byPath[mediatypes.NormalizePath(r.FilePath())] = r.ContentHash
	}
	valid := make(map[string]struct{}, len(matched))
	for _, d := range matched {
		valid[d.FilePath] = struct{}{}
	}

	out := make([]mediatypes.Keyword, 0, len(keywords))
	for _, k := range keywords {
		if _, ok := valid[k.FilePath]; !ok {
			continue
		}
		k.ContentHash = byPath[k.FilePath]
		out = append(out, k)
	}
	return out
}

// RepairMissingPreviews builds a preview for every cataloged file that has
// none. Files no longer on disk and files of unknown duration are skipped.
func (p *Pipeline) RepairMissingPreviews(ctx context.Context) (PreviewReport, error) {
	var r PreviewReport

	missing, err := p.store.ListFilesWithoutClipPreview(ctx)
	if err != nil {
		return r, fmt.Errorf("list files without preview: %w", err)
	}
	logging.Info("Repairing previews for %d files", len(missing))

	for _, m := range missing {
		if err := p.buildPreview(ctx, m.ContentHash, m.FilePath(), "", &r); err != nil {
			return r, err
		}
	}

	logging.Info("Preview repair finished: %d repaired, %d missing on disk, %d without duration, %d failed",
		r.Generated, r.MissingOnDisk, r.NoDuration, r.Failed)
	return r, nil
}
