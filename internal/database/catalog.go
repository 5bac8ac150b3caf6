package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"footage-archive/internal/logging"
	"footage-archive/internal/mediatypes"
	"footage-archive/internal/metrics"
)

var fileColumns = []string{"content_hash", "file_name", "extension", "directory", "indexed_at"}

var detailColumns = []string{
	"content_hash", "file_path", "duration_tc", "frame_rate_verbose",
	"audio_sample_rate", "audio_channels", "resolution", "video_codec",
	"audio_codec", "description", "shot", "scene", "take", "angle", "move",
	"shot_type", "recorded_at", "bit_depth", "audio_bit_depth",
	"last_modified_at", "width", "height", "frame_rate", "raw_json",
}

var keywordColumns = []string{"content_hash", "keyword"}

var previewColumns = []string{
	"content_hash", "frame_count", "frame_height", "frame_width",
	"padding", "overall_height", "overall_width", "image_bytes",
}

// nullable stores empty strings as NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// UpsertFiles writes scan records keyed by content hash.
func (d *Database) UpsertFiles(ctx context.Context, records []mediatypes.ScanRecord) error {
	rows := make([][]any, 0, len(records))
	for _, r := range records {
		if r.ContentHash == "" {
			return fmt.Errorf("%w: scan record for %s has no content hash", mediatypes.ErrInvalidInput, r.FilePath())
		}
		indexed := r.IndexedAt
		if indexed.IsZero() {
			indexed = time.Now()
		}
		rows = append(rows, []any{r.ContentHash, r.FileName, r.Extension, r.Directory, formatTime(indexed)})
	}
	return d.upsert(ctx, "upsert_files", stagedWrite{table: "files", columns: fileColumns, rows: rows})
}

// UpsertFileDetails writes metadata rows. Rows without a content hash are
// rejected since they have not been matched to a scanned file.
func (d *Database) UpsertFileDetails(ctx context.Context, details []mediatypes.FileDetails) error {
	rows := make([][]any, 0, len(details))
	for _, fd := range details {
		if fd.ContentHash == "" {
			return fmt.Errorf("%w: file details for %s have no content hash", mediatypes.ErrInvalidInput, fd.FilePath)
		}
		rows = append(rows, []any{
			fd.ContentHash, fd.FilePath, nullable(fd.DurationTC), nullable(fd.FrameRateVerbose),
			nullable(fd.AudioSampleRate), nullable(fd.AudioChannels), nullable(fd.Resolution), nullable(fd.VideoCodec),
			nullable(fd.AudioCodec), nullable(fd.Description), nullable(fd.Shot), nullable(fd.Scene),
			nullable(fd.Take), nullable(fd.Angle), nullable(fd.Move), nullable(fd.ShotType),
			nullable(fd.RecordedAt), nullable(fd.BitDepth), nullable(fd.AudioBitDepth), nullable(fd.LastModifiedAt),
			fd.Width, fd.Height, fd.FrameRate, nullable(fd.RawJSON),
		})
	}
	return d.upsert(ctx, "upsert_file_details", stagedWrite{table: "file_details", columns: detailColumns, rows: rows})
}

// UpsertKeywords writes keyword associations. Existing pairs are left as is.
func (d *Database) UpsertKeywords(ctx context.Context, keywords []mediatypes.Keyword) error {
	rows := make([][]any, 0, len(keywords))
	for _, k := range keywords {
		if k.ContentHash == "" || k.Keyword == "" {
			return fmt.Errorf("%w: keyword %q for %s is incomplete", mediatypes.ErrInvalidInput, k.Keyword, k.FilePath)
		}
		rows = append(rows, []any{k.ContentHash, k.Keyword})
	}
	return d.upsert(ctx, "upsert_keywords", stagedWrite{table: "keywords", columns: keywordColumns, rows: rows})
}

// UpsertClipPreviews writes preview strips, replacing any existing preview
// for the same content hash.
func (d *Database) UpsertClipPreviews(ctx context.Context, previews []mediatypes.ClipPreview) error {
	rows := make([][]any, 0, len(previews))
	for _, p := range previews {
		if p.ContentHash == "" || len(p.Data) == 0 {
			return fmt.Errorf("%w: clip preview %q has no content hash or image", mediatypes.ErrInvalidInput, p.ContentHash)
		}
		rows = append(rows, []any{
			p.ContentHash, p.FrameCount, p.FrameHeight, p.FrameWidth,
			p.Padding, p.OverallHeight, p.OverallWidth, p.Data,
		})
	}
	return d.upsert(ctx, "upsert_clip_previews", stagedWrite{table: "clip_previews", columns: previewColumns, rows: rows})
}

// UpsertClipPreview writes a single preview.
func (d *Database) UpsertClipPreview(ctx context.Context, p mediatypes.ClipPreview) error {
	return d.UpsertClipPreviews(ctx, []mediatypes.ClipPreview{p})
}

// GetFile returns the scan record for hash.
func (d *Database) GetFile(ctx context.Context, hash string) (rec mediatypes.ScanRecord, err error) {
	start := time.Now()
	defer func() { recordQuery("get_file", start, ignoreNotFound(err)) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var indexed string
	err = d.db.QueryRowContext(ctx,
		`SELECT content_hash, file_name, extension, directory, indexed_at FROM files WHERE content_hash = ?`, hash,
	).Scan(&rec.ContentHash, &rec.FileName, &rec.Extension, &rec.Directory, &indexed)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, fmt.Errorf("%w: file %s", mediatypes.ErrNotFound, hash)
	}
	if err != nil {
		return rec, fmt.Errorf("get file %s: %w", hash, err)
	}
	rec.IndexedAt = parseTime(indexed)
	return rec, nil
}

// ListFiles returns every scan record, optionally restricted to a directory
// prefix, ordered by path.
func (d *Database) ListFiles(ctx context.Context, dirPrefix string) (recs []mediatypes.ScanRecord, err error) {
	start := time.Now()
	defer func() { recordQuery("list_files", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := `SELECT content_hash, file_name, extension, directory, indexed_at FROM files`
	var args []any
	if dirPrefix != "" {
		query += ` WHERE directory = ? OR directory LIKE ? ESCAPE '\'`
		args = append(args, dirPrefix, escapeLike(dirPrefix)+"/%")
	}
	query += ` ORDER BY directory, file_name`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec mediatypes.ScanRecord
		var indexed string
		if err = rows.Scan(&rec.ContentHash, &rec.FileName, &rec.Extension, &rec.Directory, &indexed); err != nil {
			return nil, fmt.Errorf("scan file row: %w", err)
		}
		rec.IndexedAt = parseTime(indexed)
		recs = append(recs, rec)
	}
	err = rows.Err()
	return recs, err
}

// GetFileDetails returns the imported metadata for hash.
func (d *Database) GetFileDetails(ctx context.Context, hash string) (fd mediatypes.FileDetails, err error) {
	start := time.Now()
	defer func() { recordQuery("get_file_details", start, ignoreNotFound(err)) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err = d.db.QueryRowContext(ctx, `
		SELECT content_hash, file_path,
			COALESCE(duration_tc, ''), COALESCE(frame_rate_verbose, ''),
			COALESCE(audio_sample_rate, ''), COALESCE(audio_channels, ''),
			COALESCE(resolution, ''), COALESCE(video_codec, ''),
			COALESCE(audio_codec, ''), COALESCE(description, ''),
			COALESCE(shot, ''), COALESCE(scene, ''), COALESCE(take, ''),
			COALESCE(angle, ''), COALESCE(move, ''), COALESCE(shot_type, ''),
			COALESCE(recorded_at, ''), COALESCE(bit_depth, ''),
			COALESCE(audio_bit_depth, ''), COALESCE(last_modified_at, ''),
			COALESCE(width, 0), COALESCE(height, 0), COALESCE(frame_rate, 0),
			COALESCE(raw_json, '')
		FROM file_details WHERE content_hash = ?`, hash,
	).Scan(
		&fd.ContentHash, &fd.FilePath,
		&fd.DurationTC, &fd.FrameRateVerbose,
		&fd.AudioSampleRate, &fd.AudioChannels,
		&fd.Resolution, &fd.VideoCodec,
		&fd.AudioCodec, &fd.Description,
		&fd.Shot, &fd.Scene, &fd.Take,
		&fd.Angle, &fd.Move, &fd.ShotType,
		&fd.RecordedAt, &fd.BitDepth,
		&fd.AudioBitDepth, &fd.LastModifiedAt,
		&fd.Width, &fd.Height, &fd.FrameRate,
		&fd.RawJSON,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fd, fmt.Errorf("%w: file details %s", mediatypes.ErrNotFound, hash)
	}
	if err != nil {
		return fd, fmt.Errorf("get file details %s: %w", hash, err)
	}
	return fd, nil
}

// ListKeywords returns the sorted keywords recorded for hash.
func (d *Database) ListKeywords(ctx context.Context, hash string) (keywords []string, err error) {
	start := time.Now()
	defer func() { recordQuery("list_keywords", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `SELECT keyword FROM keywords WHERE content_hash = ? ORDER BY keyword`, hash)
	if err != nil {
		return nil, fmt.Errorf("list keywords: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var k string
		if err = rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan keyword: %w", err)
		}
		keywords = append(keywords, k)
	}
	err = rows.Err()
	return keywords, err
}

// GetClipPreview returns the preview for hash including its JPEG bytes.
func (d *Database) GetClipPreview(ctx context.Context, hash string) (p mediatypes.ClipPreview, err error) {
	start := time.Now()
	defer func() { recordQuery("get_clip_preview", start, ignoreNotFound(err)) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err = d.db.QueryRowContext(ctx, `
		SELECT content_hash, frame_count, frame_height, frame_width,
			padding, overall_height, overall_width, image_bytes
		FROM clip_previews WHERE content_hash = ?`, hash,
	).Scan(&p.ContentHash, &p.FrameCount, &p.FrameHeight, &p.FrameWidth,
		&p.Padding, &p.OverallHeight, &p.OverallWidth, &p.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return p, fmt.Errorf("%w: clip preview %s", mediatypes.ErrNotFound, hash)
	}
	if err != nil {
		return p, fmt.Errorf("get clip preview %s: %w", hash, err)
	}
	return p, nil
}

// ListFilesWithoutClipPreview returns every scanned file that has no preview,
// ordered by path.
func (d *Database) ListFilesWithoutClipPreview(ctx context.Context) (missing []mediatypes.MissingPreview, err error) {
	start := time.Now()
	defer func() { recordQuery("list_missing_previews", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `
		SELECT f.content_hash, f.file_name, f.directory
		FROM files f
		LEFT JOIN clip_previews p ON p.content_hash = f.content_hash
		WHERE p.content_hash IS NULL
		ORDER BY f.directory, f.file_name`)
	if err != nil {
		return nil, fmt.Errorf("list missing previews: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m mediatypes.MissingPreview
		if err = rows.Scan(&m.ContentHash, &m.FileName, &m.Directory); err != nil {
			return nil, fmt.Errorf("scan missing preview: %w", err)
		}
		missing = append(missing, m)
	}
	err = rows.Err()
	return missing, err
}

// CountRows returns row counts for every catalog table.
func (d *Database) CountRows(ctx context.Context) (stats metrics.Stats, err error) {
	start := time.Now()
	defer func() { recordQuery("stats", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err = d.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM files),
			(SELECT COUNT(*) FROM file_details),
			(SELECT COUNT(*) FROM keywords),
			(SELECT COUNT(*) FROM clip_previews),
			(SELECT COUNT(*) FROM files f
				WHERE NOT EXISTS (SELECT 1 FROM clip_previews p WHERE p.content_hash = f.content_hash))
	`).Scan(&stats.Files, &stats.FileDetails, &stats.Keywords, &stats.ClipPreviews, &stats.MissingPreviews)
	if err != nil {
		return stats, fmt.Errorf("count rows: %w", err)
	}
	return stats, nil
}

// GetStats implements metrics.StatsProvider.
func (d *Database) GetStats() metrics.Stats {
	stats, err := d.CountRows(context.Background())
	if err != nil {
		logging.Warn("Failed to collect catalog stats: %v", err)
	}
	return stats
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}

// ignoreNotFound keeps lookups of absent rows out of the error metrics.
func ignoreNotFound(err error) error {
	if errors.Is(err, mediatypes.ErrNotFound) {
		return nil
	}
	return err
}
