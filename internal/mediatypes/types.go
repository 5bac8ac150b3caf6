package mediatypes

import (
	"path/filepath"
	"time"
)

// ScanRecord identifies one file on disk by the hash of its content.
type ScanRecord struct {
	ContentHash string    `json:"content_hash"`
	FileName    string    `json:"file_name"`
	Extension   string    `json:"file_extension"`
	Directory   string    `json:"directory"`
	IndexedAt   time.Time `json:"last_indexed_at"`
}

// FilePath returns the full path of the scanned file.
func (r ScanRecord) FilePath() string {
	return filepath.Join(r.Directory, r.FileName)
}

// FileDetails is one imported metadata row with its derived fields. ContentHash
// is empty until the row has been matched against a ScanRecord.
type FileDetails struct {
	ContentHash      string  `json:"content_hash"`
	FilePath         string  `json:"file_path"`
	DurationTC       string  `json:"duration_tc"`
	FrameRateVerbose string  `json:"frame_rate_verbose"`
	AudioSampleRate  string  `json:"audio_sample_rate"`
	AudioChannels    string  `json:"audio_channels"`
	Resolution       string  `json:"resolution"`
	VideoCodec       string  `json:"video_codec"`
	AudioCodec       string  `json:"audio_codec"`
	Description      string  `json:"description"`
	Shot             string  `json:"shot"`
	Scene            string  `json:"scene"`
	Take             string  `json:"take"`
	Angle            string  `json:"angle"`
	Move             string  `json:"move"`
	ShotType         string  `json:"shot_type"`
	RecordedAt       string  `json:"recorded_at"`
	BitDepth         string  `json:"bit_depth"`
	AudioBitDepth    string  `json:"audio_bit_depth"`
	LastModifiedAt   string  `json:"last_modified_at"`
	Width            int     `json:"width"`
	Height           int     `json:"height"`
	FrameRate        float64 `json:"frame_rate"`
	RawJSON          string  `json:"json"`
}

// Keyword associates a normalized keyword with a file.
type Keyword struct {
	ContentHash string `json:"content_hash"`
	FilePath    string `json:"file_path,omitempty"`
	Keyword     string `json:"keyword"`
}

// FFmpegInput is everything needed to build a preview for one file.
type FFmpegInput struct {
	ContentHash     string
	FilePath        string
	DurationSeconds int
}

// ClipPreview is a horizontal strip of keyframes encoded as a JPEG.
type ClipPreview struct {
	ContentHash   string `json:"content_hash"`
	FrameCount    int    `json:"frames"`
	FrameHeight   int    `json:"frame_height"`
	FrameWidth    int    `json:"frame_width"`
	Padding       int    `json:"padding"`
	OverallHeight int    `json:"overall_height"`
	OverallWidth  int    `json:"overall_width"`
	Data          []byte `json:"-"`
}

// MissingPreview is a scanned file that has no ClipPreview yet.
type MissingPreview struct {
	ContentHash string `json:"content_hash"`
	FileName    string `json:"file_name"`
	Directory   string `json:"directory"`
}

// FilePath returns the full path of the file.
func (m MissingPreview) FilePath() string {
	return filepath.Join(m.Directory, m.FileName)
}

// NormalizePath returns the absolute, cleaned form of p. Scan records and
// metadata rows are joined on this form.
func NormalizePath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return abs
}
