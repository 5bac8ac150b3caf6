package preview

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"footage-archive/internal/logging"
	"footage-archive/internal/mediatypes"
	"footage-archive/internal/metrics"
)

// ErrNoFrames is returned when not a single still could be extracted.
var ErrNoFrames = fmt.Errorf("no frames extracted: %w", mediatypes.ErrExternalTool)

// Config controls the geometry of generated strips.
type Config struct {
	WorkDir         string
	FrameWidth      int
	FrameHeight     int
	Padding         int
	KeyframePadding int
	MaxKeyframes    int
	JPEGQuality     int
}

// DefaultConfig returns 320x180 frames with a 10px gutter.
func DefaultConfig() Config {
	return Config{
		WorkDir:         filepath.Join(os.TempDir(), "footage-archive"),
		FrameWidth:      320,
		FrameHeight:     180,
		Padding:         10,
		KeyframePadding: DefaultKeyframePadding,
		MaxKeyframes:    DefaultMaxKeyframes,
		JPEGQuality:     85,
	}
}

// Generator turns a video into a ClipPreview.
type Generator struct {
	extractor FrameExtractor
	config    Config
}

// NewGenerator creates a Generator and its work directory.
func NewGenerator(extractor FrameExtractor, config Config) (*Generator, error) {
	defaults := DefaultConfig()
	if config.WorkDir == "" {
		config.WorkDir = defaults.WorkDir
	}
	if config.FrameWidth <= 0 {
		config.FrameWidth = defaults.FrameWidth
	}
	if config.FrameHeight <= 0 {
		config.FrameHeight = defaults.FrameHeight
	}
	if config.Padding < 0 {
		config.Padding = 0
	}
	if config.MaxKeyframes <= 0 {
		config.MaxKeyframes = defaults.MaxKeyframes
	}
	if config.KeyframePadding < 0 {
		config.KeyframePadding = defaults.KeyframePadding
	}
	if config.JPEGQuality <= 0 || config.JPEGQuality > 100 {
		config.JPEGQuality = defaults.JPEGQuality
	}

	if err := os.MkdirAll(config.WorkDir, 0o755); err != nil {
		return nil, fmt.Errorf("create preview work dir: %w: %w", mediatypes.ErrIO, err)
	}

	return &Generator{extractor: extractor, config: config}, nil
}

// Config returns the effective configuration.
func (g *Generator) Config() Config {
	return g.config
}

// Generate extracts keyframes from in.FilePath and returns the composited
// strip. Timestamps whose extraction fails are skipped; if none succeed the
// error wraps ErrNoFrames.
func (g *Generator) Generate(ctx context.Context, in mediatypes.FFmpegInput) (mediatypes.ClipPreview, error) {
	start := time.Now()
	timestamps := SelectKeyframeTimestamps(in.DurationSeconds, g.config.KeyframePadding, g.config.MaxKeyframes)

	callID := uuid.NewString()
	var stills []string
	defer func() {
		for _, p := range stills {
			if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
				logging.Warn("Failed to remove intermediate frame %s: %v", p, err)
			}
		}
	}()

	frames := make([]image.Image, 0, len(timestamps))
	for i, ts := range timestamps {
		if err := ctx.Err(); err != nil {
			return mediatypes.ClipPreview{}, err
		}

		out := filepath.Join(g.config.WorkDir, fmt.Sprintf("%s_%d_%s.jpeg", in.ContentHash, i, callID))
		stills = append(stills, out)

		if err := g.extractor.ExtractFrame(ctx, in.FilePath, ts, g.config.FrameWidth, g.config.FrameHeight, out); err != nil {
			logging.Debug("Skipping keyframe %s of %s: %v", ts, in.FilePath, err)
			continue
		}

		img, err := imaging.Open(out)
		if err != nil {
			logging.Debug("Skipping unreadable keyframe %s of %s: %v", ts, in.FilePath, err)
			continue
		}
		frames = append(frames, img)
	}

	if len(frames) == 0 {
		metrics.PreviewFailures.WithLabelValues("no_frames").Inc()
		return mediatypes.ClipPreview{}, fmt.Errorf("%s: %w", in.FilePath, ErrNoFrames)
	}

	canvas := Compose(frames, g.config.Padding)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.JPEG, imaging.JPEGQuality(g.config.JPEGQuality)); err != nil {
		metrics.PreviewFailures.WithLabelValues("encode").Inc()
		return mediatypes.ClipPreview{}, fmt.Errorf("encode preview for %s: %w", in.FilePath, err)
	}

	bounds := canvas.Bounds()
	preview := mediatypes.ClipPreview{
		ContentHash:   in.ContentHash,
		FrameCount:    len(frames),
		FrameHeight:   g.config.FrameHeight,
		FrameWidth:    g.config.FrameWidth,
		Padding:       g.config.Padding,
		OverallHeight: bounds.Dy(),
		OverallWidth:  bounds.Dx(),
		Data:          buf.Bytes(),
	}

	metrics.PreviewsGenerated.Inc()
	metrics.PreviewGenerationDuration.Observe(time.Since(start).Seconds())
	logging.Debug("Generated %dx%d preview with %d frames for %s",
		preview.OverallWidth, preview.OverallHeight, preview.FrameCount, in.FilePath)

	return preview, nil
}
