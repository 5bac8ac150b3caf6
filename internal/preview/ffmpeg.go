package preview

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"footage-archive/internal/logging"
	"footage-archive/internal/mediatypes"
	"footage-archive/internal/metrics"
)

// ErrNoDuration is returned by a Prober that cannot determine a duration.
var ErrNoDuration = fmt.Errorf("duration unavailable: %w", mediatypes.ErrExternalTool)

// FrameExtractor writes a single still frame of input at timestamp, scaled to
// width x height, to out.
type FrameExtractor interface {
	ExtractFrame(ctx context.Context, input, timestamp string, width, height int, out string) error
}

// Prober reports the container duration of a media file in whole seconds.
type Prober interface {
	ProbeDuration(ctx context.Context, path string) (int, error)
}

// FFmpeg extracts frames with the ffmpeg binary.
type FFmpeg struct {
	// Path to the binary; "ffmpeg" when empty.
	Path string
}

// ExtractFrame implements FrameExtractor.
func (f FFmpeg) ExtractFrame(ctx context.Context, input, timestamp string, width, height int, out string) error {
	bin := f.Path
	if bin == "" {
		bin = "ffmpeg"
	}

	cmd := exec.CommandContext(ctx, bin,
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-ss", timestamp,
		"-i", input,
		"-vframes", "1",
		"-vf", fmt.Sprintf("scale=%d:%d", width, height),
		"-q:v", "2",
		out,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		metrics.FFmpegInvocations.WithLabelValues("ffmpeg", "error").Inc()
		return fmt.Errorf("ffmpeg frame at %s of %s: %w: %v: %s",
			timestamp, input, mediatypes.ErrExternalTool, err, strings.TrimSpace(stderr.String()))
	}

	info, err := os.Stat(out)
	if err != nil || info.Size() == 0 {
		metrics.FFmpegInvocations.WithLabelValues("ffmpeg", "error").Inc()
		return fmt.Errorf("ffmpeg produced no frame at %s of %s: %w", timestamp, input, mediatypes.ErrExternalTool)
	}

	metrics.FFmpegInvocations.WithLabelValues("ffmpeg", "success").Inc()
	return nil
}

// FFprobe probes durations with the ffprobe binary.
type FFprobe struct {
	// Path to the binary; "ffprobe" when empty.
	Path string
}

// ProbeDuration implements Prober.
func (p FFprobe) ProbeDuration(ctx context.Context, path string) (int, error) {
	bin := p.Path
	if bin == "" {
		bin = "ffprobe"
	}

	cmd := exec.CommandContext(ctx, bin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		metrics.FFmpegInvocations.WithLabelValues("ffprobe", "error").Inc()
		logging.Debug("ffprobe failed for %s: %v, stderr: %s", path, err, stderr.String())
		return 0, fmt.Errorf("ffprobe %s: %w: %v", path, ErrNoDuration, err)
	}

	seconds, err := parseProbeDuration(stdout.String())
	if err != nil {
		metrics.FFmpegInvocations.WithLabelValues("ffprobe", "error").Inc()
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	metrics.FFmpegInvocations.WithLabelValues("ffprobe", "success").Inc()
	return seconds, nil
}

// parseProbeDuration turns ffprobe's "12.345000" into 12. "N/A", empty output
// and negative values yield ErrNoDuration.
func parseProbeDuration(out string) (int, error) {
	s := strings.TrimSpace(out)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("unparsable duration %q: %w", s, ErrNoDuration)
	}
	return int(math.Floor(v)), nil
}
