package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"footage-archive/internal/filesystem"
	"footage-archive/internal/logging"
	"footage-archive/internal/mediatypes"
	"footage-archive/internal/metadata"
	"footage-archive/internal/metrics"
	"footage-archive/internal/preview"
	"footage-archive/internal/scanner"
	"footage-archive/internal/tasks"
)

// Store is the subset of the catalog the pipeline writes to.
type Store interface {
	UpsertFiles(ctx context.Context, records []mediatypes.ScanRecord) error
	UpsertFileDetails(ctx context.Context, details []mediatypes.FileDetails) error
	UpsertKeywords(ctx context.Context, keywords []mediatypes.Keyword) error
	UpsertClipPreview(ctx context.Context, p mediatypes.ClipPreview) error
	ListFilesWithoutClipPreview(ctx context.Context) ([]mediatypes.MissingPreview, error)
}

// PreviewBuilder renders a preview strip for one file.
type PreviewBuilder interface {
	Generate(ctx context.Context, in mediatypes.FFmpegInput) (mediatypes.ClipPreview, error)
}

// MemoryGate holds back preview generation under memory pressure.
type MemoryGate interface {
	Wait(ctx context.Context) error
}

// Pipeline runs catalog jobs.
type Pipeline struct {
	store    Store
	scanner  *scanner.Scanner
	previews PreviewBuilder
	prober   preview.Prober
	gate     MemoryGate
	policy   metadata.ParsePolicy
	retry    filesystem.RetryConfig
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithParsePolicy sets how metadata rows that fail to parse are handled.
func WithParsePolicy(policy metadata.ParsePolicy) Option {
	return func(p *Pipeline) {
		p.policy = policy
	}
}

// WithMemoryGate makes every preview wait on gate before rendering.
func WithMemoryGate(gate MemoryGate) Option {
	return func(p *Pipeline) {
		p.gate = gate
	}
}

// New creates a Pipeline. prober may be nil, in which case files whose
// duration is not known from metadata get no preview.
func New(store Store, sc *scanner.Scanner, previews PreviewBuilder, prober preview.Prober, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:    store,
		scanner:  sc,
		previews: previews,
		prober:   prober,
		policy:   metadata.SkipInvalidRows,
		retry:    filesystem.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Execute implements tasks.Executor.
func (p *Pipeline) Execute(ctx context.Context, job tasks.Job) error {
	switch j := job.(type) {
	case tasks.ScanJob:
		_, err := p.IndexDirectory(ctx, j.Root, j.GeneratePreviews)
		return err
	case tasks.ImportJob:
		_, err := p.ImportMetadata(ctx, j.MetadataPath)
		return err
	case tasks.PreviewRepairJob:
		_, err := p.RepairMissingPreviews(ctx)
		return err
	default:
		return fmt.Errorf("%w: unsupported job %T", mediatypes.ErrInvalidInput, job)
	}
}

// PreviewReport counts preview outcomes for one flow.
type PreviewReport struct {
	Attempted     int `json:"attempted"`
	Generated     int `json:"generated"`
	MissingOnDisk int `json:"missing_on_disk"`
	NoDuration    int `json:"no_duration"`
	Failed        int `json:"failed"`
}

// ValidateScanRoot checks that path is an existing directory and returns its
// normalized form.
func ValidateScanRoot(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: path is required", mediatypes.ErrInvalidInput)
	}
	abs := mediatypes.NormalizePath(path)
	info, err := os.Stat(abs)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", mediatypes.ErrNotFound, abs)
	}
	if err != nil {
		return "", fmt.Errorf("%w: stat %s: %v", mediatypes.ErrIO, abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", mediatypes.ErrInvalidInput, abs)
	}
	return abs, nil
}

// ValidateMetadataFile checks that path is an existing file and returns its
// normalized form.
func ValidateMetadataFile(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: path is required", mediatypes.ErrInvalidInput)
	}
	abs := mediatypes.NormalizePath(path)
	info, err := os.Stat(abs)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", mediatypes.ErrNotFound, abs)
	}
	if err != nil {
		return "", fmt.Errorf("%w: stat %s: %v", mediatypes.ErrIO, abs, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", mediatypes.ErrInvalidInput, abs)
	}
	return abs, nil
}

// buildPreview renders and stores the preview for one file. Only store
// failures and cancellation are returned; everything else is counted in r.
func (p *Pipeline) buildPreview(ctx context.Context, hash, path, durationTC string, r *PreviewReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.Attempted++

	if _, err := filesystem.StatWithRetry(path, p.retry); err != nil {
		r.MissingOnDisk++
		metrics.PreviewFailures.WithLabelValues("missing_file").Inc()
		logging.Warn("Skipping preview for %s: file not accessible: %v", path, err)
		return nil
	}

	in, err := p.inputFor(ctx, hash, path, durationTC)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		r.NoDuration++
		metrics.PreviewFailures.WithLabelValues("no_duration").Inc()
		logging.Warn("Skipping preview for %s: %v", path, err)
		return nil
	}

	if p.gate != nil {
		if err := p.gate.Wait(ctx); err != nil {
			return err
		}
	}

	clip, err := p.previews.Generate(ctx, in)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		r.Failed++
		logging.Warn("Preview generation failed for %s: %v", path, err)
		return nil
	}

	if err := p.store.UpsertClipPreview(ctx, clip); err != nil {
		metrics.PreviewFailures.WithLabelValues("store").Inc()
		return fmt.Errorf("store preview for %s: %w", path, err)
	}
	r.Generated++
	return nil
}

// inputFor resolves the clip duration from its timecode, falling back to a
// probe of the file itself.
func (p *Pipeline) inputFor(ctx context.Context, hash, path, durationTC string) (mediatypes.FFmpegInput, error) {
	if durationTC != "" {
		in, err := preview.InputFromTimecode(hash, path, durationTC)
		if err == nil && in.DurationSeconds > 0 {
			return in, nil
		}
		if err != nil {
			logging.Debug("Unusable duration %q for %s, probing instead: %v", durationTC, path, err)
		}
	}

	if p.prober == nil {
		return mediatypes.FFmpegInput{}, preview.ErrNoDuration
	}
	seconds, err := p.prober.ProbeDuration(ctx, path)
	if err != nil {
		return mediatypes.FFmpegInput{}, err
	}
	return mediatypes.FFmpegInput{ContentHash: hash, FilePath: path, DurationSeconds: seconds}, nil
}
