package scanner

import (
	"context"
	"crypto/md5" //nolint:gosec // MD5 is the catalog's content identity, not a security boundary
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"footage-archive/internal/filesystem"
	"footage-archive/internal/logging"
	"footage-archive/internal/mediatypes"
	"footage-archive/internal/metrics"
	"footage-archive/internal/workers"
)

// DefaultBlockSize is the read size used while hashing.
const DefaultBlockSize = 4096

// maxHashWorkers caps the hashing pool. More concurrent readers than this
// mostly thrash spinning disks and NAS mounts.
const maxHashWorkers = 8

// Config configures a Scanner.
type Config struct {
	Extensions mediatypes.ExtensionSet
	BlockSize  int
	Workers    int
	Retry      filesystem.RetryConfig
}

// DefaultConfig returns a Config for the given allow-list.
func DefaultConfig(extensions mediatypes.ExtensionSet) Config {
	return Config{
		Extensions: extensions,
		BlockSize:  DefaultBlockSize,
		Workers:    workers.ForIO(maxHashWorkers),
		Retry:      filesystem.DefaultRetryConfig(),
	}
}

// Scanner discovers and hashes files matching an extension allow-list.
type Scanner struct {
	config Config
}

// New creates a Scanner. Zero values in config fall back to defaults.
func New(config Config) *Scanner {
	if config.BlockSize <= 0 {
		config.BlockSize = DefaultBlockSize
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.Retry.MaxRetries == 0 && config.Retry.InitialBackoff == 0 {
		config.Retry = filesystem.DefaultRetryConfig()
	}
	if config.Extensions == nil {
		config.Extensions = mediatypes.ExtensionSet{}
	}
	return &Scanner{config: config}
}

// Extensions returns the configured allow-list.
func (s *Scanner) Extensions() mediatypes.ExtensionSet {
	return s.config.Extensions
}

// ScanDirectory hashes every matching file below root, sorted by path.
func (s *Scanner) ScanDirectory(ctx context.Context, root string) ([]mediatypes.ScanRecord, error) {
	start := time.Now()
	root = mediatypes.NormalizePath(root)

	info, err := filesystem.StatWithRetry(root, s.config.Retry)
	if err != nil {
		metrics.ScannerRunsTotal.WithLabelValues("directory", "error").Inc()
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("scan %s: %w", root, mediatypes.ErrNotFound)
		}
		return nil, fmt.Errorf("scan %s: %w: %w", root, mediatypes.ErrIO, err)
	}
	if !info.IsDir() {
		metrics.ScannerRunsTotal.WithLabelValues("directory", "error").Inc()
		return nil, fmt.Errorf("scan %s: not a directory: %w", root, mediatypes.ErrInvalidInput)
	}

	var candidates []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			metrics.ScannerErrors.WithLabelValues("walk").Inc()
			logging.Warn("Skipping unreadable path %s: %v", path, walkErr)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !s.config.Extensions.Contains(d.Name()) {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 && !s.isRegular(path) {
			return nil
		}
		candidates = append(candidates, path)
		return nil
	})
	if err != nil {
		metrics.ScannerRunsTotal.WithLabelValues("directory", "error").Inc()
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("walk %s: %w: %w", root, mediatypes.ErrIO, err)
	}

	records, err := s.hashAll(ctx, candidates)
	if err != nil {
		metrics.ScannerRunsTotal.WithLabelValues("directory", "error").Inc()
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].FilePath() < records[j].FilePath()
	})

	metrics.ScannerRunsTotal.WithLabelValues("directory", "success").Inc()
	logging.Info("Scanned %s: %d matching files in %v", root, len(records), time.Since(start).Round(time.Millisecond))
	return records, nil
}

// ScanFiles hashes the given paths, skipping any that do not exist, are
// directories, or are not in the allow-list. Output follows input order.
func (s *Scanner) ScanFiles(ctx context.Context, paths []string) ([]mediatypes.ScanRecord, error) {
	seen := make(map[string]struct{}, len(paths))
	candidates := make([]string, 0, len(paths))

	for _, p := range paths {
		p = mediatypes.NormalizePath(p)
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}

		if !s.config.Extensions.Contains(p) {
			logging.Debug("Skipping %s: extension not in allow-list", p)
			continue
		}
		if !s.isRegular(p) {
			logging.Debug("Skipping %s: not an existing file", p)
			continue
		}
		candidates = append(candidates, p)
	}

	records, err := s.hashAll(ctx, candidates)
	if err != nil {
		metrics.ScannerRunsTotal.WithLabelValues("files", "error").Inc()
		return nil, err
	}

	metrics.ScannerRunsTotal.WithLabelValues("files", "success").Inc()
	logging.Debug("Scanned %d of %d listed files", len(records), len(paths))
	return records, nil
}

// isRegular reports whether path exists and is not a directory. Stat errors
// other than ESTALE exhaustion are treated as "does not exist".
func (s *Scanner) isRegular(path string) bool {
	info, err := filesystem.StatWithRetry(path, s.config.Retry)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			metrics.ScannerErrors.WithLabelValues("stat").Inc()
			logging.Warn("Cannot stat %s: %v", path, err)
		}
		return false
	}
	return !info.IsDir()
}

// hashAll hashes paths on the worker pool. records[i] always corresponds to
// paths[i].
func (s *Scanner) hashAll(parent context.Context, paths []string) ([]mediatypes.ScanRecord, error) {
	if len(paths) == 0 {
		return []mediatypes.ScanRecord{}, nil
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	records := make([]mediatypes.ScanRecord, len(paths))
	jobs := make(chan int)

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)

	numWorkers := min(s.config.Workers, len(paths))
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				rec, err := s.record(paths[i])
				if err != nil {
					errOnce.Do(func() {
						firstErr = err
						cancel()
					})
					continue
				}
				records[i] = rec
			}
		}()
	}

feed:
	for i := range paths {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := parent.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Scanner) record(path string) (mediatypes.ScanRecord, error) {
	hash, err := s.HashFile(path)
	if err != nil {
		return mediatypes.ScanRecord{}, err
	}
	return mediatypes.ScanRecord{
		ContentHash: hash,
		FileName:    filepath.Base(path),
		Extension:   filepath.Ext(path),
		Directory:   filepath.Dir(path),
		IndexedAt:   time.Now().UTC(),
	}, nil
}

// HashFile returns the hex MD5 of the file's bytes, read in BlockSize chunks.
// Any failure wraps mediatypes.ErrIO.
func (s *Scanner) HashFile(path string) (string, error) {
	start := time.Now()

	f, err := filesystem.OpenWithRetry(path, s.config.Retry)
	if err != nil {
		metrics.ScannerErrors.WithLabelValues("hash").Inc()
		return "", fmt.Errorf("hash %s: %w: %w", path, mediatypes.ErrIO, err)
	}
	defer f.Close()

	h := md5.New() //nolint:gosec // content identity
	buf := make([]byte, s.config.BlockSize)
	var total int64

	for {
		n, readErr := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
			total += int64(n)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			metrics.ScannerErrors.WithLabelValues("hash").Inc()
			return "", fmt.Errorf("hash %s: %w: %w", path, mediatypes.ErrIO, readErr)
		}
	}

	metrics.ScannerFilesHashed.Inc()
	metrics.ScannerBytesHashed.Add(float64(total))
	metrics.ScannerHashDuration.Observe(time.Since(start).Seconds())

	return hex.EncodeToString(h.Sum(nil)), nil
}

