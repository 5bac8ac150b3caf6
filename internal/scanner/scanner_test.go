package scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"footage-archive/internal/mediatypes"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func newTestScanner(exts string) *Scanner {
	return New(Config{Extensions: mediatypes.ParseExtensions(exts), Workers: 3})
}

func TestHashFileKnownDigest(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "a.mov"), "hello")

	got, err := newTestScanner(".mov").HashFile(path)
	if err != nil {
		t.Fatalf("HashFile() error = %v", err)
	}
	if want := "5d41402abc4b2a76b9719d911017c592"; got != want {
		t.Errorf("HashFile() = %s, want %s", got, want)
	}
}

func TestHashIsPureFunctionOfContent(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, filepath.Join(dir, "one", "a.mov"), "identical bytes")
	b := writeFile(t, filepath.Join(dir, "two", "b.mov"), "identical bytes")
	c := writeFile(t, filepath.Join(dir, "c.mov"), "different bytes")

	s := newTestScanner(".mov")
	hashA, _ := s.HashFile(a)
	hashB, _ := s.HashFile(b)
	hashC, _ := s.HashFile(c)

	if hashA != hashB {
		t.Errorf("identical content hashed differently: %s vs %s", hashA, hashB)
	}
	if hashA == hashC {
		t.Errorf("different content of equal size produced the same hash %s", hashA)
	}
}

func TestHashIndependentOfBlockSize(t *testing.T) {
	content := make([]byte, 10_000)
	for i := range content {
		content[i] = byte(i % 251)
	}
	path := filepath.Join(t.TempDir(), "big.mov")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	small := New(Config{Extensions: mediatypes.ParseExtensions(".mov"), BlockSize: 7})
	large := New(Config{Extensions: mediatypes.ParseExtensions(".mov"), BlockSize: 1 << 16})

	h1, err := small.HashFile(path)
	if err != nil {
		t.Fatal(err)
	}
	h2, err := large.HashFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if h1 != h2 {
		t.Errorf("hash depends on block size: %s vs %s", h1, h2)
	}
}

func TestHashFileMissingIsIOFailure(t *testing.T) {
	_, err := newTestScanner(".mov").HashFile(filepath.Join(t.TempDir(), "gone.mov"))
	if !errors.Is(err, mediatypes.ErrIO) {
		t.Errorf("HashFile(missing) error = %v, want ErrIO", err)
	}
}

func TestScanDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "A001.mov"), "a")
	writeFile(t, filepath.Join(root, "day2", "B001.MOV"), "b")
	writeFile(t, filepath.Join(root, "day2", "deep", "C001.mov"), "c")
	writeFile(t, filepath.Join(root, "notes.txt"), "n")
	writeFile(t, filepath.Join(root, "day2", "D001.mp4"), "d")
	if err := os.MkdirAll(filepath.Join(root, "folder.mov"), 0o755); err != nil {
		t.Fatal(err)
	}

	records, err := newTestScanner(".mov").ScanDirectory(context.Background(), root)
	if err != nil {
		t.Fatalf("ScanDirectory() error = %v", err)
	}

	want := []string{
		filepath.Join(root, "A001.mov"),
		filepath.Join(root, "day2", "B001.MOV"),
		filepath.Join(root, "day2", "deep", "C001.mov"),
	}
	if len(records) != len(want) {
		t.Fatalf("got %d records, want %d: %+v", len(records), len(want), records)
	}
	for i, rec := range records {
		if rec.FilePath() != want[i] {
			t.Errorf("records[%d].FilePath() = %s, want %s", i, rec.FilePath(), want[i])
		}
		if rec.ContentHash == "" || rec.IndexedAt.IsZero() {
			t.Errorf("records[%d] incomplete: %+v", i, rec)
		}
	}
	if records[1].Extension != ".MOV" {
		t.Errorf("Extension = %q, want on-disk case .MOV", records[1].Extension)
	}
}

func TestScanDirectoryRejectsBadRoots(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, filepath.Join(dir, "a.mov"), "a")
	s := newTestScanner(".mov")

	tests := []struct {
		name string
		root string
		want error
	}{
		{"missing root", filepath.Join(dir, "nope"), mediatypes.ErrNotFound},
		{"file root", file, mediatypes.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.ScanDirectory(context.Background(), tt.root)
			if !errors.Is(err, tt.want) {
				t.Errorf("ScanDirectory() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestScanDirectoryEmpty(t *testing.T) {
	records, err := newTestScanner(".mov").ScanDirectory(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("ScanDirectory() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}

func TestScanDirectoryCanceled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.mov"), "a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newTestScanner(".mov").ScanDirectory(ctx, root); !errors.Is(err, context.Canceled) {
		t.Errorf("ScanDirectory() error = %v, want context.Canceled", err)
	}
}

func TestScanFiles(t *testing.T) {
	dir := t.TempDir()
	b := writeFile(t, filepath.Join(dir, "b.mov"), "b")
	a := writeFile(t, filepath.Join(dir, "a.mov"), "a")
	txt := writeFile(t, filepath.Join(dir, "a.txt"), "t")
	missing := filepath.Join(dir, "missing.mov")

	records, err := newTestScanner(".mov").ScanFiles(context.Background(), []string{b, missing, txt, dir, a, b})
	if err != nil {
		t.Fatalf("ScanFiles() error = %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("got %d records, want 2: %+v", len(records), records)
	}
	if records[0].FilePath() != b || records[1].FilePath() != a {
		t.Errorf("order not preserved: %s, %s", records[0].FilePath(), records[1].FilePath())
	}
}
