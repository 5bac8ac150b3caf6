package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"footage-archive/internal/mediatypes"
	"footage-archive/internal/startup"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DB_PATH", filepath.Join(dir, "archive.sqlite"))
	t.Setenv("PREVIEW_WORK_DIR", filepath.Join(dir, "work"))
	t.Setenv("FFMPEG_PATH", filepath.Join(dir, "no-ffmpeg"))
	t.Setenv("FFPROBE_PATH", filepath.Join(dir, "no-ffprobe"))
	t.Setenv("SCANNING_FILE_EXTENSIONS", ".mov")
	t.Setenv("METADATA_PARSE_POLICY", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("METRICS_PORT", "")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFootage(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestScanThenListMissingPreviews(t *testing.T) {
	dir := setupEnv(t)
	footage := filepath.Join(dir, "footage")
	writeFootage(t, footage, map[string]string{
		"day1/a.mov": "alpha",
		"day1/b.MOV": "bravo",
		"notes.txt":  "ignored",
	})

	out, err := run(t, "scan", footage)
	if err != nil {
		t.Fatalf("scan error = %v", err)
	}
	if !strings.Contains(out, footage) {
		t.Errorf("scan output missing root:\n%s", out)
	}

	out, err = run(t, "missing-previews", "--format", "json")
	if err != nil {
		t.Fatalf("missing-previews error = %v", err)
	}
	var entries []missingOutputEntry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %+v, want 2", entries)
	}
	if entries[0].FilePath != filepath.Join(footage, "day1", "a.mov") {
		t.Errorf("first entry = %+v", entries[0])
	}

	table, err := run(t, "missing-previews")
	if err != nil {
		t.Fatalf("missing-previews table error = %v", err)
	}
	if !strings.Contains(table, entries[0].ContentHash) || !strings.Contains(strings.ToUpper(table), "TOTAL") {
		t.Errorf("table output:\n%s", table)
	}
}

func TestDBFlagOverridesEnvironment(t *testing.T) {
	dir := setupEnv(t)
	footage := filepath.Join(dir, "footage")
	writeFootage(t, footage, map[string]string{"a.mov": "alpha"})
	other := filepath.Join(dir, "other.sqlite")

	if _, err := run(t, "scan", footage, "--db", other); err != nil {
		t.Fatalf("scan error = %v", err)
	}
	if _, err := os.Stat(other); err != nil {
		t.Errorf("--db database not created: %v", err)
	}

	out, err := run(t, "missing-previews", "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("default database should be empty, got %s", out)
	}
}

func TestImportCommand(t *testing.T) {
	dir := setupEnv(t)
	footage := filepath.Join(dir, "footage")
	writeFootage(t, footage, map[string]string{"a.mov": "alpha"})
	csvPath := filepath.Join(dir, "export.csv")
	writeFootage(t, dir, map[string]string{
		"export.csv": "File Name,Clip Directory,Duration TC,Shot Frame Rate,Resolution,Keywords\n" +
			"a.mov," + footage + ",,25,1920x1080,\"sunset, beach\"\n" +
			"gone.mov," + footage + ",,25,1920x1080,\n",
	})

	out, err := run(t, "import", csvPath)
	if err != nil {
		t.Fatalf("import error = %v", err)
	}
	if !strings.Contains(out, "MATCHED") && !strings.Contains(out, "Matched") {
		t.Errorf("import output:\n%s", out)
	}
}

func TestImportRejectsUnknownPolicy(t *testing.T) {
	dir := setupEnv(t)
	csvPath := filepath.Join(dir, "export.csv")
	writeFootage(t, dir, map[string]string{"export.csv": "File Name,Clip Directory\n"})

	_, err := run(t, "import", csvPath, "--policy", "sometimes")
	if !errors.Is(err, mediatypes.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}

func TestScanRejectsMissingDirectory(t *testing.T) {
	dir := setupEnv(t)

	_, err := run(t, "scan", filepath.Join(dir, "nowhere"))
	if !errors.Is(err, mediatypes.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "archive.sqlite")); statErr == nil {
		t.Error("rejected scan should not create the database")
	}
}

func TestMissingPreviewsRejectsFormat(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "missing-previews", "--format", "xml")
	if err == nil || !strings.Contains(err.Error(), "invalid format") {
		t.Errorf("error = %v", err)
	}
}

func TestChecksumCommand(t *testing.T) {
	dir := setupEnv(t)
	writeFootage(t, dir, map[string]string{"hello.mov": "hello"})

	out, err := run(t, "checksum", filepath.Join(dir, "hello.mov"))
	if err != nil {
		t.Fatalf("checksum error = %v", err)
	}
	if !strings.HasPrefix(out, "5d41402abc4b2a76b9719d911017c592  ") {
		t.Errorf("output = %q", out)
	}

	if _, err := run(t, "checksum", dir); !errors.Is(err, mediatypes.ErrInvalidInput) {
		t.Errorf("checksum of directory error = %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var info startup.BuildInfo
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if info.Version != startup.Version || info.ReleaseName != "cli" {
		t.Errorf("info = %+v", info)
	}
}

func TestTruncateLeft(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"/short", 20, "/short"},
		{"/footage/day1/clip.mov", 12, ".../clip.mov"},
	}
	for _, tt := range tests {
		if got := truncateLeft(tt.in, tt.width); got != tt.want {
			t.Errorf("truncateLeft(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
