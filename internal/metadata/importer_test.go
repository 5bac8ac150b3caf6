package metadata

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"footage-archive/internal/mediatypes"
)

const testHeader = "File Name,Clip Directory,Duration TC,Shot Frame Rate,Resolution,Video Codec,Keywords,Description,Scene,Take"

func writeExport(t *testing.T, utf16 bool, lines ...string) string {
	t.Helper()
	content := strings.Join(lines, "\r\n") + "\r\n"
	if utf16 {
		enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
		var err error
		content, _, err = transform.String(enc, content)
		if err != nil {
			t.Fatalf("encode utf-16: %v", err)
		}
	}
	path := filepath.Join(t.TempDir(), "export.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write export: %v", err)
	}
	return path
}

func TestOpenUTF16Export(t *testing.T) {
	path := writeExport(t, true,
		testHeader,
		`A001.mov,/footage/day1,00:00:30:12,23.976,1920x1080,Apple ProRes 422,"Action, Night , ",Chase,12,3`,
	)

	im, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	details, rowErrs, err := im.Details()
	if err != nil || len(rowErrs) != 0 {
		t.Fatalf("Details() = %v, %v", rowErrs, err)
	}
	if len(details) != 1 {
		t.Fatalf("got %d details, want 1", len(details))
	}

	d := details[0]
	if d.FilePath != filepath.Join("/footage/day1", "A001.mov") {
		t.Errorf("FilePath = %q", d.FilePath)
	}
	if d.Width != 1920 || d.Height != 1080 {
		t.Errorf("resolution = %dx%d, want 1920x1080", d.Width, d.Height)
	}
	if d.FrameRate != 23.976 || d.FrameRateVerbose != "23.976" {
		t.Errorf("frame rate = %v (%q)", d.FrameRate, d.FrameRateVerbose)
	}
	if d.DurationTC != "00:00:30:12" || d.VideoCodec != "Apple ProRes 422" || d.Scene != "12" || d.Take != "3" {
		t.Errorf("renamed columns not populated: %+v", d)
	}
	if d.ContentHash != "" {
		t.Errorf("ContentHash should be empty before the scan join, got %q", d.ContentHash)
	}

	var raw map[string]string
	if err := json.Unmarshal([]byte(d.RawJSON), &raw); err != nil {
		t.Fatalf("RawJSON is not valid JSON: %v", err)
	}
	if raw["File Name"] != "A001.mov" || raw["Description"] != "Chase" {
		t.Errorf("RawJSON missing cells: %v", raw)
	}
}

func TestParseUTF8WithoutBOM(t *testing.T) {
	input := testHeader + "\nB002.mov,/footage,00:00:05:00,25 fps,3840x2160,H.264,,,,\n"

	im, err := Parse(strings.NewReader(input), "inline")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	details, _, err := im.Details()
	if err != nil || len(details) != 1 {
		t.Fatalf("Details() = %d rows, %v", len(details), err)
	}
	if details[0].FrameRate != 25 {
		t.Errorf("FrameRate = %v, want 25", details[0].FrameRate)
	}

	var raw map[string]string
	if err := json.Unmarshal([]byte(details[0].RawJSON), &raw); err != nil {
		t.Fatal(err)
	}
	if _, ok := raw["Keywords"]; ok {
		t.Errorf("empty cells must be excluded from RawJSON: %v", raw)
	}
}

func TestKeywordDerivation(t *testing.T) {
	path := writeExport(t, true,
		testHeader,
		`A001.mov,/footage,00:00:30:00,25,1920x1080,,"Action, Night , ",,,`,
		`A001.mov,/footage,00:00:30:00,25,1920x1080,,"night,ACTION,Rain",,,`,
		`B001.mov,/footage,00:00:30:00,25,1920x1080,,"  ,",,,`,
	)

	im, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}

	got := im.Keywords()
	a := filepath.Join("/footage", "A001.mov")
	want := []mediatypes.Keyword{
		{FilePath: a, Keyword: "action"},
		{FilePath: a, Keyword: "night"},
		{FilePath: a, Keyword: "rain"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Keywords() = %+v, want %+v", got, want)
	}
}

func TestKeywordsSkipRejectedRows(t *testing.T) {
	path := writeExport(t, false,
		testHeader,
		`A001.mov,/footage,00:00:30:00,25,1920x1080,,good,,,`,
		`A001.mov,/footage,00:00:30:00,25,bogus,,rejected,,,`,
	)

	im, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, rowErrs, err := im.Details(); err != nil || len(rowErrs) != 1 {
		t.Fatalf("Details() = %v, %v", rowErrs, err)
	}

	want := []mediatypes.Keyword{{FilePath: filepath.Join("/footage", "A001.mov"), Keyword: "good"}}
	if got := im.Keywords(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keywords() = %+v, want %+v", got, want)
	}
}

func TestSplitKeywords(t *testing.T) {
	tests := []struct {
		field string
		want  []string
	}{
		{"Action, Night , ", []string{"action", "night"}},
		{"", nil},
		{" , ,", nil},
		{"Drone,drone, DRONE", []string{"drone"}},
		{"interview", []string{"interview"}},
	}

	for _, tt := range tests {
		if got := SplitKeywords(tt.field); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitKeywords(%q) = %v, want %v", tt.field, got, tt.want)
		}
	}
}

func TestParsePolicy(t *testing.T) {
	input := strings.Join([]string{
		testHeader,
		"good.mov,/footage,00:00:10:00,25,1920x1080,,,,,",
		"badres.mov,/footage,00:00:10:00,25,wide,,,,,",
		"badrate.mov,/footage,00:00:10:00,variable,1920x1080,,,,,",
		",/footage,00:00:10:00,25,1920x1080,,,,,",
	}, "\n")

	t.Run("skip drops bad rows", func(t *testing.T) {
		im, err := Parse(strings.NewReader(input), "inline", WithPolicy(SkipInvalidRows))
		if err != nil {
			t.Fatal(err)
		}
		details, rowErrs, err := im.Details()
		if err != nil {
			t.Fatalf("Details() error = %v", err)
		}
		if len(details) != 1 || filepath.Base(details[0].FilePath) != "good.mov" {
			t.Errorf("details = %+v, want only good.mov", details)
		}
		if len(rowErrs) != 3 {
			t.Fatalf("got %d row errors, want 3", len(rowErrs))
		}
		for _, re := range rowErrs {
			if !errors.Is(re, mediatypes.ErrParse) {
				t.Errorf("row error %v does not wrap ErrParse", re)
			}
		}
		if rowErrs[0].Line != 3 {
			t.Errorf("first row error line = %d, want 3", rowErrs[0].Line)
		}
	})

	t.Run("abort fails the import", func(t *testing.T) {
		im, err := Parse(strings.NewReader(input), "inline", WithPolicy(AbortOnInvalidRow))
		if err != nil {
			t.Fatal(err)
		}
		_, _, err = im.Details()
		if !errors.Is(err, mediatypes.ErrParse) {
			t.Errorf("Details() error = %v, want ErrParse", err)
		}
	})
}

func TestParsePolicyFromString(t *testing.T) {
	tests := []struct {
		in      string
		want    ParsePolicy
		wantErr bool
	}{
		{"", SkipInvalidRows, false},
		{"skip", SkipInvalidRows, false},
		{"ABORT", AbortOnInvalidRow, false},
		{"retry", "", true},
	}

	for _, tt := range tests {
		got, err := ParsePolicyFromString(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParsePolicyFromString(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Open(filepath.Join(dir, "missing.csv")); !errors.Is(err, mediatypes.ErrNotFound) {
		t.Errorf("Open(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := Open(dir); !errors.Is(err, mediatypes.ErrInvalidInput) {
		t.Errorf("Open(dir) error = %v, want ErrInvalidInput", err)
	}

	noCols := writeExport(t, false, "File Name,Clip Directory", "a.mov,/footage")
	if _, err := Open(noCols); !errors.Is(err, mediatypes.ErrParse) {
		t.Errorf("Open(missing columns) error = %v, want ErrParse", err)
	}

	empty := filepath.Join(dir, "empty.csv")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(empty); !errors.Is(err, mediatypes.ErrParse) {
		t.Errorf("Open(empty) error = %v, want ErrParse", err)
	}
}

func TestParseResolution(t *testing.T) {
	tests := []struct {
		in      string
		w, h    int
		wantErr bool
	}{
		{"1920x1080", 1920, 1080, false},
		{"3840 x 2160", 3840, 2160, false},
		{"1280X720", 1280, 720, false},
		{"", 0, 0, true},
		{"1920", 0, 0, true},
		{"0x1080", 0, 0, true},
		{"axb", 0, 0, true},
	}

	for _, tt := range tests {
		w, h, err := ParseResolution(tt.in)
		if (err != nil) != tt.wantErr || w != tt.w || h != tt.h {
			t.Errorf("ParseResolution(%q) = %d, %d, %v", tt.in, w, h, err)
		}
	}
}

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"23.976", 23.976, false},
		{"29.97 DF", 29.97, false},
		{"25", 25, false},
		{"50.", 50, false},
		{"", 0, true},
		{"fps 25", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseFrameRate(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFrameRate(%q) = %v, %v", tt.in, got, err)
		}
	}
}
