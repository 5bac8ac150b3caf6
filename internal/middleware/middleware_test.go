package middleware

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"footage-archive/internal/logging"
	"footage-archive/internal/metrics"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	prev := logging.GetLevel()
	logging.SetLevel(logging.LevelInfo)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		logging.SetLevel(prev)
	})
	return &buf
}

func TestResponseWriterKeepsFirstStatus(t *testing.T) {
	rw := newResponseWriter(httptest.NewRecorder())
	if rw.statusCode != http.StatusOK {
		t.Errorf("default status = %d, want 200", rw.statusCode)
	}

	rw.WriteHeader(http.StatusNotFound)
	rw.WriteHeader(http.StatusInternalServerError)
	if rw.statusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rw.statusCode)
	}

	n, err := rw.Write([]byte("missing"))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if rw.bytesWritten != int64(n) {
		t.Errorf("bytesWritten = %d, want %d", rw.bytesWritten, n)
	}
}

func TestSanitizeLogField(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "/tasks", "/tasks"},
		{"newline forging", "/tasks\n2026-01-01 fake", "/tasks 2026-01-01 fake"},
		{"carriage return", "a\rb", "a b"},
		{"ansi escape", "\x1b[31mred", "[31mred"},
		{"null byte", "a\x00b", "ab"},
		{"tab kept", "a\tb", "a\tb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeLogField(tt.in); got != tt.want {
				t.Errorf("sanitizeLogField(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoggerWritesW3CLine(t *testing.T) {
	buf := captureLog(t)

	handler := Logger(DefaultLoggingConfig())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"task_id":"x"}`))
	}))

	req := httptest.NewRequest(http.MethodPost, "/scanning/directory?dry=1", http.NoBody)
	req.Header.Set("User-Agent", "archivectl test")
	req.Header.Set("X-Forwarded-For", "10.0.0.7, 10.0.0.1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	line := buf.String()
	for _, want := range []string{"10.0.0.7 POST /scanning/directory dry=1 202 15", `"archivectl test"`} {
		if !strings.Contains(line, want) {
			t.Errorf("log line %q missing %q", line, want)
		}
	}
}

func TestLoggerSkips(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		config LoggingConfig
		logged bool
	}{
		{"regular request", "/tasks", DefaultLoggingConfig(), true},
		{"metrics endpoint", "/metrics", DefaultLoggingConfig(), false},
		{"health when disabled", "/health", DefaultLoggingConfig(), false},
		{"health when enabled", "/health", LoggingConfig{LogHealthChecks: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLog(t)
			handler := Logger(tt.config)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, http.NoBody))

			if got := buf.Len() > 0; got != tt.logged {
				t.Errorf("logged = %v, want %v (%q)", got, tt.logged, buf.String())
			}
		})
	}
}

func TestFormatW3CDefaults(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/tasks", http.NoBody)
	req.RemoteAddr = "192.168.1.5:41234"
	rw := newResponseWriter(httptest.NewRecorder())

	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	got := formatW3C(now, req, rw, 12*time.Millisecond)
	want := "2026-03-04 05:06:07 192.168.1.5 GET /tasks - 200 0 12 -"
	if got != want {
		t.Errorf("formatW3C() = %q, want %q", got, want)
	}
}

func TestEscapeW3CField(t *testing.T) {
	if got := escapeW3CField("curl/8.0"); got != "curl/8.0" {
		t.Errorf("escapeW3CField() = %q", got)
	}
	if got := escapeW3CField(`say "hi"`); got != `"say ""hi"""` {
		t.Errorf("escapeW3CField() = %q", got)
	}
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.Use(Metrics(DefaultMetricsConfig()))
	r.HandleFunc("/tasks/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/tasks/{id}", "404")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/tasks/"+id, http.NoBody))
	}

	if got := testutil.ToFloat64(counter) - before; got != 3 {
		t.Errorf("requests recorded under /tasks/{id} = %v, want 3", got)
	}
}

func TestNormalizePathWithoutRoute(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/previews/abc", http.NoBody)
	if got := normalizePath(req); got != "unmatched" {
		t.Errorf("normalizePath() = %q, want unmatched", got)
	}
}

func TestMetricsSkipPaths(t *testing.T) {
	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "200")
	before := testutil.ToFloat64(counter)

	handler := Metrics(DefaultMetricsConfig())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

	if got := testutil.ToFloat64(counter) - before; got != 0 {
		t.Errorf("skipped path recorded %v requests", got)
	}
}
