package memory

import (
	"context"
	"errors"
	"testing"
	"time"
)

func envOf(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestConfigure(t *testing.T) {
	tests := []struct {
		name      string
		env       map[string]string
		runtime   int64
		wantSrc   LimitSource
		wantLimit int64
		wantSet   int64
	}{
		{
			name:    "nothing set",
			env:     map[string]string{},
			wantSrc: SourceNone,
		},
		{
			name:      "GOMEMLIMIT wins",
			env:       map[string]string{"GOMEMLIMIT": "512MiB", "MEMORY_LIMIT": "1073741824"},
			runtime:   512 << 20,
			wantSrc:   SourceGOMEMLIMIT,
			wantLimit: 512 << 20,
		},
		{
			name:      "container limit with default ratio",
			env:       map[string]string{"MEMORY_LIMIT": "1000"},
			wantSrc:   SourceMemoryLimit,
			wantLimit: 850,
			wantSet:   850,
		},
		{
			name:      "custom ratio",
			env:       map[string]string{"MEMORY_LIMIT": "1000", "MEMORY_RATIO": "0.5"},
			wantSrc:   SourceMemoryLimit,
			wantLimit: 500,
			wantSet:   500,
		},
		{
			name:      "ratio out of range falls back",
			env:       map[string]string{"MEMORY_LIMIT": "1000", "MEMORY_RATIO": "1.5"},
			wantSrc:   SourceMemoryLimit,
			wantLimit: 850,
			wantSet:   850,
		},
		{
			name:    "unparsable limit",
			env:     map[string]string{"MEMORY_LIMIT": "lots"},
			wantSrc: SourceNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var set int64
			setLimit := func(v int64) int64 {
				if v < 0 {
					return tt.runtime
				}
				set = v
				return 0
			}

			got := configure(envOf(tt.env), setLimit)
			if got.Source != tt.wantSrc || got.GoMemLimit != tt.wantLimit {
				t.Errorf("configure() = %+v, want source %s limit %d", got, tt.wantSrc, tt.wantLimit)
			}
			if set != tt.wantSet {
				t.Errorf("SetMemoryLimit(%d), want %d", set, tt.wantSet)
			}
			if got.Configured() != (tt.wantLimit > 0) {
				t.Errorf("Configured() = %v", got.Configured())
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{
		512:       "512 B",
		1536:      "1.5 KiB",
		850 << 20: "850.0 MiB",
		3 << 30:   "3.0 GiB",
	}
	for in, want := range tests {
		if got := FormatBytes(in); got != want {
			t.Errorf("FormatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}

func newTestMonitor(alloc *uint64) *Monitor {
	m := NewMonitor(Config{LimitBytes: 1000, HighWaterMark: 0.7, CriticalWaterMark: 0.85})
	m.sample = func() uint64 { return *alloc }
	return m
}

func TestMonitorPausesAndResumes(t *testing.T) {
	alloc := uint64(100)
	m := newTestMonitor(&alloc)

	m.check()
	if m.Paused() {
		t.Fatal("paused at 10%")
	}

	alloc = 900
	m.check()
	if !m.Paused() {
		t.Fatal("not paused at 90%")
	}

	done := make(chan error, 1)
	go func() { done <- m.Wait(context.Background()) }()

	select {
	case <-done:
		t.Fatal("Wait returned while paused")
	case <-time.After(20 * time.Millisecond):
	}

	alloc = 800
	m.check()
	if !m.Paused() {
		t.Error("resumed between the high and critical marks")
	}

	alloc = 500
	m.check()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Wait() = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after recovery")
	}
}

func TestMonitorWaitHonorsContext(t *testing.T) {
	alloc := uint64(950)
	m := newTestMonitor(&alloc)
	m.check()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := m.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() = %v, want deadline exceeded", err)
	}
}

func TestMonitorStopReleasesWaiters(t *testing.T) {
	alloc := uint64(950)
	m := newTestMonitor(&alloc)
	m.check()

	m.Stop()
	m.Stop()
	if err := m.Wait(context.Background()); err != nil {
		t.Errorf("Wait() after Stop = %v", err)
	}
}
