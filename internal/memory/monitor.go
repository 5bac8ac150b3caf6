package memory

import (
	"context"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"footage-archive/internal/logging"
	"footage-archive/internal/metrics"
)

// Config holds monitor thresholds as fractions of the limit.
type Config struct {
	// LimitBytes overrides the runtime's GOMEMLIMIT when non-zero.
	LimitBytes        int64
	HighWaterMark     float64
	CriticalWaterMark float64
	CheckInterval     time.Duration
}

// DefaultConfig pauses at 85% and resumes under 70%.
func DefaultConfig() Config {
	return Config{
		HighWaterMark:     0.7,
		CriticalWaterMark: 0.85,
		CheckInterval:     5 * time.Second,
	}
}

// Monitor samples heap usage and pauses Wait callers under pressure. A
// Monitor without a limit never pauses.
type Monitor struct {
	config  Config
	limit   int64
	sample  func() uint64
	stopped chan struct{}
	once    sync.Once

	mu      sync.Mutex
	paused  bool
	resumed chan struct{}
}

// NewMonitor creates a Monitor for the configured or runtime heap limit.
func NewMonitor(config Config) *Monitor {
	limit := config.LimitBytes
	if limit == 0 {
		if l := debug.SetMemoryLimit(-1); l > 0 && l < 1<<62 {
			limit = l
		}
	}
	if limit == 0 {
		logging.Debug("Memory monitor: no limit configured, previews are never paused")
	}
	return &Monitor{
		config:  config,
		limit:   limit,
		sample:  heapAlloc,
		stopped: make(chan struct{}),
	}
}

func heapAlloc() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.Alloc
}

// Start begins sampling in the background.
func (m *Monitor) Start() {
	if m.limit == 0 || m.config.CheckInterval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(m.config.CheckInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.check()
			case <-m.stopped:
				return
			}
		}
	}()
}

// Stop ends sampling and releases any waiters.
func (m *Monitor) Stop() {
	m.once.Do(func() {
		close(m.stopped)
		m.setPaused(false)
	})
}

func (m *Monitor) check() {
	alloc := m.sample()
	usage := float64(alloc) / float64(m.limit)
	metrics.MemoryUsageRatio.Set(usage)

	switch {
	case usage >= m.config.CriticalWaterMark:
		if m.setPaused(true) {
			logging.Warn("Memory critical (%.1f%% of %s), pausing preview generation",
				usage*100, FormatBytes(m.limit))
			metrics.MemoryGCPauses.Inc()
			go runtime.GC()
		}
	case usage < m.config.HighWaterMark:
		if m.setPaused(false) {
			logging.Info("Memory recovered (%.1f%% of limit), resuming preview generation", usage*100)
		}
	}
}

// setPaused reports whether the state changed.
func (m *Monitor) setPaused(paused bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.paused == paused {
		return false
	}
	m.paused = paused
	if paused {
		m.resumed = make(chan struct{})
		metrics.MemoryPaused.Set(1)
	} else {
		close(m.resumed)
		metrics.MemoryPaused.Set(0)
	}
	return true
}

// Paused reports whether Wait would block.
func (m *Monitor) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

// Wait blocks while memory is critical. It returns ctx.Err() if ctx ends
// first.
func (m *Monitor) Wait(ctx context.Context) error {
	m.mu.Lock()
	if !m.paused {
		m.mu.Unlock()
		return nil
	}
	resumed := m.resumed
	m.mu.Unlock()

	select {
	case <-resumed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
