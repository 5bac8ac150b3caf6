package metrics

import (
	"os"
	"sync"
	"time"

	"footage-archive/internal/logging"
)

// StatsProvider interface for collecting stats
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the current catalog statistics
type Stats struct {
	Files           int
	FileDetails     int
	Keywords        int
	ClipPreviews    int
	MissingPreviews int
}

// Collector periodically collects catalog statistics and database file sizes.
type Collector struct {
	statsProvider StatsProvider
	dbPath        string
	interval      time.Duration
	stopChan      chan struct{}
	startOnce     sync.Once
	stopOnce      sync.Once
	started       bool
	done          chan struct{}
}

// NewCollector creates a new metrics collector. dbPath may be empty, in which
// case database file sizes are not reported.
func NewCollector(provider StatsProvider, dbPath string, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		dbPath:        dbPath,
		interval:      interval,
		stopChan:      make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	c.startOnce.Do(func() {
		c.started = true
		go c.collectLoop()
	})
}

// Stop stops the metrics collection and waits for the loop to exit.
func (c *Collector) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopChan)
	})
	if c.started {
		<-c.done
	}
}

func (c *Collector) collectLoop() {
	defer close(c.done)

	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	c.updateDBSize()

	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	CatalogRowsTotal.WithLabelValues("files").Set(float64(stats.Files))
	CatalogRowsTotal.WithLabelValues("file_details").Set(float64(stats.FileDetails))
	CatalogRowsTotal.WithLabelValues("keywords").Set(float64(stats.Keywords))
	CatalogRowsTotal.WithLabelValues("clip_previews").Set(float64(stats.ClipPreviews))
	CatalogMissingPreviews.Set(float64(stats.MissingPreviews))

	logging.Debug("Metrics collected: files=%d, details=%d, keywords=%d, previews=%d, missing=%d",
		stats.Files, stats.FileDetails, stats.Keywords, stats.ClipPreviews, stats.MissingPreviews)
}

func (c *Collector) updateDBSize() {
	if c.dbPath == "" {
		return
	}

	for label, path := range map[string]string{
		"main": c.dbPath,
		"wal":  c.dbPath + "-wal",
		"shm":  c.dbPath + "-shm",
	} {
		info, err := os.Stat(path)
		if err != nil {
			DBSizeBytes.WithLabelValues(label).Set(0)
			continue
		}
		DBSizeBytes.WithLabelValues(label).Set(float64(info.Size()))
	}
}
