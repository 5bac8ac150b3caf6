package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"footage-archive/internal/database"
	"footage-archive/internal/filesystem"
	"footage-archive/internal/handlers"
	"footage-archive/internal/logging"
	"footage-archive/internal/memory"
	"footage-archive/internal/metrics"
	"footage-archive/internal/middleware"
	"footage-archive/internal/pipeline"
	"footage-archive/internal/preview"
	"footage-archive/internal/scanner"
	"footage-archive/internal/startup"
	"footage-archive/internal/tasks"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	statsInterval   = time.Minute
	shutdownTimeout = 30 * time.Second
)

func main() {
	startTime := time.Now()

	memLimit := memory.ConfigureFromEnv()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}
	startup.LogConfig(config)

	metrics.InitializeMetrics()
	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion, config.ReleaseName)
	filesystem.SetObserver(metrics.NewFilesystemObserver())

	dbStart := time.Now()
	db, err := database.New(context.Background(), config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	startup.LogDatabaseInit(time.Since(dbStart))

	startup.LogToolCheck(config.FFmpegPath, config.FFprobePath)

	scanConfig := scanner.DefaultConfig(config.Extensions)
	if config.HashWorkers > 0 {
		scanConfig.Workers = config.HashWorkers
	}
	sc := scanner.New(scanConfig)

	previewConfig := preview.DefaultConfig()
	previewConfig.WorkDir = config.PreviewWorkDir
	previewConfig.FrameWidth = config.FrameWidth
	previewConfig.FrameHeight = config.FrameHeight
	previewConfig.Padding = config.FramePadding
	gen, err := preview.NewGenerator(preview.FFmpeg{Path: config.FFmpegPath}, previewConfig)
	if err != nil {
		startup.LogFatal("Failed to initialize preview generator: %v", err)
	}

	monitor := memory.NewMonitor(memory.DefaultConfig())
	monitor.Start()
	if memLimit.Configured() {
		logging.Info("  [OK] Memory monitor watching %s heap limit", memory.FormatBytes(memLimit.GoMemLimit))
	}

	pipe := pipeline.New(db, sc, gen, preview.FFprobe{Path: config.FFprobePath},
		pipeline.WithParsePolicy(config.ParsePolicy),
		pipeline.WithMemoryGate(monitor))

	runner := tasks.NewRunner(pipe)
	runner.Start(context.Background())
	startup.LogRunnerStarted()

	collector := metrics.NewCollector(db, config.DatabasePath, statsInterval)
	collector.Start()

	router := mux.NewRouter()
	router.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))
	handlers.New(db, runner, sc, config.ReleaseName).Register(router)
	startup.LogHTTPRoutes(router)

	srv := &http.Server{
		Addr:              config.Addr(),
		Handler:           middleware.Logger(middleware.DefaultLoggingConfig())(router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:              net.JoinHostPort(config.Host, config.MetricsPort),
			Handler:           metricsMux,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	done := make(chan struct{})
	go handleShutdown(srv, metricsSrv, runner, monitor, collector, db, done)

	startup.LogServerStarted(startup.ServerConfig{
		Addr:            config.Addr(),
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}
	<-done
}

// handleShutdown stops accepting requests first, then lets the running task
// finish, and closes the database last.
func handleShutdown(srv, metricsSrv *http.Server, runner *tasks.Runner, monitor *memory.Monitor, collector *metrics.Collector, db *database.Database, done chan<- struct{}) {
	defer close(done)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownStep("Stopping task runner")
	monitor.Stop()
	if err := runner.Stop(ctx); err != nil {
		logging.Warn("Task runner did not stop cleanly: %v", err)
	} else {
		startup.LogShutdownStepComplete("Task runner stopped")
	}

	startup.LogShutdownStep("Stopping metrics")
	collector.Stop()
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		}
	}
	startup.LogShutdownStepComplete("Metrics stopped")

	startup.LogShutdownStep("Closing database")
	if err := db.Close(); err != nil {
		logging.Warn("Database close error: %v", err)
	} else {
		startup.LogShutdownStepComplete("Database closed")
	}

	startup.LogShutdownComplete()
}
