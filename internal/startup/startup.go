package startup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"footage-archive/internal/logging"
	"footage-archive/internal/mediatypes"
	"footage-archive/internal/metadata"
	"footage-archive/internal/workers"

	"github.com/adrg/xdg"
	"github.com/gorilla/mux"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

const appName = "footage-archive"

// BuildInfo contains version and build information
type BuildInfo struct {
	Version     string `json:"version"`
	Commit      string `json:"commit"`
	BuildTime   string `json:"build_time"`
	ReleaseName string `json:"release_name"`
	GoVersion   string `json:"go_version"`
	OS          string `json:"os"`
	Arch        string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo(releaseName string) BuildInfo {
	return BuildInfo{
		Version:     Version,
		Commit:      Commit,
		BuildTime:   BuildTime,
		ReleaseName: releaseName,
		GoVersion:   GoVersion,
		OS:          runtime.GOOS,
		Arch:        runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// Config holds all application configuration
type Config struct {
	Host           string
	Port           string
	MetricsEnabled bool
	MetricsPort    string
	ReleaseName    string

	DatabasePath string
	Extensions   mediatypes.ExtensionSet
	ParsePolicy  metadata.ParsePolicy
	HashWorkers  int

	PreviewWorkDir string
	FrameWidth     int
	FrameHeight    int
	FramePadding   int
	FFmpegPath     string
	FFprobePath    string
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

// DefaultDatabasePath returns the catalog location under the XDG data home.
func DefaultDatabasePath() string {
	xdg.Reload()

	dataHome := xdg.DataHome
	if dataHome == "" {
		home := xdg.Home
		if home == "" {
			var err error
			home, err = os.UserHomeDir()
			if err != nil {
				return filepath.Join(os.TempDir(), appName, "footage_archive.sqlite")
			}
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	return filepath.Join(dataHome, appName, "footage_archive.sqlite")
}

// LoadConfig reads configuration from the environment and validates it.
// It does not log; call LogConfig for the startup banner.
func LoadConfig() (*Config, error) {
	policy, err := metadata.ParsePolicyFromString(getEnv("METADATA_PARSE_POLICY", string(metadata.SkipInvalidRows)))
	if err != nil {
		return nil, err
	}

	dbPath := getEnv("DB_PATH", "")
	if dbPath == "" {
		dbPath = DefaultDatabasePath()
	}
	dbPath, err = filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}

	config := &Config{
		Host:           getEnv("SERVER_HOST", "0.0.0.0"),
		Port:           getEnv("SERVER_PORT", "8051"),
		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
		MetricsPort:    getEnv("METRICS_PORT", "9090"),
		ReleaseName:    getEnv("RELEASE_NAME", "local"),
		DatabasePath:   dbPath,
		Extensions:     mediatypes.ParseExtensions(getEnv("SCANNING_FILE_EXTENSIONS", ".mov")),
		ParsePolicy:    policy,
		HashWorkers:    getEnvInt(workers.OverrideEnv, 0),
		PreviewWorkDir: getEnv("PREVIEW_WORK_DIR", filepath.Join(os.TempDir(), appName)),
		FrameWidth:     getEnvInt("PREVIEW_FRAME_WIDTH", 320),
		FrameHeight:    getEnvInt("PREVIEW_FRAME_HEIGHT", 180),
		FramePadding:   getEnvInt("PREVIEW_FRAME_PADDING", 10),
		FFmpegPath:     getEnv("FFMPEG_PATH", "ffmpeg"),
		FFprobePath:    getEnv("FFPROBE_PATH", "ffprobe"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the values LoadConfig cannot default its way around.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("%w: SERVER_PORT is empty", mediatypes.ErrInvalidInput)
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("%w: SERVER_PORT %q is not a number", mediatypes.ErrInvalidInput, c.Port)
	}
	if c.MetricsEnabled && c.MetricsPort == c.Port {
		return fmt.Errorf("%w: METRICS_PORT must differ from SERVER_PORT", mediatypes.ErrInvalidInput)
	}
	if len(c.Extensions) == 0 {
		return fmt.Errorf("%w: SCANNING_FILE_EXTENSIONS lists no extensions", mediatypes.ErrInvalidInput)
	}
	if c.FrameWidth <= 0 || c.FrameHeight <= 0 || c.FramePadding < 0 {
		return fmt.Errorf("%w: invalid preview geometry %dx%d padding %d",
			mediatypes.ErrInvalidInput, c.FrameWidth, c.FrameHeight, c.FramePadding)
	}
	return nil
}

// LogConfig prints the banner, system information and configuration.
func LogConfig(c *Config) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  SERVER_HOST:              %s", c.Host)
	logging.Info("  SERVER_PORT:              %s", c.Port)
	logging.Info("  METRICS_ENABLED:          %v", c.MetricsEnabled)
	logging.Info("  METRICS_PORT:             %s", c.MetricsPort)
	logging.Info("  RELEASE_NAME:             %s", c.ReleaseName)
	logging.Info("  DB_PATH:                  %s", c.DatabasePath)
	logging.Info("  SCANNING_FILE_EXTENSIONS: %s", strings.Join(c.Extensions.List(), ","))
	logging.Info("  METADATA_PARSE_POLICY:    %s", c.ParsePolicy)
	logging.Info("  PREVIEW_WORK_DIR:         %s", c.PreviewWorkDir)
	logging.Info("  PREVIEW_FRAME:            %dx%d padding %d", c.FrameWidth, c.FrameHeight, c.FramePadding)
	logging.Info("  FFMPEG_PATH:              %s", c.FFmpegPath)
	logging.Info("  FFPROBE_PATH:             %s", c.FFprobePath)
	if c.HashWorkers > 0 {
		logging.Info("  %s:             %d", workers.OverrideEnv, c.HashWorkers)
	}
	logging.Info("  LOG_LEVEL:                %s", logging.GetLevel())
}

// LogDatabaseInit logs database initialization
func LogDatabaseInit(duration time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DATABASE INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  [OK] Database initialized in %v", duration)
}

// LogToolCheck checks that the external tools can be run. Missing tools only
// produce warnings since scanning and importing work without them.
func LogToolCheck(ffmpegPath, ffprobePath string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("PREVIEW TOOLS")
	logging.Info("------------------------------------------------------------")

	for _, tool := range []string{ffmpegPath, ffprobePath} {
		if err := checkTool(tool); err != nil {
			logging.Warn("  %s check failed: %v", tool, err)
			logging.Warn("  Preview generation may not work correctly")
			continue
		}
		logging.Info("  [OK] %s is available", tool)
	}
}

// LogRunnerStarted logs that the task runner is accepting jobs.
func LogRunnerStarted() {
	logging.Info("  [OK] Task runner started")
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   route.GetName(),
			})
		}
		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered routes grouped by their first segment.
func LogHTTPRoutes(router *mux.Router) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	routes, err := GetRoutes(router)
	if err != nil {
		logging.Warn("error walking routes: %v", err)
	}

	groups := make(map[string][]RouteInfo)
	for _, route := range routes {
		prefix := getRouteGroup(route.Path)
		groups[prefix] = append(groups[prefix], route)
	}

	groupKeys := make([]string, 0, len(groups))
	for k := range groups {
		groupKeys = append(groupKeys, k)
	}
	sort.Strings(groupKeys)

	logging.Info("  Registered routes (%d total):", len(routes))
	for _, group := range groupKeys {
		logging.Info("  [%s]", group)
		for _, route := range groups[group] {
			logging.Info("    %-6s %s", route.Method, route.Path)
		}
	}
}

// getRouteGroup extracts a group name from a route path
func getRouteGroup(path string) string {
	path = strings.TrimPrefix(path, "/")
	first, _, _ := strings.Cut(path, "/")
	if first == "" {
		return "root"
	}
	return first
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Addr            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with all endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    API:           http://%s", config.Addr)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://0.0.0.0:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("    Metrics:       DISABLED")
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...any) {
	logging.Fatal(format, args...)
}

func printBanner() {
	banner := `
------------------------------------------------------------
  _____         _                              _     _
 |  ___|__  ___| |_ __ _  __ _  ___   __ _ _ __| |__ (_)_   _____
 | |_ / _ \/ _ \ __/ _' |/ _' |/ _ \ / _' | '__| '_ \| \ \ / / _ \
 |  _| (_) | (_) | || (_| | (_| |  __/| (_| | |  | | | | |\ V /  __/
 |_|  \___/ \___/\__\__,_|\__, |\___| \__,_|_|  |_| |_|_| \_/ \___|
                          |___/
------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if logging.IsDebugEnabled() {
		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}
		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func checkTool(name string) error {
	path, err := exec.LookPath(name)
	if err != nil {
		return fmt.Errorf("%s not found in PATH", name)
	}
	logging.Debug("  %s path: %s", name, path)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	output, err := exec.CommandContext(ctx, path, "-version").Output()
	if err != nil {
		return fmt.Errorf("failed to get %s version: %w", name, err)
	}

	if first, _, _ := strings.Cut(string(output), "\n"); first != "" {
		logging.Debug("  %s version: %s", name, strings.TrimSpace(first))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
