package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"footage-archive/internal/database"
	"footage-archive/internal/logging"
	"footage-archive/internal/metadata"
	"footage-archive/internal/pipeline"
	"footage-archive/internal/preview"
	"footage-archive/internal/scanner"
	"footage-archive/internal/startup"
)

type globalOptions struct {
	dbPath  string
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:          "archivectl",
		Short:        "archivectl - catalog footage into the archive database",
		Long:         "archivectl scans footage, imports metadata exports and builds preview strips in the same database the archive server uses.",
		SilenceUsage: true,
	}
	cmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		if opts.verbose {
			logging.SetLevel(logging.LevelDebug)
		}
	}

	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "Database path (default: DB_PATH or the XDG data directory)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newScanCmd(opts))
	cmd.AddCommand(newImportCmd(opts))
	cmd.AddCommand(newRepairCmd(opts))
	cmd.AddCommand(newMissingCmd(opts))
	cmd.AddCommand(newChecksumCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// app holds everything a catalog command needs.
type app struct {
	db       *database.Database
	pipeline *pipeline.Pipeline
}

// openApp loads the environment configuration, applies command-line
// overrides and opens the database.
func openApp(ctx context.Context, opts *globalOptions, policy string) (*app, error) {
	config, err := startup.LoadConfig()
	if err != nil {
		return nil, err
	}
	if opts.dbPath != "" {
		config.DatabasePath = opts.dbPath
	}
	if policy != "" {
		p, err := metadata.ParsePolicyFromString(policy)
		if err != nil {
			return nil, err
		}
		config.ParsePolicy = p
	}

	db, err := database.New(ctx, config.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

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
		_ = db.Close()
		return nil, err
	}

	p := pipeline.New(db, sc, gen, preview.FFprobe{Path: config.FFprobePath},
		pipeline.WithParsePolicy(config.ParsePolicy))
	return &app{db: db, pipeline: p}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		logging.Warn("Failed to close database: %v", err)
	}
}
