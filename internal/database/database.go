package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"footage-archive/internal/logging"
	"footage-archive/internal/metrics"

	_ "github.com/mattn/go-sqlite3"
)

const (
	defaultTimeout = 5 * time.Second
	writeTimeout   = 2 * time.Minute
)

// Database is the catalog store.
type Database struct {
	db     *sql.DB
	dbPath string
}

const schema = `
CREATE TABLE IF NOT EXISTS files (
	content_hash TEXT PRIMARY KEY,
	file_name    TEXT NOT NULL,
	extension    TEXT NOT NULL,
	directory    TEXT NOT NULL,
	indexed_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_files_directory ON files(directory, file_name);

CREATE TABLE IF NOT EXISTS file_details (
	content_hash       TEXT PRIMARY KEY,
	file_path          TEXT NOT NULL,
	duration_tc        TEXT,
	frame_rate_verbose TEXT,
	audio_sample_rate  TEXT,
	audio_channels     TEXT,
	resolution         TEXT,
	video_codec        TEXT,
	audio_codec        TEXT,
	description        TEXT,
	shot               TEXT,
	scene              TEXT,
	take               TEXT,
	angle              TEXT,
	move               TEXT,
	shot_type          TEXT,
	recorded_at        TEXT,
	bit_depth          TEXT,
	audio_bit_depth    TEXT,
	last_modified_at   TEXT,
	width              INTEGER,
	height             INTEGER,
	frame_rate         REAL,
	raw_json           TEXT
);

CREATE TABLE IF NOT EXISTS keywords (
	content_hash TEXT NOT NULL,
	keyword      TEXT NOT NULL,
	UNIQUE(content_hash, keyword)
);

CREATE INDEX IF NOT EXISTS idx_keywords_keyword ON keywords(keyword);

CREATE TABLE IF NOT EXISTS clip_previews (
	content_hash   TEXT PRIMARY KEY,
	frame_count    INTEGER NOT NULL,
	frame_height   INTEGER NOT NULL,
	frame_width    INTEGER NOT NULL,
	padding        INTEGER NOT NULL,
	overall_height INTEGER NOT NULL,
	overall_width  INTEGER NOT NULL,
	image_bytes    BLOB NOT NULL
);
`

// New opens (creating if needed) the catalog at dbPath and applies the schema.
func New(ctx context.Context, dbPath string) (*Database, error) {
	logging.Info("Database path: %s", dbPath)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	if err := diagnoseDatabasePermissions(dbPath); err != nil {
		logging.Warn("Database permission diagnostics: %v", err)
	}

	// _txlock=immediate takes the write lock at BEGIN so concurrent writers
	// wait on busy_timeout rather than failing on upgrade.
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on&_txlock=immediate", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(time.Hour)

	d := &Database{
		db:     db,
		dbPath: dbPath,
	}

	if err := d.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	logging.Info("Database initialized successfully at %s", dbPath)
	return d, nil
}

func (d *Database) initialize(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { recordQuery("initialize_schema", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx, schema)
	return err
}

// Path returns the database file path.
func (d *Database) Path() string {
	return d.dbPath
}

// Close closes the underlying connection pool.
func (d *Database) Close() error {
	return d.db.Close()
}

func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}

// diagnoseDatabasePermissions logs what it can find out about the database
// directory and files. Read-only WAL and SHM files are fixed in place.
func diagnoseDatabasePermissions(dbPath string) error {
	dir := filepath.Dir(dbPath)

	dirInfo, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot stat database directory: %w", err)
	}
	logging.Debug("Database directory: %s (mode: %v)", dir, dirInfo.Mode())

	testFile := filepath.Join(dir, ".perm-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		return fmt.Errorf("database directory not writable: %w", err)
	}
	_ = os.Remove(testFile)

	if dbInfo, err := os.Stat(dbPath); err == nil {
		logging.Debug("Database file exists: %s (mode: %v, size: %d bytes)", dbPath, dbInfo.Mode(), dbInfo.Size())
		if dbInfo.Mode().Perm()&0o200 == 0 {
			logging.Warn("Database file is read-only! Mode: %v", dbInfo.Mode())
		}
	}

	for _, sidecar := range []string{dbPath + "-wal", dbPath + "-shm"} {
		info, err := os.Stat(sidecar)
		if err != nil {
			continue
		}
		if info.Mode().Perm()&0o200 != 0 {
			continue
		}
		logging.Warn("%s is read-only (mode %v), writes will fail", filepath.Base(sidecar), info.Mode())
		if chmodErr := os.Chmod(sidecar, 0o600); chmodErr != nil {
			logging.Error("Failed to fix permissions on %s: %v", sidecar, chmodErr)
		} else {
			logging.Info("Fixed permissions on %s", sidecar)
		}
	}

	return nil
}
