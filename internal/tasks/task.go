package tasks

import (
	"context"
	"fmt"
	"time"
)

// Status is the lifecycle state of a Task.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusQueued    Status = "QUEUED"
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// Terminal reports whether no further transitions can happen.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// JobKind names a job variant. It doubles as the metrics label.
type JobKind string

const (
	KindScan          JobKind = "scan"
	KindImport        JobKind = "import"
	KindPreviewRepair JobKind = "preview_repair"
)

// Job is a unit of work handed to the Executor.
type Job interface {
	Kind() JobKind
	describe() (name, description string)
}

// ScanJob hashes every allowed file under Root and records it. When
// GeneratePreviews is set, previews are built for the scanned files that
// do not have one.
type ScanJob struct {
	Root             string `json:"root"`
	GeneratePreviews bool   `json:"generate_previews"`
}

func (ScanJob) Kind() JobKind { return KindScan }

func (j ScanJob) describe() (string, string) {
	return "scan directory", fmt.Sprintf("Scan %s", j.Root)
}

// ImportJob merges a metadata export into the catalog.
type ImportJob struct {
	MetadataPath string `json:"metadata_path"`
}

func (ImportJob) Kind() JobKind { return KindImport }

func (j ImportJob) describe() (string, string) {
	return "import metadata", fmt.Sprintf("Import metadata from %s", j.MetadataPath)
}

// PreviewRepairJob builds previews for every cataloged file missing one.
type PreviewRepairJob struct{}

func (PreviewRepairJob) Kind() JobKind { return KindPreviewRepair }

func (PreviewRepairJob) describe() (string, string) {
	return "repair previews", "Generate previews for files without one"
}

// Executor carries out a Job. The runner has no knowledge of what a job does.
type Executor interface {
	Execute(ctx context.Context, job Job) error
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, job Job) error

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, job Job) error { return f(ctx, job) }

// Task is a snapshot of a submitted job.
type Task struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Kind        JobKind    `json:"kind"`
	Status      Status     `json:"status"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	LastUpdated time.Time  `json:"last_updated"`
	Error       string     `json:"error,omitempty"`
	ErrorKind   string     `json:"error_kind,omitempty"`

	job Job
}
