package jobs

import (
	"context"
	"time"
)

// JobType identifies the kind of work a job carries.
type JobType string

const (
	// JobTypeExportReport renders a period report and uploads the artifact.
	JobTypeExportReport JobType = "export_report"
)

// JobStatus is the lifecycle state of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// ExportReportJob asks the worker to build a report for a user and period,
// render it in the requested format and upload it to object storage.
type ExportReportJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// UserID is the owner the report is built for.
	UserID string `json:"user_id"`

	// Format is the artifact format: csv, xlsx or pdf.
	Format string `json:"format"`

	// StartDate and EndDate bound the reporting period, inclusive.
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`

	// ResultURI is the storage location of the rendered artifact, set once
	// the job completes.
	ResultURI string `json:"result_uri,omitempty"`

	Status JobStatus `json:"status"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains failure details for failed or retrying jobs.
	Error string `json:"error,omitempty"`

	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`
}

// Job is the generic view over all job types.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

func (j *ExportReportJob) GetID() string        { return j.JobID }
func (j *ExportReportJob) GetType() JobType     { return JobTypeExportReport }
func (j *ExportReportJob) GetStatus() JobStatus { return j.Status }

// Publisher enqueues jobs. The abstraction keeps the API server independent
// of the queue implementation (in-memory today, Cloud Tasks or Pub/Sub later).
type Publisher interface {
	// PublishExportReport enqueues a report export job.
	PublishExportReport(ctx context.Context, job *ExportReportJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer pulls jobs off a queue and hands them to a handler.
type Consumer interface {
	// Start begins consuming jobs; the handler is called for each job.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler processes one job. Returning an error marks the job for retry.
type JobHandler func(ctx context.Context, job Job) error

// JobStore persists job state so clients can poll for results.
type JobStore interface {
	SaveJob(ctx context.Context, job *ExportReportJob) error
	GetJob(ctx context.Context, jobID string) (*ExportReportJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*ExportReportJob, error)
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter narrows ListJobs results.
type JobFilter struct {
	// UserID filters jobs by owner.
	UserID string

	// Status filters jobs by lifecycle state.
	Status JobStatus

	Limit  int
	Offset int
}
