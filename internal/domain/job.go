package domain

import "time"

// JobStatus represents the status of a processing job.
// Values include JobStatusPending, JobStatusStarted, JobStatusSuccess, and
// JobStatusFailure.
type JobStatus string

const (
	JobStatusPending JobStatus = "pending"
	JobStatusStarted JobStatus = "started"
	JobStatusSuccess JobStatus = "success"
	JobStatusFailure JobStatus = "failure"
)

// JobTypeExtractClaims is the only job type the orchestrator schedules today.
const JobTypeExtractClaims = "extract_claims"

// ProcessingJob tracks one extraction attempt for a document. At most one
// job per document is active (pending or started) at any time.
type ProcessingJob struct {
	ID         string    `gorm:"type:text;primaryKey" json:"id"`
	DocumentID string    `gorm:"type:text;not null;index:idx_processing_jobs_document" json:"document_id"`
	JobType    string    `gorm:"type:text;not null" json:"job_type"`
	Status     JobStatus `gorm:"type:text;index:idx_processing_jobs_status;default:pending" json:"status"`

	StartedAt    *time.Time `json:"started_at,omitempty"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	ErrorMessage string     `gorm:"type:text" json:"error_message,omitempty"`
	ClaimsFound  int        `gorm:"default:0" json:"claims_found"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for ProcessingJob.
func (ProcessingJob) TableName() string {
	return "processing_jobs"
}

// Active reports whether the job is still pending or running.
func (j *ProcessingJob) Active() bool {
	return j.Status == JobStatusPending || j.Status == JobStatusStarted
}
