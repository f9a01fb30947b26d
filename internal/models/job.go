package models

import (
	"time"
)

// JobStatus represents the status of an import job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// JobType represents the type of job
type JobType string

const (
	JobTypeImport JobType = "import"
)

// Job represents a comment import job
type Job struct {
	ID             string     `json:"job_id" db:"id"`
	Type           JobType    `json:"type" db:"type"`
	Status         JobStatus  `json:"status" db:"status"`
	IdempotencyKey string     `json:"idempotency_key,omitempty" db:"idempotency_key"`
	SkipExisting   bool       `json:"skip_existing" db:"skip_existing"`
	AttachUsers    bool       `json:"attach_users" db:"attach_users"`
	PerformerID    int64      `json:"performer_id" db:"performer_id"`
	PageCount      int        `json:"pages" db:"page_count"`
	ImportedCount  int        `json:"imported" db:"imported_count"`
	SkippedCount   int        `json:"skipped" db:"skipped_count"`
	FailedCount    int        `json:"failed" db:"failed_count"`
	DurationMs     int64      `json:"duration_ms,omitempty" db:"duration_ms"`
	ErrorMessage   string     `json:"error,omitempty" db:"error_message"`
	FilePath       string     `json:"-" db:"file_path"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	StartedAt      *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// ApplySummary copies import counts onto the job
func (j *Job) ApplySummary(s ImportSummary) {
	j.PageCount = s.Pages
	j.ImportedCount = s.Imported
	j.SkippedCount = s.Skipped
	j.FailedCount = s.Failed
}

// JobNotice is a human-readable progress notice emitted while importing
type JobNotice struct {
	Seq     int    `json:"seq"`
	Page    string `json:"page,omitempty"`
	Message string `json:"message"`
}

// JobResponse is the API response for job status
type JobResponse struct {
	Job
	Notices     []JobNotice `json:"notices,omitempty"`
	NoticeCount int         `json:"notice_count,omitempty"`
	NoticesURL  string      `json:"notices_url,omitempty"`
}

// ImportRequest represents an import job request
type ImportRequest struct {
	SkipExisting   bool   `json:"skip_existing" form:"skip_existing"`
	AttachUsers    bool   `json:"attach_users" form:"attach_users"`
	PerformerID    int64  `json:"-"` // From auth
	IdempotencyKey string `json:"-"` // From header
}
