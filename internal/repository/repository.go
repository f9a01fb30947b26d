package repository

import (
	"context"
	"database/sql"

	"github.com/page-comments-api/internal/database"
	"github.com/page-comments-api/internal/models"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id int64) (*models.Comment, error)
	ExistingTimestamps(ctx context.Context, pageID int64) (map[string]struct{}, error)
	Count(ctx context.Context) (int, error)
	StreamForExport(ctx context.Context, includeDeleted bool, callback func(*models.ExportRow) error) error
}

// PageRepository defines the interface for page lookups
type PageRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Page, error)
	GetByTitle(ctx context.Context, ns int, title string) (*models.Page, error)
	Count(ctx context.Context) (int, error)
}

// UserRepository defines the interface for account lookups
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByName(ctx context.Context, name string) (*models.User, error)
}

// ControlRepository defines the interface for per-page comment control overrides
type ControlRepository interface {
	Get(ctx context.Context, pageID int64) (*models.ControlOverride, error)
	Upsert(ctx context.Context, pageID int64, status models.ControlStatus) error
	Delete(ctx context.Context, pageID int64) error
	List(ctx context.Context) ([]models.ControlOverride, error)
}

// AuditRepository defines the interface for the administrative log
type AuditRepository interface {
	Insert(ctx context.Context, entry *models.AuditEntry) error
}

// JobRepository defines the interface for job data operations
type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	Update(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id string) (*models.Job, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*models.Job, error)
	GetPendingJobs(ctx context.Context) ([]*models.Job, error)
	MarkJobAsProcessing(ctx context.Context, jobID string) (bool, error)
	AddNotices(ctx context.Context, jobID string, notices []models.JobNotice) error
	GetNotices(ctx context.Context, jobID string, limit int) ([]models.JobNotice, error)
	CountNotices(ctx context.Context, jobID string) (int, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Comment CommentRepository
	Page    PageRepository
	User    UserRepository
	Control ControlRepository
	Audit   AuditRepository
	Job     JobRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Comment: NewCommentRepo(db),
		Page:    NewPageRepo(db),
		User:    NewUserRepo(db),
		Control: NewControlRepo(db),
		Audit:   NewAuditRepo(db),
		Job:     NewJobRepo(db),
	}
}

// helper to convert empty string to NULL
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// helper to convert a zero id to NULL
func nullInt64(v int64) sql.NullInt64 {
	if v == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: v, Valid: true}
}

func nullInt64Ptr(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
