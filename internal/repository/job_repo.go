package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/page-comments-api/internal/database"
	"github.com/page-comments-api/internal/models"
)

const jobColumns = `id, type, status, idempotency_key, skip_existing, attach_users, performer_id,
	page_count, imported_count, skipped_count, failed_count, duration_ms, error_message,
	file_path, created_at, started_at, completed_at`

// jobRepo is the concrete implementation of JobRepository
type jobRepo struct {
	db *database.DB
}

// NewJobRepo creates a new job repository
func NewJobRepo(db *database.DB) JobRepository {
	return &jobRepo{db: db}
}

// Create inserts a new job
func (r *jobRepo) Create(ctx context.Context, job *models.Job) error {
	query := `
		INSERT INTO jobs (id, type, status, idempotency_key, skip_existing, attach_users,
			performer_id, file_path, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		job.ID, job.Type, job.Status, nullString(job.IdempotencyKey), job.SkipExisting,
		job.AttachUsers, nullInt64(job.PerformerID), nullString(job.FilePath), job.CreatedAt,
	)
	return err
}

// Update updates job status and counters
func (r *jobRepo) Update(ctx context.Context, job *models.Job) error {
	query := `
		UPDATE jobs SET
			status = $1, page_count = $2, imported_count = $3, skipped_count = $4,
			failed_count = $5, duration_ms = $6, error_message = $7, started_at = $8,
			completed_at = $9
		WHERE id = $10
	`
	_, err := r.db.ExecContext(ctx, query,
		job.Status, job.PageCount, job.ImportedCount, job.SkippedCount,
		job.FailedCount, job.DurationMs, nullString(job.ErrorMessage), job.StartedAt,
		job.CompletedAt, job.ID,
	)
	return err
}

// GetByID retrieves a job by ID
func (r *jobRepo) GetByID(ctx context.Context, id string) (*models.Job, error) {
	return r.get(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
}

// GetByIdempotencyKey retrieves a job by idempotency key
func (r *jobRepo) GetByIdempotencyKey(ctx context.Context, key string) (*models.Job, error) {
	return r.get(ctx, `SELECT `+jobColumns+` FROM jobs WHERE idempotency_key = $1`, key)
}

func (r *jobRepo) get(ctx context.Context, query string, arg any) (*models.Job, error) {
	var job models.Job
	var idempotencyKey, errorMessage, filePath sql.NullString
	var performerID sql.NullInt64
	var startedAt, completedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&job.ID, &job.Type, &job.Status, &idempotencyKey, &job.SkipExisting, &job.AttachUsers,
		&performerID, &job.PageCount, &job.ImportedCount, &job.SkippedCount, &job.FailedCount,
		&job.DurationMs, &errorMessage, &filePath, &job.CreatedAt, &startedAt, &completedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	job.IdempotencyKey = idempotencyKey.String
	job.ErrorMessage = errorMessage.String
	job.FilePath = filePath.String
	job.PerformerID = performerID.Int64
	if startedAt.Valid {
		job.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		job.CompletedAt = &completedAt.Time
	}

	return &job, nil
}

// GetPendingJobs retrieves all pending jobs
func (r *jobRepo) GetPendingJobs(ctx context.Context) ([]*models.Job, error) {
	query := `
		SELECT id, type, skip_existing, attach_users, performer_id, file_path, created_at
		FROM jobs WHERE status = 'pending'
		ORDER BY created_at
		FOR UPDATE SKIP LOCKED
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		var job models.Job
		var filePath sql.NullString
		var performerID sql.NullInt64
		err := rows.Scan(&job.ID, &job.Type, &job.SkipExisting, &job.AttachUsers,
			&performerID, &filePath, &job.CreatedAt)
		if err != nil {
			continue
		}
		job.FilePath = filePath.String
		job.PerformerID = performerID.Int64
		job.Status = models.JobStatusPending
		jobs = append(jobs, &job)
	}

	return jobs, rows.Err()
}

// MarkJobAsProcessing atomically marks a pending job as processing
func (r *jobRepo) MarkJobAsProcessing(ctx context.Context, jobID string) (bool, error) {
	query := `
		UPDATE jobs SET status = 'processing', started_at = $1
		WHERE id = $2 AND status = 'pending'
	`
	result, err := r.db.ExecContext(ctx, query, time.Now(), jobID)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// AddNotices appends progress notices using the COPY protocol
func (r *jobRepo) AddNotices(ctx context.Context, jobID string, notices []models.JobNotice) error {
	if len(notices) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("job_notices", "job_id", "seq", "page", "message"))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, n := range notices {
		if _, err := stmt.ExecContext(ctx, jobID, n.Seq, n.Page, n.Message); err != nil {
			return err
		}
	}

	// Flush the COPY buffer
	if _, err := stmt.ExecContext(ctx); err != nil {
		return err
	}

	return tx.Commit()
}

// GetNotices retrieves the notices of a job in emission order
func (r *jobRepo) GetNotices(ctx context.Context, jobID string, limit int) ([]models.JobNotice, error) {
	query := `SELECT seq, page, message FROM job_notices WHERE job_id = $1 ORDER BY seq`

	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = r.db.QueryContext(ctx, query+" LIMIT $2", jobID, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, query, jobID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notices []models.JobNotice
	for rows.Next() {
		var n models.JobNotice
		var page sql.NullString
		if err := rows.Scan(&n.Seq, &page, &n.Message); err != nil {
			return nil, err
		}
		n.Page = page.String
		notices = append(notices, n)
	}

	return notices, rows.Err()
}

// CountNotices returns the number of notices stored for a job
func (r *jobRepo) CountNotices(ctx context.Context, jobID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM job_notices WHERE job_id = $1`, jobID).Scan(&count)
	return count, err
}
