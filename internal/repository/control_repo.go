package repository

import (
	"context"
	"database/sql"

	"github.com/page-comments-api/internal/database"
	"github.com/page-comments-api/internal/models"
)

// controlRepo is the concrete implementation of ControlRepository
type controlRepo struct {
	db *database.DB
}

// NewControlRepo creates a new control repository
func NewControlRepo(db *database.DB) ControlRepository {
	return &controlRepo{db: db}
}

// Get returns the override for a page, or nil when the page uses the default
func (r *controlRepo) Get(ctx context.Context, pageID int64) (*models.ControlOverride, error) {
	var raw int
	err := r.db.QueryRowContext(ctx,
		`SELECT restriction FROM comment_control WHERE page_id = $1`, pageID,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	status, err := models.ParseControlStatus(raw)
	if err != nil {
		return nil, err
	}
	return &models.ControlOverride{PageID: pageID, Status: status, Key: status.Key()}, nil
}

// Upsert stores an override; concurrent writers resolve as last write wins
func (r *controlRepo) Upsert(ctx context.Context, pageID int64, status models.ControlStatus) error {
	query := `
		INSERT INTO comment_control (page_id, restriction)
		VALUES ($1, $2)
		ON CONFLICT (page_id) DO UPDATE SET restriction = EXCLUDED.restriction
	`
	_, err := r.db.ExecContext(ctx, query, pageID, int(status))
	return err
}

// Delete removes the override of a page
func (r *controlRepo) Delete(ctx context.Context, pageID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM comment_control WHERE page_id = $1`, pageID)
	return err
}

// List returns every stored override ordered by page
func (r *controlRepo) List(ctx context.Context) ([]models.ControlOverride, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT page_id, restriction FROM comment_control ORDER BY page_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var overrides []models.ControlOverride
	for rows.Next() {
		var o models.ControlOverride
		var raw int
		if err := rows.Scan(&o.PageID, &raw); err != nil {
			return nil, err
		}
		status, err := models.ParseControlStatus(raw)
		if err != nil {
			continue
		}
		o.Status = status
		o.Key = status.Key()
		overrides = append(overrides, o)
	}
	return overrides, rows.Err()
}
