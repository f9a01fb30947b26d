package repository

import (
	"context"
	"database/sql"

	"github.com/page-comments-api/internal/database"
	"github.com/page-comments-api/internal/models"
)

// pageRepo is the concrete implementation of PageRepository
type pageRepo struct {
	db *database.DB
}

// NewPageRepo creates a new page repository
func NewPageRepo(db *database.DB) PageRepository {
	return &pageRepo{db: db}
}

// GetByID retrieves a page by ID
func (r *pageRepo) GetByID(ctx context.Context, id int64) (*models.Page, error) {
	return r.get(ctx, `SELECT id, namespace, title FROM pages WHERE id = $1`, id)
}

// GetByTitle retrieves a page by namespace and unprefixed title
func (r *pageRepo) GetByTitle(ctx context.Context, ns int, title string) (*models.Page, error) {
	return r.get(ctx, `SELECT id, namespace, title FROM pages WHERE namespace = $1 AND title = $2`, ns, title)
}

// Count returns the total number of pages
func (r *pageRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM pages").Scan(&count)
	return count, err
}

func (r *pageRepo) get(ctx context.Context, query string, args ...any) (*models.Page, error) {
	var page models.Page
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&page.ID, &page.Namespace, &page.Title)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &page, nil
}
