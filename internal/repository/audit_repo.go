package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/page-comments-api/internal/database"
	"github.com/page-comments-api/internal/models"
)

// auditRepo is the concrete implementation of AuditRepository
type auditRepo struct {
	db *database.DB
}

// NewAuditRepo creates a new audit log repository
func NewAuditRepo(db *database.DB) AuditRepository {
	return &auditRepo{db: db}
}

// Insert appends an entry to the audit log
func (r *auditRepo) Insert(ctx context.Context, entry *models.AuditEntry) error {
	params, err := json.Marshal(entry.Params)
	if err != nil {
		return fmt.Errorf("failed to encode audit params: %w", err)
	}
	query := `
		INSERT INTO audit_log (log_type, action, performer_id, page_id, params, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id
	`
	return r.db.QueryRowContext(ctx, query,
		entry.Type, entry.Action, nullInt64(entry.PerformerID), nullInt64(entry.PageID), params,
	).Scan(&entry.ID)
}
