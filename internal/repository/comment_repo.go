package repository

import (
	"context"
	"database/sql"

	"github.com/page-comments-api/internal/database"
	"github.com/page-comments-api/internal/models"
)

const commentColumns = `c.id, c.page_id, c.actor_id, c.username, c.parent_id, c.created_at,
	c.edited_at, c.wikitext, c.html, c.rating, c.deleted_actor`

// commentRepo is the concrete implementation of CommentRepository
type commentRepo struct {
	db *database.DB
}

// NewCommentRepo creates a new comment repository
func NewCommentRepo(db *database.DB) CommentRepository {
	return &commentRepo{db: db}
}

// Create inserts a new comment and assigns its id
func (r *commentRepo) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (page_id, actor_id, username, parent_id, created_at, edited_at,
			wikitext, html, rating, deleted_actor)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	var editedAt sql.NullTime
	if comment.EditedAt != nil {
		editedAt = sql.NullTime{Time: *comment.EditedAt, Valid: true}
	}
	return r.db.QueryRowContext(ctx, query,
		comment.PageID, nullInt64(comment.ActorID), nullString(comment.Username),
		nullInt64Ptr(comment.ParentID), comment.CreatedAt, editedAt,
		comment.Wikitext, comment.HTML, comment.Rating, nullInt64Ptr(comment.DeletedActor),
	).Scan(&comment.ID)
}

// GetByID retrieves a comment by ID
func (r *commentRepo) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments c WHERE c.id = $1`

	comment, err := scanComment(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// ExistingTimestamps returns the creation timestamps of a page's comments in export format
func (r *commentRepo) ExistingTimestamps(ctx context.Context, pageID int64) (map[string]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT created_at FROM comments WHERE page_id = $1`, pageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var createdAt sql.NullTime
		if err := rows.Scan(&createdAt); err != nil {
			return nil, err
		}
		if createdAt.Valid {
			set[models.FormatTimestamp(createdAt.Time)] = struct{}{}
		}
	}
	return set, rows.Err()
}

// Count returns the total number of comments
func (r *commentRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM comments").Scan(&count)
	return count, err
}

// StreamForExport streams comments joined with their page, ordered by page then id
func (r *commentRepo) StreamForExport(ctx context.Context, includeDeleted bool, callback func(*models.ExportRow) error) error {
	query := `
		SELECT ` + commentColumns + `, p.namespace, p.title, COALESCE(u.name, '')
		FROM comments c
		JOIN pages p ON p.id = c.page_id
		LEFT JOIN users u ON u.id = c.actor_id
	`
	if !includeDeleted {
		query += ` WHERE c.deleted_actor IS NULL`
	}
	query += ` ORDER BY c.page_id, c.id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var row models.ExportRow
		var actorID, parentID, deletedActor sql.NullInt64
		var username sql.NullString
		var editedAt sql.NullTime

		err := rows.Scan(
			&row.Comment.ID, &row.Comment.PageID, &actorID, &username, &parentID,
			&row.Comment.CreatedAt, &editedAt, &row.Comment.Wikitext, &row.Comment.HTML,
			&row.Comment.Rating, &deletedActor,
			&row.Page.Namespace, &row.Page.Title, &row.ActorName,
		)
		if err != nil {
			return err
		}
		fillComment(&row.Comment, actorID, username, parentID, editedAt, deletedActor)
		row.Page.ID = row.Comment.PageID

		if err := callback(&row); err != nil {
			return err
		}
	}

	return rows.Err()
}

func scanComment(row *sql.Row) (*models.Comment, error) {
	var comment models.Comment
	var actorID, parentID, deletedActor sql.NullInt64
	var username sql.NullString
	var editedAt sql.NullTime

	err := row.Scan(
		&comment.ID, &comment.PageID, &actorID, &username, &parentID,
		&comment.CreatedAt, &editedAt, &comment.Wikitext, &comment.HTML,
		&comment.Rating, &deletedActor,
	)
	if err != nil {
		return nil, err
	}
	fillComment(&comment, actorID, username, parentID, editedAt, deletedActor)
	return &comment, nil
}

func fillComment(c *models.Comment, actorID sql.NullInt64, username sql.NullString, parentID sql.NullInt64, editedAt sql.NullTime, deletedActor sql.NullInt64) {
	c.ActorID = actorID.Int64
	c.Username = username.String
	if parentID.Valid {
		id := parentID.Int64
		c.ParentID = &id
	}
	if editedAt.Valid {
		t := editedAt.Time
		c.EditedAt = &t
	}
	if deletedActor.Valid {
		d := deletedActor.Int64
		c.DeletedActor = &d
	}
}
