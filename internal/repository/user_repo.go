package repository

import (
	"context"
	"database/sql"

	"github.com/page-comments-api/internal/database"
	"github.com/page-comments-api/internal/models"
)

// userRepo is the concrete implementation of UserRepository
type userRepo struct {
	db *database.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *database.DB) UserRepository {
	return &userRepo{db: db}
}

// GetByID retrieves a user by ID
func (r *userRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.get(ctx, `SELECT id, name FROM users WHERE id = $1`, id)
}

// GetByName retrieves a user by exact account name
func (r *userRepo) GetByName(ctx context.Context, name string) (*models.User, error) {
	return r.get(ctx, `SELECT id, name FROM users WHERE name = $1`, name)
}

func (r *userRepo) get(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&user.ID, &user.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
