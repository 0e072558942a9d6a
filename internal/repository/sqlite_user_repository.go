package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/recipe-book/recipe-book/internal/domain"
)

type sqliteUserRepository struct {
	db *sql.DB
}

// NewSQLiteUserRepository returns a SQLite-backed implementation.
func NewSQLiteUserRepository(db *sql.DB) UserRepository {
	return &sqliteUserRepository{db: db}
}

func (r *sqliteUserRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO recipes_user (username, email, hashed_password, is_active, is_superuser, is_verified, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        RETURNING id`

	createdAt := time.Now().UTC()
	err := r.db.QueryRowContext(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.IsActive,
		user.IsSuperuser,
		user.IsVerified,
		createdAt,
	).Scan(&user.ID)
	if err != nil {
		return mapSQLiteError(err)
	}
	user.CreatedAt = createdAt
	return nil
}

func (r *sqliteUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	const query = `
        SELECT id, username, email, hashed_password, is_active, is_superuser, is_verified, created_at
        FROM recipes_user WHERE id=?`
	return r.fetchSingle(ctx, query, id)
}

func (r *sqliteUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
        SELECT id, username, email, hashed_password, is_active, is_superuser, is_verified, created_at
        FROM recipes_user WHERE lower(email)=lower(?)`
	return r.fetchSingle(ctx, query, email)
}

func (r *sqliteUserRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.IsActive,
		&user.IsSuperuser,
		&user.IsVerified,
		sqliteTime{&user.CreatedAt},
	); err != nil {
		return nil, mapSQLiteError(err)
	}
	return &user, nil
}
