package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/recipe-book/recipe-book/internal/domain"
)

var (
	// ErrNotFound is returned when no row matches.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("record already exists")
)

// DBTX is the subset of pgxpool.Pool used by the Postgres repositories.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// RecipeOrder selects listing order.
type RecipeOrder int

const (
	// OrderByID lists recipes in storage order.
	OrderByID RecipeOrder = iota
	// OrderLatest lists the newest publications first.
	OrderLatest
)

// RecipeFilter captures listing parameters.
type RecipeFilter struct {
	// SearchTerm matches headlings case-insensitively as a literal substring.
	SearchTerm string
	Order      RecipeOrder
	Limit      int
	Offset     int
}

// RecipeStats summarizes the recipe table for random selection.
type RecipeStats struct {
	Count int64
	MaxID int64
}

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// RecipeRepository defines persistence access for recipes.
type RecipeRepository interface {
	Create(ctx context.Context, recipe *domain.Recipe) error
	Update(ctx context.Context, recipe *domain.Recipe) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Recipe, error)
	// GetNth returns the recipe at offset n in id order.
	GetNth(ctx context.Context, n int64) (*domain.Recipe, error)
	Stats(ctx context.Context) (RecipeStats, error)
	List(ctx context.Context, filter RecipeFilter) ([]domain.Recipe, error)
	Count(ctx context.Context, filter RecipeFilter) (int, error)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

func orderClause(order RecipeOrder) string {
	if order == OrderLatest {
		return "r.pub_date DESC, r.id DESC"
	}
	return "r.id ASC"
}
