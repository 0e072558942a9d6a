package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/recipe-book/recipe-book/internal/domain"
)

const recipeColumns = `r.id, r.headling, r.text, r.pub_date, r.author_id, u.username`

type recipeRepository struct {
	db DBTX
}

// NewRecipeRepository returns a Postgres-backed implementation.
func NewRecipeRepository(db DBTX) RecipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) Create(ctx context.Context, recipe *domain.Recipe) error {
	const query = `
        WITH inserted AS (
            INSERT INTO recipe (headling, text, pub_date, author_id)
            VALUES ($1, $2, $3, $4)
            RETURNING id, author_id
        )
        SELECT inserted.id, u.username
        FROM inserted JOIN recipes_user u ON u.id = inserted.author_id`

	return mapPgError(r.db.QueryRow(ctx, query,
		recipe.Headling,
		recipe.Text,
		recipe.PubDate,
		recipe.AuthorID,
	).Scan(&recipe.ID, &recipe.AuthorUsername))
}

func (r *recipeRepository) Update(ctx context.Context, recipe *domain.Recipe) error {
	const query = `UPDATE recipe SET headling=$1, text=$2 WHERE id=$3`

	cmd, err := r.db.Exec(ctx, query, recipe.Headling, recipe.Text, recipe.ID)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *recipeRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM recipe WHERE id=$1`, id)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *recipeRepository) GetByID(ctx context.Context, id int64) (*domain.Recipe, error) {
	query := `SELECT ` + recipeColumns + `
        FROM recipe r JOIN recipes_user u ON u.id = r.author_id
        WHERE r.id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *recipeRepository) GetNth(ctx context.Context, n int64) (*domain.Recipe, error) {
	query := `SELECT ` + recipeColumns + `
        FROM recipe r JOIN recipes_user u ON u.id = r.author_id
        ORDER BY r.id ASC LIMIT 1 OFFSET $1`
	return r.fetchSingle(ctx, query, n)
}

func (r *recipeRepository) Stats(ctx context.Context) (RecipeStats, error) {
	var stats RecipeStats
	err := r.db.QueryRow(ctx, `SELECT COUNT(id), COALESCE(MAX(id), 0) FROM recipe`).
		Scan(&stats.Count, &stats.MaxID)
	return stats, mapPgError(err)
}

func (r *recipeRepository) List(ctx context.Context, filter RecipeFilter) ([]domain.Recipe, error) {
	where, args := pgWhere(filter)
	query := fmt.Sprintf(`SELECT %s
        FROM recipe r JOIN recipes_user u ON u.id = r.author_id
        %s ORDER BY %s`, recipeColumns, where, orderClause(filter.Order))
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()
	return scanRecipes(rows)
}

func (r *recipeRepository) Count(ctx context.Context, filter RecipeFilter) (int, error) {
	where, args := pgWhere(filter)
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(r.id) FROM recipe r `+where, args...).Scan(&count)
	return count, mapPgError(err)
}

func (r *recipeRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Recipe, error) {
	var recipe domain.Recipe
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&recipe.ID,
		&recipe.Headling,
		&recipe.Text,
		&recipe.PubDate,
		&recipe.AuthorID,
		&recipe.AuthorUsername,
	); err != nil {
		return nil, mapPgError(err)
	}
	return &recipe, nil
}

func pgWhere(filter RecipeFilter) (string, []any) {
	if filter.SearchTerm == "" {
		return "", nil
	}
	return `WHERE r.headling ILIKE $1 ESCAPE '\'`, []any{likePattern(filter.SearchTerm)}
}

func scanRecipes(rows pgx.Rows) ([]domain.Recipe, error) {
	var result []domain.Recipe
	for rows.Next() {
		var recipe domain.Recipe
		if err := rows.Scan(
			&recipe.ID,
			&recipe.Headling,
			&recipe.Text,
			&recipe.PubDate,
			&recipe.AuthorID,
			&recipe.AuthorUsername,
		); err != nil {
			return nil, err
		}
		result = append(result, recipe)
	}
	return result, rows.Err()
}
