package repository

import (
	"context"
	"database/sql"

	"github.com/recipe-book/recipe-book/internal/domain"
)

type sqliteRecipeRepository struct {
	db *sql.DB
}

// NewSQLiteRecipeRepository returns a SQLite-backed implementation.
func NewSQLiteRecipeRepository(db *sql.DB) RecipeRepository {
	return &sqliteRecipeRepository{db: db}
}

func (r *sqliteRecipeRepository) Create(ctx context.Context, recipe *domain.Recipe) error {
	const query = `
        INSERT INTO recipe (headling, text, pub_date, author_id)
        VALUES (?, ?, ?, ?)
        RETURNING id`

	if err := r.db.QueryRowContext(ctx, query,
		recipe.Headling,
		recipe.Text,
		recipe.PubDate.UTC(),
		recipe.AuthorID,
	).Scan(&recipe.ID); err != nil {
		return mapSQLiteError(err)
	}

	err := r.db.QueryRowContext(ctx, `SELECT username FROM recipes_user WHERE id=?`, recipe.AuthorID).
		Scan(&recipe.AuthorUsername)
	return mapSQLiteError(err)
}

func (r *sqliteRecipeRepository) Update(ctx context.Context, recipe *domain.Recipe) error {
	res, err := r.db.ExecContext(ctx, `UPDATE recipe SET headling=?, text=? WHERE id=?`,
		recipe.Headling, recipe.Text, recipe.ID)
	if err != nil {
		return mapSQLiteError(err)
	}
	return requireAffected(res)
}

func (r *sqliteRecipeRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recipe WHERE id=?`, id)
	if err != nil {
		return mapSQLiteError(err)
	}
	return requireAffected(res)
}

func (r *sqliteRecipeRepository) GetByID(ctx context.Context, id int64) (*domain.Recipe, error) {
	query := `SELECT ` + recipeColumns + `
        FROM recipe r JOIN recipes_user u ON u.id = r.author_id
        WHERE r.id=?`
	return r.fetchSingle(ctx, query, id)
}

func (r *sqliteRecipeRepository) GetNth(ctx context.Context, n int64) (*domain.Recipe, error) {
	query := `SELECT ` + recipeColumns + `
        FROM recipe r JOIN recipes_user u ON u.id = r.author_id
        ORDER BY r.id ASC LIMIT 1 OFFSET ?`
	return r.fetchSingle(ctx, query, n)
}

func (r *sqliteRecipeRepository) Stats(ctx context.Context) (RecipeStats, error) {
	var stats RecipeStats
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(id), COALESCE(MAX(id), 0) FROM recipe`).
		Scan(&stats.Count, &stats.MaxID)
	return stats, mapSQLiteError(err)
}

func (r *sqliteRecipeRepository) List(ctx context.Context, filter RecipeFilter) ([]domain.Recipe, error) {
	where, args := sqliteWhere(filter)
	query := `SELECT ` + recipeColumns + `
        FROM recipe r JOIN recipes_user u ON u.id = r.author_id ` +
		where + ` ORDER BY ` + orderClause(filter.Order)
	if filter.Limit > 0 || filter.Offset > 0 {
		limit := filter.Limit
		if limit <= 0 {
			limit = -1
		}
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var result []domain.Recipe
	for rows.Next() {
		var recipe domain.Recipe
		if err := rows.Scan(
			&recipe.ID,
			&recipe.Headling,
			&recipe.Text,
			sqliteTime{&recipe.PubDate},
			&recipe.AuthorID,
			&recipe.AuthorUsername,
		); err != nil {
			return nil, err
		}
		result = append(result, recipe)
	}
	return result, rows.Err()
}

func (r *sqliteRecipeRepository) Count(ctx context.Context, filter RecipeFilter) (int, error) {
	where, args := sqliteWhere(filter)
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(r.id) FROM recipe r `+where, args...).Scan(&count)
	return count, mapSQLiteError(err)
}

func (r *sqliteRecipeRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Recipe, error) {
	var recipe domain.Recipe
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&recipe.ID,
		&recipe.Headling,
		&recipe.Text,
		sqliteTime{&recipe.PubDate},
		&recipe.AuthorID,
		&recipe.AuthorUsername,
	); err != nil {
		return nil, mapSQLiteError(err)
	}
	return &recipe, nil
}

// casefold matches Postgres ILIKE for non-ASCII headlings too.
func sqliteWhere(filter RecipeFilter) (string, []any) {
	if filter.SearchTerm == "" {
		return "", nil
	}
	return `WHERE casefold(r.headling) LIKE casefold(?) ESCAPE '\'`, []any{likePattern(filter.SearchTerm)}
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
