package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipe-book/recipe-book/internal/domain"
)

var recipeRowColumns = []string{"id", "headling", "text", "pub_date", "author_id", "username"}

func newPgMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func TestPgRecipeCreate(t *testing.T) {
	mock := newPgMock(t)
	repo := NewRecipeRepository(mock)
	pub := time.Now().UTC()

	mock.ExpectQuery(`INSERT INTO recipe \(headling, text, pub_date, author_id\)`).
		WithArgs("Lemon tart deluxe", "Zest the lemons first.", pub, int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "username"}).AddRow(int64(10), "chef"))

	recipe := &domain.Recipe{Headling: "Lemon tart deluxe", Text: "Zest the lemons first.", PubDate: pub, AuthorID: 3}
	require.NoError(t, repo.Create(context.Background(), recipe))
	assert.Equal(t, int64(10), recipe.ID)
	assert.Equal(t, "chef", recipe.AuthorUsername)
}

func TestPgRecipeGetByID(t *testing.T) {
	mock := newPgMock(t)
	repo := NewRecipeRepository(mock)
	pub := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM recipe r JOIN recipes_user u ON u.id = r.author_id\s+WHERE r.id=\$1`).
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows(recipeRowColumns).AddRow(int64(5), "Bean chili supreme", "Soak beans overnight.", pub, int64(2), "chef"))
	mock.ExpectQuery(`WHERE r.id=\$1`).
		WithArgs(int64(6)).
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "Bean chili supreme", got.Headling)
	assert.Equal(t, "chef", got.AuthorUsername)

	_, err = repo.GetByID(context.Background(), 6)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPgRecipeSearchListEscapesPattern(t *testing.T) {
	mock := newPgMock(t)
	repo := NewRecipeRepository(mock)

	mock.ExpectQuery(`WHERE r.headling ILIKE \$1 ESCAPE '\\' ORDER BY r.id ASC LIMIT \$2 OFFSET \$3`).
		WithArgs(`%50\% off%`, 12, 12).
		WillReturnRows(pgxmock.NewRows(recipeRowColumns))

	items, err := repo.List(context.Background(), RecipeFilter{SearchTerm: "50% off", Limit: 12, Offset: 12})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestPgRecipeLatestCount(t *testing.T) {
	mock := newPgMock(t)
	repo := NewRecipeRepository(mock)

	mock.ExpectQuery(`SELECT COUNT\(r.id\) FROM recipe r\s*$`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(14))

	count, err := repo.Count(context.Background(), RecipeFilter{Order: OrderLatest})
	require.NoError(t, err)
	assert.Equal(t, 14, count)
}

func TestPgRecipeUpdateDelete(t *testing.T) {
	mock := newPgMock(t)
	repo := NewRecipeRepository(mock)

	mock.ExpectExec(`UPDATE recipe SET headling=\$1, text=\$2 WHERE id=\$3`).
		WithArgs("New headling text", "New body text", int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`DELETE FROM recipe WHERE id=\$1`).
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, repo.Update(context.Background(), &domain.Recipe{ID: 1, Headling: "New headling text", Text: "New body text"}))
	assert.ErrorIs(t, repo.Delete(context.Background(), 1), ErrNotFound)
}

func TestPgRecipeStats(t *testing.T) {
	mock := newPgMock(t)
	repo := NewRecipeRepository(mock)

	mock.ExpectQuery(`SELECT COUNT\(id\), COALESCE\(MAX\(id\), 0\) FROM recipe`).
		WillReturnRows(pgxmock.NewRows([]string{"count", "max"}).AddRow(int64(4), int64(9)))

	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RecipeStats{Count: 4, MaxID: 9}, stats)
}

func TestPgUserCreateDuplicate(t *testing.T) {
	mock := newPgMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(`INSERT INTO recipes_user`).
		WithArgs("alice", "alice@example.com", "hash", true, false, false).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &domain.User{Username: "alice", Email: "alice@example.com", PasswordHash: "hash", IsActive: true})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestPgUserGetByEmail(t *testing.T) {
	mock := newPgMock(t)
	repo := NewUserRepository(mock)
	created := time.Now().UTC()

	mock.ExpectQuery(`FROM recipes_user WHERE lower\(email\)=lower\(\$1\)`).
		WithArgs("alice@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "email", "hashed_password", "is_active", "is_superuser", "is_verified", "created_at"}).
			AddRow(int64(1), "alice", "alice@example.com", "hash", true, false, false, created))
	mock.ExpectQuery(`FROM recipes_user WHERE id=\$1`).
		WithArgs(int64(2)).
		WillReturnError(errors.New("connection reset"))

	user, err := repo.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)

	_, err = repo.GetByID(context.Background(), 2)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
