package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/recipe-book/recipe-book/internal/domain"
	"github.com/recipe-book/recipe-book/internal/persistence"
)

func newSQLiteDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	db, err := persistence.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, persistence.RunMigrations(ctx, db, goose.DialectSQLite3, zap.NewNop()))
	return db
}

func seedUser(t *testing.T, users UserRepository, username string) *domain.User {
	t.Helper()
	user := &domain.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		IsActive:     true,
	}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func seedRecipe(t *testing.T, recipes RecipeRepository, author *domain.User, headling string, pub time.Time) *domain.Recipe {
	t.Helper()
	recipe := &domain.Recipe{
		Headling: headling,
		Text:     "Mix everything and bake for twenty minutes.",
		PubDate:  pub,
		AuthorID: author.ID,
	}
	require.NoError(t, recipes.Create(context.Background(), recipe))
	return recipe
}

func TestSQLiteUserRepository(t *testing.T) {
	db := newSQLiteDB(t)
	users := NewSQLiteUserRepository(db)
	ctx := context.Background()

	alice := seedUser(t, users, "alice")
	assert.NotZero(t, alice.ID)
	assert.False(t, alice.CreatedAt.IsZero())

	got, err := users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.True(t, got.IsActive)
	assert.False(t, got.IsSuperuser)

	got, err = users.GetByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	_, err = users.GetByID(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	dup := &domain.User{Username: "alice", Email: "other@example.com", PasswordHash: "x"}
	assert.ErrorIs(t, users.Create(ctx, dup), ErrDuplicate)

	dup = &domain.User{Username: "other", Email: "alice@example.com", PasswordHash: "x"}
	assert.ErrorIs(t, users.Create(ctx, dup), ErrDuplicate)
}

func TestSQLiteRecipeRepositoryCRUD(t *testing.T) {
	db := newSQLiteDB(t)
	users := NewSQLiteUserRepository(db)
	recipes := NewSQLiteRecipeRepository(db)
	ctx := context.Background()

	author := seedUser(t, users, "chef")
	pub := time.Date(2024, 5, 1, 12, 30, 0, 123000, time.UTC)
	created := seedRecipe(t, recipes, author, "Tomato soup classic", pub)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "chef", created.AuthorUsername)

	got, err := recipes.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Headling, got.Headling)
	assert.Equal(t, created.Text, got.Text)
	assert.True(t, pub.Equal(got.PubDate), "pub date %v != %v", got.PubDate, pub)
	assert.Equal(t, author.ID, got.AuthorID)
	assert.Equal(t, "chef", got.AuthorUsername)

	got.Headling = "Tomato soup deluxe"
	got.Text = "Roast the tomatoes first."
	require.NoError(t, recipes.Update(ctx, got))
	updated, err := recipes.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tomato soup deluxe", updated.Headling)
	assert.True(t, pub.Equal(updated.PubDate))

	require.NoError(t, recipes.Delete(ctx, created.ID))
	_, err = recipes.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, recipes.Delete(ctx, created.ID), ErrNotFound)
	assert.ErrorIs(t, recipes.Update(ctx, got), ErrNotFound)
}

func TestSQLiteRecipeConstraints(t *testing.T) {
	db := newSQLiteDB(t)
	users := NewSQLiteUserRepository(db)
	recipes := NewSQLiteRecipeRepository(db)
	author := seedUser(t, users, "chef")

	short := &domain.Recipe{Headling: "short", Text: "long enough text", PubDate: time.Now(), AuthorID: author.ID}
	assert.Error(t, recipes.Create(context.Background(), short))

	orphan := &domain.Recipe{Headling: "Orphaned recipe", Text: "long enough text", PubDate: time.Now(), AuthorID: 42}
	assert.Error(t, recipes.Create(context.Background(), orphan))
}

func TestSQLiteRecipeCascadeOnAuthorDelete(t *testing.T) {
	db := newSQLiteDB(t)
	users := NewSQLiteUserRepository(db)
	recipes := NewSQLiteRecipeRepository(db)
	ctx := context.Background()

	author := seedUser(t, users, "chef")
	seedRecipe(t, recipes, author, "Short-lived pie", time.Now())

	_, err := db.ExecContext(ctx, `DELETE FROM recipes_user WHERE id=?`, author.ID)
	require.NoError(t, err)

	stats, err := recipes.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Count)
}

func TestSQLiteRecipeListing(t *testing.T) {
	db := newSQLiteDB(t)
	users := NewSQLiteUserRepository(db)
	recipes := NewSQLiteRecipeRepository(db)
	ctx := context.Background()

	author := seedUser(t, users, "chef")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 14; i++ {
		seedRecipe(t, recipes, author, fmt.Sprintf("Recipe number %02d", i), base.Add(time.Duration(i)*time.Hour))
	}
	seedRecipe(t, recipes, author, "100% Pure Butter Cake", base.Add(-time.Hour))
	seedRecipe(t, recipes, author, "Grandma's BUTTER cookies", base.Add(-2*time.Hour))

	stats, err := recipes.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, RecipeStats{Count: 16, MaxID: 16}, stats)

	latest, err := recipes.List(ctx, RecipeFilter{Order: OrderLatest, Limit: 3})
	require.NoError(t, err)
	require.Len(t, latest, 3)
	assert.Equal(t, "Recipe number 13", latest[0].Headling)
	assert.Equal(t, "Recipe number 11", latest[2].Headling)

	page2, err := recipes.List(ctx, RecipeFilter{Order: OrderLatest, Limit: 12, Offset: 12})
	require.NoError(t, err)
	require.Len(t, page2, 4)
	assert.Equal(t, "Grandma's BUTTER cookies", page2[3].Headling)

	butter := RecipeFilter{SearchTerm: "butter"}
	found, err := recipes.List(ctx, butter)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "100% Pure Butter Cake", found[0].Headling)
	count, err := recipes.Count(ctx, butter)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	literal, err := recipes.List(ctx, RecipeFilter{SearchTerm: "100%"})
	require.NoError(t, err)
	require.Len(t, literal, 1)

	wildcard, err := recipes.Count(ctx, RecipeFilter{SearchTerm: "%"})
	require.NoError(t, err)
	assert.Equal(t, 1, wildcard)

	none, err := recipes.List(ctx, RecipeFilter{SearchTerm: "pizza"})
	require.NoError(t, err)
	assert.Empty(t, none)

	offsetOnly, err := recipes.List(ctx, RecipeFilter{Offset: 15})
	require.NoError(t, err)
	require.Len(t, offsetOnly, 1)
	assert.True(t, strings.Contains(offsetOnly[0].Headling, "cookies"))

	third, err := recipes.GetNth(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), third.ID)
	_, err = recipes.GetNth(ctx, 16)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteSearchFoldsUnicodeCase(t *testing.T) {
	db := newSQLiteDB(t)
	users := NewSQLiteUserRepository(db)
	recipes := NewSQLiteRecipeRepository(db)
	ctx := context.Background()

	author := seedUser(t, users, "chef")
	seedRecipe(t, recipes, author, "Борщ по-украински", time.Now())
	seedRecipe(t, recipes, author, "Crème brûlée classique", time.Now())

	borscht, err := recipes.List(ctx, RecipeFilter{SearchTerm: "борщ"})
	require.NoError(t, err)
	require.Len(t, borscht, 1)
	assert.Equal(t, "Борщ по-украински", borscht[0].Headling)

	count, err := recipes.Count(ctx, RecipeFilter{SearchTerm: "CRÈME BRÛLÉE"})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
