package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/recipe-book/recipe-book/internal/domain"
	"github.com/recipe-book/recipe-book/internal/repository"
)

type mockRecipeRepository struct {
	mock.Mock
}

func (m *mockRecipeRepository) Create(ctx context.Context, recipe *domain.Recipe) error {
	return m.Called(ctx, recipe).Error(0)
}

func (m *mockRecipeRepository) Update(ctx context.Context, recipe *domain.Recipe) error {
	return m.Called(ctx, recipe).Error(0)
}

func (m *mockRecipeRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRecipeRepository) GetByID(ctx context.Context, id int64) (*domain.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Recipe), args.Error(1)
}

func (m *mockRecipeRepository) GetNth(ctx context.Context, n int64) (*domain.Recipe, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Recipe), args.Error(1)
}

func (m *mockRecipeRepository) Stats(ctx context.Context) (repository.RecipeStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(repository.RecipeStats), args.Error(1)
}

func (m *mockRecipeRepository) List(ctx context.Context, filter repository.RecipeFilter) ([]domain.Recipe, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Recipe), args.Error(1)
}

func (m *mockRecipeRepository) Count(ctx context.Context, filter repository.RecipeFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
