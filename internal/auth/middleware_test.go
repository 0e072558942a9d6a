package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/recipe-book/recipe-book/internal/domain"
	"github.com/recipe-book/recipe-book/internal/repository"
)

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

func newTestApp(t *testing.T, users *mockUserRepository) (*fiber.App, *TokenManager) {
	t.Helper()
	tm := NewTokenManager("secret", time.Hour)
	authn := NewAuthenticator(tm, users, CookieSettings{Name: "recipesauth"}, zap.NewNop())

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(http.StatusUnauthorized).SendString(err.Error())
		},
	})
	app.Use(authn.Handle)
	app.Get("/whoami", func(c *fiber.Ctx) error {
		if user := OptionalUser(c); user != nil {
			return c.SendString(user.Username)
		}
		return c.SendString("anonymous")
	})
	app.Get("/private", RequireUser(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Post("/login", func(c *fiber.Ctx) error {
		token, session, err := tm.GenerateToken(1)
		if err != nil {
			return err
		}
		authn.SetSession(c, token, session)
		return c.SendStatus(http.StatusNoContent)
	})
	app.Post("/logout", func(c *fiber.Ctx) error {
		authn.ClearSession(c)
		return c.SendStatus(http.StatusNoContent)
	})
	return app, tm
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	buf := make([]byte, 256)
	n, _ := resp.Body.Read(buf)
	return string(buf[:n])
}

func TestAuthenticatorResolvesCookie(t *testing.T) {
	users := new(mockUserRepository)
	app, tm := newTestApp(t, users)
	users.On("GetByID", mock.Anything, int64(1)).Return(&domain.User{ID: 1, Username: "chef", IsActive: true}, nil)

	token, _, err := tm.GenerateToken(1)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: "recipesauth", Value: token})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "chef", body(t, resp))

	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: "recipesauth", Value: token})
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	users.AssertExpectations(t)
}

func TestAuthenticatorAnonymous(t *testing.T) {
	users := new(mockUserRepository)
	app, _ := newTestApp(t, users)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/whoami", nil))
	require.NoError(t, err)
	assert.Equal(t, "anonymous", body(t, resp))

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: "recipesauth", Value: "garbage"})
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "anonymous", body(t, resp))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/private", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestAuthenticatorIgnoresMissingOrInactiveUsers(t *testing.T) {
	users := new(mockUserRepository)
	app, tm := newTestApp(t, users)
	users.On("GetByID", mock.Anything, int64(1)).Return(nil, repository.ErrNotFound).Once()
	users.On("GetByID", mock.Anything, int64(1)).Return(&domain.User{ID: 1, Username: "chef"}, nil).Once()

	token, _, err := tm.GenerateToken(1)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.AddCookie(&http.Cookie{Name: "recipesauth", Value: token})
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, "anonymous", body(t, resp))
	}
	users.AssertExpectations(t)
}

func TestSessionCookieLifecycle(t *testing.T) {
	app, _ := newTestApp(t, new(mockUserRepository))

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
	require.NoError(t, err)
	cookies := resp.Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "recipesauth", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.NotEmpty(t, cookies[0].Value)

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/logout", nil))
	require.NoError(t, err)
	cookies = resp.Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
}
