package auth

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/recipe-book/recipe-book/internal/domain"
	"github.com/recipe-book/recipe-book/internal/repository"
	apperrors "github.com/recipe-book/recipe-book/pkg/util"
)

const userKey = "auth_user"

// CookieSettings describes the session cookie transport.
type CookieSettings struct {
	Name   string
	Secure bool
}

// Authenticator resolves the current user from the session cookie.
type Authenticator struct {
	tokens *TokenManager
	users  repository.UserRepository
	cookie CookieSettings
	logger *zap.Logger
}

// NewAuthenticator constructs middleware.
func NewAuthenticator(tokens *TokenManager, users repository.UserRepository, cookie CookieSettings, logger *zap.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, users: users, cookie: cookie, logger: logger}
}

// Handle attaches the current user when a valid session cookie is present.
// Requests without one continue anonymously.
func (a *Authenticator) Handle(c *fiber.Ctx) error {
	raw := c.Cookies(a.cookie.Name)
	if raw == "" {
		return c.Next()
	}

	session, err := a.tokens.ParseToken(raw)
	if err != nil {
		a.logger.Debug("rejected session cookie", zap.Error(err))
		return c.Next()
	}

	user, err := a.users.GetByID(c.UserContext(), session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Next()
		}
		return apperrors.MapError(err)
	}
	if !user.IsActive {
		return c.Next()
	}

	c.Locals(userKey, user)
	return c.Next()
}

// SetSession writes the session cookie.
func (a *Authenticator) SetSession(c *fiber.Ctx, token string, session domain.Session) {
	c.Cookie(&fiber.Cookie{
		Name:     a.cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
		Secure:   a.cookie.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearSession expires the session cookie.
func (a *Authenticator) ClearSession(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     a.cookie.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Secure:   a.cookie.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(c *fiber.Ctx) (*domain.User, bool) {
	user, ok := c.Locals(userKey).(*domain.User)
	return user, ok && user != nil
}

// OptionalUser returns the authenticated user or nil.
func OptionalUser(c *fiber.Ctx) *domain.User {
	user, _ := UserFromContext(c)
	return user
}
