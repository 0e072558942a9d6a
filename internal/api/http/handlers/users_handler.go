package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/recipe-book/recipe-book/internal/api/dto"
	"github.com/recipe-book/recipe-book/internal/auth"
	"github.com/recipe-book/recipe-book/internal/service"
	"github.com/recipe-book/recipe-book/internal/validation"
	apperrors "github.com/recipe-book/recipe-book/pkg/util"
)

// UsersHandler exposes account and session endpoints.
type UsersHandler struct {
	auth          *service.AuthService
	authenticator *auth.Authenticator
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, authenticator *auth.Authenticator) *UsersHandler {
	return &UsersHandler{auth: authService, authenticator: authenticator}
}

// Register handles POST /auth/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", []string{"body must be a JSON object"})
	}

	user, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewUserResponse(user))
}

// Login handles POST /auth/jwt/login with a form-encoded body.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var form dto.UserLoginForm
	if err := c.BodyParser(&form); err != nil {
		return apperrors.NewValidationError("invalid payload", []string{"username and password form fields are required"})
	}
	if form.Username == "" || form.Password == "" {
		return apperrors.NewValidationError("invalid credentials", validation.ValidateLogin(form.Username, form.Password))
	}

	res, err := h.auth.Login(c.UserContext(), form.Username, form.Password)
	if err != nil {
		return err
	}
	h.authenticator.SetSession(c, res.Token, res.Session)
	return c.SendStatus(http.StatusNoContent)
}

// Logout handles POST /auth/jwt/logout.
func (h *UsersHandler) Logout(c *fiber.Ctx) error {
	h.authenticator.ClearSession(c)
	return c.SendStatus(http.StatusNoContent)
}

// Me handles GET /api/users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(service.MsgUnauthorized)
	}
	return c.JSON(dto.NewUserResponse(user))
}
