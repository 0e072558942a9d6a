package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/recipe-book/recipe-book/pkg/util"
)

// RequireUser rejects anonymous requests.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := UserFromContext(c); !ok {
			return apperrors.NewUnauthorized("Unauthorized")
		}
		return c.Next()
	}
}
