package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	apperrors "github.com/recipe-book/recipe-book/pkg/util"
)

// RateLimitConfig caps requests per client address over a fixed window.
type RateLimitConfig struct {
	Max    int
	Window time.Duration
	// Storage shares counters between instances. Nil keeps them in memory.
	Storage fiber.Storage
}

// RateLimiter builds the limiter middleware for the recipe API.
func RateLimiter(cfg RateLimitConfig) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        cfg.Max,
		Expiration: cfg.Window,
		Storage:    cfg.Storage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return apperrors.NewRateLimited("Rate limit exceeded: too many requests")
		},
	})
}
