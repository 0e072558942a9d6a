package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"

	"github.com/recipe-book/recipe-book/internal/api/http/handlers"
	"github.com/recipe-book/recipe-book/internal/auth"
	"github.com/recipe-book/recipe-book/internal/web"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health        *handlers.HealthHandler
	Metrics       *handlers.MetricsHandler
	Recipes       *handlers.RecipesHandler
	Users         *handlers.UsersHandler
	Pages         *handlers.PagesHandler
	Authenticator *auth.Authenticator
	RateLimit     RateLimitConfig
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Metrics.Snapshot)

	app.Use("/static", filesystem.New(filesystem.Config{Root: web.Static()}))

	app.Use(cfg.Authenticator.Handle)

	// Authorization is decided by the service so that unknown ids
	// report NotFound before the caller's identity is checked.
	recipes := app.Group("/api/recipes", RateLimiter(cfg.RateLimit))
	recipes.Get("/", cfg.Recipes.GetRecipes)
	recipes.Post("/", cfg.Recipes.CreateRecipe)
	recipes.Put("/", cfg.Recipes.UpdateRecipe)
	recipes.Delete("/", cfg.Recipes.DeleteRecipe)

	app.Get("/api/users/me", auth.RequireUser(), cfg.Users.Me)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/jwt/login", cfg.Users.Login)
	authGroup.Post("/jwt/logout", auth.RequireUser(), cfg.Users.Logout)

	app.Get("/", cfg.Pages.Index)
	app.Get("/search/", cfg.Pages.Search)
	app.Get("/random/", cfg.Pages.Random)
	app.Get("/recipe/:id/", cfg.Pages.Recipe)
	app.Get("/create/", cfg.Pages.CreateForm)
	app.Post("/create/", cfg.Pages.Create)
	app.Get("/update/:id/", cfg.Pages.UpdateForm)
	app.Post("/update/:id/", cfg.Pages.Update)
	app.Get("/delete/:id/", cfg.Pages.Delete)
	app.Get("/register/", cfg.Pages.RegisterForm)
	app.Post("/register/", cfg.Pages.Register)
	app.Get("/login/", cfg.Pages.LoginForm)
	app.Post("/login/", cfg.Pages.Login)
	app.Get("/logout/", cfg.Pages.Logout)
}
