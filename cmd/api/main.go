package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httptransport "github.com/recipe-book/recipe-book/internal/api/http"
	"github.com/recipe-book/recipe-book/internal/api/http/handlers"
	"github.com/recipe-book/recipe-book/internal/auth"
	"github.com/recipe-book/recipe-book/internal/config"
	"github.com/recipe-book/recipe-book/internal/events"
	"github.com/recipe-book/recipe-book/internal/observability"
	"github.com/recipe-book/recipe-book/internal/persistence"
	"github.com/recipe-book/recipe-book/internal/repository"
	"github.com/recipe-book/recipe-book/internal/service"
	"github.com/recipe-book/recipe-book/internal/web"
	"github.com/recipe-book/recipe-book/internal/worker"
)

const shutdownTimeout = 10 * time.Second

// storage is the selected relational backend.
type storage struct {
	users   repository.UserRepository
	recipes repository.RecipeRepository
	pinger  handlers.Pinger
	close   func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer store.close()

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	dispatcher := events.NewInMemoryDispatcher()
	recipeService := service.NewRecipeService(service.RecipeDependencies{
		RecipeRepo: store.recipes,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{UserRepo: store.users})
	worker.StartActivityWorker(service.NewActivityService(dispatcher, logger))

	authenticator := auth.NewAuthenticator(authService.TokenManager(), store.users, auth.CookieSettings{
		Name:   cfg.Auth.CookieName,
		Secure: cfg.Auth.CookieSecure,
	}, logger)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		Views:        web.NewEngine(),
		ErrorHandler: httptransport.ErrorHandler(logger, metrics),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	rateLimit := httptransport.RateLimitConfig{
		Max:     cfg.RateLimit.Max,
		Window:  cfg.RateLimit.Window(),
		Storage: redis.LimiterStorage(),
	}

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:        handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, cfg.Storage.Driver, store.pinger, redis),
		Metrics:       handlers.NewMetricsHandler(metrics),
		Recipes:       handlers.NewRecipesHandler(recipeService),
		Users:         handlers.NewUsersHandler(authService, authenticator),
		Pages:         handlers.NewPagesHandler(recipeService, authService, authenticator, logger),
		Authenticator: authenticator,
		RateLimit:     rateLimit,
	})

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("storage", cfg.Storage.Driver))
		return app.Listen(cfg.App.Addr())
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped", zap.Error(err))
	}
}

func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storage, error) {
	if cfg.Storage.Driver == config.DriverPostgres {
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, err
		}
		if cfg.Storage.RunMigrations {
			db := pg.SQLHandle()
			err := persistence.RunMigrations(ctx, db, goose.DialectPostgres, logger)
			_ = db.Close()
			if err != nil {
				pg.Close()
				return nil, err
			}
		}
		pool := pg.PoolHandle()
		return &storage{
			users:   repository.NewUserRepository(pool),
			recipes: repository.NewRecipeRepository(pool),
			pinger:  pg,
			close:   pg.Close,
		}, nil
	}

	lite, err := persistence.NewSQLite(ctx, cfg.SQLite, logger)
	if err != nil {
		return nil, err
	}
	if cfg.Storage.RunMigrations {
		if err := persistence.RunMigrations(ctx, lite.DB, goose.DialectSQLite3, logger); err != nil {
			lite.Close()
			return nil, err
		}
	}
	return &storage{
		users:   repository.NewSQLiteUserRepository(lite.DB),
		recipes: repository.NewSQLiteRecipeRepository(lite.DB),
		pinger:  lite,
		close:   lite.Close,
	}, nil
}
