package main

import (
	"context"
	"net/http"
	"os"

	"github.com/pantrypal-app/pantrypal-backend/api/routes"
	"github.com/pantrypal-app/pantrypal-backend/internal/auth"
	"github.com/pantrypal-app/pantrypal-backend/internal/bills"
	"github.com/pantrypal-app/pantrypal-backend/internal/inventory"
	"github.com/pantrypal-app/pantrypal-backend/internal/recipes"
	"github.com/pantrypal-app/pantrypal-backend/internal/users"
	"github.com/pantrypal-app/pantrypal-backend/pkg/auth/session"
	"github.com/pantrypal-app/pantrypal-backend/pkg/config"
	"github.com/pantrypal-app/pantrypal-backend/pkg/db"
	"github.com/pantrypal-app/pantrypal-backend/pkg/gemini"
	"github.com/pantrypal-app/pantrypal-backend/pkg/logger"
	"github.com/pantrypal-app/pantrypal-backend/pkg/metrics"
	"github.com/pantrypal-app/pantrypal-backend/pkg/migrate"
	"github.com/pantrypal-app/pantrypal-backend/pkg/redis"
	"github.com/joho/godotenv"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPMetrics()
	reconcileMetrics := metrics.NewReconcileMetrics(httpMetrics.Registerer())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		TxRunner:       dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(users.ServiceParams{
		Repo: users.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	inventoryRepo := inventory.NewRepository(dbClient.DB())
	inventoryService, err := inventory.NewService(inventory.ServiceParams{
		Store:   inventoryRepo,
		Logger:  logg,
		Metrics: reconcileMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	// Generation endpoints stay dark without an API key; the rest of the
	// service still runs.
	var recipesService recipes.Service
	var billsService bills.Service
	if cfg.Gemini.APIKey != "" {
		geminiClient, err := gemini.New(cfg.Gemini)
		if err != nil {
			logg.Error(context.Background(), "failed to create gemini client", err)
			os.Exit(1)
		}
		recipesService, err = recipes.NewService(recipes.ServiceParams{
			Inventory: inventoryRepo,
			Users:     users.NewRepository(dbClient.DB()),
			Generator: geminiClient,
			Logger:    logg,
		})
		if err != nil {
			logg.Error(context.Background(), "failed to create recipes service", err)
			os.Exit(1)
		}
		billsService, err = bills.NewService(bills.ServiceParams{
			Vision: geminiClient,
			Logger: logg,
		})
		if err != nil {
			logg.Error(context.Background(), "failed to create bills service", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "gemini api key not configured, recipe and bill endpoints disabled")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			sessionManager,
			httpMetrics,
			authService,
			registerService,
			usersService,
			inventoryService,
			recipesService,
			billsService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
