package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pantrypal-app/pantrypal-backend/api/controllers"
	"github.com/pantrypal-app/pantrypal-backend/api/middleware"
	"github.com/pantrypal-app/pantrypal-backend/internal/auth"
	"github.com/pantrypal-app/pantrypal-backend/internal/bills"
	"github.com/pantrypal-app/pantrypal-backend/internal/inventory"
	"github.com/pantrypal-app/pantrypal-backend/internal/recipes"
	"github.com/pantrypal-app/pantrypal-backend/internal/users"
	"github.com/pantrypal-app/pantrypal-backend/pkg/auth/session"
	"github.com/pantrypal-app/pantrypal-backend/pkg/config"
	"github.com/pantrypal-app/pantrypal-backend/pkg/db"
	"github.com/pantrypal-app/pantrypal-backend/pkg/logger"
	"github.com/pantrypal-app/pantrypal-backend/pkg/metrics"
	"github.com/pantrypal-app/pantrypal-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessionChecker session.AccessSessionChecker,
	httpMetrics *metrics.HTTPMetrics,
	authService auth.Service,
	registerService auth.RegisterService,
	usersService users.Service,
	inventoryService inventory.Service,
	recipesService recipes.Service,
	billsService bills.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)
	if httpMetrics != nil {
		r.Use(middleware.Metrics(httpMetrics))
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if httpMetrics != nil {
		r.Method(http.MethodGet, "/metrics", httpMetrics.Handler())
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(registerService, logg))
		r.Post("/refresh", controllers.AuthRefresh(authService, logg))
		r.Post("/logout", controllers.AuthLogout(authService, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))

		r.Route("/users", func(r chi.Router) {
			r.Get("/me", controllers.UserProfile(usersService, logg))
			r.Put("/me/dietary-profile", controllers.UserUpdateDietaryProfile(usersService, logg))
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", controllers.InventoryList(inventoryService, logg))
			r.Post("/", controllers.InventoryAdd(inventoryService, logg))
			r.Get("/search", controllers.InventorySearch(inventoryService, logg))
			r.Post("/reconcile", controllers.InventoryReconcile(inventoryService, logg))
			r.Patch("/{itemId}", controllers.InventoryUpdate(inventoryService, logg))
			r.Delete("/{itemId}", controllers.InventoryRemove(inventoryService, logg))
		})

		r.Post("/recipes/generate", controllers.RecipesGenerate(recipesService, logg))
		r.Post("/bills/extract", controllers.BillsExtract(billsService, cfg.Media, logg))
	})

	return r
}
