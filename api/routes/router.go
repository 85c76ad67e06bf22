package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/frozify/storefront/api/controllers"
	"github.com/frozify/storefront/api/middleware"
	"github.com/frozify/storefront/internal/auth"
	"github.com/frozify/storefront/internal/session"
	"github.com/frozify/storefront/pkg/config"
	"github.com/frozify/storefront/pkg/logger"
	"github.com/frozify/storefront/pkg/redis"
)

// SessionLoader resolves a session id into live shopper state.
type SessionLoader interface {
	Get(ctx context.Context, id string) (*session.Session, error)
}

// StorefrontAPI is the external storefront REST client as seen by the router.
type StorefrontAPI interface {
	controllers.CatalogReader
	controllers.CatalogWriter
	BreakerState() string
}

// Dependencies are the collaborators the router wires into handlers. Redis, Pingers and
// Metrics are optional.
type Dependencies struct {
	Sessions    SessionLoader
	Storefront  StorefrontAPI
	AuthService auth.Service
	Redis       *redis.Client
	Pingers     map[string]controllers.Pinger
	Metrics     http.Handler
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	loginPolicy := middleware.LoginRateLimit(cfg.AuthRateLimit)
	registerPolicy := middleware.RegisterRateLimit(cfg.AuthRateLimit)

	rateLimit := func(policy middleware.AuthRateLimitPolicy) func(http.Handler) http.Handler {
		if deps.Redis == nil {
			return passthrough
		}
		return middleware.AuthRateLimit(policy, deps.Redis, logg)
	}
	idempotency := passthrough
	if deps.Redis != nil {
		idempotency = middleware.Idempotency(deps.Redis, cfg.Checkout.IdempotencyTTL, logg)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Storefront, deps.Pingers))
	})
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(cfg.JWT, deps.Sessions, logg))
		r.Use(idempotency)

		r.Get("/products", controllers.ProductsList(deps.Storefront, logg))
		r.Get("/products/{id}", controllers.ProductGet(deps.Storefront, logg))
		r.Get("/categories", controllers.CategoriesList(deps.Storefront, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(logg))
			r.Delete("/", controllers.CartClear(logg))
			r.Post("/items", controllers.CartAddItem(deps.Storefront, logg))
			r.Patch("/items/{id}", controllers.CartUpdateItem(logg))
			r.Delete("/items/{id}", controllers.CartRemoveItem(logg))
		})

		r.Route("/auth", func(r chi.Router) {
			r.With(rateLimit(loginPolicy)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
			r.With(rateLimit(registerPolicy)).Post("/register", controllers.AuthRegister(deps.AuthService, logg))
			r.Post("/logout", controllers.AuthLogout(logg))
			r.Get("/me", controllers.AuthMe(logg))
		})

		r.Route("/cities", func(r chi.Router) {
			r.Get("/", controllers.CitiesList())
			r.Get("/current", controllers.CityCurrent(logg))
			r.Put("/current", controllers.CitySelect(logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", controllers.CheckoutView(logg))
			r.Post("/next", controllers.CheckoutNext(logg))
			r.Post("/back", controllers.CheckoutBack(logg))
			r.Put("/shipping", controllers.CheckoutShipping(logg))
			r.Post("/submit", controllers.CheckoutSubmit(logg))
			r.Post("/reset", controllers.CheckoutReset(logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Session(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.RequireAdmin(logg))
		r.Use(idempotency)

		r.Post("/products", controllers.AdminProductCreate(deps.Storefront, logg))
		r.Put("/products/{id}", controllers.AdminProductUpdate(deps.Storefront, logg))
		r.Delete("/products/{id}", controllers.AdminProductDelete(deps.Storefront, logg))
		r.Post("/uploads", controllers.AdminUpload(deps.Storefront, logg))
		r.Post("/categories", controllers.AdminCategoryCreate(deps.Storefront, logg))
		r.Put("/categories/{id}", controllers.AdminCategoryUpdate(deps.Storefront, logg))
		r.Delete("/categories/{id}", controllers.AdminCategoryDelete(deps.Storefront, logg))
	})

	return r
}

func passthrough(next http.Handler) http.Handler {
	return next
}
