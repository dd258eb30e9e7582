package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wishlane/wishlane-backend/api/controllers"
	"github.com/wishlane/wishlane-backend/api/middleware"
	"github.com/wishlane/wishlane-backend/internal/auth"
	"github.com/wishlane/wishlane-backend/internal/realtime"
	"github.com/wishlane/wishlane-backend/internal/wishlists"
	"github.com/wishlane/wishlane-backend/pkg/auth/session"
	"github.com/wishlane/wishlane-backend/pkg/config"
	"github.com/wishlane/wishlane-backend/pkg/db"
	"github.com/wishlane/wishlane-backend/pkg/logger"
	"github.com/wishlane/wishlane-backend/pkg/redis"
)

// RouterParams collects everything the HTTP surface depends on.
type RouterParams struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              db.Pinger
	Cache           redis.Pinger
	RateLimits      middleware.RateLimiterStore
	SessionChecker  session.AccessSessionChecker
	AuthService     auth.Service
	WishlistService wishlists.Service
	Hub             *realtime.Hub
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

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
		r.Get("/ready", controllers.HealthReady(cfg, p.DB, p.Cache, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, p.RateLimits, logg)).Post("/register", controllers.AuthRegister(p.AuthService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, p.RateLimits, logg)).Post("/login", controllers.AuthLogin(p.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.AuthService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, p.SessionChecker, logg))
			r.Post("/logout", controllers.AuthLogout(p.AuthService, logg))
			r.Get("/profile", controllers.AuthProfile(p.AuthService, logg))
		})
	})

	r.Route("/api/v1/wishlists", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.SessionChecker, logg))

		r.Get("/", controllers.WishlistList(p.WishlistService, logg))
		r.Get("/public", controllers.WishlistListPublic(p.WishlistService, logg))
		r.Post("/", controllers.WishlistCreate(p.WishlistService, logg))

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", controllers.WishlistGet(p.WishlistService, logg))
			r.Put("/", controllers.WishlistUpdate(p.WishlistService, logg))
			r.Delete("/", controllers.WishlistDelete(p.WishlistService, logg))

			r.Post("/products", controllers.ProductAdd(p.WishlistService, logg))
			r.Put("/products/{productId}", controllers.ProductUpdate(p.WishlistService, logg))
			r.Delete("/products/{productId}", controllers.ProductDelete(p.WishlistService, logg))

			r.Put("/collaborators/{userId}", controllers.CollaboratorAdd(p.WishlistService, logg))
			r.Delete("/collaborators/{userId}", controllers.CollaboratorRemove(p.WishlistService, logg))
		})
	})

	r.Get("/ws", controllers.RealtimeConnect(cfg, p.Hub, p.SessionChecker, originSet(cfg.CORS.AllowedOrigins), logg))

	return r
}

func originSet(origins []string) map[string]struct{} {
	set := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		set[o] = struct{}{}
	}
	return set
}
