package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oaklinebank/oakline-backend/api/controllers"
	"github.com/oaklinebank/oakline-backend/api/middleware"
	"github.com/oaklinebank/oakline-backend/internal/accounts"
	"github.com/oaklinebank/oakline-backend/internal/auth"
	"github.com/oaklinebank/oakline-backend/pkg/config"
	"github.com/oaklinebank/oakline-backend/pkg/logger"
	"github.com/oaklinebank/oakline-backend/pkg/redis"
)

// RouterParams collects everything the HTTP edge needs.
type RouterParams struct {
	Config          *config.Config
	Logger          *logger.Logger
	Redis           *redis.Client
	AccountsService accounts.Service
	AuthService     auth.Service
	Dependencies    map[string]controllers.Pinger
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
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
		r.Get("/ready", controllers.HealthReady(cfg, logg, params.Dependencies))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/home", controllers.Home(cfg))

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(registerPolicy, params.Redis, logg)).
				Post("/register", controllers.AccountsRegister(params.AccountsService, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, params.Redis, logg)).
				Post("/login", controllers.AuthLogin(params.AuthService, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, params.Redis, logg)).
				Post("/otp/request", controllers.AuthOTPRequest(params.AuthService, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, params.Redis, logg)).
				Post("/otp/verify", controllers.AuthOTPVerify(params.AuthService, logg))
		})

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/{accountID}", controllers.AccountsGet(params.AccountsService, logg))
			r.Delete("/{accountID}", controllers.AccountsDelete(params.AccountsService, logg))
			r.Post("/{accountID}/restore", controllers.AccountsRestore(params.AccountsService, logg))
		})
	})

	return r
}
