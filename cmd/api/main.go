package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/oaklinebank/oakline-backend/api/controllers"
	"github.com/oaklinebank/oakline-backend/api/routes"
	"github.com/oaklinebank/oakline-backend/internal/accounts"
	"github.com/oaklinebank/oakline-backend/internal/auth"
	"github.com/oaklinebank/oakline-backend/internal/mailer"
	"github.com/oaklinebank/oakline-backend/pkg/config"
	"github.com/oaklinebank/oakline-backend/pkg/db"
	"github.com/oaklinebank/oakline-backend/pkg/logger"
	"github.com/oaklinebank/oakline-backend/pkg/metrics"
	"github.com/oaklinebank/oakline-backend/pkg/migrate"
	"github.com/oaklinebank/oakline-backend/pkg/pubsub"
	"github.com/oaklinebank/oakline-backend/pkg/redis"
	"github.com/oaklinebank/oakline-backend/pkg/security"
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

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub", err)
		}
	}()

	mailService, err := mailer.NewService(mailer.ServiceParams{
		Publisher: mailer.NewGCPPublisher(pubsubClient.EmailPublisher()),
		Logger:    logg,
		Account:   cfg.Account,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create mailer service", err)
		os.Exit(1)
	}

	hasher := security.NewHasher(cfg.Password)
	authMetrics := metrics.NewAuthMetrics(prometheus.DefaultRegisterer)

	accountsService, err := accounts.NewService(accounts.ServiceParams{
		TxRunner: dbClient,
		Hasher:   hasher,
		Mailer:   mailService,
		Logger:   logg,
		Account:  cfg.Account,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create accounts service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:    accounts.NewRepository(dbClient.DB()),
		Hasher:      hasher,
		Mailer:      mailService,
		AuthMetrics: authMetrics,
		Logger:      logg,
		OTP:         cfg.OTP,
		Account:     cfg.Account,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
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
		Handler: routes.NewRouter(routes.RouterParams{
			Config:          cfg,
			Logger:          logg,
			Redis:           redisClient,
			AccountsService: accountsService,
			AuthService:     authService,
			Dependencies: map[string]controllers.Pinger{
				"database": dbClient,
				"redis":    redisClient,
				"pubsub":   pubsubClient,
			},
		}),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-shutdownCtx.Done()
		drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logg.Error(ctx, "server shutdown", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}
