package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/torquehub/torquehub-backend/api/routes"
	"github.com/torquehub/torquehub-backend/internal/invitations"
	"github.com/torquehub/torquehub-backend/internal/jobs"
	"github.com/torquehub/torquehub-backend/internal/mechanics"
	"github.com/torquehub/torquehub-backend/internal/memberships"
	"github.com/torquehub/torquehub-backend/internal/schedule"
	"github.com/torquehub/torquehub-backend/internal/shops"
	"github.com/torquehub/torquehub-backend/internal/users"
	"github.com/torquehub/torquehub-backend/internal/waitlist"
	clerkwebhooks "github.com/torquehub/torquehub-backend/internal/webhooks/clerk"
	"github.com/torquehub/torquehub-backend/pkg/clerk"
	"github.com/torquehub/torquehub-backend/pkg/config"
	"github.com/torquehub/torquehub-backend/pkg/db"
	"github.com/torquehub/torquehub-backend/pkg/email"
	"github.com/torquehub/torquehub-backend/pkg/logger"
	"github.com/torquehub/torquehub-backend/pkg/migrate"
	"github.com/torquehub/torquehub-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

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

	clerkClient, err := clerk.NewClient(context.Background(), cfg.Clerk, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create identity provider client", err)
		os.Exit(1)
	}

	emailClient, err := email.NewClient(context.Background(), cfg.Email, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create email client", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	shopRepo := shops.NewRepository(dbClient.DB())
	membershipRepo := memberships.NewRepository(dbClient.DB())
	mechanicRepo := mechanics.NewRepository(dbClient.DB())
	invitationRepo := invitations.NewRepository(dbClient.DB())
	jobRepo := jobs.NewRepository(dbClient.DB())
	appointmentRepo := schedule.NewRepository(dbClient.DB())
	waitlistRepo := waitlist.NewRepository(dbClient.DB())

	shopService, err := shops.NewService(shopRepo, membershipRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create shop service", err)
		os.Exit(1)
	}

	mechanicService, err := mechanics.NewService(mechanicRepo, membershipRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create mechanic service", err)
		os.Exit(1)
	}

	invitationService, err := invitations.NewService(
		invitationRepo,
		membershipRepo,
		userRepo,
		mechanicRepo,
		clerkClient,
		cfg.Invitations,
		cfg.App.BaseURL,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create invitation service", err)
		os.Exit(1)
	}

	jobService, err := jobs.NewService(jobRepo, mechanicRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create job service", err)
		os.Exit(1)
	}

	scheduleService, err := schedule.NewService(appointmentRepo, jobRepo, membershipRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create schedule service", err)
		os.Exit(1)
	}

	waitlistService, err := waitlist.NewService(waitlistRepo, emailClient, cfg.Waitlist, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create waitlist service", err)
		os.Exit(1)
	}

	webhookService, err := clerkwebhooks.NewService(userRepo, invitationService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
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
			DBPinger:        dbClient,
			RedisClient:     redisClient,
			Users:           userRepo,
			Shops:           shopService,
			ShopLister:      membershipRepo,
			AdminShops:      shopService,
			AdminUsers:      userRepo,
			AdminWaitlist:   waitlistService,
			Invitations:     invitationService,
			Mechanics:       mechanicService,
			Jobs:            jobService,
			Schedule:        scheduleService,
			Waitlist:        waitlistService,
			WebhookVerifier: clerkClient,
			WebhookHandler:  webhookService,
		}),
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stopCtx.Done():
		logg.Info(ctx, "shutdown signal received, draining connections")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}

	logg.Info(ctx, "api server shut down gracefully")
}
