package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/Aniefiokidi/MAKEITSELL-sub000/api/routes"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/internal/notifications"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/internal/settlement"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/internal/subscriptions"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/config"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/db"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/logger"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/migrate"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/redis"
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

	vendorRepo := subscriptions.NewVendorRepository(dbClient)
	serviceRepo := subscriptions.NewServiceRepository(dbClient.DB())

	notificationsService, err := notifications.NewService(notifications.ServiceParams{
		Repo:   notifications.NewRepository(dbClient.DB()),
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	engine, err := subscriptions.NewEngine(subscriptions.EngineParams{
		Vendors:  vendorRepo,
		Services: serviceRepo,
		Gateway:  notificationsService,
		Logger:   logg,
		Billing:  cfg.Billing,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create lifecycle engine", err)
		os.Exit(1)
	}

	settlementService, err := settlement.NewService(settlement.ServiceParams{
		Repo:   settlement.NewRepository(dbClient.DB()),
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create settlement service", err)
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
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, engine, vendorRepo, settlementService, notificationsService),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
