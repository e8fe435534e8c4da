package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/estoquelabs/estoque-backend/api/routes"
	alert "github.com/estoquelabs/estoque-backend/internal/alerts"
	authsvc "github.com/estoquelabs/estoque-backend/internal/auth"
	"github.com/estoquelabs/estoque-backend/internal/mercadolivre"
	product "github.com/estoquelabs/estoque-backend/internal/products"
	"github.com/estoquelabs/estoque-backend/internal/reconcile"
	sale "github.com/estoquelabs/estoque-backend/internal/sales"
	user "github.com/estoquelabs/estoque-backend/internal/users"
	warehouse "github.com/estoquelabs/estoque-backend/internal/warehouses"
	"github.com/estoquelabs/estoque-backend/pkg/config"
	"github.com/estoquelabs/estoque-backend/pkg/db"
	"github.com/estoquelabs/estoque-backend/pkg/env"
	"github.com/estoquelabs/estoque-backend/pkg/logger"
	"github.com/estoquelabs/estoque-backend/pkg/metrics"
	"github.com/estoquelabs/estoque-backend/pkg/migrate"
	pkgredis "github.com/estoquelabs/estoque-backend/pkg/redis"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
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

	redisClient, err := pkgredis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	webhookMetrics := metrics.NewWebhookMetrics(registry)

	conn := dbClient.DB()
	productRepo := product.NewRepository(conn)
	warehouseRepo := warehouse.NewRepository(conn)
	saleRepo := sale.NewRepository(conn)
	alertRepo := alert.NewRepository(conn)
	userRepo := user.NewRepository(conn)

	authService, err := authsvc.NewService(userRepo, cfg.JWT, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}
	productService, err := product.NewService(productRepo, dbClient, warehouseRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}
	warehouseService, err := warehouse.NewService(warehouseRepo, productRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create warehouse service", err)
		os.Exit(1)
	}
	alertService, err := alert.NewService(alertRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create alert service", err)
		os.Exit(1)
	}

	mlClient, err := mercadolivre.NewClient(cfg.MercadoLivre)
	if err != nil {
		logg.Error(context.Background(), "failed to create marketplace client", err)
		os.Exit(1)
	}

	engine, err := reconcile.NewEngine(reconcile.EngineParams{
		DB:       dbClient,
		Products: productRepo,
		Sales:    saleRepo,
		Alerts:   alertRepo,
		Orders:   mlClient,
		Locks:    redisClient,
		Logger:   logg,
		Metrics:  webhookMetrics,
		LockTTL:  cfg.Webhook.OrderLockTTL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reconcile engine", err)
		os.Exit(1)
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
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
			authService,
			productService,
			warehouseService,
			alertService,
			engine,
			registry,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	}()

	<-shutdown
	logg.Info(ctx, "shutting down api server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "graceful shutdown failed", err)
	}
}
