package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/odyssey-bakery/internal/app"
	"github.com/odyssey-erp/odyssey-bakery/internal/ingredients"
	"github.com/odyssey-erp/odyssey-bakery/internal/observability"
	"github.com/odyssey-erp/odyssey-bakery/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-bakery/internal/platform/db"
	"github.com/odyssey-erp/odyssey-bakery/internal/production"
	"github.com/odyssey-erp/odyssey-bakery/internal/products"
	"github.com/odyssey-erp/odyssey-bakery/internal/recipes"
	"github.com/odyssey-erp/odyssey-bakery/internal/reports"
	"github.com/odyssey-erp/odyssey-bakery/internal/sales"
	"github.com/odyssey-erp/odyssey-bakery/internal/shared"
	"github.com/odyssey-erp/odyssey-bakery/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PoolConfig("bakery-api"))
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	if cfg.DBAutoMigrate {
		if err := db.Migrate(ctx, dbpool, logger); err != nil {
			logger.Error("migrate", slog.Any("error", err))
			os.Exit(1)
		}
	}

	var redisClient *redis.Client
	if client, err := cache.New(ctx, cfg.RedisConfig()); err != nil {
		logger.Warn("redis unavailable, report cache disabled", slog.Any("error", err))
	} else {
		redisClient = client
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(dbpool)
	idempotencyStore := shared.NewIdempotencyStore(dbpool)
	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	loc := cfg.Location()

	ingredientService := ingredients.NewService(ingredients.NewRepository(dbpool, cfg.TxMaxRetries), auditLogger, reportCache, logger)
	recipeService := recipes.NewService(recipes.NewRepository(dbpool, cfg.TxMaxRetries), auditLogger, reportCache, logger)
	productionService := production.NewService(production.NewRepository(dbpool, cfg.TxMaxRetries), auditLogger, idempotencyStore, metrics, loc, logger)
	productService := products.NewService(products.NewRepository(dbpool, cfg.TxMaxRetries), recipeService, reportCache, logger)
	salesService := sales.NewService(sales.Deps{
		Repo:        sales.NewRepository(dbpool, cfg.TxMaxRetries),
		Costs:       recipeService,
		Audit:       auditLogger,
		Idempotency: idempotencyStore,
		Cache:       reportCache,
		Metrics:     metrics,
		Logger:      logger,
	})
	reportService := reports.NewService(reports.NewRepository(dbpool), recipeService, reportCache, loc, logger)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		Metrics:           metrics,
		IngredientHandler: ingredients.NewHandler(logger, ingredientService),
		RecipeHandler:     recipes.NewHandler(logger, recipeService),
		ProductionHandler: production.NewHandler(logger, productionService),
		ProductHandler:    products.NewHandler(logger, productService),
		SalesHandler:      sales.NewHandler(logger, salesService),
		ReportHandler:     reports.NewHandler(logger, reportService),
		JobHandler:        jobs.NewHandler(inspector, logger),
		Ready: func(r *http.Request) error {
			return dbpool.Ping(r.Context())
		},
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
