package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/lns-erp/lns-erp/internal/app"
	"github.com/lns-erp/lns-erp/internal/growth"
	"github.com/lns-erp/lns-erp/internal/observability"
	"github.com/lns-erp/lns-erp/internal/platform/cache"
	"github.com/lns-erp/lns-erp/internal/platform/db"
	"github.com/lns-erp/lns-erp/internal/reporting"
	reportinghttp "github.com/lns-erp/lns-erp/internal/reporting/http"
	"github.com/lns-erp/lns-erp/internal/sales"
	"github.com/lns-erp/lns-erp/internal/targets"
	"github.com/lns-erp/lns-erp/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	salesRepo := sales.NewRepository(pool)
	salesService := sales.NewService(salesRepo)
	salesHandler := sales.NewHandler(logger, salesService)

	dashboardCache := reporting.NewCache(redisClient, cfg.CacheTTL)
	if err := dashboardCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}

	targetsRepo := targets.NewRepository(pool)
	targetsService := targets.NewService(targetsRepo, salesService, targets.Horizon{
		FromYear: cfg.TargetYearFrom,
		ToYear:   cfg.TargetYearTo,
	}, dashboardCache)
	targetsHandler := targets.NewHandler(logger, targetsService)

	reportingRepo := reporting.NewRepository(pool)
	reportingService := reporting.NewService(
		reportingRepo,
		salesService,
		targetsService,
		reporting.QuarterlyTargets{},
		growth.NewCalculator(nil),
		dashboardCache,
	)
	reportingHandler := reportinghttp.NewHandler(logger, reportingService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SalesHandler:     salesHandler,
		TargetsHandler:   targetsHandler,
		ReportingHandler: reportingHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server exit", slog.Any("error", err))
		os.Exit(1)
	}
}
