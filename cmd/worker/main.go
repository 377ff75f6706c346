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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/lns-erp/lns-erp/internal/app"
	"github.com/lns-erp/lns-erp/internal/growth"
	jobmetrics "github.com/lns-erp/lns-erp/internal/jobs"
	"github.com/lns-erp/lns-erp/internal/platform/cache"
	"github.com/lns-erp/lns-erp/internal/platform/db"
	"github.com/lns-erp/lns-erp/internal/reporting"
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

	salesRepo := sales.NewRepository(pool)
	salesService := sales.NewService(salesRepo)

	dashboardCache := reporting.NewCache(redisClient, cfg.CacheTTL)
	targetsRepo := targets.NewRepository(pool)
	targetsService := targets.NewService(targetsRepo, salesService, targets.Horizon{
		FromYear: cfg.TargetYearFrom,
		ToYear:   cfg.TargetYearTo,
	}, dashboardCache)

	reportingRepo := reporting.NewRepository(pool)
	reportingService := reporting.NewService(
		reportingRepo,
		salesService,
		targetsService,
		reporting.QuarterlyTargets{},
		growth.NewCalculator(nil),
		dashboardCache,
	)

	registry := prometheus.NewRegistry()
	jobMetrics := jobmetrics.NewMetrics(registry)

	warmupJob := jobs.NewDashboardWarmupJob(reportingService, dashboardCache, logger, jobMetrics)

	var cron []jobs.CronRegistration
	if cfg.WarmupCron != "" {
		warmupTask, err := jobs.NewDashboardWarmupTask(jobs.DashboardWarmupPayload{})
		if err != nil {
			logger.Error("build warmup task", slog.Any("error", err))
			os.Exit(1)
		}
		cron = append(cron, jobs.CronRegistration{
			Spec:    cfg.WarmupCron,
			Task:    warmupTask,
			Options: []asynq.Option{asynq.MaxRetry(3)},
		})
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Warmup:    warmupJob,
		Cron:      cron,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	// The alert rules scrape job metrics from the worker itself, so expose
	// them here rather than relying on the API process.
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	metricsServer := &http.Server{
		Addr:    cfg.WorkerMetricsAddr,
		Handler: metricsMux,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("worker metrics listening", slog.String("addr", cfg.WorkerMetricsAddr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return metricsServer.Shutdown(shutdownCtx)
	})
	group.Go(func() error {
		return worker.Run(groupCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
