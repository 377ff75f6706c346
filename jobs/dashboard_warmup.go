package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/lns-erp/lns-erp/internal/jobs"
	"github.com/lns-erp/lns-erp/internal/reporting"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

const (
	defaultWarmupMonths = 12
	defaultWarmupLimit  = reporting.DefaultTopCustomerLimit
	warmupTimeout       = 60 * time.Second
)

// Dashboard is the slice of the reporting service the warmup job needs.
type Dashboard interface {
	BuildPeriodSummary(ctx context.Context, periods []reporting.Period, businessUnitID *int64) ([]reporting.PeriodSummary, error)
	TopCustomers(ctx context.Context, limit int, businessUnitID *int64) ([]reporting.ScopedTopCustomers, error)
	TargetSellingSummary(ctx context.Context) ([]reporting.TargetGroup, error)
}

// CacheBumper invalidates the dashboard cache.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

// DashboardWarmupJob pre-populates the dashboard caches so the first request
// after an invalidation does not pay the aggregation cost.
type DashboardWarmupJob struct {
	Dashboard Dashboard
	Cache     CacheBumper
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	clock     func() time.Time
}

// NewDashboardWarmupJob wires dependencies for the warmup handler.
func NewDashboardWarmupJob(dashboard Dashboard, cache CacheBumper, logger *slog.Logger, metrics *jobmetrics.Metrics) *DashboardWarmupJob {
	return &DashboardWarmupJob{
		Dashboard: dashboard,
		Cache:     cache,
		Logger:    logger,
		Metrics:   metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// HandleWarmup processes TaskDashboardWarmup tasks.
func (j *DashboardWarmupJob) HandleWarmup(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Dashboard == nil {
		return errors.New("dashboard warmup: handler not configured")
	}
	var payload DashboardWarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	if payload.Months <= 0 {
		payload.Months = defaultWarmupMonths
	}
	if payload.Limit <= 0 {
		payload.Limit = defaultWarmupLimit
	}

	tracker := j.metrics().Track(TaskDashboardWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.Int("months", payload.Months), slog.Int("limit", payload.Limit))
	logger.Info("starting dashboard warmup")

	now := j.now()
	warmCtx, cancel := context.WithTimeout(ctx, warmupTimeout)
	defer cancel()

	periods := reporting.MonthlyPeriods(now, payload.Months)
	if _, err := j.Dashboard.BuildPeriodSummary(warmCtx, periods, nil); err != nil {
		resultErr = err
		logger.Error("warm period summary", slog.Any("error", err))
		return resultErr
	}
	if _, err := j.Dashboard.TopCustomers(warmCtx, payload.Limit, nil); err != nil {
		resultErr = err
		logger.Error("warm top customers", slog.Any("error", err))
		return resultErr
	}
	if _, err := j.Dashboard.TargetSellingSummary(warmCtx); err != nil {
		resultErr = err
		logger.Error("warm target summary", slog.Any("error", err))
		return resultErr
	}

	logger.Info("completed dashboard warmup", slog.Duration("duration", time.Since(now)))
	return resultErr
}

// HandleCacheBump processes TaskDashboardCacheBump tasks.
func (j *DashboardWarmupJob) HandleCacheBump(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Cache == nil {
		return errors.New("cache bump: handler not configured")
	}
	tracker := j.metrics().Track(TaskDashboardCacheBump)
	err := j.Cache.Bump(ctx)
	if err == nil {
		j.metrics().AddCacheBump()
	}
	return tracker.End(err)
}

func (j *DashboardWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskDashboardWarmup))
	}
	return slog.Default().With(slog.String("job", TaskDashboardWarmup))
}

func (j *DashboardWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *DashboardWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
