// Package reportinghttp serves the sales dashboard datasets as JSON.
package reportinghttp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/lns-erp/lns-erp/internal/platform/httpx"
	"github.com/lns-erp/lns-erp/internal/reporting"
)

var periodRegex = regexp.MustCompile(`^\d{4}-\d{2}$`)

const (
	defaultWindowMonths = 12
	maxWindowMonths     = 36
	requestTimeout      = 5 * time.Second
)

// ReportingService defines the dashboard data contract used by the handler.
type ReportingService interface {
	BuildPeriodSummary(ctx context.Context, periods []reporting.Period, businessUnitID *int64) ([]reporting.PeriodSummary, error)
	TopCustomers(ctx context.Context, limit int, businessUnitID *int64) ([]reporting.ScopedTopCustomers, error)
	TargetSellingSummary(ctx context.Context) ([]reporting.TargetGroup, error)
}

// Handler coordinates HTTP requests for the sales reporting dashboard.
type Handler struct {
	logger  *slog.Logger
	service ReportingService
	group   singleflight.Group
	now     func() time.Time
}

// NewHandler constructs the reporting HTTP handler.
func NewHandler(logger *slog.Logger, service ReportingService) *Handler {
	return &Handler{logger: logger, service: service, now: time.Now}
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

type dashboardFilters struct {
	period         string
	months         int
	limit          int
	businessUnitID *int64
}

// dashboardResponse is the page payload for the sales dashboard.
type dashboardResponse struct {
	Period       string                         `json:"period"`
	Summaries    []reporting.PeriodSummary      `json:"summaries"`
	TopCustomers []reporting.ScopedTopCustomers `json:"top_customers"`
	Targets      []reporting.TargetGroup        `json:"targets"`
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	filters, err := h.parseFilters(r)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	// Identical dashboards requested concurrently share a single load.
	key := filters.period + "/" + strconv.Itoa(filters.months) + "/" + strconv.Itoa(filters.limit) + "/" + scopeKey(filters.businessUnitID)
	value, err, _ := h.group.Do(key, func() (interface{}, error) {
		return h.loadDashboard(ctx, filters)
	})
	if err != nil {
		h.handleServerError(w, "load dashboard", err)
		return
	}

	httpx.JSON(w, http.StatusOK, value)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	filters, err := h.parseFilters(r)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	ref, _ := time.Parse("2006-01", filters.period)
	summaries, err := h.service.BuildPeriodSummary(ctx, reporting.MonthlyPeriods(ref, filters.months), filters.businessUnitID)
	if err != nil {
		h.handleServerError(w, "build period summary", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]interface{}{"summaries": summaries})
}

func (h *Handler) handleTopCustomers(w http.ResponseWriter, r *http.Request) {
	filters, err := h.parseFilters(r)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	boards, err := h.service.TopCustomers(ctx, filters.limit, filters.businessUnitID)
	if err != nil {
		h.handleServerError(w, "load top customers", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]interface{}{"top_customers": boards})
}

func (h *Handler) handleTargetSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	groups, err := h.service.TargetSellingSummary(ctx)
	if err != nil {
		h.handleServerError(w, "load target summary", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]interface{}{"targets": groups})
}

func (h *Handler) loadDashboard(ctx context.Context, filters dashboardFilters) (dashboardResponse, error) {
	ref, err := time.Parse("2006-01", filters.period)
	if err != nil {
		return dashboardResponse{}, err
	}
	periods := reporting.MonthlyPeriods(ref, filters.months)

	resp := dashboardResponse{Period: filters.period}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		summaries, err := h.service.BuildPeriodSummary(ctx, periods, filters.businessUnitID)
		if err != nil {
			return err
		}
		resp.Summaries = summaries
		return nil
	})

	g.Go(func() error {
		boards, err := h.service.TopCustomers(ctx, filters.limit, filters.businessUnitID)
		if err != nil {
			return err
		}
		resp.TopCustomers = boards
		return nil
	})

	g.Go(func() error {
		groups, err := h.service.TargetSellingSummary(ctx)
		if err != nil {
			return err
		}
		resp.Targets = groups
		return nil
	})

	if err := g.Wait(); err != nil {
		return dashboardResponse{}, err
	}
	return resp, nil
}

func (h *Handler) parseFilters(r *http.Request) (dashboardFilters, error) {
	now := h.now().UTC()
	period := strings.TrimSpace(r.URL.Query().Get("period"))
	if period == "" {
		period = now.Format("2006-01")
	}
	if !periodRegex.MatchString(period) {
		return dashboardFilters{}, validationError{field: "period"}
	}
	if _, err := time.Parse("2006-01", period); err != nil {
		return dashboardFilters{}, validationError{field: "period"}
	}

	months := defaultWindowMonths
	if monthsStr := strings.TrimSpace(r.URL.Query().Get("months")); monthsStr != "" {
		value, err := strconv.Atoi(monthsStr)
		if err != nil || value <= 0 || value > maxWindowMonths {
			return dashboardFilters{}, validationError{field: "months"}
		}
		months = value
	}

	limit := reporting.DefaultTopCustomerLimit
	if limitStr := strings.TrimSpace(r.URL.Query().Get("limit")); limitStr != "" {
		value, err := strconv.Atoi(limitStr)
		if err != nil || value <= 0 || value > 100 {
			return dashboardFilters{}, validationError{field: "limit"}
		}
		limit = value
	}

	var businessUnitID *int64
	if unitStr := strings.TrimSpace(r.URL.Query().Get("business_unit_id")); unitStr != "" {
		value, err := strconv.ParseInt(unitStr, 10, 64)
		if err != nil || value <= 0 {
			return dashboardFilters{}, validationError{field: "business_unit_id"}
		}
		businessUnitID = &value
	}

	return dashboardFilters{period: period, months: months, limit: limit, businessUnitID: businessUnitID}, nil
}

func (h *Handler) handleFilterError(w http.ResponseWriter, err error) {
	var vErr validationError
	if errors.As(err, &vErr) {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Parameter", vErr.Error())
		return
	}
	h.handleServerError(w, "parse filters", err)
}

func (h *Handler) handleServerError(w http.ResponseWriter, context string, err error) {
	h.logError(context, err)
	httpx.RespondError(w, err)
}

func (h *Handler) logError(context string, err error) {
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
}

type validationError struct {
	field string
}

func (v validationError) Error() string {
	return fmt.Sprintf("invalid %s", v.field)
}

func scopeKey(businessUnitID *int64) string {
	if businessUnitID == nil {
		return "all"
	}
	return strconv.FormatInt(*businessUnitID, 10)
}
