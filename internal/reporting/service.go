// Package reporting turns raw pipeline records into the period summaries,
// leaderboards, and target figures consumed by the dashboards.
package reporting

import (
	"context"
	"math"
	"sort"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/lns-erp/lns-erp/internal/growth"
	"github.com/lns-erp/lns-erp/internal/sales"
	"github.com/lns-erp/lns-erp/internal/targets"
)

// DefaultTopCustomerLimit caps the leaderboard when the caller does not.
const DefaultTopCustomerLimit = 10

// UnitDirectory resolves the known business units.
type UnitDirectory interface {
	ListBusinessUnits(ctx context.Context) ([]sales.BusinessUnit, error)
}

// TargetSource supplies the persisted target slots.
type TargetSource interface {
	List(ctx context.Context) ([]targets.TargetSlot, error)
}

// MetricTrend pairs a growth percentage with its insight copy.
type MetricTrend struct {
	Growth float64 `json:"growth"`
	Text   string  `json:"text"`
}

// PeriodSummary is one (period × scope) dashboard row. Trend fields are nil
// on the first period of a scope block, where no prior period exists.
type PeriodSummary struct {
	Scope              string       `json:"scope"`
	BusinessUnitID     *int64       `json:"business_unit_id,omitempty"`
	Period             string       `json:"period"`
	Start              time.Time    `json:"start"`
	End                time.Time    `json:"end"`
	Inquiries          int          `json:"inquiries"`
	Quotations         int          `json:"quotations"`
	PurchaseOrders     int          `json:"purchase_orders"`
	ExpiredQuotations  int          `json:"expired_quotations"`
	Target             int          `json:"target"`
	InquiryTrend       *MetricTrend `json:"inquiry_trend,omitempty"`
	QuotationTrend     *MetricTrend `json:"quotation_trend,omitempty"`
	PurchaseOrderTrend *MetricTrend `json:"purchase_order_trend,omitempty"`
	ExpiredTrend       *MetricTrend `json:"expired_trend,omitempty"`
}

// TopCustomer is one leaderboard entry. Value is the summed purchase-order
// amount in millions, rounded to one decimal place.
type TopCustomer struct {
	CustomerID  int64   `json:"customer_id"`
	Name        string  `json:"name"`
	Orders      int     `json:"orders"`
	Amount      float64 `json:"amount"`
	Value       float64 `json:"value"`
	AmountLabel string  `json:"amount_label"`
}

// ScopedTopCustomers is one leaderboard, independently limited per scope.
type ScopedTopCustomers struct {
	Scope          string        `json:"scope"`
	BusinessUnitID *int64        `json:"business_unit_id,omitempty"`
	Customers      []TopCustomer `json:"customers"`
}

// TargetGroup aggregates target slots sharing a (month, year) across all
// business units, with the ungrouped line items kept for drill-down.
type TargetGroup struct {
	Month      int                  `json:"month"`
	Year       int                  `json:"year"`
	Target     float64              `json:"target"`
	Actual     float64              `json:"actual"`
	Difference float64              `json:"difference"`
	Percentage float64              `json:"percentage"`
	Items      []targets.TargetSlot `json:"items"`
}

// Service assembles dashboard datasets from the repository, target slots,
// and the growth calculator, with cache-aware reads.
type Service struct {
	repo    Repository
	units   UnitDirectory
	slots   TargetSource
	target  TargetProvider
	calc    *growth.Calculator
	cache   *Cache
	printer *message.Printer
}

// NewService wires the aggregation engine. cache may be nil; a nil target
// provider falls back to the quarterly step function.
func NewService(repo Repository, units UnitDirectory, slots TargetSource, target TargetProvider, calc *growth.Calculator, cache *Cache) *Service {
	if target == nil {
		target = QuarterlyTargets{}
	}
	if calc == nil {
		calc = growth.NewCalculator(nil)
	}
	return &Service{
		repo:    repo,
		units:   units,
		slots:   slots,
		target:  target,
		calc:    calc,
		cache:   cache,
		printer: message.NewPrinter(language.English),
	}
}

// BuildPeriodSummary computes one summary row per (period × scope). The
// unscoped "all" block is always emitted first, followed by one block per
// business unit (or just the requested unit when businessUnitID is set),
// preserving period order within each block.
func (s *Service) BuildPeriodSummary(ctx context.Context, periods []Period, businessUnitID *int64) ([]PeriodSummary, error) {
	if len(periods) == 0 {
		return nil, nil
	}

	loader := func(ctx context.Context) (interface{}, error) {
		units, err := s.scopedUnits(ctx, businessUnitID)
		if err != nil {
			return nil, err
		}

		summaries, err := s.summarizeScope(ctx, periods, "all", nil)
		if err != nil {
			return nil, err
		}
		for _, unit := range units {
			unitID := unit.ID
			block, err := s.summarizeScope(ctx, periods, unit.Name, &unitID)
			if err != nil {
				return nil, err
			}
			summaries = append(summaries, block...)
		}
		return summaries, nil
	}

	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		return value.([]PeriodSummary), nil
	}

	keyBase := keySummary(scopeToken(businessUnitID), periods[0].Label(), periods[len(periods)-1].Label())
	key, err := s.cache.BuildKey(ctx, keyBase)
	if err != nil {
		return nil, err
	}
	var summaries []PeriodSummary
	if err := s.cache.FetchJSON(ctx, key, &summaries, loader); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (s *Service) summarizeScope(ctx context.Context, periods []Period, scope string, businessUnitID *int64) ([]PeriodSummary, error) {
	block := make([]PeriodSummary, 0, len(periods))
	for i, period := range periods {
		inquiries, err := s.repo.CountInquiries(ctx, period.Start, period.End, businessUnitID)
		if err != nil {
			return nil, err
		}
		quotations, err := s.repo.CountValidQuotations(ctx, period.Start, period.End, businessUnitID)
		if err != nil {
			return nil, err
		}
		purchaseOrders, err := s.repo.CountPurchaseOrders(ctx, period.Start, period.End, businessUnitID)
		if err != nil {
			return nil, err
		}
		expired, err := s.repo.CountExpiredQuotations(ctx, period.Start, period.End, businessUnitID)
		if err != nil {
			return nil, err
		}

		summary := PeriodSummary{
			Scope:             scope,
			BusinessUnitID:    businessUnitID,
			Period:            period.Label(),
			Start:             period.Start,
			End:               period.End,
			Inquiries:         inquiries,
			Quotations:        quotations,
			PurchaseOrders:    purchaseOrders,
			ExpiredQuotations: expired,
			Target:            s.target.TargetFor(period.Start, businessUnitID),
		}

		if i > 0 {
			prev := block[i-1]
			summary.InquiryTrend = s.trend(growth.MetricInquiries, inquiries, prev.Inquiries)
			summary.QuotationTrend = s.trend(growth.MetricQuotations, quotations, prev.Quotations)
			summary.PurchaseOrderTrend = s.trend(growth.MetricPurchaseOrders, purchaseOrders, prev.PurchaseOrders)
			summary.ExpiredTrend = s.trend(growth.MetricExpiredQuotations, expired, prev.ExpiredQuotations)
		}

		block = append(block, summary)
	}
	return block, nil
}

func (s *Service) trend(kind growth.Metric, current, previous int) *MetricTrend {
	value := s.calc.Growth(current, previous)
	return &MetricTrend{Growth: value, Text: growth.Insight(kind, value)}
}

// TopCustomers returns purchase-order leaderboards: always the unscoped one
// first, then one per business unit (or just the requested unit), each
// independently truncated to limit.
func (s *Service) TopCustomers(ctx context.Context, limit int, businessUnitID *int64) ([]ScopedTopCustomers, error) {
	if limit <= 0 {
		limit = DefaultTopCustomerLimit
	}

	loader := func(ctx context.Context) (interface{}, error) {
		units, err := s.scopedUnits(ctx, businessUnitID)
		if err != nil {
			return nil, err
		}

		boards := make([]ScopedTopCustomers, 0, len(units)+1)
		board, err := s.leaderboard(ctx, limit, "all", nil)
		if err != nil {
			return nil, err
		}
		boards = append(boards, board)
		for _, unit := range units {
			unitID := unit.ID
			board, err := s.leaderboard(ctx, limit, unit.Name, &unitID)
			if err != nil {
				return nil, err
			}
			boards = append(boards, board)
		}
		return boards, nil
	}

	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		return value.([]ScopedTopCustomers), nil
	}

	key, err := s.cache.BuildKey(ctx, keyTopCustomers(scopeToken(businessUnitID), limit))
	if err != nil {
		return nil, err
	}
	var boards []ScopedTopCustomers
	if err := s.cache.FetchJSON(ctx, key, &boards, loader); err != nil {
		return nil, err
	}
	return boards, nil
}

func (s *Service) leaderboard(ctx context.Context, limit int, scope string, businessUnitID *int64) (ScopedTopCustomers, error) {
	rows, err := s.repo.TopCustomers(ctx, limit, businessUnitID)
	if err != nil {
		return ScopedTopCustomers{}, err
	}
	customers := make([]TopCustomer, 0, len(rows))
	for _, row := range rows {
		customers = append(customers, TopCustomer{
			CustomerID:  row.CustomerID,
			Name:        row.CustomerName,
			Orders:      row.OrderCount,
			Amount:      row.TotalAmount,
			Value:       round1(row.TotalAmount / 1_000_000),
			AmountLabel: s.printer.Sprintf("%.0f", row.TotalAmount),
		})
	}
	return ScopedTopCustomers{Scope: scope, BusinessUnitID: businessUnitID, Customers: customers}, nil
}

// TargetSellingSummary groups target slots by (month, year) across business
// units, newest period first, keeping per-unit line items for drill-down.
func (s *Service) TargetSellingSummary(ctx context.Context) ([]TargetGroup, error) {
	loader := func(ctx context.Context) (interface{}, error) {
		slots, err := s.slots.List(ctx)
		if err != nil {
			return nil, err
		}

		type key struct{ month, year int }
		grouped := make(map[key]*TargetGroup)
		var order []key
		for _, slot := range slots {
			k := key{month: slot.Month, year: slot.Year}
			group, ok := grouped[k]
			if !ok {
				group = &TargetGroup{Month: slot.Month, Year: slot.Year}
				grouped[k] = group
				order = append(order, k)
			}
			group.Target += slot.Target
			group.Actual += slot.Actual
			group.Items = append(group.Items, slot)
		}

		sort.Slice(order, func(i, j int) bool {
			if order[i].year != order[j].year {
				return order[i].year > order[j].year
			}
			return order[i].month > order[j].month
		})

		groups := make([]TargetGroup, 0, len(order))
		for _, k := range order {
			group := grouped[k]
			group.Difference = group.Actual - group.Target
			if group.Target > 0 {
				group.Percentage = round2(group.Actual / group.Target * 100)
			}
			groups = append(groups, *group)
		}
		return groups, nil
	}

	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		return value.([]TargetGroup), nil
	}

	key, err := s.cache.BuildKey(ctx, keyTargetSummary())
	if err != nil {
		return nil, err
	}
	var groups []TargetGroup
	if err := s.cache.FetchJSON(ctx, key, &groups, loader); err != nil {
		return nil, err
	}
	return groups, nil
}

func (s *Service) scopedUnits(ctx context.Context, businessUnitID *int64) ([]sales.BusinessUnit, error) {
	units, err := s.units.ListBusinessUnits(ctx)
	if err != nil {
		return nil, err
	}
	if businessUnitID == nil {
		return units, nil
	}
	for _, unit := range units {
		if unit.ID == *businessUnitID {
			return []sales.BusinessUnit{unit}, nil
		}
	}
	return nil, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
