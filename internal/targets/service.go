package targets

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/lns-erp/lns-erp/internal/sales"
	"github.com/lns-erp/lns-erp/internal/shared"
)

// ErrInvalidPeriod flags a month or year outside the accepted bounds. It
// wraps shared.ErrValidation so transport layers can classify it uniformly.
var ErrInvalidPeriod = fmt.Errorf("%w: month or year out of range", shared.ErrValidation)

// Horizon is the contiguous range of calendar years offered by the slot
// allocator.
type Horizon struct {
	FromYear int
	ToYear   int
}

// DefaultHorizon matches the years currently offered by the target forms.
var DefaultHorizon = Horizon{FromYear: 2023, ToYear: 2027}

// UnitDirectory resolves the known business units.
type UnitDirectory interface {
	ListBusinessUnits(ctx context.Context) ([]sales.BusinessUnit, error)
}

// CacheBumper invalidates derived dashboard caches after slot mutations.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

// Service implements slot availability and target allocation.
type Service struct {
	repo    Repository
	units   UnitDirectory
	horizon Horizon
	cache   CacheBumper
}

// NewService wires the allocator. cache may be nil.
func NewService(repo Repository, units UnitDirectory, horizon Horizon, cache CacheBumper) *Service {
	if horizon.FromYear == 0 || horizon.ToYear < horizon.FromYear {
		horizon = DefaultHorizon
	}
	return &Service{repo: repo, units: units, horizon: horizon, cache: cache}
}

// List returns every persisted slot, newest period first.
func (s *Service) List(ctx context.Context) ([]TargetSlot, error) {
	return s.repo.List(ctx)
}

// Get returns a single slot by id.
func (s *Service) Get(ctx context.Context, id int64) (*TargetSlot, error) {
	return s.repo.Get(ctx, id)
}

// AvailableMonths computes, for every year in the horizon, the months that
// have no target recorded yet. When reserve is non-nil (edit forms), that
// month is re-inserted so the record under edit stays selectable for its own
// slot. Years with nothing left still appear with an empty option list.
func (s *Service) AvailableMonths(ctx context.Context, reserve *Slot) ([]YearAvailability, error) {
	existing, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}

	taken := make(map[int]map[int]bool)
	for _, slot := range existing {
		if taken[slot.Year] == nil {
			taken[slot.Year] = make(map[int]bool)
		}
		taken[slot.Year][slot.Month] = true
	}

	result := make([]YearAvailability, 0, s.horizon.ToYear-s.horizon.FromYear+1)
	for year := s.horizon.FromYear; year <= s.horizon.ToYear; year++ {
		var months []int
		for month := 1; month <= 12; month++ {
			if !taken[year][month] {
				months = append(months, month)
			}
		}
		if reserve != nil && reserve.Year == year {
			if !containsInt(months, reserve.Month) {
				months = append(months, reserve.Month)
				sort.Ints(months)
			}
		}
		options := make([]MonthOption, 0, len(months))
		for _, month := range months {
			options = append(options, MonthOption{Value: month, Label: shared.MonthName(month)})
		}
		result = append(result, YearAvailability{Year: year, Months: options})
	}
	return result, nil
}

// AllocateUniform creates one slot per business unit for (month, year) with
// the same target. Units that already hold the slot are skipped without
// error. All inserts run in one transaction; any failure rolls back every
// record created by this call.
func (s *Service) AllocateUniform(ctx context.Context, month, year int, target float64) (AllocationResult, error) {
	if err := validatePeriod(month, year); err != nil {
		return AllocationResult{}, err
	}

	units, err := s.units.ListBusinessUnits(ctx)
	if err != nil {
		return AllocationResult{}, fmt.Errorf("list business units: %w", err)
	}

	var result AllocationResult
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		for _, unit := range units {
			created, err := createIfAbsent(ctx, repo, month, year, unit.ID, target)
			if err != nil {
				return err
			}
			if created {
				result.Created++
			} else {
				result.Skipped++
			}
		}
		return nil
	})
	if err != nil {
		return AllocationResult{}, err
	}

	s.bump(ctx)
	return result, nil
}

// AllocatePerUnit creates slots for the supplied unit → target pairs only.
// Unknown business-unit ids and units already holding the slot are skipped
// silently. Same all-or-nothing transaction contract as AllocateUniform.
func (s *Service) AllocatePerUnit(ctx context.Context, month, year int, perUnit map[int64]float64) (AllocationResult, error) {
	if err := validatePeriod(month, year); err != nil {
		return AllocationResult{}, err
	}

	units, err := s.units.ListBusinessUnits(ctx)
	if err != nil {
		return AllocationResult{}, fmt.Errorf("list business units: %w", err)
	}
	known := make(map[int64]bool, len(units))
	for _, unit := range units {
		known[unit.ID] = true
	}

	unitIDs := make([]int64, 0, len(perUnit))
	for id := range perUnit {
		unitIDs = append(unitIDs, id)
	}
	sort.Slice(unitIDs, func(i, j int) bool { return unitIDs[i] < unitIDs[j] })

	var result AllocationResult
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		for _, unitID := range unitIDs {
			if !known[unitID] {
				result.Skipped++
				continue
			}
			created, err := createIfAbsent(ctx, repo, month, year, unitID, perUnit[unitID])
			if err != nil {
				return err
			}
			if created {
				result.Created++
			} else {
				result.Skipped++
			}
		}
		return nil
	})
	if err != nil {
		return AllocationResult{}, err
	}

	s.bump(ctx)
	return result, nil
}

// Update mutates one slot. Moving it onto a (month, year) held by a
// different record is rejected with ErrSlotTaken; unlike the bulk paths this
// is a hard error, matching the edit form contract.
func (s *Service) Update(ctx context.Context, id int64, req UpdateSlotRequest) (*TargetSlot, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	month := existing.Month
	if req.Month != nil {
		month = *req.Month
	}
	year := existing.Year
	if req.Year != nil {
		year = *req.Year
	}
	unitID := existing.BusinessUnitID
	if req.BusinessUnitID != nil {
		unitID = *req.BusinessUnitID
	}
	if err := validatePeriod(month, year); err != nil {
		return nil, err
	}

	if other, err := s.repo.FindSlot(ctx, month, year, unitID); err == nil {
		if other.ID != id {
			return nil, ErrSlotTaken
		}
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Month != nil {
		updates["month"] = month
	}
	if req.Year != nil {
		updates["year"] = year
	}
	if req.BusinessUnitID != nil {
		updates["business_unit_id"] = unitID
	}
	if req.Target != nil {
		updates["target"] = *req.Target
	}
	if req.Actual != nil {
		updates["actual"] = *req.Actual
	}
	if req.Target != nil && req.Actual != nil {
		difference, percentage := deriveFields(*req.Target, *req.Actual)
		updates["difference"] = difference
		updates["percentage"] = percentage
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, err
		}
		s.bump(ctx)
	}

	return s.repo.Get(ctx, id)
}

// Delete removes one slot.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

func createIfAbsent(ctx context.Context, repo Repository, month, year int, unitID int64, target float64) (bool, error) {
	_, err := repo.FindSlot(ctx, month, year, unitID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}

	difference, percentage := deriveFields(target, 0)
	_, err = repo.Create(ctx, TargetSlot{
		Month:          month,
		Year:           year,
		BusinessUnitID: unitID,
		Target:         target,
		Actual:         0,
		Difference:     difference,
		Percentage:     percentage,
	})
	if err != nil {
		return false, fmt.Errorf("create slot for unit %d: %w", unitID, err)
	}
	return true, nil
}

func validatePeriod(month, year int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: month %d", ErrInvalidPeriod, month)
	}
	if year < 2000 || year > 2050 {
		return fmt.Errorf("%w: year %d", ErrInvalidPeriod, year)
	}
	return nil
}

func (s *Service) bump(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Bump(ctx)
}

func containsInt(values []int, v int) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}
