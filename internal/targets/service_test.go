package targets

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lns-erp/lns-erp/internal/sales"
)

type memRepo struct {
	nextID      int64
	slots       map[int64]TargetSlot
	failCreates bool
	creates     int
}

func newMemRepo(slots ...TargetSlot) *memRepo {
	repo := &memRepo{slots: make(map[int64]TargetSlot)}
	for _, slot := range slots {
		if slot.ID > repo.nextID {
			repo.nextID = slot.ID
		}
		repo.slots[slot.ID] = slot
	}
	return repo
}

// WithTx snapshots the store and restores it when fn fails, mirroring the
// all-or-nothing contract of the real transaction.
func (m *memRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	snapshot := make(map[int64]TargetSlot, len(m.slots))
	for id, slot := range m.slots {
		snapshot[id] = slot
	}
	if err := fn(ctx, m); err != nil {
		m.slots = snapshot
		return err
	}
	return nil
}

func (m *memRepo) List(context.Context) ([]TargetSlot, error) {
	out := make([]TargetSlot, 0, len(m.slots))
	for _, slot := range m.slots {
		out = append(out, slot)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memRepo) Get(_ context.Context, id int64) (*TargetSlot, error) {
	slot, ok := m.slots[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &slot, nil
}

func (m *memRepo) FindSlot(_ context.Context, month, year int, unitID int64) (*TargetSlot, error) {
	for _, slot := range m.slots {
		if slot.Month == month && slot.Year == year && slot.BusinessUnitID == unitID {
			found := slot
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memRepo) Create(_ context.Context, slot TargetSlot) (int64, error) {
	m.creates++
	if m.failCreates && m.creates > 1 {
		return 0, errors.New("insert failed")
	}
	m.nextID++
	slot.ID = m.nextID
	m.slots[slot.ID] = slot
	return slot.ID, nil
}

func (m *memRepo) Update(_ context.Context, id int64, updates map[string]interface{}) error {
	slot, ok := m.slots[id]
	if !ok {
		return ErrNotFound
	}
	for column, value := range updates {
		switch column {
		case "month":
			slot.Month = value.(int)
		case "year":
			slot.Year = value.(int)
		case "business_unit_id":
			slot.BusinessUnitID = value.(int64)
		case "target":
			slot.Target = value.(float64)
		case "actual":
			slot.Actual = value.(float64)
		case "difference":
			slot.Difference = value.(float64)
		case "percentage":
			slot.Percentage = value.(float64)
		}
	}
	m.slots[id] = slot
	return nil
}

func (m *memRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.slots[id]; !ok {
		return ErrNotFound
	}
	delete(m.slots, id)
	return nil
}

type memUnits struct {
	units []sales.BusinessUnit
}

func (m *memUnits) ListBusinessUnits(context.Context) ([]sales.BusinessUnit, error) {
	return m.units, nil
}

type countingBumper struct {
	bumps int
}

func (c *countingBumper) Bump(context.Context) error {
	c.bumps++
	return nil
}

func twoUnits() *memUnits {
	return &memUnits{units: []sales.BusinessUnit{
		{ID: 1, Name: "Machining"},
		{ID: 2, Name: "Fabrication"},
	}}
}

func TestAvailableMonthsEmptyHorizon(t *testing.T) {
	svc := NewService(newMemRepo(), twoUnits(), Horizon{FromYear: 2023, ToYear: 2027}, nil)

	years, err := svc.AvailableMonths(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, years, 5)

	total := 0
	for _, year := range years {
		total += len(year.Months)
	}
	assert.Equal(t, 60, total)
	assert.Equal(t, 2023, years[0].Year)
	assert.Equal(t, "January", years[0].Months[0].Label)
	assert.Equal(t, 1, years[0].Months[0].Value)
}

func TestAvailableMonthsExcludesTaken(t *testing.T) {
	repo := newMemRepo(TargetSlot{ID: 1, Month: 3, Year: 2024, BusinessUnitID: 1})
	svc := NewService(repo, twoUnits(), Horizon{FromYear: 2024, ToYear: 2024}, nil)

	years, err := svc.AvailableMonths(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, years, 1)
	require.Len(t, years[0].Months, 11)
	for _, option := range years[0].Months {
		assert.NotEqual(t, 3, option.Value)
	}
}

func TestAvailableMonthsReinsertsReserve(t *testing.T) {
	repo := newMemRepo(
		TargetSlot{ID: 1, Month: 3, Year: 2024, BusinessUnitID: 1},
		TargetSlot{ID: 2, Month: 5, Year: 2024, BusinessUnitID: 1},
	)
	svc := NewService(repo, twoUnits(), Horizon{FromYear: 2024, ToYear: 2024}, nil)

	years, err := svc.AvailableMonths(context.Background(), &Slot{Month: 3, Year: 2024})
	require.NoError(t, err)
	require.Len(t, years, 1)
	require.Len(t, years[0].Months, 11)

	values := make([]int, 0, len(years[0].Months))
	for _, option := range years[0].Months {
		values = append(values, option.Value)
	}
	assert.Contains(t, values, 3)
	assert.NotContains(t, values, 5)
	assert.True(t, sort.IntsAreSorted(values))
}

func TestAllocateUniformCreatesAndSkips(t *testing.T) {
	repo := newMemRepo(TargetSlot{ID: 1, Month: 6, Year: 2024, BusinessUnitID: 1, Target: 50})
	bumper := &countingBumper{}
	svc := NewService(repo, twoUnits(), DefaultHorizon, bumper)

	result, err := svc.AllocateUniform(context.Background(), 6, 2024, 120)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, bumper.bumps)

	created, err := repo.FindSlot(context.Background(), 6, 2024, 2)
	require.NoError(t, err)
	assert.Equal(t, 120.0, created.Target)
	assert.Equal(t, 0.0, created.Actual)
	assert.Equal(t, -120.0, created.Difference)
	assert.Equal(t, 0.0, created.Percentage)

	// The pre-existing slot keeps its original target.
	kept, err := repo.FindSlot(context.Background(), 6, 2024, 1)
	require.NoError(t, err)
	assert.Equal(t, 50.0, kept.Target)
}

func TestAllocateUniformRollsBackOnFailure(t *testing.T) {
	repo := newMemRepo()
	repo.failCreates = true
	svc := NewService(repo, twoUnits(), DefaultHorizon, nil)

	_, err := svc.AllocateUniform(context.Background(), 4, 2024, 100)
	require.Error(t, err)

	slots, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, slots, "a failed allocation must not leave partial rows")
}

func TestAllocateUniformRejectsInvalidPeriod(t *testing.T) {
	svc := NewService(newMemRepo(), twoUnits(), DefaultHorizon, nil)

	_, err := svc.AllocateUniform(context.Background(), 13, 2024, 100)
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	_, err = svc.AllocateUniform(context.Background(), 5, 1999, 100)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestAllocatePerUnitSkipsUnknownUnits(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, twoUnits(), DefaultHorizon, nil)

	result, err := svc.AllocatePerUnit(context.Background(), 7, 2025, map[int64]float64{
		1:  80,
		2:  90,
		99: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 1, result.Skipped)

	slot, err := repo.FindSlot(context.Background(), 7, 2025, 2)
	require.NoError(t, err)
	assert.Equal(t, 90.0, slot.Target)

	_, err = repo.FindSlot(context.Background(), 7, 2025, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateRejectsOccupiedSlot(t *testing.T) {
	repo := newMemRepo(
		TargetSlot{ID: 1, Month: 2, Year: 2024, BusinessUnitID: 1, Target: 100},
		TargetSlot{ID: 2, Month: 3, Year: 2024, BusinessUnitID: 1, Target: 100},
	)
	svc := NewService(repo, twoUnits(), DefaultHorizon, nil)

	month := 3
	_, err := svc.Update(context.Background(), 1, UpdateSlotRequest{Month: &month})
	assert.ErrorIs(t, err, ErrSlotTaken)

	// Keeping the record's own slot is not a collision.
	target := 150.0
	updated, err := svc.Update(context.Background(), 1, UpdateSlotRequest{Target: &target})
	require.NoError(t, err)
	assert.Equal(t, 150.0, updated.Target)
	assert.Equal(t, 2, updated.Month)
}

func TestUpdateRecomputesDerivedFields(t *testing.T) {
	repo := newMemRepo(TargetSlot{ID: 1, Month: 2, Year: 2024, BusinessUnitID: 1, Target: 100, Actual: 0, Difference: -100})
	bumper := &countingBumper{}
	svc := NewService(repo, twoUnits(), DefaultHorizon, bumper)

	target, actual := 200.0, 150.0
	updated, err := svc.Update(context.Background(), 1, UpdateSlotRequest{Target: &target, Actual: &actual})
	require.NoError(t, err)
	assert.Equal(t, -50.0, updated.Difference)
	assert.Equal(t, 75.0, updated.Percentage)
	assert.Equal(t, 1, bumper.bumps)
}

func TestUpdateWithoutBothFiguresLeavesDerivedAlone(t *testing.T) {
	repo := newMemRepo(TargetSlot{ID: 1, Month: 2, Year: 2024, BusinessUnitID: 1, Target: 100, Actual: 40, Difference: -60, Percentage: 40})
	svc := NewService(repo, twoUnits(), DefaultHorizon, nil)

	target := 200.0
	updated, err := svc.Update(context.Background(), 1, UpdateSlotRequest{Target: &target})
	require.NoError(t, err)
	assert.Equal(t, 200.0, updated.Target)
	assert.Equal(t, -60.0, updated.Difference)
	assert.Equal(t, 40.0, updated.Percentage)
}

func TestDeleteBumpsCache(t *testing.T) {
	repo := newMemRepo(TargetSlot{ID: 1, Month: 2, Year: 2024, BusinessUnitID: 1})
	bumper := &countingBumper{}
	svc := NewService(repo, twoUnits(), DefaultHorizon, bumper)

	require.NoError(t, svc.Delete(context.Background(), 1))
	assert.Equal(t, 1, bumper.bumps)
	assert.ErrorIs(t, svc.Delete(context.Background(), 1), ErrNotFound)
	assert.Equal(t, 1, bumper.bumps)
}
