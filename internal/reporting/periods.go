package reporting

import "time"

// Period is a half-open date interval [Start, End).
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Label renders the period's month bucket, e.g. "2024-03".
func (p Period) Label() string {
	return p.Start.Format("2006-01")
}

// MonthlyPeriods enumerates the n calendar months ending at the month of ref,
// in chronological order.
func MonthlyPeriods(ref time.Time, n int) []Period {
	if n <= 0 {
		return nil
	}
	periods := make([]Period, 0, n)
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(n - 1), 0)
	for i := 0; i < n; i++ {
		start := first.AddDate(0, i, 0)
		periods = append(periods, Period{Start: start, End: start.AddDate(0, 1, 0)})
	}
	return periods
}

// TargetProvider supplies the inquiry target for a period. The default is a
// flat quarterly rate regardless of business unit; per-unit adjustment is an
// extension point, not a current business rule.
type TargetProvider interface {
	TargetFor(periodStart time.Time, businessUnitID *int64) int
}

// QuarterlyTargets is the default TargetProvider: a step function over the
// period's start month.
type QuarterlyTargets struct{}

// TargetFor returns the quarterly inquiry target for the period.
func (QuarterlyTargets) TargetFor(periodStart time.Time, _ *int64) int {
	switch month := int(periodStart.Month()); {
	case month >= 10:
		return 30
	case month >= 7:
		return 25
	case month >= 4:
		return 28
	default:
		return 22
	}
}
