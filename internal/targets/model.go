// Package targets implements the Company Growth Selling module: persisted
// monthly sales targets per business unit, the month/year slot allocator that
// backs the target forms, and the derived target-vs-actual figures.
package targets

import (
	"math"
	"time"
)

// TargetSlot is one persisted (month, year, business unit) sales target.
type TargetSlot struct {
	ID             int64     `json:"id"`
	Month          int       `json:"month"`
	Year           int       `json:"year"`
	BusinessUnitID int64     `json:"business_unit_id"`
	Target         float64   `json:"target"`
	Actual         float64   `json:"actual"`
	Difference     float64   `json:"difference"`
	Percentage     float64   `json:"percentage"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Slot identifies a (month, year) pair independent of business unit.
type Slot struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// MonthOption is a display-ready select option for one available month.
type MonthOption struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// YearAvailability lists the months still open for one horizon year. Years
// with no open months are kept with an empty list.
type YearAvailability struct {
	Year   int           `json:"year"`
	Months []MonthOption `json:"months"`
}

// deriveFields computes difference and percentage from target and actual.
// A zero target yields percentage 0 rather than dividing.
func deriveFields(target, actual float64) (difference, percentage float64) {
	difference = actual - target
	if target > 0 {
		percentage = math.Round(actual / target * 100)
	}
	return difference, percentage
}
