package growth

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrowthWithBaseline(t *testing.T) {
	calc := NewCalculator(rand.New(rand.NewSource(1)))

	assert.Equal(t, 50.0, calc.Growth(150, 100))
	assert.Equal(t, -50.0, calc.Growth(50, 100))
	assert.Equal(t, 0.0, calc.Growth(100, 100))
	// one-decimal rounding
	assert.Equal(t, 33.3, calc.Growth(4, 3))
}

func TestGrowthNoActivity(t *testing.T) {
	calc := NewCalculator(rand.New(rand.NewSource(1)))
	assert.Equal(t, 0.0, calc.Growth(0, 0))
}

func TestGrowthFallbackRange(t *testing.T) {
	calc := NewCalculator(rand.New(rand.NewSource(42)))
	for i := 0; i < 100; i++ {
		v := calc.Growth(5, 0)
		require.GreaterOrEqual(t, v, 5.0)
		require.LessOrEqual(t, v, 15.0)
	}
}

func TestGrowthFallbackIsDeterministicWithPinnedSeed(t *testing.T) {
	a := NewCalculator(rand.New(rand.NewSource(7)))
	b := NewCalculator(rand.New(rand.NewSource(7)))
	for i := 0; i < 10; i++ {
		require.Equal(t, a.Growth(3, 0), b.Growth(3, 0))
	}
}

func TestInsightTiers(t *testing.T) {
	cases := []struct {
		name   string
		kind   Metric
		value  float64
		expect []string
	}{
		{"strong increase", MetricInquiries, 25.0, []string{"increase", "sharply", "25.0%"}},
		{"tier boundary at ten", MetricInquiries, 10.0, []string{"sharply", "10.0%"}},
		{"modest increase", MetricQuotations, 4.5, []string{"increase", "slightly", "4.5%"}},
		{"decline", MetricPurchaseOrders, -12.5, []string{"decrease", "12.5%"}},
		{"flat counts as low tier", MetricPurchaseOrders, 0, []string{"increase", "0.0%"}},
		{"expired quotations climbing", MetricExpiredQuotations, 18, []string{"increase", "re-engage"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Insight(tc.kind, tc.value)
			require.NotEmpty(t, got)
			for _, fragment := range tc.expect {
				assert.True(t, strings.Contains(got, fragment), "%q should contain %q", got, fragment)
			}
		})
	}
}

func TestInsightUnknownMetric(t *testing.T) {
	assert.Empty(t, Insight(Metric("unknown"), 12))
}
