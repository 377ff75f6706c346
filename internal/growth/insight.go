package growth

import (
	"fmt"
	"math"
)

// Direction labels for insight copy.
const (
	DirectionIncrease = "increase"
	DirectionDecrease = "decrease"
)

// tierMessages holds the per-metric templates for the three growth tiers:
// High for growth >= 10, Mid for 0 < growth < 10, Low for growth <= 0.
// Each template receives the direction word and the absolute growth value.
type tierMessages struct {
	High string
	Mid  string
	Low  string
}

var insightMessages = map[Metric]tierMessages{
	MetricInquiries: {
		High: "Customer inquiries %s sharply by %.1f%% compared to the previous period",
		Mid:  "Customer inquiries %s slightly by %.1f%% compared to the previous period",
		Low:  "Customer inquiries %s by %.1f%%; follow up open prospects to recover momentum",
	},
	MetricQuotations: {
		High: "Valid quotations %s sharply by %.1f%% compared to the previous period",
		Mid:  "Valid quotations %s slightly by %.1f%% compared to the previous period",
		Low:  "Valid quotations %s by %.1f%%; review pending inquiries awaiting a quote",
	},
	MetricPurchaseOrders: {
		High: "Purchase orders %s sharply by %.1f%% compared to the previous period",
		Mid:  "Purchase orders %s slightly by %.1f%% compared to the previous period",
		Low:  "Purchase orders %s by %.1f%%; push negotiations approaching their due date",
	},
	MetricExpiredQuotations: {
		High: "Expired quotations %s sharply by %.1f%%; re-engage customers before quotes lapse",
		Mid:  "Expired quotations %s slightly by %.1f%%; re-engage customers before quotes lapse",
		Low:  "Expired quotations %s by %.1f%% compared to the previous period",
	},
}

// Insight renders the qualitative text for a metric's growth figure.
func Insight(kind Metric, value float64) string {
	msgs, ok := insightMessages[kind]
	if !ok {
		return ""
	}
	direction := DirectionIncrease
	if value < 0 {
		direction = DirectionDecrease
	}
	var tpl string
	switch {
	case value >= 10:
		tpl = msgs.High
	case value > 0:
		tpl = msgs.Mid
	default:
		tpl = msgs.Low
	}
	return fmt.Sprintf(tpl, direction, math.Abs(value))
}
