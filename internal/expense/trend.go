package expense

import (
	"github.com/shopspring/decimal"
)

// TrendDirection decides which way a month-over-month change counts as
// positive. Spending going down is good, budget allocation going up is good,
// so the direction belongs to the caller, not to the calculation.
type TrendDirection int

const (
	LowerIsPositive TrendDirection = iota
	HigherIsPositive
)

type TrendResult struct {
	Percent    decimal.Decimal
	IsPositive bool
}

var hundred = decimal.NewFromInt(100)

// Trend compares the current calendar-month figure with the previous one.
// percent = |current - previous| / previous * 100; when there was nothing in
// the previous month, any current value counts as a full 100% swing.
func Trend(current, previous decimal.Decimal, direction TrendDirection) TrendResult {
	var percent decimal.Decimal
	switch {
	case previous.IsPositive():
		percent = current.Sub(previous).Div(previous).Mul(hundred).Abs()
	case current.IsPositive():
		percent = hundred
	default:
		percent = decimal.Zero
	}

	var isPositive bool
	if direction == HigherIsPositive {
		isPositive = current.GreaterThanOrEqual(previous)
	} else {
		isPositive = current.LessThanOrEqual(previous)
	}

	return TrendResult{Percent: percent, IsPositive: isPositive}
}
