package expense

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var ninetyPercent = decimal.NewFromFloat(0.9)

// NotificationDraft is what a threshold crossing produces before it is
// persisted with an id, owner and timestamp.
type NotificationDraft struct {
	Kind    NotificationKind
	Message string
}

// ThresholdLevel classifies spent against limit: 0 below 90%, 1 at or above
// 90%, 2 at or above the limit.
func ThresholdLevel(limit, spent decimal.Decimal) int {
	switch {
	case spent.GreaterThanOrEqual(limit):
		return 2
	case spent.GreaterThanOrEqual(limit.Mul(ninetyPercent)):
		return 1
	default:
		return 0
	}
}

// EvaluateThreshold returns the notification a budget should emit for its
// current spent total, or nil when spending is below 90% of the limit.
func EvaluateThreshold(budgetName string, limit, spent decimal.Decimal) *NotificationDraft {
	switch ThresholdLevel(limit, spent) {
	case 2:
		return &NotificationDraft{
			Kind:    NotificationWarning,
			Message: fmt.Sprintf("Budget %q has exceeded the limit of %s.", budgetName, limit),
		}
	case 1:
		return &NotificationDraft{
			Kind:    NotificationInfo,
			Message: fmt.Sprintf("Budget %q has reached 90%% of the limit (%s).", budgetName, limit),
		}
	default:
		return nil
	}
}

// DecideNotification applies the dedup policy on top of EvaluateThreshold.
// The default (crossingOnly=false) matches the observed behavior: every
// reconciliation of a budget sitting above a threshold emits a fresh
// notification. With crossingOnly set, a notification fires only when the
// threshold level actually changed upward.
func DecideNotification(budgetName string, limit, oldSpent, newSpent decimal.Decimal, crossingOnly bool) *NotificationDraft {
	if crossingOnly && ThresholdLevel(limit, newSpent) <= ThresholdLevel(limit, oldSpent) {
		return nil
	}
	return EvaluateThreshold(budgetName, limit, newSpent)
}
