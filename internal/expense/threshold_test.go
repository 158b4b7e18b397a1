package expense

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateThreshold(t *testing.T) {
	tests := []struct {
		name        string
		limit       string
		spent       string
		wantKind    NotificationKind
		wantMessage string
		wantNil     bool
	}{
		{
			name:    "below ninety percent",
			limit:   "100",
			spent:   "89.99",
			wantNil: true,
		},
		{
			name:        "exactly ninety percent",
			limit:       "100",
			spent:       "90",
			wantKind:    NotificationInfo,
			wantMessage: `Budget "Groceries" has reached 90% of the limit (100).`,
		},
		{
			name:        "between ninety and the limit",
			limit:       "100",
			spent:       "95",
			wantKind:    NotificationInfo,
			wantMessage: `Budget "Groceries" has reached 90% of the limit (100).`,
		},
		{
			name:        "exactly at the limit",
			limit:       "100",
			spent:       "100",
			wantKind:    NotificationWarning,
			wantMessage: `Budget "Groceries" has exceeded the limit of 100.`,
		},
		{
			name:        "over the limit",
			limit:       "100",
			spent:       "120",
			wantKind:    NotificationWarning,
			wantMessage: `Budget "Groceries" has exceeded the limit of 100.`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit := decimal.RequireFromString(tt.limit)
			spent := decimal.RequireFromString(tt.spent)

			draft := EvaluateThreshold("Groceries", limit, spent)

			if tt.wantNil {
				assert.Nil(t, draft)
				return
			}
			require.NotNil(t, draft)
			assert.Equal(t, tt.wantKind, draft.Kind)
			assert.Equal(t, tt.wantMessage, draft.Message)
		})
	}
}

func TestThresholdLevel(t *testing.T) {
	limit := decimal.RequireFromString("200")

	assert.Equal(t, 0, ThresholdLevel(limit, decimal.RequireFromString("179.99")))
	assert.Equal(t, 1, ThresholdLevel(limit, decimal.RequireFromString("180")))
	assert.Equal(t, 1, ThresholdLevel(limit, decimal.RequireFromString("199.99")))
	assert.Equal(t, 2, ThresholdLevel(limit, decimal.RequireFromString("200")))
	assert.Equal(t, 2, ThresholdLevel(limit, decimal.RequireFromString("500")))
}

func TestDecideNotification(t *testing.T) {
	limit := decimal.RequireFromString("100")

	tests := []struct {
		name         string
		oldSpent     string
		newSpent     string
		crossingOnly bool
		wantDraft    bool
	}{
		{
			name:      "crossing into warning fires",
			oldSpent:  "50",
			newSpent:  "110",
			wantDraft: true,
		},
		{
			name:      "staying below fires nothing",
			oldSpent:  "10",
			newSpent:  "20",
			wantDraft: false,
		},
		{
			name:      "default fires on every reconcile above a threshold",
			oldSpent:  "95",
			newSpent:  "96",
			wantDraft: true,
		},
		{
			name:         "crossing-only suppresses repeats at the same level",
			oldSpent:     "95",
			newSpent:     "96",
			crossingOnly: true,
			wantDraft:    false,
		},
		{
			name:         "crossing-only still fires on a level increase",
			oldSpent:     "95",
			newSpent:     "105",
			crossingOnly: true,
			wantDraft:    true,
		},
		{
			name:         "crossing-only suppresses a level decrease",
			oldSpent:     "105",
			newSpent:     "95",
			crossingOnly: true,
			wantDraft:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldSpent := decimal.RequireFromString(tt.oldSpent)
			newSpent := decimal.RequireFromString(tt.newSpent)

			draft := DecideNotification("Travel", limit, oldSpent, newSpent, tt.crossingOnly)

			if tt.wantDraft {
				require.NotNil(t, draft, fmt.Sprintf("expected a draft for %s -> %s", tt.oldSpent, tt.newSpent))
			} else {
				assert.Nil(t, draft)
			}
		})
	}
}
