package billing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithinLimit(t *testing.T) {
	tests := []struct {
		name    string
		current int
		limit   int
		want    bool
	}{
		{name: "under the limit", current: 2, limit: 3, want: true},
		{name: "at the limit", current: 3, limit: 3, want: false},
		{name: "over the limit", current: 4, limit: 3, want: false},
		{name: "zero limit denies even at zero usage", current: 0, limit: 0, want: false},
		{name: "unlimited allows any usage", current: 1_000_000, limit: Unlimited, want: true},
		{name: "unlimited allows zero usage", current: 0, limit: Unlimited, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, withinLimit(tt.current, tt.limit))
		})
	}
}

func TestGetPlanByPriceID(t *testing.T) {
	plan := GetPlanByPriceID("price_signly_growth_monthly")
	require.NotNil(t, plan)
	require.Equal(t, "growth", plan.ID)

	require.Nil(t, GetPlanByPriceID("price_unknown"))
	require.Nil(t, GetPlanByPriceID(""))
}

func TestDefaultPlanExists(t *testing.T) {
	plan := GetPlan(DefaultPlanID)
	require.NotNil(t, plan)
	require.Zero(t, plan.MonthlyPriceCents)
}
