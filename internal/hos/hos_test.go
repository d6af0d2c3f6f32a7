package hos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePlanSingleDay(t *testing.T) {
	plans, err := GeneratePlan(8, 0)
	require.NoError(t, err)
	require.Len(t, plans, 1)

	p := plans[0]
	assert.Equal(t, 1, p.DayNumber)
	assert.Equal(t, 480, p.TotalDrivingMinutes)
	assert.Equal(t, 600, p.TotalOnDutyMinutes) // driving + 2h buffer
	assert.Equal(t, 600, p.TotalOffDutyMinutes)
	assert.Equal(t, 0, p.TotalSleeperMinutes)
	assert.InDelta(t, 60.0, p.RemainingCycleHours, 1e-9)
	require.Len(t, p.Segments, 3)
	assert.Equal(t, 120, p.Segments[0].Minutes) // pre/post trip
}

func TestGeneratePlanMultiDayCapsDriving(t *testing.T) {
	plans, err := GeneratePlan(25, 0)
	require.NoError(t, err)
	require.Len(t, plans, 3)
	assert.Equal(t, 660, plans[0].TotalDrivingMinutes) // 11h cap
	assert.Equal(t, 780, plans[0].TotalOnDutyMinutes)  // 13h = 11 + 2
	assert.Equal(t, 660, plans[1].TotalDrivingMinutes)
	assert.Equal(t, 180, plans[2].TotalDrivingMinutes) // 3h remainder
}

func TestGeneratePlanCycleCap(t *testing.T) {
	// Only 5 cycle hours left: a single short day.
	plans, err := GeneratePlan(40, 65)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, 300, plans[0].TotalDrivingMinutes)
	assert.Equal(t, 300, plans[0].TotalOnDutyMinutes) // capped by cycle, no buffer room
	assert.InDelta(t, 0.0, plans[0].RemainingCycleHours, 1e-9)
}

func TestGeneratePlanErrors(t *testing.T) {
	_, err := GeneratePlan(-1, 0)
	assert.ErrorIs(t, err, ErrNegativeTripHours)

	_, err = GeneratePlan(10, 70)
	assert.ErrorIs(t, err, ErrCycleExhausted)

	_, err = GeneratePlan(0, 10)
	assert.ErrorIs(t, err, ErrNoHoursAvailable)
}

func TestEvaluateAlertsNearLimits(t *testing.T) {
	plans := []DailyPlan{
		{DayNumber: 1, TotalDrivingMinutes: 660, TotalOnDutyMinutes: 780, RemainingCycleHours: 50},
	}
	alerts := EvaluateAlerts(plans, 0)
	require.Len(t, alerts, 1)
	assert.Equal(t, "warning", alerts[0].Level)
	assert.Equal(t, "11-hour driving limit", alerts[0].Rule)
	assert.Equal(t, 1, alerts[0].DayNumber)
}

func TestEvaluateAlertsOverLimits(t *testing.T) {
	plans := []DailyPlan{
		{DayNumber: 2, TotalDrivingMinutes: 720, TotalOnDutyMinutes: 900, RemainingCycleHours: -1},
	}
	alerts := EvaluateAlerts(plans, 0)
	require.Len(t, alerts, 3)
	for _, a := range alerts {
		assert.Equal(t, "danger", a.Level)
	}
}

func TestEvaluateAlertsCycleProjection(t *testing.T) {
	plans := []DailyPlan{
		{DayNumber: 1, TotalDrivingMinutes: 300, TotalOnDutyMinutes: 420, RemainingCycleHours: 56},
	}
	// 60 used + 7 planned = 67, over 90% of 70.
	alerts := EvaluateAlerts(plans, 60)
	var cycleAlerts []string
	for _, a := range alerts {
		if a.DayNumber == 0 {
			cycleAlerts = append(cycleAlerts, a.Level)
		}
	}
	require.Len(t, cycleAlerts, 1)
	assert.Equal(t, "warning", cycleAlerts[0])

	// 65 used + 7 planned = 72, full cycle consumed.
	alerts = EvaluateAlerts(plans, 65)
	found := false
	for _, a := range alerts {
		if a.DayNumber == 0 {
			found = true
			assert.Equal(t, "danger", a.Level)
		}
	}
	assert.True(t, found)
}

func TestEvaluateAlertsQuietPlan(t *testing.T) {
	plans := []DailyPlan{
		{DayNumber: 1, TotalDrivingMinutes: 300, TotalOnDutyMinutes: 420, RemainingCycleHours: 63},
	}
	assert.Empty(t, EvaluateAlerts(plans, 0))
}
