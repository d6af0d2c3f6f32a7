package trip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripdash/internal/model"
)

func TestCheckCompletionFlagsPartialDays(t *testing.T) {
	logs := []model.DriverLog{
		{DayNumber: 1, TotalDrivingMinutes: 600, TotalOnDutyMinutes: 120, TotalOffDutyMinutes: 240, TotalSleeperMinutes: 480},
		{DayNumber: 2, TotalDrivingMinutes: 660, TotalOnDutyMinutes: 360, TotalOffDutyMinutes: 240, TotalSleeperMinutes: 240},
	}
	// day1 = 1440, day2 = 1500
	report := CheckCompletion(logs)
	require.Len(t, report.Flagged, 1)
	assert.Equal(t, 2, report.Flagged[0].DayNumber)
	assert.Equal(t, 1500, report.Flagged[0].TotalMinutes)
	assert.False(t, report.Skipped)
}

func TestCheckCompletionZeroTotalsPass(t *testing.T) {
	report := CheckCompletion([]model.DriverLog{{DayNumber: 1}})
	assert.Empty(t, report.Flagged)
}

func TestCheckCompletionMultiDayLog(t *testing.T) {
	// 2880 = exactly two days, acceptable.
	report := CheckCompletion([]model.DriverLog{
		{DayNumber: 1, TotalOffDutyMinutes: 2880},
	})
	assert.Empty(t, report.Flagged)
}

func TestCheckCompletionEmpty(t *testing.T) {
	report := CheckCompletion(nil)
	assert.NotNil(t, report.Flagged)
	assert.Empty(t, report.Flagged)
}

func TestSkippedReport(t *testing.T) {
	report := SkippedReport()
	assert.True(t, report.Skipped)
	assert.Empty(t, report.Flagged)
}
