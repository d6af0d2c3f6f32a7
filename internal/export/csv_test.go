package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripdash/internal/model"
)

func TestWriteLogsCSV(t *testing.T) {
	logs := []model.DriverLog{
		{
			DayNumber:           1,
			LogDate:             "2026-03-01",
			TotalDrivingMinutes: 660,
			TotalOnDutyMinutes:  120,
			TotalOffDutyMinutes: 600,
			TotalDistanceMiles:  512.4,
			Notes:               "first leg",
		},
		{DayNumber: 2, LogDate: "2026-03-02", TotalSleeperMinutes: 480},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteLogsCSV(&buf, "trip-1", logs))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "trip_id", rows[0][0])
	assert.Equal(t, []string{"trip-1", "1", "2026-03-01", "11.00", "2.00", "10.00", "0.00", "512.4", "first leg"}, rows[1])
	assert.Equal(t, "8.00", rows[2][6])
}

func TestWriteLogsCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLogsCSV(&buf, "trip-1", nil))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1) // header only
}

func TestCSVFilename(t *testing.T) {
	assert.Equal(t, "trip_abc_logs.csv", CSVFilename("abc"))
}
