// Package export renders driver-log data for external systems. CSV only;
// ELD reviewers import it into their own tooling.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"tripdash/internal/model"
)

// CSVFilename names the attachment for a trip's log export.
func CSVFilename(tripID string) string {
	return fmt.Sprintf("trip_%s_logs.csv", tripID)
}

// WriteLogsCSV streams one row per log day. Durations are reported in
// hours to match what ELD reviewers expect.
func WriteLogsCSV(w io.Writer, tripID string, logs []model.DriverLog) error {
	cw := csv.NewWriter(w)
	header := []string{
		"trip_id", "day_number", "log_date",
		"total_driving_hours", "total_on_duty_hours",
		"total_off_duty_hours", "total_sleeper_hours",
		"total_distance_miles", "notes",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, l := range logs {
		row := []string{
			tripID,
			fmt.Sprintf("%d", l.DayNumber),
			l.LogDate,
			formatHours(l.TotalDrivingMinutes),
			formatHours(l.TotalOnDutyMinutes),
			formatHours(l.TotalOffDutyMinutes),
			formatHours(l.TotalSleeperMinutes),
			fmt.Sprintf("%.1f", l.TotalDistanceMiles),
			l.Notes,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatHours(minutes int) string {
	return fmt.Sprintf("%.2f", float64(minutes)/60)
}
