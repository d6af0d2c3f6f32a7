package trip

import "tripdash/internal/model"

const minutesPerDay = 1440

// CheckCompletion flags every log whose duty minutes do not sum to whole
// days. The result is advisory: the operator sees the flags and may
// complete the trip anyway.
func CheckCompletion(logs []model.DriverLog) model.ComplianceReport {
	report := model.ComplianceReport{Flagged: []model.ComplianceFlag{}}
	for _, l := range logs {
		total := l.TotalMinutes()
		if total > 0 && total%minutesPerDay != 0 {
			report.Flagged = append(report.Flagged, model.ComplianceFlag{
				DayNumber:    l.DayNumber,
				TotalMinutes: total,
			})
		}
	}
	return report
}

// SkippedReport marks that log retrieval failed and verification did not
// run. Completion still proceeds; the boundary layer surfaces the skip.
func SkippedReport() model.ComplianceReport {
	return model.ComplianceReport{Flagged: []model.ComplianceFlag{}, Skipped: true}
}
