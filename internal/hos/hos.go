// Package hos generates planning-time hours-of-service daily duty plans
// and evaluates FMCSA limit alerts over them.
package hos

import (
	"errors"
	"fmt"
	"math"

	"tripdash/internal/model"
)

// FMCSA property-carrying driver limits (Part 395).
const (
	DrivingLimitHours     = 11.0
	OnDutyLimitHours      = 14.0
	CycleLimitHours       = 70.0 // 8-day cycle
	MandatoryOffDutyHours = 10.0
	OnDutyBufferHours     = 2.0 // loading, inspections, fueling
)

var (
	ErrNegativeTripHours = errors.New("trip duration must be non-negative")
	ErrCycleExhausted    = errors.New("driver has exhausted the 70-hour cycle; trip cannot be scheduled")
	ErrNoHoursAvailable  = errors.New("no remaining hours available to schedule this trip")
)

// PlanSegment is one duty block of a generated daily plan.
type PlanSegment struct {
	Status  model.DutyStatus `json:"status"`
	Minutes int              `json:"minutes"`
	Remarks string           `json:"remarks"`
}

// DailyPlan is one generated HOS-compliant day.
type DailyPlan struct {
	DayNumber           int           `json:"dayNumber"`
	TotalDrivingMinutes int           `json:"totalDrivingMinutes"`
	TotalOnDutyMinutes  int           `json:"totalOnDutyMinutes"`
	TotalOffDutyMinutes int           `json:"totalOffDutyMinutes"`
	TotalSleeperMinutes int           `json:"totalSleeperMinutes"`
	RemainingCycleHours float64       `json:"remainingCycleHours"`
	Segments            []PlanSegment `json:"segments"`
}

// GeneratePlan splits the trip's estimated hours into HOS-compliant days.
// Each day drives up to the 11-hour limit with a 2-hour on-duty buffer,
// capped by the remaining 70-hour cycle, followed by the mandatory 10-hour
// off-duty block. The plan is a dispatch aid, not a legal record.
func GeneratePlan(totalTripHours, cycleHoursUsed float64) ([]DailyPlan, error) {
	if totalTripHours < 0 {
		return nil, ErrNegativeTripHours
	}
	cycleRemaining := math.Max(CycleLimitHours-cycleHoursUsed, 0)
	if cycleRemaining <= 0 {
		return nil, ErrCycleExhausted
	}
	hoursToSchedule := math.Min(totalTripHours, cycleRemaining)
	if hoursToSchedule <= 0 {
		return nil, ErrNoHoursAvailable
	}

	var plans []DailyPlan
	day := 1
	remaining := hoursToSchedule
	cycle := cycleRemaining
	for remaining > 0 && cycle > 0 {
		driving := math.Min(math.Min(DrivingLimitHours, remaining), cycle)
		onDuty := math.Min(math.Min(driving+OnDutyBufferHours, OnDutyLimitHours), cycle)

		drivingMin := int(math.Round(driving * 60))
		onDutyMin := int(math.Round(onDuty * 60))
		offDutyMin := int(MandatoryOffDutyHours * 60)

		remaining -= driving
		cycle -= onDuty

		plans = append(plans, DailyPlan{
			DayNumber:           day,
			TotalDrivingMinutes: drivingMin,
			TotalOnDutyMinutes:  onDutyMin,
			TotalOffDutyMinutes: offDutyMin,
			RemainingCycleHours: math.Max(cycle, 0),
			Segments: []PlanSegment{
				{Status: model.DutyOnDuty, Minutes: onDutyMin - drivingMin, Remarks: "Pre/post-trip activities"},
				{Status: model.DutyDriving, Minutes: drivingMin, Remarks: "Planned driving"},
				{Status: model.DutyOffDuty, Minutes: offDutyMin, Remarks: "Rest"},
			},
		})
		day++
	}
	return plans, nil
}

// EvaluateAlerts derives warning/danger alerts from a generated plan.
// Per-day checks fire at 95% (warning) and past the limit (danger) of the
// 11-hour driving and 14-hour on-duty rules; cycle checks fire when the
// projected usage reaches 90% or all of the 70-hour cycle.
func EvaluateAlerts(plans []DailyPlan, cycleHoursUsed float64) []model.HOSAlert {
	var alerts []model.HOSAlert
	add := func(level, rule, message string, day int) {
		alerts = append(alerts, model.HOSAlert{Level: level, Rule: rule, Message: message, DayNumber: day})
	}

	for _, p := range plans {
		driving := float64(p.TotalDrivingMinutes) / 60
		onDuty := float64(p.TotalOnDutyMinutes) / 60

		if driving > DrivingLimitHours+1e-6 {
			add("danger", "11-hour driving limit",
				fmt.Sprintf("Day %d: planned driving of %.1f hrs exceeds FMCSA 11-hour limit.", p.DayNumber, driving), p.DayNumber)
		} else if driving >= DrivingLimitHours*0.95 {
			add("warning", "11-hour driving limit",
				fmt.Sprintf("Day %d: driving scheduled for %.1f hrs is near the 11-hour limit.", p.DayNumber, driving), p.DayNumber)
		}

		if onDuty > OnDutyLimitHours+1e-6 {
			add("danger", "14-hour on-duty window",
				fmt.Sprintf("Day %d: on-duty time of %.1f hrs exceeds FMCSA 14-hour limit.", p.DayNumber, onDuty), p.DayNumber)
		} else if onDuty >= OnDutyLimitHours*0.95 {
			add("warning", "14-hour on-duty window",
				fmt.Sprintf("Day %d: on-duty plan %.1f hrs is near the 14-hour limit.", p.DayNumber, onDuty), p.DayNumber)
		}

		if p.RemainingCycleHours < -1e-6 {
			add("danger", "70-hour/8-day cycle",
				"Cycle hours exceeded. Schedule requires reset before completion.", p.DayNumber)
		} else if p.RemainingCycleHours <= 8.0 {
			add("warning", "70-hour/8-day cycle",
				fmt.Sprintf("Cycle hours low: %.1f hrs remain after day %d.", p.RemainingCycleHours, p.DayNumber), p.DayNumber)
		}
	}

	projected := cycleHoursUsed
	for _, p := range plans {
		projected += float64(p.TotalOnDutyMinutes) / 60
	}
	if projected >= CycleLimitHours {
		add("danger", "70-hour/8-day cycle",
			"Trip plan consumes entire 70-hour cycle. Driver must reset before additional duty.", 0)
	} else if projected >= CycleLimitHours*0.9 {
		add("warning", "70-hour/8-day cycle",
			"Trip plan uses over 90% of the 70-hour cycle. Monitor remaining hours closely.", 0)
	}
	return alerts
}
