package store

import (
    "errors"
    "fmt"
    "time"

    "tripdash/internal/model"
)

const (
    segmentIncrementMinutes = 15
    minutesPerDay           = 24 * 60
)

// normalizeLogInput validates a log upsert and computes the four duty
// totals from its segments. Both store implementations run this before
// touching storage so the rules cannot drift between them.
func normalizeLogInput(in model.DriverLogInput) (model.DriverLog, error) {
    if in.DayNumber < 1 {
        return model.DriverLog{}, errors.New("dayNumber must be 1 or greater")
    }
    if len(in.Segments) == 0 {
        return model.DriverLog{}, errors.New("at least one duty segment is required")
    }

    totals := map[model.DutyStatus]int{}
    dayMinutes := 0
    lastEnd := ""
    for i, seg := range in.Segments {
        if !model.ValidDutyStatus(seg.Status) {
            return model.DriverLog{}, fmt.Errorf("unsupported duty status %q", seg.Status)
        }
        start, err := parseClock("startTime", seg.StartTime)
        if err != nil { return model.DriverLog{}, err }
        end, err := parseClock("endTime", seg.EndTime)
        if err != nil { return model.DriverLog{}, err }
        if end <= start {
            return model.DriverLog{}, errors.New("segment endTime must be after startTime")
        }
        minutes := end - start
        if minutes%segmentIncrementMinutes != 0 {
            return model.DriverLog{}, errors.New("duty segments must be in 15-minute increments")
        }
        if i > 0 && seg.StartTime < lastEnd {
            return model.DriverLog{}, errors.New("duty segments may not overlap")
        }
        lastEnd = seg.EndTime
        totals[seg.Status] += minutes
        dayMinutes += minutes
    }
    if dayMinutes > minutesPerDay {
        return model.DriverLog{}, errors.New("daily duty segments exceed 24 hours")
    }

    logDate := in.LogDate
    if logDate == "" {
        logDate = time.Now().UTC().Format("2006-01-02")
    }

    segments := make([]model.DutySegment, len(in.Segments))
    copy(segments, in.Segments)

    return model.DriverLog{
        DayNumber:           in.DayNumber,
        LogDate:             logDate,
        Notes:               in.Notes,
        TotalDistanceMiles:  in.TotalDistanceMiles,
        TotalOffDutyMinutes: totals[model.DutyOffDuty],
        TotalSleeperMinutes: totals[model.DutySleeper],
        TotalDrivingMinutes: totals[model.DutyDriving],
        TotalOnDutyMinutes:  totals[model.DutyOnDuty],
        Segments:            segments,
    }, nil
}

// parseClock converts zero-padded HH:MM into minutes since midnight.
func parseClock(label, value string) (int, error) {
    if value == "" {
        return 0, fmt.Errorf("missing %s", label)
    }
    t, err := time.Parse("15:04", value)
    if err != nil {
        return 0, fmt.Errorf("invalid %s format; expected HH:MM", label)
    }
    return t.Hour()*60 + t.Minute(), nil
}
