package store

import (
    "strings"
    "testing"

    "tripdash/internal/model"
)

func validInput() model.DriverLogInput {
    return model.DriverLogInput{
        DayNumber: 1,
        LogDate:   "2026-03-01",
        Segments: []model.DutySegment{
            {Status: model.DutyOnDuty, StartTime: "06:00", EndTime: "07:00"},
            {Status: model.DutyDriving, StartTime: "07:00", EndTime: "13:30"},
            {Status: model.DutyOffDuty, StartTime: "13:30", EndTime: "23:30"},
        },
    }
}

func TestNormalizeLogInputTotals(t *testing.T) {
    log, err := normalizeLogInput(validInput())
    if err != nil { t.Fatalf("normalizeLogInput: %v", err) }
    if log.TotalOnDutyMinutes != 60 { t.Fatalf("on duty = %d, want 60", log.TotalOnDutyMinutes) }
    if log.TotalDrivingMinutes != 390 { t.Fatalf("driving = %d, want 390", log.TotalDrivingMinutes) }
    if log.TotalOffDutyMinutes != 600 { t.Fatalf("off duty = %d, want 600", log.TotalOffDutyMinutes) }
    if log.TotalSleeperMinutes != 0 { t.Fatalf("sleeper = %d, want 0", log.TotalSleeperMinutes) }
    if log.LogDate != "2026-03-01" { t.Fatalf("logDate = %s", log.LogDate) }
}

func TestNormalizeLogInputRejections(t *testing.T) {
    cases := []struct {
        name   string
        mutate func(*model.DriverLogInput)
        want   string
    }{
        {"day zero", func(in *model.DriverLogInput) { in.DayNumber = 0 }, "dayNumber"},
        {"no segments", func(in *model.DriverLogInput) { in.Segments = nil }, "at least one"},
        {"bad status", func(in *model.DriverLogInput) { in.Segments[0].Status = "NAPPING" }, "unsupported duty status"},
        {"bad time", func(in *model.DriverLogInput) { in.Segments[0].StartTime = "6am" }, "expected HH:MM"},
        {"missing time", func(in *model.DriverLogInput) { in.Segments[0].EndTime = "" }, "missing endTime"},
        {"end before start", func(in *model.DriverLogInput) { in.Segments[0].EndTime = "05:00" }, "after startTime"},
        {"not fifteen", func(in *model.DriverLogInput) { in.Segments[0].EndTime = "07:10" }, "15-minute"},
        {"overlap", func(in *model.DriverLogInput) { in.Segments[1].StartTime = "06:30" }, "overlap"},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            in := validInput()
            tc.mutate(&in)
            _, err := normalizeLogInput(in)
            if err == nil { t.Fatal("expected error") }
            if !strings.Contains(err.Error(), tc.want) {
                t.Fatalf("error %q does not contain %q", err, tc.want)
            }
        })
    }
}

func TestNormalizeLogInputOverTwentyFourHours(t *testing.T) {
    in := model.DriverLogInput{DayNumber: 1, Segments: []model.DutySegment{
        {Status: model.DutyDriving, StartTime: "00:00", EndTime: "23:45"},
        {Status: model.DutyOnDuty, StartTime: "23:45", EndTime: "23:50"},
    }}
    // second segment breaks the 15-minute rule before the 24h rule triggers
    if _, err := normalizeLogInput(in); err == nil {
        t.Fatal("expected error")
    }
}

func TestNormalizeLogInputDefaultsLogDate(t *testing.T) {
    in := validInput()
    in.LogDate = ""
    log, err := normalizeLogInput(in)
    if err != nil { t.Fatalf("normalizeLogInput: %v", err) }
    if log.LogDate == "" { t.Fatal("logDate should default to today") }
}

func TestParseClock(t *testing.T) {
    if v, err := parseClock("startTime", "13:45"); err != nil || v != 825 {
        t.Fatalf("parseClock = %d, %v", v, err)
    }
    if _, err := parseClock("startTime", "25:00"); err == nil {
        t.Fatal("expected error for 25:00")
    }
}
