// Package telemetry turns duty-log location blobs into ordered coordinate
// streams. Drivers record locations inconsistently, so every parse is
// best-effort: a blob either yields a point or is skipped, never an error.
package telemetry

import (
	"encoding/json"
	"sort"

	"tripdash/internal/model"
)

type locationBlob struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// ParseLocation decodes the serialized JSON location of a duty segment.
// ok is false when the blob is empty, not valid JSON, or missing a numeric
// lat or lng.
func ParseLocation(raw string) (model.Coordinate, bool) {
	if raw == "" {
		return model.Coordinate{}, false
	}
	var blob locationBlob
	if err := json.Unmarshal([]byte(raw), &blob); err != nil {
		return model.Coordinate{}, false
	}
	if blob.Lat == nil || blob.Lng == nil {
		return model.Coordinate{}, false
	}
	return model.Coordinate{Lat: *blob.Lat, Lng: *blob.Lng}, true
}

// ExtractPoints flattens the logs into chronological telemetry points:
// days ascending, segments within a day by start time. Segments without a
// parseable location drop out silently.
func ExtractPoints(logs []model.DriverLog) []model.Coordinate {
	points := []model.Coordinate{}
	walkOrdered(logs, func(_ model.DriverLog, seg model.DutySegment) {
		if p, ok := ParseLocation(seg.Location); ok {
			points = append(points, p)
		}
	})
	return points
}

// ExtractStopMarkers is ExtractPoints restricted to stop-class segments
// (ON_DUTY, OFF_DUTY, SLEEPER_BERTH), keeping the duty context for map
// annotation.
func ExtractStopMarkers(logs []model.DriverLog) []model.StopMarker {
	markers := []model.StopMarker{}
	walkOrdered(logs, func(log model.DriverLog, seg model.DutySegment) {
		if !seg.Status.IsStop() {
			return
		}
		p, ok := ParseLocation(seg.Location)
		if !ok {
			return
		}
		markers = append(markers, model.StopMarker{
			Coordinate: p,
			Status:     seg.Status,
			DayNumber:  log.DayNumber,
			StartTime:  seg.StartTime,
		})
	})
	return markers
}

// walkOrdered visits every segment in canonical order without mutating the
// caller's slices. Start times are zero-padded HH:MM[:SS], so plain string
// comparison is chronological.
func walkOrdered(logs []model.DriverLog, visit func(model.DriverLog, model.DutySegment)) {
	ordered := make([]model.DriverLog, len(logs))
	copy(ordered, logs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].DayNumber < ordered[j].DayNumber
	})
	for _, log := range ordered {
		segs := make([]model.DutySegment, len(log.Segments))
		copy(segs, log.Segments)
		sort.SliceStable(segs, func(i, j int) bool {
			return segs[i].StartTime < segs[j].StartTime
		})
		for _, seg := range segs {
			visit(log, seg)
		}
	}
}
