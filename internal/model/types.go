package model

// Core domain types shared across packages.

// TripStatus is the lifecycle state of a trip.
type TripStatus string

const (
    StatusPlanned    TripStatus = "PLANNED"
    StatusInProgress TripStatus = "IN_PROGRESS"
    StatusCompleted  TripStatus = "COMPLETED"
)

// ValidStatus reports whether s is one of the known trip statuses.
func ValidStatus(s TripStatus) bool {
    switch s {
    case StatusPlanned, StatusInProgress, StatusCompleted:
        return true
    }
    return false
}

// DutyStatus is an hours-of-service duty class for a log segment.
type DutyStatus string

const (
    DutyOffDuty DutyStatus = "OFF_DUTY"
    DutySleeper DutyStatus = "SLEEPER_BERTH"
    DutyDriving DutyStatus = "DRIVING"
    DutyOnDuty  DutyStatus = "ON_DUTY"
)

// IsStop reports whether the duty status marks a stop rather than driving.
// Stop segments are the ones drivers annotate with a location.
func (d DutyStatus) IsStop() bool {
    return d == DutyOnDuty || d == DutyOffDuty || d == DutySleeper
}

// ValidDutyStatus reports whether d is a known duty status.
func ValidDutyStatus(d DutyStatus) bool {
    switch d {
    case DutyOffDuty, DutySleeper, DutyDriving, DutyOnDuty:
        return true
    }
    return false
}

// Coordinate is a WGS84 point in decimal degrees.
type Coordinate struct {
    Lat float64 `json:"lat"`
    Lng float64 `json:"lng"`
}

// Location is a coordinate with an optional human-readable address,
// matching the JSON blob stored on trips and duty segments.
type Location struct {
    Lat     float64 `json:"lat"`
    Lng     float64 `json:"lng"`
    Address string  `json:"address,omitempty"`
}

// Coordinate returns the bare coordinate of the location.
func (l Location) Coordinate() Coordinate { return Coordinate{Lat: l.Lat, Lng: l.Lng} }

// DutySegment is one contiguous duty-status block within a daily log.
// Location holds the raw serialized JSON blob, empty when nothing was
// recorded; parsing happens downstream and failures are not errors there.
type DutySegment struct {
    ID        string     `json:"id,omitempty"`
    Status    DutyStatus `json:"status"`
    StartTime string     `json:"startTime"` // HH:MM or HH:MM:SS
    EndTime   string     `json:"endTime"`
    Location  string     `json:"location,omitempty"`
    Activity  string     `json:"activity,omitempty"`
    Remarks   string     `json:"remarks,omitempty"`
}

// DriverLog is one day of duty records for a trip.
type DriverLog struct {
    ID                  string        `json:"id,omitempty"`
    TripID              string        `json:"tripId,omitempty"`
    DayNumber           int           `json:"dayNumber"`
    LogDate             string        `json:"logDate,omitempty"` // YYYY-MM-DD
    TotalOffDutyMinutes int           `json:"totalOffDutyMinutes"`
    TotalSleeperMinutes int           `json:"totalSleeperMinutes"`
    TotalDrivingMinutes int           `json:"totalDrivingMinutes"`
    TotalOnDutyMinutes  int           `json:"totalOnDutyMinutes"`
    TotalDistanceMiles  float64       `json:"totalDistanceMiles,omitempty"`
    Notes               string        `json:"notes,omitempty"`
    Segments            []DutySegment `json:"segments"`
}

// TotalMinutes sums the four duty buckets.
func (l DriverLog) TotalMinutes() int {
    return l.TotalDrivingMinutes + l.TotalOnDutyMinutes + l.TotalOffDutyMinutes + l.TotalSleeperMinutes
}

// Route is the planned geometry for a trip as returned by the route provider.
type Route struct {
    Polyline       string  `json:"polyline"`
    TotalMiles     float64 `json:"totalMiles"`
    EstimatedHours float64 `json:"estimatedHours"`
    Stops          []Stop  `json:"stops,omitempty"`
}

// Stop is a sequenced waypoint on a planned route.
type Stop struct {
    ID                   string   `json:"id,omitempty"`
    Type                 string   `json:"type"` // START, PICKUP, DROPOFF, REST, FUEL
    Location             Location `json:"location"`
    Sequence             int      `json:"sequence"`
    DurationMinutes      int      `json:"durationMinutes,omitempty"`
    DistanceFromPrevious float64  `json:"distanceFromPrevious,omitempty"`
    DurationFromPrevious float64  `json:"durationFromPrevious,omitempty"`
}

// Trip is a dispatch trip snapshot. Status changes go through the store
// after the state machine approves them.
type Trip struct {
    ID                  string     `json:"id"`
    AccountID           string     `json:"accountId,omitempty"`
    Status              TripStatus `json:"status"`
    StartLocation       Location   `json:"startLocation"`
    PickupLocation      Location   `json:"pickupLocation"`
    DropoffLocation     Location   `json:"dropoffLocation"`
    CycleHoursUsed      float64    `json:"cycleHoursUsed"`
    TotalMiles          float64    `json:"totalMiles"`
    TotalHours          float64    `json:"totalHours"`
    TractorNumber       string     `json:"tractorNumber,omitempty"`
    TrailerNumbers      []string   `json:"trailerNumbers,omitempty"`
    CarrierNames        []string   `json:"carrierNames,omitempty"`
    MainOfficeAddress   string     `json:"mainOfficeAddress,omitempty"`
    HomeTerminalAddress string     `json:"homeTerminalAddress,omitempty"`
    CoDriverName        string     `json:"coDriverName,omitempty"`
    ShipperName         string     `json:"shipperName,omitempty"`
    Commodity           string     `json:"commodity,omitempty"`
    Route               *Route     `json:"route,omitempty"`
    Itinerary           *Itinerary `json:"itinerary,omitempty"`
    CreatedAt           string     `json:"createdAt,omitempty"`
    UpdatedAt           string     `json:"updatedAt,omitempty"`
}

// Itinerary summarizes the planned legs and HOS outlook of a trip.
type Itinerary struct {
    Legs       []ItineraryLeg `json:"legs"`
    TotalMiles float64        `json:"totalMiles"`
    TotalHours float64        `json:"totalHours"`
    HOSAlerts  []HOSAlert     `json:"hosAlerts,omitempty"`
}

// ItineraryLeg describes one planned leg between consecutive stops.
type ItineraryLeg struct {
    Sequence      int      `json:"seq"`
    FromStopType  string   `json:"fromStopType"`
    ToStopType    string   `json:"toStopType"`
    FromLocation  Location `json:"fromLocation"`
    ToLocation    Location `json:"toLocation"`
    DistanceMiles float64  `json:"distanceMiles"`
    DurationHours float64  `json:"durationHours"`
}

// HOSAlert is an hours-of-service warning attached to a planned itinerary.
type HOSAlert struct {
    Level     string `json:"level"` // warning, danger
    Rule      string `json:"rule"`
    Message   string `json:"message"`
    DayNumber int    `json:"dayNumber,omitempty"`
}

// FuelStatus is the tiered fuel-range warning derived from driven miles.
type FuelStatus string

const (
    FuelNominal     FuelStatus = "NOMINAL"
    FuelApproaching FuelStatus = "APPROACHING"
    FuelRefuelNow   FuelStatus = "REFUEL_NOW"
)

// ProgressResult is the derived view of how far along the planned route a
// trip actually is. Recomputed per request, never persisted.
type ProgressResult struct {
    DrivenPath  []Coordinate `json:"drivenPath"`
    DrivenMiles float64      `json:"drivenMiles"`
    FuelStatus  FuelStatus   `json:"fuelStatus"`
}

// StopMarker is a telemetry point tagged with its duty context, used to
// annotate stops on the dashboard map.
type StopMarker struct {
    Coordinate
    Status    DutyStatus `json:"status"`
    DayNumber int        `json:"dayNumber"`
    StartTime string     `json:"startTime"`
}

// StatusOption is one row of the status dropdown: a target status and
// whether the transition is currently legal.
type StatusOption struct {
    Status  TripStatus `json:"status"`
    Allowed bool       `json:"allowed"`
    Reason  string     `json:"reason,omitempty"`
}

// ComplianceFlag marks a log day whose duty totals do not sum to whole days.
type ComplianceFlag struct {
    DayNumber    int `json:"dayNumber"`
    TotalMinutes int `json:"totalMinutes"`
}

// ComplianceReport is the pre-completion advisory. Skipped is set when the
// logs could not be fetched and verification did not run.
type ComplianceReport struct {
    Flagged []ComplianceFlag `json:"flagged"`
    Skipped bool             `json:"skipped,omitempty"`
}

// MutationResult mirrors the {success, errors} payload shape the dashboard
// expects from state-changing calls.
type MutationResult struct {
    Success bool     `json:"success"`
    Errors  []string `json:"errors"`
}

// PlanTripRequest is the input to trip planning.
type PlanTripRequest struct {
    AccountID           string   `json:"accountId,omitempty"`
    StartLocation       Location `json:"startLocation"`
    PickupLocation      Location `json:"pickupLocation"`
    DropoffLocation     Location `json:"dropoffLocation"`
    CycleHoursUsed      float64  `json:"cycleHoursUsed"`
    TractorNumber       string   `json:"tractorNumber,omitempty"`
    TrailerNumbers      []string `json:"trailerNumbers,omitempty"`
    CarrierNames        []string `json:"carrierNames,omitempty"`
    MainOfficeAddress   string   `json:"mainOfficeAddress,omitempty"`
    HomeTerminalAddress string   `json:"homeTerminalAddress,omitempty"`
    CoDriverName        string   `json:"coDriverName,omitempty"`
    ShipperName         string   `json:"shipperName,omitempty"`
    Commodity           string   `json:"commodity,omitempty"`
    RunAsync            bool     `json:"runAsync,omitempty"`
}

// DriverLogInput is the input to a daily-log upsert.
type DriverLogInput struct {
    DayNumber          int           `json:"dayNumber"`
    LogDate            string        `json:"logDate,omitempty"`
    Notes              string        `json:"notes,omitempty"`
    TotalDistanceMiles float64       `json:"totalDistanceMiles,omitempty"`
    Segments           []DutySegment `json:"segments"`
}

// Background job states.
const (
    JobPending = "PENDING"
    JobRunning = "RUNNING"
    JobSuccess = "SUCCESS"
    JobFailed  = "FAILED"
)

// JobTypePlanTrip is the only background job type today.
const JobTypePlanTrip = "PLAN_TRIP"

// Job is an asynchronous unit of work, currently always a trip plan.
type Job struct {
    ID           string          `json:"id"`
    AccountID    string          `json:"accountId,omitempty"`
    JobType      string          `json:"jobType"`
    Status       string          `json:"status"`
    Payload      PlanTripRequest `json:"payload"`
    TripID       string          `json:"tripId,omitempty"`
    ErrorMessage string          `json:"errorMessage,omitempty"`
    CreatedAt    string          `json:"createdAt,omitempty"`
    StartedAt    string          `json:"startedAt,omitempty"`
    CompletedAt  string          `json:"completedAt,omitempty"`
}

// TripEvent is what the broker fans out to SSE and WebSocket listeners.
type TripEvent struct {
    Type    string `json:"type"` // status.changed, progress.updated, trip.deleted
    TripID  string `json:"tripId"`
    Status  string `json:"status,omitempty"`
    TS      string `json:"ts"`
    Payload any    `json:"payload,omitempty"`
}
