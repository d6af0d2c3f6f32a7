package jobs

import (
    "context"
    "errors"
    "fmt"

    "github.com/sirupsen/logrus"

    "tripdash/internal/hos"
    "tripdash/internal/model"
    "tripdash/internal/router"
    "tripdash/internal/store"
)

// RouteProvider is what the planner needs from the directions client.
type RouteProvider interface {
    PlanRoute(ctx context.Context, waypoints []model.Location) (*router.PlanResult, error)
}

// Planner turns a plan request into a persisted trip: route the three
// waypoints, derive stops and itinerary legs, and attach HOS alerts for
// the projected schedule. Used by both the synchronous API path and the
// background worker.
type Planner struct {
    Store  store.Store
    Router RouteProvider
    Log    *logrus.Logger
}

func NewPlanner(s store.Store, r RouteProvider, log *logrus.Logger) *Planner {
    return &Planner{Store: s, Router: r, Log: log}
}

var stopTypes = []string{"START", "PICKUP", "DROPOFF"}

func (p *Planner) PlanTrip(ctx context.Context, req model.PlanTripRequest) (model.Trip, error) {
    waypoints := []model.Location{req.StartLocation, req.PickupLocation, req.DropoffLocation}
    plan, err := p.Router.PlanRoute(ctx, waypoints)
    if err != nil {
        return model.Trip{}, fmt.Errorf("routing failed: %w", err)
    }

    stops := make([]model.Stop, len(waypoints))
    for i, w := range waypoints {
        stops[i] = model.Stop{Type: stopTypes[i], Location: w, Sequence: i + 1}
    }
    legs := make([]model.ItineraryLeg, 0, len(waypoints)-1)
    for i := 1; i < len(stops); i++ {
        var dist, hours float64
        if i-1 < len(plan.Legs) {
            dist = plan.Legs[i-1].DistanceMiles
            hours = plan.Legs[i-1].DurationHours
        }
        stops[i].DistanceFromPrevious = dist
        stops[i].DurationFromPrevious = hours
        legs = append(legs, model.ItineraryLeg{
            Sequence:      i,
            FromStopType:  stops[i-1].Type,
            ToStopType:    stops[i].Type,
            FromLocation:  stops[i-1].Location,
            ToLocation:    stops[i].Location,
            DistanceMiles: dist,
            DurationHours: hours,
        })
    }

    itinerary := &model.Itinerary{
        Legs:       legs,
        TotalMiles: plan.TotalMiles,
        TotalHours: plan.TotalHours,
    }
    if dailyPlans, err := hos.GeneratePlan(plan.TotalHours, req.CycleHoursUsed); err != nil {
        // an unschedulable plan still produces a trip; the alert carries
        // the reason to the dispatcher
        p.Log.WithError(err).Warn("hos plan unavailable")
        itinerary.HOSAlerts = []model.HOSAlert{{Level: "danger", Rule: "70-hour/8-day cycle", Message: err.Error()}}
    } else {
        itinerary.HOSAlerts = hos.EvaluateAlerts(dailyPlans, req.CycleHoursUsed)
    }

    trip := model.Trip{
        AccountID:           req.AccountID,
        Status:              model.StatusPlanned,
        StartLocation:       req.StartLocation,
        PickupLocation:      req.PickupLocation,
        DropoffLocation:     req.DropoffLocation,
        CycleHoursUsed:      req.CycleHoursUsed,
        TotalMiles:          plan.TotalMiles,
        TotalHours:          plan.TotalHours,
        TractorNumber:       req.TractorNumber,
        TrailerNumbers:      req.TrailerNumbers,
        CarrierNames:        req.CarrierNames,
        MainOfficeAddress:   req.MainOfficeAddress,
        HomeTerminalAddress: req.HomeTerminalAddress,
        CoDriverName:        req.CoDriverName,
        ShipperName:         req.ShipperName,
        Commodity:           req.Commodity,
        Route: &model.Route{
            Polyline:       plan.Polyline,
            TotalMiles:     plan.TotalMiles,
            EstimatedHours: plan.TotalHours,
            Stops:          stops,
        },
        Itinerary: itinerary,
    }

    created, err := p.Store.CreateTrip(ctx, trip)
    if err != nil {
        return model.Trip{}, err
    }
    p.Log.WithFields(logrus.Fields{
        "tripId":     created.ID,
        "totalMiles": created.TotalMiles,
        "totalHours": created.TotalHours,
        "hosAlerts":  len(itinerary.HOSAlerts),
    }).Info("trip planned")
    return created, nil
}

// Enqueue records a plan request as a pending background job.
func (p *Planner) Enqueue(ctx context.Context, req model.PlanTripRequest) (model.Job, error) {
    if req.AccountID == "" {
        return model.Job{}, errors.New("accountId is required")
    }
    return p.Store.EnqueueJob(ctx, model.Job{
        AccountID: req.AccountID,
        JobType:   model.JobTypePlanTrip,
        Payload:   req,
    })
}
