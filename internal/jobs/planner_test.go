package jobs

import (
    "context"
    "errors"
    "testing"

    "github.com/sirupsen/logrus"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "tripdash/internal/model"
    "tripdash/internal/router"
    "tripdash/internal/store"
)

type fakeRouter struct {
    result *router.PlanResult
    err    error
}

func (f *fakeRouter) PlanRoute(ctx context.Context, waypoints []model.Location) (*router.PlanResult, error) {
    if f.err != nil { return nil, f.err }
    return f.result, nil
}

func quietLog() *logrus.Logger {
    log := logrus.New()
    log.SetLevel(logrus.PanicLevel)
    return log
}

func planRequest() model.PlanTripRequest {
    return model.PlanTripRequest{
        AccountID:       "acct1",
        StartLocation:   model.Location{Lat: 41.87, Lng: -87.62, Address: "Chicago, IL"},
        PickupLocation:  model.Location{Lat: 41.25, Lng: -86.25},
        DropoffLocation: model.Location{Lat: 40.71, Lng: -74.00, Address: "New York, NY"},
        CycleHoursUsed:  10,
    }
}

func goodPlan() *router.PlanResult {
    return &router.PlanResult{
        Polyline:   "abc",
        TotalMiles: 790,
        TotalHours: 13,
        Legs: []router.LegMetric{
            {DistanceMiles: 90, DurationHours: 2},
            {DistanceMiles: 700, DurationHours: 11},
        },
    }
}

func TestPlanTrip(t *testing.T) {
    m := store.NewMemory()
    p := NewPlanner(m, &fakeRouter{result: goodPlan()}, quietLog())

    trip, err := p.PlanTrip(context.Background(), planRequest())
    require.NoError(t, err)
    assert.Equal(t, model.StatusPlanned, trip.Status)
    assert.Equal(t, 790.0, trip.TotalMiles)
    require.NotNil(t, trip.Route)
    assert.Equal(t, "abc", trip.Route.Polyline)
    require.Len(t, trip.Route.Stops, 3)
    assert.Equal(t, "START", trip.Route.Stops[0].Type)
    assert.Equal(t, "DROPOFF", trip.Route.Stops[2].Type)
    assert.Equal(t, 700.0, trip.Route.Stops[2].DistanceFromPrevious)

    require.NotNil(t, trip.Itinerary)
    require.Len(t, trip.Itinerary.Legs, 2)
    assert.Equal(t, "PICKUP", trip.Itinerary.Legs[0].ToStopType)
    assert.Equal(t, 2.0, trip.Itinerary.Legs[0].DurationHours)

    // persisted
    stored, err := m.GetTrip(context.Background(), "acct1", trip.ID)
    require.NoError(t, err)
    assert.Equal(t, trip.ID, stored.ID)
}

func TestPlanTripHOSAlerts(t *testing.T) {
    m := store.NewMemory()
    p := NewPlanner(m, &fakeRouter{result: goodPlan()}, quietLog())

    req := planRequest()
    req.CycleHoursUsed = 60 // 13h plan against 10 remaining cycle hours
    trip, err := p.PlanTrip(context.Background(), req)
    require.NoError(t, err)
    require.NotNil(t, trip.Itinerary)
    assert.NotEmpty(t, trip.Itinerary.HOSAlerts)
}

func TestPlanTripExhaustedCycleStillPlans(t *testing.T) {
    m := store.NewMemory()
    p := NewPlanner(m, &fakeRouter{result: goodPlan()}, quietLog())

    req := planRequest()
    req.CycleHoursUsed = 70
    trip, err := p.PlanTrip(context.Background(), req)
    require.NoError(t, err)
    require.NotEmpty(t, trip.Itinerary.HOSAlerts)
    assert.Equal(t, "danger", trip.Itinerary.HOSAlerts[0].Level)
}

func TestPlanTripRoutingFailure(t *testing.T) {
    m := store.NewMemory()
    p := NewPlanner(m, &fakeRouter{err: errors.New("upstream down")}, quietLog())

    _, err := p.PlanTrip(context.Background(), planRequest())
    require.Error(t, err)
    assert.Contains(t, err.Error(), "routing failed")

    trips, _, _ := m.ListTrips(context.Background(), "acct1", "", "", 10)
    assert.Empty(t, trips)
}

func TestWorkerProcessOnce(t *testing.T) {
    m := store.NewMemory()
    p := NewPlanner(m, &fakeRouter{result: goodPlan()}, quietLog())
    w := NewWorker(m, p, quietLog())

    job, err := p.Enqueue(context.Background(), planRequest())
    require.NoError(t, err)

    w.ProcessOnce()

    done, err := m.GetJob(context.Background(), "acct1", job.ID)
    require.NoError(t, err)
    assert.Equal(t, model.JobSuccess, done.Status)
    assert.NotEmpty(t, done.TripID)

    _, err = m.GetTrip(context.Background(), "acct1", done.TripID)
    assert.NoError(t, err)
}

func TestWorkerProcessOnceFailure(t *testing.T) {
    m := store.NewMemory()
    p := NewPlanner(m, &fakeRouter{err: errors.New("no key")}, quietLog())
    w := NewWorker(m, p, quietLog())

    job, err := p.Enqueue(context.Background(), planRequest())
    require.NoError(t, err)

    w.ProcessOnce()

    failed, err := m.GetJob(context.Background(), "acct1", job.ID)
    require.NoError(t, err)
    assert.Equal(t, model.JobFailed, failed.Status)
    assert.Contains(t, failed.ErrorMessage, "routing failed")
}

func TestEnqueueRequiresAccount(t *testing.T) {
    p := NewPlanner(store.NewMemory(), &fakeRouter{result: goodPlan()}, quietLog())
    req := planRequest()
    req.AccountID = ""
    _, err := p.Enqueue(context.Background(), req)
    assert.Error(t, err)
}
