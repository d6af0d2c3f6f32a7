package store

import (
    "context"
    "errors"

    "tripdash/internal/model"
)

// Store is the persistence interface used by the API server and the job
// worker. Implementations must enforce the single-active-trip rule on
// status updates; the state machine's check upstream is advisory only.
type Store interface {
    // Trips
    CreateTrip(ctx context.Context, t model.Trip) (model.Trip, error)
    GetTrip(ctx context.Context, accountID, tripID string) (model.Trip, error)
    ListTrips(ctx context.Context, accountID, status, cursor string, limit int) ([]model.Trip, string, error)
    UpdateTripStatus(ctx context.Context, accountID, tripID string, status model.TripStatus) (model.Trip, error)
    DeleteTrip(ctx context.Context, accountID, tripID string) error

    // Driver logs
    UpsertDriverLog(ctx context.Context, accountID, tripID string, in model.DriverLogInput) (model.DriverLog, error)
    ListLogs(ctx context.Context, accountID, tripID string) ([]model.DriverLog, error)
    DeleteDriverLog(ctx context.Context, accountID, logID string) error

    // Background jobs (FIFO)
    EnqueueJob(ctx context.Context, job model.Job) (model.Job, error)
    NextPendingJob(ctx context.Context) (model.Job, error)
    MarkJobRunning(ctx context.Context, jobID string) error
    CompleteJob(ctx context.Context, jobID, tripID string) error
    FailJob(ctx context.Context, jobID, message string) error
    GetJob(ctx context.Context, accountID, jobID string) (model.Job, error)
    ListJobs(ctx context.Context, accountID, cursor string, limit int) ([]model.Job, string, error)

    Ping(ctx context.Context) error
}

var (
    ErrNotFound = errors.New("not found")
    // ErrActiveConflict is the store-level rejection of a second
    // IN_PROGRESS trip for the same account.
    ErrActiveConflict = errors.New("another trip is already in progress")
)
