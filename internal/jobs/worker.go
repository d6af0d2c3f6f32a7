package jobs

import (
    "context"
    "errors"
    "time"

    "github.com/sirupsen/logrus"

    "tripdash/internal/metrics"
    "tripdash/internal/model"
    "tripdash/internal/store"
)

// Worker drains pending plan-trip jobs FIFO on a ticker. One job per tick
// keeps the route provider's rate limits comfortable.
type Worker struct {
    Store    store.Store
    Planner  *Planner
    Log      *logrus.Logger
    Interval time.Duration
    Stop     chan struct{}
}

func NewWorker(s store.Store, p *Planner, log *logrus.Logger) *Worker {
    return &Worker{Store: s, Planner: p, Log: log, Interval: time.Second, Stop: make(chan struct{})}
}

func (w *Worker) Start() {
    go func() {
        ticker := time.NewTicker(w.Interval)
        defer ticker.Stop()
        for {
            select {
            case <-w.Stop:
                return
            case <-ticker.C:
                w.ProcessOnce()
            }
        }
    }()
}

// ProcessOnce claims and runs at most one pending job.
func (w *Worker) ProcessOnce() {
    ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
    defer cancel()

    job, err := w.Store.NextPendingJob(ctx)
    if err != nil {
        if !errors.Is(err, store.ErrNotFound) {
            w.Log.WithError(err).Error("job fetch failed")
        }
        return
    }
    if err := w.Store.MarkJobRunning(ctx, job.ID); err != nil {
        w.Log.WithError(err).WithField("jobId", job.ID).Error("job claim failed")
        return
    }

    switch job.JobType {
    case model.JobTypePlanTrip:
        trip, err := w.Planner.PlanTrip(ctx, job.Payload)
        if err != nil {
            w.Log.WithError(err).WithField("jobId", job.ID).Warn("plan job failed")
            _ = w.Store.FailJob(ctx, job.ID, err.Error())
            metrics.JobsProcessed.WithLabelValues(job.JobType, model.JobFailed).Inc()
            return
        }
        _ = w.Store.CompleteJob(ctx, job.ID, trip.ID)
        metrics.JobsProcessed.WithLabelValues(job.JobType, model.JobSuccess).Inc()
        w.Log.WithFields(logrus.Fields{"jobId": job.ID, "tripId": trip.ID}).Info("plan job completed")
    default:
        _ = w.Store.FailJob(ctx, job.ID, "unknown job type "+job.JobType)
        metrics.JobsProcessed.WithLabelValues(job.JobType, model.JobFailed).Inc()
    }
}
