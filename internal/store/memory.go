package store

import (
    "context"
    "sort"
    "sync"
    "time"

    "github.com/google/uuid"
    "tripdash/internal/model"
)

// Memory is a simple in-memory store used when no DATABASE_URL is set.
type Memory struct {
    mu         sync.Mutex
    trips      map[string]model.Trip    // id -> trip
    tripsByAcct map[string][]string     // account -> trip ids (insertion order)
    logs       map[string]model.DriverLog // id -> log
    logsByTrip map[string][]string      // trip -> log ids
    jobs       map[string]*model.Job    // id -> job
    jobQueue   []string                 // FIFO of pending job ids
    jobsByAcct map[string][]string      // account -> job ids
}

func NewMemory() *Memory {
    return &Memory{
        trips: map[string]model.Trip{},
        tripsByAcct: map[string][]string{},
        logs: map[string]model.DriverLog{},
        logsByTrip: map[string][]string{},
        jobs: map[string]*model.Job{},
        jobsByAcct: map[string][]string{},
    }
}

func nowRFC3339() string { return time.Now().UTC().Format(time.RFC3339) }

func (m *Memory) CreateTrip(ctx context.Context, t model.Trip) (model.Trip, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    if t.ID == "" { t.ID = uuid.New().String() }
    if t.Status == "" { t.Status = model.StatusPlanned }
    t.CreatedAt = nowRFC3339()
    t.UpdatedAt = t.CreatedAt
    m.trips[t.ID] = t
    m.tripsByAcct[t.AccountID] = append(m.tripsByAcct[t.AccountID], t.ID)
    return t, nil
}

func (m *Memory) GetTrip(ctx context.Context, accountID, tripID string) (model.Trip, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    t, ok := m.trips[tripID]
    if !ok || t.AccountID != accountID { return model.Trip{}, ErrNotFound }
    return t, nil
}

func (m *Memory) ListTrips(ctx context.Context, accountID, status, cursor string, limit int) ([]model.Trip, string, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    ids := m.tripsByAcct[accountID]
    start := 0
    if cursor != "" {
        for i, id := range ids {
            if id == cursor { start = i + 1; break }
        }
    }
    if limit <= 0 { limit = 100 }
    out := []model.Trip{}
    var next string
    for i := start; i < len(ids) && len(out) < limit; i++ {
        t := m.trips[ids[i]]
        if status == "" || string(t.Status) == status { out = append(out, t) }
        next = ids[i]
    }
    if len(out) < limit { next = "" }
    return out, next, nil
}

func (m *Memory) UpdateTripStatus(ctx context.Context, accountID, tripID string, status model.TripStatus) (model.Trip, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    t, ok := m.trips[tripID]
    if !ok || t.AccountID != accountID { return model.Trip{}, ErrNotFound }
    if status == model.StatusInProgress {
        for _, id := range m.tripsByAcct[accountID] {
            if id != tripID && m.trips[id].Status == model.StatusInProgress {
                return model.Trip{}, ErrActiveConflict
            }
        }
    }
    t.Status = status
    t.UpdatedAt = nowRFC3339()
    m.trips[tripID] = t
    return t, nil
}

func (m *Memory) DeleteTrip(ctx context.Context, accountID, tripID string) error {
    m.mu.Lock(); defer m.mu.Unlock()
    t, ok := m.trips[tripID]
    if !ok || t.AccountID != accountID { return ErrNotFound }
    delete(m.trips, tripID)
    ids := m.tripsByAcct[accountID]
    out := make([]string, 0, len(ids))
    for _, id := range ids { if id != tripID { out = append(out, id) } }
    m.tripsByAcct[accountID] = out
    for _, logID := range m.logsByTrip[tripID] { delete(m.logs, logID) }
    delete(m.logsByTrip, tripID)
    return nil
}

func (m *Memory) UpsertDriverLog(ctx context.Context, accountID, tripID string, in model.DriverLogInput) (model.DriverLog, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    t, ok := m.trips[tripID]
    if !ok || t.AccountID != accountID { return model.DriverLog{}, ErrNotFound }
    log, err := normalizeLogInput(in)
    if err != nil { return model.DriverLog{}, err }
    log.TripID = tripID
    // replace an existing day, keeping its id
    for _, id := range m.logsByTrip[tripID] {
        if m.logs[id].DayNumber == in.DayNumber {
            log.ID = id
            m.logs[id] = log
            return log, nil
        }
    }
    log.ID = uuid.New().String()
    m.logs[log.ID] = log
    m.logsByTrip[tripID] = append(m.logsByTrip[tripID], log.ID)
    return log, nil
}

func (m *Memory) ListLogs(ctx context.Context, accountID, tripID string) ([]model.DriverLog, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    t, ok := m.trips[tripID]
    if !ok || t.AccountID != accountID { return nil, ErrNotFound }
    out := []model.DriverLog{}
    for _, id := range m.logsByTrip[tripID] { out = append(out, m.logs[id]) }
    sort.Slice(out, func(i, j int) bool { return out[i].DayNumber < out[j].DayNumber })
    return out, nil
}

func (m *Memory) DeleteDriverLog(ctx context.Context, accountID, logID string) error {
    m.mu.Lock(); defer m.mu.Unlock()
    log, ok := m.logs[logID]
    if !ok { return ErrNotFound }
    t, ok := m.trips[log.TripID]
    if !ok || t.AccountID != accountID { return ErrNotFound }
    delete(m.logs, logID)
    ids := m.logsByTrip[log.TripID]
    out := make([]string, 0, len(ids))
    for _, id := range ids { if id != logID { out = append(out, id) } }
    m.logsByTrip[log.TripID] = out
    return nil
}

func (m *Memory) EnqueueJob(ctx context.Context, job model.Job) (model.Job, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    if job.ID == "" { job.ID = uuid.New().String() }
    job.Status = model.JobPending
    job.CreatedAt = nowRFC3339()
    cp := job
    m.jobs[job.ID] = &cp
    m.jobQueue = append(m.jobQueue, job.ID)
    m.jobsByAcct[job.AccountID] = append(m.jobsByAcct[job.AccountID], job.ID)
    return job, nil
}

func (m *Memory) NextPendingJob(ctx context.Context) (model.Job, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    for len(m.jobQueue) > 0 {
        id := m.jobQueue[0]
        m.jobQueue = m.jobQueue[1:]
        if j, ok := m.jobs[id]; ok && j.Status == model.JobPending {
            return *j, nil
        }
    }
    return model.Job{}, ErrNotFound
}

func (m *Memory) MarkJobRunning(ctx context.Context, jobID string) error {
    m.mu.Lock(); defer m.mu.Unlock()
    j, ok := m.jobs[jobID]
    if !ok { return ErrNotFound }
    j.Status = model.JobRunning
    j.StartedAt = nowRFC3339()
    return nil
}

func (m *Memory) CompleteJob(ctx context.Context, jobID, tripID string) error {
    m.mu.Lock(); defer m.mu.Unlock()
    j, ok := m.jobs[jobID]
    if !ok { return ErrNotFound }
    j.Status = model.JobSuccess
    j.TripID = tripID
    j.CompletedAt = nowRFC3339()
    return nil
}

func (m *Memory) FailJob(ctx context.Context, jobID, message string) error {
    m.mu.Lock(); defer m.mu.Unlock()
    j, ok := m.jobs[jobID]
    if !ok { return ErrNotFound }
    j.Status = model.JobFailed
    j.ErrorMessage = message
    j.CompletedAt = nowRFC3339()
    return nil
}

func (m *Memory) GetJob(ctx context.Context, accountID, jobID string) (model.Job, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    j, ok := m.jobs[jobID]
    if !ok || j.AccountID != accountID { return model.Job{}, ErrNotFound }
    return *j, nil
}

func (m *Memory) ListJobs(ctx context.Context, accountID, cursor string, limit int) ([]model.Job, string, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    ids := m.jobsByAcct[accountID]
    start := 0
    if cursor != "" {
        for i, id := range ids {
            if id == cursor { start = i + 1; break }
        }
    }
    if limit <= 0 { limit = 100 }
    out := []model.Job{}
    var next string
    for i := start; i < len(ids) && len(out) < limit; i++ {
        out = append(out, *m.jobs[ids[i]])
        next = ids[i]
    }
    if len(out) < limit { next = "" }
    return out, next, nil
}

func (m *Memory) Ping(ctx context.Context) error { return nil }
