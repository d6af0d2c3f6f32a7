package store

import (
    "context"
    "database/sql"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "sort"
    "strings"
    "time"

    "github.com/google/uuid"
    _ "github.com/jackc/pgx/v5/stdlib"

    "tripdash/internal/model"
)

// Postgres persists trips, logs, and jobs. Route geometry, itineraries,
// locations, and segment sets are stored as JSONB columns; see
// db/migrations. A partial unique index (one IN_PROGRESS trip per
// account) backs the single-active rule authoritatively.
type Postgres struct {
    db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
    db, err := sql.Open("pgx", dsn)
    if err != nil {
        return nil, err
    }
    if err := db.Ping(); err != nil {
        return nil, err
    }
    return &Postgres{db: db}, nil
}

func toJSON(v any) []byte {
    if v == nil { return nil }
    b, _ := json.Marshal(v)
    return b
}

func fromJSON(raw []byte, v any) {
    if len(raw) > 0 { _ = json.Unmarshal(raw, v) }
}

func (p *Postgres) CreateTrip(ctx context.Context, t model.Trip) (model.Trip, error) {
    if t.ID == "" { t.ID = uuid.New().String() }
    if t.Status == "" { t.Status = model.StatusPlanned }
    now := time.Now().UTC()
    t.CreatedAt = now.Format(time.RFC3339)
    t.UpdatedAt = t.CreatedAt
    _, err := p.db.ExecContext(ctx, `
        INSERT INTO trips (id, account_id, status, start_location, pickup_location, dropoff_location,
            cycle_hours_used, total_miles, total_hours, tractor_number, trailer_numbers, carrier_names,
            main_office_address, home_terminal_address, co_driver_name, shipper_name, commodity,
            route, itinerary, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$20)`,
        t.ID, t.AccountID, string(t.Status),
        toJSON(t.StartLocation), toJSON(t.PickupLocation), toJSON(t.DropoffLocation),
        t.CycleHoursUsed, t.TotalMiles, t.TotalHours,
        t.TractorNumber, toJSON(t.TrailerNumbers), toJSON(t.CarrierNames),
        t.MainOfficeAddress, t.HomeTerminalAddress, t.CoDriverName, t.ShipperName, t.Commodity,
        toJSON(t.Route), toJSON(t.Itinerary), now)
    if err != nil { return model.Trip{}, err }
    return t, nil
}

const tripColumns = `id::text, account_id, status, start_location, pickup_location, dropoff_location,
    cycle_hours_used, total_miles, total_hours, tractor_number, trailer_numbers, carrier_names,
    main_office_address, home_terminal_address, co_driver_name, shipper_name, commodity,
    route, itinerary, created_at, updated_at`

func scanTrip(row interface{ Scan(...any) error }) (model.Trip, error) {
    var t model.Trip
    var status string
    var startLoc, pickupLoc, dropLoc, trailers, carriers, route, itin []byte
    var createdAt, updatedAt time.Time
    err := row.Scan(&t.ID, &t.AccountID, &status, &startLoc, &pickupLoc, &dropLoc,
        &t.CycleHoursUsed, &t.TotalMiles, &t.TotalHours, &t.TractorNumber, &trailers, &carriers,
        &t.MainOfficeAddress, &t.HomeTerminalAddress, &t.CoDriverName, &t.ShipperName, &t.Commodity,
        &route, &itin, &createdAt, &updatedAt)
    if err != nil { return model.Trip{}, err }
    t.Status = model.TripStatus(status)
    fromJSON(startLoc, &t.StartLocation)
    fromJSON(pickupLoc, &t.PickupLocation)
    fromJSON(dropLoc, &t.DropoffLocation)
    fromJSON(trailers, &t.TrailerNumbers)
    fromJSON(carriers, &t.CarrierNames)
    if len(route) > 0 && string(route) != "null" { t.Route = &model.Route{}; fromJSON(route, t.Route) }
    if len(itin) > 0 && string(itin) != "null" { t.Itinerary = &model.Itinerary{}; fromJSON(itin, t.Itinerary) }
    t.CreatedAt = createdAt.UTC().Format(time.RFC3339)
    t.UpdatedAt = updatedAt.UTC().Format(time.RFC3339)
    return t, nil
}

func (p *Postgres) GetTrip(ctx context.Context, accountID, tripID string) (model.Trip, error) {
    row := p.db.QueryRowContext(ctx, `SELECT `+tripColumns+` FROM trips WHERE account_id=$1 AND id=$2`, accountID, tripID)
    t, err := scanTrip(row)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) { return model.Trip{}, ErrNotFound }
        return model.Trip{}, err
    }
    return t, nil
}

func (p *Postgres) ListTrips(ctx context.Context, accountID, status, cursor string, limit int) ([]model.Trip, string, error) {
    if limit <= 0 || limit > 500 { limit = 100 }
    var rows *sql.Rows
    var err error
    if status != "" {
        if cursor != "" {
            rows, err = p.db.QueryContext(ctx, `SELECT `+tripColumns+` FROM trips WHERE account_id=$1 AND status=$2 AND id::text > $3 ORDER BY id LIMIT $4`, accountID, status, cursor, limit)
        } else {
            rows, err = p.db.QueryContext(ctx, `SELECT `+tripColumns+` FROM trips WHERE account_id=$1 AND status=$2 ORDER BY id LIMIT $3`, accountID, status, limit)
        }
    } else {
        if cursor != "" {
            rows, err = p.db.QueryContext(ctx, `SELECT `+tripColumns+` FROM trips WHERE account_id=$1 AND id::text > $2 ORDER BY id LIMIT $3`, accountID, cursor, limit)
        } else {
            rows, err = p.db.QueryContext(ctx, `SELECT `+tripColumns+` FROM trips WHERE account_id=$1 ORDER BY id LIMIT $2`, accountID, limit)
        }
    }
    if err != nil { return nil, "", err }
    defer rows.Close()
    out := []model.Trip{}
    var last string
    for rows.Next() {
        t, err := scanTrip(rows)
        if err != nil { return nil, "", err }
        out = append(out, t)
        last = t.ID
    }
    var next string
    if len(out) == limit { next = last }
    return out, next, nil
}

func (p *Postgres) UpdateTripStatus(ctx context.Context, accountID, tripID string, status model.TripStatus) (model.Trip, error) {
    res, err := p.db.ExecContext(ctx, `UPDATE trips SET status=$1, updated_at=now() WHERE account_id=$2 AND id=$3`,
        string(status), accountID, tripID)
    if err != nil {
        // partial unique index: at most one IN_PROGRESS per account
        if strings.Contains(err.Error(), "unique_active_trip_per_account") { return model.Trip{}, ErrActiveConflict }
        return model.Trip{}, err
    }
    n, _ := res.RowsAffected()
    if n == 0 { return model.Trip{}, ErrNotFound }
    return p.GetTrip(ctx, accountID, tripID)
}

func (p *Postgres) DeleteTrip(ctx context.Context, accountID, tripID string) error {
    res, err := p.db.ExecContext(ctx, `DELETE FROM trips WHERE account_id=$1 AND id=$2`, accountID, tripID)
    if err != nil { return err }
    n, _ := res.RowsAffected()
    if n == 0 { return ErrNotFound }
    return nil
}

func (p *Postgres) UpsertDriverLog(ctx context.Context, accountID, tripID string, in model.DriverLogInput) (model.DriverLog, error) {
    if _, err := p.GetTrip(ctx, accountID, tripID); err != nil {
        return model.DriverLog{}, err
    }
    log, err := normalizeLogInput(in)
    if err != nil { return model.DriverLog{}, err }
    log.TripID = tripID
    log.ID = uuid.New().String()
    row := p.db.QueryRowContext(ctx, `
        INSERT INTO driver_logs (id, trip_id, day_number, log_date, notes, total_distance_miles,
            total_off_duty_minutes, total_sleeper_minutes, total_driving_minutes, total_on_duty_minutes, segments)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        ON CONFLICT (trip_id, day_number) DO UPDATE SET
            log_date=EXCLUDED.log_date, notes=EXCLUDED.notes, total_distance_miles=EXCLUDED.total_distance_miles,
            total_off_duty_minutes=EXCLUDED.total_off_duty_minutes, total_sleeper_minutes=EXCLUDED.total_sleeper_minutes,
            total_driving_minutes=EXCLUDED.total_driving_minutes, total_on_duty_minutes=EXCLUDED.total_on_duty_minutes,
            segments=EXCLUDED.segments
        RETURNING id::text`,
        log.ID, tripID, log.DayNumber, log.LogDate, log.Notes, log.TotalDistanceMiles,
        log.TotalOffDutyMinutes, log.TotalSleeperMinutes, log.TotalDrivingMinutes, log.TotalOnDutyMinutes,
        toJSON(log.Segments))
    if err := row.Scan(&log.ID); err != nil { return model.DriverLog{}, err }
    return log, nil
}

func (p *Postgres) ListLogs(ctx context.Context, accountID, tripID string) ([]model.DriverLog, error) {
    if _, err := p.GetTrip(ctx, accountID, tripID); err != nil {
        return nil, err
    }
    rows, err := p.db.QueryContext(ctx, `
        SELECT id::text, day_number, log_date::text, notes, total_distance_miles,
            total_off_duty_minutes, total_sleeper_minutes, total_driving_minutes, total_on_duty_minutes, segments
        FROM driver_logs WHERE trip_id=$1 ORDER BY day_number`, tripID)
    if err != nil { return nil, err }
    defer rows.Close()
    out := []model.DriverLog{}
    for rows.Next() {
        var l model.DriverLog
        var segs []byte
        if err := rows.Scan(&l.ID, &l.DayNumber, &l.LogDate, &l.Notes, &l.TotalDistanceMiles,
            &l.TotalOffDutyMinutes, &l.TotalSleeperMinutes, &l.TotalDrivingMinutes, &l.TotalOnDutyMinutes, &segs); err != nil {
            return nil, err
        }
        l.TripID = tripID
        fromJSON(segs, &l.Segments)
        if l.Segments == nil { l.Segments = []model.DutySegment{} }
        out = append(out, l)
    }
    return out, rows.Err()
}

func (p *Postgres) DeleteDriverLog(ctx context.Context, accountID, logID string) error {
    res, err := p.db.ExecContext(ctx, `
        DELETE FROM driver_logs USING trips
        WHERE driver_logs.trip_id = trips.id AND trips.account_id=$1 AND driver_logs.id=$2`,
        accountID, logID)
    if err != nil { return err }
    n, _ := res.RowsAffected()
    if n == 0 { return ErrNotFound }
    return nil
}

func (p *Postgres) EnqueueJob(ctx context.Context, job model.Job) (model.Job, error) {
    if job.ID == "" { job.ID = uuid.New().String() }
    job.Status = model.JobPending
    now := time.Now().UTC()
    job.CreatedAt = now.Format(time.RFC3339)
    _, err := p.db.ExecContext(ctx, `
        INSERT INTO jobs (id, account_id, job_type, status, payload, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)`,
        job.ID, job.AccountID, job.JobType, job.Status, toJSON(job.Payload), now)
    if err != nil { return model.Job{}, err }
    return job, nil
}

const jobColumns = `id::text, account_id, job_type, status, payload, COALESCE(trip_id::text,''), COALESCE(error_message,''),
    created_at, started_at, completed_at`

func scanJob(row interface{ Scan(...any) error }) (model.Job, error) {
    var j model.Job
    var payload []byte
    var createdAt time.Time
    var startedAt, completedAt sql.NullTime
    err := row.Scan(&j.ID, &j.AccountID, &j.JobType, &j.Status, &payload, &j.TripID, &j.ErrorMessage,
        &createdAt, &startedAt, &completedAt)
    if err != nil { return model.Job{}, err }
    fromJSON(payload, &j.Payload)
    j.CreatedAt = createdAt.UTC().Format(time.RFC3339)
    if startedAt.Valid { j.StartedAt = startedAt.Time.UTC().Format(time.RFC3339) }
    if completedAt.Valid { j.CompletedAt = completedAt.Time.UTC().Format(time.RFC3339) }
    return j, nil
}

// NextPendingJob claims the oldest pending job and flips it to RUNNING in
// one statement, so the row lock taken by SKIP LOCKED still covers the
// status change. A bare SELECT would release the lock at statement end and
// let two workers claim the same job.
func (p *Postgres) NextPendingJob(ctx context.Context) (model.Job, error) {
    row := p.db.QueryRowContext(ctx, `
        UPDATE jobs SET status='RUNNING', started_at=now()
        WHERE id = (
            SELECT id FROM jobs WHERE status='PENDING'
            ORDER BY created_at FOR UPDATE SKIP LOCKED LIMIT 1
        )
        RETURNING `+jobColumns)
    j, err := scanJob(row)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) { return model.Job{}, ErrNotFound }
        return model.Job{}, err
    }
    return j, nil
}

func (p *Postgres) MarkJobRunning(ctx context.Context, jobID string) error {
    _, err := p.db.ExecContext(ctx, `UPDATE jobs SET status='RUNNING', started_at=now() WHERE id=$1`, jobID)
    return err
}

func (p *Postgres) CompleteJob(ctx context.Context, jobID, tripID string) error {
    _, err := p.db.ExecContext(ctx, `UPDATE jobs SET status='SUCCESS', trip_id=$1, completed_at=now() WHERE id=$2`, tripID, jobID)
    return err
}

func (p *Postgres) FailJob(ctx context.Context, jobID, message string) error {
    _, err := p.db.ExecContext(ctx, `UPDATE jobs SET status='FAILED', error_message=$1, completed_at=now() WHERE id=$2`, message, jobID)
    return err
}

func (p *Postgres) GetJob(ctx context.Context, accountID, jobID string) (model.Job, error) {
    row := p.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE account_id=$1 AND id=$2`, accountID, jobID)
    j, err := scanJob(row)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) { return model.Job{}, ErrNotFound }
        return model.Job{}, err
    }
    return j, nil
}

func (p *Postgres) ListJobs(ctx context.Context, accountID, cursor string, limit int) ([]model.Job, string, error) {
    if limit <= 0 || limit > 500 { limit = 100 }
    var rows *sql.Rows
    var err error
    if cursor != "" {
        rows, err = p.db.QueryContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE account_id=$1 AND id::text > $2 ORDER BY id LIMIT $3`, accountID, cursor, limit)
    } else {
        rows, err = p.db.QueryContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE account_id=$1 ORDER BY id LIMIT $2`, accountID, limit)
    }
    if err != nil { return nil, "", err }
    defer rows.Close()
    out := []model.Job{}
    var last string
    for rows.Next() {
        j, err := scanJob(rows)
        if err != nil { return nil, "", err }
        out = append(out, j)
        last = j.ID
    }
    var next string
    if len(out) == limit { next = last }
    return out, next, nil
}

func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

// MigrateDir applies every .sql file in dir in lexical order. Files are
// expected to be idempotent (CREATE TABLE IF NOT EXISTS and friends).
func (p *Postgres) MigrateDir(dir string) error {
    entries, err := os.ReadDir(dir)
    if err != nil { return err }
    names := []string{}
    for _, e := range entries {
        if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") { names = append(names, e.Name()) }
    }
    sort.Strings(names)
    for _, name := range names {
        b, err := os.ReadFile(filepath.Join(dir, name))
        if err != nil { return err }
        if _, err := p.db.Exec(string(b)); err != nil {
            return fmt.Errorf("migration %s: %w", name, err)
        }
    }
    return nil
}
