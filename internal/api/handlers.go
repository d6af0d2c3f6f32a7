package api

import (
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "strconv"
    "strings"
    "time"

    "tripdash/internal/buildinfo"
    "tripdash/internal/export"
    "tripdash/internal/geo"
    "tripdash/internal/metrics"
    "tripdash/internal/model"
    "tripdash/internal/progress"
    "tripdash/internal/store"
    "tripdash/internal/telemetry"
    "tripdash/internal/trip"
)

// TripsHandler handles POST/GET /v1/trips
func (s *Server) TripsHandler(w http.ResponseWriter, r *http.Request) {
    switch r.Method {
    case http.MethodPost:
        p := s.getPrincipal(r)
        if !p.CanDispatch() { writeProblem(w, 403, "Forbidden", "dispatcher or admin required", r.URL.Path); return }
        var req model.PlanTripRequest
        if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
            writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
            return
        }
        if req.AccountID == "" { req.AccountID = p.Account }
        if req.RunAsync {
            job, err := s.Planner.Enqueue(r.Context(), req)
            if err != nil {
                writeProblem(w, http.StatusInternalServerError, "Enqueue failed", err.Error(), r.URL.Path)
                return
            }
            writeJSON(w, http.StatusAccepted, map[string]any{"jobId": job.ID, "status": job.Status})
            return
        }
        t, err := s.Planner.PlanTrip(r.Context(), req)
        if err != nil {
            writeProblem(w, http.StatusBadGateway, "Plan trip failed", err.Error(), r.URL.Path)
            return
        }
        s.publishEvent(t.ID, "trip.planned", string(t.Status), nil)
        writeJSON(w, http.StatusCreated, t)
    case http.MethodGet:
        p := s.getPrincipal(r)
        status := r.URL.Query().Get("status")
        cursor := r.URL.Query().Get("cursor")
        items, next, err := s.Store.ListTrips(r.Context(), p.Account, status, cursor, parseLimit(r, 100))
        if err != nil {
            writeProblem(w, http.StatusInternalServerError, "List trips failed", err.Error(), r.URL.Path)
            return
        }
        writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
    default:
        w.WriteHeader(http.StatusMethodNotAllowed)
    }
}

// TripByIDHandler handles /v1/trips/{id} and its subresources: status,
// options, progress, compliance, logs, export, events/stream, events/ws.
func (s *Server) TripByIDHandler(w http.ResponseWriter, r *http.Request) {
    rest := strings.TrimPrefix(r.URL.Path, "/v1/trips/")
    if rest == r.URL.Path || rest == "" {
        writeProblem(w, http.StatusNotFound, "Not Found", "missing id", r.URL.Path)
        return
    }
    parts := strings.Split(rest, "/")
    id := parts[0]
    if len(parts) == 1 {
        switch r.Method {
        case http.MethodGet:
            s.getTrip(w, r, id)
        case http.MethodDelete:
            s.deleteTrip(w, r, id)
        default:
            w.WriteHeader(http.StatusMethodNotAllowed)
        }
        return
    }
    switch parts[1] {
    case "status":
        if r.Method != http.MethodPost { w.WriteHeader(http.StatusMethodNotAllowed); return }
        s.changeStatus(w, r, id)
    case "options":
        if r.Method != http.MethodGet { w.WriteHeader(http.StatusMethodNotAllowed); return }
        s.statusOptions(w, r, id)
    case "progress":
        if r.Method != http.MethodGet { w.WriteHeader(http.StatusMethodNotAllowed); return }
        s.tripProgress(w, r, id)
    case "compliance":
        if r.Method != http.MethodGet { w.WriteHeader(http.StatusMethodNotAllowed); return }
        s.tripCompliance(w, r, id)
    case "logs":
        s.tripLogs(w, r, id, parts[1:])
    case "export":
        if r.Method != http.MethodGet { w.WriteHeader(http.StatusMethodNotAllowed); return }
        s.exportLogs(w, r, id)
    case "events":
        if len(parts) > 2 && parts[2] == "stream" {
            if r.Method != http.MethodGet { w.WriteHeader(http.StatusMethodNotAllowed); return }
            s.streamEvents(w, r, id)
            return
        }
        if len(parts) > 2 && parts[2] == "ws" {
            s.TripEventsWSHandler(w, r, id)
            return
        }
        writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
    default:
        writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
    }
}

func (s *Server) getTrip(w http.ResponseWriter, r *http.Request, id string) {
    p := s.getPrincipal(r)
    t, err := s.Store.GetTrip(r.Context(), p.Account, id)
    if err != nil {
        writeProblem(w, http.StatusNotFound, "Trip not found", err.Error(), r.URL.Path)
        return
    }
    writeJSON(w, http.StatusOK, t)
}

func (s *Server) deleteTrip(w http.ResponseWriter, r *http.Request, id string) {
    p := s.getPrincipal(r)
    if !p.CanDispatch() { writeProblem(w, 403, "Forbidden", "dispatcher or admin required", r.URL.Path); return }
    t, err := s.Store.GetTrip(r.Context(), p.Account, id)
    if err != nil {
        writeProblem(w, http.StatusNotFound, "Trip not found", err.Error(), r.URL.Path)
        return
    }
    if ok, reason := trip.CanDelete(t); !ok {
        writeProblem(w, http.StatusConflict, "Cannot delete trip", reason, r.URL.Path)
        return
    }
    if err := s.Store.DeleteTrip(r.Context(), p.Account, id); err != nil {
        writeProblem(w, http.StatusInternalServerError, "Delete failed", err.Error(), r.URL.Path)
        return
    }
    s.publishEvent(id, "trip.deleted", string(t.Status), nil)
    writeJSON(w, http.StatusOK, model.MutationResult{Success: true, Errors: []string{}})
}

// changeStatus runs the state machine check, the compliance advisory when
// completing, and then the store update, which is the authority on the
// single-active rule.
func (s *Server) changeStatus(w http.ResponseWriter, r *http.Request, id string) {
    p := s.getPrincipal(r)
    var req struct {
        Status string `json:"status"`
    }
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
        return
    }
    target := model.TripStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
    t, err := s.Store.GetTrip(r.Context(), p.Account, id)
    if err != nil {
        writeProblem(w, http.StatusNotFound, "Trip not found", err.Error(), r.URL.Path)
        return
    }
    siblings, _, err := s.Store.ListTrips(r.Context(), p.Account, string(model.StatusInProgress), "", 10)
    if err != nil {
        writeProblem(w, http.StatusInternalServerError, "List trips failed", err.Error(), r.URL.Path)
        return
    }
    if ok, reason := trip.CanTransition(t, target, siblings); !ok {
        metrics.StatusTransitions.WithLabelValues(string(target), "rejected").Inc()
        writeJSON(w, http.StatusOK, model.MutationResult{Success: false, Errors: []string{reason}})
        return
    }

    // Advisory only: flagged or skipped reports never block completion.
    var report *model.ComplianceReport
    if target == model.StatusCompleted {
        rep := s.complianceFor(r, p.Account, id)
        report = &rep
    }

    updated, err := s.Store.UpdateTripStatus(r.Context(), p.Account, id, target)
    if err != nil {
        if errors.Is(err, store.ErrActiveConflict) {
            metrics.StatusTransitions.WithLabelValues(string(target), "rejected").Inc()
            writeJSON(w, http.StatusOK, model.MutationResult{Success: false, Errors: []string{err.Error()}})
            return
        }
        if errors.Is(err, store.ErrNotFound) {
            writeProblem(w, http.StatusNotFound, "Trip not found", err.Error(), r.URL.Path)
            return
        }
        writeProblem(w, http.StatusInternalServerError, "Status update failed", err.Error(), r.URL.Path)
        return
    }
    metrics.StatusTransitions.WithLabelValues(string(target), "applied").Inc()
    s.publishEvent(id, "status.changed", string(updated.Status), map[string]any{"from": string(t.Status)})

    resp := map[string]any{"success": true, "errors": []string{}, "trip": updated}
    if report != nil { resp["compliance"] = report }
    writeJSON(w, http.StatusOK, resp)
}

func (s *Server) statusOptions(w http.ResponseWriter, r *http.Request, id string) {
    p := s.getPrincipal(r)
    t, err := s.Store.GetTrip(r.Context(), p.Account, id)
    if err != nil {
        writeProblem(w, http.StatusNotFound, "Trip not found", err.Error(), r.URL.Path)
        return
    }
    siblings, _, err := s.Store.ListTrips(r.Context(), p.Account, string(model.StatusInProgress), "", 10)
    if err != nil {
        writeProblem(w, http.StatusInternalServerError, "List trips failed", err.Error(), r.URL.Path)
        return
    }
    writeJSON(w, http.StatusOK, map[string]any{"options": trip.AvailableOptions(t, siblings)})
}

// tripProgress reconciles telemetry against the planned polyline on every
// request; nothing derived here is persisted.
func (s *Server) tripProgress(w http.ResponseWriter, r *http.Request, id string) {
    p := s.getPrincipal(r)
    t, err := s.Store.GetTrip(r.Context(), p.Account, id)
    if err != nil {
        writeProblem(w, http.StatusNotFound, "Trip not found", err.Error(), r.URL.Path)
        return
    }
    logs, err := s.Store.ListLogs(r.Context(), p.Account, id)
    if err != nil {
        writeProblem(w, http.StatusInternalServerError, "List logs failed", err.Error(), r.URL.Path)
        return
    }
    var planned []model.Coordinate
    if t.Route != nil { planned = geo.DecodePolyline(t.Route.Polyline) }
    points := telemetry.ExtractPoints(logs)
    start := t.StartLocation.Coordinate()
    res := progress.Reconcile(planned, points, &start)
    writeJSON(w, http.StatusOK, map[string]any{
        "tripId":      t.ID,
        "status":      t.Status,
        "drivenPath":  res.DrivenPath,
        "drivenMiles": res.DrivenMiles,
        "fuelStatus":  res.FuelStatus,
        "stops":       telemetry.ExtractStopMarkers(logs),
    })
}

func (s *Server) tripCompliance(w http.ResponseWriter, r *http.Request, id string) {
    p := s.getPrincipal(r)
    if _, err := s.Store.GetTrip(r.Context(), p.Account, id); err != nil {
        writeProblem(w, http.StatusNotFound, "Trip not found", err.Error(), r.URL.Path)
        return
    }
    writeJSON(w, http.StatusOK, s.complianceFor(r, p.Account, id))
}

func (s *Server) complianceFor(r *http.Request, account, id string) model.ComplianceReport {
    logs, err := s.Store.ListLogs(r.Context(), account, id)
    if err != nil {
        s.Log.WithError(err).WithField("tripId", id).Warn("compliance check skipped")
        return trip.SkippedReport()
    }
    return trip.CheckCompletion(logs)
}

// tripLogs handles GET /v1/trips/{id}/logs and PUT /v1/trips/{id}/logs/{day}
func (s *Server) tripLogs(w http.ResponseWriter, r *http.Request, id string, parts []string) {
    p := s.getPrincipal(r)
    if len(parts) == 1 {
        if r.Method != http.MethodGet { w.WriteHeader(http.StatusMethodNotAllowed); return }
        if _, err := s.Store.GetTrip(r.Context(), p.Account, id); err != nil {
            writeProblem(w, http.StatusNotFound, "Trip not found", err.Error(), r.URL.Path)
            return
        }
        logs, err := s.Store.ListLogs(r.Context(), p.Account, id)
        if err != nil {
            writeProblem(w, http.StatusInternalServerError, "List logs failed", err.Error(), r.URL.Path)
            return
        }
        writeJSON(w, http.StatusOK, map[string]any{"items": logs})
        return
    }
    if r.Method != http.MethodPut { w.WriteHeader(http.StatusMethodNotAllowed); return }
    day, err := strconv.Atoi(parts[1])
    if err != nil {
        writeProblem(w, http.StatusBadRequest, "Invalid day number", parts[1], r.URL.Path)
        return
    }
    var in model.DriverLogInput
    if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
        writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
        return
    }
    in.DayNumber = day
    saved, err := s.Store.UpsertDriverLog(r.Context(), p.Account, id, in)
    if err != nil {
        if errors.Is(err, store.ErrNotFound) {
            writeProblem(w, http.StatusNotFound, "Trip not found", err.Error(), r.URL.Path)
            return
        }
        writeJSON(w, http.StatusOK, model.MutationResult{Success: false, Errors: []string{err.Error()}})
        return
    }
    s.publishEvent(id, "progress.updated", "", map[string]any{"dayNumber": saved.DayNumber})
    writeJSON(w, http.StatusOK, map[string]any{"success": true, "errors": []string{}, "log": saved})
}

// LogByIDHandler handles DELETE /v1/logs/{id}
func (s *Server) LogByIDHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodDelete { w.WriteHeader(http.StatusMethodNotAllowed); return }
    id := strings.TrimPrefix(r.URL.Path, "/v1/logs/")
    if id == "" || strings.Contains(id, "/") {
        writeProblem(w, http.StatusNotFound, "Not Found", "missing id", r.URL.Path)
        return
    }
    p := s.getPrincipal(r)
    if err := s.Store.DeleteDriverLog(r.Context(), p.Account, id); err != nil {
        if errors.Is(err, store.ErrNotFound) {
            writeProblem(w, http.StatusNotFound, "Log not found", err.Error(), r.URL.Path)
            return
        }
        writeProblem(w, http.StatusInternalServerError, "Delete failed", err.Error(), r.URL.Path)
        return
    }
    writeJSON(w, http.StatusOK, model.MutationResult{Success: true, Errors: []string{}})
}

func (s *Server) exportLogs(w http.ResponseWriter, r *http.Request, id string) {
    p := s.getPrincipal(r)
    t, err := s.Store.GetTrip(r.Context(), p.Account, id)
    if err != nil {
        writeProblem(w, http.StatusNotFound, "Trip not found", err.Error(), r.URL.Path)
        return
    }
    logs, err := s.Store.ListLogs(r.Context(), p.Account, id)
    if err != nil {
        writeProblem(w, http.StatusInternalServerError, "List logs failed", err.Error(), r.URL.Path)
        return
    }
    w.Header().Set("Content-Type", "text/csv")
    w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.CSVFilename(t.ID)))
    if err := export.WriteLogsCSV(w, t.ID, logs); err != nil {
        s.Log.WithError(err).WithField("tripId", t.ID).Error("csv export failed")
    }
}

// streamEvents serves SSE for a trip's event feed.
func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request, id string) {
    flusher, ok := w.(http.Flusher)
    if !ok { writeProblem(w, 500, "Streaming unsupported", "", r.URL.Path); return }
    w.Header().Set("Content-Type", "text/event-stream")
    w.Header().Set("Cache-Control", "no-cache")
    w.Header().Set("Connection", "keep-alive")
    ch := s.Broker.Subscribe(id)
    defer s.Broker.Unsubscribe(id, ch)
    heartbeat := func() {
        fmt.Fprintf(w, "event: heartbeat\n")
        fmt.Fprintf(w, "data: {\"tripId\":\"%s\",\"ts\":\"%s\"}\n\n", id, time.Now().UTC().Format(time.RFC3339))
        flusher.Flush()
    }
    heartbeat()
    notify := r.Context().Done()
    for {
        select {
        case <-notify:
            return
        case evt := <-ch:
            b, _ := json.Marshal(evt)
            fmt.Fprintf(w, "event: %s\n", evt.Type)
            fmt.Fprintf(w, "data: %s\n\n", string(b))
            flusher.Flush()
        case <-time.After(15 * time.Second):
            heartbeat()
        }
    }
}

// JobsHandler handles GET /v1/jobs
func (s *Server) JobsHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodGet { w.WriteHeader(http.StatusMethodNotAllowed); return }
    p := s.getPrincipal(r)
    items, next, err := s.Store.ListJobs(r.Context(), p.Account, r.URL.Query().Get("cursor"), parseLimit(r, 50))
    if err != nil {
        writeProblem(w, http.StatusInternalServerError, "List jobs failed", err.Error(), r.URL.Path)
        return
    }
    writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
}

// JobByIDHandler handles GET /v1/jobs/{id}
func (s *Server) JobByIDHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodGet { w.WriteHeader(http.StatusMethodNotAllowed); return }
    id := strings.TrimPrefix(r.URL.Path, "/v1/jobs/")
    if id == "" || strings.Contains(id, "/") {
        writeProblem(w, http.StatusNotFound, "Not Found", "missing id", r.URL.Path)
        return
    }
    p := s.getPrincipal(r)
    job, err := s.Store.GetJob(r.Context(), p.Account, id)
    if err != nil {
        writeProblem(w, http.StatusNotFound, "Job not found", err.Error(), r.URL.Path)
        return
    }
    writeJSON(w, http.StatusOK, job)
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
    writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "build": buildinfo.Info()})
}

func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
    if err := s.Store.Ping(r.Context()); err != nil {
        writeProblem(w, http.StatusServiceUnavailable, "Store unavailable", err.Error(), r.URL.Path)
        return
    }
    writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
