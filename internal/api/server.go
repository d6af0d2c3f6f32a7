package api

import (
    "os"
    "strings"
    "time"

    "github.com/sirupsen/logrus"

    "tripdash/internal/auth"
    "tripdash/internal/config"
    "tripdash/internal/jobs"
    "tripdash/internal/metrics"
    "tripdash/internal/model"
    "tripdash/internal/router"
    "tripdash/internal/store"
)

type Server struct {
    Store   store.Store
    Auth    *auth.Verifier
    Broker  EventBroker
    Planner *jobs.Planner
    Log     *logrus.Logger
    Cfg     config.Settings
}

// NewServer wires the store, broker, verifier, and planner from
// settings. An empty database_url selects the in-memory store.
func NewServer(cfg config.Settings, log *logrus.Logger) (*Server, error) {
    var s store.Store
    if strings.TrimSpace(cfg.DatabaseURL) == "" {
        s = store.NewMemory()
    } else {
        sp, err := store.NewPostgres(cfg.DatabaseURL)
        if err != nil {
            return nil, err
        }
        // Run migrations (dev helper)
        if os.Getenv("DB_MIGRATE") != "false" {
            if err := sp.MigrateDir("db/migrations"); err != nil {
                log.WithError(err).Warn("migrations failed")
            }
        }
        s = sp
    }

    var broker EventBroker
    if cfg.RedisURL != "" {
        rb, err := NewRedisBroker(cfg.RedisURL)
        if err != nil {
            log.WithError(err).Warn("redis broker unavailable, using in-memory broker")
            broker = NewBroker()
        } else {
            broker = rb
        }
    } else {
        broker = NewBroker()
    }

    rc := router.NewClient(cfg.OpenRouteAPIKey, log)
    planner := jobs.NewPlanner(s, rc, log)

    return &Server{
        Store:   s,
        Auth:    auth.NewVerifier(cfg.AuthMode, cfg.JWTSecret),
        Broker:  broker,
        Planner: planner,
        Log:     log,
        Cfg:     cfg,
    }, nil
}

// NewPlanWorker creates the background worker that drains queued
// plan-trip jobs.
func (s *Server) NewPlanWorker() *jobs.Worker {
    return jobs.NewWorker(s.Store, s.Planner, s.Log)
}

// publishEvent pushes a trip event to subscribers and counts it.
func (s *Server) publishEvent(tripID, evtType, status string, payload map[string]any) {
    s.Broker.Publish(tripID, model.TripEvent{
        Type:    evtType,
        TripID:  tripID,
        Status:  status,
        TS:      time.Now().UTC().Format(time.RFC3339),
        Payload: payload,
    })
    metrics.EventsPublished.WithLabelValues(evtType).Inc()
}
