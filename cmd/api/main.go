package main

import (
    "context"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/prometheus/client_golang/prometheus/promhttp"
    "github.com/sirupsen/logrus"

    "tripdash/internal/api"
    "tripdash/internal/buildinfo"
    "tripdash/internal/config"
    "tripdash/internal/metrics"
)

func main() {
    log := logrus.New()
    log.SetFormatter(&logrus.JSONFormatter{})

    cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
    if err != nil {
        log.WithError(err).Fatal("failed to load config")
    }
    log.SetLevel(cfg.GetLogLevel())

    metrics.RegisterDefault()

    srvDeps, err := api.NewServer(cfg, log)
    if err != nil {
        log.WithError(err).Fatal("failed to init server")
    }

    mux := http.NewServeMux()

    // Trips
    mux.HandleFunc("/v1/trips", srvDeps.TripsHandler)
    mux.HandleFunc("/v1/trips/", srvDeps.TripByIDHandler) // includes /status, /progress, /logs, /export, /events

    // Driver logs
    mux.HandleFunc("/v1/logs/", srvDeps.LogByIDHandler)

    // Background jobs
    mux.HandleFunc("/v1/jobs", srvDeps.JobsHandler)
    mux.HandleFunc("/v1/jobs/", srvDeps.JobByIDHandler)

    // Health and metrics
    mux.HandleFunc("/healthz", srvDeps.HealthHandler)
    mux.HandleFunc("/readyz", srvDeps.ReadyHandler)
    mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

    handler := api.RateLimit(cfg.RateRPS, cfg.RateBurst, api.Observe(log, mux))

    srv := &http.Server{
        Addr:              cfg.Addr,
        Handler:           handler,
        ReadHeaderTimeout: 5 * time.Second,
    }

    worker := srvDeps.NewPlanWorker()
    worker.Start()

    go func() {
        log.WithFields(logrus.Fields{"addr": cfg.Addr, "version": buildinfo.Version}).Info("API listening")
        if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
            log.WithError(err).Fatal("server error")
        }
    }()

    stop := make(chan os.Signal, 1)
    signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
    <-stop

    log.Info("shutting down")
    close(worker.Stop)
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    if err := srv.Shutdown(ctx); err != nil {
        log.WithError(err).Error("shutdown error")
    }
}
