package metrics

import (
    "sync"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/collectors"
)

var (
    // Registry is the dedicated Prometheus registry for the API
    Registry = prometheus.NewRegistry()
    // HTTPRequests counts requests by method, path, and status
    HTTPRequests = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
        []string{"method", "path", "status"},
    )
    // HTTPDuration records request durations in seconds
    HTTPDuration = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
        []string{"method", "path", "status"},
    )

    // StatusTransitions counts trip status transitions by target status and outcome
    StatusTransitions = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "trip_status_transitions_total", Help: "Trip status transitions by target status and outcome."},
        []string{"status", "outcome"},
    )
    // JobsProcessed counts background jobs by type and terminal status
    JobsProcessed = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "jobs_processed_total", Help: "Background jobs by type and terminal status."},
        []string{"type", "status"},
    )
    // EventsPublished counts trip events pushed to the broker by event type
    EventsPublished = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "trip_events_published_total", Help: "Trip events published by event type."},
        []string{"type"},
    )
)

// RegisterDefault registers collectors to the service registry.
func RegisterDefault() {
    regOnce.Do(func() {
        Registry.MustRegister(HTTPRequests)
        Registry.MustRegister(HTTPDuration)
        Registry.MustRegister(StatusTransitions)
        Registry.MustRegister(JobsProcessed)
        Registry.MustRegister(EventsPublished)
        // Go/process collectors on our registry
        Registry.MustRegister(collectors.NewGoCollector())
        Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
    })
}

var regOnce sync.Once
