package api

import (
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/sirupsen/logrus"
    "golang.org/x/time/rate"

    "tripdash/internal/metrics"
)

// statusRecorder captures the status code for logging and metrics.
type statusRecorder struct {
    http.ResponseWriter
    status int
}

func (r *statusRecorder) WriteHeader(code int) {
    r.status = code
    r.ResponseWriter.WriteHeader(code)
}

// Flush passes through so SSE keeps working behind the middleware.
func (r *statusRecorder) Flush() {
    if f, ok := r.ResponseWriter.(http.Flusher); ok { f.Flush() }
}

// metricPath collapses IDs so the label space stays bounded.
func metricPath(path string) string {
    parts := strings.Split(path, "/")
    for i, p := range parts {
        if i >= 3 && p != "" && i%2 == 1 {
            parts[i] = ":id"
        }
    }
    return strings.Join(parts, "/")
}

// Observe wraps next with request logging and Prometheus counters.
func Observe(log *logrus.Logger, next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        start := time.Now()
        rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
        next.ServeHTTP(rec, r)
        dur := time.Since(start)
        status := strconv.Itoa(rec.status)
        mp := metricPath(r.URL.Path)
        metrics.HTTPRequests.WithLabelValues(r.Method, mp, status).Inc()
        metrics.HTTPDuration.WithLabelValues(r.Method, mp, status).Observe(dur.Seconds())
        log.WithFields(logrus.Fields{
            "method":   r.Method,
            "path":     r.URL.Path,
            "status":   rec.status,
            "duration": dur.String(),
            "remote":   r.RemoteAddr,
        }).Info("request")
    })
}

// RateLimit applies a process-wide token bucket. Streaming endpoints
// hold connections, not tokens, so only request admission is limited.
func RateLimit(rps float64, burst int, next http.Handler) http.Handler {
    limiter := rate.NewLimiter(rate.Limit(rps), burst)
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if !limiter.Allow() {
            writeProblem(w, http.StatusTooManyRequests, "Rate limit exceeded", "try again later", r.URL.Path)
            return
        }
        next.ServeHTTP(w, r)
    })
}
