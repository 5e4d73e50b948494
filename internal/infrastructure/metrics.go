package infrastructure

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus instruments.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	uploadsTotal    *prometheus.CounterVec
	snapshotRows    prometheus.Histogram
}

// NewMetrics builds a self-contained registry; nothing is registered
// globally so tests can create as many instances as they like.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "capitalforge_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "path", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "capitalforge_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		uploadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "capitalforge_uploads_total",
			Help: "Processed uploads by outcome (accepted, cached, rejected).",
		}, []string{"outcome"}),
		snapshotRows: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "capitalforge_snapshot_rows",
			Help:    "Row counts of processed snapshots.",
			Buckets: prometheus.ExponentialBuckets(10, 4, 8),
		}),
	}
}

// Handler exposes the registry for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveUpload records one upload outcome.
func (m *Metrics) ObserveUpload(outcome string, rows int) {
	m.uploadsTotal.WithLabelValues(outcome).Inc()
	if rows > 0 {
		m.snapshotRows.Observe(float64(rows))
	}
}

// Middleware instruments every request with count and latency, labeled
// by the chi route pattern so snapshot IDs don't explode cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}

		m.requestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(ww.Status())).Inc()
		m.requestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
