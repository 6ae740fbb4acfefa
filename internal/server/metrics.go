package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agbru/bigconv/internal/metrics"
)

// Metrics holds the server's Prometheus registry: HTTP request metrics,
// conversion metrics fed by the converter and the Go runtime collectors.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	activeRequests  prometheus.Gauge
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	conversions     *metrics.ConversionMetrics
}

// NewMetrics creates a Metrics instance with its own registry, so several
// servers (or tests) never collide on registration.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		handler:  promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		activeRequests: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "bigconv",
			Name:      "active_requests",
			Help:      "Number of HTTP requests currently being served",
		}),
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bigconv",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests, per path and status code",
		}, []string{"path", "code"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bigconv",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency, per path",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path"}),
		conversions: metrics.NewConversionMetrics(reg),
	}
}

// Conversions returns the observer to install on the server's converter.
func (m *Metrics) Conversions() *metrics.ConversionMetrics {
	return m.conversions
}

// IncrementActiveRequests increments the in-flight request gauge.
func (m *Metrics) IncrementActiveRequests() {
	m.activeRequests.Inc()
}

// DecrementActiveRequests decrements the in-flight request gauge.
func (m *Metrics) DecrementActiveRequests() {
	m.activeRequests.Dec()
}

// ObserveRequest records a finished request.
func (m *Metrics) ObserveRequest(path string, code int, elapsed time.Duration) {
	m.requestsTotal.WithLabelValues(path, strconv.Itoa(code)).Inc()
	m.requestDuration.WithLabelValues(path).Observe(elapsed.Seconds())
}

// WritePrometheus serves the registry in the Prometheus exposition format.
func (m *Metrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware tracks in-flight requests, counts and latency.
func (s *Server) metricsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.metrics.IncrementActiveRequests()
		defer s.metrics.DecrementActiveRequests()

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		s.metrics.ObserveRequest(r.URL.Path, rec.status, time.Since(start))
	}
}

// handleMetrics serves /metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.metrics.WritePrometheus(w, r)
}
