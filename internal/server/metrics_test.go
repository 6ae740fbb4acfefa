package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/agbru/bigconv/internal/logging"
)

// recordingLogger keeps every entry so tests can check what a request
// logged.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

type logEntry struct {
	level  string
	msg    string
	err    error
	fields []logging.Field
}

func newTestLogger() *recordingLogger { return &recordingLogger{} }

func (l *recordingLogger) add(e logEntry) {
	l.mu.Lock()
	l.entries = append(l.entries, e)
	l.mu.Unlock()
}

func (l *recordingLogger) Info(msg string, fields ...logging.Field) {
	l.add(logEntry{level: "info", msg: msg, fields: fields})
}

func (l *recordingLogger) Error(msg string, err error, fields ...logging.Field) {
	l.add(logEntry{level: "error", msg: msg, err: err, fields: fields})
}

func (l *recordingLogger) Debug(msg string, fields ...logging.Field) {
	l.add(logEntry{level: "debug", msg: msg, fields: fields})
}

func (l *recordingLogger) Printf(string, ...any) {}
func (l *recordingLogger) Println(...any)        {}

// logged reports whether an entry with msg carries key = value.
func (l *recordingLogger) logged(msg, key string, value any) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.msg != msg {
			continue
		}
		for _, f := range e.fields {
			if f.Key == key && f.Value == value {
				return true
			}
		}
	}
	return false
}

func TestRequestMetricsPerOutcome(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	h := s.Handler()

	get(t, h, convertURL(map[string]string{"value": "65535", "format": "X"}))
	get(t, h, convertURL(map[string]string{"value": "65535", "format": "x8"}))
	get(t, h, convertURL(map[string]string{"value": "6e5"}))
	get(t, h, convertURL(map[string]string{"value": "1", "format": "D9999999"}))
	get(t, h, "/health")

	if got := testutil.ToFloat64(s.metrics.requestsTotal.WithLabelValues("/v1/convert", "200")); got != 2 {
		t.Errorf("successful conversions = %v, want 2", got)
	}
	if got := testutil.ToFloat64(s.metrics.requestsTotal.WithLabelValues("/v1/convert", "422")); got != 1 {
		t.Errorf("unparseable conversions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(s.metrics.requestsTotal.WithLabelValues("/v1/convert", "400")); got != 1 {
		t.Errorf("rejected formats = %v, want 1", got)
	}
	if got := testutil.ToFloat64(s.metrics.requestsTotal.WithLabelValues("/health", "200")); got != 1 {
		t.Errorf("health checks = %v, want 1", got)
	}
	if got := testutil.ToFloat64(s.metrics.activeRequests); got != 0 {
		t.Errorf("active requests after completion = %v, want 0", got)
	}
	if n := testutil.CollectAndCount(s.metrics.requestDuration); n != 2 {
		t.Errorf("latency series = %d, want one per path", n)
	}
}

func TestConversionMetricsPerFormat(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	h := s.Handler()

	for _, format := range []string{"X", "x", "N0", "E3", "D"} {
		if rec := get(t, h, convertURL(map[string]string{"value": "123456", "format": format})); rec.Code != http.StatusOK {
			t.Fatalf("format %s: status %d", format, rec.Code)
		}
	}
	body := get(t, h, "/metrics").Body.String()
	for _, want := range []string{
		`bigconv_format_total{format="X",outcome="ok"} 1`,
		`bigconv_format_total{format="x",outcome="ok"} 1`,
		`bigconv_format_total{format="N",outcome="ok"} 1`,
		`bigconv_format_total{format="E",outcome="ok"} 1`,
		`bigconv_format_total{format="D",outcome="ok"} 1`,
		`bigconv_parse_total{algorithm="naive",outcome="ok"} 5`,
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
}

func TestMetricsMiddlewareRecordsWrittenStatus(t *testing.T) {
	t.Parallel()
	s := &Server{metrics: NewMetrics()}
	handler := s.metricsMiddleware(func(w http.ResponseWriter, _ *http.Request) {
		if got := testutil.ToFloat64(s.metrics.activeRequests); got != 1 {
			t.Errorf("active requests while serving = %v, want 1", got)
		}
		w.WriteHeader(http.StatusGatewayTimeout)
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/v1/convert", http.NoBody))
	if got := testutil.ToFloat64(s.metrics.requestsTotal.WithLabelValues("/v1/convert", "504")); got != 1 {
		t.Errorf("timed out conversions = %v, want 1", got)
	}

	implicit := s.metricsMiddleware(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{}"))
	})
	implicit(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	if got := testutil.ToFloat64(s.metrics.requestsTotal.WithLabelValues("/health", "200")); got != 1 {
		t.Errorf("implicit 200 = %v, want 1", got)
	}
}

func TestMetricsRegistriesAreIndependent(t *testing.T) {
	t.Parallel()
	a, b := NewMetrics(), NewMetrics()
	a.ObserveRequest("/v1/convert", http.StatusOK, time.Millisecond)
	a.Conversions().ObserveParse("divide-and-conquer", 40_000, time.Millisecond, nil)
	a.Conversions().ObserveFormat('X', 3, time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(b.requestsTotal.WithLabelValues("/v1/convert", "200")); got != 0 {
		t.Errorf("second registry saw %v requests", got)
	}
	rec := httptest.NewRecorder()
	a.WritePrometheus(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	if !strings.Contains(rec.Body.String(), `bigconv_parse_total{algorithm="divide-and-conquer",outcome="ok"} 1`) {
		t.Error("parse observation missing from the registry")
	}
}

func TestHandleMetricsMethods(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(method, "/metrics", http.NoBody))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s /metrics = %d, want %d", method, rec.Code, http.StatusMethodNotAllowed)
		}
	}
	logger := s.logger.(*recordingLogger)
	if !logger.logged("request failed", "status", http.StatusMethodNotAllowed) {
		t.Error("rejected method was not logged")
	}
}
