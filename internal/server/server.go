// Package server exposes the conversion engine over HTTP.
//
// Endpoints:
//
//	GET /v1/convert?value=...&style=...&locale=...&format=...&limbs=true
//	GET /health
//	GET /metrics
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/agbru/bigconv/internal/bigint"
	apperrors "github.com/agbru/bigconv/internal/errors"
	"github.com/agbru/bigconv/internal/logging"
	"github.com/agbru/bigconv/internal/metrics"
	"github.com/agbru/bigconv/internal/number"
)

const (
	// ShutdownTimeout bounds the graceful shutdown of in-flight requests.
	ShutdownTimeout = 5 * time.Second

	readHeaderTimeout = 5 * time.Second
	writeTimeout      = 60 * time.Second
	tracerName        = "github.com/agbru/bigconv/internal/server"
)

// Config holds the server settings.
type Config struct {
	Addr string
	// RequestTimeout bounds the conversion work of one request.
	RequestTimeout time.Duration
	Security       SecurityConfig
}

// Server serves conversions over HTTP.
type Server struct {
	cfg        Config
	converter  *number.Converter
	metrics    *Metrics
	memory     *metrics.MemoryCollector
	logger     logging.Logger
	tracer     trace.Tracer
	httpServer *http.Server
	started    time.Time
}

// New creates a server whose converter is built from opts, with the
// server's conversion metrics installed as its observer.
func New(cfg Config, opts number.Options, logger logging.Logger) (*Server, error) {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.Security.MaxInputLength <= 0 {
		cfg.Security = DefaultSecurityConfig()
	}
	if cfg.Security.MaxFormatPrecision <= 0 {
		cfg.Security.MaxFormatPrecision = cfg.Security.MaxInputLength
	}

	m := NewMetrics()
	opts.Observer = m.Conversions()
	converter, err := number.New(opts)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:       cfg,
		converter: converter,
		metrics:   m,
		memory:    metrics.NewMemoryCollector(),
		logger:    logger,
		tracer:    otel.Tracer(tracerName),
		started:   time.Now(),
	}
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}
	return s, nil
}

// Handler returns the routed handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	wrap := func(h http.HandlerFunc) http.HandlerFunc {
		return SecurityMiddleware(s.cfg.Security, s.metricsMiddleware(s.traceMiddleware(h)))
	}
	mux.HandleFunc("/v1/convert", wrap(s.handleConvert))
	mux.HandleFunc("/health", wrap(s.handleHealth))
	mux.HandleFunc("/metrics", wrap(s.handleMetrics))
	return mux
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return apperrors.WrapError(err, "listening on %s", s.cfg.Addr)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("server listening", logging.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	s.logger.Info("server shutting down")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return apperrors.WrapError(err, "shutting down server")
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// traceMiddleware wraps each request in a server span.
func (s *Server) traceMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := s.tracer.Start(r.Context(), r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.route", r.URL.Path),
			))
		defer span.End()
		next(w, r.WithContext(ctx))
	}
}

// ConvertResponse is the JSON body of a successful /v1/convert request.
type ConvertResponse struct {
	Input     string   `json:"input"`
	Style     string   `json:"style"`
	Format    string   `json:"format"`
	Result    string   `json:"result"`
	Sign      int      `json:"sign"`
	LimbCount int      `json:"limb_count"`
	Limbs     []uint32 `json:"limbs,omitempty"`
	Duration  string   `json:"duration"`
}

// ErrorResponse is the JSON body of a failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// HealthResponse is the JSON body of /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	HeapAlloc uint64 `json:"heap_alloc"`
	NumGC     uint32 `json:"num_gc"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	span := trace.SpanFromContext(r.Context())

	q := r.URL.Query()
	value := q.Get("value")
	if value == "" {
		s.writeError(w, http.StatusBadRequest, "missing 'value' parameter")
		return
	}
	if len(value) > s.cfg.Security.MaxInputLength {
		s.writeError(w, http.StatusRequestEntityTooLarge,
			"value exceeds "+strconv.Itoa(s.cfg.Security.MaxInputLength)+" characters")
		return
	}
	format := q.Get("format")
	if format == "" {
		format = "D"
	}
	_, precision, err := number.ParseFormatSpecifier(format)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if precision > s.cfg.Security.MaxFormatPrecision {
		s.writeError(w, http.StatusBadRequest,
			"format precision exceeds "+strconv.Itoa(s.cfg.Security.MaxFormatPrecision))
		return
	}
	style, err := number.ParseStyle(q.Get("style"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	info, err := number.InfoForLocale(q.Get("locale"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	span.SetAttributes(
		attribute.String("bigconv.style", style.String()),
		attribute.String("bigconv.format", format),
		attribute.Int("bigconv.input_length", len(value)),
	)

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()

	start := time.Now()
	v, result, err := s.convert(ctx, value, style, format, info)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.writeError(w, statusFor(err), err.Error())
		return
	}

	resp := ConvertResponse{
		Input:     value,
		Style:     style.String(),
		Format:    format,
		Result:    result,
		Sign:      v.Sign(),
		LimbCount: len(v.Magnitude()),
		Duration:  time.Since(start).String(),
	}
	if includeLimbs, _ := strconv.ParseBool(q.Get("limbs")); includeLimbs {
		resp.Limbs = v.Magnitude()
	}
	span.SetAttributes(attribute.Int("bigconv.limbs", resp.LimbCount))
	s.writeJSON(w, http.StatusOK, resp)
}

// convert runs one parse and format, giving up when ctx expires. The
// conversion itself is not interruptible; an abandoned one finishes in the
// background and its result is dropped.
func (s *Server) convert(ctx context.Context, value string, style number.Style, format string, info *number.Info) (bigint.Int, string, error) {
	type outcome struct {
		v   bigint.Int
		out string
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := s.converter.Parse(value, style, info)
		if err != nil {
			done <- outcome{err: err}
			return
		}
		out, err := s.converter.Format(v, format, info)
		done <- outcome{v: v, out: out, err: err}
	}()

	select {
	case o := <-done:
		return o.v, o.out, o.err
	case <-ctx.Done():
		return bigint.Zero, "", apperrors.TimeoutError{Operation: "convert", Limit: s.cfg.RequestTimeout}
	}
}

// statusFor maps a conversion error to an HTTP status.
func statusFor(err error) int {
	var timeoutErr apperrors.TimeoutError
	if errors.As(err, &timeoutErr) {
		return http.StatusGatewayTimeout
	}
	switch apperrors.ExitCode(err) {
	case apperrors.ExitErrorConfig:
		return http.StatusBadRequest
	case apperrors.ExitErrorInput:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	snap := s.memory.Snapshot()
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		HeapAlloc: snap.HeapAlloc,
		NumGC:     snap.NumGC,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil && s.logger != nil {
		s.logger.Error("writing response", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	if s.logger != nil {
		s.logger.Debug("request failed", logging.Int("status", status), logging.String("error", msg))
	}
	s.writeJSON(w, status, ErrorResponse{Error: msg, Code: status})
}
