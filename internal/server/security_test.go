package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/agbru/bigconv/internal/number"
)

func newLimitedServer(t *testing.T, sec SecurityConfig) (*Server, *recordingLogger) {
	t.Helper()
	logger := newTestLogger()
	s, err := New(Config{Addr: "127.0.0.1:0", Security: sec}, number.Options{NaiveThreshold: 16}, logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, logger
}

func TestNewSecurityDefaults(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name          string
		sec           SecurityConfig
		wantInput     int
		wantPrecision int
	}{
		{"zero config", SecurityConfig{}, 1_000_000, 1_000_000},
		{"input limit only", SecurityConfig{MaxInputLength: 64}, 64, 64},
		{"both limits", SecurityConfig{MaxInputLength: 64, MaxFormatPrecision: 500}, 64, 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, _ := newLimitedServer(t, tt.sec)
			if s.cfg.Security.MaxInputLength != tt.wantInput || s.cfg.Security.MaxFormatPrecision != tt.wantPrecision {
				t.Errorf("limits = %d, %d, want %d, %d", s.cfg.Security.MaxInputLength,
					s.cfg.Security.MaxFormatPrecision, tt.wantInput, tt.wantPrecision)
			}
		})
	}
}

func TestConvertLimits(t *testing.T) {
	t.Parallel()
	s, logger := newLimitedServer(t, SecurityConfig{MaxInputLength: 10, MaxFormatPrecision: 20})
	h := s.Handler()

	tests := []struct {
		name      string
		params    map[string]string
		want      int
		wantError string
	}{
		{"input at the limit", map[string]string{"value": "1234567890"}, http.StatusOK, ""},
		{"input past the limit", map[string]string{"value": "12345678901"}, http.StatusRequestEntityTooLarge, "value exceeds 10 characters"},
		{"precision at the limit", map[string]string{"value": "7", "format": "D20"}, http.StatusOK, ""},
		{"decimal precision past the limit", map[string]string{"value": "7", "format": "D21"}, http.StatusBadRequest, "format precision exceeds 20"},
		{"hex precision past the limit", map[string]string{"value": "7", "format": "x21"}, http.StatusBadRequest, "format precision exceeds 20"},
		{"huge precision", map[string]string{"value": "7", "format": "D200000000"}, http.StatusBadRequest, "format precision exceeds 20"},
		{"precision past the specifier range", map[string]string{"value": "7", "format": "D1000000000"}, http.StatusBadRequest, "precision"},
		{"custom format", map[string]string{"value": "7", "format": "#,##0"}, http.StatusBadRequest, "custom format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, h, convertURL(tt.params))
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
			if tt.wantError == "" {
				return
			}
			var resp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decoding error body: %v", err)
			}
			if !strings.Contains(resp.Error, tt.wantError) {
				t.Errorf("error = %q, want it to mention %q", resp.Error, tt.wantError)
			}
		})
	}

	// Only the two accepted requests reach the converter.
	body := get(t, h, "/metrics").Body.String()
	for _, want := range []string{
		`bigconv_parse_total{algorithm="naive",outcome="ok"} 2`,
		`bigconv_format_total{format="D",outcome="ok"} 2`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
	if !logger.logged("request failed", "status", http.StatusBadRequest) {
		t.Error("rejected precision was not logged")
	}
}

func TestDefaultLimitsRejectHugePrecision(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	rec := get(t, s.Handler(), convertURL(map[string]string{"value": "1", "format": "X200000000"}))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if !strings.Contains(rec.Body.String(), "format precision exceeds 1000000") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestConvertSecurityHeaders(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	h := s.Handler()

	for _, target := range []string{
		convertURL(map[string]string{"value": "255", "format": "X"}),
		convertURL(map[string]string{"value": "nope"}),
		"/v1/convert",
	} {
		rec := get(t, h, target)
		for header, want := range map[string]string{
			"X-Content-Type-Options":  "nosniff",
			"X-Frame-Options":         "DENY",
			"X-XSS-Protection":        "1; mode=block",
			"Referrer-Policy":         "strict-origin-when-cross-origin",
			"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
		} {
			if got := rec.Header().Get(header); got != want {
				t.Errorf("%s (status %d): %s = %q, want %q", target, rec.Code, header, got, want)
			}
		}
	}
}

func TestConvertCORS(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		sec        SecurityConfig
		origin     string
		wantOrigin string
	}{
		{"default allows any origin", DefaultSecurityConfig(), "https://calc.example", "*"},
		{"listed origin", SecurityConfig{EnableCORS: true, AllowedOrigins: []string{"https://a.example", "https://b.example"}, AllowedMethods: []string{"GET"}, MaxInputLength: 100}, "https://b.example", "https://b.example"},
		{"unlisted origin", SecurityConfig{EnableCORS: true, AllowedOrigins: []string{"https://a.example"}, AllowedMethods: []string{"GET"}, MaxInputLength: 100}, "https://evil.example", ""},
		{"no origin header", SecurityConfig{EnableCORS: true, AllowedOrigins: []string{"https://a.example"}, MaxInputLength: 100}, "", ""},
		{"disabled", SecurityConfig{AllowedOrigins: []string{"*"}, MaxInputLength: 100}, "https://calc.example", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, _ := newLimitedServer(t, tt.sec)
			req := httptest.NewRequest(http.MethodGet, convertURL(map[string]string{"value": "10"}), http.NoBody)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if tt.wantOrigin != "" && rec.Header().Get("Access-Control-Max-Age") != "86400" {
				t.Error("Access-Control-Max-Age missing")
			}
		})
	}
}

func TestConvertPreflight(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	h := s.Handler()

	req := httptest.NewRequest(http.MethodOptions, convertURL(map[string]string{"value": "99"}), http.NoBody)
	req.Header.Set("Origin", "https://calc.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, OPTIONS" {
		t.Errorf("Access-Control-Allow-Methods = %q", got)
	}
	if strings.Contains(get(t, h, "/metrics").Body.String(), "bigconv_parse_total") {
		t.Error("a preflight request ran a conversion")
	}
}
